package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance is the largest edit distance still offered as a
// suggestion.
const maxSuggestDistance = 2

var (
	formatTags = []string{"B", "I", "U", "S", "DEL", "STRIKE", "CODE", "SUB", "SUP"}
	styleTags  = []string{StyleParagraph, StyleCode, "H1", "H2", "H3", "H4", "H5", "H6"}
	listTags   = []string{ListBullet, ListOrdered}
	directions = []string{Before, After}
	areas      = []string{AreaRow, AreaCol, AreaTable}
	borders    = []string{BorderOuter, BorderHeader, BorderCell, BorderNone}
)

// unknown reports an unrecognized tag. When an accepted tag is close, it
// is named in Info.
func unknown(code Code, what, got string, accepted []string) *Error {
	err := Errorf(code, "unknown %s %q", what, got)
	if s := Suggest(got, accepted); len(s) > 0 {
		err.Info = fmt.Sprintf("did you mean %q?", s[0])
	}
	return err
}

// Suggest returns the accepted values within a small edit distance of
// got, closest first. Comparison ignores case.
func Suggest(got string, accepted []string) []string {
	type candidate struct {
		value string
		dist  int
	}
	g := strings.ToUpper(got)
	var candidates []candidate
	for _, a := range accepted {
		if d := levenshtein.ComputeDistance(g, strings.ToUpper(a)); d <= maxSuggestDistance {
			candidates = append(candidates, candidate{a, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.value
	}
	return out
}
