package search

import (
	"regexp"
	"sort"
	"unicode/utf8"

	"github.com/dshills/markupeditor/internal/model"
)

// leafRune stands in for inline leaves so offsets stay one per position.
const leafRune = '\uFFFC'

// State is the searcher state.
type State int

// Searcher states.
const (
	StateInactive State = iota
	StateIndexed
	StateActive
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateIndexed:
		return "indexed"
	case StateActive:
		return "active"
	}
	return "unknown"
}

// Direction is the direction of a search step.
type Direction int

// Search directions.
const (
	Forward Direction = iota
	Backward
)

// ParseDirection maps "forward" and "backward" to a direction. Anything
// else is forward.
func ParseDirection(s string) Direction {
	if s == "backward" || s == "BACKWARD" {
		return Backward
	}
	return Forward
}

// Match is one occurrence of the query, as document positions.
type Match struct {
	From int
	To   int
}

// Searcher holds the match index and search state for one editor.
type Searcher struct {
	query         string
	caseSensitive bool
	doc           *model.Node
	matches       []Match
	current       int
	state         State
	dirty         bool
}

// New creates an inactive searcher.
func New(caseSensitive bool) *Searcher {
	return &Searcher{caseSensitive: caseSensitive, current: -1}
}

// State returns the current state.
func (s *Searcher) State() State { return s.state }

// Query returns the indexed query, or "".
func (s *Searcher) Query() string { return s.query }

// CaseSensitive reports whether matching is case sensitive.
func (s *Searcher) CaseSensitive() bool { return s.caseSensitive }

// SetCaseSensitive changes the case mode. The next search reindexes when
// the mode changed.
func (s *Searcher) SetCaseSensitive(on bool) {
	if on != s.caseSensitive {
		s.caseSensitive = on
		s.dirty = true
	}
}

// Count returns the number of indexed matches.
func (s *Searcher) Count() int { return len(s.matches) }

// Matches returns a copy of the match index.
func (s *Searcher) Matches() []Match {
	return append([]Match(nil), s.matches...)
}

// Current returns the match the last step landed on.
func (s *Searcher) Current() (Match, bool) {
	if s.current < 0 || s.current >= len(s.matches) {
		return Match{}, false
	}
	return s.matches[s.current], true
}

// CurrentIndex returns the index of the current match, or -1.
func (s *Searcher) CurrentIndex() int {
	if s.current >= len(s.matches) {
		return -1
	}
	return s.current
}

// Indexed reports whether the index is valid for doc.
func (s *Searcher) Indexed(doc *model.Node) bool {
	return s.state != StateInactive && !s.dirty && s.doc == doc
}

// SearchFor searches doc for query and steps once in dir from the
// selection [selFrom, selTo). The index is rebuilt when the query, the
// case mode or the document changed since the last call. The searcher
// becomes active only when activate is set; otherwise it stays in its
// current mode, at least indexed. It reports whether the query was
// reindexed and the match stepped to, if any.
func (s *Searcher) SearchFor(doc *model.Node, query string, dir Direction, activate bool, selFrom, selTo int) (Match, bool, bool, error) {
	if query == "" {
		return Match{}, false, false, ErrEmptyQuery
	}
	reindexed := false
	if query != s.query || !s.Indexed(doc) {
		s.index(doc, query)
		reindexed = true
	}
	if activate {
		s.state = StateActive
	} else if s.state == StateInactive {
		s.state = StateIndexed
	}
	m, ok := s.step(dir, selFrom, selTo)
	return m, ok, reindexed, nil
}

// Step moves to the next or previous match from the selection, wrapping
// around at either end.
func (s *Searcher) Step(doc *model.Node, dir Direction, selFrom, selTo int) (Match, bool, error) {
	if !s.Indexed(doc) {
		return Match{}, false, ErrNotIndexed
	}
	m, ok := s.step(dir, selFrom, selTo)
	return m, ok, nil
}

func (s *Searcher) step(dir Direction, selFrom, selTo int) (Match, bool) {
	n := len(s.matches)
	if n == 0 {
		s.current = -1
		return Match{}, false
	}
	if cur, ok := s.Current(); ok && cur.From == selFrom && cur.To == selTo {
		if dir == Backward {
			s.current = (s.current - 1 + n) % n
		} else {
			s.current = (s.current + 1) % n
		}
		return s.matches[s.current], true
	}
	if dir == Backward {
		i := sort.Search(n, func(i int) bool { return s.matches[i].To > selFrom })
		s.current = (i - 1 + n) % n
	} else {
		i := sort.Search(n, func(i int) bool { return s.matches[i].From >= selFrom })
		s.current = i % n
	}
	return s.matches[s.current], true
}

// Deactivate stops intercepting navigation keys and keeps the index.
func (s *Searcher) Deactivate() {
	if s.state == StateActive {
		s.state = StateIndexed
	}
}

// Invalidate drops the match index after the document changed. The query
// and state stay, so the next search reindexes.
func (s *Searcher) Invalidate() {
	s.doc = nil
	s.matches = nil
	s.current = -1
	s.dirty = true
}

// Cancel clears the query and the index.
func (s *Searcher) Cancel() {
	s.query = ""
	s.doc = nil
	s.matches = nil
	s.current = -1
	s.state = StateInactive
	s.dirty = false
}

func (s *Searcher) index(doc *model.Node, query string) {
	s.query = query
	s.doc = doc
	s.current = -1
	s.dirty = false
	s.matches = Find(doc, query, s.caseSensitive)
}

// Find returns every non-overlapping occurrence of query in doc's
// textblocks, in document order. Buttons are not searched.
func Find(doc *model.Node, query string, caseSensitive bool) []Match {
	if query == "" {
		return nil
	}
	pattern := regexp.QuoteMeta(query)
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re := regexp.MustCompile(pattern)

	var out []Match
	doc.Descendants(func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if !n.IsTextblock() {
			return true
		}
		if n.Type.Name == "button" {
			return false
		}
		text := blockText(n)
		start := pos + 1
		for _, loc := range re.FindAllStringIndex(text, -1) {
			from := start + utf8.RuneCountInString(text[:loc[0]])
			to := from + utf8.RuneCountInString(text[loc[0]:loc[1]])
			out = append(out, Match{From: from, To: to})
		}
		return false
	})
	return out
}

// blockText returns a textblock's content with one rune per position.
func blockText(n *model.Node) string {
	buf := make([]rune, 0, n.Content.Size())
	n.Content.ForEach(func(child *model.Node, _, _ int) {
		if child.IsText() {
			buf = append(buf, []rune(child.Text)...)
			return
		}
		buf = append(buf, leafRune)
	})
	return string(buf)
}
