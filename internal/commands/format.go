package commands

import (
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// formatMarks maps host format tags to mark names.
var formatMarks = map[string]string{
	"B":      "bold",
	"I":      "italic",
	"U":      "underline",
	"S":      "strike",
	"DEL":    "strike",
	"STRIKE": "strike",
	"CODE":   "code",
	"SUB":    "sub",
	"SUP":    "sup",
}

// FormatMark returns the mark name for a format tag such as "B" or "SUB".
// Mark names are accepted as they are.
func FormatMark(format string) (string, bool) {
	if name, ok := formatMarks[strings.ToUpper(format)]; ok {
		return name, true
	}
	if _, ok := model.Markup.Marks[format]; ok && format != "link" {
		return format, true
	}
	return "", false
}

// ToggleFormat toggles a format mark. A collapsed selection toggles the
// stored marks used for the next typed text. Otherwise the mark is removed
// from the whole selection if any of it carries the mark, else added to
// all of it. The command does not apply where the mark is not allowed.
func ToggleFormat(format string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		name, ok := FormatMark(format)
		if !ok {
			return nil, unknown(CodeStyle, "format", format, formatTags)
		}
		markType := st.Schema().Marks[name]
		from, to, err := bounds(st)
		if err != nil {
			return nil, err
		}

		if st.Selection.IsEmpty() {
			if !from.Parent().Type.AllowsMarkType(markType) {
				return nil, nil
			}
			marks := st.MarksAtSelection()
			tr := newTr(st, NameToggleFormat)
			if existing := markType.IsInSet(marks); existing != nil {
				tr.SetStoredMarks(existing.RemoveFromSet(marks))
			} else {
				tr.SetStoredMarks(markType.Create(nil).AddToSet(marks))
			}
			return tr, nil
		}

		if !markApplies(st.Doc, from.Pos, to.Pos, markType) {
			return nil, nil
		}
		tr := newTr(st, NameToggleFormat)
		mark := markType.Create(nil)
		if rangeHasMark(st.Doc, from.Pos, to.Pos, markType) {
			err = tr.RemoveMark(from.Pos, to.Pos, mark)
		} else {
			err = tr.AddMark(from.Pos, to.Pos, mark)
		}
		if err != nil {
			return nil, Wrap(CodeStyle, err, "cannot toggle "+name)
		}
		return tr, nil
	}
}

// markApplies reports whether some inline content in [from, to) may
// carry the mark.
func markApplies(doc *model.Node, from, to int, markType *model.MarkType) bool {
	applies := false
	doc.NodesBetween(from, to, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if applies {
			return false
		}
		if n.InlineContent() && n.Type.AllowsMarkType(markType) && n.Type.Name != "button" {
			applies = true
		}
		return !applies
	})
	return applies
}

// rangeHasMark reports whether any inline node in [from, to) carries a
// mark of the given type.
func rangeHasMark(doc *model.Node, from, to int, markType *model.MarkType) bool {
	found := false
	doc.NodesBetween(from, to, func(n *model.Node, _ int, _ *model.Node, _ int) bool {
		if found {
			return false
		}
		if n.IsInline() && markType.IsInSet(n.Marks) != nil {
			found = true
		}
		return !found
	})
	return found
}

// ActiveMarks returns the names of the format marks active at the
// selection, in schema order. A range reports marks present anywhere in
// it.
func ActiveMarks(st *state.EditorState) []string {
	var names []string
	for _, name := range []string{"bold", "italic", "underline", "strike", "code", "sub", "sup", "link"} {
		markType := st.Schema().Marks[name]
		if st.Selection.IsEmpty() {
			if markType.IsInSet(st.MarksAtSelection()) != nil {
				names = append(names, name)
			}
			continue
		}
		if rangeHasMark(st.Doc, st.Selection.Start(), st.Selection.End(), markType) {
			names = append(names, name)
		}
	}
	return names
}
