package commands

import (
	"github.com/dshills/markupeditor/internal/state"
)

// StyleMultiple is reported when the selection spans blocks of different
// styles.
const StyleMultiple = "Multiple"

// SelectionState describes the formatting around the selection, as shown
// by toolbars.
type SelectionState struct {
	Empty bool
	// Marks lists the active format marks by schema name.
	Marks []string
	// Style is the style tag of the selected textblocks, StyleMultiple, or
	// "" outside any textblock.
	Style string
	// List is "UL", "OL" or "".
	List string

	InTable   bool
	HasHeader bool

	InLink bool
	Href   string

	Image *ImageInfo

	DivID    string
	Editable bool

	CanIndent  bool
	CanOutdent bool

	// Undo and Redo describe the next undo and redo units, or "" when
	// there is none. The editor fills them from its history.
	Undo, Redo           string
	UndoDepth, RedoDepth int
}

// QuerySelection reports the state of the selection.
func QuerySelection(st *state.EditorState) SelectionState {
	q := SelectionState{Empty: st.Selection.IsEmpty(), Marks: ActiveMarks(st)}
	from, to, err := bounds(st)
	if err != nil {
		return q
	}
	_, nodes := textblocksBetween(st.Doc, from, to.Pos)
	for _, n := range nodes {
		style := StyleOf(n)
		switch {
		case q.Style == "":
			q.Style = style
		case q.Style != style:
			q.Style = StyleMultiple
		}
	}
	q.List = ListTypeAt(st)
	if c, ok := FindTable(st); ok {
		q.InTable = true
		q.HasHeader = c.HasHeader()
	}
	if _, end, mark, ok := LinkExtent(from); ok && to.Pos <= end {
		q.InLink = true
		q.Href = mark.Attrs["href"]
	}
	if _, img, ok := SelectedImage(st); ok {
		info := ImageInfoOf(img)
		q.Image = &info
	}
	q.DivID = DivIDAt(st.Doc, from.Pos)
	q.Editable = DivEditable(st.Doc, from.Pos)
	q.CanIndent = applies(Indent(), st)
	q.CanOutdent = applies(Outdent(), st)
	return q
}

func applies(cmd Command, st *state.EditorState) bool {
	tr, err := cmd(st)
	return err == nil && tr != nil
}
