package commands

import (
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
	"github.com/dshills/markupeditor/internal/transform"
)

// clearSelection deletes the selection. Deleting everything leaves one
// empty paragraph with the cursor in it.
func clearSelection(tr *state.Transaction) error {
	sel := tr.Selection()
	if sel.IsEmpty() {
		return nil
	}
	size := tr.Doc.Content.Size()
	if sel.Start() == 0 && sel.End() == size {
		if err := tr.ReplaceWith(0, size, tr.Doc.Type.Schema().Node("paragraph", nil)); err != nil {
			return err
		}
		return tr.SetSelection(state.Cursor(1))
	}
	return tr.DeleteSelection()
}

// InsertText replaces the selection with text, as typing does.
func InsertText(text string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if text == "" {
			return nil, nil
		}
		tr := newTr(st, NameInsertText)
		tr.SetMeta(state.MetaInputType, state.InputTypeText)
		from, _, err := bounds(st)
		if err != nil {
			return nil, err
		}
		if !from.Parent().InlineContent() {
			if err := clearSelection(tr); err != nil {
				return nil, Internal(err)
			}
		}
		if err := tr.InsertText(text); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}

// DeleteSelection deletes the selected content.
func DeleteSelection() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if st.Selection.IsEmpty() {
			return nil, nil
		}
		tr := newTr(st, NameDelete)
		if err := clearSelection(tr); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}

// SplitBlock splits the textblock at the cursor, as the Enter key does.
// Code blocks get a newline instead. An empty list item leaves its list,
// a non-empty one splits into two items, and splitting at the end of a
// heading starts a paragraph.
func SplitBlock() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		tr := newTr(st, NameSplitBlock)
		if err := clearSelection(tr); err != nil {
			return nil, Internal(err)
		}
		r, err := tr.Doc.Resolve(tr.Selection().Start())
		if err != nil {
			return nil, Internal(err)
		}
		parent := r.Parent()
		if !parent.IsTextblock() || parent.Type.Name == "button" {
			return changed(tr)
		}
		if parent.Type.Name == "code_block" {
			if err := tr.InsertText("\n"); err != nil {
				return nil, Internal(err)
			}
			return tr, nil
		}
		s := st.Schema()
		inItem := r.Depth >= 2 && r.Node(r.Depth-1).Type.Name == "list_item"
		if inItem && parent.Content.Size() == 0 {
			lr := r.BlockRange(r, isList)
			if lr == nil {
				return changed(tr)
			}
			if err := liftItems(tr, lr); err != nil {
				return nil, Wrap(CodeList, err, "cannot leave list")
			}
			return tr, nil
		}
		depth := 1
		if inItem {
			depth = 2
		}
		types := make([]transform.Wrapper, depth)
		switch {
		case parent.Type.Name == "heading" && r.Pos == r.End(r.Depth):
			types[depth-1] = transform.Wrapper{Type: s.Nodes["paragraph"]}
		case parent.Type.Name == "heading":
			types[depth-1] = transform.Wrapper{Type: parent.Type, Attrs: model.Attrs{"level": parent.Attr("level")}}
		}
		if err := tr.Split(r.Pos, depth, types...); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}

// SelectAll selects from the first to the last text position.
func SelectAll() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		start, end := state.AtStart(st.Doc), state.AtEnd(st.Doc)
		var sel state.Selection = state.SelectAll(st.Doc)
		if _, ok := start.(state.TextSelection); ok {
			sel = state.NewTextSelection(start.Start(), end.End())
		}
		if sel.Eq(st.Selection) {
			return nil, nil
		}
		tr := newTr(st, NameSelectAll)
		if err := tr.SetSelection(sel); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}

// PasteHTML replaces the selection with parsed HTML. When the parsed
// structure does not fit at the selection, its text is pasted instead.
func PasteHTML(src string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		slice, err := model.ParseSlice(st.Schema(), src, model.ParseOptions{})
		if err != nil {
			return nil, Wrap(CodeParse, err, "cannot parse pasted HTML")
		}
		if slice.Size() == 0 {
			return nil, nil
		}
		tr := newTr(st, NamePaste)
		from, to := st.Selection.Start(), st.Selection.End()
		if err := tr.Replace(from, to, slice); err == nil {
			if err := tr.SetSelection(state.Near(tr.Doc, tr.Mapping.Map(to, 1), -1)); err != nil {
				return nil, Internal(err)
			}
			return tr, nil
		}
		text := slice.Content.TextBetween(0, slice.Content.Size(), " ", "")
		return pasteText(tr, text)
	}
}

// PasteText replaces the selection with plain text. Each line after the
// first starts a new block.
func PasteText(text string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if text == "" {
			return nil, nil
		}
		return pasteText(newTr(st, NamePaste), text)
	}
}

func pasteText(tr *state.Transaction, text string) (*state.Transaction, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	r, err := tr.Doc.Resolve(tr.Selection().Start())
	if err != nil {
		return nil, Internal(err)
	}
	if len(lines) == 1 || r.Parent().Type.Name == "code_block" || r.Parent().Type.Name == "button" {
		if r.Parent().Type.Name == "button" {
			text = strings.Join(lines, " ")
		}
		if err := tr.InsertText(text); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
	if err := clearSelection(tr); err != nil {
		return nil, Internal(err)
	}
	for i, line := range lines {
		if i > 0 {
			if err := tr.Split(tr.Selection().Start(), 1); err != nil {
				return nil, Internal(err)
			}
		}
		if err := tr.InsertText(line); err != nil {
			return nil, Internal(err)
		}
	}
	return tr, nil
}
