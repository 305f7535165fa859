package editor

import (
	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/state"
)

// Each command reports whether it changed the document or selection. A
// false result with a nil error means the command did not apply here.

// ToggleFormat toggles a format such as "B", "I", "U", "CODE", "DEL",
// "SUB" or "SUP" over the selection.
func (e *Editor) ToggleFormat(format string) (bool, error) {
	return e.exec(commands.NameToggleFormat, commands.ToggleFormat(format))
}

// ToggleBold toggles bold.
func (e *Editor) ToggleBold() (bool, error) { return e.ToggleFormat("B") }

// ToggleItalic toggles italic.
func (e *Editor) ToggleItalic() (bool, error) { return e.ToggleFormat("I") }

// ToggleUnderline toggles underline.
func (e *Editor) ToggleUnderline() (bool, error) { return e.ToggleFormat("U") }

// ToggleCode toggles inline code.
func (e *Editor) ToggleCode() (bool, error) { return e.ToggleFormat("CODE") }

// ToggleStrike toggles strikethrough.
func (e *Editor) ToggleStrike() (bool, error) { return e.ToggleFormat("DEL") }

// ToggleSubscript toggles subscript.
func (e *Editor) ToggleSubscript() (bool, error) { return e.ToggleFormat("SUB") }

// ToggleSuperscript toggles superscript.
func (e *Editor) ToggleSuperscript() (bool, error) { return e.ToggleFormat("SUP") }

// SetStyle sets the block style ("P", "H1".."H6", "PRE") of every
// textblock in the selection.
func (e *Editor) SetStyle(tag string) (bool, error) {
	return e.exec(commands.NameSetStyle, commands.SetStyle(tag))
}

// ToggleList toggles a list of type "UL" or "OL" around the selection.
func (e *Editor) ToggleList(tag string) (bool, error) {
	return e.exec(commands.NameToggleList, commands.ToggleList(tag))
}

// Indent indents the selected blocks.
func (e *Editor) Indent() (bool, error) {
	return e.exec(commands.NameIndent, commands.Indent())
}

// Outdent outdents the selected blocks.
func (e *Editor) Outdent() (bool, error) {
	return e.exec(commands.NameOutdent, commands.Outdent())
}

// InsertLink links the selection to url. At a cursor the url itself is
// inserted as the link text.
func (e *Editor) InsertLink(url string) (bool, error) {
	selectText := e.Config().Behavior.InsertLinkSelectsText
	return e.exec(commands.NameInsertLink, adjust(commands.InsertLink(url), func(tr *state.Transaction) error {
		if selectText {
			return nil
		}
		return tr.SetSelection(state.Cursor(tr.Selection().End()))
	}))
}

// InsertInternalLink links the selection to the heading at headingPos.
func (e *Editor) InsertInternalLink(headingPos int) (bool, error) {
	return e.exec(commands.NameInsertLink, commands.InsertInternalLink(headingPos))
}

// DeleteLink removes the link around the selection.
func (e *Editor) DeleteLink() (bool, error) {
	return e.exec(commands.NameDeleteLink, commands.DeleteLink())
}

// Headings lists the document's headings, the targets of internal links.
func (e *Editor) Headings() []commands.Heading {
	return commands.Headings(e.Doc())
}

// InsertImage replaces the selection with an image.
func (e *Editor) InsertImage(src, alt string) (bool, error) {
	selectImage := e.Config().Behavior.SelectImage
	return e.exec(commands.NameInsertImage, adjust(commands.InsertImage(src, alt), func(tr *state.Transaction) error {
		if !selectImage {
			return nil
		}
		pos := tr.Selection().Start() - 1
		if n := tr.Doc.NodeAt(pos); n == nil || n.Type.Name != "image" {
			return nil
		}
		sel, err := state.NewNodeSelection(tr.Doc, pos)
		if err != nil {
			return err
		}
		return tr.SetSelection(sel)
	}))
}

// ModifyImage changes the source and alt text of the selected image.
func (e *Editor) ModifyImage(src, alt string) (bool, error) {
	return e.exec(commands.NameModifyImage, commands.ModifyImage(src, alt))
}

// ResizeImage commits the size of the selected image at the end of a
// resize gesture.
func (e *Editor) ResizeImage(width, height int) (bool, error) {
	return e.exec(commands.NameResizeImage, commands.ResizeImage(width, height))
}

// CopyImage publishes the selected image on the image.copied topic.
func (e *Editor) CopyImage() bool {
	copied := false
	e.settle("image.copy", func() error {
		copied = e.copyImageLocked(false)
		return nil
	})
	return copied
}

// CutImage publishes the selected image and removes it.
func (e *Editor) CutImage() (bool, error) {
	cut := false
	err := e.locked(commands.NameCutImage, func() error {
		if !e.copyImageLocked(true) {
			return nil
		}
		tr, err := commands.CutImage()(e.state)
		if err != nil || tr == nil {
			return err
		}
		if err := e.applyLocked(tr); err != nil {
			return err
		}
		cut = true
		return nil
	})
	return cut, err
}

func (e *Editor) copyImageLocked(cut bool) bool {
	_, img, ok := commands.SelectedImage(e.state)
	if !ok {
		return false
	}
	info := commands.ImageInfoOf(img)
	raise(e, events.TopicImageCopied, events.ImageCopied{
		Src:    info.Src,
		Alt:    info.Alt,
		Width:  info.Width,
		Height: info.Height,
		Cut:    cut,
	})
	return true
}

// InsertTable inserts a rows by cols table. An empty border uses the
// configured default.
func (e *Editor) InsertTable(rows, cols int, border string) (bool, error) {
	if border == "" {
		border = e.Config().Behavior.DefaultTableBorder
	}
	return e.exec(commands.NameInsertTable, commands.InsertTable(rows, cols, border))
}

// AddRow adds a row "BEFORE" or "AFTER" the selected one.
func (e *Editor) AddRow(dir string) (bool, error) {
	return e.exec(commands.NameAddRow, commands.AddRow(dir))
}

// AddCol adds a column "BEFORE" or "AFTER" the selected one.
func (e *Editor) AddCol(dir string) (bool, error) {
	return e.exec(commands.NameAddCol, commands.AddCol(dir))
}

// AddHeader adds a header row to the selected table.
func (e *Editor) AddHeader(colspan bool) (bool, error) {
	return e.exec(commands.NameAddHeader, commands.AddHeader(colspan))
}

// DeleteTableArea deletes the selected "ROW", "COL" or "TABLE".
func (e *Editor) DeleteTableArea(area string) (bool, error) {
	return e.exec(commands.NameDeleteArea, commands.DeleteTableArea(area))
}

// BorderTable sets the border style of the selected table.
func (e *Editor) BorderTable(style string) (bool, error) {
	return e.exec(commands.NameBorderTable, commands.BorderTable(style))
}

// InsertText types text over the selection.
func (e *Editor) InsertText(text string) (bool, error) {
	return e.exec(commands.NameInsertText, commands.InsertText(text))
}

// DeleteSelection deletes the selected content.
func (e *Editor) DeleteSelection() (bool, error) {
	return e.exec(commands.NameDelete, commands.DeleteSelection())
}

// SplitBlock splits the block at the selection, as Enter does outside
// search mode.
func (e *Editor) SplitBlock() (bool, error) {
	return e.exec(commands.NameSplitBlock, commands.SplitBlock())
}

// SelectAll selects the whole document.
func (e *Editor) SelectAll() (bool, error) {
	return e.exec(commands.NameSelectAll, commands.SelectAll())
}

// PasteHTML pastes an HTML fragment over the selection.
func (e *Editor) PasteHTML(html string) (bool, error) {
	return e.exec(commands.NamePaste, commands.PasteHTML(html))
}

// PasteText pastes plain text over the selection.
func (e *Editor) PasteText(text string) (bool, error) {
	return e.exec(commands.NamePaste, commands.PasteText(text))
}

// AddDiv adds an editable or read-only region.
func (e *Editor) AddDiv(spec commands.DivSpec) (bool, error) {
	return e.exec(commands.NameAddDiv, commands.AddDiv(spec))
}

// RemoveDiv removes the region with the given id.
func (e *Editor) RemoveDiv(id string) (bool, error) {
	return e.exec(commands.NameRemoveDiv, commands.RemoveDiv(id))
}

// AddButton adds a button to a region.
func (e *Editor) AddButton(spec commands.ButtonSpec) (bool, error) {
	return e.exec(commands.NameAddButton, commands.AddButton(spec))
}

// RemoveButton removes the button with the given id.
func (e *Editor) RemoveButton(id string) (bool, error) {
	return e.exec(commands.NameRemoveButton, commands.RemoveButton(id))
}

// SelectedDivID returns the id of the region holding the selection, or "".
func (e *Editor) SelectedDivID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selDiv
}

// SelectionState describes the formatting at the selection and what
// undo and redo would do.
func (e *Editor) SelectionState() commands.SelectionState {
	q := commands.QuerySelection(e.State())
	if u, ok := e.history.PeekUndo(); ok {
		q.Undo = u.Description
	}
	if r, ok := e.history.PeekRedo(); ok {
		q.Redo = r.Description
	}
	q.UndoDepth, q.RedoDepth = e.history.UndoCount(), e.history.RedoCount()
	return q
}

// ReportHeight records the rendered content height and publishes it when
// it changed.
func (e *Editor) ReportHeight(height int) {
	e.settle("height", func() error {
		if height == e.height {
			return nil
		}
		e.height = height
		raise(e, events.TopicHeightChanged, events.HeightChanged{Height: height})
		return nil
	})
}

// adjust post-processes the transaction of cmd before it is applied.
func adjust(cmd commands.Command, fn func(tr *state.Transaction) error) commands.Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		tr, err := cmd(st)
		if err != nil || tr == nil {
			return tr, err
		}
		if err := fn(tr); err != nil {
			return nil, commands.Internal(err)
		}
		return tr, nil
	}
}
