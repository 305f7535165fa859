// Package state pairs a document version with its selection and stored
// marks, and applies transactions to produce the next state.
//
// An EditorState is immutable. Changes are described by a Transaction
// created with Tr and applied with Apply, which returns a new state and
// leaves the old one valid for history.
package state

import (
	"fmt"

	"github.com/dshills/markupeditor/internal/model"
)

// EditorState is one version of the editor: document, selection and the
// marks queued for the next typed text.
type EditorState struct {
	Doc       *model.Node
	Selection Selection
	// StoredMarks override the marks at the cursor for the next insertion.
	StoredMarks []*model.Mark

	storedActive bool
}

// New creates a state for doc. A nil selection places the cursor at the
// start of the document.
func New(doc *model.Node, sel Selection) *EditorState {
	if sel == nil {
		sel = AtStart(doc)
	}
	return &EditorState{Doc: doc, Selection: sel}
}

// Schema returns the document's schema.
func (s *EditorState) Schema() *model.Schema {
	return s.Doc.Type.Schema()
}

// HasStoredMarks reports whether stored marks are set, including an
// explicitly empty set.
func (s *EditorState) HasStoredMarks() bool { return s.storedActive }

// Tr starts a transaction against the state.
func (s *EditorState) Tr() *Transaction {
	return newTransaction(s)
}

// Apply applies tr and returns the resulting state. Stored marks survive
// only when the transaction neither changed the document nor moved the
// selection, unless the transaction set them after its last step. A
// non-empty selection never carries stored marks.
func (s *EditorState) Apply(tr *Transaction) (*EditorState, error) {
	if tr.Before() != s.Doc {
		return nil, ErrMismatchedTransaction
	}
	sel := tr.Selection()
	if sel.End() > tr.Doc.Content.Size() || sel.Start() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSelection, sel)
	}
	next := &EditorState{Doc: tr.Doc, Selection: sel}
	if marks, ok := tr.StoredMarks(); ok && sel.IsEmpty() {
		next.StoredMarks, next.storedActive = marks, true
	}
	return next, nil
}

// MarksAtSelection returns the marks that typed text would receive.
func (s *EditorState) MarksAtSelection() []*model.Mark {
	if s.storedActive {
		return s.StoredMarks
	}
	r, err := s.Doc.Resolve(s.Selection.Start())
	if err != nil {
		return nil
	}
	return r.Marks()
}

// SelectedText returns the text covered by the selection, with block
// boundaries rendered as newlines.
func (s *EditorState) SelectedText() string {
	return s.Doc.TextBetween(s.Selection.Start(), s.Selection.End(), "\n", "")
}
