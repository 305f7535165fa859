package state

import (
	"fmt"
	"time"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/transform"
)

// Metadata keys understood by the editor and history.
const (
	// MetaAddToHistory set to false keeps a transaction out of history.
	MetaAddToHistory = "addToHistory"
	// MetaInputType names the kind of input that produced a transaction.
	MetaInputType = "inputType"
	// MetaCommand names the command that built a transaction.
	MetaCommand = "command"
)

// InputTypeText marks plain typing, which history groups together.
const InputTypeText = "insertText"

// SelectionStep records a selection change. It leaves the document
// untouched and maps nothing.
type SelectionStep struct {
	Selection Selection
}

// Apply implements transform.Step.
func (s *SelectionStep) Apply(doc *model.Node) (*model.Node, error) {
	size := doc.Content.Size()
	if s.Selection.Start() < 0 || s.Selection.End() > size {
		return nil, fmt.Errorf("%w: %s outside 0..%d", ErrInvalidSelection, s.Selection, size)
	}
	return doc, nil
}

// GetMap implements transform.Step.
func (s *SelectionStep) GetMap() *transform.StepMap { return transform.EmptyMap }

// Invert implements transform.Step.
func (s *SelectionStep) Invert(*model.Node) transform.Step { return s }

// Transaction is a Transform that also tracks the selection, stored marks
// and metadata flags.
type Transaction struct {
	*transform.Transform

	// Time is when the transaction was created.
	Time time.Time

	base   Selection
	selSet bool
	meta   map[string]any

	// Stored marks stay valid until another step is added.
	storedMarks  []*model.Mark
	storedActive bool
	storedAt     int
}

func newTransaction(s *EditorState) *Transaction {
	return &Transaction{
		Transform:    transform.New(s.Doc),
		Time:         time.Now(),
		base:         s.Selection,
		meta:         map[string]any{},
		storedMarks:  s.StoredMarks,
		storedActive: s.storedActive,
	}
}

// Selection returns the selection after the transaction's steps. An
// explicitly set selection is mapped through steps that came after it.
func (tr *Transaction) Selection() Selection {
	for i := len(tr.Steps) - 1; i >= 0; i-- {
		if ss, ok := tr.Steps[i].(*SelectionStep); ok {
			return ss.Selection.Map(tr.Doc, tr.Mapping.Slice(i+1))
		}
	}
	if len(tr.Steps) == 0 {
		return tr.base
	}
	return tr.base.Map(tr.Doc, tr.Mapping)
}

// SelectionSet reports whether SetSelection was called.
func (tr *Transaction) SelectionSet() bool { return tr.selSet }

// SetSelection records a new selection.
func (tr *Transaction) SetSelection(sel Selection) error {
	if err := tr.Step(&SelectionStep{Selection: sel}); err != nil {
		return err
	}
	tr.selSet = true
	return nil
}

// StoredMarks returns the marks the next typed text will receive and
// whether any are stored. An empty set is a valid stored value meaning
// "type without marks".
func (tr *Transaction) StoredMarks() ([]*model.Mark, bool) {
	if !tr.storedActive || len(tr.Steps) != tr.storedAt {
		return nil, false
	}
	return tr.storedMarks, true
}

// SetStoredMarks sets the marks applied to the next inserted text.
func (tr *Transaction) SetStoredMarks(marks []*model.Mark) {
	tr.storedMarks = marks
	tr.storedActive = true
	tr.storedAt = len(tr.Steps)
}

// SetMeta stores a metadata value.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	tr.meta[key] = value
	return tr
}

// Meta returns a metadata value.
func (tr *Transaction) Meta(key string) (any, bool) {
	v, ok := tr.meta[key]
	return v, ok
}

// MetaString returns a string metadata value, or "".
func (tr *Transaction) MetaString(key string) string {
	v, _ := tr.meta[key].(string)
	return v
}

// AddToHistory reports whether history should record the transaction.
func (tr *Transaction) AddToHistory() bool {
	v, ok := tr.meta[MetaAddToHistory].(bool)
	return !ok || v
}

// DeleteSelection deletes the selected content and collapses the
// selection at the deletion point.
func (tr *Transaction) DeleteSelection() error {
	sel := tr.Selection()
	if sel.IsEmpty() {
		return nil
	}
	from, to := sel.Start(), sel.End()
	n := len(tr.Steps)
	if err := tr.Delete(from, to); err != nil {
		return err
	}
	return tr.SetSelection(Near(tr.Doc, tr.mapSince(n, from, -1), 1))
}

// ReplaceSelectionWith replaces the selection with node and places the
// cursor after it.
func (tr *Transaction) ReplaceSelectionWith(node *model.Node) error {
	sel := tr.Selection()
	from, to := sel.Start(), sel.End()
	n := len(tr.Steps)
	if err := tr.ReplaceWith(from, to, node); err != nil {
		return err
	}
	end := tr.mapSince(n, to, 1)
	return tr.SetSelection(Near(tr.Doc, end, 1))
}

// InsertText replaces the selection with text. The text receives the
// stored marks when set, else the marks at the selection start.
func (tr *Transaction) InsertText(text string) error {
	if text == "" {
		return nil
	}
	sel := tr.Selection()
	from, to := sel.Start(), sel.End()
	rFrom, err := tr.Doc.Resolve(from)
	if err != nil {
		return err
	}
	marks, ok := tr.StoredMarks()
	if !ok {
		marks = rFrom.Marks()
	}
	if !rFrom.Parent().Type.MarksAllowed {
		marks = nil
	}
	node := tr.Doc.Type.Schema().Text(text, marks...)
	n := len(tr.Steps)
	if err := tr.ReplaceWith(from, to, node); err != nil {
		return err
	}
	return tr.SetSelection(Cursor(tr.mapSince(n, to, 1)))
}

// mapSince maps pos, taken from the document after the first n steps,
// through the steps added since.
func (tr *Transaction) mapSince(n, pos, assoc int) int {
	return tr.Mapping.Slice(n).Map(pos, assoc)
}
