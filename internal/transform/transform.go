package transform

import "github.com/dshills/markupeditor/internal/model"

// Transform accumulates steps against a document. Every successful step
// advances Doc and appends its map to Mapping, so positions computed
// against the starting document can be mapped forward with Mapping.
type Transform struct {
	Doc     *model.Node
	Steps   []Step
	Docs    []*model.Node
	Mapping *Mapping
}

// New starts a transform on doc.
func New(doc *model.Node) *Transform {
	return &Transform{Doc: doc, Mapping: NewMapping()}
}

// Before returns the document the transform started from.
func (t *Transform) Before() *model.Node {
	if len(t.Docs) > 0 {
		return t.Docs[0]
	}
	return t.Doc
}

// DocChanged reports whether any step changed the document.
func (t *Transform) DocChanged() bool {
	for i, d := range t.Docs {
		next := t.Doc
		if i+1 < len(t.Docs) {
			next = t.Docs[i+1]
		}
		if d != next {
			return true
		}
	}
	return false
}

// Step applies a step. On failure the transform is left unchanged.
func (t *Transform) Step(step Step) error {
	doc, err := step.Apply(t.Doc)
	if err != nil {
		return err
	}
	t.Docs = append(t.Docs, t.Doc)
	t.Steps = append(t.Steps, step)
	t.Mapping.AppendMap(step.GetMap())
	t.Doc = doc
	return nil
}

// Replace replaces [from, to) with slice.
func (t *Transform) Replace(from, to int, slice *model.Slice) error {
	if from == to && slice.Size() == 0 {
		return nil
	}
	return t.Step(NewReplaceStep(from, to, slice, false))
}

// ReplaceWith replaces [from, to) with the given nodes.
func (t *Transform) ReplaceWith(from, to int, nodes ...*model.Node) error {
	return t.Replace(from, to, model.NewSlice(model.NewFragment(nodes), 0, 0))
}

// Insert inserts nodes at pos.
func (t *Transform) Insert(pos int, nodes ...*model.Node) error {
	return t.ReplaceWith(pos, pos, nodes...)
}

// Delete removes [from, to).
func (t *Transform) Delete(from, to int) error {
	return t.Replace(from, to, model.EmptySlice)
}

// InsertText inserts text with the given marks at pos.
func (t *Transform) InsertText(pos int, text string, marks []*model.Mark) error {
	if text == "" {
		return nil
	}
	return t.Insert(pos, t.Doc.Type.Schema().Text(text, marks...))
}

// AddMark adds mark to the inline content in [from, to).
func (t *Transform) AddMark(from, to int, mark *model.Mark) error {
	if from >= to {
		return nil
	}
	return t.Step(NewAddMarkStep(from, to, mark))
}

// RemoveMark removes marks of mark's type from the inline content in
// [from, to).
func (t *Transform) RemoveMark(from, to int, mark *model.Mark) error {
	if from >= to {
		return nil
	}
	return t.Step(NewRemoveMarkStep(from, to, mark))
}

// SetNodeAttribute sets one attribute of the node at pos.
func (t *Transform) SetNodeAttribute(pos int, attr, value string) error {
	return t.Step(NewAttrStep(pos, attr, value))
}

// SetNodeMarkup changes the type, attributes and marks of the node at pos
// while keeping its content. A nil typ keeps the current type.
func (t *Transform) SetNodeMarkup(pos int, typ *model.NodeType, attrs model.Attrs, marks []*model.Mark) error {
	node := t.Doc.NodeAt(pos)
	if node == nil {
		return ErrNoNode
	}
	if typ == nil {
		typ = node.Type
	}
	if marks == nil {
		marks = node.Marks
	}
	updated := typ.Create(attrs, nil, marks)
	if node.IsLeaf() {
		return t.ReplaceWith(pos, pos+node.NodeSize(), updated)
	}
	if !typ.ValidContent(node.Content) {
		return stepFailed(&model.ContentError{Type: typ.Name, Reason: "content does not fit"})
	}
	end := pos + node.NodeSize()
	return t.Step(NewReplaceAroundStep(pos, end, pos+1, end-1, model.NewSlice(model.FragmentFrom(updated), 0, 0), 1, true))
}

// Split splits the node at pos, depth levels deep. typesAfter optionally
// gives the type of each new node after the split, innermost last.
func (t *Transform) Split(pos, depth int, typesAfter ...Wrapper) error {
	if depth < 1 {
		depth = 1
	}
	rPos, err := t.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	before, after := model.EmptyFragment, model.EmptyFragment
	for d, e, i := rPos.Depth, rPos.Depth-depth, depth-1; d > e; d, i = d-1, i-1 {
		before = model.FragmentFrom(rPos.Node(d).Copy(before))
		if i < len(typesAfter) && typesAfter[i].Type != nil {
			after = model.FragmentFrom(typesAfter[i].Type.Create(typesAfter[i].Attrs, after, nil))
		} else {
			after = model.FragmentFrom(rPos.Node(d).Copy(after))
		}
	}
	return t.Step(NewReplaceStep(pos, pos, model.NewSlice(before.Append(after), depth, depth), true))
}

// Join joins the blocks around pos, depth levels deep.
func (t *Transform) Join(pos, depth int) error {
	if depth < 1 {
		depth = 1
	}
	return t.Step(NewReplaceStep(pos-depth, pos+depth, model.EmptySlice, true))
}

// CanJoin reports whether the nodes around pos can be joined.
func CanJoin(doc *model.Node, pos int) bool {
	rPos, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	a, b := rPos.NodeBefore(), rPos.NodeAfter()
	if a == nil || b == nil || a.IsLeaf() || !a.CanAppend(b) {
		return false
	}
	index := rPos.Index(rPos.Depth)
	return rPos.Parent().CanReplace(index, index+1, model.EmptyFragment)
}
