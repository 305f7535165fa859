package transform

import "github.com/dshills/markupeditor/internal/model"

// mapFragment rebuilds a fragment, passing every inline node through fn
// together with its parent.
func mapFragment(f *model.Fragment, parent *model.Node, fn func(node, parent *model.Node) *model.Node) *model.Fragment {
	nodes := make([]*model.Node, 0, f.ChildCount())
	f.ForEach(func(child *model.Node, _, _ int) {
		if child.Content.Size() > 0 {
			child = child.Copy(mapFragment(child.Content, child, fn))
		}
		if child.IsInline() {
			child = fn(child, parent)
		}
		nodes = append(nodes, child)
	})
	return model.NewFragment(nodes)
}

func markSlice(doc *model.Node, from, to int, fn func(node, parent *model.Node) *model.Node) (*model.Slice, error) {
	old, err := doc.Slice(from, to)
	if err != nil {
		return nil, err
	}
	rFrom, err := doc.Resolve(from)
	if err != nil {
		return nil, err
	}
	parent := rFrom.Node(rFrom.SharedDepth(to))
	return model.NewSlice(mapFragment(old.Content, parent, fn), old.OpenStart, old.OpenEnd), nil
}

// AddMarkStep adds a mark to all inline content in [From, To) whose
// parent allows it.
type AddMarkStep struct {
	From int
	To   int
	Mark *model.Mark
}

// NewAddMarkStep creates an add-mark step.
func NewAddMarkStep(from, to int, mark *model.Mark) *AddMarkStep {
	return &AddMarkStep{From: from, To: to, Mark: mark}
}

// Apply implements Step.
func (s *AddMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	slice, err := markSlice(doc, s.From, s.To, func(node, parent *model.Node) *model.Node {
		if !node.IsAtom() || !parent.Type.AllowsMarkType(s.Mark.Type) {
			return node
		}
		return node.Mark(s.Mark.AddToSet(node.Marks))
	})
	if err != nil {
		return nil, stepFailed(err)
	}
	return fromReplace(doc, s.From, s.To, slice)
}

// GetMap implements Step.
func (s *AddMarkStep) GetMap() *StepMap { return EmptyMap }

// Invert implements Step.
func (s *AddMarkStep) Invert(*model.Node) Step {
	return NewRemoveMarkStep(s.From, s.To, s.Mark)
}

// RemoveMarkStep removes marks of Mark's type from inline content in
// [From, To).
type RemoveMarkStep struct {
	From int
	To   int
	Mark *model.Mark
}

// NewRemoveMarkStep creates a remove-mark step.
func NewRemoveMarkStep(from, to int, mark *model.Mark) *RemoveMarkStep {
	return &RemoveMarkStep{From: from, To: to, Mark: mark}
}

// Apply implements Step.
func (s *RemoveMarkStep) Apply(doc *model.Node) (*model.Node, error) {
	slice, err := markSlice(doc, s.From, s.To, func(node, _ *model.Node) *model.Node {
		return node.Mark(s.Mark.Type.RemoveFromSet(node.Marks))
	})
	if err != nil {
		return nil, stepFailed(err)
	}
	return fromReplace(doc, s.From, s.To, slice)
}

// GetMap implements Step.
func (s *RemoveMarkStep) GetMap() *StepMap { return EmptyMap }

// Invert implements Step.
func (s *RemoveMarkStep) Invert(*model.Node) Step {
	return NewAddMarkStep(s.From, s.To, s.Mark)
}
