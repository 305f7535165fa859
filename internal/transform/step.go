package transform

import (
	"fmt"

	"github.com/dshills/markupeditor/internal/model"
)

// Step is one primitive document change.
type Step interface {
	// Apply applies the step to doc. A failed step leaves doc untouched.
	Apply(doc *model.Node) (*model.Node, error)
	// GetMap returns the position map of the step.
	GetMap() *StepMap
	// Invert returns a step that undoes this one. doc is the document the
	// step was applied to.
	Invert(doc *model.Node) Step
}

func fromReplace(doc *model.Node, from, to int, slice *model.Slice) (*model.Node, error) {
	out, err := doc.Replace(from, to, slice)
	if err != nil {
		return nil, stepFailed(err)
	}
	return out, nil
}

// ReplaceStep replaces the range [From, To) with a slice.
type ReplaceStep struct {
	From  int
	To    int
	Slice *model.Slice
	// Structure steps only succeed when they do not overwrite content
	// between From and To.
	Structure bool
}

// NewReplaceStep creates a replace step.
func NewReplaceStep(from, to int, slice *model.Slice, structure bool) *ReplaceStep {
	return &ReplaceStep{From: from, To: to, Slice: slice, Structure: structure}
}

// Apply implements Step.
func (s *ReplaceStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure && contentBetween(doc, s.From, s.To) {
		return nil, stepFailedf("structure replace would overwrite content")
	}
	return fromReplace(doc, s.From, s.To, s.Slice)
}

// GetMap implements Step.
func (s *ReplaceStep) GetMap() *StepMap {
	return NewStepMap(s.From, s.To-s.From, s.Slice.Size())
}

// Invert implements Step.
func (s *ReplaceStep) Invert(doc *model.Node) Step {
	slice, err := doc.Slice(s.From, s.To)
	if err != nil {
		slice = model.EmptySlice
	}
	return NewReplaceStep(s.From, s.From+s.Slice.Size(), slice, false)
}

func (s *ReplaceStep) String() string {
	return fmt.Sprintf("replace(%d, %d, %s)", s.From, s.To, s.Slice)
}

// ReplaceAroundStep replaces [From, To) with a slice while keeping the
// content between GapFrom and GapTo, which is inserted into the slice at
// offset Insert.
type ReplaceAroundStep struct {
	From      int
	To        int
	GapFrom   int
	GapTo     int
	Slice     *model.Slice
	Insert    int
	Structure bool
}

// NewReplaceAroundStep creates a replace-around step.
func NewReplaceAroundStep(from, to, gapFrom, gapTo int, slice *model.Slice, insert int, structure bool) *ReplaceAroundStep {
	return &ReplaceAroundStep{From: from, To: to, GapFrom: gapFrom, GapTo: gapTo, Slice: slice, Insert: insert, Structure: structure}
}

// Apply implements Step.
func (s *ReplaceAroundStep) Apply(doc *model.Node) (*model.Node, error) {
	if s.Structure && (contentBetween(doc, s.From, s.GapFrom) || contentBetween(doc, s.GapTo, s.To)) {
		return nil, stepFailedf("structure gap-replace would overwrite content")
	}
	gap, err := doc.Slice(s.GapFrom, s.GapTo)
	if err != nil {
		return nil, stepFailed(err)
	}
	if gap.OpenStart != 0 || gap.OpenEnd != 0 {
		return nil, stepFailedf("gap is not a flat range")
	}
	inserted := s.Slice.InsertAt(s.Insert, gap.Content)
	if inserted == nil {
		return nil, stepFailedf("content does not fit in gap")
	}
	return fromReplace(doc, s.From, s.To, inserted)
}

// GetMap implements Step.
func (s *ReplaceAroundStep) GetMap() *StepMap {
	return NewStepMap(s.From, s.GapFrom-s.From, s.Insert, s.GapTo, s.To-s.GapTo, s.Slice.Size()-s.Insert)
}

// Invert implements Step.
func (s *ReplaceAroundStep) Invert(doc *model.Node) Step {
	gap := s.GapTo - s.GapFrom
	slice, err := doc.Slice(s.From, s.To)
	if err == nil {
		slice, err = slice.RemoveBetween(s.GapFrom-s.From, s.GapTo-s.From)
	}
	if err != nil {
		slice = model.EmptySlice
	}
	return NewReplaceAroundStep(s.From, s.From+s.Slice.Size()+gap, s.From+s.Insert, s.From+s.Insert+gap,
		slice, s.GapFrom-s.From, s.Structure)
}

// contentBetween reports whether there is content other than node
// boundaries between from and to.
func contentBetween(doc *model.Node, from, to int) bool {
	rFrom, err := doc.Resolve(from)
	if err != nil {
		return true
	}
	dist := to - from
	depth := rFrom.Depth
	for dist > 0 && depth > 0 && rFrom.IndexAfter(depth) == rFrom.Node(depth).ChildCount() {
		depth--
		dist--
	}
	if dist > 0 {
		next := rFrom.Node(depth).MaybeChild(rFrom.IndexAfter(depth))
		for dist > 0 {
			if next == nil || next.IsLeaf() {
				return true
			}
			next = next.FirstChild()
			dist--
		}
	}
	return false
}

// AttrStep sets one attribute of the node at Pos. An empty Value removes
// the attribute.
type AttrStep struct {
	Pos   int
	Attr  string
	Value string
}

// NewAttrStep creates an attribute step.
func NewAttrStep(pos int, attr, value string) *AttrStep {
	return &AttrStep{Pos: pos, Attr: attr, Value: value}
}

// Apply implements Step.
func (s *AttrStep) Apply(doc *model.Node) (*model.Node, error) {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return nil, stepFailed(ErrNoNode)
	}
	attrs := node.Attrs.Clone()
	if s.Value == "" {
		delete(attrs, s.Attr)
	} else {
		attrs[s.Attr] = s.Value
	}
	updated := node.Copy(model.EmptyFragment).WithAttrs(attrs)
	openEnd := 1
	if node.IsLeaf() {
		openEnd = 0
	}
	return fromReplace(doc, s.Pos, s.Pos+1, model.NewSlice(model.FragmentFrom(updated), 0, openEnd))
}

// GetMap implements Step.
func (s *AttrStep) GetMap() *StepMap { return EmptyMap }

// Invert implements Step.
func (s *AttrStep) Invert(doc *model.Node) Step {
	node := doc.NodeAt(s.Pos)
	if node == nil {
		return s
	}
	return NewAttrStep(s.Pos, s.Attr, node.Attrs[s.Attr])
}
