package transform

import (
	"fmt"

	"github.com/dshills/markupeditor/internal/model"
)

// Wrapper is a node type and attributes used to wrap a range.
type Wrapper struct {
	Type  *model.NodeType
	Attrs model.Attrs
}

func canCut(node *model.Node, start, end int) bool {
	return (start == 0 || node.CanReplace(start, node.ChildCount(), model.EmptyFragment)) &&
		(end == node.ChildCount() || node.CanReplace(0, end, model.EmptyFragment))
}

// LiftTarget returns the depth the range can be lifted to, or false when
// it cannot be lifted. Isolating nodes stop the search.
func LiftTarget(r *model.NodeRange) (int, bool) {
	parent := r.Parent()
	content := parent.Content.CutByIndex(r.StartIndex(), r.EndIndex())
	for depth := r.Depth; ; depth-- {
		node := r.From.Node(depth)
		index, endIndex := r.From.Index(depth), r.To.IndexAfter(depth)
		if depth < r.Depth && node.CanReplace(index, endIndex, content) {
			return depth, true
		}
		if depth == 0 || node.Type.Isolating || !canCut(node, index, endIndex) {
			break
		}
	}
	return 0, false
}

// Lift moves the range out of its ancestors up to target depth, splitting
// ancestors that have content before or after the range.
func (t *Transform) Lift(r *model.NodeRange, target int) error {
	from, to, depth := r.From, r.To, r.Depth
	gapStart, gapEnd := from.Before(depth+1), to.After(depth+1)
	start, end := gapStart, gapEnd

	before, openStart := model.EmptyFragment, 0
	splitting := false
	for d := depth; d > target; d-- {
		if splitting || from.Index(d) > 0 {
			splitting = true
			before = model.FragmentFrom(from.Node(d).Copy(before))
			openStart++
		} else {
			start--
		}
	}
	after, openEnd := model.EmptyFragment, 0
	splitting = false
	for d := depth; d > target; d-- {
		if splitting || to.After(d+1) < to.End(d) {
			splitting = true
			after = model.FragmentFrom(to.Node(d).Copy(after))
			openEnd++
		} else {
			end++
		}
	}
	slice := model.NewSlice(before.Append(after), openStart, openEnd)
	return t.Step(NewReplaceAroundStep(start, end, gapStart, gapEnd, slice, before.Size()-openStart, true))
}

// FindWrapping returns the wrappers needed to wrap the range in typ, or
// nil when the range's parent cannot hold typ. When typ cannot hold the
// range's nodes directly, an inner wrapper of typ's first allowed type is
// added.
func FindWrapping(r *model.NodeRange, typ *model.NodeType, attrs model.Attrs) []Wrapper {
	parent := r.Parent()
	if !parent.Type.Allows(typ) {
		return nil
	}
	wrappers := []Wrapper{{Type: typ, Attrs: attrs}}
	if allowsAll(typ, parent, r.StartIndex(), r.EndIndex()) {
		return wrappers
	}
	schema := typ.Schema()
	for _, name := range typ.Content.Allow {
		inner, ok := schema.Nodes[name]
		if !ok || inner.Leaf {
			continue
		}
		if allowsAll(inner, parent, r.StartIndex(), r.EndIndex()) {
			return append(wrappers, Wrapper{Type: inner})
		}
	}
	return nil
}

func allowsAll(typ *model.NodeType, parent *model.Node, start, end int) bool {
	for i := start; i < end; i++ {
		if !typ.Allows(parent.Child(i).Type) {
			return false
		}
	}
	return true
}

// Wrap wraps the range in the given wrappers, outermost first.
func (t *Transform) Wrap(r *model.NodeRange, wrappers []Wrapper) error {
	content := model.EmptyFragment
	for i := len(wrappers) - 1; i >= 0; i-- {
		if content.Size() > 0 && !wrappers[i].Type.Allows(content.FirstChild().Type) {
			return fmt.Errorf("%w: %s cannot hold %s", ErrInvalidWrapper, wrappers[i].Type.Name, content.FirstChild().Type.Name)
		}
		content = model.FragmentFrom(wrappers[i].Type.Create(wrappers[i].Attrs, content, nil))
	}
	start, end := r.Start(), r.End()
	return t.Step(NewReplaceAroundStep(start, end, start, end, model.NewSlice(content, 0, 0), len(wrappers), true))
}
