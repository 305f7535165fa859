package commands

import (
	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
	"github.com/dshills/markupeditor/internal/transform"
)

// Indent moves each block touched by the selection one level deeper,
// by its own context. The content of a list item sinks into a sublist of
// the enclosing list's type. Other blocks are wrapped in a blockquote,
// with neighbouring siblings sharing one. Blocks whose list item already
// moves along with an outer item are left alone.
func Indent() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		from, to, err := bounds(st)
		if err != nil {
			return nil, err
		}
		units, err := indentUnits(st.Doc, from, to.Pos)
		if err != nil {
			return nil, err
		}
		tr := newTr(st, NameIndent)
		if len(units) == 0 {
			// Nothing but leaf blocks, such as a selected image or table.
			r := from.BlockRange(to, nil)
			if r == nil {
				return nil, nil
			}
			if err := wrapIn(tr, r, st.Schema().Nodes["blockquote"], nil); err != nil {
				return nil, Wrap(CodeIndent, err, "cannot indent")
			}
			return changed(tr)
		}
		// Units are disjoint and in document order, so going backwards
		// keeps the positions of the earlier ones valid.
		for i := len(units) - 1; i >= 0; i-- {
			if err := units[i].apply(tr); err != nil {
				return nil, Wrap(CodeIndent, err, "cannot indent")
			}
		}
		return changed(tr)
	}
}

// indentUnit is a run of sibling blocks that indents as one.
type indentUnit struct {
	// item is the position of the list item whose content sinks, or -1.
	item int
	// start and end bound the blocks wrapped in a blockquote.
	start, end int
	// parent is the start of the blocks' parent content.
	parent int
}

func (u indentUnit) apply(tr *state.Transaction) error {
	if u.item >= 0 {
		r, err := contentRange(tr.Doc, u.item)
		if err != nil {
			return err
		}
		rItem, err := tr.Doc.Resolve(u.item)
		if err != nil {
			return err
		}
		return sink(tr, r, rItem.Parent())
	}
	rs, err := tr.Doc.Resolve(u.start)
	if err != nil {
		return err
	}
	re, err := tr.Doc.Resolve(u.end)
	if err != nil {
		return err
	}
	return wrapIn(tr, model.NewNodeRange(rs, re, rs.Depth), tr.Doc.Type.Schema().Nodes["blockquote"], nil)
}

// indentUnits groups the textblocks touched by [from, to) into units. A
// list item moves its whole content, so the skip set holds the items
// already taken and every block below one of them is dropped.
func indentUnits(doc *model.Node, from *model.ResolvedPos, to int) ([]indentUnit, error) {
	positions, nodes := textblocksBetween(doc, from, to)
	skip := map[int]bool{}
	var units []indentUnit
	for i, pos := range positions {
		r, err := doc.Resolve(pos)
		if err != nil {
			return nil, Internal(err)
		}
		if skipped(r, skip) {
			continue
		}
		if r.Depth > 0 && r.Parent().Type.Name == "list_item" {
			item := r.Before(r.Depth)
			skip[item] = true
			units = append(units, indentUnit{item: item})
			continue
		}
		end := pos + nodes[i].NodeSize()
		parent := r.Start(r.Depth)
		if n := len(units); n > 0 && units[n-1].item < 0 && units[n-1].parent == parent && units[n-1].end == pos {
			units[n-1].end = end
			continue
		}
		units = append(units, indentUnit{item: -1, start: pos, end: end, parent: parent})
	}
	return units, nil
}

func skipped(r *model.ResolvedPos, skip map[int]bool) bool {
	for d := 1; d <= r.Depth; d++ {
		if skip[r.Before(d)] {
			return true
		}
	}
	return false
}

// sink wraps r in a sublist shaped like list, falling back to a blockquote.
func sink(tr *state.Transaction, r *model.NodeRange, list *model.Node) error {
	if wrappers := transform.FindWrapping(r, list.Type, listAttrs(list.Type, list)); wrappers != nil {
		return tr.Wrap(r, wrappers)
	}
	return wrapIn(tr, r, tr.Doc.Type.Schema().Nodes["blockquote"], nil)
}

func wrapIn(tr *state.Transaction, r *model.NodeRange, typ *model.NodeType, attrs model.Attrs) error {
	wrappers := transform.FindWrapping(r, typ, attrs)
	if wrappers == nil {
		return nil
	}
	return tr.Wrap(r, wrappers)
}

// Outdent moves the selected blocks one level up out of the nearest
// blockquote or list item. It never crosses a table cell or div. Items of
// a top-level list become plain blocks; a selection deeper than one level
// takes several calls to flatten. When the selected blocks share no such
// ancestor, each block of their common parent is outdented by its own
// context.
func Outdent() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		tr := newTr(st, NameOutdent)
		if err := outdentBetween(tr, st.Selection.Start(), st.Selection.End()); err != nil {
			return nil, Wrap(CodeIndent, err, "cannot outdent")
		}
		return changed(tr)
	}
}

func outdentBetween(tr *state.Transaction, from, to int) error {
	rf, err := tr.Doc.Resolve(from)
	if err != nil {
		return err
	}
	rt, err := tr.Doc.Resolve(to)
	if err != nil {
		return err
	}
	r := rf.BlockRange(rt, nil)
	if r == nil {
		return nil
	}
	if done, err := outdentRange(tr, r); done || err != nil {
		return err
	}
	if r.EndIndex()-r.StartIndex() < 2 {
		return nil
	}
	// Last child first so the positions of earlier ones stay valid.
	for i := r.EndIndex() - 1; i >= r.StartIndex(); i-- {
		pos := r.From.PosAtIndex(i, r.Depth)
		lo, hi, ok := textSpan(tr.Doc, max(from, pos), min(to, pos+r.Parent().Child(i).NodeSize()))
		if !ok {
			continue
		}
		if err := outdentBetween(tr, max(from, lo), min(to, hi)); err != nil {
			return err
		}
	}
	return nil
}

// textSpan returns the content bounds of the first and last textblocks
// touched by [from, to).
func textSpan(doc *model.Node, from, to int) (lo, hi int, ok bool) {
	doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if n.Type.Name == "button" {
			return false
		}
		if n.IsTextblock() {
			if !ok {
				lo, ok = pos+1, true
			}
			hi = pos + n.NodeSize() - 1
			return false
		}
		return true
	})
	return lo, hi, ok
}

// outdentRange lifts r out of its nearest blockquote or list item and
// reports whether it found one.
func outdentRange(tr *state.Transaction, r *model.NodeRange) (bool, error) {
	for d := r.Depth; d >= 1; d-- {
		n := r.From.Node(d)
		if n.Type.Isolating {
			break
		}
		switch n.Type.Name {
		case "blockquote":
			nr := model.NewNodeRange(r.From, r.To, d)
			target, ok := transform.LiftTarget(nr)
			if !ok {
				return false, nil
			}
			return true, tr.Lift(nr, target)
		case "list_item":
			return true, liftItems(tr, model.NewNodeRange(r.From, r.To, d-1))
		}
	}
	return false, nil
}
