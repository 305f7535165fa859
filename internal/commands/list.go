package commands

import (
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
	"github.com/dshills/markupeditor/internal/transform"
)

// List tags accepted by ToggleList.
const (
	ListBullet  = "UL"
	ListOrdered = "OL"
)

func listType(s *model.Schema, tag string) (*model.NodeType, error) {
	switch strings.ToUpper(tag) {
	case ListBullet:
		return s.Nodes["bullet_list"], nil
	case ListOrdered:
		return s.Nodes["ordered_list"], nil
	}
	return nil, unknown(CodeList, "list type", tag, listTags)
}

// ListTag returns "UL" or "OL" for a list node, or "".
func ListTag(n *model.Node) string {
	switch n.Type.Name {
	case "bullet_list":
		return ListBullet
	case "ordered_list":
		return ListOrdered
	}
	return ""
}

// ToggleList toggles a list of the given type ("UL" or "OL") around the
// selection.
//
// Inside a list whose lists are all of the requested type, the selected
// items move up one level (out of the list at the top level). Inside a
// list of the other type, or a list holding sublists of both types, the
// lowest common list and the lists below it in the selection are retyped.
// A selection mixing list and non-list blocks turns everything into one
// list of the type. Otherwise the selected blocks are wrapped in a new
// list with one item per block.
func ToggleList(tag string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		typ, err := listType(st.Schema(), tag)
		if err != nil {
			return nil, err
		}
		from, to, err := bounds(st)
		if err != nil {
			return nil, err
		}
		tr := newTr(st, NameToggleList)

		if r := from.BlockRange(to, isList); r != nil && !isolatedBelow(from, r.Depth) {
			listPos := r.From.Before(r.Depth)
			if listsAllOfType(st.Doc, listPos, from.Pos, to.Pos, typ) {
				err = liftItems(tr, r)
			} else {
				err = retypeLists(tr, listPos, from.Pos, to.Pos, typ)
			}
			if err != nil {
				return nil, Wrap(CodeList, err, "cannot change list")
			}
			return changed(tr)
		}

		r := from.BlockRange(to, nil)
		if r == nil {
			return nil, nil
		}
		if rangeHasList(r) {
			err = mergeIntoList(tr, r, from.Pos, to.Pos, typ)
		} else {
			err = wrapInList(tr, r, typ)
		}
		if err != nil {
			return nil, Wrap(CodeList, err, "cannot make list")
		}
		return changed(tr)
	}
}

// changed returns tr when it modified the document and nil otherwise.
func changed(tr *state.Transaction) (*state.Transaction, error) {
	if !tr.DocChanged() {
		return nil, nil
	}
	return tr, nil
}

// isolatedBelow reports whether an isolating node (table cell, div) lies
// between depth and the position, so the ancestor at depth belongs to
// another region.
func isolatedBelow(r *model.ResolvedPos, depth int) bool {
	for d := depth + 1; d <= r.Depth; d++ {
		if r.Node(d).Type.Isolating {
			return true
		}
	}
	return false
}

func listAttrs(typ *model.NodeType, old *model.Node) model.Attrs {
	if typ.Name == "ordered_list" && old != nil && old.Type == typ {
		return old.Attrs
	}
	return nil
}

// listsAllOfType reports whether the list at listPos and every list below
// it touched by [from, to) have type typ.
func listsAllOfType(doc *model.Node, listPos, from, to int, typ *model.NodeType) bool {
	all := true
	doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if pos >= listPos && isList(n) && n.Type != typ {
			all = false
		}
		return all
	})
	return all
}

func rangeHasList(r *model.NodeRange) bool {
	for i := r.StartIndex(); i < r.EndIndex(); i++ {
		if isList(r.Parent().Child(i)) {
			return true
		}
	}
	return false
}

// retypeLists changes the type of the list at listPos and of the lists
// below it touched by [from, to). Items are shared by both list types so
// the content stays valid.
func retypeLists(tr *state.Transaction, listPos, from, to int, typ *model.NodeType) error {
	var positions []int
	tr.Doc.NodesBetween(from, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if pos >= listPos && isList(n) && n.Type != typ {
			positions = append(positions, pos)
		}
		return true
	})
	for _, pos := range positions {
		if err := tr.SetNodeMarkup(tr.Mapping.Map(pos, 1), typ, listAttrs(typ, nil), nil); err != nil {
			return err
		}
	}
	return nil
}

// liftItems moves the list items in r, whose parent is a list, up one
// level. Items of a nested list join the enclosing list. Items of a
// top-level list are unwrapped into their content, last item first so
// earlier positions stay valid. A top-level item holding a sublist keeps
// that sublist, so fully flattening it takes a second call.
func liftItems(tr *state.Transaction, r *model.NodeRange) error {
	if r.Depth > 0 && r.From.Node(r.Depth-1).Type.Name == "list_item" {
		target, ok := transform.LiftTarget(r)
		if !ok {
			return nil
		}
		return tr.Lift(r, target)
	}
	for i := r.EndIndex() - 1; i >= r.StartIndex(); i-- {
		cr, err := contentRange(tr.Doc, r.From.PosAtIndex(i, r.Depth))
		if err != nil {
			return err
		}
		target, ok := transform.LiftTarget(cr)
		if !ok {
			continue
		}
		if err := tr.Lift(cr, target); err != nil {
			return err
		}
	}
	return nil
}

// wrapInList wraps the blocks of r in a new list and gives each block its
// own item.
func wrapInList(tr *state.Transaction, r *model.NodeRange, typ *model.NodeType) error {
	wrappers := transform.FindWrapping(r, typ, nil)
	if wrappers == nil {
		return nil
	}
	start := r.Start()
	var boundaries []int
	pos := start + len(wrappers)
	for i := r.StartIndex(); i < r.EndIndex(); i++ {
		if i > r.StartIndex() {
			boundaries = append(boundaries, pos)
		}
		pos += r.Parent().Child(i).NodeSize()
	}
	if err := tr.Wrap(r, wrappers); err != nil {
		return err
	}
	if len(wrappers) < 2 {
		return nil
	}
	for i := len(boundaries) - 1; i >= 0; i-- {
		if err := tr.Split(boundaries[i], 1); err != nil {
			return err
		}
	}
	return nil
}

// mergeIntoList handles a range mixing lists and other blocks: lists are
// retyped, other blocks get wrapped, then neighbouring lists are joined.
func mergeIntoList(tr *state.Transaction, r *model.NodeRange, from, to int, typ *model.NodeType) error {
	if err := retypeLists(tr, r.Start(), from, to, typ); err != nil {
		return err
	}
	for i := r.EndIndex() - 1; i >= r.StartIndex(); i-- {
		if isList(r.Parent().Child(i)) {
			continue
		}
		nr, err := nodeRangeAround(tr.Doc, tr.Mapping.Map(r.From.PosAtIndex(i, r.Depth), 1))
		if err != nil {
			return err
		}
		if err := wrapInList(tr, nr, typ); err != nil {
			return err
		}
	}
	return joinLists(tr, r.Start(), tr.Mapping.Map(r.End(), 1), r.Depth, typ)
}

// joinLists joins adjacent lists of type typ among the children of the
// node at depth between start and end.
func joinLists(tr *state.Transaction, start, end, depth int, typ *model.NodeType) error {
	rs, err := tr.Doc.Resolve(start)
	if err != nil {
		return err
	}
	parent := rs.Node(depth)
	var joins []int
	pos := start
	for i := rs.Index(depth); i+1 < parent.ChildCount(); i++ {
		pos += parent.Child(i).NodeSize()
		if pos >= end {
			break
		}
		if parent.Child(i).Type == typ && parent.Child(i+1).Type == typ {
			joins = append(joins, pos)
		}
	}
	for i := len(joins) - 1; i >= 0; i-- {
		if !transform.CanJoin(tr.Doc, joins[i]) {
			continue
		}
		if err := tr.Join(joins[i], 1); err != nil {
			return err
		}
	}
	return nil
}

// ListTypeAt returns the tag of the innermost list holding the selection
// start, or "".
func ListTypeAt(st *state.EditorState) string {
	from, err := st.Doc.Resolve(st.Selection.Start())
	if err != nil {
		return ""
	}
	n, depth := state.FindAncestor(from, isList)
	if n == nil || isolatedBelow(from, depth) {
		return ""
	}
	return ListTag(n)
}
