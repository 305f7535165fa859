package commands

import (
	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// Command builds a transaction from a state. A nil transaction and nil
// error means the command does not apply.
type Command func(st *state.EditorState) (*state.Transaction, error)

// Command names recorded in transaction metadata.
const (
	NameToggleFormat = "format.toggle"
	NameSetStyle     = "style.set"
	NameToggleList   = "list.toggle"
	NameIndent       = "block.indent"
	NameOutdent      = "block.outdent"
	NameInsertTable  = "table.insert"
	NameAddRow       = "table.addRow"
	NameAddCol       = "table.addCol"
	NameAddHeader    = "table.addHeader"
	NameDeleteArea   = "table.delete"
	NameBorderTable  = "table.border"
	NameInsertLink   = "link.insert"
	NameDeleteLink   = "link.delete"
	NameInsertImage  = "image.insert"
	NameModifyImage  = "image.modify"
	NameResizeImage  = "image.resize"
	NameCutImage     = "image.cut"
	NameInsertText   = "text.insert"
	NameDelete       = "text.delete"
	NameSplitBlock   = "text.split"
	NamePaste        = "text.paste"
	NameSelectAll    = "selection.all"
	NameAddDiv       = "div.add"
	NameRemoveDiv    = "div.remove"
	NameAddButton    = "button.add"
	NameRemoveButton = "button.remove"
)

func newTr(st *state.EditorState, name string) *state.Transaction {
	tr := st.Tr()
	tr.SetMeta(state.MetaCommand, name)
	return tr
}

// bounds returns the resolved selection bounds.
func bounds(st *state.EditorState) (*model.ResolvedPos, *model.ResolvedPos, error) {
	from, err := st.Doc.Resolve(st.Selection.Start())
	if err != nil {
		return nil, nil, Internal(err)
	}
	to, err := st.Doc.Resolve(st.Selection.End())
	if err != nil {
		return nil, nil, Internal(err)
	}
	return from, to, nil
}

func isList(n *model.Node) bool {
	return n.Type.InGroup("list")
}

func isType(name string) func(*model.Node) bool {
	return func(n *model.Node) bool { return n.Type.Name == name }
}

// isHost reports whether n is host scaffolding that commands leave alone.
func isHost(n *model.Node) bool {
	return n.Type.Name == "div" || n.Type.Name == "button"
}

// onPath reports whether node is an ancestor of r.
func onPath(r *model.ResolvedPos, node *model.Node) bool {
	for d := 0; d <= r.Depth; d++ {
		if r.Node(d) == node {
			return true
		}
	}
	return false
}

// textblocksBetween returns the positions and nodes of the textblocks
// touched by [from, to). Divs off the path of from and every button are
// skipped.
func textblocksBetween(doc *model.Node, from *model.ResolvedPos, to int) ([]int, []*model.Node) {
	var positions []int
	var nodes []*model.Node
	doc.NodesBetween(from.Pos, to, func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if n.Type.Name == "button" {
			return false
		}
		if n.Type.Name == "div" && !onPath(from, n) {
			return false
		}
		if n.IsTextblock() {
			positions = append(positions, pos)
			nodes = append(nodes, n)
			return false
		}
		return true
	})
	return positions, nodes
}

// nodeRangeAround returns the range covering the single child of parent
// at pos.
func nodeRangeAround(doc *model.Node, pos int) (*model.NodeRange, error) {
	node := doc.NodeAt(pos)
	if node == nil {
		return nil, Errorf(CodeInternal, "no node at %d", pos)
	}
	from, err := doc.Resolve(pos)
	if err != nil {
		return nil, Internal(err)
	}
	to, err := doc.Resolve(pos + node.NodeSize())
	if err != nil {
		return nil, Internal(err)
	}
	return model.NewNodeRange(from, to, from.Depth), nil
}

// contentRange returns the range covering all children of the node at pos.
func contentRange(doc *model.Node, pos int) (*model.NodeRange, error) {
	node := doc.NodeAt(pos)
	if node == nil || node.ChildCount() == 0 {
		return nil, Errorf(CodeInternal, "no container at %d", pos)
	}
	from, err := doc.Resolve(pos + 1)
	if err != nil {
		return nil, Internal(err)
	}
	to, err := doc.Resolve(pos + node.NodeSize() - 1)
	if err != nil {
		return nil, Internal(err)
	}
	return model.NewNodeRange(from, to, from.Depth), nil
}
