package commands

import (
	"strings"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// DivSpec describes a div to add.
type DivSpec struct {
	ID       string
	ParentID string
	CSSClass string
	Editable bool
	// HTML is the initial content. Empty means one empty paragraph.
	HTML string
}

// ButtonSpec describes a button to add to a div.
type ButtonSpec struct {
	ID       string
	DivID    string
	Label    string
	CSSClass string
}

// FindByID returns the position and node of the first node of the named
// type whose id attribute is id.
func FindByID(doc *model.Node, typeName, id string) (int, *model.Node, bool) {
	pos, found := -1, (*model.Node)(nil)
	doc.Descendants(func(n *model.Node, at int, _ *model.Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Type.Name == typeName && n.Attr("id") == id {
			pos, found = at, n
			return false
		}
		return !n.IsTextblock()
	})
	return pos, found, found != nil
}

// deleteNode removes the node at pos. When its parent would be left
// invalid, an empty paragraph takes its place.
func deleteNode(tr *state.Transaction, pos int, node *model.Node) error {
	r, err := tr.Doc.Resolve(pos)
	if err != nil {
		return err
	}
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.CanReplace(index, index+1, model.EmptyFragment) {
		return tr.Delete(pos, pos+node.NodeSize())
	}
	return tr.ReplaceWith(pos, pos+node.NodeSize(), tr.Doc.Type.Schema().Node("paragraph", nil))
}

// AddDiv appends a div to the end of the document, or to the end of the
// div named by ParentID.
func AddDiv(spec DivSpec) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if strings.TrimSpace(spec.ID) == "" {
			return nil, Errorf(CodeDiv, "div needs an id")
		}
		if _, _, ok := FindByID(st.Doc, "div", spec.ID); ok {
			return nil, Errorf(CodeDiv, "duplicate div id %q", spec.ID)
		}
		s := st.Schema()
		content := model.FragmentFrom(s.Node("paragraph", nil))
		if spec.HTML != "" {
			parsed, err := model.ParseHTML(s, spec.HTML, model.ParseOptions{})
			if err != nil {
				return nil, Wrap(CodeParse, err, "cannot parse div content")
			}
			content = parsed.Content
		}
		editable := "false"
		if spec.Editable {
			editable = "true"
		}
		attrs := model.Attrs{"id": spec.ID, "editable": editable, "cssClass": spec.CSSClass}
		div, err := s.Nodes["div"].CreateChecked(attrs, content, nil)
		if err != nil {
			return nil, Wrap(CodeDiv, err, "invalid div content")
		}

		at := st.Doc.Content.Size()
		if spec.ParentID != "" {
			pos, parent, ok := FindByID(st.Doc, "div", spec.ParentID)
			if !ok {
				return nil, Errorf(CodeDiv, "no div %q", spec.ParentID)
			}
			at = pos + parent.NodeSize() - 1
		}
		tr := newTr(st, NameAddDiv)
		if err := tr.Insert(at, div); err != nil {
			return nil, Wrap(CodeDiv, err, "cannot add div")
		}
		return tr, nil
	}
}

// RemoveDiv removes the div with the given id and everything in it.
func RemoveDiv(id string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		pos, div, ok := FindByID(st.Doc, "div", id)
		if !ok {
			return nil, Errorf(CodeDiv, "no div %q", id)
		}
		tr := newTr(st, NameRemoveDiv)
		if err := deleteNode(tr, pos, div); err != nil {
			return nil, Wrap(CodeDiv, err, "cannot remove div")
		}
		return tr, nil
	}
}

// AddButton appends a button to a div. The label defaults to the id.
func AddButton(spec ButtonSpec) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		if strings.TrimSpace(spec.ID) == "" {
			return nil, Errorf(CodeDiv, "button needs an id")
		}
		if _, _, ok := FindByID(st.Doc, "button", spec.ID); ok {
			return nil, Errorf(CodeDiv, "duplicate button id %q", spec.ID)
		}
		pos, div, ok := FindByID(st.Doc, "div", spec.DivID)
		if !ok {
			return nil, Errorf(CodeDiv, "no div %q", spec.DivID)
		}
		s := st.Schema()
		label := spec.Label
		if label == "" {
			label = spec.ID
		}
		attrs := model.Attrs{"id": spec.ID, "label": label, "cssClass": spec.CSSClass}
		button := s.Nodes["button"].Create(attrs, model.FragmentFrom(s.Text(label)), nil)
		tr := newTr(st, NameAddButton)
		if err := tr.Insert(pos+div.NodeSize()-1, button); err != nil {
			return nil, Wrap(CodeDiv, err, "cannot add button")
		}
		return tr, nil
	}
}

// RemoveButton removes the button with the given id.
func RemoveButton(id string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		pos, button, ok := FindByID(st.Doc, "button", id)
		if !ok {
			return nil, Errorf(CodeDiv, "no button %q", id)
		}
		tr := newTr(st, NameRemoveButton)
		if err := deleteNode(tr, pos, button); err != nil {
			return nil, Wrap(CodeDiv, err, "cannot remove button")
		}
		return tr, nil
	}
}

// DivIDAt returns the id of the innermost div holding pos, or "".
func DivIDAt(doc *model.Node, pos int) string {
	r, err := doc.Resolve(pos)
	if err != nil {
		return ""
	}
	n, _ := state.InnermostOfType(r, doc.Type.Schema().Nodes["div"])
	if n == nil {
		return ""
	}
	return n.Attr("id")
}

// DivEditable reports whether the div holding pos accepts edits. Content
// outside any div is editable.
func DivEditable(doc *model.Node, pos int) bool {
	r, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	for d := r.Depth; d > 0; d-- {
		if n := r.Node(d); n.Type.Name == "div" && n.Attr("editable") == "false" {
			return false
		}
	}
	return true
}

// SpansDivs reports whether anchor and head lie in different divs. When
// they do, common is the id of the innermost div holding both, or "".
func SpansDivs(doc *model.Node, anchor, head int) (common string, spans bool) {
	ra, err := doc.Resolve(anchor)
	if err != nil {
		return "", false
	}
	rh, err := doc.Resolve(head)
	if err != nil {
		return "", false
	}
	if divStart(ra) == divStart(rh) {
		return "", false
	}
	for d := ra.SharedDepth(head); d > 0; d-- {
		if n := ra.Node(d); n.Type.Name == "div" {
			return n.Attr("id"), true
		}
	}
	return "", true
}

// divStart returns the position before the innermost div holding r, or -1.
func divStart(r *model.ResolvedPos) int {
	for d := r.Depth; d > 0; d-- {
		if r.Node(d).Type.Name == "div" {
			return r.Before(d)
		}
	}
	return -1
}
