package commands

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// headingIDLimit caps the length of generated heading ids.
const headingIDLimit = 40

// InsertLink links the selection to url. With an empty selection the url
// itself is inserted as linked text and selected.
func InsertLink(url string) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		url = strings.TrimSpace(url)
		if url == "" {
			return nil, Errorf(CodeLink, "empty link")
		}
		tr := newTr(st, NameInsertLink)
		if err := applyLink(tr, st, url, url); err != nil {
			return nil, err
		}
		return changed(tr)
	}
}

// applyLink links the transaction's selection to href, inserting text
// when the selection is empty.
func applyLink(tr *state.Transaction, st *state.EditorState, href, text string) error {
	link := st.Schema().Marks["link"].Create(model.Attrs{"href": href})
	sel := tr.Selection()
	from, err := tr.Doc.Resolve(sel.Start())
	if err != nil {
		return Internal(err)
	}
	if !from.Parent().Type.MarksAllowed {
		return Errorf(CodeLink, "links are not allowed in %s", from.Parent().Type.Name)
	}
	if !sel.IsEmpty() {
		if err := tr.AddMark(sel.Start(), sel.End(), link); err != nil {
			return Wrap(CodeLink, err, "cannot add link")
		}
		return nil
	}
	marks := st.MarksAtSelection()
	if stored, ok := tr.StoredMarks(); ok {
		marks = stored
	}
	marks = link.AddToSet(marks)
	if err := tr.Transform.InsertText(from.Pos, text, marks); err != nil {
		return Wrap(CodeLink, err, "cannot insert link")
	}
	end := from.Pos + utf8.RuneCountInString(text)
	if err := tr.SetSelection(state.NewTextSelection(from.Pos, end)); err != nil {
		return Internal(err)
	}
	return nil
}

// LinkExtent returns the range and mark of the link run at r, preferring
// the text after r when r sits between two runs.
func LinkExtent(r *model.ResolvedPos) (int, int, *model.Mark, bool) {
	parent := r.Parent()
	if !parent.InlineContent() || parent.ChildCount() == 0 {
		return 0, 0, nil, false
	}
	linkType := parent.Type.Schema().Marks["link"]
	index := r.Index(r.Depth)
	var mark *model.Mark
	if r.TextOffset() > 0 {
		mark = linkType.IsInSet(parent.Child(index).Marks)
	} else {
		if child := parent.MaybeChild(index); child != nil {
			mark = linkType.IsInSet(child.Marks)
		}
		if mark == nil && index > 0 {
			index--
			mark = linkType.IsInSet(parent.Child(index).Marks)
		}
	}
	if mark == nil {
		return 0, 0, nil, false
	}
	start, end := index, index+1
	for start > 0 && mark.IsInSet(parent.Child(start-1).Marks) {
		start--
	}
	for end < parent.ChildCount() && mark.IsInSet(parent.Child(end).Marks) {
		end++
	}
	from := r.Start(r.Depth)
	for i := 0; i < start; i++ {
		from += parent.Child(i).NodeSize()
	}
	to := from
	for i := start; i < end; i++ {
		to += parent.Child(i).NodeSize()
	}
	return from, to, mark, true
}

// DeleteLink removes the link around the selection and selects its former
// text. A selection reaching past one link run is left alone.
func DeleteLink() Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		from, _, err := bounds(st)
		if err != nil {
			return nil, err
		}
		start, end, mark, ok := LinkExtent(from)
		if !ok || st.Selection.End() > end {
			return nil, nil
		}
		tr := newTr(st, NameDeleteLink)
		if err := tr.RemoveMark(start, end, mark); err != nil {
			return nil, Wrap(CodeLink, err, "cannot remove link")
		}
		if err := tr.SetSelection(state.NewTextSelection(start, end)); err != nil {
			return nil, Internal(err)
		}
		return tr, nil
	}
}

// Heading describes a heading that internal links can point at.
type Heading struct {
	Pos   int
	Level int
	Text  string
	ID    string
}

// Headings lists the document's headings in order.
func Headings(doc *model.Node) []Heading {
	var out []Heading
	doc.Descendants(func(n *model.Node, pos int, _ *model.Node, _ int) bool {
		if n.Type.Name == "heading" {
			out = append(out, Heading{Pos: pos, Level: n.AttrInt("level", 1), Text: n.TextContent(), ID: n.Attr("id")})
			return false
		}
		return !n.IsTextblock()
	})
	return out
}

// HeadingID derives an id from heading text: lowercased, cut to 40
// characters and hyphenated. A numeric suffix keeps it clear of taken.
func HeadingID(text string, taken map[string]bool) string {
	base := strings.ToLower(strings.TrimSpace(text))
	if utf8.RuneCountInString(base) > headingIDLimit {
		base = string([]rune(base)[:headingIDLimit])
	}
	base = strings.ReplaceAll(base, " ", "-")
	if base == "" {
		base = "heading"
	}
	id := base
	for n := 1; taken[id]; n++ {
		id = base + strconv.Itoa(n)
	}
	return id
}

// InsertInternalLink links the selection to the heading at headingPos,
// giving the heading an id first when it has none. With an empty
// selection the heading text is inserted as the link text.
func InsertInternalLink(headingPos int) Command {
	return func(st *state.EditorState) (*state.Transaction, error) {
		h := st.Doc.NodeAt(headingPos)
		if h == nil || h.Type.Name != "heading" {
			return nil, Errorf(CodeLink, "no heading at %d", headingPos)
		}
		tr := newTr(st, NameInsertLink)
		id := h.Attr("id")
		if id == "" {
			taken := map[string]bool{}
			for _, other := range Headings(st.Doc) {
				taken[other.ID] = true
			}
			id = HeadingID(h.TextContent(), taken)
			if err := tr.SetNodeAttribute(headingPos, "id", id); err != nil {
				return nil, Wrap(CodeLink, err, "cannot set heading id")
			}
		}
		text := h.TextContent()
		if text == "" {
			text = id
		}
		if err := applyLink(tr, st, "#"+id, text); err != nil {
			return nil, err
		}
		return tr, nil
	}
}
