package model

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseOptions controls how HTML is mapped onto the schema.
type ParseOptions struct {
	// KeepHostElements maps div and button elements onto div and button
	// nodes. When false, divs are unwrapped and buttons dropped.
	KeepHostElements bool
}

type parseContext struct {
	typ      *NodeType
	attrs    Attrs
	content  []*Node
	implicit bool
}

type htmlParser struct {
	schema *Schema
	opts   ParseOptions
	stack  []*parseContext
	marks  []*Mark
}

// ParseHTML parses an HTML fragment into a document.
func ParseHTML(s *Schema, src string, opts ParseOptions) (*Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	p := &htmlParser{schema: s, opts: opts}
	p.stack = []*parseContext{{typ: s.TopNode}}
	for _, n := range nodes {
		p.addDOM(n)
	}
	p.closeTo(1)
	root := p.stack[0]
	if len(root.content) == 0 {
		return s.EmptyDoc(), nil
	}
	doc := s.TopNode.Create(nil, NewFragment(root.content), nil)
	if err := doc.Check(); err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSlice parses an HTML fragment into a slice suitable for pasting.
// Textblocks at either edge are left open so their inline content can
// merge with the surrounding text.
func ParseSlice(s *Schema, src string, opts ParseOptions) (*Slice, error) {
	doc, err := ParseHTML(s, src, opts)
	if err != nil {
		return nil, err
	}
	content := doc.Content
	openStart, openEnd := 0, 0
	if first := content.FirstChild(); first != nil && first.IsTextblock() {
		openStart = 1
	}
	if last := content.LastChild(); last != nil && last.IsTextblock() {
		openEnd = 1
	}
	return NewSlice(content, openStart, openEnd), nil
}

func (p *htmlParser) top() *parseContext { return p.stack[len(p.stack)-1] }

func (p *htmlParser) addDOM(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		p.addText(n.Data)
	case html.ElementNode:
		p.addElement(n)
	case html.DocumentNode:
		p.addChildren(n)
	}
}

func (p *htmlParser) addChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.addDOM(c)
	}
}

func (p *htmlParser) addElement(n *html.Node) {
	tag := strings.ToLower(n.Data)
	if mark := p.markFor(tag, n); mark != nil {
		saved := p.marks
		p.marks = mark.AddToSet(p.marks)
		p.addChildren(n)
		p.marks = saved
		return
	}

	s := p.schema
	switch tag {
	case "script", "style", "head", "meta", "title", "template":
	case "br":
		p.addInline(s.Nodes["hard_break"].Create(nil, nil, nil))
	case "img":
		p.addInline(s.Nodes["image"].Create(Attrs{
			"src":    attr(n, "src"),
			"alt":    attr(n, "alt"),
			"width":  attr(n, "width"),
			"height": attr(n, "height"),
		}, nil, nil))
	case "span":
		if hasClass(n, "resize-handle") {
			return
		}
		p.addChildren(n)
	case "p":
		p.addBlock(n, s.Nodes["paragraph"], nil)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		p.addBlock(n, s.Nodes["heading"], Attrs{"level": tag[1:], "id": attr(n, "id")})
	case "pre":
		p.addBlock(n, s.Nodes["code_block"], nil)
	case "blockquote":
		p.addBlock(n, s.Nodes["blockquote"], nil)
	case "ul":
		p.addBlock(n, s.Nodes["bullet_list"], nil)
	case "ol":
		order := attr(n, "start")
		if _, err := strconv.Atoi(order); err != nil {
			order = "1"
		}
		p.addBlock(n, s.Nodes["ordered_list"], Attrs{"order": order})
	case "li":
		p.addBlock(n, s.Nodes["list_item"], nil)
	case "table":
		attrs := Attrs{}
		if class := attr(n, "class"); class != "" {
			attrs["class"] = class
		}
		p.addBlock(n, s.Nodes["table"], attrs)
	case "tr":
		p.addBlock(n, s.Nodes["table_row"], nil)
	case "td", "th":
		colspan := attr(n, "colspan")
		if v, err := strconv.Atoi(colspan); err != nil || v < 1 {
			colspan = "1"
		}
		typ := s.Nodes["table_cell"]
		if tag == "th" {
			typ = s.Nodes["table_header"]
		}
		p.addBlock(n, typ, Attrs{"colspan": colspan})
	case "div":
		if !p.opts.KeepHostElements {
			p.addChildren(n)
			return
		}
		editable := "true"
		if strings.EqualFold(attr(n, "contenteditable"), "false") {
			editable = "false"
		}
		p.addBlock(n, s.Nodes["div"], Attrs{"id": attr(n, "id"), "editable": editable, "cssClass": attr(n, "class")})
	case "button":
		if !p.opts.KeepHostElements {
			return
		}
		p.addBlock(n, s.Nodes["button"], Attrs{"id": attr(n, "id"), "label": attr(n, "aria-label"), "cssClass": attr(n, "class")})
	default:
		p.addChildren(n)
	}
}

func (p *htmlParser) markFor(tag string, n *html.Node) *Mark {
	s := p.schema
	switch tag {
	case "strong", "b":
		return s.Mark("bold", nil)
	case "em", "i":
		return s.Mark("italic", nil)
	case "u":
		return s.Mark("underline", nil)
	case "s", "strike", "del":
		return s.Mark("strike", nil)
	case "code":
		if p.top().typ.Name == "code_block" {
			return nil
		}
		return s.Mark("code", nil)
	case "sub":
		return s.Mark("sub", nil)
	case "sup":
		return s.Mark("sup", nil)
	case "a":
		href, ok := attrOK(n, "href")
		if !ok {
			return nil
		}
		return s.Mark("link", Attrs{"href": href})
	}
	return nil
}

// addBlock opens a context for a block element, walks its children and
// closes every context opened on the way.
func (p *htmlParser) addBlock(n *html.Node, typ *NodeType, attrs Attrs) {
	if !p.placeBlock(typ) {
		p.addChildren(n)
		return
	}
	p.stack = append(p.stack, &parseContext{typ: typ, attrs: attrs})
	depth := len(p.stack)
	p.addChildren(n)
	p.closeTo(depth - 1)
}

// placeBlock closes contexts until one accepts typ, opening an implicit
// wrapper when no ancestor does.
func (p *htmlParser) placeBlock(typ *NodeType) bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if p.stack[i].typ.Allows(typ) {
			p.closeTo(i + 1)
			return true
		}
		if !p.stack[i].implicit && !p.stack[i].typ.IsTextblock() {
			break
		}
	}
	wrapper := p.wrapperFor(typ)
	if wrapper == nil || !p.placeBlock(wrapper) {
		return false
	}
	p.stack = append(p.stack, &parseContext{typ: wrapper, implicit: true})
	return true
}

func (p *htmlParser) wrapperFor(typ *NodeType) *NodeType {
	switch typ.Name {
	case "list_item":
		return p.schema.Nodes["bullet_list"]
	case "table_row":
		return p.schema.Nodes["table"]
	case "table_cell", "table_header":
		return p.schema.Nodes["table_row"]
	case "paragraph":
		return p.schema.Nodes["list_item"]
	}
	return nil
}

func (p *htmlParser) closeTo(depth int) {
	for len(p.stack) > depth {
		ctx := p.top()
		p.stack = p.stack[:len(p.stack)-1]
		if ctx.typ.IsTextblock() && ctx.typ.Name != "code_block" {
			ctx.content = trimTrailingSpace(ctx.content)
		}
		if ctx.implicit && len(ctx.content) == 0 {
			continue
		}
		node := ctx.typ.CreateAndFill(ctx.attrs, NewFragment(ctx.content))
		parent := p.top()
		parent.content = append(parent.content, node)
	}
}

func (p *htmlParser) addInline(node *Node) {
	ctx := p.top()
	if !ctx.typ.InlineContent() {
		if !p.placeBlock(p.schema.Nodes["paragraph"]) {
			return
		}
		p.stack = append(p.stack, &parseContext{typ: p.schema.Nodes["paragraph"], implicit: true})
		ctx = p.top()
	}
	if !ctx.typ.Allows(node.Type) {
		return
	}
	if ctx.typ.MarksAllowed {
		node = node.Mark(p.marks)
	}
	ctx.content = append(ctx.content, node)
}

func (p *htmlParser) addText(text string) {
	ctx := p.top()
	if ctx.typ.Name == "code_block" {
		if text != "" {
			p.addInline(p.schema.Text(text))
		}
		return
	}
	text = collapseSpace(text)
	if !ctx.typ.InlineContent() && strings.TrimSpace(text) == "" {
		return
	}
	if ctx.typ.InlineContent() && startsFresh(ctx.content) {
		text = strings.TrimLeft(text, " ")
	} else if !ctx.typ.InlineContent() {
		text = strings.TrimLeft(text, " ")
	}
	if text == "" {
		return
	}
	p.addInline(p.schema.Text(text))
}

func startsFresh(content []*Node) bool {
	if len(content) == 0 {
		return true
	}
	last := content[len(content)-1]
	if last.IsText() {
		return strings.HasSuffix(last.Text, " ")
	}
	return last.Type.Name == "hard_break"
}

func trimTrailingSpace(content []*Node) []*Node {
	if len(content) == 0 {
		return content
	}
	last := content[len(content)-1]
	if !last.IsText() {
		return content
	}
	trimmed := strings.TrimRight(last.Text, " ")
	if trimmed == last.Text {
		return content
	}
	out := append([]*Node(nil), content[:len(content)-1]...)
	if trimmed != "" {
		out = append(out, last.withText(trimmed))
	}
	return out
}

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
