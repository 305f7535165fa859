package model

import (
	"strings"

	"golang.org/x/net/html"
)

// SerializeOptions controls HTML output.
type SerializeOptions struct {
	// Pretty puts each block on its own line, indented by nesting depth.
	Pretty bool
	// Indent is the per-level indentation used when Pretty is set.
	Indent string
	// Clean omits presentation-only markup such as image resize handles.
	Clean bool
}

var resizeHandles = []string{"nw", "ne", "sw", "se"}

// Serialize renders the children of node as an HTML fragment.
func Serialize(node *Node, opts SerializeOptions) string {
	return SerializeFragment(node.Content, opts)
}

// SerializeFragment renders a fragment as HTML.
func SerializeFragment(f *Fragment, opts SerializeOptions) string {
	if opts.Pretty && opts.Indent == "" {
		opts.Indent = "  "
	}
	w := &htmlWriter{opts: opts}
	if f.ChildCount() > 0 && f.FirstChild().IsInline() {
		w.writeInline(f)
	} else {
		w.writeBlocks(f, 0)
	}
	return strings.TrimRight(w.b.String(), "\n")
}

type htmlWriter struct {
	b    strings.Builder
	opts SerializeOptions
}

func (w *htmlWriter) line(level int) {
	if w.opts.Pretty {
		w.b.WriteString(strings.Repeat(w.opts.Indent, level))
	}
}

func (w *htmlWriter) endLine() {
	if w.opts.Pretty {
		w.b.WriteByte('\n')
	}
}

func (w *htmlWriter) writeBlocks(f *Fragment, level int) {
	f.ForEach(func(child *Node, _, _ int) {
		w.writeBlock(child, level)
	})
}

func (w *htmlWriter) writeBlock(n *Node, level int) {
	tag, attrs := blockTag(n)
	w.line(level)
	w.openTag(tag, attrs)
	switch {
	case n.Type.Name == "code_block":
		w.b.WriteString("<code>")
		w.b.WriteString(html.EscapeString(n.TextContent()))
		w.b.WriteString("</code>")
	case n.InlineContent():
		w.writeInline(n.Content)
	default:
		w.endLine()
		w.writeBlocks(n.Content, level+1)
		w.line(level)
	}
	w.b.WriteString("</" + tag + ">")
	w.endLine()
}

func (w *htmlWriter) writeInline(f *Fragment) {
	var active []*Mark
	f.ForEach(func(child *Node, _, _ int) {
		keep := 0
		for keep < len(active) && keep < len(child.Marks) && active[keep].Eq(child.Marks[keep]) {
			keep++
		}
		for i := len(active) - 1; i >= keep; i-- {
			w.b.WriteString("</" + markTag(active[i]) + ">")
		}
		for _, m := range child.Marks[keep:] {
			w.openTag(markTag(m), markAttrs(m))
		}
		active = child.Marks
		w.writeLeaf(child)
	})
	for i := len(active) - 1; i >= 0; i-- {
		w.b.WriteString("</" + markTag(active[i]) + ">")
	}
}

func (w *htmlWriter) writeLeaf(n *Node) {
	switch n.Type.Name {
	case "text":
		w.b.WriteString(html.EscapeString(n.Text))
	case "hard_break":
		w.b.WriteString("<br>")
	case "image":
		attrs := [][2]string{{"src", n.Attr("src")}}
		for _, k := range []string{"alt", "width", "height"} {
			if v := n.Attr(k); v != "" {
				attrs = append(attrs, [2]string{k, v})
			}
		}
		if w.opts.Clean {
			w.openTag("img", attrs)
			return
		}
		w.openTag("span", [][2]string{{"class", "resize-container"}})
		w.openTag("img", attrs)
		for _, h := range resizeHandles {
			w.openTag("span", [][2]string{{"class", "resize-handle resize-handle-" + h}})
			w.b.WriteString("</span>")
		}
		w.b.WriteString("</span>")
	}
}

func (w *htmlWriter) openTag(tag string, attrs [][2]string) {
	w.b.WriteByte('<')
	w.b.WriteString(tag)
	for _, a := range attrs {
		w.b.WriteByte(' ')
		w.b.WriteString(a[0])
		w.b.WriteString(`="`)
		w.b.WriteString(html.EscapeString(a[1]))
		w.b.WriteByte('"')
	}
	w.b.WriteByte('>')
}

func blockTag(n *Node) (string, [][2]string) {
	switch n.Type.Name {
	case "paragraph":
		return "p", nil
	case "heading":
		var attrs [][2]string
		if id := n.Attr("id"); id != "" {
			attrs = append(attrs, [2]string{"id", id})
		}
		return "h" + n.Attr("level"), attrs
	case "code_block":
		return "pre", nil
	case "blockquote":
		return "blockquote", nil
	case "bullet_list":
		return "ul", nil
	case "ordered_list":
		if order := n.Attr("order"); order != "" && order != "1" {
			return "ol", [][2]string{{"start", order}}
		}
		return "ol", nil
	case "list_item":
		return "li", nil
	case "table":
		return "table", [][2]string{{"class", n.Attr("class")}}
	case "table_row":
		return "tr", nil
	case "table_cell", "table_header":
		tag := "td"
		if n.Type.Name == "table_header" {
			tag = "th"
		}
		if span := n.Attr("colspan"); span != "" && span != "1" {
			return tag, [][2]string{{"colspan", span}}
		}
		return tag, nil
	case "div":
		var attrs [][2]string
		if id := n.Attr("id"); id != "" {
			attrs = append(attrs, [2]string{"id", id})
		}
		if class := n.Attr("cssClass"); class != "" {
			attrs = append(attrs, [2]string{"class", class})
		}
		return "div", append(attrs, [2]string{"contenteditable", n.Attr("editable")})
	case "button":
		attrs := [][2]string{{"type", "button"}}
		if id := n.Attr("id"); id != "" {
			attrs = append(attrs, [2]string{"id", id})
		}
		if class := n.Attr("cssClass"); class != "" {
			attrs = append(attrs, [2]string{"class", class})
		}
		if label := n.Attr("label"); label != "" {
			attrs = append(attrs, [2]string{"aria-label", label})
		}
		return "button", attrs
	}
	return n.Type.Name, nil
}

func markTag(m *Mark) string {
	switch m.Type.Name {
	case "bold":
		return "strong"
	case "italic":
		return "em"
	case "underline":
		return "u"
	case "strike":
		return "s"
	case "link":
		return "a"
	}
	return m.Type.Name
}

func markAttrs(m *Mark) [][2]string {
	if m.Type.Name == "link" {
		return [][2]string{{"href", m.Attrs["href"]}}
	}
	return nil
}
