package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Node is an immutable element of a document tree.
//
// Text nodes hold their characters in Text and have no children. All other
// nodes hold children in Content. Marks are only meaningful on inline nodes.
type Node struct {
	Type    *NodeType
	Attrs   Attrs
	Content *Fragment
	Text    string
	Marks   []*Mark

	textLen int
}

// IsText reports whether the node is a text node.
func (n *Node) IsText() bool { return n.Type.IsText() }

// IsBlock reports whether the node is a block node.
func (n *Node) IsBlock() bool { return n.Type.IsBlock() }

// IsInline reports whether the node is an inline node.
func (n *Node) IsInline() bool { return n.Type.Inline }

// IsTextblock reports whether the node is a block holding inline content.
func (n *Node) IsTextblock() bool { return n.Type.IsTextblock() }

// IsLeaf reports whether the node can have no children.
func (n *Node) IsLeaf() bool { return n.Type.Leaf }

// IsAtom reports whether the node is treated as a single unit.
func (n *Node) IsAtom() bool { return n.Type.Leaf }

// InlineContent reports whether the node's children are inline.
func (n *Node) InlineContent() bool { return n.Type.InlineContent() }

// NodeSize returns the number of position tokens the node occupies.
func (n *Node) NodeSize() int {
	if n.IsText() {
		return n.textLen
	}
	if n.Type.Leaf {
		return 1
	}
	return n.Content.Size() + 2
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return n.Content.ChildCount() }

// Child returns the child at index.
func (n *Node) Child(index int) *Node { return n.Content.Child(index) }

// MaybeChild returns the child at index, or nil.
func (n *Node) MaybeChild(index int) *Node { return n.Content.MaybeChild(index) }

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.Content.FirstChild() }

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node { return n.Content.LastChild() }

// Attr returns an attribute value.
func (n *Node) Attr(name string) string { return n.Attrs[name] }

// AttrInt returns an attribute parsed as an integer, or def when it is
// missing or malformed.
func (n *Node) AttrInt(name string, def int) int {
	v, err := strconv.Atoi(n.Attrs[name])
	if err != nil {
		return def
	}
	return v
}

// Copy returns a node with the same markup and different content.
func (n *Node) Copy(content *Fragment) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if content == n.Content {
		return n
	}
	return &Node{Type: n.Type, Attrs: n.Attrs, Content: content, Marks: n.Marks}
}

// Mark returns a node with the given mark set.
func (n *Node) Mark(marks []*Mark) *Node {
	if SameMarkSet(marks, n.Marks) {
		return n
	}
	c := *n
	c.Marks = normalizeMarks(marks)
	return &c
}

// WithAttrs returns a node with the given attributes.
func (n *Node) WithAttrs(attrs Attrs) *Node {
	c := *n
	c.Attrs = n.Type.ComputeAttrs(attrs)
	return &c
}

func (n *Node) withText(text string) *Node {
	if text == n.Text {
		return n
	}
	c := *n
	c.Text = text
	c.textLen = runeCount(text)
	return &c
}

// Cut returns the part of the node between two offsets into its content.
// For text nodes the offsets are character offsets.
func (n *Node) Cut(from, to int) *Node {
	if n.IsText() {
		if from == 0 && to == n.textLen {
			return n
		}
		return n.withText(runeSlice(n.Text, from, to))
	}
	if from == 0 && to == n.Content.Size() {
		return n
	}
	return n.Copy(n.Content.Cut(from, to))
}

// TextContent returns the concatenated text of the node.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	return n.Content.TextBetween(0, n.Content.Size(), "", "")
}

// TextBetween returns the text between two positions inside the node.
func (n *Node) TextBetween(from, to int, blockSep, leafText string) string {
	return n.Content.TextBetween(from, to, blockSep, leafText)
}

// NodesBetween calls fn for every descendant overlapping [from, to).
func (n *Node) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.Content.NodesBetween(from, to, fn, 0, n)
}

// Descendants calls fn for every descendant of the node.
func (n *Node) Descendants(fn func(node *Node, pos int, parent *Node, index int) bool) {
	n.NodesBetween(0, n.Content.Size(), fn)
}

// NodeAt returns the node starting at pos, or nil.
func (n *Node) NodeAt(pos int) *Node {
	node := n
	for {
		if pos < 0 || pos > node.Content.Size() {
			return nil
		}
		index, offset := node.Content.FindIndex(pos, -1)
		node = node.Content.MaybeChild(index)
		if node == nil {
			return nil
		}
		if offset == pos || node.IsText() {
			return node
		}
		pos -= offset + 1
	}
}

// Eq reports whether two nodes are structurally equal.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if !n.SameMarkup(other) {
		return false
	}
	if n.IsText() {
		return n.Text == other.Text
	}
	return n.Content.Eq(other.Content)
}

// SameMarkup reports whether two nodes share type, attributes and marks.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup reports whether the node has the given type, attributes and
// marks.
func (n *Node) HasMarkup(t *NodeType, attrs Attrs, marks []*Mark) bool {
	if n.Type != t {
		return false
	}
	if !n.Attrs.Eq(t.ComputeAttrs(attrs)) {
		return false
	}
	return SameMarkSet(n.Marks, marks)
}

// CanReplace reports whether replacing the children in [from, to) with
// replacement leaves valid content.
func (n *Node) CanReplace(from, to int, replacement *Fragment) bool {
	nodes := make([]*Node, 0, n.ChildCount()+replacement.ChildCount())
	nodes = append(nodes, n.Content.nodes[:from]...)
	nodes = append(nodes, replacement.nodes...)
	nodes = append(nodes, n.Content.nodes[to:]...)
	return n.Type.ValidContent(NewFragment(nodes))
}

// CanAppend reports whether other's content may be appended to this node.
func (n *Node) CanAppend(other *Node) bool {
	return n.CanReplace(n.ChildCount(), n.ChildCount(), other.Content)
}

// Check validates the node and its descendants against the schema.
func (n *Node) Check() error {
	if n.IsText() {
		if n.Text == "" {
			return &ContentError{Type: "text", Reason: "empty text node"}
		}
		return nil
	}
	if err := n.Type.checkContent(n.Content); err != nil {
		return err
	}
	for _, c := range n.Content.nodes {
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

// Slice returns the content between two positions as a slice.
func (n *Node) Slice(from, to int) (*Slice, error) {
	if from == to {
		return EmptySlice, nil
	}
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	depth := rFrom.SharedDepth(to)
	start := rFrom.Start(depth)
	node := rFrom.Node(depth)
	content := node.Content.Cut(rFrom.Pos-start, rTo.Pos-start)
	return NewSlice(content, rFrom.Depth-depth, rTo.Depth-depth), nil
}

// Replace returns a new node with the range [from, to) replaced by slice.
func (n *Node) Replace(from, to int, slice *Slice) (*Node, error) {
	rFrom, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	rTo, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return replace(rFrom, rTo, slice)
}

// Resolve resolves a position in the document.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) {
	return resolve(n, pos)
}

// MustResolve resolves a position and panics when it is out of range.
func (n *Node) MustResolve(pos int) *ResolvedPos {
	r, err := resolve(n, pos)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns a debug representation of the node.
func (n *Node) String() string {
	if n.IsText() {
		s := strconv.Quote(n.Text)
		for i := len(n.Marks) - 1; i >= 0; i-- {
			s = n.Marks[i].Type.Name + "(" + s + ")"
		}
		return s
	}
	var b strings.Builder
	b.WriteString(n.Type.Name)
	if n.Content.ChildCount() > 0 {
		parts := make([]string, n.ChildCount())
		for i, c := range n.Content.nodes {
			parts[i] = c.String()
		}
		fmt.Fprintf(&b, "(%s)", strings.Join(parts, ", "))
	}
	return b.String()
}

func runeCount(s string) int {
	return utf8.RuneCountInString(s)
}

// runeSlice returns the characters of s in [from, to).
func runeSlice(s string, from, to int) string {
	if from <= 0 && to >= len(s) && to >= runeCount(s) {
		return s
	}
	start, end := -1, len(s)
	i := 0
	for bi := range s {
		if i == from {
			start = bi
		}
		if i == to {
			end = bi
			break
		}
		i++
	}
	if start < 0 {
		return ""
	}
	return s[start:end]
}
