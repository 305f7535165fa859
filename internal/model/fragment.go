package model

import "strings"

// Fragment is an immutable ordered sequence of sibling nodes.
type Fragment struct {
	nodes []*Node
	size  int
}

// EmptyFragment is the fragment with no children.
var EmptyFragment = &Fragment{}

// NewFragment builds a fragment, joining adjacent text nodes that carry
// the same marks. Nil entries are skipped.
func NewFragment(nodes []*Node) *Fragment {
	if len(nodes) == 0 {
		return EmptyFragment
	}
	out := make([]*Node, 0, len(nodes))
	size := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if n.IsText() && last.IsText() && SameMarkSet(n.Marks, last.Marks) {
				out[len(out)-1] = last.withText(last.Text + n.Text)
				size += n.NodeSize()
				continue
			}
		}
		out = append(out, n)
		size += n.NodeSize()
	}
	if len(out) == 0 {
		return EmptyFragment
	}
	return &Fragment{nodes: out, size: size}
}

// FragmentFrom builds a fragment from the given nodes.
func FragmentFrom(nodes ...*Node) *Fragment {
	return NewFragment(nodes)
}

// Size returns the total token size of the fragment's children.
func (f *Fragment) Size() int { return f.size }

// ChildCount returns the number of children.
func (f *Fragment) ChildCount() int { return len(f.nodes) }

// Child returns the child at index. It panics when index is out of range.
func (f *Fragment) Child(index int) *Node { return f.nodes[index] }

// MaybeChild returns the child at index, or nil.
func (f *Fragment) MaybeChild(index int) *Node {
	if index < 0 || index >= len(f.nodes) {
		return nil
	}
	return f.nodes[index]
}

// FirstChild returns the first child, or nil.
func (f *Fragment) FirstChild() *Node { return f.MaybeChild(0) }

// LastChild returns the last child, or nil.
func (f *Fragment) LastChild() *Node { return f.MaybeChild(len(f.nodes) - 1) }

// Nodes returns a copy of the children.
func (f *Fragment) Nodes() []*Node {
	return append([]*Node(nil), f.nodes...)
}

// ForEach calls fn for every child with its offset and index.
func (f *Fragment) ForEach(fn func(child *Node, offset, index int)) {
	pos := 0
	for i, c := range f.nodes {
		fn(c, pos, i)
		pos += c.NodeSize()
	}
}

// NodesBetween calls fn for every node overlapping [from, to), descending
// into children unless fn returns false. pos is the absolute position of
// each node given that the fragment starts at nodeStart.
func (f *Fragment) NodesBetween(from, to int, fn func(node *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) {
	pos := 0
	for i := 0; pos < to && i < len(f.nodes); i++ {
		child := f.nodes[i]
		end := pos + child.NodeSize()
		if end > from && fn(child, nodeStart+pos, parent, i) && child.Content.Size() > 0 {
			start := pos + 1
			child.Content.NodesBetween(max(0, from-start), min(child.Content.Size(), to-start), fn, nodeStart+start, child)
		}
		pos = end
	}
}

// TextBetween returns the text between two offsets. blockSep is inserted
// between block nodes and leafText stands in for inline leaves.
func (f *Fragment) TextBetween(from, to int, blockSep, leafText string) string {
	var b strings.Builder
	first := true
	f.NodesBetween(from, to, func(n *Node, pos int, _ *Node, _ int) bool {
		text := ""
		switch {
		case n.IsText():
			text = runeSlice(n.Text, max(from, pos)-pos, min(to-pos, n.NodeSize()))
		case n.Type.Leaf:
			text = leafText
		}
		if n.IsBlock() && n.IsTextblock() && blockSep != "" {
			if first {
				first = false
			} else {
				b.WriteString(blockSep)
			}
		}
		b.WriteString(text)
		return true
	}, 0, nil)
	return b.String()
}

// Append concatenates two fragments, joining text at the seam.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.size == 0 && len(other.nodes) == 0 {
		return f
	}
	if f.size == 0 && len(f.nodes) == 0 {
		return other
	}
	nodes := make([]*Node, 0, len(f.nodes)+len(other.nodes))
	nodes = append(nodes, f.nodes...)
	nodes = append(nodes, other.nodes...)
	return NewFragment(nodes)
}

// Cut returns the part of the fragment between two offsets. Nodes that
// straddle a boundary are cut as well.
func (f *Fragment) Cut(from, to int) *Fragment {
	if from == 0 && to == f.size {
		return f
	}
	var result []*Node
	if to > from {
		pos := 0
		for i := 0; pos < to && i < len(f.nodes); i++ {
			child := f.nodes[i]
			end := pos + child.NodeSize()
			if end > from {
				if pos < from || end > to {
					if child.IsText() {
						child = child.Cut(max(0, from-pos), min(child.NodeSize(), to-pos))
					} else {
						child = child.Cut(max(0, from-pos-1), min(child.Content.Size(), to-pos-1))
					}
				}
				result = append(result, child)
			}
			pos = end
		}
	}
	return NewFragment(result)
}

// CutByIndex returns the children in [from, to).
func (f *Fragment) CutByIndex(from, to int) *Fragment {
	if from == to {
		return EmptyFragment
	}
	if from == 0 && to == len(f.nodes) {
		return f
	}
	return NewFragment(f.nodes[from:to])
}

// ReplaceChild returns a fragment with the child at index replaced.
func (f *Fragment) ReplaceChild(index int, node *Node) *Fragment {
	if f.nodes[index] == node {
		return f
	}
	nodes := append([]*Node(nil), f.nodes...)
	nodes[index] = node
	return NewFragment(nodes)
}

// AddToStart returns a fragment with node prepended.
func (f *Fragment) AddToStart(node *Node) *Fragment {
	return NewFragment(append([]*Node{node}, f.nodes...))
}

// AddToEnd returns a fragment with node appended.
func (f *Fragment) AddToEnd(node *Node) *Fragment {
	return NewFragment(append(append([]*Node(nil), f.nodes...), node))
}

// Eq reports whether two fragments hold equal nodes.
func (f *Fragment) Eq(other *Fragment) bool {
	if len(f.nodes) != len(other.nodes) {
		return false
	}
	for i := range f.nodes {
		if !f.nodes[i].Eq(other.nodes[i]) {
			return false
		}
	}
	return true
}

// FindIndex returns the index of the child containing pos and that child's
// start offset. With round > 0 a position on a child boundary rounds to the
// following child.
func (f *Fragment) FindIndex(pos, round int) (index, offset int) {
	if pos == 0 {
		return 0, 0
	}
	if pos == f.size {
		return len(f.nodes), pos
	}
	if pos > f.size || pos < 0 {
		panic("model: position outside of fragment")
	}
	cur := 0
	for i, c := range f.nodes {
		end := cur + c.NodeSize()
		if end >= pos {
			if end == pos || round > 0 {
				return i + 1, end
			}
			return i, cur
		}
		cur = end
	}
	return len(f.nodes), f.size
}

func (f *Fragment) String() string {
	parts := make([]string, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}
