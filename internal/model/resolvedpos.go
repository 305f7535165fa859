package model

import "fmt"

type pathEntry struct {
	node   *Node
	index  int
	offset int
}

// ResolvedPos is a position together with the context it points into.
// Depth 0 is the document itself; Depth is the depth of the innermost
// node that contains the position.
type ResolvedPos struct {
	Pos          int
	Depth        int
	ParentOffset int

	path []pathEntry
}

func resolve(doc *Node, pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > doc.Content.Size() {
		return nil, fmt.Errorf("%w: %d not in 0..%d", ErrPositionOutOfRange, pos, doc.Content.Size())
	}
	var path []pathEntry
	start := 0
	parentOffset := pos
	for node := doc; ; {
		index, offset := node.Content.FindIndex(parentOffset, -1)
		rem := parentOffset - offset
		path = append(path, pathEntry{node: node, index: index, offset: start + offset})
		if rem == 0 {
			break
		}
		node = node.Child(index)
		if node.IsText() {
			break
		}
		parentOffset = rem - 1
		start += offset + 1
	}
	return &ResolvedPos{Pos: pos, Depth: len(path) - 1, ParentOffset: parentOffset, path: path}, nil
}

func (r *ResolvedPos) resolveDepth(depth int) int {
	if depth < 0 {
		return r.Depth + depth
	}
	return depth
}

// Parent returns the innermost node containing the position.
func (r *ResolvedPos) Parent() *Node { return r.path[r.Depth].node }

// Doc returns the root node.
func (r *ResolvedPos) Doc() *Node { return r.path[0].node }

// Node returns the ancestor at depth. Negative depths count up from the
// parent.
func (r *ResolvedPos) Node(depth int) *Node { return r.path[r.resolveDepth(depth)].node }

// Index returns the child index into the ancestor at depth.
func (r *ResolvedPos) Index(depth int) int { return r.path[r.resolveDepth(depth)].index }

// IndexAfter returns the index pointing after the position in the
// ancestor at depth.
func (r *ResolvedPos) IndexAfter(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == r.Depth && r.TextOffset() == 0 {
		return r.Index(depth)
	}
	return r.Index(depth) + 1
}

// Start returns the position at the start of the ancestor at depth.
func (r *ResolvedPos) Start(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == 0 {
		return 0
	}
	return r.path[depth-1].offset + 1
}

// End returns the position at the end of the ancestor at depth.
func (r *ResolvedPos) End(depth int) int {
	depth = r.resolveDepth(depth)
	return r.Start(depth) + r.Node(depth).Content.Size()
}

// Before returns the position directly before the ancestor at depth.
func (r *ResolvedPos) Before(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == 0 {
		panic("model: there is no position before the top-level node")
	}
	if depth == r.Depth+1 {
		return r.Pos
	}
	return r.path[depth-1].offset
}

// After returns the position directly after the ancestor at depth.
func (r *ResolvedPos) After(depth int) int {
	depth = r.resolveDepth(depth)
	if depth == 0 {
		panic("model: there is no position after the top-level node")
	}
	if depth == r.Depth+1 {
		return r.Pos
	}
	return r.path[depth-1].offset + r.path[depth].node.NodeSize()
}

// TextOffset returns the offset into the text node the position points
// into, or zero when it lies between nodes.
func (r *ResolvedPos) TextOffset() int {
	return r.Pos - r.path[r.Depth].offset
}

// NodeAfter returns the node directly after the position, or nil.
func (r *ResolvedPos) NodeAfter() *Node {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if index == parent.ChildCount() {
		return nil
	}
	dOff := r.Pos - r.path[r.Depth].offset
	child := parent.Child(index)
	if dOff > 0 {
		return child.Cut(dOff, child.NodeSize())
	}
	return child
}

// NodeBefore returns the node directly before the position, or nil.
func (r *ResolvedPos) NodeBefore() *Node {
	index := r.Index(r.Depth)
	dOff := r.Pos - r.path[r.Depth].offset
	if dOff > 0 {
		return r.Parent().Child(index).Cut(0, dOff)
	}
	if index == 0 {
		return nil
	}
	return r.Parent().Child(index - 1)
}

// PosAtIndex returns the position of the child at index in the ancestor
// at depth.
func (r *ResolvedPos) PosAtIndex(index, depth int) int {
	depth = r.resolveDepth(depth)
	node := r.path[depth].node
	pos := 0
	if depth > 0 {
		pos = r.path[depth-1].offset + 1
	}
	for i := 0; i < index; i++ {
		pos += node.Child(i).NodeSize()
	}
	return pos
}

// Marks returns the marks that text inserted at the position would get.
// Non-inclusive marks only continue when present on both sides.
func (r *ResolvedPos) Marks() []*Mark {
	parent := r.Parent()
	index := r.Index(r.Depth)
	if parent.Content.Size() == 0 {
		return nil
	}
	if r.TextOffset() > 0 {
		return parent.Child(index).Marks
	}
	main, other := parent.MaybeChild(index-1), parent.MaybeChild(index)
	if main == nil {
		main, other = other, main
	}
	if main == nil {
		return nil
	}
	marks := main.Marks
	for i := 0; i < len(marks); i++ {
		m := marks[i]
		if !m.Type.Inclusive && (other == nil || !m.IsInSet(other.Marks)) {
			marks = m.RemoveFromSet(marks)
			i--
		}
	}
	return marks
}

// SharedDepth returns the depth of the deepest ancestor that contains
// both this position and pos.
func (r *ResolvedPos) SharedDepth(pos int) int {
	for depth := r.Depth; depth > 0; depth-- {
		if r.Start(depth) <= pos && r.End(depth) >= pos {
			return depth
		}
	}
	return 0
}

// BlockRange returns the range of block siblings spanning this position
// and other, or nil. When pred is given, the range's parent must satisfy
// it.
func (r *ResolvedPos) BlockRange(other *ResolvedPos, pred func(*Node) bool) *NodeRange {
	if other == nil {
		other = r
	}
	if other.Pos < r.Pos {
		return other.BlockRange(r, pred)
	}
	d := r.Depth
	if r.Parent().InlineContent() || r.Pos == other.Pos {
		d--
	}
	for ; d >= 0; d-- {
		if other.Pos <= r.End(d) && (pred == nil || pred(r.Node(d))) {
			return NewNodeRange(r, other, d)
		}
	}
	return nil
}

// SameParent reports whether both positions share the same parent node.
func (r *ResolvedPos) SameParent(other *ResolvedPos) bool {
	return r.Pos-r.ParentOffset == other.Pos-other.ParentOffset
}

// Min returns the smaller of two resolved positions.
func (r *ResolvedPos) Min(other *ResolvedPos) *ResolvedPos {
	if other.Pos < r.Pos {
		return other
	}
	return r
}

// Max returns the greater of two resolved positions.
func (r *ResolvedPos) Max(other *ResolvedPos) *ResolvedPos {
	if other.Pos > r.Pos {
		return other
	}
	return r
}

func (r *ResolvedPos) String() string {
	s := ""
	for i := 1; i <= r.Depth; i++ {
		if s != "" {
			s += "/"
		}
		s += fmt.Sprintf("%s_%d", r.Node(i).Type.Name, r.Index(i-1))
	}
	return fmt.Sprintf("%s:%d", s, r.ParentOffset)
}

// NodeRange is a flat range of sibling block nodes.
type NodeRange struct {
	From  *ResolvedPos
	To    *ResolvedPos
	Depth int
}

// NewNodeRange creates a range of the children of the ancestor at depth
// between two positions.
func NewNodeRange(from, to *ResolvedPos, depth int) *NodeRange {
	return &NodeRange{From: from, To: to, Depth: depth}
}

// Start returns the position at the start of the range.
func (nr *NodeRange) Start() int { return nr.From.Before(nr.Depth + 1) }

// End returns the position at the end of the range.
func (nr *NodeRange) End() int { return nr.To.After(nr.Depth + 1) }

// Parent returns the node whose children the range covers.
func (nr *NodeRange) Parent() *Node { return nr.From.Node(nr.Depth) }

// StartIndex returns the index of the first child in the range.
func (nr *NodeRange) StartIndex() int { return nr.From.Index(nr.Depth) }

// EndIndex returns the index after the last child in the range.
func (nr *NodeRange) EndIndex() int { return nr.To.IndexAfter(nr.Depth) }
