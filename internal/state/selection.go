package state

import (
	"fmt"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/transform"
)

// Selection is a cursor, text range or node selection in a document.
// Selections are immutable values tied to one document version; Map
// carries them across a change.
type Selection interface {
	// Bounds returns the anchor (fixed side) and head (moving side).
	Bounds() (anchor, head int)
	// Start returns the lower bound.
	Start() int
	// End returns the upper bound.
	End() int
	// IsEmpty reports whether the selection is a collapsed cursor.
	IsEmpty() bool
	// Map maps the selection through m into doc.
	Map(doc *model.Node, m transform.Mappable) Selection
	// Eq reports whether two selections are equal.
	Eq(other Selection) bool
	String() string
}

// TextSelection selects the text between Anchor and Head. When Anchor ==
// Head it is a cursor.
type TextSelection struct {
	Anchor int
	Head   int
}

// NewTextSelection creates a text selection from anchor to head.
func NewTextSelection(anchor, head int) TextSelection {
	return TextSelection{Anchor: anchor, Head: head}
}

// Cursor creates a collapsed text selection.
func Cursor(pos int) TextSelection {
	return TextSelection{Anchor: pos, Head: pos}
}

// TextSelectionBetween validates anchor and head against doc and returns
// the selection.
func TextSelectionBetween(doc *model.Node, anchor, head int) (TextSelection, error) {
	size := doc.Content.Size()
	if anchor < 0 || anchor > size || head < 0 || head > size {
		return TextSelection{}, fmt.Errorf("%w: selection %d..%d outside 0..%d", ErrInvalidSelection, anchor, head, size)
	}
	return TextSelection{Anchor: anchor, Head: head}, nil
}

// Bounds implements Selection.
func (s TextSelection) Bounds() (int, int) { return s.Anchor, s.Head }

// IsEmpty implements Selection.
func (s TextSelection) IsEmpty() bool { return s.Anchor == s.Head }

// Start implements Selection.
func (s TextSelection) Start() int { return min(s.Anchor, s.Head) }

// End implements Selection.
func (s TextSelection) End() int { return max(s.Anchor, s.Head) }

// IsForward reports whether the head is at or after the anchor.
func (s TextSelection) IsForward() bool { return s.Head >= s.Anchor }

// Extend returns the selection with its head moved to pos.
func (s TextSelection) Extend(pos int) TextSelection {
	return TextSelection{Anchor: s.Anchor, Head: pos}
}

// Collapse collapses the selection to a cursor at the head.
func (s TextSelection) Collapse() TextSelection {
	return Cursor(s.Head)
}

// CollapseToStart collapses the selection to its lower bound.
func (s TextSelection) CollapseToStart() TextSelection {
	return Cursor(s.Start())
}

// CollapseToEnd collapses the selection to its upper bound.
func (s TextSelection) CollapseToEnd() TextSelection {
	return Cursor(s.End())
}

// Flip swaps anchor and head.
func (s TextSelection) Flip() TextSelection {
	return TextSelection{Anchor: s.Head, Head: s.Anchor}
}

// Normalize returns a forward selection.
func (s TextSelection) Normalize() TextSelection {
	if s.IsForward() {
		return s
	}
	return s.Flip()
}

// Contains reports whether pos lies inside the selection. A cursor
// contains nothing.
func (s TextSelection) Contains(pos int) bool {
	return pos >= s.Start() && pos < s.End()
}

// Map implements Selection. A head that lands outside inline content
// moves to the nearest text position.
func (s TextSelection) Map(doc *model.Node, m transform.Mappable) Selection {
	head := m.Map(s.Head, 1)
	rHead, err := doc.Resolve(head)
	if err != nil || !rHead.Parent().InlineContent() {
		return Near(doc, head, 1)
	}
	anchor := m.Map(s.Anchor, 1)
	rAnchor, err := doc.Resolve(anchor)
	if err != nil || !rAnchor.Parent().InlineContent() {
		anchor = head
	}
	return TextSelection{Anchor: anchor, Head: head}
}

// Eq implements Selection.
func (s TextSelection) Eq(other Selection) bool {
	o, ok := other.(TextSelection)
	return ok && o == s
}

// String returns a string representation of the selection.
func (s TextSelection) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("Cursor(%d)", s.Head)
	}
	return fmt.Sprintf("Text(%d->%d)", s.Anchor, s.Head)
}

// NodeSelection selects exactly one node.
type NodeSelection struct {
	Pos  int
	Node *model.Node
}

// NewNodeSelection selects the node starting at pos.
func NewNodeSelection(doc *model.Node, pos int) (NodeSelection, error) {
	node := doc.NodeAt(pos)
	if node == nil {
		return NodeSelection{}, fmt.Errorf("%w: no node at %d", ErrInvalidSelection, pos)
	}
	return NodeSelection{Pos: pos, Node: node}, nil
}

// Bounds implements Selection.
func (s NodeSelection) Bounds() (int, int) { return s.Pos, s.End() }

// IsEmpty implements Selection.
func (s NodeSelection) IsEmpty() bool { return false }

// Start implements Selection.
func (s NodeSelection) Start() int { return s.Pos }

// End implements Selection.
func (s NodeSelection) End() int { return s.Pos + s.Node.NodeSize() }

// Map implements Selection. A deleted node collapses to the nearest text
// position.
func (s NodeSelection) Map(doc *model.Node, m transform.Mappable) Selection {
	r := m.MapResult(s.Pos, 1)
	if r.Deleted {
		return Near(doc, r.Pos, 1)
	}
	node := doc.NodeAt(r.Pos)
	if node == nil {
		return Near(doc, r.Pos, 1)
	}
	return NodeSelection{Pos: r.Pos, Node: node}
}

// Eq implements Selection.
func (s NodeSelection) Eq(other Selection) bool {
	o, ok := other.(NodeSelection)
	return ok && o.Pos == s.Pos && o.Node.Eq(s.Node)
}

func (s NodeSelection) String() string {
	return fmt.Sprintf("Node(%d %s)", s.Pos, s.Node.Type.Name)
}

// AllSelection selects the whole document.
type AllSelection struct {
	Size int
}

// SelectAll selects the whole of doc.
func SelectAll(doc *model.Node) AllSelection {
	return AllSelection{Size: doc.Content.Size()}
}

// Bounds implements Selection.
func (s AllSelection) Bounds() (int, int) { return 0, s.Size }

// IsEmpty implements Selection.
func (s AllSelection) IsEmpty() bool { return s.Size == 0 }

// Start implements Selection.
func (s AllSelection) Start() int { return 0 }

// End implements Selection.
func (s AllSelection) End() int { return s.Size }

// Map implements Selection.
func (s AllSelection) Map(doc *model.Node, _ transform.Mappable) Selection {
	return SelectAll(doc)
}

// Eq implements Selection.
func (s AllSelection) Eq(other Selection) bool {
	o, ok := other.(AllSelection)
	return ok && o == s
}

func (s AllSelection) String() string { return "All" }

// Near returns a cursor at a text position close to pos. A positive bias
// looks forward first, a negative one backward. Buttons are never chosen.
// A document without textblocks yields an AllSelection.
func Near(doc *model.Node, pos, bias int) Selection {
	type span struct{ start, end int }
	var spans []span
	doc.Descendants(func(n *model.Node, at int, _ *model.Node, _ int) bool {
		if !n.IsTextblock() {
			return true
		}
		if n.Type.Name != "button" {
			spans = append(spans, span{at + 1, at + 1 + n.Content.Size()})
		}
		return false
	})
	if len(spans) == 0 {
		return SelectAll(doc)
	}
	if bias >= 0 {
		for _, sp := range spans {
			if sp.end >= pos {
				return Cursor(max(pos, sp.start))
			}
		}
		return Cursor(spans[len(spans)-1].end)
	}
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].start <= pos {
			return Cursor(min(pos, spans[i].end))
		}
	}
	return Cursor(spans[0].start)
}

// AtStart returns a cursor at the first text position of doc.
func AtStart(doc *model.Node) Selection {
	return Near(doc, 0, 1)
}

// AtEnd returns a cursor at the last text position of doc.
func AtEnd(doc *model.Node) Selection {
	return Near(doc, doc.Content.Size(), -1)
}

// OutermostOfType returns the outermost ancestor of r of the given type and
// its depth, or nil.
func OutermostOfType(r *model.ResolvedPos, typ *model.NodeType) (*model.Node, int) {
	for d := 0; d <= r.Depth; d++ {
		if n := r.Node(d); n.Type == typ {
			return n, d
		}
	}
	return nil, -1
}

// InnermostOfType returns the innermost ancestor of r of the given type
// and its depth, or nil.
func InnermostOfType(r *model.ResolvedPos, typ *model.NodeType) (*model.Node, int) {
	for d := r.Depth; d >= 0; d-- {
		if n := r.Node(d); n.Type == typ {
			return n, d
		}
	}
	return nil, -1
}

// FindAncestor returns the innermost ancestor of r satisfying pred and its
// depth, or nil.
func FindAncestor(r *model.ResolvedPos, pred func(*model.Node) bool) (*model.Node, int) {
	for d := r.Depth; d >= 0; d-- {
		if n := r.Node(d); pred(n) {
			return n, d
		}
	}
	return nil, -1
}
