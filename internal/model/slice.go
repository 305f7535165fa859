package model

import "fmt"

// Slice is a piece of document cut out of a larger tree. OpenStart and
// OpenEnd give the depth at which the first and last nodes are open, that
// is, cut through rather than included whole.
type Slice struct {
	Content   *Fragment
	OpenStart int
	OpenEnd   int
}

// EmptySlice is the slice with no content.
var EmptySlice = &Slice{Content: EmptyFragment}

// NewSlice creates a slice.
func NewSlice(content *Fragment, openStart, openEnd int) *Slice {
	if content == nil {
		content = EmptyFragment
	}
	return &Slice{Content: content, OpenStart: openStart, OpenEnd: openEnd}
}

// Size returns the number of tokens the slice inserts.
func (s *Slice) Size() int {
	return s.Content.Size() - s.OpenStart - s.OpenEnd
}

// Eq reports whether two slices are equal.
func (s *Slice) Eq(other *Slice) bool {
	return s.Content.Eq(other.Content) && s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd
}

// InsertAt returns the slice with fragment inserted at pos, or nil when
// the insertion point is not valid.
func (s *Slice) InsertAt(pos int, fragment *Fragment) *Slice {
	content := insertInto(s.Content, pos+s.OpenStart, fragment, nil)
	if content == nil {
		return nil
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd)
}

// RemoveBetween returns the slice with the flat range [from, to) removed.
func (s *Slice) RemoveBetween(from, to int) (*Slice, error) {
	content, err := removeRange(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return nil, err
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd), nil
}

func (s *Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content, s.OpenStart, s.OpenEnd)
}

// MaxOpenSlice returns a slice of fragment opened as deep as possible on
// both sides.
func MaxOpenSlice(fragment *Fragment) *Slice {
	openStart, openEnd := 0, 0
	for n := fragment.FirstChild(); n != nil && !n.IsLeaf(); n = n.FirstChild() {
		openStart++
	}
	for n := fragment.LastChild(); n != nil && !n.IsLeaf(); n = n.LastChild() {
		openEnd++
	}
	return NewSlice(fragment, openStart, openEnd)
}

func removeRange(content *Fragment, from, to int) (*Fragment, error) {
	index, offset := content.FindIndex(from, -1)
	child := content.MaybeChild(index)
	indexTo, offsetTo := content.FindIndex(to, -1)
	if offset == from || (child != nil && child.IsText()) {
		if offsetTo != to && !content.Child(indexTo).IsText() {
			return nil, replaceErrorf("removing non-flat range")
		}
		return content.Cut(0, from).Append(content.Cut(to, content.Size())), nil
	}
	if index != indexTo {
		return nil, replaceErrorf("removing non-flat range")
	}
	inner, err := removeRange(child.Content, from-offset-1, to-offset-1)
	if err != nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner)), nil
}

func insertInto(content *Fragment, dist int, insert *Fragment, parent *Node) *Fragment {
	index, offset := content.FindIndex(dist, -1)
	child := content.MaybeChild(index)
	if offset == dist || (child != nil && child.IsText()) {
		if parent != nil && !parent.CanReplace(index, index, insert) {
			return nil
		}
		return content.Cut(0, dist).Append(insert).Append(content.Cut(dist, content.Size()))
	}
	inner := insertInto(child.Content, dist-offset-1, insert, child)
	if inner == nil {
		return nil
	}
	return content.ReplaceChild(index, child.Copy(inner))
}
