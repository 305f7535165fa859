package model

import (
	"sort"
	"strings"
)

// Mark is a piece of formatting attached to inline content.
type Mark struct {
	Type  *MarkType
	Attrs Attrs
}

// Eq reports whether two marks have the same type and attributes.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	return m.Type == other.Type && m.Attrs.Eq(other.Attrs)
}

// IsInSet reports whether an equal mark is in the set.
func (m *Mark) IsInSet(set []*Mark) bool {
	for _, o := range set {
		if m.Eq(o) {
			return true
		}
	}
	return false
}

// AddToSet returns a new set with the mark added in rank order. Marks the
// new one excludes are dropped; if a mark in the set excludes the new one,
// the set is returned unchanged.
func (m *Mark) AddToSet(set []*Mark) []*Mark {
	var out []*Mark
	copied, placed := false, false
	for i, other := range set {
		if m.Eq(other) {
			return set
		}
		if m.Type.ExcludesType(other.Type) {
			if !copied {
				out = append([]*Mark{}, set[:i]...)
				copied = true
			}
			continue
		}
		if other.Type.ExcludesType(m.Type) {
			return set
		}
		if !placed && other.Type.Rank > m.Type.Rank {
			if !copied {
				out = append([]*Mark{}, set[:i]...)
				copied = true
			}
			out = append(out, m)
			placed = true
		}
		if copied {
			out = append(out, other)
		}
	}
	if !copied {
		out = append([]*Mark{}, set...)
	}
	if !placed {
		out = append(out, m)
	}
	return out
}

// RemoveFromSet returns the set without this mark.
func (m *Mark) RemoveFromSet(set []*Mark) []*Mark {
	for i, o := range set {
		if m.Eq(o) {
			out := append([]*Mark{}, set[:i]...)
			return append(out, set[i+1:]...)
		}
	}
	return set
}

func (m *Mark) String() string {
	if len(m.Attrs) == 0 {
		return m.Type.Name
	}
	var b strings.Builder
	b.WriteString(m.Type.Name)
	b.WriteByte('(')
	for i, k := range m.Attrs.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k + "=" + m.Attrs[k])
	}
	b.WriteByte(')')
	return b.String()
}

// SameMarkSet reports whether two mark sets are equal.
func SameMarkSet(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

func normalizeMarks(marks []*Mark) []*Mark {
	if len(marks) == 0 {
		return nil
	}
	out := append([]*Mark{}, marks...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Type.Rank < out[j].Type.Rank })
	return out
}
