package model

import (
	"errors"
	"testing"
)

func p(children ...*Node) *Node          { return Markup.Node("paragraph", nil, children...) }
func txt(s string, marks ...*Mark) *Node { return Markup.Text(s, marks...) }
func doc(children ...*Node) *Node        { return Markup.Node("doc", nil, children...) }
func bold() *Mark                        { return Markup.Mark("bold", nil) }
func italic() *Mark                      { return Markup.Mark("italic", nil) }

func TestNodeSize(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want int
	}{
		{"text counts runes", txt("héllo"), 5},
		{"empty paragraph", p(), 2},
		{"paragraph with text", p(txt("ab")), 4},
		{"leaf", Markup.Node("hard_break", nil), 1},
		{"doc", doc(p(txt("ab")), p()), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.NodeSize(); got != tt.want {
				t.Errorf("NodeSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFragmentJoinsText(t *testing.T) {
	f := NewFragment([]*Node{txt("a"), txt("b"), txt("c", bold())})
	if f.ChildCount() != 2 {
		t.Fatalf("ChildCount() = %d, want 2", f.ChildCount())
	}
	if f.Child(0).Text != "ab" {
		t.Errorf("first child = %q, want %q", f.Child(0).Text, "ab")
	}
	if f.Size() != 3 {
		t.Errorf("Size() = %d, want 3", f.Size())
	}
}

func TestResolve(t *testing.T) {
	d := doc(p(txt("ab")), p())
	tests := []struct {
		pos          int
		depth        int
		parent       string
		parentOffset int
	}{
		{0, 0, "doc", 0},
		{1, 1, "paragraph", 0},
		{3, 1, "paragraph", 2},
		{4, 0, "doc", 4},
		{5, 1, "paragraph", 0},
		{6, 0, "doc", 6},
	}
	for _, tt := range tests {
		r, err := d.Resolve(tt.pos)
		if err != nil {
			t.Fatalf("Resolve(%d) error: %v", tt.pos, err)
		}
		if r.Depth != tt.depth {
			t.Errorf("Resolve(%d).Depth = %d, want %d", tt.pos, r.Depth, tt.depth)
		}
		if r.Parent().Type.Name != tt.parent {
			t.Errorf("Resolve(%d).Parent() = %s, want %s", tt.pos, r.Parent().Type.Name, tt.parent)
		}
		if r.ParentOffset != tt.parentOffset {
			t.Errorf("Resolve(%d).ParentOffset = %d, want %d", tt.pos, r.ParentOffset, tt.parentOffset)
		}
	}

	if _, err := d.Resolve(7); !errors.Is(err, ErrPositionOutOfRange) {
		t.Errorf("Resolve(7) error = %v, want ErrPositionOutOfRange", err)
	}
}

func TestResolvedPosNavigation(t *testing.T) {
	d := doc(p(txt("ab")), p(txt("cd")))
	r := d.MustResolve(2)
	if r.Start(1) != 1 || r.End(1) != 3 {
		t.Errorf("Start/End = %d/%d, want 1/3", r.Start(1), r.End(1))
	}
	if r.Before(1) != 0 || r.After(1) != 4 {
		t.Errorf("Before/After = %d/%d, want 0/4", r.Before(1), r.After(1))
	}
	if got := r.NodeBefore().Text; got != "a" {
		t.Errorf("NodeBefore() = %q, want a", got)
	}
	if got := r.NodeAfter().Text; got != "b" {
		t.Errorf("NodeAfter() = %q, want b", got)
	}
	if got := r.SharedDepth(6); got != 0 {
		t.Errorf("SharedDepth(6) = %d, want 0", got)
	}

	rng := r.BlockRange(d.MustResolve(6), nil)
	if rng == nil {
		t.Fatal("BlockRange() = nil")
	}
	if rng.Start() != 0 || rng.End() != 8 || rng.Depth != 0 {
		t.Errorf("BlockRange = %d..%d depth %d, want 0..8 depth 0", rng.Start(), rng.End(), rng.Depth)
	}
}

func TestSlice(t *testing.T) {
	d := doc(p(txt("ab")), p(txt("cd")))
	s, err := d.Slice(2, 6)
	if err != nil {
		t.Fatalf("Slice() error: %v", err)
	}
	if s.OpenStart != 1 || s.OpenEnd != 1 {
		t.Errorf("open = %d/%d, want 1/1", s.OpenStart, s.OpenEnd)
	}
	if s.Size() != 4 {
		t.Errorf("Size() = %d, want 4", s.Size())
	}
	if got := s.Content.String(); got != `<paragraph("b"), paragraph("c")>` {
		t.Errorf("content = %s", got)
	}
}

func TestReplace(t *testing.T) {
	d := doc(p(txt("ab")), p(txt("cd")))

	t.Run("delete across blocks joins them", func(t *testing.T) {
		out, err := d.Replace(2, 6, EmptySlice)
		if err != nil {
			t.Fatalf("Replace() error: %v", err)
		}
		want := doc(p(txt("ad")))
		if !out.Eq(want) {
			t.Errorf("got %s, want %s", out, want)
		}
	})

	t.Run("insert flat text", func(t *testing.T) {
		out, err := d.Replace(2, 2, NewSlice(FragmentFrom(txt("X")), 0, 0))
		if err != nil {
			t.Fatalf("Replace() error: %v", err)
		}
		want := doc(p(txt("aXb")), p(txt("cd")))
		if !out.Eq(want) {
			t.Errorf("got %s, want %s", out, want)
		}
	})

	t.Run("split with open slice", func(t *testing.T) {
		out, err := d.Replace(2, 2, NewSlice(FragmentFrom(p(), p()), 1, 1))
		if err != nil {
			t.Fatalf("Replace() error: %v", err)
		}
		want := doc(p(txt("a")), p(txt("b")), p(txt("cd")))
		if !out.Eq(want) {
			t.Errorf("got %s, want %s", out, want)
		}
	})

	t.Run("reuses untouched subtrees", func(t *testing.T) {
		out, err := d.Replace(6, 7, EmptySlice)
		if err != nil {
			t.Fatalf("Replace() error: %v", err)
		}
		if out.Child(0) != d.Child(0) {
			t.Error("first paragraph was not shared")
		}
	})

	t.Run("rejects invalid content", func(t *testing.T) {
		list := Markup.Node("bullet_list", nil, Markup.Node("list_item", nil, p(txt("x"))))
		dl := doc(list)
		_, err := dl.Replace(1, 1, NewSlice(FragmentFrom(p(txt("y"))), 0, 0))
		if !errors.Is(err, ErrInvalidContent) {
			t.Errorf("error = %v, want ErrInvalidContent", err)
		}
	})

	t.Run("rejects inconsistent depths", func(t *testing.T) {
		_, err := d.Replace(2, 6, NewSlice(FragmentFrom(p()), 1, 0))
		if !errors.Is(err, ErrReplace) {
			t.Errorf("error = %v, want ErrReplace", err)
		}
	})
}

func TestMarkSet(t *testing.T) {
	link := Markup.Mark("link", Attrs{"href": "a"})
	set := italic().AddToSet(nil)
	set = bold().AddToSet(set)
	set = link.AddToSet(set)
	names := ""
	for _, m := range set {
		names += m.Type.Name + " "
	}
	if names != "link bold italic " {
		t.Errorf("order = %q", names)
	}

	other := Markup.Mark("link", Attrs{"href": "b"})
	set = other.AddToSet(set)
	if got := Markup.Marks["link"].IsInSet(set).Attrs["href"]; got != "b" {
		t.Errorf("link href = %q, want b", got)
	}
	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}

	sub := Markup.Mark("sub", nil).AddToSet(nil)
	sub = Markup.Mark("sup", nil).AddToSet(sub)
	if len(sub) != 1 || sub[0].Type.Name != "sup" {
		t.Errorf("sup should replace sub, got %v", sub)
	}
}

func TestTextBetween(t *testing.T) {
	d := doc(p(txt("one")), p(txt("two")))
	if got := d.TextBetween(0, d.Content.Size(), "\n", ""); got != "one\ntwo" {
		t.Errorf("TextBetween() = %q", got)
	}
	if got := d.TextContent(); got != "onetwo" {
		t.Errorf("TextContent() = %q", got)
	}
}

func TestCheck(t *testing.T) {
	bad := Markup.Node("bullet_list", nil)
	if err := doc(bad).Check(); !errors.Is(err, ErrInvalidContent) {
		t.Errorf("Check() = %v, want ErrInvalidContent", err)
	}
	code := Markup.Node("code_block", nil, txt("x", bold()))
	if err := doc(code).Check(); err == nil {
		t.Error("marks inside code_block should be rejected")
	}
	if err := Markup.EmptyDoc().Check(); err != nil {
		t.Errorf("EmptyDoc().Check() = %v", err)
	}
}
