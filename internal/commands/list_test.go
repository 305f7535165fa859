package commands

import (
	"testing"

	"github.com/dshills/markupeditor/internal/model"
)

func TestToggleList(t *testing.T) {
	tests := []struct {
		name     string
		doc      *model.Node
		from, to int
		tag      string
		want     *model.Node
	}{
		{
			name: "wrap paragraph",
			doc:  doc(p(txt("Hello"))),
			from: 1, to: 6,
			tag:  ListBullet,
			want: doc(ul(li(p(txt("Hello"))))),
		},
		{
			name: "one item per block",
			doc:  doc(p(txt("a")), p(txt("b"))),
			from: 1, to: 5,
			tag:  ListOrdered,
			want: doc(ol(li(p(txt("a"))), li(p(txt("b"))))),
		},
		{
			name: "retype list",
			doc:  doc(ul(li(p(txt("a"))))),
			from: 3, to: 3,
			tag:  ListOrdered,
			want: doc(ol(li(p(txt("a"))))),
		},
		{
			name: "merge mixed blocks",
			doc:  doc(p(txt("a")), ul(li(p(txt("b"))))),
			from: 1, to: 7,
			tag:  ListOrdered,
			want: doc(ol(li(p(txt("a"))), li(p(txt("b"))))),
		},
		{
			name: "unwrap list",
			doc:  doc(ul(li(p(txt("a"))), li(p(txt("b"))))),
			from: 3, to: 9,
			tag:  ListBullet,
			want: doc(p(txt("a")), p(txt("b"))),
		},
		{
			name: "lift nested items",
			doc:  doc(ul(li(p(txt("a")), ul(li(p(txt("b"))))))),
			from: 9, to: 9,
			tag:  ListBullet,
			want: doc(ul(li(p(txt("a"))), li(p(txt("b"))))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := run(t, at(tt.doc, tt.from, tt.to), ToggleList(tt.tag))
			wantDoc(t, st.Doc, tt.want)
		})
	}
}

func TestToggleListRoundTrip(t *testing.T) {
	shapes := []struct {
		name     string
		doc      *model.Node
		from, to int
	}{
		{"paragraph", doc(p(txt("Hello"))), 1, 6},
		{"two paragraphs", doc(p(txt("a")), p(txt("b"))), 1, 5},
		{"heading and paragraph", doc(h("1", txt("a")), p(txt("b"))), 1, 5},
		{"cursor", doc(p(txt("ab")), p(txt("cd"))), 2, 2},
	}
	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			st := run(t, at(tt.doc, tt.from, tt.to), ToggleList(ListBullet))
			if ListTypeAt(st) != ListBullet {
				t.Fatalf("not in a list after toggling on: %s", st.Doc)
			}
			st = run(t, st, ToggleList(ListBullet))
			wantDoc(t, st.Doc, tt.doc)
		})
	}
}

func TestToggleListErrors(t *testing.T) {
	_, err := ToggleList("DL")(at(doc(p(txt("a"))), 1, 1))
	wantCode(t, err, CodeList)
}

func TestIndentMixedContent(t *testing.T) {
	tests := []struct {
		name string
		src  string
		cmd  Command
		want string
	}{
		{
			name: "paragraph and list item",
			src:  "<p>|a</p><ul><li><p>b|</p></li></ul>",
			cmd:  Indent(),
			want: "<blockquote><p>a</p></blockquote><ul><li><ul><li><p>b</p></li></ul></li></ul>",
		},
		{
			name: "unselected item stays",
			src:  "<ul><li><p>a</p></li><li><p>|b</p></li></ul><p>c|</p>",
			cmd:  Indent(),
			want: "<ul><li><p>a</p></li><li><ul><li><p>b</p></li></ul></li></ul><blockquote><p>c</p></blockquote>",
		},
		{
			name: "siblings share a blockquote",
			src:  "<p>|a</p><p>b|</p>",
			cmd:  Indent(),
			want: "<blockquote><p>a</p><p>b</p></blockquote>",
		},
		{
			name: "sublist moves with its item",
			src:  "<ul><li><p>|a</p><ul><li><p>b|</p></li></ul></li></ul>",
			cmd:  Indent(),
			want: "<ul><li><ul><li><p>a</p><ul><li><p>b</p></li></ul></li></ul></li></ul>",
		},
		{
			name: "outdent blockquote and list",
			src:  "<blockquote><p>|a</p></blockquote><ul><li><p>b|</p></li></ul>",
			cmd:  Outdent(),
			want: "<p>a</p><p>b</p>",
		},
		{
			name: "outdent skips plain blocks",
			src:  "<p>|a</p><ul><li><p>b|</p></li></ul>",
			cmd:  Outdent(),
			want: "<p>a</p><p>b</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := run(t, marked(t, tt.src), tt.cmd)
			if got := htmlOf(st.Doc); got != tt.want {
				t.Errorf("html = %s\nwant   %s", got, tt.want)
			}
		})
	}
}

func TestIndentOutdentRoundTrip(t *testing.T) {
	st := marked(t, "<p>|a</p><ul><li><p>b|</p></li></ul>")
	st = run(t, st, Indent())
	for i := 0; i < 3; i++ {
		tr, err := Outdent()(st)
		if err != nil {
			t.Fatalf("Outdent() error: %v", err)
		}
		if tr == nil {
			break
		}
		if st, err = st.Apply(tr); err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
	}
	if got, want := htmlOf(st.Doc), "<p>a</p><p>b</p>"; got != want {
		t.Errorf("html = %s, want %s", got, want)
	}
	noop(t, st, Outdent())
}

func TestIndent(t *testing.T) {
	t.Run("paragraph", func(t *testing.T) {
		d := doc(p(txt("a")))
		st := run(t, at(d, 1, 1), Indent())
		wantDoc(t, st.Doc, doc(bq(p(txt("a")))))
		st = run(t, st, Outdent())
		wantDoc(t, st.Doc, d)
	})

	t.Run("list item", func(t *testing.T) {
		d := doc(ul(li(p(txt("a"))), li(p(txt("b")))))
		st := run(t, at(d, 8, 8), Indent())
		wantDoc(t, st.Doc, doc(ul(li(p(txt("a"))), li(ul(li(p(txt("b"))))))))
		st = run(t, st, Outdent())
		wantDoc(t, st.Doc, d)
	})

	t.Run("ordered sublist keeps type", func(t *testing.T) {
		d := doc(ol(li(p(txt("a")))))
		st := run(t, at(d, 3, 3), Indent())
		wantDoc(t, st.Doc, doc(ol(li(ol(li(p(txt("a"))))))))
	})

	t.Run("outdent top-level list", func(t *testing.T) {
		st := run(t, at(doc(ul(li(p(txt("a"))))), 3, 3), Outdent())
		wantDoc(t, st.Doc, doc(p(txt("a"))))
	})

	t.Run("outdent plain paragraph", func(t *testing.T) {
		noop(t, at(doc(p(txt("a"))), 1, 1), Outdent())
	})

	t.Run("outdent stops at table cell", func(t *testing.T) {
		d := doc(table(row(td(bq(p(txt("a")))))))
		st := run(t, at(d, 5, 5), Outdent())
		wantDoc(t, st.Doc, doc(table(row(td(p(txt("a")))))))
		noop(t, st, Outdent())
	})
}
