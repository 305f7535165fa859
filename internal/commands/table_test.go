package commands

import (
	"strconv"
	"testing"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

func table(rows ...*model.Node) *model.Node { return s.Node("table", nil, rows...) }
func row(cells ...*model.Node) *model.Node  { return s.Node("table_row", nil, cells...) }
func td(c ...*model.Node) *model.Node       { return s.Node("table_cell", nil, c...) }
func th(c ...*model.Node) *model.Node       { return s.Node("table_header", nil, c...) }

func thSpan(n int, c ...*model.Node) *model.Node {
	return s.Node("table_header", model.Attrs{"colspan": strconv.Itoa(n)}, c...)
}

func cell(text string) *model.Node {
	if text == "" {
		return td(p())
	}
	return td(p(txt(text)))
}

// headerSpansTable checks that a header row, if any, is one cell spanning
// every column.
func headerSpansTable(t *testing.T, d *model.Node) {
	t.Helper()
	tbl := d.FirstChild()
	if !hasHeader(tbl) {
		return
	}
	if n := tbl.FirstChild().ChildCount(); n != 1 {
		t.Errorf("header has %d cells, want 1", n)
		return
	}
	if got, want := tbl.FirstChild().FirstChild().AttrInt("colspan", 1), columnCount(tbl); got != want {
		t.Errorf("header colspan = %d, table has %d columns", got, want)
	}
}

func TestInsertTable(t *testing.T) {
	st := run(t, state.New(s.EmptyDoc(), nil), InsertTable(2, 2, ""))
	want := doc(table(row(cell(""), cell("")), row(cell(""), cell(""))))
	wantDoc(t, st.Doc, want)
	if st.Selection.Start() != 4 || !st.Selection.IsEmpty() {
		t.Errorf("selection = %s, want cursor at 4", st.Selection)
	}
	if st.Doc.FirstChild().Attr("class") != "bordered-table-cell" {
		t.Errorf("class = %q", st.Doc.FirstChild().Attr("class"))
	}

	st = run(t, at(doc(p(txt("ab"))), 2, 2), InsertTable(1, 1, BorderOuter))
	wantDoc(t, st.Doc, doc(p(txt("ab")), s.Node("table", model.Attrs{"class": "bordered-table-outer"}, row(cell("")))))
	if st.Selection.Start() != 8 {
		t.Errorf("cursor = %s, want 8", st.Selection)
	}

	_, err := InsertTable(0, 2, "")(state.New(s.EmptyDoc(), nil))
	wantCode(t, err, CodeTable)
}

func TestAddRow(t *testing.T) {
	d := doc(table(row(cell("a"), cell("b"))))
	st := run(t, at(d, 5, 5), AddRow(After))
	wantDoc(t, st.Doc, doc(table(row(cell("a"), cell("b")), row(cell(""), cell("")))))
	if st.Selection.Start() != 5 {
		t.Errorf("cursor = %s, want 5", st.Selection)
	}

	st = run(t, at(d, 5, 5), AddRow(Before))
	wantDoc(t, st.Doc, doc(table(row(cell(""), cell("")), row(cell("a"), cell("b")))))

	headed := doc(table(row(thSpan(2, p())), row(cell("a"), cell("b"))))
	noop(t, at(headed, 4, 4), AddRow(Before))
	noop(t, at(doc(p(txt("a"))), 1, 1), AddRow(After))

	_, err := AddRow("SIDEWAYS")(at(d, 5, 5))
	wantCode(t, err, CodeTable)
}

func TestAddCol(t *testing.T) {
	headed := doc(table(row(thSpan(2, p())), row(cell("a"), cell("b"))))

	t.Run("body cell after", func(t *testing.T) {
		st := run(t, at(headed, 10, 10), AddCol(After))
		wantDoc(t, st.Doc, doc(table(row(thSpan(3, p())), row(cell("a"), cell(""), cell("b")))))
		headerSpansTable(t, st.Doc)
		if st.Selection.Start() != 10 {
			t.Errorf("cursor = %s, want 10", st.Selection)
		}
	})

	t.Run("body cell before", func(t *testing.T) {
		st := run(t, at(headed, 10, 10), AddCol(Before))
		wantDoc(t, st.Doc, doc(table(row(thSpan(3, p())), row(cell(""), cell("a"), cell("b")))))
		headerSpansTable(t, st.Doc)
	})

	t.Run("merged header after goes last", func(t *testing.T) {
		st := run(t, at(headed, 4, 4), AddCol(After))
		wantDoc(t, st.Doc, doc(table(row(thSpan(3, p())), row(cell("a"), cell("b"), cell("")))))
	})

	t.Run("merged header before goes first", func(t *testing.T) {
		st := run(t, at(headed, 4, 4), AddCol(Before))
		wantDoc(t, st.Doc, doc(table(row(thSpan(3, p())), row(cell(""), cell("a"), cell("b")))))
	})

	t.Run("split header is merged", func(t *testing.T) {
		split := doc(table(row(th(p()), th(p(txt("h")))), row(cell("a"), cell("b"))))
		st := run(t, at(split, 4, 4), AddCol(After))
		wantDoc(t, st.Doc, doc(table(row(thSpan(3, p(txt("h")))), row(cell("a"), cell(""), cell("b")))))
		headerSpansTable(t, st.Doc)
	})

	t.Run("repeated adds keep header spanning", func(t *testing.T) {
		st := at(headed, 10, 10)
		for i := 0; i < 3; i++ {
			st = run(t, st, AddCol(After))
			headerSpansTable(t, st.Doc)
		}
	})
}

func TestHeaderInvariantAfterSplitHeader(t *testing.T) {
	d := doc(table(row(cell("a"), cell("b"))))
	tests := []struct {
		name string
		cmds []Command
		want *model.Node
	}{
		{
			name: "add column after",
			cmds: []Command{AddHeader(false), AddCol(After)},
			want: doc(table(row(thSpan(3, p())), row(cell("a"), cell(""), cell("b")))),
		},
		{
			name: "add column before",
			cmds: []Command{AddHeader(false), AddCol(Before)},
			want: doc(table(row(thSpan(3, p())), row(cell(""), cell("a"), cell("b")))),
		},
		{
			name: "delete column",
			cmds: []Command{AddHeader(false), DeleteTableArea(AreaCol)},
			want: doc(table(row(thSpan(1, p())), row(cell("b")))),
		},
		{
			name: "add row then column",
			cmds: []Command{AddHeader(false), AddRow(After), AddCol(After)},
			want: doc(table(row(thSpan(3, p())), row(cell(""), cell(""), cell("")), row(cell("a"), cell(""), cell("b")))),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := at(d, 5, 5)
			for _, cmd := range tt.cmds {
				st = run(t, st, cmd)
			}
			wantDoc(t, st.Doc, tt.want)
			headerSpansTable(t, st.Doc)
		})
	}
}

func TestAddHeader(t *testing.T) {
	d := doc(table(row(cell("a"), cell("b"))))
	st := run(t, at(d, 5, 5), AddHeader(true))
	wantDoc(t, st.Doc, doc(table(row(thSpan(2, p())), row(cell("a"), cell("b")))))
	if st.Selection.Start() != 4 {
		t.Errorf("cursor = %s, want 4", st.Selection)
	}
	noop(t, st, AddHeader(true))

	st = run(t, at(d, 5, 5), AddHeader(false))
	wantDoc(t, st.Doc, doc(table(row(th(p()), th(p())), row(cell("a"), cell("b")))))
}

func TestDeleteTableArea(t *testing.T) {
	d := doc(table(row(cell("a"), cell("b")), row(cell("c"), cell("d"))))

	t.Run("row", func(t *testing.T) {
		st := run(t, at(d, 5, 5), DeleteTableArea(AreaRow))
		wantDoc(t, st.Doc, doc(table(row(cell("c"), cell("d")))))
	})

	t.Run("column", func(t *testing.T) {
		st := run(t, at(d, 10, 10), DeleteTableArea(AreaCol))
		wantDoc(t, st.Doc, doc(table(row(cell("a")), row(cell("c")))))
	})

	t.Run("table", func(t *testing.T) {
		st := run(t, at(d, 5, 5), DeleteTableArea(AreaTable))
		wantDoc(t, st.Doc, doc(p()))
		if st.Selection.Start() != 1 {
			t.Errorf("cursor = %s, want 1", st.Selection)
		}
	})

	t.Run("last column removes table", func(t *testing.T) {
		one := doc(p(txt("x")), table(row(cell("a"))))
		st := run(t, at(one, 7, 7), DeleteTableArea(AreaCol))
		wantDoc(t, st.Doc, doc(p(txt("x"))))
	})

	t.Run("only header left removes table", func(t *testing.T) {
		headed := doc(p(txt("x")), table(row(thSpan(1, p())), row(cell("a"))))
		st := run(t, at(headed, 13, 13), DeleteTableArea(AreaRow))
		wantDoc(t, st.Doc, doc(p(txt("x"))))
	})

	t.Run("merged header column", func(t *testing.T) {
		headed := doc(table(row(thSpan(2, p())), row(cell("a"), cell("b"))))
		noop(t, at(headed, 4, 4), DeleteTableArea(AreaCol))
		st := run(t, at(headed, 10, 10), DeleteTableArea(AreaCol))
		wantDoc(t, st.Doc, doc(table(row(thSpan(1, p())), row(cell("b")))))
	})
}

func TestBorderTable(t *testing.T) {
	d := doc(table(row(cell("a"))))
	st := run(t, at(d, 4, 4), BorderTable(BorderHeader))
	if got := st.Doc.FirstChild().Attr("class"); got != "bordered-table-header" {
		t.Errorf("class = %q", got)
	}
	noop(t, st, BorderTable(BorderHeader))
	_, err := BorderTable("dotted")(st)
	wantCode(t, err, CodeTable)
}
