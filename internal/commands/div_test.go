package commands

import (
	"testing"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

func TestDivs(t *testing.T) {
	st := state.New(s.EmptyDoc(), nil)
	st = run(t, st, AddDiv(DivSpec{ID: "d1", Editable: true, CSSClass: "note", HTML: "<p>x</p>"}))
	div := s.Node("div", model.Attrs{"id": "d1", "editable": "true", "cssClass": "note"}, p(txt("x")))
	wantDoc(t, st.Doc, doc(p(), div))

	_, err := AddDiv(DivSpec{ID: "d1"})(st)
	wantCode(t, err, CodeDiv)
	_, err = AddDiv(DivSpec{})(st)
	wantCode(t, err, CodeDiv)

	st = run(t, st, AddDiv(DivSpec{ID: "inner", ParentID: "d1"}))
	if _, n, ok := FindByID(st.Doc, "div", "inner"); !ok || n.Attr("editable") != "false" {
		t.Fatalf("nested div = %v", n)
	}
	if got := st.Doc.Child(1).ChildCount(); got != 2 {
		t.Errorf("outer div has %d children, want 2", got)
	}
	st = run(t, st, RemoveDiv("inner"))
	wantDoc(t, st.Doc, doc(p(), div))

	st = run(t, st, AddButton(ButtonSpec{ID: "b1", DivID: "d1", Label: "Go"}))
	pos, button, ok := FindByID(st.Doc, "button", "b1")
	if !ok || button.TextContent() != "Go" {
		t.Fatalf("button = %v", button)
	}
	if got := DivIDAt(st.Doc, pos+1); got != "d1" {
		t.Errorf("DivIDAt() = %q, want d1", got)
	}
	_, err = AddButton(ButtonSpec{ID: "b2", DivID: "missing"})(st)
	wantCode(t, err, CodeDiv)

	st = run(t, st, RemoveButton("b1"))
	wantDoc(t, st.Doc, doc(p(), div))

	st = run(t, st, RemoveDiv("d1"))
	wantDoc(t, st.Doc, doc(p()))
	_, err = RemoveDiv("d1")(st)
	wantCode(t, err, CodeDiv)
}

func TestRemoveOnlyDiv(t *testing.T) {
	d := doc(s.Node("div", model.Attrs{"id": "d"}, p(txt("x"))))
	st := run(t, state.New(d, nil), RemoveDiv("d"))
	wantDoc(t, st.Doc, doc(p()))
}

func TestDivEditable(t *testing.T) {
	d := doc(p(txt("a")), s.Node("div", model.Attrs{"id": "ro", "editable": "false"}, p(txt("b"))))
	if !DivEditable(d, 1) {
		t.Error("top-level text reported read-only")
	}
	if DivEditable(d, 5) {
		t.Error("read-only div reported editable")
	}
}

func TestStyleSkipsOtherDivs(t *testing.T) {
	d := doc(p(txt("a")), s.Node("div", model.Attrs{"id": "d"}, p(txt("b"))))
	st := run(t, at(d, 1, 6), SetStyle("H2"))
	want := doc(h("2", txt("a")), s.Node("div", model.Attrs{"id": "d"}, p(txt("b"))))
	wantDoc(t, st.Doc, want)
}
