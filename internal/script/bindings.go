package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/search"
)

// register installs the editor table.
func (r *Runtime) register() {
	ed := r.ed
	funcs := map[string]lua.LGFunction{
		"html":          r.html,
		"set_html":      r.errOnly(func(L *lua.LState) error { return ed.SetHTML(L.CheckString(1)) }),
		"test_html":     r.testHTML,
		"set_test_html": r.errOnly(func(L *lua.LState) error { return ed.SetTestHTML(L.CheckString(1), L.OptString(2, "|")) }),
		"select":        r.errOnly(func(L *lua.LState) error { return ed.Select(L.CheckInt(1), L.OptInt(2, L.CheckInt(1))) }),
		"selection":     r.selection,
		"headings":      r.headings,

		"select_all": r.cmd(func(*lua.LState) (bool, error) { return ed.SelectAll() }),
		"insert":     r.cmd(func(L *lua.LState) (bool, error) { return ed.InsertText(L.CheckString(1)) }),
		"delete":     r.cmd(func(*lua.LState) (bool, error) { return ed.DeleteSelection() }),
		"split":      r.cmd(func(*lua.LState) (bool, error) { return ed.SplitBlock() }),
		"paste_html": r.cmd(func(L *lua.LState) (bool, error) { return ed.PasteHTML(L.CheckString(1)) }),
		"paste_text": r.cmd(func(L *lua.LState) (bool, error) { return ed.PasteText(L.CheckString(1)) }),

		"format":  r.cmd(func(L *lua.LState) (bool, error) { return ed.ToggleFormat(L.CheckString(1)) }),
		"style":   r.cmd(func(L *lua.LState) (bool, error) { return ed.SetStyle(L.CheckString(1)) }),
		"list":    r.cmd(func(L *lua.LState) (bool, error) { return ed.ToggleList(L.CheckString(1)) }),
		"indent":  r.cmd(func(*lua.LState) (bool, error) { return ed.Indent() }),
		"outdent": r.cmd(func(*lua.LState) (bool, error) { return ed.Outdent() }),

		"link":          r.cmd(func(L *lua.LState) (bool, error) { return ed.InsertLink(L.CheckString(1)) }),
		"internal_link": r.cmd(func(L *lua.LState) (bool, error) { return ed.InsertInternalLink(L.CheckInt(1)) }),
		"unlink":        r.cmd(func(*lua.LState) (bool, error) { return ed.DeleteLink() }),

		"image":        r.cmd(func(L *lua.LState) (bool, error) { return ed.InsertImage(L.CheckString(1), L.OptString(2, "")) }),
		"modify_image": r.cmd(func(L *lua.LState) (bool, error) { return ed.ModifyImage(L.OptString(1, ""), L.OptString(2, "")) }),
		"resize_image": r.cmd(func(L *lua.LState) (bool, error) { return ed.ResizeImage(L.CheckInt(1), L.CheckInt(2)) }),
		"copy_image":   r.cmd(func(*lua.LState) (bool, error) { return ed.CopyImage(), nil }),
		"cut_image":    r.cmd(func(*lua.LState) (bool, error) { return ed.CutImage() }),

		"table": r.cmd(func(L *lua.LState) (bool, error) {
			return ed.InsertTable(L.CheckInt(1), L.CheckInt(2), L.OptString(3, ""))
		}),
		"add_row":     r.cmd(func(L *lua.LState) (bool, error) { return ed.AddRow(L.OptString(1, commands.After)) }),
		"add_col":     r.cmd(func(L *lua.LState) (bool, error) { return ed.AddCol(L.OptString(1, commands.After)) }),
		"add_header":  r.cmd(func(L *lua.LState) (bool, error) { return ed.AddHeader(L.OptBool(1, true)) }),
		"delete_area": r.cmd(func(L *lua.LState) (bool, error) { return ed.DeleteTableArea(L.CheckString(1)) }),
		"border":      r.cmd(func(L *lua.LState) (bool, error) { return ed.BorderTable(L.CheckString(1)) }),

		"add_div":       r.cmd(func(L *lua.LState) (bool, error) { return ed.AddDiv(divSpec(L.CheckTable(1))) }),
		"remove_div":    r.cmd(func(L *lua.LState) (bool, error) { return ed.RemoveDiv(L.CheckString(1)) }),
		"add_button":    r.cmd(func(L *lua.LState) (bool, error) { return ed.AddButton(buttonSpec(L.CheckTable(1))) }),
		"remove_button": r.cmd(func(L *lua.LState) (bool, error) { return ed.RemoveButton(L.CheckString(1)) }),

		"undo": r.cmd(func(*lua.LState) (bool, error) { return ed.Undo() }),
		"redo": r.cmd(func(*lua.LState) (bool, error) { return ed.Redo() }),

		"search": r.cmd(func(L *lua.LState) (bool, error) {
			return ed.SearchFor(L.CheckString(1), search.ParseDirection(L.OptString(2, "forward")), L.OptBool(3, true))
		}),
		"enter": r.cmd(func(L *lua.LState) (bool, error) { return ed.HandleEnter(L.OptBool(1, false)) }),
		"cancel_search": func(*lua.LState) int {
			ed.CancelSearch()
			return 0
		},
		"report_height": func(L *lua.LState) int {
			ed.ReportHeight(L.CheckInt(1))
			return 0
		},

		"on":     r.on,
		"off":    r.off,
		"pause":  r.pause,
		"resume": r.resume,
	}
	mod := r.L.SetFuncs(r.L.NewTable(), funcs)
	mod.RawSetString("session", lua.LString(ed.ID()))
	r.L.SetGlobal("editor", mod)
}

// cmd adapts an editor command. Lua receives ok and, on failure, the
// error message.
func (r *Runtime) cmd(fn func(L *lua.LState) (bool, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		ok, err := fn(L)
		L.Push(lua.LBool(ok && err == nil))
		if err != nil {
			L.Push(lua.LString(err.Error()))
			return 2
		}
		return 1
	}
}

func (r *Runtime) errOnly(fn func(L *lua.LState) error) lua.LGFunction {
	return r.cmd(func(L *lua.LState) (bool, error) {
		err := fn(L)
		return err == nil, err
	})
}

// html([pretty [, clean [, div]]]) -> string | nil, err
func (r *Runtime) html(L *lua.LState) int {
	out, err := r.ed.GetHTML(L.OptBool(1, false), L.OptBool(2, true), L.OptString(3, ""))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LString(out))
	return 1
}

// test_html([marker]) -> string
func (r *Runtime) testHTML(L *lua.LState) int {
	L.Push(lua.LString(r.ed.GetTestHTML(L.OptString(1, "|"))))
	return 1
}

// selection() -> table
func (r *Runtime) selection(L *lua.LState) int {
	sel := r.ed.Selection()
	q := r.ed.SelectionState()
	t := L.NewTable()
	t.RawSetString("from", lua.LNumber(sel.Start()))
	t.RawSetString("to", lua.LNumber(sel.End()))
	t.RawSetString("empty", lua.LBool(q.Empty))
	t.RawSetString("style", lua.LString(q.Style))
	t.RawSetString("list", lua.LString(q.List))
	t.RawSetString("div", lua.LString(q.DivID))
	t.RawSetString("in_table", lua.LBool(q.InTable))
	t.RawSetString("in_link", lua.LBool(q.InLink))
	t.RawSetString("href", lua.LString(q.Href))
	t.RawSetString("undo", lua.LString(q.Undo))
	t.RawSetString("redo", lua.LString(q.Redo))
	t.RawSetString("undo_depth", lua.LNumber(q.UndoDepth))
	t.RawSetString("redo_depth", lua.LNumber(q.RedoDepth))
	marks := L.NewTable()
	for _, m := range q.Marks {
		marks.Append(lua.LString(m))
	}
	t.RawSetString("marks", marks)
	if q.Image != nil {
		img := L.NewTable()
		img.RawSetString("src", lua.LString(q.Image.Src))
		img.RawSetString("alt", lua.LString(q.Image.Alt))
		img.RawSetString("width", lua.LNumber(q.Image.Width))
		img.RawSetString("height", lua.LNumber(q.Image.Height))
		t.RawSetString("image", img)
	}
	L.Push(t)
	return 1
}

// headings() -> array of {pos, level, text, id}
func (r *Runtime) headings(L *lua.LState) int {
	out := L.NewTable()
	for _, h := range r.ed.Headings() {
		t := L.NewTable()
		t.RawSetString("pos", lua.LNumber(h.Pos))
		t.RawSetString("level", lua.LNumber(h.Level))
		t.RawSetString("text", lua.LString(h.Text))
		t.RawSetString("id", lua.LString(h.ID))
		out.Append(t)
	}
	L.Push(out)
	return 1
}

func divSpec(t *lua.LTable) commands.DivSpec {
	spec := commands.DivSpec{
		ID:       lua.LVAsString(t.RawGetString("id")),
		ParentID: lua.LVAsString(t.RawGetString("parent")),
		CSSClass: lua.LVAsString(t.RawGetString("class")),
		HTML:     lua.LVAsString(t.RawGetString("html")),
		Editable: true,
	}
	if v := t.RawGetString("editable"); v != lua.LNil {
		spec.Editable = lua.LVAsBool(v)
	}
	return spec
}

func buttonSpec(t *lua.LTable) commands.ButtonSpec {
	return commands.ButtonSpec{
		ID:       lua.LVAsString(t.RawGetString("id")),
		DivID:    lua.LVAsString(t.RawGetString("div")),
		Label:    lua.LVAsString(t.RawGetString("label")),
		CSSClass: lua.LVAsString(t.RawGetString("class")),
	}
}
