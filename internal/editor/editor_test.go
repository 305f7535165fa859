package editor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/event/topic"
	"github.com/dshills/markupeditor/internal/logging"
	"github.com/dshills/markupeditor/internal/search"
	"github.com/dshills/markupeditor/internal/state"
)

func newEditor(t *testing.T, html string, opts ...Option) *Editor {
	t.Helper()
	e := New(append([]Option{WithLogger(logging.Null())}, opts...)...)
	if err := e.SetTestHTML(html, "|"); err != nil {
		t.Fatalf("SetTestHTML(%q) error: %v", html, err)
	}
	return e
}

func wantHTML(t *testing.T, e *Editor, want string) {
	t.Helper()
	if got := e.GetTestHTML("|"); got != want {
		t.Errorf("html = %q\nwant   %q", got, want)
	}
}

// must returns a check for the results of a command that has to apply.
func must(t *testing.T) func(bool, error) {
	return func(ok bool, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("command error: %v", err)
		}
		if !ok {
			t.Fatal("command did not apply")
		}
	}
}

// recorder collects the events published on one topic.
type recorder[T any] struct {
	mu     sync.Mutex
	events []T
}

func record[T any](t *testing.T, e *Editor, tp topic.Topic) *recorder[T] {
	t.Helper()
	r := &recorder[T]{}
	_, err := e.Subscribe(tp, func(_ context.Context, ev any) error {
		if p, ok := event.Payload[T](ev); ok {
			r.mu.Lock()
			r.events = append(r.events, p)
			r.mu.Unlock()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe(%s) error: %v", tp, err)
	}
	return r
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.events...)
}

func (r *recorder[T]) last(t *testing.T) T {
	t.Helper()
	all := r.all()
	if len(all) == 0 {
		t.Fatal("no events recorded")
	}
	return all[len(all)-1]
}

func TestToggleBoldAtCursor(t *testing.T) {
	e := newEditor(t, "<p>Hello|</p>")
	changes := record[events.StateChanged](t, e, events.TopicStateChanged)
	must(t)(e.ToggleBold())
	if all := changes.all(); len(all) != 1 || all[0].Command != commands.NameToggleFormat {
		t.Errorf("state changes = %+v, want one from %s", all, commands.NameToggleFormat)
	}

	wantHTML(t, e, "<p>Hello|</p>")
	if got := e.SelectionState().Marks; len(got) != 1 || got[0] != "bold" {
		t.Errorf("active marks = %v, want [bold]", got)
	}

	must(t)(e.InsertText("!"))
	wantHTML(t, e, "<p>Hello<strong>!|</strong></p>")
}

func TestToggleFormatAtCursorNotifies(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		marks   int
	}{
		{"on", []string{"B"}, 1},
		{"on then off", []string{"B", "B"}, 0},
		{"two formats", []string{"B", "I"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, "<p>ab|</p>")
			changes := record[events.StateChanged](t, e, events.TopicStateChanged)
			for _, f := range tt.formats {
				must(t)(e.ToggleFormat(f))
			}
			if got := len(changes.all()); got != len(tt.formats) {
				t.Errorf("state changes = %d, want %d", got, len(tt.formats))
			}
			if got := e.SelectionState().Marks; len(got) != tt.marks {
				t.Errorf("active marks = %v, want %d", got, tt.marks)
			}
			wantHTML(t, e, "<p>ab|</p>")
		})
	}
}

func TestToggleListUndo(t *testing.T) {
	e := newEditor(t, "<p>|Hello|</p>")
	must(t)(e.ToggleList("UL"))
	wantHTML(t, e, "<ul><li><p>|Hello|</p></li></ul>")

	must(t)(e.Undo())
	wantHTML(t, e, "<p>|Hello|</p>")

	must(t)(e.Redo())
	wantHTML(t, e, "<ul><li><p>|Hello|</p></li></ul>")
}

func TestInsertTableInEmptyDoc(t *testing.T) {
	e := New(WithLogger(logging.Null()))
	must(t)(e.InsertTable(2, 2, ""))
	want := `<table class="bordered-table-cell">` +
		`<tr><td><p>|</p></td><td><p></p></td></tr>` +
		`<tr><td><p></p></td><td><p></p></td></tr></table>`
	wantHTML(t, e, want)
	if !e.SelectionState().InTable {
		t.Error("selection is not in the table")
	}
}

func TestAddColInMergedHeader(t *testing.T) {
	e := newEditor(t, `<table><tr><th colspan="2"><p>H|</p></th></tr>`+
		`<tr><td><p>a</p></td><td><p>b</p></td></tr></table>`)
	must(t)(e.AddCol(commands.After))

	tbl := e.Doc().FirstChild()
	header := tbl.FirstChild()
	if header.ChildCount() != 1 {
		t.Fatalf("header has %d cells, want 1", header.ChildCount())
	}
	if got := header.FirstChild().AttrInt("colspan", 1); got != 3 {
		t.Errorf("header colspan = %d, want 3", got)
	}
	if got := tbl.Child(1).ChildCount(); got != 3 {
		t.Errorf("body row has %d cells, want 3", got)
	}
}

func TestSetStyleUndo(t *testing.T) {
	e := newEditor(t, "<p>o|ne</p><p>tw|o</p>")
	must(t)(e.SetStyle("H1"))
	if got, _ := e.GetHTML(false, true, ""); got != "<h1>one</h1><h1>two</h1>" {
		t.Errorf("after SetStyle = %q", got)
	}
	must(t)(e.Undo())
	wantHTML(t, e, "<p>o|ne</p><p>tw|o</p>")
}

func TestUndoRedoEmpty(t *testing.T) {
	e := newEditor(t, "<p>a|</p>")
	if ok, err := e.Undo(); ok || err != nil {
		t.Errorf("Undo() = %v, %v on fresh history", ok, err)
	}
	if ok, err := e.Redo(); ok || err != nil {
		t.Errorf("Redo() = %v, %v on fresh history", ok, err)
	}

	must(t)(e.InsertText("b"))
	if !e.CanUndo() || e.CanRedo() {
		t.Errorf("CanUndo/CanRedo = %v/%v after edit", e.CanUndo(), e.CanRedo())
	}
	if err := e.SetHTML("<p>x</p>"); err != nil {
		t.Fatalf("SetHTML() error: %v", err)
	}
	if e.CanUndo() {
		t.Error("SetHTML kept the history")
	}
}

func TestTypingGroupsIntoOneUndo(t *testing.T) {
	e := newEditor(t, "<p>|</p>")
	for _, s := range []string{"a", "b", "c"} {
		must(t)(e.InsertText(s))
	}
	wantHTML(t, e, "<p>abc|</p>")
	must(t)(e.Undo())
	wantHTML(t, e, "<p>|</p>")
}

func TestGroup(t *testing.T) {
	e := newEditor(t, "<p>|ab|</p>")
	err := e.Group("format", func() error {
		if _, err := e.ToggleBold(); err != nil {
			return err
		}
		_, err := e.ToggleItalic()
		return err
	})
	if err != nil {
		t.Fatalf("Group() error: %v", err)
	}
	wantHTML(t, e, "<p><strong><em>|ab|</em></strong></p>")
	must(t)(e.Undo())
	wantHTML(t, e, "<p>|ab|</p>")
}

func TestStateEvents(t *testing.T) {
	e := newEditor(t, "<p>a|</p>")
	changes := record[events.StateChanged](t, e, events.TopicStateChanged)
	sels := record[events.SelectionChanged](t, e, events.TopicSelectionChanged)

	must(t)(e.InsertText("b"))
	got := changes.last(t)
	if got.Command != commands.NameInsertText || got.Size != 4 || !got.AddToHistory {
		t.Errorf("state change = %+v", got)
	}
	if s := sels.last(t); s.From != 3 || !s.Empty {
		t.Errorf("selection change = %+v", s)
	}

	must(t)(e.Undo())
	if got := changes.last(t); !got.Undo || got.Command != "history.undo" {
		t.Errorf("undo change = %+v", got)
	}

	n := len(changes.all())
	if err := e.Select(1, 2); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if len(changes.all()) != n {
		t.Error("selection change published a state change")
	}
	if s := sels.last(t); s.From != 1 || s.To != 2 || s.Empty {
		t.Errorf("selection change = %+v", s)
	}
}

func TestSelectionEventNamesItsCause(t *testing.T) {
	type seen struct {
		topic topic.Topic
		md    event.Metadata
	}
	tests := []struct {
		name   string
		act    func(e *Editor) error
		caused bool
	}{
		{"insert", func(e *Editor) error { _, err := e.InsertText("b"); return err }, true},
		{"set html", func(e *Editor) error { return e.SetHTML("<p>x</p>") }, true},
		{"select", func(e *Editor) error { return e.Select(1, 2) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, "<p>a|</p>")
			var got []seen
			_, err := e.Subscribe(topic.WildcardMulti, func(_ context.Context, ev any) error {
				got = append(got, seen{ev.(event.TopicProvider).EventTopic(), ev.(event.MetadataProvider).EventMetadata()})
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.act(e); err != nil {
				t.Fatalf("action error: %v", err)
			}
			last := got[len(got)-1]
			if last.topic != events.TopicSelectionChanged {
				t.Fatalf("last event = %s, want selection change", last.topic)
			}
			if !tt.caused {
				if len(got) != 1 || last.md.CausationID != "" {
					t.Errorf("events = %+v, want one uncaused selection change", got)
				}
				return
			}
			if len(got) != 2 || got[0].topic != events.TopicStateChanged {
				t.Fatalf("events = %+v, want state then selection change", got)
			}
			if last.md.CausationID != got[0].md.ID {
				t.Errorf("CausationID = %q, want %q", last.md.CausationID, got[0].md.ID)
			}
		})
	}
}

func TestSelectionStateHistory(t *testing.T) {
	e := newEditor(t, "<p>|</p>")
	if q := e.SelectionState(); q.Undo != "" || q.Redo != "" || q.UndoDepth != 0 {
		t.Errorf("fresh history = %+v", q)
	}

	must(t)(e.InsertText("a"))
	must(t)(e.SetStyle("H1"))
	q := e.SelectionState()
	if q.Undo != commands.NameSetStyle || q.UndoDepth != 2 || q.RedoDepth != 0 {
		t.Errorf("after edits undo = %q depth %d/%d", q.Undo, q.UndoDepth, q.RedoDepth)
	}

	must(t)(e.Undo())
	q = e.SelectionState()
	if q.Undo != commands.NameInsertText || q.Redo != commands.NameSetStyle || q.RedoDepth != 1 {
		t.Errorf("after undo = %q/%q depth %d", q.Undo, q.Redo, q.RedoDepth)
	}
	undo, redo := e.HistoryEntries()
	if len(undo) != 1 || undo[0].Description != commands.NameInsertText ||
		len(redo) != 1 || redo[0].Description != commands.NameSetStyle {
		t.Errorf("HistoryEntries() = %+v, %+v", undo, redo)
	}
}

func TestSubscribeHandlerAndStats(t *testing.T) {
	bus := event.NewBus()
	a := newEditor(t, "<p>|</p>", WithBus(bus))
	b := newEditor(t, "<p>|</p>", WithBus(bus))
	var got []string
	_, err := a.SubscribeHandler(events.TopicStateChanged, event.AsHandler(
		func(_ context.Context, ev event.Event[events.StateChanged]) error {
			got = append(got, ev.Payload.Command)
			return nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	before := a.EventStats().EventsPublished

	must(t)(b.InsertText("x"))
	must(t)(a.InsertText("y"))
	if len(got) != 1 || got[0] != commands.NameInsertText {
		t.Errorf("handler saw %v, want one insert from its own session", got)
	}
	s := a.EventStats()
	if s.EventsPublished != before+4 || s.ActiveSubscribers != 1 {
		t.Errorf("EventStats() = %+v, published before %d", s, before)
	}
}

func TestErrorsArePublished(t *testing.T) {
	e := newEditor(t, "<p>a|</p>")
	errs := record[events.Error](t, e, events.TopicError)

	_, err := e.SetStyle("H9")
	if !errors.Is(err, &Error{Code: CodeStyle}) {
		t.Fatalf("SetStyle(H9) error = %v, want Style error", err)
	}
	if got := errs.last(t); got.Code != string(CodeStyle) {
		t.Errorf("error event = %+v", got)
	}

	if _, err := e.GetHTML(false, true, "missing"); !errors.Is(err, &Error{Code: CodeDiv}) {
		t.Errorf("GetHTML(missing) error = %v, want Div error", err)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	e := newEditor(t, "<p>a|</p>")
	errs := record[events.Error](t, e, events.TopicError)
	before := e.Doc()

	ok, err := e.exec("boom", func(*state.EditorState) (*state.Transaction, error) {
		panic("boom")
	})
	if ok {
		t.Error("panicking command reported success")
	}
	var ee *Error
	if !errors.As(err, &ee) || ee.Code != CodeInternal {
		t.Fatalf("error = %v, want Internal", err)
	}
	if got := errs.last(t); !got.Alert {
		t.Errorf("internal error event without alert: %+v", got)
	}
	if e.Doc() != before {
		t.Error("document changed after panic")
	}
	must(t)(e.InsertText("b"))
}

func TestSettleLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf})
	e := newEditor(t, "<p>a|</p>", WithLogger(log))

	e.settle("boom", func() error { panic("boom") })
	out := buf.String()
	if !strings.Contains(out, "panic in boom") {
		t.Errorf("log lacks the recovered panic:\n%s", out)
	}
	if !strings.Contains(out, "error not returned to caller") {
		t.Errorf("log lacks the dropped error:\n%s", out)
	}
}

func TestHandlersMayReenter(t *testing.T) {
	e := newEditor(t, "<p>a|</p>")
	var html string
	_, err := e.Subscribe(events.TopicStateChanged, func(context.Context, any) error {
		var err error
		html, err = e.GetHTML(false, true, "")
		return err
	})
	if err != nil {
		t.Fatalf("Subscribe() error: %v", err)
	}
	must(t)(e.InsertText("b"))
	if html != "<p>ab</p>" {
		t.Errorf("html seen by handler = %q", html)
	}
}

func TestTestHTMLMarkers(t *testing.T) {
	tests := []struct {
		name string
		html string
		from int
		to   int
	}{
		{"no marker", "<p>ab</p>", 1, 1},
		{"cursor", "<p>a|b</p>", 2, 2},
		{"range", "<p>|ab|</p>", 1, 3},
		{"range across blocks", "<p>a|b</p><p>c|d</p>", 2, 6},
		{"range across marks", "<p>|a<strong>b|</strong></p>", 1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, tt.html)
			sel := e.Selection()
			if sel.Start() != tt.from || sel.End() != tt.to {
				t.Errorf("selection = %s, want %d..%d", sel, tt.from, tt.to)
			}
			if tt.name != "no marker" {
				wantHTML(t, e, tt.html)
			}
		})
	}

	e := New(WithLogger(logging.Null()))
	if err := e.SetTestHTML("<p>|a|b|</p>", "|"); !errors.Is(err, &Error{Code: CodeParse}) {
		t.Errorf("three markers error = %v", err)
	}
	if err := e.SetTestHTML("<p>a</p>", ""); !errors.Is(err, &Error{Code: CodeParse}) {
		t.Errorf("empty marker error = %v", err)
	}
}

func TestGetHTMLForDiv(t *testing.T) {
	cfg := config.Default()
	cfg.Behavior.StripHostElements = false
	e := New(WithLogger(logging.Null()), WithConfig(cfg))
	if err := e.SetHTML(`<p>x</p><div id="d1"><p>inside</p></div>`); err != nil {
		t.Fatalf("SetHTML() error: %v", err)
	}
	got, err := e.GetHTML(false, true, "d1")
	if err != nil {
		t.Fatalf("GetHTML(d1) error: %v", err)
	}
	if got != `<p>inside</p>` {
		t.Errorf("GetHTML(d1) = %q, want the div's content", got)
	}
	if err := e.Select(5, 5); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if id := e.SelectedDivID(); id != "d1" {
		t.Errorf("SelectedDivID() = %q, want d1", id)
	}
}

func TestSelectionAcrossDivs(t *testing.T) {
	cfg := config.Default()
	cfg.Behavior.StripHostElements = false
	e := New(WithLogger(logging.Null()), WithConfig(cfg))
	src := `<div id="o"><div id="a"><p>a</p></div><div id="b"><p>b</p></div></div><p>c</p>`
	if err := e.SetHTML(src); err != nil {
		t.Fatalf("SetHTML() error: %v", err)
	}
	sels := record[events.SelectionChanged](t, e, events.TopicSelectionChanged)

	if err := e.Select(3, 3); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if id := e.SelectedDivID(); id != "a" {
		t.Fatalf("SelectedDivID() = %q, want a", id)
	}

	tests := []struct {
		name         string
		anchor, head int
		wantDiv      string
	}{
		{"sibling divs", 3, 8, "o"},
		{"div to top level", 8, 14, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.Selection()
			if err := e.Select(tt.anchor, tt.head); err != nil {
				t.Fatalf("Select() error: %v", err)
			}
			if !e.Selection().Eq(before) {
				t.Errorf("selection moved to %s", e.Selection())
			}
			if id := e.SelectedDivID(); id != tt.wantDiv {
				t.Errorf("SelectedDivID() = %q, want %q", id, tt.wantDiv)
			}
			if ev := sels.last(t); ev.DivID != tt.wantDiv || ev.From != before.Start() {
				t.Errorf("selection event = %+v", ev)
			}
		})
	}

	if err := e.Select(8, 9); err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if id := e.SelectedDivID(); id != "b" {
		t.Errorf("SelectedDivID() = %q, want b", id)
	}
}

func TestSearch(t *testing.T) {
	e := newEditor(t, "<p>|foo bar foo</p>")
	counts := record[events.SearchCountChanged](t, e, events.TopicSearchCountChanged)

	found, err := e.SearchFor("foo", search.Forward, true)
	if err != nil || !found {
		t.Fatalf("SearchFor() = %v, %v", found, err)
	}
	if c := counts.last(t); c.Count != 2 || c.Current != 0 || c.Query != "foo" {
		t.Errorf("count event = %+v", c)
	}
	wantHTML(t, e, "<p>|foo| bar foo</p>")

	steps := []struct {
		shift bool
		want  string
	}{
		{false, "<p>foo bar |foo|</p>"},
		{false, "<p>|foo| bar foo</p>"},
		{true, "<p>foo bar |foo|</p>"},
	}
	for _, s := range steps {
		handled, err := e.HandleEnter(s.shift)
		if err != nil || !handled {
			t.Fatalf("HandleEnter(%v) = %v, %v", s.shift, handled, err)
		}
		wantHTML(t, e, s.want)
	}

	must(t)(e.InsertText("x"))
	if e.SearchState() != search.StateIndexed {
		t.Errorf("state after edit = %s, want indexed", e.SearchState())
	}
	if handled, _ := e.HandleEnter(false); handled {
		t.Error("Enter was taken by an inactive search")
	}

	e.CancelSearch()
	if e.SearchState() != search.StateInactive {
		t.Errorf("state after cancel = %s", e.SearchState())
	}
	if c := counts.last(t); c.Count != 0 || c.Current != -1 {
		t.Errorf("cancel count event = %+v", c)
	}
}

func TestEditInvalidatesSearchIndex(t *testing.T) {
	tests := []struct {
		name     string
		activate bool
	}{
		{"indexed", false},
		{"active", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t, "<p>abx|</p>")
			if _, err := e.SearchFor("ab", search.Forward, tt.activate); err != nil {
				t.Fatalf("SearchFor() error: %v", err)
			}
			if got := e.SearchMatches(); len(got) != 1 {
				t.Fatalf("matches = %v, want 1", got)
			}

			must(t)(e.InsertText("abab"))
			wantHTML(t, e, "<p>abab|x</p>")
			if got := e.SearchMatches(); len(got) != 0 {
				t.Errorf("matches after edit = %v, want none", got)
			}
			if e.SearchState() != search.StateIndexed {
				t.Errorf("state after edit = %s, want indexed", e.SearchState())
			}

			if _, err := e.SearchFor("ab", search.Forward, false); err != nil {
				t.Fatalf("SearchFor() error: %v", err)
			}
			want := []search.Match{{From: 1, To: 3}, {From: 3, To: 5}}
			if got := e.SearchMatches(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("matches after search = %v, want %v", got, want)
			}
		})
	}
}

func TestSearchWithoutActivation(t *testing.T) {
	e := newEditor(t, "<p>|abc</p>")
	if found, err := e.SearchFor("zzz", search.Forward, false); found || err != nil {
		t.Errorf("SearchFor(zzz) = %v, %v", found, err)
	}
	if e.SearchState() != search.StateIndexed {
		t.Errorf("state = %s, want indexed", e.SearchState())
	}
	if handled, _ := e.HandleEnter(false); handled {
		t.Error("Enter was taken by an indexed search")
	}
	if found, err := e.SearchFor("", search.Forward, true); found || err != nil {
		t.Errorf("SearchFor(\"\") = %v, %v", found, err)
	}
	if e.SearchState() != search.StateInactive {
		t.Errorf("state after empty query = %s", e.SearchState())
	}
}

func TestImageCopyAndCut(t *testing.T) {
	cfg := config.Default()
	cfg.Behavior.SelectImage = true
	e := newEditor(t, "<p>ab|</p>", WithConfig(cfg))
	copies := record[events.ImageCopied](t, e, events.TopicImageCopied)

	must(t)(e.InsertImage("a.png", "A"))
	if _, ok := e.Selection().(state.NodeSelection); !ok {
		t.Fatalf("selection = %s, want the image", e.Selection())
	}
	must(t)(e.ResizeImage(10, 20))

	if !e.CopyImage() {
		t.Fatal("CopyImage() = false")
	}
	want := events.ImageCopied{Src: "a.png", Alt: "A", Width: 10, Height: 20}
	if got := copies.last(t); got != want {
		t.Errorf("copy event = %+v, want %+v", got, want)
	}

	must(t)(e.CutImage())
	want.Cut = true
	if got := copies.last(t); got != want {
		t.Errorf("cut event = %+v, want %+v", got, want)
	}
	wantHTML(t, e, "<p>ab|</p>")
	if e.CopyImage() {
		t.Error("CopyImage() without an image = true")
	}
}

func TestInsertLinkSelection(t *testing.T) {
	e := newEditor(t, "<p>a|</p>")
	must(t)(e.InsertLink("https://x.test"))
	if got, _ := e.GetHTML(false, true, ""); got != `<p>a<a href="https://x.test">https://x.test</a></p>` {
		t.Errorf("html = %q", got)
	}
	if sel := e.Selection(); sel.Start() != 2 || sel.End() != 16 {
		t.Errorf("selection = %s, want the link text", sel)
	}

	cfg := config.Default()
	cfg.Behavior.InsertLinkSelectsText = false
	e = newEditor(t, "<p>a|</p>", WithConfig(cfg))
	must(t)(e.InsertLink("u"))
	if !e.Selection().IsEmpty() || e.Selection().Start() != 3 {
		t.Errorf("selection = %s, want cursor after link", e.Selection())
	}
}

func TestReportHeight(t *testing.T) {
	e := newEditor(t, "<p>a</p>")
	heights := record[events.HeightChanged](t, e, events.TopicHeightChanged)
	for _, h := range []int{100, 100, 120} {
		e.ReportHeight(h)
	}
	got := heights.all()
	if len(got) != 2 || got[0].Height != 100 || got[1].Height != 120 {
		t.Errorf("height events = %+v", got)
	}
}

func TestSetConfig(t *testing.T) {
	e := newEditor(t, "<p>a</p>")
	cfg := config.Default()
	cfg.Behavior.DefaultTableBorder = "diagonal"
	if err := e.SetConfig(cfg); err == nil {
		t.Error("SetConfig() accepted an invalid border")
	}
	cfg.Behavior.DefaultTableBorder = commands.BorderOuter
	if err := e.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig() error: %v", err)
	}
	must(t)(e.InsertTable(1, 1, ""))
	if got := e.Doc().Child(1).Attr("class"); got != "bordered-table-outer" {
		t.Errorf("table class = %q", got)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newEditor(t, "<p>a|</p>")
	b := newEditor(t, "<p>b|</p>")
	if a.ID() == b.ID() {
		t.Fatal("sessions share an id")
	}
	seen := record[events.StateChanged](t, b, events.TopicStateChanged)
	must(t)(a.InsertText("x"))
	if len(seen.all()) != 0 {
		t.Error("session b saw a change made in a")
	}
	wantHTML(t, b, "<p>b|</p>")
}
