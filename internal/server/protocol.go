package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/editor"
	"github.com/dshills/markupeditor/internal/history"
	"github.com/dshills/markupeditor/internal/search"
)

// Message types sent to the client.
const (
	TypeHello  = "hello"
	TypeResult = "result"
	TypeEvent  = "event"
)

// Request is a command sent by the client.
type Request struct {
	// ID is echoed in the result so the client can match replies.
	ID   int             `json:"id"`
	Cmd  string          `json:"cmd"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Hello is the first message on a connection.
type Hello struct {
	Type    string `json:"type"`
	Session string `json:"session"`
}

// Result answers a Request. Value is true or false for commands that
// report whether they changed anything, and the requested data for
// queries.
type Result struct {
	Type  string     `json:"type"`
	ID    int        `json:"id"`
	OK    bool       `json:"ok"`
	Value any        `json:"value,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

// EventMessage carries an editor event to the client.
type EventMessage struct {
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	EventID string `json:"event_id"`
	Payload any    `json:"payload"`

	// Cause is the ID of the event that led to this one, if any.
	Cause string `json:"cause,omitempty"`
}

// ErrorInfo is the wire form of an editor error.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Info    string `json:"info,omitempty"`
	Alert   bool   `json:"alert,omitempty"`
}

func errorOf(err error) *ErrorInfo {
	var e *editor.Error
	if errors.As(err, &e) {
		return &ErrorInfo{Code: string(e.Code), Message: e.Message, Info: e.Info, Alert: e.Alert}
	}
	return &ErrorInfo{Code: string(editor.CodeInternal), Message: err.Error(), Alert: true}
}

// args holds every argument any command takes. Commands read the fields
// they need and ignore the rest.
type args struct {
	HTML   string `json:"html"`
	Text   string `json:"text"`
	Tag    string `json:"tag"`
	URL    string `json:"url"`
	Marker string `json:"marker"`

	Pos    int  `json:"pos"`
	Anchor int  `json:"anchor"`
	Head   *int `json:"head"`

	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`

	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	Border  string `json:"border"`
	Dir     string `json:"dir"`
	Area    string `json:"area"`
	Colspan *bool  `json:"colspan"`

	Query    string `json:"query"`
	Activate *bool  `json:"activate"`
	Shift    bool   `json:"shift"`

	Pretty bool   `json:"pretty"`
	Clean  *bool  `json:"clean"`
	Div    string `json:"div"`

	ID       string `json:"id"`
	Parent   string `json:"parent"`
	Class    string `json:"class"`
	Editable *bool  `json:"editable"`
	Label    string `json:"label"`
}

func orTrue(b *bool) bool { return b == nil || *b }

func orString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type handler func(e *editor.Editor, a args) (any, error)

// changed adapts a command that reports whether it changed anything.
func changed(fn func(*editor.Editor, args) (bool, error)) handler {
	return func(e *editor.Editor, a args) (any, error) {
		return fn(e, a)
	}
}

// done adapts an operation that returns only an error.
func done(fn func(*editor.Editor, args) error) handler {
	return func(e *editor.Editor, a args) (any, error) {
		return nil, fn(e, a)
	}
}

var handlers = map[string]handler{
	"html": func(e *editor.Editor, a args) (any, error) {
		return e.GetHTML(a.Pretty, orTrue(a.Clean), a.Div)
	},
	"set_html": done(func(e *editor.Editor, a args) error { return e.SetHTML(a.HTML) }),
	"test_html": func(e *editor.Editor, a args) (any, error) {
		return e.GetTestHTML(orString(a.Marker, "|")), nil
	},
	"set_test_html": done(func(e *editor.Editor, a args) error {
		return e.SetTestHTML(a.HTML, orString(a.Marker, "|"))
	}),
	"select": done(func(e *editor.Editor, a args) error {
		head := a.Anchor
		if a.Head != nil {
			head = *a.Head
		}
		return e.Select(a.Anchor, head)
	}),
	"selection": func(e *editor.Editor, _ args) (any, error) { return selectionOf(e), nil },
	"headings": func(e *editor.Editor, _ args) (any, error) {
		out := []headingView{}
		for _, h := range e.Headings() {
			out = append(out, headingView{Pos: h.Pos, Level: h.Level, Text: h.Text, ID: h.ID})
		}
		return out, nil
	},

	"select_all": changed(func(e *editor.Editor, _ args) (bool, error) { return e.SelectAll() }),
	"insert":     changed(func(e *editor.Editor, a args) (bool, error) { return e.InsertText(a.Text) }),
	"delete":     changed(func(e *editor.Editor, _ args) (bool, error) { return e.DeleteSelection() }),
	"split":      changed(func(e *editor.Editor, _ args) (bool, error) { return e.SplitBlock() }),
	"paste_html": changed(func(e *editor.Editor, a args) (bool, error) { return e.PasteHTML(a.HTML) }),
	"paste_text": changed(func(e *editor.Editor, a args) (bool, error) { return e.PasteText(a.Text) }),

	"format":  changed(func(e *editor.Editor, a args) (bool, error) { return e.ToggleFormat(a.Tag) }),
	"style":   changed(func(e *editor.Editor, a args) (bool, error) { return e.SetStyle(a.Tag) }),
	"list":    changed(func(e *editor.Editor, a args) (bool, error) { return e.ToggleList(a.Tag) }),
	"indent":  changed(func(e *editor.Editor, _ args) (bool, error) { return e.Indent() }),
	"outdent": changed(func(e *editor.Editor, _ args) (bool, error) { return e.Outdent() }),

	"link":          changed(func(e *editor.Editor, a args) (bool, error) { return e.InsertLink(a.URL) }),
	"internal_link": changed(func(e *editor.Editor, a args) (bool, error) { return e.InsertInternalLink(a.Pos) }),
	"unlink":        changed(func(e *editor.Editor, _ args) (bool, error) { return e.DeleteLink() }),

	"image":        changed(func(e *editor.Editor, a args) (bool, error) { return e.InsertImage(a.Src, a.Alt) }),
	"modify_image": changed(func(e *editor.Editor, a args) (bool, error) { return e.ModifyImage(a.Src, a.Alt) }),
	"resize_image": changed(func(e *editor.Editor, a args) (bool, error) { return e.ResizeImage(a.Width, a.Height) }),
	"copy_image":   changed(func(e *editor.Editor, _ args) (bool, error) { return e.CopyImage(), nil }),
	"cut_image":    changed(func(e *editor.Editor, _ args) (bool, error) { return e.CutImage() }),

	"table": changed(func(e *editor.Editor, a args) (bool, error) {
		return e.InsertTable(a.Rows, a.Cols, a.Border)
	}),
	"add_row":     changed(func(e *editor.Editor, a args) (bool, error) { return e.AddRow(orString(a.Dir, commands.After)) }),
	"add_col":     changed(func(e *editor.Editor, a args) (bool, error) { return e.AddCol(orString(a.Dir, commands.After)) }),
	"add_header":  changed(func(e *editor.Editor, a args) (bool, error) { return e.AddHeader(orTrue(a.Colspan)) }),
	"delete_area": changed(func(e *editor.Editor, a args) (bool, error) { return e.DeleteTableArea(a.Area) }),
	"border":      changed(func(e *editor.Editor, a args) (bool, error) { return e.BorderTable(a.Border) }),

	"add_div": changed(func(e *editor.Editor, a args) (bool, error) {
		return e.AddDiv(commands.DivSpec{ID: a.ID, ParentID: a.Parent, CSSClass: a.Class, Editable: orTrue(a.Editable), HTML: a.HTML})
	}),
	"remove_div": changed(func(e *editor.Editor, a args) (bool, error) { return e.RemoveDiv(a.ID) }),
	"add_button": changed(func(e *editor.Editor, a args) (bool, error) {
		return e.AddButton(commands.ButtonSpec{ID: a.ID, DivID: a.Div, Label: a.Label, CSSClass: a.Class})
	}),
	"remove_button": changed(func(e *editor.Editor, a args) (bool, error) { return e.RemoveButton(a.ID) }),

	"undo":    changed(func(e *editor.Editor, _ args) (bool, error) { return e.Undo() }),
	"history": func(e *editor.Editor, _ args) (any, error) { return historyOf(e), nil },
	"redo":    changed(func(e *editor.Editor, _ args) (bool, error) { return e.Redo() }),

	"search": changed(func(e *editor.Editor, a args) (bool, error) {
		return e.SearchFor(a.Query, search.ParseDirection(orString(a.Dir, "forward")), orTrue(a.Activate))
	}),
	"enter": changed(func(e *editor.Editor, a args) (bool, error) { return e.HandleEnter(a.Shift) }),
	"cancel_search": done(func(e *editor.Editor, _ args) error {
		e.CancelSearch()
		return nil
	}),
	"report_height": done(func(e *editor.Editor, a args) error {
		e.ReportHeight(a.Height)
		return nil
	}),
}

// dispatch runs one request against e.
func dispatch(e *editor.Editor, req Request) Result {
	res := Result{Type: TypeResult, ID: req.ID}
	h, ok := handlers[req.Cmd]
	if !ok {
		res.Error = &ErrorInfo{Code: "Request", Message: fmt.Sprintf("unknown command %q", req.Cmd)}
		return res
	}
	var a args
	if len(req.Args) > 0 {
		if err := json.Unmarshal(req.Args, &a); err != nil {
			res.Error = &ErrorInfo{Code: "Request", Message: "invalid arguments", Info: err.Error()}
			return res
		}
	}
	v, err := h(e, a)
	if err != nil {
		res.Error = errorOf(err)
		return res
	}
	res.OK = true
	res.Value = v
	return res
}

type headingView struct {
	Pos   int    `json:"pos"`
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
}

type imageView struct {
	Src    string `json:"src"`
	Alt    string `json:"alt,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type historyView struct {
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

// historyOf lists the session's undo and redo units, oldest first.
func historyOf(e *editor.Editor) map[string][]historyView {
	undo, redo := e.HistoryEntries()
	views := func(infos []history.Info) []historyView {
		out := make([]historyView, 0, len(infos))
		for _, i := range infos {
			out = append(out, historyView{Description: i.Description, Time: i.Timestamp})
		}
		return out
	}
	return map[string][]historyView{"undo": views(undo), "redo": views(redo)}
}

type statsView struct {
	EventsPublished   uint64 `json:"events_published"`
	EventsDelivered   uint64 `json:"events_delivered"`
	HandlerErrors     uint64 `json:"handler_errors"`
	HandlerPanics     uint64 `json:"handler_panics"`
	ActiveSubscribers int    `json:"active_subscribers"`
}

func statsOf(e *editor.Editor) statsView {
	s := e.EventStats()
	return statsView{
		EventsPublished:   s.EventsPublished,
		EventsDelivered:   s.EventsDelivered,
		HandlerErrors:     s.HandlerErrors,
		HandlerPanics:     s.HandlerPanics,
		ActiveSubscribers: s.ActiveSubscribers,
	}
}

type selectionView struct {
	From       int        `json:"from"`
	To         int        `json:"to"`
	Empty      bool       `json:"empty"`
	Marks      []string   `json:"marks"`
	Style      string     `json:"style"`
	List       string     `json:"list,omitempty"`
	InTable    bool       `json:"in_table"`
	HasHeader  bool       `json:"has_header"`
	InLink     bool       `json:"in_link"`
	Href       string     `json:"href,omitempty"`
	Image      *imageView `json:"image,omitempty"`
	DivID      string     `json:"div_id,omitempty"`
	Editable   bool       `json:"editable"`
	CanIndent  bool       `json:"can_indent"`
	CanOutdent bool       `json:"can_outdent"`
	Undo       string     `json:"undo,omitempty"`
	Redo       string     `json:"redo,omitempty"`
	UndoDepth  int        `json:"undo_depth"`
	RedoDepth  int        `json:"redo_depth"`
}

func selectionOf(e *editor.Editor) selectionView {
	sel := e.Selection()
	q := e.SelectionState()
	v := selectionView{
		From:       sel.Start(),
		To:         sel.End(),
		Empty:      q.Empty,
		Marks:      q.Marks,
		Style:      q.Style,
		List:       q.List,
		InTable:    q.InTable,
		HasHeader:  q.HasHeader,
		InLink:     q.InLink,
		Href:       q.Href,
		DivID:      q.DivID,
		Editable:   q.Editable,
		CanIndent:  q.CanIndent,
		CanOutdent: q.CanOutdent,
		Undo:       q.Undo,
		Redo:       q.Redo,
		UndoDepth:  q.UndoDepth,
		RedoDepth:  q.RedoDepth,
	}
	if v.Marks == nil {
		v.Marks = []string{}
	}
	if q.Image != nil {
		v.Image = &imageView{Src: q.Image.Src, Alt: q.Image.Alt, Width: q.Image.Width, Height: q.Image.Height}
	}
	return v
}
