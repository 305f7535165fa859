package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/markupeditor/internal/logging"
)

// inbound is any message the server sends.
type inbound struct {
	Type    string         `json:"type"`
	Session string         `json:"session"`
	ID      int            `json:"id"`
	OK      bool           `json:"ok"`
	Value   any            `json:"value"`
	Error   *ErrorInfo     `json:"error"`
	Topic   string         `json:"topic"`
	EventID string         `json:"event_id"`
	Cause   string         `json:"cause"`
	Payload map[string]any `json:"payload"`
}

type testConn struct {
	t       *testing.T
	ws      *websocket.Conn
	session string
	next    int
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(WithLogger(logging.Null()))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func dial(t *testing.T, ts *httptest.Server) *testConn {
	t.Helper()
	return dialQuery(t, ts, "")
}

func wsURL(ts *httptest.Server, query string) string {
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	if query != "" {
		url += "?" + query
	}
	return url
}

func dialQuery(t *testing.T, ts *httptest.Server, query string) *testConn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	c := &testConn{t: t, ws: ws}
	hello := c.read()
	if hello.Type != TypeHello || hello.Session == "" {
		t.Fatalf("first message = %+v, want hello", hello)
	}
	c.session = hello.Session
	return c
}

func (c *testConn) read() inbound {
	c.t.Helper()
	_ = c.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg inbound
	if err := c.ws.ReadJSON(&msg); err != nil {
		c.t.Fatalf("ReadJSON() error: %v", err)
	}
	return msg
}

// call sends a request and returns its result with the events that came
// before it.
func (c *testConn) call(cmd string, args map[string]any) (inbound, []inbound) {
	c.t.Helper()
	c.next++
	req := map[string]any{"id": c.next, "cmd": cmd}
	if args != nil {
		req["args"] = args
	}
	if err := c.ws.WriteJSON(req); err != nil {
		c.t.Fatalf("WriteJSON() error: %v", err)
	}
	var evs []inbound
	for {
		msg := c.read()
		switch msg.Type {
		case TypeEvent:
			evs = append(evs, msg)
		case TypeResult:
			if msg.ID != c.next {
				c.t.Fatalf("result id = %d, want %d", msg.ID, c.next)
			}
			return msg, evs
		default:
			c.t.Fatalf("unexpected message %+v", msg)
		}
	}
}

func (c *testConn) mustCall(cmd string, args map[string]any) inbound {
	c.t.Helper()
	res, _ := c.call(cmd, args)
	if !res.OK {
		c.t.Fatalf("%s failed: %+v", cmd, res.Error)
	}
	return res
}

func TestWebSocketCommands(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	c.mustCall("set_test_html", map[string]any{"html": "<p>Hello|</p>"})
	if res := c.mustCall("format", map[string]any{"tag": "B"}); res.Value != true {
		t.Errorf("format value = %v, want true", res.Value)
	}

	res, evs := c.call("insert", map[string]any{"text": "!"})
	if !res.OK || res.Value != true {
		t.Fatalf("insert result = %+v", res)
	}
	var sawChange bool
	for _, ev := range evs {
		if ev.Topic == "editor.state.changed" && ev.Payload["command"] == "text.insert" {
			sawChange = true
		}
	}
	if !sawChange {
		t.Errorf("insert events = %+v, want editor.state.changed from text.insert", evs)
	}

	if got := c.mustCall("test_html", nil).Value; got != "<p>Hello<strong>!|</strong></p>" {
		t.Errorf("test_html = %v", got)
	}

	sel := c.mustCall("selection", nil).Value.(map[string]any)
	if sel["from"] != float64(7) || sel["empty"] != true || sel["style"] != "P" {
		t.Errorf("selection = %v", sel)
	}
	if sel["undo"] != "text.insert" || sel["undo_depth"] != float64(1) || sel["redo_depth"] != float64(0) {
		t.Errorf("selection history = %v %v %v", sel["undo"], sel["undo_depth"], sel["redo_depth"])
	}

	c.mustCall("undo", nil)
	if got := c.mustCall("html", nil).Value; got != "<p>Hello</p>" {
		t.Errorf("html after undo = %v", got)
	}
	sel = c.mustCall("selection", nil).Value.(map[string]any)
	if _, ok := sel["undo"]; ok || sel["redo"] != "text.insert" || sel["redo_depth"] != float64(1) {
		t.Errorf("selection after undo = %v", sel)
	}
	hist := c.mustCall("history", nil).Value.(map[string]any)
	undo, redo := hist["undo"].([]any), hist["redo"].([]any)
	if len(undo) != 0 || len(redo) != 1 || redo[0].(map[string]any)["description"] != "text.insert" {
		t.Errorf("history = %v", hist)
	}
}

func TestSelectionEventNamesItsCause(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	_, evs := c.call("insert", map[string]any{"text": "ab"})
	if len(evs) != 2 || evs[0].Topic != "editor.state.changed" || evs[1].Topic != "editor.selection.changed" {
		t.Fatalf("events = %+v, want state then selection change", evs)
	}
	if evs[0].EventID == "" || evs[0].Cause != "" {
		t.Errorf("state event id %q cause %q", evs[0].EventID, evs[0].Cause)
	}
	if evs[1].Cause != evs[0].EventID {
		t.Errorf("selection cause = %q, want %q", evs[1].Cause, evs[0].EventID)
	}

	_, evs = c.call("select", map[string]any{"anchor": 1})
	if len(evs) != 1 || evs[0].Cause != "" {
		t.Errorf("select events = %+v, want one uncaused selection change", evs)
	}
}

func TestWebSocketTopicFilter(t *testing.T) {
	tests := []struct {
		name   string
		topics string
		cmd    string
		args   map[string]any
		want   []string
	}{
		{"errors only skip changes", "editor.error", "insert", map[string]any{"text": "a"}, nil},
		{"errors only pass errors", "editor.error", "style", map[string]any{"tag": "H9"}, []string{"editor.error"}},
		{"prefix selects subtree", "editor.state", "insert", map[string]any{"text": "a"}, []string{"editor.state.changed"}},
		{"wildcard pattern", "editor.*.changed", "insert", map[string]any{"text": "a"},
			[]string{"editor.state.changed", "editor.selection.changed"}},
		{"several topics", "search,editor.selection", "insert", map[string]any{"text": "a"},
			[]string{"editor.selection.changed"}},
		{"empty list passes all", "", "insert", map[string]any{"text": "a"},
			[]string{"editor.state.changed", "editor.selection.changed"}},
	}
	_, ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := dialQuery(t, ts, "topics="+tt.topics)
			_, evs := c.call(tt.cmd, tt.args)
			var got []string
			for _, ev := range evs {
				got = append(got, ev.Topic)
			}
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocketRejectsBadTopics(t *testing.T) {
	_, ts := newTestServer(t)
	ws, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "topics=editor..error"), nil)
	if err == nil {
		ws.Close()
		t.Fatal("Dial() succeeded with an invalid topic")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Dial() response = %v, want 400", resp)
	}
}

func TestPauseEvents(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	if res := c.mustCall("pause_events", nil); res.Value != "paused" {
		t.Errorf("pause_events value = %v", res.Value)
	}
	if _, evs := c.call("insert", map[string]any{"text": "a"}); len(evs) != 0 {
		t.Errorf("events while paused = %+v", evs)
	}
	if res := c.mustCall("resume_events", nil); res.Value != "active" {
		t.Errorf("resume_events value = %v", res.Value)
	}
	if _, evs := c.call("insert", map[string]any{"text": "b"}); len(evs) != 2 {
		t.Errorf("events after resume = %+v, want 2", evs)
	}
	if got := c.mustCall("html", nil).Value; got != "<p>ab</p>" {
		t.Errorf("html = %v", got)
	}
}

func TestWebSocketErrors(t *testing.T) {
	_, ts := newTestServer(t)
	c := dial(t, ts)

	res, evs := c.call("style", map[string]any{"tag": "H9"})
	if res.OK || res.Error == nil || res.Error.Code != "Style" {
		t.Fatalf("style H9 result = %+v", res)
	}
	if len(evs) != 1 || evs[0].Topic != "editor.error" || evs[0].Payload["code"] != "Style" {
		t.Errorf("events = %+v, want one editor.error", evs)
	}

	tests := []struct {
		name string
		cmd  string
		args map[string]any
	}{
		{"unknown command", "explode", nil},
		{"bad arguments", "insert", map[string]any{"text": 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _ := c.call(tt.cmd, tt.args)
			if res.OK || res.Error == nil || res.Error.Code != "Request" {
				t.Errorf("result = %+v, want Request error", res)
			}
		})
	}
}

func TestSessionsAreSeparate(t *testing.T) {
	_, ts := newTestServer(t)
	a, b := dial(t, ts), dial(t, ts)
	if a.session == b.session {
		t.Fatalf("both connections got session %s", a.session)
	}
	a.mustCall("set_html", map[string]any{"html": "<p>one</p>"})
	if got := b.mustCall("html", nil).Value; got != "<p></p>" {
		t.Errorf("second session html = %v", got)
	}
}

func TestHTTPRoutes(t *testing.T) {
	s, ts := newTestServer(t)
	c := dial(t, ts)
	base := ts.URL + "/api/sessions/" + c.session

	resp, err := http.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET sessions error: %v", err)
	}
	var list struct {
		Sessions []string `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	resp.Body.Close()
	if len(list.Sessions) != 1 || list.Sessions[0] != c.session {
		t.Errorf("sessions = %v, want [%s]", list.Sessions, c.session)
	}

	req, _ := http.NewRequest(http.MethodPut, base+"/html", strings.NewReader(`{"html":"<h1>Title</h1>"}`))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT html error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("PUT html status = %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/html")
	if err != nil {
		t.Fatalf("GET html error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "<h1>Title</h1>" {
		t.Errorf("GET html = %q", body)
	}

	resp, err = http.Get(base + "/html?div=missing")
	if err != nil {
		t.Fatalf("GET html div error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("missing div status = %d", resp.StatusCode)
	}

	resp, err = http.Post(base+"/focus", "application/json", nil)
	if err != nil {
		t.Fatalf("POST focus error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("focus status = %d", resp.StatusCode)
	}
	if f, ok := s.Sessions().Focused(); !ok || f.ID() != c.session {
		t.Error("session not focused")
	}

	// The state change from PUT and the focus event arrive before the
	// next result.
	var sawFocus bool
	_, evs := c.call("selection", nil)
	for _, ev := range evs {
		if ev.Topic == "editor.focus.changed" && ev.Payload["session_id"] == c.session {
			sawFocus = true
		}
	}
	if !sawFocus {
		t.Errorf("events = %+v, want editor.focus.changed", evs)
	}

	resp, err = http.Get(base + "/stats")
	if err != nil {
		t.Fatalf("GET stats error: %v", err)
	}
	var stats statsView
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	resp.Body.Close()
	if stats.EventsPublished == 0 || stats.ActiveSubscribers != 1 {
		t.Errorf("stats = %+v", stats)
	}

	resp, err = http.Get(base + "/history")
	if err != nil {
		t.Fatalf("GET history error: %v", err)
	}
	var hist map[string][]historyView
	if err := json.NewDecoder(resp.Body).Decode(&hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	resp.Body.Close()
	if len(hist["undo"]) != 0 || len(hist["redo"]) != 0 {
		t.Errorf("history = %+v, want empty after load", hist)
	}

	resp, err = http.Get(ts.URL + "/api/sessions/nope/html")
	if err != nil {
		t.Fatalf("GET unknown error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown session status = %d", resp.StatusCode)
	}
}

func TestSessionClosesWithConnection(t *testing.T) {
	s, ts := newTestServer(t)
	c := dial(t, ts)
	if s.Sessions().Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Sessions().Len())
	}
	c.ws.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Sessions().Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session still registered after close")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
