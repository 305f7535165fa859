package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dshills/markupeditor/internal/editor"
	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/event/topic"
	"github.com/dshills/markupeditor/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageSize = 4 << 20
	sendBuffer     = 256
)

// client is one websocket connection and the session it owns.
type client struct {
	conn *websocket.Conn
	ed   *editor.Editor
	log  *logging.Logger
	send chan []byte
	sub  event.Subscription

	// stop is closed when the reader exits, writerDone when the writer does.
	stop       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	filter, err := topicFilter(r.URL.Query().Get("topics"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}

	ed := editor.New(editor.WithConfig(s.cfgFn()), editor.WithLogger(s.log))
	c := &client{
		conn:       conn,
		ed:         ed,
		log:        s.log.WithField("session", ed.ID()),
		send:       make(chan []byte, sendBuffer),
		stop:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	sub, err := ed.Subscribe(topic.WildcardMulti, c.forward, event.WithFilter(filter))
	if err != nil {
		c.log.Error("subscribe: %v", err)
		_ = conn.Close()
		return
	}
	c.sub = sub
	s.sessions.Add(ed)
	c.log.Info("session opened from %s", r.RemoteAddr)

	c.queue(Hello{Type: TypeHello, Session: ed.ID()})
	go c.writePump()
	c.readPump()

	sub.Cancel()
	s.sessions.Remove(ed.ID())
	c.log.Info("session closed")
}

// readPump runs requests in arrival order until the connection fails.
func (c *client) readPump() {
	defer func() {
		close(c.stop)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read: %v", err)
			}
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			c.queue(Result{Type: TypeResult, Error: &ErrorInfo{Code: "Request", Message: "invalid JSON", Info: err.Error()}})
			continue
		}
		c.log.Debug("request %d %s", req.ID, req.Cmd)
		if res, ok := c.control(req); ok {
			c.queue(res)
			continue
		}
		c.queue(dispatch(c.ed, req))
	}
}

// writePump writes queued messages and keeps the connection alive with
// pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.writerDone)
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("write: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.stop:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}

// queue hands v to the writer. It gives up once either pump has exited.
func (c *client) queue(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("encode %T: %v", v, err)
		return
	}
	select {
	case c.send <- data:
	case <-c.writerDone:
	case <-c.stop:
	}
}

// control handles the requests that act on the connection rather than
// the session. pause_events holds back event messages until
// resume_events; events raised meanwhile are dropped.
func (c *client) control(req Request) (Result, bool) {
	res := Result{Type: TypeResult, ID: req.ID, OK: true}
	switch req.Cmd {
	case "pause_events":
		c.sub.Pause()
	case "resume_events":
		c.sub.Resume()
	default:
		return res, false
	}
	res.Value = c.sub.State().String()
	return res, true
}

// topicFilter builds the event filter for a comma separated list of
// topics. A wildcard entry is matched as a pattern, any other entry
// selects its topic and every topic below it. An empty list passes
// everything.
func topicFilter(list string) (event.FilterFunc, error) {
	var topics []topic.Topic
	for _, s := range strings.Split(list, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		t := topic.Topic(s)
		if !t.IsValid() {
			return nil, fmt.Errorf("invalid topic %q", s)
		}
		topics = append(topics, t)
	}
	return func(ev any) bool {
		if len(topics) == 0 {
			return true
		}
		tp, ok := ev.(event.TopicProvider)
		if !ok {
			return false
		}
		got := tp.EventTopic()
		for _, t := range topics {
			if t.IsWildcard() && got.Matches(t) || !t.IsWildcard() && got.HasPrefix(t) {
				return true
			}
		}
		return false
	}, nil
}

// forward relays the session's events to the client.
func (c *client) forward(_ context.Context, ev any) error {
	msg := EventMessage{Type: TypeEvent}
	if tp, ok := ev.(event.TopicProvider); ok {
		msg.Topic = tp.EventTopic().String()
	}
	if mp, ok := ev.(event.MetadataProvider); ok {
		md := mp.EventMetadata()
		msg.EventID, msg.Cause = md.ID, md.CausationID
	}
	if pp, ok := ev.(event.PayloadProvider); ok {
		msg.Payload = pp.EventPayload()
	}
	c.queue(msg)
	return nil
}
