package script

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/event/topic"
)

var priorities = map[string]event.Priority{
	"critical": event.PriorityCritical,
	"high":     event.PriorityHigh,
	"normal":   event.PriorityNormal,
	"low":      event.PriorityLow,
}

// on(pattern, handler [, {once=bool, priority=name}]) -> id
// Subscribes handler to the session's events matching pattern. A once
// handler is removed after its first event. Handlers run in priority
// order: critical, high, normal, low.
func (r *Runtime) on(L *lua.LState) int {
	pattern := topic.Topic(L.CheckString(1))
	fn := L.CheckFunction(2)
	opts := L.OptTable(3, nil)
	if !pattern.IsValid() {
		L.ArgError(1, fmt.Sprintf("invalid topic %q", pattern))
		return 0
	}

	var subOpts []event.SubscriptionOption
	once := false
	if opts != nil {
		once = lua.LVAsBool(opts.RawGetString("once"))
		if once {
			subOpts = append(subOpts, event.WithOnce())
		}
		if v := opts.RawGetString("priority"); v != lua.LNil {
			p, ok := priorities[lua.LVAsString(v)]
			if !ok {
				L.ArgError(3, fmt.Sprintf("unknown priority %q", v.String()))
				return 0
			}
			subOpts = append(subOpts, event.WithPriority(p))
		}
	}

	var id string
	sub, err := r.ed.Subscribe(pattern, func(_ context.Context, ev any) error {
		if once {
			delete(r.subs, id)
		}
		if !r.running {
			r.log.Debug("dropped %s outside a script run", topicOf(ev))
			return nil
		}
		return L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, eventTable(L, ev))
	}, subOpts...)
	if err != nil {
		L.RaiseError("on: %v", err)
		return 0
	}
	id = sub.ID()
	r.subs[id] = sub
	L.Push(lua.LString(id))
	return 1
}

// pause(id) -> bool
// Holds back a handler's events until resume(id). Events published
// meanwhile are not delivered later.
func (r *Runtime) pause(L *lua.LState) int {
	sub, ok := r.subs[L.CheckString(1)]
	if ok {
		sub.Pause()
	}
	L.Push(lua.LBool(ok))
	return 1
}

// resume(id) -> bool
func (r *Runtime) resume(L *lua.LState) int {
	sub, ok := r.subs[L.CheckString(1)]
	if ok {
		sub.Resume()
	}
	L.Push(lua.LBool(ok))
	return 1
}

// off(id) -> bool
func (r *Runtime) off(L *lua.LState) int {
	id := L.CheckString(1)
	sub, ok := r.subs[id]
	if ok {
		sub.Cancel()
		delete(r.subs, id)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func topicOf(ev any) topic.Topic {
	if tp, ok := ev.(event.TopicProvider); ok {
		return tp.EventTopic()
	}
	return ""
}

// eventTable converts an editor event into a Lua table with its topic,
// source and payload fields.
func eventTable(L *lua.LState, ev any) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("topic", lua.LString(topicOf(ev)))
	if mp, ok := ev.(event.MetadataProvider); ok {
		md := mp.EventMetadata()
		t.RawSetString("id", lua.LString(md.ID))
		t.RawSetString("source", lua.LString(md.Source))
		if md.CausationID != "" {
			t.RawSetString("cause", lua.LString(md.CausationID))
		}
	}
	num := func(k string, v int) { t.RawSetString(k, lua.LNumber(v)) }
	str := func(k, v string) { t.RawSetString(k, lua.LString(v)) }
	flag := func(k string, v bool) { t.RawSetString(k, lua.LBool(v)) }

	switch e := ev.(type) {
	case event.Event[events.StateChanged]:
		str("command", e.Payload.Command)
		num("steps", e.Payload.Steps)
		num("size", e.Payload.Size)
		flag("history", e.Payload.AddToHistory)
		flag("undo", e.Payload.Undo)
		flag("redo", e.Payload.Redo)
	case event.Event[events.SelectionChanged]:
		num("from", e.Payload.From)
		num("to", e.Payload.To)
		flag("empty", e.Payload.Empty)
		str("div", e.Payload.DivID)
	case event.Event[events.Error]:
		str("code", e.Payload.Code)
		str("message", e.Payload.Message)
		str("info", e.Payload.Info)
		flag("alert", e.Payload.Alert)
	case event.Event[events.HeightChanged]:
		num("height", e.Payload.Height)
	case event.Event[events.FocusChanged]:
		str("session", e.Payload.SessionID)
	case event.Event[events.SearchCountChanged]:
		str("query", e.Payload.Query)
		num("count", e.Payload.Count)
		num("current", e.Payload.Current)
	case event.Event[events.ImageCopied]:
		str("src", e.Payload.Src)
		str("alt", e.Payload.Alt)
		num("width", e.Payload.Width)
		num("height", e.Payload.Height)
		flag("cut", e.Payload.Cut)
	}
	return t
}
