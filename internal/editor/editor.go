package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/config"
	"github.com/dshills/markupeditor/internal/event"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/event/topic"
	"github.com/dshills/markupeditor/internal/history"
	"github.com/dshills/markupeditor/internal/logging"
	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/search"
	"github.com/dshills/markupeditor/internal/state"
)

// Editor is one editing session: a document state, its undo history and
// search, and the event bus its host listens on.
//
// Every operation runs to completion under the session lock, so commands
// never interleave. Events are published after the lock is released and
// handlers may call back into the editor.
type Editor struct {
	mu sync.Mutex

	id       string
	state    *state.EditorState
	history  *history.History
	searcher *search.Searcher
	bus      event.Bus
	log      *logging.Logger
	cfg      config.Config
	height   int

	// selDiv is the id of the div holding the selection.
	selDiv string

	// pending holds events raised under the lock.
	pending []any

	initDoc *model.Node
}

// New creates an editor session. Without WithDoc the document is a single
// empty paragraph.
func New(opts ...Option) *Editor {
	e := &Editor{
		id:  uuid.NewString(),
		cfg: config.Default(),
		log: logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.bus == nil {
		e.bus = event.NewBus(event.WithErrorHandler(func(ev any, err error) {
			e.log.Warn("event handler failed: %v", err)
		}))
	}
	e.log = e.log.WithField("session", e.id)

	doc := e.initDoc
	if doc == nil {
		doc = model.Markup.EmptyDoc()
	}
	e.initDoc = nil
	e.state = state.New(doc, nil)
	e.selDiv = commands.DivIDAt(doc, e.state.Selection.Start())
	e.history = history.NewHistory(e.cfg.History.MaxEntries, e.cfg.History.GroupDelay.Std())
	e.searcher = search.New(e.cfg.Search.CaseSensitive)
	return e
}

// ID returns the session ID.
func (e *Editor) ID() string { return e.id }

// Bus returns the event bus the session publishes on.
func (e *Editor) Bus() event.Bus { return e.bus }

// Subscribe registers fn for the session's events on topics matching
// pattern. Events from other sessions sharing the bus are filtered out.
func (e *Editor) Subscribe(pattern topic.Topic, fn event.HandlerFunc, opts ...event.SubscriptionOption) (event.Subscription, error) {
	opts = append(opts, event.WithSource(e.id))
	return e.bus.SubscribeFunc(pattern, fn, opts...)
}

// SubscribeHandler is Subscribe for an event.Handler, such as one built
// with event.AsHandler.
func (e *Editor) SubscribeHandler(pattern topic.Topic, h event.Handler, opts ...event.SubscriptionOption) (event.Subscription, error) {
	opts = append(opts, event.WithSource(e.id))
	return e.bus.Subscribe(pattern, h, opts...)
}

// EventStats returns the counters of the session's event bus.
func (e *Editor) EventStats() event.Stats { return e.bus.Stats() }

// State returns the current editor state.
func (e *Editor) State() *state.EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Doc returns the current document.
func (e *Editor) Doc() *model.Node {
	return e.State().Doc
}

// Selection returns the current selection.
func (e *Editor) Selection() state.Selection {
	return e.State().Selection
}

// History returns the undo history.
func (e *Editor) History() *history.History { return e.history }

// Config returns the session configuration.
func (e *Editor) Config() config.Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetConfig applies a new configuration to the running session.
func (e *Editor) SetConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.history.SetGroupDelay(cfg.History.GroupDelay.Std())
	e.history.SetMaxEntries(cfg.History.MaxEntries)
	e.searcher.SetCaseSensitive(cfg.Search.CaseSensitive)
	e.log.Debug("configuration updated")
	return nil
}

// ApplyTransaction applies a transaction built against the current state.
func (e *Editor) ApplyTransaction(tr *state.Transaction) error {
	_, err := e.exec("transaction", func(*state.EditorState) (*state.Transaction, error) {
		return tr, nil
	})
	return err
}

// SetSelection moves the selection. A selection whose ends lie in
// different divs is refused: the current selection stays, the selected
// div becomes the innermost div holding both ends, and
// editor.selection.changed is published.
func (e *Editor) SetSelection(sel state.Selection) error {
	e.mu.Lock()
	err := e.guard(commandSelect, func() error {
		anchor, head := sel.Bounds()
		if common, spans := commands.SpansDivs(e.state.Doc, anchor, head); spans {
			e.log.Debug("selection %s crosses divs, keeping %s", sel, e.state.Selection)
			e.selDiv = common
			e.raiseSelection("")
			return nil
		}
		if sel.Eq(e.state.Selection) {
			return nil
		}
		tr := e.state.Tr()
		if err := tr.SetSelection(sel); err != nil {
			return commands.Internal(err)
		}
		return e.applyLocked(tr)
	})
	e.mu.Unlock()
	e.flush()
	return err
}

const commandSelect = "selection.set"

// Select selects the text between anchor and head.
func (e *Editor) Select(anchor, head int) error {
	return e.SetSelection(state.NewTextSelection(anchor, head))
}

// exec runs cmd against the current state and applies its transaction.
// It reports whether the command changed anything.
func (e *Editor) exec(name string, cmd commands.Command) (bool, error) {
	e.mu.Lock()
	ok, err := e.execLocked(name, cmd)
	e.mu.Unlock()
	e.flush()
	return ok, err
}

// locked runs fn under the session lock with panic recovery and
// publishes what it raised afterwards.
func (e *Editor) locked(name string, fn func() error) error {
	e.mu.Lock()
	err := e.guard(name, fn)
	e.mu.Unlock()
	e.flush()
	return err
}

// settle runs fn like locked for operations that return nothing to the
// caller. guard has already logged and published a failure; settle only
// notes that the caller saw none.
func (e *Editor) settle(name string, fn func() error) {
	if err := e.locked(name, fn); err != nil {
		e.log.WithField("command", name).Debug("error not returned to caller: %v", err)
	}
}

func (e *Editor) execLocked(name string, cmd commands.Command) (bool, error) {
	applied := false
	err := e.guard(name, func() error {
		tr, err := cmd(e.state)
		if err != nil || tr == nil {
			return err
		}
		if err := e.applyLocked(tr); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// guard converts failures into *Error, queues the error event and
// recovers panics as Internal errors.
func (e *Editor) guard(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = commands.Internal(fmt.Errorf("panic in %s: %v", name, r))
		}
		if err != nil {
			err = e.reportLocked(name, err)
		}
	}()
	return fn()
}

func (e *Editor) reportLocked(name string, err error) error {
	var ee *Error
	if !errors.As(err, &ee) {
		ee = commands.Internal(err)
	}
	log := e.log.WithFields(map[string]any{"command": name, "code": string(ee.Code)})
	if ee.Code == commands.CodeInternal {
		log.Error("%s", ee.Error())
	} else {
		log.Warn("%s", ee.Error())
	}
	raise(e, events.TopicError, events.Error{
		Code:    string(ee.Code),
		Message: ee.Message,
		Info:    ee.Info,
		Alert:   ee.Alert,
	})
	return ee
}

// applyLocked commits tr, records it in history and queues the change
// notifications.
func (e *Editor) applyLocked(tr *state.Transaction) error {
	prev := e.state
	next, err := prev.Apply(tr)
	if err != nil {
		return commands.Internal(err)
	}
	e.state = next
	recorded := e.history.Record(tr, prev, next)

	cause := ""
	docChanged := tr.DocChanged()
	if docChanged {
		e.invalidateSearchLocked()
	}
	if docChanged || storedMarksChanged(prev, next) {
		e.log.WithFields(map[string]any{
			"steps":   len(tr.Steps),
			"size":    next.Doc.Content.Size(),
			"history": recorded,
		}).Debug("applied %s", tr.MetaString(state.MetaCommand))
		cause = raise(e, events.TopicStateChanged, events.StateChanged{
			Command:      tr.MetaString(state.MetaCommand),
			Steps:        len(tr.Steps),
			Size:         next.Doc.Content.Size(),
			AddToHistory: tr.AddToHistory(),
		})
	}
	if !next.Selection.Eq(prev.Selection) {
		e.queueSelection(cause)
	}
	return nil
}

func storedMarksChanged(prev, next *state.EditorState) bool {
	if prev.HasStoredMarks() != next.HasStoredMarks() {
		return true
	}
	return next.HasStoredMarks() && !model.SameMarkSet(prev.StoredMarks, next.StoredMarks)
}

// replaceLocked installs a document and selection without a transaction,
// as loading and history replay do.
func (e *Editor) replaceLocked(doc *model.Node, sel state.Selection, change events.StateChanged) {
	prev := e.state
	e.state = state.New(doc, sel)
	e.invalidateSearchLocked()
	change.Size = doc.Content.Size()
	cause := raise(e, events.TopicStateChanged, change)
	if !e.state.Selection.Eq(prev.Selection) || prev.Doc != doc {
		e.queueSelection(cause)
	}
}

func (e *Editor) queueSelection(cause string) {
	e.selDiv = commands.DivIDAt(e.state.Doc, e.state.Selection.Start())
	e.raiseSelection(cause)
}

// raiseSelection queues editor.selection.changed. cause is the ID of the
// state change that moved the selection, or "".
func (e *Editor) raiseSelection(cause string) {
	sel := e.state.Selection
	raiseFrom(e, cause, events.TopicSelectionChanged, events.SelectionChanged{
		From:  sel.Start(),
		To:    sel.End(),
		Empty: sel.IsEmpty(),
		DivID: e.selDiv,
	})
}

// raise queues an event for publishing once the lock is released and
// returns its ID.
func raise[T any](e *Editor, t topic.Topic, payload T) string {
	return raiseFrom(e, "", t, payload)
}

// raiseFrom queues an event caused by the event with ID cause.
func raiseFrom[T any](e *Editor, cause string, t topic.Topic, payload T) string {
	ev := event.NewEvent(t, payload, e.id)
	if cause != "" {
		ev = ev.WithCausation(cause)
	}
	e.pending = append(e.pending, ev)
	return ev.Metadata.ID
}

// flush publishes the queued events outside the lock.
func (e *Editor) flush() {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, ev := range pending {
		if err := e.bus.Publish(context.Background(), ev); err != nil {
			e.log.Warn("publish failed: %v", err)
		}
	}
}
