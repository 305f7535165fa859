package editor

import (
	"sort"
	"sync"

	"github.com/dshills/markupeditor/internal/event/events"
)

// Registry tracks the sessions of one host and which of them has focus.
// It exists for host code that is handed no session, such as toolbar
// callbacks; editor operations themselves always take their session
// explicitly.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Editor
	focused  *Editor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Editor)}
}

// Add registers a session.
func (r *Registry) Add(e *Editor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[e.ID()] = e
}

// Get returns the session with the given id.
func (r *Registry) Get(id string) (*Editor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	return e, ok
}

// Remove unregisters a session, clearing focus if it had it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	if r.focused != nil && r.focused.ID() == id {
		r.focused = nil
	}
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// IDs returns the registered session IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Focus registers e if needed and makes it the focused session. The
// session publishes editor.focus.changed when focus moves to it.
func (r *Registry) Focus(e *Editor) {
	r.mu.Lock()
	r.sessions[e.ID()] = e
	changed := r.focused != e
	r.focused = e
	r.mu.Unlock()

	if changed {
		e.settle("focus", func() error {
			raise(e, events.TopicFocusChanged, events.FocusChanged{SessionID: e.id})
			return nil
		})
	}
}

// Focused returns the focused session.
func (r *Registry) Focused() (*Editor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focused, r.focused != nil
}
