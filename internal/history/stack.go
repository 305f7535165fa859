package history

import (
	"errors"
	"sync"
	"time"

	"github.com/dshills/markupeditor/internal/state"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Defaults used when options are zero.
const (
	DefaultMaxEntries = 1000
	DefaultGroupDelay = 500 * time.Millisecond
)

// State is the current activity of a History.
type State int

// History states.
const (
	StateIdle State = iota
	StateApplying
	StateUndoing
	StateRedoing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateApplying:
		return "applying"
	case StateUndoing:
		return "undoing"
	case StateRedoing:
		return "redoing"
	default:
		return "unknown"
	}
}

// History manages undo/redo state for an editor.
type History struct {
	mu sync.Mutex

	undoStack []*Entry
	redoStack []*Entry
	state     State

	// Grouping state
	groupName  string
	groupEntry *Entry
	// closed stops the next typing record from merging into the top entry.
	closed bool

	// Configuration
	maxEntries int
	groupDelay time.Duration
	now        func() time.Time
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int, groupDelay time.Duration) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if groupDelay <= 0 {
		groupDelay = DefaultGroupDelay
	}
	return &History{
		maxEntries: maxEntries,
		groupDelay: groupDelay,
		now:        time.Now,
	}
}

// SetClock replaces the time source used for grouping.
func (h *History) SetClock(now func() time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// State returns the current history state.
func (h *History) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Record adds the change from before to after, made by tr, to the undo
// stack and clears the redo stack. It reports whether anything was
// recorded. Transactions that leave the document unchanged, opt out with
// addToHistory=false, or arrive during undo or redo are skipped.
func (h *History) Record(tr *state.Transaction, before, after *state.EditorState) bool {
	if !tr.DocChanged() || !tr.AddToHistory() {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateUndoing || h.state == StateRedoing {
		return false
	}

	now := h.now()
	inputType := tr.MetaString(state.MetaInputType)

	if h.state == StateApplying {
		if h.groupEntry == nil {
			h.groupEntry = newEntry(h.groupName, inputType, before, after, now)
			h.pushLocked(h.groupEntry)
		} else {
			h.extend(h.groupEntry, inputType, after, now)
		}
		return true
	}

	if top := h.top(); top != nil && h.canMerge(top, inputType, before, now) {
		h.extend(top, inputType, after, now)
		h.redoStack = nil
		return true
	}

	h.pushLocked(newEntry(tr.MetaString(state.MetaCommand), inputType, before, after, now))
	h.closed = false
	return true
}

func newEntry(desc, inputType string, before, after *state.EditorState, now time.Time) *Entry {
	if desc == "" {
		desc = inputType
	}
	return &Entry{
		Before:       SnapshotOf(before),
		After:        SnapshotOf(after),
		Description:  desc,
		InputType:    inputType,
		Started:      now,
		Updated:      now,
		Transactions: 1,
	}
}

func (h *History) extend(e *Entry, inputType string, after *state.EditorState, now time.Time) {
	e.After = SnapshotOf(after)
	e.InputType = inputType
	e.Updated = now
	e.Transactions++
}

// canMerge reports whether a typing transaction continues the top entry.
func (h *History) canMerge(top *Entry, inputType string, before *state.EditorState, now time.Time) bool {
	return !h.closed &&
		inputType == state.InputTypeText &&
		top.InputType == state.InputTypeText &&
		top.After.Doc == before.Doc &&
		now.Sub(top.Updated) <= h.groupDelay
}

func (h *History) top() *Entry {
	if len(h.undoStack) == 0 {
		return nil
	}
	return h.undoStack[len(h.undoStack)-1]
}

// pushLocked adds an entry without acquiring the lock.
func (h *History) pushLocked(e *Entry) {
	h.undoStack = append(h.undoStack, e)

	// Clear redo stack
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// CloseGroup makes the next record start a new entry even when it would
// otherwise merge with the previous typing.
func (h *History) CloseGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}

// Undo pops the most recent entry and passes its before snapshot to
// restore. The lock is released while restore runs. If restore fails the
// entry goes back on the undo stack.
func (h *History) Undo(restore func(Snapshot) error) error {
	h.mu.Lock()
	if len(h.undoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	prev := h.state
	h.state = StateUndoing
	h.mu.Unlock()

	err := restore(entry.Before)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = prev
	if err != nil {
		h.undoStack = append(h.undoStack, entry)
		return err
	}
	h.redoStack = append(h.redoStack, entry)
	h.closed = true
	return nil
}

// Redo pops the most recently undone entry and passes its after snapshot
// to restore.
func (h *History) Redo(restore func(Snapshot) error) error {
	h.mu.Lock()
	if len(h.redoStack) == 0 {
		h.mu.Unlock()
		return ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	prev := h.state
	h.state = StateRedoing
	h.mu.Unlock()

	err := restore(entry.After)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = prev
	if err != nil {
		h.redoStack = append(h.redoStack, entry)
		return err
	}
	h.undoStack = append(h.undoStack, entry)
	h.closed = true
	return nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// BeginGroup starts an explicit group. Everything recorded until EndGroup
// becomes a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateApplying {
		// Already grouping, ignore nested calls
		return
	}
	h.state = StateApplying
	h.groupName = name
	h.groupEntry = nil
}

// EndGroup closes the current group.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StateApplying {
		return
	}
	h.state = StateIdle
	h.groupEntry = nil
	h.closed = true
}

// IsGrouping returns true while an explicit group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == StateApplying
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undoStack = nil
	h.redoStack = nil
	h.state = StateIdle
	h.groupEntry = nil
	h.closed = false
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.undoStack))
	for i, e := range h.undoStack {
		result[i] = e.info()
	}
	return result
}

// RedoInfo returns info about available redo operations, the next redo
// last.
func (h *History) RedoInfo() []Info {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]Info, len(h.redoStack))
	for i, e := range h.redoStack {
		result[i] = e.info()
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return Info{}, false
	}
	return h.undoStack[len(h.undoStack)-1].info(), true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (Info, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return Info{}, false
	}
	return h.redoStack[len(h.redoStack)-1].info(), true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

// SetGroupDelay changes the typing merge window.
func (h *History) SetGroupDelay(d time.Duration) {
	if d <= 0 {
		d = DefaultGroupDelay
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groupDelay = d
}

// GroupDelay returns the typing merge window.
func (h *History) GroupDelay() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.groupDelay
}
