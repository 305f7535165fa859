package editor

import (
	"errors"

	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/history"
)

// Undo restores the document and selection from before the most recent
// undo unit. It returns false when there is nothing to undo.
func (e *Editor) Undo() (bool, error) {
	return e.replay("history.undo", e.history.Undo, history.ErrNothingToUndo, events.StateChanged{Undo: true})
}

// Redo reapplies the most recently undone unit. It returns false when
// there is nothing to redo.
func (e *Editor) Redo() (bool, error) {
	return e.replay("history.redo", e.history.Redo, history.ErrNothingToRedo, events.StateChanged{Redo: true})
}

func (e *Editor) replay(name string, step func(func(history.Snapshot) error) error, empty error, change events.StateChanged) (bool, error) {
	done := false
	change.Command = name
	err := e.locked(name, func() error {
		err := step(func(s history.Snapshot) error {
			e.replaceLocked(s.Doc, s.Selection, change)
			return nil
		})
		if errors.Is(err, empty) {
			return nil
		}
		if err != nil {
			return err
		}
		done = true
		return nil
	})
	return done, err
}

// CanUndo reports whether Undo would do something.
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would do something.
func (e *Editor) CanRedo() bool { return e.history.CanRedo() }

// HistoryEntries lists the undo and redo units, oldest first. The last
// element of each is the one Undo or Redo would replay.
func (e *Editor) HistoryEntries() (undo, redo []history.Info) {
	return e.history.UndoInfo(), e.history.RedoInfo()
}

// Group runs fn so that every change it makes forms one undo unit.
func (e *Editor) Group(name string, fn func() error) error {
	return e.history.Group(name, fn)
}
