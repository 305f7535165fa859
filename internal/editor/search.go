package editor

import (
	"errors"

	"github.com/dshills/markupeditor/internal/commands"
	"github.com/dshills/markupeditor/internal/event/events"
	"github.com/dshills/markupeditor/internal/search"
	"github.com/dshills/markupeditor/internal/state"
)

// SearchFor finds query and selects the next match in dir from the
// selection. activate makes Enter and Shift-Enter step through matches
// until the search is deactivated. An empty query cancels the search. It
// reports whether a match was selected.
func (e *Editor) SearchFor(query string, dir search.Direction, activate bool) (bool, error) {
	found := false
	err := e.locked("search.find", func() error {
		if query == "" {
			e.cancelSearchLocked()
			return nil
		}
		sel := e.state.Selection
		m, ok, reindexed, err := e.searcher.SearchFor(e.state.Doc, query, dir, activate, sel.Start(), sel.End())
		if err != nil {
			return commands.Wrap(commands.CodeSearch, err, "search failed")
		}
		if reindexed {
			e.raiseCount()
		}
		if !ok {
			return nil
		}
		found = true
		return e.selectMatchLocked(m)
	})
	return found, err
}

// HandleEnter steps to the next match, or the previous one with shift,
// while search is active. It returns false when search did not take the
// key and the host should split the block instead.
func (e *Editor) HandleEnter(shift bool) (bool, error) {
	handled := false
	err := e.locked("search.step", func() error {
		if e.searcher.State() != search.StateActive {
			return nil
		}
		dir := search.Forward
		if shift {
			dir = search.Backward
		}
		sel := e.state.Selection
		m, ok, err := e.searcher.Step(e.state.Doc, dir, sel.Start(), sel.End())
		if errors.Is(err, search.ErrNotIndexed) {
			e.searcher.Deactivate()
			return nil
		}
		if err != nil {
			return commands.Wrap(commands.CodeSearch, err, "search failed")
		}
		handled = true
		if !ok {
			return nil
		}
		return e.selectMatchLocked(m)
	})
	return handled, err
}

// DeactivateSearch stops intercepting Enter and keeps the matches.
func (e *Editor) DeactivateSearch() {
	e.settle("search.deactivate", func() error {
		e.searcher.Deactivate()
		return nil
	})
}

// CancelSearch clears the search.
func (e *Editor) CancelSearch() {
	e.settle("search.cancel", func() error {
		e.cancelSearchLocked()
		return nil
	})
}

// SearchState returns the searcher state.
func (e *Editor) SearchState() search.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searcher.State()
}

// SearchMatches returns the indexed matches.
func (e *Editor) SearchMatches() []search.Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searcher.Matches()
}

// SetSearchCaseSensitive switches case sensitivity for later searches.
func (e *Editor) SetSearchCaseSensitive(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searcher.SetCaseSensitive(on)
}

// invalidateSearchLocked stops an active search and drops the match index
// once the document changed.
func (e *Editor) invalidateSearchLocked() {
	if e.searcher.State() == search.StateInactive {
		return
	}
	had := e.searcher.Count() > 0
	e.searcher.Deactivate()
	e.searcher.Invalidate()
	if had {
		e.raiseCount()
	}
}

func (e *Editor) cancelSearchLocked() {
	if e.searcher.State() == search.StateInactive {
		return
	}
	e.searcher.Cancel()
	e.raiseCount()
}

func (e *Editor) raiseCount() {
	raise(e, events.TopicSearchCountChanged, events.SearchCountChanged{
		Query:   e.searcher.Query(),
		Count:   e.searcher.Count(),
		Current: e.searcher.CurrentIndex(),
	})
}

func (e *Editor) selectMatchLocked(m search.Match) error {
	sel := state.NewTextSelection(m.From, m.To)
	if sel.Eq(e.state.Selection) {
		return nil
	}
	tr := e.state.Tr()
	tr.SetMeta(state.MetaCommand, "search.select")
	if err := tr.SetSelection(sel); err != nil {
		return commands.Internal(err)
	}
	return e.applyLocked(tr)
}
