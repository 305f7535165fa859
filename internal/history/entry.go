package history

import (
	"time"

	"github.com/dshills/markupeditor/internal/model"
	"github.com/dshills/markupeditor/internal/state"
)

// Snapshot is a document paired with its selection.
type Snapshot struct {
	Doc       *model.Node
	Selection state.Selection
}

// SnapshotOf captures the document and selection of s.
func SnapshotOf(s *state.EditorState) Snapshot {
	return Snapshot{Doc: s.Doc, Selection: s.Selection}
}

// Entry is one undo unit.
type Entry struct {
	Before Snapshot
	After  Snapshot

	// Description names the command that produced the entry.
	Description string
	// InputType is the input type of the last transaction in the entry.
	InputType string

	Started time.Time
	Updated time.Time

	// Transactions is the number of transactions merged into the entry.
	Transactions int
}

// Info summarizes an entry for display.
type Info struct {
	Description string
	Timestamp   time.Time
}

func (e *Entry) info() Info {
	return Info{Description: e.Description, Timestamp: e.Updated}
}
