// Package history provides undo/redo for editor states.
//
// History records whole-state snapshots rather than inverse steps. Documents
// are immutable and share unchanged subtrees, so a snapshot costs only the
// nodes a transaction rebuilt.
//
// # Entries
//
// An Entry holds the document and selection before and after one undo
// unit, plus a description and the input type that produced it.
//
// # Grouping
//
// Consecutive plain-text transactions (input type "insertText") that arrive
// within the group delay of each other squash into one entry. Any other
// transaction starts a new entry. Explicit groups merge everything recorded
// between BeginGroup and EndGroup:
//
//	h.BeginGroup("Paste table")
//	// ... several transactions ...
//	h.EndGroup()
//
// Transactions carrying addToHistory=false are never recorded.
//
// # States
//
// History is idle between operations, applying while an explicit group is
// open, and undoing or redoing while a restore callback runs. Records that
// arrive while undoing or redoing are ignored, so applying a restored
// snapshot does not push a new entry.
package history
