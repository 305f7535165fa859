// Package commands implements the editing commands of the markup editor.
//
// A Command is a pure function from an editor state to a transaction:
//
//	tr, err := commands.ToggleFormat("B")(st)
//
// A nil transaction with a nil error means the command does not apply in
// the current context (for example outdenting text that is not indented).
// A non-nil *Error is a structural rejection: the command could not build
// a valid document and nothing changes. Commands never mutate the state
// they are given; the caller applies the returned transaction.
//
// Commands stay inside the editable region holding the selection. Div
// boundaries are never crossed and buttons are never restyled.
package commands
