package state

import "errors"

// Errors returned by state operations.
var (
	// ErrInvalidSelection indicates selection bounds that do not resolve in
	// the document.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrMismatchedTransaction indicates a transaction built against another
	// document version.
	ErrMismatchedTransaction = errors.New("transaction does not start from the current document")
)
