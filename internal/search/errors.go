package search

import "errors"

var (
	// ErrEmptyQuery is returned when searching for the empty string.
	ErrEmptyQuery = errors.New("empty search query")
	// ErrNotIndexed is returned when stepping without an index for the
	// current document.
	ErrNotIndexed = errors.New("no search index for this document")
)
