package model

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrPositionOutOfRange indicates a position outside the document.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrReplace indicates a slice could not be fitted into a range.
	ErrReplace = errors.New("invalid replace")

	// ErrInvalidContent indicates a node's children violate its content rules.
	ErrInvalidContent = errors.New("invalid content")

	// ErrUnknownType indicates a node or mark type missing from the schema.
	ErrUnknownType = errors.New("unknown type")
)

func replaceErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReplace, fmt.Sprintf(format, args...))
}

// ContentError describes a content rule violation.
type ContentError struct {
	// Type is the name of the node type whose content is invalid.
	Type string
	// Reason explains the violation.
	Reason string
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	return "invalid content for " + e.Type + ": " + e.Reason
}

// Is allows errors.Is to match ContentError with ErrInvalidContent.
func (e *ContentError) Is(target error) bool {
	return target == ErrInvalidContent
}
