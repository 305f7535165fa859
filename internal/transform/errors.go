package transform

import (
	"errors"
	"fmt"
)

// Errors returned by steps and transform helpers.
var (
	// ErrStepFailed indicates a step could not be applied to a document.
	ErrStepFailed = errors.New("step failed")

	// ErrNoNode indicates no node exists at the given position.
	ErrNoNode = errors.New("no node at position")

	// ErrInvalidWrapper indicates a wrapper chain does not form valid content.
	ErrInvalidWrapper = errors.New("invalid wrapper")
)

func stepFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrStepFailed, err)
}

func stepFailedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStepFailed, fmt.Sprintf(format, args...))
}
