package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration loading.
var (
	// ErrUnknownFormat indicates a file extension with no loader.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrValidationFailed matches every ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrWatcherClosed is returned when a closed watcher is used.
	ErrWatcherClosed = errors.New("watcher is closed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Format is "toml", "yaml" or "env".
	Format string
	// Err is the underlying decoder error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s config %s: %v", e.Format, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError reports a setting with an invalid value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// Is matches ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
