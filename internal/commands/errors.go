package commands

import (
	"errors"
	"fmt"
)

// Code categorizes editor errors. Codes are stable strings reported to the
// host unchanged.
type Code string

// Error codes.
const (
	CodeStyle    Code = "Style"
	CodeList     Code = "List"
	CodeIndent   Code = "Indent"
	CodeTable    Code = "Table"
	CodeLink     Code = "Link"
	CodeImage    Code = "Image"
	CodeDiv      Code = "Div"
	CodeSearch   Code = "Search"
	CodeParse    Code = "Parse"
	CodeInternal Code = "Internal"
)

// Error is a structural rejection or internal failure. A rejected command
// leaves the document unchanged.
type Error struct {
	// Code categorizes the error.
	Code Code
	// Message describes the error.
	Message string
	// Info holds optional detail for developers.
	Info string
	// Alert asks the host to interrupt the user.
	Alert bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%s error: %s (%s)", e.Code, e.Message, e.Info)
	}
	return fmt.Sprintf("%s error: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Errorf creates an error with the given code.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error with the given code around err. The underlying
// error text becomes Info.
func Wrap(code Code, err error, message string) *Error {
	return &Error{Code: code, Message: message, Info: err.Error(), Err: err}
}

// Internal wraps an unexpected failure. Internal errors always alert.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Info: err.Error(), Alert: true, Err: err}
}
