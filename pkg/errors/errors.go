// Package errors gives pipedag errors a stable code next to their message.
//
// The CLI prints [UserMessage] and picks an exit status; the HTTP server
// maps the [Code] to a status and returns both in the response body. Codes
// are grouped by prefix:
//
//	INVALID_*             bad input: documents, options, config
//	*NOT_FOUND            missing files or resources
//	STRUCTURAL_VIOLATION  a pipeline broke one or more rules
//	LAYOUT_FAILED         the layout engine gave up
//	INTERNAL_ERROR        everything else
//
// Codes survive fmt.Errorf("...: %w") wrapping:
//
//	err := errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", dir)
//	errors.Is(fmt.Errorf("layout: %w", err), errors.ErrCodeInvalidDirection) // true
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error for callers that branch on it.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidEngine    Code = "INVALID_ENGINE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeStructuralViolation Code = "STRUCTURAL_VIOLATION"
	ErrCodeLayoutFailed        Code = "LAYOUT_FAILED"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error carries a Code, a message meant for people and an optional cause.
// Its Error string is "CODE: message" or "CODE: message: cause".
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap is New with a cause kept for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// first returns the outermost *Error in err's chain.
func first(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := first(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := first(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage is the text to show a person: the message of the outermost
// *Error without code or cause, or err.Error() for any other error.
func UserMessage(err error) string {
	if e, ok := first(err); ok {
		return e.Message
	}
	return err.Error()
}
