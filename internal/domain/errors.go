package domain

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// Validation failures — the input itself is malformed or forbidden.
	ErrCodeInvalidGeometry   Code = "INVALID_GEOMETRY"
	ErrCodeInvalidConnection Code = "INVALID_CONNECTION"

	// Lookup failures — the operation references an id the store doesn't hold.
	ErrCodeBlockNotFound      Code = "BLOCK_NOT_FOUND"
	ErrCodeConnectionNotFound Code = "CONNECTION_NOT_FOUND"
)

// Error is a structured error with a code and optional cause.
// Every failing store operation returns one; the previous state is
// always left intact.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error with the given code and formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the code from an error, or "" if it carries none.
func ErrCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	switch ErrCode(err) {
	case ErrCodeInvalidGeometry, ErrCodeInvalidConnection:
		return true
	}
	return false
}

// IsNotFound reports whether err is a missing-id failure.
func IsNotFound(err error) bool {
	switch ErrCode(err) {
	case ErrCodeBlockNotFound, ErrCodeConnectionNotFound:
		return true
	}
	return false
}
