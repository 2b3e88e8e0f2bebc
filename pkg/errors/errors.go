// Package errors provides coded errors for the bricklayer pipeline.
//
// Every failure surfaced by the core carries a Code so callers can react
// without string matching:
//
//	if errors.Is(err, errors.ErrCodeDegenerateMesh) {
//	    // mesh has no volume
//	}
//
// Validation happens at component entry; no error is retried internally.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	// ErrCodeInvalidAxis: an axis selector or permutation outside {0,1,2}.
	ErrCodeInvalidAxis Code = "INVALID_AXIS"
	// ErrCodeDegenerateMesh: no triangles, or zero extent along some axis.
	ErrCodeDegenerateMesh Code = "DEGENERATE_MESH"
	// ErrCodeInvalidCatalogShape: a brick shape with a non-positive extent.
	ErrCodeInvalidCatalogShape Code = "INVALID_CATALOG_SHAPE"
	// ErrCodeInvalidParameter: any other out-of-range run parameter.
	ErrCodeInvalidParameter Code = "INVALID_PARAMETER"
	// ErrCodeInvalidFormat: malformed input file.
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	// ErrCodeNotFound: a requested record does not exist.
	ErrCodeNotFound Code = "NOT_FOUND"
	// ErrCodeIO wraps filesystem and database failures.
	ErrCodeIO Code = "IO_ERROR"
)

// Error is a structured error with a code and optional cause.
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

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain,
// or the empty string.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for *Error
// values and err.Error() otherwise.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
