// Package errors provides structured error types for AnyMaps.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and the reconciler
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Taxonomy
//
// The mind-map pipeline distinguishes four recoverable failure families:
//   - PARSE_ERROR: malformed graph syntax
//   - GENERATION_ERROR: the generation service failed or timed out
//   - LAYOUT_ERROR: internal layout failure (callers fall back to prior positions)
//   - PERSISTENCE_ERROR: save or load failure
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParse, "no mindmap declaration")
//	if errors.IsParse(err) {
//	    // fall back to an empty topology
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, origErr, "save map %s", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline errors
	ErrCodeParse       Code = "PARSE_ERROR"
	ErrCodeGeneration  Code = "GENERATION_ERROR"
	ErrCodeLayout      Code = "LAYOUT_ERROR"
	ErrCodePersistence Code = "PERSISTENCE_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeMapNotFound Code = "MAP_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeUnavailable Code = "UNAVAILABLE"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
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

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It walks the whole chain, so a PERSISTENCE_ERROR wrapping a MAP_NOT_FOUND
// matches both codes.
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

// GetCode extracts the outermost error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsParse reports whether err is a graph syntax failure.
func IsParse(err error) bool { return Is(err, ErrCodeParse) }

// IsGeneration reports whether err is a generation service failure.
func IsGeneration(err error) bool { return Is(err, ErrCodeGeneration) }

// IsLayout reports whether err is an internal layout failure.
func IsLayout(err error) bool { return Is(err, ErrCodeLayout) }

// IsPersistence reports whether err is a save or load failure.
func IsPersistence(err error) bool { return Is(err, ErrCodePersistence) }
