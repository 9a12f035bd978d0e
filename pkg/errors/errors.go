// Package errors provides structured error types for the glitch engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine and the CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes map onto the engine's failure taxonomy:
//   - EMPTY_HISTORY: undo attempted on the base image
//   - POLICY_UNSATISFIABLE: no catalog effect passes the selection policy
//   - UNSUPPORTED_FORMAT: export to an unrecognized file extension
//   - SOURCE_LOAD_FAILURE / SOURCE_SAVE_FAILURE: image I/O errors
//   - DIMENSION_MISMATCH: collage received a differently-sized tile
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyHistory, "nothing to undo")
//	if errors.Is(err, errors.ErrCodeEmptyHistory) {
//	    // Disable the undo action
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSourceLoad, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// History errors
	ErrCodeEmptyHistory Code = "EMPTY_HISTORY"
	ErrCodeNoImage      Code = "NO_IMAGE"

	// Selection errors
	ErrCodePolicyUnsatisfiable Code = "POLICY_UNSATISFIABLE"
	ErrCodeUnknownEffect       Code = "UNKNOWN_EFFECT"

	// I/O errors
	ErrCodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	ErrCodeSourceLoad        Code = "SOURCE_LOAD_FAILURE"
	ErrCodeSourceSave        Code = "SOURCE_SAVE_FAILURE"

	// Composition errors
	ErrCodeDimensionMismatch Code = "DIMENSION_MISMATCH"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Internal errors
	ErrCodeCanceled Code = "CANCELED"
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
// It unwraps the error chain looking for an *Error with a matching code.
// The outermost *Error wins, so re-wrapping with a new code changes the answer.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
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
