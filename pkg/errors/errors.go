// Package errors provides structured error types for forcegraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Graph construction failures (DANGLING_LINK_REFERENCE, DUPLICATE_NODE_ID,
// INVALID_INPUT, INVALID_CONFIG) are fatal at initialization: the simulation
// never starts. Lifecycle failures (DISPOSED, CONCURRENT_TICK) indicate a
// caller bug. NON_FINITE_STATE is a last-resort guard; the engine clamps and
// jitters so that it never fires in practice.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeDuplicateNodeID, "duplicate node id %q", id)
//	if errors.Is(err, errors.ErrCodeDuplicateNodeID) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read graph %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph construction errors
	ErrCodeDanglingLink    Code = "DANGLING_LINK_REFERENCE"
	ErrCodeDuplicateNodeID Code = "DUPLICATE_NODE_ID"
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"

	// Lookup errors
	ErrCodeNodeNotFound Code = "NODE_NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Lifecycle errors
	ErrCodeDisposed       Code = "DISPOSED"
	ErrCodeConcurrentTick Code = "CONCURRENT_TICK"

	// Numerical errors
	ErrCodeNonFiniteState Code = "NON_FINITE_STATE"

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
// It unwraps the error chain looking for an *Error with a matching code.
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
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code to the HTTP status the server reports.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeDanglingLink, ErrCodeDuplicateNodeID, ErrCodeInvalidInput,
		ErrCodeInvalidConfig, ErrCodeInvalidFormat:
		return 400
	case ErrCodeNodeNotFound, ErrCodeFileNotFound:
		return 404
	case ErrCodeDisposed:
		return 410
	case ErrCodeConcurrentTick:
		return 409
	case ErrCodeUnsupported:
		return 501
	default:
		return 500
	}
}
