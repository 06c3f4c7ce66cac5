// Package errors provides structured error types for the stitchgrid application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the viewer and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - CATALOG_*, EMPTY_CATALOG: Thread catalog failures
//   - MISSING_ASSIGNMENT, INTERNAL_*: Programming defects
//
// # Usage
//
//	err := errors.New(errors.ErrCodeEmptyCatalog, "catalog has no threads")
//	if errors.Is(err, errors.ErrCodeEmptyCatalog) {
//	    // Handle missing catalog
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCatalogNotFound, origErr, "open %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidImage  Code = "INVALID_IMAGE"

	// Resource not found errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeCatalogNotFound Code = "CATALOG_NOT_FOUND"
	ErrCodeThreadNotFound  Code = "THREAD_NOT_FOUND"

	// Catalog errors
	ErrCodeCatalogParse Code = "CATALOG_PARSE"
	ErrCodeEmptyCatalog Code = "EMPTY_CATALOG"

	// Viewport errors
	ErrCodeInvalidState Code = "INVALID_STATE"

	// Internal errors
	ErrCodeMissingAssignment Code = "MISSING_ASSIGNMENT"
	ErrCodeInternal          Code = "INTERNAL_ERROR"
	ErrCodeBusy              Code = "BUSY"
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
// Only the outermost *Error is considered.
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsDefect reports whether err signals a programming defect rather than a
// user-recoverable condition.
func IsDefect(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingAssignment, ErrCodeInternal:
		return true
	}
	return false
}
