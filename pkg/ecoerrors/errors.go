// Package ecoerrors provides structured error handling for the EcoChain
// backend. Every error crossing a package boundary carries a category so the
// HTTP layer and the sync orchestrator can react without string matching.
package ecoerrors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeInternal represents unexpected infrastructure failures.
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents per-record or per-field validation failures.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents an unknown or unauthorized resource id.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents state conflicts, e.g. a sync requested
	// while one is already in flight.
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeTimeout represents timeout failures.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeConnection represents connectivity failures against an
	// external system.
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeAuthentication represents credential failures.
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeConfig represents invalid configuration supplied by a caller.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents malformed payloads from an external system.
	ErrorTypeData ErrorType = "data"
	// ErrorTypeQuery represents query execution failures.
	ErrorTypeQuery ErrorType = "query"
)

// Error is a categorized error with optional structured details.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message.
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...any) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a category and context message.
// Wrapping nil returns nil.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Message: message, Cause: err}
}

// IsType checks whether err (or anything it wraps) carries the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the category of err, or ErrorTypeInternal for errors that
// did not originate in this package.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeInternal
}
