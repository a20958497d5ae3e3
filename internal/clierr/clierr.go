// Package clierr defines structured error types for CLI commands.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for scripted consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error code constants: uppercase, underscore-separated, stable across minor versions.
const (
	TaskNotFound         = "TASK_NOT_FOUND"
	ValidationError      = "VALIDATION_ERROR"
	InvalidInput         = "INVALID_INPUT"
	InvalidTaskID        = "INVALID_TASK_ID"
	InvalidDate          = "INVALID_DATE"
	InvalidFilter        = "INVALID_FILTER"
	InvalidDirection     = "INVALID_DIRECTION"
	InvalidGroupBy       = "INVALID_GROUP_BY"
	ReorderDisabled      = "REORDER_DISABLED"
	StoragePersistFailed = "STORAGE_PERSIST_FAILED"
	ConfirmationReq      = "CONFIRMATION_REQUIRED"
	ConfigNotFound       = "CONFIG_NOT_FOUND"
	AlreadyInitialized   = "ALREADY_INITIALIZED"
	InternalError        = "INTERNAL_ERROR"
)

// Error represents a structured CLI error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any

	// cause is the underlying error, if any (not serialized).
	cause error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps err as its cause.
func Wrap(code string, err error, message string) *Error {
	return &Error{Code: code, Message: message + ": " + err.Error(), cause: err}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// ExitCode returns 2 for InternalError, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// Is reports whether err is (or wraps) an *Error with the given code.
func Is(err error, code string) bool {
	var cliErr *Error
	if !errors.As(err, &cliErr) {
		return false
	}
	return cliErr.Code == code
}

// IsWarning reports whether err only signals stale persistence. The
// operation that returned it still took effect in memory.
func IsWarning(err error) bool {
	return Is(err, StoragePersistFailed)
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
