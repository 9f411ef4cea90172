// Package errors provides structured error types for lingo.
//
// Every failure the resolver, lock store or build orchestrator can report
// carries a machine-readable [Code], so callers can branch on the category of
// failure without matching message text:
//
//	if errors.Is(err, errors.ErrCodeNoViableVersion) {
//	    // constraint set for some package is unsatisfiable
//	}
//
// Codes are grouped by the phase that produces them:
//   - Resolution: FETCH_FAILED, INVALID_MANIFEST, VERSION_MISMATCH,
//     NO_VIABLE_VERSION, NO_LIBRARY_EXPORTED, AMBIGUOUS_VERSION
//   - Lock: CHECKSUM_MISMATCH, INVALID_LOCK
//   - Build: UNKNOWN_APP_NAME, COMMAND_FAILED, SHARED_GROUP_FAILURE, ABORTED
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Resolution errors
	ErrCodeFetchFailed       Code = "FETCH_FAILED"
	ErrCodeInvalidManifest   Code = "INVALID_MANIFEST"
	ErrCodeVersionMismatch   Code = "VERSION_MISMATCH"
	ErrCodeNoViableVersion   Code = "NO_VIABLE_VERSION"
	ErrCodeNoLibraryExported Code = "NO_LIBRARY_EXPORTED"
	ErrCodeAmbiguousVersion  Code = "AMBIGUOUS_VERSION"
	ErrCodeInvalidPackage    Code = "INVALID_PACKAGE"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Lock errors
	ErrCodeChecksumMismatch Code = "CHECKSUM_MISMATCH"
	ErrCodeInvalidLock      Code = "INVALID_LOCK"

	// Build errors
	ErrCodeUnknownAppName     Code = "UNKNOWN_APP_NAME"
	ErrCodeCommandFailed      Code = "COMMAND_FAILED"
	ErrCodeSharedGroupFailure Code = "SHARED_GROUP_FAILURE"
	ErrCodeAborted            Code = "ABORTED"

	// Project errors
	ErrCodeInvalidProjectLocation Code = "INVALID_PROJECT_LOCATION"
	ErrCodeNotFound               Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
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
// Joined errors match if any member matches.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.Code == code {
		return true
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			if Is(inner, code) {
				return true
			}
		}
	}
	if e != nil && e.Cause != nil {
		return Is(e.Cause, code)
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
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// CommandError reports an external command that exited unsuccessfully.
type CommandError struct {
	Command  string // Rendered command line
	ExitCode int    // Process exit status (-1 if the process never ran)
	Stderr   string // Tail of captured standard error, if any
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("command could not be started: %s", e.Command)
	}
	return fmt.Sprintf("command exited with status %d: %s", e.ExitCode, e.Command)
}

// Code returns the error code for this error type.
func (e *CommandError) Code() Code {
	return ErrCodeCommandFailed
}
