// Package errors provides standardized error handling for idu. It defines
// the error kinds the navigation engine distinguishes between, typed errors
// carrying the offending path, and helpers for consistent wrapping and
// inspection across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package functions re-exported for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
	// New creates a plain error from a message
	New = errors.New
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// ScanFailed means the external disk-usage scan reported a failure
	ScanFailed
	// InvalidPath means a path could not be canonicalized
	InvalidPath
	// Cancelled means the user interrupted an operation
	Cancelled
	// InvalidConfig means the configuration file could not be used
	InvalidConfig
)

// ErrCancelled marks a user-initiated cancellation. A scan aborted by an
// interrupt wraps this sentinel; callers decide whether it means "return to
// prompt" or "quit" based on where it occurred.
var ErrCancelled = &AppError{msg: "operation cancelled", kind: Cancelled}

// AppError is the base error type for all idu errors
type AppError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *AppError) Kind() ErrorKind {
	return e.kind
}

// ScanError reports a failed external disk-usage scan
type ScanError struct {
	AppError
	dir string
}

// NewScanError creates a new scan error for the given directory
func NewScanError(msg string, dir string, err error) *ScanError {
	return &ScanError{
		AppError: AppError{msg: msg, err: err, kind: ScanFailed},
		dir:      dir,
	}
}

// Error returns the scan error message
func (e *ScanError) Error() string {
	if e.dir != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.dir, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.dir)
	}
	return e.AppError.Error()
}

// Dir returns the directory the failed scan targeted
func (e *ScanError) Dir() string {
	return e.dir
}

// PathError reports a path that could not be canonicalized
type PathError struct {
	AppError
	path string
}

// NewPathError creates a new path error
func NewPathError(msg string, path string, err error) *PathError {
	return &PathError{
		AppError: AppError{msg: msg, err: err, kind: InvalidPath},
		path:     path,
	}
}

// Error returns the path error message
func (e *PathError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.AppError.Error()
}

// Path returns the path associated with the error
func (e *PathError) Path() string {
	return e.path
}

// Cancel wraps err as a cancellation so IsCancelled recognizes it.
func Cancel(err error) error {
	return &AppError{msg: "operation cancelled", err: err, kind: Cancelled}
}

// KindOf walks the error chain and returns the first kind it finds
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// IsCancelled reports whether err represents a user-initiated cancellation
func IsCancelled(err error) bool {
	return KindOf(err) == Cancelled
}
