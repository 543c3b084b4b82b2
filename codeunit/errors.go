package codeunit

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrMalformedSource indicates that a snippet does not parse as a
	// valid Starlark program.
	ErrMalformedSource = errors.New("malformed source")

	// ErrMultipleBindings indicates that a snippet binds more than one
	// non-load name at the top level.
	ErrMultipleBindings = errors.New("snippet binds more than one top-level name")
)

// SourceError describes a parse failure with source position information.
type SourceError struct {
	// Msg describes the failure.
	Msg string

	// Line is the 1-based line number where the failure occurred.
	// Zero indicates the line is unknown.
	Line int

	// Col is the 1-based column number where the failure occurred.
	// Zero indicates the column is unknown.
	Col int

	// Err is the underlying parser error, if any.
	Err error
}

// Error returns the failure message, including position if known.
func (e *SourceError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Msg, e.Line, e.Col)
	}
	return e.Msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// SourceError matches ErrMalformedSource to allow sentinel-style checks.
func (e *SourceError) Is(target error) bool {
	return target == ErrMalformedSource
}
