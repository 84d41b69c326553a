// Package oaserrors provides structured error types for oasweave.
//
// These error types enable programmatic error handling via errors.Is() and
// errors.As(), allowing callers to distinguish between different categories
// of failures. Most of them are returned as data inside bundle and validation
// results rather than as Go errors, since malformed input is an expected
// outcome, not a fault.
//
// # Error Categories
//
//   - ParseError: YAML/JSON decoding failures of a file in a file set
//   - ReferenceError: dangling $ref targets and circular inline expansion
//   - RootError: no root file, or more than one root file
//   - ValidationError: required top-level keys missing for the declared version
//   - ResourceLimitError: resource exhaustion (file size, file count, ref hops)
//   - ConfigError: invalid configuration or input options
//
// # Usage with errors.As
//
//	res, err := bundler.Bundle(ctx, fs)
//	if err != nil {
//	    return err
//	}
//	var rootErr *oaserrors.RootError
//	if !res.Success && errors.As(res.Failure, &rootErr) && rootErr.Multiple {
//	    // more than one root file
//	}
package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrParse indicates a file could not be decoded.
	ErrParse = errors.New("parse error")

	// ErrReference indicates a reference resolution failure.
	ErrReference = errors.New("reference error")

	// ErrDanglingReference indicates a $ref whose file or fragment does not exist.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrCircularReference indicates a circular $ref that could not be kept as a pointer.
	ErrCircularReference = errors.New("circular reference")

	// ErrAmbiguousRoot indicates no file in the set qualifies as the root.
	ErrAmbiguousRoot = errors.New("ambiguous root")

	// ErrMultipleRoots indicates more than one file in the set qualifies as the root.
	ErrMultipleRoots = errors.New("multiple roots")

	// ErrValidation indicates a structural specification violation.
	ErrValidation = errors.New("validation error")

	// ErrResourceLimit indicates a resource limit was exceeded.
	ErrResourceLimit = errors.New("resource limit exceeded")

	// ErrConfig indicates an invalid configuration.
	ErrConfig = errors.New("configuration error")
)

// MultipleRootsMessage is the reason reported when a file set has more than one root.
const MultipleRootsMessage = "More than one root file not supported."

// ParseError represents a failure to decode one file of a file set.
type ParseError struct {
	// Path is the file name within the file set
	Path string
	// Line is the line number where the error occurred (0 if unknown)
	Line int
	// Column is the column number where the error occurred (0 if unknown)
	Column int
	// Message describes the parsing failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Path != "" {
		msg += " in " + e.Path
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
		if e.Column > 0 {
			msg += fmt.Sprintf(", column %d", e.Column)
		}
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ReferenceError represents a $ref that could not be bundled.
type ReferenceError struct {
	// Ref is the reference string as written in the source file
	Ref string
	// File is the file the $ref occurs in
	File string
	// Origin is the JSON pointer of the $ref occurrence within File
	Origin string
	// IsDangling is true if the target file or fragment does not exist
	IsDangling bool
	// IsCircular is true if the target re-enters itself through inline expansion
	IsCircular bool
	// Message provides additional context about the failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ReferenceError) Error() string {
	msg := "reference error"
	switch {
	case e.IsDangling:
		msg = "dangling reference"
	case e.IsCircular:
		msg = "circular reference"
	}
	if e.Ref != "" {
		msg += ": " + e.Ref
	}
	if e.File != "" {
		msg += " (in " + e.File
		if e.Origin != "" {
			msg += " at #" + e.Origin
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ReferenceError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
// Matches ErrReference, and also ErrDanglingReference or ErrCircularReference
// when the matching flag is set.
func (e *ReferenceError) Is(target error) bool {
	if target == ErrReference {
		return true
	}
	if target == ErrDanglingReference && e.IsDangling {
		return true
	}
	if target == ErrCircularReference && e.IsCircular {
		return true
	}
	return false
}

// RootError reports that a file set does not have exactly one root file.
type RootError struct {
	// Candidates are the files that no other file points to
	Candidates []string
	// Multiple is true when more than one candidate (or root hint) was found.
	// When false, no candidate was found.
	Multiple bool
}

// Error returns a human-readable error message.
func (e *RootError) Error() string {
	if e.Multiple {
		return MultipleRootsMessage
	}
	return "Unable to determine the root file: every file is referenced by another file."
}

// Detail returns the error message followed by the candidate files, if any.
func (e *RootError) Detail() string {
	if len(e.Candidates) == 0 {
		return e.Error()
	}
	return e.Error() + " Candidates: " + strings.Join(e.Candidates, ", ")
}

// Is reports whether target matches this error type.
func (e *RootError) Is(target error) bool {
	if e.Multiple {
		return target == ErrMultipleRoots
	}
	return target == ErrAmbiguousRoot
}

// ValidationError represents a structural specification violation found
// before resolution.
type ValidationError struct {
	// Path is the file the violation was found in
	Path string
	// Field is the specific field name with the issue
	Field string
	// Value is the problematic value (may be nil)
	Value any
	// Message describes the validation failure
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns the message, which doubles as the user-facing reason.
func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "validation error"
		if e.Field != "" {
			msg += " for " + e.Field
		}
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ResourceLimitError represents a resource exhaustion condition.
type ResourceLimitError struct {
	// ResourceType identifies what limit was exceeded
	// Common values: "file_size", "file_count", "ref_hops"
	ResourceType string
	// Limit is the configured maximum value
	Limit int64
	// Actual is the value that exceeded the limit (may be 0 if unknown)
	Actual int64
	// Message provides additional context
	Message string
}

// Error returns a human-readable error message.
func (e *ResourceLimitError) Error() string {
	msg := "resource limit exceeded"
	if e.ResourceType != "" {
		msg += ": " + e.ResourceType
	}
	if e.Limit > 0 {
		msg += fmt.Sprintf(" (limit: %d", e.Limit)
		if e.Actual > 0 {
			msg += fmt.Sprintf(", actual: %d", e.Actual)
		}
		msg += ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Is reports whether target matches this error type.
func (e *ResourceLimitError) Is(target error) bool {
	return target == ErrResourceLimit
}

// ConfigError represents an invalid configuration or input.
type ConfigError struct {
	// Option is the name of the problematic configuration option
	Option string
	// Value is the invalid value that was provided (may be nil)
	Value any
	// Message describes the configuration error
	Message string
	// Cause is the underlying error, if any
	Cause error
}

// Error returns a human-readable error message.
func (e *ConfigError) Error() string {
	msg := "configuration error"
	if e.Option != "" {
		msg += " for " + e.Option
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chaining.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error type.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
