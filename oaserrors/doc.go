// Package oaserrors provides structured error types for the oasweave library.
//
// Import path: github.com/erraggy/oasweave/oaserrors
//
// # Errors as data
//
// Bundling and contract validation treat malformed input as a normal outcome.
// A bundle result carries a Success flag, a human-readable Reason and a typed
// Failure; the Failure is one of the types below and can be inspected with
// [errors.Is] and [errors.As]. Go errors returned directly from the engines are
// reserved for invalid options, cancellation and internal faults.
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrDanglingReference]: Matches [ReferenceError] with IsDangling=true
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrAmbiguousRoot]: Matches [RootError] with Multiple=false
//   - [ErrMultipleRoots]: Matches [RootError] with Multiple=true
//   - [ErrValidation]: Matches any [ValidationError]
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// The reason for a multiple-root failure is always [MultipleRootsMessage].
package oaserrors
