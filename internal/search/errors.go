package search

import "errors"

// Errors returned by search operations. All are recoverable: the
// calling command aborts and selections stay at their origin.
var (
	// ErrInvalidPattern indicates a regular expression that fails to compile.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrInvalidOffset indicates an unrecognized offset policy string.
	ErrInvalidOffset = errors.New("invalid search offset")
)
