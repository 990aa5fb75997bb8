package bind

import "errors"

// Errors returned by binding parsing and resolution.
var (
	// ErrInvalidSpec indicates a configuration value that cannot be
	// parsed into a command specification.
	ErrInvalidSpec = errors.New("invalid command specification")

	// ErrMalformedCommand indicates a binding object whose required
	// command field is missing.
	ErrMalformedCommand = errors.New("binding is missing its command field")
)
