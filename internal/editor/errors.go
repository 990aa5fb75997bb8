package editor

import "errors"

// Errors returned by editor operations.
var (
	// ErrRangeOutOfBounds indicates an edit range outside the document.
	ErrRangeOutOfBounds = errors.New("range out of bounds")

	// ErrUnknownCommand indicates a host command the editor does not implement.
	ErrUnknownCommand = errors.New("unknown host command")
)
