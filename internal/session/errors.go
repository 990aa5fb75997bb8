package session

import "errors"

// Errors raised while handling keys. All are recoverable: the key
// becomes a no-op, a message is surfaced, and document and selection
// state are left intact.
var (
	// ErrUnboundKeys indicates a key buffer that matches no binding,
	// not even as a prefix. The buffer is reset silently.
	ErrUnboundKeys = errors.New("unbound key sequence")

	// ErrMissingExecuteAfter indicates a completed capture with no
	// follow-up command configured.
	ErrMissingExecuteAfter = errors.New("capture completed with no executeAfter command")

	// ErrNoSearchHistory indicates nextMatch or previousMatch with an
	// empty search register.
	ErrNoSearchHistory = errors.New("no previous search in register")
)
