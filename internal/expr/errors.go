package expr

import "errors"

// ErrEvaluation indicates an expression failed to compile or run.
// The owning command is treated as failed and skipped; the failure is
// never fatal to the session.
var ErrEvaluation = errors.New("expression evaluation failed")
