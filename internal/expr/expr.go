// Package expr evaluates the restricted expressions that appear in
// binding configuration: conditional guards, computed arguments, and
// repeat counts. Expressions are evaluated against a fixed read-only
// context record and can never mutate editor state.
package expr

// Context is the read-only record visible to expressions.
// Each field becomes a global of the same (lowercased) name.
type Context struct {
	// Count is the accumulated numeric prefix, 0 when absent.
	Count int

	// Selecting is true while visual selection is active.
	Selecting bool

	// Mode is the current editor mode name.
	Mode string

	// Captured is the text collected by a capture-mode command.
	Captured string

	// Selection is the text of the primary selection.
	Selection string

	// Line is the zero-based line of the primary cursor.
	Line int
}

// Evaluator evaluates a restricted expression string against a context.
// Implementations must be free of ambient effects: the same expression
// and context always produce the same value.
type Evaluator interface {
	Eval(expression string, ctx Context) (any, error)
}

// Truthy converts an evaluation result to a boolean following the
// evaluator's truthiness rules: nil and false are false, everything
// else (including 0 and "") is true.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	default:
		return true
	}
}

// Int converts an evaluation result to an int when possible.
func Int(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}

// String converts an evaluation result to a string when possible.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
