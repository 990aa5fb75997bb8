// Package bind owns the binding table that maps key sequences to command
// specifications, scoped by editor mode. Binding values arrive from
// configuration in several shapes (bare command name, command object,
// sequence, conditional, numeric alias); Parse converts them into a
// closed tagged union so dispatch can match exhaustively.
package bind

import "fmt"

// Spec is a command specification bound to a key sequence.
// The concrete types are Single, WithArgs, Seq, Cond and Alias.
// Specs are immutable once parsed.
type Spec interface {
	spec()
}

// Single is a bare command name with no arguments.
type Single struct {
	Command string
}

// WithArgs is a command with fixed and/or computed arguments.
type WithArgs struct {
	// Command is the command name. An empty Command is a configuration
	// error surfaced at resolution time, not at parse time.
	Command string

	// Args are literal arguments passed through unchanged.
	Args map[string]any

	// ComputedArgs maps argument names to expressions evaluated against
	// the session context at dispatch time.
	ComputedArgs map[string]string

	// Repeat re-runs the resolved command N times. It is either an int
	// or an expression string evaluated at dispatch time.
	Repeat any
}

// Seq is an ordered list of specs executed in order.
type Seq struct {
	Specs []Spec
}

// Cond selects between two specs based on a condition expression.
type Cond struct {
	If   string
	Then Spec
	Else Spec // may be nil
}

// Alias is a bare integer referring to another binding. The core treats
// it as opaque; expansion belongs to the configuration layer that
// produced it.
type Alias struct {
	Code int
}

func (Single) spec()   {}
func (WithArgs) spec() {}
func (Seq) spec()      {}
func (Cond) spec()     {}
func (Alias) spec()    {}

// Parse converts a configuration value into a Spec.
// Accepted shapes: string, number, list, {command, args, computedArgs,
// repeat} object, {if, then, else} object.
func Parse(v any) (Spec, error) {
	switch val := v.(type) {
	case string:
		return Single{Command: val}, nil
	case int:
		return Alias{Code: val}, nil
	case int64:
		return Alias{Code: int(val)}, nil
	case float64:
		return Alias{Code: int(val)}, nil
	case []any:
		specs := make([]Spec, 0, len(val))
		for i, item := range val {
			s, err := Parse(item)
			if err != nil {
				return nil, fmt.Errorf("sequence item %d: %w", i, err)
			}
			specs = append(specs, s)
		}
		return Seq{Specs: specs}, nil
	case map[string]any:
		return parseObject(val)
	default:
		return nil, fmt.Errorf("%w: unsupported value %T", ErrInvalidSpec, v)
	}
}

// parseObject handles the {command, ...} and {if, then, else} shapes.
func parseObject(m map[string]any) (Spec, error) {
	if condExpr, ok := m["if"]; ok {
		cond, ok := condExpr.(string)
		if !ok {
			return nil, fmt.Errorf("%w: 'if' must be a string", ErrInvalidSpec)
		}
		then, ok := m["then"]
		if !ok {
			return nil, fmt.Errorf("%w: conditional missing 'then'", ErrInvalidSpec)
		}
		thenSpec, err := Parse(then)
		if err != nil {
			return nil, fmt.Errorf("then branch: %w", err)
		}
		out := Cond{If: cond, Then: thenSpec}
		if elseVal, ok := m["else"]; ok {
			elseSpec, err := Parse(elseVal)
			if err != nil {
				return nil, fmt.Errorf("else branch: %w", err)
			}
			out.Else = elseSpec
		}
		return out, nil
	}

	// Missing or mistyped command is preserved as an empty name; the
	// matcher surfaces it when the binding fires so a bad entry does not
	// take the rest of the table down.
	command, _ := m["command"].(string)
	spec := WithArgs{Command: command}

	if args, ok := m["args"].(map[string]any); ok {
		spec.Args = args
	}
	if computed, ok := m["computedArgs"].(map[string]any); ok {
		spec.ComputedArgs = make(map[string]string, len(computed))
		for k, v := range computed {
			expr, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: computed arg %q must be a string expression", ErrInvalidSpec, k)
			}
			spec.ComputedArgs[k] = expr
		}
	}
	if repeat, ok := m["repeat"]; ok {
		switch repeat.(type) {
		case string, int, int64, float64:
			spec.Repeat = repeat
		default:
			return nil, fmt.Errorf("%w: repeat must be a count or expression", ErrInvalidSpec)
		}
	}
	return spec, nil
}
