package session

import (
	"errors"
	"fmt"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/expr"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/sentence"
)

type outcome int

const (
	outcomeExecuted outcome = iota
	outcomeWaiting
	outcomeFailed
)

// resolver accumulates keys and matches them against a binding table.
// The session owns one outer resolver; capture, typeKeys and macro
// replay each construct a fresh nested one so their keystrokes never
// disturb the outer buffer or sentence tracking.
type resolver struct {
	session *Session
	table   *bind.Table
	buffer  *key.Sequence
}

func newResolver(s *Session, table *bind.Table) *resolver {
	return &resolver{
		session: s,
		table:   table,
		buffer:  key.NewSequence(),
	}
}

func (r *resolver) reset() {
	r.buffer.Clear()
}

// handleKey appends the key and decides: execute on an exact match,
// wait while some strictly longer binding shares the buffer as a
// prefix, fail otherwise. The buffer is cleared on every terminal
// outcome.
func (r *resolver) handleKey(ev key.Event, mode string) (outcome, error) {
	r.buffer.Add(ev)

	if spec, ok := r.table.Lookup(mode, r.buffer); ok {
		r.buffer.Clear()
		return outcomeExecuted, r.session.execute(spec)
	}
	if r.table.HasPrefix(mode, r.buffer) {
		return outcomeWaiting, nil
	}

	keys := r.buffer.String()
	r.buffer.Clear()
	return outcomeFailed, fmt.Errorf("%w: %q in %s mode", ErrUnboundKeys, keys, mode)
}

// execute walks a command spec: evaluates computed arguments and
// conditions, expands sequences in order, and honors repeat counts.
// An evaluation failure fails the owning step only; a surrounding
// sequence continues with the next step.
func (s *Session) execute(spec bind.Spec) error {
	switch sp := spec.(type) {
	case bind.Single:
		return s.runCommand(sp.Command, nil)

	case bind.WithArgs:
		if sp.Command == "" {
			return fmt.Errorf("%w: add a \"command\" field to the binding", bind.ErrMalformedCommand)
		}
		args := make(map[string]any, len(sp.Args)+len(sp.ComputedArgs))
		for k, v := range sp.Args {
			args[k] = v
		}
		for name, expression := range sp.ComputedArgs {
			v, err := s.eval.Eval(expression, s.exprContext())
			if err != nil {
				return fmt.Errorf("computing argument %q: %w", name, err)
			}
			args[name] = v
		}
		n, err := s.repeatCount(sp.Repeat)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := s.runCommand(sp.Command, args); err != nil {
				return err
			}
		}
		return nil

	case bind.Seq:
		for _, step := range sp.Specs {
			if err := s.execute(step); err != nil {
				if errors.Is(err, expr.ErrEvaluation) {
					s.surface(err)
					continue
				}
				return err
			}
		}
		return nil

	case bind.Cond:
		v, err := s.eval.Eval(sp.If, s.exprContext())
		if err != nil {
			return fmt.Errorf("evaluating condition: %w", err)
		}
		if expr.Truthy(v) {
			return s.execute(sp.Then)
		}
		if sp.Else != nil {
			return s.execute(sp.Else)
		}
		return nil

	case bind.Alias:
		// Aliases belong to the configuration layer; an unexpanded one
		// reaching execution is a no-op.
		return nil

	default:
		return fmt.Errorf("%w: unrecognized specification", bind.ErrInvalidSpec)
	}
}

// repeatCount resolves the repeat field of a WithArgs spec: absent
// means once, an integer is taken as-is, a string is evaluated.
func (s *Session) repeatCount(repeat any) (int, error) {
	switch v := repeat.(type) {
	case nil:
		return 1, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		result, err := s.eval.Eval(v, s.exprContext())
		if err != nil {
			return 0, fmt.Errorf("computing repeat count: %w", err)
		}
		n, ok := expr.Int(result)
		if !ok {
			return 0, fmt.Errorf("%w: repeat expression %q is not a number", expr.ErrEvaluation, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: repeat must be a number or expression", bind.ErrInvalidSpec)
	}
}

// replayKeys feeds recorded events through a fresh nested resolver,
// optionally with extra bindings merged over the session table.
// Mode-sensitive routing (search, capture) still applies, so replayed
// keys can type into an in-flight search exactly as live ones would.
func (s *Session) replayKeys(events []key.Event, overrides *bind.Table) error {
	table := s.table
	if overrides != nil {
		table = s.table.Merge(overrides)
	}
	nested := newResolver(s, table)

	var firstErr error
	for _, ev := range events {
		if err := s.dispatchKey(ev, nested, false); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// replayKeysInMode switches to the recorded mode, replays, and
// switches back.
func (s *Session) replayKeysInMode(events []key.Event, inMode string, overrides *bind.Table) error {
	previous := s.modes.Current()
	if inMode != "" && inMode != previous {
		s.modes.Enter(s.host.ID(), inMode)
	}
	err := s.replayKeys(events, overrides)
	if inMode != "" && inMode != previous && s.modes.Current() == inMode {
		s.modes.Enter(s.host.ID(), previous)
	}
	return err
}

// repeatWord re-executes a recorded word under the reentrancy guard,
// so the replay is not re-accounted as a fresh sentence. The keystroke
// that invoked the repeat is discarded from word tracking and the
// replay's own text-change signal is suppressed; otherwise the repeat
// key would displace the very word it replays.
func (s *Session) repeatWord(w sentence.Word, what string) error {
	if w.IsEmpty() {
		s.host.ShowMessage("Nothing to repeat: no " + what + " recorded")
		return nil
	}
	var err error
	s.tracker.Guarded(func() {
		if w.IsCommand() {
			err = s.execute(w.Spec)
			return
		}
		err = s.replayKeysInMode(key.ParseEvents(w.Keys), w.Mode, nil)
	})
	s.tracker.CommandFailed()
	s.tracker.SuppressNextChange()
	return err
}
