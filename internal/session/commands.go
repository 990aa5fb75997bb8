package session

import (
	"fmt"
	"strings"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/mode"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/search"
)

// CommandPrefix namespaces the commands this core handles itself.
// Bindings may use the bare name or the prefixed one interchangeably.
const CommandPrefix = "modaled."

// runCommand dispatches one resolved command: the core's own commands
// are handled here, everything else is forwarded to the host.
func (s *Session) runCommand(name string, args map[string]any) error {
	switch strings.TrimPrefix(name, CommandPrefix) {
	case "search":
		return s.startSearch(args)
	case "cancelSearch":
		s.cancelSearch()
		return nil
	case "nextMatch":
		return s.matchFromRegister(args, false)
	case "previousMatch":
		return s.matchFromRegister(args, true)

	case "selectBetween":
		return s.selectBetween(args)

	case "captureChar":
		return s.startCapture(args)

	case "typeKeys":
		keys, ok := argString(args, "keys")
		if !ok {
			return fmt.Errorf("%w: typeKeys needs a \"keys\" argument", bind.ErrMalformedCommand)
		}
		overrides, err := argBindings(args, "bindings")
		if err != nil {
			return err
		}
		if inMode, ok := argString(args, "mode"); ok {
			return s.replayKeysInMode(key.ParseEvents(keys), inMode, overrides)
		}
		return s.replayKeys(key.ParseEvents(keys), overrides)

	case "enterMode":
		target, ok := argString(args, "mode")
		if !ok {
			return fmt.Errorf("%w: enterMode needs a \"mode\" argument", bind.ErrMalformedCommand)
		}
		s.enterMode(target)
		return nil
	case "enterInsert":
		s.enterMode(mode.Insert)
		return nil
	case "enterNormal":
		s.enterMode(mode.Normal)
		return nil

	case "toggleSelection":
		if s.modes.IsVisual(editor.AnyNonEmpty(s.host.Selections())) {
			s.clearSelections()
		} else {
			s.enterMode(mode.Visual)
		}
		return nil
	case "enableSelection":
		s.enterMode(mode.Visual)
		return nil
	case "cancelSelection":
		s.clearSelections()
		return nil

	case "startRecordingMacro":
		register, _ := argString(args, "register")
		s.recorder.Start(register)
		return nil
	case "stopRecordingMacro":
		s.recorder.Stop()
		return nil
	case "cancelRecordingMacro":
		s.recorder.Cancel()
		return nil
	case "replayMacro":
		return s.replayMacro(args)

	case "repeatLastChange":
		return s.repeatWord(s.tracker.LastChange(), "change")
	case "repeatLastUsedSelection":
		return s.repeatWord(s.tracker.LastUsedSelection(), "selection")

	case "treatAsChanged":
		s.tracker.MarkChanged()
		return nil
	case "treatAsUnchanged":
		s.tracker.SuppressNextChange()
		return nil

	default:
		return s.host.Exec(name, args)
	}
}

func (s *Session) enterMode(target string) {
	// A half-typed sequence or in-flight search does not survive a mode
	// change.
	if target != s.modes.Current() {
		s.outer.reset()
		s.waiting = false
		if target != mode.Search {
			s.abandonSearch()
		}
		if target != mode.Capture {
			s.abandonCapture()
		}
	}
	s.modes.Enter(s.host.ID(), target)
}

// clearSelections collapses every selection to its active position and
// drops the visual flag.
func (s *Session) clearSelections() {
	sels := s.host.Selections()
	collapsed := make([]editor.Selection, len(sels))
	for i, sel := range sels {
		collapsed[i] = sel.Collapse(sel.Active)
	}
	s.host.SetSelections(collapsed)
	s.modes.Enter(s.host.ID(), mode.Normal)
}

func (s *Session) replayMacro(args map[string]any) error {
	register, _ := argString(args, "register")
	if register == "" {
		if last := s.recorder.LastPlayed(); last != "" {
			register = last
		}
	}
	entries := s.recorder.Get(register)
	if len(entries) == 0 {
		s.host.ShowMessage("Nothing recorded in macro register " + register)
		return nil
	}
	s.recorder.SetLastPlayed(register)

	var err error
	s.tracker.Guarded(func() {
		nested := newResolver(s, s.table)
		for _, entry := range entries {
			// Each event resolves in the mode it was recorded in. The
			// replayed keys drive any further mode changes themselves,
			// and the macro leaves the editor wherever it ends.
			if entry.Mode != "" && entry.Mode != s.modes.Current() {
				s.modes.Enter(s.host.ID(), entry.Mode)
			}
			if e := s.dispatchKey(entry.Event, nested, false); e != nil && err == nil {
				err = e
			}
		}
	})
	return err
}

// selectBetween grows every selection to the nearest enclosing
// delimiters.
func (s *Session) selectBetween(args map[string]any) error {
	opts := search.Between{}
	opts.From, _ = argString(args, "from")
	opts.To, _ = argString(args, "to")
	opts.Regex = argBool(args, "regex", false)
	opts.Inclusive = argBool(args, "inclusive", false)
	opts.CaseSensitive = argBool(args, "caseSensitive", false)
	opts.DocScope = argBool(args, "docScope", false)

	sels := s.host.Selections()
	result := make([]editor.Selection, len(sels))
	for i, sel := range sels {
		grown, err := search.SelectBetween(s.host, sel, opts)
		if err != nil {
			return err
		}
		result[i] = grown
	}
	s.host.SetSelections(result)
	return nil
}

// Argument helpers tolerate the value shapes produced by configuration
// decoding and by expression evaluation.

func argString(args map[string]any, name string) (string, bool) {
	v, ok := args[name]
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

func argBool(args map[string]any, name string, fallback bool) bool {
	v, ok := args[name]
	if !ok {
		return fallback
	}
	b, ok := v.(bool)
	if !ok {
		return fallback
	}
	return b
}

// argBindings parses a map of scoped binding entries into a table,
// used as local overrides for injected keys.
func argBindings(args map[string]any, name string) (*bind.Table, error) {
	raw, ok := args[name].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil, nil
	}
	table := bind.NewTable()
	for entry, value := range raw {
		spec, err := bind.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("binding for %q: %w", entry, err)
		}
		table.BindEntry(entry, spec)
	}
	return table, nil
}

func argInt(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}
