package session

import (
	"fmt"
	"unicode/utf8"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/mode"
)

// captureSession collects a fixed number of characters before invoking
// a follow-up command with the captured text in its expression context.
type captureSession struct {
	acceptAfter  int
	executeAfter bind.Spec
	returnMode   string
}

// startCapture handles the captureChar command.
func (s *Session) startCapture(args map[string]any) error {
	var executeAfter bind.Spec
	if raw, ok := args["executeAfter"]; ok {
		spec, err := bind.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing executeAfter: %w", err)
		}
		executeAfter = spec
	}

	s.captured = ""
	s.capture = &captureSession{
		acceptAfter:  argInt(args, "acceptAfter", 1),
		executeAfter: executeAfter,
		returnMode:   s.modes.Current(),
	}
	s.modes.Enter(s.host.ID(), mode.Capture)
	return nil
}

// handleCaptureKey consumes one key while capture mode is active.
func (s *Session) handleCaptureKey(ev key.Event) error {
	cs := s.capture
	switch {
	case ev.Name == "escape":
		s.capture = nil
		s.captured = ""
		s.modes.Enter(s.host.ID(), cs.returnMode)
		return nil
	case ev.IsRune():
		s.captured += string(ev.Rune)
		if utf8.RuneCountInString(s.captured) < cs.acceptAfter {
			return nil
		}
		s.capture = nil
		s.modes.Enter(s.host.ID(), cs.returnMode)
		if cs.executeAfter == nil {
			return ErrMissingExecuteAfter
		}
		return s.execute(cs.executeAfter)
	default:
		return nil
	}
}

// abandonCapture drops an in-flight capture without running its
// follow-up.
func (s *Session) abandonCapture() {
	if s.capture == nil {
		return
	}
	s.capture = nil
	s.captured = ""
}
