package session

import (
	"unicode"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/expr"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/macro"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/mode"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/search"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/sentence"
)

// Options configures a new Session. Bindings is required; the other
// fields default to fresh instances. Modes and Recorder may be shared
// across sessions so that per-document mode persistence and macro
// registers survive editor switches.
type Options struct {
	Bindings  *bind.Table
	Evaluator expr.Evaluator
	Modes     *mode.Controller
	Recorder  *macro.Recorder
}

// Session is the modal state of one editor.
type Session struct {
	host     editor.Host
	table    *bind.Table
	eval     expr.Evaluator
	modes    *mode.Controller
	tracker  *sentence.Tracker
	recorder *macro.Recorder

	outer *resolver

	count    int
	captured string

	search  *searchSession
	capture *captureSession

	registers map[string]search.Query

	highlights search.Highlights

	waiting bool
	status  string
}

// New creates a session for the given host editor, starting in normal
// mode.
func New(host editor.Host, opts Options) *Session {
	table := opts.Bindings
	if table == nil {
		table = bind.NewTable()
	}
	eval := opts.Evaluator
	if eval == nil {
		eval = expr.NewLuaEvaluator()
	}
	modes := opts.Modes
	if modes == nil {
		modes = mode.NewController()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = macro.NewRecorder()
	}

	s := &Session{
		host:      host,
		table:     table,
		eval:      eval,
		modes:     modes,
		tracker:   sentence.NewTracker(),
		recorder:  recorder,
		registers: make(map[string]search.Query),
	}
	s.outer = newResolver(s, table)
	return s
}

// Activate restores the persisted mode for this session's document and
// abandons any in-progress key buffer or search, so that switching
// editors never leaks half-typed state between documents.
func (s *Session) Activate() {
	s.outer.reset()
	s.abandonSearch()
	s.abandonCapture()
	s.count = 0
	s.waiting = false
	s.modes.Restore(s.host.ID())
	s.updateStatus()
}

// HandleKey processes one key event to completion. Errors are
// recoverable: the key degrades to a no-op and a message is surfaced
// through the host.
func (s *Session) HandleKey(ev key.Event) error {
	s.tracker.ObserveKey()

	wasRecording := s.recorder.IsRecording()
	current := s.modes.Current()

	err := s.dispatchKey(ev, s.outer, true)

	if wasRecording && s.recorder.IsRecording() {
		s.recorder.Record(ev, current)
	}
	s.updateStatus()

	if err != nil {
		s.surface(err)
	}
	return err
}

// dispatchKey routes one key through the in-flight search or capture
// when one is active, or through the given resolver otherwise. The
// outer resolver feeds sentence tracking; nested resolvers do not.
func (s *Session) dispatchKey(ev key.Event, r *resolver, track bool) error {
	switch s.modes.Current() {
	case mode.Search:
		if s.search != nil {
			return s.handleSearchKey(ev)
		}
	case mode.Capture:
		if s.capture != nil {
			return s.handleCaptureKey(ev)
		}
	}

	effective := s.effectiveMode()

	if r.buffer.IsEmpty() && s.isCountDigit(ev, effective) {
		s.count = s.count*10 + int(ev.Rune-'0')
		return nil
	}

	if track {
		s.tracker.RecordKey(ev.String(), effective)
	}

	outcome, err := r.handleKey(ev, effective)

	if track {
		switch outcome {
		case outcomeExecuted:
			s.tracker.CommandDone()
		case outcomeFailed:
			s.tracker.CommandFailed()
		}
	}
	if outcome != outcomeWaiting {
		s.count = 0
	}
	s.waiting = outcome == outcomeWaiting
	return err
}

// isCountDigit reports whether the key extends the numeric count
// prefix: a digit with no binding of its own in the effective mode,
// and not a leading zero.
func (s *Session) isCountDigit(ev key.Event, effective string) bool {
	if effective == mode.Insert {
		return false
	}
	if !ev.IsRune() || !unicode.IsDigit(ev.Rune) {
		return false
	}
	if ev.Rune == '0' && s.count == 0 {
		return false
	}
	seq := key.NewSequenceFrom(ev)
	if _, ok := s.table.Lookup(effective, seq); ok {
		return false
	}
	return !s.table.HasPrefix(effective, seq)
}

// effectiveMode is the mode used for binding lookup, deriving visual
// from the flag or a non-empty selection.
func (s *Session) effectiveMode() string {
	return s.modes.Effective(editor.AnyNonEmpty(s.host.Selections()))
}

// NoteTextChanged is the host's text-changed signal. It is folded into
// sentence tracking at the next key event.
func (s *Session) NoteTextChanged() {
	s.tracker.NoteTextChanged()
}

// NoteSelectionChanged is the host's selection-changed signal.
// extended reports a genuine extension rather than a collapse.
func (s *Session) NoteSelectionChanged(extended bool) {
	s.tracker.NoteSelectionChanged(extended)
}

// Mode returns the stored mode name, for host-side key routing.
func (s *Session) Mode() string {
	return s.modes.Current()
}

// EffectiveMode returns the mode with visual derivation applied.
func (s *Session) EffectiveMode() string {
	return s.effectiveMode()
}

// Waiting reports whether a partial key sequence is buffered.
func (s *Session) Waiting() bool {
	return s.waiting
}

// Status returns the secondary status text: accumulated keys while
// waiting, the pattern while searching, captured text while capturing.
func (s *Session) Status() string {
	return s.status
}

// Highlights returns the match decorations computed by the most recent
// incremental search. Observational only.
func (s *Session) Highlights() search.Highlights {
	return s.highlights
}

// Tracker exposes the sentence history, mainly for tests and host
// status display.
func (s *Session) Tracker() *sentence.Tracker {
	return s.tracker
}

// Recorder exposes the shared macro recorder.
func (s *Session) Recorder() *macro.Recorder {
	return s.recorder
}

func (s *Session) updateStatus() {
	switch {
	case s.search != nil:
		s.status = "/" + s.search.query.Pattern
	case s.capture != nil:
		s.status = s.captured
	case s.waiting:
		s.status = s.outer.buffer.String()
	default:
		s.status = ""
	}
}

func (s *Session) surface(err error) {
	s.host.ShowMessage(err.Error())
}

// exprContext builds the read-only record visible to binding
// expressions.
func (s *Session) exprContext() expr.Context {
	sels := s.host.Selections()
	ctx := expr.Context{
		Count:     s.count,
		Mode:      s.modes.Current(),
		Captured:  s.captured,
		Selecting: s.modes.IsVisual(editor.AnyNonEmpty(sels)),
	}
	if len(sels) > 0 {
		primary := sels[0]
		ctx.Selection = editor.TextIn(s.host, primary.Range())
		ctx.Line = primary.Active.Line
	}
	return ctx
}
