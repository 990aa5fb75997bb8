package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/mode"
)

func newTestSession(t *testing.T, text string, bindings map[string]any) (*Session, *editor.Memory) {
	t.Helper()
	table := bind.NewTable()
	for entry, raw := range bindings {
		spec, err := bind.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", entry, err)
		}
		table.BindEntry(entry, spec)
	}
	host := editor.NewMemory(text)
	return New(host, Options{Bindings: table}), host
}

func feed(t *testing.T, s *Session, keys string) {
	t.Helper()
	for _, ev := range key.ParseEvents(keys) {
		if err := s.HandleKey(ev); err != nil {
			t.Fatalf("HandleKey(%s) error: %v", ev, err)
		}
	}
}

func TestWaitingThenExecuted(t *testing.T) {
	s, h := newTestSession(t, "one\ntwo\nthree", map[string]any{
		"normal::dd": "deleteLine",
	})

	feed(t, s, "d")
	if !s.Waiting() {
		t.Fatal("Waiting() = false after prefix key")
	}
	if got := s.Status(); got != "d" {
		t.Errorf("Status() = %q, want %q", got, "d")
	}

	feed(t, s, "d")
	if s.Waiting() {
		t.Error("Waiting() = true after completed sequence")
	}
	if got := h.Text(); got != "two\nthree" {
		t.Errorf("Text() = %q, want %q", got, "two\nthree")
	}
	if got := s.Status(); got != "" {
		t.Errorf("Status() = %q, want empty after execution", got)
	}
}

func TestUnboundKeyFailsSilently(t *testing.T) {
	s, _ := newTestSession(t, "abc", map[string]any{
		"normal::dd": "deleteLine",
	})

	err := s.HandleKey(key.NewRuneEvent('z'))
	if !errors.Is(err, ErrUnboundKeys) {
		t.Fatalf("HandleKey(z) error = %v, want ErrUnboundKeys", err)
	}
	if s.Waiting() {
		t.Error("Waiting() = true after unbound key")
	}
	if got := s.Status(); got != "" {
		t.Errorf("Status() = %q, want empty buffer after failure", got)
	}

	// The table must still work after the reset.
	feed(t, s, "dd")
}

func TestMalformedCommandSurfaced(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::m": map[string]any{"args": map[string]any{"x": 1}},
	})

	err := s.HandleKey(key.NewRuneEvent('m'))
	if !errors.Is(err, bind.ErrMalformedCommand) {
		t.Fatalf("HandleKey(m) error = %v, want ErrMalformedCommand", err)
	}
	if h.LastMessage() == "" {
		t.Error("no message surfaced for malformed binding")
	}
	if got := h.Text(); got != "abc" {
		t.Errorf("Text() = %q, document must be untouched", got)
	}
}

func TestCountPrefixRepeatsCommand(t *testing.T) {
	s, h := newTestSession(t, "abcdef", map[string]any{
		"normal::x": map[string]any{
			"command": "deleteRight",
			"repeat":  "count == 0 and 1 or count",
		},
	})

	feed(t, s, "3x")
	if got := h.Text(); got != "def" {
		t.Errorf("Text() = %q, want %q", got, "def")
	}

	// Count is consumed by the execution.
	feed(t, s, "x")
	if got := h.Text(); got != "ef" {
		t.Errorf("Text() = %q, want %q after single repeat", got, "ef")
	}
}

func TestSequenceBinding(t *testing.T) {
	s, h := newTestSession(t, "abcdef", map[string]any{
		"normal::o": []any{"cursorRight", "cursorRight"},
	})

	feed(t, s, "o")
	sels := h.Selections()
	want := editor.Position{Line: 0, Char: 2}
	if !sels[0].Active.Equal(want) {
		t.Errorf("cursor = %+v, want %+v", sels[0].Active, want)
	}
}

func TestConditionalBinding(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::c": map[string]any{
			"if":   "selecting",
			"then": "deleteSelection",
			"else": "deleteRight",
		},
	})

	feed(t, s, "c")
	if got := h.Text(); got != "bc" {
		t.Errorf("Text() = %q, want %q via else branch", got, "bc")
	}
}

func TestVisualModeBindings(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::v": "toggleSelection",
		"visual::l": "cursorRightSelect",
		"visual::d": "deleteSelection",
	})

	feed(t, s, "v")
	if got := s.EffectiveMode(); got != mode.Visual {
		t.Fatalf("EffectiveMode() = %q, want %q", got, mode.Visual)
	}

	feed(t, s, "l")
	sels := h.Selections()
	if sels[0].IsEmpty() {
		t.Fatal("selection is empty after visual motion")
	}

	feed(t, s, "d")
	if got := h.Text(); got != "bc" {
		t.Errorf("Text() = %q, want %q", got, "bc")
	}
}

func TestToggleSelectionOffCollapses(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::v": "toggleSelection",
		"visual::v": "toggleSelection",
		"visual::l": "cursorRightSelect",
	})

	feed(t, s, "vlv")
	if got := s.EffectiveMode(); got != mode.Normal {
		t.Errorf("EffectiveMode() = %q, want %q", got, mode.Normal)
	}
	if sels := h.Selections(); !sels[0].IsEmpty() {
		t.Errorf("selection = %+v, want collapsed", sels[0])
	}
}

func TestInteractiveSearch(t *testing.T) {
	s, h := newTestSession(t, "Foo bar foo", map[string]any{
		"normal::/": "search",
	})

	feed(t, s, "/")
	if got := s.Mode(); got != mode.Search {
		t.Fatalf("Mode() = %q, want %q", got, mode.Search)
	}

	feed(t, s, "foo")
	if got := s.Status(); got != "/foo" {
		t.Errorf("Status() = %q, want %q", got, "/foo")
	}
	// Case-insensitive by default; the match at 0 is skipped because it
	// does not advance past the cursor, landing on the second occurrence.
	sels := h.Selections()
	want := editor.Position{Line: 0, Char: 10}
	if !sels[0].Active.Equal(want) {
		t.Errorf("cursor = %+v, want %+v", sels[0].Active, want)
	}

	feed(t, s, "<enter>")
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q after accept", got, mode.Normal)
	}
}

func TestSearchCancelRestoresOrigin(t *testing.T) {
	s, h := newTestSession(t, "Foo bar foo", map[string]any{
		"normal::/": "search",
	})

	origin := h.Selections()[0]
	feed(t, s, "/foo<escape>")

	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q after cancel", got, mode.Normal)
	}
	if got := h.Selections()[0]; !got.Equal(origin) {
		t.Errorf("selection = %+v, want origin %+v restored", got, origin)
	}
}

func TestSearchBackspaceReruns(t *testing.T) {
	s, h := newTestSession(t, "ab abc", map[string]any{
		"normal::/": "search",
	})

	feed(t, s, "/abc<backspace>")
	if got := s.Status(); got != "/ab" {
		t.Errorf("Status() = %q, want %q", got, "/ab")
	}
	// "ab" matches at 3 (the occurrence at 0 does not advance).
	want := editor.Position{Line: 0, Char: 4}
	if got := h.Selections()[0].Active; !got.Equal(want) {
		t.Errorf("cursor = %+v, want %+v", got, want)
	}
}

func TestSearchNoWrapKeepsOrigin(t *testing.T) {
	s, h := newTestSession(t, "foo bar", map[string]any{
		"normal::/": "search",
	})

	origin := h.Selections()[0]
	feed(t, s, "/zap")

	if got := h.Selections()[0]; !got.Equal(origin) {
		t.Errorf("selection = %+v, want origin %+v", got, origin)
	}
	if got := h.LastMessage(); got != "Pattern not found" {
		t.Errorf("LastMessage() = %q, want %q", got, "Pattern not found")
	}
}

func TestSearchAcceptAfter(t *testing.T) {
	s, h := newTestSession(t, "hello world", map[string]any{
		"normal::f": map[string]any{
			"command": "search",
			"args":    map[string]any{"acceptAfter": 1},
		},
	})

	feed(t, s, "fw")
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q after auto-accept", got, mode.Normal)
	}
	want := editor.Position{Line: 0, Char: 6}
	if got := h.Selections()[0].Active; !got.Equal(want) {
		t.Errorf("cursor = %+v, want %+v", got, want)
	}
}

func TestNextAndPreviousMatch(t *testing.T) {
	s, h := newTestSession(t, "foo bar foo baz foo", map[string]any{
		"normal::/": map[string]any{
			"command": "search",
			"args":    map[string]any{"wrapAround": true},
		},
		"normal::n": "nextMatch",
		"normal::N": "previousMatch",
	})

	feed(t, s, "/foo<enter>")
	first := h.Selections()[0].Active
	if first.Char != 10 {
		t.Fatalf("cursor char = %d, want 10 after search", first.Char)
	}

	feed(t, s, "n")
	if got := h.Selections()[0].Active.Char; got != 18 {
		t.Errorf("cursor char = %d, want 18 after nextMatch", got)
	}

	// Backward from char 18 the nearest match starting strictly before
	// the cursor begins at 16.
	feed(t, s, "N")
	if got := h.Selections()[0].Active.Char; got != 16 {
		t.Errorf("cursor char = %d, want 16 after previousMatch", got)
	}
}

func TestNextMatchWithoutHistory(t *testing.T) {
	s, _ := newTestSession(t, "abc", map[string]any{
		"normal::n": "nextMatch",
	})

	err := s.HandleKey(key.NewRuneEvent('n'))
	if !errors.Is(err, ErrNoSearchHistory) {
		t.Errorf("HandleKey(n) error = %v, want ErrNoSearchHistory", err)
	}
}

func TestSearchWithTextArgRunsImmediately(t *testing.T) {
	s, h := newTestSession(t, "one two three", map[string]any{
		"normal::t": map[string]any{
			"command": "search",
			"args":    map[string]any{"text": "two"},
		},
	})

	feed(t, s, "t")
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q (no interactive session)", got, mode.Normal)
	}
	want := editor.Position{Line: 0, Char: 6}
	if got := h.Selections()[0].Active; !got.Equal(want) {
		t.Errorf("cursor = %+v, want %+v", got, want)
	}
}

func TestCaptureCharRunsExecuteAfter(t *testing.T) {
	s, h := newTestSession(t, "hello world", map[string]any{
		"normal::f": map[string]any{
			"command": "captureChar",
			"args": map[string]any{
				"acceptAfter": 1,
				"executeAfter": map[string]any{
					"command":      "search",
					"computedArgs": map[string]any{"text": "captured"},
				},
			},
		},
	})

	feed(t, s, "fw")
	want := editor.Position{Line: 0, Char: 6}
	if got := h.Selections()[0].Active; !got.Equal(want) {
		t.Errorf("cursor = %+v, want %+v", got, want)
	}
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q after capture", got, mode.Normal)
	}
}

func TestCaptureKeysStayOutOfWordTracking(t *testing.T) {
	s, _ := newTestSession(t, "hello world", map[string]any{
		"normal::f": map[string]any{
			"command": "captureChar",
			"args": map[string]any{
				"acceptAfter": 1,
				"executeAfter": map[string]any{
					"command":      "search",
					"computedArgs": map[string]any{"text": "captured"},
				},
			},
		},
	})

	feed(t, s, "fw")
	// The captured keystroke resolved in a nested context; it must not
	// surface in the outer word history.
	last := s.Tracker().LastWord()
	if strings.Contains(last.Keys, "w") {
		t.Errorf("LastWord().Keys = %q, captured key leaked into word tracking", last.Keys)
	}
	if cur := s.Tracker().CurrentWord(); cur.Keys != "" {
		t.Errorf("CurrentWord().Keys = %q, want empty", cur.Keys)
	}
}

func TestCaptureWithoutExecuteAfter(t *testing.T) {
	s, _ := newTestSession(t, "abc", map[string]any{
		"normal::f": map[string]any{"command": "captureChar"},
	})

	feed(t, s, "f")
	err := s.HandleKey(key.NewRuneEvent('x'))
	if !errors.Is(err, ErrMissingExecuteAfter) {
		t.Fatalf("HandleKey(x) error = %v, want ErrMissingExecuteAfter", err)
	}
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want pre-capture mode restored", got)
	}
}

func TestTypeKeysIsolation(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::t": map[string]any{
			"command": "typeKeys",
			"args":    map[string]any{"keys": "x"},
		},
		"normal::x": "deleteRight",
	})

	feed(t, s, "t")
	if got := h.Text(); got != "bc" {
		t.Errorf("Text() = %q, want %q", got, "bc")
	}
	// The injected key resolved in a nested context and must not leak
	// into the outer word history.
	if got := s.Tracker().LastWord().Keys; got != "t" {
		t.Errorf("LastWord().Keys = %q, want %q", got, "t")
	}
}

func TestTypeKeysLocalBindings(t *testing.T) {
	s, h := newTestSession(t, "abcdef", map[string]any{
		"normal::t": map[string]any{
			"command": "typeKeys",
			"args": map[string]any{
				"keys": "x",
				"bindings": map[string]any{
					"normal::x": "deleteRight",
				},
			},
		},
		"normal::x": "cursorRight",
	})

	// The local binding wins inside the injection.
	feed(t, s, "t")
	if got := h.Text(); got != "bcdef" {
		t.Errorf("Text() = %q, want %q after injected override", got, "bcdef")
	}

	// The outer table is untouched afterwards.
	feed(t, s, "x")
	if got := h.Text(); got != "bcdef" {
		t.Errorf("Text() = %q, want unchanged text after live x", got)
	}
	if got := h.Selections()[0].Active.Char; got != 1 {
		t.Errorf("Active.Char = %d, want 1 from the outer binding", got)
	}
}

func TestRepeatLastChange(t *testing.T) {
	s, h := newTestSession(t, "abcdef", map[string]any{
		"normal::x": "deleteRight",
		"normal::.": "repeatLastChange",
	})

	feed(t, s, "x")
	s.NoteTextChanged()

	feed(t, s, ".")
	s.NoteTextChanged()
	if got := h.Text(); got != "cdef" {
		t.Fatalf("Text() = %q, want %q after first repeat", got, "cdef")
	}

	// Repeating again replays the same verb, not the repeat key itself.
	feed(t, s, ".")
	if got := h.Text(); got != "def" {
		t.Errorf("Text() = %q, want %q after second repeat", got, "def")
	}
}

func TestRepeatWithNothingRecorded(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::.": "repeatLastChange",
	})

	feed(t, s, ".")
	if got := h.Text(); got != "abc" {
		t.Errorf("Text() = %q, want untouched document", got)
	}
	if !strings.Contains(h.LastMessage(), "Nothing to repeat") {
		t.Errorf("LastMessage() = %q, want a nothing-to-repeat notice", h.LastMessage())
	}
}

func TestMacroRecordAndReplay(t *testing.T) {
	s, h := newTestSession(t, "abcdef", map[string]any{
		"normal::q": map[string]any{
			"command": "startRecordingMacro",
			"args":    map[string]any{"register": "a"},
		},
		"normal::Q": "stopRecordingMacro",
		"normal::@": map[string]any{
			"command": "replayMacro",
			"args":    map[string]any{"register": "a"},
		},
		"normal::x": "deleteRight",
	})

	feed(t, s, "qxQ")
	if got := h.Text(); got != "bcdef" {
		t.Fatalf("Text() = %q, want %q after recording", got, "bcdef")
	}
	if s.Recorder().IsRecording() {
		t.Fatal("IsRecording() = true after stop")
	}

	feed(t, s, "@")
	if got := h.Text(); got != "cdef" {
		t.Errorf("Text() = %q, want %q after replay", got, "cdef")
	}

	// The stop key must not have been recorded into the register.
	entries := s.Recorder().Get("a")
	if len(entries) != 1 || entries[0].Event.Rune != 'x' {
		t.Errorf("register a = %+v, want exactly the x keystroke", entries)
	}
}

func TestMacroReplayUsesRecordedMode(t *testing.T) {
	s, h := newTestSession(t, "abcdef", map[string]any{
		"normal::q": map[string]any{
			"command": "startRecordingMacro",
			"args":    map[string]any{"register": "a"},
		},
		"normal::Q": "stopRecordingMacro",
		"normal::p": map[string]any{
			"command": "enterMode",
			"args":    map[string]any{"mode": "pick"},
		},
		"normal::x": "deleteRight",
		"pick::x":   "cursorRight",
		"pick::@": map[string]any{
			"command": "replayMacro",
			"args":    map[string]any{"register": "a"},
		},
	})

	feed(t, s, "qxQ")
	if got := h.Text(); got != "bcdef" {
		t.Fatalf("Text() = %q, want %q after recording", got, "bcdef")
	}

	// x was recorded in normal mode; replaying from pick mode must
	// resolve it there too, not against pick's cursorRight binding.
	feed(t, s, "p@")
	if got := h.Text(); got != "cdef" {
		t.Errorf("Text() = %q, want %q after replay", got, "cdef")
	}
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q where the macro ended", got, mode.Normal)
	}
}

func TestSelectBetweenCommand(t *testing.T) {
	s, h := newTestSession(t, "call(arg1, arg2)", map[string]any{
		"normal::b": map[string]any{
			"command": "selectBetween",
			"args":    map[string]any{"from": "(", "to": ")"},
		},
	})
	h.SetSelections([]editor.Selection{editor.NewCursor(editor.Position{Line: 0, Char: 12})})

	feed(t, s, "b")
	sel := h.Selections()[0]
	if got := editor.TextIn(h, sel.Range()); got != "arg1, arg2" {
		t.Errorf("selected text = %q, want %q", got, "arg1, arg2")
	}
}

func TestActivateClearsTransientState(t *testing.T) {
	s, _ := newTestSession(t, "one\ntwo", map[string]any{
		"normal::dd": "deleteLine",
	})

	feed(t, s, "d")
	if !s.Waiting() {
		t.Fatal("Waiting() = false after prefix key")
	}

	s.Activate()
	if s.Waiting() {
		t.Error("Waiting() = true after Activate")
	}
	if got := s.Status(); got != "" {
		t.Errorf("Status() = %q, want empty after Activate", got)
	}
	if got := s.Mode(); got != mode.Normal {
		t.Errorf("Mode() = %q, want %q restored", got, mode.Normal)
	}
}

func TestEnterInsertExcludedFromDefaults(t *testing.T) {
	s, h := newTestSession(t, "abc", map[string]any{
		"normal::i": "enterInsert",
		"x":         "deleteRight",
	})

	feed(t, s, "i")
	if got := s.Mode(); got != mode.Insert {
		t.Fatalf("Mode() = %q, want %q", got, mode.Insert)
	}

	// Default-set bindings do not apply in insert mode.
	err := s.HandleKey(key.NewRuneEvent('x'))
	if !errors.Is(err, ErrUnboundKeys) {
		t.Errorf("HandleKey(x) error = %v, want ErrUnboundKeys in insert mode", err)
	}
	if got := h.Text(); got != "abc" {
		t.Errorf("Text() = %q, want untouched", got)
	}
}
