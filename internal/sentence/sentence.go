// Package sentence records what the user just did in repeatable form.
//
// A Word is the keys (or direct command) behind the most recent command
// execution. A Sentence pairs a selection-producing Word (the noun) with
// a change-producing Word (the verb), giving Kakoune-style repeat
// semantics: "repeat the last change" replays the verb, "repeat the last
// selection" replays the noun.
//
// Text-changed and selection-changed signals arrive asynchronously from
// the host; the tracker folds them into the next key event rather than
// acting on them directly, and the host's serialized delivery keeps the
// bookkeeping single-threaded.
package sentence

import "github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"

// Word is a repeatable unit: either a key sequence with the mode it was
// typed in, or a direct command invocation.
type Word struct {
	// Keys is the recorded key string for keyboard-driven words.
	Keys string

	// Mode is the mode the keys were typed in.
	Mode string

	// Spec is set for programmatic invocations instead of Keys.
	Spec bind.Spec
}

// IsCommand returns true for direct command invocations.
func (w Word) IsCommand() bool {
	return w.Spec != nil
}

// IsEmpty returns true when the word records nothing.
func (w Word) IsEmpty() bool {
	return w.Keys == "" && w.Spec == nil
}

// ClearSelections is the Word seeded as a fresh pending noun: repeating
// it collapses the selection before the verb runs again.
func ClearSelections() Word {
	return Word{Spec: bind.Single{Command: "cancelSelection"}}
}

// Sentence is a (noun, verb) pair of Words.
type Sentence struct {
	Noun Word
	Verb Word
}

// Tracker maintains the current and last Words and the pending and last
// Sentences for one editor session.
type Tracker struct {
	current Word
	last    Word
	pending Sentence
	done    Sentence

	// guard suppresses all bookkeeping while a repeat or macro replay
	// is executing. It is a depth counter rather than a boolean so a
	// repeated verb that itself triggers a repeat nests correctly.
	guard int

	suppress    bool
	textChanged bool
	selChanged  bool
	selExtended bool
}

// NewTracker creates an empty tracker with a clear-selections noun
// pending.
func NewTracker() *Tracker {
	return &Tracker{
		pending: Sentence{Noun: ClearSelections()},
	}
}

// Guarded runs fn with the reentrancy guard held: signals and key
// recording are ignored so replayed keys are not re-accounted.
func (t *Tracker) Guarded(fn func()) {
	t.guard++
	defer func() { t.guard-- }()
	fn()
}

// IsGuarded returns true while a guarded replay is executing.
func (t *Tracker) IsGuarded() bool {
	return t.guard > 0
}

// NoteTextChanged records that the document changed since the last key.
// A pending suppress (from SuppressNextChange) consumes the signal.
func (t *Tracker) NoteTextChanged() {
	if t.guard > 0 {
		return
	}
	if t.suppress {
		t.suppress = false
		return
	}
	t.textChanged = true
}

// NoteSelectionChanged records a selection change since the last key.
// extended reports whether the change was a genuine extension rather
// than a collapse or plain cursor motion.
func (t *Tracker) NoteSelectionChanged(extended bool) {
	if t.guard > 0 {
		return
	}
	t.selChanged = true
	t.selExtended = extended
}

// SuppressNextChange marks the upcoming text change as not repeatable
// (commands like undo must not become verbs). The suppress covers only
// the current tick: if no change signal arrives before the next
// observed key, it expires rather than swallowing a later edit.
func (t *Tracker) SuppressNextChange() {
	if t.guard > 0 {
		return
	}
	t.suppress = true
}

// MarkChanged treats the last command as a change even though it did
// not mutate the buffer (commands with externally visible effects).
func (t *Tracker) MarkChanged() {
	if t.guard > 0 {
		return
	}
	t.suppress = false
	t.textChanged = true
}

// ObserveKey folds accumulated signals into the sentence state. It must
// run once at the start of each key event, before the key is recorded.
// A text change always finalizes the pending sentence before a
// selection change is considered on the same tick.
func (t *Tracker) ObserveKey() {
	if t.guard > 0 {
		return
	}
	if t.textChanged {
		t.done = Sentence{Noun: t.pending.Noun, Verb: t.last}
		t.pending.Noun = ClearSelections()
	} else if t.selChanged {
		if t.selExtended && !t.last.IsEmpty() {
			t.pending.Noun = t.last
		} else {
			t.pending.Noun = ClearSelections()
		}
	}
	t.textChanged = false
	t.selChanged = false
	t.selExtended = false
	// An unconsumed suppress belongs to the previous tick.
	t.suppress = false
}

// RecordKey appends a key to the word in progress.
func (t *Tracker) RecordKey(keys string, mode string) {
	if t.guard > 0 {
		return
	}
	if t.current.Keys == "" {
		t.current.Mode = mode
	}
	t.current.Keys += keys
	t.current.Spec = nil
}

// CommandDone promotes the word in progress to the last word. Call it
// when a key sequence resolved and its command executed.
func (t *Tracker) CommandDone() {
	if t.guard > 0 {
		return
	}
	if !t.current.IsEmpty() {
		t.last = t.current
	}
	t.current = Word{}
}

// CommandFailed discards the word in progress without promoting it.
func (t *Tracker) CommandFailed() {
	if t.guard > 0 {
		return
	}
	t.current = Word{}
}

// RecordCommand promotes a direct command invocation to the last word.
func (t *Tracker) RecordCommand(spec bind.Spec, mode string) {
	if t.guard > 0 {
		return
	}
	t.last = Word{Spec: spec, Mode: mode}
	t.current = Word{}
}

// LastWord returns the most recently completed word.
func (t *Tracker) LastWord() Word {
	return t.last
}

// CurrentWord returns the word in progress.
func (t *Tracker) CurrentWord() Word {
	return t.current
}

// LastSentence returns the most recently finalized sentence.
func (t *Tracker) LastSentence() Sentence {
	return t.done
}

// LastChange returns the verb of the last sentence.
func (t *Tracker) LastChange() Word {
	return t.done.Verb
}

// LastUsedSelection returns the noun of the last sentence.
func (t *Tracker) LastUsedSelection() Word {
	return t.done.Noun
}
