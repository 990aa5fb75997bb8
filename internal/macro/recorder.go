// Package macro records key sequences into named registers for later
// replay.
package macro

import (
	"sync"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
)

// DefaultRegister is used when a macro command names no register.
const DefaultRegister = "default"

// Entry is one recorded keystroke together with the mode it was typed
// in, so replay can restore the mode before resolving the key.
type Entry struct {
	Event key.Event
	Mode  string
}

// Recorder captures key events into named registers. It is safe for
// concurrent use; registers are shared across editors.
type Recorder struct {
	mu         sync.Mutex
	recording  bool
	register   string
	entries    []Entry
	registers  map[string][]Entry
	lastPlayed string
}

// NewRecorder creates a recorder with empty registers.
func NewRecorder() *Recorder {
	return &Recorder{
		registers: make(map[string][]Entry),
	}
}

func normalize(register string) string {
	if register == "" {
		return DefaultRegister
	}
	return register
}

// Start begins recording into the named register. Starting while a
// recording is in progress discards the earlier recording.
func (r *Recorder) Start(register string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recording = true
	r.register = normalize(register)
	r.entries = nil
}

// Stop ends the current recording and stores it. Empty recordings
// leave the register untouched. Returns the recorded entries, or nil
// when no recording was in progress.
func (r *Recorder) Stop() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.recording {
		return nil
	}
	r.recording = false
	if len(r.entries) > 0 {
		saved := make([]Entry, len(r.entries))
		copy(saved, r.entries)
		r.registers[r.register] = saved
	}
	result := r.entries
	r.entries = nil
	return result
}

// Cancel ends the current recording without storing it.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	r.entries = nil
}

// IsRecording returns true while a recording is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// CurrentRegister returns the register being recorded, or "" when not
// recording.
func (r *Recorder) CurrentRegister() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		return r.register
	}
	return ""
}

// Record appends a keystroke to the recording in progress. It does
// nothing when not recording.
func (r *Recorder) Record(ev key.Event, mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recording {
		r.entries = append(r.entries, Entry{Event: ev, Mode: mode})
	}
}

// Get returns a copy of the macro stored in the register, or nil when
// the register is empty.
func (r *Recorder) Get(register string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.registers[normalize(register)]
	if len(entries) == 0 {
		return nil
	}
	result := make([]Entry, len(entries))
	copy(result, entries)
	return result
}

// Has returns true when the register holds a macro.
func (r *Recorder) Has(register string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.registers[normalize(register)]) > 0
}

// SetLastPlayed remembers the register just replayed.
func (r *Recorder) SetLastPlayed(register string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastPlayed = normalize(register)
}

// LastPlayed returns the most recently replayed register, or "" when
// nothing has been replayed yet.
func (r *Recorder) LastPlayed() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPlayed
}

// Registers lists all registers that hold macros.
func (r *Recorder) Registers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]string, 0, len(r.registers))
	for reg, entries := range r.registers {
		if len(entries) > 0 {
			result = append(result, reg)
		}
	}
	return result
}
