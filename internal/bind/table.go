package bind

import (
	"strings"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
)

// ScopeSeparator splits the optional mode-set prefix from the key string
// in a binding entry, e.g. "normal|visual::gg".
const ScopeSeparator = "::"

// ModeInsert is the one built-in mode excluded from the default mode set.
const ModeInsert = "insert"

// entry is a bound key sequence within one scope.
type entry struct {
	seq  *key.Sequence
	spec Spec
}

// scope holds the bindings for one mode (or the default mode set).
type scope struct {
	exact   map[string]Spec
	entries []entry
}

func newScope() *scope {
	return &scope{exact: make(map[string]Spec)}
}

func (s *scope) bind(seq *key.Sequence, spec Spec) {
	canon := seq.String()
	if _, exists := s.exact[canon]; exists {
		// Later bindings win, mirroring configuration override order.
		for i := range s.entries {
			if s.entries[i].seq.Equals(seq) {
				s.entries[i].spec = spec
				break
			}
		}
	} else {
		s.entries = append(s.entries, entry{seq: seq, spec: spec})
	}
	s.exact[canon] = spec
}

// hasStrictPrefix reports whether any binding in the scope is strictly
// longer than seq and starts with it.
func (s *scope) hasStrictPrefix(seq *key.Sequence) bool {
	for _, e := range s.entries {
		if e.seq.Len() > seq.Len() && e.seq.HasPrefix(seq) {
			return true
		}
	}
	return false
}

// Table is the binding table consulted during key resolution.
// Bindings with an explicit mode-set prefix live in per-mode scopes;
// unprefixed bindings apply to the default mode set, which is every mode
// except insert.
type Table struct {
	modal    map[string]*scope
	defaults *scope
}

// NewTable creates an empty binding table.
func NewTable() *Table {
	return &Table{
		modal:    make(map[string]*scope),
		defaults: newScope(),
	}
}

// Bind adds a binding for the given key string. An empty mode list binds
// into the default mode set.
func (t *Table) Bind(modes []string, keys string, spec Spec) {
	seq := key.ParseSequence(keys)
	if seq.IsEmpty() {
		return
	}
	if len(modes) == 0 {
		t.defaults.bind(seq, spec)
		return
	}
	for _, m := range modes {
		sc, ok := t.modal[m]
		if !ok {
			sc = newScope()
			t.modal[m] = sc
		}
		sc.bind(seq.Clone(), spec)
	}
}

// BindEntry parses a full binding entry key ("mode|mode::keys" or plain
// "keys") and adds the binding.
func (t *Table) BindEntry(entryKey string, spec Spec) {
	modes, keys := SplitScope(entryKey)
	t.Bind(modes, keys, spec)
}

// SplitScope splits a binding entry key into its mode set and key string.
func SplitScope(entryKey string) (modes []string, keys string) {
	idx := strings.Index(entryKey, ScopeSeparator)
	if idx < 0 {
		return nil, entryKey
	}
	for _, m := range strings.Split(entryKey[:idx], "|") {
		if m = strings.TrimSpace(m); m != "" {
			modes = append(modes, m)
		}
	}
	return modes, entryKey[idx+len(ScopeSeparator):]
}

// Lookup resolves a key sequence in the given mode. Lookup honors two
// tiers in priority order: the exact mode scope, then the default mode
// set (skipped in insert mode).
func (t *Table) Lookup(mode string, seq *key.Sequence) (Spec, bool) {
	canon := seq.String()
	if sc, ok := t.modal[mode]; ok {
		if spec, ok := sc.exact[canon]; ok {
			return spec, true
		}
	}
	if mode != ModeInsert {
		if spec, ok := t.defaults.exact[canon]; ok {
			return spec, true
		}
	}
	return nil, false
}

// HasPrefix reports whether some binding visible in the given mode is
// strictly longer than seq and has seq as a prefix. This is the third
// lookup tier: it decides waiting versus failure.
func (t *Table) HasPrefix(mode string, seq *key.Sequence) bool {
	if sc, ok := t.modal[mode]; ok && sc.hasStrictPrefix(seq) {
		return true
	}
	if mode != ModeInsert && t.defaults.hasStrictPrefix(seq) {
		return true
	}
	return false
}

// Merge returns a new table with override bindings layered over this
// table. Nested resolution contexts use it so captured keystrokes can
// carry a local binding set without disturbing the outer table.
func (t *Table) Merge(overrides *Table) *Table {
	merged := NewTable()
	t.copyInto(merged)
	if overrides != nil {
		overrides.copyInto(merged)
	}
	return merged
}

func (t *Table) copyInto(dst *Table) {
	for _, e := range t.defaults.entries {
		dst.defaults.bind(e.seq.Clone(), e.spec)
	}
	for mode, sc := range t.modal {
		dstScope, ok := dst.modal[mode]
		if !ok {
			dstScope = newScope()
			dst.modal[mode] = dstScope
		}
		for _, e := range sc.entries {
			dstScope.bind(e.seq.Clone(), e.spec)
		}
	}
}

// Len returns the total number of bindings in the table.
func (t *Table) Len() int {
	n := len(t.defaults.entries)
	for _, sc := range t.modal {
		n += len(sc.entries)
	}
	return n
}
