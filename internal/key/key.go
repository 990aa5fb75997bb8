// Package key models the key events delivered by the host editor's type
// hook and the sequences accumulated from them during binding resolution.
package key

import "strings"

// Event represents a single key press as delivered by the host.
// The host's type hook reports plain characters; control keys such as
// Escape arrive as named events.
type Event struct {
	// Rune is the character for printable key events.
	Rune rune

	// Name is set for non-printable keys (e.g., "escape", "enter",
	// "backspace"). When Name is non-empty, Rune is unused.
	Name string
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune) Event {
	return Event{Rune: r}
}

// NewNamedEvent creates a key event for a named control key.
func NewNamedEvent(name string) Event {
	return Event{Name: name}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Name == "" && e.Rune != 0
}

// String returns the canonical representation used in binding tables.
// Characters render as themselves; named keys as "<name>".
func (e Event) String() string {
	if e.Name != "" {
		return "<" + e.Name + ">"
	}
	return string(e.Rune)
}

// Equals returns true if two events represent the same key.
func (e Event) Equals(other Event) bool {
	return e.Rune == other.Rune && e.Name == other.Name
}

// ParseEvents parses a key string into individual events.
// Named keys use angle-bracket notation: "ab<escape>c" yields four events.
// An unmatched '<' is treated as a literal character.
func ParseEvents(s string) []Event {
	events := make([]Event, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '<' {
			end := strings.IndexByte(s[i:], '>')
			if end > 1 {
				events = append(events, NewNamedEvent(s[i+1:i+end]))
				i += end + 1
				continue
			}
		}
		r := []rune(s[i:])[0]
		events = append(events, NewRuneEvent(r))
		i += len(string(r))
	}
	return events
}
