package key

import "strings"

// Sequence represents a series of key events accumulated toward a binding.
// Examples: "d d" (delete line), "g g" (go to top).
type Sequence struct {
	// Events contains the key events in order.
	Events []Event
}

// NewSequence creates an empty key sequence.
func NewSequence() *Sequence {
	return &Sequence{
		Events: make([]Event, 0, 4), // Most sequences are short
	}
}

// NewSequenceFrom creates a sequence from the given events.
func NewSequenceFrom(events ...Event) *Sequence {
	return &Sequence{Events: events}
}

// Len returns the number of events in the sequence.
func (s *Sequence) Len() int {
	return len(s.Events)
}

// IsEmpty returns true if the sequence has no events.
func (s *Sequence) IsEmpty() bool {
	return len(s.Events) == 0
}

// Add appends an event to the sequence.
func (s *Sequence) Add(event Event) {
	s.Events = append(s.Events, event)
}

// Clear removes all events from the sequence.
func (s *Sequence) Clear() {
	s.Events = s.Events[:0]
}

// String returns the binding-table representation of the sequence.
// Characters concatenate directly; named keys use angle brackets.
func (s *Sequence) String() string {
	if len(s.Events) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, e := range s.Events {
		sb.WriteString(e.String())
	}
	return sb.String()
}

// Equals returns true if two sequences are identical.
func (s *Sequence) Equals(other *Sequence) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Events) != len(other.Events) {
		return false
	}
	for i, e := range s.Events {
		if !e.Equals(other.Events[i]) {
			return false
		}
	}
	return true
}

// HasPrefix returns true if this sequence starts with the given prefix.
func (s *Sequence) HasPrefix(prefix *Sequence) bool {
	if prefix == nil || prefix.IsEmpty() {
		return true
	}
	if len(prefix.Events) > len(s.Events) {
		return false
	}
	for i, e := range prefix.Events {
		if !e.Equals(s.Events[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the sequence.
func (s *Sequence) Clone() *Sequence {
	if s == nil {
		return nil
	}
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return &Sequence{Events: events}
}

// ParseSequence parses a key string into a Sequence.
func ParseSequence(s string) *Sequence {
	return NewSequenceFrom(ParseEvents(s)...)
}
