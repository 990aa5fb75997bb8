// Package editor defines the host editor surface consumed by the modal
// core: document text access, the multi-cursor selection list, edit and
// reveal requests. It also provides an in-memory implementation used by
// tests and the demo host.
package editor

// Position identifies a location in a document by line and character.
// Both are zero-based; Char counts runes within the line.
type Position struct {
	Line int
	Char int
}

// Before returns true if p is strictly before other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Char < other.Char
}

// After returns true if p is strictly after other in document order.
func (p Position) After(other Position) bool {
	return other.Before(p)
}

// Equal returns true if two positions are identical.
func (p Position) Equal(other Position) bool {
	return p.Line == other.Line && p.Char == other.Char
}

// Min returns the earlier of two positions.
func Min(a, b Position) Position {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of two positions.
func Max(a, b Position) Position {
	if a.Before(b) {
		return b
	}
	return a
}

// Range is a span of text between two positions, Start <= End.
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a range, normalizing the endpoint order.
func NewRange(a, b Position) Range {
	if b.Before(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsEmpty returns true if the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start.Equal(r.End)
}

// Contains returns true if the position lies within the range
// (inclusive of Start, exclusive of End).
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && p.Before(r.End)
}
