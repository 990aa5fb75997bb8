package editor

// Selection represents a range of selected text.
// Anchor is where the selection started; Active is the current cursor
// position (where typing occurs). When Anchor == Active, this represents
// a cursor with no selection. Selection is an immutable value type.
type Selection struct {
	Anchor Position
	Active Position
}

// NewSelection creates a selection from anchor to active.
func NewSelection(anchor, active Position) Selection {
	return Selection{Anchor: anchor, Active: active}
}

// NewCursor creates a selection representing just a cursor (no extent).
func NewCursor(p Position) Selection {
	return Selection{Anchor: p, Active: p}
}

// IsEmpty returns true if the selection has no extent (just a cursor).
func (s Selection) IsEmpty() bool {
	return s.Anchor.Equal(s.Active)
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Position {
	return Min(s.Anchor, s.Active)
}

// End returns the upper bound of the selection.
func (s Selection) End() Position {
	return Max(s.Anchor, s.Active)
}

// IsReversed returns true if the active end precedes the anchor.
func (s Selection) IsReversed() bool {
	return s.Active.Before(s.Anchor)
}

// Range returns the selection as a normalized range.
func (s Selection) Range() Range {
	return Range{Start: s.Start(), End: s.End()}
}

// Collapse returns a cursor selection at the given position.
func (s Selection) Collapse(p Position) Selection {
	return NewCursor(p)
}

// WithActive returns a copy with the active end moved, keeping the anchor.
func (s Selection) WithActive(p Position) Selection {
	s.Active = p
	return s
}

// Equal returns true if two selections have identical endpoints.
func (s Selection) Equal(other Selection) bool {
	return s.Anchor.Equal(other.Anchor) && s.Active.Equal(other.Active)
}

// AnyNonEmpty returns true if any selection in the list has extent.
func AnyNonEmpty(sels []Selection) bool {
	for _, s := range sels {
		if !s.IsEmpty() {
			return true
		}
	}
	return false
}
