package search

import (
	"fmt"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"
)

// Offset policies for cursor placement relative to match bounds.
const (
	OffsetInclusive = "inclusive"
	OffsetExclusive = "exclusive"
	OffsetStart     = "start"
	OffsetEnd       = "end"
)

// Query describes one search request.
type Query struct {
	// Pattern is the literal text or regular expression to find.
	Pattern string

	// Backwards scans toward the document start.
	Backwards bool

	// CaseSensitive disables case folding. Default false.
	CaseSensitive bool

	// Regex treats Pattern as a regular expression.
	Regex bool

	// WrapAround continues from the opposite document edge when the
	// scan reaches the end without a match. Default false.
	WrapAround bool

	// Offset selects the cursor placement policy. Empty means inclusive.
	Offset string

	// SelectTillMatch keeps the anchor at the origin active position and
	// extends the active end to the computed offset, growing a selection
	// instead of collapsing to a cursor.
	SelectTillMatch bool
}

// NormalizeOffset validates the offset policy, mapping "" to inclusive.
func NormalizeOffset(offset string) (string, error) {
	switch offset {
	case "":
		return OffsetInclusive, nil
	case OffsetInclusive, OffsetExclusive, OffsetStart, OffsetEnd:
		return offset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOffset, offset)
	}
}

// Find scans for the query from each origin selection independently and
// returns the per-selection results. Selections with no match are
// returned unchanged; found reports whether every origin landed on a
// match. Overlapping results across cursors are expected and are not
// deduplicated.
func Find(doc editor.Document, origins []editor.Selection, q Query) (results []editor.Selection, found bool, err error) {
	offset, err := NormalizeOffset(q.Offset)
	if err != nil {
		return origins, false, err
	}
	q.Offset = offset

	m, err := compileMatcher(q.Pattern, q.Regex, q.CaseSensitive)
	if err != nil {
		return origins, false, err
	}

	results = make([]editor.Selection, len(origins))
	found = true
	for i, origin := range origins {
		sel, ok := findOne(doc, origin, m, q)
		if !ok {
			sel = origin
			found = false
		}
		results[i] = sel
	}
	return results, found, nil
}

// findOne locates the nearest acceptable match for a single origin.
func findOne(doc editor.Document, origin editor.Selection, m *matcher, q Query) (editor.Selection, bool) {
	from := origin.Active
	ring := newLineRing(doc, from.Line, q.Backwards, q.WrapAround)

	firstLine := true
	for {
		line, ok := ring.next()
		if !ok {
			break
		}

		spans := m.spansIn(doc.Line(line))
		if q.Backwards {
			for i := len(spans) - 1; i >= 0; i-- {
				s := spans[i]
				// On the starting line, only consider matches strictly
				// before the cursor so repeated searches advance.
				if firstLine && line == from.Line && s.start >= from.Char {
					continue
				}
				if sel, ok := accept(origin, line, s, q); ok {
					return sel, true
				}
			}
		} else {
			for _, s := range spans {
				// Strictly advance past the current position.
				if firstLine && line == from.Line && s.start <= from.Char {
					continue
				}
				if sel, ok := accept(origin, line, s, q); ok {
					return sel, true
				}
			}
		}
		firstLine = false
	}
	return editor.Selection{}, false
}

// accept applies the offset policy and rejects candidates that collapse
// to the origin selection, so the scan keeps looking instead of getting
// stuck on the current match.
func accept(origin editor.Selection, line int, s span, q Query) (editor.Selection, bool) {
	sel := place(origin, line, s, q)
	if sel.Equal(origin) {
		return editor.Selection{}, false
	}
	return sel, true
}

// place computes the final selection for a match under the offset
// policy. Without selectTillMatch the selection collapses to the target
// position; with it, the anchor stays at the origin active position.
func place(origin editor.Selection, line int, s span, q Query) editor.Selection {
	target := editor.Position{Line: line, Char: s.start}
	switch q.Offset {
	case OffsetStart:
		target.Char = s.start
	case OffsetEnd:
		target.Char = s.end
	case OffsetInclusive:
		if q.Backwards {
			target.Char = s.start
		} else {
			target.Char = s.end - 1
			if target.Char < s.start {
				target.Char = s.start
			}
		}
	case OffsetExclusive:
		if q.Backwards {
			target.Char = s.start - 1
			if target.Char < 0 {
				target.Char = 0
			}
		} else {
			target.Char = s.end
		}
	}

	if q.SelectTillMatch {
		return editor.NewSelection(origin.Active, target)
	}
	return editor.NewCursor(target)
}

// Highlights is the decoration set computed for visible matches.
type Highlights struct {
	// Current are matches containing a cursor.
	Current []editor.Range
	// Other are the remaining visible matches.
	Other []editor.Range
}

// HighlightMatches collects every match within the visible line ranges
// and splits them into current and other sets. This pass is
// observational: it never moves cursors. The scan is always forward.
func HighlightMatches(doc editor.Document, visible []editor.Range, selections []editor.Selection, q Query) (Highlights, error) {
	var hl Highlights

	m, err := compileMatcher(q.Pattern, q.Regex, q.CaseSensitive)
	if err != nil {
		return hl, err
	}

	seen := make(map[int]bool)
	for _, vr := range visible {
		for line := vr.Start.Line; line <= vr.End.Line && line < doc.LineCount(); line++ {
			if seen[line] {
				continue
			}
			seen[line] = true
			for _, s := range m.spansIn(doc.Line(line)) {
				r := editor.Range{
					Start: editor.Position{Line: line, Char: s.start},
					End:   editor.Position{Line: line, Char: s.end},
				}
				if containsCursor(r, selections) {
					hl.Current = append(hl.Current, r)
				} else {
					hl.Other = append(hl.Other, r)
				}
			}
		}
	}
	return hl, nil
}

// containsCursor reports whether any selection's active position lies
// within the range (inclusive of both ends, since an inclusive-offset
// cursor sits on the match's last character).
func containsCursor(r editor.Range, selections []editor.Selection) bool {
	for _, sel := range selections {
		p := sel.Active
		if p.Line != r.Start.Line {
			continue
		}
		if p.Char >= r.Start.Char && p.Char <= r.End.Char {
			return true
		}
	}
	return false
}
