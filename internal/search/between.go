package search

import "github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"

// Between configures a delimiter selection request.
type Between struct {
	// From is the left delimiter pattern. Empty means the left bound of
	// the current selection is kept.
	From string

	// To is the right delimiter pattern. Empty means the right bound of
	// the current selection is kept.
	To string

	// Regex treats From and To as regular expressions.
	Regex bool

	// Inclusive folds the delimiter text into the resulting range.
	Inclusive bool

	// CaseSensitive disables case folding.
	CaseSensitive bool

	// DocScope scans the whole document instead of the current line.
	DocScope bool
}

// SelectBetween grows the selection to the nearest enclosing delimiters.
// The left delimiter is the nearest occurrence of From scanning backward
// from the selection's low bound; the right delimiter is the nearest
// occurrence of To scanning forward from the high bound. A missing
// delimiter falls back to the scope boundary. The result keeps the
// original selection's direction. With neither From nor To the selection
// is returned unchanged.
func SelectBetween(doc editor.Document, sel editor.Selection, opts Between) (editor.Selection, error) {
	if opts.From == "" && opts.To == "" {
		return sel, nil
	}

	low := sel.Start()
	high := sel.End()

	start := low
	end := high

	if opts.From != "" {
		m, err := compileMatcher(opts.From, opts.Regex, opts.CaseSensitive)
		if err != nil {
			return sel, err
		}
		start = scanLeft(doc, low, m, opts)
	}
	if opts.To != "" {
		m, err := compileMatcher(opts.To, opts.Regex, opts.CaseSensitive)
		if err != nil {
			return sel, err
		}
		end = scanRight(doc, high, m, opts)
	}

	if sel.IsReversed() {
		return editor.NewSelection(end, start), nil
	}
	return editor.NewSelection(start, end), nil
}

// scanLeft finds the nearest left delimiter at or before the low bound.
// Forward regex search has no last-match primitive, so each line's
// matches are iterated in full and the rightmost valid one wins.
func scanLeft(doc editor.Document, low editor.Position, m *matcher, opts Between) editor.Position {
	scopeLine := low.Line
	if opts.DocScope {
		scopeLine = 0
	}

	for line := low.Line; line >= scopeLine; line-- {
		spans := m.spansIn(doc.Line(line))
		for i := len(spans) - 1; i >= 0; i-- {
			s := spans[i]
			if line == low.Line && s.end > low.Char {
				continue
			}
			char := s.end
			if opts.Inclusive {
				char = s.start
			}
			return editor.Position{Line: line, Char: char}
		}
	}
	return editor.Position{Line: scopeLine, Char: 0}
}

// scanRight finds the nearest right delimiter at or after the high
// bound. Forward search is already nearest-first, so the first valid
// match wins.
func scanRight(doc editor.Document, high editor.Position, m *matcher, opts Between) editor.Position {
	scopeLine := high.Line
	if opts.DocScope {
		scopeLine = doc.LineCount() - 1
	}

	for line := high.Line; line <= scopeLine; line++ {
		for _, s := range m.spansIn(doc.Line(line)) {
			if line == high.Line && s.start < high.Char {
				continue
			}
			char := s.start
			if opts.Inclusive {
				char = s.end
			}
			return editor.Position{Line: line, Char: char}
		}
	}
	return editor.Position{Line: scopeLine, Char: len([]rune(doc.Line(scopeLine)))}
}
