package search

import "github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"

// lineRing walks document lines in one direction, optionally wrapping
// around the document edge exactly once. After wrapping it re-visits
// the starting line so matches on the far side of the start position
// are seen, then stops.
type lineRing struct {
	doc       editor.Document
	start     int
	cur       int
	backwards bool
	wrap      bool
	wrapped   bool
	done      bool
}

func newLineRing(doc editor.Document, startLine int, backwards, wrap bool) *lineRing {
	last := doc.LineCount() - 1
	if startLine < 0 {
		startLine = 0
	}
	if startLine > last {
		startLine = last
	}
	return &lineRing{
		doc:       doc,
		start:     startLine,
		cur:       startLine,
		backwards: backwards,
		wrap:      wrap,
	}
}

// next returns the next line to scan and whether the ring is exhausted.
func (r *lineRing) next() (int, bool) {
	if r.done {
		return 0, false
	}
	line := r.cur
	if r.wrapped && line == r.start {
		// Final visit of the starting line after wrapping.
		r.done = true
		return line, true
	}

	last := r.doc.LineCount() - 1
	if r.backwards {
		r.cur--
		if r.cur < 0 {
			if r.wrap && !r.wrapped {
				r.wrapped = true
				r.cur = last
			} else {
				r.done = true
			}
		}
	} else {
		r.cur++
		if r.cur > last {
			if r.wrap && !r.wrapped {
				r.wrapped = true
				r.cur = 0
			} else {
				r.done = true
			}
		}
	}
	return line, true
}
