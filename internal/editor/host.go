package editor

import "strings"

// Document provides read-only access to the text of an open document.
type Document interface {
	// Line returns the text of the given zero-based line, without the
	// trailing newline. Out-of-range lines return "".
	Line(i int) string

	// LineCount returns the number of lines in the document.
	LineCount() int
}

// Host is the editor collaborator surface consumed by the modal core.
// All mutation is asynchronous from the host's point of view; the core
// re-reads selections and text after every call rather than assuming
// state is unchanged.
type Host interface {
	Document

	// ID returns a stable identifier for the document, used to persist
	// per-document mode across editor switches.
	ID() string

	// Selections returns the ordered selection list. The list is never
	// empty; a plain cursor is an empty selection.
	Selections() []Selection

	// SetSelections replaces the selection list.
	SetSelections(sels []Selection)

	// Replace applies a text edit over the given range.
	Replace(r Range, text string) error

	// Reveal asks the host to scroll the given range into view.
	Reveal(r Range)

	// VisibleRanges returns the line ranges currently on screen.
	VisibleRanges() []Range

	// ShowMessage surfaces a transient, non-fatal message to the user.
	ShowMessage(msg string)

	// Exec runs a host-side command that is not handled by the core
	// (cursor motions, edits bound by name, and so on).
	Exec(command string, args map[string]any) error
}

// TextIn returns the document text covered by the range.
// Line boundaries are joined with "\n".
func TextIn(doc Document, r Range) string {
	if r.Start.Line == r.End.Line {
		return sliceLine(doc.Line(r.Start.Line), r.Start.Char, r.End.Char)
	}

	var sb strings.Builder
	sb.WriteString(sliceLine(doc.Line(r.Start.Line), r.Start.Char, -1))
	for line := r.Start.Line + 1; line < r.End.Line; line++ {
		sb.WriteString("\n")
		sb.WriteString(doc.Line(line))
	}
	sb.WriteString("\n")
	sb.WriteString(sliceLine(doc.Line(r.End.Line), 0, r.End.Char))
	return sb.String()
}

// sliceLine returns the rune slice [from, to) of a line.
// A negative to means end of line. Bounds are clamped.
func sliceLine(line string, from, to int) string {
	runes := []rune(line)
	if to < 0 || to > len(runes) {
		to = len(runes)
	}
	if from < 0 {
		from = 0
	}
	if from > len(runes) {
		from = len(runes)
	}
	if from >= to {
		return ""
	}
	return string(runes[from:to])
}
