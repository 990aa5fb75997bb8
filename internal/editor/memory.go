package editor

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Memory is an in-memory Host implementation backed by a line slice.
// It supports the small command vocabulary the core delegates to the
// host, which is enough for tests and the demo binary.
type Memory struct {
	id         string
	lines      []string
	selections []Selection
	messages   []string
	revealed   []Range
	visible    []Range
}

// NewMemory creates an in-memory editor over the given text.
func NewMemory(text string) *Memory {
	lines := strings.Split(text, "\n")
	return &Memory{
		id:         uuid.NewString(),
		lines:      lines,
		selections: []Selection{NewCursor(Position{})},
	}
}

// ID returns the document identifier.
func (m *Memory) ID() string { return m.id }

// Line returns the text of the given line.
func (m *Memory) Line(i int) string {
	if i < 0 || i >= len(m.lines) {
		return ""
	}
	return m.lines[i]
}

// LineCount returns the number of lines.
func (m *Memory) LineCount() int { return len(m.lines) }

// Text returns the whole document joined with newlines.
func (m *Memory) Text() string { return strings.Join(m.lines, "\n") }

// Selections returns the current selection list.
func (m *Memory) Selections() []Selection {
	sels := make([]Selection, len(m.selections))
	copy(sels, m.selections)
	return sels
}

// SetSelections replaces the selection list. An empty list resets to a
// single cursor at the document start; the list is never empty.
func (m *Memory) SetSelections(sels []Selection) {
	if len(sels) == 0 {
		sels = []Selection{NewCursor(Position{})}
	}
	m.selections = make([]Selection, len(sels))
	copy(m.selections, sels)
}

// Replace applies a text edit over the given range.
func (m *Memory) Replace(r Range, text string) error {
	if r.Start.Line < 0 || r.End.Line >= len(m.lines) {
		return fmt.Errorf("%w: lines %d-%d", ErrRangeOutOfBounds, r.Start.Line, r.End.Line)
	}

	head := sliceLine(m.lines[r.Start.Line], 0, r.Start.Char)
	tail := sliceLine(m.lines[r.End.Line], r.End.Char, -1)
	inserted := strings.Split(head+text+tail, "\n")

	replaced := make([]string, 0, len(m.lines)-(r.End.Line-r.Start.Line)-1+len(inserted))
	replaced = append(replaced, m.lines[:r.Start.Line]...)
	replaced = append(replaced, inserted...)
	replaced = append(replaced, m.lines[r.End.Line+1:]...)
	m.lines = replaced
	return nil
}

// Reveal records the requested range; the in-memory editor has no view.
func (m *Memory) Reveal(r Range) {
	m.revealed = append(m.revealed, r)
}

// VisibleRanges returns the configured visible ranges, defaulting to the
// whole document.
func (m *Memory) VisibleRanges() []Range {
	if len(m.visible) > 0 {
		return m.visible
	}
	last := len(m.lines) - 1
	return []Range{{
		Start: Position{Line: 0, Char: 0},
		End:   Position{Line: last, Char: len([]rune(m.lines[last]))},
	}}
}

// SetVisibleRanges overrides the visible ranges for highlight tests.
func (m *Memory) SetVisibleRanges(ranges []Range) {
	m.visible = ranges
}

// ShowMessage records a transient user message.
func (m *Memory) ShowMessage(msg string) {
	m.messages = append(m.messages, msg)
}

// Messages returns the messages recorded so far.
func (m *Memory) Messages() []string { return m.messages }

// LastMessage returns the most recent message, or "".
func (m *Memory) LastMessage() string {
	if len(m.messages) == 0 {
		return ""
	}
	return m.messages[len(m.messages)-1]
}

// Exec runs a host-side command. The vocabulary mirrors the cursor and
// edit commands a real host would expose.
func (m *Memory) Exec(command string, args map[string]any) error {
	switch command {
	case "cursorLeft":
		m.moveAll(0, -1, false)
	case "cursorRight":
		m.moveAll(0, 1, false)
	case "cursorUp":
		m.moveAll(-1, 0, false)
	case "cursorDown":
		m.moveAll(1, 0, false)
	case "cursorLeftSelect":
		m.moveAll(0, -1, true)
	case "cursorRightSelect":
		m.moveAll(0, 1, true)
	case "type":
		text, _ := args["text"].(string)
		return m.typeText(text)
	case "deleteRight":
		return m.deleteRight()
	case "deleteSelection":
		return m.deleteSelections()
	case "deleteLine":
		return m.deleteLine()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
	return nil
}

// moveAll moves every cursor by the given line/char delta, clamped.
func (m *Memory) moveAll(dl, dc int, selecting bool) {
	for i, sel := range m.selections {
		p := m.clamp(Position{Line: sel.Active.Line + dl, Char: sel.Active.Char + dc})
		if selecting {
			m.selections[i] = sel.WithActive(p)
		} else {
			m.selections[i] = NewCursor(p)
		}
	}
}

// typeText inserts text at every selection, replacing selected text.
func (m *Memory) typeText(text string) error {
	// Apply in reverse document order so earlier edits keep their ranges.
	for i := len(m.selections) - 1; i >= 0; i-- {
		sel := m.selections[i]
		if err := m.Replace(sel.Range(), text); err != nil {
			return err
		}
		p := sel.Start()
		p.Char += len([]rune(text))
		m.selections[i] = NewCursor(p)
	}
	return nil
}

// deleteRight deletes the character under each cursor.
func (m *Memory) deleteRight() error {
	for i := len(m.selections) - 1; i >= 0; i-- {
		p := m.selections[i].Active
		line := []rune(m.Line(p.Line))
		if p.Char >= len(line) {
			continue
		}
		r := Range{Start: p, End: Position{Line: p.Line, Char: p.Char + 1}}
		if err := m.Replace(r, ""); err != nil {
			return err
		}
	}
	return nil
}

// deleteSelections removes the selected text, collapsing each selection.
func (m *Memory) deleteSelections() error {
	for i := len(m.selections) - 1; i >= 0; i-- {
		sel := m.selections[i]
		if sel.IsEmpty() {
			continue
		}
		if err := m.Replace(sel.Range(), ""); err != nil {
			return err
		}
		m.selections[i] = NewCursor(sel.Start())
	}
	return nil
}

// deleteLine removes the line under each cursor.
func (m *Memory) deleteLine() error {
	for i := len(m.selections) - 1; i >= 0; i-- {
		lineNo := m.selections[i].Active.Line
		if len(m.lines) == 1 {
			m.lines[0] = ""
			m.selections[i] = NewCursor(Position{})
			continue
		}
		m.lines = append(m.lines[:lineNo], m.lines[lineNo+1:]...)
		m.selections[i] = NewCursor(m.clamp(Position{Line: lineNo, Char: 0}))
	}
	return nil
}

// clamp restricts a position to the document bounds.
func (m *Memory) clamp(p Position) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line >= len(m.lines) {
		p.Line = len(m.lines) - 1
	}
	if p.Char < 0 {
		p.Char = 0
	}
	if max := len([]rune(m.lines[p.Line])); p.Char > max {
		p.Char = max
	}
	return p
}
