package search

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// span is a match within a single line, in rune offsets.
type span struct {
	start int
	end   int
}

// matcher finds pattern occurrences within individual lines.
// Regex patterns implement case-insensitivity with the (?i) flag;
// literal patterns lowercase both pattern and haystack.
type matcher struct {
	re      *regexp.Regexp
	literal string
	folded  bool
}

// compileMatcher builds a matcher for the query pattern.
func compileMatcher(pattern string, regex, caseSensitive bool) (*matcher, error) {
	if regex {
		expr := pattern
		if !caseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
		}
		return &matcher{re: re}, nil
	}

	m := &matcher{literal: pattern, folded: !caseSensitive}
	if m.folded {
		m.literal = strings.ToLower(m.literal)
	}
	return m, nil
}

// spansIn returns all matches within the line, left to right, in rune
// offsets. Empty patterns match nothing.
func (m *matcher) spansIn(line string) []span {
	if m.re != nil {
		locs := m.re.FindAllStringIndex(line, -1)
		if len(locs) == 0 {
			return nil
		}
		spans := make([]span, 0, len(locs))
		for _, loc := range locs {
			spans = append(spans, span{
				start: utf8.RuneCountInString(line[:loc[0]]),
				end:   utf8.RuneCountInString(line[:loc[1]]),
			})
		}
		return spans
	}

	if m.literal == "" {
		return nil
	}
	haystack := line
	if m.folded {
		haystack = strings.ToLower(haystack)
	}
	var spans []span
	offset := 0
	for {
		idx := strings.Index(haystack[offset:], m.literal)
		if idx < 0 {
			break
		}
		byteStart := offset + idx
		byteEnd := byteStart + len(m.literal)
		spans = append(spans, span{
			start: utf8.RuneCountInString(haystack[:byteStart]),
			end:   utf8.RuneCountInString(haystack[:byteEnd]),
		})
		offset = byteStart + len(m.literal)
	}
	return spans
}
