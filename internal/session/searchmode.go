package session

import (
	"fmt"
	"unicode/utf8"

	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/bind"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/editor"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/key"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/mode"
	"github.com/haberdashPI/vscode-modal-keys-sub001/internal/search"
)

// DefaultSearchRegister holds the search state when a binding names no
// register. User-chosen registers keep independent search states that
// do not interfere.
const DefaultSearchRegister = "default"

// searchSession is the in-flight state of an interactive search. It
// exists exactly while the session is in search mode.
type searchSession struct {
	query        search.Query
	acceptAfter  int
	executeAfter bind.Spec
	highlight    bool
	register     string
	origins      []editor.Selection
	returnMode   string
}

// startSearch handles the search command. With a text argument the
// search runs immediately against the current selections; otherwise
// the session enters search mode and builds the pattern key by key.
func (s *Session) startSearch(args map[string]any) error {
	q := search.Query{
		Backwards:       argBool(args, "backwards", false),
		CaseSensitive:   argBool(args, "caseSensitive", false),
		Regex:           argBool(args, "regex", false),
		WrapAround:      argBool(args, "wrapAround", false),
		SelectTillMatch: argBool(args, "selectTillMatch", false),
	}
	offset, _ := argString(args, "offset")
	normalized, err := search.NormalizeOffset(offset)
	if err != nil {
		return err
	}
	q.Offset = normalized

	register, _ := argString(args, "register")
	if register == "" {
		register = DefaultSearchRegister
	}

	var executeAfter bind.Spec
	if raw, ok := args["executeAfter"]; ok {
		executeAfter, err = bind.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing executeAfter: %w", err)
		}
	}

	if text, ok := argString(args, "text"); ok && text != "" {
		q.Pattern = text
		s.registers[register] = q
		if err := s.applySearch(q); err != nil {
			return err
		}
		s.recordSearchWord(q, args)
		if executeAfter != nil {
			return s.execute(executeAfter)
		}
		return nil
	}

	s.search = &searchSession{
		query:        q,
		acceptAfter:  argInt(args, "acceptAfter", 0),
		executeAfter: executeAfter,
		highlight:    argBool(args, "highlightMatches", true),
		register:     register,
		origins:      s.host.Selections(),
		returnMode:   s.modes.Current(),
	}
	s.modes.Enter(s.host.ID(), mode.Search)
	return nil
}

// handleSearchKey consumes one key while search mode is active.
func (s *Session) handleSearchKey(ev key.Event) error {
	ss := s.search
	switch {
	case ev.Name == "escape":
		s.cancelSearch()
		return nil
	case ev.Name == "enter":
		return s.acceptSearch()
	case ev.Name == "backspace":
		ss.query.Pattern = trimLastRune(ss.query.Pattern)
		return s.incrementalFind()
	case ev.IsRune():
		ss.query.Pattern += string(ev.Rune)
		if err := s.incrementalFind(); err != nil {
			return err
		}
		if ss.acceptAfter > 0 && utf8.RuneCountInString(ss.query.Pattern) >= ss.acceptAfter {
			return s.acceptSearch()
		}
		return nil
	default:
		// Unrecognized named keys are ignored while searching.
		return nil
	}
}

// incrementalFind re-runs the search from the origin selections after
// every pattern edit, so backspacing shrinks the result instead of
// chaining forward from the previous hit.
func (s *Session) incrementalFind() error {
	ss := s.search
	if ss.query.Pattern == "" {
		s.host.SetSelections(ss.origins)
		s.highlights = search.Highlights{}
		return nil
	}

	results, found, err := search.Find(s.host, ss.origins, ss.query)
	if err != nil {
		return err
	}
	s.host.SetSelections(results)
	if len(results) > 0 {
		s.host.Reveal(results[0].Range())
	}
	if !found {
		s.host.ShowMessage("Pattern not found")
	}
	if ss.highlight {
		hl, err := search.HighlightMatches(s.host, s.host.VisibleRanges(), results, ss.query)
		if err == nil {
			s.highlights = hl
		}
	}
	return nil
}

// acceptSearch leaves search mode keeping the landed selections, saves
// the query to its register, records the search as a repeatable word,
// and runs the follow-up command if one was configured.
func (s *Session) acceptSearch() error {
	ss := s.search
	s.search = nil

	if ss.query.Pattern == "" {
		s.host.SetSelections(ss.origins)
		s.modes.Enter(s.host.ID(), ss.returnMode)
		return nil
	}

	s.registers[ss.register] = ss.query
	s.modes.Enter(s.host.ID(), ss.returnMode)

	s.recordSearchWord(ss.query, map[string]any{
		"register":         ss.register,
		"acceptAfter":      ss.acceptAfter,
		"highlightMatches": ss.highlight,
	})

	if ss.executeAfter != nil {
		return s.execute(ss.executeAfter)
	}
	return nil
}

// recordSearchWord stores the completed search as a direct command
// word, so repeating the last selection replays it with its final
// pattern rather than re-entering interactive search.
func (s *Session) recordSearchWord(q search.Query, extra map[string]any) {
	args := map[string]any{
		"text":            q.Pattern,
		"backwards":       q.Backwards,
		"caseSensitive":   q.CaseSensitive,
		"regex":           q.Regex,
		"wrapAround":      q.WrapAround,
		"selectTillMatch": q.SelectTillMatch,
		"offset":          q.Offset,
	}
	for k, v := range extra {
		args[k] = v
	}
	spec := bind.WithArgs{Command: "search", Args: args}
	s.tracker.RecordCommand(spec, s.modes.Current())
}

// cancelSearch abandons the session and puts the cursors back where
// the search started.
func (s *Session) cancelSearch() {
	ss := s.search
	if ss == nil {
		return
	}
	s.search = nil
	s.host.SetSelections(ss.origins)
	s.highlights = search.Highlights{}
	s.modes.Enter(s.host.ID(), ss.returnMode)
}

// abandonSearch drops an in-flight search without re-entering its
// return mode; used when some other command changes mode directly.
func (s *Session) abandonSearch() {
	ss := s.search
	if ss == nil {
		return
	}
	s.search = nil
	s.host.SetSelections(ss.origins)
	s.highlights = search.Highlights{}
}

// applySearch runs an immediate, non-interactive search against the
// current selections.
func (s *Session) applySearch(q search.Query) error {
	results, found, err := search.Find(s.host, s.host.Selections(), q)
	if err != nil {
		return err
	}
	s.host.SetSelections(results)
	if len(results) > 0 {
		s.host.Reveal(results[0].Range())
	}
	if !found {
		s.host.ShowMessage("Pattern not found")
	}
	return nil
}

// matchFromRegister re-runs the register's saved search from the
// current selections; reverse inverts the saved direction.
func (s *Session) matchFromRegister(args map[string]any, reverse bool) error {
	register, _ := argString(args, "register")
	if register == "" {
		register = DefaultSearchRegister
	}
	q, ok := s.registers[register]
	if !ok || q.Pattern == "" {
		return fmt.Errorf("%w %q", ErrNoSearchHistory, register)
	}
	if reverse {
		q.Backwards = !q.Backwards
	}
	return s.applySearch(q)
}

func trimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
