// Package mode tracks the active editor mode, its per-document
// persistence, and the derived visual state.
//
// Modes are open-ended strings: the built-in names below are known to
// the core, but configuration may introduce arbitrary user modes and
// the controller accepts them all. Visual is not a stored mode; it is
// normal mode plus a derived flag.
package mode

import "sync"

// Built-in mode names.
const (
	Normal  = "normal"
	Insert  = "insert"
	Search  = "search"
	Replace = "replace"
	Capture = "capture"

	// Visual is a request-only name: entering it stores Normal with the
	// visual flag set.
	Visual = "visual"
)

// Hook runs on a mode transition. It receives the previous and next
// mode names.
type Hook func(previous, next string)

// Observer is notified after every mode request, including ones that
// only toggle the visual flag. Hosts use it to update conditional key
// routing and cursor presentation.
type Observer func(mode string, visual bool)

// Controller owns the current mode for the active editor and remembers
// the mode of every document seen, so switching editors restores it.
type Controller struct {
	mu         sync.RWMutex
	current    string
	visual     bool
	perDoc     map[string]string
	enterHooks map[string][]Hook
	exitHooks  map[string][]Hook
	observers  []Observer
}

// NewController creates a controller starting in normal mode.
func NewController() *Controller {
	return &Controller{
		current:    Normal,
		perDoc:     make(map[string]string),
		enterHooks: make(map[string][]Hook),
		exitHooks:  make(map[string][]Hook),
	}
}

// Enter switches to the requested mode for the given document.
// Requesting Visual normalizes to Normal with the visual flag set; any
// other request clears the flag. Exit hooks for the old mode and enter
// hooks for the new one run only when the stored mode actually changes.
// Enter always succeeds: unknown mode names are valid user modes.
func (c *Controller) Enter(doc, name string) {
	c.mu.Lock()

	normalized := name
	visual := false
	if name == Visual {
		normalized = Normal
		visual = true
	}

	previous := c.current
	changed := normalized != previous

	var exitHooks, enterHooks []Hook
	if changed {
		exitHooks = append(exitHooks, c.exitHooks[previous]...)
		exitHooks = append(exitHooks, c.exitHooks[""]...)
		enterHooks = append(enterHooks, c.enterHooks[normalized]...)
		enterHooks = append(enterHooks, c.enterHooks[""]...)
	}

	c.visual = visual
	c.current = normalized
	if doc != "" {
		c.perDoc[doc] = normalized
	}

	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, h := range exitHooks {
		h(previous, normalized)
	}
	for _, h := range enterHooks {
		h(previous, normalized)
	}
	for _, o := range observers {
		o(normalized, visual)
	}
}

// Restore re-applies the persisted mode for a document, defaulting to
// normal for documents never seen.
func (c *Controller) Restore(doc string) {
	c.mu.RLock()
	name, ok := c.perDoc[doc]
	c.mu.RUnlock()
	if !ok {
		name = Normal
	}
	c.Enter(doc, name)
}

// Current returns the stored mode name.
func (c *Controller) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// VisualFlag returns the stored visual flag.
func (c *Controller) VisualFlag() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visual
}

// IsVisual reports the derived visual state: normal mode combined with
// either the visual flag or a non-empty selection.
func (c *Controller) IsVisual(hasSelection bool) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current == Normal && (c.visual || hasSelection)
}

// Effective returns the mode used for binding lookup: "visual" when the
// derived visual state is active, the stored mode otherwise.
func (c *Controller) Effective(hasSelection bool) string {
	if c.IsVisual(hasSelection) {
		return Visual
	}
	return c.Current()
}

// OnEnter registers a hook run after entering the named mode.
// An empty name registers for every mode change.
func (c *Controller) OnEnter(name string, h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enterHooks[name] = append(c.enterHooks[name], h)
}

// OnExit registers a hook run before leaving the named mode.
// An empty name registers for every mode change.
func (c *Controller) OnExit(name string, h Hook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exitHooks[name] = append(c.exitHooks[name], h)
}

// Observe registers an observer notified on every mode request.
func (c *Controller) Observe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}
