// Package overlay tracks whether the chat panel is shown.
package overlay

import "sync"

// KeyEscape is the key name that dismisses the overlay.
const KeyEscape = "Escape"

// State is the overlay visibility. The zero value is closed.
type State struct {
	Open bool
}

// Open returns the opened state and whether anything changed.
func Open(s State) (State, bool) {
	return State{Open: true}, !s.Open
}

// Close returns the closed state and whether anything changed.
func Close(s State) (State, bool) {
	return State{Open: false}, s.Open
}

// View is the overlay panel together with its trigger controls.
type View interface {
	// SetVisible toggles the panel and its aria-hidden attribute.
	SetVisible(visible bool)
	// SetTriggersPressed marks every chat trigger active/pressed or not.
	SetTriggersPressed(pressed bool)
	FocusInput()
}

// Controller applies State transitions to a View. A nil view means the
// overlay is not on the page and every transition is a no-op.
type Controller struct {
	mu    sync.Mutex
	view  View
	state State
}

func NewController(view View) *Controller {
	return &Controller{view: view}
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Open
}

// Open shows the panel, presses the triggers and focuses the input. The input
// is focused again even when the panel was already open.
func (c *Controller) Open() {
	if c.view == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var changed bool
	c.state, changed = Open(c.state)
	if changed {
		c.view.SetVisible(true)
		c.view.SetTriggersPressed(true)
	}
	c.view.FocusInput()
}

func (c *Controller) Close() {
	if c.view == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var changed bool
	c.state, changed = Close(c.state)
	if changed {
		c.view.SetVisible(false)
		c.view.SetTriggersPressed(false)
	}
}

// HandleKey closes the overlay on Escape; other keys are ignored.
func (c *Controller) HandleKey(key string) {
	if key == KeyEscape {
		c.Close()
	}
}

// HandleClick closes the overlay when the click landed on the backdrop
// rather than inside the panel content.
func (c *Controller) HandleClick(onBackdrop bool) {
	if onBackdrop {
		c.Close()
	}
}
