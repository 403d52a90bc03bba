package loop

import "github.com/tomz197/breakpong/internal/game"

// FrameScheduler decides whether the next display frame advances the game.
// It is only touched from the loop goroutine.
type FrameScheduler struct {
	armed bool
}

var _ game.Scheduler = (*FrameScheduler)(nil)

// Request arms the scheduler: every following display frame runs a game frame.
func (s *FrameScheduler) Request() { s.armed = true }

// Cancel disarms the scheduler.
func (s *FrameScheduler) Cancel() { s.armed = false }

// Armed reports whether the next display frame runs a game frame.
func (s *FrameScheduler) Armed() bool { return s.armed }

// Controls is the start/stop control pair. Exactly one of the two is
// visible at any time, following the game state.
type Controls struct {
	startVisible bool
}

// NewControls returns controls for a stopped game.
func NewControls() *Controls {
	return &Controls{startVisible: true}
}

// Sync shows Start while stopped and Stop while running.
func (c *Controls) Sync(s game.State) {
	c.startVisible = s == game.StateStopped
}

// StartVisible reports whether the Start control can be triggered.
func (c *Controls) StartVisible() bool { return c.startVisible }

// StopVisible reports whether the Stop control can be triggered.
func (c *Controls) StopVisible() bool { return !c.startVisible }

// Label returns the text of the visible control.
func (c *Controls) Label() string {
	if c.startVisible {
		return "[Enter] Start"
	}
	return "[X] Stop"
}
