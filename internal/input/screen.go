package input

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// ScreenStream delivers input from a tcell screen. Key events are mapped
// onto the same controls as the raw byte Stream.
type ScreenStream struct {
	events chan tcell.Event
	hold   time.Duration
	now    func() time.Time
	state  keyState
	closed bool
}

var _ Source = (*ScreenStream)(nil)

// StartScreenStream polls screen events in a goroutine until the screen is finalized.
// hold <= 0 selects DefaultKeyHold.
func StartScreenStream(screen tcell.Screen, hold time.Duration) *ScreenStream {
	s := newScreenStream(hold)
	go func() {
		defer close(s.events)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			s.events <- ev
		}
	}()
	return s
}

func newScreenStream(hold time.Duration) *ScreenStream {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &ScreenStream{
		events: make(chan tcell.Event, 100),
		hold:   hold,
		now:    time.Now,
	}
}

// Read drains pending screen events (non-blocking).
func (s *ScreenStream) Read() Input {
	var act actions
	now := s.now()

drain:
	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				s.closed = true
				break drain
			}
			if key, isKey := ev.(*tcell.EventKey); isKey {
				s.applyKey(key, now, &act)
			}
		default:
			break drain
		}
	}

	return Input{
		Left:  now.Sub(s.state.left) < s.hold,
		Right: now.Sub(s.state.right) < s.hold,
		Start: act.start,
		Stop:  act.stop,
		Quit:  act.quit || s.closed,
	}
}

// Reset forgets held directions.
func (s *ScreenStream) Reset() {
	s.state = keyState{}
}

func (s *ScreenStream) applyKey(ev *tcell.EventKey, now time.Time, act *actions) {
	switch ev.Key() {
	case tcell.KeyLeft:
		s.state.left = now
	case tcell.KeyRight:
		s.state.right = now
	case tcell.KeyEnter:
		act.start = true
	case tcell.KeyEscape:
		act.stop = true
	case tcell.KeyCtrlC:
		act.quit = true
	case tcell.KeyRune:
		r := ev.Rune()
		if r < 0x80 {
			*act = mergeActions(*act, parse([]byte{byte(r)}, &s.state, now))
		}
	}
}

func mergeActions(a, b actions) actions {
	return actions{
		start: a.start || b.start,
		stop:  a.stop || b.stop,
		quit:  a.quit || b.quit,
	}
}
