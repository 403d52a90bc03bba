// Package input turns terminal key presses into per-frame control state.
//
// Terminals report key presses (and auto-repeats) but never releases, so a
// direction counts as held for a short window after its last press.
package input

import (
	"bufio"
	"sync"
	"time"
)

// DefaultKeyHold is how long a direction is considered held after its last press.
const DefaultKeyHold = 50 * time.Millisecond

// Input is the control state for one frame.
type Input struct {
	Left  bool // Held
	Right bool // Held
	Start bool // Pressed since the previous read
	Stop  bool // Pressed since the previous read
	Quit  bool // Pressed since the previous read, or the input closed

	Pressed []byte // Raw bytes consumed by this read
}

// Source delivers input once per frame.
type Source interface {
	Read() Input
	// Reset forgets held directions.
	Reset()
}

// keyState tracks the last time each direction was pressed.
type keyState struct {
	left  time.Time
	right time.Time
}

// actions collects the one-shot controls seen in a batch of input.
type actions struct {
	start, stop, quit bool
}

// Stream delivers input bytes via a channel and tracks key state for held directions.
type Stream struct {
	ch      chan byte
	hold    time.Duration
	now     func() time.Time
	mu      sync.Mutex
	state   keyState
	pending []byte // Unfinished escape sequence from the previous read
	closed  bool
}

var _ Source = (*Stream)(nil)

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
// hold <= 0 selects DefaultKeyHold.
func StartStream(r *bufio.Reader, hold time.Duration) *Stream {
	s := newStream(hold)
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

func newStream(hold time.Duration) *Stream {
	if hold <= 0 {
		hold = DefaultKeyHold
	}
	return &Stream{
		ch:   make(chan byte, 128),
		hold: hold,
		now:  time.Now,
	}
}

// Read drains all available bytes from the stream (non-blocking) and
// returns the control state for this frame.
//
// An escape sequence cut off at the end of the drained bytes is held back
// until the next read. If nothing arrives by then, a held ESC counts as Stop.
func (s *Stream) Read() Input {
	buf := append([]byte(nil), s.pending...)
	s.pending = nil
	drained := 0

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
			drained++
		default:
			break drain
		}
	}

	if drained > 0 && !s.closed {
		buf, s.pending = splitPending(buf)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	act := parse(buf, &s.state, now)
	return Input{
		Left:    now.Sub(s.state.left) < s.hold,
		Right:   now.Sub(s.state.right) < s.hold,
		Start:   act.start,
		Stop:    act.stop,
		Quit:    act.quit || s.closed,
		Pressed: buf,
	}
}

// Reset forgets held directions, e.g. after a stop.
func (s *Stream) Reset() {
	s.mu.Lock()
	s.state = keyState{}
	s.mu.Unlock()
}

// splitPending separates a trailing ESC, ESC [ or ESC O from buf.
func splitPending(buf []byte) (complete, pending []byte) {
	n := len(buf)
	switch {
	case n >= 1 && buf[n-1] == '\x1b':
		return buf[:n-1], buf[n-1:]
	case n >= 2 && buf[n-2] == '\x1b' && (buf[n-1] == '[' || buf[n-1] == 'O'):
		return buf[:n-2], buf[n-2:]
	}
	return buf, nil
}

// parse walks raw terminal bytes, updating direction timestamps and
// collecting one-shot controls.
//
//	left:  ←  a  h       start: Enter  Space
//	right: →  d  l       stop:  x  Esc
//	quit:  q  Ctrl-C
func parse(buf []byte, st *keyState, now time.Time) actions {
	var act actions
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' {
			// CSI (ESC [) and SS3 (ESC O) arrow sequences
			if i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
				switch buf[i+2] {
				case 'C':
					st.right = now
				case 'D':
					st.left = now
				}
				i += 2
				continue
			}
			act.stop = true
			continue
		}

		switch b {
		case 'a', 'A', 'h', 'H':
			st.left = now
		case 'd', 'D', 'l', 'L':
			st.right = now
		case '\r', '\n', ' ':
			act.start = true
		case 'x', 'X':
			act.stop = true
		case 'q', 'Q', '\x03':
			act.quit = true
		}
	}
	return act
}
