// Package game implements the brick-breaking simulation: ball, paddle and
// brick grid, advanced one frame at a time by a single controller.
package game

import "fmt"

// State is the game-level phase.
type State int

const (
	StateStopped State = iota // Waiting for a start command, or finished
	StateRunning              // Frames are being scheduled
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Outcome records how the last run ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "none"
	}
}

// Result overlay geometry and messages.
const (
	resultBoxWidth  = 200
	resultBoxHeight = 100
	MessageWin      = "You Win!"
	MessageLoss     = "Game Over!"
	resultColor     = Color("white")
)

// Game owns every entity and is the only thing that mutates them.
type Game struct {
	cfg   Config
	field Field

	Ball   Ball
	Paddle Paddle
	Grid   BrickGrid

	state   State
	outcome Outcome
	frames  uint64 // Frames advanced since the last start

	left, right bool

	surface  Surface
	schedule Scheduler
	observer Observer
}

// Option configures a Game.
type Option func(*Game)

// WithObserver registers an observer for effects.
func WithObserver(o Observer) Option {
	return func(g *Game) {
		g.observer = o
	}
}

// New validates cfg, lays out a fresh game in the stopped state and renders it once.
func New(cfg Config, s Surface, sched Scheduler, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil || sched == nil {
		return nil, fmt.Errorf("game: surface and scheduler are required")
	}
	g := &Game{
		cfg:      cfg,
		field:    cfg.Field(),
		surface:  s,
		schedule: sched,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.reset()
	g.Render()
	return g, nil
}

// reset returns every entity to its initial layout.
func (g *Game) reset() {
	g.Ball = NewBall(g.field, g.cfg.Ball)
	g.Paddle = NewPaddle(g.field, g.cfg.Paddle)
	g.Grid = NewBrickGrid(g.field, g.cfg.Bricks)
	g.frames = 0
}

// Handle applies one input or control event.
func (g *Game) Handle(ev Event) {
	switch ev.Type {
	case EventKeyDown:
		g.setKey(ev.Key, true)
	case EventKeyUp:
		g.setKey(ev.Key, false)
	case EventStart:
		if g.state == StateRunning {
			return
		}
		g.reset()
		g.outcome = OutcomeNone
		g.state = StateRunning
		g.schedule.Request()
		g.notify(EffectStarted)
	case EventStop:
		if g.state != StateRunning {
			return
		}
		g.schedule.Cancel()
		g.state = StateStopped
		g.notify(EffectStopped)
		g.reset()
		g.Render()
	}
}

func (g *Game) setKey(k Key, down bool) {
	switch k {
	case KeyLeft:
		g.left = down
	case KeyRight:
		g.right = down
	}
}

// Frame advances the simulation by one frame and draws the result.
// On a win or a loss it cancels scheduling and draws the result overlay.
func (g *Game) Frame() {
	s := g.surface
	g.frames++

	s.Clear()
	g.Ball.Draw(s)
	g.Paddle.Move(g.left, g.right, g.field.Width)
	g.Paddle.Draw(s)

	if g.Grid.Cleared() {
		g.finish(OutcomeWin)
		return
	}

	g.Grid.Draw(s)
	if _, _, hit := g.Grid.Hit(g.Ball.X, g.Ball.Y); hit {
		g.Ball.DY = -g.Ball.DY
		g.notify(EffectBrickHit)
	}

	if g.Ball.hitsSideWall(g.field) {
		g.Ball.DX = -g.Ball.DX
		g.notify(EffectWallBounce)
	}

	if g.Ball.hitsTop() {
		g.Ball.DY = -g.Ball.DY
		g.notify(EffectWallBounce)
	} else if g.Ball.hitsBottom(g.field) {
		if !g.Paddle.Covers(g.Ball.X) {
			g.Ball.Move()
			g.finish(OutcomeLoss)
			return
		}
		g.Ball.DX = g.Paddle.Deflect(g.Ball.X)
		g.Ball.DY = -g.Ball.DY
		g.notify(EffectPaddleBounce)
	}

	g.Ball.Move()
}

// finish halts scheduling and shows the result message.
func (g *Game) finish(o Outcome) {
	g.schedule.Cancel()
	g.state = StateStopped
	g.outcome = o

	msg := MessageLoss
	eff := EffectLoss
	if o == OutcomeWin {
		msg = MessageWin
		eff = EffectWin
	}
	g.drawResult(msg)
	g.notify(eff)
}

func (g *Game) drawResult(msg string) {
	w, h := g.field.Width, g.field.Height
	g.surface.StrokeRect(w/2-resultBoxWidth/2, h/2-resultBoxHeight/2, resultBoxWidth, resultBoxHeight, resultColor)
	g.surface.Text(msg, w/2, h/2, resultColor)
}

// Render draws the current scene without advancing it, including the
// result overlay of a finished run.
func (g *Game) Render() {
	s := g.surface
	s.Clear()
	g.Ball.Draw(s)
	g.Paddle.Draw(s)
	g.Grid.Draw(s)

	switch {
	case g.state != StateStopped:
	case g.outcome == OutcomeWin:
		g.drawResult(MessageWin)
	case g.outcome == OutcomeLoss:
		g.drawResult(MessageLoss)
	}
}

func (g *Game) notify(e Effect) {
	if g.observer != nil {
		g.observer.Observe(e, g)
	}
}

// State returns the current phase.
func (g *Game) State() State { return g.state }

// Outcome returns how the last run ended, or OutcomeNone while running or before the first run.
func (g *Game) Outcome() Outcome { return g.outcome }

// Frames returns the number of frames advanced since the last start.
func (g *Game) Frames() uint64 { return g.frames }

// Field returns the playable area.
func (g *Game) Field() Field { return g.field }

// Held reports the directional flags as last set by events.
func (g *Game) Held() (left, right bool) { return g.left, g.right }
