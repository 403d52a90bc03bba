package game

import (
	"errors"
	"testing"
)

// recordSurface captures draw calls for assertions
type recordSurface struct {
	clears  int
	circles int
	rects   int
	strokes int
	texts   []string
}

func (r *recordSurface) Clear()                                   { r.clears++ }
func (r *recordSurface) FillCircle(x, y, radius float64, c Color) { r.circles++ }
func (r *recordSurface) FillRect(x, y, w, h float64, c Color)     { r.rects++ }
func (r *recordSurface) StrokeRect(x, y, w, h float64, c Color)   { r.strokes++ }
func (r *recordSurface) Text(s string, x, y float64, c Color)     { r.texts = append(r.texts, s) }

// stubScheduler tracks request/cancel calls
type stubScheduler struct {
	armed    bool
	requests int
	cancels  int
}

func (s *stubScheduler) Request() { s.armed = true; s.requests++ }
func (s *stubScheduler) Cancel()  { s.armed = false; s.cancels++ }

func newTestGame(t *testing.T, cfg Config) (*Game, *recordSurface, *stubScheduler) {
	t.Helper()
	surf := &recordSurface{}
	sched := &stubScheduler{}
	g, err := New(cfg, surf, sched)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g, surf, sched
}

func startedGame(t *testing.T) (*Game, *recordSurface, *stubScheduler) {
	t.Helper()
	g, surf, sched := newTestGame(t, DefaultConfig())
	g.Handle(Start())
	return g, surf, sched
}

// TestNewRendersStoppedScene verifies the initial state and static frame
func TestNewRendersStoppedScene(t *testing.T) {
	g, surf, sched := newTestGame(t, DefaultConfig())

	if g.State() != StateStopped {
		t.Errorf("Expected stopped, got %v", g.State())
	}
	if sched.requests != 0 {
		t.Errorf("Expected no scheduling before start, got %d requests", sched.requests)
	}
	if surf.clears != 1 || surf.circles != 1 {
		t.Errorf("Expected one static frame, got clears=%d circles=%d", surf.clears, surf.circles)
	}
	// paddle + 15 bricks
	if surf.rects != 16 {
		t.Errorf("Expected 16 rects, got %d", surf.rects)
	}
	if g.Ball.X != 200 || g.Ball.Y != 200 {
		t.Errorf("Static frame must not move the ball, got (%g, %g)", g.Ball.X, g.Ball.Y)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bricks.Cols = 0
	_, err := New(cfg, &recordSurface{}, &stubScheduler{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
}

// TestFirstFrameMovesBall covers the 400x400 scenario with no input
func TestFirstFrameMovesBall(t *testing.T) {
	g, _, sched := startedGame(t)

	if !sched.armed {
		t.Fatal("Expected start to request frames")
	}
	if g.Ball.DX != 0 || g.Ball.DY != 4 {
		t.Fatalf("Expected initial velocity (0, 4), got (%g, %g)", g.Ball.DX, g.Ball.DY)
	}

	g.Frame()

	if g.Ball.X != 200 || g.Ball.Y != 204 {
		t.Errorf("Expected ball at (200, 204), got (%g, %g)", g.Ball.X, g.Ball.Y)
	}
	if g.Grid.Active != 15 {
		t.Errorf("Expected no collisions, active=%d", g.Grid.Active)
	}
	if g.State() != StateRunning {
		t.Errorf("Expected running, got %v", g.State())
	}
}

// TestBrickCollision covers the grid geometry scenario
func TestBrickCollision(t *testing.T) {
	g, _, _ := startedGame(t)

	if g.Grid.BrickWidth != 75 || g.Grid.RowHeight != 25 || g.Grid.ColWidth != 80 {
		t.Fatalf("Unexpected geometry: width=%g rowHeight=%g colWidth=%g",
			g.Grid.BrickWidth, g.Grid.RowHeight, g.Grid.ColWidth)
	}

	g.Ball.X, g.Ball.Y = 40, 12
	g.Ball.DY = -4
	g.Frame()

	if g.Grid.Bricks[0][0].Visible {
		t.Error("Expected brick[0][0] to be broken")
	}
	if g.Grid.Active != 14 {
		t.Errorf("Expected active count 14, got %d", g.Grid.Active)
	}
	// Flipped by the brick; the top-wall check sees the new downward velocity
	if g.Ball.DY != 4 {
		t.Errorf("Expected dy flipped to 4, got %g", g.Ball.DY)
	}
}

func TestBrickCollisionAtMostOncePerFrame(t *testing.T) {
	g, _, _ := startedGame(t)

	for _, pos := range [][2]float64{{40, 12}, {120, 12}, {200, 37}, {360, 62}} {
		g.Ball.X, g.Ball.Y = pos[0], pos[1]
		g.Ball.DX, g.Ball.DY = 0, 1
		before := g.Grid.Active
		g.Frame()
		if d := before - g.Grid.Active; d > 1 {
			t.Fatalf("Expected at most one brick per frame, lost %d", d)
		}
	}
}

func TestBrickCellOutOfRange(t *testing.T) {
	g, _, _ := startedGame(t)

	cases := []struct {
		name string
		x, y float64
	}{
		{"below grid", 40, 80},
		{"left of field", -1, 12},
		{"right of field", 400, 12},
		{"above field", 40, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, ok := g.Grid.Hit(tc.x, tc.y); ok {
				t.Errorf("Expected no hit at (%g, %g)", tc.x, tc.y)
			}
		})
	}
	if g.Grid.Active != 15 {
		t.Errorf("Expected untouched grid, active=%d", g.Grid.Active)
	}
}

func TestBrokenBrickStaysBroken(t *testing.T) {
	g, _, _ := startedGame(t)

	if _, _, ok := g.Grid.Hit(40, 12); !ok {
		t.Fatal("Expected first hit")
	}
	if _, _, ok := g.Grid.Hit(40, 12); ok {
		t.Fatal("Expected second hit on same cell to miss")
	}
	if g.Grid.Active != 14 {
		t.Errorf("Expected active 14, got %d", g.Grid.Active)
	}
}

// TestPaddleBounceCenter covers a dead-center paddle strike
func TestPaddleBounceCenter(t *testing.T) {
	g, _, sched := startedGame(t)

	g.Ball.X = g.Paddle.CenterX()
	g.Ball.Y = 385
	g.Ball.DX, g.Ball.DY = 3, 8
	g.Frame()

	if g.Ball.DX != 0 {
		t.Errorf("Expected dx 0 at paddle center, got %g", g.Ball.DX)
	}
	if g.Ball.DY != -8 {
		t.Errorf("Expected dy -8, got %g", g.Ball.DY)
	}
	if g.State() != StateRunning || !sched.armed {
		t.Error("Expected the game to continue after a paddle bounce")
	}
	if g.Ball.Y != 377 {
		t.Errorf("Expected ball moved up to 377, got %g", g.Ball.Y)
	}
}

func TestPaddleBounceAngle(t *testing.T) {
	g, _, _ := startedGame(t)

	// 50 units right of center: 50 * 20 / 125 = 8
	g.Ball.X = g.Paddle.CenterX() + 50
	g.Ball.Y = 385
	g.Ball.DX, g.Ball.DY = 0, 8
	g.Frame()

	if g.Ball.DX != 8 {
		t.Errorf("Expected dx 8, got %g", g.Ball.DX)
	}
	if g.Ball.DY != -8 {
		t.Errorf("Expected dy -8, got %g", g.Ball.DY)
	}
}

// TestMissEndsGame verifies the loss path applies the final move then halts
func TestMissEndsGame(t *testing.T) {
	g, surf, sched := startedGame(t)

	g.Ball.X, g.Ball.Y = 20, 385
	g.Ball.DX, g.Ball.DY = 0, 8
	g.Frame()

	if g.Ball.Y != 393 {
		t.Errorf("Expected final move applied (y=393), got %g", g.Ball.Y)
	}
	if g.State() != StateStopped || g.Outcome() != OutcomeLoss {
		t.Errorf("Expected stopped/loss, got %v/%v", g.State(), g.Outcome())
	}
	if sched.armed {
		t.Error("Expected scheduling cancelled")
	}
	if len(surf.texts) == 0 || surf.texts[len(surf.texts)-1] != MessageLoss {
		t.Errorf("Expected %q overlay, got %v", MessageLoss, surf.texts)
	}
	if surf.strokes != 1 {
		t.Errorf("Expected result box, got %d strokes", surf.strokes)
	}
}

// TestWinHaltsImmediately verifies no updates happen once the grid is clear
func TestWinHaltsImmediately(t *testing.T) {
	g, surf, sched := startedGame(t)

	for i := range g.Grid.Bricks {
		for j := range g.Grid.Bricks[i] {
			g.Grid.Bricks[i][j].Break()
		}
	}
	g.Grid.Active = 0
	x, y := g.Ball.X, g.Ball.Y
	rectsBefore := surf.rects

	g.Frame()

	if g.Outcome() != OutcomeWin || g.State() != StateStopped {
		t.Fatalf("Expected win, got %v/%v", g.Outcome(), g.State())
	}
	if g.Ball.X != x || g.Ball.Y != y {
		t.Errorf("Expected ball frozen at (%g, %g), got (%g, %g)", x, y, g.Ball.X, g.Ball.Y)
	}
	if sched.armed {
		t.Error("Expected scheduling cancelled")
	}
	// Only the paddle is drawn; bricks are skipped
	if surf.rects-rectsBefore != 1 {
		t.Errorf("Expected only the paddle drawn, got %d rects", surf.rects-rectsBefore)
	}
	if surf.texts[len(surf.texts)-1] != MessageWin {
		t.Errorf("Expected %q, got %v", MessageWin, surf.texts)
	}
}

// TestWinAfterLastBrick verifies the frame that breaks the last brick keeps
// running and the following frame halts before the ball moves
func TestWinAfterLastBrick(t *testing.T) {
	g, _, sched := startedGame(t)

	for i := range g.Grid.Bricks {
		for j := range g.Grid.Bricks[i] {
			if i != 0 || j != 0 {
				g.Grid.Bricks[i][j].Break()
			}
		}
	}
	g.Grid.Active = 1

	// Cell (0, 0) spans x in [0, 80), y in [0, 25)
	g.Ball.X, g.Ball.Y = 40, 20
	g.Ball.DX, g.Ball.DY = 0, 4

	g.Frame()
	if g.Grid.Active != 0 || g.Grid.Bricks[0][0].Visible {
		t.Fatalf("Expected the last brick broken, got %d active", g.Grid.Active)
	}
	if g.State() != StateRunning || g.Outcome() != OutcomeNone {
		t.Fatalf("Expected the breaking frame to keep running, got %v/%v", g.State(), g.Outcome())
	}
	if g.Ball.DY != -4 || g.Ball.Y != 16 {
		t.Errorf("Expected ball reflected to y 16 with dy -4, got y %g dy %g", g.Ball.Y, g.Ball.DY)
	}

	x, y := g.Ball.X, g.Ball.Y
	g.Frame()
	if g.State() != StateStopped || g.Outcome() != OutcomeWin {
		t.Fatalf("Expected win on the next frame, got %v/%v", g.State(), g.Outcome())
	}
	if g.Ball.X != x || g.Ball.Y != y {
		t.Errorf("Expected ball frozen at (%g, %g), got (%g, %g)", x, y, g.Ball.X, g.Ball.Y)
	}
	if sched.armed {
		t.Error("Expected scheduling cancelled")
	}
}

func TestSideWallReflection(t *testing.T) {
	g, _, _ := startedGame(t)

	g.Ball.X, g.Ball.Y = 388, 200
	g.Ball.DX, g.Ball.DY = 5, 1
	g.Frame()

	if g.Ball.DX != -5 {
		t.Errorf("Expected dx -5, got %g", g.Ball.DX)
	}
	if g.Ball.X != 383 {
		t.Errorf("Expected x 383, got %g", g.Ball.X)
	}

	g.Ball.X = 12
	g.Ball.DX = -5
	g.Frame()
	if g.Ball.DX != 5 {
		t.Errorf("Expected dx 5 after left wall, got %g", g.Ball.DX)
	}
}

func TestTopWallReflection(t *testing.T) {
	g, _, _ := startedGame(t)

	// Clear the brick under the ball so only the wall reflects
	g.Grid.Bricks[0][2].Break()
	g.Grid.Active--
	g.Ball.X, g.Ball.Y = 200, 12
	g.Ball.DX, g.Ball.DY = 0, -4
	g.Frame()

	if g.Ball.DY != 4 {
		t.Errorf("Expected dy 4, got %g", g.Ball.DY)
	}
	if g.Ball.Y != 16 {
		t.Errorf("Expected y 16, got %g", g.Ball.Y)
	}
}

// TestPaddleClamp verifies the paddle stays within [-w/2, fieldWidth-w/2]
func TestPaddleClamp(t *testing.T) {
	g, _, _ := startedGame(t)
	lo := -g.Paddle.Width / 2
	hi := g.Field().Width - g.Paddle.Width/2

	g.Handle(KeyDown(KeyLeft))
	for i := 0; i < 50; i++ {
		g.Ball.X, g.Ball.Y, g.Ball.DX, g.Ball.DY = 200, 200, 0, 0
		g.Frame()
		if g.Paddle.X < lo || g.Paddle.X > hi {
			t.Fatalf("Paddle out of range: %g", g.Paddle.X)
		}
	}
	if g.Paddle.X != lo {
		t.Errorf("Expected paddle pinned at %g, got %g", lo, g.Paddle.X)
	}

	g.Handle(KeyUp(KeyLeft))
	g.Handle(KeyDown(KeyRight))
	for i := 0; i < 60; i++ {
		g.Ball.X, g.Ball.Y, g.Ball.DX, g.Ball.DY = 200, 200, 0, 0
		g.Frame()
		if g.Paddle.X < lo || g.Paddle.X > hi {
			t.Fatalf("Paddle out of range: %g", g.Paddle.X)
		}
	}
	if g.Paddle.X != hi {
		t.Errorf("Expected paddle pinned at %g, got %g", hi, g.Paddle.X)
	}
}

func TestBothDirectionsSameFrame(t *testing.T) {
	g, _, _ := startedGame(t)
	x := g.Paddle.X

	g.Handle(KeyDown(KeyLeft))
	g.Handle(KeyDown(KeyRight))
	g.Frame()

	if g.Paddle.X != x {
		t.Errorf("Expected left and right to cancel, moved from %g to %g", x, g.Paddle.X)
	}
}

// TestStopResets covers a stop command issued mid-game
func TestStopResets(t *testing.T) {
	g, surf, sched := startedGame(t)

	g.Handle(KeyDown(KeyLeft))
	for i := 0; i < 5; i++ {
		g.Frame()
	}
	g.Grid.Hit(40, 12)
	clears := surf.clears

	g.Handle(Stop())

	if sched.armed {
		t.Error("Expected scheduling cancelled")
	}
	if g.State() != StateStopped {
		t.Errorf("Expected stopped, got %v", g.State())
	}
	if g.Grid.Active != 15 || g.Ball.Y != 200 || g.Paddle.X != (400-125)/2.0 {
		t.Errorf("Expected initial layout, got active=%d ballY=%g paddleX=%g", g.Grid.Active, g.Ball.Y, g.Paddle.X)
	}
	if surf.clears != clears+1 {
		t.Errorf("Expected one static frame, got %d", surf.clears-clears)
	}
	if g.Outcome() != OutcomeNone {
		t.Errorf("Expected no outcome after stop, got %v", g.Outcome())
	}
}

func TestControlsIgnoredInWrongState(t *testing.T) {
	g, _, sched := newTestGame(t, DefaultConfig())

	g.Handle(Stop())
	if sched.cancels != 0 {
		t.Error("Stop while stopped must be ignored")
	}

	g.Handle(Start())
	g.Frame()
	frames := g.Frames()
	g.Handle(Start())
	if g.Frames() != frames || sched.requests != 1 {
		t.Error("Start while running must be ignored")
	}
}

func TestRestartAfterLoss(t *testing.T) {
	g, _, sched := startedGame(t)
	g.Ball.X, g.Ball.Y, g.Ball.DY = 20, 385, 8
	g.Frame()
	if g.Outcome() != OutcomeLoss {
		t.Fatalf("Expected loss, got %v", g.Outcome())
	}

	g.Handle(Start())
	if g.State() != StateRunning || !sched.armed {
		t.Fatal("Expected restart to run")
	}
	if g.Outcome() != OutcomeNone || g.Ball.Y != 200 {
		t.Errorf("Expected fresh game, outcome=%v ballY=%g", g.Outcome(), g.Ball.Y)
	}
}

// TestActiveCountNonIncreasing plays a long run and checks monotonic progress
func TestActiveCountNonIncreasing(t *testing.T) {
	g, _, sched := startedGame(t)
	prev := g.Grid.Active

	for i := 0; i < 5000 && sched.armed; i++ {
		// Track the ball so the run lasts
		g.Paddle.X = g.Ball.X - g.Paddle.Width/2 + 7
		g.Frame()
		if g.Grid.Active > prev {
			t.Fatalf("Active count increased from %d to %d", prev, g.Grid.Active)
		}
		prev = g.Grid.Active
	}
}

func TestObserverReceivesEffects(t *testing.T) {
	var got []Effect
	obs := ObserverFunc(func(e Effect, _ *Game) { got = append(got, e) })
	g, err := New(DefaultConfig(), &recordSurface{}, &stubScheduler{}, WithObserver(obs))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	g.Handle(Start())
	g.Ball.X, g.Ball.Y, g.Ball.DY = 40, 12, -4
	g.Frame()
	g.Handle(Stop())

	want := []Effect{EffectStarted, EffectBrickHit, EffectStopped}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Effect %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

// TestRenderKeepsResultOverlay verifies a redraw after a finished run shows the message again
func TestRenderKeepsResultOverlay(t *testing.T) {
	g, surf, _ := startedGame(t)
	g.Ball.X, g.Ball.Y = 20, 385
	g.Ball.DX, g.Ball.DY = 0, 8
	g.Frame()

	surf.texts = nil
	surf.strokes = 0
	g.Render()
	if len(surf.texts) != 1 || surf.texts[0] != MessageLoss {
		t.Errorf("Expected %q after redraw, got %v", MessageLoss, surf.texts)
	}
	if surf.strokes != 1 {
		t.Errorf("Expected result box after redraw, got %d strokes", surf.strokes)
	}

	g.Handle(Start())
	surf.texts = nil
	g.Render()
	if len(surf.texts) != 0 {
		t.Errorf("Expected no overlay while running, got %v", surf.texts)
	}
}
