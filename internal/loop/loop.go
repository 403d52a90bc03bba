// Package loop drives a game at a fixed display rate: Input → Update → Draw.
package loop

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tomz197/breakpong/internal/audio"
	"github.com/tomz197/breakpong/internal/game"
	"github.com/tomz197/breakpong/internal/input"
	"github.com/tomz197/breakpong/internal/session"
)

// Presenter is a game surface that can be flushed to a display.
type Presenter interface {
	game.Surface
	SetStatus(text string)
	Present() error
	// Resized returns true when the display size changed and the scene must be redrawn.
	Resized() bool
}

// Options configures a Runner.
type Options struct {
	FPS            int
	IdleTimeout    time.Duration        // 0 disables the idle disconnect
	ShutdownNotice time.Duration        // How long to show a shutdown notice before leaving
	Events         <-chan session.Event // Server notices; nil for local play
	Audio          audio.Player         // Defaults to audio.Nop
	Logger         logrus.FieldLogger   // Defaults to the logrus standard logger
	Now            func() time.Time     // Clock; defaults to time.Now
}

// Runner owns one game and feeds it input and display frames.
type Runner struct {
	game     *game.Game
	sched    *FrameScheduler
	controls *Controls
	surface  Presenter
	source   input.Source
	opts     Options
	log      logrus.FieldLogger

	left, right bool // Directions as last reported to the game

	lastActivity time.Time
	shutdownAt   time.Time // Zero until a shutdown notice arrives
}

// exitReason tells why step ended the loop.
type exitReason int

const (
	keepRunning exitReason = iota
	exitQuit
	exitIdle
	exitShutdown
	exitClosed
)

func (r exitReason) String() string {
	switch r {
	case exitQuit:
		return "quit"
	case exitIdle:
		return "idle"
	case exitShutdown:
		return "shutdown"
	case exitClosed:
		return "closed"
	default:
		return "running"
	}
}

// NewRunner creates a game on surface and a runner driving it from source.
// The initial static frame is drawn but not yet presented.
func NewRunner(cfg game.Config, surface Presenter, source input.Source, opts Options) (*Runner, error) {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.ShutdownNotice <= 0 {
		opts.ShutdownNotice = DefaultShutdownNotice
	}
	if opts.Audio == nil {
		opts.Audio = audio.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Runner{
		sched:    &FrameScheduler{},
		controls: NewControls(),
		surface:  surface,
		source:   source,
		opts:     opts,
		log:      opts.Logger,
	}
	r.lastActivity = opts.Now()

	g, err := game.New(cfg, surface, r.sched, game.WithObserver(game.ObserverFunc(r.observe)))
	if err != nil {
		return nil, err
	}
	r.game = g
	r.updateStatus(r.lastActivity)
	return r, nil
}

// Game returns the game being driven.
func (r *Runner) Game() *game.Game {
	return r.game
}

// Run drives the game until the player quits, the input closes, the session
// idles out or is shut down, or ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	frameTime := time.Second / time.Duration(r.opts.FPS)
	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		reason, err := r.step()
		if err != nil {
			return err
		}
		if reason != keepRunning {
			r.log.WithField("reason", reason.String()).Debug("loop ended")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// step runs one display frame.
func (r *Runner) step() (exitReason, error) {
	now := r.opts.Now()

	// ===== INPUT PHASE =====
	in := r.source.Read()
	if in.Quit {
		return exitQuit, nil
	}
	if in.Left || in.Right || in.Start || in.Stop || len(in.Pressed) > 0 {
		r.lastActivity = now
	}
	if reason := r.processSessionEvents(now); reason != keepRunning {
		return reason, nil
	}
	if reason := r.checkDeadlines(now); reason != keepRunning {
		return reason, nil
	}

	// ===== UPDATE PHASE =====
	r.dispatch(in)
	if r.surface.Resized() && !r.sched.Armed() {
		r.game.Render()
	}
	if r.sched.Armed() {
		r.game.Frame()
	}

	// ===== DRAW PHASE =====
	r.controls.Sync(r.game.State())
	r.updateStatus(now)
	return keepRunning, r.surface.Present()
}

// dispatch turns input into game events: direction changes become key
// down/up events, and a control is only honoured while it is visible.
func (r *Runner) dispatch(in input.Input) {
	if in.Left != r.left {
		r.left = in.Left
		r.game.Handle(keyEvent(game.KeyLeft, in.Left))
	}
	if in.Right != r.right {
		r.right = in.Right
		r.game.Handle(keyEvent(game.KeyRight, in.Right))
	}

	switch {
	case in.Start && r.controls.StartVisible():
		r.game.Handle(game.Start())
	case in.Stop && r.controls.StopVisible():
		r.game.Handle(game.Stop())
		r.source.Reset()
	}
	r.controls.Sync(r.game.State())
}

func keyEvent(k game.Key, down bool) game.Event {
	if down {
		return game.KeyDown(k)
	}
	return game.KeyUp(k)
}

// processSessionEvents handles notices from the server.
func (r *Runner) processSessionEvents(now time.Time) exitReason {
	if r.opts.Events == nil {
		return keepRunning
	}
	for {
		select {
		case ev, ok := <-r.opts.Events:
			if !ok {
				return exitClosed
			}
			if ev.Type == session.EventShutdown && r.shutdownAt.IsZero() {
				r.shutdownAt = now.Add(r.opts.ShutdownNotice)
				r.log.Info("shutdown notice received")
			}
		default:
			return keepRunning
		}
	}
}

// checkDeadlines ends the loop once a shutdown notice or the idle timeout expires.
func (r *Runner) checkDeadlines(now time.Time) exitReason {
	if !r.shutdownAt.IsZero() && !now.Before(r.shutdownAt) {
		return exitShutdown
	}
	if r.opts.IdleTimeout > 0 && now.Sub(r.lastActivity) >= r.opts.IdleTimeout {
		r.log.WithField("idle", r.opts.IdleTimeout).Info("disconnecting idle session")
		return exitIdle
	}
	return keepRunning
}

// observe reacts to game effects with sound and log entries.
func (r *Runner) observe(e game.Effect, g *game.Game) {
	fields := logrus.Fields{
		"effect": e.String(),
		"frame":  g.Frames(),
		"bricks": g.Grid.Active,
	}

	switch e {
	case game.EffectBrickHit:
		r.opts.Audio.Play(audio.SoundBrick)
	case game.EffectPaddleBounce:
		r.opts.Audio.Play(audio.SoundPaddle)
	case game.EffectWallBounce:
		r.opts.Audio.Play(audio.SoundWall)
	case game.EffectWin:
		r.opts.Audio.Play(audio.SoundWin)
	case game.EffectLoss:
		r.opts.Audio.Play(audio.SoundLoss)
	}

	switch e {
	case game.EffectStarted, game.EffectStopped, game.EffectWin, game.EffectLoss:
		r.log.WithFields(fields).Info("game " + e.String())
	default:
		r.log.WithFields(fields).Debug("game effect")
	}
}
