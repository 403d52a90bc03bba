package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/tomz197/breakpong/internal/config"
	"github.com/tomz197/breakpong/internal/draw"
	"github.com/tomz197/breakpong/internal/input"
	applog "github.com/tomz197/breakpong/internal/logging"
	"github.com/tomz197/breakpong/internal/loop"
	"github.com/tomz197/breakpong/internal/session"
)

func main() {
	fs := pflag.NewFlagSet("ssh", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, closer, err := applog.Setup(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging error: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		logger.WithError(workErr).Warn("failed to get working directory")
	}
	logger.WithFields(logrus.Fields{
		"host":         cfg.SSH.Host,
		"port":         cfg.SSH.Port,
		"host_key":     cfg.SSH.HostKeyPath,
		"max_sessions": cfg.SSH.MaxSessions,
		"working_dir":  workingDir,
	}).Info("ssh config")

	registry := session.NewRegistry(cfg.SSH.MaxSessions)
	games := &gameHandler{cfg: cfg, registry: registry, logger: logger}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port)),
		wish.WithMiddleware(
			games.middleware,
			activeterm.Middleware(),
			logging.MiddlewareWithLogger(logger),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if cfg.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(cfg.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.WithError(err).Fatal("failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Infof("Starting SSH server on %s", net.JoinHostPort(cfg.SSH.Host, cfg.SSH.Port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.WithError(err).Fatal("server error")
		}
	}()

	<-done
	logger.WithField("sessions", registry.Count()).Info("Shutting down server...")

	// Notify players and wait for them to disconnect
	if left := registry.Shutdown(cfg.SSH.ShutdownTimeout); left > 0 {
		logger.WithField("sessions", left).Warn("sessions still connected after shutdown timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("shutdown error")
	}
}

// gameHandler runs an independent game for every SSH session.
type gameHandler struct {
	cfg      config.Config
	registry *session.Registry
	logger   *logrus.Logger
}

// middleware handles SSH sessions and runs the game loop.
func (g *gameHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		handle, err := g.registry.Register(sess.User())
		if err != nil {
			if errors.Is(err, session.ErrFull) {
				fmt.Fprintln(sess, "The server is full. Please try again in a moment.")
			}
			g.logger.WithError(err).WithField("user", sess.User()).Warn("session rejected")
			return
		}
		defer g.registry.Unregister(handle.ID)

		log := g.logger.WithFields(logrus.Fields{
			"session": handle.ID,
			"user":    sess.User(),
		})
		log.WithFields(logrus.Fields{
			"terminal": pty.Term,
			"size":     fmt.Sprintf("%dx%d", pty.Window.Width, pty.Window.Height),
		}).Info("new game session")

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		if err := g.play(sess, handle, sizeTracker.getSize, log); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("game error")
		}

		log.WithField("duration", time.Since(handle.Started).Round(time.Second)).Info("session ended")
		next(sess)
	}
}

// play runs one game on the session's terminal until it ends.
func (g *gameHandler) play(sess ssh.Session, handle *session.Handle, sizeFunc draw.TermSizeFunc, log *logrus.Entry) error {
	draw.HideCursor(sess)
	defer draw.ShowCursor(sess)
	defer draw.ClearScreen(sess)

	surface := draw.NewCanvasSurface(sess, g.cfg.Game.Width, g.cfg.Game.Height, draw.SurfaceOptions{
		TermSizeFunc: sizeFunc,
		MaxCols:      g.cfg.Render.MaxCols,
		MaxRows:      g.cfg.Render.MaxRows,
	})
	stream := input.StartStream(bufio.NewReader(sess), g.cfg.Input.KeyHold)

	runner, err := loop.NewRunner(g.cfg.Game, surface, stream, loop.Options{
		FPS:            g.cfg.Render.FPS,
		IdleTimeout:    g.cfg.SSH.IdleTimeout,
		ShutdownNotice: g.cfg.SSH.ShutdownNotice,
		Events:         handle.Events,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	return runner.Run(sess.Context())
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
