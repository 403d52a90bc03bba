package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tomz197/breakpong/internal/audio"
	"github.com/tomz197/breakpong/internal/config"
	"github.com/tomz197/breakpong/internal/draw"
	"github.com/tomz197/breakpong/internal/input"
	"github.com/tomz197/breakpong/internal/logging"
	"github.com/tomz197/breakpong/internal/loop"
)

// defaultLogFile receives logs in local play, where the terminal is the game surface.
const defaultLogFile = "breakpong.log"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("game", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	printConfig := fs.Bool("print-config", false, "print the effective configuration and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return err
	}
	if *printConfig {
		return config.Dump(cfg, os.Stdout)
	}

	if cfg.Log.File == "" {
		cfg.Log.File = defaultLogFile
	}
	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	player, err := audio.New(cfg.Audio)
	if err != nil {
		logger.WithError(err).Warn("audio unavailable, playing silently")
	}
	defer player.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithField("renderer", cfg.Render.Renderer).Info("starting local game")
	switch cfg.Render.Renderer {
	case config.RendererTcell:
		err = runTcell(ctx, cfg, logger, player)
	default:
		err = runANSI(ctx, cfg, logger, player)
	}
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		logger.WithError(err).Error("game ended with error")
	}
	return err
}

// runANSI plays on the raw terminal with the half-block canvas renderer.
func runANSI(ctx context.Context, cfg config.Config, logger *logrus.Logger, player audio.Player) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	draw.HideCursor(os.Stdout)
	defer draw.ShowCursor(os.Stdout)
	defer draw.ClearScreen(os.Stdout)

	surface := draw.NewCanvasSurface(os.Stdout, cfg.Game.Width, cfg.Game.Height, draw.SurfaceOptions{
		MaxCols: cfg.Render.MaxCols,
		MaxRows: cfg.Render.MaxRows,
	})
	stream := input.StartStream(bufio.NewReader(os.Stdin), cfg.Input.KeyHold)

	runner, err := loop.NewRunner(cfg.Game, surface, stream, loop.Options{
		FPS:    cfg.Render.FPS,
		Audio:  player,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

// runTcell plays through a tcell screen, with colors.
func runTcell(ctx context.Context, cfg config.Config, logger *logrus.Logger, player audio.Player) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	surface := draw.NewScreenSurface(screen, cfg.Game.Width, cfg.Game.Height)
	stream := input.StartScreenStream(screen, cfg.Input.KeyHold)

	runner, err := loop.NewRunner(cfg.Game, surface, stream, loop.Options{
		FPS:    cfg.Render.FPS,
		Audio:  player,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}
