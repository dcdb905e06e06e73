package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/cwbudde/algo-eq/eq/geom"
	"github.com/cwbudde/algo-eq/eq/params"
	"github.com/cwbudde/algo-eq/eq/response"
	"github.com/cwbudde/algo-eq/internal/audio"
	"github.com/cwbudde/algo-eq/internal/tui"
)

// LiveCmd plays a test signal through the EQ in real time. On a terminal
// it opens the editor; otherwise it logs a response summary once a second.
type LiveCmd struct {
	SignalFlags `embed:""`

	Headless bool          `help:"Render against the wall clock instead of the audio device."`
	Duration time.Duration `help:"Stop after this long; 0 runs until interrupted."`
	FFTSize  int           `name:"fft-size" default:"2048" help:"Analyzer FFT size (power of two)."`
	NoTUI    bool          `name:"no-tui" help:"Log summaries even on a terminal."`
}

func (c *LiveCmd) Run(g *Globals) error {
	interactive := !c.NoTUI && term.IsTerminal(int(os.Stdout.Fd()))

	log, closer, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	if interactive && g.LogFile == "" {
		// Log lines would tear the editor's screen.
		log.SetLevel(logrus.ErrorLevel)
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if c.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Duration)
		defer cancel()
	}

	proc, err := g.newProcessor(log)
	if err != nil {
		return err
	}
	defer proc.Close()

	src, err := c.source(g.SampleRate)
	if err != nil {
		return err
	}
	renderer, err := audio.NewRenderer(proc, src, 2)
	if err != nil {
		return err
	}

	var player audio.Player
	if c.Headless {
		player = audio.NewClockPlayer(renderer, g.SampleRate, g.BlockSize, log)
	} else {
		player, err = audio.NewDevicePlayer(renderer, g.SampleRate, g.BlockSize, log)
		if err != nil {
			return err
		}
	}
	defer player.Close()

	engine, err := response.NewEngine(proc, response.WithFFTSize(c.FFTSize), response.WithLogger(log))
	if err != nil {
		return err
	}
	defer engine.Close()

	go func() {
		if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			log.WithError(err).Error("Control loop failed")
		}
	}()

	if err := player.Start(); err != nil {
		return err
	}

	fields := logrus.Fields{
		"component":   "live",
		"signal":      c.Signal,
		"headless":    c.Headless,
		"interactive": interactive,
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		fields["columns"], fields["rows"] = w, h
	}
	log.WithFields(fields).Info("Live session started")

	if interactive {
		return c.runTUI(ctx, engine, proc.Params())
	}
	return c.runSummary(ctx, engine, renderer, log)
}

func (c *LiveCmd) runTUI(ctx context.Context, engine *response.Engine, store *params.Store) error {
	program := tea.NewProgram(tui.NewModel(engine, store), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// summaryBounds is the virtual view the engine renders into when there is
// no terminal to draw on.
var summaryBounds = geom.NewRect(0, 0, 600, 200)

func (c *LiveCmd) runSummary(ctx context.Context, engine *response.Engine, r *audio.Renderer, log logrus.FieldLogger) error {
	left, right := engine.Analyzers()
	ticks := 0
	err := engine.Run(ctx, summaryBounds, func(f response.Frame) {
		ticks++
		if ticks%response.RefreshRate != 0 {
			return
		}
		log.WithFields(logrus.Fields{
			"component":      "live",
			"frames":         r.Frames(),
			"gain_1k_db":     fmt.Sprintf("%.2f", engine.MagnitudeAt(1000)),
			"left_points":    len(f.Left),
			"right_points":   len(f.Right),
			"dropped_blocks": left.Generator().Dropped() + right.Generator().Dropped(),
		}).Info("Live status")
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.WithField("frames", r.Frames()).Info("Live session stopped")
		return nil
	}
	return err
}
