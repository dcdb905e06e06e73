// Package response computes what the editor view shows: the analytic
// magnitude response of the current settings and the left and right
// analyzer paths. It runs on the UI goroutine and never touches the
// chains used for audio.
package response

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/analyzer"
	"github.com/cwbudde/algo-eq/eq/chain"
	"github.com/cwbudde/algo-eq/eq/geom"
	"github.com/cwbudde/algo-eq/eq/params"
	"github.com/cwbudde/algo-eq/eq/plugin"
)

const (
	// RefreshRate is the UI tick frequency in Hz.
	RefreshRate = 60

	MinFrequency = analyzer.MinFrequency
	MaxFrequency = analyzer.MaxFrequency

	// MinDB and MaxDB bound the gain axis of the response curve.
	MinDB = -24.0
	MaxDB = 24.0

	// magnitudeFloor is the dB value reported for a zero magnitude.
	magnitudeFloor = -100.0
)

var ErrNilProcessor = errors.New("response: processor is nil")

// Option configures an Engine.
type Option func(*config)

type config struct {
	fftSize  int
	analyzer []analyzer.Option
	log      logrus.FieldLogger
}

// WithFFTSize sets the analyzer FFT size.
func WithFFTSize(n int) Option {
	return func(c *config) { c.fftSize = n }
}

// WithAnalyzerOptions forwards options to both FFT data generators.
func WithAnalyzerOptions(opts ...analyzer.Option) Option {
	return func(c *config) { c.analyzer = append(c.analyzer, opts...) }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Frame is everything one repaint needs.
type Frame struct {
	Bounds          geom.Rect
	Response        geom.Path
	Left            geom.Path
	Right           geom.Path
	AnalyzerEnabled bool
}

// Engine keeps a display chain in sync with the parameters and drives the
// per-channel analyzer producers.
type Engine struct {
	proc     *plugin.Processor
	store    *params.Store
	analyzer *params.Parameter
	display  *chain.MonoChain
	detector *params.ChangeDetector
	left     *analyzer.PathProducer
	right    *analyzer.PathProducer
	log      logrus.FieldLogger

	sampleRate float64
}

// NewEngine returns an engine reading parameters and analyzer samples
// from proc.
func NewEngine(proc *plugin.Processor, opts ...Option) (*Engine, error) {
	if proc == nil {
		return nil, ErrNilProcessor
	}

	cfg := config{
		fftSize: analyzer.DefaultFFTSize,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	aopts := append([]analyzer.Option{analyzer.WithLogger(cfg.log)}, cfg.analyzer...)
	left, err := analyzer.NewPathProducer(proc.Collector(0), cfg.fftSize, aopts...)
	if err != nil {
		return nil, fmt.Errorf("response: left analyzer: %w", err)
	}
	right, err := analyzer.NewPathProducer(proc.Collector(1), cfg.fftSize, aopts...)
	if err != nil {
		return nil, fmt.Errorf("response: right analyzer: %w", err)
	}

	store := proc.Params()
	bypass, _ := store.Lookup(params.AnalyzerBypass)

	e := &Engine{
		proc:     proc,
		store:    store,
		analyzer: bypass,
		display:  chain.NewMonoChain(),
		left:     left,
		right:    right,
		log:      cfg.log.WithField("component", "response"),
	}
	e.detector = params.NewChangeDetector(store)
	e.detector.ClearDirty()
	e.sampleRate = proc.SampleRate()
	e.display.Prepare(e.sampleRate, 1)
	e.display.Apply(params.Snapshot(store), e.sampleRate)

	e.log.WithFields(logrus.Fields{
		"fft_size":    cfg.fftSize,
		"sample_rate": e.sampleRate,
	}).Debug("Response engine created")

	return e, nil
}

// Tick runs one UI step for a view of the given bounds: the analyzers
// consume pending audio when enabled, and the display chain picks up
// parameter or sample rate changes.
func (e *Engine) Tick(bounds geom.Rect) {
	sr := e.proc.SampleRate()

	if e.AnalyzerEnabled() {
		e.left.Process(bounds, sr)
		e.right.Process(bounds, sr)
	}

	changed := e.detector.TestAndClear()
	if sr != e.sampleRate {
		e.sampleRate = sr
		e.display.Prepare(sr, 1)
		changed = true
	}
	if changed {
		e.display.Apply(params.Snapshot(e.store), sr)
	}
}

// AnalyzerEnabled reports whether the analyzer is switched on.
func (e *Engine) AnalyzerEnabled() bool {
	return e.analyzer == nil || !e.analyzer.Bool()
}

// Magnitudes returns the response in dB for width pixels spread
// logarithmically over MinFrequency..MaxFrequency.
func (e *Engine) Magnitudes(width int) []float64 {
	if width <= 0 {
		return nil
	}
	mags := make([]float64, width)
	for i := range mags {
		freq := core.MapToLog10(float64(i)/float64(width), MinFrequency, MaxFrequency)
		mags[i] = core.GainToDecibels(e.display.MagnitudeForFrequency(freq, e.sampleRate), magnitudeFloor)
	}
	return mags
}

// MagnitudeAt returns the response in dB at freq.
func (e *Engine) MagnitudeAt(freq float64) float64 {
	return core.GainToDecibels(e.display.MagnitudeForFrequency(freq, e.sampleRate), magnitudeFloor)
}

// ResponsePath maps the response onto bounds, one point per pixel column,
// with MinDB at the bottom and MaxDB at the top. Values outside the range
// are not clamped.
func (e *Engine) ResponsePath(bounds geom.Rect) geom.Path {
	mags := e.Magnitudes(int(bounds.Width))
	if len(mags) == 0 {
		return nil
	}

	var path geom.Path
	path.StartNewSubPath(geom.Point{X: bounds.X, Y: gainToY(mags[0], bounds)})
	for i := 1; i < len(mags); i++ {
		path.LineTo(geom.Point{X: bounds.X + float64(i), Y: gainToY(mags[i], bounds)})
	}
	return path
}

// Frame bundles the current response and the newest analyzer paths.
func (e *Engine) Frame(bounds geom.Rect) Frame {
	f := Frame{
		Bounds:          bounds,
		Response:        e.ResponsePath(bounds),
		AnalyzerEnabled: e.AnalyzerEnabled(),
	}
	if f.AnalyzerEnabled {
		f.Left = e.left.Path()
		f.Right = e.right.Path()
	}
	return f
}

// Run ticks at RefreshRate and hands each frame to fn until ctx is done.
func (e *Engine) Run(ctx context.Context, bounds geom.Rect, fn func(Frame)) error {
	ticker := time.NewTicker(time.Second / RefreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick(bounds)
			if fn != nil {
				fn(e.Frame(bounds))
			}
		}
	}
}

// Analyzers returns the left and right path producers.
func (e *Engine) Analyzers() (left, right *analyzer.PathProducer) {
	return e.left, e.right
}

// Close stops listening for parameter changes.
func (e *Engine) Close() {
	e.detector.Close()
	e.log.Debug("Response engine closed")
}

func gainToY(db float64, bounds geom.Rect) float64 {
	if math.IsInf(db, -1) {
		db = magnitudeFloor
	}
	return core.Map(db, MinDB, MaxDB, bounds.Bottom(), bounds.Y)
}
