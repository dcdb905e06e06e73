// Package analyzer turns blocks of audio samples into decibel spectra and
// the spectra into renderable log-frequency paths.
//
// Everything in this package runs on the analysis goroutine. The only
// hand-off from the audio goroutine is the fifo.SampleCollector drained by
// PathProducer.
package analyzer

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/buffer"
	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/window"
	"github.com/cwbudde/algo-eq/eq/fifo"
)

const (
	DefaultFFTSize       = 2048
	DefaultFloor         = -48.0
	DefaultQueueCapacity = 8
	MinQueueCapacity     = 5
)

var (
	ErrInvalidFFTSize       = errors.New("analyzer: fft size must be a power of two >= 4")
	ErrInvalidQueueCapacity = errors.New("analyzer: fft queue capacity too small")
	ErrInvalidHopSize       = errors.New("analyzer: hop size must be > 0")
	ErrInvalidFloor         = errors.New("analyzer: floor must be < 0 dB")
)

// Option configures an FFTDataGenerator.
type Option func(*config)

type config struct {
	floor         float64
	queueCapacity int
	window        window.Type
	hop           int // 0 selects half the FFT size
	log           logrus.FieldLogger
}

func defaultConfig() config {
	return config{
		floor:         DefaultFloor,
		queueCapacity: DefaultQueueCapacity,
		window:        window.TypeBlackmanHarris4Term,
		log:           logrus.StandardLogger(),
	}
}

// WithFloor sets the negative-infinity value of the dB blocks.
func WithFloor(db float64) Option {
	return func(c *config) { c.floor = db }
}

// WithQueueCapacity sets how many dB blocks may wait for the path
// generator.
func WithQueueCapacity(n int) Option {
	return func(c *config) { c.queueCapacity = n }
}

// WithWindow selects the analysis window.
func WithWindow(t window.Type) Option {
	return func(c *config) { c.window = t }
}

// WithHopSize sets the minimum number of new samples between two frames.
// The default is half the FFT size, so consecutive frames overlap by 50%.
// A hop of 1 produces a frame for every pushed block once the rolling
// buffer has filled.
func WithHopSize(n int) Option {
	return func(c *config) {
		if n <= 0 {
			c.hop = -1
			return
		}
		c.hop = n
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// FFTDataGenerator keeps a rolling buffer of the last FFTSize samples and
// converts it into blocks of FFTSize/2 magnitudes in dB.
type FFTDataGenerator struct {
	cfg     config
	fftSize int

	win     []float64
	plan    *algofft.Plan[complex128]
	rolling *buffer.Rolling

	frame  []float64
	in     []complex128
	out    []complex128
	re, im []float64
	mags   []float64

	sinceFrame int
	blocks     *fifo.BlockFifo
	dropped    uint64
}

// NewFFTDataGenerator returns a generator for fftSize-point transforms.
func NewFFTDataGenerator(fftSize int, opts ...Option) (*FFTDataGenerator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if fftSize < 4 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFFTSize, fftSize)
	}
	if cfg.queueCapacity < MinQueueCapacity {
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidQueueCapacity, cfg.queueCapacity, MinQueueCapacity)
	}
	switch {
	case cfg.hop < 0:
		return nil, ErrInvalidHopSize
	case cfg.hop == 0:
		cfg.hop = fftSize / 2
	}
	if !(cfg.floor < 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFloor, cfg.floor)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer: init fft plan: %w", err)
	}

	numBins := fftSize / 2
	blocks, err := fifo.NewBlockFifo(cfg.queueCapacity, numBins)
	if err != nil {
		return nil, err
	}

	g := &FFTDataGenerator{
		cfg:     cfg,
		fftSize: fftSize,
		win:     window.Generate(cfg.window, fftSize, window.WithNormalize()),
		plan:    plan,
		rolling: buffer.NewRolling(fftSize),
		frame:   make([]float64, fftSize),
		in:      make([]complex128, fftSize),
		out:     make([]complex128, fftSize),
		re:      make([]float64, numBins),
		im:      make([]float64, numBins),
		mags:    make([]float64, numBins),
		blocks:  blocks,
	}

	cfg.log.WithFields(logrus.Fields{
		"component": "analyzer",
		"fft_size":  fftSize,
		"floor_db":  cfg.floor,
		"window":    window.Info(cfg.window).Name,
	}).Debug("FFT data generator created")

	return g, nil
}

// Push appends block to the rolling buffer and produces a frame once the
// buffer holds FFTSize real samples and at least the hop size of new
// samples arrived since the previous frame.
func (g *FFTDataGenerator) Push(block []float64) {
	if len(block) == 0 {
		return
	}
	g.rolling.Push(block)
	g.sinceFrame += len(block)

	if g.rolling.Full() && g.sinceFrame >= g.cfg.hop {
		g.sinceFrame = 0
		g.Produce(g.rolling.Samples())
	}
}

// Produce windows samples, transforms them and queues one dB block.
// samples must hold FFTSize values. A block that finds the queue full is
// dropped.
func (g *FFTDataGenerator) Produce(samples []float64) {
	copy(g.frame, samples)
	if err := window.ApplyCoefficientsInPlace(g.frame, g.win); err != nil {
		panic(err)
	}

	for i, v := range g.frame {
		g.in[i] = complex(v, 0)
	}
	if err := g.plan.Forward(g.out, g.in); err != nil {
		panic(fmt.Sprintf("analyzer: fft forward: %v", err))
	}

	numBins := len(g.mags)
	for k := 0; k < numBins; k++ {
		g.re[k] = real(g.out[k])
		g.im[k] = imag(g.out[k])
	}
	vecmath.Magnitude(g.mags, g.re, g.im)

	scale := 1 / float64(numBins)
	for k, m := range g.mags {
		g.mags[k] = core.GainToDecibels(m*scale, g.cfg.floor)
	}

	if !g.blocks.Push(g.mags) {
		g.dropped++
	}
}

// GetFFTData copies the oldest queued dB block into out.
func (g *FFTDataGenerator) GetFFTData(out []float64) bool {
	return g.blocks.Pop(out)
}

// NumAvailable returns the number of queued dB blocks.
func (g *FFTDataGenerator) NumAvailable() int { return g.blocks.Available() }

// FFTSize returns the transform length.
func (g *FFTDataGenerator) FFTSize() int { return g.fftSize }

// NumBins returns the length of a dB block.
func (g *FFTDataGenerator) NumBins() int { return g.fftSize / 2 }

// Floor returns the negative-infinity value of the dB blocks.
func (g *FFTDataGenerator) Floor() float64 { return g.cfg.floor }

// BinWidth returns the frequency spacing of the bins in Hz.
func (g *FFTDataGenerator) BinWidth(sampleRate float64) float64 {
	return sampleRate / float64(g.fftSize)
}

// Rolling exposes the analysis buffer for inspection.
func (g *FFTDataGenerator) Rolling() *buffer.Rolling { return g.rolling }

// Dropped returns the number of dB blocks lost to a full queue.
func (g *FFTDataGenerator) Dropped() uint64 { return g.dropped }

// Reset clears the rolling buffer and discards queued blocks.
func (g *FFTDataGenerator) Reset() {
	g.rolling.Reset()
	g.sinceFrame = 0
	for g.blocks.Pop(g.mags) {
	}
}
