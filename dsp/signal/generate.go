// Package signal generates deterministic test signals, both as one-shot
// slices and as endless streaming sources for live processing.
package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/algo-eq/dsp/core"
)

// ErrUnknownKind is returned by ParseKind for an unrecognised signal name.
var ErrUnknownKind = errors.New("signal: unknown kind")

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// SampleRate returns the generator sample rate in Hz.
func (g *Generator) SampleRate() float64 {
	return g.cfg.SampleRate
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	out := make([]float64, samples)
	g.NewSine(freqHz, amplitude).Fill(out)
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	g.NewNoise(amplitude).Fill(out)
	return out, nil
}

// Source is an endless signal stream.
type Source interface {
	// Fill overwrites dst with the next len(dst) samples.
	Fill(dst []float64)
}

// Kind names a streaming signal shape.
type Kind int

const (
	KindSine Kind = iota
	KindNoise
	KindSweep
)

var kindNames = [...]string{"sine", "noise", "sweep"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps "sine", "noise" or "sweep" to a Kind.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// NewSource returns a streaming source of the given kind. freqHz is the
// sine frequency; sweeps always cover 20 Hz to 20 kHz.
func (g *Generator) NewSource(kind Kind, freqHz, amplitude float64) (Source, error) {
	switch kind {
	case KindSine:
		return g.NewSine(freqHz, amplitude), nil
	case KindNoise:
		return g.NewNoise(amplitude), nil
	case KindSweep:
		return g.NewSweep(20, 20000, 5, amplitude), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
}

// Sine is a phase-continuous sine source.
type Sine struct {
	step      float64
	phase     float64
	amplitude float64
}

// NewSine returns a sine source at freqHz.
func (g *Generator) NewSine(freqHz, amplitude float64) *Sine {
	return &Sine{
		step:      2 * math.Pi * freqHz / g.cfg.SampleRate,
		amplitude: amplitude,
	}
}

// Fill implements Source.
func (s *Sine) Fill(dst []float64) {
	for i := range dst {
		dst[i] = s.amplitude * math.Sin(s.phase)
		s.phase += s.step
		if s.phase >= 2*math.Pi {
			s.phase -= 2 * math.Pi
		}
	}
}

// Noise is a seeded uniform white noise source.
type Noise struct {
	rng       *rand.Rand
	amplitude float64
}

// NewNoise returns a white noise source seeded from the generator.
func (g *Generator) NewNoise(amplitude float64) *Noise {
	return &Noise{
		rng:       rand.New(rand.NewSource(g.seed)),
		amplitude: amplitude,
	}
}

// Fill implements Source.
func (n *Noise) Fill(dst []float64) {
	for i := range dst {
		dst[i] = (n.rng.Float64()*2 - 1) * n.amplitude
	}
}

// Sweep is an exponential sine sweep that restarts every period.
type Sweep struct {
	sampleRate float64
	startHz    float64
	ratio      float64
	length     int
	pos        int
	phase      float64
	amplitude  float64
}

// NewSweep returns a sweep from startHz to endHz lasting seconds.
func (g *Generator) NewSweep(startHz, endHz, seconds, amplitude float64) *Sweep {
	length := int(seconds * g.cfg.SampleRate)
	if length < 1 {
		length = 1
	}
	return &Sweep{
		sampleRate: g.cfg.SampleRate,
		startHz:    startHz,
		ratio:      endHz / startHz,
		length:     length,
		amplitude:  amplitude,
	}
}

// Fill implements Source.
func (s *Sweep) Fill(dst []float64) {
	for i := range dst {
		t := float64(s.pos) / float64(s.length)
		freq := s.startHz * math.Pow(s.ratio, t)

		dst[i] = s.amplitude * math.Sin(s.phase)
		s.phase += 2 * math.Pi * freq / s.sampleRate
		if s.phase >= 2*math.Pi {
			s.phase = math.Mod(s.phase, 2*math.Pi)
		}

		s.pos++
		if s.pos >= s.length {
			s.pos = 0
			s.phase = 0
		}
	}
}

// Frequency returns the instantaneous sweep frequency in Hz.
func (s *Sweep) Frequency() float64 {
	return s.startHz * math.Pow(s.ratio, float64(s.pos)/float64(s.length))
}
