package spectrum

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidSampleRate = errors.New("spectrum: sample rate must be > 0")
	ErrInvalidFrequency  = errors.New("spectrum: frequency must be within [0, sampleRate/2]")
	ErrInvalidLength     = errors.New("spectrum: length must be > 0")
	ErrInvalidFraction   = errors.New("spectrum: octave fraction must be > 0")
	ErrLengthMismatch    = errors.New("spectrum: input length mismatch")
	ErrFrequencyOrder    = errors.New("spectrum: frequencies must be positive and strictly increasing")
)

// Goertzel evaluates one DFT term of everything processed since the last
// Reset.
type Goertzel struct {
	coeff  float64
	cos    float64
	sin    float64
	s0, s1 float64
	n      int
}

// NewGoertzel returns a Goertzel filter tuned to freq.
func NewGoertzel(freq, sampleRate float64) (*Goertzel, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if !(freq >= 0) || freq > sampleRate/2 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrequency, freq)
	}
	w := 2 * math.Pi * freq / sampleRate
	return &Goertzel{coeff: 2 * math.Cos(w), cos: math.Cos(w), sin: math.Sin(w)}, nil
}

// Reset clears the accumulated state.
func (g *Goertzel) Reset() {
	g.s0, g.s1, g.n = 0, 0, 0
}

// Process accumulates a block of samples.
func (g *Goertzel) Process(block []float64) {
	s0, s1, c := g.s0, g.s1, g.coeff
	for _, x := range block {
		s0, s1 = x+c*s0-s1, s0
	}
	g.s0, g.s1 = s0, s1
	g.n += len(block)
}

// Len returns the number of samples processed since Reset.
func (g *Goertzel) Len() int { return g.n }

// Power returns |X|², equal to the squared DFT term of the same samples.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Term returns the DFT term X up to a linear phase factor.
func (g *Goertzel) Term() complex128 {
	return complex(g.s0-g.s1*g.cos, g.s1*g.sin)
}

// Amplitude returns the peak amplitude of a sinusoid at the tuned
// frequency, 2|X|/N, assuming a whole number of cycles was processed.
func (g *Goertzel) Amplitude() float64 {
	if g.n == 0 {
		return 0
	}
	p := g.Power()
	if p <= 0 {
		return 0
	}
	return 2 * math.Sqrt(p) / float64(g.n)
}
