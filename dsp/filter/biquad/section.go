//nolint:funcorder
package biquad

import (
	"sync"

	archregistry "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

// Coefficients holds the transfer function coefficients for a single
// second-order section (biquad). a0 is normalized to 1 and not stored.
//
// The sign convention follows Direct Form II Transposed:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type Coefficients struct {
	B0, B1, B2 float64 // feedforward (numerator)
	A1, A2     float64 // feedback (denominator)
}

// Identity returns the pass-through coefficient set (y = x).
func Identity() Coefficients {
	return Coefficients{B0: 1}
}

// IsIdentity reports whether c passes its input through unchanged.
func (c Coefficients) IsIdentity() bool {
	return c == Identity()
}

// State is the DF-II-T delay line of one section.
type State struct {
	D0, D1 float64
}

// Reset clears the delay line to zero.
func (s *State) Reset() {
	s.D0 = 0
	s.D1 = 0
}

// Section is a single biquad filter with coefficients and internal state.
// It implements Direct Form II Transposed processing.
type Section struct {
	Coefficients

	state State
}

var (
	processBlockImpl     archregistry.ProcessBlockFn
	processBlockInitOnce sync.Once
)

// NewSection returns a Section initialized with the given coefficients
// and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Coefficients: c}
}

// ProcessSample filters one input sample and returns the output.
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.state.D0
	s.state.D0 = s.B1*x - s.A1*y + s.state.D1
	s.state.D1 = s.B2*x - s.A2*y

	return y
}

// ProcessBlock filters a block of samples in-place. Zero-alloc.
func (s *Section) ProcessBlock(buf []float64) {
	ProcessBlock(&s.Coefficients, &s.state, buf)
}

// ProcessBlock filters buf in-place with coefficient set c, advancing st.
// Every sample of buf is filtered with c. Zero-alloc.
func ProcessBlock(c *Coefficients, st *State, buf []float64) {
	if len(buf) == 0 {
		return
	}

	processBlockInitOnce.Do(initProcessBlockKernel)

	coeffs := archregistry.Coefficients{
		B0: c.B0,
		B1: c.B1,
		B2: c.B2,
		A1: c.A1,
		A2: c.A2,
	}

	st.D0, st.D1 = processBlockImpl(coeffs, st.D0, st.D1, buf)
}

func initProcessBlockKernel() {
	entry := archregistry.Global.Lookup(cpu.DetectFeatures())
	if entry == nil {
		panic("biquad: no ProcessBlock kernel registered (missing generic fallback?)")
	}

	if entry.ProcessBlock == nil {
		panic("biquad: selected kernel missing ProcessBlock")
	}

	processBlockImpl = entry.ProcessBlock
}

// Reset clears the delay line to zero.
func (s *Section) Reset() {
	s.state.Reset()
}

// State returns the current delay-line state.
func (s *Section) State() State {
	return s.state
}

// SetState restores a previously saved delay-line state.
func (s *Section) SetState(state State) {
	s.state = state
}
