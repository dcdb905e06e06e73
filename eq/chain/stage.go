package chain

import (
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/eq/coeffs"
)

// Stage is one biquad of the chain. The coefficient set is an immutable
// value behind an atomic pointer: writers replace it, never mutate it.
// The delay state belongs to the audio goroutine.
type Stage struct {
	coeffs   atomic.Pointer[biquad.Coefficients]
	bypassed atomic.Bool
	state    biquad.State
}

func (s *Stage) init() {
	id := biquad.Identity()
	s.coeffs.Store(&id)
}

// Coefficients returns the installed coefficient set. Callers must not
// modify it.
func (s *Stage) Coefficients() *biquad.Coefficients {
	return s.coeffs.Load()
}

// SetCoefficients installs c. c must not be modified afterwards.
func (s *Stage) SetCoefficients(c *biquad.Coefficients) {
	if c == nil {
		panic("chain: nil coefficients")
	}
	s.coeffs.Store(c)
}

// SetBypassed toggles the stage bypass flag.
func (s *Stage) SetBypassed(b bool) { s.bypassed.Store(b) }

// IsBypassed reports whether the stage is skipped.
func (s *Stage) IsBypassed() bool { return s.bypassed.Load() }

// process filters buf with a single load of the coefficient pointer, so
// every sample of the block sees the same set.
func (s *Stage) process(buf []float64) {
	if s.bypassed.Load() {
		return
	}
	biquad.ProcessBlock(s.coeffs.Load(), &s.state, buf)
}

func (s *Stage) magnitude(freq, sampleRate float64) float64 {
	if s.bypassed.Load() {
		return 1
	}
	return s.coeffs.Load().Magnitude(freq, sampleRate)
}

// CutFilter is the fixed four stage cascade of a cut band. Unused stages
// stay allocated and bypassed.
type CutFilter struct {
	stages [coeffs.MaxStages]Stage
}

func (f *CutFilter) init() {
	for i := range f.stages {
		f.stages[i].init()
	}
}

// Stage returns stage i.
func (f *CutFilter) Stage(i int) *Stage {
	return &f.stages[i]
}

// SetStageBypassed toggles the bypass flag of stage i.
func (f *CutFilter) SetStageBypassed(i int, b bool) {
	f.stages[i].SetBypassed(b)
}

// IsStageBypassed reports whether stage i is skipped.
func (f *CutFilter) IsStageBypassed(i int) bool {
	return f.stages[i].IsBypassed()
}

// ActiveStages returns the number of engaged stages.
func (f *CutFilter) ActiveStages() int {
	n := 0
	for i := range f.stages {
		if !f.stages[i].IsBypassed() {
			n++
		}
	}
	return n
}

// install publishes one coefficient set per stage and engages the first
// active stages. Coefficients go in before the bypass flags change so that
// a newly engaged stage never runs with a stale set.
func (f *CutFilter) install(sets *[coeffs.MaxStages]*biquad.Coefficients, active int) {
	for i := range f.stages {
		f.stages[i].SetCoefficients(sets[i])
	}
	for i := range f.stages {
		f.stages[i].SetBypassed(i >= active)
	}
}

func (f *CutFilter) process(buf []float64) {
	for i := range f.stages {
		f.stages[i].process(buf)
	}
}

func (f *CutFilter) reset() {
	for i := range f.stages {
		f.stages[i].state.Reset()
	}
}

func (f *CutFilter) magnitude(freq, sampleRate float64) float64 {
	m := 1.0
	for i := range f.stages {
		m *= f.stages[i].magnitude(freq, sampleRate)
	}
	return m
}
