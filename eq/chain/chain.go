// Package chain runs the fixed LowCut -> Peak -> HighCut biquad cascade of
// the equalizer on mono sample streams.
//
// Coefficients cross from the control goroutine to the audio goroutine as
// immutable values behind atomic pointers, so Process never blocks and a
// block is always filtered with exactly one coefficient set per stage.
package chain

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/eq/coeffs"
	"github.com/cwbudde/algo-eq/eq/params"
)

// ErrNotPrepared is the panic value of Process on a chain that has not
// been prepared.
var ErrNotPrepared = errors.New("chain: process called before prepare")

// Position is one of the three logical bands of the chain.
type Position int

const (
	LowCut Position = iota
	Peak
	HighCut
	numPositions
)

func (p Position) String() string {
	switch p {
	case LowCut:
		return "LowCut"
	case Peak:
		return "Peak"
	case HighCut:
		return "HighCut"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// MonoChain filters one channel.
type MonoChain struct {
	lowCut  CutFilter
	peak    Stage
	highCut CutFilter

	bypassed [numPositions]atomic.Bool

	prepared     atomic.Bool
	sampleRate   atomic.Uint64
	maxBlockSize atomic.Int64
}

// NewMonoChain returns a chain with identity coefficients in every stage.
func NewMonoChain() *MonoChain {
	c := &MonoChain{}
	c.lowCut.init()
	c.peak.init()
	c.highCut.init()
	return c
}

// Prepare resets all delay state and records the processing format. It
// must be called before the first Process and after a sample rate change,
// and not concurrently with Process.
func (c *MonoChain) Prepare(sampleRate float64, maxBlockSize int) {
	c.lowCut.reset()
	c.peak.state.Reset()
	c.highCut.reset()
	c.sampleRate.Store(math.Float64bits(sampleRate))
	c.maxBlockSize.Store(int64(maxBlockSize))
	c.prepared.Store(true)
}

// IsPrepared reports whether Prepare has been called.
func (c *MonoChain) IsPrepared() bool { return c.prepared.Load() }

// SampleRate returns the rate passed to the last Prepare.
func (c *MonoChain) SampleRate() float64 {
	return math.Float64frombits(c.sampleRate.Load())
}

// MaxBlockSize returns the block size passed to the last Prepare.
func (c *MonoChain) MaxBlockSize() int {
	return int(c.maxBlockSize.Load())
}

// Process filters buf in place: LowCut, then Peak, then HighCut. Bypassed
// positions and stages are skipped. Process does not allocate or lock.
func (c *MonoChain) Process(buf []float64) {
	if !c.prepared.Load() {
		panic(ErrNotPrepared)
	}
	if !c.bypassed[LowCut].Load() {
		c.lowCut.process(buf)
	}
	if !c.bypassed[Peak].Load() {
		c.peak.process(buf)
	}
	if !c.bypassed[HighCut].Load() {
		c.highCut.process(buf)
	}
}

// UpdateCoefficients replaces the coefficient set of one stage. The Peak
// position has a single stage 0. Safe to call concurrently with Process.
func (c *MonoChain) UpdateCoefficients(pos Position, stage int, set *biquad.Coefficients) {
	c.stage(pos, stage).SetCoefficients(set)
}

// UpdateCutFilter installs four coefficient sets into a cut position and
// engages exactly the first slope+1 stages.
func (c *MonoChain) UpdateCutFilter(pos Position, sets coeffs.CutCoefficients, slope params.Slope) {
	var ptrs [coeffs.MaxStages]*biquad.Coefficients
	for i := range sets {
		set := sets[i]
		ptrs[i] = &set
	}
	c.cut(pos).install(&ptrs, coeffs.ActiveStages(slope))
}

// Stage returns a stage for inspection. Peak has only stage 0.
func (c *MonoChain) Stage(pos Position, stage int) *Stage {
	return c.stage(pos, stage)
}

// CutFilter returns the cascade of LowCut or HighCut.
func (c *MonoChain) CutFilter(pos Position) *CutFilter {
	return c.cut(pos)
}

// SetBypassed toggles a position, effective from the next processed block.
func (c *MonoChain) SetBypassed(pos Position, b bool) {
	c.bypassed[c.checkPosition(pos)].Store(b)
}

// IsBypassed reports whether pos is skipped.
func (c *MonoChain) IsBypassed(pos Position) bool {
	return c.bypassed[c.checkPosition(pos)].Load()
}

// Apply designs the coefficients for s and installs them with the bypass
// flags of s.
func (c *MonoChain) Apply(s params.ChainSettings, sampleRate float64) {
	c.Install(NewDesign(s, sampleRate))
}

// Install publishes a precomputed design. The design's coefficient sets
// are shared, not copied.
func (c *MonoChain) Install(d *Design) {
	c.peak.SetCoefficients(d.Peak)
	c.lowCut.install(&d.LowCut, coeffs.ActiveStages(d.LowCutSlope))
	c.highCut.install(&d.HighCut, coeffs.ActiveStages(d.HighCutSlope))

	c.SetBypassed(LowCut, d.LowCutBypassed)
	c.SetBypassed(Peak, d.PeakBypassed)
	c.SetBypassed(HighCut, d.HighCutBypassed)
}

// MagnitudeForFrequency returns the analytic linear gain of the chain at
// freq: the product of all engaged stages. A fully bypassed chain is 1.
func (c *MonoChain) MagnitudeForFrequency(freq, sampleRate float64) float64 {
	m := 1.0
	if !c.bypassed[LowCut].Load() {
		m *= c.lowCut.magnitude(freq, sampleRate)
	}
	if !c.bypassed[Peak].Load() {
		m *= c.peak.magnitude(freq, sampleRate)
	}
	if !c.bypassed[HighCut].Load() {
		m *= c.highCut.magnitude(freq, sampleRate)
	}
	return m
}

func (c *MonoChain) stage(pos Position, i int) *Stage {
	switch pos {
	case Peak:
		if i != 0 {
			panic(fmt.Sprintf("chain: peak has a single stage, got %d", i))
		}
		return &c.peak
	default:
		return c.cut(pos).Stage(i)
	}
}

func (c *MonoChain) cut(pos Position) *CutFilter {
	switch pos {
	case LowCut:
		return &c.lowCut
	case HighCut:
		return &c.highCut
	default:
		panic(fmt.Sprintf("chain: %v is not a cut filter", pos))
	}
}

func (c *MonoChain) checkPosition(pos Position) Position {
	if pos < LowCut || pos >= numPositions {
		panic(fmt.Sprintf("chain: invalid position %d", int(pos)))
	}
	return pos
}

// Design is the immutable set of coefficients computed for one
// ChainSettings snapshot. It can be installed into any number of chains.
type Design struct {
	Peak    *biquad.Coefficients
	LowCut  [coeffs.MaxStages]*biquad.Coefficients
	HighCut [coeffs.MaxStages]*biquad.Coefficients

	LowCutSlope  params.Slope
	HighCutSlope params.Slope

	LowCutBypassed  bool
	PeakBypassed    bool
	HighCutBypassed bool
}

// NewDesign runs the coefficient factory for s.
func NewDesign(s params.ChainSettings, sampleRate float64) *Design {
	peak := coeffs.MakePeakFilter(s, sampleRate)
	low := coeffs.MakeLowCutFilter(s, sampleRate)
	high := coeffs.MakeHighCutFilter(s, sampleRate)

	d := &Design{
		Peak:            &peak,
		LowCutSlope:     s.LowCutSlope,
		HighCutSlope:    s.HighCutSlope,
		LowCutBypassed:  s.LowCutBypassed,
		PeakBypassed:    s.PeakBypassed,
		HighCutBypassed: s.HighCutBypassed,
	}
	for i := range low {
		d.LowCut[i] = &low[i]
		d.HighCut[i] = &high[i]
	}
	return d
}
