package params

import (
	"math"
	"sync/atomic"
)

// ID names a parameter as seen by the host automation system.
type ID string

const (
	LowCutFreq     ID = "LowCut_Freq"
	LowCutSlope    ID = "LowCut_Slope"
	HighCutFreq    ID = "HighCut_Freq"
	HighCutSlope   ID = "HighCut_Slope"
	PeakFreq       ID = "Peak_Freq"
	PeakGain       ID = "Peak_Gain"
	PeakQuality    ID = "Peak_Q"
	LowCutBypass   ID = "LowCut_Bypass"
	PeakBypass     ID = "Peak_Bypass"
	HighCutBypass  ID = "HighCut_Bypass"
	AnalyzerBypass ID = "Analyzer_Bypass"
)

// Kind is the value domain of a parameter.
type Kind int

const (
	KindFloat Kind = iota
	KindChoice
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindChoice:
		return "choice"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Range is a normalisable value range. Values snap to Step (when > 0) and
// the normalised form is warped by Skew: a skew below 1 gives the lower end
// of the range more of the normalised travel.
type Range struct {
	Min, Max float64
	Step     float64
	Skew     float64
}

// Clamp limits v to [Min, Max].
func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Snap clamps v and rounds it to the nearest step from Min.
func (r Range) Snap(v float64) float64 {
	v = r.Clamp(v)
	if r.Step <= 0 {
		return v
	}
	// Values already on the grid are kept bit-exact.
	if math.Abs(math.Remainder(v-r.Min, r.Step)) < 1e-9*r.Step {
		return v
	}
	return r.Clamp(r.Min + r.Step*math.Round((v-r.Min)/r.Step))
}

// ToNormalized maps v into [0, 1].
func (r Range) ToNormalized(v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	p := (r.Clamp(v) - r.Min) / (r.Max - r.Min)
	if r.Skew > 0 && r.Skew != 1 {
		p = math.Pow(p, r.Skew)
	}
	return p
}

// FromNormalized maps p in [0, 1] back into the range, without snapping.
func (r Range) FromNormalized(p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	if r.Skew > 0 && r.Skew != 1 && p > 0 {
		p = math.Exp(math.Log(p) / r.Skew)
	}
	return r.Min + (r.Max-r.Min)*p
}

// Parameter is one automatable value. The current value is an atomic
// float64 so the audio, UI and host threads may read it without locks.
type Parameter struct {
	id      ID
	name    string
	kind    Kind
	rng     Range
	def     float64
	choices []string
	bits    atomic.Uint64
}

func newParameter(id ID, name string, kind Kind, rng Range, def float64, choices ...string) *Parameter {
	p := &Parameter{id: id, name: name, kind: kind, rng: rng, def: rng.Snap(def), choices: choices}
	p.bits.Store(math.Float64bits(p.def))
	return p
}

func floatParam(id ID, name string, lo, hi, step, skew, def float64) *Parameter {
	return newParameter(id, name, KindFloat, Range{Min: lo, Max: hi, Step: step, Skew: skew}, def)
}

func choiceParam(id ID, name string, def int, choices ...string) *Parameter {
	rng := Range{Min: 0, Max: float64(len(choices) - 1), Step: 1, Skew: 1}
	return newParameter(id, name, KindChoice, rng, float64(def), choices...)
}

func boolParam(id ID, name string, def bool) *Parameter {
	v := 0.0
	if def {
		v = 1
	}
	return newParameter(id, name, KindBool, Range{Min: 0, Max: 1, Step: 1, Skew: 1}, v)
}

func (p *Parameter) ID() ID { return p.id }

func (p *Parameter) Name() string { return p.name }

func (p *Parameter) Kind() Kind { return p.kind }

func (p *Parameter) Range() Range { return p.rng }

func (p *Parameter) Default() float64 { return p.def }

// Choices returns the labels of a choice parameter.
func (p *Parameter) Choices() []string {
	return append([]string(nil), p.choices...)
}

// Value returns the current value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Normalized returns the current value mapped into [0, 1].
func (p *Parameter) Normalized() float64 {
	return p.rng.ToNormalized(p.Value())
}

// Bool reports whether a bool parameter is on.
func (p *Parameter) Bool() bool {
	return p.Value() >= 0.5
}

// Index returns the current choice index.
func (p *Parameter) Index() int {
	return int(math.Round(p.Value()))
}

// store snaps v and saves it, reporting whether the stored value changed.
func (p *Parameter) store(v float64) (float64, bool) {
	v = p.rng.Snap(v)
	old := p.bits.Swap(math.Float64bits(v))
	return v, old != math.Float64bits(v)
}
