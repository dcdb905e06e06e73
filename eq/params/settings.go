package params

import (
	"fmt"
	"math"
)

// Slope is the cut filter steepness, stored as a choice index.
type Slope int

const (
	Slope12 Slope = iota
	Slope24
	Slope36
	Slope48
)

// DBPerOctave returns the nominal attenuation rate.
func (s Slope) DBPerOctave() int {
	return 12 * (int(s) + 1)
}

// Order returns the Butterworth order realising the slope.
func (s Slope) Order() int {
	return 2 * (int(s) + 1)
}

// Valid reports whether s is one of the four supported slopes.
func (s Slope) Valid() bool {
	return s >= Slope12 && s <= Slope48
}

func (s Slope) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Slope(%d)", int(s))
	}
	return SlopeChoices[s]
}

// ChainSettings is an immutable snapshot of the parameters that shape the
// filter chain and the analyzer.
type ChainSettings struct {
	PeakFreq    float64
	PeakGainDB  float64
	PeakQuality float64

	LowCutFreq  float64
	HighCutFreq float64

	LowCutSlope  Slope
	HighCutSlope Slope

	LowCutBypassed  bool
	PeakBypassed    bool
	HighCutBypassed bool

	AnalyzerEnabled bool
}

// DefaultChainSettings returns the settings of a freshly created Store.
func DefaultChainSettings() ChainSettings {
	return ChainSettings{
		PeakFreq:        750,
		PeakQuality:     1,
		LowCutFreq:      20,
		HighCutFreq:     20000,
		AnalyzerEnabled: true,
	}
}

// Snapshot reads the current parameter values into a ChainSettings.
// Each value is read atomically; the snapshot as a whole is not.
func Snapshot(s *Store) ChainSettings {
	return ChainSettings{
		PeakFreq:        s.byID[PeakFreq].Value(),
		PeakGainDB:      s.byID[PeakGain].Value(),
		PeakQuality:     s.byID[PeakQuality].Value(),
		LowCutFreq:      s.byID[LowCutFreq].Value(),
		HighCutFreq:     s.byID[HighCutFreq].Value(),
		LowCutSlope:     Slope(s.byID[LowCutSlope].Index()),
		HighCutSlope:    Slope(s.byID[HighCutSlope].Index()),
		LowCutBypassed:  s.byID[LowCutBypass].Bool(),
		PeakBypassed:    s.byID[PeakBypass].Bool(),
		HighCutBypassed: s.byID[HighCutBypass].Bool(),
		AnalyzerEnabled: !s.byID[AnalyzerBypass].Bool(),
	}
}

// Apply writes every field of cs into the store.
func (cs ChainSettings) Apply(s *Store) error {
	values := []struct {
		id ID
		v  float64
	}{
		{PeakFreq, cs.PeakFreq},
		{PeakGain, cs.PeakGainDB},
		{PeakQuality, cs.PeakQuality},
		{LowCutFreq, cs.LowCutFreq},
		{HighCutFreq, cs.HighCutFreq},
		{LowCutSlope, float64(cs.LowCutSlope)},
		{HighCutSlope, float64(cs.HighCutSlope)},
		{LowCutBypass, boolValue(cs.LowCutBypassed)},
		{PeakBypass, boolValue(cs.PeakBypassed)},
		{HighCutBypass, boolValue(cs.HighCutBypassed)},
		{AnalyzerBypass, boolValue(!cs.AnalyzerEnabled)},
	}
	for _, e := range values {
		if err := s.Set(e.id, e.v); err != nil {
			return err
		}
	}
	return nil
}

// PeakGainLinear returns the peak gain as a linear amplitude factor.
func (cs ChainSettings) PeakGainLinear() float64 {
	return math.Pow(10, cs.PeakGainDB/20)
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
