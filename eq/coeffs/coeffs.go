// Package coeffs turns a ChainSettings snapshot into the biquad
// coefficient sets of the equalizer stages.
package coeffs

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
	"github.com/cwbudde/algo-eq/dsp/filter/design"
	"github.com/cwbudde/algo-eq/eq/params"
)

// MaxStages is the fixed cascade width of a cut filter.
const MaxStages = 4

const maxNyquistFraction = 0.995

// CutCoefficients holds one coefficient set per cut filter stage. Stages
// beyond the active slope carry Identity coefficients.
type CutCoefficients [MaxStages]biquad.Coefficients

// ActiveStages returns the number of engaged cascade stages for slope.
func ActiveStages(slope params.Slope) int {
	return int(slope) + 1
}

// MakePeakFilter designs the RBJ peaking filter of the peak band from the
// linear gain of PeakGainDB.
func MakePeakFilter(s params.ChainSettings, sampleRate float64) biquad.Coefficients {
	mustSampleRate(sampleRate)
	return design.PeakLinear(limit(s.PeakFreq, sampleRate), s.PeakGainLinear(), s.PeakQuality, sampleRate)
}

// MakeLowCutFilter designs the Butterworth high-pass cascade of the low cut
// band, of order 2*(slope+1).
func MakeLowCutFilter(s params.ChainSettings, sampleRate float64) CutCoefficients {
	mustSampleRate(sampleRate)
	return fill(design.ButterworthHP(limit(s.LowCutFreq, sampleRate), s.LowCutSlope.Order(), sampleRate))
}

// MakeHighCutFilter designs the Butterworth low-pass cascade of the high cut
// band, of order 2*(slope+1).
func MakeHighCutFilter(s params.ChainSettings, sampleRate float64) CutCoefficients {
	mustSampleRate(sampleRate)
	return fill(design.ButterworthLP(limit(s.HighCutFreq, sampleRate), s.HighCutSlope.Order(), sampleRate))
}

func fill(sections []biquad.Coefficients) CutCoefficients {
	var out CutCoefficients
	for i := range out {
		if i < len(sections) {
			out[i] = sections[i]
		} else {
			out[i] = biquad.Identity()
		}
	}
	return out
}

// limit keeps freq strictly below Nyquist so low sample rates still get a
// valid design for the 20 kHz end of the parameter range.
func limit(freq, sampleRate float64) float64 {
	return math.Min(freq, maxNyquistFraction*sampleRate/2)
}

func mustSampleRate(sampleRate float64) {
	if !(sampleRate > 0) {
		panic(fmt.Sprintf("coeffs: sample rate must be > 0: %v", sampleRate))
	}
}
