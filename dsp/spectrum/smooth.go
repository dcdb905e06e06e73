package spectrum

import (
	"fmt"
	"math"
	"sort"
)

// SmoothFractionalOctave replaces each value by the mean of the values
// within ±1/(2·fraction) octave of its frequency. Smooth linear-domain
// values; dB values average to a geometric mean.
func SmoothFractionalOctave(freqHz, values []float64, fraction int) ([]float64, error) {
	if len(freqHz) != len(values) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(freqHz), len(values))
	}
	if fraction <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFraction, fraction)
	}
	for i, f := range freqHz {
		if !(f > 0) || (i > 0 && !(f > freqHz[i-1])) {
			return nil, fmt.Errorf("%w: index %d", ErrFrequencyOrder, i)
		}
	}

	prefix := make([]float64, len(values)+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}

	half := math.Pow(2, 1/(2*float64(fraction)))
	out := make([]float64, len(values))
	for i, f := range freqHz {
		lo := sort.SearchFloat64s(freqHz, f/half)
		hi := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > f*half })
		out[i] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
	}
	return out, nil
}
