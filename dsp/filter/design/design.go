package design

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/filter/biquad"
)

const defaultQ = 1 / math.Sqrt2

// Lowpass designs a lowpass biquad at freq (Hz) with quality factor q.
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b1 := 1 - cw
	b0 := b1 / 2
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Highpass designs a highpass biquad at freq (Hz) with quality factor q.
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	b0 := (1 + cw) / 2
	b1 := -(1 + cw)
	b2 := b0
	a0 := 1 + alpha
	a1 := -2 * cw
	a2 := 1 - alpha

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Peak designs a peaking-EQ biquad with gain in dB using the RBJ formula.
// At freq the magnitude equals the requested gain; a gain of 0 dB yields a
// unity response at every frequency.
func Peak(freq, gainDB, q, sampleRate float64) biquad.Coefficients {
	return PeakLinear(freq, math.Pow(10, gainDB/20), q, sampleRate)
}

// PeakLinear is Peak with the gain given as a linear amplitude factor,
// which must be > 0.
func PeakLinear(freq, gain, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !(gain > 0) || math.IsInf(gain, 0) {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a := math.Sqrt(gain)

	b0 := 1 + alpha*a
	b1 := -2 * cw
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cw
	a2 := 1 - alpha/a

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
