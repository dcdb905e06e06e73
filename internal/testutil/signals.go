// Package testutil holds deterministic signals and tolerance assertions
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// Ramp returns start, start+1, ... of the given length. Tests use it to
// follow individual samples through queues and shift buffers.
func Ramp(start float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = start + float64(i)
	}
	return out
}

// Float32 converts a float64 slice to float32.
func Float32(src []float64) []float32 {
	out := make([]float32, len(src))
	for i, v := range src {
		out[i] = float32(v)
	}
	return out
}

// Interleave merges equally long channel slices frame by frame.
func Interleave(channels ...[]float32) []float32 {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]float32, frames*len(channels))
	for f := 0; f < frames; f++ {
		for c, ch := range channels {
			out[f*len(channels)+c] = ch[f]
		}
	}
	return out
}
