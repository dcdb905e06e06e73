package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}

// GainToDecibels converts a linear gain to dB, never returning less than
// floorDB. Non-positive, NaN and infinite gains map to floorDB.
func GainToDecibels(gain, floorDB float64) float64 {
	if !(gain > 0) || math.IsInf(gain, 0) {
		return floorDB
	}

	return math.Max(floorDB, 20*math.Log10(gain))
}

// Map linearly maps value from [srcLo, srcHi] onto [dstLo, dstHi].
// The source range must not be empty.
func Map(value, srcLo, srcHi, dstLo, dstHi float64) float64 {
	return dstLo + (value-srcLo)*(dstHi-dstLo)/(srcHi-srcLo)
}

// MapToLog10 maps a normalized position in [0, 1] onto the logarithmic
// range [lo, hi]. Both bounds must be positive.
func MapToLog10(normalized, lo, hi float64) float64 {
	return math.Pow(10, normalized*(math.Log10(hi)-math.Log10(lo))+math.Log10(lo))
}

// MapFromLog10 is the inverse of MapToLog10: it returns the normalized
// position of value inside the logarithmic range [lo, hi].
func MapFromLog10(value, lo, hi float64) float64 {
	return (math.Log10(value) - math.Log10(lo)) / (math.Log10(hi) - math.Log10(lo))
}
