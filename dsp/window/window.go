// Package window generates the cosine-sum windows used to frame analyzer
// FFTs.
package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeBlackmanHarris4Term
	TypeFlatTop
)

// Metadata holds spectral properties of a window type.
type Metadata struct {
	Name            string
	ENBW            float64
	HighestSidelobe float64
	CoherentGain    float64
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic  bool
	normalize bool
}

// WithPeriodic configures periodic form (FFT framing) instead of symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// WithNormalize scales the coefficients so that their mean is 1. A windowed
// full-scale sinusoid then keeps its amplitude in the spectrum.
func WithNormalize() Option {
	return func(c *config) {
		c.normalize = true
	}
}

var (
	hannCoeffs            = []float64{0.5, -0.5}
	hammingCoeffs         = []float64{0.54, -0.46}
	blackmanCoeffs        = []float64{0.42, -0.5, 0.08}
	blackmanHarris4Coeffs = []float64{0.35875, -0.48829, 0.14128, -0.01168}
	flatTopCoeffs         = []float64{
		0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368,
	}
)

var metadataByType = map[Type]Metadata{
	TypeRectangular:         {Name: "Rectangular", ENBW: 1, HighestSidelobe: -13.3, CoherentGain: 1},
	TypeHann:                {Name: "Hann", ENBW: 1.5, HighestSidelobe: -31.5, CoherentGain: 0.5},
	TypeHamming:             {Name: "Hamming", ENBW: 1.36, HighestSidelobe: -42.7, CoherentGain: 0.54},
	TypeBlackman:            {Name: "Blackman", ENBW: 1.73, HighestSidelobe: -58.1, CoherentGain: 0.42},
	TypeBlackmanHarris4Term: {Name: "Blackman-Harris", ENBW: 2.0, HighestSidelobe: -92, CoherentGain: 0.35875},
	TypeFlatTop:             {Name: "Flat Top", ENBW: 3.77, HighestSidelobe: -93, CoherentGain: 0.21557895},
}

// Generate returns window coefficients of the given length.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = evalWindow(t, samplePosition(i, length, cfg.periodic))
	}

	if cfg.normalize {
		normalize(out)
	}

	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 {
		return
	}

	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// Info returns static metadata for a window type.
func Info(t Type) Metadata {
	if m, ok := metadataByType[t]; ok {
		return m
	}

	return Metadata{}
}

// Hann returns Hann window coefficients.
func Hann(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeHann, size, opts...), validateLength(size)
}

// BlackmanHarris returns 4-term Blackman-Harris window coefficients.
func BlackmanHarris(size int, opts ...Option) ([]float64, error) {
	return Generate(TypeBlackmanHarris4Term, size, opts...), validateLength(size)
}

// CoherentGain returns sum(w[n]) / N.
func CoherentGain(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	return sum(coeffs) / float64(len(coeffs)), nil
}

// EquivalentNoiseBandwidth returns the ENBW in bins for a window.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, errEmptyCoeffs
	}

	s := sum(coeffs)
	if s == 0 {
		return 0, errZeroCoherentGain
	}

	sumSquares := 0.0
	for _, c := range coeffs {
		sumSquares += c * c
	}

	return float64(len(coeffs)) * sumSquares / (s * s), nil
}

// ApplyCoefficientsInPlace multiplies samples with precomputed coefficients.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeBlackmanHarris4Term:
		return cosineFromCoeffs(x, blackmanHarris4Coeffs)
	case TypeFlatTop:
		return cosineFromCoeffs(x, flatTopCoeffs)
	default:
		return 1
	}
}

func normalize(coeffs []float64) {
	s := sum(coeffs)
	if s == 0 {
		return
	}

	vecmath.ScaleBlock(coeffs, coeffs, float64(len(coeffs))/s)
}

func sum(coeffs []float64) float64 {
	total := 0.0
	for _, c := range coeffs {
		total += c
	}

	return total
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	total := 0.0
	for k, c := range coeffs {
		total += c * math.Cos(float64(k)*phase)
	}

	return total
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
