package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/signal"
)

// MeasureGain drives process with a unit sine at freq and returns the
// steady-state gain in dB. The first half of length samples lets the
// system settle; the gain is read over the whole cycles of the second half.
// process filters its argument in place and must keep state across calls
// only if the caller wants it to.
func MeasureGain(process func([]float64), freq, sampleRate float64, length int) (float64, error) {
	if length <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	in, err := NewGoertzel(freq, sampleRate)
	if err != nil {
		return 0, err
	}
	out, _ := NewGoertzel(freq, sampleRate)

	gen := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(sampleRate)})
	x, err := gen.Sine(freq, 1, length)
	if err != nil {
		return 0, err
	}
	y := append([]float64(nil), x...)
	process(y)

	tail := wholeCycles(length-length/2, freq, sampleRate)
	in.Process(x[length-tail:])
	out.Process(y[length-tail:])

	ref := in.Power()
	if ref <= 0 {
		return math.Inf(-1), nil
	}
	return core.LinearToDB(math.Sqrt(out.Power() / ref)), nil
}

// wholeCycles returns the longest span of at most n samples holding an
// integer number of periods of freq.
func wholeCycles(n int, freq, sampleRate float64) int {
	if freq <= 0 {
		return n
	}
	period := sampleRate / freq
	cycles := math.Floor(float64(n) / period)
	if cycles < 1 {
		return n
	}
	return min(n, int(math.Round(cycles*period)))
}
