//go:build amd64 && !purego

// Package unroll registers a scalar biquad kernel unrolled four samples
// per iteration. It contains no SIMD code; it is preferred over the
// generic loop on AVX2 hosts, where the wider out-of-order window lets the
// feedforward products of the next samples issue while the feedback chain
// of the current one completes.
package unroll

import (
	"github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "scalar-unroll4",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: processBlock,
	})
}

// step advances the DF-II-T recursion by one sample.
func step(c *registry.Coefficients, x, d0, d1 float64) (y, nd0, nd1 float64) {
	y = c.B0*x + d0
	return y, c.B1*x - c.A1*y + d1, c.B2*x - c.A2*y
}

func processBlock(c registry.Coefficients, d0, d1 float64, buf []float64) (float64, float64) {
	n := len(buf) &^ 3
	for i := 0; i < n; i += 4 {
		q := buf[i : i+4 : i+4]
		q[0], d0, d1 = step(&c, q[0], d0, d1)
		q[1], d0, d1 = step(&c, q[1], d0, d1)
		q[2], d0, d1 = step(&c, q[2], d0, d1)
		q[3], d0, d1 = step(&c, q[3], d0, d1)
	}
	for i := n; i < len(buf); i++ {
		buf[i], d0, d1 = step(&c, buf[i], d0, d1)
	}
	return d0, d1
}
