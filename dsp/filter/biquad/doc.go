// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. [ProcessBlock] runs the
// same kernel against an explicit coefficient set and [State], which lets a
// caller swap coefficient sets between blocks while keeping the delay line.
//
// Coefficient design (Butterworth, RBJ peaking EQ) lives in dsp/filter/design.
package biquad
