// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce biquad coefficients consumable by
// dsp/filter/biquad for runtime processing: RBJ-style second-order sections
// (Lowpass, Highpass, Peak) and Butterworth cascades built from them.
//
// Invalid inputs (non-positive sample rate, frequency outside (0, Nyquist))
// yield the zero Coefficients value rather than an error.
package design
