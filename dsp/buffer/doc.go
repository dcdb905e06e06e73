// Package buffer provides the fixed-length shift buffer that keeps the most
// recent samples of a stream for block analysis. All DSP functions accept
// raw []float64 slices; Rolling only manages the window of history.
package buffer
