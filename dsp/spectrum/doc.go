// Package spectrum measures single-frequency levels and smooths magnitude
// spectra. Full-band analysis lives with the FFT backends; this package
// covers the pieces that do not need one.
package spectrum
