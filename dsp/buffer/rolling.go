package buffer

import "github.com/cwbudde/algo-eq/dsp/core"

// Rolling is a fixed-length shift buffer. Each pushed block shifts the held
// samples left by the block length and appends the block at the tail, so the
// buffer always holds the most recent Len() samples in arrival order.
//
// Before Len() samples have been pushed the head of the buffer is zero.
type Rolling struct {
	samples []float64
	written uint64
}

// NewRolling returns a zero-filled Rolling buffer of the given length.
func NewRolling(length int) *Rolling {
	if length < 0 {
		length = 0
	}
	return &Rolling{samples: make([]float64, length)}
}

// Push appends block at the tail, discarding the oldest samples.
func (r *Rolling) Push(block []float64) {
	n := len(r.samples)
	r.written += uint64(len(block))

	if len(block) >= n {
		copy(r.samples, block[len(block)-n:])
		return
	}

	copy(r.samples, r.samples[len(block):])
	copy(r.samples[n-len(block):], block)
}

// Samples returns the underlying slice, oldest sample first.
// The slice is owned by the buffer and changes on the next Push.
func (r *Rolling) Samples() []float64 {
	return r.samples
}

// Len returns the buffer length.
func (r *Rolling) Len() int {
	return len(r.samples)
}

// Written returns the total number of samples pushed since the last Reset.
func (r *Rolling) Written() uint64 {
	return r.written
}

// Full reports whether at least Len() samples have been pushed, i.e. the
// buffer holds no leading zero padding.
func (r *Rolling) Full() bool {
	return r.written >= uint64(len(r.samples))
}

// Reset zeroes the buffer and the written counter.
func (r *Rolling) Reset() {
	core.Zero(r.samples)
	r.written = 0
}
