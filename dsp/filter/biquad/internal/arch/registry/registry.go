// Package registry selects the biquad block kernel for the running CPU.
package registry

import (
	"sort"
	"sync"

	"github.com/cwbudde/algo-vecmath/cpu"
)

// Coefficients are biquad transfer coefficients (a0 normalized to 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// ProcessBlockFn processes buf in-place with one biquad section.
type ProcessBlockFn func(c Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64)

// OpEntry is one registered biquad kernel implementation.
type OpEntry struct {
	Name         string
	SIMDLevel    cpu.SIMDLevel
	Priority     int
	ProcessBlock ProcessBlockFn
}

// OpRegistry stores available implementations.
type OpRegistry struct {
	mu      sync.Mutex
	entries []OpEntry
}

// Global is the default biquad kernel registry.
var Global = &OpRegistry{}

// Register adds an implementation entry.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	sort.SliceStable(r.entries, func(i, j int) bool {
		return r.entries[i].Priority > r.entries[j].Priority
	})
}

// Lookup returns the highest-priority implementation supported by features.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.entries {
		entry := &r.entries[i]
		if supports(features, entry.SIMDLevel) {
			return entry
		}
	}

	return nil
}

// Entries returns a copy of the registered entries in priority order.
func (r *OpRegistry) Entries() []OpEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]OpEntry(nil), r.entries...)
}

func supports(f cpu.Features, level cpu.SIMDLevel) bool {
	if level == cpu.SIMDNone {
		return true
	}
	if f.ForceGeneric {
		return false
	}

	switch level {
	case cpu.SIMDSSE2:
		return f.HasSSE2
	case cpu.SIMDAVX2:
		return f.HasAVX2
	case cpu.SIMDNEON:
		return f.HasNEON
	default:
		return false
	}
}
