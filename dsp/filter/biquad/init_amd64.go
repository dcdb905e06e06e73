//go:build amd64 && !purego

package biquad

import (
	_ "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/amd64/unroll" // register unrolled scalar backend
	_ "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/generic"      // register generic backend
	_ "github.com/cwbudde/algo-eq/dsp/filter/biquad/internal/arch/registry"     // initialize backend registry
)
