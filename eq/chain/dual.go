package chain

import "github.com/cwbudde/algo-eq/eq/params"

// DualMono runs two independent chains, left and right.
type DualMono struct {
	chains [2]*MonoChain
}

// NewDualMono returns two fresh chains.
func NewDualMono() *DualMono {
	return &DualMono{chains: [2]*MonoChain{NewMonoChain(), NewMonoChain()}}
}

// Channel returns chain 0 (left) or 1 (right).
func (d *DualMono) Channel(i int) *MonoChain {
	return d.chains[i]
}

// Prepare prepares both chains.
func (d *DualMono) Prepare(sampleRate float64, maxBlockSize int) {
	for _, c := range d.chains {
		c.Prepare(sampleRate, maxBlockSize)
	}
}

// Process filters left and right in place. A nil channel is skipped, so
// mono input passes right as nil.
func (d *DualMono) Process(left, right []float64) {
	if left != nil {
		d.chains[0].Process(left)
	}
	if right != nil {
		d.chains[1].Process(right)
	}
}

// Apply designs the coefficients once and publishes the same immutable
// sets into both channels.
func (d *DualMono) Apply(s params.ChainSettings, sampleRate float64) {
	d.Install(NewDesign(s, sampleRate))
}

// Install publishes a precomputed design into both channels.
func (d *DualMono) Install(design *Design) {
	for _, c := range d.chains {
		c.Install(design)
	}
}
