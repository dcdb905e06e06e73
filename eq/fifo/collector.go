package fifo

import (
	"sync/atomic"
)

// SampleCollector groups the samples of one channel, arriving in host
// blocks of any size, into fixed-size blocks and queues them for the
// analysis goroutine. Update runs on the audio goroutine; Pop and the
// counters may be read from the analysis goroutine.
type SampleCollector struct {
	capacity int

	fifo     atomic.Pointer[BlockFifo]
	buf      []float64
	fill     int
	prepared atomic.Bool
	dropped  atomic.Uint64
}

// NewSampleCollector returns an unprepared collector whose ring holds
// capacity blocks.
func NewSampleCollector(capacity int) *SampleCollector {
	return &SampleCollector{capacity: capacity}
}

// Prepare allocates the block storage. It is not real-time safe and must
// not run concurrently with Update.
func (c *SampleCollector) Prepare(blockSize int) error {
	c.prepared.Store(false)

	f, err := NewBlockFifo(c.capacity, blockSize)
	if err != nil {
		return err
	}

	c.buf = make([]float64, blockSize)
	c.fill = 0
	c.dropped.Store(0)
	c.fifo.Store(f)
	c.prepared.Store(true)
	return nil
}

// Update appends samples. Each time a block fills up it is pushed; a block
// that finds the ring full is dropped and counted.
func (c *SampleCollector) Update(samples []float64) {
	if !c.prepared.Load() {
		return
	}
	f := c.fifo.Load()
	for len(samples) > 0 {
		n := copy(c.buf[c.fill:], samples)
		c.fill += n
		samples = samples[n:]

		if c.fill == len(c.buf) {
			if !f.Push(c.buf) {
				c.dropped.Add(1)
			}
			c.fill = 0
		}
	}
}

// Prepared reports whether Prepare succeeded.
func (c *SampleCollector) Prepared() bool { return c.prepared.Load() }

// BlockSize returns the prepared block size, or 0.
func (c *SampleCollector) BlockSize() int {
	if f := c.fifo.Load(); f != nil {
		return f.BlockSize()
	}
	return 0
}

// NumCompleteBlocks returns the number of blocks waiting to be popped.
func (c *SampleCollector) NumCompleteBlocks() int {
	if f := c.fifo.Load(); f != nil {
		return f.Available()
	}
	return 0
}

// Pop copies the oldest complete block into out.
func (c *SampleCollector) Pop(out []float64) bool {
	if f := c.fifo.Load(); f != nil {
		return f.Pop(out)
	}
	return false
}

// Dropped returns the number of blocks lost to a full ring since Prepare.
func (c *SampleCollector) Dropped() uint64 { return c.dropped.Load() }
