package fifo

import "fmt"

// BlockFifo is a SPSC ring of fixed-size sample blocks. All block storage
// is allocated up front; Push and Pop copy and never allocate.
type BlockFifo struct {
	ring
	blocks    [][]float64
	blockSize int
}

// NewBlockFifo returns a ring of capacity blocks of blockSize samples.
func NewBlockFifo(capacity, blockSize int) (*BlockFifo, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockSize, blockSize)
	}
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}

	storage := make([]float64, capacity*blockSize)
	blocks := make([][]float64, capacity)
	for i := range blocks {
		blocks[i] = storage[i*blockSize : (i+1)*blockSize : (i+1)*blockSize]
	}

	f := &BlockFifo{blocks: blocks, blockSize: blockSize}
	f.size = uint64(capacity)
	return f, nil
}

// Push copies block into the ring. It returns false without blocking when
// the ring is full; queued blocks are left untouched. A short block is
// zero padded, a long one truncated to the block size.
func (f *BlockFifo) Push(block []float64) bool {
	i, ok := f.writeSlot()
	if !ok {
		return false
	}
	slot := f.blocks[i]
	n := copy(slot, block)
	clear(slot[n:])
	f.publish()
	return true
}

// Pop copies the oldest block into out and reports whether one was
// available. out should hold BlockSize samples.
func (f *BlockFifo) Pop(out []float64) bool {
	i, ok := f.readSlot()
	if !ok {
		return false
	}
	copy(out, f.blocks[i])
	f.release()
	return true
}

// Available returns the number of complete blocks waiting.
func (f *BlockFifo) Available() int { return f.available() }

// Capacity returns the number of blocks the ring holds.
func (f *BlockFifo) Capacity() int { return int(f.size) }

// BlockSize returns the fixed block length.
func (f *BlockFifo) BlockSize() int { return f.blockSize }
