// Package fifo moves data from the audio goroutine to the analysis
// goroutine through lock-free single-producer single-consumer rings.
//
// Producers never block: a push into a full ring fails and the caller
// drops the item. Exactly one goroutine may push and exactly one may pop.
package fifo

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// DefaultCapacity is the number of blocks a BlockFifo holds by default.
const DefaultCapacity = 30

var (
	ErrInvalidCapacity  = errors.New("fifo: capacity must be > 0")
	ErrInvalidBlockSize = errors.New("fifo: block size must be > 0")
)

// ring is the index bookkeeping shared by Queue and BlockFifo. head and
// tail are free-running counters; the slot of counter n is n % size.
// The producer owns tail, the consumer owns head.
type ring struct {
	head atomic.Uint64
	tail atomic.Uint64
	size uint64
}

func checkCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return nil
}

// writeSlot returns the slot the producer may fill, or false when full.
func (r *ring) writeSlot() (uint64, bool) {
	t := r.tail.Load()
	if t-r.head.Load() >= r.size {
		return 0, false
	}
	return t % r.size, true
}

// publish makes the filled slot visible to the consumer.
func (r *ring) publish() {
	r.tail.Add(1)
}

// readSlot returns the oldest filled slot, or false when empty.
func (r *ring) readSlot() (uint64, bool) {
	h := r.head.Load()
	if h == r.tail.Load() {
		return 0, false
	}
	return h % r.size, true
}

// release hands the read slot back to the producer.
func (r *ring) release() {
	r.head.Add(1)
}

func (r *ring) available() int {
	return int(r.tail.Load() - r.head.Load())
}

// Queue is a generic SPSC ring of values.
type Queue[T any] struct {
	ring
	slots []T
}

// NewQueue returns a queue holding up to capacity values.
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	q := &Queue[T]{slots: make([]T, capacity)}
	q.size = uint64(capacity)
	return q, nil
}

// Push appends v and reports whether there was room.
func (q *Queue[T]) Push(v T) bool {
	i, ok := q.writeSlot()
	if !ok {
		return false
	}
	q.slots[i] = v
	q.publish()
	return true
}

// Pop removes and returns the oldest value.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	i, ok := q.readSlot()
	if !ok {
		return zero, false
	}
	v := q.slots[i]
	q.slots[i] = zero
	q.release()
	return v, true
}

// Latest drains the queue and returns the newest value, discarding older
// ones.
func (q *Queue[T]) Latest() (T, bool) {
	v, ok := q.Pop()
	if !ok {
		return v, false
	}
	for {
		next, more := q.Pop()
		if !more {
			return v, true
		}
		v = next
	}
}

// Available returns the number of queued values.
func (q *Queue[T]) Available() int { return q.available() }

// Capacity returns the maximum number of queued values.
func (q *Queue[T]) Capacity() int { return int(q.size) }
