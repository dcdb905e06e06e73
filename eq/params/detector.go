package params

import "sync/atomic"

// ChangeDetector tracks whether any parameter changed since it was last
// consumed. It subscribes to the store on construction and must be closed
// before it is dropped.
//
// A new detector starts dirty so that the first tick applies the initial
// parameter state.
type ChangeDetector struct {
	dirty atomic.Bool
	sub   *Subscription
}

// NewChangeDetector subscribes a detector to s.
func NewChangeDetector(s *Store) *ChangeDetector {
	d := &ChangeDetector{}
	d.dirty.Store(true)
	d.sub = s.Subscribe(d)
	return d
}

// ParameterChanged implements Listener.
func (d *ChangeDetector) ParameterChanged(ID, float64) {
	d.dirty.Store(true)
}

// IsDirty reports whether a change is pending.
func (d *ChangeDetector) IsDirty() bool { return d.dirty.Load() }

// MarkDirty forces the next TestAndClear to succeed.
func (d *ChangeDetector) MarkDirty() { d.dirty.Store(true) }

// ClearDirty drops any pending change.
func (d *ChangeDetector) ClearDirty() { d.dirty.Store(false) }

// TestAndClear atomically consumes a pending change. A change that lands
// after the swap sets the flag again and is seen on the next call.
func (d *ChangeDetector) TestAndClear() bool {
	return d.dirty.CompareAndSwap(true, false)
}

// Close unsubscribes the detector.
func (d *ChangeDetector) Close() {
	d.sub.Close()
}
