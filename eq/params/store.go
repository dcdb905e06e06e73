package params

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrUnknownParameter is returned for an ID the store does not hold.
var ErrUnknownParameter = errors.New("params: unknown parameter")

// Listener receives parameter changes. It is called on the goroutine that
// changed the value and must not block.
type Listener interface {
	ParameterChanged(id ID, value float64)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(id ID, value float64)

// ParameterChanged implements Listener.
func (f ListenerFunc) ParameterChanged(id ID, value float64) { f(id, value) }

// Store holds the equalizer parameter set.
type Store struct {
	params []*Parameter
	byID   map[ID]*Parameter

	mu        sync.Mutex // serialises subscription changes
	listeners atomic.Pointer[[]*Subscription]

	log logrus.FieldLogger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for subscription lifecycle events.
func WithLogger(l logrus.FieldLogger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// SlopeChoices are the labels of the cut filter slope parameters.
var SlopeChoices = []string{"12 dB/Oct", "24 dB/Oct", "36 dB/Oct", "48 dB/Oct"}

// NewStore returns a store holding the eleven equalizer parameters at their
// defaults.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		params: []*Parameter{
			floatParam(LowCutFreq, "LowCut Freq", 20, 20000, 1, 0.25, 20),
			floatParam(HighCutFreq, "HighCut Freq", 20, 20000, 1, 0.25, 20000),
			floatParam(PeakFreq, "Peak Freq", 20, 20000, 1, 0.25, 750),
			floatParam(PeakGain, "Peak Gain", -24, 24, 0.5, 1, 0),
			floatParam(PeakQuality, "Peak Quality", 0.1, 10, 0.05, 1, 1),
			choiceParam(LowCutSlope, "LowCut Slope", 0, SlopeChoices...),
			choiceParam(HighCutSlope, "HighCut Slope", 0, SlopeChoices...),
			boolParam(LowCutBypass, "LowCut Bypassed", false),
			boolParam(PeakBypass, "Peak Bypassed", false),
			boolParam(HighCutBypass, "HighCut Bypassed", false),
			boolParam(AnalyzerBypass, "Analyzer Bypassed", false),
		},
		byID: make(map[ID]*Parameter),
		log:  logrus.StandardLogger(),
	}
	for _, p := range s.params {
		s.byID[p.id] = p
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.listeners.Store(&[]*Subscription{})
	return s
}

// Parameters returns the parameters in layout order.
func (s *Store) Parameters() []*Parameter {
	return append([]*Parameter(nil), s.params...)
}

// Lookup returns the parameter with the given ID.
func (s *Store) Lookup(id ID) (*Parameter, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Value returns the current value of id.
func (s *Store) Value(id ID) (float64, error) {
	p, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return p.Value(), nil
}

// Set clamps and snaps value into the parameter range and stores it.
// Listeners are notified on the calling goroutine when the value changed.
func (s *Store) Set(id ID, value float64) error {
	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	if math.IsNaN(value) {
		return fmt.Errorf("params: %s: value is NaN", id)
	}
	if v, changed := p.store(value); changed {
		s.notify(id, v)
	}
	return nil
}

// SetNormalized sets id from a value in [0, 1].
func (s *Store) SetNormalized(id ID, normalized float64) error {
	p, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}
	return s.Set(id, p.rng.FromNormalized(normalized))
}

// SetBool sets a bool parameter.
func (s *Store) SetBool(id ID, on bool) error {
	v := 0.0
	if on {
		v = 1
	}
	return s.Set(id, v)
}

// Reset restores every parameter to its default.
func (s *Store) Reset() {
	for _, p := range s.params {
		if v, changed := p.store(p.def); changed {
			s.notify(p.id, v)
		}
	}
}

func (s *Store) notify(id ID, value float64) {
	for _, sub := range *s.listeners.Load() {
		if !sub.closed.Load() {
			sub.listener.ParameterChanged(id, value)
		}
	}
}

// Subscription is the handle of a registered listener. It must be closed
// before the listener is dropped.
type Subscription struct {
	store    *Store
	listener Listener
	closed   atomic.Bool
	once     sync.Once
}

// Subscribe registers l for every parameter.
func (s *Store) Subscribe(l Listener) *Subscription {
	sub := &Subscription{store: s, listener: l}

	s.mu.Lock()
	old := *s.listeners.Load()
	next := make([]*Subscription, len(old), len(old)+1)
	copy(next, old)
	next = append(next, sub)
	s.listeners.Store(&next)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"component": "params",
		"listeners": len(next),
	}).Debug("Listener subscribed")

	return sub
}

// Listeners returns the number of live subscriptions.
func (s *Store) Listeners() int {
	return len(*s.listeners.Load())
}

// Close unsubscribes the listener. A notification already in flight on
// another goroutine may still arrive; calling Close more than once is
// harmless.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.closed.Store(true)

		s := sub.store
		s.mu.Lock()
		old := *s.listeners.Load()
		next := make([]*Subscription, 0, len(old))
		for _, o := range old {
			if o != sub {
				next = append(next, o)
			}
		}
		s.listeners.Store(&next)
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{
			"component": "params",
			"listeners": len(next),
		}).Debug("Listener unsubscribed")
	})
}
