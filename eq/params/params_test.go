package params

import (
	"errors"
	"io"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietStore() *Store {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewStore(WithLogger(l))
}

func TestStoreDefaults(t *testing.T) {
	s := quietStore()
	if got := len(s.Parameters()); got != 11 {
		t.Fatalf("parameters = %d, want 11", got)
	}

	if got := Snapshot(s); got != DefaultChainSettings() {
		t.Fatalf("default snapshot = %+v, want %+v", got, DefaultChainSettings())
	}
}

func TestSetClampsAndSnaps(t *testing.T) {
	tests := []struct {
		id   ID
		in   float64
		want float64
	}{
		{PeakFreq, 1000.4, 1000},
		{PeakFreq, 5, 20},
		{PeakFreq, 1e6, 20000},
		{PeakGain, 6.3, 6.5},
		{PeakGain, -30, -24},
		{PeakQuality, 0.72, 0.7},
		{PeakQuality, 0, 0.1},
		{LowCutSlope, 2.4, 2},
		{LowCutSlope, 9, 3},
		{PeakBypass, 0.8, 1},
	}

	s := quietStore()
	for _, tt := range tests {
		if err := s.Set(tt.id, tt.in); err != nil {
			t.Fatalf("Set(%s, %v): %v", tt.id, tt.in, err)
		}

		got, err := s.Value(tt.id)
		if err != nil {
			t.Fatal(err)
		}

		if math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("Set(%s, %v) stored %v, want %v", tt.id, tt.in, got, tt.want)
		}
	}
}

func TestUnknownParameter(t *testing.T) {
	s := quietStore()
	if err := s.Set("Nope", 1); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Set err = %v", err)
	}
	if _, err := s.Value("Nope"); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("Value err = %v", err)
	}
	if err := s.SetNormalized("Nope", 0.5); !errors.Is(err, ErrUnknownParameter) {
		t.Fatalf("SetNormalized err = %v", err)
	}
	if _, ok := s.Lookup("Nope"); ok {
		t.Fatal("Lookup should fail")
	}
	if err := s.Set(PeakGain, math.NaN()); err == nil {
		t.Fatal("NaN should be rejected")
	}
}

func TestRangeSkewRoundTrip(t *testing.T) {
	p, _ := quietStore().Lookup(LowCutFreq)
	r := p.Range()

	for _, v := range []float64{20, 100, 1000, 5000, 20000} {
		n := r.ToNormalized(v)
		if n < 0 || n > 1 {
			t.Fatalf("normalized(%v) = %v out of range", v, n)
		}
		if back := r.FromNormalized(n); math.Abs(back-v) > 1e-6*v {
			t.Fatalf("round trip %v -> %v -> %v", v, n, back)
		}
	}

	// Skew 0.25 puts 1 kHz well past the middle of a linear mapping.
	if n := r.ToNormalized(1000); n < 0.4 {
		t.Fatalf("normalized(1000) = %v, expected skewed mapping", n)
	}
}

func TestSetNormalized(t *testing.T) {
	s := quietStore()
	if err := s.SetNormalized(PeakGain, 0.75); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Value(PeakGain); v != 12 {
		t.Fatalf("gain = %v, want 12", v)
	}

	if err := s.SetNormalized(HighCutFreq, 1); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.Value(HighCutFreq); v != 20000 {
		t.Fatalf("high cut = %v, want 20000", v)
	}
}

func TestSnapshotAndApply(t *testing.T) {
	s := quietStore()
	want := ChainSettings{
		PeakFreq:        1000,
		PeakGainDB:      6,
		PeakQuality:     1,
		LowCutFreq:      200,
		HighCutFreq:     8000,
		LowCutSlope:     Slope48,
		HighCutSlope:    Slope24,
		PeakBypassed:    true,
		AnalyzerEnabled: false,
	}

	if err := want.Apply(s); err != nil {
		t.Fatal(err)
	}

	if got := Snapshot(s); got != want {
		t.Fatalf("snapshot = %+v, want %+v", got, want)
	}

	if g := want.PeakGainLinear(); math.Abs(g-1.9952623149688795) > 1e-12 {
		t.Fatalf("linear gain = %v", g)
	}

	s.Reset()
	if got := Snapshot(s); got != DefaultChainSettings() {
		t.Fatalf("after reset = %+v", got)
	}
}

func TestSlope(t *testing.T) {
	for s, want := range map[Slope]int{Slope12: 12, Slope24: 24, Slope36: 36, Slope48: 48} {
		if s.DBPerOctave() != want {
			t.Fatalf("%v: %d dB/oct", s, s.DBPerOctave())
		}
		if s.Order() != want/6 {
			t.Fatalf("%v: order %d", s, s.Order())
		}
	}
	if Slope(4).Valid() || Slope(4).String() != "Slope(4)" {
		t.Fatal("slope 4 should be invalid")
	}
	if Slope48.String() != "48 dB/Oct" {
		t.Fatalf("label = %q", Slope48.String())
	}
}

func TestSubscriptionLifecycle(t *testing.T) {
	s := quietStore()

	var calls []ID
	sub := s.Subscribe(ListenerFunc(func(id ID, _ float64) {
		calls = append(calls, id)
	}))

	if s.Listeners() != 1 {
		t.Fatalf("listeners = %d, want 1", s.Listeners())
	}

	_ = s.Set(PeakGain, 3)
	_ = s.Set(PeakGain, 3) // unchanged, no notification
	_ = s.SetBool(PeakBypass, true)

	if len(calls) != 2 || calls[0] != PeakGain || calls[1] != PeakBypass {
		t.Fatalf("calls = %v", calls)
	}

	sub.Close()
	sub.Close()

	if s.Listeners() != 0 {
		t.Fatalf("listeners = %d after close", s.Listeners())
	}

	_ = s.Set(PeakGain, -3)
	if len(calls) != 2 {
		t.Fatalf("closed listener was notified: %v", calls)
	}
}

func TestListenerMayUnsubscribeDuringNotification(t *testing.T) {
	s := quietStore()

	var sub *Subscription
	var n int
	sub = s.Subscribe(ListenerFunc(func(ID, float64) {
		n++
		sub.Close()
	}))

	other := 0
	s.Subscribe(ListenerFunc(func(ID, float64) { other++ }))

	_ = s.Set(PeakFreq, 1000)
	_ = s.Set(PeakFreq, 2000)

	if n != 1 || other != 2 {
		t.Fatalf("n=%d other=%d", n, other)
	}
}

func TestChangeDetector(t *testing.T) {
	s := quietStore()
	d := NewChangeDetector(s)
	defer d.Close()

	if !d.IsDirty() {
		t.Fatal("new detector should start dirty")
	}
	if !d.TestAndClear() {
		t.Fatal("first TestAndClear should succeed")
	}
	if d.TestAndClear() {
		t.Fatal("second TestAndClear should fail")
	}

	_ = s.Set(PeakGain, 12)
	if !d.TestAndClear() {
		t.Fatal("change not detected")
	}

	d.MarkDirty()
	d.ClearDirty()
	if d.IsDirty() {
		t.Fatal("ClearDirty did not clear")
	}
}

func TestChangeDetectorCloseUnsubscribes(t *testing.T) {
	s := quietStore()
	d := NewChangeDetector(s)
	d.TestAndClear()
	d.Close()

	if s.Listeners() != 0 {
		t.Fatalf("listeners = %d after close", s.Listeners())
	}

	_ = s.Set(PeakGain, 12)
	if d.IsDirty() {
		t.Fatal("closed detector observed a change")
	}
}

func TestChangeDetectorConcurrentWrites(t *testing.T) {
	s := quietStore()
	d := NewChangeDetector(s)
	defer d.Close()

	const writes = 2000

	var wg sync.WaitGroup
	var done atomic.Bool

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			_ = s.Set(PeakGain, float64(i%97)*0.5-24)
		}
		done.Store(true)
	}()

	consumed := 0
	for !done.Load() {
		if d.TestAndClear() {
			consumed++
		}
		runtime.Gosched()
	}
	wg.Wait()

	if d.TestAndClear() {
		consumed++
	}
	if consumed == 0 {
		t.Fatal("no change consumed")
	}

	final := Snapshot(s).PeakGainDB
	if want := float64((writes-1)%97)*0.5 - 24; final != want {
		t.Fatalf("final gain = %v, want %v", final, want)
	}
}
