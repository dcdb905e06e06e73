package plugin

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/chain"
	"github.com/cwbudde/algo-eq/eq/params"
	"github.com/cwbudde/algo-eq/internal/testutil"
)

const sr = 48000.0

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newPrepared(t *testing.T, maxBlock int) *Processor {
	t.Helper()
	p := NewProcessor(WithLogger(quietLogger()))
	if err := p.Prepare(sr, maxBlock); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	t.Cleanup(p.Close)
	return p
}

func bypassAll(t *testing.T, s *params.Store) {
	t.Helper()
	for _, id := range []params.ID{params.LowCutBypass, params.PeakBypass, params.HighCutBypass} {
		if err := s.SetBool(id, true); err != nil {
			t.Fatalf("SetBool(%s): %v", id, err)
		}
	}
}

func toFloat64(src []float32) []float64 {
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out
}

func TestIsLayoutSupported(t *testing.T) {
	tests := []struct {
		in, out int
		want    bool
	}{
		{1, 1, true},
		{2, 2, true},
		{1, 2, false},
		{2, 1, false},
		{0, 0, false},
		{6, 6, false},
	}
	for _, tt := range tests {
		if got := IsLayoutSupported(tt.in, tt.out); got != tt.want {
			t.Errorf("IsLayoutSupported(%d, %d) = %v, want %v", tt.in, tt.out, got, tt.want)
		}
	}
}

func TestPrepareRejectsInvalidArguments(t *testing.T) {
	p := NewProcessor(WithLogger(quietLogger()))
	defer p.Close()

	if err := p.Prepare(0, 512); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("Prepare(0, 512) error = %v, want ErrInvalidSampleRate", err)
	}
	if err := p.Prepare(math.NaN(), 512); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("Prepare(NaN, 512) error = %v, want ErrInvalidSampleRate", err)
	}
	if err := p.Prepare(sr, 0); !errors.Is(err, ErrInvalidBlockSize) {
		t.Fatalf("Prepare(sr, 0) error = %v, want ErrInvalidBlockSize", err)
	}
	if p.IsPrepared() {
		t.Fatal("processor prepared after failed Prepare")
	}
}

func TestPrepareAfterCloseFails(t *testing.T) {
	p := NewProcessor(WithLogger(quietLogger()))
	p.Close()
	p.Close()
	if err := p.Prepare(sr, 64); !errors.Is(err, ErrClosed) {
		t.Fatalf("Prepare after Close error = %v, want ErrClosed", err)
	}
}

func TestProcessorOptions(t *testing.T) {
	p := NewProcessor(
		WithLogger(quietLogger()),
		WithProcessorOptions(core.WithSampleRate(44100), core.WithBlockSize(128)),
	)
	defer p.Close()

	if got := p.SampleRate(); got != 44100 {
		t.Fatalf("SampleRate before Prepare = %v, want 44100", got)
	}
	if got := p.Config().BlockSize; got != 128 {
		t.Fatalf("BlockSize = %d, want 128", got)
	}

	if err := p.Prepare(96000, 256); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got := p.SampleRate(); got != 96000 {
		t.Fatalf("SampleRate after Prepare = %v, want 96000", got)
	}
	if got := p.Collector(0).BlockSize(); got != 256 {
		t.Fatalf("collector block size = %d, want 256", got)
	}
}

func TestProcessBlockUnpreparedPanics(t *testing.T) {
	p := NewProcessor(WithLogger(quietLogger()))
	defer p.Close()

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, chain.ErrNotPrepared) {
			t.Fatalf("recover() = %v, want ErrNotPrepared", r)
		}
	}()
	p.ProcessBlock([][]float32{make([]float32, 8)})
}

func TestProcessBlockChannelLengthMismatchPanics(t *testing.T) {
	p := newPrepared(t, 64)

	left := make([]float32, 100)
	right := make([]float32, 40)
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrChannelLength) {
			t.Fatalf("recover() = %v, want ErrChannelLength", r)
		}
		if p.Collector(0).NumCompleteBlocks() != 0 {
			t.Fatal("left channel processed before the length check")
		}
	}()
	p.ProcessBlock([][]float32{left, right})
}

func TestPrepareReusesAndGrowsScratch(t *testing.T) {
	p := newPrepared(t, 256)
	ref := chain.NewMonoChain()

	for _, block := range []int{64, 1024} {
		if err := p.Prepare(sr, block); err != nil {
			t.Fatalf("Prepare(%d): %v", block, err)
		}
		ref.Prepare(sr, block)
		ref.Apply(params.Snapshot(p.Params()), sr)

		in := testutil.Float32(testutil.DeterministicNoise(int64(block), 0.5, 1500))
		got := append([]float32(nil), in...)
		p.ProcessBlock([][]float32{got})

		want := toFloat64(in)
		ref.Process(want)
		testutil.RequireSliceNearlyEqual(t, toFloat64(got), want, 1e-6)
	}
}

func TestAllBypassedIsTransparent(t *testing.T) {
	p := newPrepared(t, 256)
	bypassAll(t, p.Params())
	if !p.Refresh() {
		t.Fatal("Refresh() = false after bypass changes")
	}

	left := testutil.Float32(testutil.DeterministicNoise(3, 0.5, 1000))
	right := testutil.Float32(testutil.DeterministicSine(440, sr, 0.5, 1000))
	wantL := append([]float32(nil), left...)
	wantR := append([]float32(nil), right...)

	p.ProcessBlock([][]float32{left, right})

	for i := range left {
		if left[i] != wantL[i] || right[i] != wantR[i] {
			t.Fatalf("sample %d changed: got (%v, %v), want (%v, %v)", i, left[i], right[i], wantL[i], wantR[i])
		}
	}
}

func TestProcessBlockMatchesChain(t *testing.T) {
	p := newPrepared(t, 512)
	if err := p.Params().Set(params.PeakGain, 9); err != nil {
		t.Fatal(err)
	}
	p.Refresh()

	ref := chain.NewMonoChain()
	ref.Prepare(sr, 512)
	ref.Apply(params.Snapshot(p.Params()), sr)

	in := testutil.Float32(testutil.DeterministicNoise(7, 0.5, 512))
	want := toFloat64(in)
	ref.Process(want)

	buf := append([]float32(nil), in...)
	p.ProcessBlock([][]float32{buf})

	testutil.RequireSliceNearlyEqual(t, toFloat64(buf), toFloat64(testutil.Float32(want)), 0)
}

func TestProcessBlockChunksLargeBuffers(t *testing.T) {
	small := newPrepared(t, 64)
	large := newPrepared(t, 4096)

	in := testutil.Float32(testutil.DeterministicNoise(11, 0.5, 1000))
	a := append([]float32(nil), in...)
	b := append([]float32(nil), in...)

	small.ProcessBlock([][]float32{a})
	large.ProcessBlock([][]float32{b})

	testutil.RequireSliceNearlyEqual(t, toFloat64(a), toFloat64(b), 1e-6)
}

func TestProcessInterleavedMatchesPerChannel(t *testing.T) {
	planar := newPrepared(t, 128)
	inter := newPrepared(t, 128)

	left := testutil.Float32(testutil.DeterministicNoise(1, 0.5, 700))
	right := testutil.Float32(testutil.DeterministicNoise(2, 0.5, 700))
	buf := testutil.Interleave(left, right)

	l := append([]float32(nil), left...)
	r := append([]float32(nil), right...)
	planar.ProcessBlock([][]float32{l, r})
	inter.ProcessInterleaved(buf, 2)

	for i := range l {
		if buf[2*i] != l[i] || buf[2*i+1] != r[i] {
			t.Fatalf("frame %d: interleaved (%v, %v), planar (%v, %v)", i, buf[2*i], buf[2*i+1], l[i], r[i])
		}
	}
}

func TestProcessFeedsCollectors(t *testing.T) {
	p := newPrepared(t, 128)

	mono := make([]float32, 4*128)
	p.ProcessBlock([][]float32{mono})

	if got := p.Collector(0).NumCompleteBlocks(); got != 4 {
		t.Fatalf("left collector blocks = %d, want 4", got)
	}
	if got := p.Collector(1).NumCompleteBlocks(); got != 0 {
		t.Fatalf("right collector blocks = %d, want 0 for mono input", got)
	}

	stereo := testutil.Interleave(make([]float32, 128), make([]float32, 128))
	p.ProcessInterleaved(stereo, 2)
	if got := p.Collector(1).NumCompleteBlocks(); got != 1 {
		t.Fatalf("right collector blocks = %d, want 1", got)
	}
}

func TestRefreshOnlyWhenChanged(t *testing.T) {
	p := NewProcessor(WithLogger(quietLogger()))
	defer p.Close()

	if err := p.Params().Set(params.PeakGain, 3); err != nil {
		t.Fatal(err)
	}
	if p.Refresh() {
		t.Fatal("Refresh() = true before Prepare")
	}
	if err := p.Prepare(sr, 64); err != nil {
		t.Fatal(err)
	}
	if p.Refresh() {
		t.Fatal("Refresh() = true right after Prepare applied the snapshot")
	}

	before := p.Chains().Channel(0).Stage(chain.Peak, 0).Coefficients()
	if err := p.Params().Set(params.PeakGain, 6); err != nil {
		t.Fatal(err)
	}
	if !p.Refresh() {
		t.Fatal("Refresh() = false after a change")
	}
	if p.Refresh() {
		t.Fatal("second Refresh() = true without a change")
	}

	for ch := 0; ch < 2; ch++ {
		got := p.Chains().Channel(ch).Stage(chain.Peak, 0).Coefficients()
		if got == before {
			t.Fatalf("channel %d peak coefficients not replaced", ch)
		}
	}
}

func TestRunAppliesChangesAndStops(t *testing.T) {
	p := newPrepared(t, 64)
	before := p.Chains().Channel(1).Stage(chain.Peak, 0).Coefficients()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	if err := p.Params().Set(params.PeakFreq, 2000); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for p.Chains().Channel(1).Stage(chain.Peak, 0).Coefficients() == before {
		if time.Now().After(deadline) {
			t.Fatal("control loop did not apply the change")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func BenchmarkProcessBlockStereo(b *testing.B) {
	p := NewProcessor(WithLogger(quietLogger()))
	defer p.Close()
	if err := p.Prepare(sr, 512); err != nil {
		b.Fatal(err)
	}
	left := testutil.Float32(testutil.DeterministicNoise(1, 0.5, 512))
	right := testutil.Float32(testutil.DeterministicNoise(2, 0.5, 512))
	bufs := [][]float32{left, right}

	b.ReportAllocs()
	b.SetBytes(int64(len(left) * 2 * 4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.ProcessBlock(bufs)
	}
}
