package response

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/eq/analyzer"
	"github.com/cwbudde/algo-eq/eq/geom"
	"github.com/cwbudde/algo-eq/eq/params"
	"github.com/cwbudde/algo-eq/eq/plugin"
	"github.com/cwbudde/algo-eq/internal/testutil"
)

const sr = 48000.0

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(t *testing.T) (*plugin.Processor, *Engine) {
	t.Helper()
	log := quietLogger()
	p := plugin.NewProcessor(plugin.WithLogger(log))
	if err := p.Prepare(sr, 512); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	e, err := NewEngine(p, WithLogger(log))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() {
		e.Close()
		p.Close()
	})
	return p, e
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewEngineErrors(t *testing.T) {
	if _, err := NewEngine(nil); !errors.Is(err, ErrNilProcessor) {
		t.Fatalf("NewEngine(nil) error = %v, want ErrNilProcessor", err)
	}

	p := plugin.NewProcessor(plugin.WithLogger(quietLogger()))
	defer p.Close()
	if _, err := NewEngine(p, WithFFTSize(1000)); !errors.Is(err, analyzer.ErrInvalidFFTSize) {
		t.Fatalf("NewEngine(fft 1000) error = %v, want ErrInvalidFFTSize", err)
	}
}

func TestMagnitudesFollowParametersAfterTick(t *testing.T) {
	p, e := newEngine(t)

	if got := e.MagnitudeAt(1000); !almostEqual(got, 0, 0.05) {
		t.Fatalf("default response at 1 kHz = %.3f dB, want ~0", got)
	}

	store := p.Params()
	if err := store.Set(params.PeakFreq, 1000); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(params.PeakGain, 6); err != nil {
		t.Fatal(err)
	}

	if got := e.MagnitudeAt(1000); !almostEqual(got, 0, 0.05) {
		t.Fatalf("response changed before Tick: %.3f dB", got)
	}

	e.Tick(geom.NewRect(0, 0, 300, 100))
	if got := e.MagnitudeAt(1000); !almostEqual(got, 6, 0.05) {
		t.Fatalf("response at 1 kHz = %.3f dB, want ~6", got)
	}
}

func TestMagnitudesSpanLogAxis(t *testing.T) {
	p, e := newEngine(t)
	if err := p.Params().SetBool(params.LowCutBypass, true); err != nil {
		t.Fatal(err)
	}
	if err := p.Params().Set(params.HighCutFreq, 1000); err != nil {
		t.Fatal(err)
	}
	e.Tick(geom.Rect{})

	mags := e.Magnitudes(300)
	if len(mags) != 300 {
		t.Fatalf("len = %d, want 300", len(mags))
	}
	if !almostEqual(mags[0], 0, 0.01) {
		t.Fatalf("first column (20 Hz) = %.3f dB, want ~0", mags[0])
	}
	for i := 1; i < len(mags); i++ {
		if mags[i] > mags[i-1]+1e-9 {
			t.Fatalf("low pass response rises at column %d: %.4f > %.4f", i, mags[i], mags[i-1])
		}
	}
	if e.Magnitudes(0) != nil {
		t.Fatal("Magnitudes(0) should be nil")
	}
}

func TestResponsePathFlatWhenBypassed(t *testing.T) {
	p, e := newEngine(t)
	for _, id := range []params.ID{params.LowCutBypass, params.PeakBypass, params.HighCutBypass} {
		if err := p.Params().SetBool(id, true); err != nil {
			t.Fatal(err)
		}
	}

	bounds := geom.NewRect(10, 20, 200, 100)
	e.Tick(bounds)
	path := e.ResponsePath(bounds)

	if len(path) != 200 {
		t.Fatalf("points = %d, want 200", len(path))
	}
	for i, pt := range path {
		if pt.X != 10+float64(i) {
			t.Fatalf("point %d x = %v, want %v", i, pt.X, 10+float64(i))
		}
		if !almostEqual(pt.Y, 70, 1e-9) {
			t.Fatalf("point %d y = %v, want 70 (0 dB)", i, pt.Y)
		}
	}
}

func TestResponsePathGainMapping(t *testing.T) {
	p, e := newEngine(t)
	store := p.Params()
	for _, id := range []params.ID{params.LowCutBypass, params.HighCutBypass} {
		if err := store.SetBool(id, true); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Set(params.PeakGain, 24); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(params.PeakQuality, 0.1); err != nil {
		t.Fatal(err)
	}

	bounds := geom.NewRect(0, 0, 400, 100)
	e.Tick(bounds)
	path := e.ResponsePath(bounds)

	top := path[0].Y
	for _, pt := range path {
		top = math.Min(top, pt.Y)
	}
	if top < 0 || top > 5 {
		t.Fatalf("peak y = %.3f, want close to the top edge for +24 dB", top)
	}
}

func TestAnalyzerPathsInFrame(t *testing.T) {
	p, e := newEngine(t)

	left := testutil.Float32(testutil.DeterministicSine(1000, sr, 0.5, 4096))
	p.ProcessBlock([][]float32{left})

	bounds := geom.NewRect(0, 0, 300, 100)
	e.Tick(bounds)
	f := e.Frame(bounds)

	if !f.AnalyzerEnabled {
		t.Fatal("analyzer disabled by default")
	}
	if len(f.Left) == 0 {
		t.Fatal("left analyzer path is empty after 4096 samples")
	}
	if len(f.Right) != 0 {
		t.Fatalf("right analyzer path has %d points for mono input", len(f.Right))
	}
	if len(f.Response) != 300 {
		t.Fatalf("response points = %d, want 300", len(f.Response))
	}
}

func TestAnalyzerBypassSkipsAnalysis(t *testing.T) {
	p, e := newEngine(t)
	if err := p.Params().SetBool(params.AnalyzerBypass, true); err != nil {
		t.Fatal(err)
	}

	p.ProcessBlock([][]float32{testutil.Float32(testutil.DeterministicSine(1000, sr, 0.5, 4096))})

	bounds := geom.NewRect(0, 0, 300, 100)
	e.Tick(bounds)
	f := e.Frame(bounds)

	if f.AnalyzerEnabled || f.Left != nil || f.Right != nil {
		t.Fatalf("analyzer output while bypassed: enabled=%v left=%d right=%d", f.AnalyzerEnabled, len(f.Left), len(f.Right))
	}
	if got := p.Collector(0).NumCompleteBlocks(); got != 8 {
		t.Fatalf("collector blocks = %d, want 8 left untouched", got)
	}
}

func TestRunDeliversFrames(t *testing.T) {
	_, e := newEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	frames := 0
	err := e.Run(ctx, geom.NewRect(0, 0, 64, 32), func(f Frame) {
		frames++
		if len(f.Response) != 64 {
			t.Errorf("frame response points = %d, want 64", len(f.Response))
		}
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run() error = %v, want DeadlineExceeded", err)
	}
	if frames == 0 {
		t.Fatal("no frames delivered")
	}
}

func BenchmarkResponsePath(b *testing.B) {
	p := plugin.NewProcessor(plugin.WithLogger(quietLogger()))
	defer p.Close()
	if err := p.Prepare(sr, 512); err != nil {
		b.Fatal(err)
	}
	e, err := NewEngine(p, WithLogger(quietLogger()))
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	bounds := geom.NewRect(0, 0, 600, 200)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = e.ResponsePath(bounds)
	}
}
