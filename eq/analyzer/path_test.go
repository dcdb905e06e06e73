package analyzer

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/fifo"
	"github.com/cwbudde/algo-eq/eq/geom"
	"github.com/cwbudde/algo-eq/internal/testutil"
)

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestBuildPathBinsAndBounds(t *testing.T) {
	bounds := geom.NewRect(10, 20, 300, 100)
	const binWidth = 48000.0 / 2048

	path := BuildPath(constant(-12, 1024), bounds, 2048, binWidth, -48)

	// Even bins from 2 (46.9 Hz) to 852 (19968.75 Hz).
	if len(path) != 426 {
		t.Fatalf("points = %d, want 426", len(path))
	}

	for i, p := range path {
		if !bounds.Contains(p) {
			t.Fatalf("point %d %+v outside bounds", i, p)
		}
		if i > 0 && p.X < path[i-1].X {
			t.Fatalf("x not monotonic at %d", i)
		}
		if want := core.Map(-12, -48, 0, bounds.Bottom(), bounds.Y); p.Y != want {
			t.Fatalf("y = %v, want %v", p.Y, want)
		}
	}
}

func TestBuildPathMapping(t *testing.T) {
	bounds := geom.NewRect(10, 20, 300, 100)
	data := constant(-48, 1024)
	data[100] = -24 // 2 kHz at 20 Hz per bin
	data[200] = 6
	data[300] = -100

	path := BuildPath(data, bounds, 2048, 20, -48)

	var mid []geom.Point
	for _, p := range path {
		if p.Y == 70 {
			mid = append(mid, p)
		}
	}
	if len(mid) != 1 {
		t.Fatalf("points at -24 dB = %v, want exactly one", mid)
	}
	if want := 10 + math.Floor(core.MapFromLog10(2000, 20, 20000)*300); mid[0].X != want {
		t.Fatalf("2 kHz at x=%v, want %v", mid[0].X, want)
	}

	// Bin 2 (40 Hz) is the first inside the frequency range.
	if first := path[0]; first.X != 10+math.Floor(core.MapFromLog10(40, 20, 20000)*300) || first.Y != bounds.Bottom() {
		t.Fatalf("first point %+v", first)
	}

	for _, pt := range path {
		if pt.Y < bounds.Y || pt.Y > bounds.Bottom() {
			t.Fatalf("y %v not clamped", pt.Y)
		}
	}
}

func TestBuildPathEmptyData(t *testing.T) {
	if p := BuildPath(nil, geom.NewRect(0, 0, 100, 100), 2048, 23.4, -48); len(p) != 0 {
		t.Fatalf("path from no data = %v", p)
	}
}

func TestPathGeneratorLatestWins(t *testing.T) {
	g := NewPathGenerator()
	bounds := geom.NewRect(0, 0, 200, 100)

	if p := g.Path(); p != nil {
		t.Fatalf("initial path = %v", p)
	}

	for _, db := range []float64{-40, -30, -20} {
		g.GeneratePath(constant(db, 512), bounds, 1024, 46.875, -48)
	}
	if g.NumPathsAvailable() != 3 {
		t.Fatalf("available = %d", g.NumPathsAvailable())
	}

	latest := g.Path()
	want := core.Map(-20, -48, 0, 100, 0)
	if len(latest) == 0 || latest[0].Y != want {
		t.Fatalf("latest path y = %v, want %v", latest[0].Y, want)
	}
	if g.NumPathsAvailable() != 0 {
		t.Fatal("Path should drain the queue")
	}

	latest[0].Y = -999
	again := g.Path()
	if again[0].Y != want {
		t.Fatal("returned path shares storage with the generator")
	}
}

func TestPathGeneratorGetPathOrder(t *testing.T) {
	g := NewPathGenerator()
	bounds := geom.NewRect(0, 0, 200, 100)
	g.GeneratePath(constant(-10, 512), bounds, 1024, 46.875, -48)
	g.GeneratePath(constant(-20, 512), bounds, 1024, 46.875, -48)

	first, ok := g.GetPath()
	if !ok || first[0].Y != core.Map(-10, -48, 0, 100, 0) {
		t.Fatalf("GetPath should return the oldest path")
	}
}

func TestPathProducerFollowsSine(t *testing.T) {
	const sr = 48000.0
	collector := fifo.NewSampleCollector(fifo.DefaultCapacity)
	if err := collector.Prepare(512); err != nil {
		t.Fatal(err)
	}

	p, err := NewPathProducer(collector, DefaultFFTSize, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}

	bounds := geom.NewRect(0, 0, 600, 200)
	p.Process(bounds, sr)
	if len(p.Path()) != 0 {
		t.Fatal("path before any audio")
	}

	collector.Update(testutil.DeterministicSine(1000, sr, 0.5, 4096))
	p.Process(bounds, sr)

	path := p.Path()
	if len(path) == 0 {
		t.Fatal("no path produced")
	}

	top := path[0]
	for _, pt := range path {
		if pt.Y < top.Y {
			top = pt
		}
	}

	wantX := math.Floor(core.MapFromLog10(1000, MinFrequency, MaxFrequency) * bounds.Width)
	if math.Abs(top.X-wantX) > 3 {
		t.Fatalf("spectral peak at x=%v, want ~%v", top.X, wantX)
	}

	if p.Generator().Dropped() != 0 || p.Paths().Dropped() != 0 {
		t.Fatal("producer dropped data")
	}
}
