package response

import (
	"fmt"
	"testing"

	"github.com/cwbudde/algo-eq/eq/geom"
)

func TestFrequencyGrid(t *testing.T) {
	bounds := geom.NewRect(10, 0, 300, 100)
	lines := FrequencyGrid(bounds)

	if len(lines) != 10 {
		t.Fatalf("lines = %d, want 10", len(lines))
	}
	if !almostEqual(lines[0].Pos, 10, 1e-9) {
		t.Fatalf("20 Hz line at %v, want 10", lines[0].Pos)
	}
	if !almostEqual(lines[len(lines)-1].Pos, 310, 1e-9) {
		t.Fatalf("20 kHz line at %v, want 310", lines[len(lines)-1].Pos)
	}
	if !almostEqual(lines[6].Pos, 210, 1e-9) {
		t.Fatalf("2 kHz line at %v, want 210", lines[6].Pos)
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].Pos <= lines[i-1].Pos {
			t.Fatalf("grid not increasing at %d", i)
		}
	}
}

func TestGainGrid(t *testing.T) {
	lines := GainGrid(geom.NewRect(0, 0, 100, 100))
	want := []struct {
		pos   float64
		label string
	}{
		{100, "-24dB"},
		{75, "-12dB"},
		{50, "0dB"},
		{25, "+12dB"},
		{0, "+24dB"},
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %d, want %d", len(lines), len(want))
	}
	for i, w := range want {
		if !almostEqual(lines[i].Pos, w.pos, 1e-9) || lines[i].Label != w.label {
			t.Errorf("line %d = (%v, %q), want (%v, %q)", i, lines[i].Pos, lines[i].Label, w.pos, w.label)
		}
	}
}

func ExampleFormatFrequency() {
	for _, f := range []float64{20, 500, 1000, 20000} {
		fmt.Println(FormatFrequency(f))
	}
	// Output:
	// 20Hz
	// 500Hz
	// 1kHz
	// 20kHz
}
