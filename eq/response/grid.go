package response

import (
	"fmt"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/geom"
)

// GridLine is one labelled line of the view's background grid. Pos is an
// x coordinate for frequency lines and a y coordinate for gain lines.
type GridLine struct {
	Value float64
	Pos   float64
	Label string
}

var (
	gridFrequencies = []float64{20, 50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000}
	gridGains       = []float64{-24, -12, 0, 12, 24}
)

// FrequencyGrid returns the vertical grid lines for bounds.
func FrequencyGrid(bounds geom.Rect) []GridLine {
	lines := make([]GridLine, len(gridFrequencies))
	for i, f := range gridFrequencies {
		lines[i] = GridLine{
			Value: f,
			Pos:   bounds.X + bounds.Width*core.MapFromLog10(f, MinFrequency, MaxFrequency),
			Label: FormatFrequency(f),
		}
	}
	return lines
}

// GainGrid returns the horizontal grid lines for bounds.
func GainGrid(bounds geom.Rect) []GridLine {
	lines := make([]GridLine, len(gridGains))
	for i, g := range gridGains {
		lines[i] = GridLine{
			Value: g,
			Pos:   gainToY(g, bounds),
			Label: FormatGain(g),
		}
	}
	return lines
}

// FormatFrequency renders f as "500Hz" or "2kHz".
func FormatFrequency(f float64) string {
	if f >= 1000 {
		return fmt.Sprintf("%gkHz", f/1000)
	}
	return fmt.Sprintf("%gHz", f)
}

// FormatGain renders g with an explicit sign for positive values.
func FormatGain(g float64) string {
	if g > 0 {
		return fmt.Sprintf("+%gdB", g)
	}
	return fmt.Sprintf("%gdB", g)
}
