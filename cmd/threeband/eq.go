package main

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/algo-eq/eq/params"
)

// EQFlags set the initial equalizer parameters.
type EQFlags struct {
	LowCut       float64  `default:"20" help:"Low cut frequency in Hz."`
	LowCutSlope  string   `default:"12" enum:"12,24,36,48" help:"Low cut slope in dB/oct (${enum})."`
	PeakFreq     float64  `default:"750" help:"Peak frequency in Hz."`
	PeakGain     float64  `default:"0" help:"Peak gain in dB."`
	PeakQ        float64  `name:"peak-q" default:"1" help:"Peak quality."`
	HighCut      float64  `default:"20000" help:"High cut frequency in Hz."`
	HighCutSlope string   `default:"12" enum:"12,24,36,48" help:"High cut slope in dB/oct (${enum})."`
	Bypass       []string `help:"Bands to bypass: low-cut, peak, high-cut."`
	NoAnalyzer   bool     `help:"Switch the spectrum analyzer off."`
}

// Settings converts the flags into chain settings.
func (f EQFlags) Settings() (params.ChainSettings, error) {
	low, err := parseSlope(f.LowCutSlope)
	if err != nil {
		return params.ChainSettings{}, err
	}
	high, err := parseSlope(f.HighCutSlope)
	if err != nil {
		return params.ChainSettings{}, err
	}

	s := params.ChainSettings{
		PeakFreq:        f.PeakFreq,
		PeakGainDB:      f.PeakGain,
		PeakQuality:     f.PeakQ,
		LowCutFreq:      f.LowCut,
		HighCutFreq:     f.HighCut,
		LowCutSlope:     low,
		HighCutSlope:    high,
		AnalyzerEnabled: !f.NoAnalyzer,
	}
	for _, band := range f.Bypass {
		switch band {
		case "low-cut":
			s.LowCutBypassed = true
		case "peak":
			s.PeakBypassed = true
		case "high-cut":
			s.HighCutBypassed = true
		default:
			return params.ChainSettings{}, fmt.Errorf("unknown band %q", band)
		}
	}
	return s, nil
}

// parseSlope maps "12", "24", "36" or "48" dB/oct to a Slope.
func parseSlope(db string) (params.Slope, error) {
	n, err := strconv.Atoi(db)
	if err != nil {
		return 0, fmt.Errorf("slope %q: %w", db, err)
	}
	s := params.Slope(n/12 - 1)
	if n%12 != 0 || !s.Valid() {
		return 0, fmt.Errorf("slope %q: want 12, 24, 36 or 48", db)
	}
	return s, nil
}
