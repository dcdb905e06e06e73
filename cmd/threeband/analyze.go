package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/dsp/spectrum"
	"github.com/cwbudde/algo-eq/eq/analyzer"
	"github.com/cwbudde/algo-eq/internal/audio"
)

var octaveBands = []float64{31.5, 63, 125, 250, 500, 1000, 2000, 4000, 8000, 16000}

// SignalFlags select the test signal.
type SignalFlags struct {
	Signal    string  `default:"sine" enum:"sine,noise,sweep" help:"Test signal (${enum})."`
	Freq      float64 `default:"1000" help:"Sine frequency in Hz."`
	Amplitude float64 `default:"0.5" help:"Peak amplitude."`
	Seed      int64   `default:"1" help:"Noise seed."`
}

func (f SignalFlags) source(sampleRate float64) (signal.Source, error) {
	kind, err := signal.ParseKind(f.Signal)
	if err != nil {
		return nil, err
	}
	g := signal.NewGenerator([]core.ProcessorOption{core.WithSampleRate(sampleRate)}, signal.WithSeed(f.Seed))
	return g.NewSource(kind, f.Freq, f.Amplitude)
}

// AnalyzeCmd renders a test signal through the EQ offline and prints the
// averaged analyzer spectrum.
type AnalyzeCmd struct {
	SignalFlags `embed:""`

	Seconds float64 `default:"1" help:"Length of the rendered signal."`
	FFTSize int     `name:"fft-size" default:"2048" help:"Analyzer FFT size (power of two)."`
	Window  string  `default:"blackman-harris" help:"Analyzer window."`
	Smooth  int     `default:"0" help:"Fractional-octave smoothing, e.g. 3 for 1/3 octave; 0 is off."`
}

func (c *AnalyzeCmd) Run(g *Globals) error {
	log, closer, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	return c.print(g, log, os.Stdout)
}

// avgSpectrum is the mean of the analyzer's dB blocks over a render.
type avgSpectrum struct {
	db       []float64
	frames   int
	binWidth float64
}

func (c *AnalyzeCmd) analyze(g *Globals, log logrus.FieldLogger) (*avgSpectrum, error) {
	win, err := resolveWindow(c.Window)
	if err != nil {
		return nil, err
	}
	src, err := c.source(g.SampleRate)
	if err != nil {
		return nil, err
	}

	proc, err := g.newProcessor(log)
	if err != nil {
		return nil, err
	}
	defer proc.Close()

	gen, err := analyzer.NewFFTDataGenerator(c.FFTSize, analyzer.WithWindow(win), analyzer.WithLogger(log))
	if err != nil {
		return nil, err
	}
	r, err := audio.NewRenderer(proc, src, 1)
	if err != nil {
		return nil, err
	}

	total := int(c.Seconds * g.SampleRate)
	buf := make([]float32, g.BlockSize)
	block := make([]float64, g.BlockSize)
	frame := make([]float64, gen.NumBins())
	avg := &avgSpectrum{
		db:       make([]float64, gen.NumBins()),
		binWidth: gen.BinWidth(g.SampleRate),
	}

	collector := proc.Collector(0)
	for done := 0; done < total; done += len(buf) {
		r.Render(buf[:min(len(buf), total-done)])
		for collector.Pop(block) {
			gen.Push(block)
			for gen.GetFFTData(frame) {
				for i, v := range frame {
					avg.db[i] += v
				}
				avg.frames++
			}
		}
	}
	if avg.frames == 0 {
		return nil, fmt.Errorf("signal too short for a %d point FFT", c.FFTSize)
	}
	for i := range avg.db {
		avg.db[i] /= float64(avg.frames)
	}
	if c.Smooth > 0 {
		if err := avg.smooth(c.Smooth); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"component": "analyze",
		"frames":    avg.frames,
		"fft_size":  c.FFTSize,
		"window":    c.Window,
	}).Debug("Analysis complete")

	return avg, nil
}

// smooth applies 1/fraction octave smoothing to the linear amplitudes of
// every bin above DC.
func (s *avgSpectrum) smooth(fraction int) error {
	n := len(s.db) - 1
	freqs := make([]float64, n)
	amps := make([]float64, n)
	for i := range freqs {
		freqs[i] = float64(i+1) * s.binWidth
		amps[i] = core.DBToLinear(s.db[i+1])
	}
	smoothed, err := spectrum.SmoothFractionalOctave(freqs, amps, fraction)
	if err != nil {
		return err
	}
	for i, a := range smoothed {
		s.db[i+1] = core.LinearToDB(a)
	}
	return nil
}

// at returns the level of the bin nearest to freq.
func (s *avgSpectrum) at(freq float64) float64 {
	i := int(math.Round(freq / s.binWidth))
	i = max(0, min(i, len(s.db)-1))
	return s.db[i]
}

func (s *avgSpectrum) peak() (freq, db float64) {
	best := 1
	for i := 2; i < len(s.db); i++ {
		if s.db[i] > s.db[best] {
			best = i
		}
	}
	return float64(best) * s.binWidth, s.db[best]
}

func (c *AnalyzeCmd) print(g *Globals, log logrus.FieldLogger, w io.Writer) error {
	avg, err := c.analyze(g, log)
	if err != nil {
		return err
	}

	freq, db := avg.peak()
	fmt.Fprintf(w, "Peak: %.1f Hz at %+.2f dB (%d frames)\n\n", freq, db, avg.frames)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band [Hz]\tLevel [dB]\n")
	fmt.Fprintf(tw, "---------\t----------\n")
	for _, f := range octaveBands {
		fmt.Fprintf(tw, "%g\t%+.2f\n", f, avg.at(f))
	}
	return tw.Flush()
}
