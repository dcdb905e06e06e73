package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/spectrum"
	"github.com/cwbudde/algo-eq/eq/chain"
	"github.com/cwbudde/algo-eq/eq/params"
	"github.com/cwbudde/algo-eq/eq/response"
)

// ResponseCmd prints the analytic magnitude response of the EQ at
// logarithmically spaced frequencies.
type ResponseCmd struct {
	Points int     `default:"31" help:"Number of frequencies."`
	Min    float64 `default:"20" help:"Lowest frequency in Hz."`
	Max    float64 `default:"20000" help:"Highest frequency in Hz."`

	Measured bool `help:"Add a column measured by filtering a sine through the EQ."`
}

func (c *ResponseCmd) Run(g *Globals) error {
	log, closer, err := g.newLogger(os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	return c.print(g, log, os.Stdout)
}

func (c *ResponseCmd) print(g *Globals, log logrus.FieldLogger, w io.Writer) error {
	if c.Points < 2 || !(c.Min > 0) || c.Max <= c.Min {
		return fmt.Errorf("need at least 2 points and 0 < min < max")
	}

	proc, err := g.newProcessor(log)
	if err != nil {
		return err
	}
	defer proc.Close()

	engine, err := response.NewEngine(proc, response.WithLogger(log))
	if err != nil {
		return err
	}
	defer engine.Close()

	var probe *chain.MonoChain
	if c.Measured {
		probe = chain.NewMonoChain()
		probe.Apply(params.Snapshot(proc.Params()), g.SampleRate)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if c.Measured {
		fmt.Fprintf(tw, "Frequency [Hz]\tGain [dB]\tMeasured [dB]\n")
		fmt.Fprintf(tw, "--------------\t---------\t-------------\n")
	} else {
		fmt.Fprintf(tw, "Frequency [Hz]\tGain [dB]\n")
		fmt.Fprintf(tw, "--------------\t---------\n")
	}
	for i := 0; i < c.Points; i++ {
		f := core.MapToLog10(float64(i)/float64(c.Points-1), c.Min, c.Max)
		if !c.Measured {
			fmt.Fprintf(tw, "%.1f\t%+.2f\n", f, engine.MagnitudeAt(f))
			continue
		}
		probe.Prepare(g.SampleRate, g.BlockSize)
		m, err := spectrum.MeasureGain(probe.Process, f, g.SampleRate, measureLength(f, g.SampleRate))
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%.1f\t%+.2f\t%+.2f\n", f, engine.MagnitudeAt(f), m)
	}
	return tw.Flush()
}

// measureLength gives low frequencies enough periods to settle and be read.
func measureLength(freq, sampleRate float64) int {
	return max(int(sampleRate/2), int(40*sampleRate/freq))
}
