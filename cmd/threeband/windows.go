package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-eq/dsp/window"
)

var windowRegistry = map[string]window.Type{
	"rectangular":     window.TypeRectangular,
	"hann":            window.TypeHann,
	"hamming":         window.TypeHamming,
	"blackman":        window.TypeBlackman,
	"blackman-harris": window.TypeBlackmanHarris4Term,
	"flat-top":        window.TypeFlatTop,
}

func windowNames() []string {
	names := make([]string, 0, len(windowRegistry))
	for n := range windowRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func resolveWindow(name string) (window.Type, error) {
	t, ok := windowRegistry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown window %q (one of %s)", name, strings.Join(windowNames(), ", "))
	}
	return t, nil
}

// WindowsCmd prints the spectral properties of the window functions the
// analyzer can use.
type WindowsCmd struct {
	Size     int      `default:"2048" help:"Window length in samples."`
	Periodic bool     `help:"Use the periodic (FFT) form instead of the symmetric form."`
	Names    []string `arg:"" optional:"" help:"Windows to show; all when omitted."`
}

func (c *WindowsCmd) Run(_ *Globals) error {
	return c.print(os.Stdout)
}

func (c *WindowsCmd) print(w io.Writer) error {
	names := c.Names
	if len(names) == 0 {
		names = windowNames()
	}

	var opts []window.Option
	if c.Periodic {
		opts = append(opts, window.WithPeriodic())
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tSidelobe [dB]\n")
	fmt.Fprintf(tw, "------\t----\t-------------\t-----------\t-------------\n")

	for _, name := range names {
		t, err := resolveWindow(name)
		if err != nil {
			return err
		}
		coeffs := window.Generate(t, c.Size, opts...)
		cg, err := window.CoherentGain(coeffs)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		enbw, err := window.EquivalentNoiseBandwidth(coeffs)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.1f\n", name, c.Size, cg, enbw, window.Info(t).HighestSidelobe)
	}
	return tw.Flush()
}
