// Command threeband runs the three-band equalizer from the terminal.
//
// Usage:
//
//	threeband [flags] <command>
//
// Commands:
//
//	response   print the magnitude response of the configured EQ
//	analyze    render a test signal offline and print its spectrum
//	live       play a test signal through the EQ with a live editor
//	windows    print properties of the analyzer window functions
//
// Flag defaults can be loaded from a JSON file with --config. Keys are
// flag names, e.g. {"peak-gain": 6, "low-cut-slope": 24}.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/plugin"
)

var version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	Config     kong.ConfigFlag  `short:"c" help:"Load flag defaults from a JSON file."`
	Version    kong.VersionFlag `short:"v" help:"Show version information."`
	LogLevel   string           `default:"info" enum:"debug,info,warn,error" help:"Log level (${enum})."`
	LogFile    string           `type:"path" help:"Write logs to this file instead of stderr."`
	SampleRate float64          `default:"48000" help:"Sample rate in Hz."`
	BlockSize  int              `default:"512" help:"Maximum processing block size in frames."`

	EQ EQFlags `embed:"" group:"Equalizer"`
}

// CLI is the command line of threeband.
type CLI struct {
	Globals

	Response ResponseCmd `cmd:"" help:"Print the magnitude response of the configured EQ."`
	Analyze  AnalyzeCmd  `cmd:"" help:"Render a test signal offline and print its spectrum."`
	Live     LiveCmd     `cmd:"" help:"Play a test signal through the EQ with a live editor."`
	Windows  WindowsCmd  `cmd:"" help:"Print properties of the analyzer window functions."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("threeband"),
		kong.Description("Three-band equalizer with live spectrum analysis."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/threeband.json"),
		kong.Vars{"version": version},
	)
	ctx.FatalIfErrorf(ctx.Run(&cli.Globals))
}

// newLogger builds the logger for a command. The returned closer releases
// the log file, if any.
func (g *Globals) newLogger(stderr io.Writer) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(stderr)

	if g.LogFile == "" {
		return log, nopCloser{}, nil
	}
	f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return log, f, nil
}

// newProcessor returns a processor prepared with the global format and
// holding the EQ flag settings.
func (g *Globals) newProcessor(log logrus.FieldLogger) (*plugin.Processor, error) {
	proc := plugin.NewProcessor(
		plugin.WithLogger(log),
		plugin.WithProcessorOptions(core.WithSampleRate(g.SampleRate), core.WithBlockSize(g.BlockSize)),
	)
	settings, err := g.EQ.Settings()
	if err != nil {
		proc.Close()
		return nil, err
	}
	if err := settings.Apply(proc.Params()); err != nil {
		proc.Close()
		return nil, fmt.Errorf("apply settings: %w", err)
	}
	if err := proc.Prepare(g.SampleRate, g.BlockSize); err != nil {
		proc.Close()
		return nil, err
	}
	return proc, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
