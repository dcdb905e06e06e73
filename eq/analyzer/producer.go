package analyzer

import (
	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/fifo"
	"github.com/cwbudde/algo-eq/eq/geom"
)

// PathProducer drives the analysis of one channel: it drains the channel's
// sample collector into the FFT generator and turns the newest dB block
// into a path. Older blocks of the same step would be overwritten by the
// newest path anyway, so they are skipped.
type PathProducer struct {
	collector *fifo.SampleCollector
	fft       *FFTDataGenerator
	paths     *PathGenerator

	block  []float64
	fftBuf []float64
}

// NewPathProducer returns a producer reading from collector.
func NewPathProducer(collector *fifo.SampleCollector, fftSize int, opts ...Option) (*PathProducer, error) {
	g, err := NewFFTDataGenerator(fftSize, opts...)
	if err != nil {
		return nil, err
	}
	return &PathProducer{
		collector: collector,
		fft:       g,
		paths:     NewPathGenerator(),
		fftBuf:    make([]float64, g.NumBins()),
	}, nil
}

// Process runs one analysis step for a view of the given bounds.
func (p *PathProducer) Process(bounds geom.Rect, sampleRate float64) {
	if !p.collector.Prepared() {
		return
	}
	p.block = core.EnsureLen(p.block, p.collector.BlockSize())

	fresh := false
	for p.collector.Pop(p.block) {
		p.fft.Push(p.block)
		for p.fft.GetFFTData(p.fftBuf) {
			fresh = true
		}
	}

	if fresh {
		p.paths.GeneratePath(p.fftBuf, bounds, p.fft.FFTSize(), p.fft.BinWidth(sampleRate), p.fft.Floor())
	}
}

// Path returns the newest analyzer path.
func (p *PathProducer) Path() geom.Path { return p.paths.Path() }

// Generator returns the FFT stage.
func (p *PathProducer) Generator() *FFTDataGenerator { return p.fft }

// Paths returns the path stage.
func (p *PathProducer) Paths() *PathGenerator { return p.paths }
