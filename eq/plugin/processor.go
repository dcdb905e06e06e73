// Package plugin is the audio I/O boundary of the equalizer: it owns the
// parameter store, the two filter chains and the analyzer sample
// collectors, and moves parameter changes from the control goroutine into
// the chains.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/chain"
	"github.com/cwbudde/algo-eq/eq/fifo"
	"github.com/cwbudde/algo-eq/eq/params"
)

// RefreshRate is the frequency of the control loop in Hz.
const RefreshRate = 60

var (
	ErrInvalidSampleRate = errors.New("plugin: sample rate must be > 0")
	ErrInvalidBlockSize  = errors.New("plugin: block size must be > 0")
	ErrClosed            = errors.New("plugin: processor closed")
	ErrChannelLength     = errors.New("plugin: channel buffers differ in length")
)

// Option configures a Processor.
type Option func(*Processor)

// WithProcessorOptions applies the shared processing options (sample rate,
// block size, channel count) used until the first Prepare.
func WithProcessorOptions(opts ...core.ProcessorOption) Option {
	return func(p *Processor) {
		for _, opt := range opts {
			if opt != nil {
				opt(&p.cfg)
			}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// WithStore uses an existing parameter store instead of a fresh one.
func WithStore(s *params.Store) Option {
	return func(p *Processor) {
		if s != nil {
			p.store = s
		}
	}
}

// WithFIFOCapacity sets the number of analyzer blocks buffered per channel.
func WithFIFOCapacity(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.fifoCapacity = n
		}
	}
}

// Processor runs the dual mono equalizer.
//
// ProcessBlock and ProcessInterleaved belong to the audio goroutine and
// neither lock nor allocate. Prepare, Refresh, Run and Close belong to the
// control side.
type Processor struct {
	cfg          core.ProcessorConfig
	fifoCapacity int
	log          logrus.FieldLogger

	store    *params.Store
	detector *params.ChangeDetector
	chains   *chain.DualMono
	collect  [2]*fifo.SampleCollector

	mu         sync.Mutex // serialises Prepare, Refresh and Close
	prepared   atomic.Bool
	closed     atomic.Bool
	sampleRate atomic.Uint64
	maxBlock   int
	scratch    [2][]float64
}

// NewProcessor returns an unprepared processor.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		cfg:          core.DefaultProcessorConfig(),
		fifoCapacity: fifo.DefaultCapacity,
		log:          logrus.StandardLogger(),
		chains:       chain.NewDualMono(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.store == nil {
		p.store = params.NewStore(params.WithLogger(p.log))
	}
	p.detector = params.NewChangeDetector(p.store)
	for i := range p.collect {
		p.collect[i] = fifo.NewSampleCollector(p.fifoCapacity)
	}
	p.sampleRate.Store(math.Float64bits(p.cfg.SampleRate))
	return p
}

// IsLayoutSupported reports whether an in/out channel configuration can
// be processed: mono or stereo with matching counts.
func IsLayoutSupported(in, out int) bool {
	return in == out && (in == 1 || in == 2)
}

// IsLayoutSupported is the method form of the package function.
func (p *Processor) IsLayoutSupported(in, out int) bool {
	return IsLayoutSupported(in, out)
}

// Prepare sets up processing for a session. It resets the filter state,
// allocates the analyzer collectors and applies the current parameters.
// It is not real-time safe and must not run concurrently with processing.
func (p *Processor) Prepare(sampleRate float64, maxBlockSize int) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}
	if maxBlockSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, maxBlockSize)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Load() {
		return ErrClosed
	}

	p.prepared.Store(false)

	for i, c := range p.collect {
		if err := c.Prepare(maxBlockSize); err != nil {
			return fmt.Errorf("plugin: prepare collector %d: %w", i, err)
		}
		p.scratch[i] = core.EnsureLen(p.scratch[i], maxBlockSize)
	}

	p.chains.Prepare(sampleRate, maxBlockSize)
	p.maxBlock = maxBlockSize
	p.sampleRate.Store(math.Float64bits(sampleRate))
	p.cfg.SampleRate = sampleRate
	p.cfg.BlockSize = maxBlockSize

	p.detector.TestAndClear()
	p.chains.Apply(params.Snapshot(p.store), sampleRate)

	p.prepared.Store(true)

	p.log.WithFields(logrus.Fields{
		"component":   "processor",
		"sample_rate": sampleRate,
		"block_size":  maxBlockSize,
	}).Info("Processor prepared")

	return nil
}

// ProcessBlock filters per-channel float32 buffers in place. One or two
// channels are processed; further channels are left untouched. The
// processed channels must have equal lengths; ProcessBlock panics with
// ErrChannelLength otherwise. Buffers longer than the prepared maximum are
// processed in chunks. The filtered signal feeds the analyzer collectors.
func (p *Processor) ProcessBlock(channels [][]float32) {
	if !p.prepared.Load() {
		panic(chain.ErrNotPrepared)
	}
	n := min(len(channels), 2)
	if n == 0 {
		return
	}

	frames := len(channels[0])
	if n == 2 && len(channels[1]) != frames {
		panic(ErrChannelLength)
	}
	for off := 0; off < frames; off += p.maxBlock {
		end := min(off+p.maxBlock, frames)
		for ch := 0; ch < n; ch++ {
			buf := p.scratch[ch][:end-off]
			src := channels[ch][off:end]
			for i, v := range src {
				buf[i] = float64(v)
			}
			p.chains.Channel(ch).Process(buf)
			for i, v := range buf {
				src[i] = float32(v)
			}
			p.collect[ch].Update(buf)
		}
	}
}

// ProcessInterleaved filters an interleaved float32 buffer of the given
// channel count in place.
func (p *Processor) ProcessInterleaved(buf []float32, channels int) {
	if !p.prepared.Load() {
		panic(chain.ErrNotPrepared)
	}
	if channels <= 0 {
		return
	}
	n := min(channels, 2)

	frames := len(buf) / channels
	for off := 0; off < frames; off += p.maxBlock {
		end := min(off+p.maxBlock, frames)
		for ch := 0; ch < n; ch++ {
			s := p.scratch[ch][:end-off]
			for i := range s {
				s[i] = float64(buf[(off+i)*channels+ch])
			}
			p.chains.Channel(ch).Process(s)
			for i, v := range s {
				buf[(off+i)*channels+ch] = float32(v)
			}
			p.collect[ch].Update(s)
		}
	}
}

// Refresh applies pending parameter changes to both chains. It returns
// whether anything was applied.
func (p *Processor) Refresh() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.prepared.Load() || !p.detector.TestAndClear() {
		return false
	}
	p.chains.Apply(params.Snapshot(p.store), p.SampleRate())
	return true
}

// Run calls Refresh at RefreshRate until ctx is done.
func (p *Processor) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / RefreshRate)
	defer ticker.Stop()

	p.log.WithField("component", "processor").Debug("Control loop started")
	for {
		select {
		case <-ctx.Done():
			p.log.WithField("component", "processor").Debug("Control loop stopped")
			return ctx.Err()
		case <-ticker.C:
			p.Refresh()
		}
	}
}

// Close releases the parameter subscription. The processor must not be
// used for processing afterwards.
func (p *Processor) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed.Swap(true) {
		return
	}
	p.prepared.Store(false)
	p.detector.Close()
	p.log.WithField("component", "processor").Debug("Processor closed")
}

// Params returns the parameter store.
func (p *Processor) Params() *params.Store { return p.store }

// Chains returns the left/right filter chains.
func (p *Processor) Chains() *chain.DualMono { return p.chains }

// SampleRate returns the prepared sample rate, or the configured default
// before the first Prepare.
func (p *Processor) SampleRate() float64 {
	return math.Float64frombits(p.sampleRate.Load())
}

// Config returns the current processing configuration.
func (p *Processor) Config() core.ProcessorConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// IsPrepared reports whether the processor is ready for audio.
func (p *Processor) IsPrepared() bool { return p.prepared.Load() }

// Collector returns the analyzer sample collector of channel ch.
func (p *Processor) Collector(ch int) *fifo.SampleCollector {
	return p.collect[ch]
}
