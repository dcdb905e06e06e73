// Package audio drives the equalizer with a test signal in real time,
// either on the default output device or against a wall clock.
package audio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/eq/plugin"
)

var (
	ErrUnsupportedLayout = errors.New("audio: only mono and stereo are supported")
	ErrNotPrepared       = errors.New("audio: processor is not prepared")
	ErrNilSource         = errors.New("audio: source is nil")
)

type sourceRef struct{ signal.Source }

// Renderer pulls samples from a Source, runs them through a Processor and
// writes interleaved float32 frames. Render is the audio callback and does
// not allocate once the scratch buffers have grown to the callback size.
type Renderer struct {
	proc     *plugin.Processor
	channels int
	src      atomic.Pointer[sourceRef]
	frames   atomic.Uint64

	mono []float64
	out  []float32
}

// NewRenderer returns a renderer for a prepared processor.
func NewRenderer(proc *plugin.Processor, src signal.Source, channels int) (*Renderer, error) {
	if !plugin.IsLayoutSupported(channels, channels) {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedLayout, channels)
	}
	if !proc.IsPrepared() {
		return nil, ErrNotPrepared
	}
	if src == nil {
		return nil, ErrNilSource
	}

	block := proc.Config().BlockSize
	r := &Renderer{
		proc:     proc,
		channels: channels,
		mono:     make([]float64, block),
		out:      make([]float32, block*channels),
	}
	r.src.Store(&sourceRef{src})
	return r, nil
}

// SetSource swaps the signal source. It may be called while rendering.
func (r *Renderer) SetSource(src signal.Source) error {
	if src == nil {
		return ErrNilSource
	}
	r.src.Store(&sourceRef{src})
	return nil
}

// Channels returns the interleaved channel count.
func (r *Renderer) Channels() int { return r.channels }

// Frames returns the number of frames rendered so far.
func (r *Renderer) Frames() uint64 { return r.frames.Load() }

// Render fills dst with len(dst)/channels processed frames. Every channel
// carries the same source signal.
func (r *Renderer) Render(dst []float32) {
	src := r.src.Load().Source
	frames := len(dst) / r.channels
	block := len(r.mono)

	for off := 0; off < frames; off += block {
		n := min(block, frames-off)
		mono := r.mono[:n]
		src.Fill(mono)

		chunk := dst[off*r.channels : (off+n)*r.channels]
		for i, v := range mono {
			for ch := 0; ch < r.channels; ch++ {
				chunk[i*r.channels+ch] = float32(v)
			}
		}
		r.proc.ProcessInterleaved(chunk, r.channels)
	}
	r.frames.Add(uint64(frames))
}

// Read renders float32 little-endian frames into p, which makes the
// renderer usable as the io.Reader of an output stream.
func (r *Renderer) Read(p []byte) (int, error) {
	n := len(p) / 4
	n -= n % r.channels
	if n == 0 {
		clear(p)
		return len(p), nil
	}
	if len(r.out) < n {
		r.out = make([]float32, n)
	}
	samples := r.out[:n]
	r.Render(samples)

	copy(p, unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), n*4))
	clear(p[n*4:])
	return len(p), nil
}
