package audio

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Player runs a Renderer until stopped.
type Player interface {
	Start() error
	Stop()
	Close() error
	IsStarted() bool
}

// ClockPlayer renders one block per block period against the wall clock
// and discards the output. It stands in for a device when there is none.
type ClockPlayer struct {
	renderer *Renderer
	period   time.Duration
	buf      []float32
	log      logrus.FieldLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewClockPlayer returns a player that renders blockSize frames every
// blockSize/sampleRate seconds.
func NewClockPlayer(r *Renderer, sampleRate float64, blockSize int, log logrus.FieldLogger) *ClockPlayer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ClockPlayer{
		renderer: r,
		period:   time.Duration(float64(blockSize) / sampleRate * float64(time.Second)),
		buf:      make([]float32, blockSize*r.Channels()),
		log:      log.WithField("component", "audio"),
	}
}

// Start begins rendering in a new goroutine.
func (p *ClockPlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.started = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.renderer.Render(p.buf)
			}
		}
	}()

	p.log.WithField("period", p.period).Info("Clock player started")
	return nil
}

// Stop halts rendering and waits for the render goroutine.
func (p *ClockPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.cancel()
	p.wg.Wait()
	p.started = false
	p.log.Info("Clock player stopped")
}

// Close stops the player.
func (p *ClockPlayer) Close() error {
	p.Stop()
	return nil
}

// IsStarted reports whether the player is rendering.
func (p *ClockPlayer) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}
