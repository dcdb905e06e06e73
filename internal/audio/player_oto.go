//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// DevicePlayer plays a Renderer on the default output device.
type DevicePlayer struct {
	ctx    *oto.Context
	player *oto.Player
	log    logrus.FieldLogger

	mu      sync.Mutex
	started bool
}

// NewDevicePlayer opens the default output device. Only one device
// player may exist per process.
func NewDevicePlayer(r *Renderer, sampleRate float64, blockSize int, log logrus.FieldLogger) (Player, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   int(sampleRate),
		ChannelCount: r.Channels(),
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	p := &DevicePlayer{
		ctx:    ctx,
		player: ctx.NewPlayer(r),
		log:    log.WithField("component", "audio"),
	}
	p.player.SetBufferSize(blockSize * r.Channels() * 4)

	p.log.WithFields(logrus.Fields{
		"sample_rate": sampleRate,
		"channels":    r.Channels(),
		"block_size":  blockSize,
	}).Info("Audio device opened")

	return p, nil
}

// Start begins playback.
func (p *DevicePlayer) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return nil
	}
	p.player.Play()
	p.started = true
	return nil
}

// Stop pauses playback.
func (p *DevicePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		p.player.Pause()
		p.started = false
	}
}

// Close stops playback and releases the player.
func (p *DevicePlayer) Close() error {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	p.log.Info("Audio device closed")
	return err
}

// IsStarted reports whether playback is running.
func (p *DevicePlayer) IsStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}
