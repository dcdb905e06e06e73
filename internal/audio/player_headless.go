//go:build headless

package audio

import "github.com/sirupsen/logrus"

// NewDevicePlayer returns a ClockPlayer in headless builds.
func NewDevicePlayer(r *Renderer, sampleRate float64, blockSize int, log logrus.FieldLogger) (Player, error) {
	return NewClockPlayer(r, sampleRate, blockSize, log), nil
}
