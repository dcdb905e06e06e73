package analyzer

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/eq/fifo"
	"github.com/cwbudde/algo-eq/eq/geom"
)

const (
	// MinFrequency and MaxFrequency bound the logarithmic x axis.
	MinFrequency = 20.0
	MaxFrequency = 20000.0

	// PathResolution is the bin stride between path points.
	PathResolution = 2

	DefaultPathQueueCapacity = 30
)

// BuildPath maps one dB block onto bounds. Bin k sits at frequency
// k*binWidth; its x position is logarithmic over [MinFrequency,
// MaxFrequency] and bins outside that range are skipped. Its y position is
// linear with floorDB at the bottom edge and 0 dB at the top, values
// clamped into that range.
func BuildPath(data []float64, bounds geom.Rect, fftSize int, binWidth, floorDB float64) geom.Path {
	numBins := min(fftSize/2, len(data))
	path := make(geom.Path, 0, numBins/PathResolution+1)

	for bin := 0; bin < numBins; bin += PathResolution {
		freq := float64(bin) * binWidth
		if freq < MinFrequency || freq > MaxFrequency {
			continue
		}

		db := data[bin]
		if math.IsNaN(db) {
			continue
		}
		db = core.Clamp(db, floorDB, 0)

		pt := geom.Point{
			X: bounds.X + math.Floor(core.MapFromLog10(freq, MinFrequency, MaxFrequency)*bounds.Width),
			Y: core.Map(db, floorDB, 0, bounds.Bottom(), bounds.Y),
		}
		if len(path) == 0 {
			path.StartNewSubPath(pt)
		} else {
			path.LineTo(pt)
		}
	}

	return path
}

// PathGenerator builds analyzer paths and keeps the most recent one for
// the view. Older paths are discarded unread when the consumer falls
// behind.
type PathGenerator struct {
	paths   *fifo.Queue[geom.Path]
	latest  geom.Path
	dropped uint64
}

// NewPathGenerator returns a generator with the default queue capacity.
func NewPathGenerator() *PathGenerator {
	q, err := fifo.NewQueue[geom.Path](DefaultPathQueueCapacity)
	if err != nil {
		panic(err)
	}
	return &PathGenerator{paths: q}
}

// GeneratePath builds a path from data and queues it.
func (g *PathGenerator) GeneratePath(data []float64, bounds geom.Rect, fftSize int, binWidth, floorDB float64) {
	if !g.paths.Push(BuildPath(data, bounds, fftSize, binWidth, floorDB)) {
		g.dropped++
	}
}

// NumPathsAvailable returns the number of queued paths.
func (g *PathGenerator) NumPathsAvailable() int { return g.paths.Available() }

// GetPath pops the oldest queued path.
func (g *PathGenerator) GetPath() (geom.Path, bool) {
	return g.paths.Pop()
}

// Path drains the queue down to the newest path and returns a copy owned
// by the caller. With nothing new queued it returns the previous latest
// path again.
func (g *PathGenerator) Path() geom.Path {
	if p, ok := g.paths.Latest(); ok {
		g.latest = p
	}
	return g.latest.Clone()
}

// Dropped returns the number of paths lost to a full queue.
func (g *PathGenerator) Dropped() uint64 { return g.dropped }
