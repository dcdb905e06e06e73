// Package geom holds the small 2D types the analyzer and response engine
// draw into. Coordinates follow screen convention: y grows downwards.
package geom

// Point is a 2D point.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned drawing area.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect returns a rectangle with the given origin and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// Path is an ordered polyline.
type Path []Point

// StartNewSubPath resets the path and starts it at p.
func (p *Path) StartNewSubPath(pt Point) {
	*p = append((*p)[:0], pt)
}

// LineTo appends a segment ending at pt.
func (p *Path) LineTo(pt Point) {
	*p = append(*p, pt)
}

// Clone returns a copy that shares no storage with p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}
