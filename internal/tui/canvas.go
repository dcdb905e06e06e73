package tui

import (
	"math"
	"strings"

	"github.com/cwbudde/algo-eq/eq/geom"
)

type cellKind uint8

// Higher kinds paint over lower ones.
const (
	cellEmpty cellKind = iota
	cellGrid
	cellLeft
	cellRight
	cellResponse
)

var cellRunes = [...]rune{
	cellEmpty:    ' ',
	cellGrid:     '·',
	cellLeft:     '░',
	cellRight:    '▒',
	cellResponse: '●',
}

// canvas is a character grid where one cell is one unit of path space.
type canvas struct {
	width, height int
	cells         []cellKind
}

func newCanvas(width, height int) *canvas {
	return &canvas{
		width:  width,
		height: height,
		cells:  make([]cellKind, max(width, 0)*max(height, 0)),
	}
}

func (c *canvas) set(x, y int, k cellKind) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	if i := y*c.width + x; k > c.cells[i] {
		c.cells[i] = k
	}
}

func (c *canvas) at(x, y int) cellKind {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return cellEmpty
	}
	return c.cells[y*c.width+x]
}

// vline marks column x at every other row.
func (c *canvas) vline(x float64) {
	col := int(math.Round(x))
	for y := 0; y < c.height; y += 2 {
		c.set(col, y, cellGrid)
	}
}

// hline marks row y at every other column.
func (c *canvas) hline(y float64) {
	row := int(math.Round(y))
	for x := 0; x < c.width; x += 2 {
		c.set(x, row, cellGrid)
	}
}

// path draws connected segments between consecutive points.
func (c *canvas) path(p geom.Path, k cellKind) {
	for i, pt := range p {
		if i == 0 {
			c.set(int(math.Floor(pt.X)), int(math.Floor(pt.Y)), k)
			continue
		}
		c.segment(p[i-1], pt, k)
	}
}

func (c *canvas) segment(a, b geom.Point, k cellKind) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.set(int(math.Floor(b.X)), int(math.Floor(b.Y)), k)
		return
	}
	for s := 1; s <= steps; s++ {
		t := float64(s) / float64(steps)
		c.set(int(math.Floor(a.X+dx*t)), int(math.Floor(a.Y+dy*t)), k)
	}
}

// render styles each run of equal cells once.
func (c *canvas) render() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		kind := c.at(0, y)
		for x := 0; x < c.width; x++ {
			k := c.at(x, y)
			if k != kind {
				b.WriteString(cellStyles[kind].Render(run.String()))
				run.Reset()
				kind = k
			}
			run.WriteRune(cellRunes[k])
		}
		b.WriteString(cellStyles[kind].Render(run.String()))
		run.Reset()
	}
	return b.String()
}

// plain returns the grid without styling.
func (c *canvas) plain() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.width; x++ {
			b.WriteRune(cellRunes[c.at(x, y)])
		}
	}
	return b.String()
}
