package viz

import (
	"math"
	"strings"

	"github.com/san-kum/physlab/internal/dynamo"
)

// Braille cells are 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of Braille cells addressed in dots: (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y); points off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle outlines a circle of radius r dots (midpoint algorithm).
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// viewport maps lab coordinates (cm, y down) onto canvas dots.
type viewport struct {
	ox, oy, scale float64
}

// fitViewport centres a w x h cm region on the canvas with margin dots spare.
func fitViewport(c *Canvas, w, h, margin float64) viewport {
	cw, ch := c.Dots()
	scale := math.Min((float64(cw)-2*margin)/w, (float64(ch)-2*margin)/h)
	return viewport{
		ox:    (float64(cw) - w*scale) / 2,
		oy:    (float64(ch) - h*scale) / 2,
		scale: scale,
	}
}

func (v viewport) at(p dynamo.Vec) (int, int) {
	return int(math.Round(v.ox + p.X*v.scale)), int(math.Round(v.oy + p.Y*v.scale))
}

func (v viewport) line(c *Canvas, a, b dynamo.Vec) {
	x0, y0 := v.at(a)
	x1, y1 := v.at(b)
	c.DrawLine(x0, y0, x1, y1)
}

func (v viewport) rect(c *Canvas, lo, hi dynamo.Vec) {
	v.line(c, lo, dynamo.Vec{X: hi.X, Y: lo.Y})
	v.line(c, dynamo.Vec{X: hi.X, Y: lo.Y}, hi)
	v.line(c, hi, dynamo.Vec{X: lo.X, Y: hi.Y})
	v.line(c, dynamo.Vec{X: lo.X, Y: hi.Y}, lo)
}

func (v viewport) circle(c *Canvas, centre dynamo.Vec, r float64) {
	x, y := v.at(centre)
	c.DrawCircle(x, y, int(math.Round(r*v.scale)))
}

// surface draws lab geometry onto a canvas.
type surface struct {
	c *Canvas
	v viewport
}

func (s *surface) Fit(w, h, margin float64) { s.v = fitViewport(s.c, w, h, margin) }

func (s *surface) Line(a, b dynamo.Vec)   { s.v.line(s.c, a, b) }
func (s *surface) Rect(lo, hi dynamo.Vec) { s.v.rect(s.c, lo, hi) }

func (s *surface) Circle(centre dynamo.Vec, r float64) { s.v.circle(s.c, centre, r) }

func (s *surface) Dot(p dynamo.Vec) {
	x, y := s.v.at(p)
	s.c.Set(x, y)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
