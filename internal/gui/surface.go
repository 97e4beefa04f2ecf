package gui

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/physlab/internal/dynamo"
)

// pixelsPerMargin converts a lab's margin hint into screen pixels.
const pixelsPerMargin = 8

// view maps lab centimetres into a screen rectangle.
type view struct {
	area          rl.Rectangle
	ox, oy, scale float64
}

func (v *view) fit(w, h, margin float64) {
	pad := margin * pixelsPerMargin
	aw, ah := float64(v.area.Width)-2*pad, float64(v.area.Height)-2*pad
	v.scale = math.Max(math.Min(aw/w, ah/h), 0)
	v.ox = float64(v.area.X) + (float64(v.area.Width)-w*v.scale)/2
	v.oy = float64(v.area.Y) + (float64(v.area.Height)-h*v.scale)/2
}

func (v *view) at(p dynamo.Vec) rl.Vector2 {
	return rl.NewVector2(float32(v.ox+p.X*v.scale), float32(v.oy+p.Y*v.scale))
}

// surface draws labs with raylib primitives.
type surface struct {
	view
	color rl.Color
}

func newSurface(area rl.Rectangle) *surface {
	return &surface{view: view{area: area}, color: ColAccent}
}

func (s *surface) Fit(w, h, margin float64) { s.fit(w, h, margin) }

func (s *surface) Line(a, b dynamo.Vec) {
	rl.DrawLineEx(s.at(a), s.at(b), 2, s.color)
}

func (s *surface) Rect(lo, hi dynamo.Vec) {
	p, q := s.at(lo), s.at(hi)
	rl.DrawRectangleLinesEx(rl.NewRectangle(p.X, p.Y, q.X-p.X, q.Y-p.Y), 2, s.color)
}

func (s *surface) Circle(centre dynamo.Vec, r float64) {
	rl.DrawCircleV(s.at(centre), float32(math.Max(r*s.scale, 2)), ColSelect)
}

func (s *surface) Dot(p dynamo.Vec) {
	rl.DrawCircleV(s.at(p), 2, ColText)
}
