package display

import (
	"fmt"
	"image"
	"math"

	"github.com/db47h/frame"
	"golang.org/x/image/math/f64"
)

// Rect is an axis aligned rectangle in layout space. Min is inclusive, Max
// exclusive.
//
type Rect struct {
	Min, Max frame.Point
}

// R is shorthand for Rect{Pt(x0, y0), Pt(x1, y1)}. The returned rectangle has
// its minimum and maximum coordinates swapped if necessary so that it is
// well-formed.
//
func R(x0, y0, x1, y1 float32) Rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Rect{frame.Pt(x0, y0), frame.Pt(x1, y1)}
}

// RectAt returns the rectangle with the given origin and size.
//
func RectAt(origin, size frame.Point) Rect {
	return R(origin.X, origin.Y, origin.X+size.X, origin.Y+size.Y)
}

func (r Rect) Dx() float32        { return r.Max.X - r.Min.X }
func (r Rect) Dy() float32        { return r.Max.Y - r.Min.Y }
func (r Rect) Size() frame.Point  { return r.Max.Sub(r.Min) }
func (r Rect) Empty() bool        { return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y }
func (r Rect) Add(p frame.Point) Rect {
	return Rect{r.Min.Add(p), r.Max.Add(p)}
}

func (r Rect) String() string {
	return r.Min.String() + "-" + r.Max.String()
}

// Corners returns the four corners of r, clockwise from Min.
//
func (r Rect) Corners() [4]frame.Point {
	return [4]frame.Point{r.Min, {X: r.Max.X, Y: r.Min.Y}, r.Max, {X: r.Min.X, Y: r.Max.Y}}
}

// Transform is a 2D affine transform in layout space:
//
//	x' = t[0]*x + t[1]*y + t[2]
//	y' = t[3]*x + t[4]*y + t[5]
//
type Transform f64.Aff3

// Identity returns the identity transform.
//
func Identity() Transform {
	return Transform{1, 0, 0, 0, 1, 0}
}

// Translation returns a transform translating by (dx, dy).
//
func Translation(dx, dy float32) Transform {
	return Transform{1, 0, float64(dx), 0, 1, float64(dy)}
}

// Scale returns a transform scaling by (sx, sy).
//
func Scale(sx, sy float32) Transform {
	return Transform{float64(sx), 0, 0, 0, float64(sy), 0}
}

// Rotation returns a clockwise rotation by angle radians around the origin.
// Clockwise since the y axis points down.
//
func Rotation(angle float32) Transform {
	s, c := math.Sincos(float64(angle))
	return Transform{c, -s, 0, s, c, 0}
}

// Mul returns the transform t*u, which applies u first then t.
//
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		t[0]*u[0] + t[1]*u[3],
		t[0]*u[1] + t[1]*u[4],
		t[0]*u[2] + t[1]*u[5] + t[2],
		t[3]*u[0] + t[4]*u[3],
		t[3]*u[1] + t[4]*u[4],
		t[3]*u[2] + t[4]*u[5] + t[5],
	}
}

// Apply returns p transformed by t.
//
func (t Transform) Apply(p frame.Point) frame.Point {
	x, y := float64(p.X), float64(p.Y)
	return frame.Point{
		X: float32(t[0]*x + t[1]*y + t[2]),
		Y: float32(t[3]*x + t[4]*y + t[5]),
	}
}

// IsAxisAligned reports whether t maps axis aligned rectangles to axis aligned
// rectangles without mirroring.
//
func (t Transform) IsAxisAligned() bool {
	return t[1] == 0 && t[3] == 0 && t[0] > 0 && t[4] > 0
}

// Bounds returns the smallest integer rectangle containing r transformed by t.
//
func (t Transform) Bounds(r Rect) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range r.Corners() {
		q := t.Apply(p)
		minX, maxX = math.Min(minX, float64(q.X)), math.Max(maxX, float64(q.X))
		minY, maxY = math.Min(minY, float64(q.Y)), math.Max(maxY, float64(q.Y))
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY)))
}

// Aff3 returns t as an f64.Aff3, as used by golang.org/x/image/draw.
//
func (t Transform) Aff3() f64.Aff3 { return f64.Aff3(t) }

func (t Transform) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g]", t[0], t[1], t[2], t[3], t[4], t[5])
}
