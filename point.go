package frame

import (
	"fmt"
	"image"
)

// Point is a point or size in device-independent (layout) pixels.
//
type Point struct {
	X float32
	Y float32
}

func PtPt(p image.Point) Point { return Point{float32(p.X), float32(p.Y)} }
func Pt(x, y float32) Point    { return Point{x, y} }

func (p Point) Add(pt Point) Point  { return Point{p.X + pt.X, p.Y + pt.Y} }
func (p Point) Sub(pt Point) Point  { return Point{p.X - pt.X, p.Y - pt.Y} }
func (p Point) Div(k float32) Point { return Point{p.X / k, p.Y / k} }
func (p Point) Mul(k float32) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Eq(pt Point) bool    { return p.X == pt.X && p.Y == pt.Y }

// Trunc converts p to integer coordinates, truncating toward zero.
//
func (p Point) Trunc() image.Point {
	return image.Point{int(p.X), int(p.Y)}
}

func (p Point) In(r image.Rectangle) bool {
	return float32(r.Min.X) <= p.X && p.X < float32(r.Max.X) &&
		float32(r.Min.Y) <= p.Y && p.Y < float32(r.Max.Y)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}

// ScalePt scales an integer point by k and truncates the result. All device
// pixel quantities go through ScalePt so that they round the same way.
//
func ScalePt(p image.Point, k float32) image.Point {
	return PtPt(p).Mul(k).Trunc()
}
