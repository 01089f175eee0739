// Package frame holds the coordinate model shared by the window, the frame
// loop and scene strategies.
//
// Windowing systems report sizes in device-independent pixels; renderers work
// in device pixels. Coordinates ties both together for a single frame and is
// recomputed whenever the window may have changed.
//
package frame

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrInvalidScale = errors.New("hidpi factor must be a finite number > 0")
	ErrNegativeSize = errors.New("negative size")
)

// Metrics are the raw values reported by a windowing service. All sizes and
// positions are in device-independent pixels.
//
type Metrics struct {
	HiDPI    float32     // device-independent to device pixel ratio
	Screen   image.Point // size of the display
	Outer    image.Point // outer size of the window, decorations included
	Position image.Point // position of the window on screen
	Inner    image.Point // size of the drawable area of the window
}

// Coordinates describe where a frame goes, in device pixels unless stated
// otherwise.
//
type Coordinates struct {
	// HiDPI is the pixel density of the display.
	HiDPI float32
	// Screen is the size of the display.
	Screen image.Point
	// Window is the outer size of the window and Origin its position.
	Window image.Point
	Origin image.Point
	// Framebuffer is the size of the GL buffer in the window.
	Framebuffer image.Point
	// Viewport is the document area within the framebuffer.
	Viewport image.Rectangle
	// Layout is the framebuffer size in device-independent pixels. Scenes are
	// authored in this space.
	Layout Point
}

// Resolve computes the Coordinates for the given window metrics.
//
// Every quantity is scaled by m.HiDPI then truncated toward zero. A zero inner
// size (minimized window) is valid and yields an empty framebuffer.
//
func Resolve(m Metrics) (Coordinates, error) {
	k := m.HiDPI
	if !(k > 0) || math.IsInf(float64(k), 0) {
		return Coordinates{}, errors.Wrapf(ErrInvalidScale, "resolve: %v", k)
	}
	for _, sz := range [...]image.Point{m.Screen, m.Outer, m.Inner} {
		if sz.X < 0 || sz.Y < 0 {
			return Coordinates{}, errors.Wrapf(ErrNegativeSize, "resolve: %v", sz)
		}
	}
	vp := image.Rectangle{Max: ScalePt(m.Inner, k)}
	fb := vp.Size()
	return Coordinates{
		HiDPI:       k,
		Screen:      ScalePt(m.Screen, k),
		Window:      ScalePt(m.Outer, k),
		Origin:      ScalePt(m.Position, k),
		Framebuffer: fb,
		Viewport:    vp,
		Layout:      PtPt(fb).Div(k),
	}, nil
}

// Empty reports whether the framebuffer has a zero area.
//
func (c *Coordinates) Empty() bool {
	return c.Framebuffer.X <= 0 || c.Framebuffer.Y <= 0
}

// FlippedViewport returns the viewport in a bottom-left origin coordinate
// system, as expected by GL scissor and viewport calls.
//
// The result depends on the current framebuffer height and must not be kept
// across frames.
//
func (c *Coordinates) FlippedViewport() image.Rectangle {
	return FlipRect(c.Viewport, c.Framebuffer.Y)
}

// FlipRect mirrors r vertically within a surface of the given height.
// FlipRect(FlipRect(r, h), h) == r.
//
func FlipRect(r image.Rectangle, height int) image.Rectangle {
	y := height - r.Min.Y - r.Dy()
	return image.Rect(r.Min.X, y, r.Max.X, y+r.Dy())
}
