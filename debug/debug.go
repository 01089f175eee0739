// Package debug provides frame timing and on-frame debug overlays.
//
package debug

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/db47h/frame/text"
)

const samples = 32

// Timer keeps a moving average of the last 32 durations.
//
type Timer struct {
	times [samples]time.Duration
	index int
	n     int
}

func (t *Timer) Add(dt time.Duration) {
	t.times[t.index] = dt
	t.index = (t.index + 1) & (samples - 1)
	if t.n < samples {
		t.n++
	}
}

// Average returns the average of the recorded samples, or 0 if there are none.
//
func (t *Timer) Average() time.Duration {
	if t.n == 0 {
		return 0
	}
	var avg time.Duration
	for _, dt := range t.times[:t.n] {
		avg += dt
	}
	return avg / time.Duration(t.n)
}

func (t *Timer) AveragePerSecond() float64 {
	avg := t.Average()
	if avg == 0 {
		return 0
	}
	return float64(time.Second) / float64(avg)
}

// Count returns the number of samples taken into account by Average.
func (t *Timer) Count() int { return t.n }

// Corner selects where InfoBox draws.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
)

// Debug draws info boxes with a text drawer.
//
type Debug struct {
	TD *text.Drawer
}

// InfoBox draws s in white on a black box in the given corner of dst.
//
func (dbg *Debug) InfoBox(dst draw.Image, pos Corner, s string) {
	b, _ := dbg.TD.BoundString(s)
	r := image.Rect(b.Min.X.Floor(), b.Min.Y.Floor(), b.Max.X.Ceil(), b.Max.Y.Ceil())
	sz := r.Size().Add(image.Pt(2, 2))
	p := image.Pt(1-r.Min.X, 1-r.Min.Y)
	db := dst.Bounds()
	var box image.Rectangle
	switch pos {
	case TopLeft:
		box = image.Rectangle{Min: db.Min, Max: db.Min.Add(sz)}
	case TopRight:
		box = image.Rect(db.Max.X-sz.X, db.Min.Y, db.Max.X, db.Min.Y+sz.Y)
	}
	draw.Draw(dst, box, image.NewUniform(color.Black), image.Point{}, draw.Src)
	p = p.Add(box.Min)
	dbg.TD.DrawString(dst, float32(p.X), float32(p.Y), s, color.White)
}
