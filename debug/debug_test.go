package debug

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/db47h/frame/text"
	"golang.org/x/image/font/basicfont"
)

func TestTimer(t *testing.T) {
	var tm Timer
	if tm.Average() != 0 || tm.AveragePerSecond() != 0 {
		t.Error("empty timer must average to 0")
	}
	tm.Add(10 * time.Millisecond)
	tm.Add(30 * time.Millisecond)
	if got := tm.Average(); got != 20*time.Millisecond {
		t.Errorf("Average() = %v, want 20ms", got)
	}
	if got := tm.AveragePerSecond(); got != 50 {
		t.Errorf("AveragePerSecond() = %v, want 50", got)
	}
	for i := 0; i < 100; i++ {
		tm.Add(time.Millisecond)
	}
	if tm.Count() != 32 || tm.Average() != time.Millisecond {
		t.Errorf("after wrap: count %d, average %v", tm.Count(), tm.Average())
	}
}

func TestInfoBox(t *testing.T) {
	dbg := Debug{TD: text.NewDrawer(basicfont.Face7x13)}
	dst := image.NewRGBA(image.Rect(0, 0, 200, 50))
	dbg.InfoBox(dst, TopRight, "60 fps")
	if c := dst.RGBAAt(199, 0); c != (color.RGBA{A: 255}) {
		t.Errorf("box corner = %v, want black", c)
	}
	if c := dst.RGBAAt(0, 0); c.A != 0 {
		t.Errorf("left corner = %v, want untouched", c)
	}
	white := 0
	for i := 0; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] == 255 && dst.Pix[i+3] == 255 {
			white++
		}
	}
	if white == 0 {
		t.Error("no text drawn")
	}
}
