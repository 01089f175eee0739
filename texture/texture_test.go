package texture

import (
	"image"
	"image/color"
	"testing"
)

func TestCollect(t *testing.T) {
	p := collect([]Parameter{
		Wrap(ClampToEdge, Repeat),
		Filter(Linear, Nearest),
		Filter(LinearMipmapLinear, Linear), // last one wins
	})
	want := tp{wrapS: ClampToEdge, wrapT: Repeat, minFilter: LinearMipmapLinear, magFilter: Linear}
	if p != want {
		t.Errorf("collect() = %+v, want %+v", p, want)
	}
	if p := collect(nil); p != (tp{}) {
		t.Errorf("collect(nil) = %+v", p)
	}
}

func TestFilterMode_mipmapped(t *testing.T) {
	for _, td := range []struct {
		f    FilterMode
		want bool
	}{
		{0, false},
		{Nearest, false},
		{Linear, false},
		{NearestMipmapNearest, true},
		{NearestMipmapLinear, true},
		{LinearMipmapNearest, true},
		{LinearMipmapLinear, true},
	} {
		if got := td.f.mipmapped(); got != td.want {
			t.Errorf("FilterMode(0x%x).mipmapped() = %v, want %v", int32(td.f), got, td.want)
		}
	}
}

func TestPixels(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	tight := image.NewRGBA(image.Rect(0, 0, 4, 3))
	tight.SetRGBA(2, 1, green)
	offset := image.NewRGBA(image.Rect(5, 5, 9, 8))
	offset.SetRGBA(7, 6, green)
	nrgba := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	nrgba.SetNRGBA(2, 1, color.NRGBA{G: 255, A: 255})

	for _, td := range []struct {
		name  string
		src   image.Image
		r     image.Rectangle
		same  bool
		green image.Point // in the returned image
	}{
		{"tight", tight, tight.Bounds(), true, image.Pt(2, 1)},
		{"offset", offset, offset.Bounds(), true, image.Pt(2, 1)},
		{"sub-rectangle", tight, image.Rect(1, 1, 3, 3), false, image.Pt(1, 0)},
		{"wide stride", tight.SubImage(image.Rect(2, 0, 4, 3)), image.Rect(2, 0, 4, 3), false, image.Pt(0, 1)},
		{"conversion", nrgba, nrgba.Bounds(), false, image.Pt(2, 1)},
	} {
		got := pixels(td.src, td.r)
		if same := got == td.src; same != td.same {
			t.Errorf("%s: returned source = %v, want %v", td.name, same, td.same)
		}
		if got.Stride != 4*td.r.Dx() || got.Bounds().Size() != td.r.Size() {
			t.Errorf("%s: bounds %v stride %d", td.name, got.Bounds(), got.Stride)
		}
		p := got.Bounds().Min.Add(td.green)
		if c := got.RGBAAt(p.X, p.Y); c != green {
			t.Errorf("%s: pixel %v = %v, want %v", td.name, td.green, c, green)
		}
	}
}
