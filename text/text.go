// Package text draws strings onto images with a glyph cache.
//
package text

import (
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

const (
	// see subPixels() in github.com/golang/freetype/truetype/face.go
	SubPixelsX    = 8
	subPixelBiasX = 4
	subPixelMaskX = -8
	SubPixelsY    = 8
	subPixelBiasY = 4
	subPixelMaskY = -8
)

// Hinting selects how to quantize a vector font's glyph nodes.
//
// Not all fonts support hinting.
//
// This is a convenience duplicate of golang.org/x/image/font#Hinting
//
type Hinting int

const (
	HintingNone     Hinting = Hinting(font.HintingNone)
	HintingVertical         = Hinting(font.HintingVertical)
	HintingFull             = Hinting(font.HintingFull)
)

// NewFace returns a face for f at the given size in points. At 72 DPI, one
// point is one pixel.
//
func NewFace(f *truetype.Font, size, dpi float64, h Hinting) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.Hinting(h),
	})
}

// Drawer draws text with a font.Face. Rendered glyphs are cached per rune and
// sub-pixel position.
//
// A Drawer is not safe for concurrent use.
//
type Drawer struct {
	face   font.Face
	glyphs []glyph
	cache  map[cacheKey]cacheValue
}

type glyph struct {
	mask *image.Alpha
	org  image.Point // offset of the mask relative to the quantized dot
}

type cacheKey struct {
	r  rune
	fx uint8
	fy uint8
}

type cacheValue struct {
	index int // glyph index
	adv   fixed.Int26_6
}

func NewDrawer(f font.Face) *Drawer {
	return &Drawer{
		face:  f,
		cache: make(map[cacheKey]cacheValue),
	}
}

func (d *Drawer) Face() font.Face {
	return d.face
}

// DrawString draws s onto dst with its baseline starting at (x, y) and returns
// the advance in pixels. Drawing is clipped to dst.Bounds().
//
func (d *Drawer) DrawString(dst draw.Image, x, y float32, s string, c color.Color) (advance float32) {
	src := image.NewUniform(c)
	dot := fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
	sp := dot.X
	prev := rune(-1)
	for _, r := range s {
		if prev >= 0 {
			dot.X += d.face.Kern(prev, r)
		}
		dp, g, advance := d.lookup(dot, r)
		if g != nil {
			dr := g.mask.Bounds().Add(dp.Add(g.org))
			draw.DrawMask(dst, dr, src, image.Point{}, g.mask, image.Point{}, draw.Over)
		}
		dot.X += advance
		prev = r
	}
	return float32(dot.X-sp) / 64
}

// DrawBytes is like DrawString but takes a byte slice.
//
func (d *Drawer) DrawBytes(dst draw.Image, x, y float32, s []byte, c color.Color) (advance float32) {
	src := image.NewUniform(c)
	dot := fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(y * 64)}
	sp := dot.X
	prev := rune(-1)
	for len(s) > 0 {
		r, sz := utf8.DecodeRune(s)
		s = s[sz:]
		if prev >= 0 {
			dot.X += d.face.Kern(prev, r)
		}
		dp, g, advance := d.lookup(dot, r)
		if g != nil {
			dr := g.mask.Bounds().Add(dp.Add(g.org))
			draw.DrawMask(dst, dr, src, image.Point{}, g.mask, image.Point{}, draw.Over)
		}
		dot.X += advance
		prev = r
	}
	return float32(dot.X-sp) / 64
}

// lookup returns the cached glyph for r at dot, rendering it if needed. dp is
// the quantized integer dot position. A nil glyph means that there is nothing
// to draw (space or missing glyph).
//
func (d *Drawer) lookup(dot fixed.Point26_6, r rune) (dp image.Point, g *glyph, advance fixed.Int26_6) {
	dx, dy := (dot.X+subPixelBiasX)&subPixelMaskX, (dot.Y+subPixelBiasY)&subPixelMaskY
	ix, iy := int(dx>>6), int(dy>>6)
	fx, fy := dx&0x3f, dy&0x3f

	key := cacheKey{r, uint8(fx), uint8(fy)}
	if v, ok := d.cache[key]; ok {
		if idx := v.index; idx >= 0 {
			return image.Point{X: ix, Y: iy}, &d.glyphs[idx], v.adv
		}
		return image.Point{}, nil, v.adv
	}

	dr, mask, maskp, advance, ok := d.face.Glyph(fixed.Point26_6{X: fx, Y: fy}, r)
	if !ok {
		return image.Point{}, nil, 0
	}
	sz := dr.Size()
	if sz.X == 0 || sz.Y == 0 {
		// empty glyph
		d.cache[key] = cacheValue{-1, advance}
		return image.Point{}, nil, advance
	}
	// faces reuse their mask buffer, keep a copy
	m := image.NewAlpha(image.Rectangle{Max: sz})
	draw.Draw(m, m.Bounds(), mask, maskp, draw.Src)
	index := len(d.glyphs)
	d.glyphs = append(d.glyphs, glyph{mask: m, org: dr.Min})
	d.cache[key] = cacheValue{index, advance}
	return image.Point{X: ix, Y: iy}, &d.glyphs[index], advance
}

// Close releases the cached glyphs and closes the underlying face.
//
func (d *Drawer) Close() error {
	d.glyphs = nil
	d.cache = nil
	return d.face.Close()
}

// BoundBytes returns the bounding box of s with f, drawn at a dot equal to the origin, as well as the advance.
//
// It is equivalent to BoundString(string(s)) but may be more efficient.
//
func (d *Drawer) BoundBytes(s []byte) (bounds fixed.Rectangle26_6, advance fixed.Int26_6) {
	return font.BoundBytes(d.face, s)
}

// BoundString returns the bounding box of s with f, drawn at a dot equal to the origin, as well as the advance.
//
func (d *Drawer) BoundString(s string) (bounds fixed.Rectangle26_6, advance fixed.Int26_6) {
	return font.BoundString(d.face, s)
}

// MeasureBytes returns how far dot would advance by drawing s.
//
func (d *Drawer) MeasureBytes(s []byte) (advance fixed.Int26_6) {
	return font.MeasureBytes(d.face, s)
}

// MeasureString returns how far dot would advance by drawing s.
//
func (d *Drawer) MeasureString(s string) (advance fixed.Int26_6) {
	return font.MeasureString(d.face, s)
}
