// Package texture wraps OpenGL 2D textures.
//
// All functions must be called with a current GL context.
//
package texture

import (
	"image"
	"image/draw"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// FilterMode selects how to filter textures.
//
type FilterMode int32

// FilterMode values map directly to their OpenGL equivalents.
//
const (
	Nearest              FilterMode = gl.NEAREST
	Linear               FilterMode = gl.LINEAR
	NearestMipmapNearest FilterMode = gl.NEAREST_MIPMAP_NEAREST
	NearestMipmapLinear  FilterMode = gl.NEAREST_MIPMAP_LINEAR
	LinearMipmapNearest  FilterMode = gl.LINEAR_MIPMAP_NEAREST
	LinearMipmapLinear   FilterMode = gl.LINEAR_MIPMAP_LINEAR
)

func (f FilterMode) mipmapped() bool {
	switch f {
	case NearestMipmapNearest, NearestMipmapLinear, LinearMipmapNearest, LinearMipmapLinear:
		return true
	}
	return false
}

// WrapMode selects how textures wrap when texture coordinates get outside of
// the range [0, 1].
//
type WrapMode int32

// WrapMode values map directly to their OpenGL equivalents.
//
const (
	Repeat         WrapMode = gl.REPEAT
	MirroredRepeat WrapMode = gl.MIRRORED_REPEAT
	ClampToEdge    WrapMode = gl.CLAMP_TO_EDGE
	ClampToBorder  WrapMode = gl.CLAMP_TO_BORDER
)

// A Texture is an RGBA OpenGL texture.
//
type Texture struct {
	width  int
	height int
	glID   uint32
	mipmap bool
}

type tp struct {
	wrapS, wrapT         WrapMode
	minFilter, magFilter FilterMode
}

// Parameter is implemented by functions setting texture parameters. See
// FromImage.
//
type Parameter interface {
	set(*tp)
}

type optionFunc func(*tp)

func (f optionFunc) set(p *tp) {
	f(p)
}

// Wrap sets the GL_TEXTURE_WRAP_S and GL_TEXTURE_WRAP_T texture parameters.
//
func Wrap(wrapS, wrapT WrapMode) Parameter {
	return optionFunc(func(p *tp) {
		p.wrapS = wrapS
		p.wrapT = wrapT
	})
}

// Filter sets the GL_TEXTURE_MIN_FILTER and GL_TEXTURE_MAG_FILTER texture parameters.
//
func Filter(min, mag FilterMode) Parameter {
	return optionFunc(func(p *tp) {
		p.minFilter = min
		p.magFilter = mag
	})
}

func collect(params []Parameter) tp {
	var p tp
	for _, o := range params {
		o.set(&p)
	}
	return p
}

// pixels returns the pixels of src within r as a tightly packed RGBA image
// with r.Size() pixels. It returns src itself when it already is one.
//
func pixels(src image.Image, r image.Rectangle) *image.RGBA {
	if i, ok := src.(*image.RGBA); ok && i.Bounds() == r && i.Stride == 4*r.Dx() {
		return i
	}
	dst := image.NewRGBA(image.Rectangle{Max: r.Size()})
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)
	return dst
}

// FromImage creates a new texture of the same dimensions as the source image.
// Regardless of the source image type, the resulting texture is always in RGBA
// format.
//
func FromImage(src image.Image, params ...Parameter) *Texture {
	sr := src.Bounds()
	p := collect(params)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	t := &Texture{width: sr.Dx(), height: sr.Dy(), glID: tex, mipmap: p.minFilter.mipmapped()}
	if p.wrapS != 0 {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(p.wrapS))
	}
	if p.wrapT != 0 {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(p.wrapT))
	}
	if p.minFilter != 0 {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(p.minFilter))
	}
	if p.magFilter != 0 {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(p.magFilter))
	}

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	if sr.Empty() {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(t.width), int32(t.height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		return t
	}
	i := pixels(src, sr)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(t.width), int32(t.height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&i.Pix[0]))
	if t.mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	return t
}

// SetSubImage draws src to the texture. It works identically to draw.Draw with op set to draw.Src.
//
func (t *Texture) SetSubImage(dr image.Rectangle, src image.Image, sp image.Point) {
	sz := dr.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		return
	}
	i := pixels(src, image.Rectangle{Min: sp, Max: sp.Add(sz)})

	gl.BindTexture(gl.TEXTURE_2D, t.glID)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, int32(dr.Min.X), int32(dr.Min.Y), int32(sz.X), int32(sz.Y), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&i.Pix[0]))
	if t.mipmap {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
}

// Size returns the size of the texture.
//
func (t *Texture) Size() image.Point {
	return image.Point{t.width, t.height}
}

// NativeID returns the native identifier of the texture.
//
func (t *Texture) NativeID() uint32 {
	return t.glID
}

// Delete deletes the texture.
//
func (t *Texture) Delete() {
	gl.DeleteTextures(1, &t.glID)
	t.glID = 0
}
