// Package compositor puts rendered frames on the window framebuffer with
// OpenGL.
//
// The window framebuffer is cleared to transparent, then the viewport is
// cleared to the scene's clear color through a scissor, and frames are blitted
// into the viewport from a texture backed read framebuffer.
//
// All methods must be called with the window's GL context current.
//
package compositor

import (
	"image"
	"image/color"

	"github.com/db47h/frame"
	"github.com/db47h/frame/texture"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

// GL is an OpenGL compositor. It implements loop.Framebuffer and
// render.Target.
//
type GL struct {
	clear [4]float32
	fbo   uint32
	tex   *texture.Texture
	c     frame.Coordinates
}

// Init initializes the GL function pointers for the current context. It must
// be called once, after a context has been made current.
//
func Init() error {
	return errors.Wrap(gl.Init(), "init OpenGL")
}

// Version returns the version string of the current GL context.
//
func Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// New returns a new compositor clearing the viewport with the given color.
// A nil color clears to transparent.
//
func New(clear color.Color) (*GL, error) {
	g := &GL{clear: glColor(clear)}
	gl.GenFramebuffers(1, &g.fbo)
	if err := glError("create framebuffer"); err != nil {
		return nil, err
	}
	return g, nil
}

func glColor(c color.Color) [4]float32 {
	if c == nil {
		return [4]float32{}
	}
	r, g, b, a := c.RGBA()
	return [4]float32{float32(r) / 0xffff, float32(g) / 0xffff, float32(b) / 0xffff, float32(a) / 0xffff}
}

func glError(op string) error {
	if e := gl.GetError(); e != gl.NO_ERROR {
		return errors.Errorf("%s: GL error 0x%04x", op, e)
	}
	return nil
}

// Clear clears the window framebuffer to transparent and the viewport to the
// clear color.
//
func (g *GL) Clear(c frame.Coordinates) {
	g.c = c
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(c.Framebuffer.X), int32(c.Framebuffer.Y))
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	vp := c.FlippedViewport()
	gl.Enable(gl.SCISSOR_TEST)
	gl.Scissor(int32(vp.Min.X), int32(vp.Min.Y), int32(vp.Dx()), int32(vp.Dy()))
	gl.ClearColor(g.clear[0], g.clear[1], g.clear[2], g.clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.Disable(gl.SCISSOR_TEST)
}

// blitRects returns the source and destination rectangles used to copy an
// image of the given size into the viewport. Images have their origin at the
// top left, GL framebuffers at the bottom left, so the returned destination
// has its Y coordinates swapped.
//
func blitRects(size image.Point, c frame.Coordinates) (src, dst image.Rectangle) {
	src = image.Rectangle{Max: size}
	r := src.Add(c.Viewport.Min).Intersect(c.Viewport)
	if r.Empty() {
		return image.Rectangle{}, image.Rectangle{}
	}
	src = r.Sub(c.Viewport.Min)
	f := frame.FlipRect(r, c.Framebuffer.Y)
	return src, image.Rectangle{Min: image.Pt(f.Min.X, f.Max.Y), Max: image.Pt(f.Max.X, f.Min.Y)}
}

// Draw uploads img and copies it into the viewport set by the last call to
// Clear.
//
func (g *GL) Draw(img *image.RGBA) error {
	sz := img.Bounds().Size()
	src, dst := blitRects(sz, g.c)
	if src.Empty() {
		return nil
	}
	if g.tex == nil || g.tex.Size() != sz {
		if err := g.resize(img); err != nil {
			return err
		}
	} else {
		g.tex.SetSubImage(image.Rectangle{Max: sz}, img, img.Bounds().Min)
	}

	// the texture holds the image upside down from GL's point of view: row 0
	// is the top of the image. Src Y coordinates are therefore used as is.
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, g.fbo)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(
		int32(src.Min.X), int32(src.Min.Y), int32(src.Max.X), int32(src.Max.Y),
		int32(dst.Min.X), int32(dst.Min.Y), int32(dst.Max.X), int32(dst.Max.Y),
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return glError("blit frame")
}

// resize replaces the frame texture with a new one holding img.
//
func (g *GL) resize(img *image.RGBA) error {
	if g.tex != nil {
		g.tex.Delete()
	}
	sz := img.Bounds().Size()
	g.tex = texture.FromImage(img, texture.Filter(texture.Nearest, texture.Nearest), texture.Wrap(texture.ClampToEdge, texture.ClampToEdge))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, g.fbo)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, g.tex.NativeID(), 0)
	st := gl.CheckFramebufferStatus(gl.READ_FRAMEBUFFER)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	if st != gl.FRAMEBUFFER_COMPLETE {
		return errors.Errorf("frame texture %v: incomplete framebuffer 0x%04x", sz, st)
	}
	frame.Logger().Debug("frame texture resized", "size", sz)
	return nil
}

// Delete releases GL resources.
//
func (g *GL) Delete() {
	if g.tex != nil {
		g.tex.Delete()
		g.tex = nil
	}
	if g.fbo != 0 {
		gl.DeleteFramebuffers(1, &g.fbo)
		g.fbo = 0
	}
}
