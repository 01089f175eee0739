package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/db47h/frame"
	"github.com/db47h/frame/display"
	"github.com/db47h/frame/text"
	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// kappa is the distance of cubic Bézier control points, relative to the
// radius, that best approximates a quarter circle.
const kappa = 0.5522848

var debugColor = color.RGBA{R: 255, A: 255}

type state struct {
	t       display.Transform // layout space to device space
	opacity float32
	clip    image.Rectangle
}

type rasterizer struct {
	dst   *image.RGBA
	props *display.Properties
	fonts func(display.FontInstanceKey) *text.Drawer
	ext   ExternalImageHandler
	debug DebugFlags

	z     vector.Rasterizer
	cur   state
	stack []state
	xf    func(frame.Point) frame.Point
}

func (r *rasterizer) draw(l *display.List, k float32) {
	if l == nil {
		return
	}
	r.cur = state{t: display.Scale(k, k), opacity: 1, clip: r.dst.Bounds()}
	for i, it := range l.Items {
		var err error
		switch it := it.(type) {
		case display.StackingContextItem:
			r.push()
			r.cur.t = r.cur.t.Mul(display.Translation(it.Origin.X, it.Origin.Y)).Mul(r.props.Transform(it.Transform))
			r.cur.opacity *= clamp01(r.props.Float(it.Opacity))
		case display.ClipItem:
			r.push()
			r.cur.clip = r.cur.clip.Intersect(r.cur.t.Bounds(it.Bounds))
		case display.PopStackingContextItem, display.PopClipItem:
			r.pop()
		case display.RectItem:
			r.fillRect(it)
		case display.TextItem:
			err = r.drawText(it)
		case display.ImageItem:
			err = r.drawImage(it)
		}
		if err != nil {
			frame.Logger().Warn("skipped display item", "index", i, "error", err)
		}
	}
}

func (r *rasterizer) push() {
	r.stack = append(r.stack, r.cur)
}

func (r *rasterizer) pop() {
	if n := len(r.stack); n > 0 {
		r.cur = r.stack[n-1]
		r.stack = r.stack[:n-1]
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}

// fade scales a premultiplied color by alpha.
func fade(c color.RGBA, alpha float32) color.RGBA {
	if alpha >= 1 {
		return c
	}
	return color.RGBA{
		R: uint8(float32(c.R) * alpha),
		G: uint8(float32(c.G) * alpha),
		B: uint8(float32(c.B) * alpha),
		A: uint8(float32(c.A) * alpha),
	}
}

func (r *rasterizer) visible() bool {
	return r.cur.opacity > 0 && !r.cur.clip.Empty()
}

func (r *rasterizer) fillRect(it display.RectItem) {
	if !r.visible() || it.Bounds.Empty() || it.Color.A == 0 {
		return
	}
	db := r.cur.t.Bounds(it.Bounds)
	clip := r.cur.clip.Intersect(db)
	if clip.Empty() {
		return
	}
	// the vector rasterizer covers exactly clip, shift the path accordingly
	off := frame.PtPt(clip.Min)
	t := r.cur.t
	r.xf = func(p frame.Point) frame.Point { return t.Apply(p).Sub(off) }
	r.z.Reset(clip.Dx(), clip.Dy())
	r.z.DrawOp = draw.Over
	r.roundedRect(it.Bounds, it.Radius)
	r.z.Draw(r.dst, clip, image.NewUniform(fade(it.Color, r.cur.opacity)), image.Point{})
	r.outline(db)
}

func (r *rasterizer) moveTo(p frame.Point) {
	p = r.xf(p)
	r.z.MoveTo(p.X, p.Y)
}

func (r *rasterizer) lineTo(p frame.Point) {
	p = r.xf(p)
	r.z.LineTo(p.X, p.Y)
}

func (r *rasterizer) cubeTo(c1, c2, p frame.Point) {
	c1, c2, p = r.xf(c1), r.xf(c2), r.xf(p)
	r.z.CubeTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (r *rasterizer) roundedRect(b display.Rect, radius float32) {
	x0, y0, x1, y1 := b.Min.X, b.Min.Y, b.Max.X, b.Max.Y
	rad := min(radius, b.Dx()/2, b.Dy()/2)
	if rad <= 0 {
		r.moveTo(frame.Pt(x0, y0))
		r.lineTo(frame.Pt(x1, y0))
		r.lineTo(frame.Pt(x1, y1))
		r.lineTo(frame.Pt(x0, y1))
		r.z.ClosePath()
		return
	}
	k := rad * (1 - kappa)
	r.moveTo(frame.Pt(x0+rad, y0))
	r.lineTo(frame.Pt(x1-rad, y0))
	r.cubeTo(frame.Pt(x1-k, y0), frame.Pt(x1, y0+k), frame.Pt(x1, y0+rad))
	r.lineTo(frame.Pt(x1, y1-rad))
	r.cubeTo(frame.Pt(x1, y1-k), frame.Pt(x1-k, y1), frame.Pt(x1-rad, y1))
	r.lineTo(frame.Pt(x0+rad, y1))
	r.cubeTo(frame.Pt(x0+k, y1), frame.Pt(x0, y1-k), frame.Pt(x0, y1-rad))
	r.lineTo(frame.Pt(x0, y0+rad))
	r.cubeTo(frame.Pt(x0, y0+k), frame.Pt(x0+k, y0), frame.Pt(x0+rad, y0))
	r.z.ClosePath()
}

// drawText only honors the translation and scale of the current transform:
// glyphs are never rotated.
//
func (r *rasterizer) drawText(it display.TextItem) error {
	if !r.visible() || it.Color.A == 0 {
		return nil
	}
	d := r.fonts(it.Font)
	if d == nil {
		return errors.Errorf("unknown font instance %d", it.Font)
	}
	p := r.cur.t.Apply(it.Origin)
	dst := r.dst.SubImage(r.cur.clip).(*image.RGBA)
	d.DrawString(dst, p.X, p.Y, it.Text, fade(it.Color, r.cur.opacity))
	return nil
}

func (r *rasterizer) drawImage(it display.ImageItem) error {
	if !r.visible() || it.Bounds.Empty() {
		return nil
	}
	if r.ext == nil {
		return errors.Wrapf(ErrNoImageHandler, "image %d", it.Image)
	}
	db := r.cur.t.Bounds(it.Bounds)
	clip := r.cur.clip.Intersect(db)
	if clip.Empty() {
		return nil
	}
	src, err := r.ext.Lock(it.Image)
	if err != nil {
		return errors.Wrapf(err, "lock image %d", it.Image)
	}
	defer r.ext.Unlock(it.Image)
	sb := src.Bounds()
	if sb.Empty() {
		return nil
	}
	// source pixels to device pixels
	m := r.cur.t.
		Mul(display.Translation(it.Bounds.Min.X, it.Bounds.Min.Y)).
		Mul(display.Scale(it.Bounds.Dx()/float32(sb.Dx()), it.Bounds.Dy()/float32(sb.Dy()))).
		Mul(display.Translation(-float32(sb.Min.X), -float32(sb.Min.Y)))
	var opts *xdraw.Options
	if r.cur.opacity < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(r.cur.opacity * 0xffff)})}
	}
	dst := r.dst.SubImage(clip).(*image.RGBA)
	xdraw.ApproxBiLinear.Transform(dst, m.Aff3(), src, sb, xdraw.Over, opts)
	r.outline(db)
	return nil
}

func (r *rasterizer) outline(b image.Rectangle) {
	if r.debug&ShowBounds == 0 {
		return
	}
	b = b.Intersect(r.dst.Bounds())
	if b.Empty() {
		return
	}
	src := image.NewUniform(debugColor)
	for _, e := range [...]image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+1),
		image.Rect(b.Min.X, b.Max.Y-1, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y, b.Min.X+1, b.Max.Y),
		image.Rect(b.Max.X-1, b.Min.Y, b.Max.X, b.Max.Y),
	} {
		draw.Draw(r.dst, e, src, image.Point{}, draw.Src)
	}
}
