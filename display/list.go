// Package display describes the content of a frame as a flat list of drawing
// items, built once per scene version and handed over to a renderer.
//
// Items are authored in layout space (device-independent pixels). Nesting is
// expressed with balanced push/pop items: stacking contexts carry a transform
// and an opacity, clips restrict drawing to a rectangle.
//
package display

import (
	"image/color"

	"github.com/db47h/frame"
	"github.com/pkg/errors"
)

var (
	// ErrUnbalanced is returned by Builder.Finalize when push and pop calls do
	// not match.
	ErrUnbalanced = errors.New("unbalanced display list")
	ErrNoFont     = errors.New("text item without a font instance")
)

// Item is implemented by all display items.
//
type Item interface {
	item()
}

// RectItem fills Bounds with Color. A positive Radius rounds the corners.
//
type RectItem struct {
	Bounds Rect
	Radius float32
	Color  color.RGBA
}

// TextItem draws Text with its baseline starting at Origin.
//
type TextItem struct {
	Origin frame.Point
	Text   string
	Font   FontInstanceKey
	Color  color.RGBA
}

// ImageItem draws an external image scaled to Bounds.
//
type ImageItem struct {
	Bounds Rect
	Image  ExternalImageID
}

// ClipItem restricts drawing of the following items to Bounds, until the
// matching PopClipItem.
//
type ClipItem struct {
	Bounds Rect
}

type PopClipItem struct{}

// StackingContextItem starts a new coordinate space: its origin is Origin in
// the parent space, then Transform is applied. Opacity multiplies the opacity
// of every item drawn in the context.
//
type StackingContextItem struct {
	Origin    frame.Point
	Transform TransformBinding
	Opacity   FloatBinding
}

type PopStackingContextItem struct{}

func (RectItem) item()               {}
func (TextItem) item()               {}
func (ImageItem) item()              {}
func (ClipItem) item()               {}
func (PopClipItem) item()            {}
func (StackingContextItem) item()    {}
func (PopStackingContextItem) item() {}

// List is a finalized display list. It must not be modified once returned by
// Builder.Finalize.
//
type List struct {
	Pipeline    PipelineID
	ContentSize frame.Point
	Items       []Item
}

// Len returns the number of items in the list.
//
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}

// StackingContext describes a stacking context for Builder.PushStackingContext.
// A nil Transform means identity, a nil Opacity means fully opaque.
//
type StackingContext struct {
	Origin    frame.Point
	Transform *TransformBinding
	Opacity   *FloatBinding
}

type scope uint8

const (
	scopeClip scope = iota
	scopeContext
)

// A Builder accumulates display items. The zero value is not usable, use
// NewBuilder.
//
type Builder struct {
	pipeline PipelineID
	size     frame.Point
	items    []Item
	scopes   []scope
	err      error
}

// NewBuilder returns a builder for a display list of the given content size.
//
func NewBuilder(pipeline PipelineID, contentSize frame.Point) *Builder {
	return &Builder{pipeline: pipeline, size: contentSize}
}

// ContentSize returns the content size the builder was created with.
//
func (b *Builder) ContentSize() frame.Point { return b.size }

// Pipeline returns the pipeline the list is built for.
func (b *Builder) Pipeline() PipelineID { return b.pipeline }

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func (b *Builder) PushRect(r Rect, c color.Color) {
	b.items = append(b.items, RectItem{Bounds: r, Color: rgba(c)})
}

func (b *Builder) PushRoundedRect(r Rect, radius float32, c color.Color) {
	if radius < 0 {
		radius = 0
	}
	b.items = append(b.items, RectItem{Bounds: r, Radius: radius, Color: rgba(c)})
}

func (b *Builder) PushText(origin frame.Point, s string, font FontInstanceKey, c color.Color) {
	if font == 0 && b.err == nil {
		b.err = errors.Wrapf(ErrNoFont, "text %q", s)
	}
	b.items = append(b.items, TextItem{Origin: origin, Text: s, Font: font, Color: rgba(c)})
}

func (b *Builder) PushImage(r Rect, id ExternalImageID) {
	b.items = append(b.items, ImageItem{Bounds: r, Image: id})
}

func (b *Builder) PushClip(r Rect) {
	b.scopes = append(b.scopes, scopeClip)
	b.items = append(b.items, ClipItem{Bounds: r})
}

func (b *Builder) PopClip() {
	b.pop(scopeClip, "PopClip")
	b.items = append(b.items, PopClipItem{})
}

func (b *Builder) PushStackingContext(sc StackingContext) {
	it := StackingContextItem{
		Origin:    sc.Origin,
		Transform: StaticTransform(Identity()),
		Opacity:   StaticFloat(1),
	}
	if sc.Transform != nil {
		it.Transform = *sc.Transform
	}
	if sc.Opacity != nil {
		it.Opacity = *sc.Opacity
	}
	b.scopes = append(b.scopes, scopeContext)
	b.items = append(b.items, it)
}

func (b *Builder) PopStackingContext() {
	b.pop(scopeContext, "PopStackingContext")
	b.items = append(b.items, PopStackingContextItem{})
}

func (b *Builder) pop(s scope, op string) {
	n := len(b.scopes)
	if n == 0 || b.scopes[n-1] != s {
		if b.err == nil {
			b.err = errors.Wrapf(ErrUnbalanced, "%s at item %d", op, len(b.items))
		}
		return
	}
	b.scopes = b.scopes[:n-1]
}

// Finalize returns the display list built so far. It fails if any push has no
// matching pop, if a pop did not match the innermost push, or if a text item
// was added without a font.
//
// The builder must not be used after Finalize.
//
func (b *Builder) Finalize() (*List, error) {
	if b.err != nil {
		return nil, b.err
	}
	if n := len(b.scopes); n > 0 {
		return nil, errors.Wrapf(ErrUnbalanced, "%d unclosed scopes", n)
	}
	l := &List{Pipeline: b.pipeline, ContentSize: b.size, Items: b.items}
	b.items = nil
	return l, nil
}
