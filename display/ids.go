package display

import (
	"fmt"
	"image/color"
)

// Epoch identifies a version of the scene submitted for a pipeline. Epochs
// only ever increase.
//
type Epoch uint32

// Next returns the epoch following e.
//
func (e Epoch) Next() Epoch { return e + 1 }

// PipelineID scopes a display list to a render target.
//
type PipelineID struct {
	Namespace uint32
	Handle    uint32
}

func (p PipelineID) String() string {
	return fmt.Sprintf("pipeline(%d,%d)", p.Namespace, p.Handle)
}

// DocumentID identifies a document, the unit of rendering of a renderer.
type DocumentID uint32

// FontInstanceKey refers to a font face at a given size registered with a
// renderer. The zero value is not a valid key.
type FontInstanceKey uint32

// ExternalImageID refers to an image owned by the embedder and resolved at
// render time through an external image handler.
type ExternalImageID uint64

// PropertyKey identifies an animated property. Zero means "not animated".
type PropertyKey uint32

// ColorF returns an opaque-or-translucent color from float components in
// [0, 1]. Components are not premultiplied.
//
func ColorF(r, g, b, a float32) color.NRGBA {
	return color.NRGBA{R: unit8(r), G: unit8(g), B: unit8(b), A: unit8(a)}
}

func unit8(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}
