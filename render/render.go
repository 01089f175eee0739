// Package render defines the renderer service driven by the frame loop and
// provides Software, a renderer rasterizing display lists on the CPU.
//
package render

import (
	"image"

	"github.com/db47h/frame"
	"github.com/db47h/frame/display"
	"github.com/pkg/errors"
)

var (
	ErrInvalidOptions = errors.New("invalid renderer options")
	ErrDeinit         = errors.New("renderer deinitialized")
	ErrNoImageHandler = errors.New("no external image handler")
)

// Renderer is a display list renderer.
//
// Display lists are in layout space and are rasterized at the device pixel
// ratio given to Submit. Submit and UpdateProperties are asynchronous: the
// renderer signals its Notifier when a new frame is ready. Render composites the most recent frame
// into the current framebuffer. Renderers discard frames whose epoch is older
// than the newest submitted one.
//
type Renderer interface {
	Submit(epoch display.Epoch, pipeline display.PipelineID, l *display.List, layout frame.Point, dpr float32)
	UpdateProperties(p display.Properties)
	Render(fb image.Point) error
	SetExternalImageHandler(h ExternalImageHandler)
	SetOutputImageHandler(h OutputImageHandler)
	Deinit()
}

// Notifier is called by a renderer, from any goroutine, to request a repaint.
//
type Notifier interface {
	WakeUp()
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func()

func (f NotifierFunc) WakeUp() { f() }

// ExternalImageHandler resolves the images referenced by display.ImageItem.
// Lock is called before the image is read and Unlock right after.
//
type ExternalImageHandler interface {
	Lock(id display.ExternalImageID) (image.Image, error)
	Unlock(id display.ExternalImageID)
}

// OutputImageHandler receives every frame handed over by Render. img must not
// be retained or modified after Output returns.
//
type OutputImageHandler interface {
	Output(pipeline display.PipelineID, epoch display.Epoch, img *image.RGBA)
}

// Target is where rendered frames go, usually a GL framebuffer.
//
type Target interface {
	Draw(img *image.RGBA) error
}

// TargetFunc adapts a function to the Target interface.
type TargetFunc func(img *image.RGBA) error

func (f TargetFunc) Draw(img *image.RGBA) error { return f(img) }

// Stats are renderer counters.
//
type Stats struct {
	Submitted  uint64 // display lists accepted
	Rasterized uint64 // frames completed
	Dropped    uint64 // stale submissions or frames discarded
	Rendered   uint64 // frames handed over to the target
}
