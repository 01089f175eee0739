package app

import (
	"image"

	"github.com/db47h/frame"
	"github.com/db47h/frame/asset"
	"github.com/db47h/frame/display"
	"github.com/db47h/frame/render"
	"github.com/db47h/ofs"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrUnknownImage is returned when the renderer locks an external image that
// no scene hook provides.
var ErrUnknownImage = errors.New("unknown external image")

// DefaultAssets returns an asset manager serving fonts from res/fonts and
// images from res/images, relative to the current directory.
//
func DefaultAssets() *asset.Manager {
	var ovl ofs.Overlay
	if err := ovl.Add(false, "."); err != nil {
		frame.Logger().Warn("asset directory", "error", err)
	}
	return asset.NewManager(&ovl, asset.FontPath("res/fonts"), asset.ImagePath("res/images"))
}

func closeAssets(m *asset.Manager) {
	if err := m.Close(); err != nil {
		frame.Logger().Warn("close assets", "error", err)
	}
}

// sceneAssets returns the assets used by scene.
//
func sceneAssets(scene Scene) []asset.Asset {
	var as []asset.Asset
	if p, ok := scene.(FontProvider); ok {
		if name, _ := p.Font(); name != "" {
			as = append(as, asset.Font(name))
		}
	}
	if p, ok := scene.(ImageProvider); ok {
		for _, name := range p.Images() {
			as = append(as, asset.Image(name))
		}
	}
	return as
}

// preload loads all the assets of scene concurrently.
//
func preload(scene Scene, m *asset.Manager) error {
	as := sceneAssets(scene)
	if len(as) == 0 {
		return nil
	}
	rc, n := m.Preload(as, false)
	frame.Logger().Debug("preload", "assets", n)
	return errors.Wrap(asset.Wait(rc), "load scene assets")
}

type fontAdder interface {
	AddFont(f *truetype.Font, size float32) (display.FontInstanceKey, error)
}

// addFont registers the scene's font with the renderer. Scenes that do not
// draw text get key 0.
//
func addFont(r fontAdder, scene Scene, m *asset.Manager) (display.FontInstanceKey, error) {
	p, ok := scene.(FontProvider)
	if !ok {
		return 0, nil
	}
	name, size := p.Font()
	var (
		f   *truetype.Font
		err error
	)
	if name == "" {
		f, err = truetype.Parse(goregular.TTF)
	} else {
		f, err = m.Font(name)
	}
	if err != nil {
		return 0, errors.Wrap(err, "scene font")
	}
	k, err := r.AddFont(f, size)
	if err != nil {
		return 0, errors.Wrapf(err, "scene font %q", name)
	}
	if name != "" {
		// the renderer holds on to f
		if err := m.Discard(asset.Font(name)); err != nil {
			frame.Logger().Warn("discard font", "name", name, "error", err)
		}
	}
	frame.Logger().Info("font instance", "key", k, "name", name, "size", size)
	return k, nil
}

// imageHandler serves image assets and hands other images over to the scene's
// own handler. It is read-only once built.
//
type imageHandler struct {
	images map[display.ExternalImageID]image.Image
	next   render.ExternalImageHandler
}

func (h *imageHandler) Lock(id display.ExternalImageID) (image.Image, error) {
	if img, ok := h.images[id]; ok {
		return img, nil
	}
	if h.next != nil {
		return h.next.Lock(id)
	}
	return nil, errors.Wrapf(ErrUnknownImage, "image %d", id)
}

func (h *imageHandler) Unlock(id display.ExternalImageID) {
	if _, ok := h.images[id]; ok {
		return
	}
	if h.next != nil {
		h.next.Unlock(id)
	}
}

// imageHandlerFor returns the external image handler for scene, or nil if it
// draws no images.
//
func imageHandlerFor(scene Scene, m *asset.Manager) (render.ExternalImageHandler, error) {
	var next render.ExternalImageHandler
	if p, ok := scene.(ExternalImageProvider); ok {
		next = p.ExternalImageHandler()
	}
	p, ok := scene.(ImageProvider)
	if !ok {
		return next, nil
	}
	h := &imageHandler{images: make(map[display.ExternalImageID]image.Image), next: next}
	for id, name := range p.Images() {
		img, err := m.Image(name)
		if err != nil {
			return nil, errors.Wrapf(err, "image %d", id)
		}
		h.images[id] = img
	}
	return h, nil
}
