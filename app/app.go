// Package app opens a window with an OpenGL context and runs a Scene in a
// frame loop, rendered with the software renderer and composited with GL.
//
package app

import (
	"image/color"
	"runtime"

	"github.com/db47h/frame"
	"github.com/db47h/frame/app/event"
	"github.com/db47h/frame/asset"
	"github.com/db47h/frame/compositor"
	"github.com/db47h/frame/display"
	"github.com/db47h/frame/loop"
	"github.com/db47h/frame/render"
	"github.com/pkg/errors"
)

func init() {
	// GLFW and GL calls must happen on the main thread.
	runtime.LockOSThread()
}

// Scene is the strategy producing frame contents. See loop.Scene.
//
type Scene = loop.Scene

// Titler is implemented by scenes providing a window title.
//
type Titler interface {
	Title() string
}

// ClearColorer is implemented by scenes providing the viewport background.
//
type ClearColorer interface {
	ClearColor() color.Color
}

// FontProvider is implemented by scenes that draw text. Font returns the name
// of a font asset and its size in layout pixels. An empty name selects the
// built-in Go Regular font.
//
type FontProvider interface {
	Font() (name string, size float32)
}

// ExternalImageProvider is implemented by scenes drawing external images.
//
type ExternalImageProvider interface {
	ExternalImageHandler() render.ExternalImageHandler
}

// ImageProvider is implemented by scenes drawing image assets. Images maps
// external image IDs to the names of image assets. The images are loaded
// before the first frame and served to the renderer along with the images of
// an ExternalImageProvider.
//
type ImageProvider interface {
	Images() map[display.ExternalImageID]string
}

// Sizer is implemented by scenes providing an initial window size, in
// device-independent pixels.
//
type Sizer interface {
	Size() (width, height int)
}

// DebugFlagger is implemented by scenes enabling renderer debugging aids.
//
type DebugFlagger interface {
	DebugFlags() render.DebugFlags
}

// Window is a window with a GL context. WakeUp may be called from any
// goroutine to interrupt a blocking WaitEvent.
//
type Window interface {
	loop.Window
	render.Notifier
}

type driver interface {
	init(*winCfg) error
	terminate()
	window() Window
}

// Main opens a window and runs scene until the window is closed. It must be
// called from the main goroutine.
//
func Main(scene Scene, opts ...Option) error {
	cfg := newConfig(scene, opts...)
	if err := drv.init(&cfg.win); err != nil {
		return errors.Wrap(err, "init window")
	}
	defer drv.terminate()
	return run(drv.window(), scene, cfg)
}

// glRenderer releases the compositor along with the renderer, while the GL
// context is still current.
//
type glRenderer struct {
	*render.Software
	comp *compositor.GL
}

func (r glRenderer) Deinit() {
	r.Software.Deinit()
	r.comp.Delete()
}

func run(w Window, scene Scene, cfg *appCfg) (err error) {
	log := frame.Logger()
	defer closeAssets(cfg.assets)
	var cleanup []func()
	defer func() {
		if err != nil {
			for i := len(cleanup) - 1; i >= 0; i-- {
				cleanup[i]()
			}
		}
	}()
	cleanup = append(cleanup, w.Destroy)

	log.Info("window ready", "driver", DriverVersion())
	c, err := w.Coordinates()
	if err != nil {
		return errors.Wrap(err, "window coordinates")
	}
	log.Info("display", "hidpi", c.HiDPI, "screen", c.Screen, "framebuffer", c.Framebuffer)

	comp, err := compositor.New(cfg.clear)
	if err != nil {
		return errors.Wrap(err, "create compositor")
	}
	cleanup = append(cleanup, comp.Delete)

	sw, err := render.NewSoftware(render.Options{
		DevicePixelRatio: c.HiDPI,
		ClearColor:       cfg.clear,
		Debug:            cfg.debug,
	}, comp, w)
	if err != nil {
		return errors.Wrap(err, "create renderer")
	}
	cleanup = append(cleanup, sw.Deinit)

	if err = preload(scene, cfg.assets); err != nil {
		return err
	}
	fk, err := addFont(sw, scene, cfg.assets)
	if err != nil {
		return err
	}
	ih, err := imageHandlerFor(scene, cfg.assets)
	if err != nil {
		return err
	}
	if ih != nil {
		sw.SetExternalImageHandler(ih)
	}
	if cfg.output != nil {
		sw.SetOutputImageHandler(cfg.output)
	}

	l, err := loop.New(loop.Config{
		Window:      w,
		Renderer:    glRenderer{sw, comp},
		Framebuffer: comp,
		Scene:       scene,
		Pipeline:    display.PipelineID{},
		Document:    cfg.document,
		Font:        fk,
		QuitKey:     cfg.quitKey,
	})
	if err != nil {
		return err
	}
	l.Run()
	return nil
}

// Option configures Main.
//
type Option interface {
	set(*appCfg)
}

type winCfg struct {
	fullScreen bool
	hidden     bool
	fixed      bool
	noVSync    bool
	x, y, w, h int
	title      string
}

type appCfg struct {
	win      winCfg
	clear    color.Color
	debug    render.DebugFlags
	assets   *asset.Manager
	output   render.OutputImageHandler
	quitKey  event.Key
	document display.DocumentID
}

func newConfig(scene Scene, opts ...Option) *appCfg {
	cfg := &appCfg{
		win:     winCfg{title: "frame", x: -1, y: -1, w: 1344, h: 756},
		clear:   color.White,
		quitKey: event.KeyEscape,
	}
	if t, ok := scene.(Titler); ok {
		cfg.win.title = t.Title()
	}
	if sz, ok := scene.(Sizer); ok {
		cfg.win.w, cfg.win.h = sz.Size()
	}
	if c, ok := scene.(ClearColorer); ok {
		cfg.clear = c.ClearColor()
	}
	if d, ok := scene.(DebugFlagger); ok {
		cfg.debug = d.DebugFlags()
	}
	for _, o := range opts {
		o.set(cfg)
	}
	if cfg.assets == nil {
		cfg.assets = DefaultAssets()
	}
	return cfg
}

type option func(*appCfg)

func (f option) set(cfg *appCfg) {
	f(cfg)
}

// Title overrides the window title.
//
func Title(title string) Option {
	return option(func(cfg *appCfg) {
		cfg.win.title = title
	})
}

// Pos sets the initial window position.
//
func Pos(x, y int) Option {
	return option(func(cfg *appCfg) {
		cfg.win.x, cfg.win.y = x, y
	})
}

// Size sets the initial window size in device-independent pixels.
//
func Size(w, h int) Option {
	return option(func(cfg *appCfg) {
		cfg.win.w, cfg.win.h = w, h
	})
}

func FullScreen() Option {
	return option(func(cfg *appCfg) {
		cfg.win.fullScreen = true
	})
}

func Visible(b bool) Option {
	return option(func(cfg *appCfg) {
		cfg.win.hidden = !b
	})
}

func Resizable(b bool) Option {
	return option(func(cfg *appCfg) {
		cfg.win.fixed = !b
	})
}

func VSync(b bool) Option {
	return option(func(cfg *appCfg) {
		cfg.win.noVSync = !b
	})
}

// ClearColor overrides the viewport background.
//
func ClearColor(c color.Color) Option {
	return option(func(cfg *appCfg) {
		cfg.clear = c
	})
}

// Debug enables renderer debugging aids, in addition to the scene's.
//
func Debug(flags render.DebugFlags) Option {
	return option(func(cfg *appCfg) {
		cfg.debug |= flags
	})
}

// Assets sets the asset manager used to load fonts.
//
func Assets(m *asset.Manager) Option {
	return option(func(cfg *appCfg) {
		cfg.assets = m
	})
}

// Output registers an OutputImageHandler receiving every rendered frame.
//
func Output(h render.OutputImageHandler) Option {
	return option(func(cfg *appCfg) {
		cfg.output = h
	})
}

// QuitKey sets the key that closes the window. The default is Escape.
//
func QuitKey(k event.Key) Option {
	return option(func(cfg *appCfg) {
		cfg.quitKey = k
	})
}

// Document sets the document ID passed to the scene.
//
func Document(id display.DocumentID) Option {
	return option(func(cfg *appCfg) {
		cfg.document = id
	})
}
