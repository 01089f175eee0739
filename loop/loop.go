// Package loop implements the frame loop: it waits for window events,
// dispatches them to a Scene, rebuilds and submits display lists when needed,
// then composites and presents frames.
//
// A Loop is single threaded. All methods must be called from the thread that
// owns the window's GL context.
//
package loop

import (
	"image"
	"time"

	"github.com/db47h/frame"
	"github.com/db47h/frame/app/event"
	"github.com/db47h/frame/debug"
	"github.com/db47h/frame/display"
	"github.com/pkg/errors"
)

// ErrConfig is returned by New when a required collaborator is missing.
var ErrConfig = errors.New("invalid loop configuration")

// State is the state of a Loop.
//
type State int

const (
	Idle State = iota
	Dispatching
	Deciding
	Rebuilding
	Compositing
	Presenting
	ShuttingDown
)

var stateNames = [...]string{"Idle", "Dispatching", "Deciding", "Rebuilding", "Compositing", "Presenting", "ShuttingDown"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "State(?)"
}

// Window is the windowing and surface service.
//
// WaitEvent blocks until the next event. MakeCurrent makes the window's GL
// context current on the calling thread.
//
type Window interface {
	WaitEvent() event.Interface
	Coordinates() (frame.Coordinates, error)
	MakeCurrent() error
	Present() error
	Destroy()
}

// Renderer is the part of render.Renderer used by the loop.
//
type Renderer interface {
	Submit(epoch display.Epoch, pipeline display.PipelineID, l *display.List, layout frame.Point, dpr float32)
	UpdateProperties(p display.Properties)
	Render(fb image.Point) error
	Deinit()
}

// Framebuffer prepares the window framebuffer for rendering.
//
type Framebuffer interface {
	Clear(c frame.Coordinates)
}

// Scene is the strategy producing the content of frames.
//
// BuildScene returns a builder filled with the scene for the given
// coordinates. Display items are in layout space, c.Layout is the content
// size. OnEvent reacts to an event and reports whether the scene must be
// rebuilt.
//
type Scene interface {
	BuildScene(c frame.Coordinates, pipeline display.PipelineID, doc display.DocumentID, font display.FontInstanceKey) *display.Builder
	OnEvent(e event.Interface) (rebuild bool)
}

// CustomDrawer is implemented by scenes that draw directly with GL after the
// renderer, before the frame is presented.
//
type CustomDrawer interface {
	DrawCustom()
}

// Animator is implemented by scenes that animate display list properties.
// Properties is called after every dispatched event. If changed is true, p is
// sent to the renderer and the frame is composited.
//
type Animator interface {
	Properties() (p display.Properties, changed bool)
}

// FrameStarter is implemented by scenes that want the time stamp of the
// beginning of each composited frame.
//
type FrameStarter interface {
	FrameStart(time.Time)
}

// Config configures a Loop. Window, Renderer and Scene are required.
//
type Config struct {
	Window      Window
	Renderer    Renderer
	Framebuffer Framebuffer // optional
	Scene       Scene

	Pipeline display.PipelineID
	Document display.DocumentID
	Font     display.FontInstanceKey

	// QuitKey shuts the loop down when pressed. Defaults to event.KeyEscape.
	QuitKey event.Key
}

// Loop is the frame loop.
//
type Loop struct {
	cfg   Config
	state State
	epoch display.Epoch
	dirty bool

	layout  frame.Point // layout and hidpi factor of the last built scene
	hidpi   float32
	started bool

	custom  CustomDrawer
	anim    Animator
	fStart  FrameStarter
	ft      debug.Timer
	frames  uint64
	skipped uint64
}

// New returns a new Loop. The scene is built on the first call to Start, Run
// or Step.
//
func New(cfg Config) (*Loop, error) {
	switch {
	case cfg.Window == nil:
		return nil, errors.Wrap(ErrConfig, "no window")
	case cfg.Renderer == nil:
		return nil, errors.Wrap(ErrConfig, "no renderer")
	case cfg.Scene == nil:
		return nil, errors.Wrap(ErrConfig, "no scene")
	}
	if cfg.QuitKey == event.KeyUnknown {
		cfg.QuitKey = event.KeyEscape
	}
	l := &Loop{cfg: cfg, dirty: true}
	l.custom, _ = cfg.Scene.(CustomDrawer)
	l.anim, _ = cfg.Scene.(Animator)
	l.fStart, _ = cfg.Scene.(FrameStarter)
	return l, nil
}

// State returns the current state of the loop.
func (l *Loop) State() State { return l.state }

// Epoch returns the epoch of the last submitted scene.
func (l *Loop) Epoch() display.Epoch { return l.epoch }

// Frames returns the number of presented frames.
func (l *Loop) Frames() uint64 { return l.frames }

// Run builds and submits the initial scene then processes events until the
// window is closed or the quit key is pressed. The renderer and window are
// released before Run returns.
//
func (l *Loop) Run() {
	l.Start()
	for l.Step(l.cfg.Window.WaitEvent()) {
	}
	frame.Logger().Info("frame loop done", "frames", l.frames, "skipped", l.skipped, "epoch", l.epoch)
}

// Start builds and submits the initial scene. Nothing is composited until the
// first event. It is a no-op after the first call.
//
func (l *Loop) Start() {
	if l.started || l.state == ShuttingDown {
		return
	}
	l.started = true
	c, err := l.cfg.Window.Coordinates()
	if err != nil {
		// the scene stays dirty and is built with the first frame
		frame.Logger().Warn("initial coordinates", "error", err)
		return
	}
	frame.Logger().Info("initial coordinates", "hidpi", c.HiDPI, "framebuffer", c.Framebuffer, "layout", c.Layout)
	l.state = Rebuilding
	l.rebuild(c)
	l.state = Idle
}

// Step processes a single event and returns false once the loop has shut
// down.
//
func (l *Loop) Step(e event.Interface) bool {
	if l.state == ShuttingDown {
		return false
	}
	l.Start()
	if l.state == ShuttingDown {
		return false
	}

	l.state = Dispatching
	if l.quit(e) {
		l.Close()
		return false
	}

	if _, wake := e.(event.Wake); !wake {
		l.state = Deciding
		rebuild := l.cfg.Scene.OnEvent(e)
		animated := l.animate()
		if event.IsMotion(e) && !rebuild && !animated && !l.dirty {
			l.state = Idle
			return true
		}
		l.dirty = l.dirty || rebuild
	}

	l.frame()
	l.state = Idle
	return true
}

func (l *Loop) quit(e event.Interface) bool {
	switch e := e.(type) {
	case event.Close:
		return true
	case event.KeyDown:
		return e.Key == l.cfg.QuitKey
	}
	return false
}

func (l *Loop) animate() bool {
	if l.anim == nil {
		return false
	}
	p, changed := l.anim.Properties()
	if changed {
		l.cfg.Renderer.UpdateProperties(p)
	}
	return changed
}

func (l *Loop) frame() {
	start := time.Now()
	w := l.cfg.Window
	c, err := w.Coordinates()
	if err != nil {
		l.skipped++
		frame.Logger().Warn("frame skipped", "step", "coordinates", "error", err)
		return
	}

	if l.dirty || !c.Layout.Eq(l.layout) || c.HiDPI != l.hidpi {
		l.state = Rebuilding
		l.rebuild(c)
	}

	l.state = Compositing
	if err := w.MakeCurrent(); err != nil {
		l.skipped++
		frame.Logger().Warn("frame skipped", "step", "make current", "error", err)
		return
	}
	if l.fStart != nil {
		l.fStart.FrameStart(start)
	}
	if !c.Empty() {
		if fb := l.cfg.Framebuffer; fb != nil {
			fb.Clear(c)
		}
		if err := l.cfg.Renderer.Render(c.Framebuffer); err != nil {
			frame.Logger().Warn("render", "epoch", l.epoch, "error", err)
		}
	}
	if l.custom != nil {
		l.custom.DrawCustom()
	}

	l.state = Presenting
	if err := w.Present(); err != nil {
		frame.Logger().Warn("present", "error", err)
	}
	l.frames++
	l.ft.Add(time.Since(start))
	if l.frames%samplesPerLog == 0 {
		frame.Logger().Debug("frame stats", "frames", l.frames, "avg", l.ft.Average(), "epoch", l.epoch)
	}
}

const samplesPerLog = 64

func (l *Loop) rebuild(c frame.Coordinates) {
	l.epoch = l.epoch.Next()
	l.dirty = false
	l.layout, l.hidpi = c.Layout, c.HiDPI
	b := l.cfg.Scene.BuildScene(c, l.cfg.Pipeline, l.cfg.Document, l.cfg.Font)
	if b == nil {
		return
	}
	list, err := b.Finalize()
	if err != nil {
		frame.Logger().Error("build scene", "epoch", l.epoch, "error", err)
		return
	}
	frame.Logger().Debug("submit", "epoch", l.epoch, "items", list.Len(), "layout", c.Layout)
	l.cfg.Renderer.Submit(l.epoch, l.cfg.Pipeline, list, c.Layout, c.HiDPI)
}

// Close shuts the loop down: the renderer is deinitialized with the GL context
// current, then the window is destroyed. Close is idempotent and is called by
// Step on a close request or when the quit key is pressed.
//
func (l *Loop) Close() {
	if l.state == ShuttingDown {
		return
	}
	l.state = ShuttingDown
	if err := l.cfg.Window.MakeCurrent(); err != nil {
		frame.Logger().Warn("shutdown", "step", "make current", "error", err)
	}
	l.cfg.Renderer.Deinit()
	l.cfg.Window.Destroy()
	frame.Logger().Info("frame loop shut down", "epoch", l.epoch)
}
