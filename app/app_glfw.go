package app

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/db47h/frame"
	"github.com/db47h/frame/app/event"
	"github.com/db47h/frame/compositor"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/pkg/errors"
)

var errNoWindow = errors.New("window destroyed")

// DriverVersion returns the GLFW and OpenGL versions in use.
//
func DriverVersion() string {
	return fmt.Sprintf("GLFW %s - OpenGL %s", glfw.GetVersionString(), compositor.Version())
}

var drv driver = new(glfwDriver)

type glfwDriver struct {
	w *window
}

func (d *glfwDriver) init(cfg *winCfg) error {
	if err := glfw.Init(); err != nil {
		return err
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if cfg.fixed {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	}

	if err := d.createWindow(cfg); err != nil {
		glfw.Terminate()
		return err
	}
	return nil
}

func (d *glfwDriver) terminate() {
	glfw.Terminate()
}

func (d *glfwDriver) window() Window {
	return d.w
}

func (d *glfwDriver) createWindow(cfg *winCfg) error {
	var (
		monitor *glfw.Monitor
		width   = cfg.w
		height  = cfg.h
	)
	if cfg.fullScreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()
		glfw.WindowHint(glfw.RedBits, mode.RedBits)
		glfw.WindowHint(glfw.GreenBits, mode.GreenBits)
		glfw.WindowHint(glfw.BlueBits, mode.BlueBits)
		glfw.WindowHint(glfw.RefreshRate, mode.RefreshRate)
		width = mode.Width
		height = mode.Height
	}
	if cfg.hidden || (!cfg.fullScreen && cfg.x >= 0 && cfg.y >= 0) {
		glfw.WindowHint(glfw.Visible, glfw.False)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.True)
	}
	w, err := glfw.CreateWindow(width, height, cfg.title, monitor, nil)
	if err != nil {
		return err
	}
	if !cfg.fullScreen && cfg.x >= 0 && cfg.y >= 0 {
		w.SetPos(cfg.x, cfg.y)
		if !cfg.hidden {
			w.Show()
		}
	}

	w.MakeContextCurrent()
	if err := compositor.Init(); err != nil {
		w.Destroy()
		return err
	}
	if cfg.noVSync {
		glfw.SwapInterval(0)
	} else {
		glfw.SwapInterval(1)
	}

	d.w = &window{glfw: w, hidpi: 1}
	d.w.setCallbacks()
	return nil
}

// window is a GLFW window. Events are queued by GLFW callbacks during
// glfw.WaitEvents and handed out one at a time by WaitEvent.
//
type window struct {
	glfw   *glfw.Window
	events []event.Interface
	woken  atomic.Bool
	hidpi  float32 // last known, kept while minimized
}

func (w *window) setCallbacks() {
	gw := w.glfw
	gw.SetCloseCallback(func(*glfw.Window) {
		w.post(event.Close{})
	})
	gw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		k, m := mapKey(key), mapMods(mods)
		switch action {
		case glfw.Press:
			w.post(event.KeyDown{Key: k, Mods: m})
		case glfw.Repeat:
			w.post(event.KeyDown{Key: k, Mods: m, Repeat: true})
		case glfw.Release:
			w.post(event.KeyUp{Key: k, Mods: m})
		}
	})
	gw.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.post(event.PointerMove{X: float32(x), Y: float32(y)})
	})
	gw.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		w.post(event.AxisMotion{DX: float32(dx), DY: float32(dy)})
	})
	gw.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		w.post(event.Other{Native: MouseButton{Button: int(b), Pressed: action == glfw.Press, Mods: mapMods(mods)}})
	})
	gw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.post(event.FrameBufferSize{Width: width, Height: height})
	})
}

// MouseButton is the native payload of event.Other for mouse buttons.
//
type MouseButton struct {
	Button  int
	Pressed bool
	Mods    event.Mods
}

func (w *window) post(e event.Interface) {
	w.events = append(w.events, e)
}

// WaitEvent blocks until the next event. Wake events are coalesced and only
// returned once all queued window events have been handed out.
//
func (w *window) WaitEvent() event.Interface {
	for len(w.events) == 0 {
		if w.woken.Swap(false) {
			return event.Wake{}
		}
		if w.glfw == nil {
			return event.Close{}
		}
		glfw.WaitEvents()
	}
	e := w.events[0]
	w.events[0] = nil
	w.events = w.events[1:]
	return e
}

// WakeUp interrupts WaitEvent. It is safe for concurrent use.
//
func (w *window) WakeUp() {
	if !w.woken.Swap(true) {
		glfw.PostEmptyEvent()
	}
}

func (w *window) metrics() frame.Metrics {
	gw := w.glfw
	ww, wh := gw.GetSize()
	fw, _ := gw.GetFramebufferSize()
	if ww > 0 && fw > 0 {
		w.hidpi = float32(fw) / float32(ww)
	}
	l, t, r, b := gw.GetFrameSize()
	x, y := gw.GetPos()
	m := frame.Metrics{
		HiDPI:    w.hidpi,
		Outer:    image.Pt(ww+l+r, wh+t+b),
		Position: image.Pt(x-l, y-t),
		Inner:    image.Pt(ww, wh),
	}
	if mon := glfw.GetPrimaryMonitor(); mon != nil {
		if mode := mon.GetVideoMode(); mode != nil {
			m.Screen = image.Pt(mode.Width, mode.Height)
		}
	}
	return m
}

func (w *window) Coordinates() (frame.Coordinates, error) {
	if w.glfw == nil {
		return frame.Coordinates{}, errNoWindow
	}
	return frame.Resolve(w.metrics())
}

func (w *window) MakeCurrent() error {
	if w.glfw == nil {
		return errNoWindow
	}
	w.glfw.MakeContextCurrent()
	if glfw.GetCurrentContext() != w.glfw {
		return errors.New("make context current failed")
	}
	return nil
}

func (w *window) Present() error {
	if w.glfw == nil {
		return errNoWindow
	}
	w.glfw.SwapBuffers()
	return nil
}

func (w *window) Destroy() {
	if w.glfw == nil {
		return
	}
	w.glfw.Destroy()
	w.glfw = nil
	w.events = nil
}

func mapMods(m glfw.ModifierKey) event.Mods {
	var mods event.Mods
	if m&glfw.ModShift != 0 {
		mods |= event.ModShift
	}
	if m&glfw.ModControl != 0 {
		mods |= event.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		mods |= event.ModAlt
	}
	if m&glfw.ModSuper != 0 {
		mods |= event.ModSuper
	}
	return mods
}

var glfwKeys = map[glfw.Key]event.Key{
	glfw.KeyUp:        event.KeyArrowUp,
	glfw.KeyDown:      event.KeyArrowDown,
	glfw.KeyLeft:      event.KeyArrowLeft,
	glfw.KeyRight:     event.KeyArrowRight,
	glfw.KeyHome:      event.KeyHome,
	glfw.KeyEnd:       event.KeyEnd,
	glfw.KeyPageUp:    event.KeyPageUp,
	glfw.KeyPageDown:  event.KeyPageDown,
	glfw.KeyBackspace: event.KeyBackspace,
	glfw.KeyDelete:    event.KeyDelete,
	glfw.KeyInsert:    event.KeyInsert,
	glfw.KeyEnter:     event.KeyEnter,
	glfw.KeyKPEnter:   event.KeyEnter,
	glfw.KeyTab:       event.KeyTab,
	glfw.KeyEscape:    event.KeyEscape,
	glfw.KeySpace:     event.KeySpace,
	glfw.KeyMinus:     event.KeyMinus,
	glfw.KeyEqual:     event.KeyEqual,
	glfw.KeyComma:     event.KeyComma,
	glfw.KeyPeriod:    event.KeyPeriod,
	glfw.KeySlash:     event.KeySlash,
}

func mapKey(k glfw.Key) event.Key {
	switch {
	case k >= glfw.KeyA && k <= glfw.KeyZ:
		return event.KeyA + event.Key(k-glfw.KeyA)
	case k >= glfw.Key0 && k <= glfw.Key9:
		return event.Key0 + event.Key(k-glfw.Key0)
	case k >= glfw.KeyF1 && k <= glfw.KeyF12:
		return event.KeyF1 + event.Key(k-glfw.KeyF1)
	}
	return glfwKeys[k]
}
