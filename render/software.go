package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"
	"time"

	"github.com/db47h/frame"
	"github.com/db47h/frame/debug"
	"github.com/db47h/frame/display"
	"github.com/db47h/frame/text"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DebugFlags enable renderer debugging aids.
//
type DebugFlags uint32

const (
	// ShowBounds outlines the device bounds of every drawn item.
	ShowBounds DebugFlags = 1 << iota
	// LogTiming logs rasterization times at debug level.
	LogTiming
	// ShowEpoch draws the epoch of every frame in its top-left corner.
	ShowEpoch
)

// Options configure a Software renderer.
//
type Options struct {
	// DevicePixelRatio is the number of device pixels per layout pixel used
	// until a submission brings another ratio.
	DevicePixelRatio float32
	// ClearColor is the background of every frame. Nil means transparent.
	ClearColor color.Color
	Debug      DebugFlags
}

// Frame is a rasterized display list.
//
type Frame struct {
	Pipeline         display.PipelineID
	Epoch            display.Epoch
	DevicePixelRatio float32
	Image            *image.RGBA

	gen uint64
}

type scene struct {
	epoch    display.Epoch
	pipeline display.PipelineID
	list     *display.List
	layout   frame.Point
	dpr      float32
}

// fontInstance is a registered font. Faces of TrueType fonts are recreated
// whenever the device pixel ratio changes; faces added with AddFace are used
// as is.
//
type fontInstance struct {
	f    *truetype.Font
	size float32
	dpr  float32
	d    *text.Drawer
}

// Software rasterizes display lists on a background goroutine with
// golang.org/x/image.
//
// Only the newest submission is ever rasterized: a submission replaced before
// the rasterizer picked it up is dropped.
//
type Software struct {
	opts     Options
	target   Target
	notifier Notifier

	mu      sync.Mutex
	fonts   map[display.FontInstanceKey]*fontInstance
	nextKey display.FontInstanceKey
	ext     ExternalImageHandler
	out     OutputImageHandler
	scene   *scene
	props   display.Properties
	queued  bool // scene not yet picked up by the rasterizer
	dirty   bool // scene or properties changed since the last rasterization
	gen     uint64
	last    *Frame
	stats   Stats
	closed  bool

	dbg debug.Debug // only used by the rasterizer goroutine

	kick chan struct{}
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewSoftware returns a new Software renderer drawing to target. target may be
// nil, in which case frames only reach the output image handler. n is
// signaled whenever a new frame is ready.
//
func NewSoftware(opts Options, target Target, n Notifier) (*Software, error) {
	k := opts.DevicePixelRatio
	if !(k > 0) || math.IsInf(float64(k), 0) {
		return nil, errors.Wrapf(ErrInvalidOptions, "device pixel ratio %v", k)
	}
	if opts.ClearColor == nil {
		opts.ClearColor = color.Transparent
	}
	if n == nil {
		n = NotifierFunc(func() {})
	}
	s := &Software{
		opts:     opts,
		target:   target,
		notifier: n,
		fonts:    make(map[display.FontInstanceKey]*fontInstance),
		kick:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	if opts.Debug&ShowEpoch != 0 {
		s.dbg.TD = text.NewDrawer(basicfont.Face7x13)
	}
	s.wg.Add(1)
	go s.run()
	frame.Logger().Info("software renderer ready", "dpr", k, "debug", opts.Debug)
	return s, nil
}

// DevicePixelRatio returns the initial device pixel ratio.
//
func (s *Software) DevicePixelRatio() float32 { return s.opts.DevicePixelRatio }

// AddFontInstance parses a TrueType font and registers it at the given size in
// layout pixels.
//
func (s *Software) AddFontInstance(ttf []byte, size float32) (display.FontInstanceKey, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return 0, errors.Wrap(err, "add font instance")
	}
	return s.AddFont(f, size)
}

// AddFont registers f at the given size in layout pixels. Glyphs are
// rasterized at the device pixel ratio of each frame.
//
func (s *Software) AddFont(f *truetype.Font, size float32) (display.FontInstanceKey, error) {
	if !(size > 0) {
		return 0, errors.Errorf("add font instance: invalid size %v", size)
	}
	k := s.opts.DevicePixelRatio
	return s.addFont(&fontInstance{f: f, size: size, dpr: k, d: text.NewDrawer(scaledFace(f, size, k))})
}

// AddFace registers a font face. The face is used at its own size whatever
// the device pixel ratio. The renderer owns the face from then on and closes
// it on Deinit.
//
func (s *Software) AddFace(face font.Face) (display.FontInstanceKey, error) {
	return s.addFont(&fontInstance{d: text.NewDrawer(face)})
}

func (s *Software) addFont(fi *fontInstance) (display.FontInstanceKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrDeinit
	}
	s.nextKey++
	s.fonts[s.nextKey] = fi
	return s.nextKey, nil
}

func scaledFace(f *truetype.Font, size, dpr float32) font.Face {
	return text.NewFace(f, float64(size*dpr), 72, text.HintingFull)
}

// font returns the drawer of font instance k for the given device pixel
// ratio. It is only called by the rasterizer goroutine.
//
func (s *Software) font(k display.FontInstanceKey, dpr float32) *text.Drawer {
	s.mu.Lock()
	defer s.mu.Unlock()
	fi := s.fonts[k]
	if fi == nil {
		return nil
	}
	if fi.f != nil && fi.dpr != dpr {
		if err := fi.d.Close(); err != nil {
			frame.Logger().Warn("close font instance", "key", k, "error", err)
		}
		fi.d = text.NewDrawer(scaledFace(fi.f, fi.size, dpr))
		fi.dpr = dpr
	}
	return fi.d
}

func (s *Software) SetExternalImageHandler(h ExternalImageHandler) {
	s.mu.Lock()
	s.ext = h
	s.mu.Unlock()
}

func (s *Software) SetOutputImageHandler(h OutputImageHandler) {
	s.mu.Lock()
	s.out = h
	s.mu.Unlock()
}

// Submit queues l for rasterization at the given device pixel ratio. A ratio
// that is not a finite number > 0 selects Options.DevicePixelRatio.
// Submissions with an epoch not greater than the previous one are stale and
// ignored.
//
func (s *Software) Submit(epoch display.Epoch, pipeline display.PipelineID, l *display.List, layout frame.Point, dpr float32) {
	if !(dpr > 0) || math.IsInf(float64(dpr), 0) {
		dpr = s.opts.DevicePixelRatio
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.scene != nil && epoch <= s.scene.epoch {
		cur := s.scene.epoch
		s.stats.Dropped++
		s.mu.Unlock()
		frame.Logger().Warn("stale display list", "epoch", epoch, "current", cur)
		return
	}
	if s.queued {
		s.stats.Dropped++
	}
	s.scene = &scene{epoch: epoch, pipeline: pipeline, list: l, layout: layout, dpr: dpr}
	s.queued = true
	s.dirty = true
	s.stats.Submitted++
	s.mu.Unlock()
	s.signal()
}

// UpdateProperties merges p into the current animated property values and
// rasterizes the current display list again.
//
func (s *Software) UpdateProperties(p display.Properties) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.props.Merge(p)
	s.dirty = true
	s.mu.Unlock()
	s.signal()
}

func (s *Software) signal() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Render hands the most recent frame over to the output image handler and the
// target. It does nothing if no frame is ready yet or if fb has a zero area.
//
func (s *Software) Render(fb image.Point) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrDeinit
	}
	f, out, target := s.last, s.out, s.target
	s.mu.Unlock()

	if f == nil || fb.X <= 0 || fb.Y <= 0 {
		return nil
	}
	if out != nil {
		out.Output(f.Pipeline, f.Epoch, f.Image)
	}
	if target != nil {
		if err := target.Draw(f.Image); err != nil {
			return errors.Wrapf(err, "render epoch %d", f.Epoch)
		}
	}
	s.mu.Lock()
	s.stats.Rendered++
	s.mu.Unlock()
	return nil
}

// Frame returns the most recent frame, or nil.
//
func (s *Software) Frame() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Stats returns a snapshot of the renderer counters.
//
func (s *Software) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Deinit stops the rasterizer and releases font instances. It can be called
// more than once.
//
func (s *Software) Deinit() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, fi := range s.fonts {
			if err := fi.d.Close(); err != nil {
				frame.Logger().Warn("close font instance", "key", k, "error", err)
			}
		}
		s.fonts = nil
		if s.dbg.TD != nil {
			s.dbg.TD.Close()
		}
		s.closed = true
		s.last = nil
		frame.Logger().Info("software renderer deinitialized",
			"submitted", s.stats.Submitted, "rasterized", s.stats.Rasterized, "dropped", s.stats.Dropped)
	})
}

func (s *Software) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case <-s.kick:
		}

		s.mu.Lock()
		if !s.dirty || s.scene == nil {
			s.mu.Unlock()
			continue
		}
		sc, props, ext := s.scene, s.props.Clone(), s.ext
		s.dirty, s.queued = false, false
		s.gen++
		gen := s.gen
		s.mu.Unlock()

		t := time.Now()
		img := s.rasterize(sc, &props, ext)
		if s.opts.Debug&LogTiming != 0 {
			frame.Logger().Debug("rasterized", "epoch", sc.epoch, "items", sc.list.Len(), "time", time.Since(t))
		}

		s.mu.Lock()
		if s.last == nil || sc.epoch > s.last.Epoch || (sc.epoch == s.last.Epoch && gen > s.last.gen) {
			s.last = &Frame{Pipeline: sc.pipeline, Epoch: sc.epoch, DevicePixelRatio: sc.dpr, Image: img, gen: gen}
			s.stats.Rasterized++
		} else {
			s.stats.Dropped++
		}
		s.mu.Unlock()
		s.notifier.WakeUp()
	}
}

// deviceSize converts a layout size back to device pixels. Layout sizes are
// computed from device sizes, so round rather than truncate.
//
func deviceSize(layout frame.Point, k float32) image.Point {
	return image.Pt(int(math.Round(float64(layout.X*k))), int(math.Round(float64(layout.Y*k))))
}

func (s *Software) rasterize(sc *scene, props *display.Properties, ext ExternalImageHandler) *image.RGBA {
	k := sc.dpr
	img := image.NewRGBA(image.Rectangle{Max: deviceSize(sc.layout, k)})
	draw.Draw(img, img.Bounds(), image.NewUniform(s.opts.ClearColor), image.Point{}, draw.Src)
	r := rasterizer{
		dst:   img,
		props: props,
		fonts: func(f display.FontInstanceKey) *text.Drawer { return s.font(f, k) },
		ext:   ext,
		debug: s.opts.Debug,
	}
	r.draw(sc.list, k)
	if s.dbg.TD != nil {
		s.dbg.InfoBox(img, debug.TopLeft, fmt.Sprintf("epoch %d", sc.epoch))
	}
	return img
}
