package app

import (
	"image"
	"image/color"
	"image/png"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/frame"
	"github.com/db47h/frame/app/event"
	"github.com/db47h/frame/asset"
	"github.com/db47h/frame/display"
	"github.com/db47h/frame/render"
	"github.com/db47h/ofs"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/golang/freetype/truetype"
	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/goregular"
)

type plainScene struct{}

func (plainScene) BuildScene(c frame.Coordinates, p display.PipelineID, _ display.DocumentID, _ display.FontInstanceKey) *display.Builder {
	return display.NewBuilder(p, c.Layout)
}

func (plainScene) OnEvent(event.Interface) bool { return false }

type richScene struct {
	plainScene
	font string
}

func (richScene) Title() string             { return "rich" }
func (richScene) ClearColor() color.Color   { return color.Black }
func (s richScene) Font() (string, float32) { return s.font, 16 }

type fakeFonts struct {
	font *truetype.Font
	size float32
	err  error
}

func (f *fakeFonts) AddFont(font *truetype.Font, size float32) (display.FontInstanceKey, error) {
	f.font, f.size = font, size
	if f.err != nil {
		return 0, f.err
	}
	return 7, nil
}

func emptyAssets(t *testing.T) *asset.Manager {
	var ovl ofs.Overlay
	if err := ovl.Add(false, t.TempDir()); err != nil {
		t.Fatal(err)
	}
	return asset.NewManager(&ovl)
}

func TestNewConfig(t *testing.T) {
	m := emptyAssets(t)
	cfg := newConfig(plainScene{}, Assets(m))
	if cfg.win.title != "frame" || cfg.win.w != 1344 || cfg.win.h != 756 {
		t.Errorf("default window config = %+v", cfg.win)
	}
	if cfg.clear != color.White || cfg.quitKey != event.KeyEscape || cfg.assets != m {
		t.Errorf("default config = %+v", cfg)
	}

	cfg = newConfig(richScene{}, Size(10, 20), Pos(1, 2), Visible(false), Resizable(false), VSync(false),
		Debug(render.ShowBounds), QuitKey(event.KeyQ), Document(3), Assets(m))
	if cfg.win.title != "rich" || cfg.clear != color.Black {
		t.Errorf("scene hooks ignored: %q, %v", cfg.win.title, cfg.clear)
	}
	want := winCfg{hidden: true, fixed: true, noVSync: true, x: 1, y: 2, w: 10, h: 20, title: "rich"}
	if cfg.win != want {
		t.Errorf("window config = %+v, want %+v", cfg.win, want)
	}
	if cfg.debug != render.ShowBounds || cfg.quitKey != event.KeyQ || cfg.document != 3 {
		t.Errorf("config = %+v", cfg)
	}

	// options override scene hooks
	cfg = newConfig(richScene{}, Title("t"), ClearColor(color.Transparent), FullScreen(), Assets(m))
	if cfg.win.title != "t" || cfg.clear != color.Transparent || !cfg.win.fullScreen {
		t.Errorf("options did not override hooks: %+v", cfg)
	}
}

func TestAddFont(t *testing.T) {
	m := emptyAssets(t)

	var f fakeFonts
	if k, err := addFont(&f, plainScene{}, m); k != 0 || err != nil || f.font != nil {
		t.Errorf("no font provider: got %v, %v", k, err)
	}
	k, err := addFont(&f, richScene{}, m)
	if k != 7 || err != nil || f.font == nil || f.size != 16 {
		t.Errorf("built-in font: got %v, %v, size %v", k, err, f.size)
	}
	if _, err = addFont(&f, richScene{font: "missing.ttf"}, m); err == nil {
		t.Error("expected error for missing font")
	}
	f.err = errors.New("bad font")
	if _, err = addFont(&f, richScene{}, m); errors.Cause(err) != f.err {
		t.Errorf("got error %v, want %v", err, f.err)
	}
}

func TestAddFont_asset(t *testing.T) {
	m := testAssets(t)
	var f fakeFonts
	k, err := addFont(&f, richScene{font: "Go-Regular.ttf"}, m)
	if k != 7 || err != nil || f.font == nil {
		t.Fatalf("named font: got %v, %v", k, err)
	}
	// the renderer owns the font now
	if err = m.Discard(asset.Font("Go-Regular.ttf")); err == nil {
		t.Error("font still cached after addFont")
	}
}

type imageScene struct {
	plainScene
	images map[display.ExternalImageID]string
	ext    *countingImages
}

func (s imageScene) Images() map[display.ExternalImageID]string { return s.images }

func (s imageScene) ExternalImageHandler() render.ExternalImageHandler {
	if s.ext == nil {
		return nil
	}
	return s.ext
}

type countingImages struct {
	img      image.Image
	unlocked int
}

func (c *countingImages) Lock(id display.ExternalImageID) (image.Image, error) {
	if id != 9 {
		return nil, errors.Errorf("no image %d", id)
	}
	return c.img, nil
}

func (c *countingImages) Unlock(display.ExternalImageID) { c.unlocked++ }

// testAssets returns a manager over a temporary directory holding
// fonts/Go-Regular.ttf and a 3x2 images/dot.png.
func testAssets(t *testing.T) *asset.Manager {
	dir := t.TempDir()
	for _, d := range []string{"fonts", "images"} {
		if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := ioutil.WriteFile(filepath.Join(dir, "fonts", "Go-Regular.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	dot := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	dot.Set(1, 1, color.NRGBA{R: 255, A: 255})
	w, err := os.Create(filepath.Join(dir, "images", "dot.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err = png.Encode(w, dot); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}
	var ovl ofs.Overlay
	if err := ovl.Add(false, dir); err != nil {
		t.Fatal(err)
	}
	return asset.NewManager(&ovl, asset.FontPath("fonts"), asset.ImagePath("images"))
}

func TestPreload(t *testing.T) {
	m := testAssets(t)
	if err := preload(plainScene{}, m); err != nil {
		t.Errorf("no assets: %v", err)
	}
	s := imageScene{images: map[display.ExternalImageID]string{1: "dot.png"}}
	if err := preload(s, m); err != nil {
		t.Fatalf("preload: %v", err)
	}
	// loaded assets are cached
	if err := m.Discard(asset.Image("dot.png")); err != nil {
		t.Errorf("dot.png not cached: %v", err)
	}
	s.images[2] = "missing.png"
	if err := preload(s, m); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestCloseAssets(t *testing.T) {
	m := testAssets(t)
	if _, err := m.Image("dot.png"); err != nil {
		t.Fatal(err)
	}
	closeAssets(m)
	if err := m.Discard(asset.Image("dot.png")); err == nil {
		t.Error("image still cached after closeAssets")
	}
}

func TestImageHandlerFor(t *testing.T) {
	m := testAssets(t)

	if h, err := imageHandlerFor(plainScene{}, m); h != nil || err != nil {
		t.Errorf("no image hooks: got %v, %v", h, err)
	}
	ext := &countingImages{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}
	if h, err := imageHandlerFor(struct {
		plainScene
		ExternalImageProvider
	}{ExternalImageProvider: imageScene{ext: ext}}, m); h != ext || err != nil {
		t.Errorf("external images only: got %v, %v", h, err)
	}

	h, err := imageHandlerFor(imageScene{images: map[display.ExternalImageID]string{1: "dot.png"}, ext: ext}, m)
	if err != nil {
		t.Fatal(err)
	}
	img, err := h.Lock(1)
	if err != nil {
		t.Fatal(err)
	}
	if sz := img.Bounds().Size(); sz != image.Pt(3, 2) {
		t.Errorf("dot.png size = %v", sz)
	}
	if r, _, _, a := img.At(1, 1).RGBA(); r != 0xffff || a != 0xffff {
		t.Errorf("dot.png pixel = %v", img.At(1, 1))
	}
	h.Unlock(1)
	if ext.unlocked != 0 {
		t.Error("asset image unlock reached the scene handler")
	}
	if img, err = h.Lock(9); err != nil || img != ext.img {
		t.Errorf("delegated Lock(9) = %v, %v", img, err)
	}
	h.Unlock(9)
	if ext.unlocked != 1 {
		t.Errorf("delegated unlocks = %d, want 1", ext.unlocked)
	}
	if _, err = h.Lock(5); err == nil {
		t.Error("expected error for unknown image")
	}

	h, _ = imageHandlerFor(imageScene{images: map[display.ExternalImageID]string{1: "dot.png"}}, m)
	if _, err = h.Lock(5); errors.Cause(err) != ErrUnknownImage {
		t.Errorf("got error %v, want %v", err, ErrUnknownImage)
	}
	if _, err = imageHandlerFor(imageScene{images: map[display.ExternalImageID]string{2: "missing.png"}}, m); err == nil {
		t.Error("expected error for missing image")
	}
}

func TestMapKey(t *testing.T) {
	for _, td := range []struct {
		in   glfw.Key
		want event.Key
	}{
		{glfw.KeyA, event.KeyA},
		{glfw.KeyR, event.KeyR},
		{glfw.KeyZ, event.KeyZ},
		{glfw.Key0, event.Key0},
		{glfw.Key9, event.Key9},
		{glfw.KeyF1, event.KeyF1},
		{glfw.KeyF12, event.KeyF12},
		{glfw.KeyUp, event.KeyArrowUp},
		{glfw.KeyLeft, event.KeyArrowLeft},
		{glfw.KeyEscape, event.KeyEscape},
		{glfw.KeyKPEnter, event.KeyEnter},
		{glfw.KeyF13, event.KeyUnknown},
		{glfw.KeyUnknown, event.KeyUnknown},
	} {
		if got := mapKey(td.in); got != td.want {
			t.Errorf("mapKey(%d) = %v, want %v", td.in, got, td.want)
		}
	}
}

func TestMapMods(t *testing.T) {
	if got := mapMods(glfw.ModShift | glfw.ModSuper); got != event.ModShift|event.ModSuper {
		t.Errorf("mapMods() = %v", got)
	}
	if got := mapMods(glfw.ModControl | glfw.ModAlt); got != event.ModCtrl|event.ModAlt {
		t.Errorf("mapMods() = %v", got)
	}
}

func TestWindow_WaitEvent(t *testing.T) {
	// no GLFW window: only queued events and wake ups are exercised.
	w := &window{}
	w.post(event.KeyDown{Key: event.KeyA})
	w.post(event.Close{})
	w.woken.Store(true)
	if e := w.WaitEvent(); e != (event.KeyDown{Key: event.KeyA}) {
		t.Errorf("got %#v, want KeyDown", e)
	}
	if e := w.WaitEvent(); e != (event.Close{}) {
		t.Errorf("got %#v, want Close", e)
	}
	if e := w.WaitEvent(); e != (event.Wake{}) {
		t.Errorf("got %#v, want Wake", e)
	}
	// destroyed window
	if e := w.WaitEvent(); e != (event.Close{}) {
		t.Errorf("got %#v, want Close", e)
	}
	if _, err := w.Coordinates(); err != errNoWindow {
		t.Errorf("Coordinates() error = %v", err)
	}
	if err := w.MakeCurrent(); err != errNoWindow {
		t.Errorf("MakeCurrent() error = %v", err)
	}
}
