// Package config loads frame application settings from TOML files.
//
// A missing configuration file is not an error: Load then returns Default().
//
//	[window]
//	title = "frame"
//	width = 1344
//	height = 756
//	quit_key = "Escape"
//
//	[renderer]
//	clear_color = "#ffffff"
//	debug = ["bounds", "epoch"]
//
//	[assets]
//	root = "."
//	fonts = "res/fonts"
//
//	[log]
//	level = "info"
//
package config

import (
	"bytes"
	"encoding/hex"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/db47h/frame/app"
	"github.com/db47h/frame/app/event"
	"github.com/db47h/frame/asset"
	"github.com/db47h/frame/render"
	"github.com/db47h/ofs"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Assets   Assets   `toml:"assets"`
	Log      Log      `toml:"log"`
}

type Window struct {
	// Title and size override the scene's when set.
	Title      string `toml:"title"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FullScreen bool   `toml:"fullscreen"`
	Resizable  bool   `toml:"resizable"`
	VSync      bool   `toml:"vsync"`
	QuitKey    string `toml:"quit_key"`
}

type Renderer struct {
	// ClearColor is a hex RGB or RGBA color. It overrides the scene's clear
	// color when set.
	ClearColor string `toml:"clear_color"`
	// Debug lists renderer debugging aids: bounds, timing and epoch.
	Debug []string `toml:"debug"`
}

type Assets struct {
	Root   string `toml:"root"`
	Fonts  string `toml:"fonts"`
	Images string `toml:"images"`
}

type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// Default returns the default configuration.
//
func Default() Config {
	return Config{
		Window: Window{
			Resizable: true,
			VSync:     true,
			QuitKey:   "Escape",
		},
		Assets: Assets{
			Root:   ".",
			Fonts:  "res/fonts",
			Images: "res/images",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration file at path on top of Default() and validates
// the result.
//
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "read %s", path)
	}
	if err = Parse(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, then validates it. Unknown keys are
// rejected.
//
func Parse(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks that all values can be used.
//
func (c *Config) Validate() error {
	if w, h := c.Window.Width, c.Window.Height; w < 0 || h < 0 || (w == 0) != (h == 0) {
		return errors.Wrapf(ErrInvalid, "window size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.Window.Key(); err != nil {
		return err
	}
	if _, err := c.Renderer.Color(); err != nil {
		return err
	}
	if _, err := c.Renderer.DebugFlags(); err != nil {
		return err
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.Wrapf(ErrInvalid, "log format %q", c.Log.Format)
	}
	return nil
}

// Key returns the quit key. An empty name selects Escape.
//
func (w *Window) Key() (event.Key, error) {
	if w.QuitKey == "" {
		return event.KeyEscape, nil
	}
	k, ok := event.ParseKey(w.QuitKey)
	if !ok {
		return event.KeyUnknown, errors.Wrapf(ErrInvalid, "quit key %q", w.QuitKey)
	}
	return k, nil
}

// Color parses the clear color. It returns nil if none is set.
//
func (r *Renderer) Color() (color.Color, error) {
	if r.ClearColor == "" {
		return nil, nil
	}
	c, err := ParseColor(r.ClearColor)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ParseColor parses a color in the form #rrggbb or #rrggbbaa. The leading #
// is optional.
//
func ParseColor(s string) (color.NRGBA, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || (len(b) != 3 && len(b) != 4) {
		return color.NRGBA{}, errors.Wrapf(ErrInvalid, "color %q", s)
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 255}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}

var debugFlags = map[string]render.DebugFlags{
	"bounds": render.ShowBounds,
	"timing": render.LogTiming,
	"epoch":  render.ShowEpoch,
}

func (r *Renderer) DebugFlags() (render.DebugFlags, error) {
	var f render.DebugFlags
	for _, s := range r.Debug {
		v, ok := debugFlags[strings.ToLower(s)]
		if !ok {
			return 0, errors.Wrapf(ErrInvalid, "debug flag %q", s)
		}
		f |= v
	}
	return f, nil
}

func (l *Log) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return lvl, errors.Wrapf(ErrInvalid, "log level %q", l.Level)
	}
	return lvl, nil
}

// Handler returns a slog handler writing to w at the configured level.
//
func (l *Log) Handler(w io.Writer) slog.Handler {
	lvl, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Manager returns an asset manager over the asset directories.
//
func (a *Assets) Manager() (*asset.Manager, error) {
	var ovl ofs.Overlay
	root := a.Root
	if root == "" {
		root = "."
	}
	if err := ovl.Add(false, root); err != nil {
		return nil, errors.Wrapf(err, "asset root %q", root)
	}
	return asset.NewManager(&ovl, asset.FontPath(a.Fonts), asset.ImagePath(a.Images)), nil
}

// Options returns app options for a validated configuration.
//
func (c *Config) Options() ([]app.Option, error) {
	key, err := c.Window.Key()
	if err != nil {
		return nil, err
	}
	dbg, err := c.Renderer.DebugFlags()
	if err != nil {
		return nil, err
	}
	m, err := c.Assets.Manager()
	if err != nil {
		return nil, err
	}
	opts := []app.Option{
		app.Resizable(c.Window.Resizable),
		app.VSync(c.Window.VSync),
		app.QuitKey(key),
		app.Debug(dbg),
		app.Assets(m),
	}
	if c.Window.Width > 0 {
		opts = append(opts, app.Size(c.Window.Width, c.Window.Height))
	}
	if c.Window.Title != "" {
		opts = append(opts, app.Title(c.Window.Title))
	}
	if c.Window.FullScreen {
		opts = append(opts, app.FullScreen())
	}
	cc, err := c.Renderer.Color()
	if err != nil {
		return nil, err
	}
	if cc != nil {
		opts = append(opts, app.ClearColor(cc))
	}
	return opts, nil
}
