package config

import (
	"bytes"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/frame/app/event"
	"github.com/db47h/frame/render"
	"github.com/pkg/errors"
)

func TestLoad_missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Window != def.Window || cfg.Assets != def.Assets || cfg.Log != def.Log {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	if err = def.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.toml")
	data := `
[window]
title = "demo"
width = 640
height = 480
quit_key = "Q"

[renderer]
clear_color = "#33000080"
debug = ["bounds", "Epoch"]

[log]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Window.Title != "demo" || cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("window = %+v", cfg.Window)
	}
	// untouched keys keep their default
	if !cfg.Window.VSync || cfg.Assets.Fonts != "res/fonts" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if k, _ := cfg.Window.Key(); k != event.KeyQ {
		t.Errorf("quit key = %v", k)
	}
	if c, _ := cfg.Renderer.Color(); c != (color.NRGBA{R: 0x33, A: 0x80}) {
		t.Errorf("clear color = %v", c)
	}
	if f, _ := cfg.Renderer.DebugFlags(); f != render.ShowBounds|render.ShowEpoch {
		t.Errorf("debug flags = %v", f)
	}
	if l, _ := cfg.Log.SlogLevel(); l != slog.LevelDebug {
		t.Errorf("log level = %v", l)
	}
	opts, err := cfg.Options()
	if err != nil || len(opts) != 8 {
		t.Errorf("Options() = %d options, %v", len(opts), err)
	}
}

func TestParse_errors(t *testing.T) {
	for _, td := range []struct {
		name, data string
	}{
		{"size", "[window]\nwidth = 10"},
		{"negative size", "[window]\nwidth = -1\nheight = -1"},
		{"key", "[window]\nquit_key = \"Meta\""},
		{"color", "[renderer]\nclear_color = \"#12\""},
		{"debug", "[renderer]\ndebug = [\"wireframe\"]"},
		{"level", "[log]\nlevel = \"loud\""},
		{"format", "[log]\nformat = \"xml\""},
	} {
		t.Run(td.name, func(t *testing.T) {
			cfg := Default()
			if err := Parse([]byte(td.data), &cfg); errors.Cause(err) != ErrInvalid {
				t.Errorf("Parse() error = %v, want %v", err, ErrInvalid)
			}
		})
	}

	cfg := Default()
	if err := Parse([]byte("[window]\nbogus = 1"), &cfg); err == nil {
		t.Error("unknown keys must be rejected")
	}
	if err := Parse([]byte("[window"), &cfg); err == nil {
		t.Error("expected syntax error")
	}
}

func TestParseColor(t *testing.T) {
	for _, td := range []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#ffffff", color.NRGBA{255, 255, 255, 255}, true},
		{"4d0000", color.NRGBA{0x4d, 0, 0, 255}, true},
		{"#00ff0080", color.NRGBA{0, 255, 0, 0x80}, true},
		{"#fff", color.NRGBA{}, false},
		{"#gg0000", color.NRGBA{}, false},
	} {
		got, err := ParseColor(td.in)
		if (err == nil) != td.ok || got != td.want {
			t.Errorf("ParseColor(%q) = %v, %v", td.in, got, err)
		}
	}
}

func TestLog_Handler(t *testing.T) {
	var buf bytes.Buffer
	l := Log{Level: "warn", Format: "json"}
	log := slog.New(l.Handler(&buf))
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("unexpected output %q", out)
	}
}
