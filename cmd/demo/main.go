// Command demo runs one of the example scenes.
//
//	demo -scene animation -config frame.toml
//
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/db47h/frame"
	"github.com/db47h/frame/app"
	"github.com/db47h/frame/config"
	"github.com/db47h/frame/examples/animation"
	"github.com/db47h/frame/examples/basic"
	"github.com/db47h/frame/examples/gallery"
	"github.com/db47h/frame/examples/yuv"
	"github.com/pkg/errors"
)

var scenes = map[string]func(font string) app.Scene{
	"basic":     func(font string) app.Scene { return basic.New(font) },
	"animation": func(string) app.Scene { return animation.New() },
	"gallery":   func(string) app.Scene { return gallery.New("checker.png", frame.Pt(128, 128)) },
	"yuv":       func(string) app.Scene { return yuv.New() },
}

func sceneNames() []string {
	var names []string
	for k := range scenes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func main() {
	var (
		scene   = flag.String("scene", "basic", fmt.Sprintf("scene to run, one of %v", sceneNames()))
		cfgPath = flag.String("config", "frame.toml", "configuration file")
		font    = flag.String("font", "", "font asset used by the basic scene (default: built-in)")
		capture = flag.String("capture", "", "write every new epoch as a PNG file into this directory")
	)
	flag.Parse()

	if err := run(*scene, *cfgPath, *font, *capture); err != nil {
		frame.Logger().Error("demo", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(name, cfgPath, font, capture string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	frame.SetLogger(slog.New(cfg.Log.Handler(os.Stderr)))

	newScene, ok := scenes[name]
	if !ok {
		return errors.Errorf("unknown scene %q, want one of %v", name, sceneNames())
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if capture != "" {
		c, err := newCapture(capture)
		if err != nil {
			return err
		}
		opts = append(opts, app.Output(c))
	}
	return app.Main(newScene(font), opts...)
}
