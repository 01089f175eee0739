package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/db47h/frame/display"
	"github.com/pkg/errors"
)

func TestCapture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	c, err := newCapture(dir)
	if err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 2, color.RGBA{G: 255, A: 255})
	p := display.PipelineID{Handle: 1}

	c.Output(p, 1, img)
	c.Output(p, 1, image.NewRGBA(image.Rect(0, 0, 1, 1))) // same epoch, skipped
	c.Output(p, 2, img)

	files, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil || len(files) != 2 {
		t.Fatalf("got files %v, %v", files, err)
	}
	f, err := os.Open(c.path(p, 1))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if _, g, _, _ := got.At(1, 2).RGBA(); g != 0xffff {
		t.Errorf("pixel (1,2) = %v", got.At(1, 2))
	}
}

func TestSceneNames(t *testing.T) {
	names := sceneNames()
	if len(names) != 4 || names[0] != "animation" || names[2] != "gallery" || names[3] != "yuv" {
		t.Errorf("sceneNames() = %v", names)
	}
	for _, n := range names {
		if scenes[n]("") == nil {
			t.Errorf("scene %s is nil", n)
		}
	}
}

func TestRun_unknownScene(t *testing.T) {
	err := run("nope", filepath.Join(t.TempDir(), "none.toml"), "", "")
	if err == nil || !strings.Contains(err.Error(), `unknown scene "nope"`) {
		t.Fatalf("run() = %v", err)
	}
	if _, ok := err.(interface{ StackTrace() errors.StackTrace }); !ok {
		t.Errorf("error %v carries no stack trace", err)
	}
}
