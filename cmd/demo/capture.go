package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/db47h/frame"
	"github.com/db47h/frame/display"
	"github.com/pkg/errors"
)

// capture is a render.OutputImageHandler writing the first frame of every
// epoch to a PNG file.
//
type capture struct {
	dir  string
	last display.Epoch
}

func newCapture(dir string) (*capture, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "capture directory")
	}
	return &capture{dir: dir}, nil
}

func (c *capture) path(p display.PipelineID, e display.Epoch) string {
	return filepath.Join(c.dir, fmt.Sprintf("%d-%d-%06d.png", p.Namespace, p.Handle, e))
}

func (c *capture) Output(p display.PipelineID, e display.Epoch, img *image.RGBA) {
	if e <= c.last {
		return
	}
	c.last = e
	name := c.path(p, e)
	if err := writePNG(name, img); err != nil {
		frame.Logger().Warn("capture", "file", name, "error", err)
		return
	}
	frame.Logger().Debug("capture", "file", name)
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err = png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
