package asset

import (
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"

	"github.com/db47h/ofs"
	"golang.org/x/xerrors"
)

type img struct {
	image.Image
}

func loadImage(fs ofs.FileSystem, name string) (interface{}, error) {
	r, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return img{src}, nil
}

// Image returns the named image asset, decoded. PNG and JPEG are supported.
//
func (m *Manager) Image(name string) (image.Image, error) {
	m.m.Lock()
	defer m.m.Unlock()
	a, err := m.get(Image(name))
	if err != nil {
		return nil, err
	}
	if i, ok := a.(img); ok {
		return i.Image, nil
	}
	return nil, xerrors.Errorf("asset %s is not an image", name)
}
