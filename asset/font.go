package asset

import (
	"io/ioutil"

	"github.com/db47h/ofs"
	"github.com/golang/freetype/truetype"
	"golang.org/x/xerrors"
)

func loadFont(fs ofs.FileSystem, name string) (interface{}, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, err
	}
	return ttf, nil
}

// Font returns the named font asset, parsed.
//
func (m *Manager) Font(name string) (*truetype.Font, error) {
	m.m.Lock()
	defer m.m.Unlock()
	a, err := m.get(Font(name))
	if err != nil {
		return nil, err
	}
	if f, ok := a.(*truetype.Font); ok {
		return f, nil
	}
	return nil, xerrors.Errorf("asset %s is not a font", name)
}
