// Package asset loads and caches fonts and images from an ofs.FileSystem.
//
package asset

import (
	"path"
	"strings"
)

// Type designates the type of an asset.
//
type Type int

const (
	TypeFont Type = iota
	TypeImage
	typeLast
)

// Asset uniquely describes an asset.
//
type Asset struct {
	Type
	Name string
}

func (a Asset) String() string {
	switch a.Type {
	case TypeFont:
		return "font asset " + a.Name
	case TypeImage:
		return "image asset " + a.Name
	}
	return "unknown asset " + a.Name
}

func Font(name string) Asset  { return Asset{TypeFont, name} }
func Image(name string) Asset { return Asset{TypeImage, name} }

// Result wraps the result from preloading an asset.
//
type Result struct {
	Asset
	Err error
}

type config struct {
	imagePath string
	fontPath  string
}

func (c *config) assetPath(a Asset) string {
	switch a.Type {
	case TypeFont:
		return path.Join(c.fontPath, a.Name)
	case TypeImage:
		return path.Join(c.imagePath, a.Name)
	}
	return a.Name
}

// Option is implemented by option functions passed as arguments to NewManager.
//
type Option interface {
	set(*config)
}

type cfn func(*config)

func (f cfn) set(cfg *config) {
	f(cfg)
}

// FontPath returns an Option that sets the default font path.
//
func FontPath(name string) Option {
	return cfn(func(cfg *config) {
		cfg.fontPath = name
	})
}

// ImagePath returns an Option that sets the default image path.
//
func ImagePath(name string) Option {
	return cfn(func(cfg *config) {
		cfg.imagePath = name
	})
}

type closer interface {
	Close() error
}

type errorList []error

func (e errorList) Error() string {
	var sb strings.Builder
	for i, err := range e {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}
