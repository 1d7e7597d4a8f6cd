package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashkeep/pyre/internal/engine/texture"
)

// DirGraph resolves package names to directories searched under a list of
// asset roots. The first root containing the package wins. Image files
// decode to textures; anything else is handed over as raw bytes for the
// renderer to sample directly.
type DirGraph struct {
	Roots []string
}

// List returns one entry per regular file in the package directory.
func (g DirGraph) List(pkg string) ([]Entry, error) {
	for _, root := range g.Roots {
		dir := filepath.Join(root, pkg)
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		entries := make([]Entry, 0, len(files))
		for _, f := range files {
			if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
				continue
			}
			entries = append(entries, Entry{
				Name: strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())),
				Path: filepath.Join(dir, f.Name()),
				Kind: kindForFile(f.Name()),
			})
		}
		return entries, nil
	}
	return nil, fmt.Errorf("package %q not found under any asset root", pkg)
}

// Decode loads one file into its resource form.
func (g DirGraph) Decode(path string, kind Kind) (Resource, error) {
	switch kind {
	case KindTexture:
		img, err := texture.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		return &Texture{Path: path, Image: img}, nil
	case KindRaw:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return &Raw{Path: path, Data: data}, nil
	default:
		return nil, fmt.Errorf("kind %d has no file decoder", kind)
	}
}

func kindForFile(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tga", ".png", ".jpg", ".jpeg", ".bmp":
		return KindTexture
	default:
		return KindRaw
	}
}
