// Package assets memoizes decoded resources by file path, grouped into named
// packages. Staleness is detected through file modification times; decode
// itself is delegated to a Graph collaborator so the cache stays independent
// of any particular container or model format.
package assets

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/pkg/geom"
)

// Kind identifies what a graph entry decodes into.
type Kind uint8

const (
	KindTexture Kind = iota
	KindCubeMap
	KindModel
	KindRaw
)

// Tag addresses one asset inside a package.
type Tag struct {
	Package string
	Name    string
}

// Resource is a decoded asset. The concrete types are *Texture, *CubeMap,
// *Model and *Raw.
type Resource interface {
	resource()
}

// Texture is a decoded 2D image plus its lazily created GL object.
type Texture struct {
	Path  string
	Image *image.RGBA
	GL    uint32 // 0 until uploaded
}

// CubeMap is a six-face capture or sky box source. Faces are ordered
// +X, -X, +Y, -Y, +Z, -Z.
type CubeMap struct {
	Path  string
	Faces [6]*image.RGBA
	GL    uint32
}

// ModelVertex is the interleaved vertex layout shared by all decoded models.
type ModelVertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Model is decoded static or animated geometry.
type Model struct {
	Path     string
	Vertices []ModelVertex
	Indices  []uint32
	Bounds   geom.AABB
	Animated bool

	// GL state, 0 until uploaded.
	VAO uint32
	VBO uint32
	EBO uint32
}

// Raw is an undecoded byte payload (height maps, blend tables, and anything
// else the renderer samples directly).
type Raw struct {
	Path string
	Data []byte
}

func (*Texture) resource() {}
func (*CubeMap) resource() {}
func (*Model) resource()   {}
func (*Raw) resource()     {}

// Entry describes one asset a package wants decoded.
type Entry struct {
	Name string
	Path string
	Kind Kind
}

// Graph resolves package names to asset lists and decodes individual files.
// Implementations may decode in parallel during List-driven bulk loads; the
// cache waits on each Decode call synchronously.
type Graph interface {
	List(pkg string) ([]Entry, error)
	Decode(path string, kind Kind) (Resource, error)
}
