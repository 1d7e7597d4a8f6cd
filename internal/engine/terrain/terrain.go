// Package terrain synthesizes terrain meshes from height and blend data and
// caches them by descriptor identity with per-frame mark/sweep eviction.
package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/pkg/geom"
)

// MaxLayers is the fixed maximum number of per-vertex blend layers the
// terrain shader accepts. Extra layers are truncated with a one-time warning.
const MaxLayers = 4

// Descriptor identifies one terrain geometry by value. Two terrain instances
// with equal descriptors share one cached mesh.
type Descriptor struct {
	Bounds   geom.AABB
	Material assets.Tag
	// TilesX and TilesZ control texture coordinate repetition.
	TilesX float32
	TilesZ float32
	// HeightRef names the height source; empty for procedural heights.
	HeightRef string
	// Segments is the grid resolution per side.
	Segments int
}

// Vertex is the terrain vertex stream layout.
type Vertex struct {
	Position mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Mesh is a built terrain geometry: vertex stream plus per-vertex normals,
// blend weights and tint, and the fixed quad-per-cell index stream.
type Mesh struct {
	Vertices []Vertex
	Normals  []mgl32.Vec3
	Blends   [][MaxLayers]float32
	Tints    []mgl32.Vec4
	Indices  []uint32
	Bounds   geom.AABB

	// GL state, 0 until uploaded.
	VAO uint32
	VBO uint32
	EBO uint32
}

// VertexCount returns the number of vertices a descriptor's grid produces.
func (d Descriptor) VertexCount() int {
	side := d.Segments + 1
	return side * side
}
