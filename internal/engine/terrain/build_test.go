package terrain

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/pkg/geom"
)

func flatDescriptor(segments int) Descriptor {
	return Descriptor{
		Bounds: geom.AABB{
			Min: mgl32.Vec3{0, 0, 0},
			Max: mgl32.Vec3{10, 0, 10},
		},
		TilesX:   2,
		TilesZ:   2,
		Segments: segments,
	}
}

func solidImage(w, h int, r, g, b, a uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}
	return img
}

func TestBuildGridShape(t *testing.T) {
	desc := flatDescriptor(4)
	mesh := Build(desc, Source{})

	wantVerts := 5 * 5
	if len(mesh.Vertices) != wantVerts {
		t.Fatalf("expected %d vertices, got %d", wantVerts, len(mesh.Vertices))
	}
	if len(mesh.Normals) != wantVerts || len(mesh.Blends) != wantVerts || len(mesh.Tints) != wantVerts {
		t.Error("per-vertex arrays should match vertex count")
	}

	wantIndices := 4 * 4 * 6
	if len(mesh.Indices) != wantIndices {
		t.Errorf("expected %d indices (6 per cell), got %d", wantIndices, len(mesh.Indices))
	}
	for _, idx := range mesh.Indices {
		if int(idx) >= wantVerts {
			t.Fatalf("index %d out of range", idx)
		}
	}

	// Corner positions span the bounds footprint.
	first := mesh.Vertices[0].Position
	last := mesh.Vertices[wantVerts-1].Position
	if first != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("first vertex at %v, want origin", first)
	}
	if last != (mgl32.Vec3{10, 0, 10}) {
		t.Errorf("last vertex at %v, want far corner", last)
	}

	// Texcoords honor the tiling factors.
	if uv := mesh.Vertices[wantVerts-1].TexCoord; uv != (mgl32.Vec2{2, 2}) {
		t.Errorf("far corner texcoord %v, want (2,2)", uv)
	}
}

func TestBuildProceduralHeights(t *testing.T) {
	desc := flatDescriptor(2)
	mesh := Build(desc, Source{
		HeightFunc: func(col, row int) float32 { return float32(col + row) },
	})

	// Vertex at (col=2,row=1) has height 3.
	got := mesh.Vertices[1*3+2].Position.Y()
	if got != 3 {
		t.Errorf("expected height 3, got %f", got)
	}
	if mesh.Bounds.Max.Y() != 4 {
		t.Errorf("bounds should track heights, got max y %f", mesh.Bounds.Max.Y())
	}
}

func TestBuildImageHeights(t *testing.T) {
	desc := flatDescriptor(1) // 2x2 vertices
	img := solidImage(2, 2, 255, 0, 0, 255)

	mesh := Build(desc, Source{HeightImage: img, HeightScale: 8})
	for i, v := range mesh.Vertices {
		if v.Position.Y() != 8 {
			t.Errorf("vertex %d height %f, want 8", i, v.Position.Y())
		}
	}
}

func TestBuildMismatchedHeightImageIgnored(t *testing.T) {
	desc := flatDescriptor(4) // 25 vertices
	img := solidImage(2, 2, 255, 0, 0, 255)

	mesh := Build(desc, Source{HeightImage: img, HeightScale: 8})
	for _, v := range mesh.Vertices {
		if v.Position.Y() != 0 {
			t.Fatalf("mismatched height image must be ignored, got height %f", v.Position.Y())
		}
	}
}

func TestBuildNormalsFiniteDifference(t *testing.T) {
	// A ramp along X: interior normals lean back against the slope,
	// border normals default to up.
	desc := flatDescriptor(4)
	mesh := Build(desc, Source{
		HeightFunc: func(col, row int) float32 { return float32(col) * 2 },
	})

	side := 5
	up := mgl32.Vec3{0, 1, 0}

	for i := 0; i < side; i++ {
		if mesh.Normals[i] != up {
			t.Errorf("border normal %d should default to up, got %v", i, mesh.Normals[i])
		}
	}

	interior := mesh.Normals[2*side+2]
	if interior == up {
		t.Error("interior normal on a slope should not be straight up")
	}
	if interior.X() >= 0 {
		t.Errorf("normal should lean against +X slope, got %v", interior)
	}
	if !mgl32.FloatEqualThreshold(interior.Len(), 1, 1e-4) {
		t.Errorf("normal should be unit length, got %f", interior.Len())
	}
}

func TestBuildExplicitNormalImage(t *testing.T) {
	desc := flatDescriptor(1)
	// Encodes +X: R=255, G=127/128ish, B=127.
	img := solidImage(2, 2, 255, 127, 127, 255)

	mesh := Build(desc, Source{NormalImage: img})
	n := mesh.Normals[0]
	if n.X() < 0.9 {
		t.Errorf("explicit normal should decode toward +X, got %v", n)
	}
}

func TestBuildPackedBlendImage(t *testing.T) {
	desc := flatDescriptor(1)
	img := solidImage(2, 2, 255, 128, 0, 64)

	mesh := Build(desc, Source{BlendImage: img})
	b := mesh.Blends[0]
	if b[0] != 1.0 {
		t.Errorf("layer 0 weight: got %f, want 1", b[0])
	}
	if b[2] != 0 {
		t.Errorf("layer 2 weight: got %f, want 0", b[2])
	}
	if b[3] == 0 {
		t.Error("layer 3 weight should come from alpha channel")
	}
}

func TestBuildBlendLayerList(t *testing.T) {
	desc := flatDescriptor(1)
	layer0 := solidImage(2, 2, 255, 0, 0, 255)
	layer1 := solidImage(2, 2, 51, 0, 0, 255)

	mesh := Build(desc, Source{BlendLayers: []*image.RGBA{layer0, layer1}})
	b := mesh.Blends[0]
	if b[0] != 1.0 {
		t.Errorf("layer 0: got %f, want 1", b[0])
	}
	if !mgl32.FloatEqualThreshold(b[1], 0.2, 0.01) {
		t.Errorf("layer 1: got %f, want 0.2", b[1])
	}
}

func TestBuildBlendLayerTruncation(t *testing.T) {
	desc := flatDescriptor(1)
	var layers []*image.RGBA
	for i := 0; i < MaxLayers+3; i++ {
		layers = append(layers, solidImage(2, 2, 255, 0, 0, 255))
	}

	// Layers beyond the maximum are dropped; the build still succeeds with
	// exactly MaxLayers weights per vertex.
	mesh := Build(desc, Source{BlendLayers: layers})
	if len(mesh.Blends[0]) != MaxLayers {
		t.Fatalf("blend array should stay at %d entries", MaxLayers)
	}
	for layer := 0; layer < MaxLayers; layer++ {
		if mesh.Blends[0][layer] != 1.0 {
			t.Errorf("kept layer %d should carry its weight", layer)
		}
	}
}

func TestBuildDefaultBlendAndTint(t *testing.T) {
	mesh := Build(flatDescriptor(1), Source{})

	if mesh.Blends[0] != [MaxLayers]float32{1, 0, 0, 0} {
		t.Errorf("default blend should be layer 0 only, got %v", mesh.Blends[0])
	}
	if mesh.Tints[0] != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Errorf("default tint should be white, got %v", mesh.Tints[0])
	}
}
