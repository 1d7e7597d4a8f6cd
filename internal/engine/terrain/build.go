package terrain

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/logger"
	"github.com/ashkeep/pyre/pkg/geom"
)

// Source supplies the height, normal, blend and tint inputs for one build.
// Image inputs are RGBA-normalized; a nil image falls back to its default.
type Source struct {
	// HeightFunc procedurally generates heights in grid space. Used when
	// HeightImage is nil. Nil means flat terrain.
	HeightFunc func(col, row int) float32
	// HeightImage samples heights from the red channel scaled by
	// HeightScale. Its pixel count must match the vertex count.
	HeightImage *image.RGBA
	HeightScale float32

	// NormalImage overrides computed normals (RGB mapped from [0,255] to
	// [-1,1]). Pixel count must match the vertex count.
	NormalImage *image.RGBA

	// BlendImage packs up to four layer weights into RGBA channels.
	// BlendLayers lists independent single-channel weight images, one per
	// layer, read from the red channel. BlendImage wins when both are set.
	BlendImage  *image.RGBA
	BlendLayers []*image.RGBA

	// TintImage supplies per-vertex color. Pixel count must match.
	TintImage *image.RGBA
}

// Build synthesizes the mesh for a descriptor. Mismatched image inputs are
// ignored with a logged warning and replaced by defaults; this never fails.
func Build(desc Descriptor, src Source) *Mesh {
	side := desc.Segments + 1
	count := side * side

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, count),
		Normals:  make([]mgl32.Vec3, count),
		Blends:   make([][MaxLayers]float32, count),
		Tints:    make([]mgl32.Vec4, count),
		Indices:  make([]uint32, 0, desc.Segments*desc.Segments*6),
	}

	heights := sampleHeights(desc, src, side)

	// Vertex stream: positions across the bounds footprint, texcoords
	// scaled by the tiling factors.
	min, max := desc.Bounds.Min, desc.Bounds.Max
	sizeX := max.X() - min.X()
	sizeZ := max.Z() - min.Z()
	bounds := geom.EmptyAABB()

	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			u := float32(col) / float32(desc.Segments)
			v := float32(row) / float32(desc.Segments)
			pos := mgl32.Vec3{
				min.X() + u*sizeX,
				min.Y() + heights[row*side+col],
				min.Z() + v*sizeZ,
			}
			bounds = bounds.ExtendPoint(pos)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				TexCoord: mgl32.Vec2{u * desc.TilesX, v * desc.TilesZ},
			})
		}
	}
	mesh.Bounds = bounds

	buildNormals(mesh, desc, src, heights, side)
	buildBlends(mesh, desc, src, count)
	buildTints(mesh, desc, src, count)

	// Fixed quad-per-cell triangulation.
	for row := 0; row < desc.Segments; row++ {
		for col := 0; col < desc.Segments; col++ {
			i := uint32(row*side + col)
			mesh.Indices = append(mesh.Indices,
				i, i+1, i+uint32(side),
				i+1, i+uint32(side)+1, i+uint32(side),
			)
		}
	}

	return mesh
}

// sampleHeights evaluates the height source on the grid.
func sampleHeights(desc Descriptor, src Source, side int) []float32 {
	heights := make([]float32, side*side)

	if src.HeightImage != nil {
		if pixelCount(src.HeightImage) != side*side {
			logger.Warn("terrain height image ignored: pixel count mismatch",
				zap.String("height_ref", desc.HeightRef),
				zap.Int("pixels", pixelCount(src.HeightImage)),
				zap.Int("vertices", side*side))
		} else {
			scale := src.HeightScale
			if scale == 0 {
				scale = 1
			}
			for i := range heights {
				heights[i] = float32(pixelAt(src.HeightImage, i).R) / 255.0 * scale
			}
			return heights
		}
	}

	if src.HeightFunc != nil {
		for row := 0; row < side; row++ {
			for col := 0; col < side; col++ {
				heights[row*side+col] = src.HeightFunc(col, row)
			}
		}
	}
	return heights
}

// buildNormals fills mesh.Normals from the explicit normal image when valid,
// otherwise from a 6-neighbor finite-difference cross-product average with an
// "up" fallback on the mesh border.
func buildNormals(mesh *Mesh, desc Descriptor, src Source, heights []float32, side int) {
	if src.NormalImage != nil {
		if pixelCount(src.NormalImage) != len(mesh.Normals) {
			logger.Warn("terrain normal image ignored: pixel count mismatch",
				zap.String("height_ref", desc.HeightRef),
				zap.Int("pixels", pixelCount(src.NormalImage)),
				zap.Int("vertices", len(mesh.Normals)))
		} else {
			for i := range mesh.Normals {
				p := pixelAt(src.NormalImage, i)
				n := mgl32.Vec3{
					float32(p.R)/127.5 - 1,
					float32(p.G)/127.5 - 1,
					float32(p.B)/127.5 - 1,
				}
				if n.LenSqr() > 0 {
					n = n.Normalize()
				} else {
					n = mgl32.Vec3{0, 1, 0}
				}
				mesh.Normals[i] = n
			}
			return
		}
	}

	up := mgl32.Vec3{0, 1, 0}
	stepX := (desc.Bounds.Max.X() - desc.Bounds.Min.X()) / float32(desc.Segments)
	stepZ := (desc.Bounds.Max.Z() - desc.Bounds.Min.Z()) / float32(desc.Segments)

	at := func(col, row int) mgl32.Vec3 {
		return mgl32.Vec3{float32(col) * stepX, heights[row*side+col], float32(row) * stepZ}
	}

	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			i := row*side + col
			if col == 0 || row == 0 || col == side-1 || row == side-1 {
				mesh.Normals[i] = up
				continue
			}

			center := at(col, row)
			// Six neighbors in fan order; adjacent pairs form the
			// triangles whose normals are averaged.
			ring := [6]mgl32.Vec3{
				at(col-1, row),
				at(col-1, row+1),
				at(col, row+1),
				at(col+1, row),
				at(col+1, row-1),
				at(col, row-1),
			}

			var sum mgl32.Vec3
			for k := 0; k < 6; k++ {
				a := ring[k].Sub(center)
				b := ring[(k+1)%6].Sub(center)
				n := a.Cross(b)
				if n.LenSqr() > 0 {
					sum = sum.Add(n.Normalize())
				}
			}
			if sum.LenSqr() > 0 {
				mesh.Normals[i] = sum.Normalize()
			} else {
				mesh.Normals[i] = up
			}
		}
	}
}

// buildBlends fills mesh.Blends from the packed image, the layer list, or the
// layer-0 default.
func buildBlends(mesh *Mesh, desc Descriptor, src Source, count int) {
	for i := range mesh.Blends {
		mesh.Blends[i] = [MaxLayers]float32{1, 0, 0, 0}
	}

	if src.BlendImage != nil {
		if pixelCount(src.BlendImage) != count {
			logger.Warn("terrain blend image ignored: pixel count mismatch",
				zap.String("height_ref", desc.HeightRef),
				zap.Int("pixels", pixelCount(src.BlendImage)),
				zap.Int("vertices", count))
			return
		}
		for i := 0; i < count; i++ {
			p := pixelAt(src.BlendImage, i)
			mesh.Blends[i] = [MaxLayers]float32{
				float32(p.R) / 255.0,
				float32(p.G) / 255.0,
				float32(p.B) / 255.0,
				float32(p.A) / 255.0,
			}
		}
		return
	}

	if len(src.BlendLayers) == 0 {
		return
	}

	layers := src.BlendLayers
	if len(layers) > MaxLayers {
		logger.WarnOnce("terrain:layers:"+desc.HeightRef,
			"terrain layer count exceeds maximum, truncating",
			zap.Int("layers", len(layers)), zap.Int("max", MaxLayers))
		layers = layers[:MaxLayers]
	}

	for i := range mesh.Blends {
		mesh.Blends[i] = [MaxLayers]float32{}
	}
	for layer, img := range layers {
		if img == nil {
			continue
		}
		if pixelCount(img) != count {
			logger.Warn("terrain blend layer ignored: pixel count mismatch",
				zap.String("height_ref", desc.HeightRef), zap.Int("layer", layer),
				zap.Int("pixels", pixelCount(img)), zap.Int("vertices", count))
			continue
		}
		for i := 0; i < count; i++ {
			mesh.Blends[i][layer] = float32(pixelAt(img, i).R) / 255.0
		}
	}
}

// buildTints fills mesh.Tints from the tint image or white.
func buildTints(mesh *Mesh, desc Descriptor, src Source, count int) {
	for i := range mesh.Tints {
		mesh.Tints[i] = mgl32.Vec4{1, 1, 1, 1}
	}

	if src.TintImage == nil {
		return
	}
	if pixelCount(src.TintImage) != count {
		logger.Warn("terrain tint image ignored: pixel count mismatch",
			zap.String("height_ref", desc.HeightRef),
			zap.Int("pixels", pixelCount(src.TintImage)),
			zap.Int("vertices", count))
		return
	}
	for i := 0; i < count; i++ {
		p := pixelAt(src.TintImage, i)
		mesh.Tints[i] = mgl32.Vec4{
			float32(p.R) / 255.0,
			float32(p.G) / 255.0,
			float32(p.B) / 255.0,
			float32(p.A) / 255.0,
		}
	}
}

func pixelCount(img *image.RGBA) int {
	return img.Bounds().Dx() * img.Bounds().Dy()
}

// pixelAt reads the i-th pixel in row-major order.
type rgba8 struct{ R, G, B, A uint8 }

func pixelAt(img *image.RGBA, i int) rgba8 {
	w := img.Bounds().Dx()
	x := img.Bounds().Min.X + i%w
	y := img.Bounds().Min.Y + i/w
	off := img.PixOffset(x, y)
	return rgba8{img.Pix[off], img.Pix[off+1], img.Pix[off+2], img.Pix[off+3]}
}
