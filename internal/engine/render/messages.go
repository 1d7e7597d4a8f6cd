// Package render turns a per-frame list of high-level draw and configuration
// messages into a multi-pass deferred/forward GPU pipeline. Categorization,
// light selection, shadow planning and terrain synthesis are pure planning
// steps; all GL work is confined to the pipeline and uploader types.
package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/terrain"
	"github.com/ashkeep/pyre/pkg/geom"
)

// Message is one frame-scoped render request. Each message is consumed
// exactly once per frame. The set of variants is closed; the categorizer
// switches over it exhaustively.
type Message interface {
	message()
}

// Style selects how a surface is shaded.
type Style uint8

const (
	// StyleDeferred batches the surface into the opaque G-buffer pass.
	StyleDeferred Style = iota
	// StyleForward defers the surface to the sorted transparent pass.
	StyleForward
)

// Material describes surface shading inputs. Materials are compared by
// value; surfaces with equal geometry and material batch into one
// instanced group.
type Material struct {
	Diffuse  assets.Tag
	Tint     mgl32.Vec4
	Specular float32
	Emissive float32
}

// DefaultMaterial is white, non-specular and non-emissive.
func DefaultMaterial() Material {
	return Material{Tint: mgl32.Vec4{1, 1, 1, 1}}
}

// CreateModel registers procedural geometry into a package as if it had been
// decoded from disk. Registration fails silently (logged once) when the tag
// collides with a file-backed or existing procedural asset.
type CreateModel struct {
	Tag      assets.Tag
	Vertices []assets.ModelVertex
	Indices  []uint32
}

// DestroyModel removes a procedurally registered model.
type DestroyModel struct {
	Tag assets.Tag
}

// RenderSkyBox registers the frame's sky box cube map. The last one
// submitted wins.
type RenderSkyBox struct {
	CubeMap assets.Tag
}

// RenderLightProbe declares an active light probe. Stale forces a re-bake of
// the probe's baked captures this frame.
type RenderLightProbe struct {
	ID      int64
	Enabled bool
	Origin  mgl32.Vec3
	Bounds  geom.AABB
	Stale   bool
}

// RenderLight adds a light to the frame.
type RenderLight struct {
	Light lights.Light
}

// RenderBillboard synthesizes a single camera-oriented quad surface.
// UprightOnly keeps the quad vertical and rotates it around Y only.
type RenderBillboard struct {
	Texture     assets.Tag
	Origin      mgl32.Vec3
	Size        mgl32.Vec2
	Tint        mgl32.Vec4
	UprightOnly bool
	Style       Style
	SortKey     int32
	SubSort     float32
}

// RenderModel draws a decoded model asset with the given material.
type RenderModel struct {
	Model     assets.Tag
	Material  Material
	Transform mgl32.Mat4

	Style   Style
	SortKey int32
	SubSort float32

	// RelativeToEye places the surface in the eye-relative forward pool.
	RelativeToEye bool

	// FadeStart/FadeEnd enable distance fade when FadeEnd > FadeStart:
	// alpha falls from 1 at FadeStart to 0 at FadeEnd, measured from the
	// eye. A surface past FadeEnd is dropped entirely.
	FadeStart float32
	FadeEnd   float32
}

// RenderSurface draws explicit geometry with a texture-atlas inset. The
// inset is carried per instance so atlas frames batch into one group.
type RenderSurface struct {
	Geometry  assets.Tag
	Material  Material
	Transform mgl32.Mat4
	Inset     mgl32.Vec4

	Style         Style
	SortKey       int32
	SubSort       float32
	RelativeToEye bool
	FadeStart     float32
	FadeEnd       float32
}

// RenderTerrain draws one terrain chunk. The descriptor identifies the
// geometry; equal descriptors share one cached mesh regardless of layer
// textures.
type RenderTerrain struct {
	Descriptor terrain.Descriptor

	// HeightMap backs Descriptor.HeightRef when non-empty; HeightScale
	// converts the sampled red channel to world units.
	HeightMap   assets.Tag
	HeightScale float32

	NormalMap assets.Tag
	// BlendMap is a packed four-channel weight image. BlendLayers is the
	// alternative one-image-per-layer form; extra layers are truncated.
	BlendMap    assets.Tag
	BlendLayers []assets.Tag
	TintMap     assets.Tag

	// Layers are the per-layer diffuse textures.
	Layers [terrain.MaxLayers]assets.Tag
}

// ConfigureLighting sets frame-wide lighting parameters.
type ConfigureLighting struct {
	Ambient      mgl32.Vec3
	SkyIntensity float32
}

// ConfigureSSAO toggles and tunes screen-space ambient occlusion.
type ConfigureSSAO struct {
	Enabled  bool
	Radius   float32
	Bias     float32
	Strength float32
}

// LoadPackage eagerly loads an asset package.
type LoadPackage struct {
	Name string
}

// UnloadPackage frees an asset package and its decoded resources.
type UnloadPackage struct {
	Name string
}

// ReloadPackages requests a deferred reload of every loaded package,
// processed once at end of frame.
type ReloadPackages struct{}

func (CreateModel) message()       {}
func (DestroyModel) message()      {}
func (RenderSkyBox) message()      {}
func (RenderLightProbe) message()  {}
func (RenderLight) message()       {}
func (RenderBillboard) message()   {}
func (RenderModel) message()       {}
func (RenderSurface) message()     {}
func (RenderTerrain) message()     {}
func (ConfigureLighting) message() {}
func (ConfigureSSAO) message()     {}
func (LoadPackage) message()       {}
func (UnloadPackage) message()     {}
func (ReloadPackages) message()    {}
