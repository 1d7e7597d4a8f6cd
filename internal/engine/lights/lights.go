// Package lights holds the renderer's light and light-map types and the
// bounded selection step that flattens them into fixed-size arrays for GPU
// upload.
package lights

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/pkg/geom"
)

// Fixed pipeline capacities. The shaders declare arrays of exactly these
// sizes; selection must never exceed them.
const (
	// MaxDeferred is the light capacity of the deferred composite pass.
	MaxDeferred = 32
	// MaxForward is the per-surface light capacity of the forward pass.
	MaxForward = 8
	// MaxLightMaps is the light-map capacity of any single pass.
	MaxLightMaps = 8
)

// Kind distinguishes light falloff models.
type Kind uint8

const (
	KindPoint Kind = iota
	KindDirectional
	KindSpot
)

// Light is one active light for the current frame.
type Light struct {
	ID            int64
	Kind          Kind
	Origin        mgl32.Vec3
	Rotation      mgl32.Quat
	Color         mgl32.Vec3
	Intensity     float32
	Range         float32 // cutoff radius for point/spot, shadow extent for directional
	ConeAngle     float32 // full cone angle in degrees, spot only
	DesireShadows bool
}

// Direction returns the light's forward axis (rotation applied to -Z).
func (l Light) Direction() mgl32.Vec3 {
	return l.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

// Influence returns the world-space sphere the light can affect.
// Directional lights influence everything; the returned sphere is unused
// for them.
func (l Light) Influence() geom.Sphere {
	return geom.Sphere{Center: l.Origin, Radius: l.Range}
}

// LightMap is the baked ambient capture for one light probe: an irradiance
// cube and an environment-filter cube, both owned by the renderer.
type LightMap struct {
	ID      int64
	Enabled bool
	Origin  mgl32.Vec3
	Bounds  geom.AABB

	// GL cube textures, 0 when running headless.
	Irradiance  uint32
	Environment uint32
}
