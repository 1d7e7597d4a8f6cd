// Package camera provides the viewer camera and its culling frustums.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/engine/render"
	"github.com/ashkeep/pyre/pkg/geom"
)

// Orbit circles a center point at a distance, the usual scene-viewer
// control scheme. Angles are radians.
type Orbit struct {
	Center   mgl32.Vec3
	Distance float32
	Pitch    float32
	Yaw      float32

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	// Projection parameters.
	FOVDeg float32
	Near   float32
	Far    float32
}

// NewOrbit returns an orbit camera with viewer defaults.
func NewOrbit() *Orbit {
	return &Orbit{
		Distance:        20,
		Pitch:           0.5,
		MinDistance:     2,
		MaxDistance:     500,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		FOVDeg:          60,
		Near:            0.1,
		Far:             1000,
	}
}

// Drag applies a mouse drag in pixels.
func (c *Orbit) Drag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// Zoom applies scroll wheel movement.
func (c *Orbit) Zoom(delta float32) {
	c.Distance = clamp(c.Distance*(1-delta*c.ZoomSensitivity), c.MinDistance, c.MaxDistance)
}

// Position returns the eye position in world space.
func (c *Orbit) Position() mgl32.Vec3 {
	x := c.Distance * math32.Cos(c.Pitch) * math32.Sin(c.Yaw)
	y := c.Distance * math32.Sin(c.Pitch)
	z := c.Distance * math32.Cos(c.Pitch) * math32.Cos(c.Yaw)
	return c.Center.Add(mgl32.Vec3{x, y, z})
}

// Rotation returns the eye orientation looking at the center.
func (c *Orbit) Rotation() mgl32.Quat {
	return mgl32.QuatLookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0}).Inverse()
}

// ViewMatrix returns the world-to-eye transform.
func (c *Orbit) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Center, mgl32.Vec3{0, 1, 0})
}

// ProjectionMatrix returns the perspective projection for an aspect ratio.
func (c *Orbit) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOVDeg), aspect, c.Near, c.Far)
}

// FrameInput assembles the renderer's per-frame camera inputs. The same
// frustum serves the interior, exterior and imposter tests; the viewer does
// not distinguish zones.
func (c *Orbit) FrameInput(width, height int32) render.FrameInput {
	aspect := float32(width) / float32(height)
	vp := c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
	f := geom.FrustumFromMatrix(vp)

	eye := c.Position()
	reach := c.Distance * 2
	return render.FrameInput{
		Frustums: render.Frustums{Interior: f, Exterior: f, Imposter: f},
		LightInfluence: geom.AABB{
			Min: eye.Sub(mgl32.Vec3{reach, reach, reach}),
			Max: eye.Add(mgl32.Vec3{reach, reach, reach}),
		},
		EyeCenter:   eye,
		EyeRotation: c.Rotation(),
		Width:       width,
		Height:      height,
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
