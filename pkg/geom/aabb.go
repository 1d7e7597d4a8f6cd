// Package geom provides the bounding-volume and frustum math used by the
// renderer for culling and light selection. Matrix and vector types come
// from mgl32; this package adds the shapes mgl32 does not have.
package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAABB returns a box that extends to nothing, suitable as the seed
// for ExtendPoint accumulation.
func EmptyAABB() AABB {
	const big = math32.MaxFloat32
	return AABB{
		Min: mgl32.Vec3{big, big, big},
		Max: mgl32.Vec3{-big, -big, -big},
	}
}

// Center returns the center point of the box.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfExtents returns the half-size of the box along each axis.
func (b AABB) HalfExtents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Radius returns the distance from center to corner (half-diagonal).
func (b AABB) Radius() float32 {
	return b.HalfExtents().Len()
}

// Contains reports whether p lies inside or on the boundary of the box.
func (b AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Intersects reports whether the two boxes overlap.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// IntersectsSphere reports whether the sphere overlaps the box.
func (b AABB) IntersectsSphere(s Sphere) bool {
	distSq := float32(0)
	for i := 0; i < 3; i++ {
		v := s.Center[i]
		if v < b.Min[i] {
			d := b.Min[i] - v
			distSq += d * d
		} else if v > b.Max[i] {
			d := v - b.Max[i]
			distSq += d * d
		}
	}
	return distSq <= s.Radius*s.Radius
}

// ExtendPoint grows the box to include p.
func (b AABB) ExtendPoint(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] {
			b.Min[i] = p[i]
		}
		if p[i] > b.Max[i] {
			b.Max[i] = p[i]
		}
	}
	return b
}

// Transform returns the axis-aligned box enclosing this box after applying m.
// All eight corners are transformed and re-accumulated.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	out := EmptyAABB()
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			corner[0] = b.Max.X()
		}
		if i&2 != 0 {
			corner[1] = b.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = b.Max.Z()
		}
		out = out.ExtendPoint(mgl32.TransformCoordinate(corner, m))
	}
	return out
}

// BoundingSphere returns the tightest sphere enclosing the box.
func (b AABB) BoundingSphere() Sphere {
	return Sphere{Center: b.Center(), Radius: b.Radius()}
}

// Sphere is a bounding sphere in world space.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// DistanceSq returns the squared distance from the sphere center to p.
func (s Sphere) DistanceSq(p mgl32.Vec3) float32 {
	return s.Center.Sub(p).LenSqr()
}
