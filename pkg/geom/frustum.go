package geom

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a world-space plane in normal/distance form. A point p is on the
// positive side when Normal·p + D >= 0.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from p to the plane.
func (p Plane) DistanceTo(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.D
}

// Frustum is a view frustum as six inward-facing planes, extracted from a
// view-projection matrix. Order: left, right, bottom, top, near, far.
type Frustum [6]Plane

// FrustumFromMatrix extracts the six clip planes from a combined
// view-projection matrix (Gribb/Hartmann extraction, column-major mgl32).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(i, 0), vp.At(i, 1), vp.At(i, 2), vp.At(i, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	planes := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r3.Add(r2), // near
		r3.Sub(r2), // far
	}
	for i, p := range planes {
		n := mgl32.Vec3{p.X(), p.Y(), p.Z()}
		length := n.Len()
		if length == 0 {
			length = 1
		}
		f[i] = Plane{Normal: n.Mul(1 / length), D: p.W() / length}
	}
	return f
}

// ContainsSphere reports whether any part of the sphere is inside the frustum.
func (f Frustum) ContainsSphere(s Sphere) bool {
	for _, p := range f {
		if p.DistanceTo(s.Center) < -s.Radius {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether the point is inside the frustum.
func (f Frustum) ContainsPoint(v mgl32.Vec3) bool {
	return f.ContainsSphere(Sphere{Center: v})
}

// ContainsAABB reports whether any part of the box is inside the frustum.
// Uses the positive-vertex test per plane.
func (f Frustum) ContainsAABB(b AABB) bool {
	for _, p := range f {
		v := b.Min
		if p.Normal.X() >= 0 {
			v[0] = b.Max.X()
		}
		if p.Normal.Y() >= 0 {
			v[1] = b.Max.Y()
		}
		if p.Normal.Z() >= 0 {
			v[2] = b.Max.Z()
		}
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// YawToward returns the yaw angle, in radians, that rotates the +Z axis
// toward the direction from `from` to `to` in the XZ plane. Used for
// upright billboards that only turn about the vertical axis.
func YawToward(from, to mgl32.Vec3) float32 {
	dx := to.X() - from.X()
	dz := to.Z() - from.Z()
	return math32.Atan2(dx, dz)
}
