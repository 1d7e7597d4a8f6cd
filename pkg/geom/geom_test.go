package geom

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestAABBCenterAndRadius(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -2, -3}, Max: mgl32.Vec3{1, 2, 3}}

	c := b.Center()
	if c != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("Center: got %v, want origin", c)
	}

	want := mgl32.Vec3{1, 2, 3}.Len()
	if r := b.Radius(); !mgl32.FloatEqualThreshold(r, want, 1e-5) {
		t.Errorf("Radius: got %f, want %f", r, want)
	}
}

func TestAABBContains(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 10, 10}}

	if !b.Contains(mgl32.Vec3{5, 5, 5}) {
		t.Error("interior point should be contained")
	}
	if !b.Contains(mgl32.Vec3{0, 0, 0}) {
		t.Error("boundary point should be contained")
	}
	if b.Contains(mgl32.Vec3{11, 5, 5}) {
		t.Error("exterior point should not be contained")
	}
}

func TestAABBIntersects(t *testing.T) {
	a := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{5, 5, 5}}
	b := AABB{Min: mgl32.Vec3{4, 4, 4}, Max: mgl32.Vec3{9, 9, 9}}
	c := AABB{Min: mgl32.Vec3{6, 6, 6}, Max: mgl32.Vec3{9, 9, 9}}

	if !a.Intersects(b) {
		t.Error("overlapping boxes should intersect")
	}
	if a.Intersects(c) {
		t.Error("disjoint boxes should not intersect")
	}
}

func TestAABBIntersectsSphere(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{2, 2, 2}}

	if !b.IntersectsSphere(Sphere{Center: mgl32.Vec3{3, 1, 1}, Radius: 1.5}) {
		t.Error("sphere touching box face should intersect")
	}
	if b.IntersectsSphere(Sphere{Center: mgl32.Vec3{5, 5, 5}, Radius: 1}) {
		t.Error("distant sphere should not intersect")
	}
}

func TestAABBTransformTranslation(t *testing.T) {
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	m := mgl32.Translate3D(10, 20, 30)

	got := b.Transform(m)
	if got.Min != (mgl32.Vec3{9, 19, 29}) || got.Max != (mgl32.Vec3{11, 21, 31}) {
		t.Errorf("translated box: got %v..%v", got.Min, got.Max)
	}
}

func TestAABBTransformRotation(t *testing.T) {
	// A unit box rotated 45 degrees about Y must grow along X and Z.
	b := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	m := mgl32.HomogRotate3DY(mgl32.DegToRad(45))

	got := b.Transform(m)
	if got.Max.X() <= 1.0 || got.Max.Z() <= 1.0 {
		t.Errorf("rotated box should grow in XZ, got %v..%v", got.Min, got.Max)
	}
	if !mgl32.FloatEqualThreshold(got.Max.Y(), 1.0, 1e-5) {
		t.Errorf("rotation about Y should not change Y extent, got %f", got.Max.Y())
	}
}

func TestFrustumContainsSphere(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	f := FrustumFromMatrix(proj.Mul4(view))

	if !f.ContainsSphere(Sphere{Center: mgl32.Vec3{0, 0, 0}, Radius: 1}) {
		t.Error("sphere at look target should be visible")
	}
	if f.ContainsSphere(Sphere{Center: mgl32.Vec3{0, 0, 50}, Radius: 1}) {
		t.Error("sphere behind the camera should be culled")
	}
	if f.ContainsSphere(Sphere{Center: mgl32.Vec3{200, 0, 0}, Radius: 1}) {
		t.Error("sphere far off to the side should be culled")
	}
}

func TestFrustumContainsAABB(t *testing.T) {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	f := FrustumFromMatrix(proj.Mul4(view))

	visible := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	if !f.ContainsAABB(visible) {
		t.Error("box at look target should be visible")
	}

	behind := AABB{Min: mgl32.Vec3{-1, -1, 40}, Max: mgl32.Vec3{1, 1, 42}}
	if f.ContainsAABB(behind) {
		t.Error("box behind the camera should be culled")
	}

	// A box straddling a side plane is still visible.
	straddle := AABB{Min: mgl32.Vec3{-20, -1, -1}, Max: mgl32.Vec3{0, 1, 1}}
	if !f.ContainsAABB(straddle) {
		t.Error("box partially inside should be visible")
	}
}

func TestYawToward(t *testing.T) {
	// Looking straight down +Z is zero yaw.
	if y := YawToward(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 5}); !mgl32.FloatEqualThreshold(y, 0, 1e-6) {
		t.Errorf("+Z yaw: got %f, want 0", y)
	}
	// Looking down +X is a quarter turn.
	if y := YawToward(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{5, 0, 0}); !mgl32.FloatEqualThreshold(y, mgl32.DegToRad(90), 1e-5) {
		t.Errorf("+X yaw: got %f, want pi/2", y)
	}
}
