// Package shadow provides shadow-map slot allocation, light-space matrix
// computation and the blurred shadow render targets.
package shadow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/engine/lights"
)

const (
	// MaxSlots is the fixed number of shadow-map slots per frame.
	MaxSlots = 8
	// HighResSlots is how many of the first (nearest-priority) slots get
	// the high-resolution map.
	HighResSlots = 2

	// HighResolution and LowResolution are the default slot sizes.
	HighResolution = 2048
	LowResolution  = 1024

	// maxFOVDeg caps the perspective field of view for spot and point
	// shadow projections. Wide-open cones degenerate near 180 degrees.
	maxFOVDeg = 170
)

// SlotResolution returns the map size for a slot index, given the configured
// high resolution. Lower-priority slots scale down by the default tier ratio.
func SlotResolution(slot int, highRes int32) int32 {
	if slot < HighResSlots {
		return highRes
	}
	return highRes * LowResolution / HighResolution
}

// Plan records the shadow-slot assignments for one frame: which light owns
// which slot, and the light-space view-projection used to render it. Slot
// indices are stable for the duration of the frame's lighting pass and
// cleared at frame end.
type Plan struct {
	slots    map[int64]int
	matrices [MaxSlots]mgl32.Mat4
	count    int
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{slots: make(map[int64]int, MaxSlots)}
}

// Assign gives the light a shadow slot and records its light-space matrix.
// Assigning the same light twice in a frame returns the original slot.
// Returns (-1, false) when all slots are taken; such lights simply render
// without shadows.
func (p *Plan) Assign(l lights.Light) (int, bool) {
	if slot, ok := p.slots[l.ID]; ok {
		return slot, true
	}
	if p.count >= MaxSlots {
		return -1, false
	}
	slot := p.count
	p.count++
	p.slots[l.ID] = slot
	p.matrices[slot] = LightMatrix(l)
	return slot, true
}

// SlotFor returns the slot assigned to a light this frame, or -1.
func (p *Plan) SlotFor(id int64) int {
	if slot, ok := p.slots[id]; ok {
		return slot
	}
	return -1
}

// Matrix returns the light-space view-projection recorded for a slot.
func (p *Plan) Matrix(slot int) mgl32.Mat4 {
	return p.matrices[slot]
}

// Count returns how many slots are assigned.
func (p *Plan) Count() int {
	return p.count
}

// Reset clears all assignments at frame end.
func (p *Plan) Reset() {
	p.count = 0
	for id := range p.slots {
		delete(p.slots, id)
	}
}

// LightMatrix computes the light-space view-projection for a light. The view
// always derives from the light origin and inverse rotation; the projection
// is perspective for spot and point lights (FOV clamped to a safe maximum)
// and orthographic sized by the cutoff radius for directional lights.
func LightMatrix(l lights.Light) mgl32.Mat4 {
	view := l.Rotation.Inverse().Mat4().Mul4(
		mgl32.Translate3D(-l.Origin.X(), -l.Origin.Y(), -l.Origin.Z()))

	reach := l.Range
	if reach <= 0 {
		reach = 100
	}

	var proj mgl32.Mat4
	if l.Kind == lights.KindDirectional {
		proj = mgl32.Ortho(-reach, reach, -reach, reach, 0.1, 2*reach)
	} else {
		fov := l.ConeAngle
		if fov <= 0 {
			fov = 90
		}
		fov = math32.Min(fov, maxFOVDeg)
		proj = mgl32.Perspective(mgl32.DegToRad(fov), 1.0, 0.1, reach)
	}

	return proj.Mul4(view)
}
