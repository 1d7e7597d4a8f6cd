package lights

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/pkg/geom"
)

// Selection is the flattened result of one light selection: parallel arrays
// sized to the selector's capacity, padded with benign defaults past Count.
// The arrays are reused by the selector; the contents are valid only until
// the next Select call.
type Selection struct {
	Capacity int
	Count    int

	// Indices into the input slice, -1 past Count.
	Indices []int32
	// Squared distances to the reference point, MaxFloat32 past Count.
	Distances []float32

	Positions   []float32 // 3 per slot
	Directions  []float32 // 3 per slot
	Colors      []float32 // 3 per slot
	Kinds       []int32
	Intensities []float32
	Ranges      []float32
	ConeAngles  []float32
	ShadowSlots []int32 // -1 when the light has no slot
}

func newSelection(capacity int) *Selection {
	return &Selection{
		Capacity:    capacity,
		Indices:     make([]int32, capacity),
		Distances:   make([]float32, capacity),
		Positions:   make([]float32, capacity*3),
		Directions:  make([]float32, capacity*3),
		Colors:      make([]float32, capacity*3),
		Kinds:       make([]int32, capacity),
		Intensities: make([]float32, capacity),
		Ranges:      make([]float32, capacity),
		ConeAngles:  make([]float32, capacity),
		ShadowSlots: make([]int32, capacity),
	}
}

func (s *Selection) reset() {
	s.Count = 0
	for i := 0; i < s.Capacity; i++ {
		s.Indices[i] = -1
		s.Distances[i] = math32.MaxFloat32
		s.Kinds[i] = 0
		s.Intensities[i] = 0
		s.Ranges[i] = 0
		s.ConeAngles[i] = 0
		s.ShadowSlots[i] = -1
	}
	for i := range s.Positions {
		s.Positions[i] = 0
		s.Directions[i] = 0
		s.Colors[i] = 0
	}
}

// MapSelection is the flattened result of one light-map selection. Selected
// maps are also exposed as pointers for texture binding.
type MapSelection struct {
	Capacity int
	Count    int

	Indices   []int32
	Distances []float32
	Origins   []float32 // 3 per slot
	BoundsMin []float32 // 3 per slot
	BoundsMax []float32 // 3 per slot
	Maps      []*LightMap
}

func newMapSelection(capacity int) *MapSelection {
	return &MapSelection{
		Capacity:  capacity,
		Indices:   make([]int32, capacity),
		Distances: make([]float32, capacity),
		Origins:   make([]float32, capacity*3),
		BoundsMin: make([]float32, capacity*3),
		BoundsMax: make([]float32, capacity*3),
		Maps:      make([]*LightMap, capacity),
	}
}

func (s *MapSelection) reset() {
	s.Count = 0
	for i := 0; i < s.Capacity; i++ {
		s.Indices[i] = -1
		s.Distances[i] = math32.MaxFloat32
		s.Maps[i] = nil
	}
	for i := range s.Origins {
		s.Origins[i] = 0
		s.BoundsMin[i] = 0
		s.BoundsMax[i] = 0
	}
}

// sortable annotates one candidate during the per-call sort. Never persisted.
type sortable struct {
	index       int
	distSq      float32
	directional bool
}

// Selector picks a bounded, ordered subset of lights or light-maps for GPU
// upload. A selector owns pooled scratch and result storage, so each instance
// must only be used from the render goroutine.
type Selector struct {
	capacity int
	scratch  []sortable
	sel      *Selection
	mapSel   *MapSelection
}

// NewSelector creates a selector with the given fixed capacity.
func NewSelector(capacity int) *Selector {
	return &Selector{
		capacity: capacity,
		sel:      newSelection(capacity),
		mapSel:   newMapSelection(capacity),
	}
}

// SlotLookup maps a light id to its shadow slot for the current frame, or -1.
type SlotLookup func(id int64) int

// Select filters, orders and flattens the frame's lights against a reference
// point. Directional lights sort before all others; within a class the order
// is ascending squared distance. When region is non-nil, point and spot
// lights outside it are dropped. The returned Selection is valid until the
// next Select call on this selector.
func (s *Selector) Select(all []Light, ref mgl32.Vec3, region *geom.AABB, slots SlotLookup) *Selection {
	s.scratch = s.scratch[:0]
	for i, l := range all {
		if region != nil && l.Kind != KindDirectional && !region.IntersectsSphere(l.Influence()) {
			continue
		}
		s.scratch = append(s.scratch, sortable{
			index:       i,
			distSq:      l.Origin.Sub(ref).LenSqr(),
			directional: l.Kind == KindDirectional,
		})
	}

	sort.Slice(s.scratch, func(a, b int) bool {
		if s.scratch[a].directional != s.scratch[b].directional {
			return s.scratch[a].directional
		}
		return s.scratch[a].distSq < s.scratch[b].distSq
	})

	sel := s.sel
	sel.reset()
	for slot := 0; slot < len(s.scratch) && slot < s.capacity; slot++ {
		cand := s.scratch[slot]
		l := all[cand.index]

		sel.Indices[slot] = int32(cand.index)
		sel.Distances[slot] = cand.distSq
		sel.Kinds[slot] = int32(l.Kind)
		sel.Intensities[slot] = l.Intensity
		sel.Ranges[slot] = l.Range
		sel.ConeAngles[slot] = l.ConeAngle
		copyVec3(sel.Positions, slot, l.Origin)
		copyVec3(sel.Directions, slot, l.Direction())
		copyVec3(sel.Colors, slot, l.Color)
		if slots != nil {
			sel.ShadowSlots[slot] = int32(slots(l.ID))
		}
		sel.Count++
	}
	return sel
}

// SelectMaps filters, orders and flattens baked light maps by ascending
// distance to the reference point. Disabled maps and, when region is non-nil,
// maps whose bounds miss the region are dropped. The returned MapSelection is
// valid until the next SelectMaps call on this selector.
func (s *Selector) SelectMaps(all []*LightMap, ref mgl32.Vec3, region *geom.AABB) *MapSelection {
	s.scratch = s.scratch[:0]
	for i, m := range all {
		if m == nil || !m.Enabled {
			continue
		}
		if region != nil && !m.Bounds.Intersects(*region) {
			continue
		}
		s.scratch = append(s.scratch, sortable{
			index:  i,
			distSq: m.Origin.Sub(ref).LenSqr(),
		})
	}

	sort.Slice(s.scratch, func(a, b int) bool {
		return s.scratch[a].distSq < s.scratch[b].distSq
	})

	sel := s.mapSel
	sel.reset()
	for slot := 0; slot < len(s.scratch) && slot < s.capacity; slot++ {
		cand := s.scratch[slot]
		m := all[cand.index]

		sel.Indices[slot] = int32(cand.index)
		sel.Distances[slot] = cand.distSq
		sel.Maps[slot] = m
		copyVec3(sel.Origins, slot, m.Origin)
		copyVec3(sel.BoundsMin, slot, m.Bounds.Min)
		copyVec3(sel.BoundsMax, slot, m.Bounds.Max)
		sel.Count++
	}
	return sel
}

func copyVec3(dst []float32, slot int, v mgl32.Vec3) {
	dst[slot*3+0] = v.X()
	dst[slot*3+1] = v.Y()
	dst[slot*3+2] = v.Z()
}
