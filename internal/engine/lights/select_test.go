package lights

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/pkg/geom"
)

func pointAt(id int64, x float32) Light {
	return Light{ID: id, Kind: KindPoint, Origin: mgl32.Vec3{x, 0, 0}, Range: 10}
}

func TestSelectOrdersDirectionalFirstThenDistance(t *testing.T) {
	all := []Light{
		pointAt(1, 30),
		{ID: 2, Kind: KindDirectional, Origin: mgl32.Vec3{100, 0, 0}},
		pointAt(3, 5),
		pointAt(4, 12),
	}

	s := NewSelector(MaxDeferred)
	sel := s.Select(all, mgl32.Vec3{}, nil, nil)

	if sel.Count != 4 {
		t.Fatalf("expected all 4 lights selected, got %d", sel.Count)
	}
	if Kind(sel.Kinds[0]) != KindDirectional {
		t.Error("directional light should sort first regardless of distance")
	}
	for i := 2; i < sel.Count; i++ {
		if sel.Distances[i] < sel.Distances[i-1] {
			t.Errorf("non-directional distances should be non-decreasing, slot %d", i)
		}
	}
}

func TestSelectCapacityAndPadding(t *testing.T) {
	var all []Light
	for i := 0; i < 12; i++ {
		all = append(all, pointAt(int64(i), float32(i+1)))
	}

	s := NewSelector(MaxForward)
	sel := s.Select(all, mgl32.Vec3{}, nil, nil)

	if sel.Count != MaxForward {
		t.Fatalf("expected exactly %d selected, got %d", MaxForward, sel.Count)
	}

	// No selected light may be farther than any excluded one.
	maxSelected := sel.Distances[sel.Count-1]
	for i, l := range all {
		selected := false
		for slot := 0; slot < sel.Count; slot++ {
			if sel.Indices[slot] == int32(i) {
				selected = true
			}
		}
		if !selected {
			if d := l.Origin.LenSqr(); d < maxSelected {
				t.Errorf("excluded light %d at distSq %f is closer than selected max %f", i, d, maxSelected)
			}
		}
	}
}

func TestSelectPadsWithBenignDefaults(t *testing.T) {
	s := NewSelector(4)
	sel := s.Select([]Light{pointAt(1, 2)}, mgl32.Vec3{}, nil, nil)

	if sel.Count != 1 {
		t.Fatalf("expected 1 selected, got %d", sel.Count)
	}
	for slot := 1; slot < 4; slot++ {
		if sel.Indices[slot] != -1 {
			t.Errorf("slot %d index should be -1, got %d", slot, sel.Indices[slot])
		}
		if sel.Distances[slot] != math32.MaxFloat32 {
			t.Errorf("slot %d distance should be max, got %f", slot, sel.Distances[slot])
		}
		if sel.ShadowSlots[slot] != -1 {
			t.Errorf("slot %d shadow slot should be -1, got %d", slot, sel.ShadowSlots[slot])
		}
	}
}

func TestSelectRegionFilter(t *testing.T) {
	region := geom.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	all := []Light{
		pointAt(1, 0),   // inside
		pointAt(2, 100), // far outside its own range of the region
		{ID: 3, Kind: KindDirectional, Origin: mgl32.Vec3{500, 0, 0}}, // unaffected by region
	}

	s := NewSelector(MaxDeferred)
	sel := s.Select(all, mgl32.Vec3{}, &region, nil)

	if sel.Count != 2 {
		t.Fatalf("expected 2 selected (inside + directional), got %d", sel.Count)
	}
	if Kind(sel.Kinds[0]) != KindDirectional {
		t.Error("directional light should still sort first")
	}
}

func TestSelectAssignsShadowSlots(t *testing.T) {
	all := []Light{pointAt(7, 1), pointAt(8, 2)}
	slots := map[int64]int{7: 3}

	s := NewSelector(MaxDeferred)
	sel := s.Select(all, mgl32.Vec3{}, nil, func(id int64) int {
		if slot, ok := slots[id]; ok {
			return slot
		}
		return -1
	})

	if sel.ShadowSlots[0] != 3 {
		t.Errorf("light 7 should carry slot 3, got %d", sel.ShadowSlots[0])
	}
	if sel.ShadowSlots[1] != -1 {
		t.Errorf("light 8 has no slot, got %d", sel.ShadowSlots[1])
	}
}

func TestSelectFlatArraysMatchInput(t *testing.T) {
	l := Light{
		ID:        1,
		Kind:      KindSpot,
		Origin:    mgl32.Vec3{1, 2, 3},
		Rotation:  mgl32.QuatIdent(),
		Color:     mgl32.Vec3{0.5, 0.25, 1},
		Intensity: 2,
		Range:     40,
		ConeAngle: 35,
	}

	s := NewSelector(2)
	sel := s.Select([]Light{l}, mgl32.Vec3{}, nil, nil)

	if got := [3]float32{sel.Positions[0], sel.Positions[1], sel.Positions[2]}; got != [3]float32{1, 2, 3} {
		t.Errorf("positions: got %v", got)
	}
	if got := [3]float32{sel.Colors[0], sel.Colors[1], sel.Colors[2]}; got != [3]float32{0.5, 0.25, 1} {
		t.Errorf("colors: got %v", got)
	}
	if sel.Ranges[0] != 40 || sel.ConeAngles[0] != 35 || sel.Intensities[0] != 2 {
		t.Error("scalar arrays should mirror the light fields")
	}
	// Identity rotation faces -Z.
	if sel.Directions[2] >= 0 {
		t.Errorf("identity rotation should face -Z, got z=%f", sel.Directions[2])
	}
}

func TestSelectMapsOrderAndFilter(t *testing.T) {
	big := geom.AABB{Min: mgl32.Vec3{-100, -100, -100}, Max: mgl32.Vec3{100, 100, 100}}
	maps := []*LightMap{
		{ID: 1, Enabled: true, Origin: mgl32.Vec3{50, 0, 0}, Bounds: big},
		{ID: 2, Enabled: true, Origin: mgl32.Vec3{5, 0, 0}, Bounds: big},
		{ID: 3, Enabled: false, Origin: mgl32.Vec3{1, 0, 0}, Bounds: big},
		nil,
	}

	s := NewSelector(MaxLightMaps)
	sel := s.SelectMaps(maps, mgl32.Vec3{}, nil)

	if sel.Count != 2 {
		t.Fatalf("expected 2 enabled maps, got %d", sel.Count)
	}
	if sel.Maps[0].ID != 2 || sel.Maps[1].ID != 1 {
		t.Errorf("maps should sort by ascending distance: got %d, %d", sel.Maps[0].ID, sel.Maps[1].ID)
	}
	if sel.Maps[2] != nil || sel.Indices[2] != -1 {
		t.Error("slots past Count should be padded")
	}
}

func TestSelectThenSelectMapsShareOneSelector(t *testing.T) {
	big := geom.AABB{Min: mgl32.Vec3{-100, -100, -100}, Max: mgl32.Vec3{100, 100, 100}}
	all := []Light{
		{ID: 1, Kind: KindPoint, Origin: mgl32.Vec3{2, 0, 0}, Range: 10},
	}
	maps := []*LightMap{
		{ID: 9, Enabled: true, Origin: mgl32.Vec3{1, 0, 0}, Bounds: big},
	}

	// Forward drawing runs both selections per surface on one selector; the
	// light selection must stay intact across the map selection.
	s := NewSelector(MaxForward)
	sel := s.Select(all, mgl32.Vec3{}, nil, nil)
	mapSel := s.SelectMaps(maps, mgl32.Vec3{}, &big)

	if sel.Count != 1 || sel.Indices[0] != 0 {
		t.Error("light selection should survive a subsequent map selection")
	}
	if mapSel.Count != 1 || mapSel.Maps[0].ID != 9 {
		t.Error("map selection should pick the covering map")
	}
}

func TestSelectMapsRegion(t *testing.T) {
	region := geom.AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{10, 10, 10}}
	maps := []*LightMap{
		{ID: 1, Enabled: true, Origin: mgl32.Vec3{5, 5, 5},
			Bounds: geom.AABB{Min: mgl32.Vec3{2, 2, 2}, Max: mgl32.Vec3{8, 8, 8}}},
		{ID: 2, Enabled: true, Origin: mgl32.Vec3{50, 50, 50},
			Bounds: geom.AABB{Min: mgl32.Vec3{40, 40, 40}, Max: mgl32.Vec3{60, 60, 60}}},
	}

	s := NewSelector(MaxLightMaps)
	sel := s.SelectMaps(maps, mgl32.Vec3{}, &region)

	if sel.Count != 1 || sel.Maps[0].ID != 1 {
		t.Errorf("only the overlapping map should be selected, got count=%d", sel.Count)
	}
}
