package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/shadow"
	"github.com/ashkeep/pyre/internal/engine/terrain"
	"github.com/ashkeep/pyre/pkg/geom"
)

// emptyGraph backs a cache whose packages only ever hold procedural assets.
type emptyGraph struct{}

func (emptyGraph) List(string) ([]assets.Entry, error) { return nil, nil }
func (emptyGraph) Decode(string, assets.Kind) (assets.Resource, error) {
	return nil, nil
}

func newTestPlanner() *Planner {
	return NewPlanner(assets.NewCache(emptyGraph{}))
}

var cubeTag = assets.Tag{Package: "world", Name: "cube"}

func createCube() CreateModel {
	verts := make([]assets.ModelVertex, 0, 8)
	for _, x := range []float32{-1, 1} {
		for _, y := range []float32{-1, 1} {
			for _, z := range []float32{-1, 1} {
				verts = append(verts, assets.ModelVertex{
					Position: mgl32.Vec3{x, y, z},
					Normal:   mgl32.Vec3{0, 1, 0},
				})
			}
		}
	}
	return CreateModel{
		Tag:      cubeTag,
		Vertices: verts,
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
	}
}

// testInput is a camera at +Z looking at the origin, with a light-influence
// box far out of the way.
func testInput(skipCulling bool) FrameInput {
	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := geom.FrustumFromMatrix(proj.Mul4(view))
	return FrameInput{
		SkipCulling:    skipCulling,
		Frustums:       Frustums{Interior: f, Exterior: f, Imposter: f},
		LightInfluence: geom.AABB{Min: mgl32.Vec3{500, 500, 500}, Max: mgl32.Vec3{501, 501, 501}},
		EyeCenter:      mgl32.Vec3{0, 0, 10},
		EyeRotation:    mgl32.QuatIdent(),
		Width:          800,
		Height:         600,
	}
}

func TestDeferredRoundTrip(t *testing.T) {
	p := newTestPlanner()
	transform := mgl32.Translate3D(1, 2, 3)
	mat := Material{Tint: mgl32.Vec4{1, 0.5, 0.25, 1}, Specular: 0.7}

	in := testInput(true)
	draw := p.BeginFrame([]Message{
		createCube(),
		RenderModel{Model: cubeTag, Material: mat, Transform: transform},
	})
	p.CategorizeNormal(in, draw)

	nt := p.Tasks(NormalPass)
	g, ok := nt.Deferred[GroupKey{Geometry: cubeTag, Material: mat}]
	if !ok {
		t.Fatal("no group for the submitted surface")
	}
	if len(g.Instances) != 1 {
		t.Fatalf("instances = %d, want 1", len(g.Instances))
	}
	if g.Instances[0].Transform != transform {
		t.Error("instance transform does not match the submitted transform")
	}
	if g.Instances[0].Tint != mat.Tint {
		t.Errorf("instance tint = %v, want %v", g.Instances[0].Tint, mat.Tint)
	}
}

func TestShadowSlotAssignment(t *testing.T) {
	p := newTestPlanner()
	light := lights.Light{
		ID:            7,
		Kind:          lights.KindPoint,
		Origin:        mgl32.Vec3{0, 5, 0},
		Rotation:      mgl32.QuatIdent(),
		Intensity:     1,
		Range:         20,
		DesireShadows: true,
	}

	in := testInput(true)
	draw := p.BeginFrame([]Message{createCube(), RenderLight{Light: light}})
	p.CategorizeNormal(in, draw)
	p.PlanShadows(in, draw)

	slot := p.Plan().SlotFor(7)
	if slot < 0 || slot >= shadow.MaxSlots {
		t.Fatalf("slot = %d, want 0..%d", slot, shadow.MaxSlots-1)
	}
	if p.Plan().Matrix(slot) == (mgl32.Mat4{}) {
		t.Error("light-space matrix was not recorded")
	}
	if p.PassCount() != 2 {
		t.Errorf("pass count = %d, want normal + one shadow pass", p.PassCount())
	}
}

func TestShadowSlotsAreBijective(t *testing.T) {
	p := newTestPlanner()
	msgs := []Message{createCube()}
	for id := int64(1); id <= shadow.MaxSlots+2; id++ {
		msgs = append(msgs, RenderLight{Light: lights.Light{
			ID:            id,
			Kind:          lights.KindPoint,
			Origin:        mgl32.Vec3{float32(id), 0, 0},
			Rotation:      mgl32.QuatIdent(),
			Range:         10,
			DesireShadows: true,
		}})
	}

	in := testInput(true)
	draw := p.BeginFrame(msgs)
	p.CategorizeNormal(in, draw)
	p.PlanShadows(in, draw)

	seen := make(map[int]int64)
	assigned := 0
	for id := int64(1); id <= shadow.MaxSlots+2; id++ {
		slot := p.Plan().SlotFor(id)
		if slot < 0 {
			continue
		}
		assigned++
		if prev, dup := seen[slot]; dup {
			t.Errorf("slot %d assigned to lights %d and %d", slot, prev, id)
		}
		seen[slot] = id
	}
	if assigned != shadow.MaxSlots {
		t.Errorf("assigned = %d, want %d", assigned, shadow.MaxSlots)
	}
}

func TestTerrainDeduplication(t *testing.T) {
	p := newTestPlanner()
	desc := terrain.Descriptor{
		Bounds:   geom.AABB{Min: mgl32.Vec3{-8, 0, -8}, Max: mgl32.Vec3{8, 0, 8}},
		TilesX:   1,
		TilesZ:   1,
		Segments: 2,
	}
	grass := [terrain.MaxLayers]assets.Tag{{Package: "world", Name: "grass"}}
	rock := [terrain.MaxLayers]assets.Tag{{Package: "world", Name: "rock"}}

	in := testInput(true)
	draw := p.BeginFrame([]Message{
		RenderTerrain{Descriptor: desc, Layers: grass},
		RenderTerrain{Descriptor: desc, Layers: rock},
	})
	p.CategorizeNormal(in, draw)

	if got := p.Terrains().Len(); got != 1 {
		t.Errorf("cached geometries = %d, want 1", got)
	}
	nt := p.Tasks(NormalPass)
	if len(nt.Terrain) != 2 {
		t.Fatalf("terrain insertions = %d, want 2", len(nt.Terrain))
	}
	if nt.Terrain[0].Mesh != nt.Terrain[1].Mesh {
		t.Error("identical descriptors should share one cached mesh")
	}
	if nt.Terrain[0].Layers == nt.Terrain[1].Layers {
		t.Error("insertions should keep their distinct materials")
	}
}

func TestFrustumCulling(t *testing.T) {
	p := newTestPlanner()
	in := testInput(false)

	visible := mgl32.Translate3D(0, 0, 0)
	behind := mgl32.Translate3D(0, 0, 50) // behind the camera at z=10
	draw := p.BeginFrame([]Message{
		createCube(),
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Transform: visible},
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Transform: behind},
	})
	p.CategorizeNormal(in, draw)

	g := p.Tasks(NormalPass).Deferred[GroupKey{Geometry: cubeTag, Material: DefaultMaterial()}]
	if g == nil || len(g.Instances) != 1 {
		t.Fatalf("expected exactly the visible surface to survive culling, got %v", g)
	}
	if g.Instances[0].Transform != visible {
		t.Error("the wrong surface survived culling")
	}
}

func TestLightInfluenceBoxAcceptsCulledSurface(t *testing.T) {
	p := newTestPlanner()
	in := testInput(false)
	// Put the influence box around the otherwise out-of-view surface.
	in.LightInfluence = geom.AABB{Min: mgl32.Vec3{-2, -2, 48}, Max: mgl32.Vec3{2, 2, 52}}

	behind := mgl32.Translate3D(0, 0, 50)
	draw := p.BeginFrame([]Message{
		createCube(),
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Transform: behind},
	})
	p.CategorizeNormal(in, draw)

	g := p.Tasks(NormalPass).Deferred[GroupKey{Geometry: cubeTag, Material: DefaultMaterial()}]
	if g == nil || len(g.Instances) != 1 {
		t.Error("surface inside the light-influence box should not be culled")
	}
}

func TestDistanceFade(t *testing.T) {
	p := newTestPlanner()
	in := testInput(true) // eye at z=10, surface at origin: distance 10

	draw := p.BeginFrame([]Message{
		createCube(),
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), FadeStart: 2, FadeEnd: 5,
			Transform: mgl32.Ident4()},
	})
	p.CategorizeNormal(in, draw)
	if g := p.Tasks(NormalPass).Deferred[GroupKey{Geometry: cubeTag, Material: DefaultMaterial()}]; g != nil && len(g.Instances) != 0 {
		t.Error("surface past its fade end should be dropped")
	}

	p2 := newTestPlanner()
	draw = p2.BeginFrame([]Message{
		createCube(),
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), FadeStart: 5, FadeEnd: 15,
			Transform: mgl32.Ident4()},
	})
	p2.CategorizeNormal(in, draw)
	g := p2.Tasks(NormalPass).Deferred[GroupKey{Geometry: cubeTag, Material: DefaultMaterial()}]
	if g == nil || len(g.Instances) != 1 {
		t.Fatal("fading surface should still be inserted")
	}
	alpha := g.Instances[0].Tint[3]
	if alpha < 0.45 || alpha > 0.55 {
		t.Errorf("fade alpha = %v, want about 0.5", alpha)
	}
}

func TestForwardPoolsAndSorting(t *testing.T) {
	p := newTestPlanner()
	in := testInput(true)

	near := mgl32.Translate3D(0, 0, 8)  // distance 2 from the eye
	far := mgl32.Translate3D(0, 0, -10) // distance 20
	draw := p.BeginFrame([]Message{
		createCube(),
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Style: StyleForward, Transform: near},
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Style: StyleForward, Transform: far},
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Style: StyleForward,
			RelativeToEye: true, Transform: mgl32.Ident4()},
	})
	p.CategorizeNormal(in, draw)

	nt := p.Tasks(NormalPass)
	if len(nt.ForwardAbsolute) != 2 || len(nt.ForwardRelative) != 1 {
		t.Fatalf("pools = %d/%d, want 2 absolute and 1 relative",
			len(nt.ForwardAbsolute), len(nt.ForwardRelative))
	}
	sortForward(nt.ForwardAbsolute)
	if nt.ForwardAbsolute[0].DistSq < nt.ForwardAbsolute[1].DistSq {
		t.Error("forward pool should sort back to front")
	}
}

func TestBillboardOrientation(t *testing.T) {
	p := newTestPlanner()
	in := testInput(true)
	origin := mgl32.Vec3{3, 1, -4}

	draw := p.BeginFrame([]Message{
		RenderBillboard{Texture: assets.Tag{Package: "world", Name: "flare"},
			Origin: origin, Size: mgl32.Vec2{2, 2}},
		RenderBillboard{Texture: assets.Tag{Package: "world", Name: "tree"},
			Origin: origin, Size: mgl32.Vec2{2, 3}, UprightOnly: true},
	})
	p.CategorizeNormal(in, draw)

	nt := p.Tasks(NormalPass)
	total := 0
	for key, g := range nt.Deferred {
		if key.Geometry != BillboardQuad {
			t.Errorf("billboard batched under %v, want the shared quad", key.Geometry)
		}
		for _, inst := range g.Instances {
			total++
			got := mgl32.Vec3{inst.Transform.At(0, 3), inst.Transform.At(1, 3), inst.Transform.At(2, 3)}
			if got != origin {
				t.Errorf("billboard translation = %v, want %v", got, origin)
			}
		}
	}
	if total != 2 {
		t.Errorf("billboard instances = %d, want 2", total)
	}
}

func TestShadowCastersSpanBothForwardPools(t *testing.T) {
	p := newTestPlanner()
	in := testInput(true)
	light := lights.Light{ID: 7, Kind: lights.KindPoint, Rotation: mgl32.QuatIdent(),
		Origin: mgl32.Vec3{0, 5, 0}, Range: 30, DesireShadows: true}

	draw := p.BeginFrame([]Message{
		createCube(),
		RenderLight{Light: light},
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Style: StyleForward,
			Transform: mgl32.Translate3D(0, 0, 2)},
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Style: StyleForward,
			RelativeToEye: true, Transform: mgl32.Translate3D(0, 0, -2)},
	})
	p.CategorizeNormal(in, draw)
	p.PlanShadows(in, draw)

	st := p.Tasks(ShadowPass(light.ID))
	total := 0
	for _, pool := range st.ForwardCasters() {
		total += len(pool)
	}
	if total != 2 {
		t.Errorf("shadow casters = %d, want both forward surfaces", total)
	}
	if len(st.ForwardRelative) != 1 {
		t.Error("relative-pool surface should cast a shadow")
	}
}

func TestReflectionPassCollectsNoProbes(t *testing.T) {
	p := newTestPlanner()
	probeMsg := RenderLightProbe{ID: 1, Enabled: true, Origin: mgl32.Vec3{0, 2, 0},
		Bounds: geom.AABB{Min: mgl32.Vec3{-5, 0, -5}, Max: mgl32.Vec3{5, 4, 5}}}

	draw := p.BeginFrame([]Message{createCube(), probeMsg,
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Transform: mgl32.Ident4()}})
	p.CategorizeNormal(testInput(true), draw)

	pass := p.CategorizeReflection(1, probeMsg.Origin, probeMsg.Bounds, true, draw)
	rt := p.Tasks(pass)
	if len(rt.Probes) != 0 {
		t.Error("reflection passes must not collect probes; that bounds the bake recursion")
	}
	if len(p.Tasks(NormalPass).Probes) != 1 {
		t.Error("normal pass should hold the declared probe")
	}
	if g := rt.Deferred[GroupKey{Geometry: cubeTag, Material: DefaultMaterial()}]; g == nil || len(g.Instances) != 1 {
		t.Error("reflection pass should still bucket geometry inside the probe bounds")
	}
}

func TestReflectionPassCarriesItsOwnLights(t *testing.T) {
	p := newTestPlanner()
	light := lights.Light{ID: 4, Kind: lights.KindPoint, Rotation: mgl32.QuatIdent(),
		Origin: mgl32.Vec3{1, 2, 1}, Range: 15}
	region := geom.AABB{Min: mgl32.Vec3{-5, 0, -5}, Max: mgl32.Vec3{5, 4, 5}}

	draw := p.BeginFrame([]Message{RenderLight{Light: light}})
	p.CategorizeNormal(testInput(true), draw)
	pass := p.CategorizeReflection(1, mgl32.Vec3{0, 2, 0}, region, true, draw)

	rt := p.Tasks(pass)
	if len(rt.Lights) != 1 || rt.Lights[0].ID != light.ID {
		t.Error("a reflection pass should carry the frame's lights in its own bucket")
	}
}

func TestPassBucketAgeing(t *testing.T) {
	p := newTestPlanner()
	in := testInput(true)
	light := lights.Light{ID: 3, Kind: lights.KindPoint, Rotation: mgl32.QuatIdent(),
		Range: 10, DesireShadows: true}

	draw := p.BeginFrame([]Message{createCube(), RenderLight{Light: light}})
	p.CategorizeNormal(in, draw)
	p.PlanShadows(in, draw)
	if p.PassCount() != 2 {
		t.Fatalf("pass count = %d, want 2", p.PassCount())
	}
	p.EndFrame(nil)

	// The light never comes back; its bucket should age out.
	for i := 0; i < passBucketTTL; i++ {
		p.BeginFrame(nil)
		p.Tasks(NormalPass)
		p.EndFrame(nil)
	}
	if p.PassCount() != 1 {
		t.Errorf("pass count after ageing = %d, want only the normal pass", p.PassCount())
	}
}

func TestControlMessagesAreConsumedOnce(t *testing.T) {
	p := newTestPlanner()
	cfg := ConfigureLighting{Ambient: mgl32.Vec3{0.1, 0.2, 0.3}, SkyIntensity: 2}

	draw := p.BeginFrame([]Message{createCube(), cfg,
		ConfigureSSAO{Enabled: true, Radius: 1, Strength: 0.7},
		RenderModel{Model: cubeTag, Material: DefaultMaterial(), Transform: mgl32.Ident4()}})

	if len(draw) != 1 {
		t.Fatalf("draw messages = %d, want only the surface", len(draw))
	}
	if p.Lighting() != cfg {
		t.Error("lighting configuration was not applied")
	}
	if !p.SSAO().Enabled || p.SSAO().Strength != 0.7 {
		t.Error("ssao configuration was not applied")
	}
	if _, ok := p.cache.Resolve(cubeTag); !ok {
		t.Error("created model should resolve from the cache")
	}
}

func TestNonModelGeometryIsIgnored(t *testing.T) {
	p := newTestPlanner()
	texTag := assets.Tag{Package: "world", Name: "just-a-texture"}
	p.cache.RegisterProcedural(texTag, &assets.Texture{})

	draw := p.BeginFrame([]Message{
		RenderModel{Model: texTag, Material: DefaultMaterial(), Transform: mgl32.Ident4()},
	})
	p.CategorizeNormal(testInput(true), draw)

	if len(p.Tasks(NormalPass).Deferred) != 0 {
		t.Error("referencing a non-model as geometry should be a logged no-op")
	}
}
