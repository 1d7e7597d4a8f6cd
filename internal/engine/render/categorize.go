package render

import (
	"fmt"
	"image"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/shadow"
	"github.com/ashkeep/pyre/internal/engine/terrain"
	"github.com/ashkeep/pyre/internal/logger"
	"github.com/ashkeep/pyre/pkg/geom"
)

// Frustums are the top-level culling volumes supplied by the camera.
type Frustums struct {
	Interior geom.Frustum
	Exterior geom.Frustum
	Imposter geom.Frustum
}

// FrameInput is everything one render call needs besides its messages.
type FrameInput struct {
	SkipCulling    bool
	Frustums       Frustums
	LightInfluence geom.AABB
	EyeCenter      mgl32.Vec3
	EyeRotation    mgl32.Quat
	Width          int32
	Height         int32
}

// builtinPackage holds assets the renderer itself registers.
const builtinPackage = "pyre.builtin"

// BillboardQuad is the shared unit quad all billboards instance.
var BillboardQuad = assets.Tag{Package: builtinPackage, Name: "billboard-quad"}

// cullContext is the pass-appropriate visibility test. The top-level pass
// accepts a volume seen by any view frustum or touching the light-influence
// box; a shadow pass uses the light's single frustum; a reflection pass
// captures all directions, so it tests against the probe's bounds region.
type cullContext struct {
	skip bool
	kind PassKind

	frustums geom.Frustum // shadow passes
	top      Frustums
	lightBox geom.AABB
	region   geom.AABB

	// origin is the pass's reference point for distances and fades.
	origin   mgl32.Vec3
	rotation mgl32.Quat
}

func (c cullContext) visible(s geom.Sphere) bool {
	if c.skip {
		return true
	}
	switch c.kind {
	case PassNormal:
		return c.top.Interior.ContainsSphere(s) ||
			c.top.Exterior.ContainsSphere(s) ||
			c.top.Imposter.ContainsSphere(s) ||
			c.lightBox.IntersectsSphere(s)
	case PassShadow:
		return c.frustums.ContainsSphere(s)
	default:
		return c.region.IntersectsSphere(s)
	}
}

// Planner owns all per-frame planning state: pass buckets, the shadow plan,
// the terrain geometry cache and frame-wide lighting configuration. It is
// GL-free; meshes it builds carry zero GL handles until the uploader touches
// them.
type Planner struct {
	cache    *assets.Cache
	terrains *terrain.Cache
	passes   map[Pass]*Tasks
	plan     *shadow.Plan
	frame    uint64

	lighting ConfigureLighting
	ssao     ConfigureSSAO
}

// NewPlanner wires a planner to its asset cache and registers the built-in
// billboard quad.
func NewPlanner(cache *assets.Cache) *Planner {
	p := &Planner{
		cache:    cache,
		terrains: terrain.NewCache(),
		passes:   make(map[Pass]*Tasks),
		plan:     shadow.NewPlan(),
		lighting: ConfigureLighting{Ambient: mgl32.Vec3{0.2, 0.2, 0.2}, SkyIntensity: 1},
		ssao:     ConfigureSSAO{Radius: 0.5, Bias: 0.025, Strength: 1},
	}
	cache.RegisterProcedural(BillboardQuad, billboardQuadModel())
	return p
}

func billboardQuadModel() *assets.Model {
	h := float32(0.5)
	return &assets.Model{
		Vertices: []assets.ModelVertex{
			{Position: mgl32.Vec3{-h, -h, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{h, -h, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{h, h, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-h, h, 0}, Normal: mgl32.Vec3{0, 0, 1}, TexCoord: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 2, 3, 0},
		Bounds:  geom.AABB{Min: mgl32.Vec3{-h, -h, 0}, Max: mgl32.Vec3{h, h, 0}},
	}
}

// Tasks returns the bucket for a pass, creating it lazily and stamping its
// last-used frame.
func (p *Planner) Tasks(pass Pass) *Tasks {
	t, ok := p.passes[pass]
	if !ok {
		t = newTasks()
		p.passes[pass] = t
	}
	t.lastUsed = p.frame
	return t
}

// PassCount reports how many pass buckets currently exist.
func (p *Planner) PassCount() int {
	return len(p.passes)
}

// Plan exposes this frame's shadow slot assignments.
func (p *Planner) Plan() *shadow.Plan {
	return p.plan
}

// Lighting returns the frame's lighting configuration.
func (p *Planner) Lighting() ConfigureLighting {
	return p.lighting
}

// SSAO returns the frame's ambient-occlusion configuration.
func (p *Planner) SSAO() ConfigureSSAO {
	return p.ssao
}

// Terrains exposes the terrain geometry cache.
func (p *Planner) Terrains() *terrain.Cache {
	return p.terrains
}

// Frame returns the current frame counter.
func (p *Planner) Frame() uint64 {
	return p.frame
}

// BeginFrame advances the frame counter, applies control messages once and
// returns the remaining draw messages for per-pass categorization.
func (p *Planner) BeginFrame(msgs []Message) []Message {
	p.frame++
	draw := msgs[:0:0]
	for _, m := range msgs {
		switch m := m.(type) {
		case CreateModel:
			p.createModel(m)
		case DestroyModel:
			p.cache.DestroyProcedural(m.Tag)
		case ConfigureLighting:
			p.lighting = m
		case ConfigureSSAO:
			p.ssao = m
		case LoadPackage:
			p.cache.Load(m.Name)
		case UnloadPackage:
			p.cache.Unload(m.Name)
		case ReloadPackages:
			p.cache.RequestReload()
		default:
			draw = append(draw, m)
		}
	}
	return draw
}

func (p *Planner) createModel(m CreateModel) {
	bounds := geom.EmptyAABB()
	for _, v := range m.Vertices {
		bounds = bounds.ExtendPoint(v.Position)
	}
	model := &assets.Model{
		Vertices: m.Vertices,
		Indices:  m.Indices,
		Bounds:   bounds,
	}
	p.cache.RegisterProcedural(m.Tag, model)
}

// CategorizeNormal buckets the draw messages for the top-level pass.
func (p *Planner) CategorizeNormal(in FrameInput, draw []Message) {
	ctx := cullContext{
		skip:     in.SkipCulling,
		kind:     PassNormal,
		top:      in.Frustums,
		lightBox: in.LightInfluence,
		origin:   in.EyeCenter,
		rotation: in.EyeRotation,
	}
	p.categorize(NormalPass, ctx, draw)
}

// CategorizeReflection buckets the draw messages for one probe's reflection
// pass. Probe declarations are ignored inside it, which is what bounds the
// bake recursion to a single extra level.
func (p *Planner) CategorizeReflection(probeID int64, origin mgl32.Vec3, region geom.AABB, skipCulling bool, draw []Message) Pass {
	pass := ReflectionPass(probeID)
	ctx := cullContext{
		skip:     skipCulling,
		kind:     PassReflection,
		region:   region,
		origin:   origin,
		rotation: mgl32.QuatIdent(),
	}
	p.categorize(pass, ctx, draw)
	return pass
}

// PlanShadows assigns shadow slots to the frame's shadow-desiring lights,
// nearest first with directional lights taking priority, and buckets each
// assigned light's casters under its shadow pass.
func (p *Planner) PlanShadows(in FrameInput, draw []Message) {
	p.plan.Reset()
	nt := p.Tasks(NormalPass)

	cands := make([]lights.Light, 0, len(nt.Lights))
	for _, l := range nt.Lights {
		if l.DesireShadows {
			cands = append(cands, l)
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		di, dj := cands[i].Kind == lights.KindDirectional, cands[j].Kind == lights.KindDirectional
		if di != dj {
			return di
		}
		return cands[i].Origin.Sub(in.EyeCenter).LenSqr() < cands[j].Origin.Sub(in.EyeCenter).LenSqr()
	})

	for _, l := range cands {
		slot, ok := p.plan.Assign(l)
		if !ok {
			logger.WarnOnce(fmt.Sprintf("shadow-overflow:%d", l.ID),
				"no shadow slot available", zap.Int64("light", l.ID))
			continue
		}
		ctx := cullContext{
			skip:     in.SkipCulling,
			kind:     PassShadow,
			frustums: geom.FrustumFromMatrix(p.plan.Matrix(slot)),
			origin:   l.Origin,
			rotation: l.Rotation,
		}
		p.categorize(ShadowPass(l.ID), ctx, draw)
	}
}

func (p *Planner) categorize(pass Pass, ctx cullContext, draw []Message) {
	t := p.Tasks(pass)
	for _, m := range draw {
		switch m := m.(type) {
		case RenderSkyBox:
			if pass.Kind != PassShadow {
				tag := m.CubeMap
				t.SkyBox = &tag
			}
		case RenderLightProbe:
			// Reflection passes never collect probes; that is the
			// recursion guard.
			if pass.Kind == PassNormal {
				t.Probes[m.ID] = ProbeState{
					Enabled: m.Enabled,
					Origin:  m.Origin,
					Bounds:  m.Bounds,
					Stale:   m.Stale,
				}
			}
		case RenderLight:
			if pass.Kind != PassShadow {
				t.Lights = append(t.Lights, m.Light)
			}
		case RenderModel:
			p.insertSurface(t, ctx, surfaceDraw{
				geometry:  m.Model,
				material:  m.Material,
				transform: m.Transform,
				inset:     mgl32.Vec4{0, 0, 1, 1},
				style:     m.Style,
				sortKey:   m.SortKey,
				subSort:   m.SubSort,
				relative:  m.RelativeToEye,
				fadeStart: m.FadeStart,
				fadeEnd:   m.FadeEnd,
			})
		case RenderSurface:
			p.insertSurface(t, ctx, surfaceDraw{
				geometry:  m.Geometry,
				material:  m.Material,
				transform: m.Transform,
				inset:     m.Inset,
				style:     m.Style,
				sortKey:   m.SortKey,
				subSort:   m.SubSort,
				relative:  m.RelativeToEye,
				fadeStart: m.FadeStart,
				fadeEnd:   m.FadeEnd,
			})
		case RenderBillboard:
			p.insertBillboard(t, ctx, m)
		case RenderTerrain:
			p.insertTerrain(t, ctx, m)
		}
	}
}

// surfaceDraw is the normalized form model, surface and billboard messages
// reduce to before culling and bucket insertion.
type surfaceDraw struct {
	geometry  assets.Tag
	material  Material
	transform mgl32.Mat4
	inset     mgl32.Vec4
	style     Style
	sortKey   int32
	subSort   float32
	relative  bool
	fadeStart float32
	fadeEnd   float32
}

func (p *Planner) insertSurface(t *Tasks, ctx cullContext, d surfaceDraw) {
	model, ok := p.resolveModel(d.geometry)
	if !ok {
		return
	}
	bounds := model.Bounds.Transform(d.transform)
	sphere := bounds.BoundingSphere()
	if !ctx.visible(sphere) {
		return
	}

	tint := d.material.Tint
	if d.fadeEnd > d.fadeStart {
		alpha := fadeAlpha(sphere.Center.Sub(ctx.origin).Len(), d.fadeStart, d.fadeEnd)
		if alpha <= 0 {
			return
		}
		tint[3] *= alpha
	}

	inst := Instance{Transform: d.transform, Inset: d.inset, Tint: tint}
	if d.style == StyleDeferred {
		t.insertDeferred(GroupKey{Geometry: d.geometry, Material: d.material}, inst)
		return
	}
	t.insertForward(ForwardEntry{
		Geometry: d.geometry,
		Material: d.material,
		Instance: inst,
		Bounds:   bounds,
		SortKey:  d.sortKey,
		SubSort:  d.subSort,
		DistSq:   sphere.Center.Sub(ctx.origin).LenSqr(),
	}, d.relative)
}

func (p *Planner) insertBillboard(t *Tasks, ctx cullContext, m RenderBillboard) {
	var orient mgl32.Mat4
	if m.UprightOnly {
		orient = mgl32.HomogRotate3DY(geom.YawToward(m.Origin, ctx.origin))
	} else {
		orient = ctx.rotation.Mat4()
	}
	transform := mgl32.Translate3D(m.Origin[0], m.Origin[1], m.Origin[2]).
		Mul4(orient).
		Mul4(mgl32.Scale3D(m.Size[0], m.Size[1], 1))

	tint := m.Tint
	if tint == (mgl32.Vec4{}) {
		tint = mgl32.Vec4{1, 1, 1, 1}
	}
	p.insertSurface(t, ctx, surfaceDraw{
		geometry:  BillboardQuad,
		material:  Material{Diffuse: m.Texture, Tint: tint},
		transform: transform,
		inset:     mgl32.Vec4{0, 0, 1, 1},
		style:     m.Style,
		sortKey:   m.SortKey,
		subSort:   m.SubSort,
	})
}

func (p *Planner) insertTerrain(t *Tasks, ctx cullContext, m RenderTerrain) {
	if !ctx.visible(m.Descriptor.Bounds.BoundingSphere()) {
		return
	}
	mesh, ok := p.terrains.Lookup(m.Descriptor)
	if !ok {
		mesh = terrain.Build(m.Descriptor, p.terrainSource(m))
		p.terrains.Store(m.Descriptor, mesh)
	}
	t.Terrain = append(t.Terrain, TerrainInstance{
		Descriptor: m.Descriptor,
		Mesh:       mesh,
		Layers:     m.Layers,
	})
}

func (p *Planner) terrainSource(m RenderTerrain) terrain.Source {
	src := terrain.Source{HeightScale: m.HeightScale}
	if img, ok := p.resolveImage(m.HeightMap); ok {
		src.HeightImage = img
	}
	if img, ok := p.resolveImage(m.NormalMap); ok {
		src.NormalImage = img
	}
	if img, ok := p.resolveImage(m.BlendMap); ok {
		src.BlendImage = img
	}
	for _, tag := range m.BlendLayers {
		if img, ok := p.resolveImage(tag); ok {
			src.BlendLayers = append(src.BlendLayers, img)
		}
	}
	if img, ok := p.resolveImage(m.TintMap); ok {
		src.TintImage = img
	}
	return src
}

func (p *Planner) resolveModel(tag assets.Tag) (*assets.Model, bool) {
	res, ok := p.cache.Resolve(tag)
	if !ok {
		return nil, false
	}
	model, ok := res.(*assets.Model)
	if !ok {
		logger.InfoOnce("not-a-model:"+tag.Package+"/"+tag.Name,
			"asset referenced as model geometry has a different kind",
			zap.String("package", tag.Package), zap.String("name", tag.Name))
		return nil, false
	}
	return model, true
}

func (p *Planner) resolveImage(tag assets.Tag) (*image.RGBA, bool) {
	if tag == (assets.Tag{}) {
		return nil, false
	}
	res, found := p.cache.Resolve(tag)
	if !found {
		return nil, false
	}
	tex, isTex := res.(*assets.Texture)
	if !isTex {
		logger.InfoOnce("not-an-image:"+tag.Package+"/"+tag.Name,
			"asset referenced as image data has a different kind",
			zap.String("package", tag.Package), zap.String("name", tag.Name))
		return nil, false
	}
	return tex.Image, true
}

func fadeAlpha(dist, start, end float32) float32 {
	if dist <= start {
		return 1
	}
	if dist >= end {
		return 0
	}
	return (end - dist) / (end - start)
}

// EndFrame runs the frame's cache bookkeeping: terrain sweep, pass-bucket
// clearing and TTL eviction, then any deferred asset reload.
func (p *Planner) EndFrame(destroyMesh func(*terrain.Mesh)) {
	p.terrains.Sweep(destroyMesh)
	for pass, t := range p.passes {
		if p.frame-t.lastUsed >= passBucketTTL {
			delete(p.passes, pass)
			continue
		}
		t.clear()
	}
	p.cache.EndFrame()
}
