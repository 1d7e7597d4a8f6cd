package render

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ashkeep/pyre/internal/config"
	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/framebuffer"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/shader"
	"github.com/ashkeep/pyre/internal/engine/shadow"
	"github.com/ashkeep/pyre/internal/engine/terrain"
)

// pipeline owns the intermediate render targets and shader programs for one
// output resolution and runs the fixed stage sequence for a pass. The main
// window pipeline and the probe-capture pipeline are separate instances
// sharing the same shadow maps and uploader.
type pipeline struct {
	cfg    config.RendererConfig
	width  int32
	height int32

	gbuf       *framebuffer.GBuffer
	coverage   *framebuffer.Target
	irradiance *framebuffer.Target
	envFilter  *framebuffer.Target
	ssaoRaw    *framebuffer.Target
	ssaoBlur   *framebuffer.Target
	composite  *framebuffer.Target

	progGeometry   *shader.Program
	progTerrain    *shader.Program
	progShadowCast *shader.Program
	progCoverage   *shader.Program
	progIrradiance *shader.Program
	progEnvFilter  *shader.Program
	progSSAO       *shader.Program
	progSSAOBlur   *shader.Program
	progComposite  *shader.Program
	progSkyBox     *shader.Program
	progForward    *shader.Program
	progFXAA       *shader.Program

	quadVAO uint32
	quadVBO uint32
	cubeVAO uint32
	cubeVBO uint32

	shadowMaps *shadow.Maps
	up         *uploader

	deferredSel *lights.Selector
	forwardSel  *lights.Selector

	ssaoKernel []float32
}

func newPipeline(cfg config.RendererConfig, width, height int32, maps *shadow.Maps, up *uploader) (*pipeline, error) {
	pl := &pipeline{
		cfg:         cfg,
		shadowMaps:  maps,
		up:          up,
		deferredSel: lights.NewSelector(lights.MaxDeferred),
		forwardSel:  lights.NewSelector(lights.MaxForward),
		ssaoKernel:  ssaoKernel(),
	}

	type programSpec struct {
		dst      **shader.Program
		name     string
		vertex   string
		fragment string
	}
	specs := []programSpec{
		{&pl.progGeometry, "geometry", geometryVertexSrc, geometryFragmentSrc},
		{&pl.progTerrain, "terrain", terrainVertexSrc, terrainFragmentSrc},
		{&pl.progShadowCast, "shadow-cast", shadowCastVertexSrc, shadowCastFragmentSrc},
		{&pl.progCoverage, "coverage", screenVertexSrc, coverageFragmentSrc},
		{&pl.progIrradiance, "irradiance", screenVertexSrc, irradianceFragmentSrc},
		{&pl.progEnvFilter, "env-filter", screenVertexSrc, envFilterFragmentSrc},
		{&pl.progSSAO, "ssao", screenVertexSrc, ssaoFragmentSrc},
		{&pl.progSSAOBlur, "ssao-blur", screenVertexSrc, ssaoBlurFragmentSrc},
		{&pl.progComposite, "composite", screenVertexSrc, compositeFragmentSrc},
		{&pl.progSkyBox, "sky-box", skyBoxVertexSrc, skyBoxFragmentSrc},
		{&pl.progForward, "forward", forwardVertexSrc, forwardFragmentSrc},
		{&pl.progFXAA, "fxaa", screenVertexSrc, fxaaFragmentSrc},
	}
	for _, s := range specs {
		prog, err := shader.NewProgram(s.vertex, s.fragment)
		if err != nil {
			pl.destroy()
			return nil, fmt.Errorf("%s program: %w", s.name, err)
		}
		*s.dst = prog
	}

	pl.quadVAO, pl.quadVBO = shader.FullscreenQuad()
	pl.cubeVAO, pl.cubeVBO = unitCube()

	if err := pl.resize(width, height); err != nil {
		pl.destroy()
		return nil, err
	}
	return pl, nil
}

// resize (re)creates the screen-sized intermediate targets.
func (pl *pipeline) resize(width, height int32) error {
	if width == pl.width && height == pl.height {
		return nil
	}
	pl.destroyTargets()
	pl.width, pl.height = width, height

	var err error
	if pl.gbuf, err = framebuffer.NewGBuffer(width, height); err != nil {
		return fmt.Errorf("g-buffer: %w", err)
	}
	targets := []struct {
		dst    **framebuffer.Target
		name   string
		format int32
	}{
		{&pl.coverage, "coverage", gl.R16F},
		{&pl.irradiance, "irradiance", gl.RGBA16F},
		{&pl.envFilter, "env-filter", gl.RGBA16F},
		{&pl.ssaoRaw, "ssao", gl.R16F},
		{&pl.ssaoBlur, "ssao-blur", gl.R16F},
		{&pl.composite, "composite", gl.RGBA16F},
	}
	for _, t := range targets {
		target, terr := framebuffer.NewTarget(width, height, t.format, t.dst == &pl.composite)
		if terr != nil {
			return fmt.Errorf("%s target: %w", t.name, terr)
		}
		*t.dst = target
	}
	return nil
}

// renderShadows renders and blurs every assigned shadow slot. Runs before
// any geometry pass reads the shadow textures.
func (pl *pipeline) renderShadows(p *Planner) {
	if !pl.cfg.ShadowsEnabled {
		return
	}
	plan := p.Plan()
	nt := p.Tasks(NormalPass)
	for _, l := range nt.Lights {
		slot := plan.SlotFor(l.ID)
		if slot < 0 {
			continue
		}
		t := p.Tasks(ShadowPass(l.ID))
		pl.shadowMaps.Bind(slot)
		pl.renderCasters(t, plan.Matrix(slot), l.Origin)
		pl.shadowMaps.Unbind()
		pl.shadowMaps.Blur(slot)
	}
}

func (pl *pipeline) renderCasters(t *Tasks, lightSpace mgl32.Mat4, lightPos mgl32.Vec3) {
	prog := pl.progShadowCast
	prog.Use()
	prog.SetMat4("uLightSpace", lightSpace)
	prog.SetVec3("uLightPos", lightPos)

	for key, g := range t.Deferred {
		pl.drawGroupGeometry(prog, key.Geometry, g.Instances)
	}
	for _, pool := range t.ForwardCasters() {
		for _, e := range pool {
			pl.drawGroupGeometry(prog, e.Geometry, []Instance{e.Instance})
		}
	}
	for _, ti := range t.Terrain {
		pl.up.terrainMesh(ti.Mesh)
		if ti.Mesh.VAO == 0 {
			continue
		}
		prog.SetMat4("uModel", mgl32.Ident4())
		gl.BindVertexArray(ti.Mesh.VAO)
		gl.DrawElements(gl.TRIANGLES, int32(len(ti.Mesh.Indices)), gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

func (pl *pipeline) drawGroupGeometry(prog *shader.Program, tag assets.Tag, insts []Instance) {
	model, ok := pl.resolveUploadedModel(tag)
	if !ok {
		return
	}
	gl.BindVertexArray(model.VAO)
	for _, inst := range insts {
		prog.SetMat4("uModel", inst.Transform)
		gl.DrawElements(gl.TRIANGLES, int32(len(model.Indices)), gl.UNSIGNED_INT, nil)
	}
}

func (pl *pipeline) resolveUploadedModel(tag assets.Tag) (*assets.Model, bool) {
	res, ok := pl.up.cache.Resolve(tag)
	if !ok {
		return nil, false
	}
	model, ok := res.(*assets.Model)
	if !ok {
		return nil, false
	}
	pl.up.model(model)
	if model.VAO == 0 {
		return nil, false
	}
	return model, true
}

// run executes the fixed stage sequence for one pass and writes the final
// anti-aliased image into outFBO at the given viewport size.
func (pl *pipeline) run(p *Planner, t *Tasks, view, proj mgl32.Mat4, eye mgl32.Vec3, baked []*lights.LightMap, outFBO uint32, outW, outH int32) {
	// Stage 1: G-buffer geometry.
	pl.gbuf.Bind()
	pl.stageGeometry(t, view, proj)
	pl.gbuf.Unbind()

	mapSel := pl.deferredSel.SelectMaps(baked, eye, nil)

	// Stage 2: light-map coverage.
	if pl.cfg.LightMapsEnabled {
		pl.stageCoverage(mapSel)
	} else {
		pl.coverage.Bind()
		pl.coverage.Clear(-1, 0, 0, 1)
		pl.coverage.Unbind()
	}

	skyCube := uint32(0)
	if t.SkyBox != nil {
		skyCube = pl.up.cubeMap(*t.SkyBox)
	}

	// Stages 3 and 4: ambient irradiance and filtered environment.
	pl.stageIrradiance(p, mapSel, skyCube)
	pl.stageEnvFilter(p, mapSel, skyCube, eye)

	// Stage 5: SSAO plus its box filter.
	if pl.cfg.SSAOEnabled && p.SSAO().Enabled {
		pl.stageSSAO(p, view, proj)
	}

	// Stage 6: lighting composite, depth copied from the G-buffer first.
	sel := pl.deferredSel.Select(t.Lights, eye, nil, p.Plan().SlotFor)
	pl.composite.Bind()
	pl.composite.Clear(0, 0, 0, 1)
	pl.gbuf.BlitDepthTo(pl.composite.FBO(), pl.width, pl.height)
	pl.stageComposite(p, sel, eye)

	// Stage 7: sky box, only when one was registered this frame.
	if skyCube != 0 {
		pl.stageSkyBox(p, skyCube, view, proj)
	}

	// Stage 8: sorted forward transparents, per-surface light selection.
	pl.stageForward(p, t, baked, view, proj, eye)
	pl.composite.Unbind()

	// Stage 9: anti-aliased resolve into the caller's target.
	gl.BindFramebuffer(gl.FRAMEBUFFER, outFBO)
	gl.Viewport(0, 0, outW, outH)
	gl.Disable(gl.DEPTH_TEST)
	pl.progFXAA.Use()
	pl.bindTexture(0, pl.composite.ColorTexture())
	pl.progFXAA.SetInt("uInput", 0)
	pl.drawQuad()
	gl.Enable(gl.DEPTH_TEST)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (pl *pipeline) stageGeometry(t *Tasks, view, proj mgl32.Mat4) {
	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.BLEND)

	prog := pl.progGeometry
	prog.Use()
	prog.SetMat4("uView", view)
	prog.SetMat4("uProjection", proj)
	for key, g := range t.Deferred {
		if len(g.Instances) == 0 {
			continue
		}
		model, ok := pl.resolveUploadedModel(key.Geometry)
		if !ok {
			continue
		}
		pl.bindTexture(0, pl.up.texture(key.Material.Diffuse))
		prog.SetInt("uDiffuse", 0)
		prog.SetFloat("uSpecular", key.Material.Specular)
		prog.SetFloat("uEmissive", key.Material.Emissive)
		gl.BindVertexArray(model.VAO)
		for _, inst := range g.Instances {
			prog.SetMat4("uModel", inst.Transform)
			prog.SetVec4("uInset", inst.Inset)
			prog.SetVec4("uTint", inst.Tint)
			gl.DrawElements(gl.TRIANGLES, int32(len(model.Indices)), gl.UNSIGNED_INT, nil)
		}
	}

	if len(t.Terrain) > 0 {
		tprog := pl.progTerrain
		tprog.Use()
		tprog.SetMat4("uView", view)
		tprog.SetMat4("uProjection", proj)
		for _, ti := range t.Terrain {
			pl.up.terrainMesh(ti.Mesh)
			if ti.Mesh.VAO == 0 {
				continue
			}
			for layer := 0; layer < terrain.MaxLayers; layer++ {
				pl.bindTexture(uint32(layer), pl.up.texture(ti.Layers[layer]))
				tprog.SetInt(fmt.Sprintf("uLayers[%d]", layer), int32(layer))
			}
			gl.BindVertexArray(ti.Mesh.VAO)
			gl.DrawElements(gl.TRIANGLES, int32(len(ti.Mesh.Indices)), gl.UNSIGNED_INT, nil)
		}
	}
	gl.BindVertexArray(0)
}

func (pl *pipeline) stageCoverage(mapSel *lights.MapSelection) {
	pl.coverage.Bind()
	pl.coverage.Clear(-1, 0, 0, 1)
	prog := pl.progCoverage
	prog.Use()
	pl.bindTexture(0, pl.gbuf.Position)
	prog.SetInt("uPosition", 0)
	prog.SetInt("uMapCount", int32(mapSel.Count))
	prog.SetVec3s("uMapOrigins", mapSel.Origins)
	prog.SetVec3s("uMapBoundsMin", mapSel.BoundsMin)
	prog.SetVec3s("uMapBoundsMax", mapSel.BoundsMax)
	pl.drawQuad()
	pl.coverage.Unbind()
}

func (pl *pipeline) stageIrradiance(p *Planner, mapSel *lights.MapSelection, skyCube uint32) {
	pl.irradiance.Bind()
	pl.irradiance.Clear(0, 0, 0, 1)
	prog := pl.progIrradiance
	prog.Use()
	pl.bindTexture(0, pl.gbuf.Normal)
	prog.SetInt("uNormal", 0)
	pl.bindTexture(1, pl.coverage.ColorTexture())
	prog.SetInt("uCoverage", 1)
	pl.bindCube(2, skyCube)
	prog.SetInt("uSky", 2)
	prog.SetInt("uHasSky", boolToInt(skyCube != 0))
	for i := 0; i < mapSel.Count; i++ {
		pl.bindCube(uint32(3+i), mapSel.Maps[i].Irradiance)
		prog.SetInt(fmt.Sprintf("uMapIrradiance[%d]", i), int32(3+i))
	}
	prog.SetInt("uMapCount", int32(mapSel.Count))
	prog.SetVec3("uAmbient", p.Lighting().Ambient)
	prog.SetFloat("uSkyIntensity", p.Lighting().SkyIntensity)
	pl.drawQuad()
	pl.irradiance.Unbind()
}

func (pl *pipeline) stageEnvFilter(p *Planner, mapSel *lights.MapSelection, skyCube uint32, eye mgl32.Vec3) {
	pl.envFilter.Bind()
	pl.envFilter.Clear(0, 0, 0, 1)
	prog := pl.progEnvFilter
	prog.Use()
	pl.bindTexture(0, pl.gbuf.Position)
	prog.SetInt("uPosition", 0)
	pl.bindTexture(1, pl.gbuf.Normal)
	prog.SetInt("uNormal", 1)
	pl.bindTexture(2, pl.coverage.ColorTexture())
	prog.SetInt("uCoverage", 2)
	pl.bindCube(3, skyCube)
	prog.SetInt("uSky", 3)
	prog.SetInt("uHasSky", boolToInt(skyCube != 0))
	for i := 0; i < mapSel.Count; i++ {
		pl.bindCube(uint32(4+i), mapSel.Maps[i].Environment)
		prog.SetInt(fmt.Sprintf("uMapEnvironment[%d]", i), int32(4+i))
	}
	prog.SetInt("uMapCount", int32(mapSel.Count))
	prog.SetVec3("uEye", eye)
	prog.SetFloat("uSkyIntensity", p.Lighting().SkyIntensity)
	pl.drawQuad()
	pl.envFilter.Unbind()
}

func (pl *pipeline) stageSSAO(p *Planner, view, proj mgl32.Mat4) {
	cfg := p.SSAO()

	pl.ssaoRaw.Bind()
	pl.ssaoRaw.Clear(1, 0, 0, 1)
	prog := pl.progSSAO
	prog.Use()
	pl.bindTexture(0, pl.gbuf.Position)
	prog.SetInt("uPosition", 0)
	pl.bindTexture(1, pl.gbuf.Normal)
	prog.SetInt("uNormal", 1)
	prog.SetMat4("uView", view)
	prog.SetMat4("uProjection", proj)
	prog.SetVec3s("uKernel", pl.ssaoKernel)
	prog.SetFloat("uRadius", cfg.Radius)
	prog.SetFloat("uBias", cfg.Bias)
	pl.drawQuad()
	pl.ssaoRaw.Unbind()

	pl.ssaoBlur.Bind()
	blur := pl.progSSAOBlur
	blur.Use()
	pl.bindTexture(0, pl.ssaoRaw.ColorTexture())
	blur.SetInt("uInput", 0)
	blur.SetVec2("uDirection", 1, 0)
	pl.drawQuad()
	pl.ssaoBlur.Unbind()
}

func (pl *pipeline) stageComposite(p *Planner, sel *lights.Selection, eye mgl32.Vec3) {
	gl.Disable(gl.DEPTH_TEST)
	prog := pl.progComposite
	prog.Use()

	inputs := []struct {
		name string
		tex  uint32
	}{
		{"uPosition", pl.gbuf.Position},
		{"uAlbedo", pl.gbuf.Albedo},
		{"uMaterial", pl.gbuf.Material},
		{"uNormal", pl.gbuf.Normal},
		{"uIrradiance", pl.irradiance.ColorTexture()},
		{"uEnvFilter", pl.envFilter.ColorTexture()},
		{"uSSAO", pl.ssaoBlur.ColorTexture()},
	}
	for i, in := range inputs {
		pl.bindTexture(uint32(i), in.tex)
		prog.SetInt(in.name, int32(i))
	}
	prog.SetInt("uSSAOEnabled", boolToInt(pl.cfg.SSAOEnabled && p.SSAO().Enabled))
	prog.SetFloat("uAOStrength", p.SSAO().Strength)
	prog.SetVec3("uEye", eye)

	prog.SetInt("uLightCount", int32(sel.Count))
	prog.SetVec3s("uLightPositions", sel.Positions)
	prog.SetVec3s("uLightDirections", sel.Directions)
	prog.SetVec3s("uLightColors", sel.Colors)
	prog.SetInts("uLightKinds", sel.Kinds)
	prog.SetFloats("uLightIntensities", sel.Intensities)
	prog.SetFloats("uLightRanges", sel.Ranges)
	prog.SetFloats("uLightCones", sel.ConeAngles)
	prog.SetInts("uLightShadowSlots", sel.ShadowSlots)

	prog.SetInt("uShadowsEnabled", boolToInt(pl.cfg.ShadowsEnabled))
	if pl.cfg.ShadowsEnabled {
		matrices := make([]mgl32.Mat4, shadow.MaxSlots)
		for slot := 0; slot < shadow.MaxSlots; slot++ {
			pl.bindTexture(uint32(len(inputs)+slot), pl.shadowMaps.Texture(slot))
			prog.SetInt(fmt.Sprintf("uShadowMaps[%d]", slot), int32(len(inputs)+slot))
			matrices[slot] = p.Plan().Matrix(slot)
		}
		prog.SetMat4s("uShadowMatrices", matrices)
	}

	pl.drawQuad()
	gl.Enable(gl.DEPTH_TEST)
}

func (pl *pipeline) stageSkyBox(p *Planner, skyCube uint32, view, proj mgl32.Mat4) {
	gl.DepthFunc(gl.LEQUAL)
	prog := pl.progSkyBox
	prog.Use()
	prog.SetMat4("uView", view)
	prog.SetMat4("uProjection", proj)
	prog.SetFloat("uIntensity", p.Lighting().SkyIntensity)
	pl.bindCube(0, skyCube)
	prog.SetInt("uSky", 0)
	gl.BindVertexArray(pl.cubeVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
	gl.DepthFunc(gl.LESS)
}

func (pl *pipeline) stageForward(p *Planner, t *Tasks, baked []*lights.LightMap, view, proj mgl32.Mat4, eye mgl32.Vec3) {
	if len(t.ForwardAbsolute) == 0 && len(t.ForwardRelative) == 0 {
		return
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)

	prog := pl.progForward
	prog.Use()
	prog.SetMat4("uView", view)
	prog.SetMat4("uProjection", proj)
	prog.SetVec3("uEye", eye)

	sortForward(t.ForwardAbsolute)
	sortForward(t.ForwardRelative)
	for _, pool := range [][]ForwardEntry{t.ForwardAbsolute, t.ForwardRelative} {
		for i := range pool {
			pl.drawForward(p, t, baked, &pool[i])
		}
	}

	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (pl *pipeline) drawForward(p *Planner, t *Tasks, baked []*lights.LightMap, e *ForwardEntry) {
	model, ok := pl.resolveUploadedModel(e.Geometry)
	if !ok {
		return
	}

	// Each surface re-selects lights and light maps against its own bounds,
	// from the executing pass's own light list.
	center := e.Bounds.Center()
	sel := pl.forwardSel.Select(t.Lights, center, &e.Bounds, p.Plan().SlotFor)
	mapSel := pl.forwardSel.SelectMaps(baked, center, &e.Bounds)

	prog := pl.progForward
	pl.bindTexture(0, pl.up.texture(e.Material.Diffuse))
	prog.SetInt("uDiffuse", 0)
	hasMap := pl.cfg.LightMapsEnabled && mapSel.Count > 0
	if hasMap {
		pl.bindCube(1, mapSel.Maps[0].Irradiance)
		prog.SetInt("uIrradianceMap", 1)
	}
	prog.SetInt("uHasIrradiance", boolToInt(hasMap))
	prog.SetVec4("uTint", e.Instance.Tint)
	prog.SetVec4("uInset", e.Instance.Inset)
	prog.SetMat4("uModel", e.Instance.Transform)
	prog.SetVec3("uAmbient", p.Lighting().Ambient)
	prog.SetInt("uLightCount", int32(sel.Count))
	prog.SetVec3s("uLightPositions", sel.Positions)
	prog.SetVec3s("uLightDirections", sel.Directions)
	prog.SetVec3s("uLightColors", sel.Colors)
	prog.SetInts("uLightKinds", sel.Kinds)
	prog.SetFloats("uLightIntensities", sel.Intensities)
	prog.SetFloats("uLightRanges", sel.Ranges)

	gl.BindVertexArray(model.VAO)
	gl.DrawElements(gl.TRIANGLES, int32(len(model.Indices)), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// sortForward orders a pool back to front: sort key, then squared distance
// (farther first), then sub-sort.
func sortForward(pool []ForwardEntry) {
	sort.SliceStable(pool, func(i, j int) bool {
		a, b := pool[i], pool[j]
		if a.SortKey != b.SortKey {
			return a.SortKey < b.SortKey
		}
		if a.DistSq != b.DistSq {
			return a.DistSq > b.DistSq
		}
		return a.SubSort < b.SubSort
	})
}

func (pl *pipeline) drawQuad() {
	gl.BindVertexArray(pl.quadVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (pl *pipeline) bindTexture(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, tex)
}

func (pl *pipeline) bindCube(unit uint32, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)
}

func (pl *pipeline) destroyTargets() {
	if pl.gbuf != nil {
		pl.gbuf.Destroy()
		pl.gbuf = nil
	}
	for _, t := range []**framebuffer.Target{
		&pl.coverage, &pl.irradiance, &pl.envFilter,
		&pl.ssaoRaw, &pl.ssaoBlur, &pl.composite,
	} {
		if *t != nil {
			(*t).Destroy()
			*t = nil
		}
	}
}

func (pl *pipeline) destroy() {
	pl.destroyTargets()
	for _, prog := range []*shader.Program{
		pl.progGeometry, pl.progTerrain, pl.progShadowCast, pl.progCoverage,
		pl.progIrradiance, pl.progEnvFilter, pl.progSSAO, pl.progSSAOBlur,
		pl.progComposite, pl.progSkyBox, pl.progForward, pl.progFXAA,
	} {
		if prog != nil {
			prog.Destroy()
		}
	}
	if pl.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &pl.quadVAO)
		gl.DeleteBuffers(1, &pl.quadVBO)
		pl.quadVAO, pl.quadVBO = 0, 0
	}
	if pl.cubeVAO != 0 {
		gl.DeleteVertexArrays(1, &pl.cubeVAO)
		gl.DeleteBuffers(1, &pl.cubeVBO)
		pl.cubeVAO, pl.cubeVBO = 0, 0
	}
}

// ssaoKernel builds the 16 hemisphere sample offsets, denser near the
// origin.
func ssaoKernel() []float32 {
	kernel := make([]float32, 0, 16*3)
	for i := 0; i < 16; i++ {
		t := float32(i) / 16
		scale := 0.1 + 0.9*t*t
		angle := float32(i) * 2.3999631 // golden angle
		x := math32.Cos(angle) * (0.3 + 0.7*t)
		y := math32.Sin(angle) * (0.3 + 0.7*t)
		z := 0.3 + 0.7*(1-t)
		v := mgl32.Vec3{x, y, z}.Normalize().Mul(scale)
		kernel = append(kernel, v[0], v[1], v[2])
	}
	return kernel
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// unitCube builds a 36-vertex position-only cube for sky box and capture
// convolution draws.
func unitCube() (vao, vbo uint32) {
	vertices := []float32{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, 1, 1, -1, -1, 1, -1, -1, -1, -1,
		-1, -1, 1, 1, 1, 1, 1, -1, 1, 1, 1, 1, -1, -1, 1, -1, 1, 1,
		-1, 1, 1, -1, 1, -1, -1, -1, -1, -1, -1, -1, -1, -1, 1, -1, 1, 1,
		1, 1, 1, 1, -1, -1, 1, 1, -1, 1, -1, -1, 1, 1, 1, 1, -1, 1,
		-1, -1, -1, 1, -1, -1, 1, -1, 1, 1, -1, 1, -1, -1, 1, -1, -1, -1,
		-1, 1, -1, 1, 1, 1, 1, 1, -1, 1, 1, 1, -1, 1, -1, -1, 1, 1,
	}
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.BindVertexArray(0)
	return vao, vbo
}
