package render

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/engine/framebuffer"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/shader"
	"github.com/ashkeep/pyre/internal/engine/texture"
	"github.com/ashkeep/pyre/internal/logger"
)

const (
	irradianceFaceSize = 32
	envFilterFaceSize  = 128
)

// baker maintains the baked light map per active probe. A stale or new probe
// triggers a full reflection-pass render from the probe's origin into a cube
// capture, followed by the two convolution derivations; the raw capture is
// discarded afterwards. Reflection passes collect no probes themselves, so
// the recursion never exceeds one extra level.
type baker struct {
	maps     map[int64]*lights.LightMap
	list     []*lights.LightMap
	faceSize int32

	progIrradiance *shaderHandle
	progEnvFilter  *shaderHandle
}

// shaderHandle defers program compilation until the first bake so a renderer
// with no probes never pays for the convolution programs.
type shaderHandle struct {
	vertex   string
	fragment string
	prog     uint32
	failed   bool
}

func newBaker(faceSize int32) *baker {
	return &baker{
		maps:           make(map[int64]*lights.LightMap),
		faceSize:       faceSize,
		progIrradiance: &shaderHandle{vertex: captureVertexSrc, fragment: irradianceConvFragmentSrc},
		progEnvFilter:  &shaderHandle{vertex: captureVertexSrc, fragment: envConvFragmentSrc},
	}
}

// Maps returns the current baked set, reusing one backing slice per frame.
func (b *baker) Maps() []*lights.LightMap {
	b.list = b.list[:0]
	for _, lm := range b.maps {
		b.list = append(b.list, lm)
	}
	return b.list
}

// Bake refreshes or rebuilds the light map of every probe declared in the
// top-level pass, and evicts maps whose probes disappeared.
func (b *baker) Bake(p *Planner, in FrameInput, draw []Message, pipe *pipeline) {
	nt := p.Tasks(NormalPass)

	for id, state := range nt.Probes {
		if lm, ok := b.maps[id]; ok && !state.Stale {
			lm.Enabled = state.Enabled
			lm.Origin = state.Origin
			lm.Bounds = state.Bounds
			continue
		}
		b.evict(id)
		b.bakeOne(p, in, draw, pipe, id, state)
	}

	for id := range b.maps {
		if _, present := nt.Probes[id]; !present {
			b.evict(id)
		}
	}
}

func (b *baker) bakeOne(p *Planner, in FrameInput, draw []Message, pipe *pipeline, id int64, state ProbeState) {
	pass := p.CategorizeReflection(id, state.Origin, state.Bounds, in.SkipCulling, draw)
	tasks := p.Tasks(pass)

	capture, err := framebuffer.NewCubeTarget(b.faceSize)
	if err != nil {
		logger.Error("probe capture target", zap.Int64("probe", id), zap.Error(err))
		return
	}
	defer capture.Destroy()

	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 1000)
	for face := 0; face < 6; face++ {
		capture.BindFace(face)
		view := cubeFaceView(face, state.Origin)
		pipe.run(p, tasks, view, proj, state.Origin, b.Maps(),
			capture.FBO(), b.faceSize, b.faceSize)
	}
	capture.Unbind()

	irr := b.convolve(b.progIrradiance, capture.Cube, irradianceFaceSize, pipe)
	env := b.convolve(b.progEnvFilter, capture.Cube, envFilterFaceSize, pipe)

	b.maps[id] = &lights.LightMap{
		ID:          id,
		Enabled:     state.Enabled,
		Origin:      state.Origin,
		Bounds:      state.Bounds,
		Irradiance:  irr,
		Environment: env,
	}
}

// convolve renders the capture cube through a convolution program into a new
// cube texture and returns it, or 0 on failure.
func (b *baker) convolve(h *shaderHandle, captureCube uint32, faceSize int32, pipe *pipeline) uint32 {
	prog, ok := h.compile()
	if !ok {
		return 0
	}

	target, err := framebuffer.NewCubeTarget(faceSize)
	if err != nil {
		logger.Error("probe convolution target", zap.Error(err))
		return 0
	}
	defer target.Destroy()

	gl.UseProgram(prog)
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1, 0.1, 10)
	projLoc := gl.GetUniformLocation(prog, gl.Str("uProjection\x00"))
	viewLoc := gl.GetUniformLocation(prog, gl.Str("uView\x00"))
	gl.UniformMatrix4fv(projLoc, 1, false, &proj[0])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, captureCube)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("uCapture\x00")), 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(pipe.cubeVAO)
	for face := 0; face < 6; face++ {
		target.BindFace(face)
		view := cubeFaceView(face, mgl32.Vec3{})
		gl.UniformMatrix4fv(viewLoc, 1, false, &view[0])
		gl.DrawArrays(gl.TRIANGLES, 0, 36)
	}
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
	target.Unbind()

	return target.DetachCube()
}

func (h *shaderHandle) compile() (uint32, bool) {
	if h.failed {
		return 0, false
	}
	if h.prog != 0 {
		return h.prog, true
	}
	prog, err := shader.CompileProgram(h.vertex, h.fragment)
	if err != nil {
		h.failed = true
		logger.Error("probe convolution program", zap.Error(err))
		return 0, false
	}
	h.prog = prog
	return prog, true
}

func (b *baker) evict(id int64) {
	lm, ok := b.maps[id]
	if !ok {
		return
	}
	if lm.Irradiance != 0 {
		texture.Delete(lm.Irradiance)
	}
	if lm.Environment != 0 {
		texture.Delete(lm.Environment)
	}
	delete(b.maps, id)
}

func (b *baker) destroy() {
	for id := range b.maps {
		b.evict(id)
	}
	for _, h := range []*shaderHandle{b.progIrradiance, b.progEnvFilter} {
		if h.prog != 0 {
			gl.DeleteProgram(h.prog)
			h.prog = 0
		}
	}
}

// cubeFaceView returns the view matrix for one cube face (+X, -X, +Y, -Y,
// +Z, -Z) looking out from origin.
func cubeFaceView(face int, origin mgl32.Vec3) mgl32.Mat4 {
	dirs := [6]mgl32.Vec3{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	ups := [6]mgl32.Vec3{
		{0, -1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
		{0, -1, 0}, {0, -1, 0},
	}
	return mgl32.LookAtV(origin, origin.Add(dirs[face]), ups[face])
}
