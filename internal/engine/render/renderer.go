package render

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/config"
	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/shadow"
	"github.com/ashkeep/pyre/internal/logger"
)

// Renderer is the subsystem facade: one Render call per frame consumes the
// frame's messages and issues all GPU work in program order. A renderer
// instance exclusively owns its caches; there is no shared mutable state
// between instances.
//
// New must be called after a GL context exists on the current thread.
type Renderer struct {
	cfg     config.RendererConfig
	cache   *assets.Cache
	planner *Planner
	up      *uploader

	shadowMaps *shadow.Maps
	main       *pipeline
	probePipe  *pipeline
	baker      *baker

	present func()
}

// New builds a renderer over an asset graph. present is invoked by Swap to
// show the finished frame; nil is allowed for offscreen use. Construction
// failures are fatal to the caller: the pipeline cannot run without its
// fixed GPU resources.
func New(cfg config.Config, graph assets.Graph, width, height int32, present func()) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	r := &Renderer{
		cfg:     cfg.Renderer,
		present: present,
	}

	r.cache = assets.NewCache(graph)
	r.cache.OnEvict = EvictResource
	if cfg.Assets.Watch && len(cfg.Assets.Roots) > 0 {
		if err := r.cache.Watch(cfg.Assets.Roots); err != nil {
			logger.Warn("asset watch disabled", zap.Error(err))
		}
	}

	r.planner = NewPlanner(r.cache)
	r.up = newUploader(r.cache)

	shadowRes := int32(cfg.Renderer.ShadowResolution)
	if shadowRes <= 0 {
		shadowRes = shadow.HighResolution
	}
	var err error
	if r.shadowMaps, err = shadow.NewMaps(shadowRes); err != nil {
		return nil, fmt.Errorf("shadow maps: %w", err)
	}

	if r.main, err = newPipeline(cfg.Renderer, width, height, r.shadowMaps, r.up); err != nil {
		return nil, fmt.Errorf("main pipeline: %w", err)
	}

	probeFace := int32(cfg.Renderer.ProbeFaceSize)
	if probeFace <= 0 {
		probeFace = 256
	}
	if r.probePipe, err = newPipeline(cfg.Renderer, probeFace, probeFace, r.shadowMaps, r.up); err != nil {
		return nil, fmt.Errorf("probe pipeline: %w", err)
	}
	r.baker = newBaker(probeFace)

	return r, nil
}

// Planner exposes the planning state for inspection.
func (r *Renderer) Planner() *Planner {
	return r.planner
}

// Cache exposes the asset cache so callers can pre-register procedural
// assets outside the message stream.
func (r *Renderer) Cache() *assets.Cache {
	return r.cache
}

// Render runs one frame: categorize, plan and render shadows, bake stale
// probes, run the top-level pipeline into the default framebuffer, then do
// end-of-frame cache bookkeeping.
func (r *Renderer) Render(in FrameInput, msgs []Message) {
	if r.cfg.SkipCulling {
		in.SkipCulling = true
	}
	if err := r.main.resize(in.Width, in.Height); err != nil {
		logger.Error("pipeline resize", zap.Error(err))
		return
	}

	draw := r.planner.BeginFrame(msgs)
	r.planner.CategorizeNormal(in, draw)
	r.planner.PlanShadows(in, draw)

	// Shadow passes complete before anything reads the shadow textures,
	// including the probe bakes.
	r.main.renderShadows(r.planner)
	r.baker.Bake(r.planner, in, draw, r.probePipe)

	view := in.EyeRotation.Inverse().Mat4().Mul4(
		mgl32.Translate3D(-in.EyeCenter.X(), -in.EyeCenter.Y(), -in.EyeCenter.Z()))
	aspect := float32(in.Width) / float32(max32(in.Height, 1))
	proj := mgl32.Perspective(mgl32.DegToRad(60), aspect, 0.1, 1000)

	nt := r.planner.Tasks(NormalPass)
	r.main.run(r.planner, nt, view, proj, in.EyeCenter, r.baker.Maps(),
		0, in.Width, in.Height)

	r.planner.EndFrame(r.up.destroyMesh)
}

// Swap presents the finished frame.
func (r *Renderer) Swap() {
	if r.present != nil {
		r.present()
	}
}

// CleanUp releases every GPU resource and cache the renderer owns.
func (r *Renderer) CleanUp() {
	r.baker.destroy()
	r.probePipe.destroy()
	r.main.destroy()
	r.shadowMaps.Destroy()
	r.planner.Terrains().Clear(r.up.destroyMesh)
	r.up.destroy()
	r.cache.Close()
}

func max32(v, floor int32) int32 {
	if v < floor {
		return floor
	}
	return v
}
