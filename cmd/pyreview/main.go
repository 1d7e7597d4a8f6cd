// Package main is the pyre demo viewer: an orbit camera over a small
// procedurally built scene exercising the full pipeline.
package main

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/config"
	"github.com/ashkeep/pyre/internal/engine/assets"
	"github.com/ashkeep/pyre/internal/engine/camera"
	"github.com/ashkeep/pyre/internal/engine/input"
	"github.com/ashkeep/pyre/internal/engine/lights"
	"github.com/ashkeep/pyre/internal/engine/render"
	"github.com/ashkeep/pyre/internal/engine/terrain"
	"github.com/ashkeep/pyre/internal/engine/window"
	"github.com/ashkeep/pyre/internal/logger"
	"github.com/ashkeep/pyre/pkg/geom"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== pyre viewer ===")

	win, err := window.New(window.Config{
		Title:      "pyre",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		logger.Error("failed to create window", zap.Error(err))
		os.Exit(1)
	}
	defer win.Close()

	graph := assets.DirGraph{Roots: cfg.Assets.Roots}
	renderer, err := render.New(*cfg, graph, int32(cfg.Graphics.Width), int32(cfg.Graphics.Height), win.SwapBuffers)
	if err != nil {
		logger.Error("failed to create renderer", zap.Error(err))
		os.Exit(1)
	}
	defer renderer.CleanUp()

	if err := run(win, renderer); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

func run(win *window.Window, renderer *render.Renderer) error {
	cam := camera.NewOrbit()
	in := input.New()
	dragging := false

	frame := uint64(0)
	firstFrame := demoSetup()
	flare := renderer.Cache().RegisterAnonymous("demo", flareTexture(64))

	for {
		if in.Update() {
			return nil
		}
		for _, e := range in.Events() {
			switch e.Type {
			case input.EventMouseDown:
				if e.Button == sdl.BUTTON_LEFT {
					dragging = true
				}
			case input.EventMouseUp:
				if e.Button == sdl.BUTTON_LEFT {
					dragging = false
				}
			case input.EventMouseMove:
				if dragging {
					cam.Drag(float32(e.DeltaX), float32(e.DeltaY))
				}
			case input.EventMouseWheel:
				cam.Zoom(e.WheelY)
			case input.EventKeyDown:
				if e.Key == sdl.SCANCODE_ESCAPE {
					return nil
				}
				if e.Key == sdl.SCANCODE_R {
					renderer.Cache().RequestReload()
				}
			}
		}

		width, height := win.Size()
		msgs := demoFrame(frame, flare)
		if frame == 0 {
			msgs = append(firstFrame, msgs...)
		}

		renderer.Render(cam.FrameInput(width, height), msgs)
		renderer.Swap()
		frame++
	}
}

var (
	groundDesc = terrain.Descriptor{
		Bounds:   geom.AABB{Min: mgl32.Vec3{-40, 0, -40}, Max: mgl32.Vec3{40, 6, 40}},
		TilesX:   8,
		TilesZ:   8,
		Segments: 64,
	}
	pillarTag = assets.Tag{Package: "demo", Name: "pillar"}
)

// demoSetup emits the one-time messages: the procedural pillar model.
func demoSetup() []render.Message {
	return []render.Message{
		render.CreateModel{
			Tag:      pillarTag,
			Vertices: boxVertices(mgl32.Vec3{0.5, 3, 0.5}),
			Indices:  boxIndices(),
		},
		render.ConfigureLighting{Ambient: mgl32.Vec3{0.15, 0.15, 0.18}, SkyIntensity: 1},
		render.ConfigureSSAO{Enabled: true, Radius: 0.6, Bias: 0.02, Strength: 1},
	}
}

// demoFrame emits the per-frame scene: terrain, a ring of pillars, a sun, a
// moving point light with shadows, a probe over the center and a billboard.
func demoFrame(frame uint64, flare assets.Tag) []render.Message {
	angle := float32(frame) * 0.01
	msgs := []render.Message{
		render.RenderTerrain{Descriptor: groundDesc},
		render.RenderLight{Light: lights.Light{
			ID:            1,
			Kind:          lights.KindDirectional,
			Origin:        mgl32.Vec3{30, 50, 30},
			Rotation:      mgl32.QuatRotate(-2.3, mgl32.Vec3{1, 0, 0}),
			Color:         mgl32.Vec3{1, 0.96, 0.9},
			Intensity:     0.8,
			Range:         80,
			DesireShadows: true,
		}},
		render.RenderLight{Light: lights.Light{
			ID:            2,
			Kind:          lights.KindPoint,
			Origin:        mgl32.Vec3{12 * math32.Cos(angle), 4, 12 * math32.Sin(angle)},
			Rotation:      mgl32.QuatIdent(),
			Color:         mgl32.Vec3{1, 0.5, 0.2},
			Intensity:     2,
			Range:         18,
			DesireShadows: true,
		}},
		render.RenderLightProbe{
			ID:      1,
			Enabled: true,
			Origin:  mgl32.Vec3{0, 4, 0},
			Bounds:  geom.AABB{Min: mgl32.Vec3{-20, 0, -20}, Max: mgl32.Vec3{20, 12, 20}},
			Stale:   frame == 0,
		},
		render.RenderBillboard{
			Texture: flare,
			Origin:  mgl32.Vec3{0, 8, 0},
			Size:    mgl32.Vec2{2, 2},
			Style:   render.StyleForward,
		},
	}

	for i := 0; i < 8; i++ {
		a := float32(i) * 0.7853982
		msgs = append(msgs, render.RenderModel{
			Model:     pillarTag,
			Material:  render.Material{Tint: mgl32.Vec4{0.8, 0.8, 0.85, 1}, Specular: 0.3},
			Transform: mgl32.Translate3D(15*math32.Cos(a), 3, 15*math32.Sin(a)),
		})
	}
	return msgs
}

// flareTexture builds a soft radial gradient for the demo billboard.
func flareTexture(size int) *assets.Texture {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := float32(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float32(x) + 0.5 - half) / half
			dy := (float32(y) + 0.5 - half) / half
			d := math32.Sqrt(dx*dx + dy*dy)
			a := uint8(255 * clamp01(1-d))
			img.SetRGBA(x, y, color.RGBA{255, 240, 200, a})
		}
	}
	return &assets.Texture{Image: img}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func boxVertices(half mgl32.Vec3) []assets.ModelVertex {
	hx, hy, hz := half[0], half[1], half[2]
	type face struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
	}

	uvs := [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	verts := make([]assets.ModelVertex, 0, 24)
	for _, f := range faces {
		for i, c := range f.corners {
			verts = append(verts, assets.ModelVertex{Position: c, Normal: f.normal, TexCoord: uvs[i]})
		}
	}
	return verts
}

func boxIndices() []uint32 {
	idx := make([]uint32, 0, 36)
	for f := uint32(0); f < 6; f++ {
		base := f * 4
		idx = append(idx, base, base+1, base+2, base+2, base+3, base)
	}
	return idx
}
