package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if !cfg.Renderer.ShadowsEnabled {
		t.Error("expected shadows enabled by default")
	}
	if cfg.Renderer.ShadowResolution != 2048 {
		t.Errorf("expected shadow resolution 2048, got %d", cfg.Renderer.ShadowResolution)
	}
	if !cfg.Renderer.SSAOEnabled {
		t.Error("expected ssao enabled by default")
	}
	if cfg.Renderer.SkipCulling {
		t.Error("expected culling enabled by default")
	}
	if cfg.Renderer.ProbeFaceSize != 256 {
		t.Errorf("expected probe face size 256, got %d", cfg.Renderer.ProbeFaceSize)
	}

	if cfg.Assets.Watch {
		t.Error("expected asset watching off by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "pyre.yaml")

	content := []byte(`
graphics:
  width: 1920
  height: 1080
renderer:
  shadow_resolution: 4096
  ssao_enabled: false
assets:
  roots: ["data", "mods"]
logging:
  level: debug
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if cfg.Renderer.ShadowResolution != 4096 {
		t.Errorf("expected shadow resolution 4096, got %d", cfg.Renderer.ShadowResolution)
	}
	if cfg.Renderer.SSAOEnabled {
		t.Error("expected ssao disabled from file")
	}
	// Values absent from the file keep their defaults.
	if !cfg.Renderer.ShadowsEnabled {
		t.Error("expected shadows to keep default true")
	}
	if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[0] != "data" {
		t.Errorf("expected roots [data mods], got %v", cfg.Assets.Roots)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", cfg.Logging.Level)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "sub", "pyre.yaml")

	cfg := Default()
	cfg.Graphics.Width = 800
	cfg.Renderer.ProbeFaceSize = 128

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}

	if loaded.Graphics.Width != 800 {
		t.Errorf("expected width 800 after round trip, got %d", loaded.Graphics.Width)
	}
	if loaded.Renderer.ProbeFaceSize != 128 {
		t.Errorf("expected probe face size 128 after round trip, got %d", loaded.Renderer.ProbeFaceSize)
	}
}
