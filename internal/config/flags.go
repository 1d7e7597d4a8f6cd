package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagNoShadows  = flag.Bool("no-shadows", false, "Disable shadow mapping")
	flagNoSSAO     = flag.Bool("no-ssao", false, "Disable ambient occlusion")
	flagNoCull     = flag.Bool("no-cull", false, "Disable frustum culling")
	flagWatch      = flag.Bool("watch", false, "Reload asset packages on file changes")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagNoShadows {
		cfg.Renderer.ShadowsEnabled = false
	}
	if *flagNoSSAO {
		cfg.Renderer.SSAOEnabled = false
	}
	if *flagNoCull {
		cfg.Renderer.SkipCulling = true
	}
	if *flagWatch {
		cfg.Assets.Watch = true
	}
}
