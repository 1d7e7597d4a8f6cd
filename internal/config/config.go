// Package config handles viewer and renderer configuration loading.
package config

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Renderer RendererConfig `yaml:"renderer"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// RendererConfig holds pipeline settings.
type RendererConfig struct {
	ShadowsEnabled   bool `yaml:"shadows_enabled"`
	ShadowResolution int  `yaml:"shadow_resolution"` // high-resolution slot size, power of two
	SSAOEnabled      bool `yaml:"ssao_enabled"`
	LightMapsEnabled bool `yaml:"light_maps_enabled"`
	SkipCulling      bool `yaml:"skip_culling"`
	ProbeFaceSize    int  `yaml:"probe_face_size"` // cube capture face size for reflection baking
}

// AssetsConfig holds asset root paths and hot-reload settings.
type AssetsConfig struct {
	Roots []string `yaml:"roots"`
	Watch bool     `yaml:"watch"` // reload packages when files under Roots change
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Renderer: RendererConfig{
			ShadowsEnabled:   true,
			ShadowResolution: 2048,
			SSAOEnabled:      true,
			LightMapsEnabled: true,
			SkipCulling:      false,
			ProbeFaceSize:    256,
		},
		Assets: AssetsConfig{
			Roots: []string{"assets"},
			Watch: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
