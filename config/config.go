// Package config loads the demo's YAML configuration and watches it for spirograph parameter changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-spiro/common"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/scene"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ErrUnknownScene is returned when the scene field names neither the spirograph nor the lit scene.
var ErrUnknownScene = errors.New("config: unknown scene")

// ShaderDir is the directory scene shaders are read from when no explicit paths are configured.
const ShaderDir = "assets/shaders"

// maxConfigSize bounds the file read by Load.
const maxConfigSize = 1 << 20

// Config is the full demo configuration.
type Config struct {
	Scene      string           `yaml:"scene"`
	Window     WindowConfig     `yaml:"window"`
	Renderer   RendererConfig   `yaml:"renderer"`
	Shaders    ShaderConfig     `yaml:"shaders"`
	Spirograph SpirographConfig `yaml:"spirograph"`
	Lit        LitConfig        `yaml:"lit"`
	Profile    bool             `yaml:"profile"`
	FrameLimit float64          `yaml:"frame_limit"` // ticks per second, 0 = unlimited
}

// WindowConfig sizes and names the window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RendererConfig selects and tunes the GPU backend.
type RendererConfig struct {
	Backend              string    `yaml:"backend"` // gl | wgpu
	VSync                bool      `yaml:"vsync"`
	ForceFallbackAdapter bool      `yaml:"force_fallback_adapter"`
	ClearColor           []float32 `yaml:"clear_color"`
}

// ShaderConfig overrides the scene's shader sources. Empty paths select the scene's own shaders
// for the configured backend.
type ShaderConfig struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// SpirographConfig holds the curve parameters and the time step per tick.
type SpirographConfig struct {
	Params spirograph.Params `yaml:"params"`
	Step   float32           `yaml:"step"`
}

// LitConfig holds the lit triangle settings.
type LitConfig struct {
	Step     float32   `yaml:"step"`
	Rotation float32   `yaml:"rotation"`
	Axis     []float32 `yaml:"axis"`
	Light    []float32 `yaml:"light"`
	View     []float32 `yaml:"view"`
}

// Default returns the configuration the demo runs with when no file is given.
//
// Parameters:
//   - sceneName: "spirograph" or "lit"; anything else yields the spirograph defaults
//
// Returns:
//   - Config: the defaults for that scene
func Default(sceneName string) Config {
	cfg := Config{
		Scene: scene.SpirographName,
		Window: WindowConfig{
			Title:  "tsoberan - Spirograph",
			Width:  720,
			Height: 720,
		},
		Renderer: RendererConfig{
			Backend:    renderer.BackendTypeGL.String(),
			VSync:      true,
			ClearColor: []float32{1, 1, 1, 1},
		},
		Spirograph: SpirographConfig{
			Params: spirograph.DefaultParams(),
			Step:   0.001,
		},
		Lit: LitConfig{
			Step:     0.0001,
			Rotation: 0.01,
			Axis:     []float32{1, 1, 0},
			Light:    []float32{1, 1, 1},
			View:     []float32{0, 0, 6},
		},
	}

	if sceneName == scene.LitName {
		cfg.Scene = scene.LitName
		cfg.Window = WindowConfig{Title: "Simple GL Test", Width: 1280, Height: 720}
		cfg.Renderer.ClearColor = []float32{0, 0, 0, 1}
	}
	return cfg
}

// Load reads a YAML configuration file. Keys missing from the file keep the defaults of the scene
// the file names.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the merged configuration
//   - error: if the file cannot be read or parsed, or it fails Validate
func Load(path string) (Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config: %s is larger than %d bytes", path, maxConfigSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration bytes on top of the defaults of the scene they name.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: the merged configuration
//   - error: if the document cannot be parsed, or it fails Validate
func Parse(data []byte) (Config, error) {
	var probe struct {
		Scene string `yaml:"scene"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	cfg := Default(probe.Scene)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	def := Default(probe.Scene)
	cfg.Scene = common.Coalesce(cfg.Scene, def.Scene)
	cfg.Window.Title = common.Coalesce(cfg.Window.Title, def.Window.Title)
	cfg.Window.Width = common.Coalesce(cfg.Window.Width, def.Window.Width)
	cfg.Window.Height = common.Coalesce(cfg.Window.Height, def.Window.Height)
	cfg.Renderer.Backend = common.Coalesce(cfg.Renderer.Backend, def.Renderer.Backend)
	cfg.Spirograph.Params = cfg.Spirograph.Params.Clamp()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the scene name, the backend name and the length of every vector field.
//
// Returns:
//   - error: ErrUnknownScene, or a descriptive error for the first bad field
func (c Config) Validate() error {
	if c.Scene != scene.SpirographName && c.Scene != scene.LitName {
		return fmt.Errorf("%w: %q", ErrUnknownScene, c.Scene)
	}
	if _, err := renderer.ParseBackendType(c.Renderer.Backend); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("config: negative window size %dx%d", c.Window.Width, c.Window.Height)
	}

	vectors := []struct {
		name string
		v    []float32
		n    int
	}{
		{"renderer.clear_color", c.Renderer.ClearColor, 4},
		{"lit.axis", c.Lit.Axis, 3},
		{"lit.light", c.Lit.Light, 3},
		{"lit.view", c.Lit.View, 3},
	}
	for _, f := range vectors {
		if len(f.v) != f.n {
			return fmt.Errorf("config: %s wants %d components, got %d", f.name, f.n, len(f.v))
		}
	}
	return nil
}

// BackendType returns the parsed renderer backend. Call after Validate.
func (c Config) BackendType() renderer.RendererBackendType {
	t, _ := renderer.ParseBackendType(c.Renderer.Backend)
	return t
}

// ShaderPaths returns the vertex and fragment sources for the configured scene and backend.
// Explicit paths win; otherwise the scene's GLSL files are used, or their .wgsl twins for WebGPU.
//
// Returns:
//   - string: vertex stage path
//   - string: fragment stage path
func (c Config) ShaderPaths() (string, string) {
	base := "gles"
	if c.Scene == scene.LitName {
		base = "light"
	}

	vert := filepath.Join(ShaderDir, base+".vert")
	frag := filepath.Join(ShaderDir, base+".frag")
	if c.BackendType() == renderer.BackendTypeWGPU {
		vert += ".wgsl"
		frag += ".wgsl"
	}

	return common.Coalesce(c.Shaders.Vertex, vert), common.Coalesce(c.Shaders.Fragment, frag)
}

// WindowOptions returns the window options for this configuration. The client API follows the backend.
func (c Config) WindowOptions() []window.WindowBuilderOption {
	api := window.ClientAPIOpenGL
	if c.BackendType() == renderer.BackendTypeWGPU {
		api = window.ClientAPINone
	}
	return []window.WindowBuilderOption{
		window.WithTitle(c.Window.Title),
		window.WithSize(c.Window.Width, c.Window.Height),
		window.WithClientAPI(api),
	}
}

// RendererOptions returns the renderer options for this configuration.
func (c Config) RendererOptions() []renderer.RendererBuilderOption {
	mode := renderer.PresentModeUncapped
	if c.Renderer.VSync {
		mode = renderer.PresentModeVSync
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithClearColor(c.clearColor()),
		renderer.WithForceSoftwareRenderer(c.Renderer.ForceFallbackAdapter),
	}
}

// SceneOptions returns the scene options for this configuration.
func (c Config) SceneOptions() []scene.SceneBuilderOption {
	vert, frag := c.ShaderPaths()
	opts := []scene.SceneBuilderOption{
		scene.WithShaders(vert, frag),
		scene.WithClearColor(c.clearColor()),
		scene.WithViewport(c.Window.Width, c.Window.Height),
	}

	switch c.Scene {
	case scene.LitName:
		opts = append(opts,
			scene.WithStep(c.Lit.Step),
			scene.WithRotation(c.Lit.Rotation, vec3(c.Lit.Axis)),
			scene.WithLight(vec3(c.Lit.Light), vec3(c.Lit.View)),
		)
	default:
		opts = append(opts,
			scene.WithStep(c.Spirograph.Step),
			scene.WithParams(c.Spirograph.Params),
		)
	}
	return opts
}

func (c Config) clearColor() mgl32.Vec4 {
	var v mgl32.Vec4
	copy(v[:], c.Renderer.ClearColor)
	return v
}

func vec3(s []float32) mgl32.Vec3 {
	var v mgl32.Vec3
	copy(v[:], s)
	return v
}
