package scene

import (
	"log"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/go-gl/mathgl/mgl32"
)

// sceneConfig collects the options shared by every scene. Scene constructors fill in their own
// defaults before applying options.
type sceneConfig struct {
	name       string
	vertPath   string
	fragPath   string
	bindings   shader.Bindings
	clearColor mgl32.Vec4
	width      int
	height     int
	step       float32
	logger     *log.Logger

	params spirograph.Params

	lightPosition mgl32.Vec3
	viewPosition  mgl32.Vec3
	rotation      float32
	rotationAxis  mgl32.Vec3
}

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(c *sceneConfig)

// WithName overrides the scene's identifier.
func WithName(name string) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.name = name
	}
}

// WithShaders sets the vertex and fragment source files.
//
// Parameters:
//   - vertPath: path to the vertex stage source
//   - fragPath: path to the fragment stage source
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaders(vertPath, fragPath string) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.vertPath = vertPath
		c.fragPath = fragPath
	}
}

// WithBindings sets the shader variable names resolved after linking.
//
// Parameters:
//   - b: semantic to variable-name mappings
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithBindings(b shader.Bindings) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.bindings = b
	}
}

// WithClearColor sets the frame clear color.
func WithClearColor(color mgl32.Vec4) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.clearColor = color
	}
}

// WithViewport sets the initial framebuffer size used for the projection aspect ratio.
//
// Parameters:
//   - width, height: framebuffer size in pixels
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithViewport(width, height int) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.width = width
		c.height = height
	}
}

// WithStep sets the animation clock step per tick. Zero keeps the scene's default.
func WithStep(step float32) SceneBuilderOption {
	return func(c *sceneConfig) {
		if step != 0 {
			c.step = step
		}
	}
}

// WithLogger redirects the scene's and its shader manager's log output.
func WithLogger(l *log.Logger) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.logger = l
	}
}

// WithParams sets the initial spirograph parameters. They are clamped to their limits.
// Ignored by scenes that do not draw a curve.
//
// Parameters:
//   - p: the curve parameters
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithParams(p spirograph.Params) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.params = p.Clamp()
	}
}

// WithLight sets the light and viewer positions pushed as L_p and E.
// Ignored by unlit scenes.
//
// Parameters:
//   - light: the light position
//   - view: the viewer position used for specular highlights
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(light, view mgl32.Vec3) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.lightPosition = light
		c.viewPosition = view
	}
}

// WithRotation sets the model rotation applied each tick.
//
// Parameters:
//   - angle: radians per tick
//   - axis: the rotation axis
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRotation(angle float32, axis mgl32.Vec3) SceneBuilderOption {
	return func(c *sceneConfig) {
		c.rotation = angle
		c.rotationAxis = axis
	}
}
