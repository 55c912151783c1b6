package scene

import (
	"fmt"
	"log"

	"github.com/Carmen-Shannon/oxy-spiro/engine/animation"
	"github.com/Carmen-Shannon/oxy-spiro/engine/camera"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/go-gl/mathgl/mgl32"
)

// Scene owns one shader program, its geometry, an animation clock and a camera.
// The frame driver calls Setup once, then Update and Draw once per tick, and Release on shutdown.
// A Scene is not safe for concurrent use; every call happens on the render thread.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Setup compiles the scene's program and creates its buffers.
	// Shader failures are logged and do not fail setup; buffer allocation failures do.
	//
	// Parameters:
	//   - r: the renderer the scene draws with
	//
	// Returns:
	//   - error: if GPU buffers could not be created
	Setup(r renderer.Renderer) error

	// Update advances the animation by one tick and refreshes the geometry.
	Update()

	// Draw pushes uniforms, binds every attribute stream and issues one draw call.
	// Must be called between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - r: the renderer passed to Setup
	Draw(r renderer.Renderer)

	// Resize updates the projection for a new framebuffer size.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	Resize(width, height int)

	// ClearColor returns the color the frame is cleared to before the scene draws.
	ClearColor() mgl32.Vec4

	// VertexCount returns the number of vertices the next Draw will submit.
	VertexCount() int

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Clock returns the scene's animation clock.
	Clock() *animation.Clock

	// Program returns the scene's shader program, or nil before Setup.
	Program() *shader.Program

	// Buffers returns the scene's geometry, or nil before Setup.
	Buffers() *geometry.Buffers

	// Release frees the program and buffers.
	Release()
}

// ParamReceiver is implemented by scenes that accept spirograph parameter changes.
type ParamReceiver interface {
	// SetParams clamps and applies new curve parameters. The curve restarts from empty.
	//
	// Parameters:
	//   - p: the new parameters
	SetParams(p spirograph.Params)

	// Params returns the parameters in effect.
	Params() spirograph.Params
}

// sceneBase holds what both scenes share: configuration, program, buffers, clock and camera.
type sceneBase struct {
	sceneConfig

	program *shader.Program
	buffers *geometry.Buffers
	clock   *animation.Clock
	camera  camera.Camera

	topology renderer.Topology
	invalid  bool
}

func (s *sceneBase) Name() string {
	return s.name
}

func (s *sceneBase) ClearColor() mgl32.Vec4 {
	return s.clearColor
}

func (s *sceneBase) Camera() camera.Camera {
	return s.camera
}

func (s *sceneBase) Clock() *animation.Clock {
	return s.clock
}

func (s *sceneBase) Program() *shader.Program {
	return s.program
}

func (s *sceneBase) Buffers() *geometry.Buffers {
	return s.buffers
}

func (s *sceneBase) VertexCount() int {
	if s.buffers == nil {
		return 0
	}
	return s.buffers.VertexCount()
}

func (s *sceneBase) Resize(width, height int) {
	s.camera.SetViewport(width, height)
}

// setup loads the program and allocates the buffer set.
func (s *sceneBase) setup(r renderer.Renderer, usage geometry.Usage, withColor bool) error {
	m := shader.NewManager(r, shader.WithLogger(s.logger))
	s.program = m.LoadProgram(s.vertPath, s.fragPath, s.bindings)

	b, err := geometry.NewBuffers(r, usage, withColor)
	if err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	s.buffers = b
	return nil
}

// draw sets the shared uniforms, binds every stream whose attribute is active and draws.
// extra sets scene-specific uniforms after the shared ones.
func (s *sceneBase) draw(r renderer.Renderer, extra func(p *shader.Program)) {
	if s.program == nil || s.buffers == nil {
		return
	}
	if err := s.buffers.Validate(); err != nil {
		if !s.invalid {
			s.logger.Printf("[Scene] %s: skipping draw: %v", s.name, err)
			s.invalid = true
		}
		return
	}
	s.invalid = false

	p := s.program
	r.UseProgram(p.Handle())

	t := s.camera.Transforms()
	r.SetMatrix4(p.Uniform(shader.ModelView), t.ModelView)
	r.SetMatrix4(p.Uniform(shader.Projection), t.Projection)
	r.SetMatrix3(p.Uniform(shader.NormalMatrix), t.NormalMatrix)
	r.SetFloat(p.Uniform(shader.Time), s.clock.Time())
	if extra != nil {
		extra(p)
	}

	for _, st := range s.buffers.Streams() {
		r.BindAttribute(p.Attribute(st.Attribute), st.Buffer, st.Components)
	}
	r.Draw(s.topology, 0, s.buffers.VertexCount())
}

func (s *sceneBase) Release() {
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.buffers != nil {
		s.buffers.Release()
		s.buffers = nil
	}
}

// New creates a scene by name: "spirograph" or "lit".
//
// Parameters:
//   - name: the scene kind
//   - options: functional options applied on top of the scene's defaults
//
// Returns:
//   - Scene: the scene, not yet set up
//   - error: if the name is unknown
func New(name string, options ...SceneBuilderOption) (Scene, error) {
	switch name {
	case SpirographName:
		return NewSpirograph(options...), nil
	case LitName:
		return NewLit(options...), nil
	default:
		return nil, fmt.Errorf("unknown scene %q", name)
	}
}

func defaultLogger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
