package scene

import (
	"github.com/Carmen-Shannon/oxy-spiro/engine/animation"
	"github.com/Carmen-Shannon/oxy-spiro/engine/camera"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// LitName identifies the lit triangle scene.
const LitName = "lit"

// litScene draws one static, vertex-colored triangle lit by a point light and spun a little every tick.
type litScene struct {
	sceneBase
}

var _ Scene = &litScene{}

// NewLit creates the lit triangle scene: a red/green/blue triangle facing +z, a black background,
// a light at (1,1,1), the eye at (0,0,6), a clock oscillating in [0,1] by 0.0001 per tick and a
// rotation of 0.01 radians about (1,1,0) per tick.
//
// Parameters:
//   - options: functional options for the scene
//
// Returns:
//   - Scene: the scene, not yet set up
func NewLit(options ...SceneBuilderOption) Scene {
	cfg := sceneConfig{
		name:          LitName,
		vertPath:      "assets/shaders/light.vert",
		fragPath:      "assets/shaders/light.frag",
		bindings:      shader.DefaultBindings(),
		clearColor:    mgl32.Vec4{0, 0, 0, 1},
		width:         1280,
		height:        720,
		step:          0.0001,
		lightPosition: mgl32.Vec3{1, 1, 1},
		viewPosition:  mgl32.Vec3{0, 0, 6},
		rotation:      0.01,
		rotationAxis:  mgl32.Vec3{1, 1, 0},
	}
	for _, opt := range options {
		opt(&cfg)
	}
	cfg.logger = defaultLogger(cfg.logger)

	s := &litScene{
		sceneBase: sceneBase{
			sceneConfig: cfg,
			clock:       animation.NewClock(cfg.step, animation.WithBounds(0, 1)),
			topology:    renderer.TopologyTriangles,
		},
	}
	s.camera = camera.NewCamera(
		camera.WithEye(cfg.viewPosition),
		camera.WithViewport(cfg.width, cfg.height),
	)
	return s
}

// Setup uploads the triangle once.
func (s *litScene) Setup(r renderer.Renderer) error {
	if err := s.setup(r, geometry.UsageStatic, true); err != nil {
		return err
	}

	normal := mgl32.Vec3{0, 0, 1}
	vertices := []struct {
		pos   mgl32.Vec3
		color mgl32.Vec4
	}{
		{mgl32.Vec3{-1, -1, 0}, mgl32.Vec4{1, 0, 0, 1}},
		{mgl32.Vec3{1, -1, 0}, mgl32.Vec4{0, 1, 0, 1}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec4{0, 0, 1, 1}},
	}
	for _, v := range vertices {
		if err := s.buffers.AppendVertex(v.pos, normal, v.color); err != nil {
			return err
		}
	}
	return s.buffers.Upload()
}

// Update advances the oscillating clock and spins the model.
func (s *litScene) Update() {
	s.clock.Advance()
	s.camera.Rotate(s.rotation, s.rotationAxis)
}

func (s *litScene) Draw(r renderer.Renderer) {
	s.draw(r, func(p *shader.Program) {
		r.SetVec3(p.Uniform(shader.LightPosition), s.lightPosition)
		r.SetVec3(p.Uniform(shader.ViewPosition), s.viewPosition)
	})
}
