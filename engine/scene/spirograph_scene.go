package scene

import (
	"github.com/Carmen-Shannon/oxy-spiro/engine/animation"
	"github.com/Carmen-Shannon/oxy-spiro/engine/camera"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/go-gl/mathgl/mgl32"
)

// SpirographName identifies the spirograph scene.
const SpirographName = "spirograph"

var curveNormal = mgl32.Vec3{0, 0, 1}

// spirographScene traces the curve one point per tick as a growing line strip.
type spirographScene struct {
	sceneBase

	params spirograph.Params

	// skipped counts non-finite points since the last reset.
	skipped int

	eyeAdjusted bool
}

var (
	_ Scene         = &spirographScene{}
	_ ParamReceiver = &spirographScene{}
)

// NewSpirograph creates the spirograph scene: r=0.0893, R=1.854, p=0.8, S=1, a step of 0.001,
// a white background and the gles shaders.
//
// Parameters:
//   - options: functional options for the scene
//
// Returns:
//   - Scene: the scene, not yet set up
func NewSpirograph(options ...SceneBuilderOption) Scene {
	cfg := sceneConfig{
		name:       SpirographName,
		vertPath:   "assets/shaders/gles.vert",
		fragPath:   "assets/shaders/gles.frag",
		bindings:   shader.DefaultBindings(),
		clearColor: mgl32.Vec4{1, 1, 1, 1},
		width:      720,
		height:     720,
		step:       0.001,
		params:     spirograph.DefaultParams(),
	}
	for _, opt := range options {
		opt(&cfg)
	}
	cfg.logger = defaultLogger(cfg.logger)

	s := &spirographScene{
		sceneBase: sceneBase{
			sceneConfig: cfg,
			clock:       animation.NewClock(cfg.step),
			topology:    renderer.TopologyLineStrip,
		},
		params: cfg.params,
	}
	s.camera = camera.NewCamera(
		camera.WithViewport(cfg.width, cfg.height),
	)
	s.placeCamera()
	return s
}

func (s *spirographScene) Setup(r renderer.Renderer) error {
	return s.setup(r, geometry.UsageDynamic, false)
}

// Update advances time, appends the next curve point, keeps the camera far enough back to frame
// the curve and re-uploads every stream in full.
func (s *spirographScene) Update() {
	if s.buffers == nil {
		return
	}
	t := s.clock.Advance()

	if pt, ok := s.params.Point(t); ok {
		if err := s.buffers.AppendVertex(pt, curveNormal); err != nil {
			s.logger.Printf("[Scene] %s: %v", s.name, err)
		}
	} else {
		if s.skipped == 0 {
			s.logger.Printf("[Scene] %s: curve is not finite for %s, skipping points", s.name, s.params)
		}
		s.skipped++
	}

	s.placeCamera()

	if err := s.buffers.Upload(); err != nil {
		s.logger.Printf("[Scene] %s: upload failed: %v", s.name, err)
	}
}

func (s *spirographScene) Draw(r renderer.Renderer) {
	s.draw(r, nil)
}

// SetParams clamps and applies new parameters and clears the curve; the next Update starts a new
// curve from time zero.
func (s *spirographScene) SetParams(p spirograph.Params) {
	s.params = p.Clamp()
	s.skipped = 0
	s.clock.Reset()
	if s.buffers != nil {
		s.buffers.Reset()
	}
	s.eyeAdjusted = false
	s.placeCamera()
	s.logger.Printf("[Scene] %s: reset with %s", s.name, s.params)
}

// placeCamera puts the eye on the z axis far enough back to frame the curve. When r+R+p is near
// zero the eye is held at the minimum distance and the adjustment is logged once.
func (s *spirographScene) placeCamera() {
	d, ok := s.params.CameraDistance()
	if !ok && !s.eyeAdjusted {
		s.logger.Printf("[Scene] %s: eye distance %g too small for %s, using %g", s.name, s.params.EyeDistance(), s.params, d)
	}
	s.eyeAdjusted = !ok
	s.camera.SetEye(mgl32.Vec3{0, 0, d})
}

func (s *spirographScene) Params() spirograph.Params {
	return s.params
}
