package engine

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-spiro/engine/scene"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow runs up to maxTicks loop iterations, or until RequestClose.
type fakeWindow struct {
	width, height int
	maxTicks      int
	ticks         int
	closed        bool
	onUpdate      func()
	onResize      func(int, int)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func()) { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(int, int)) { w.onResize = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) MakeContextCurrent() {}
func (w *fakeWindow) SwapBuffers() {}
func (w *fakeWindow) SetSwapInterval(int) {}
func (w *fakeWindow) ClientAPI() window.ClientAPI { return window.ClientAPIOpenGL }
func (w *fakeWindow) IsRunning() bool { return !w.closed }
func (w *fakeWindow) RequestClose() { w.closed = true }
func (w *fakeWindow) Close() error { w.closed = true; return nil }
func (w *fakeWindow) Width() int { return w.width }
func (w *fakeWindow) Height() int { return w.height }

func (w *fakeWindow) ProcessMessages() {
	for w.IsRunning() && w.ticks < w.maxTicks {
		w.ticks++
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

// probeScene records the engine state seen from inside Update and Draw.
type probeScene struct {
	scene.Scene
	engine      Engine
	updateState []State
	drawState   []State
	onUpdate    func(n int)
}

func (s *probeScene) Update() {
	s.updateState = append(s.updateState, s.engine.State())
	s.Scene.Update()
	if s.onUpdate != nil {
		s.onUpdate(len(s.updateState))
	}
}

func (s *probeScene) Draw(r renderer.Renderer) {
	s.drawState = append(s.drawState, s.engine.State())
	s.Scene.Draw(r)
}

func (s *probeScene) SetParams(p spirograph.Params) {
	s.Scene.(scene.ParamReceiver).SetParams(p)
}

func (s *probeScene) Params() spirograph.Params {
	return s.Scene.(scene.ParamReceiver).Params()
}

type fixture struct {
	backend *renderertest.Backend
	window  *fakeWindow
	probe   *probeScene
	engine  Engine
}

func newFixture(t *testing.T, sceneName string, options ...EngineBuilderOption) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	dir := filepath.Join("..", "assets", "shaders")

	vert, frag := "gles.vert", "gles.frag"
	if sceneName == scene.LitName {
		vert, frag = "light.vert", "light.frag"
	}
	s, err := scene.New(sceneName,
		scene.WithShaders(filepath.Join(dir, vert), filepath.Join(dir, frag)),
		scene.WithLogger(logger),
	)
	require.NoError(t, err)

	f := &fixture{
		backend: renderertest.New(),
		window:  &fakeWindow{width: 720, height: 720, maxTicks: 100},
		probe:   &probeScene{Scene: s},
	}
	r := renderer.NewRendererWithBackend(renderer.BackendTypeGL, f.backend)
	options = append([]EngineBuilderOption{
		WithWindow(f.window),
		WithRenderer(r),
		WithScene(f.probe),
		WithLogger(logger),
	}, options...)
	f.engine = NewEngine(options...)
	f.probe.engine = f.engine
	return f
}

func TestNewEngineRequiresComponents(t *testing.T) {
	assert.Panics(t, func() { NewEngine() })
	assert.Panics(t, func() { NewEngine(WithWindow(&fakeWindow{})) })
}

func TestTickRunsUpdateThenRender(t *testing.T) {
	f := newFixture(t, scene.SpirographName)
	assert.Equal(t, StateIdle, f.engine.State())

	for range 3 {
		require.NoError(t, f.engine.Tick())
	}

	assert.Equal(t, []State{StateAnimating, StateAnimating, StateAnimating}, f.probe.updateState)
	assert.Equal(t, []State{StateRendering, StateRendering, StateRendering}, f.probe.drawState)
	assert.Equal(t, StateIdle, f.engine.State())

	assert.Equal(t, 3, f.backend.Frames)
	assert.Equal(t, 3, f.backend.Presents)
	require.Len(t, f.backend.Draws, 3)
	assert.Equal(t, 3, f.backend.Draws[2].Count)
	assert.Equal(t, renderer.TopologyLineStrip, f.backend.Draws[2].Topology)
}

func TestSetupAppliesSceneClearColorAndSize(t *testing.T) {
	f := newFixture(t, scene.SpirographName)
	require.NoError(t, f.engine.Setup())

	assert.Equal(t, f.probe.ClearColor(), f.backend.ClearColor)
	assert.Equal(t, 720, f.backend.Width)
	assert.Equal(t, 720, f.backend.Height)

	// A second call is a no-op.
	require.NoError(t, f.engine.Setup())
	assert.Equal(t, 2, f.backend.LiveBuffers())
}

func TestSubmitParamsResetsBeforeNextUpdate(t *testing.T) {
	f := newFixture(t, scene.SpirographName)
	for range 4 {
		require.NoError(t, f.engine.Tick())
	}
	require.Equal(t, 4, f.probe.VertexCount())

	f.engine.SubmitParams(spirograph.Params{Rolling: 0.5, Fixed: 2, Pen: 0.1, Speed: 1})
	f.engine.SubmitParams(spirograph.Params{Rolling: 0.25, Fixed: 500, Pen: 0.1, Speed: 1})
	require.NoError(t, f.engine.Tick())

	assert.Equal(t, spirograph.Params{Rolling: 0.25, Fixed: 100, Pen: 0.1, Speed: 1}, f.probe.Params())
	assert.Equal(t, 1, f.probe.VertexCount())
	d, ok := f.backend.LastDraw()
	require.True(t, ok)
	assert.Equal(t, 1, d.Count)
}

func TestSubmitParamsDropsOldestWhenFull(t *testing.T) {
	f := newFixture(t, scene.SpirographName, WithParamQueue(1))
	f.engine.SubmitParams(spirograph.Params{Rolling: 1, Fixed: 1, Pen: 1, Speed: 1})
	f.engine.SubmitParams(spirograph.Params{Rolling: 2, Fixed: 2, Pen: 2, Speed: 2})
	require.NoError(t, f.engine.Tick())
	assert.Equal(t, spirograph.Params{Rolling: 2, Fixed: 2, Pen: 2, Speed: 2}, f.probe.Params())
}

func TestLitSceneIgnoresParams(t *testing.T) {
	s := scene.NewLit(scene.WithLogger(log.New(io.Discard, "", 0)))
	_, ok := s.(scene.ParamReceiver)
	assert.False(t, ok)
}

func TestRunStopsOnQuitAndReleases(t *testing.T) {
	f := newFixture(t, scene.SpirographName)
	f.probe.onUpdate = func(n int) {
		if n == 3 {
			f.engine.Quit()
		}
	}

	require.NoError(t, f.engine.Run())
	assert.Equal(t, 3, f.window.ticks)
	assert.Equal(t, 3, f.backend.Presents)
	assert.Equal(t, 0, f.backend.LiveBuffers())
	assert.Nil(t, f.probe.Program())

	// Quit is safe to repeat.
	f.engine.Quit()
}

func TestRunUntilWindowLoopEnds(t *testing.T) {
	f := newFixture(t, scene.LitName)
	f.window.maxTicks = 7
	require.NoError(t, f.engine.Run())
	assert.Equal(t, 7, f.backend.Frames)
	assert.Equal(t, renderer.TopologyTriangles, f.backend.Draws[0].Topology)
}

func TestResizeCallbackReachesRendererAndScene(t *testing.T) {
	f := newFixture(t, scene.LitName)
	require.NoError(t, f.engine.Setup())

	f.window.onResize(1280, 720)
	assert.Equal(t, 1280, f.backend.Width)
	assert.InDelta(t, 1280.0/720.0, f.probe.Camera().Aspect(), 1e-6)

	// Minimized windows report zero; the projection is left alone.
	f.window.onResize(0, 0)
	assert.Equal(t, 1280, f.backend.Width)
	assert.InDelta(t, 1280.0/720.0, f.probe.Camera().Aspect(), 1e-6)
}

func TestTickReportsSetupFailure(t *testing.T) {
	f := newFixture(t, scene.SpirographName)
	f.backend.FailBufferCreation = true
	assert.Error(t, f.engine.Tick())
	assert.Error(t, f.engine.Run())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "animating", StateAnimating.String())
	assert.Equal(t, "rendering", StateRendering.String())
}
