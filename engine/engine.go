package engine

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-spiro/engine/profiler"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/scene"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
)

// State is the frame driver's position inside a tick.
type State int32

const (
	// StateIdle is between ticks.
	StateIdle State = iota

	// StateAnimating is while the scene advances its clock and geometry.
	StateAnimating

	// StateRendering is from BeginFrame until the frame is presented.
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnimating:
		return "animating"
	case StateRendering:
		return "rendering"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// engine implements the Engine interface.
// Everything but SubmitParams, State and Quit runs on the thread that owns the GPU context.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene

	state atomic.Int32
	ready bool

	paramsChannel chan spirograph.Params

	quitOnce sync.Once

	profiler         *profiler.Profiler
	profilingEnabled bool

	frameLimit time.Duration // minimum frame duration; 0 = uncapped
	lastFrame  time.Time

	frameErrors int
	logger      *log.Logger
}

// Engine is the frame driver. Each tick it applies pending parameter changes, lets the scene
// advance, then draws the scene into one frame and presents it.
type Engine interface {
	// Window returns the window driving the loop.
	Window() window.Window

	// Renderer returns the renderer the scene draws with.
	Renderer() renderer.Renderer

	// Scene returns the active scene.
	Scene() scene.Scene

	// State reports where the driver is inside the current tick. Safe to call from any goroutine.
	State() State

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameLimit caps ticks per second. Pass 0 to uncap (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// SubmitParams queues new spirograph parameters for the next tick. Safe to call from any
	// goroutine. When the queue is full the oldest pending change is dropped.
	//
	// Parameters:
	//   - p: the new parameters
	SubmitParams(p spirograph.Params)

	// Setup sizes the scene to the window, sets the clear color and sets up the scene.
	// Called by Run and by the first Tick if not called before.
	//
	// Returns:
	//   - error: if the scene could not be set up
	Setup() error

	// Tick runs one frame: drain parameter changes, update the scene, render and present.
	//
	// Returns:
	//   - error: if setup failed or no frame could be started; the frame is skipped
	Tick() error

	// Run sets up the scene and ticks once per window loop iteration until the window closes,
	// then releases the scene and the renderer.
	//
	// Returns:
	//   - error: if setup failed
	Run() error

	// Quit asks the window to close. Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. A window, a renderer and a scene are required; NewEngine panics
// if one is missing.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		paramsChannel: make(chan spirograph.Params, 8),
		logger:        log.Default(),
	}
	for _, opt := range options {
		opt(e)
	}
	switch {
	case e.window == nil:
		panic("engine: no window configured")
	case e.renderer == nil:
		panic("engine: no renderer configured")
	case e.scene == nil:
		panic("engine: no scene configured")
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.renderer.Resize(width, height)
		e.scene.Resize(width, height)
	})
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) State() State {
	return State(e.state.Load())
}

func (e *engine) setState(s State) {
	e.state.Store(int32(s))
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SubmitParams(p spirograph.Params) {
	for {
		select {
		case e.paramsChannel <- p:
			return
		default:
		}
		select {
		case <-e.paramsChannel:
		default:
		}
	}
}

func (e *engine) Setup() error {
	if e.ready {
		return nil
	}
	e.renderer.SetClearColor(e.scene.ClearColor())
	e.renderer.Resize(e.window.Width(), e.window.Height())
	e.scene.Resize(e.window.Width(), e.window.Height())
	if err := e.scene.Setup(e.renderer); err != nil {
		return fmt.Errorf("failed to set up scene %s: %w", e.scene.Name(), err)
	}
	e.ready = true
	e.logger.Printf("[Engine] scene %s ready on %s backend", e.scene.Name(), e.renderer.BackendType())
	return nil
}

// drainParams applies the newest pending parameter change and discards older ones.
func (e *engine) drainParams() {
	var (
		latest  spirograph.Params
		pending bool
	)
drain:
	for {
		select {
		case p := <-e.paramsChannel:
			latest, pending = p, true
		default:
			break drain
		}
	}
	if !pending {
		return
	}
	if pr, ok := e.scene.(scene.ParamReceiver); ok {
		pr.SetParams(latest)
		return
	}
	e.logger.Printf("[Engine] scene %s does not take parameters, ignoring %s", e.scene.Name(), latest)
}

func (e *engine) Tick() error {
	if err := e.Setup(); err != nil {
		return err
	}
	e.drainParams()

	e.setState(StateAnimating)
	e.scene.Update()

	e.setState(StateRendering)
	defer e.setState(StateIdle)

	if err := e.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("frame skipped: %w", err)
	}
	e.scene.Draw(e.renderer)
	e.renderer.EndFrame()
	e.renderer.Present()

	if e.profilingEnabled {
		e.profiler.Tick(e.scene.VertexCount())
	}
	return nil
}

func (e *engine) Run() error {
	if err := e.Setup(); err != nil {
		return err
	}
	defer e.release()

	e.lastFrame = time.Now()
	e.window.SetUpdateCallback(func() {
		if err := e.Tick(); err != nil {
			// Surfaces are unavailable while minimized; only report the first of a run of failures.
			if e.frameErrors == 0 {
				e.logger.Printf("[Engine] %v", err)
			}
			e.frameErrors++
		} else {
			e.frameErrors = 0
		}

		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(e.lastFrame); remaining > 0 {
				time.Sleep(remaining)
			}
		}
		e.lastFrame = time.Now()
	})
	e.window.ProcessMessages()
	e.window.SetUpdateCallback(nil)
	return nil
}

func (e *engine) release() {
	e.scene.Release()
	e.renderer.Release()
	e.ready = false
	e.logger.Printf("[Engine] released scene %s", e.scene.Name())
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		e.window.RequestClose()
	})
}
