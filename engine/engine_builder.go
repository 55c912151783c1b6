package engine

import (
	"log"

	"github.com/Carmen-Shannon/oxy-spiro/engine/profiler"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/scene"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler sets the profiler used when profiling is enabled.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window whose message loop drives the engine.
//
// Parameters:
//   - w: a configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer the scene draws with.
//
// Parameters:
//   - r: a renderer created for the window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene sets the scene driven each tick.
//
// Parameters:
//   - s: the scene; it is set up by the engine
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetFrameLimit(fps)
	}
}

// WithParamQueue sets how many parameter changes may be pending between ticks.
func WithParamQueue(size int) EngineBuilderOption {
	return func(e *engine) {
		if size > 0 {
			e.paramsChannel = make(chan spirograph.Params, size)
		}
	}
}

// WithLogger redirects engine log output.
func WithLogger(l *log.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = l
	}
}
