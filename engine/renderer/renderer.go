package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrFrameInProgress is returned by BeginFrame when the previous frame was never ended.
var ErrFrameInProgress = errors.New("renderer: previous frame not ended")

// renderer is the implementation of the Renderer interface.
// Compiler and Uploader calls pass straight through to the embedded backend; frame and binding
// calls are filtered first.
type renderer struct {
	RendererBackend

	backendType RendererBackendType
	config      backendConfig

	inFrame bool
}

// Renderer is the drawing surface used by scenes. It exposes the backend's shader compiler and
// buffer uploader, and a guarded frame API: uniform and attribute calls with a NotFound location
// are dropped before reaching the GPU, and empty draws are skipped.
type Renderer interface {
	shader.Compiler
	geometry.Uploader

	// BackendType reports which backend is in use.
	BackendType() RendererBackendType

	// Resize configures the viewport for a new framebuffer size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// SetClearColor changes the clear color from the next frame on.
	SetClearColor(c mgl32.Vec4)

	// BeginFrame starts a frame. Must be paired with EndFrame.
	//
	// Returns:
	//   - error: ErrFrameInProgress, or the backend's error if no render target is available
	BeginFrame() error

	// UseProgram selects the program for the following uniform and draw calls.
	UseProgram(program shader.Handle)

	// SetMatrix4 sets a 4x4 matrix uniform. NotFound locations are ignored.
	SetMatrix4(loc shader.Location, m mgl32.Mat4)

	// SetMatrix3 sets a 3x3 matrix uniform. NotFound locations are ignored.
	SetMatrix3(loc shader.Location, m mgl32.Mat3)

	// SetVec3 sets a vec3 uniform. NotFound locations are ignored.
	SetVec3(loc shader.Location, v mgl32.Vec3)

	// SetFloat sets a float uniform. NotFound locations are ignored.
	SetFloat(loc shader.Location, v float32)

	// BindAttribute sources a vertex attribute from a buffer. A NotFound location is never
	// enabled or bound.
	//
	// Parameters:
	//   - loc: the resolved attribute location
	//   - buffer: the vertex buffer
	//   - components: floats per vertex
	//
	// Returns:
	//   - bool: true if the attribute was bound
	BindAttribute(loc shader.Location, buffer geometry.BufferID, components int) bool

	// Draw issues one draw call. Calls with count <= 0 are skipped.
	Draw(topology Topology, first, count int)

	// EndFrame submits the frame started by BeginFrame.
	EndFrame()

	// Present shows the last submitted frame.
	Present()

	// Release frees the backend's GPU objects.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the requested backend for the given window.
// The GL backend needs a window created with window.ClientAPIOpenGL and the WebGPU backend one
// created with window.ClientAPINone. Panics if the backend cannot be initialized.
//
// Parameters:
//   - backendType: the backend to create
//   - w: the window to render into
//   - options: functional options for the renderer
//
// Returns:
//   - Renderer: the configured renderer, already sized to the window
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) Renderer {
	r := newRenderer(backendType, options...)

	var err error
	switch backendType {
	case BackendTypeWGPU:
		r.RendererBackend, err = newWGPURendererBackend(w.SurfaceDescriptor(), r.config)
	case BackendTypeGL:
		r.RendererBackend, err = newGLRendererBackend(w, r.config)
	default:
		err = fmt.Errorf("unsupported backend %s", backendType)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to create %s renderer: %v", backendType, err))
	}

	r.RendererBackend.SetClearColor(r.config.clearColor)
	r.RendererBackend.Resize(w.Width(), w.Height())
	return r
}

// NewRendererWithBackend wraps an existing backend, such as an in-memory test backend.
//
// Parameters:
//   - backendType: the type reported by BackendType
//   - backend: the backend to drive
//   - options: functional options for the renderer
//
// Returns:
//   - Renderer: the renderer
func NewRendererWithBackend(backendType RendererBackendType, backend RendererBackend, options ...RendererBuilderOption) Renderer {
	r := newRenderer(backendType, options...)
	r.RendererBackend = backend
	r.RendererBackend.SetClearColor(r.config.clearColor)
	return r
}

func newRenderer(backendType RendererBackendType, options ...RendererBuilderOption) *renderer {
	r := &renderer{
		backendType: backendType,
		config: backendConfig{
			clearColor:  mgl32.Vec4{0, 0, 0, 1},
			presentMode: PresentModeVSync,
		},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		// Minimized windows report a zero framebuffer.
		return
	}
	r.RendererBackend.Resize(width, height)
}

func (r *renderer) BeginFrame() error {
	if r.inFrame {
		return ErrFrameInProgress
	}
	if err := r.RendererBackend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *renderer) SetMatrix4(loc shader.Location, m mgl32.Mat4) {
	if loc.Valid() {
		r.RendererBackend.UniformMatrix4(loc, m)
	}
}

func (r *renderer) SetMatrix3(loc shader.Location, m mgl32.Mat3) {
	if loc.Valid() {
		r.RendererBackend.UniformMatrix3(loc, m)
	}
}

func (r *renderer) SetVec3(loc shader.Location, v mgl32.Vec3) {
	if loc.Valid() {
		r.RendererBackend.UniformVec3(loc, v)
	}
}

func (r *renderer) SetFloat(loc shader.Location, v float32) {
	if loc.Valid() {
		r.RendererBackend.UniformFloat(loc, v)
	}
}

func (r *renderer) BindAttribute(loc shader.Location, buffer geometry.BufferID, components int) bool {
	if !loc.Valid() {
		return false
	}
	r.RendererBackend.BindAttribute(loc, buffer, components)
	return true
}

func (r *renderer) Draw(topology Topology, first, count int) {
	if !r.inFrame || count <= 0 {
		return
	}
	r.RendererBackend.Draw(topology, first, count)
}

func (r *renderer) EndFrame() {
	if !r.inFrame {
		return
	}
	r.RendererBackend.EndFrame()
	r.inFrame = false
}
