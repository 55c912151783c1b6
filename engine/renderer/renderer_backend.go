package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeGL selects the OpenGL 4.1 core backend. Shaders are GLSL.
	BackendTypeGL RendererBackendType = iota

	// BackendTypeWGPU selects the WebGPU backend. Shaders are WGSL.
	BackendTypeWGPU
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeGL:
		return "gl"
	case BackendTypeWGPU:
		return "wgpu"
	default:
		return fmt.Sprintf("RendererBackendType(%d)", int(t))
	}
}

// ParseBackendType parses "gl" or "wgpu" (case-insensitive).
//
// Parameters:
//   - s: the backend name
//
// Returns:
//   - RendererBackendType: the parsed type
//   - error: if the name is not recognized
func ParseBackendType(s string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gl", "opengl":
		return BackendTypeGL, nil
	case "wgpu", "webgpu":
		return BackendTypeWGPU, nil
	default:
		return 0, fmt.Errorf("unknown renderer backend %q", s)
	}
}

// PresentMode controls how rendered frames are presented to the display.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately. May tear.
	PresentModeUncapped
)

// Topology is the primitive assembly mode of a draw call.
type Topology int

const (
	// TopologyLineStrip connects consecutive vertices with line segments.
	TopologyLineStrip Topology = iota

	// TopologyTriangles assembles every three vertices into a triangle.
	TopologyTriangles
)

func (t Topology) String() string {
	switch t {
	case TopologyLineStrip:
		return "line-strip"
	case TopologyTriangles:
		return "triangles"
	default:
		return fmt.Sprintf("Topology(%d)", int(t))
	}
}

// backendConfig carries builder options into a backend constructor.
type backendConfig struct {
	clearColor           mgl32.Vec4
	presentMode          PresentMode
	forceFallbackAdapter bool
}

// RendererBackend is the per-API implementation behind a Renderer. It compiles and links
// shaders, owns vertex buffers, and records one frame at a time on the thread owning the context.
// Backends may assume the Renderer has already filtered out NotFound locations and empty draws.
type RendererBackend interface {
	shader.Compiler
	geometry.Uploader

	// Resize updates the viewport (and surface) to a new framebuffer size in pixels.
	Resize(width, height int)

	// SetClearColor sets the color the next frame is cleared to.
	SetClearColor(c mgl32.Vec4)

	// BeginFrame acquires a render target and clears it.
	//
	// Returns:
	//   - error: if no target could be acquired; the frame must then be skipped
	BeginFrame() error

	// UseProgram selects the program for subsequent uniform updates and draws.
	UseProgram(program shader.Handle)

	// UniformMatrix4 sets a column-major 4x4 matrix uniform of the current program.
	UniformMatrix4(loc shader.Location, m mgl32.Mat4)

	// UniformMatrix3 sets a column-major 3x3 matrix uniform of the current program.
	UniformMatrix3(loc shader.Location, m mgl32.Mat3)

	// UniformVec3 sets a vec3 uniform of the current program.
	UniformVec3(loc shader.Location, v mgl32.Vec3)

	// UniformFloat sets a scalar uniform of the current program.
	UniformFloat(loc shader.Location, v float32)

	// BindAttribute sources a vertex attribute from a tightly packed float buffer.
	//
	// Parameters:
	//   - loc: the attribute location, never NotFound
	//   - buffer: the vertex buffer
	//   - components: floats per vertex
	BindAttribute(loc shader.Location, buffer geometry.BufferID, components int)

	// Draw issues one non-indexed draw with the bound program and attributes.
	Draw(topology Topology, first, count int)

	// EndFrame finishes recording and submits the frame.
	EndFrame()

	// Present shows the submitted frame (buffer swap or surface present).
	Present()

	// Release frees backend-owned GPU objects.
	Release()
}
