package renderer_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(options ...renderer.RendererBuilderOption) (*renderertest.Backend, renderer.Renderer) {
	b := renderertest.New()
	return b, renderer.NewRendererWithBackend(renderer.BackendTypeGL, b, options...)
}

func TestClearColor(t *testing.T) {
	b, r := newRenderer()
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, b.ClearColor)
	assert.Equal(t, renderer.BackendTypeGL, r.BackendType())

	b, _ = newRenderer(renderer.WithClearColor(mgl32.Vec4{1, 1, 1, 1}))
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, b.ClearColor)
}

func TestNotFoundLocationsNeverReachBackend(t *testing.T) {
	b, r := newRenderer()
	require.NoError(t, r.BeginFrame())

	r.SetMatrix4(shader.NotFound, mgl32.Ident4())
	r.SetMatrix3(shader.NotFound, mgl32.Ident3())
	r.SetVec3(shader.NotFound, mgl32.Vec3{1, 2, 3})
	r.SetFloat(shader.NotFound, 1)
	assert.Empty(t, b.Uniforms)

	id, err := r.CreateBuffer()
	require.NoError(t, err)
	assert.False(t, r.BindAttribute(shader.NotFound, id, 3))
	assert.True(t, r.BindAttribute(2, id, 3))
	assert.Zero(t, b.InvalidBinds)

	r.SetFloat(0, 0.5)
	assert.Equal(t, float32(0.5), b.Uniforms[0])

	r.Draw(renderer.TopologyTriangles, 0, 3)
	r.EndFrame()

	d, ok := b.LastDraw()
	require.True(t, ok)
	assert.Len(t, d.Attributes, 1)
	assert.Equal(t, id, d.Attributes[2])
}

func TestDrawIsSkippedOutsideFrameOrWhenEmpty(t *testing.T) {
	b, r := newRenderer()
	r.Draw(renderer.TopologyLineStrip, 0, 10)

	require.NoError(t, r.BeginFrame())
	r.Draw(renderer.TopologyLineStrip, 0, 0)
	r.Draw(renderer.TopologyLineStrip, 0, -1)
	r.EndFrame()

	assert.Empty(t, b.Draws)
}

func TestBeginFrameTwice(t *testing.T) {
	b, r := newRenderer()
	require.NoError(t, r.BeginFrame())
	assert.ErrorIs(t, r.BeginFrame(), renderer.ErrFrameInProgress)
	r.EndFrame()
	assert.NoError(t, r.BeginFrame())
	assert.Equal(t, 2, b.Frames)
}

func TestResizeIgnoresEmptyFramebuffer(t *testing.T) {
	b, r := newRenderer()
	r.Resize(640, 480)
	r.Resize(0, 480)
	r.Resize(640, 0)
	assert.Equal(t, 640, b.Width)
	assert.Equal(t, 480, b.Height)
}

func TestParseBackendType(t *testing.T) {
	for in, want := range map[string]renderer.RendererBackendType{
		"gl":     renderer.BackendTypeGL,
		"OpenGL": renderer.BackendTypeGL,
		" wgpu ": renderer.BackendTypeWGPU,
		"WebGPU": renderer.BackendTypeWGPU,
	} {
		got, err := renderer.ParseBackendType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := renderer.ParseBackendType("vulkan")
	assert.Error(t, err)

	assert.Equal(t, "wgpu", renderer.BackendTypeWGPU.String())
	assert.Equal(t, "line-strip", renderer.TopologyLineStrip.String())
	assert.Equal(t, "triangles", renderer.TopologyTriangles.String())
}
