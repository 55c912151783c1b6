package scene

import (
	"bytes"
	"io"
	"log"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-spiro/engine/spirograph"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shaderDir = filepath.Join("..", "..", "assets", "shaders")

func quiet() SceneBuilderOption {
	return WithLogger(log.New(io.Discard, "", 0))
}

func newTestRenderer() (*renderertest.Backend, renderer.Renderer) {
	b := renderertest.New()
	return b, renderer.NewRendererWithBackend(renderer.BackendTypeGL, b)
}

func newSpirograph(t *testing.T, options ...SceneBuilderOption) (*renderertest.Backend, renderer.Renderer, Scene) {
	t.Helper()
	b, r := newTestRenderer()
	options = append([]SceneBuilderOption{
		WithShaders(filepath.Join(shaderDir, "gles.vert"), filepath.Join(shaderDir, "gles.frag")),
		quiet(),
	}, options...)
	s := NewSpirograph(options...)
	require.NoError(t, s.Setup(r))
	t.Cleanup(s.Release)
	return b, r, s
}

func newLit(t *testing.T) (*renderertest.Backend, renderer.Renderer, Scene) {
	t.Helper()
	b, r := newTestRenderer()
	s := NewLit(
		WithShaders(filepath.Join(shaderDir, "light.vert"), filepath.Join(shaderDir, "light.frag")),
		quiet(),
	)
	require.NoError(t, s.Setup(r))
	t.Cleanup(s.Release)
	return b, r, s
}

func drawFrame(t *testing.T, r renderer.Renderer, s Scene) {
	t.Helper()
	require.NoError(t, r.BeginFrame())
	s.Draw(r)
	r.EndFrame()
	r.Present()
}

func TestNewByName(t *testing.T) {
	s, err := New(SpirographName, quiet())
	require.NoError(t, err)
	assert.Equal(t, SpirographName, s.Name())

	s, err = New(LitName, quiet())
	require.NoError(t, err)
	assert.Equal(t, LitName, s.Name())

	_, err = New("teapot")
	assert.Error(t, err)
}

func TestSpirographDefaults(t *testing.T) {
	s := NewSpirograph(quiet())
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, s.ClearColor())
	assert.Equal(t, spirograph.DefaultParams(), s.(ParamReceiver).Params())
	assert.InDelta(t, spirograph.DefaultParams().EyeDistance(), s.Camera().Eye().Z(), 1e-6)
	assert.Equal(t, float32(0.001), s.Clock().Step())
	assert.Equal(t, 0, s.VertexCount())
}

func TestSpirographResolvesOnlyActiveNames(t *testing.T) {
	_, _, s := newSpirograph(t)
	p := s.Program()
	require.NotNil(t, p)
	assert.Empty(t, p.Diagnostics())

	assert.True(t, p.Uniform(shader.ModelView).Valid())
	assert.True(t, p.Uniform(shader.Projection).Valid())
	assert.True(t, p.Uniform(shader.Time).Valid())
	assert.True(t, p.Attribute(shader.Position).Valid())

	// Declared but unused in the curve shaders.
	assert.Equal(t, shader.NotFound, p.Uniform(shader.NormalMatrix))
	assert.Equal(t, shader.NotFound, p.Attribute(shader.Normal))
	assert.Equal(t, shader.NotFound, p.Attribute(shader.Color))
}

func TestSpirographUpdateAppendsOnePointPerTick(t *testing.T) {
	b, _, s := newSpirograph(t)
	const n = 25
	for range n {
		s.Update()
	}

	buf := s.Buffers()
	assert.Equal(t, n, buf.VertexCount())
	assert.Len(t, buf.Stream(shader.Position).Data(), 3*n)
	assert.Len(t, buf.Stream(shader.Normal).Data(), 3*n)
	assert.Nil(t, buf.Stream(shader.Color))

	size, err := b.BufferSize(buf.Stream(shader.Position).Buffer)
	require.NoError(t, err)
	assert.Equal(t, 4*3*n, size)

	// Every tick re-uploads both streams in full.
	require.Len(t, b.Uploads, 2*n)
	last := b.Uploads[len(b.Uploads)-1]
	assert.Equal(t, 3*n, last.Floats)
	assert.Equal(t, geometry.UsageDynamic, last.Usage)

	first, ok := spirograph.DefaultParams().Point(0.001)
	require.True(t, ok)
	data := buf.Stream(shader.Position).Data()
	assert.InDelta(t, first.X(), data[0], 1e-5)
	assert.InDelta(t, first.Y(), data[1], 1e-5)
}

func TestSpirographDrawBindsOnlyActiveAttributes(t *testing.T) {
	b, r, s := newSpirograph(t)
	for range 10 {
		s.Update()
	}
	drawFrame(t, r, s)

	d, ok := b.LastDraw()
	require.True(t, ok)
	assert.Equal(t, renderer.TopologyLineStrip, d.Topology)
	assert.Equal(t, 0, d.First)
	assert.Equal(t, 10, d.Count)
	assert.Equal(t, s.Program().Handle(), d.Program)

	pos := s.Program().Attribute(shader.Position)
	assert.Equal(t, map[shader.Location]geometry.BufferID{
		pos: s.Buffers().Stream(shader.Position).Buffer,
	}, d.Attributes)
	assert.Zero(t, b.InvalidBinds)

	assert.Equal(t, s.Clock().Time(), b.Uniforms[s.Program().Uniform(shader.Time)])
	assert.Equal(t, s.Camera().Transforms().ModelView, b.Uniforms[s.Program().Uniform(shader.ModelView)])
}

func TestSpirographEmptyCurveIsNotDrawn(t *testing.T) {
	b, r, s := newSpirograph(t)
	drawFrame(t, r, s)
	_, ok := b.LastDraw()
	assert.False(t, ok)
	assert.Equal(t, 1, b.Presents)
}

func TestSpirographSetParamsResets(t *testing.T) {
	_, _, s := newSpirograph(t)
	for range 5 {
		s.Update()
	}
	require.Equal(t, 5, s.VertexCount())

	pr := s.(ParamReceiver)
	pr.SetParams(spirograph.Params{Rolling: 1, Fixed: 300, Pen: -80, Speed: 2})
	assert.Equal(t, spirograph.Params{Rolling: 1, Fixed: 100, Pen: -50, Speed: 2}, pr.Params())
	assert.Equal(t, 0, s.VertexCount())
	assert.Equal(t, float32(0), s.Clock().Time())
	assert.InDelta(t, 4*(1+100-50), s.Camera().Eye().Z(), 1e-4)

	s.Update()
	assert.Equal(t, 1, s.VertexCount())
}

func TestSpirographSkipsNonFinitePoints(t *testing.T) {
	_, _, s := newSpirograph(t, WithParams(spirograph.Params{Rolling: 0, Fixed: 1, Pen: 1, Speed: 1}))
	for range 3 {
		s.Update()
	}
	assert.Equal(t, 0, s.VertexCount())
	assert.InDelta(t, 0.003, s.Clock().Time(), 1e-6)
}

func TestSpirographMissingShaderStillSetsUp(t *testing.T) {
	b, r, s := newSpirograph(t, WithShaders(filepath.Join(shaderDir, "missing.vert"), filepath.Join(shaderDir, "gles.frag")))
	p := s.Program()
	require.NotNil(t, p)
	assert.NotEqual(t, shader.NullHandle, p.Handle())
	assert.NotEmpty(t, p.Diagnostics())
	assert.Equal(t, shader.NotFound, p.Uniform(shader.ModelView))

	s.Update()
	drawFrame(t, r, s)
	assert.Zero(t, b.InvalidBinds)
}

func TestLitSetupUploadsOnce(t *testing.T) {
	b, _, s := newLit(t)
	assert.Equal(t, 3, s.VertexCount())
	require.Len(t, b.Uploads, 3)
	for _, u := range b.Uploads {
		assert.Equal(t, geometry.UsageStatic, u.Usage)
	}
	assert.Equal(t, []float32{1, 0, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1}, b.BufferData(s.Buffers().Stream(shader.Color).Buffer))
	assert.Equal(t, []float32{-1, -1, 0, 1, -1, 0, 0, 1, 0}, b.BufferData(s.Buffers().Stream(shader.Position).Buffer))

	for range 10 {
		s.Update()
	}
	assert.Len(t, b.Uploads, 3)
}

func TestLitDraw(t *testing.T) {
	b, r, s := newLit(t)
	s.Update()
	drawFrame(t, r, s)

	d, ok := b.LastDraw()
	require.True(t, ok)
	assert.Equal(t, renderer.TopologyTriangles, d.Topology)
	assert.Equal(t, 3, d.Count)
	assert.Len(t, d.Attributes, 3)

	p := s.Program()
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, b.Uniforms[p.Uniform(shader.LightPosition)])
	assert.Equal(t, mgl32.Vec3{0, 0, 6}, b.Uniforms[p.Uniform(shader.ViewPosition)])
	assert.Equal(t, s.Camera().Transforms().NormalMatrix, b.Uniforms[p.Uniform(shader.NormalMatrix)])
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, s.ClearColor())
}

func TestLitClockOscillates(t *testing.T) {
	s := NewLit(quiet(), WithStep(0.3))
	lo, hi, ok := s.Clock().Bounds()
	require.True(t, ok)
	for range 20 {
		s.Update()
		assert.GreaterOrEqual(t, s.Clock().Time(), lo)
		assert.LessOrEqual(t, s.Clock().Time(), hi)
	}
	assert.NotEqual(t, mgl32.Ident4(), s.Camera().Model())
}

func TestResizeUpdatesAspect(t *testing.T) {
	s := NewLit(quiet())
	assert.InDelta(t, 1280.0/720.0, s.Camera().Aspect(), 1e-6)
	s.Resize(800, 800)
	assert.Equal(t, float32(1), s.Camera().Aspect())
}

func TestReleaseFreesBuffers(t *testing.T) {
	b, r := newTestRenderer()
	s := NewLit(
		WithShaders(filepath.Join(shaderDir, "light.vert"), filepath.Join(shaderDir, "light.frag")),
		quiet(),
	)
	require.NoError(t, s.Setup(r))
	handle := s.Program().Handle()
	require.Equal(t, 3, b.LiveBuffers())

	s.Release()
	assert.Equal(t, 0, b.LiveBuffers())
	assert.False(t, b.IsProgram(handle))
	assert.Nil(t, s.Program())
}

func TestSetupFailsWithoutBuffers(t *testing.T) {
	b, r := newTestRenderer()
	b.FailBufferCreation = true
	s := NewSpirograph(quiet(), WithShaders(filepath.Join(shaderDir, "gles.vert"), filepath.Join(shaderDir, "gles.frag")))
	assert.Error(t, s.Setup(r))
}

func TestSpirographEyeNeverReachesTarget(t *testing.T) {
	var logs bytes.Buffer
	_, _, s := newSpirograph(t, WithLogger(log.New(&logs, "", 0)))
	pr := s.(ParamReceiver)

	pr.SetParams(spirograph.Params{Rolling: -1, Fixed: 1, Pen: 0, Speed: 1})
	for range 3 {
		s.Update()
	}

	assert.Equal(t, float32(spirograph.MinEyeDistance), s.Camera().Eye().Z())
	for _, v := range s.Camera().View() {
		assert.False(t, math.IsNaN(float64(v)))
	}
	assert.Equal(t, 1, strings.Count(logs.String(), "eye distance"))

	pr.SetParams(spirograph.DefaultParams())
	assert.InDelta(t, spirograph.DefaultParams().EyeDistance(), s.Camera().Eye().Z(), 1e-5)
}
