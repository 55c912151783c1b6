package shader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAsset(t *testing.T, name string) string {
	t.Helper()
	src, err := os.ReadFile(filepath.Join("..", "..", "..", "assets", "shaders", name))
	require.NoError(t, err)
	return string(src)
}

func TestReflectLitVertexStage(t *testing.T) {
	r := ReflectWGSL(readAsset(t, "light.vert.wgsl"))

	assert.Equal(t, "vs_main", r.VertexEntry)
	assert.Empty(t, r.FragmentEntry)

	assert.Equal(t, map[string]WGSLUniform{
		"M":   {Group: 0, Binding: 0, Size: 64},
		"P":   {Group: 0, Binding: 1, Size: 64},
		"M_n": {Group: 0, Binding: 2, Size: 48},
	}, r.Uniforms)

	assert.Equal(t, map[string]WGSLAttribute{
		"pos":   {Location: 0, Format: wgpu.VertexFormatFloat32x3, Size: 12},
		"norm":  {Location: 1, Format: wgpu.VertexFormatFloat32x3, Size: 12},
		"color": {Location: 2, Format: wgpu.VertexFormatFloat32x4, Size: 16},
	}, r.Attributes)
}

func TestReflectLitFragmentStage(t *testing.T) {
	r := ReflectWGSL(readAsset(t, "light.frag.wgsl"))

	assert.Equal(t, "fs_main", r.FragmentEntry)
	assert.Empty(t, r.VertexEntry)
	assert.Equal(t, WGSLUniform{Binding: 3, Size: 16}, r.Uniforms["time"])
	assert.Equal(t, WGSLUniform{Binding: 4, Size: 16}, r.Uniforms["L_p"])
	assert.Equal(t, WGSLUniform{Binding: 5, Size: 16}, r.Uniforms["E"])

	// The fragment input carries @builtin(position), so it is not a vertex input.
	assert.Empty(t, r.Attributes)
}

func TestReflectSpirographHasNoNormal(t *testing.T) {
	r := ReflectWGSL(readAsset(t, "gles.vert.wgsl"))
	assert.Contains(t, r.Attributes, "pos")
	assert.NotContains(t, r.Attributes, "norm")
	assert.NotContains(t, r.Uniforms, "M_n")
}

func TestReflectIgnoresComments(t *testing.T) {
	src := `
// @group(0) @binding(7) var<uniform> ghost: f32;
/* struct Old {
    @location(3) old: vec2<f32>,
} */
@group(0) @binding(0) var<uniform> lights: array<vec3<f32>, 4>;

struct In {
    @location(0) uv: vec2f,
};

@vertex fn main(i: In) -> @builtin(position) vec4<f32> {
    return vec4<f32>(i.uv, 0.0, 1.0);
}
`
	r := ReflectWGSL(src)
	assert.Equal(t, "main", r.VertexEntry)
	assert.NotContains(t, r.Uniforms, "ghost")
	assert.Equal(t, uint64(64), r.Uniforms["lights"].Size)
	assert.Equal(t, map[string]WGSLAttribute{
		"uv": {Location: 0, Format: wgpu.VertexFormatFloat32x2, Size: 8},
	}, r.Attributes)
}

func TestRoundUpAlign(t *testing.T) {
	assert.Equal(t, uint64(16), roundUpAlign(16, 12))
	assert.Equal(t, uint64(48), roundUpAlign(16, 48))
	assert.Equal(t, uint64(5), roundUpAlign(0, 5))
}
