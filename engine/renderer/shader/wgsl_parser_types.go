package shader

import "github.com/cogentcore/webgpu/wgpu"

// vertexFormatInfo holds the wgpu vertex format and its byte size.
type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

// wgslTypeLayout holds the byte size and alignment of a WGSL type in host-shareable memory.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

// parsedField is one member of a WGSL struct.
type parsedField struct {
	name      string
	typeName  string
	location  int
	isBuiltin bool
}

// parsedStruct is a WGSL struct block.
type parsedStruct struct {
	name   string
	fields []parsedField
}

// WGSLUniform describes a uniform variable declared with var<uniform>.
type WGSLUniform struct {
	// Group is the @group index.
	Group uint32

	// Binding is the @binding index and doubles as the uniform's Location.
	Binding uint32

	// Size is the buffer size to allocate, rounded up to 16 bytes.
	Size uint64
}

// WGSLAttribute describes a field of the vertex input struct.
type WGSLAttribute struct {
	Location uint32
	Format   wgpu.VertexFormat
	Size     uint64
}

// WGSLReflection is what ReflectWGSL extracts from a WGSL stage.
type WGSLReflection struct {
	VertexEntry   string
	FragmentEntry string
	Uniforms      map[string]WGSLUniform
	Attributes    map[string]WGSLAttribute
}
