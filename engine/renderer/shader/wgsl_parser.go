package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslVertexFormatMap maps the float vector types usable as vertex inputs to wgpu formats.
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
}

var (
	// structBlockRegex captures a struct's name and body.
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex captures N from @location(N).
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex captures name and type of a struct member after any attributes.
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)

	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// uniformDeclRegex captures group, binding, name and type of a var<uniform> declaration,
	// e.g. @group(0) @binding(1) var<uniform> P: mat4x4<f32>;
	uniformDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var<uniform>\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// ReflectWGSL extracts entry points, uniform bindings and vertex inputs from WGSL source.
// Uniforms are matched by variable name, so a WGSL stage can use the same names as its GLSL twin.
// Vertex inputs are the fields of the struct that carries @location members and no @builtin members.
//
// Parameters:
//   - source: the WGSL source text
//
// Returns:
//   - WGSLReflection: the reflected interface; maps are never nil
func ReflectWGSL(source string) WGSLReflection {
	cleaned := stripComments(source)
	structs := parseStructBlocks(cleaned)
	known := computeStructSizes(structs)

	r := WGSLReflection{
		Uniforms:   make(map[string]WGSLUniform),
		Attributes: make(map[string]WGSLAttribute),
	}
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		r.VertexEntry = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		r.FragmentEntry = m[1]
	}

	for _, m := range uniformDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.ParseUint(m[1], 10, 32)
		binding, _ := strconv.ParseUint(m[2], 10, 32)
		size := uint64(16)
		if layout, ok := resolveTypeLayout(strings.TrimSpace(m[4]), known); ok {
			size = max(size, roundUpAlign(16, layout.size))
		}
		r.Uniforms[m[3]] = WGSLUniform{Group: uint32(group), Binding: uint32(binding), Size: size}
	}

	for _, ps := range structs {
		if !isVertexInputStruct(ps) {
			continue
		}
		for _, f := range ps.fields {
			info, ok := wgslVertexFormatMap[f.typeName]
			if !ok {
				continue
			}
			r.Attributes[f.name] = WGSLAttribute{Location: uint32(f.location), Format: info.format, Size: info.size}
		}
	}

	return r
}

// parseStructBlocks finds every struct block in comment-free source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseStructFields(match[2]),
		})
	}
	return structs
}

// parseStructFields splits a struct body into members with their @location and @builtin attributes.
func parseStructFields(body string) []parsedField {
	lines := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}

		field := parsedField{
			name:      fm[1],
			typeName:  strings.TrimSpace(fm[2]),
			location:  -1,
			isBuiltin: builtinRegex.MatchString(line),
		}
		if loc := locationRegex.FindStringSubmatch(line); loc != nil {
			if n, err := strconv.Atoi(loc[1]); err == nil {
				field.location = n
			}
		}
		fields = append(fields, field)
	}

	return fields
}

// isVertexInputStruct reports whether a struct has @location members and no @builtin member.
// Vertex output structs always carry @builtin(position), which tells the two apart.
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// splitAtTopLevelCommas splits at commas outside angle brackets, so array<T, N> stays whole.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
