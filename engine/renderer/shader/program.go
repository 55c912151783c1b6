package shader

import "maps"

// Semantic names the role a shader variable plays, independently of what it is called in source.
type Semantic string

const (
	ModelView     Semantic = "model-view"
	Projection    Semantic = "projection"
	NormalMatrix  Semantic = "normal-matrix"
	Time          Semantic = "time"
	LightPosition Semantic = "light-position"
	ViewPosition  Semantic = "view-position"

	Position Semantic = "position"
	Normal   Semantic = "normal"
	Color    Semantic = "color"
)

// Bindings maps semantics to the exact variable names used by a pair of shader sources.
// Renaming a variable in the source without updating the binding leaves it at NotFound.
type Bindings struct {
	Uniforms   map[Semantic]string
	Attributes map[Semantic]string
}

// DefaultBindings returns the variable names used by the bundled shaders.
//
// Returns:
//   - Bindings: uniforms M, P, M_n, time, L_p, E and attributes pos, norm, color
func DefaultBindings() Bindings {
	return Bindings{
		Uniforms: map[Semantic]string{
			ModelView:     "M",
			Projection:    "P",
			NormalMatrix:  "M_n",
			Time:          "time",
			LightPosition: "L_p",
			ViewPosition:  "E",
		},
		Attributes: map[Semantic]string{
			Position: "pos",
			Normal:   "norm",
			Color:    "color",
		},
	}
}

// Program is a linked program together with the locations of its bound variables.
// Locations are resolved once, right after linking, and never change afterwards.
type Program struct {
	manager    Manager
	handle     Handle
	uniforms   map[Semantic]Location
	attributes map[Semantic]Location
}

// newProgram resolves every binding against a linked program.
func newProgram(m Manager, handle Handle, bindings Bindings) *Program {
	p := &Program{
		manager:    m,
		handle:     handle,
		uniforms:   make(map[Semantic]Location, len(bindings.Uniforms)),
		attributes: make(map[Semantic]Location, len(bindings.Attributes)),
	}
	for sem, name := range bindings.Uniforms {
		p.uniforms[sem] = m.ResolveUniform(handle, name)
	}
	for sem, name := range bindings.Attributes {
		p.attributes[sem] = m.ResolveAttribute(handle, name)
	}
	return p
}

// Handle returns the backend program handle.
func (p *Program) Handle() Handle {
	return p.handle
}

// Uniform returns the resolved location for a uniform semantic, or NotFound if it was not bound or is inactive.
func (p *Program) Uniform(sem Semantic) Location {
	if loc, ok := p.uniforms[sem]; ok {
		return loc
	}
	return NotFound
}

// Attribute returns the resolved location for an attribute semantic, or NotFound if it was not bound or is inactive.
func (p *Program) Attribute(sem Semantic) Location {
	if loc, ok := p.attributes[sem]; ok {
		return loc
	}
	return NotFound
}

// Uniforms returns a copy of all resolved uniform locations.
func (p *Program) Uniforms() map[Semantic]Location {
	return maps.Clone(p.uniforms)
}

// Attributes returns a copy of all resolved attribute locations.
func (p *Program) Attributes() map[Semantic]Location {
	return maps.Clone(p.attributes)
}

// Diagnostics returns the program's link log.
func (p *Program) Diagnostics() string {
	return p.manager.Diagnostics(p.handle)
}

// Release deletes the program object. The Program must not be used afterwards.
func (p *Program) Release() {
	p.manager.DeleteProgram(p.handle)
	p.handle = NullHandle
}
