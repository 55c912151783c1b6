// Package renderertest provides an in-memory renderer backend that accepts GLSL-like sources and
// records every upload, binding and draw it receives.
package renderertest

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	uniformDeclRegex = regexp.MustCompile(`(?m)^\s*uniform\s+\w+\s+(\w+)\s*;`)
	inputDeclRegex   = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
	mainRegex        = regexp.MustCompile(`\bmain\s*\(`)
)

// DrawCall is one recorded draw.
type DrawCall struct {
	Program  shader.Handle
	Topology renderer.Topology
	First    int
	Count    int

	// Attributes maps each location bound since the last draw to its buffer.
	Attributes map[shader.Location]geometry.BufferID
}

// Upload is one recorded buffer upload.
type Upload struct {
	Buffer geometry.BufferID
	Floats int
	Usage  geometry.Usage
}

type stage struct {
	kind     shader.StageKind
	log      string
	compiled bool
	uniforms []string
	inputs   []string
}

type program struct {
	attached   []shader.Handle
	log        string
	linked     bool
	uniforms   map[string]shader.Location
	attributes map[string]shader.Location
}

// Backend is a renderer.RendererBackend that keeps everything in memory.
// A name counts as active when it is declared and referenced at least once more in the same
// source, which is how a GLSL compiler decides what to keep.
type Backend struct {
	mu sync.Mutex

	next     shader.Handle
	stages   map[shader.Handle]*stage
	programs map[shader.Handle]*program

	nextBuffer geometry.BufferID
	buffers    map[geometry.BufferID][]float32

	current shader.Handle
	pending map[shader.Location]geometry.BufferID

	// FailBufferCreation makes CreateBuffer return an error.
	FailBufferCreation bool

	ClearColor mgl32.Vec4
	Width      int
	Height     int

	Frames       int
	Presents     int
	Uploads      []Upload
	Draws        []DrawCall
	Uniforms     map[shader.Location]any
	InvalidBinds int
}

var _ renderer.RendererBackend = &Backend{}

// New creates an empty Backend.
func New() *Backend {
	return &Backend{
		stages:   make(map[shader.Handle]*stage),
		programs: make(map[shader.Handle]*program),
		buffers:  make(map[geometry.BufferID][]float32),
		pending:  make(map[shader.Location]geometry.BufferID),
		Uniforms: make(map[shader.Location]any),
	}
}

// activeNames returns the declared names that are referenced elsewhere in src.
func activeNames(src string, decl *regexp.Regexp) []string {
	var names []string
	for _, m := range decl.FindAllStringSubmatch(src, -1) {
		uses := regexp.MustCompile(`\b` + regexp.QuoteMeta(m[1]) + `\b`).FindAllStringIndex(src, -1)
		if len(uses) > 1 {
			names = append(names, m[1])
		}
	}
	return names
}

func (b *Backend) CreateStage(kind shader.StageKind) shader.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.stages[b.next] = &stage{kind: kind}
	return b.next
}

func (b *Backend) CompileStage(h shader.Handle, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stages[h]
	if !ok {
		return
	}
	if !mainRegex.MatchString(source) {
		s.log = "ERROR: 0:1: 'main' : function not found"
		s.compiled = false
		return
	}
	s.log = ""
	s.compiled = true
	s.uniforms = activeNames(source, uniformDeclRegex)
	s.inputs = activeNames(source, inputDeclRegex)
}

func (b *Backend) DeleteStage(h shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.stages, h)
}

func (b *Backend) CreateProgram() shader.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.programs[b.next] = &program{}
	return b.next
}

func (b *Backend) AttachStage(p, s shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prog, ok := b.programs[p]; ok {
		prog.attached = append(prog.attached, s)
	}
}

func (b *Backend) LinkProgram(h shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[h]
	if !ok {
		return
	}
	p.linked = false
	p.uniforms = make(map[string]shader.Location)
	p.attributes = make(map[string]shader.Location)

	var vertex, fragment *stage
	for _, sh := range p.attached {
		s, ok := b.stages[sh]
		if !ok || !s.compiled {
			p.log = fmt.Sprintf("ERROR: Linking with uncompiled shader %d", sh)
			return
		}
		if s.kind == shader.StageVertex {
			vertex = s
		} else {
			fragment = s
		}
	}
	switch {
	case vertex == nil:
		p.log = "ERROR: Linking without a vertex shader"
		return
	case fragment == nil:
		p.log = "ERROR: Linking without a fragment shader"
		return
	}

	var uniforms []string
	for _, s := range []*stage{vertex, fragment} {
		for _, n := range s.uniforms {
			if !slices.Contains(uniforms, n) {
				uniforms = append(uniforms, n)
			}
		}
	}
	slices.Sort(uniforms)
	for i, n := range uniforms {
		p.uniforms[n] = shader.Location(i)
	}
	for i, n := range vertex.inputs {
		p.attributes[n] = shader.Location(i)
	}
	p.log = ""
	p.linked = true
}

func (b *Backend) DeleteProgram(h shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.programs, h)
	if b.current == h {
		b.current = shader.NullHandle
	}
}

func (b *Backend) IsStage(h shader.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.stages[h]
	return ok
}

func (b *Backend) StageInfoLog(h shader.Handle) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.stages[h]; ok {
		return s.log
	}
	return ""
}

func (b *Backend) ProgramInfoLog(h shader.Handle) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.programs[h]; ok {
		return p.log
	}
	return ""
}

func (b *Backend) UniformLocation(h shader.Handle, name string) shader.Location {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.programs[h]; ok && p.linked {
		if loc, ok := p.uniforms[name]; ok {
			return loc
		}
	}
	return shader.NotFound
}

func (b *Backend) AttribLocation(h shader.Handle, name string) shader.Location {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.programs[h]; ok && p.linked {
		if loc, ok := p.attributes[name]; ok {
			return loc
		}
	}
	return shader.NotFound
}

// IsProgram reports whether h names a live program.
func (b *Backend) IsProgram(h shader.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.programs[h]
	return ok
}

func (b *Backend) CreateBuffer() (geometry.BufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailBufferCreation {
		return 0, fmt.Errorf("out of buffer objects")
	}
	b.nextBuffer++
	b.buffers[b.nextBuffer] = nil
	return b.nextBuffer, nil
}

func (b *Backend) Upload(id geometry.BufferID, data []float32, usage geometry.Usage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.buffers[id]; !ok {
		return fmt.Errorf("buffer %d does not exist", id)
	}
	b.buffers[id] = slices.Clone(data)
	b.Uploads = append(b.Uploads, Upload{Buffer: id, Floats: len(data), Usage: usage})
	return nil
}

func (b *Backend) BufferSize(id geometry.BufferID) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.buffers[id]
	if !ok {
		return 0, fmt.Errorf("buffer %d does not exist", id)
	}
	return 4 * len(data), nil
}

func (b *Backend) DeleteBuffer(id geometry.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.buffers, id)
}

// BufferData returns a copy of the last data uploaded to a buffer.
func (b *Backend) BufferData(id geometry.BufferID) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.buffers[id])
}

// LiveBuffers reports how many buffers have not been deleted.
func (b *Backend) LiveBuffers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buffers)
}

func (b *Backend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
}

func (b *Backend) SetClearColor(c mgl32.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ClearColor = c
}

func (b *Backend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Frames++
	clear(b.pending)
	return nil
}

func (b *Backend) UseProgram(h shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = h
}

func (b *Backend) setUniform(loc shader.Location, v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Uniforms[loc] = v
}

func (b *Backend) UniformMatrix4(loc shader.Location, m mgl32.Mat4) { b.setUniform(loc, m) }
func (b *Backend) UniformMatrix3(loc shader.Location, m mgl32.Mat3) { b.setUniform(loc, m) }
func (b *Backend) UniformVec3(loc shader.Location, v mgl32.Vec3) { b.setUniform(loc, v) }
func (b *Backend) UniformFloat(loc shader.Location, v float32) { b.setUniform(loc, v) }

func (b *Backend) BindAttribute(loc shader.Location, buffer geometry.BufferID, components int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !loc.Valid() {
		b.InvalidBinds++
		return
	}
	b.pending[loc] = buffer
}

func (b *Backend) Draw(topology renderer.Topology, first, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Draws = append(b.Draws, DrawCall{
		Program:    b.current,
		Topology:   topology,
		First:      first,
		Count:      count,
		Attributes: maps.Clone(b.pending),
	})
	clear(b.pending)
}

func (b *Backend) EndFrame() {}

func (b *Backend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Presents++
}

// Release drops every object the backend holds.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.stages)
	clear(b.programs)
	clear(b.buffers)
	b.current = shader.NullHandle
}

// LastDraw returns the most recent draw, or false if nothing was drawn.
func (b *Backend) LastDraw() (DrawCall, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.Draws) == 0 {
		return DrawCall{}, false
	}
	return b.Draws[len(b.Draws)-1], true
}
