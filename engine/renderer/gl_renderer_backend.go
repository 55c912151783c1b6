package renderer

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// glStageTypes maps stage kinds to GL shader types.
var glStageTypes = map[shader.StageKind]uint32{
	shader.StageVertex:   gl.VERTEX_SHADER,
	shader.StageFragment: gl.FRAGMENT_SHADER,
}

var glTopologies = map[Topology]uint32{
	TopologyLineStrip: gl.LINE_STRIP,
	TopologyTriangles: gl.TRIANGLES,
}

var glUsages = map[geometry.Usage]uint32{
	geometry.UsageStatic:  gl.STATIC_DRAW,
	geometry.UsageDynamic: gl.DYNAMIC_DRAW,
}

// glRendererBackendImpl drives an OpenGL 4.1 core context. All calls must come from the thread
// the window's context is current on.
type glRendererBackendImpl struct {
	window window.Window

	// vao is the single vertex array object; core profile refuses attribute setup without one.
	vao uint32

	clearColor mgl32.Vec4
	width      int
	height     int

	// enabled holds attribute slots enabled since the last draw.
	enabled []uint32

	// uploaded maps every live buffer to the byte count of its last upload. glIsBuffer reports
	// false until a name is first bound, so existence is tracked here.
	uploaded map[geometry.BufferID]int
}

var _ RendererBackend = &glRendererBackendImpl{}

// newGLRendererBackend makes the window's context current, loads the GL entry points and sets up
// the fixed state shared by every frame.
func newGLRendererBackend(w window.Window, cfg backendConfig) (*glRendererBackendImpl, error) {
	if w.ClientAPI() != window.ClientAPIOpenGL {
		return nil, errors.New("the GL backend needs a window created with an OpenGL context")
	}
	w.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to load OpenGL entry points: %w", err)
	}
	log.Printf("[Renderer] OpenGL %s, GLSL %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)))

	switch cfg.presentMode {
	case PresentModeUncapped:
		w.SetSwapInterval(0)
	default:
		w.SetSwapInterval(1)
	}

	b := &glRendererBackendImpl{
		window:     w,
		clearColor: cfg.clearColor,
		width:      w.Width(),
		height:     w.Height(),
		uploaded:   make(map[geometry.BufferID]int),
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.Enable(gl.DEPTH_TEST)

	return b, nil
}

func (b *glRendererBackendImpl) CreateStage(kind shader.StageKind) shader.Handle {
	t, ok := glStageTypes[kind]
	if !ok {
		return shader.NullHandle
	}
	return shader.Handle(gl.CreateShader(t))
}

func (b *glRendererBackendImpl) CompileStage(stage shader.Handle, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(uint32(stage), 1, csources, nil)
	free()
	gl.CompileShader(uint32(stage))
}

func (b *glRendererBackendImpl) DeleteStage(stage shader.Handle) {
	gl.DeleteShader(uint32(stage))
}

func (b *glRendererBackendImpl) CreateProgram() shader.Handle {
	return shader.Handle(gl.CreateProgram())
}

func (b *glRendererBackendImpl) AttachStage(program, stage shader.Handle) {
	gl.AttachShader(uint32(program), uint32(stage))
}

func (b *glRendererBackendImpl) LinkProgram(program shader.Handle) {
	gl.LinkProgram(uint32(program))
}

func (b *glRendererBackendImpl) DeleteProgram(program shader.Handle) {
	gl.DeleteProgram(uint32(program))
}

func (b *glRendererBackendImpl) IsStage(h shader.Handle) bool {
	return gl.IsShader(uint32(h))
}

func (b *glRendererBackendImpl) StageInfoLog(stage shader.Handle) string {
	var length int32
	gl.GetShaderiv(uint32(stage), gl.INFO_LOG_LENGTH, &length)
	if length <= 1 {
		return ""
	}
	buf := make([]byte, length)
	gl.GetShaderInfoLog(uint32(stage), length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (b *glRendererBackendImpl) ProgramInfoLog(program shader.Handle) string {
	var length int32
	gl.GetProgramiv(uint32(program), gl.INFO_LOG_LENGTH, &length)
	if length <= 1 {
		return ""
	}
	buf := make([]byte, length)
	gl.GetProgramInfoLog(uint32(program), length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func (b *glRendererBackendImpl) UniformLocation(program shader.Handle, name string) shader.Location {
	return shader.Location(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (b *glRendererBackendImpl) AttribLocation(program shader.Handle, name string) shader.Location {
	return shader.Location(gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00")))
}

func (b *glRendererBackendImpl) CreateBuffer() (geometry.BufferID, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, errors.New("glGenBuffers returned no buffer")
	}
	b.uploaded[geometry.BufferID(id)] = 0
	return geometry.BufferID(id), nil
}

func (b *glRendererBackendImpl) Upload(id geometry.BufferID, data []float32, usage geometry.Usage) error {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(id))
	if len(data) == 0 {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, glUsages[usage])
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), glUsages[usage])
	}
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("glBufferData on buffer %d failed with 0x%x", id, code)
	}
	b.uploaded[id] = len(data) * 4
	return nil
}

func (b *glRendererBackendImpl) BufferSize(id geometry.BufferID) (int, error) {
	n, ok := b.uploaded[id]
	if !ok {
		return 0, fmt.Errorf("buffer %d does not exist", id)
	}
	if n == 0 {
		return 0, nil
	}
	var size int32
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(id))
	gl.GetBufferParameteriv(gl.ARRAY_BUFFER, gl.BUFFER_SIZE, &size)
	return int(size), nil
}

func (b *glRendererBackendImpl) DeleteBuffer(id geometry.BufferID) {
	if _, ok := b.uploaded[id]; !ok {
		return
	}
	delete(b.uploaded, id)
	buf := uint32(id)
	gl.DeleteBuffers(1, &buf)
}

func (b *glRendererBackendImpl) Resize(width, height int) {
	b.width = width
	b.height = height
}

func (b *glRendererBackendImpl) SetClearColor(c mgl32.Vec4) {
	b.clearColor = c
}

func (b *glRendererBackendImpl) BeginFrame() error {
	gl.Viewport(0, 0, int32(b.width), int32(b.height))
	gl.ClearColor(b.clearColor[0], b.clearColor[1], b.clearColor[2], b.clearColor[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (b *glRendererBackendImpl) UseProgram(program shader.Handle) {
	gl.UseProgram(uint32(program))
}

func (b *glRendererBackendImpl) UniformMatrix4(loc shader.Location, m mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (b *glRendererBackendImpl) UniformMatrix3(loc shader.Location, m mgl32.Mat3) {
	gl.UniformMatrix3fv(int32(loc), 1, false, &m[0])
}

func (b *glRendererBackendImpl) UniformVec3(loc shader.Location, v mgl32.Vec3) {
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}

func (b *glRendererBackendImpl) UniformFloat(loc shader.Location, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (b *glRendererBackendImpl) BindAttribute(loc shader.Location, buffer geometry.BufferID, components int) {
	slot := uint32(loc)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
	gl.EnableVertexAttribArray(slot)
	gl.VertexAttribPointerWithOffset(slot, int32(components), gl.FLOAT, false, 0, 0)
	b.enabled = append(b.enabled, slot)
}

func (b *glRendererBackendImpl) Draw(topology Topology, first, count int) {
	gl.DrawArrays(glTopologies[topology], int32(first), int32(count))
	for _, slot := range b.enabled {
		gl.DisableVertexAttribArray(slot)
	}
	b.enabled = b.enabled[:0]
}

func (b *glRendererBackendImpl) EndFrame() {
	gl.Flush()
}

func (b *glRendererBackendImpl) Present() {
	b.window.SwapBuffers()
}

func (b *glRendererBackendImpl) Release() {
	for id := range b.uploaded {
		b.DeleteBuffer(id)
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
}
