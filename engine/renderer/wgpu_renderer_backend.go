package renderer

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-spiro/common"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/geometry"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

var wgpuTopologies = map[Topology]wgpu.PrimitiveTopology{
	TopologyLineStrip: wgpu.PrimitiveTopologyLineStrip,
	TopologyTriangles: wgpu.PrimitiveTopologyTriangleList,
}

// wgpuStage is a compiled WGSL module and what was reflected from it.
type wgpuStage struct {
	stageRef

	kind       shader.StageKind
	module     *wgpu.ShaderModule
	reflection shader.WGSLReflection
	log        string
}

// stageRef counts the programs linked against a stage so its module outlives DeleteStage.
type stageRef struct {
	refs    int
	deleted bool
}

func (r *stageRef) retain() {
	r.refs++
}

// drop gives up one program reference and reports whether the stage's module can be freed.
func (r *stageRef) drop() bool {
	if r.refs > 0 {
		r.refs--
	}
	return r.deleted && r.refs == 0
}

// markDeleted reports whether the stage's module can be freed right away.
func (r *stageRef) markDeleted() bool {
	r.deleted = true
	return r.refs == 0
}

func (s *wgpuStage) releaseModule() {
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}

// wgpuUniform is the buffer backing one var<uniform> declaration.
type wgpuUniform struct {
	binding uint32
	size    uint64
	buffer  *wgpu.Buffer
}

// wgpuProgram is a linked vertex/fragment pair. Render pipelines are created lazily per topology
// because WebGPU bakes the primitive topology into the pipeline.
type wgpuProgram struct {
	attached []shader.Handle
	log      string
	linked   bool

	vertex   *wgpuStage
	fragment *wgpuStage

	uniforms      map[string]*wgpuUniform
	uniformsByLoc map[shader.Location]*wgpuUniform
	attributes    map[string]shader.WGSLAttribute

	// attributeOrder lists attribute locations in vertex buffer slot order.
	attributeOrder []uint32

	bindGroupLayout *wgpu.BindGroupLayout
	bindGroup       *wgpu.BindGroup
	pipelineLayout  *wgpu.PipelineLayout
	pipelines       map[Topology]*wgpu.RenderPipeline
}

// wgpuVertexBuffer grows by reallocation; size is the byte count of the last upload.
type wgpuVertexBuffer struct {
	buffer   *wgpu.Buffer
	capacity uint64
	size     uint64
}

type wgpuRendererBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	clearColor    mgl32.Vec4

	// stages and programs share one handle namespace, as GL shader and program names do.
	nextHandle shader.Handle
	stages     map[shader.Handle]*wgpuStage
	programs   map[shader.Handle]*wgpuProgram

	nextBuffer geometry.BufferID
	buffers    map[geometry.BufferID]*wgpuVertexBuffer

	current *wgpuProgram
	attribs map[uint32]geometry.BufferID
	warned  map[string]bool

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// newWGPURendererBackend creates the instance, surface, adapter, device and queue.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, cfg backendConfig) (*wgpuRendererBackendImpl, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("window has no surface descriptor")
	}
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		clearColor:  cfg.clearColor,
		stages:      make(map[shader.Handle]*wgpuStage),
		programs:    make(map[shader.Handle]*wgpuProgram),
		buffers:     make(map[geometry.BufferID]*wgpuVertexBuffer),
		attribs:     make(map[uint32]geometry.BufferID),
		warned:      make(map[string]bool),
	}
	if cfg.presentMode == PresentModeUncapped {
		b.presentMode = wgpu.PresentModeImmediate
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	return b, nil
}

func (b *wgpuRendererBackendImpl) allocHandle() shader.Handle {
	b.nextHandle++
	return b.nextHandle
}

func (b *wgpuRendererBackendImpl) CreateStage(kind shader.StageKind) shader.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocHandle()
	b.stages[h] = &wgpuStage{kind: kind}
	return h
}

func (b *wgpuRendererBackendImpl) CompileStage(stage shader.Handle, source string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stages[stage]
	if !ok {
		return
	}
	s.releaseModule()
	s.log = ""
	s.reflection = shader.ReflectWGSL(source)

	switch {
	case s.kind == shader.StageVertex && s.reflection.VertexEntry == "":
		s.log = "error: no @vertex entry point"
		return
	case s.kind == shader.StageFragment && s.reflection.FragmentEntry == "":
		s.log = "error: no @fragment entry point"
		return
	}

	mod, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fmt.Sprintf("%s stage %d", s.kind, stage),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		s.log = err.Error()
		return
	}
	s.module = mod
}

func (b *wgpuRendererBackendImpl) DeleteStage(stage shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, ok := b.stages[stage]
	if !ok {
		return
	}
	delete(b.stages, stage)
	if s.markDeleted() {
		s.releaseModule()
	}
}

func (b *wgpuRendererBackendImpl) CreateProgram() shader.Handle {
	b.mu.Lock()
	defer b.mu.Unlock()

	h := b.allocHandle()
	b.programs[h] = &wgpuProgram{
		pipelines: make(map[Topology]*wgpu.RenderPipeline),
	}
	return h
}

func (b *wgpuRendererBackendImpl) AttachStage(program, stage shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.programs[program]; ok {
		p.attached = append(p.attached, stage)
	}
}

func (b *wgpuRendererBackendImpl) LinkProgram(program shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok {
		return
	}
	p.linked = false
	if err := b.link(p); err != nil {
		p.log = "link error: " + err.Error()
		return
	}
	p.log = ""
	p.linked = true
}

// link frees whatever a previous link built, then builds the program again. A failed build
// leaves nothing allocated.
func (b *wgpuRendererBackendImpl) link(p *wgpuProgram) error {
	b.releaseProgram(p)
	if err := b.buildProgram(p); err != nil {
		b.releaseProgram(p)
		return err
	}
	return nil
}

// buildProgram pairs the attached stages, merges their uniforms into bind group 0 and allocates
// one uniform buffer per binding.
func (b *wgpuRendererBackendImpl) buildProgram(p *wgpuProgram) error {
	var vertex, fragment *wgpuStage
	for _, h := range p.attached {
		s, ok := b.stages[h]
		if !ok {
			return fmt.Errorf("stage %d does not exist", h)
		}
		if s.module == nil {
			return fmt.Errorf("%s stage %d did not compile", s.kind, h)
		}
		switch s.kind {
		case shader.StageVertex:
			vertex = s
		case shader.StageFragment:
			fragment = s
		}
	}
	if vertex == nil {
		return errors.New("program has no vertex stage")
	}
	if fragment == nil {
		return errors.New("program has no fragment stage")
	}
	p.vertex, p.fragment = vertex, fragment
	vertex.retain()
	fragment.retain()

	p.uniforms = make(map[string]*wgpuUniform)
	p.uniformsByLoc = make(map[shader.Location]*wgpuUniform)
	for _, s := range []*wgpuStage{p.vertex, p.fragment} {
		for name, u := range s.reflection.Uniforms {
			if u.Group != 0 {
				return fmt.Errorf("uniform %s: only @group(0) is supported", name)
			}
			if prev, ok := p.uniforms[name]; ok {
				if prev.binding != u.Binding {
					return fmt.Errorf("uniform %s is bound to %d and %d", name, prev.binding, u.Binding)
				}
				prev.size = max(prev.size, u.Size)
				continue
			}
			p.uniforms[name] = &wgpuUniform{binding: u.Binding, size: u.Size}
		}
	}

	p.attributes = p.vertex.reflection.Attributes
	p.attributeOrder = p.attributeOrder[:0]
	for _, a := range p.attributes {
		p.attributeOrder = append(p.attributeOrder, a.Location)
	}
	slices.Sort(p.attributeOrder)

	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(p.uniforms))
	groupEntries := make([]wgpu.BindGroupEntry, 0, len(p.uniforms))
	for name, u := range p.uniforms {
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Uniform " + name,
			Size:  u.size,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("failed to create uniform buffer for %s: %w", name, err)
		}
		u.buffer = buf
		p.uniformsByLoc[shader.Location(u.binding)] = u

		entry := wgpu.BindGroupLayoutEntry{
			Binding:    u.binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = u.size
		entries = append(entries, entry)
		groupEntries = append(groupEntries, wgpu.BindGroupEntry{
			Binding: u.binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	var layouts []*wgpu.BindGroupLayout
	if len(entries) > 0 {
		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   "Uniforms",
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group layout: %w", err)
		}
		p.bindGroupLayout = layout
		layouts = append(layouts, layout)

		bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   "Uniforms",
			Layout:  layout,
			Entries: groupEntries,
		})
		if err != nil {
			return fmt.Errorf("failed to create bind group: %w", err)
		}
		p.bindGroup = bg
	}

	pl, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Program",
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline layout: %w", err)
	}
	p.pipelineLayout = pl
	return nil
}

func (b *wgpuRendererBackendImpl) DeleteProgram(program shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok {
		return
	}
	b.releaseProgram(p)
	if b.current == p {
		b.current = nil
	}
	delete(b.programs, program)
}

// releaseProgram frees every GPU object the program owns and drops its stage references.
// The program record itself stays usable for another link.
func (b *wgpuRendererBackendImpl) releaseProgram(p *wgpuProgram) {
	for _, rp := range p.pipelines {
		rp.Release()
	}
	clear(p.pipelines)
	for _, u := range p.uniforms {
		if u.buffer != nil {
			u.buffer.Release()
		}
	}
	p.uniforms, p.uniformsByLoc = nil, nil
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	for _, s := range []*wgpuStage{p.vertex, p.fragment} {
		if s != nil && s.drop() {
			s.releaseModule()
		}
	}
	p.vertex, p.fragment = nil, nil
	p.attributes = nil
	p.attributeOrder = p.attributeOrder[:0]
}

func (b *wgpuRendererBackendImpl) IsStage(h shader.Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.stages[h]
	return ok
}

func (b *wgpuRendererBackendImpl) StageInfoLog(stage shader.Handle) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.stages[stage]; ok {
		return s.log
	}
	return ""
}

func (b *wgpuRendererBackendImpl) ProgramInfoLog(program shader.Handle) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.programs[program]; ok {
		return p.log
	}
	return ""
}

func (b *wgpuRendererBackendImpl) UniformLocation(program shader.Handle, name string) shader.Location {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok || !p.linked {
		return shader.NotFound
	}
	if u, ok := p.uniforms[name]; ok {
		return shader.Location(u.binding)
	}
	return shader.NotFound
}

func (b *wgpuRendererBackendImpl) AttribLocation(program shader.Handle, name string) shader.Location {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok || !p.linked {
		return shader.NotFound
	}
	if a, ok := p.attributes[name]; ok {
		return shader.Location(a.Location)
	}
	return shader.NotFound
}

func (b *wgpuRendererBackendImpl) CreateBuffer() (geometry.BufferID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextBuffer++
	b.buffers[b.nextBuffer] = &wgpuVertexBuffer{}
	return b.nextBuffer, nil
}

// Upload replaces the buffer contents. WebGPU has no usage hint for vertex data, so usage only
// shows up in the buffer label. The GPU buffer is reallocated when the data outgrows it.
func (b *wgpuRendererBackendImpl) Upload(id geometry.BufferID, data []float32, usage geometry.Usage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vb, ok := b.buffers[id]
	if !ok {
		return fmt.Errorf("buffer %d does not exist", id)
	}

	bytes := common.SliceToBytes(data)
	n := uint64(len(bytes))
	if n > vb.capacity {
		capacity := max(n, 2*vb.capacity)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            fmt.Sprintf("Vertex Buffer %d (%s)", id, usage),
			Size:             capacity,
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			return fmt.Errorf("failed to grow buffer %d to %d bytes: %w", id, capacity, err)
		}
		if vb.buffer != nil {
			vb.buffer.Release()
		}
		vb.buffer = buf
		vb.capacity = capacity
	}
	if n > 0 {
		b.queue.WriteBuffer(vb.buffer, 0, bytes)
	}
	vb.size = n
	return nil
}

func (b *wgpuRendererBackendImpl) BufferSize(id geometry.BufferID) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vb, ok := b.buffers[id]
	if !ok {
		return 0, fmt.Errorf("buffer %d does not exist", id)
	}
	return int(vb.size), nil
}

func (b *wgpuRendererBackendImpl) DeleteBuffer(id geometry.BufferID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if vb, ok := b.buffers[id]; ok {
		if vb.buffer != nil {
			vb.buffer.Release()
		}
		delete(b.buffers, id)
	}
}

func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (b *wgpuRendererBackendImpl) SetClearColor(c mgl32.Vec4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearColor = c
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	c := b.clearColor
	b.framePass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    view,
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3]),
				},
			},
		},
	})
	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	clear(b.attribs)

	return nil
}

func (b *wgpuRendererBackendImpl) UseProgram(program shader.Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok || !p.linked {
		b.current = nil
		return
	}
	b.current = p
}

// writeUniform copies host bytes into the uniform buffer behind loc. queue.WriteBuffer is ordered
// before the frame's command buffer is submitted in EndFrame.
func (b *wgpuRendererBackendImpl) writeUniform(loc shader.Location, data []float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return
	}
	u, ok := b.current.uniformsByLoc[loc]
	if !ok {
		return
	}
	bytes := common.SliceToBytes(data)
	if uint64(len(bytes)) > u.size {
		bytes = bytes[:u.size]
	}
	b.queue.WriteBuffer(u.buffer, 0, bytes)
}

func (b *wgpuRendererBackendImpl) UniformMatrix4(loc shader.Location, m mgl32.Mat4) {
	b.writeUniform(loc, m[:])
}

// UniformMatrix3 pads each column to 16 bytes as mat3x3<f32> is laid out in uniform memory.
func (b *wgpuRendererBackendImpl) UniformMatrix3(loc shader.Location, m mgl32.Mat3) {
	padded := []float32{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
	}
	b.writeUniform(loc, padded)
}

func (b *wgpuRendererBackendImpl) UniformVec3(loc shader.Location, v mgl32.Vec3) {
	b.writeUniform(loc, []float32{v[0], v[1], v[2], 0})
}

func (b *wgpuRendererBackendImpl) UniformFloat(loc shader.Location, v float32) {
	b.writeUniform(loc, []float32{v, 0, 0, 0})
}

func (b *wgpuRendererBackendImpl) BindAttribute(loc shader.Location, buffer geometry.BufferID, components int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attribs[uint32(loc)] = buffer
}

// pipelineFor returns the cached render pipeline for the program and topology, creating it on first use.
// Each attribute gets its own vertex buffer slot, in ascending location order.
func (b *wgpuRendererBackendImpl) pipelineFor(p *wgpuProgram, topology Topology) (*wgpu.RenderPipeline, error) {
	if rp, ok := p.pipelines[topology]; ok {
		return rp, nil
	}

	byLoc := make(map[uint32]shader.WGSLAttribute, len(p.attributes))
	for _, a := range p.attributes {
		byLoc[a.Location] = a
	}
	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(p.attributeOrder))
	for _, loc := range p.attributeOrder {
		a := byLoc[loc]
		vertexLayouts = append(vertexLayouts, wgpu.VertexBufferLayout{
			ArrayStride: a.Size,
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes: []wgpu.VertexAttribute{
				{Format: a.Format, Offset: 0, ShaderLocation: a.Location},
			},
		})
	}

	rp, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Program %s Render Pipeline", topology),
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.vertex.module,
			EntryPoint: p.vertex.reflection.VertexEntry,
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragment.module,
			EntryPoint: p.fragment.reflection.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpuTopologies[topology],
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}
	p.pipelines[topology] = rp
	return rp, nil
}

// warnOnce logs a message the first time a given key is seen.
func (b *wgpuRendererBackendImpl) warnOnce(key, format string, args ...any) {
	if b.warned[key] {
		return
	}
	b.warned[key] = true
	log.Printf("[Renderer] "+format, args...)
}

func (b *wgpuRendererBackendImpl) Draw(topology Topology, first, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.current
	if p == nil || b.framePass == nil {
		return
	}
	rp, err := b.pipelineFor(p, topology)
	if err != nil {
		b.warnOnce("pipeline:"+topology.String(), "failed to create %s pipeline: %v", topology, err)
		return
	}

	// Every shader input needs a buffer; WebGPU has no disabled-attribute default.
	for slot, loc := range p.attributeOrder {
		id, ok := b.attribs[loc]
		vb := b.buffers[id]
		if !ok || vb == nil || vb.buffer == nil || vb.size == 0 {
			b.warnOnce(fmt.Sprintf("attr:%d", loc), "no data bound for vertex input at location %d, skipping draw", loc)
			return
		}
		b.framePass.SetVertexBuffer(uint32(slot), vb.buffer, 0, vb.size)
	}

	b.framePass.SetPipeline(rp)
	if p.bindGroup != nil {
		b.framePass.SetBindGroup(0, p.bindGroup, nil)
	}
	b.framePass.Draw(uint32(count), 1, uint32(first), 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for h, p := range b.programs {
		b.releaseProgram(p)
		delete(b.programs, h)
	}
	for h, s := range b.stages {
		s.releaseModule()
		delete(b.stages, h)
	}
	for id, vb := range b.buffers {
		if vb.buffer != nil {
			vb.buffer.Release()
		}
		delete(b.buffers, id)
	}
	b.current = nil

	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
