package shader

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// Manager loads shader sources, compiles and links them through a Compiler, resolves variable
// locations and reports diagnostics. It never aborts: unreadable files and compile or link errors
// are logged and the caller continues with whatever handle was produced.
type Manager interface {
	// CompileStage reads a shader source file and compiles it as a stage of the given kind.
	// If the file cannot be read the failure is logged and NullHandle is returned.
	// Compile errors are logged but the stage handle is still returned.
	//
	// Parameters:
	//   - path: path to the shader source file
	//   - kind: the stage kind to compile for
	//
	// Returns:
	//   - Handle: the compiled stage, or NullHandle if the source could not be read
	CompileStage(path string, kind StageKind) Handle

	// CompileSource compiles source text that is already in memory.
	//
	// Parameters:
	//   - label: a name used in log output (usually the file name)
	//   - source: the shader source text
	//   - kind: the stage kind to compile for
	//
	// Returns:
	//   - Handle: the compiled stage, or NullHandle if the backend could not allocate one
	CompileSource(label, source string, kind StageKind) Handle

	// Link creates a program, attaches every non-null stage and links it.
	// Null stages are skipped and noted so that Diagnostics on the program reports a link error.
	//
	// Parameters:
	//   - stages: the stages to link, typically one vertex and one fragment stage
	//
	// Returns:
	//   - Handle: the program, which may be unusable if linking failed
	Link(stages ...Handle) Handle

	// ResolveUniform looks up a uniform by name. Absence yields NotFound.
	ResolveUniform(program Handle, name string) Location

	// ResolveAttribute looks up a vertex attribute by name. Absence yields NotFound.
	ResolveAttribute(program Handle, name string) Location

	// Diagnostics returns the info log for a stage or a program. The kind of object is decided
	// by asking the backend whether the handle is a stage. Returns an empty string when there is
	// nothing to report.
	//
	// Parameters:
	//   - h: a stage or program handle
	//
	// Returns:
	//   - string: the trimmed log text
	Diagnostics(h Handle) string

	// LoadProgram compiles a vertex and a fragment source file, links them, deletes the stage
	// objects and resolves every binding once.
	//
	// Parameters:
	//   - vertPath: path to the vertex stage source
	//   - fragPath: path to the fragment stage source
	//   - bindings: semantic to shader-name mappings to resolve
	//
	// Returns:
	//   - *Program: the program with its resolved locations
	LoadProgram(vertPath, fragPath string, bindings Bindings) *Program

	// DeleteStage releases a stage handle. NullHandle is ignored.
	DeleteStage(stage Handle)

	// DeleteProgram releases a program handle and any notes kept for it. NullHandle is ignored.
	DeleteProgram(program Handle)
}

// manager is the implementation of the Manager interface.
type manager struct {
	compiler Compiler
	logger   *log.Logger

	// notes holds link problems detected before the backend saw the program, keyed by program handle.
	notes map[Handle][]string
}

var _ Manager = &manager{}

// NewManager creates a Manager that drives the given Compiler.
//
// Parameters:
//   - compiler: the backend that owns the actual stage and program objects
//   - options: functional options (logger)
//
// Returns:
//   - Manager: the shader manager
func NewManager(compiler Compiler, options ...ManagerBuilderOption) Manager {
	m := &manager{
		compiler: compiler,
		logger:   log.Default(),
		notes:    make(map[Handle][]string),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *manager) CompileStage(path string, kind StageKind) Handle {
	src, err := os.ReadFile(path)
	if err != nil {
		m.logger.Printf("[Shader] could not open %s for reading: %v", path, err)
		return NullHandle
	}
	return m.CompileSource(path, string(src), kind)
}

func (m *manager) CompileSource(label, source string, kind StageKind) Handle {
	stage := m.compiler.CreateStage(kind)
	if stage == NullHandle {
		m.logger.Printf("[Shader] backend could not create a %s stage for %s", kind, label)
		return NullHandle
	}
	m.compiler.CompileStage(stage, source)
	if diag := m.Diagnostics(stage); diag != "" {
		m.logger.Printf("[Shader] %s compile log (%s): %s", kind, label, diag)
	}
	return stage
}

func (m *manager) Link(stages ...Handle) Handle {
	program := m.compiler.CreateProgram()
	if program == NullHandle {
		m.logger.Printf("[Shader] backend could not create a program")
		return NullHandle
	}

	for i, stage := range stages {
		if stage == NullHandle {
			m.notes[program] = append(m.notes[program], fmt.Sprintf("link: stage %d was not compiled and has been skipped", i))
			continue
		}
		m.compiler.AttachStage(program, stage)
	}
	m.compiler.LinkProgram(program)

	if diag := m.Diagnostics(program); diag != "" {
		m.logger.Printf("[Shader] program %d link log: %s", program, diag)
	}
	return program
}

func (m *manager) ResolveUniform(program Handle, name string) Location {
	if program == NullHandle {
		return NotFound
	}
	return m.compiler.UniformLocation(program, name)
}

func (m *manager) ResolveAttribute(program Handle, name string) Location {
	if program == NullHandle {
		return NotFound
	}
	return m.compiler.AttribLocation(program, name)
}

func (m *manager) Diagnostics(h Handle) string {
	if h == NullHandle {
		return ""
	}

	var parts []string
	if m.compiler.IsStage(h) {
		parts = append(parts, m.compiler.StageInfoLog(h))
	} else {
		parts = append(parts, m.compiler.ProgramInfoLog(h))
		parts = append(parts, m.notes[h]...)
	}

	var sb strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(p)
	}
	return sb.String()
}

func (m *manager) LoadProgram(vertPath, fragPath string, bindings Bindings) *Program {
	vs := m.CompileStage(vertPath, StageVertex)
	fs := m.CompileStage(fragPath, StageFragment)
	program := m.Link(vs, fs)

	// Linked programs keep their own copy of the compiled code.
	m.DeleteStage(vs)
	m.DeleteStage(fs)

	return newProgram(m, program, bindings)
}

func (m *manager) DeleteStage(stage Handle) {
	if stage == NullHandle {
		return
	}
	m.compiler.DeleteStage(stage)
}

func (m *manager) DeleteProgram(program Handle) {
	if program == NullHandle {
		return
	}
	delete(m.notes, program)
	m.compiler.DeleteProgram(program)
}
