package shader

// StageKind identifies the pipeline stage a shader stage object is compiled for.
type StageKind int

const (
	// StageVertex is the vertex stage, run once per vertex pulled from the bound attribute buffers.
	StageVertex StageKind = iota

	// StageFragment is the fragment stage, run once per rasterized fragment.
	StageFragment
)

func (k StageKind) String() string {
	switch k {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Handle is an opaque backend name for a stage or a program object.
// Stages and programs share one namespace, the same way OpenGL shader and program names do.
type Handle uint32

// NullHandle is never a valid stage or program. It is returned when a stage could not be created.
const NullHandle Handle = 0

// Location is a resolved uniform or vertex attribute slot inside a linked program.
type Location int32

// NotFound is the location reported for a name that is absent from the program or not used by any active stage.
// It is a normal outcome, not an error.
const NotFound Location = -1

// Valid reports whether the location refers to an active variable.
func (l Location) Valid() bool {
	return l >= 0
}

// Compiler is the backend surface driven by the Manager. It mirrors the object model of a GL-style
// shader API: stages are created, given source and compiled; programs are created, have stages
// attached and are linked. Nothing here returns an error; failures are recorded in the info logs.
type Compiler interface {
	// CreateStage allocates an empty stage object of the given kind.
	//
	// Parameters:
	//   - kind: the pipeline stage the object will be compiled for
	//
	// Returns:
	//   - Handle: the new stage, or NullHandle if the backend could not allocate one
	CreateStage(kind StageKind) Handle

	// CompileStage submits source text for the stage and compiles it.
	// Compile errors are written to the stage's info log.
	//
	// Parameters:
	//   - stage: the stage created by CreateStage
	//   - source: the full shader source text
	CompileStage(stage Handle, source string)

	// DeleteStage releases a stage object. Programs that already linked it are unaffected.
	//
	// Parameters:
	//   - stage: the stage to delete
	DeleteStage(stage Handle)

	// CreateProgram allocates an empty program object.
	//
	// Returns:
	//   - Handle: the new program, or NullHandle if the backend could not allocate one
	CreateProgram() Handle

	// AttachStage attaches a compiled stage to a program ahead of linking.
	//
	// Parameters:
	//   - program: the program to attach to
	//   - stage: the stage to attach
	AttachStage(program, stage Handle)

	// LinkProgram links every attached stage. Link errors are written to the program's info log.
	//
	// Parameters:
	//   - program: the program to link
	LinkProgram(program Handle)

	// DeleteProgram releases a program object.
	//
	// Parameters:
	//   - program: the program to delete
	DeleteProgram(program Handle)

	// IsStage reports whether the handle names a live stage object (as opposed to a program).
	//
	// Parameters:
	//   - h: the handle to query
	//
	// Returns:
	//   - bool: true if h is a stage
	IsStage(h Handle) bool

	// StageInfoLog returns the compile log of a stage, or an empty string when there is nothing to report.
	StageInfoLog(stage Handle) string

	// ProgramInfoLog returns the link log of a program, or an empty string when there is nothing to report.
	ProgramInfoLog(program Handle) string

	// UniformLocation resolves an active uniform by exact name.
	//
	// Parameters:
	//   - program: a linked program
	//   - name: the uniform name as written in the shader source
	//
	// Returns:
	//   - Location: the uniform slot, or NotFound
	UniformLocation(program Handle, name string) Location

	// AttribLocation resolves an active vertex attribute by exact name.
	//
	// Parameters:
	//   - program: a linked program
	//   - name: the attribute name as written in the shader source
	//
	// Returns:
	//   - Location: the attribute slot, or NotFound
	AttribLocation(program Handle, name string) Location
}
