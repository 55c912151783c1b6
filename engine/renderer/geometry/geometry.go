package geometry

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// BufferID names a GPU-resident vertex buffer owned by an Uploader. Zero is never a valid buffer.
type BufferID uint32

// Usage tells the backend how often a buffer's contents will be replaced.
type Usage int

const (
	// UsageStatic marks data uploaded once and drawn many times.
	UsageStatic Usage = iota

	// UsageDynamic marks data replaced every frame.
	UsageDynamic
)

func (u Usage) String() string {
	if u == UsageDynamic {
		return "dynamic"
	}
	return "static"
}

var (
	// ErrVertexCountMismatch is returned when the streams of a Buffers set disagree on vertex count.
	ErrVertexCountMismatch = errors.New("geometry: vertex count mismatch")

	// ErrColorStream is returned when a color is appended to a set without a color stream, or omitted from one that has it.
	ErrColorStream = errors.New("geometry: color stream mismatch")
)

// Uploader owns GPU vertex buffers. Every upload replaces the whole buffer.
type Uploader interface {
	// CreateBuffer allocates an empty vertex buffer.
	//
	// Returns:
	//   - BufferID: the new buffer
	//   - error: if the backend could not allocate it
	CreateBuffer() (BufferID, error)

	// Upload replaces the entire contents of a buffer with host data.
	//
	// Parameters:
	//   - id: the target buffer
	//   - data: the host array; an empty slice leaves a zero-sized buffer
	//   - usage: static or dynamic usage hint
	//
	// Returns:
	//   - error: if the buffer is unknown or the upload failed
	Upload(id BufferID, data []float32, usage Usage) error

	// BufferSize reports the size of a buffer in bytes, as the GPU sees it.
	BufferSize(id BufferID) (int, error)

	// DeleteBuffer releases a buffer. Unknown ids are ignored.
	DeleteBuffer(id BufferID)
}

// Stream is one per-vertex attribute array and the GPU buffer it is uploaded to.
type Stream struct {
	// Attribute is the shader semantic the stream feeds.
	Attribute shader.Semantic

	// Components is the number of floats per vertex.
	Components int

	// Buffer is the GPU buffer backing the stream.
	Buffer BufferID

	data []float32
}

// Data returns the host-side array. The slice must not be modified.
func (s *Stream) Data() []float32 {
	return s.data
}

// VertexCount is the number of whole vertices in the stream.
func (s *Stream) VertexCount() int {
	if s.Components == 0 {
		return 0
	}
	return len(s.data) / s.Components
}

type streamLayout struct {
	sem   shader.Semantic
	comps int
}

// Buffers is an ordered set of streams: position, normal and optionally color.
// Host arrays grow by AppendVertex and are pushed to the GPU in full by Upload.
type Buffers struct {
	uploader Uploader
	usage    Usage
	streams  []*Stream
	color    bool
}

// NewBuffers allocates one GPU buffer per stream.
//
// Parameters:
//   - u: the uploader owning the GPU buffers
//   - usage: the usage hint passed on every upload
//   - withColor: whether the set has a 4-component color stream
//
// Returns:
//   - *Buffers: the empty buffer set
//   - error: if any GPU buffer could not be created; already created buffers are released
func NewBuffers(u Uploader, usage Usage, withColor bool) (*Buffers, error) {
	b := &Buffers{
		uploader: u,
		usage:    usage,
		color:    withColor,
	}
	layout := []streamLayout{
		{shader.Position, 3},
		{shader.Normal, 3},
	}
	if withColor {
		layout = append(layout, streamLayout{shader.Color, 4})
	}

	for _, l := range layout {
		id, err := u.CreateBuffer()
		if err != nil {
			b.Release()
			return nil, fmt.Errorf("failed to create %s buffer: %w", l.sem, err)
		}
		b.streams = append(b.streams, &Stream{Attribute: l.sem, Components: l.comps, Buffer: id})
	}
	return b, nil
}

// AppendVertex appends one vertex to every stream. When the set has a color stream exactly one
// color must be given, otherwise none. On error nothing is appended.
//
// Parameters:
//   - position: the vertex position
//   - normal: the vertex normal
//   - color: the vertex color, for sets with a color stream
//
// Returns:
//   - error: ErrColorStream on a color mismatch
func (b *Buffers) AppendVertex(position, normal mgl32.Vec3, color ...mgl32.Vec4) error {
	if b.color != (len(color) == 1) || len(color) > 1 {
		return fmt.Errorf("%w: set has color stream=%t, got %d colors", ErrColorStream, b.color, len(color))
	}
	b.streams[0].data = append(b.streams[0].data, position[:]...)
	b.streams[1].data = append(b.streams[1].data, normal[:]...)
	if b.color {
		b.streams[2].data = append(b.streams[2].data, color[0][:]...)
	}
	return nil
}

// VertexCount is the number of vertices in the position stream, which is what a draw call uses.
func (b *Buffers) VertexCount() int {
	return b.streams[0].VertexCount()
}

// Validate checks that every stream holds whole vertices and the same vertex count as the position stream.
//
// Returns:
//   - error: wraps ErrVertexCountMismatch when the invariant does not hold
func (b *Buffers) Validate() error {
	n := b.VertexCount()
	for _, s := range b.streams {
		if len(s.data)%s.Components != 0 || s.VertexCount() != n {
			return fmt.Errorf("%w: %s has %d floats, position has %d vertices", ErrVertexCountMismatch, s.Attribute, len(s.data), n)
		}
	}
	return nil
}

// Upload validates the set and replaces every GPU buffer with its host array.
//
// Returns:
//   - error: a validation error or the first upload error
func (b *Buffers) Upload() error {
	if err := b.Validate(); err != nil {
		return err
	}
	for _, s := range b.streams {
		if err := b.uploader.Upload(s.Buffer, s.data, b.usage); err != nil {
			return fmt.Errorf("failed to upload %s stream: %w", s.Attribute, err)
		}
	}
	return nil
}

// Reset empties every host array. GPU buffers keep their contents until the next Upload.
func (b *Buffers) Reset() {
	for _, s := range b.streams {
		s.data = s.data[:0]
	}
}

// Streams returns the streams in layout order.
func (b *Buffers) Streams() []*Stream {
	return b.streams
}

// Stream returns the stream feeding the given semantic, or nil.
func (b *Buffers) Stream(sem shader.Semantic) *Stream {
	for _, s := range b.streams {
		if s.Attribute == sem {
			return s
		}
	}
	return nil
}

// Usage returns the usage hint used for uploads.
func (b *Buffers) Usage() Usage {
	return b.usage
}

// Release deletes every GPU buffer. The set must not be used afterwards.
func (b *Buffers) Release() {
	for _, s := range b.streams {
		b.uploader.DeleteBuffer(s.Buffer)
	}
	b.streams = nil
}
