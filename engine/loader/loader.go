package loader

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/h2non/filetype"
)

// sniffLength is the number of header bytes handed to the content sniffer.
const sniffLength = 261

// taskQueueSize bounds the decode tasks waiting for a worker; SubmitTask blocks beyond it.
const taskQueueSize = 256

// Image is a decoded image held as tightly packed 8-bit pixels, row-major from the top-left corner.
//
// An empty Image (see Empty) reports a width and height of -1.
type Image struct {
	Pixels     []byte
	Width      int
	Height     int
	Components int
}

// Empty reports whether the image carries no pixel data.
//
// Returns:
//   - bool: true when decoding failed or nothing was read
func (i Image) Empty() bool {
	return i.Width <= 0 || i.Height <= 0 || len(i.Pixels) == 0
}

func emptyImage() Image {
	return Image{Width: -1, Height: -1}
}

// Result pairs a path with the image decoded from it by DecodeAll.
type Result struct {
	Path  string
	Image Image
}

// Loader reads image files from disk, picking a Decoder by file extension.
type Loader interface {
	// Decode reads and decodes the image at path.
	//
	// Failures never abort: an unreadable or undecodable file is logged and an empty Image is returned.
	//
	// Parameters:
	//   - path: the file to read
	//
	// Returns:
	//   - Image: the decoded image, or an empty Image on failure
	Decode(path string) Image

	// DecodeAll decodes every path concurrently on the loader's worker pool.
	//
	// Parameters:
	//   - paths: the files to read
	//
	// Returns:
	//   - []Result: one result per path, in the same order as paths
	DecodeAll(paths []string) []Result

	// DecoderFor returns the decoder registered for a file extension.
	//
	// Parameters:
	//   - ext: the extension without the leading dot, matched case-sensitively
	//
	// Returns:
	//   - Decoder: the registered decoder, or the fallback decoder
	//   - bool: false when ext has no registered decoder and the fallback was chosen
	DecoderFor(ext string) (Decoder, bool)

	// Release stops the worker pool. Later DecodeAll calls decode on the calling goroutine.
	// Safe to call more than once.
	Release()

	// Register adds or replaces the decoder for one or more extensions.
	//
	// Parameters:
	//   - d: the decoder
	//   - exts: extensions without the leading dot
	Register(d Decoder, exts ...string)
}

type loader struct {
	mu       sync.RWMutex
	decoders map[string]Decoder
	fallback Decoder
	workers  int
	logger   *log.Logger

	// pool is created once in NewLoader and shared by every DecodeAll call.
	// poolMu is held for reading for the whole of a DecodeAll so Release waits for it.
	poolMu   sync.RWMutex
	pool     worker.DynamicWorkerPool
	released bool
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the JPEG decoder registered for jpg, jpeg, JPG and JPEG.
//
// Any other extension falls back to the JPEG decoder with a logged warning.
//
// Parameters:
//   - options: variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	jpeg := &jpegDecoder{}
	l := &loader{
		decoders: map[string]Decoder{
			"jpg":  jpeg,
			"jpeg": jpeg,
			"JPG":  jpeg,
			"JPEG": jpeg,
		},
		fallback: jpeg,
		workers:  4,
		logger:   log.Default(),
	}

	for _, opt := range options {
		opt(l)
	}

	if l.workers < 1 {
		l.workers = 1
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, taskQueueSize, 1*time.Second)
	return l
}

// defaultLoader backs the package-level Decode.
var defaultLoader = sync.OnceValue(func() Loader {
	return NewLoader(WithWorkers(1))
})

// Decode reads the image at path with the default Loader.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - []byte: packed pixel data, nil on failure
//   - int: width in pixels, -1 on failure
//   - int: height in pixels, -1 on failure
func Decode(path string) ([]byte, int, int) {
	img := defaultLoader().Decode(path)
	return img.Pixels, img.Width, img.Height
}

func (l *loader) Decode(path string) Image {
	ext := extension(path)
	if ext == "" {
		l.logger.Printf("[Loader] %s does not have an extension, assuming JPEG", path)
	}

	d, ok := l.DecoderFor(ext)
	if !ok && ext != "" {
		// TODO: register a PNG decoder once a scene samples textures; until then JPEG is the only reader.
		l.logger.Printf("[Loader] no decoder for extension %q of %s, falling back to %s", ext, path, d.Name())
	}

	f, err := os.Open(path)
	if err != nil {
		l.logger.Printf("[Loader] Couldn't open %s for reading: %v", path, err)
		return emptyImage()
	}
	defer f.Close()

	l.sniff(f, path, d)

	img, err := d.Decode(f)
	if err != nil {
		l.logger.Printf("[Loader] %v", fmt.Errorf("decode %s: %w", path, err))
		return emptyImage()
	}
	return img
}

func (l *loader) DecodeAll(paths []string) []Result {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results
	}

	l.poolMu.RLock()
	defer l.poolMu.RUnlock()

	if l.released {
		for i, path := range paths {
			results[i] = Result{Path: path, Image: l.Decode(path)}
		}
		return results
	}

	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		idx, path := i, p
		l.pool.SubmitTask(worker.Task{
			ID:      idx,
			Payload: path,
			Do: func() (any, error) {
				defer wg.Done()
				results[idx] = Result{Path: path, Image: l.Decode(path)}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return results
}

func (l *loader) Release() {
	l.poolMu.Lock()
	defer l.poolMu.Unlock()

	if l.released {
		return
	}
	l.released = true
	l.pool.Stop()
}

func (l *loader) DecoderFor(ext string) (Decoder, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if d, ok := l.decoders[ext]; ok {
		return d, true
	}
	return l.fallback, false
}

func (l *loader) Register(d Decoder, exts ...string) {
	if d == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ext := range exts {
		l.decoders[strings.TrimPrefix(ext, ".")] = d
	}
}

// sniff warns when the file header names a different format than the chosen decoder reads.
// The read offset of f is restored before returning.
func (l *loader) sniff(f *os.File, path string, d Decoder) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		l.logger.Printf("[Loader] read header of %s: %v", path, err)
	}
	if _, err := f.Seek(0, 0); err != nil {
		l.logger.Printf("[Loader] rewind %s: %v", path, err)
		return
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return
	}
	if !d.Accepts(kind.Extension) {
		l.logger.Printf("[Loader] %s looks like %s (%s) but is read as %s", path, kind.Extension, kind.MIME.Value, d.Name())
	}
}

// extension returns the text after the last dot of the file name, or "" when there is none.
func extension(path string) string {
	base := filepath.Base(path)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return base[i+1:]
}
