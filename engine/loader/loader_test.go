package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 100}))
	return path
}

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestLoader(opts ...LoaderBuilderOption) (Loader, *bytes.Buffer) {
	var buf bytes.Buffer
	opts = append([]LoaderBuilderOption{WithLogger(log.New(&buf, "", 0))}, opts...)
	return NewLoader(opts...), &buf
}

func TestDecodeColorJPEG(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "red.jpg", solid(8, 4, color.RGBA{R: 255, A: 255}))
	l, logs := newTestLoader()

	img := l.Decode(path)
	require.False(t, img.Empty())
	assert.Equal(t, 8, img.Width)
	assert.Equal(t, 4, img.Height)
	assert.Equal(t, 3, img.Components)
	assert.Len(t, img.Pixels, 8*4*3)
	assert.InDelta(t, 255, int(img.Pixels[0]), 8)
	assert.InDelta(t, 0, int(img.Pixels[1]), 8)
	assert.InDelta(t, 0, int(img.Pixels[2]), 8)
	assert.Empty(t, logs.String())
}

func TestDecodeGrayJPEG(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 5, 3))
	for i := range gray.Pix {
		gray.Pix[i] = 128
	}
	path := writeJPEG(t, t.TempDir(), "gray.jpeg", gray)
	l, _ := newTestLoader()

	img := l.Decode(path)
	require.False(t, img.Empty())
	assert.Equal(t, 1, img.Components)
	assert.Len(t, img.Pixels, 5*3)
}

func TestDecodeMissingFile(t *testing.T) {
	l, logs := newTestLoader()

	img := l.Decode(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.True(t, img.Empty())
	assert.Equal(t, -1, img.Width)
	assert.Equal(t, -1, img.Height)
	assert.Nil(t, img.Pixels)
	assert.Contains(t, logs.String(), "Couldn't open")
	assert.Contains(t, logs.String(), "missing.jpg")
}

func TestDecodeUnknownExtensionFallsBackToJPEG(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "photo.tga", solid(2, 2, color.White))
	l, logs := newTestLoader()

	img := l.Decode(path)
	assert.False(t, img.Empty())
	assert.Contains(t, logs.String(), `no decoder for extension "tga"`)
	assert.Contains(t, logs.String(), "falling back to JPEG")
}

func TestDecodeWithoutExtension(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "noext", solid(2, 2, color.White))
	l, logs := newTestLoader()

	img := l.Decode(path)
	assert.False(t, img.Empty())
	assert.Contains(t, logs.String(), "does not have an extension")
}

func TestDecodeSniffMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, solid(2, 2, color.Black)))
	require.NoError(t, f.Close())

	l, logs := newTestLoader()
	img := l.Decode(path)

	assert.True(t, img.Empty())
	assert.Contains(t, logs.String(), "looks like png")
	assert.Contains(t, logs.String(), "decode")
}

func TestDecoderFor(t *testing.T) {
	l := NewLoader()

	for _, ext := range []string{"jpg", "jpeg", "JPG", "JPEG"} {
		d, ok := l.DecoderFor(ext)
		assert.True(t, ok, ext)
		assert.Equal(t, "JPEG", d.Name())
	}

	d, ok := l.DecoderFor("Jpg")
	assert.False(t, ok)
	assert.Equal(t, "JPEG", d.Name())
}

func TestRegisterDecoder(t *testing.T) {
	l := NewLoader(WithDecoder(&jpegDecoder{}, "jfif"))

	_, ok := l.DecoderFor("jfif")
	assert.True(t, ok)

	l.Register(nil, "png")
	_, ok = l.DecoderFor("png")
	assert.False(t, ok)

	l.Register(&jpegDecoder{}, ".jpe")
	_, ok = l.DecoderFor("jpe")
	assert.True(t, ok)
}

func TestDecodeAllKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeJPEG(t, dir, "a.jpg", solid(1, 1, color.White)),
		filepath.Join(dir, "missing.jpg"),
		writeJPEG(t, dir, "c.jpg", solid(3, 2, color.White)),
		writeJPEG(t, dir, "d.JPEG", solid(4, 4, color.White)),
	}
	l, _ := newTestLoader(WithWorkers(2))

	results := l.DecodeAll(paths)
	require.Len(t, results, len(paths))
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
	assert.Equal(t, 1, results[0].Image.Width)
	assert.True(t, results[1].Image.Empty())
	assert.Equal(t, 3, results[2].Image.Width)
	assert.Equal(t, 4, results[3].Image.Height)

	assert.Empty(t, l.DecodeAll(nil))
}

func TestPackageDecode(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "p.jpg", solid(6, 2, color.White))

	pixels, w, h := Decode(path)
	assert.Equal(t, 6, w)
	assert.Equal(t, 2, h)
	assert.Len(t, pixels, 6*2*3)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", extension("dir.d/a.b.jpg"))
	assert.Equal(t, "", extension("dir.d/noext"))
	assert.Equal(t, "", extension("trailing."))
}

func TestDecodeAllReusesWorkerPool(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "w.jpg", solid(2, 2, color.White))
	l, _ := newTestLoader(WithWorkers(4))
	defer l.Release()

	l.DecodeAll([]string{path})
	before := runtime.NumGoroutine()

	for range 25 {
		results := l.DecodeAll([]string{path, path, path})
		require.Len(t, results, 3)
		assert.False(t, results[2].Image.Empty())
	}

	assert.LessOrEqual(t, runtime.NumGoroutine(), before+2, "DecodeAll must not start goroutines per call")
}

func TestDecodeAllAfterRelease(t *testing.T) {
	path := writeJPEG(t, t.TempDir(), "r.jpg", solid(3, 3, color.White))
	l, _ := newTestLoader(WithWorkers(2))

	l.Release()
	l.Release()

	results := l.DecodeAll([]string{path})
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].Image.Width)
}

func TestDecodeLogsHeaderReadError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.jpg")
	require.NoError(t, os.Mkdir(dir, 0o755))
	l, logs := newTestLoader()

	img := l.Decode(dir)
	assert.True(t, img.Empty())
	assert.Contains(t, logs.String(), "read header of")
}
