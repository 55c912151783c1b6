package loader

import (
	"fmt"
	"image"
	"image/jpeg"
	"io"
)

// Decoder turns an encoded image stream into packed pixels.
type Decoder interface {
	// Name returns a short label used in log lines.
	Name() string

	// Accepts reports whether a sniffed content extension (e.g. "jpg", "png") is a format this decoder reads.
	Accepts(kind string) bool

	// Decode reads the full stream and returns the decoded image.
	Decode(r io.Reader) (Image, error)
}

type jpegDecoder struct{}

var _ Decoder = &jpegDecoder{}

func (d *jpegDecoder) Name() string {
	return "JPEG"
}

func (d *jpegDecoder) Accepts(kind string) bool {
	return kind == "jpg" || kind == "jpeg"
}

// Decode converts grayscale JPEGs to one component per pixel and everything else to three (RGB).
func (d *jpegDecoder) Decode(r io.Reader) (Image, error) {
	src, err := jpeg.Decode(r)
	if err != nil {
		return emptyImage(), fmt.Errorf("jpeg: %w", err)
	}
	return pack(src), nil
}

// pack copies src into a tightly packed buffer. Gray images keep one component; all others become RGB.
func pack(src image.Image) Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if g, ok := src.(*image.Gray); ok {
		out := Image{Pixels: make([]byte, 0, w*h), Width: w, Height: h, Components: 1}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := g.Pix[g.PixOffset(b.Min.X, y) : g.PixOffset(b.Min.X, y)+w]
			out.Pixels = append(out.Pixels, row...)
		}
		return out
	}

	out := Image{Pixels: make([]byte, 0, w*h*3), Width: w, Height: h, Components: 3}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := src.At(x, y).RGBA()
			out.Pixels = append(out.Pixels, byte(cr>>8), byte(cg>>8), byte(cb>>8))
		}
	}
	return out
}
