// Package export turns decoded interleaved pixels into encoded images.
package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/xfmoulet/qoi"

	"github.com/rcarmo/psd-decoder/internal/codec"
)

var (
	ErrUnknownFormat = errors.New("export: unknown image format")
	ErrInvalidWidth  = errors.New("export: width does not divide pixel count")
	// ErrTranslucentQOI is returned for QOI output of an image with alpha
	// below 255. The QOI encoder stores premultiplied color, which would
	// change the straight-alpha pixels.
	ErrTranslucentQOI = errors.New("export: qoi output needs fully opaque pixels, use png")
)

// Format is an output image encoding.
type Format string

const (
	FormatQOI Format = "qoi"
	FormatPNG Format = "png"
)

// ParseFormat accepts "qoi" or "png", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatQOI:
		return FormatQOI, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatQOI:
		return "image/qoi"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// ToImage wraps interleaved RGBA pixels in an image of the given width.
// The pixels are not copied. Channel values are straight alpha, so the
// result is an NRGBA image.
func ToImage(pixels []byte, width int) (*image.NRGBA, error) {
	if len(pixels)%codec.BytesPerPixel != 0 {
		return nil, fmt.Errorf("export: %d bytes is not a whole number of pixels", len(pixels))
	}

	count := len(pixels) / codec.BytesPerPixel
	if width <= 0 || count%width != 0 {
		return nil, fmt.Errorf("%w: width %d, %d pixels", ErrInvalidWidth, width, count)
	}

	return &image.NRGBA{
		Pix:    pixels,
		Stride: width * codec.BytesPerPixel,
		Rect:   image.Rect(0, 0, width, count/width),
	}, nil
}

// Encode writes pixels to w as an image of the given width in format f.
func Encode(w io.Writer, pixels []byte, width int, f Format) error {
	img, err := ToImage(pixels, width)
	if err != nil {
		return err
	}

	switch f {
	case FormatQOI:
		if x, y, ok := firstTranslucent(img); ok {
			return fmt.Errorf("%w: pixel %d,%d has alpha %d", ErrTranslucentQOI, x, y, img.NRGBAAt(x, y).A)
		}
		return qoi.Encode(w, img)
	case FormatPNG:
		return png.Encode(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// firstTranslucent finds the first pixel with alpha below 255.
func firstTranslucent(img *image.NRGBA) (int, int, bool) {
	width := img.Rect.Dx()
	for i := codec.BytesPerPixel - 1; i < len(img.Pix); i += codec.BytesPerPixel {
		if img.Pix[i] != 0xFF {
			p := i / codec.BytesPerPixel
			return p % width, p / width, true
		}
	}
	return 0, 0, false
}
