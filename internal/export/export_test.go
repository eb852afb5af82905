package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xfmoulet/qoi"
)

func samplePixels() []byte {
	return []byte{
		255, 0, 0, 255, 0, 255, 0, 128, 0, 0, 255, 0,
		10, 20, 30, 255, 40, 50, 60, 200, 70, 80, 90, 1,
	}
}

func requireSamePixels(t *testing.T, pixels []byte, width int, img image.Image) {
	t.Helper()

	b := img.Bounds()
	require.Equal(t, width, b.Dx())
	require.Equal(t, len(pixels)/4/width, b.Dy())

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := (y*width + x) * 4
			want := color.NRGBA{R: pixels[i], G: pixels[i+1], B: pixels[i+2], A: pixels[i+3]}
			got := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if want.A == 0 {
				// Fully transparent pixels carry no color information.
				require.Equal(t, uint8(0), got.A)
				continue
			}
			require.Equal(t, want, got, "pixel %d,%d", x, y)
		}
	}
}

func TestToImage(t *testing.T) {
	pixels := samplePixels()

	img, err := ToImage(pixels, 3)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	require.Equal(t, color.NRGBA{R: 40, G: 50, B: 60, A: 200}, img.NRGBAAt(1, 1))

	_, err = ToImage(pixels, 4)
	require.ErrorIs(t, err, ErrInvalidWidth)

	_, err = ToImage(pixels, 0)
	require.ErrorIs(t, err, ErrInvalidWidth)

	_, err = ToImage(pixels[:5], 1)
	require.Error(t, err)
}

func opaquePixels() []byte {
	pixels := samplePixels()
	for i := 3; i < len(pixels); i += 4 {
		pixels[i] = 255
	}
	return pixels
}

func TestEncode_QOI(t *testing.T) {
	pixels := opaquePixels()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, pixels, 3, FormatQOI))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("qoif")))

	img, err := qoi.Decode(&buf)
	require.NoError(t, err)
	requireSamePixels(t, pixels, 3, img)
}

func TestEncode_QOIRejectsTranslucentPixels(t *testing.T) {
	tests := []struct {
		name   string
		pixels []byte
		where  string
	}{
		{"half alpha", samplePixels(), "pixel 1,0 has alpha 128"},
		{"fully transparent", []byte{255, 255, 255, 255, 9, 9, 9, 0}, "pixel 1,0 has alpha 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Encode(&buf, tt.pixels, 2, FormatQOI)
			require.ErrorIs(t, err, ErrTranslucentQOI)
			require.Contains(t, err.Error(), tt.where)
			require.Zero(t, buf.Len())
		})
	}
}

func TestEncode_PNG(t *testing.T) {
	pixels := samplePixels()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, pixels, 2, FormatPNG))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	requireSamePixels(t, pixels, 2, img)
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, samplePixels(), 3, Format("gif"))
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.Zero(t, buf.Len())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("QOI")
	require.NoError(t, err)
	require.Equal(t, FormatQOI, f)

	f, err = FormatFromPath("/tmp/layer.png")
	require.NoError(t, err)
	require.Equal(t, FormatPNG, f)
	require.Equal(t, "image/png", f.ContentType())

	_, err = FormatFromPath("layer.bmp")
	require.ErrorIs(t, err, ErrUnknownFormat)
}
