package codec

import "fmt"

// Layout names the channel combination of an image.
type Layout uint8

const (
	LayoutRGB Layout = iota
	LayoutRGBA
	LayoutGrayscale
	LayoutGrayscaleA
)

var layoutNames = map[Layout]string{
	LayoutRGB:        "rgb",
	LayoutRGBA:       "rgba",
	LayoutGrayscale:  "grayscale",
	LayoutGrayscaleA: "grayscale+alpha",
}

func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

// Valid reports whether l is a known layout.
func (l Layout) Valid() bool {
	return l <= LayoutGrayscaleA
}

// ChannelCount returns how many encoded channels the layout takes.
func (l Layout) ChannelCount() int {
	switch l {
	case LayoutRGB:
		return 3
	case LayoutRGBA:
		return 4
	case LayoutGrayscale:
		return 1
	case LayoutGrayscaleA:
		return 2
	}
	return 0
}

// HasAlpha reports whether the last channel of the layout is alpha.
func (l Layout) HasAlpha() bool {
	return l == LayoutRGBA || l == LayoutGrayscaleA
}

// LayoutFor picks the layout for the channels present. Green and blue
// must be supplied together.
func LayoutFor(hasGreen, hasBlue, hasAlpha bool) (Layout, error) {
	switch {
	case hasGreen && hasBlue:
		if hasAlpha {
			return LayoutRGBA, nil
		}
		return LayoutRGB, nil
	case !hasGreen && !hasBlue:
		if hasAlpha {
			return LayoutGrayscaleA, nil
		}
		return LayoutGrayscale, nil
	case hasBlue:
		return 0, fmt.Errorf("%w: green channel in RGB image", ErrMissingChannel)
	default:
		return 0, fmt.Errorf("%w: blue channel in RGB image", ErrMissingChannel)
	}
}

// Decode runs the entry point for l with channels in layout order
// (red, green, blue, alpha or gray, alpha).
func (l Layout) Decode(pixelCount int, channels []EncodedChannel) ([]byte, error) {
	return sequential.Decode(l, pixelCount, channels)
}

// Decode runs the entry point for layout with channels in layout order.
func (c *Compositor) Decode(layout Layout, pixelCount int, channels []EncodedChannel) ([]byte, error) {
	if !layout.Valid() {
		return nil, fmt.Errorf("codec: unknown layout %d", uint8(layout))
	}
	if want := layout.ChannelCount(); len(channels) != want {
		return nil, fmt.Errorf("%w: %s layout takes %d channels, got %d", ErrMissingChannel, layout, want, len(channels))
	}

	switch layout {
	case LayoutRGB:
		return c.DecodeRGB(pixelCount, channels[0], channels[1], channels[2])
	case LayoutRGBA:
		return c.DecodeRGBA(pixelCount, channels[0], channels[1], channels[2], channels[3])
	case LayoutGrayscale:
		return c.DecodeGrayscale(pixelCount, channels[0])
	default:
		return c.DecodeGrayscaleA(pixelCount, channels[0], channels[1])
	}
}

// GenerateRGBA decodes an image of width*height pixels from its channels.
// Green and blue are either both present (RGB) or both nil (grayscale);
// alpha is optional in both cases.
func GenerateRGBA(width, height int, red EncodedChannel, green, blue, alpha *EncodedChannel) ([]byte, error) {
	if width <= 0 || height <= 0 || width > maxPixelCount/height {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	layout, err := LayoutFor(green != nil, blue != nil, alpha != nil)
	if err != nil {
		return nil, err
	}

	channels := []EncodedChannel{red}
	if layout == LayoutRGB || layout == LayoutRGBA {
		channels = append(channels, *green, *blue)
	}
	if alpha != nil {
		channels = append(channels, *alpha)
	}

	return layout.Decode(width*height, channels)
}
