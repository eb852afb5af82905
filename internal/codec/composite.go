package codec

import (
	"fmt"
	"math"
	"sync"
)

const (
	opaqueFill      = 255
	transparentFill = 0

	maxPixelCount = math.MaxInt / BytesPerPixel
)

// Compositor interleaves decoded channels into a fresh output buffer.
// The zero value decodes channels one after another.
type Compositor struct {
	concurrent bool
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithConcurrentChannels decodes each channel on its own goroutine. Channels
// write disjoint slots, so only the default fill has to happen first.
func WithConcurrentChannels() Option {
	return func(c *Compositor) {
		c.concurrent = true
	}
}

// NewCompositor returns a Compositor configured by opts.
func NewCompositor(opts ...Option) *Compositor {
	c := &Compositor{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var sequential = &Compositor{}

// DecodeRGB decodes three color channels. Alpha is left at 255 for every pixel.
func DecodeRGB(pixelCount int, red, green, blue EncodedChannel) ([]byte, error) {
	return sequential.DecodeRGB(pixelCount, red, green, blue)
}

// DecodeRGBA decodes three color channels and an alpha channel.
func DecodeRGBA(pixelCount int, red, green, blue, alpha EncodedChannel) ([]byte, error) {
	return sequential.DecodeRGBA(pixelCount, red, green, blue, alpha)
}

// DecodeGrayscale decodes one gray channel into red, green and blue. Alpha is 255.
func DecodeGrayscale(pixelCount int, color EncodedChannel) ([]byte, error) {
	return sequential.DecodeGrayscale(pixelCount, color)
}

// DecodeGrayscaleA decodes a gray channel into red, green and blue plus an alpha channel.
func DecodeGrayscaleA(pixelCount int, color, alpha EncodedChannel) ([]byte, error) {
	return sequential.DecodeGrayscaleA(pixelCount, color, alpha)
}

func (c *Compositor) DecodeRGB(pixelCount int, red, green, blue EncodedChannel) ([]byte, error) {
	// Pre-filling with 255 leaves alpha opaque without touching slot 3.
	return c.composite(pixelCount, opaqueFill, []channelTarget{
		{"red", red, SlotRed},
		{"green", green, SlotGreen},
		{"blue", blue, SlotBlue},
	})
}

func (c *Compositor) DecodeRGBA(pixelCount int, red, green, blue, alpha EncodedChannel) ([]byte, error) {
	return c.composite(pixelCount, transparentFill, []channelTarget{
		{"red", red, SlotRed},
		{"green", green, SlotGreen},
		{"blue", blue, SlotBlue},
		{"alpha", alpha, SlotAlpha},
	})
}

func (c *Compositor) DecodeGrayscale(pixelCount int, color EncodedChannel) ([]byte, error) {
	return c.composite(pixelCount, opaqueFill, []channelTarget{
		{"gray", color, SlotRed},
		{"gray", color, SlotGreen},
		{"gray", color, SlotBlue},
	})
}

func (c *Compositor) DecodeGrayscaleA(pixelCount int, color, alpha EncodedChannel) ([]byte, error) {
	return c.composite(pixelCount, transparentFill, []channelTarget{
		{"gray", color, SlotRed},
		{"gray", color, SlotGreen},
		{"gray", color, SlotBlue},
		{"alpha", alpha, SlotAlpha},
	})
}

type channelTarget struct {
	name string
	ch   EncodedChannel
	slot Slot
}

// NewOutputBuffer allocates pixelCount interleaved pixels with every byte set to fill.
func NewOutputBuffer(pixelCount int, fill byte) ([]byte, error) {
	if pixelCount < 0 || pixelCount > maxPixelCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPixelCount, pixelCount)
	}

	output := make([]byte, pixelCount*BytesPerPixel)
	if fill != 0 {
		for i := range output {
			output[i] = fill
		}
	}
	return output, nil
}

func (c *Compositor) composite(pixelCount int, fill byte, targets []channelTarget) ([]byte, error) {
	output, err := NewOutputBuffer(pixelCount, fill)
	if err != nil {
		return nil, err
	}

	if c.concurrent && len(targets) > 1 {
		err = decodeConcurrently(output, targets)
	} else {
		err = decodeSequentially(output, targets)
	}
	if err != nil {
		return nil, err
	}
	return output, nil
}

func decodeSequentially(output []byte, targets []channelTarget) error {
	for _, t := range targets {
		if err := DecodeChannel(t.ch, t.slot, output); err != nil {
			return fmt.Errorf("%s channel: %w", t.name, err)
		}
	}
	return nil
}

// decodeConcurrently reports the error of the first failing target in
// target order, so results match decodeSequentially.
func decodeConcurrently(output []byte, targets []channelTarget) error {
	errs := make([]error, len(targets))

	var wg sync.WaitGroup
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			t := targets[i]
			errs[i] = DecodeChannel(t.ch, t.slot, output)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("%s channel: %w", targets[i].name, err)
		}
	}
	return nil
}
