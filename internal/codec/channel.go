// Package codec decodes the per-channel pixel data of layered-image documents.
// Each channel is one byte per pixel, stored either raw or PackBits compressed,
// and is unpacked at a fixed stride into a shared interleaved 4-byte-per-pixel buffer.
package codec

import (
	"fmt"
	"strings"
)

// BytesPerPixel is the stride of the interleaved output buffer.
const BytesPerPixel = 4

// CompressionMode identifies how an encoded channel is stored.
type CompressionMode uint8

const (
	// Raw channels hold one uncompressed byte per pixel.
	Raw CompressionMode = 0
	// PackBits channels are run-length encoded (see UnpackPackBits).
	PackBits CompressionMode = 1
)

func (m CompressionMode) String() string {
	switch m {
	case Raw:
		return "raw"
	case PackBits:
		return "packbits"
	}
	return fmt.Sprintf("CompressionMode(%d)", uint8(m))
}

// Valid reports whether m is one of the supported modes.
func (m CompressionMode) Valid() bool {
	return m == Raw || m == PackBits
}

// ParseCompressionMode converts a numeric compression tag as found in a
// channel record into a CompressionMode.
func ParseCompressionMode(n int) (CompressionMode, error) {
	switch n {
	case int(Raw):
		return Raw, nil
	case int(PackBits):
		return PackBits, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedCompression, n)
}

// ParseCompressionModeName accepts "raw" or "packbits" (also "rle"), case-insensitively.
func ParseCompressionModeName(s string) (CompressionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "":
		return Raw, nil
	case "packbits", "rle":
		return PackBits, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCompression, s)
}

// Slot is the byte offset of a channel within one interleaved pixel.
type Slot uint8

const (
	SlotRed   Slot = 0
	SlotGreen Slot = 1
	SlotBlue  Slot = 2
	SlotAlpha Slot = 3

	// SlotGray shares the red offset; grayscale is broadcast to 0, 1 and 2.
	SlotGray = SlotRed
)

// Valid reports whether s addresses a byte inside a pixel.
func (s Slot) Valid() bool {
	return s < BytesPerPixel
}

// EncodedChannel is one channel's bytes plus the compression they are stored with.
// Decoders only read Data and never keep a reference to it.
type EncodedChannel struct {
	Data        []byte
	Compression CompressionMode
}

// RawChannel is shorthand for an uncompressed channel.
func RawChannel(data []byte) EncodedChannel {
	return EncodedChannel{Data: data, Compression: Raw}
}

// PackBitsChannel is shorthand for a PackBits compressed channel.
func PackBitsChannel(data []byte) EncodedChannel {
	return EncodedChannel{Data: data, Compression: PackBits}
}
