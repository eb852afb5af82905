package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferTooSmall means an unpack tried to write past the end of the output buffer.
	ErrBufferTooSmall = errors.New("codec: output buffer too small")
	// ErrTruncatedInput means a PackBits run declared more bytes than the stream holds.
	ErrTruncatedInput = errors.New("codec: truncated input")

	ErrInvalidSlot            = errors.New("codec: invalid channel slot")
	ErrUnsupportedCompression = errors.New("codec: unsupported channel compression")
	ErrUnsupportedChannelKind = errors.New("codec: channel kind has no pixel slot")
	ErrInvalidPixelCount      = errors.New("codec: invalid pixel count")
	ErrInvalidDimensions      = errors.New("codec: invalid image dimensions")
	ErrMissingChannel         = errors.New("codec: missing channel")
)

// DecodeError records where in a channel an unpack failed.
// It unwraps to ErrBufferTooSmall or ErrTruncatedInput.
type DecodeError struct {
	Op     string // "raw" or "packbits"
	Slot   Slot
	Offset int // input offset of the failing run
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s slot %d at input offset %d: %v", e.Op, e.Slot, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
