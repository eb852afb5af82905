package codec

import "fmt"

// PackBits control byte interpretation (as int8):
//
//	-128        no-op
//	0..127      literal run of n+1 bytes
//	-127..-1    one byte repeated 1-n times
const packBitsNoop = -128

type runKind int

const (
	runNoop runKind = iota
	runLiteral
	runRepeat
)

// classifyControl maps a control byte to its run kind and output length.
// The repeat length is computed after widening so -127 yields 128.
func classifyControl(control byte) (runKind, int) {
	header := int(int8(control))
	switch {
	case header == packBitsNoop:
		return runNoop, 0
	case header >= 0:
		return runLiteral, header + 1
	default:
		return runRepeat, 1 + (-header)
	}
}

// packBitsCursor tracks the read position in the encoded channel and the
// write position in the interleaved output.
type packBitsCursor struct {
	src    []byte
	srcIdx int
	dst    []byte
	dstIdx int
	slot   Slot
}

func (c *packBitsCursor) remainingInput() int {
	return len(c.src) - c.srcIdx
}

func (c *packBitsCursor) remainingOutput() int {
	return slotCapacity(len(c.dst), c.dstIdx)
}

func (c *packBitsCursor) fail(runStart int, err error) error {
	return &DecodeError{Op: "packbits", Slot: c.slot, Offset: runStart, Err: err}
}

// UnpackPackBits expands a PackBits compressed channel into output at the
// given slot, advancing one pixel per decoded byte. Decoding ends when the
// input is exhausted between runs.
//
// Each run is checked before it is written, so a failing run leaves no trace,
// but runs decoded before it remain in output.
func UnpackPackBits(input []byte, slot Slot, output []byte) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	c := &packBitsCursor{src: input, dst: output, dstIdx: int(slot), slot: slot}

	for c.srcIdx < len(c.src) {
		runStart := c.srcIdx
		kind, count := classifyControl(c.src[c.srcIdx])
		c.srcIdx++

		switch kind {
		case runNoop:
			continue

		case runLiteral:
			avail, room := c.remainingInput(), c.remainingOutput()
			// Report whichever limit a byte-by-byte copy would reach first.
			if avail < count && avail <= room {
				return c.fail(runStart, fmt.Errorf("%w: literal run of %d bytes, %d remain", ErrTruncatedInput, count, avail))
			}
			if room < count {
				return c.fail(runStart, fmt.Errorf("%w: literal run of %d pixels, room for %d", ErrBufferTooSmall, count, room))
			}
			for _, value := range c.src[c.srcIdx : c.srcIdx+count] {
				c.dst[c.dstIdx] = value
				c.dstIdx += BytesPerPixel
			}
			c.srcIdx += count

		case runRepeat:
			if c.remainingInput() < 1 {
				return c.fail(runStart, fmt.Errorf("%w: repeat run has no value byte", ErrTruncatedInput))
			}
			value := c.src[c.srcIdx]
			c.srcIdx++
			if room := c.remainingOutput(); room < count {
				return c.fail(runStart, fmt.Errorf("%w: repeat run of %d pixels, room for %d", ErrBufferTooSmall, count, room))
			}
			for i := 0; i < count; i++ {
				c.dst[c.dstIdx] = value
				c.dstIdx += BytesPerPixel
			}
		}
	}

	return nil
}

// PackBitsLength returns the number of pixels a PackBits stream decodes to
// without writing anything. It fails with ErrTruncatedInput like UnpackPackBits.
func PackBitsLength(input []byte) (int, error) {
	total := 0
	for i := 0; i < len(input); {
		runStart := i
		kind, count := classifyControl(input[i])
		i++
		switch kind {
		case runLiteral:
			if len(input)-i < count {
				return total, &DecodeError{Op: "packbits", Offset: runStart, Err: ErrTruncatedInput}
			}
			i += count
			total += count
		case runRepeat:
			if i >= len(input) {
				return total, &DecodeError{Op: "packbits", Offset: runStart, Err: ErrTruncatedInput}
			}
			i++
			total += count
		}
	}
	return total, nil
}
