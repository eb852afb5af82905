package codec

import "fmt"

// UnpackRaw copies an uncompressed channel into output, writing input[i] to
// output[slot+i*4]. Nothing is written if the last byte would not fit.
func UnpackRaw(input []byte, slot Slot, output []byte) error {
	if !slot.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if len(input) == 0 {
		return nil
	}

	if last := int(slot) + (len(input)-1)*BytesPerPixel; last >= len(output) {
		return &DecodeError{
			Op:     "raw",
			Slot:   slot,
			Offset: slotCapacity(len(output), int(slot)),
			Err:    fmt.Errorf("%w: %d bytes need %d, have %d", ErrBufferTooSmall, len(input), last+1, len(output)),
		}
	}

	dstIdx := int(slot)
	for _, value := range input {
		output[dstIdx] = value
		dstIdx += BytesPerPixel
	}
	return nil
}

// slotCapacity returns how many stride-separated bytes fit in a buffer of
// length n starting at pos.
func slotCapacity(n, pos int) int {
	if pos >= n {
		return 0
	}
	return (n-1-pos)/BytesPerPixel + 1
}
