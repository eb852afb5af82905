package codec

import "fmt"

// DecodeChannel unpacks ch into output at slot using the unpacker its
// compression mode calls for.
func DecodeChannel(ch EncodedChannel, slot Slot, output []byte) error {
	switch ch.Compression {
	case Raw:
		return UnpackRaw(ch.Data, slot, output)
	case PackBits:
		return UnpackPackBits(ch.Data, slot, output)
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint8(ch.Compression))
	}
}

// ChannelPixels returns the number of pixels ch decodes to.
func ChannelPixels(ch EncodedChannel) (int, error) {
	switch ch.Compression {
	case Raw:
		return len(ch.Data), nil
	case PackBits:
		return PackBitsLength(ch.Data)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedCompression, uint8(ch.Compression))
	}
}
