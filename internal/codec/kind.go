package codec

import "fmt"

// ChannelKind is the channel ID stored in a layer's channel info.
type ChannelKind int16

const (
	KindRed                       ChannelKind = 0
	KindGreen                     ChannelKind = 1
	KindBlue                      ChannelKind = 2
	KindTransparencyMask          ChannelKind = -1
	KindUserSuppliedLayerMask     ChannelKind = -2
	KindRealUserSuppliedLayerMask ChannelKind = -3
)

// SlotForKind maps a color or transparency channel to its output slot.
// Layer masks are not part of the interleaved image and have no slot.
func SlotForKind(kind ChannelKind) (Slot, error) {
	switch kind {
	case KindRed:
		return SlotRed, nil
	case KindGreen:
		return SlotGreen, nil
	case KindBlue:
		return SlotBlue, nil
	case KindTransparencyMask:
		return SlotAlpha, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedChannelKind, kind)
}
