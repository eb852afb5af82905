package codec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCompressionMode(t *testing.T) {
	mode, err := ParseCompressionMode(0)
	require.NoError(t, err)
	require.Equal(t, Raw, mode)

	mode, err = ParseCompressionMode(1)
	require.NoError(t, err)
	require.Equal(t, PackBits, mode)

	// ZIP with and without prediction are valid in documents but not decodable here.
	for _, n := range []int{2, 3, -1, 256} {
		_, err = ParseCompressionMode(n)
		require.ErrorIs(t, err, ErrUnsupportedCompression, "tag %d", n)
	}
}

func TestParseCompressionModeName(t *testing.T) {
	tests := []struct {
		in      string
		want    CompressionMode
		wantErr bool
	}{
		{"raw", Raw, false},
		{"", Raw, false},
		{"PackBits", PackBits, false},
		{"rle", PackBits, false},
		{"zip", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseCompressionModeName(tt.in)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnsupportedCompression)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestCompressionMode_String(t *testing.T) {
	require.Equal(t, "raw", Raw.String())
	require.Equal(t, "packbits", PackBits.String())
	require.Equal(t, "CompressionMode(5)", CompressionMode(5).String())
	require.False(t, CompressionMode(5).Valid())
}

func TestSlotForKind(t *testing.T) {
	tests := []struct {
		kind    ChannelKind
		want    Slot
		wantErr bool
	}{
		{KindRed, SlotRed, false},
		{KindGreen, SlotGreen, false},
		{KindBlue, SlotBlue, false},
		{KindTransparencyMask, SlotAlpha, false},
		{KindUserSuppliedLayerMask, 0, true},
		{KindRealUserSuppliedLayerMask, 0, true},
		{ChannelKind(5), 0, true},
	}

	for _, tt := range tests {
		got, err := SlotForKind(tt.kind)
		if tt.wantErr {
			require.ErrorIs(t, err, ErrUnsupportedChannelKind)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}
