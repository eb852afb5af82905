package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		name                        string
		hasGreen, hasBlue, hasAlpha bool
		want                        Layout
		wantErr                     string
	}{
		{"rgb", true, true, false, LayoutRGB, ""},
		{"rgba", true, true, true, LayoutRGBA, ""},
		{"gray", false, false, false, LayoutGrayscale, ""},
		{"gray alpha", false, false, true, LayoutGrayscaleA, ""},
		{"missing blue", true, false, false, 0, "blue"},
		{"missing green", false, true, true, 0, "green"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LayoutFor(tt.hasGreen, tt.hasBlue, tt.hasAlpha)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrMissingChannel)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLayout_Properties(t *testing.T) {
	assert.Equal(t, 3, LayoutRGB.ChannelCount())
	assert.Equal(t, 4, LayoutRGBA.ChannelCount())
	assert.Equal(t, 1, LayoutGrayscale.ChannelCount())
	assert.Equal(t, 2, LayoutGrayscaleA.ChannelCount())
	assert.Equal(t, 0, Layout(9).ChannelCount())

	assert.False(t, LayoutRGB.HasAlpha())
	assert.True(t, LayoutRGBA.HasAlpha())
	assert.False(t, LayoutGrayscale.HasAlpha())
	assert.True(t, LayoutGrayscaleA.HasAlpha())

	assert.Equal(t, "grayscale+alpha", LayoutGrayscaleA.String())
	assert.Equal(t, "Layout(9)", Layout(9).String())
	assert.False(t, Layout(4).Valid())
}

func TestLayout_Decode(t *testing.T) {
	out, err := LayoutGrayscaleA.Decode(1, []EncodedChannel{RawChannel([]byte{3}), RawChannel([]byte{4})})
	require.NoError(t, err)
	require.Equal(t, []byte{3, 3, 3, 4}, out)

	out, err = LayoutRGB.Decode(1, []EncodedChannel{RawChannel([]byte{1}), RawChannel([]byte{2}), RawChannel([]byte{3})})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 255}, out)

	_, err = LayoutRGBA.Decode(1, []EncodedChannel{RawChannel([]byte{1})})
	require.ErrorIs(t, err, ErrMissingChannel)

	_, err = Layout(7).Decode(1, nil)
	require.Error(t, err)
}

func TestGenerateRGBA(t *testing.T) {
	red := RawChannel([]byte{1, 2})
	green := RawChannel([]byte{3, 4})
	blue := PackBitsChannel([]byte{0xFF, 5})
	alpha := RawChannel([]byte{6, 7})

	out, err := GenerateRGBA(2, 1, red, &green, &blue, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 3, 5, 255, 2, 4, 5, 255}, out)

	out, err = GenerateRGBA(1, 2, red, &green, &blue, &alpha)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 3, 5, 6, 2, 4, 5, 7}, out)

	out, err = GenerateRGBA(2, 1, red, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 1, 1, 255, 2, 2, 2, 255}, out)

	out, err = GenerateRGBA(2, 1, red, nil, nil, &alpha)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 1, 1, 6, 2, 2, 2, 7}, out)
}

func TestGenerateRGBA_Errors(t *testing.T) {
	red := RawChannel([]byte{1})
	green := RawChannel([]byte{1})

	_, err := GenerateRGBA(0, 10, red, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = GenerateRGBA(10, -1, red, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = GenerateRGBA(math.MaxInt, 2, red, nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = GenerateRGBA(1, 1, red, &green, nil, nil)
	require.ErrorIs(t, err, ErrMissingChannel)
	require.Contains(t, err.Error(), "blue")
}
