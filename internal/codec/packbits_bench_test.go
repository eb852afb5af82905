package codec

import (
	"testing"
)

// generatePackBitsTestData mixes literal and repeat runs the way scanlines of
// flat artwork with antialiased edges tend to compress.
func generatePackBitsTestData(pixels int) []byte {
	plain := make([]byte, pixels)
	for i := range plain {
		switch (i / 64) % 3 {
		case 0:
			plain[i] = 0xFF
		case 1:
			plain[i] = byte(i)
		default:
			plain[i] = byte(i / 16)
		}
	}
	return encodePackBits(plain)
}

func BenchmarkUnpackPackBits(b *testing.B) {
	const pixels = 512 * 512
	src := generatePackBitsTestData(pixels)
	dst := make([]byte, pixels*BytesPerPixel)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := UnpackPackBits(src, SlotGreen, dst); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnpackRaw(b *testing.B) {
	const pixels = 512 * 512
	src := make([]byte, pixels)
	dst := make([]byte, pixels*BytesPerPixel)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := UnpackRaw(src, SlotRed, dst); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeRGBA(b *testing.B) {
	const pixels = 512 * 512
	channel := PackBitsChannel(generatePackBitsTestData(pixels))

	for _, tc := range []struct {
		name string
		c    *Compositor
	}{
		{"Sequential", NewCompositor()},
		{"Concurrent", NewCompositor(WithConcurrentChannels())},
	} {
		b.Run(tc.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := tc.c.DecodeRGBA(pixels, channel, channel, channel, channel); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
