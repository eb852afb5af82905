//go:build js && wasm

// Package main exposes the channel decoder to JavaScript.
// It only marshals arguments; decoding lives in internal/codec.
package main

import (
	"fmt"
	"syscall/js"

	"github.com/rcarmo/psd-decoder/internal/codec"
)

func errorResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{
		"error": err.Error(),
	})
}

// channelsFromArgs reads (data0, mode0, data1, mode1, ...) pairs.
// A missing or undefined mode means raw.
func channelsFromArgs(args []js.Value, count int) ([]codec.EncodedChannel, error) {
	if len(args) < count*2-1 {
		return nil, fmt.Errorf("expected %d channels, got %d arguments", count, len(args))
	}

	channels := make([]codec.EncodedChannel, count)
	for i := range channels {
		dataArray := args[i*2]
		if dataArray.Type() != js.TypeObject {
			return nil, fmt.Errorf("channel %d: data must be a Uint8Array", i)
		}

		data := make([]byte, dataArray.Get("length").Int())
		js.CopyBytesToGo(data, dataArray)

		mode := codec.Raw
		if i*2+1 < len(args) && args[i*2+1].Type() == js.TypeNumber {
			m, err := codec.ParseCompressionMode(args[i*2+1].Int())
			if err != nil {
				return nil, fmt.Errorf("channel %d: %w", i, err)
			}
			mode = m
		}

		channels[i] = codec.EncodedChannel{Data: data, Compression: mode}
	}

	return channels, nil
}

// decodeFunc builds the JS wrapper for one layout.
// Arguments: (pixelCount, data0, mode0, data1, mode1, ...).
func decodeFunc(layout codec.Layout) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if len(args) < 1 || args[0].Type() != js.TypeNumber {
			return errorResult(fmt.Errorf("%s: pixelCount must be a number", layout))
		}

		channels, err := channelsFromArgs(args[1:], layout.ChannelCount())
		if err != nil {
			return errorResult(fmt.Errorf("%s: %w", layout, err))
		}

		pixels, err := layout.Decode(args[0].Int(), channels)
		if err != nil {
			return errorResult(err)
		}

		out := js.Global().Get("Uint8Array").New(len(pixels))
		js.CopyBytesToJS(out, pixels)
		return out
	})
}

func main() {
	c := make(chan struct{})

	js.Global().Set("psdDecoder", js.ValueOf(map[string]interface{}{
		"decodeRgb":        decodeFunc(codec.LayoutRGB),
		"decodeRgba":       decodeFunc(codec.LayoutRGBA),
		"decodeGrayscale":  decodeFunc(codec.LayoutGrayscale),
		"decodeGrayscaleA": decodeFunc(codec.LayoutGrayscaleA),
	}))

	println("psd decoder wasm module loaded")

	<-c
}
