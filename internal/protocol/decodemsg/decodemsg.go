// Package decodemsg implements the binary messages exchanged with remote
// clients that ask the server to decode a set of encoded channels.
//
// Request (little-endian):
//
//	u8  layout (codec.Layout)
//	u32 pixel count
//	per channel, in layout order:
//	    u8  compression (codec.CompressionMode)
//	    u32 length
//	    length bytes
//
// Response:
//
//	u8  status
//	... interleaved pixels when status is StatusOK, otherwise a UTF-8 error message
package decodemsg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rcarmo/psd-decoder/internal/codec"
)

var (
	ErrShortMessage  = errors.New("decodemsg: message too short")
	ErrUnknownLayout = errors.New("decodemsg: unknown layout")
	ErrTrailingData  = errors.New("decodemsg: trailing data after last channel")
	// ErrPixelLimit is returned by servers that refuse a request's pixel count.
	ErrPixelLimit = errors.New("decodemsg: pixel count exceeds limit")
)

// Request asks for one image to be decoded.
type Request struct {
	Layout     codec.Layout
	PixelCount uint32
	Channels   []codec.EncodedChannel
}

// NewRequest builds a request for the given layout and channels.
func NewRequest(layout codec.Layout, pixelCount uint32, channels ...codec.EncodedChannel) *Request {
	return &Request{
		Layout:     layout,
		PixelCount: pixelCount,
		Channels:   channels,
	}
}

// Serialize encodes the request to wire format
func (r *Request) Serialize() []byte {
	buf := new(bytes.Buffer)

	buf.WriteByte(byte(r.Layout))
	_ = binary.Write(buf, binary.LittleEndian, r.PixelCount)

	for _, ch := range r.Channels {
		buf.WriteByte(byte(ch.Compression))
		_ = binary.Write(buf, binary.LittleEndian, uint32(len(ch.Data))) // #nosec G115
		buf.Write(ch.Data)
	}

	return buf.Bytes()
}

// Deserialize decodes a request from wire format. Channel data is copied
// out of r as it arrives, so a bogus length cannot force a large allocation.
func (r *Request) Deserialize(wire io.Reader) error {
	var layout uint8
	if err := binary.Read(wire, binary.LittleEndian, &layout); err != nil {
		return fmt.Errorf("%w: layout: %v", ErrShortMessage, err)
	}

	r.Layout = codec.Layout(layout)
	if !r.Layout.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownLayout, layout)
	}

	if err := binary.Read(wire, binary.LittleEndian, &r.PixelCount); err != nil {
		return fmt.Errorf("%w: pixel count: %v", ErrShortMessage, err)
	}

	count := r.Layout.ChannelCount()
	r.Channels = make([]codec.EncodedChannel, 0, count)

	for i := 0; i < count; i++ {
		var (
			compression uint8
			length      uint32
		)

		if err := binary.Read(wire, binary.LittleEndian, &compression); err != nil {
			return fmt.Errorf("%w: channel %d compression: %v", ErrShortMessage, i, err)
		}
		mode, err := codec.ParseCompressionMode(int(compression))
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}

		if err := binary.Read(wire, binary.LittleEndian, &length); err != nil {
			return fmt.Errorf("%w: channel %d length: %v", ErrShortMessage, i, err)
		}

		var data bytes.Buffer
		if _, err := io.CopyN(&data, wire, int64(length)); err != nil {
			return fmt.Errorf("%w: channel %d wants %d bytes: %v", ErrShortMessage, i, length, err)
		}

		r.Channels = append(r.Channels, codec.EncodedChannel{Data: data.Bytes(), Compression: mode})
	}

	return nil
}

// ParseRequest decodes a complete request message. Bytes after the last
// channel are an error.
func ParseRequest(data []byte) (*Request, error) {
	wire := bytes.NewReader(data)

	req := &Request{}
	if err := req.Deserialize(wire); err != nil {
		return nil, err
	}

	if wire.Len() > 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, wire.Len())
	}

	return req, nil
}

// Decode runs the request through c.
func (r *Request) Decode(c *codec.Compositor) ([]byte, error) {
	return c.Decode(r.Layout, int(r.PixelCount), r.Channels)
}
