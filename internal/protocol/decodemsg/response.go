package decodemsg

import (
	"errors"
	"fmt"

	"github.com/rcarmo/psd-decoder/internal/codec"
)

// Status is the first byte of every response.
type Status uint8

const (
	StatusOK Status = iota
	StatusInvalidRequest
	StatusBufferTooSmall
	StatusTruncatedInput
	StatusUnsupportedCompression
	StatusInvalidPixelCount
	StatusPixelLimitExceeded
)

var statusNames = map[Status]string{
	StatusOK:                     "ok",
	StatusInvalidRequest:         "invalid request",
	StatusBufferTooSmall:         "buffer too small",
	StatusTruncatedInput:         "truncated input",
	StatusUnsupportedCompression: "unsupported compression",
	StatusInvalidPixelCount:      "invalid pixel count",
	StatusPixelLimitExceeded:     "pixel limit exceeded",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// StatusFor maps a parse or decode error to its wire status.
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, codec.ErrBufferTooSmall):
		return StatusBufferTooSmall
	case errors.Is(err, codec.ErrTruncatedInput):
		return StatusTruncatedInput
	case errors.Is(err, codec.ErrUnsupportedCompression):
		return StatusUnsupportedCompression
	case errors.Is(err, codec.ErrInvalidPixelCount):
		return StatusInvalidPixelCount
	case errors.Is(err, ErrPixelLimit):
		return StatusPixelLimitExceeded
	default:
		return StatusInvalidRequest
	}
}

// Response carries either decoded pixels or an error message.
type Response struct {
	Status  Status
	Pixels  []byte
	Message string
}

// NewResponse builds the response for the outcome of a decode.
func NewResponse(pixels []byte, err error) *Response {
	if err != nil {
		return &Response{Status: StatusFor(err), Message: err.Error()}
	}
	return &Response{Status: StatusOK, Pixels: pixels}
}

// Err returns nil for successful responses and an error describing the
// failure otherwise.
func (r *Response) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	return fmt.Errorf("decode failed (%s): %s", r.Status, r.Message)
}

// Serialize encodes the response to wire format
func (r *Response) Serialize() []byte {
	if r.Status == StatusOK {
		out := make([]byte, 1+len(r.Pixels))
		copy(out[1:], r.Pixels)
		return out
	}

	out := make([]byte, 1+len(r.Message))
	out[0] = byte(r.Status)
	copy(out[1:], r.Message)
	return out
}

// ParseResponse decodes a response message.
func ParseResponse(data []byte) (*Response, error) {
	if len(data) < 1 {
		return nil, ErrShortMessage
	}

	r := &Response{Status: Status(data[0])}
	if r.Status == StatusOK {
		r.Pixels = data[1:]
	} else {
		r.Message = string(data[1:])
	}
	return r, nil
}
