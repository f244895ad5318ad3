// Package frame implements the transport frames of the chassis OLED
// controller and the encoders that split an image into them.
//
// A frame carries part of an image:
//
//	[opcode][3+L][origin0][origin1][n][payload: n bytes][zero padding to L]
//
// L is the maximum payload length advertised by the device in its telemetry.
// The declared length byte is always 3+L, whatever n is. Frames must be sent
// in the order they are produced: the device has no reassembly.
package frame

import (
	"errors"
	"fmt"
)

// Opcode is the first byte of every message sent to or received from the
// device.
type Opcode byte

const (
	OpRequestTelemetry  Opcode = 0x01 // single byte command
	OpMonoPage          Opcode = 0x03 // origin is (page, column)
	OpColor             Opcode = 0x04 // origin is (x, y)
	OpKeepAlive         Opcode = 0x21 // single byte command
	OpTelemetryResponse Opcode = 0x81
)

func (o Opcode) String() string {
	switch o {
	case OpRequestTelemetry:
		return "request-telemetry"
	case OpMonoPage:
		return "mono-page"
	case OpColor:
		return "color"
	case OpKeepAlive:
		return "keep-alive"
	case OpTelemetryResponse:
		return "telemetry-response"
	default:
		return fmt.Sprintf("opcode(0x%02X)", byte(o))
	}
}

const (
	// HeaderSize is the number of bytes before the payload.
	HeaderSize = 5
	// declaredOverhead is added to L in the declared length byte.
	declaredOverhead = 3
	// MaxPayload is the largest L whose declared length fits in a byte.
	MaxPayload = 0xFF - declaredOverhead
)

// ErrMalformedFrame is returned when bytes do not hold a valid frame, or a
// frame's payload does not fit its maximum length.
var ErrMalformedFrame = errors.New("frame: malformed frame")

// Frame is one transport write.
type Frame struct {
	Opcode    Opcode
	MaxLength uint8   // L, the payload capacity of the frame
	Origin    [2]byte // (page, column) for OpMonoPage, (x, y) for OpColor
	Payload   []byte  // at most MaxLength bytes
}

// Len returns the size of the frame on the wire, padding included.
func (f *Frame) Len() int {
	return HeaderSize + int(f.MaxLength)
}

// AppendBinary appends the wire form of f to b.
func (f *Frame) AppendBinary(b []byte) ([]byte, error) {
	if f.MaxLength > MaxPayload {
		return b, fmt.Errorf("%w: max length %d exceeds %d", ErrMalformedFrame, f.MaxLength, MaxPayload)
	}
	if len(f.Payload) > int(f.MaxLength) {
		return b, fmt.Errorf("%w: payload of %d bytes exceeds max length %d", ErrMalformedFrame, len(f.Payload), f.MaxLength)
	}
	b = append(b,
		byte(f.Opcode),
		declaredOverhead+f.MaxLength,
		f.Origin[0],
		f.Origin[1],
		byte(len(f.Payload)),
	)
	b = append(b, f.Payload...)
	for i := len(f.Payload); i < int(f.MaxLength); i++ {
		b = append(b, 0)
	}
	return b, nil
}

// MarshalBinary returns the wire form of f.
func (f *Frame) MarshalBinary() ([]byte, error) {
	return f.AppendBinary(make([]byte, 0, f.Len()))
}

// UnmarshalBinary parses a frame. Padding after the payload may be missing.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedFrame, len(b))
	}
	if b[1] < declaredOverhead {
		return fmt.Errorf("%w: declared length %d", ErrMalformedFrame, b[1])
	}
	limit := b[1] - declaredOverhead
	n := int(b[4])
	if n > int(limit) {
		return fmt.Errorf("%w: payload length %d exceeds max length %d", ErrMalformedFrame, n, limit)
	}
	if len(b) < HeaderSize+n {
		return fmt.Errorf("%w: truncated payload, want %d bytes, have %d", ErrMalformedFrame, n, len(b)-HeaderSize)
	}
	f.Opcode = Opcode(b[0])
	f.MaxLength = limit
	f.Origin = [2]byte{b[2], b[3]}
	f.Payload = append([]byte(nil), b[HeaderSize:HeaderSize+n]...)
	return nil
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame.Frame{%v (%d,%d) %d/%d}", f.Opcode, f.Origin[0], f.Origin[1], len(f.Payload), f.MaxLength)
}

// Payload concatenates the payloads of frames in order.
func Payload(frames []Frame) []byte {
	n := 0
	for i := range frames {
		n += len(frames[i].Payload)
	}
	out := make([]byte, 0, n)
	for i := range frames {
		out = append(out, frames[i].Payload...)
	}
	return out
}
