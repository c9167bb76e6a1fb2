package protocol

import (
	"errors"
	"fmt"
	"io"

	"github.com/vango-dev/vtree/pkg/vdom"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 5

	// MaxPayloadSize is the largest payload a frame may carry.
	MaxPayloadSize = HardMaxAllocation
)

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FrameSnapshot FrameType = 0x01 // Full element tree
	FrameDiff     FrameType = 0x02 // DiffFrame
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameSnapshot:
		return "Snapshot"
	case FrameDiff:
		return "Diff"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is a typed, length-prefixed payload, so that snapshots and diffs
// can be written back to back to one stream.
//
// Wire format (5 bytes header + variable payload):
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
type Frame struct {
	Type    FrameType
	Payload []byte
}

// SnapshotFrame wraps an encoded element tree.
func SnapshotFrame(el vdom.Element) *Frame {
	return &Frame{Type: FrameSnapshot, Payload: EncodeElement(el)}
}

// DiffFrameOf wraps an encoded diff frame.
func DiffFrameOf(f *DiffFrame) *Frame {
	return &Frame{Type: FrameDiff, Payload: EncodeDiffFrame(f)}
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() []byte {
	e := NewEncoderWithCap(FrameHeaderSize + len(f.Payload))
	f.EncodeTo(e)
	return e.Bytes()
}

// EncodeTo encodes the frame using the provided encoder.
func (f *Frame) EncodeTo(e *Encoder) {
	e.PutByte(byte(f.Type))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
}

// DecodeFrame decodes a frame from bytes. The payload is copied.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	ft, length, err := decodeFrameHeader(d)
	if err != nil {
		return nil, err
	}
	if d.Remaining() < length {
		return nil, io.ErrUnexpectedEOF
	}
	payload := make([]byte, length)
	copy(payload, data[FrameHeaderSize:FrameHeaderSize+length])
	return &Frame{Type: ft, Payload: payload}, nil
}

func decodeFrameHeader(d *Decoder) (FrameType, int, error) {
	b, err := d.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	ft := FrameType(b)
	if ft != FrameSnapshot && ft != FrameDiff {
		return 0, 0, fmt.Errorf("%w: 0x%02x", ErrInvalidFrameType, b)
	}
	length, err := d.ReadUint32()
	if err != nil {
		return 0, 0, err
	}
	if length > MaxPayloadSize {
		return 0, 0, ErrFrameTooLarge
	}
	return ft, int(length), nil
}

// ReadFrame reads a complete frame from an io.Reader.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	ft, length, err := decodeFrameHeader(NewDecoder(header))
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}
	return &Frame{Type: ft, Payload: payload}, nil
}

// WriteFrame writes a complete frame to an io.Writer.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

// Element decodes the payload of a snapshot frame.
func (f *Frame) Element() (vdom.Element, error) {
	if f.Type != FrameSnapshot {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrInvalidFrameType, FrameSnapshot, f.Type)
	}
	return DecodeElement(f.Payload)
}

// DiffFrame decodes the payload of a diff frame.
func (f *Frame) DiffFrame() (*DiffFrame, error) {
	if f.Type != FrameDiff {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrInvalidFrameType, FrameDiff, f.Type)
	}
	return DecodeDiffFrame(f.Payload)
}
