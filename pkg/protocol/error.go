package protocol

import (
	"errors"
	"fmt"
)

// Structural decoding errors.
var (
	ErrInvalidKind     = errors.New("protocol: invalid element kind")
	ErrInvalidKeyScope = errors.New("protocol: invalid key scope")
	ErrInvalidChangeOp = errors.New("protocol: invalid change op")
	ErrEmptyDiff       = errors.New("protocol: diff node without changes")
	ErrTrailingBytes   = errors.New("protocol: trailing bytes after message")
	ErrInvalidElement  = errors.New("protocol: invalid element")
)

// DecodeError reports where decoding a message failed.
// It unwraps to the underlying cause, e.g. io.ErrUnexpectedEOF or
// ErrMaxDepthExceeded.
type DecodeError struct {
	Message string // Message being decoded, e.g. "element" or "diff frame"
	Offset  int    // Byte offset at which the error was detected
	Err     error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("protocol: decode %s at offset %d: %v", e.Message, e.Offset, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeError(message string, d *Decoder, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Message: message, Offset: d.Position(), Err: err}
}
