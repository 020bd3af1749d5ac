package msgpack

import (
	"errors"
	"fmt"
)

// Sentinel errors reported while decoding. Match them with errors.Is;
// the position of the failure travels in the wrapping DecodeError.
var (
	// ErrInsufficientData means the source ended before the value was
	// complete.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrReservedCode means the reserved code byte 0xc1 was read where
	// a value was expected.
	ErrReservedCode = errors.New("reserved code 0xc1")

	// ErrInvalidString means a string payload was not valid UTF-8.
	ErrInvalidString = errors.New("invalid string (not UTF-8)")

	// ErrUnhashableKey means a decoded map key has no comparable form.
	ErrUnhashableKey = errors.New("unhashable map key")

	// ErrDuplicateKey means a map encoded the same key twice.
	ErrDuplicateKey = errors.New("duplicate map key")

	// ErrNotImplemented means an extension type is registered without
	// the direction the operation needs.
	ErrNotImplemented = errors.New("ext type not implemented")

	// ErrDepthExceeded means a value nests deeper than the configured
	// limit.
	ErrDepthExceeded = errors.New("max depth exceeded")

	// ErrUnsupportedType means the encoder was handed a Go value it
	// cannot represent.
	ErrUnsupportedType = errors.New("unsupported type")
)

// DecodeError wraps a decoding failure with the byte offset of the
// value whose decoding failed.
type DecodeError struct {
	Err    error
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("msgpack: offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
