package protocol

import (
	"errors"
	"fmt"
)

// ErrShortRead is returned by the Codec and FrameReader when the underlying
// stream closed or errored before the requested number of bytes arrived.
var ErrShortRead = errors.New("protocol: short read")

// ErrMalformed is returned when a tag byte or Direction byte does not
// decode to a legal variant. Container counts are not validated.
var ErrMalformed = errors.New("protocol: malformed message")

// ErrTrailingData is the UDP-specific sibling of ErrMalformed: a datagram
// parsed to a complete, valid value but had bytes left over afterward.
var ErrTrailingData = errors.New("protocol: trailing data after message")

// errTrailingData wraps both sentinels so callers can match either.
func errTrailingData(consumed, total int) error {
	return fmt.Errorf("%w: consumed %d of %d bytes: %w", ErrMalformed, consumed, total, ErrTrailingData)
}
