package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadUint8 reads a single unsigned byte.
func ReadUint8(f *FrameReader) (uint8, error) {
	b, err := f.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteUint8 writes a single unsigned byte.
func WriteUint8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func ReadUint16(f *FrameReader) (uint16, error) {
	b, err := f.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// WriteUint16 writes a big-endian unsigned 16-bit integer.
func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadUint32 reads a big-endian unsigned 32-bit integer.
func ReadUint32(f *FrameReader) (uint32, error) {
	b, err := f.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// WriteUint32 writes a big-endian unsigned 32-bit integer.
func WriteUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// ReadString reads a one-byte-length-prefixed byte string (0-255 bytes).
// The payload is treated as an opaque byte sequence, not validated UTF-8.
func ReadString(f *FrameReader) (string, error) {
	length, err := ReadUint8(f)
	if err != nil {
		return "", err
	}
	b, err := f.Read(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteString writes a one-byte-length-prefixed byte string. Callers must
// ensure len(s) <= 255; the wire format has no room for anything longer.
func WriteString(w io.Writer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("protocol: string too long to encode: %d bytes", len(s))
	}
	if err := WriteUint8(w, uint8(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

// ReadDirection reads a single Direction byte, failing on any value outside
// the four legal tags.
func ReadDirection(f *FrameReader) (Direction, error) {
	b, err := ReadUint8(f)
	if err != nil {
		return 0, err
	}
	d := Direction(b)
	if d > Left {
		return 0, fmt.Errorf("%w: direction tag %d", ErrMalformed, b)
	}
	return d, nil
}

// WriteDirection writes a Direction's single-byte tag.
func WriteDirection(w io.Writer, d Direction) error {
	return WriteUint8(w, uint8(d))
}
