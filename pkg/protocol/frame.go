package protocol

import (
	"bufio"
	"fmt"
	"io"
)

// FrameReader wraps a reliable byte stream and yields exactly-N-byte blocks
// on demand. The Codec composes on top of it, calling Read for each
// primitive field in turn; FrameReader itself knows nothing about message
// boundaries, only about delivering the bytes a caller already knows it
// needs. It also tracks total bytes delivered so callers parsing a
// fixed-size buffer (a UDP datagram) can detect trailing, unconsumed data.
type FrameReader struct {
	r        *bufio.Reader
	consumed int
}

// NewFrameReader wraps r for framed reads. r is typically a net.Conn for
// the server/client link, or a bytes.Reader over a single UDP datagram.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReaderSize(r, 4096)}
}

// Read returns exactly n bytes from the underlying stream, or an error
// wrapping ErrShortRead if the stream closed or failed first.
func (f *FrameReader) Read(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		return nil, fmt.Errorf("%w: wanted %d bytes: %v", ErrShortRead, n, err)
	}
	f.consumed += n
	return buf, nil
}

// Consumed returns the total number of bytes successfully delivered so far.
func (f *FrameReader) Consumed() int {
	return f.consumed
}
