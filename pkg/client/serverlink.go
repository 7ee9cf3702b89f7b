package client

import (
	"fmt"
	"net"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// ServerLink is the client's TCP connection to the server: it produces
// ServerMessage values and sends ClientMessage values.
type ServerLink struct {
	conn net.Conn
	fr   *protocol.FrameReader
}

// DialServerLink connects to host:port over TCP with TCP_NODELAY set.
func DialServerLink(host string, port uint16) (*ServerLink, error) {
	conn, err := net.Dial("tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		return nil, fmt.Errorf("client: connect to server: %w", err)
	}
	if tc, ok := conn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	return &ServerLink{conn: conn, fr: protocol.NewFrameReader(conn)}, nil
}

// Read blocks for the next ServerMessage. A non-nil error means the
// connection is no longer usable; the caller should treat it as fatal.
func (l *ServerLink) Read() (protocol.ServerMessage, error) {
	return protocol.ReadServerMessage(l.fr)
}

// Send writes msg to the server. Failures here are typically redundant
// with a subsequent Read failure, since the server side of a broken
// socket surfaces on both directions.
func (l *ServerLink) Send(msg protocol.ClientMessage) error {
	return protocol.WriteClientMessage(l.conn, msg)
}

// Close closes the underlying TCP connection.
func (l *ServerLink) Close() error {
	return l.conn.Close()
}
