package client

import (
	"bytes"
	"fmt"
	"net"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// inputBufferSize caps GUI datagram reads at 3 bytes. The largest legal
// InputMessage (Move) is 2 bytes, so any datagram that fills the buffer
// is necessarily either malformed or over-length; ReadInputMessage's
// exact-consumption check rejects it either way.
const inputBufferSize = 3

// GuiLink is the client's UDP socket to the local GUI: bound to a local
// port to receive InputMessage datagrams, and connected to the GUI's
// address to send DrawMessage datagrams.
type GuiLink struct {
	conn *net.UDPConn
}

// DialGuiLink opens a UDP socket bound to localPort and connected to
// guiHost:guiPort.
func DialGuiLink(localPort uint16, guiHost string, guiPort uint16) (*GuiLink, error) {
	laddr := &net.UDPAddr{IP: net.IPv6zero, Port: int(localPort)}
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(guiHost, fmt.Sprintf("%d", guiPort)))
	if err != nil {
		return nil, fmt.Errorf("client: resolve gui address: %w", err)
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("client: open gui socket: %w", err)
	}
	return &GuiLink{conn: conn}, nil
}

// Receive blocks for the next datagram from the GUI.
func (g *GuiLink) Receive() ([]byte, error) {
	buf := make([]byte, inputBufferSize)
	n, err := g.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Send encodes and writes msg to the GUI as one datagram. It returns any
// encode or write error and does not resend.
func (g *GuiLink) Send(msg protocol.DrawMessage) error {
	var buf bytes.Buffer
	if err := protocol.WriteDrawMessage(&buf, msg); err != nil {
		return err
	}
	_, err := g.conn.Write(buf.Bytes())
	return err
}

// Close closes the underlying UDP socket.
func (g *GuiLink) Close() error {
	return g.conn.Close()
}
