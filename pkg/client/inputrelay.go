package client

import (
	"errors"
	"net"
	"sync/atomic"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// InputRelay is the UDP->TCP translation thread: it reads GUI input and
// forwards the corresponding ClientMessage to the server, subject to
// lobby-vs-game mode.
type InputRelay struct {
	gui          *GuiLink
	server       *ServerLink
	playerName   string
	awaitingJoin *atomic.Bool
}

// NewInputRelay builds a relay reading from gui and writing to server.
// awaitingJoin is shared with the WorldProjector: when set, every GUI
// input is translated into a Join regardless of what it actually was.
func NewInputRelay(gui *GuiLink, server *ServerLink, playerName string, awaitingJoin *atomic.Bool) *InputRelay {
	return &InputRelay{gui: gui, server: server, playerName: playerName, awaitingJoin: awaitingJoin}
}

// Run reads GUI datagrams until the socket is closed, typically because
// Run (the client's) closed it on shutdown. Transient receive errors are
// silently retried on the next iteration, per the UDP best-effort
// contract: a single failed datagram must not end the relay.
func (r *InputRelay) Run() {
	for {
		datagram, err := r.gui.Receive()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		input, err := protocol.ReadInputMessage(datagram)
		if err != nil {
			continue // malformed or over-length: dropped silently
		}

		var msg protocol.ClientMessage
		if r.awaitingJoin.Load() {
			msg = protocol.ClientMessage{Join: &protocol.Join{Name: r.playerName}}
		} else {
			switch {
			case input.PlaceBomb != nil:
				msg = protocol.ClientMessage{PlaceBomb: &protocol.PlaceBomb{}}
			case input.PlaceBlock != nil:
				msg = protocol.ClientMessage{PlaceBlock: &protocol.PlaceBlock{}}
			case input.Move != nil:
				msg = protocol.ClientMessage{Move: &protocol.Move{Direction: input.Move.Direction}}
			default:
				continue
			}
		}

		// Send failures are swallowed; the main thread's ServerLink.Read
		// will surface the disconnect.
		_ = r.server.Send(msg)
	}
}
