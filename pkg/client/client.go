package client

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Client wires a ServerLink and GuiLink together with an InputRelay and
// WorldProjector.
type Client struct {
	opts Options
}

// New creates a client ready to Run with the given options.
func New(opts Options) *Client {
	return &Client{opts: opts}
}

// Run connects to the server and the local GUI, then serves until the
// server connection fails or ctx is canceled. It returns an error when
// connecting to the server or opening the GUI socket fails, and when a
// server read fails; canceling ctx closes the server link, so that path
// also ends with an error.
func (c *Client) Run(ctx context.Context) error {
	serverLink, err := DialServerLink(c.opts.ServerHost, c.opts.ServerPort)
	if err != nil {
		return err
	}
	defer serverLink.Close()

	guiLink, err := DialGuiLink(c.opts.Port, c.opts.GuiHost, c.opts.GuiPort)
	if err != nil {
		return err
	}
	defer guiLink.Close()

	var awaitingJoin atomic.Bool
	awaitingJoin.Store(true)

	relay := NewInputRelay(guiLink, serverLink, c.opts.PlayerName, &awaitingJoin)
	go relay.Run()

	go func() {
		<-ctx.Done()
		serverLink.Close()
		guiLink.Close()
	}()

	projector := NewWorldProjector(&awaitingJoin)
	for {
		msg, err := serverLink.Read()
		if err != nil {
			return fmt.Errorf("connection to the server closed: %w", err)
		}
		draw, ok := projector.Handle(msg)
		if !ok {
			continue
		}
		// UDP send failures are ignored; the failed draw is not resent,
		// and the next draw carries the full state again.
		_ = guiLink.Send(draw)
	}
}
