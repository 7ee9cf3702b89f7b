package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// client represents one live connection, in the order it was registered
// (used to assign PlayerIds in true connection order during the lobby
// phase).
type client struct {
	conn       net.Conn
	remoteAddr string
	seq        int64
}

// gameHistory holds what a late joiner is sent under the catch-up guard:
// the Hello, plus the current lobby's AcceptedPlayers or the current
// game's GameStarted and Turns. Everything but the Hello is cleared when
// a game ends.
type gameHistory struct {
	hello           protocol.Hello
	acceptedPlayers []protocol.AcceptedPlayer
	gameStarted     *protocol.GameStarted
	turns           []protocol.Turn
}

// Server is the Robots game server: it accepts TCP connections, replays
// history to late joiners, and runs the single authoritative game loop.
type Server struct {
	opts Options

	clientsMu sync.Mutex
	clients   map[*client]struct{}
	nextSeq   int64

	intentsMu sync.Mutex
	intents   map[*client]protocol.ClientMessage

	// catchingUp is a readers-writer lock used inverted: the game loop
	// takes it in exclusive mode around each broadcast plus history
	// append; a new connection's catch-up handler takes it in shared
	// mode for the whole of its catch-up send. This keeps a late
	// joiner's history prefix from ever being interleaved with a live
	// broadcast, while letting multiple joiners catch up concurrently.
	catchingUp sync.RWMutex
	history    gameHistory

	rng *lcg
}

// New creates a server ready to Run with the given options.
func New(opts Options) *Server {
	return &Server{
		opts:    opts,
		clients: make(map[*client]struct{}),
		intents: make(map[*client]protocol.ClientMessage),
		history: gameHistory{hello: helloFromOptions(opts)},
		rng:     newLCG(opts.Seed),
	}
}

func helloFromOptions(opts Options) protocol.Hello {
	return protocol.Hello{
		ServerName:      opts.ServerName,
		PlayersCount:    opts.PlayersCount,
		SizeX:           opts.SizeX,
		SizeY:           opts.SizeY,
		GameLength:      opts.GameLength,
		ExplosionRadius: opts.ExplosionRadius,
		BombTimer:       opts.BombTimer,
	}
}

// Run listens on addr (e.g. ":1234" for IPv6 dual-stack) and serves until
// ctx is canceled or the listener fails.
func (s *Server) Run(ctx context.Context, addr string) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	defer ln.Close()
	return s.Serve(ctx, ln)
}

// Serve runs the Acceptor and GameLoop against an already-bound
// listener. It is split out from Run so callers that need the bound
// address before clients connect (an ephemeral test port, say) can
// create the listener themselves.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.runGameLoop()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}
		if tc, ok := conn.(*net.TCPConn); ok {
			tc.SetNoDelay(true)
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) logf(format string, args ...any) {
	log.Printf(format, args...)
}
