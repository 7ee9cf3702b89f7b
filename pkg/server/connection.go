package server

import (
	"net"
	"sync/atomic"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// handleConnection implements the ConnectionHandler flow: send the
// catch-up under the catch-up guard, register the socket in the live
// set, then loop reading ClientMessages into the shared intent map until
// the connection fails.
func (s *Server) handleConnection(conn net.Conn) {
	c := &client{conn: conn, remoteAddr: conn.RemoteAddr().String()}

	s.catchingUp.RLock()
	err := s.sendCatchUp(conn)
	if err == nil {
		c.seq = atomic.AddInt64(&s.nextSeq, 1)
		s.clientsMu.Lock()
		s.clients[c] = struct{}{}
		s.clientsMu.Unlock()
	}
	s.catchingUp.RUnlock()
	if err != nil {
		conn.Close()
		return
	}
	s.logf("server: accepted connection from %s", c.remoteAddr)

	defer s.forget(c)

	fr := protocol.NewFrameReader(conn)
	for {
		msg, err := protocol.ReadClientMessage(fr)
		if err != nil {
			s.logf("server: connection from %s closed: %v", c.remoteAddr, err)
			return
		}
		s.intentsMu.Lock()
		s.intents[c] = msg
		s.intentsMu.Unlock()
	}
}

// sendCatchUp writes Hello followed by whatever history exists, under
// the caller's already-held catch-up read lock.
func (s *Server) sendCatchUp(conn net.Conn) error {
	if err := protocol.WriteServerMessage(conn, protocol.ServerMessage{Hello: &s.history.hello}); err != nil {
		return err
	}
	if s.history.gameStarted == nil {
		for i := range s.history.acceptedPlayers {
			ap := s.history.acceptedPlayers[i]
			if err := protocol.WriteServerMessage(conn, protocol.ServerMessage{AcceptedPlayer: &ap}); err != nil {
				return err
			}
		}
		return nil
	}
	if err := protocol.WriteServerMessage(conn, protocol.ServerMessage{GameStarted: s.history.gameStarted}); err != nil {
		return err
	}
	for i := range s.history.turns {
		t := s.history.turns[i]
		if err := protocol.WriteServerMessage(conn, protocol.ServerMessage{Turn: &t}); err != nil {
			return err
		}
	}
	return nil
}

// forget removes c from the live client set and its pending intent, and
// closes its socket. Called once the connection's read loop ends.
func (s *Server) forget(c *client) {
	s.clientsMu.Lock()
	delete(s.clients, c)
	s.clientsMu.Unlock()

	s.intentsMu.Lock()
	delete(s.intents, c)
	s.intentsMu.Unlock()

	c.conn.Close()
}
