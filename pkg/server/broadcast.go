package server

import (
	"bytes"

	"github.com/markadiusz/robots-go/pkg/protocol"
)

// broadcastLocked serializes msg once and writes it to every live socket.
// Callers must already hold catchingUp in exclusive mode.
func (s *Server) broadcastLocked(msg protocol.ServerMessage) {
	var buf bytes.Buffer
	if err := protocol.WriteServerMessage(&buf, msg); err != nil {
		// Serialization is pure and total over well-formed domain
		// values; a failure here is a construction bug, not something
		// a retry or a swallowed error could fix.
		panic(err)
	}
	payload := buf.Bytes()

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		// Per-socket write errors are swallowed: a dead socket is
		// reaped by its own handler on its next read failure.
		c.conn.Write(payload)
	}
}
