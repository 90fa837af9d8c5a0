package core

import (
	"fmt"
	"net"
)

// Server is the generic TCP accept loop.
// It depends ONLY on interfaces, not concrete implementations.
type Server struct {
	Listener          net.Listener
	ConnectionHandler ConnectionHandler
}

// Serve accepts connections until the listener fails, handing each one to
// its own goroutine. It never waits for handlers.
func (s *Server) Serve() error {
	for {
		conn, err := s.Listener.Accept()
		if err != nil {
			return fmt.Errorf("accept on %s: %w", s.Listener.Addr(), err)
		}
		go s.ConnectionHandler.HandleConnection(conn)
	}
}
