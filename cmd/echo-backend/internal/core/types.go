package core

import (
	"context"
	"crypto/tls"
	"net"
)

// ConnectionHandler owns one accepted connection for its whole lifetime,
// including closing it.
type ConnectionHandler interface {
	HandleConnection(conn net.Conn)
}

// ConnectionHandlerFunc adapts a plain function to ConnectionHandler.
type ConnectionHandlerFunc func(conn net.Conn)

// HandleConnection calls f(conn).
func (f ConnectionHandlerFunc) HandleConnection(conn net.Conn) {
	f(conn)
}

// TLSProvider defines how to retrieve the server certificate.
// It abstracts away the storage mechanism (K8s Secret, File, memory).
type TLSProvider interface {
	GetCertificate(ctx context.Context) (*tls.Certificate, error)
	Store(ctx context.Context, certPEM, keyPEM []byte) error
}
