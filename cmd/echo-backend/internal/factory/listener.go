package factory

import (
	"crypto/tls"
	"net"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/config"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/listener"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/logger"
)

// ListenerFactory opens the echo listener
type ListenerFactory struct {
	cfg *config.Config
}

// NewListenerFactory creates a new listener factory
func NewListenerFactory(cfg *config.Config) *ListenerFactory {
	return &ListenerFactory{cfg: cfg}
}

// Create binds the configured host and port. A non-nil tlsConfig wraps
// the listener so every accepted connection is TLS.
func (f *ListenerFactory) Create(tlsConfig *tls.Config) (net.Listener, error) {
	ln, err := listener.Listen(f.cfg.Host, f.cfg.Port, listener.DefaultBacklog)
	if err != nil {
		return nil, err
	}

	if tlsConfig == nil {
		return ln, nil
	}
	logger.Info("TLS enabled on echo listener", "mode", f.cfg.TLSMode)
	return tls.NewListener(ln, tlsConfig), nil
}
