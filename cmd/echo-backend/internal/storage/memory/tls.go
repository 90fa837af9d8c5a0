package memory

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"sync"
)

// TLSProvider keeps the certificate in process memory. A fresh process
// starts empty, so it is normally paired with TLS_AUTO_GENERATE.
type TLSProvider struct {
	cert *tls.Certificate
	mu   sync.RWMutex
}

func NewTLSProvider() *TLSProvider {
	return &TLSProvider{}
}

// GetCertificate returns os.ErrNotExist until Store succeeds.
func (p *TLSProvider) GetCertificate(ctx context.Context) (*tls.Certificate, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cert == nil {
		return nil, fmt.Errorf("no certificate in memory: %w", os.ErrNotExist)
	}
	return p.cert, nil
}

func (p *TLSProvider) Store(ctx context.Context, certPEM, keyPEM []byte) error {
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return fmt.Errorf("failed to parse x509 key pair: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.cert = &cert
	return nil
}
