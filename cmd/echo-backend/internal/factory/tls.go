package factory

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/config"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/core"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/logger"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/storage/filesystem"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/storage/kubernetes"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/storage/memory"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/utils"

	k8s "k8s.io/client-go/kubernetes"
)

// TLSFactory creates TLS providers based on configuration
type TLSFactory struct {
	cfg *config.Config
	now func() time.Time
}

// NewTLSFactory creates a new TLS factory
func NewTLSFactory(cfg *config.Config) *TLSFactory {
	return &TLSFactory{cfg: cfg, now: time.Now}
}

// Create creates a TLS provider based on configuration.
// clientset is only needed for the kubernetes mode.
func (f *TLSFactory) Create(ctx context.Context, clientset k8s.Interface) (core.TLSProvider, error) {
	switch f.cfg.TLSMode {
	case config.TLSModeFile:
		return f.createFileProvider()
	case config.TLSModeKubernetes:
		return f.createKubernetesProvider(clientset)
	case config.TLSModeMemory:
		return f.createMemoryProvider()
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", f.cfg.TLSMode)
	}
}

func (f *TLSFactory) createFileProvider() (core.TLSProvider, error) {
	logger.Info("Creating File-based TLS Provider",
		"cert", f.cfg.TLSCertFile,
		"key", f.cfg.TLSKeyFile)
	return filesystem.NewFileTLSProvider(f.cfg.TLSCertFile, f.cfg.TLSKeyFile), nil
}

func (f *TLSFactory) createKubernetesProvider(clientset k8s.Interface) (core.TLSProvider, error) {
	if clientset == nil {
		return nil, fmt.Errorf("kubernetes TLS mode requires a kubernetes client (provide KUBECONFIG or run in-cluster)")
	}

	logger.Info("Creating Kubernetes TLS Provider",
		"namespace", f.cfg.Namespace,
		"secret", f.cfg.TLSSecretName)

	return kubernetes.NewSecretTLSProvider(clientset, f.cfg.Namespace, f.cfg.TLSSecretName), nil
}

func (f *TLSFactory) createMemoryProvider() (core.TLSProvider, error) {
	logger.Info("Creating Memory TLS Provider")
	return memory.NewTLSProvider(), nil
}

// EnsureCertificate makes sure the provider holds a usable certificate and
// returns it: it is loaded, generated when missing, and regenerated when it
// expires within the renewal threshold.
func (f *TLSFactory) EnsureCertificate(ctx context.Context, provider core.TLSProvider) (*tls.Certificate, error) {
	cert, err := provider.GetCertificate(ctx)

	// Certificate doesn't exist
	if err != nil {
		if !f.cfg.TLSAutoGenerate {
			return nil, fmt.Errorf("certificate not found and TLS_AUTO_GENERATE=false: %w", err)
		}
		logger.Info("Certificate not found. Generating new self-signed certificate...")
		return f.generateAndStoreCertificate(ctx, provider)
	}

	expiring, notAfter, err := f.certificateExpiring(cert)
	if err != nil {
		return nil, err
	}
	if !expiring {
		logger.Info("Certificate loaded and validated successfully", "not_after", notAfter)
		return cert, nil
	}

	if !f.cfg.TLSAutoRenew {
		logger.Warn("Certificate is expiring but TLS_AUTO_RENEW=false", "not_after", notAfter)
		return cert, nil
	}

	logger.Info("Certificate is expiring. Regenerating...",
		"not_after", notAfter,
		"threshold_days", f.cfg.TLSRenewalThresholdDays)
	return f.generateAndStoreCertificate(ctx, provider)
}

// TLSConfig wraps the certificate in a server configuration.
func TLSConfig(cert *tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{*cert},
		MinVersion:   tls.VersionTLS12,
	}
}

func (f *TLSFactory) certificateExpiring(cert *tls.Certificate) (bool, time.Time, error) {
	if len(cert.Certificate) == 0 {
		return false, time.Time{}, fmt.Errorf("certificate chain is empty")
	}
	leaf := cert.Leaf
	if leaf == nil {
		var err error
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return false, time.Time{}, fmt.Errorf("failed to parse certificate: %w", err)
		}
	}
	threshold := f.now().AddDate(0, 0, f.cfg.TLSRenewalThresholdDays)
	return leaf.NotAfter.Before(threshold), leaf.NotAfter, nil
}

func (f *TLSFactory) generateAndStoreCertificate(ctx context.Context, provider core.TLSProvider) (*tls.Certificate, error) {
	certPEM, keyPEM, err := utils.GenerateSelfSignedCert()
	if err != nil {
		return nil, fmt.Errorf("failed to generate self-signed certificate: %w", err)
	}

	// Store the certificate (handles race condition for Kubernetes secrets)
	if err := provider.Store(ctx, certPEM, keyPEM); err != nil {
		// If store fails (possibly due to race condition), try to load again
		logger.Warn("Failed to store certificate, attempting to load existing cert", "error", err)
		cert, loadErr := provider.GetCertificate(ctx)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load certificate after store failure: %w", loadErr)
		}
		expiring, notAfter, checkErr := f.certificateExpiring(cert)
		if checkErr != nil {
			return nil, fmt.Errorf("failed to validate certificate after store failure: %w", checkErr)
		}
		if expiring {
			logger.Warn("Loaded certificate is still inside the renewal window",
				"not_after", notAfter,
				"threshold_days", f.cfg.TLSRenewalThresholdDays)
			return cert, nil
		}
		logger.Info("Successfully loaded certificate created by another instance")
		return cert, nil
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generated certificate: %w", err)
	}

	logger.Info("Successfully generated and stored self-signed certificate")
	return &cert, nil
}
