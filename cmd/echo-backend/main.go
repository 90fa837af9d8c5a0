package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/api"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/config"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/core"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/echo"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/factory"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/logger"

	k8s "k8s.io/client-go/kubernetes"
)

func main() {
	ctx := context.Background()

	// Positional arguments first, then the optional environment settings
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, config.ErrUsage) {
		config.Usage(os.Stdout, filepath.Base(os.Args[0]))
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{Debug: cfg.Debug})
	logger.Info("Starting echo-backend...",
		"backend_id", cfg.BackendID,
		"region", cfg.Region,
		"port", cfg.Port,
		"tls_enabled", cfg.TLSEnabled)

	// Start health server (optional)
	var healthServer *api.HealthServer
	if cfg.HealthServerPort != "" {
		healthServer = api.NewHealthServer(":"+cfg.HealthServerPort, api.Info{
			BackendID: cfg.BackendID,
			Region:    cfg.Region,
			Port:      cfg.Port,
		})
		healthServer.Start()
	}

	tlsConfig, err := setupTLS(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to configure TLS", "backend_id", cfg.BackendID, "error", err)
	}

	listener, err := factory.NewListenerFactory(cfg).Create(tlsConfig)
	if err != nil {
		logger.Fatal("Failed to start listener", "backend_id", cfg.BackendID, "port", cfg.Port, "error", err)
	}
	logger.Info("Backend listening",
		"backend_id", cfg.BackendID,
		"addr", listener.Addr().String(),
		"region", cfg.Region)

	server := &core.Server{
		Listener: listener,
		ConnectionHandler: echo.NewHandler(echo.Identity{
			BackendID: cfg.BackendID,
			Region:    cfg.Region,
		}),
	}

	if healthServer != nil {
		healthServer.SetReady(true)
	}

	// Start serving (blocking)
	if err := server.Serve(); err != nil {
		logger.Fatal("Server error", "backend_id", cfg.BackendID, "error", err)
	}
}

// setupTLS returns nil when TLS is disabled.
func setupTLS(ctx context.Context, cfg *config.Config) (*tls.Config, error) {
	if !cfg.TLSEnabled {
		return nil, nil
	}

	var clientset k8s.Interface
	if cfg.TLSMode == config.TLSModeKubernetes {
		cs, err := factory.NewKubernetesClient(cfg)
		if err != nil {
			return nil, err
		}
		clientset = cs
	}

	tlsFactory := factory.NewTLSFactory(cfg)
	provider, err := tlsFactory.Create(ctx, clientset)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS provider: %w", err)
	}

	// Ensure certificate exists (load or generate)
	cert, err := tlsFactory.EnsureCertificate(ctx, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure certificate: %w", err)
	}
	return factory.TLSConfig(cert), nil
}
