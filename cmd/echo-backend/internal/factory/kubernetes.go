package factory

import (
	"fmt"
	"os"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/config"
	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/logger"

	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewKubernetesClient builds a clientset from kubeconfig, falling back to
// the in-cluster service account.
func NewKubernetesClient(cfg *config.Config) (*k8s.Clientset, error) {
	logger.Info("Creating Kubernetes client",
		"runtime", cfg.Runtime,
		"kubeconfig", cfg.KubeConfigPath,
		"context", cfg.KubeContext)

	restConfig, err := restConfig(cfg)
	if err != nil {
		return nil, err
	}

	clientset, err := k8s.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return clientset, nil
}

func restConfig(cfg *config.Config) (*rest.Config, error) {
	kubeconfig := cfg.KubeConfigPath

	// Outside a cluster fall back to the usual kubeconfig location
	if cfg.Runtime != config.RuntimeKubernetes && kubeconfig == "" {
		if home := os.Getenv("HOME"); home != "" {
			kubeconfig = home + "/.kube/config"
		}
	}

	overrides := &clientcmd.ConfigOverrides{}
	if cfg.KubeContext != "" {
		overrides.CurrentContext = cfg.KubeContext
		logger.Info("Using specific Kubernetes context", "context", cfg.KubeContext)
	}

	if kubeconfig != "" {
		rc, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			&clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig},
			overrides,
		).ClientConfig()
		if err == nil {
			return rc, nil
		}
		logger.Warn("Failed to load kubeconfig, will try in-cluster config", "error", err)
	}

	logger.Info("Attempting in-cluster Kubernetes configuration")
	rc, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kubernetes config (tried kubeconfig and in-cluster): %w", err)
	}
	return rc, nil
}
