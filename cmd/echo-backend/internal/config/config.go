package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ListenHost is the bind address of the echo listener. It is not configurable.
const ListenHost = "0.0.0.0"

// ErrUsage is returned by ParseArgs when the argument count is wrong.
var ErrUsage = errors.New("expected exactly 3 arguments: <port> <backend_id> <region>")

// RuntimeEnvironment represents the execution environment
type RuntimeEnvironment string

const (
	RuntimeKubernetes RuntimeEnvironment = "kubernetes"
	RuntimeContainer  RuntimeEnvironment = "container"
	RuntimeVM         RuntimeEnvironment = "vm"
)

// TLSMode represents TLS certificate source
type TLSMode string

const (
	TLSModeFile       TLSMode = "file"
	TLSModeKubernetes TLSMode = "kubernetes"
	TLSModeMemory     TLSMode = "memory"
)

// Config holds all application configuration.
// Nothing mutates it after Load returns.
type Config struct {
	// Identity, from positional arguments
	Host      string
	Port      int
	BackendID string
	Region    string

	// Core
	Debug bool

	// Runtime
	Runtime   RuntimeEnvironment
	Namespace string // Only for Kubernetes runtime

	// Server
	HealthServerPort string // empty disables the health server

	// Kubernetes client
	KubeConfigPath string
	KubeContext    string

	// TLS Configuration
	TLSEnabled              bool
	TLSMode                 TLSMode
	TLSCertFile             string
	TLSKeyFile              string
	TLSSecretName           string
	TLSAutoGenerate         bool // Generate self-signed if cert doesn't exist
	TLSAutoRenew            bool // Regenerate if cert is expiring
	TLSRenewalThresholdDays int  // Days before expiry to trigger renewal
}

// Load parses the positional arguments (without the program name) and
// layers the environment settings on top.
func Load(args []string) (*Config, error) {
	cfg, err := ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseArgs parses "<port> <backend_id> <region>".
// The port is not range checked; an out of range value fails at bind time.
func ParseArgs(args []string) (*Config, error) {
	if len(args) != 3 {
		return nil, ErrUsage
	}

	port, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", args[0], err)
	}

	return &Config{
		Host:      ListenHost,
		Port:      port,
		BackendID: args[1],
		Region:    args[2],
	}, nil
}

// Usage writes the usage text with an example invocation.
func Usage(w io.Writer, program string) {
	fmt.Fprintf(w, "Usage: %s <port> <backend_id> <region>\n", program)
	fmt.Fprintf(w, "Example: %s 9001 sa-node-1 sa\n", program)
}

// LoadFromEnv loads the environment-only settings into a config without identity.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{Host: ListenHost}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadEnv() error {
	// Core
	c.Debug = getEnvBool("DEBUG", false)

	// Runtime - Auto-detect or explicit
	c.Runtime = determineRuntime()
	c.Namespace = determineNamespace()

	// Server
	c.HealthServerPort = getEnv("HEALTH_SERVER_PORT", "")

	// Kubernetes client
	c.KubeConfigPath = getEnv("KUBECONFIG", "")
	c.KubeContext = getEnv("KUBE_CONTEXT", "")

	// TLS
	c.TLSEnabled = getEnvBool("TLS_ENABLED", false)
	c.TLSMode = determineTLSMode()
	c.TLSCertFile = getEnv("TLS_CERT_FILE", "")
	c.TLSKeyFile = getEnv("TLS_KEY_FILE", "")
	c.TLSSecretName = getEnv("TLS_SECRET_NAME", "")
	c.TLSAutoGenerate = getEnvBool("TLS_AUTO_GENERATE", true)
	c.TLSAutoRenew = getEnvBool("TLS_AUTO_RENEW", true)
	c.TLSRenewalThresholdDays = getEnvInt("TLS_RENEWAL_THRESHOLD_DAYS", 30)

	return c.validate()
}

// validate ensures configuration is coherent
func (c *Config) validate() error {
	if c.HealthServerPort != "" {
		if _, err := strconv.Atoi(c.HealthServerPort); err != nil {
			return fmt.Errorf("invalid HEALTH_SERVER_PORT %q: %w", c.HealthServerPort, err)
		}
	}

	// TLS validation only if TLS is enabled
	if !c.TLSEnabled {
		return nil
	}

	switch c.TLSMode {
	case TLSModeFile:
		if c.TLSCertFile == "" || c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set when using file-based TLS")
		}
	case TLSModeKubernetes:
		if c.TLSSecretName == "" {
			return fmt.Errorf("TLS_SECRET_NAME must be set when using kubernetes TLS mode")
		}
		if c.Runtime == RuntimeContainer && c.KubeConfigPath == "" {
			return fmt.Errorf("kubernetes TLS mode in container runtime requires KUBECONFIG path")
		}
	}

	if c.TLSRenewalThresholdDays < 0 {
		return fmt.Errorf("TLS_RENEWAL_THRESHOLD_DAYS must not be negative: %d", c.TLSRenewalThresholdDays)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func determineRuntime() RuntimeEnvironment {
	// Explicit runtime setting
	if runtime := os.Getenv("RUNTIME"); runtime != "" {
		switch strings.ToLower(runtime) {
		case "kubernetes", "k8s":
			return RuntimeKubernetes
		case "container", "docker":
			return RuntimeContainer
		case "vm", "virtual-machine", "bare-metal":
			return RuntimeVM
		}
	}

	// Auto-detect: Check if running in Kubernetes
	if _, err := os.Stat("/var/run/secrets/kubernetes.io/serviceaccount"); err == nil {
		return RuntimeKubernetes
	}

	// Auto-detect: Check if running in container
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return RuntimeContainer
	}

	return RuntimeVM
}

func determineNamespace() string {
	if ns := os.Getenv("NAMESPACE"); ns != "" {
		return ns
	}

	// Kubernetes downward API
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return ns
	}

	// Read from service account (in-cluster)
	if data, err := os.ReadFile("/var/run/secrets/kubernetes.io/serviceaccount/namespace"); err == nil {
		return strings.TrimSpace(string(data))
	}

	return "default"
}

func determineTLSMode() TLSMode {
	// Explicit mode
	if mode := os.Getenv("TLS_MODE"); mode != "" {
		switch strings.ToLower(mode) {
		case "file", "filesystem":
			return TLSModeFile
		case "kubernetes", "k8s", "secret":
			return TLSModeKubernetes
		case "memory", "in-memory":
			return TLSModeMemory
		}
	}

	// Auto-detect based on configuration
	if os.Getenv("TLS_CERT_FILE") != "" {
		return TLSModeFile
	}

	if os.Getenv("TLS_SECRET_NAME") != "" {
		return TLSModeKubernetes
	}

	return TLSModeMemory
}
