package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/config"
)

func TestSetupTLSDisabled(t *testing.T) {
	tlsConfig, err := setupTLS(context.Background(), &config.Config{TLSEnabled: false})
	require.NoError(t, err)
	assert.Nil(t, tlsConfig)
}

func TestSetupTLSMemory(t *testing.T) {
	cfg := &config.Config{
		TLSEnabled:              true,
		TLSMode:                 config.TLSModeMemory,
		TLSAutoGenerate:         true,
		TLSAutoRenew:            true,
		TLSRenewalThresholdDays: 30,
	}

	tlsConfig, err := setupTLS(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, tlsConfig.Certificates, 1)
}

func TestSetupTLSMemoryWithoutAutoGenerate(t *testing.T) {
	cfg := &config.Config{
		TLSEnabled: true,
		TLSMode:    config.TLSModeMemory,
	}

	_, err := setupTLS(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to ensure certificate")
}

const (
	runMainEnv  = "ECHO_BACKEND_RUN_MAIN"
	mainArgsEnv = "ECHO_BACKEND_ARGS"
)

// TestRunMain is the child side of runMain; it does nothing in a normal run.
func TestRunMain(t *testing.T) {
	if os.Getenv(runMainEnv) != "1" {
		return
	}
	args := []string{"echo-backend"}
	if raw := os.Getenv(mainArgsEnv); raw != "" {
		args = append(args, strings.Split(raw, "|")...)
	}
	os.Args = args
	main()
}

// runMain re-executes the test binary as echo-backend with args and returns
// its exit code and output.
func runMain(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^TestRunMain$")
	cmd.Env = append(os.Environ(),
		runMainEnv+"=1",
		mainArgsEnv+"="+strings.Join(args, "|"),
		"TLS_ENABLED=false",
		"HEALTH_SERVER_PORT=",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected non-zero exit, got %v", err)
	return exitErr.ExitCode(), stdout.String(), stderr.String()
}

func TestMainUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"one arg", []string{"9001"}},
		{"two args", []string{"9001", "sa-node-1"}},
		{"four args", []string{"9001", "sa-node-1", "sa", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runMain(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Equal(t,
				"Usage: echo-backend <port> <backend_id> <region>\n"+
					"Example: echo-backend 9001 sa-node-1 sa\n",
				stdout)
			assert.Empty(t, stderr)
		})
	}
}

func TestMainInvalidPort(t *testing.T) {
	code, stdout, stderr := runMain(t, "abc", "sa-node-1", "sa")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `Configuration error: invalid port "abc"`)
	// Nothing is logged because the process exits before the logger or listener start.
	assert.Empty(t, stdout)
}
