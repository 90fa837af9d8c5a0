package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, debug bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Options{Debug: debug, Output: &buf})
	t.Cleanup(func() { Init(Options{}) })
	return &buf
}

func TestInfoWritesKeyValues(t *testing.T) {
	buf := capture(t, false)

	Info("Backend listening", "backend_id", "sa-node-1", "port", 9001)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, `msg="Backend listening"`)
	assert.Contains(t, out, "backend_id=sa-node-1")
	assert.Contains(t, out, "port=9001")
}

func TestDebugRespectsLevel(t *testing.T) {
	buf := capture(t, false)
	Debug("hidden")
	assert.Empty(t, buf.String())

	buf = capture(t, true)
	Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "source=")
}

func TestWithTagsEveryLine(t *testing.T) {
	buf := capture(t, false)

	l := With("backend_id", "us-node-2")
	l.Warn("Connection error")
	l.Info("Client disconnected")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, string(line), "backend_id=us-node-2")
	}
}

func TestFatalExits(t *testing.T) {
	buf := capture(t, false)

	var code int
	orig := exit
	exit = func(c int) { code = c }
	defer func() { exit = orig }()

	Fatal("Failed to start listener", "error", "address already in use")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `error="address already in use"`)
}
