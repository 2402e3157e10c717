package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsArePrefixed(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf)

	logger.Info("starting %s", "server")
	logger.Warn("slow query")
	logger.Error("connection lost")

	out := buf.String()
	assert.Contains(t, out, "INFO: starting server")
	assert.Contains(t, out, "WARN: slow query")
	assert.Contains(t, out, "ERROR: connection lost")
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf)

	logger.Debug("pool stats")
	assert.Empty(t, buf.String())
}

func TestDebugEnabledByEnv(t *testing.T) {
	t.Setenv("SOP_DEBUG", "1")

	var buf bytes.Buffer
	logger := NewLoggerTo(&buf)

	logger.Debug("pool stats")
	assert.Contains(t, buf.String(), "DEBUG: pool stats")
}
