package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogger swaps the global logger for one writing into buf and
// returns a restore func
func captureLogger(buf *bytes.Buffer, level slog.Level) func() {
	original := Logger
	Logger = slog.New(&StructuredJSONHandler{
		writer:      buf,
		level:       level,
		serviceName: "test-service",
		environment: "test",
	})
	return func() { Logger = original }
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) StructuredLogEntry {
	t.Helper()
	var entry StructuredLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	defer captureLogger(&buf, LevelDebug)()

	Info("Test message", "key", "value")

	entry := decodeEntry(t, &buf)
	assert.Equal(t, "Test message", entry.Message)
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "test-service", entry.Service)
	assert.Equal(t, "test", entry.Environment)
	assert.Equal(t, "value", entry.Attributes["key"])
	assert.NotEmpty(t, entry.Timestamp)
}

func TestContextIDsRoutedToRequestSection(t *testing.T) {
	var buf bytes.Buffer
	defer captureLogger(&buf, LevelDebug)()

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithCorrelationID(ctx, "corr-456")
	InfoCtx(ctx, "Handling request")

	entry := decodeEntry(t, &buf)
	require.NotNil(t, entry.Request)
	assert.Equal(t, "req-123", entry.Request["request_id"])
	assert.Equal(t, "corr-456", entry.Request["correlation_id"])
}

func TestAttributePrefixRouting(t *testing.T) {
	var buf bytes.Buffer
	defer captureLogger(&buf, LevelDebug)()

	Info("Request completed",
		"request_method", "POST",
		"response_status", 200,
		"duration_ms", 42,
	)

	entry := decodeEntry(t, &buf)
	require.NotNil(t, entry.Request)
	assert.Equal(t, "POST", entry.Request["method"])
	require.NotNil(t, entry.Response)
	assert.Equal(t, float64(200), entry.Response["status"])
	assert.Equal(t, float64(42), entry.Attributes["duration_ms"])
}

func TestErrorSection(t *testing.T) {
	var buf bytes.Buffer
	defer captureLogger(&buf, LevelDebug)()

	Error("Upstream failed", "error", fmt.Errorf("connection refused"))

	entry := decodeEntry(t, &buf)
	require.NotNil(t, entry.Error)
	assert.Equal(t, "connection refused", entry.Error["message"])
	assert.NotEmpty(t, entry.Error["type"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	defer captureLogger(&buf, LevelWarn)()

	Debug("too quiet")
	Info("still too quiet")

	assert.Empty(t, buf.Bytes())

	Warn("loud enough")
	assert.NotEmpty(t, buf.Bytes())
}

func TestNilLoggerIsSafe(t *testing.T) {
	original := Logger
	Logger = nil
	defer func() { Logger = original }()

	// None of these may panic before Init has run
	Debug("msg")
	Info("msg")
	Warn("msg")
	Error("msg")
	InfoCtx(context.Background(), "msg")
}

func TestInit_TextFormat(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	err := Init(Config{Level: LevelInfo, Format: "text", Output: "stderr"})

	require.NoError(t, err)
	assert.NotNil(t, Logger)
}

func TestInitFromEnv_LevelParsing(t *testing.T) {
	original := Logger
	defer func() { Logger = original }()

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stderr")

	require.NoError(t, InitFromEnv())
	assert.True(t, Logger.Enabled(context.Background(), LevelDebug))
}
