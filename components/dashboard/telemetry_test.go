package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTelemetryWritesStructuredEvents(t *testing.T) {
	var buf bytes.Buffer
	telemetry := NewLogTelemetry(NewLogger("debug", "json", &buf))

	telemetry.Record(context.Background(), "dashboard.snapshot", map[string]any{"rows": 4, "session_id": "s1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "dashboard.snapshot", entry["event"])
	assert.Equal(t, float64(4), entry["rows"])
	assert.Equal(t, "s1", entry["session_id"])
}

func TestLogTelemetryWarnsOnErrors(t *testing.T) {
	var buf bytes.Buffer
	telemetry := NewLogTelemetry(NewLogger("info", "text", &buf))

	telemetry.Record(context.Background(), "dashboard.session.load", map[string]any{"error": "boom"})

	line := buf.String()
	assert.True(t, strings.Contains(line, "level=WARN"), line)
	assert.Contains(t, line, "error=boom")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestNormalizeTelemetry(t *testing.T) {
	assert.IsType(t, noopTelemetry{}, normalizeTelemetry(nil))
	recorder := &recordingTelemetry{}
	assert.Same(t, recorder, normalizeTelemetry(recorder))
}
