package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger(t *testing.T, level LogLevel) (*StudioLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: level, Format: "json", Output: &buf, AddSource: false})
	return l, &buf
}

// decodeLines parses each JSON log line written to buf.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestStudioLogger_LevelFiltering(t *testing.T) {
	l, buf := newCaptureLogger(t, LogLevelWarn)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "w", lines[0]["msg"])
	assert.Equal(t, "e", lines[1]["msg"])
}

func TestStudioLogger_ComponentAndRunAttrs(t *testing.T) {
	l, buf := newCaptureLogger(t, LogLevelInfo)
	l.WithComponent("router").WithRun("run_42").Info("routing decision", "reason", "ok")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "router", lines[0]["component"])
	assert.Equal(t, "run_42", lines[0]["run_id"])
	assert.Equal(t, "ok", lines[0]["reason"])

	// The With* methods clone; the receiver stays unchanged.
	buf.Reset()
	l.Info("plain")
	lines = decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "component")
}

func TestStudioLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "text", Output: &buf, AddSource: false})
	l.Info("hello", "key", "value")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "key=value")
}

func TestLogStageExecution(t *testing.T) {
	l, buf := newCaptureLogger(t, LogLevelInfo)
	l.LogStageExecution("planning", 150*time.Millisecond, true, nil)
	l.LogStageExecution("motion", 20*time.Millisecond, false, errors.New("boom"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Stage execution completed", lines[0]["msg"])
	assert.Equal(t, "planning", lines[0]["stage"])
	assert.Equal(t, true, lines[0]["success"])
	assert.Equal(t, "Stage execution failed", lines[1]["msg"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
}

func TestLogModelCall(t *testing.T) {
	l, buf := newCaptureLogger(t, LogLevelInfo)
	l.LogModelCall("claude-sonnet-4-20250514", 1234, 2*time.Second, true, nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Model call completed", lines[0]["msg"])
	assert.Equal(t, "claude-sonnet-4-20250514", lines[0]["model"])
	assert.Equal(t, float64(1234), lines[0]["token_count"])
}

func TestLogRenderCall(t *testing.T) {
	l, buf := newCaptureLogger(t, LogLevelInfo)
	l.LogRenderCall("shot_001", 5*time.Second, false, errors.New("renderer offline"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Render call failed", lines[0]["msg"])
	assert.Equal(t, "shot_001", lines[0]["shot_id"])
	assert.Equal(t, "renderer offline", lines[0]["error"])
}

func TestLogRoutingDecision(t *testing.T) {
	l, buf := newCaptureLogger(t, LogLevelInfo)
	l.LogRoutingDecision("director", []string{"animation"}, "animation fits best")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "Routing decision", lines[0]["msg"])
	assert.Equal(t, "director", lines[0]["current"])
	assert.Equal(t, "animation fits best", lines[0]["reason"])
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, nil)))
	l.Info("adapted", "k", "v")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "adapted", lines[0]["msg"])
	assert.Equal(t, "v", lines[0]["k"])
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NoOpLogger{}
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
}
