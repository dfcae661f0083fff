package lakeline

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Observability: ObservabilityConfig{LogLevel: slog.LevelDebug, LogJSON: true},
	}, &buf)

	logger.Debug("poll completed", slog.Int("attempt", 3))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "poll completed" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if entry["component"] != "lakeline" {
		t.Fatalf("component = %v", entry["component"])
	}
	if entry["attempt"] != float64(3) {
		t.Fatalf("attempt = %v", entry["attempt"])
	}
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{
		Observability: ObservabilityConfig{LogLevel: slog.LevelWarn},
	}, &buf)

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Fatalf("info should be suppressed, got %q", buf.String())
	}

	logger.Warn("flush failed")
	if !strings.Contains(buf.String(), "flush failed") {
		t.Fatalf("warn missing from output: %q", buf.String())
	}
}

func TestNewLoggerNilWriterDiscards(t *testing.T) {
	logger := NewLogger(Config{}, nil)
	logger.Info("goes nowhere")
}
