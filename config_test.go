package lakeline

import (
	"log/slog"
	"testing"
	"time"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(mapLookup(nil))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoint != "http://localhost:6543" {
		t.Fatalf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Token != "" {
		t.Fatalf("Token = %q", cfg.Token)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Fatalf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.Ingest.BatchRows != 1000 {
		t.Fatalf("BatchRows = %d", cfg.Ingest.BatchRows)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %s", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogJSON {
		t.Fatal("LogJSON should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{
		"LAKELINE_ENDPOINT":          " https://lakeline.example.com ",
		"LAKELINE_TOKEN":             "tok-123",
		"LAKELINE_HTTP_TIMEOUT":      "90s",
		"LAKELINE_INGEST_BATCH_ROWS": "250",
		"LAKELINE_LOG_LEVEL":         "debug",
		"LAKELINE_LOG_JSON":          "true",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoint != "https://lakeline.example.com" {
		t.Fatalf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.Token != "tok-123" {
		t.Fatalf("Token = %q", cfg.Token)
	}
	if cfg.HTTPTimeout != 90*time.Second {
		t.Fatalf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.Ingest.BatchRows != 250 {
		t.Fatalf("BatchRows = %d", cfg.Ingest.BatchRows)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %s", cfg.Observability.LogLevel)
	}
	if !cfg.Observability.LogJSON {
		t.Fatal("LogJSON = false, want true")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
	}{
		{"nil lookup", nil},
		{"empty endpoint", map[string]string{"LAKELINE_ENDPOINT": "  "}},
		{"bad timeout", map[string]string{"LAKELINE_HTTP_TIMEOUT": "soon"}},
		{"bad batch rows", map[string]string{"LAKELINE_INGEST_BATCH_ROWS": "abc"}},
		{"zero batch rows", map[string]string{"LAKELINE_INGEST_BATCH_ROWS": "0"}},
		{"negative batch rows", map[string]string{"LAKELINE_INGEST_BATCH_ROWS": "-5"}},
		{"bad log level", map[string]string{"LAKELINE_LOG_LEVEL": "verbose"}},
		{"bad log json", map[string]string{"LAKELINE_LOG_JSON": "yes please"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var lookup LookupFunc
			if tc.values != nil {
				lookup = mapLookup(tc.values)
			}
			if _, err := Load(lookup); err == nil {
				t.Fatal("Load() expected error")
			}
		})
	}
}

func TestLoadAcceptsWarningAlias(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{"LAKELINE_LOG_LEVEL": "WARNING"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Observability.LogLevel != slog.LevelWarn {
		t.Fatalf("LogLevel = %s", cfg.Observability.LogLevel)
	}
}
