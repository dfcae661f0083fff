package lakeline

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves a configuration key, typically os.LookupEnv.
type LookupFunc func(string) (string, bool)

// Config configures a Client. The zero value is not usable; either fill in
// Endpoint or load the config from the environment.
type Config struct {
	// Endpoint is the base URL of the service, e.g. "http://localhost:6543".
	Endpoint string
	// Token, when set, is sent as a bearer token on every request.
	Token string
	// HTTPTimeout bounds each individual HTTP request.
	HTTPTimeout time.Duration

	Ingest        IngestConfig
	Observability ObservabilityConfig

	// Logger receives client debug and warning logs. Nil discards them.
	Logger *slog.Logger
	// HTTPClient overrides the underlying HTTP client, mainly for tests.
	HTTPClient *http.Client
}

type IngestConfig struct {
	// BatchRows is the row count at which a cable auto-flushes.
	BatchRows int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

// LoadFromEnv loads the configuration from LAKELINE_* environment variables.
func LoadFromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

// Load builds a Config from defaults overridden by the given lookup.
func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := defaults()

	if err := applyString(lookup, "LAKELINE_ENDPOINT", &cfg.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "LAKELINE_TOKEN", &cfg.Token); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "LAKELINE_HTTP_TIMEOUT", &cfg.HTTPTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "LAKELINE_INGEST_BATCH_ROWS", &cfg.Ingest.BatchRows); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "LAKELINE_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "LAKELINE_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}

	if cfg.Endpoint == "" {
		return Config{}, fmt.Errorf("endpoint is required")
	}
	if cfg.Ingest.BatchRows <= 0 {
		return Config{}, fmt.Errorf("invalid LAKELINE_INGEST_BATCH_ROWS: must be positive")
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Endpoint:    "http://localhost:6543",
		HTTPTimeout: 30 * time.Second,
		Ingest: IngestConfig{
			BatchRows: 1000,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelInfo,
			LogJSON:  false,
		},
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
