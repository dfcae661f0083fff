package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lakeline/lakeline-go/internal/cli/lakectl"
)

func main() {
	timeout := parseDurationWithDefault(strings.TrimSpace(os.Getenv("LAKECTL_TIMEOUT")), 30*time.Second)
	options := lakectl.Options{
		Endpoint:   strings.TrimSpace(os.Getenv("LAKELINE_ENDPOINT")),
		Token:      strings.TrimSpace(os.Getenv("LAKELINE_TOKEN")),
		ConfigPath: strings.TrimSpace(os.Getenv("LAKECTL_CONFIG")),
		Timeout:    timeout,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}

	code := lakectl.Run(context.Background(), os.Args[1:], options)
	os.Exit(code)
}

func parseDurationWithDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid LAKECTL_TIMEOUT %q; using %s\n", raw, fallback)
		return fallback
	}
	return parsed
}
