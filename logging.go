package lakeline

import (
	"io"
	"log/slog"
)

// NewLogger builds a slog logger from the config's observability settings,
// for callers who want the client's debug and warning logs on their own
// writer. Assign the result to Config.Logger.
func NewLogger(cfg Config, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	var handler slog.Handler
	if cfg.Observability.LogJSON {
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	} else {
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Observability.LogLevel})
	}
	return slog.New(handler).With(slog.String("component", "lakeline"))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
