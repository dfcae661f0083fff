package lakeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// Client is the entry point for talking to the service. It is safe for
// concurrent use; statements and cables created from it are not.
type Client struct {
	cfg       Config
	transport transport
	logger    *slog.Logger
}

// NewClient validates the config and builds a client. The connection is
// lazy; the first request establishes it.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		return nil, fmt.Errorf("lakeline: endpoint is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = defaults().HTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		cfg: cfg,
		transport: &httpTransport{
			endpoint: endpoint,
			token:    strings.TrimSpace(cfg.Token),
			client:   httpClient,
			logger:   logger,
		},
		logger: logger,
	}, nil
}

// Close releases idle connections. The garbage collector would reclaim them
// eventually; Close releases them immediately.
func (c *Client) Close() {
	if t, ok := c.transport.(*httpTransport); ok {
		t.client.CloseIdleConnections()
	}
}

// Health checks that the service answers on its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.transport.health(ctx)
}
