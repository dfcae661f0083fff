package lakeline

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// uncompressedLengthHeader carries the pre-compression body size of gzip
// POST requests so the service can size its decode buffers.
const uncompressedLengthHeader = "X-Lakeline-Uncompressed-Content-Length"

// transport is the narrow capability the statement lifecycle and the cable
// depend on. Tests substitute fakes; httpTransport is the wire
// implementation.
type transport interface {
	submitStatement(ctx context.Context, req *statementRequest) (*statementResponse, error)
	fetchStatement(ctx context.Context, id uuid.UUID, format ResultFormat) (*statementResponse, error)
	cancelStatement(ctx context.Context, id uuid.UUID) (*statementCancelResponse, error)
	ingest(ctx context.Context, req *ingestRequest) (*IngestResponse, error)
	health(ctx context.Context) error
}

type httpTransport struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *slog.Logger
}

func (t *httpTransport) submitStatement(ctx context.Context, req *statementRequest) (*statementResponse, error) {
	statementSubmitsTotal.Inc()
	data, err := t.post(ctx, "submit", "/v1/statements", req)
	if err != nil {
		return nil, err
	}
	return decodeStatementResponse("submit", data)
}

func (t *httpTransport) fetchStatement(ctx context.Context, id uuid.UUID, format ResultFormat) (*statementResponse, error) {
	statementPollsTotal.Inc()
	query := url.Values{"format": []string{string(format)}}
	data, err := t.get(ctx, "fetch", "/v1/statements/"+id.String(), query)
	if err != nil {
		return nil, err
	}
	return decodeStatementResponse("fetch", data)
}

func (t *httpTransport) cancelStatement(ctx context.Context, id uuid.UUID) (*statementCancelResponse, error) {
	statementCancelsTotal.Inc()
	data, err := t.post(ctx, "cancel", "/v1/statements/"+id.String()+"/cancel", nil)
	if err != nil {
		return nil, err
	}
	var resp statementCancelResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("lakeline: decode cancel response: %w", err)
	}
	return &resp, nil
}

func (t *httpTransport) ingest(ctx context.Context, req *ingestRequest) (*IngestResponse, error) {
	data, err := t.post(ctx, "ingest", "/v1/ingest", req)
	if err != nil {
		return nil, err
	}
	var resp IngestResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("lakeline: decode ingest response: %w", err)
	}
	return &resp, nil
}

func (t *httpTransport) health(ctx context.Context) error {
	_, err := t.get(ctx, "health", "/v1/health", nil)
	return err
}

func decodeStatementResponse(op string, data []byte) (*statementResponse, error) {
	var resp statementResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("lakeline: decode %s response: %w", op, err)
	}
	return &resp, nil
}

func (t *httpTransport) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	endpoint := t.endpoint + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return t.do(op, req)
}

// post sends body as gzip-compressed JSON, matching what the service expects
// for every mutating call.
func (t *httpTransport) post(ctx context.Context, op, path string, body any) ([]byte, error) {
	payload := []byte{}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("lakeline: encode %s request: %w", op, err)
		}
		payload = encoded
	}

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(payload); err != nil {
		return nil, fmt.Errorf("lakeline: compress %s request: %w", op, err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("lakeline: compress %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint+path, &compressed)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set(uncompressedLengthHeader, strconv.Itoa(len(payload)))
	return t.do(op, req)
}

func (t *httpTransport) do(op string, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		requestDurationSeconds.WithLabelValues(op, "transport_error").Observe(time.Since(start).Seconds())
		return nil, &TransportError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		requestDurationSeconds.WithLabelValues(op, "transport_error").Observe(time.Since(start).Seconds())
		return nil, &TransportError{Op: op, Err: err}
	}

	requestDurationSeconds.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())
	t.logger.Debug("request completed",
		slog.String("op", op),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return nil, &RequestError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts the service's {"message": ...} error body, falling
// back to the raw body text.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return string(bytes.TrimSpace(data))
}
