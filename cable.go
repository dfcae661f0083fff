package lakeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Cable buffers rows for ingestion and flushes them to the service as JSON
// lines once the configured batch size is reached, or on an explicit Flush.
//
// A mutex serializes Append and Flush, so a flush never observes a
// half-appended batch and an append never races a flush clearing the
// buffer. The buffer is cleared only after a successful flush; failed rows
// stay buffered for the next attempt.
type Cable struct {
	t         transport
	transform string
	batchRows int
	logger    *slog.Logger

	mu  sync.Mutex
	buf []string
}

// Cable creates an ingestion cable. The transform is a statement applied to
// the sent rows as the source table; it must end with an INSERT, e.g.
//
//	SELECT $0["ts"]::timestamp, $0["v"] INSERT INTO my_table (ts, v)
func (c *Client) Cable(transform string) *Cable {
	batchRows := c.cfg.Ingest.BatchRows
	if batchRows <= 0 {
		batchRows = defaults().Ingest.BatchRows
	}
	return &Cable{
		t:         c.transport,
		transform: transform,
		batchRows: batchRows,
		logger:    c.logger,
	}
}

// Append adds one JSON-serializable record to the buffer, flushing it first
// when the batch size has been reached.
func (cb *Cable) Append(ctx context.Context, record any) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("lakeline: encode cable record: %w", err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, encoded); err != nil {
		return fmt.Errorf("lakeline: encode cable record: %w", err)
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.buf = append(cb.buf, compact.String())
	if len(cb.buf) >= cb.batchRows {
		return cb.flushLocked(ctx)
	}
	return nil
}

// Flush sends any buffered rows. It is a no-op on an empty buffer.
func (cb *Cable) Flush(ctx context.Context) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if len(cb.buf) == 0 {
		return nil
	}
	return cb.flushLocked(ctx)
}

// Buffered returns the number of rows waiting for the next flush.
func (cb *Cable) Buffered() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return len(cb.buf)
}

func (cb *Cable) flushLocked(ctx context.Context) error {
	rows := len(cb.buf)
	_, err := cb.t.ingest(ctx, &ingestRequest{
		Data: &ingestData{
			Format: string(ResultFormatJSON),
			Rows:   strings.Join(cb.buf, "\n"),
		},
		Statement: cb.transform,
	})
	if err != nil {
		cb.logger.Warn("cable flush failed",
			slog.Int("rows", rows),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("lakeline: flush cable: %w", err)
	}

	ingestFlushesTotal.Inc()
	ingestRowsTotal.Add(float64(rows))
	cb.buf = cb.buf[:0]
	return nil
}
