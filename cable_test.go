package lakeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCable(t *fakeTransport, batchRows int) *Cable {
	return &Cable{
		t:         t,
		transform: "SELECT $0 INSERT INTO t",
		batchRows: batchRows,
		logger:    discardLogger(),
	}
}

func TestCableFlushesWhenBatchSizeReached(t *testing.T) {
	ft := &fakeTransport{}
	cable := newTestCable(ft, 3)
	ctx := context.Background()

	require.NoError(t, cable.Append(ctx, map[string]int{"a": 1}))
	require.NoError(t, cable.Append(ctx, map[string]int{"a": 2}))
	assert.Equal(t, 0, ft.ingestCalls)
	assert.Equal(t, 2, cable.Buffered())

	require.NoError(t, cable.Append(ctx, map[string]int{"a": 3}))
	assert.Equal(t, 1, ft.ingestCalls)
	assert.Equal(t, 0, cable.Buffered())

	require.Len(t, ft.ingestReqs, 1)
	req := ft.ingestReqs[0]
	assert.Equal(t, "SELECT $0 INSERT INTO t", req.Statement)
	assert.Equal(t, "json", req.Data.Format)
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n{\"a\":3}", req.Data.Rows)
}

func TestCableFlushSendsRemainder(t *testing.T) {
	ft := &fakeTransport{}
	cable := newTestCable(ft, 100)
	ctx := context.Background()

	require.NoError(t, cable.Append(ctx, map[string]string{"k": "v"}))
	require.NoError(t, cable.Flush(ctx))
	assert.Equal(t, 1, ft.ingestCalls)
	assert.Equal(t, 0, cable.Buffered())
}

func TestCableFlushEmptyIsNoOp(t *testing.T) {
	ft := &fakeTransport{}
	cable := newTestCable(ft, 10)

	require.NoError(t, cable.Flush(context.Background()))
	assert.Equal(t, 0, ft.ingestCalls)
}

func TestCableKeepsBufferOnFlushFailure(t *testing.T) {
	ft := &fakeTransport{ingestErr: errors.New("service unavailable")}
	cable := newTestCable(ft, 2)
	ctx := context.Background()

	require.NoError(t, cable.Append(ctx, 1))
	err := cable.Append(ctx, 2)
	require.Error(t, err)
	assert.Equal(t, 2, cable.Buffered())

	// rows survive until a flush succeeds
	ft.ingestErr = nil
	require.NoError(t, cable.Flush(ctx))
	assert.Equal(t, 0, cable.Buffered())
	require.Len(t, ft.ingestReqs, 1)
	assert.Equal(t, "1\n2", ft.ingestReqs[0].Data.Rows)
}

func TestCableRejectsUnserializableRecord(t *testing.T) {
	ft := &fakeTransport{}
	cable := newTestCable(ft, 10)

	err := cable.Append(context.Background(), func() {})
	require.Error(t, err)
	assert.Equal(t, 0, cable.Buffered())
}

func TestCableConcurrentAppends(t *testing.T) {
	ft := &fakeTransport{}
	cable := newTestCable(ft, 1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = cable.Append(ctx, fmt.Sprintf("row-%d-%d", i, j))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, cable.Buffered())
	require.NoError(t, cable.Flush(ctx))
	assert.Equal(t, 0, cable.Buffered())
}

func TestClientCableUsesConfiguredBatchSize(t *testing.T) {
	client, err := NewClient(Config{
		Endpoint: "http://localhost:6543",
		Ingest:   IngestConfig{BatchRows: 7},
	})
	require.NoError(t, err)
	defer client.Close()

	cable := client.Cable("SELECT $0 INSERT INTO t")
	assert.Equal(t, 7, cable.batchRows)
}
