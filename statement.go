package lakeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	initialPollInterval = 5 * time.Millisecond
	maxPollInterval     = time.Second
)

// Statement is a statement to be executed by the service. It is built by
// Client.Statement, optionally customized, and then submitted. A Statement
// is never mutated after submission.
type Statement struct {
	t    transport
	stmt string

	// ID pins the statement to a caller-chosen UUID. Resubmitting the same
	// ID returns the existing execution instead of starting a new one.
	ID *uuid.UUID
	// ExecTimeout is the server-side execution timeout, e.g. "1h". The
	// statement fails as timed out when execution exceeds it.
	ExecTimeout string
	// ResultFormat is the requested result encoding.
	ResultFormat ResultFormat
}

// Statement creates a statement for the given query text.
func (c *Client) Statement(stmt string) *Statement {
	return &Statement{
		t:            c.transport,
		stmt:         stmt,
		ResultFormat: ResultFormatJSON,
	}
}

// Submit sends the statement for asynchronous execution and returns a handle
// seeded with the service's initial response. No retry is attempted.
func (s *Statement) Submit(ctx context.Context) (*StatementHandle, error) {
	if strings.TrimSpace(s.stmt) == "" {
		return nil, ErrStatementEmpty
	}

	resp, err := s.t.submitStatement(ctx, &statementRequest{
		StatementID: s.ID,
		Statement:   s.stmt,
		ExecTimeout: s.ExecTimeout,
		Format:      s.ResultFormat,
	})
	if err != nil {
		return nil, err
	}

	return &StatementHandle{
		t:      s.t,
		id:     resp.ID,
		Format: s.ResultFormat,
		resp:   resp,
	}, nil
}

// Execute submits the statement and waits for its completion.
func (s *Statement) Execute(ctx context.Context) (*ResultSet, error) {
	handle, err := s.Submit(ctx)
	if err != nil {
		return nil, err
	}
	return handle.Fetch(ctx)
}

// StatementHandle is the caller-held execution context of one submitted
// statement. It keeps the last observed response snapshot; each successful
// poll replaces the snapshot wholesale. A handle is meant for a single
// logical task and is not safe for concurrent use.
type StatementHandle struct {
	t  transport
	id uuid.UUID

	// Format is the result encoding requested at submission.
	Format ResultFormat

	resp *statementResponse

	// sleep overrides the backoff wait in tests; nil means sleepContext.
	sleep func(context.Context, time.Duration) error
}

// StatementHandle re-attaches to a previously submitted statement by ID. The
// handle starts with an empty snapshot; the first FetchOnce fills it.
func (c *Client) StatementHandle(id uuid.UUID) *StatementHandle {
	return &StatementHandle{
		t:      c.transport,
		id:     id,
		Format: ResultFormatJSON,
	}
}

// ID returns the statement's identifier.
func (h *StatementHandle) ID() uuid.UUID { return h.id }

// Status returns the last observed status, or nil before the first response.
func (h *StatementHandle) Status() *StatementStatus {
	if h.resp == nil {
		return nil
	}
	return &h.resp.Status
}

// Progress returns the last observed progress snapshot, if any.
func (h *StatementHandle) Progress() *StatementProgress {
	if h.resp == nil {
		return nil
	}
	return h.resp.Progress
}

// Message returns the failure message of the last observed response, or ""
// when there is none.
func (h *StatementHandle) Message() string {
	return h.resp.failureMessage()
}

// ResultSet returns the result set of the last observed response, or nil if
// none is present yet.
func (h *StatementHandle) ResultSet() *ResultSet {
	if h.resp == nil || h.resp.ResultSet == nil || h.resp.ResultSet.Metadata == nil {
		return nil
	}
	return newResultSet(h.resp.ResultSet)
}

// FetchOnce performs exactly one status poll.
//
// It returns immediately without a network call when the current snapshot is
// already terminal. Otherwise the snapshot is replaced with the response; a
// response carrying a failure message then yields a StatementFailedError
// with that message verbatim.
func (h *StatementHandle) FetchOnce(ctx context.Context) error {
	if h.resp != nil && h.resp.Status.Terminated() {
		return nil
	}

	resp, err := h.t.fetchStatement(ctx, h.id, h.Format)
	if err != nil {
		return err
	}
	h.resp = resp

	if msg := resp.failureMessage(); msg != "" {
		return &StatementFailedError{StatementID: h.id, Message: msg}
	}
	return nil
}

// Fetch polls the statement until it resolves, then returns its result set.
//
// The current snapshot is inspected before every poll: a present result set
// resolves immediately, a failure message fails immediately, and a terminal
// status with neither fails with a TerminatedError. A handle whose snapshot
// is already conclusive therefore resolves without any network call.
//
// Between polls the wait interval starts at 5ms and doubles after each
// unsuccessful poll, capped at one second. There is no retry limit or
// overall timeout here; bound the wait with ctx or the statement's
// ExecTimeout.
func (h *StatementHandle) Fetch(ctx context.Context) (*ResultSet, error) {
	sleep := h.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	interval := initialPollInterval
	for {
		if h.resp != nil {
			if rs := h.ResultSet(); rs != nil {
				return rs, nil
			}
			if msg := h.resp.failureMessage(); msg != "" {
				return nil, &StatementFailedError{StatementID: h.id, Message: msg}
			}
			if h.resp.Status.Terminated() {
				return nil, &TerminatedError{StatementID: h.id, Status: h.resp.Status}
			}
		}

		if err := sleep(ctx, interval); err != nil {
			return nil, err
		}
		if interval < maxPollInterval {
			interval = min(interval*2, maxPollInterval)
		}

		if err := h.FetchOnce(ctx); err != nil {
			return nil, err
		}
	}
}

// Cancel cancels the statement if it is still pending or running.
//
// On an already-terminal snapshot it returns the current status without a
// network call. Otherwise the cancel response's status and message are
// applied onto the existing snapshot; progress and result are deliberately
// left untouched, as a cancel response carries less than a full poll.
func (h *StatementHandle) Cancel(ctx context.Context) (StatementStatus, error) {
	if h.resp != nil && h.resp.Status.Terminated() {
		return h.resp.Status, nil
	}

	resp, err := h.t.cancelStatement(ctx, h.id)
	if err != nil {
		return "", err
	}

	if h.resp == nil {
		h.resp = &statementResponse{ID: h.id}
	}
	h.resp.Status = resp.Status
	if resp.Message != "" {
		msg := resp.Message
		h.resp.Message = &msg
	}
	return resp.Status, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
