package lakeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrStatementEmpty is returned by Submit when the statement text is blank.
var ErrStatementEmpty = errors.New("lakeline: statement text is empty")

// TransportError reports a connectivity-level failure: the request never
// produced an HTTP response, or the response body could not be read. It is
// never retried by the client.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("lakeline: %s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError reports that the service answered a submit, fetch, cancel, or
// ingest call with an application-level error status.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("lakeline: %s: %d: %s", e.Op, e.StatusCode, e.Message)
}

// StatementFailedError reports that a poll response carried a failure
// message. Message holds the service's text verbatim. The handle snapshot is
// updated before this error is returned, so callers can still inspect the
// final status.
type StatementFailedError struct {
	StatementID uuid.UUID
	Message     string
}

func (e *StatementFailedError) Error() string {
	return fmt.Sprintf("lakeline: statement %s failed: %s", e.StatementID, e.Message)
}

// TerminatedError reports a protocol invariant violation: the statement
// reached a terminal status but the response carried neither a result set
// nor a failure message.
type TerminatedError struct {
	StatementID uuid.UUID
	Status      StatementStatus
}

func (e *TerminatedError) Error() string {
	return fmt.Sprintf("lakeline: statement %s terminated with status %q and no result", e.StatementID, e.Status)
}

// SchemaMismatchError aborts a whole decode when a row's cell count
// disagrees with the schema's column count. No partial rows are returned.
type SchemaMismatchError struct {
	Row     int
	Cells   int
	Columns int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("lakeline: row %d has %d cells, schema has %d columns", e.Row, e.Cells, e.Columns)
}

// DecodeError reports a cell that failed type-directed conversion.
type DecodeError struct {
	Column string
	Type   DataType
	Value  string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("lakeline: decode column %q (%s) value %q: %v", e.Column, e.Type, e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UnsupportedFormatError is returned at decode time when a result set
// declares a format other than json.
type UnsupportedFormatError struct {
	Format ResultFormat
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("lakeline: unsupported result format %q", e.Format)
}
