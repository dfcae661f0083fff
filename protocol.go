package lakeline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ResultFormat selects the encoding of result set rows.
type ResultFormat string

// ResultFormatJSON encodes rows as arrays of string-or-null cells. It is the
// only format the service currently speaks.
const ResultFormatJSON ResultFormat = "json"

// StatementStatus is the execution state of a submitted statement as last
// reported by the service.
type StatementStatus string

const (
	StatementStatusPending   StatementStatus = "pending"
	StatementStatusRunning   StatementStatus = "running"
	StatementStatusFinished  StatementStatus = "finished"
	StatementStatusFailed    StatementStatus = "failed"
	StatementStatusCancelled StatementStatus = "cancelled"
)

// Finished reports whether the statement completed successfully.
func (s StatementStatus) Finished() bool {
	return s == StatementStatusFinished
}

// Terminated reports whether the statement reached a state from which no
// further transition happens without a new submission.
func (s StatementStatus) Terminated() bool {
	switch s {
	case StatementStatusFinished, StatementStatusFailed, StatementStatusCancelled:
		return true
	default:
		return false
	}
}

// StatementProgress is a point-in-time snapshot of execution metrics. Each
// poll replaces the whole snapshot; fields are never merged individually.
type StatementProgress struct {
	TotalPercentage          float64 `json:"total_percentage"`
	NanosFromSubmitted       int64   `json:"nanos_from_submitted"`
	NanosFromStarted         int64   `json:"nanos_from_started"`
	TotalStages              int64   `json:"total_stages"`
	TotalPartitions          int64   `json:"total_partitions"`
	TotalRows                int64   `json:"total_rows"`
	TotalCompressedBytes     int64   `json:"total_compressed_bytes"`
	TotalUncompressedBytes   int64   `json:"total_uncompressed_bytes"`
	ScannedStages            int64   `json:"scanned_stages"`
	ScannedPartitions        int64   `json:"scanned_partitions"`
	ScannedRows              int64   `json:"scanned_rows"`
	ScannedCompressedBytes   int64   `json:"scanned_compressed_bytes"`
	ScannedUncompressedBytes int64   `json:"scanned_uncompressed_bytes"`
}

// DataType is the declared type of a result column. It governs how cells are
// decoded; it is not a full type system.
type DataType string

const (
	DataTypeString    DataType = "string"
	DataTypeInt       DataType = "int"
	DataTypeUInt      DataType = "uint"
	DataTypeFloat     DataType = "float"
	DataTypeBoolean   DataType = "boolean"
	DataTypeTimestamp DataType = "timestamp"
	DataTypeInterval  DataType = "interval"
	DataTypeArray     DataType = "array"
	DataTypeObject    DataType = "object"
	DataTypeAny       DataType = "any"
)

// FieldSchema describes one result column.
type FieldSchema struct {
	Name string
	Type DataType
}

// Schema is the ordered column list of a result set. Column order defines
// the positional mapping used to decode each row.
type Schema []FieldSchema

type statementRequest struct {
	StatementID *uuid.UUID   `json:"statement_id,omitempty"`
	Statement   string       `json:"statement"`
	ExecTimeout string       `json:"exec_timeout,omitempty"`
	Format      ResultFormat `json:"format"`
}

type statementResponse struct {
	ID        uuid.UUID          `json:"statement_id"`
	Status    StatementStatus    `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Progress  *StatementProgress `json:"progress"`

	// Message is set when the statement failed or was cancelled.
	Message *string `json:"message"`

	// ResultSet is set when the statement finished successfully.
	ResultSet *resultSetPayload `json:"result_set"`
}

func (r *statementResponse) failureMessage() string {
	if r == nil || r.Message == nil {
		return ""
	}
	return *r.Message
}

type resultSetPayload struct {
	Format   ResultFormat       `json:"format"`
	Metadata *resultSetMetadata `json:"metadata"`
	Rows     [][]*string        `json:"rows"`
}

type resultSetMetadata struct {
	Fields  []resultSetField `json:"fields"`
	NumRows uint64           `json:"num_rows"`
}

type resultSetField struct {
	Name     string
	DataType string
}

// dataTypeKeys are the key spellings the service has been observed to emit
// for a column's data type, in priority order.
var dataTypeKeys = [...]string{"data_Type", "data_type", "dataType"}

func (f *resultSetField) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &f.Name); err != nil {
			return err
		}
	}
	for _, key := range dataTypeKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &f.DataType); err != nil {
			return err
		}
		return nil
	}
	return nil
}

func (f resultSetField) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string `json:"name"`
		DataType string `json:"data_type"`
	}{Name: f.Name, DataType: f.DataType})
}

type statementCancelResponse struct {
	Status  StatementStatus `json:"status"`
	Message string          `json:"message"`
}

type ingestRequest struct {
	Data      *ingestData `json:"data"`
	Statement string      `json:"statement"`
}

type ingestData struct {
	Format string `json:"format"`
	Rows   string `json:"rows"`
}

// IngestResponse reports how many rows an ingest call inserted.
type IngestResponse struct {
	NumRowsInserted int `json:"num_rows_inserted"`
}
