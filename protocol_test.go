package lakeline

import (
	"encoding/json"
	"testing"
)

func TestResultSetFieldUnmarshalKeyVariants(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"data_Type", `{"name":"a","data_Type":"int"}`, "int"},
		{"data_type", `{"name":"a","data_type":"string"}`, "string"},
		{"dataType", `{"name":"a","dataType":"float"}`, "float"},
		{"absent", `{"name":"a"}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f resultSetField
			if err := json.Unmarshal([]byte(tc.in), &f); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if f.Name != "a" {
				t.Fatalf("Name = %q", f.Name)
			}
			if f.DataType != tc.want {
				t.Fatalf("DataType = %q, want %q", f.DataType, tc.want)
			}
		})
	}
}

func TestResultSetFieldKeyPriority(t *testing.T) {
	// when several spellings are present, data_Type wins over data_type,
	// which wins over dataType
	var f resultSetField
	in := `{"name":"a","dataType":"float","data_type":"string","data_Type":"int"}`
	if err := json.Unmarshal([]byte(in), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if f.DataType != "int" {
		t.Fatalf("DataType = %q, want int", f.DataType)
	}

	var g resultSetField
	in = `{"name":"a","dataType":"float","data_type":"string"}`
	if err := json.Unmarshal([]byte(in), &g); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if g.DataType != "string" {
		t.Fatalf("DataType = %q, want string", g.DataType)
	}
}

func TestResultSetFieldMarshalRoundTrip(t *testing.T) {
	data, err := json.Marshal(resultSetField{Name: "a", DataType: "int"})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"name":"a","data_type":"int"}` {
		t.Fatalf("Marshal() = %s", data)
	}
}

func TestStatementResponseUnmarshal(t *testing.T) {
	in := `{
		"statement_id": "7cb7c107-2f5c-4a23-b0ef-f31f7cb998bc",
		"status": "finished",
		"created_at": "2024-06-01T12:00:00Z",
		"progress": {"total_percentage": 100, "scanned_rows": 9},
		"result_set": {
			"format": "json",
			"metadata": {
				"fields": [{"name":"n","data_type":"int"}],
				"num_rows": 1
			},
			"rows": [["1"], [null]]
		}
	}`
	var resp statementResponse
	if err := json.Unmarshal([]byte(in), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.ID != testStatementID {
		t.Fatalf("ID = %s", resp.ID)
	}
	if !resp.Status.Finished() {
		t.Fatalf("Status = %q", resp.Status)
	}
	if resp.Progress == nil || resp.Progress.ScannedRows != 9 {
		t.Fatalf("Progress = %+v", resp.Progress)
	}
	if resp.ResultSet == nil || resp.ResultSet.Metadata == nil {
		t.Fatal("ResultSet not decoded")
	}
	if got := resp.ResultSet.Metadata.Fields[0].DataType; got != "int" {
		t.Fatalf("field type = %q", got)
	}
	if resp.ResultSet.Rows[1][0] != nil {
		t.Fatal("null cell not preserved")
	}
	if resp.failureMessage() != "" {
		t.Fatalf("failureMessage = %q", resp.failureMessage())
	}
}

func TestStatementResponseWithoutResultSet(t *testing.T) {
	in := `{"statement_id":"7cb7c107-2f5c-4a23-b0ef-f31f7cb998bc","status":"failed","message":"syntax error"}`
	var resp statementResponse
	if err := json.Unmarshal([]byte(in), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if resp.ResultSet != nil {
		t.Fatal("ResultSet should be nil")
	}
	if resp.failureMessage() != "syntax error" {
		t.Fatalf("failureMessage = %q", resp.failureMessage())
	}
	if !resp.Status.Terminated() {
		t.Fatal("failed should be terminal")
	}
}

func TestStatementStatusTerminated(t *testing.T) {
	cases := map[StatementStatus]bool{
		StatementStatusPending:   false,
		StatementStatusRunning:   false,
		StatementStatusFinished:  true,
		StatementStatusFailed:    true,
		StatementStatusCancelled: true,
	}
	for status, want := range cases {
		if got := status.Terminated(); got != want {
			t.Fatalf("Terminated(%s) = %v, want %v", status, got, want)
		}
	}
}
