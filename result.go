package lakeline

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Value is the decoded contents of a single result cell. A nil Value is a
// wire-level null.
type Value any

// ResultSet holds the typed tabular output of a finished statement: the
// column schema, the total row count, and the raw row matrix as received
// from the service. Rows are decoded lazily by ToValues and the decoded
// matrix is cached, so a ResultSet is safe to share once decoded.
type ResultSet struct {
	// TotalRows is the total number of rows in the result set.
	TotalRows uint64
	// Schema lists the result columns in wire order.
	Schema Schema
	// Format is the declared encoding of the raw rows.
	Format ResultFormat

	raw [][]*string

	mu        sync.Mutex
	decoded   bool
	values    [][]Value
	decodeErr error

	// convert overrides the cell conversion step in tests; nil means
	// convertCell.
	convert func(string, DataType) (Value, error)
}

func newResultSet(p *resultSetPayload) *ResultSet {
	schema := make(Schema, len(p.Metadata.Fields))
	for i, field := range p.Metadata.Fields {
		schema[i] = FieldSchema{Name: field.Name, Type: DataType(field.DataType)}
	}
	return &ResultSet{
		TotalRows: p.Metadata.NumRows,
		Schema:    schema,
		Format:    p.Format,
		raw:       p.Rows,
	}
}

// ToValues decodes the raw rows into a matrix of typed values.
//
// Decoding happens at most once per ResultSet; repeated calls return the
// cached matrix (or the cached error). A null wire cell decodes to a nil
// Value regardless of the declared column type.
func (rs *ResultSet) ToValues() ([][]Value, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if !rs.decoded {
		rs.values, rs.decodeErr = rs.decode()
		rs.decoded = true
	}
	return rs.values, rs.decodeErr
}

func (rs *ResultSet) decode() ([][]Value, error) {
	if rs.Format != ResultFormatJSON {
		return nil, &UnsupportedFormatError{Format: rs.Format}
	}

	convert := rs.convert
	if convert == nil {
		convert = convertCell
	}

	values := make([][]Value, 0, len(rs.raw))
	for i, row := range rs.raw {
		if len(row) != len(rs.Schema) {
			return nil, &SchemaMismatchError{Row: i, Cells: len(row), Columns: len(rs.Schema)}
		}
		decodedRow := make([]Value, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			field := rs.Schema[j]
			v, err := convert(*cell, field.Type)
			if err != nil {
				return nil, &DecodeError{Column: field.Name, Type: field.Type, Value: *cell, Err: err}
			}
			decodedRow[j] = v
		}
		values = append(values, decodedRow)
	}
	return values, nil
}

// convertCell converts one non-null cell according to the declared column
// type. Booleans are permissive: anything but a case variant of "true" is
// false. Timestamps fall back to the raw string when they do not parse.
// Interval, array, object, and any pass through as text.
func convertCell(v string, typ DataType) (Value, error) {
	switch typ {
	case DataTypeString:
		return v, nil
	case DataTypeInt:
		return strconv.ParseInt(v, 10, 64)
	case DataTypeUInt:
		// uint columns accept signed text; no range validation.
		return strconv.ParseInt(v, 10, 64)
	case DataTypeFloat:
		return strconv.ParseFloat(v, 64)
	case DataTypeBoolean:
		return strings.EqualFold(v, "true"), nil
	case DataTypeTimestamp:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts, nil
		}
		return v, nil
	case DataTypeInterval, DataTypeArray, DataTypeObject, DataTypeAny:
		return v, nil
	default:
		return nil, fmt.Errorf("unrecognized data type %q", typ)
	}
}
