package lakeline

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// DriverName registers the database/sql driver.
const DriverName = "lakeline"

var (
	errTransactionsUnsupported = errors.New("lakeline: transactions are not supported")
	errParametersUnsupported   = errors.New("lakeline: statement parameters are not supported")
)

// Driver exposes the client through database/sql. The DSN is the service
// endpoint URL with optional query parameters:
//
//	http://localhost:6543?token=secret&timeout=30s
//
// The driver is query-only: transactions and bind parameters are rejected.
type Driver struct{}

func init() {
	sql.Register(DriverName, &Driver{})
}

// Open implements driver.Driver.
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	cfg, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &conn{client: client}, nil
}

// ParseDSN converts a driver DSN into a client Config.
func ParseDSN(dsn string) (Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return Config{}, fmt.Errorf("lakeline: parse dsn: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Config{}, fmt.Errorf("lakeline: parse dsn: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return Config{}, fmt.Errorf("lakeline: parse dsn: host is required")
	}

	cfg := defaults()
	cfg.Endpoint = u.Scheme + "://" + u.Host + strings.TrimRight(u.Path, "/")

	query := u.Query()
	cfg.Token = query.Get("token")
	if raw := query.Get("timeout"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("lakeline: parse dsn: invalid timeout: %w", err)
		}
		cfg.HTTPTimeout = timeout
	}
	return cfg, nil
}

type conn struct {
	client *Client
}

var (
	_ driver.Conn           = (*conn)(nil)
	_ driver.QueryerContext = (*conn)(nil)
	_ driver.ExecerContext  = (*conn)(nil)
	_ driver.Pinger         = (*conn)(nil)
)

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{conn: c, query: query}, nil
}

func (c *conn) Close() error {
	c.client.Close()
	return nil
}

func (c *conn) Begin() (driver.Tx, error) {
	return nil, errTransactionsUnsupported
}

func (c *conn) Ping(ctx context.Context) error {
	return c.client.Health(ctx)
}

func (c *conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, errParametersUnsupported
	}
	rs, err := c.client.Statement(query).Execute(ctx)
	if err != nil {
		return nil, err
	}
	return newDriverRows(rs)
}

func (c *conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, errParametersUnsupported
	}
	if _, err := c.client.Statement(query).Execute(ctx); err != nil {
		return nil, err
	}
	return driver.ResultNoRows, nil
}

type stmt struct {
	conn  *conn
	query string
}

var (
	_ driver.Stmt             = (*stmt)(nil)
	_ driver.StmtQueryContext = (*stmt)(nil)
	_ driver.StmtExecContext  = (*stmt)(nil)
)

func (s *stmt) Close() error { return nil }

func (s *stmt) NumInput() int { return 0 }

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), namedValues(args))
}

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), namedValues(args))
}

func (s *stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

func (s *stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	return s.conn.ExecContext(ctx, s.query, args)
}

func namedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: arg}
	}
	return named
}

type driverRows struct {
	schema Schema
	values [][]Value
	pos    int
}

var _ driver.RowsColumnTypeDatabaseTypeName = (*driverRows)(nil)

func newDriverRows(rs *ResultSet) (*driverRows, error) {
	values, err := rs.ToValues()
	if err != nil {
		return nil, err
	}
	return &driverRows{schema: rs.Schema, values: values}, nil
}

func (r *driverRows) Columns() []string {
	names := make([]string, len(r.schema))
	for i, field := range r.schema {
		names[i] = field.Name
	}
	return names
}

func (r *driverRows) ColumnTypeDatabaseTypeName(index int) string {
	return strings.ToUpper(string(r.schema[index].Type))
}

func (r *driverRows) Close() error { return nil }

func (r *driverRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	for i, v := range r.values[r.pos] {
		dest[i] = driver.Value(v)
	}
	r.pos++
	return nil
}
