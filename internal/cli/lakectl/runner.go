package lakectl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	lakeline "github.com/lakeline/lakeline-go"
)

type Options struct {
	Endpoint   string
	Token      string
	ConfigPath string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// profile is the YAML shape of a lakectl config file.
type profile struct {
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token"`
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	stdin := defaults.Stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}

	fs := flag.NewFlagSet("lakectl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	endpoint := fs.String("endpoint", defaults.Endpoint, "Lakeline service endpoint URL")
	token := fs.String("token", defaults.Token, "bearer token for authenticated requests")
	configPath := fs.String("config", defaults.ConfigPath, "path to a lakectl YAML profile")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 30*time.Second), "HTTP timeout (e.g. 30s)")
	execTimeout := fs.String("exec-timeout", "", "server-side execution timeout (e.g. 1h)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	resolvedEndpoint, resolvedToken := *endpoint, *token
	if *configPath != "" {
		loaded, err := loadProfile(*configPath)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
			return 2
		}
		// flags beat the profile file
		if resolvedEndpoint == "" {
			resolvedEndpoint = loaded.Endpoint
		}
		if resolvedToken == "" {
			resolvedToken = loaded.Token
		}
	}
	if resolvedEndpoint == "" {
		resolvedEndpoint = "http://localhost:6543"
	}

	client, err := lakeline.NewClient(lakeline.Config{
		Endpoint:    resolvedEndpoint,
		Token:       resolvedToken,
		HTTPTimeout: *timeout,
		HTTPClient:  defaults.HTTPClient,
	})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 2
	}
	defer client.Close()

	command := strings.TrimSpace(fs.Arg(0))
	switch command {
	case "health":
		return runHealth(ctx, client, stdout, stderr)
	case "submit":
		return runSubmit(ctx, client, fs.Args()[1:], *execTimeout, stdout, stderr)
	case "status":
		return runStatus(ctx, client, fs.Args()[1:], stdout, stderr)
	case "query":
		return runQuery(ctx, client, fs.Args()[1:], *execTimeout, stdout, stderr)
	case "cancel":
		return runCancel(ctx, client, fs.Args()[1:], stdout, stderr)
	case "ingest":
		return runIngest(ctx, client, fs.Args()[1:], stdin, stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}
}

func runHealth(ctx context.Context, client *lakeline.Client, stdout, stderr io.Writer) int {
	if err := client.Health(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(stdout, "ok")
	return 0
}

func runSubmit(ctx context.Context, client *lakeline.Client, args []string, execTimeout string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(stderr, "usage: lakectl submit <statement>")
		return 2
	}
	stmt := client.Statement(args[0])
	stmt.ExecTimeout = execTimeout
	handle, err := stmt.Submit(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	printJSON(stdout, map[string]any{
		"statement_id": handle.ID().String(),
		"status":       statusString(handle.Status()),
	})
	return 0
}

func runStatus(ctx context.Context, client *lakeline.Client, args []string, stdout, stderr io.Writer) int {
	handle, code := handleFromArgs(client, args, "status", stderr)
	if handle == nil {
		return code
	}
	err := handle.FetchOnce(ctx)

	out := map[string]any{
		"statement_id": handle.ID().String(),
		"status":       statusString(handle.Status()),
	}
	if msg := handle.Message(); msg != "" {
		out["message"] = msg
	}
	if progress := handle.Progress(); progress != nil {
		out["progress_percentage"] = progress.TotalPercentage
	}
	printJSON(stdout, out)

	var failed *lakeline.StatementFailedError
	if err != nil && !errors.As(err, &failed) {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	return 0
}

func runQuery(ctx context.Context, client *lakeline.Client, args []string, execTimeout string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(stderr, "usage: lakectl query <statement>")
		return 2
	}
	stmt := client.Statement(args[0])
	stmt.ExecTimeout = execTimeout
	result, err := stmt.Execute(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	values, err := result.ToValues()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	columns := make([]string, len(result.Schema))
	for i, field := range result.Schema {
		columns[i] = field.Name
	}
	printJSON(stdout, map[string]any{
		"columns":    columns,
		"rows":       values,
		"total_rows": result.TotalRows,
	})
	return 0
}

func runCancel(ctx context.Context, client *lakeline.Client, args []string, stdout, stderr io.Writer) int {
	handle, code := handleFromArgs(client, args, "cancel", stderr)
	if handle == nil {
		return code
	}
	status, err := handle.Cancel(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	printJSON(stdout, map[string]any{
		"statement_id": handle.ID().String(),
		"status":       string(status),
	})
	return 0
}

func runIngest(ctx context.Context, client *lakeline.Client, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		_, _ = fmt.Fprintln(stderr, "usage: lakectl ingest <transform> < rows.jsonl")
		return 2
	}

	cable := client.Cable(args[0])
	rows := 0
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := cable.Append(ctx, json.RawMessage(line)); err != nil {
			_, _ = fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		_, _ = fmt.Fprintf(stderr, "read stdin: %v\n", err)
		return 1
	}
	if err := cable.Flush(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	printJSON(stdout, map[string]any{"rows": rows})
	return 0
}

func handleFromArgs(client *lakeline.Client, args []string, command string, stderr io.Writer) (*lakeline.StatementHandle, int) {
	if len(args) != 1 {
		_, _ = fmt.Fprintf(stderr, "usage: lakectl %s <statement-id>\n", command)
		return nil, 2
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "invalid statement ID %q: %v\n", args[0], err)
		return nil, 2
	}
	return client.StatementHandle(id), 0
}

func loadProfile(path string) (profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile{}, err
	}
	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return profile{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return p, nil
}

func printJSON(w io.Writer, payload any) {
	formatted, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(w, string(formatted))
}

func statusString(status *lakeline.StatementStatus) string {
	if status == nil {
		return "unknown"
	}
	return string(*status)
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: lakectl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health               check service health")
	_, _ = fmt.Fprintln(w, "  submit <statement>   submit a statement and print its ID")
	_, _ = fmt.Fprintln(w, "  status <id>          poll a statement once and print its status")
	_, _ = fmt.Fprintln(w, "  query <statement>    submit a statement and wait for its rows")
	_, _ = fmt.Fprintln(w, "  cancel <id>          cancel a pending or running statement")
	_, _ = fmt.Fprintln(w, "  ingest <transform>   ingest JSON lines from stdin")
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
