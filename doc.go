/*
Package lakeline is a client for the Lakeline analytical query service.

# Client

NewClient is the entry point:

	client, err := lakeline.NewClient(lakeline.Config{
		Endpoint: "http://localhost:6543",
		Token:    os.Getenv("LAKELINE_TOKEN"),
	})

# Query data

Create a statement and execute it to completion:

	result, err := client.Statement(`FROM events ORDER BY ts`).Execute(ctx)
	if err != nil {
		return err
	}
	rows, err := result.ToValues()

Execution is asynchronous on the service side. For finer control, Submit
returns a StatementHandle that can be polled with FetchOnce, driven to
completion with Fetch, or cancelled with Cancel.

# Write data

A Cable buffers rows and flushes them in batches:

	cable := client.Cable(`SELECT $0["ts"], $0["v"] INSERT INTO events (ts, v)`)
	if err := cable.Append(ctx, record); err != nil {
		return err
	}
	defer cable.Flush(ctx)

# database/sql

The package also registers a query-only database/sql driver under the name
"lakeline"; see Driver.
*/
package lakeline
