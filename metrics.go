package lakeline

import "github.com/prometheus/client_golang/prometheus"

var (
	statementSubmitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeline_statement_submits_total",
			Help: "Total number of statement submissions.",
		},
	)

	statementPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeline_statement_polls_total",
			Help: "Total number of statement status polls.",
		},
	)

	statementCancelsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeline_statement_cancels_total",
			Help: "Total number of statement cancel requests.",
		},
	)

	requestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lakeline_request_duration_seconds",
			Help:    "HTTP request latency by operation and response status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "status"},
	)

	ingestFlushesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeline_ingest_flushes_total",
			Help: "Total number of cable buffer flushes sent to the service.",
		},
	)

	ingestRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeline_ingest_rows_total",
			Help: "Total number of rows flushed through cables.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		statementSubmitsTotal,
		statementPollsTotal,
		statementCancelsTotal,
		requestDurationSeconds,
		ingestFlushesTotal,
		ingestRowsTotal,
	)
}
