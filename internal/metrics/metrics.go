// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes.
const (
	OutcomeAdmitted = "admitted"
	OutcomeRejected = "rejected"
	OutcomeSkipped  = "skipped"
)

var (
	// ImportedRecords counts import candidates by file format and outcome.
	ImportedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "imported_records_total",
		Help:      "Import candidates by format and outcome.",
	}, []string{"format", "outcome"})

	// ImportFailures counts imports aborted by an unreadable file or a
	// storage error.
	ImportFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "import_failures_total",
		Help:      "Imports that aborted.",
	}, []string{"format"})

	// ExportedRecords counts exported contacts by format.
	ExportedRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactbook",
		Name:      "exported_records_total",
		Help:      "Exported contacts by format.",
	}, []string{"format"})

	// Contacts is the number of stored contacts after the last mutation.
	Contacts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "contactbook",
		Name:      "contacts",
		Help:      "Stored contacts.",
	})

	// RequestDuration observes HTTP handler latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contactbook",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern, method and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)
