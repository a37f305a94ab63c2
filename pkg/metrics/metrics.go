// Package metrics exposes prometheus collectors for the sync and import
// subsystems. Collectors are registered with the default registry and served
// at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Syncs counts sync invocations per source type and outcome.
	// Labels: type (api/postgres/...), outcome (success/failure/rejected)
	Syncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_syncs_total",
			Help: "Total number of data source sync invocations",
		},
		[]string{"type", "outcome"},
	)

	// SyncDuration tracks end-to-end sync latency per source type.
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecochain_sync_duration_seconds",
			Help:    "End-to-end sync duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"type"},
	)

	// RecordsImported counts records persisted per import origin
	// (api/postgres/.../csv/json/manual).
	RecordsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_records_imported_total",
			Help: "Total number of emission records imported",
		},
		[]string{"origin"},
	)

	// RecordsRejected counts records that failed validation or normalization.
	RecordsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_records_rejected_total",
			Help: "Total number of emission records rejected during import",
		},
		[]string{"origin"},
	)

	// ConnectionTests counts connectivity tests per source type and result.
	ConnectionTests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecochain_connection_tests_total",
			Help: "Total number of data source connectivity tests",
		},
		[]string{"type", "result"},
	)
)
