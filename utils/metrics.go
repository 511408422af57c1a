package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "collection"},
	)

	// Materialization Metrics
	MaterializationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occurrence_materializations_total",
			Help: "Occurrence upserts by outcome",
		},
		[]string{"outcome"}, // created, existing, raced
	)

	// Ledger Metrics
	LedgerUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "occurrence_ledger_updates_total",
			Help: "Occurrence counter updates by result",
		},
		[]string{"result"}, // applied, increment_failed, status_failed
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type", "reason"},
	)
)

// TrackDBOperation tracks database operation duration
func TrackDBOperation(operation, collection string) *prometheus.Timer {
	return prometheus.NewTimer(DBOperationDuration.WithLabelValues(operation, collection))
}

func TrackMaterialization(outcome string) {
	MaterializationsTotal.WithLabelValues(outcome).Inc()
}

func TrackLedgerUpdate(result string) {
	LedgerUpdatesTotal.WithLabelValues(result).Inc()
}

// TrackError increments the error counter by type
func TrackError(errorType, reason string) {
	ErrorsTotal.WithLabelValues(errorType, reason).Inc()
}
