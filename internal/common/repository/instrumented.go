package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portfolio",
			Subsystem: "db",
			Name:      "operation_duration_seconds",
			Help:      "Database operation duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"collection", "operation"},
	)

	dbOperationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "db",
			Name:      "operations_total",
			Help:      "Total database operations by result (success, miss, error)",
		},
		[]string{"collection", "operation", "result"},
	)

	dbOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portfolio",
			Subsystem: "db",
			Name:      "operation_errors_total",
			Help:      "Database operation errors by type",
		},
		[]string{"collection", "operation", "error_type"},
	)
)

// SlowQueryThreshold defines when a query is considered slow
const SlowQueryThreshold = 100 * time.Millisecond

// Instrument wraps a repository operation with metrics and logging.
// Expected misses (not found, failed conditional writes, duplicates) are
// counted as "miss" and logged at debug; everything else is an error.
func Instrument[T any](
	ctx context.Context,
	collection string,
	operation string,
	fn func() (T, error),
) (T, error) {
	start := time.Now()
	result, err := fn()
	duration := time.Since(start)

	dbOperationDuration.WithLabelValues(collection, operation).Observe(duration.Seconds())

	switch {
	case err == nil:
		dbOperationTotal.WithLabelValues(collection, operation, "success").Inc()
		if duration > SlowQueryThreshold {
			slog.WarnContext(ctx, "Slow database operation",
				"collection", collection,
				"operation", operation,
				"duration_ms", duration.Milliseconds())
		}
	case isExpectedMiss(err):
		dbOperationTotal.WithLabelValues(collection, operation, "miss").Inc()
		slog.DebugContext(ctx, "Database operation miss",
			"collection", collection,
			"operation", operation,
			"reason", classifyError(err))
	default:
		dbOperationTotal.WithLabelValues(collection, operation, "error").Inc()
		dbOperationErrors.WithLabelValues(collection, operation, classifyError(err)).Inc()
		slog.ErrorContext(ctx, "Database operation failed",
			"collection", collection,
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
			"error", err)
	}

	return result, err
}

// InstrumentVoid wraps a repository operation that returns only an error.
func InstrumentVoid(
	ctx context.Context,
	collection string,
	operation string,
	fn func() error,
) error {
	_, err := Instrument(ctx, collection, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func isExpectedMiss(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConditionFailed) ||
		errors.Is(err, ErrDuplicateKey)
}

// classifyError returns a label-safe error type for metrics
func classifyError(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, ErrConditionFailed):
		return "condition_failed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal"
	}
}
