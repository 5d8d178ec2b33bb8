// ABOUTME: Prometheus metrics for workout repository operations.
// ABOUTME: Registered on the default registry and served by `gymlog mcp --metrics-addr`.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation outcomes used as the result label.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymlog",
		Subsystem: "repository",
		Name:      "operations_total",
		Help:      "Workout repository operations by name and result.",
	}, []string{"op", "result"})
	operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gymlog",
		Subsystem: "repository",
		Name:      "operation_duration_seconds",
		Help:      "Latency of workout repository operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	lastWorkoutGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymlog",
		Subsystem: "repository",
		Name:      "last_workout_created_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout created.",
	})
)

func init() {
	prometheus.MustRegister(operationsTotal, operationDuration, lastWorkoutGauge)
}

// ObserveOperation records one repository call.
func ObserveOperation(op, result string, elapsed time.Duration) {
	operationsTotal.WithLabelValues(op, result).Inc()
	operationDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// RecordWorkoutCreated updates the creation watermark gauge.
func RecordWorkoutCreated(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastWorkoutGauge.Set(float64(ts.Unix()))
}
