// Package metrics holds the Prometheus collectors of the ledger service.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"construction-sales-ledger/internal/domain"
)

const namespace = "sales_ledger"

var RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "grpc",
	Name:      "requests_total",
	Help:      "gRPC requests by method and outcome.",
}, []string{"method", "outcome"})

var RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "grpc",
	Name:      "latency_seconds",
	Help:      "gRPC handler latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method"})

var SweepAffected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "sweep",
	Name:      "records_total",
	Help:      "Records changed by scheduled sweeps.",
}, []string{"job"})

var JobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "jobs",
	Name:      "runs_total",
	Help:      "Scheduled job runs by outcome.",
}, []string{"job", "outcome"})

var AuditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "audit",
	Name:      "queue_depth",
	Help:      "Audit entries waiting to be written.",
})

var AuditDropped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "audit",
	Name:      "dropped_total",
	Help:      "Audit entries that were not persisted.",
}, []string{"reason"})

var AuditWritten = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "audit",
	Name:      "written_total",
	Help:      "Audit entries persisted.",
})

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientPending):
		return "rejected"
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidMilestoneSplit):
		return "invalid"
	}
	return "error"
}

// ObserveRPC records one handled call.
func ObserveRPC(method string, started time.Time, err error) {
	RPCRequests.WithLabelValues(method, Outcome(err)).Inc()
	RPCLatency.WithLabelValues(method).Observe(time.Since(started).Seconds())
}
