package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_api_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// StoreQueryLatency records document store latency by backend, operation and collection.
	StoreQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphql_api_store_latency_seconds",
		Help:    "Document store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation", "collection"})

	// OperationsTotal counts domain operations by name and outcome code.
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_api_operations_total",
		Help: "Total domain operations by name and outcome",
	}, []string{"operation", "outcome"})

	// CascadeChildrenDeleted counts comments and likes removed by post deletion.
	CascadeChildrenDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_api_cascade_children_deleted_total",
		Help: "Children removed while deleting posts",
	}, []string{"kind"})

	// RegistrationCompensations counts identity rollbacks by result.
	RegistrationCompensations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_api_registration_compensations_total",
		Help: "Identity account deletions issued after a failed registration",
	}, []string{"result"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_api_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})
)

// StoreMetrics records latency for one store backend.
type StoreMetrics struct {
	backend string
}

// NewStoreMetrics returns a StoreMetrics labelled with the backend name.
func NewStoreMetrics(backend string) *StoreMetrics {
	return &StoreMetrics{backend: backend}
}

// ObserveQuery records the latency of a store call.
func (m *StoreMetrics) ObserveQuery(operation, collection string, start time.Time) {
	StoreQueryLatency.WithLabelValues(m.backend, operation, collection).Observe(time.Since(start).Seconds())
}

// TrackQuery starts a store span and returns a function that ends it and
// records query latency when called (e.g. defer).
func (m *StoreMetrics) TrackQuery(ctx context.Context, operation, collection string) func() {
	_, span := GetTraceLayer().TraceStoreMethod(ctx, m.backend, operation, collection)
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, collection, start)
		span.End()
	}
}

// RecordOperation increments the operation counter. An empty code means success.
func RecordOperation(operation, code string) {
	outcome := code
	if outcome == "" {
		outcome = "ok"
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
