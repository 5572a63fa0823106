// Package metrics exposes Prometheus collectors for the API and workers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "footycollect"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	ItemsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_created_total",
		Help:      "Items created by item type.",
	}, []string{"item_type"})

	ItemsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "items_deleted_total",
		Help:      "Items deleted.",
	})

	PhotosStored = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_stored_total",
		Help:      "Photo records created.",
	})

	JobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_enqueued_total",
		Help:      "Background jobs enqueued by type and outcome.",
	}, []string{"type", "outcome"})

	JobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_processed_total",
		Help:      "Background jobs processed by type and outcome.",
	}, []string{"type", "outcome"})

	FKAPIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fkapi_lookups_total",
		Help:      "Kit archive lookups by operation and outcome.",
	}, []string{"operation", "outcome"})
)

// Outcome maps an error to the "outcome" label value.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
