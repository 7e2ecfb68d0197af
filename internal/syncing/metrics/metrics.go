// Package metrics exposes Prometheus metrics for the sync pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncsTotal tracks sync attempts per stream and outcome.
	SyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonkit_syncs_total",
			Help: "Total number of sync attempts",
		},
		[]string{"stream", "result"},
	)

	// PagesMerged tracks merged event pages per sync phase.
	PagesMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonkit_pages_merged_total",
			Help: "Total number of event pages merged",
		},
		[]string{"phase"},
	)

	// EventsMerged tracks persisted events.
	EventsMerged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tonkit_events_merged_total",
			Help: "Total number of events persisted",
		},
	)

	// APIRequestsTotal tracks provider API calls per method.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tonkit_api_requests_total",
			Help: "Total number of provider API requests",
		},
		[]string{"method", "status"},
	)

	// APILatency tracks provider API call latency.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tonkit_api_latency_seconds",
			Help:    "Provider API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// StreamReconnects tracks SSE stream reconnect attempts.
	StreamReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tonkit_stream_reconnects_total",
			Help: "Total number of stream reconnect attempts",
		},
	)
)
