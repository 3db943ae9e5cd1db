// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed metrics track fetch volume and failures per source.
var (
	// FeedItemsFetchedTotal counts raw items retrieved from each feed
	FeedItemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_fetched_total",
			Help: "Total number of raw items retrieved from feeds",
		},
		[]string{"source"},
	)

	// FeedFetchErrorsTotal counts fetch or parse failures by source and reason
	FeedFetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_errors_total",
			Help: "Total number of feed fetch failures",
		},
		[]string{"source", "reason"},
	)

	// FeedFetchDuration measures the wall-clock time of one feed retrieval
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Feed fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
)

// Digest metrics track the aggregation pass and delivery.
var (
	// DigestBuildDuration measures end-to-end digest assembly time
	DigestBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_build_duration_seconds",
			Help:    "Digest build duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DigestItemsTotal counts items by filter outcome during aggregation
	DigestItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_items_total",
			Help: "Total number of items processed during aggregation, by outcome",
		},
		[]string{"outcome"},
	)

	// DigestsSentTotal counts digest deliveries by status
	DigestsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digests_sent_total",
			Help: "Total number of digest emails sent",
		},
		[]string{"status"},
	)
)
