package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks paginated fetches per list kind.
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerview_pages_fetched_total",
			Help: "Total number of pages fetched from the indexer API",
		},
		[]string{"list"},
	)

	// FetchErrors tracks failed fetches per list kind.
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerview_fetch_errors_total",
			Help: "Total number of failed indexer API fetches",
		},
		[]string{"list"},
	)

	// FetchLatency tracks indexer API latency.
	FetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledgerview_fetch_latency_seconds",
			Help:    "Indexer API fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"list"},
	)

	// StreamEvents tracks push-feed messages by type.
	StreamEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerview_stream_events_total",
			Help: "Total number of push-feed messages received",
		},
		[]string{"type"},
	)

	// StreamDropped tracks malformed or unroutable push messages.
	StreamDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledgerview_stream_dropped_total",
			Help: "Total number of push-feed messages dropped",
		},
	)

	// StreamConnected reports whether the push feed is currently connected.
	StreamConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledgerview_stream_connected",
			Help: "Whether the push-feed subscription is connected (1) or not (0)",
		},
	)

	// StaleResults tracks fetch results discarded because their page or
	// query was superseded before they arrived.
	StaleResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledgerview_stale_results_total",
			Help: "Total number of fetch results discarded as stale",
		},
		[]string{"list"},
	)

	// FeedSize reports the current merged list length per list kind.
	FeedSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledgerview_feed_size",
			Help: "Current number of records held in the merged list",
		},
		[]string{"list"},
	)

	// IndexRate reports the smoothed indexing rate per direction.
	IndexRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledgerview_index_rate_blocks_per_second",
			Help: "Smoothed indexing rate in blocks per second",
		},
		[]string{"direction"},
	)

	// CoveragePercent reports the fraction of fully indexed chunks.
	CoveragePercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledgerview_coverage_percent",
			Help: "Percentage of height chunks fully indexed",
		},
	)
)
