package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetRecords tracks how many records each dataset ended up with
	// after the startup load.
	DatasetRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "atlas_dataset_records",
			Help: "Number of records loaded into a dataset at startup",
		},
		[]string{"dataset"},
	)

	// DatasetLoadFailures counts sources that degraded to an empty dataset.
	DatasetLoadFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_dataset_load_failures_total",
			Help: "Number of dataset sources that failed to load and were served empty",
		},
		[]string{"dataset"},
	)
)

var (
	ProximityQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_proximity_queries_total",
			Help: "Number of proximity queries served, by kind (near or exact)",
		},
		[]string{"kind"},
	)

	ProximityQueryResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_proximity_query_results",
			Help:    "Number of records returned per proximity query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"kind"},
	)

	ProximityQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_proximity_query_duration_seconds",
			Help:    "Time spent scanning the dataset per proximity query",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// QueriesOutsideCoverage counts proximity queries whose origin falls
	// outside the bounding box of every loaded flat dataset. Such queries
	// are valid and served normally; the counter surfaces origins the
	// data cannot answer well.
	QueriesOutsideCoverage = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_queries_outside_coverage_total",
			Help: "Number of proximity queries originating outside every dataset bounding box",
		},
		[]string{"kind"},
	)

	InvalidParameters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "atlas_invalid_parameters_total",
			Help: "Number of requests rejected for a missing or malformed query parameter",
		},
		[]string{"endpoint"},
	)
)

var (
	// OutgoingLatency observes the latency of outbound HTTP requests made
	// while fetching remote manifests and datasets.
	OutgoingLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "atlas_outgoing_request_latency_seconds",
			Help:    "Latency of outgoing HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"url", "method", "status"},
	)
)
