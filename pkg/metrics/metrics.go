package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Global metrics, registered on the default registry through promauto.

var (
	// HTTP

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Pipeline

	GraphsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kektorgraph_graphs_parsed_total",
			Help: "Graphs read from graph database files",
		},
		[]string{"stage"}, // identify, convert, dedup, index, query
	)

	DuplicatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kektorgraph_duplicates_dropped_total",
			Help: "Graphs dropped by signature deduplication",
		},
	)

	FeaturesPerGraph = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_features_per_graph",
			Help:    "Number of dictionary features set per encoded graph",
			Buckets: prometheus.ExponentialBuckets(4, 2, 10),
		},
	)

	EncodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_encode_duration_seconds",
			Help:    "Time spent encoding a batch of graphs into feature vectors",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesPerQuery = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_candidates_per_query",
			Help:    "Number of candidate database graphs returned per query",
			Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	MatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kektorgraph_match_duration_seconds",
			Help:    "Time spent matching a batch of query vectors",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Index state

	IndexGraphs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kektorgraph_index_graphs",
			Help: "Database graphs held by the serving index",
		},
	)

	DictionarySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kektorgraph_dictionary_features",
			Help: "Number of features in the serving dictionary",
		},
	)
)
