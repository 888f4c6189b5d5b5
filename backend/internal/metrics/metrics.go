package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	AttendeesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphite_attendees_ingested_total",
		Help: "Attendee records processed by ingestion",
	}, []string{"outcome"})

	ConnectionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphite_connections_created_total",
		Help: "Acquaintance edges created by the auto-connection pass",
	})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphite_ingest_duration_seconds",
		Help:    "Time spent building the graph for one roster",
		Buckets: prometheus.DefBuckets,
	})

	// Ranking metrics
	Recommendations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphite_recommendations_total",
		Help: "Recommendations produced, by reason type",
	}, []string{"reason_type"})

	// Store metrics
	StoreUnavailable = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphite_store_unavailable_total",
		Help: "Requests that failed because the graph store was unreachable",
	}, []string{"route"})

	// Layout metrics
	LayoutSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphite_layout_sessions_active",
		Help: "Live layout sessions currently streaming frames",
	})

	LayoutFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphite_layout_frames_total",
		Help: "Layout frames simulated, by output",
	}, []string{"output"})

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphite_http_requests_total",
		Help: "HTTP requests served",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphite_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// Outcome labels for AttendeesIngested
const (
	OutcomeAdded   = "added"
	OutcomeSkipped = "skipped"
)

// Output labels for LayoutFrames
const (
	OutputWebsocket = "websocket"
	OutputSVG       = "svg"
)
