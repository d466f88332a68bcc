package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "qcb_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"path", "method", "status"},
	)

	// ActiveConnections tracks in-flight requests
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qcb_active_connections",
			Help: "Number of active connections",
		},
	)

	// DegradedMode is 1 while a backing service is unreachable
	DegradedMode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "qcb_degraded_mode",
			Help: "Whether the service is running in degraded mode",
		},
	)

	// CacheHits tracks cache hits by operation
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_cache_hits_total",
			Help: "Number of cache hits",
		},
		[]string{"operation"},
	)

	// DatabaseOperations tracks database operations
	DatabaseOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_database_operations_total",
			Help: "Number of database operations",
		},
		[]string{"operation", "status"},
	)

	// ApplicationSaves tracks save attempts by kind and outcome
	ApplicationSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_application_saves_total",
			Help: "Number of application save attempts",
		},
		[]string{"kind", "outcome"},
	)

	// ValidationFailures tracks validation errors per tab and depth
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_validation_failures_total",
			Help: "Number of validation errors by tab",
		},
		[]string{"depth", "tab"},
	)

	// StatusTransitions tracks applied status transitions
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_status_transitions_total",
			Help: "Number of application status transitions",
		},
		[]string{"from", "to", "trigger"},
	)

	// DocumentUploads tracks uploads by document type and outcome
	DocumentUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_document_uploads_total",
			Help: "Number of document uploads",
		},
		[]string{"type", "outcome"},
	)

	// DocumentGenerationDuration tracks printable document rendering time
	DocumentGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qcb_document_generation_duration_seconds",
			Help:    "Duration of printable application document generation",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SignatureLookups tracks signature resolution results
	SignatureLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qcb_signature_lookups_total",
			Help: "Number of signature image lookups",
		},
		[]string{"result"},
	)
)
