// ================================
// internal/metrics/metrics.go - Self-monitoring for ANBD-CORE
// ================================

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anbd_core_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Detection pipeline metrics
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_detections_total",
			Help: "Total number of anomaly detections by verdict",
		},
		[]string{"verdict"}, // anomalous / normal / model_not_ready
	)

	ReconstructionError = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "anbd_core_reconstruction_error",
			Help:    "Reconstruction error distribution across detections",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)

	PreprocessFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anbd_core_preprocess_failures_total",
			Help: "Preprocessing failures degraded to zero vectors",
		},
	)

	// RCA metrics
	RCAPathResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_rca_path_results_total",
			Help: "RCA path outcomes by path and category",
		},
		[]string{"path", "category"}, // rca_type1/rca_type2, category or "error"
	)

	ProbeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "anbd_core_probe_duration_seconds",
			Help:    "Diagnostic probe execution duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	// Remediation metrics
	PlaybookExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_playbook_executions_total",
			Help: "Playbook executions by type and outcome",
		},
		[]string{"response_type", "status"}, // type1/type2, success/failure
	)

	// Store metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_store_operations_total",
			Help: "Event/response store operations",
		},
		[]string{"operation", "result"}, // get/set, hit/miss/error/success
	)

	// WebSocket metrics
	ActiveWebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "anbd_core_websocket_connections",
			Help: "Currently connected websocket clients",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_notifications_sent_total",
			Help: "Real-time notifications broadcast by channel",
		},
		[]string{"channel"},
	)

	// Ingest metrics
	FlowsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "anbd_core_flows_ingested_total",
			Help: "Flow records ingested from CSV files",
		},
		[]string{"status"}, // processed / failed
	)
)
