// Package metrics provides Prometheus metrics for the matchd service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	pairsScored    prometheus.Counter
	scoringLatency prometheus.Histogram
	scoringErrors  prometheus.Counter

	// Ranking
	rankingLatency  prometheus.Histogram
	belowThreshold  prometheus.Counter
	partialRankings prometheus.Counter

	// Recommendations and alerts
	recommendationsGenerated prometheus.Counter
	recommendationActions    *prometheus.CounterVec
	alertsGenerated          prometheus.Counter
	alertsDeduplicated       prometheus.Counter
	pendingRecommendations   prometheus.Gauge

	// Refresh pipeline
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueueError prometheus.Counter
	workerCount       prometheus.Gauge
	workerLatency     prometheus.Histogram
	workerErrors      prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global manager backed by a private registry so the exposition endpoint
// serves only service metrics.
var globalManager *Manager                     //nolint:gochecknoglobals // singleton metrics manager
var customRegistry = prometheus.NewRegistry()  //nolint:gochecknoglobals // singleton metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "matchd",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.pairsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairs_scored_total",
		Help:      "Total number of (user, task) pairs scored.",
	})
	m.scoringLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_ms",
		Help:      "Latency of a single pair scoring in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.scoringErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_errors_total",
		Help:      "Total number of scoring failures.",
	})

	m.rankingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_latency_ms",
		Help:      "Latency of a full ranking invocation in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.belowThreshold = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "below_threshold_total",
		Help:      "Total number of scored pairs dropped below the minimum score.",
	})
	m.partialRankings = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "partial_rankings_total",
		Help:      "Total number of ranking invocations cut short by the caller deadline.",
	})

	m.recommendationsGenerated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_generated_total",
		Help:      "Total number of recommendations generated.",
	})
	m.recommendationActions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_actions_total",
		Help:      "Recommendation lifecycle actions by kind.",
	}, []string{"action"})
	m.alertsGenerated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proximity_alerts_total",
		Help:      "Total number of proximity alerts generated.",
	})
	m.alertsDeduplicated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "proximity_alerts_deduplicated_total",
		Help:      "Total number of proximity alerts collapsed by content dedupe.",
	})
	m.pendingRecommendations = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_recommendations",
		Help:      "Current number of pending recommendations in the store.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current number of queued refresh jobs.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Configured capacity of the refresh job queue.",
	})
	m.queueEnqueueError = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueue_errors_total",
		Help:      "Total number of refresh jobs rejected at enqueue.",
	})
	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_workers",
		Help:      "Number of refresh workers.",
	})
	m.workerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_job_latency_ms",
		Help:      "Latency of a refresh job in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_job_errors_total",
		Help:      "Total number of failed refresh jobs.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request duration by endpoint, method and status.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// Package-level recorders operating on the global manager.

func RecordPairScored()                   { globalManager.pairsScored.Inc() }
func RecordScoringLatency(ms float64)     { globalManager.scoringLatency.Observe(ms) }
func RecordScoringError()                 { globalManager.scoringErrors.Inc() }
func RecordRankingLatency(ms float64)     { globalManager.rankingLatency.Observe(ms) }
func RecordBelowThreshold()               { globalManager.belowThreshold.Inc() }
func RecordPartialRanking()               { globalManager.partialRankings.Inc() }
func RecordRecommendationGenerated()      { globalManager.recommendationsGenerated.Inc() }
func RecordAlertGenerated()               { globalManager.alertsGenerated.Inc() }
func RecordAlertDeduplicated()            { globalManager.alertsDeduplicated.Inc() }
func UpdatePendingRecommendations(n int)  { globalManager.pendingRecommendations.Set(float64(n)) }
func UpdateQueueSize(n int)               { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)           { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueEnqueueError()            { globalManager.queueEnqueueError.Inc() }
func UpdateWorkerCount(n int)             { globalManager.workerCount.Set(float64(n)) }
func RecordWorkerLatency(ms float64)      { globalManager.workerLatency.Observe(ms) }
func RecordWorkerError()                  { globalManager.workerErrors.Inc() }

// RecordRecommendationAction counts a lifecycle action: view, accept, dismiss.
func RecordRecommendationAction(action string) {
	globalManager.recommendationActions.WithLabelValues(action).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// GetRegistry returns the private registry for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
