// Package metrics provides Prometheus metrics for the fulfillment service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the fulfillment service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Conversation metrics
	turns             *prometheus.CounterVec
	turnDuration      *prometheus.HistogramVec
	contextResolution *prometheus.CounterVec
	contextsCreated   *prometheus.CounterVec
	replayHits        prometheus.Counter
	replayEvictions   prometheus.Counter
	replaySize        prometheus.Gauge

	// Store metrics
	lookupLatency *prometheus.HistogramVec
	lookups       *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
	documents     *prometheus.GaugeVec
	fanoutSize    prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	rateLimited         prometheus.Counter

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fulfillment",
		subsystem:        "webhook",
		histogramBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of metric definitions
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.turns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "turns_total",
		Help:        "Conversational turns answered, by intent and outcome",
		ConstLabels: labels,
	}, []string{"intent", "outcome"})

	m.turnDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "turn_duration_milliseconds",
		Help:        "Time to produce a reply for one turn, in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"intent"})

	m.contextResolution = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "subject_resolution_total",
		Help:        "How the subject of a turn was determined (explicit, context, none)",
		ConstLabels: labels,
	}, []string{"source"})

	m.contextsCreated = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "contexts_established_total",
		Help:        "Output contexts established for follow-up turns",
		ConstLabels: labels,
	}, []string{"context"})

	m.replayHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_hits_total",
		Help:        "Redelivered turns answered from the replay cache",
		ConstLabels: labels,
	})

	m.replayEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_evictions_total",
		Help:        "Replies dropped from the replay cache to stay within its bound",
		ConstLabels: labels,
	})

	m.replaySize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "replay_cache_entries",
		Help:        "Entries currently held by the replay cache",
		ConstLabels: labels,
	})

	m.lookupLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "lookup_latency_milliseconds",
		Help:        "Entity lookup latency in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"collection", "mode"})

	m.lookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "lookups_total",
		Help:        "Entity lookups by collection and result (found, not_found, error)",
		ConstLabels: labels,
	}, []string{"collection", "result"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "errors_total",
		Help:        "Document store failures by operation",
		ConstLabels: labels,
	}, []string{"operation"})

	m.documents = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "documents",
		Help:        "Documents per collection",
		ConstLabels: labels,
	}, []string{"collection"})

	m.fanoutSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "store",
		Name:        "fanout_size",
		Help:        "Concurrent participant lookups issued per compound turn",
		Buckets:     []float64{1, 2, 3, 4, 6, 8, 16},
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "errors_total",
		Help:        "HTTP error responses by endpoint and error type",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "error_type"})

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "http",
		Name:        "rate_limited_total",
		Help:        "Webhook deliveries rejected by the rate limiter",
		ConstLabels: labels,
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_bytes",
		Help:        "Allocated heap bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Current number of goroutines",
		ConstLabels: labels,
	})
}

// Enabled reports whether recording is active for this manager.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often callers should refresh gauges.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// Global convenience functions. Every helper is a no-op when metrics are disabled.

// RecordTurn counts one answered turn.
func RecordTurn(intent, outcome string) {
	if globalManager.enabled {
		globalManager.turns.WithLabelValues(intent, outcome).Inc()
	}
}

// RecordTurnDuration observes the time spent answering a turn.
func RecordTurnDuration(intent string, durationMs float64) {
	if globalManager.enabled {
		globalManager.turnDuration.WithLabelValues(intent).Observe(durationMs)
	}
}

// RecordSubjectResolution counts how a subject was determined.
func RecordSubjectResolution(source string) {
	if globalManager.enabled {
		globalManager.contextResolution.WithLabelValues(source).Inc()
	}
}

// RecordContextEstablished counts an output context handed back to the platform.
func RecordContextEstablished(name string) {
	if globalManager.enabled {
		globalManager.contextsCreated.WithLabelValues(name).Inc()
	}
}

// RecordReplayHit counts a redelivered turn served from the replay cache.
func RecordReplayHit() {
	if globalManager.enabled {
		globalManager.replayHits.Inc()
	}
}

// RecordReplayEviction counts a reply evicted from the replay cache.
func RecordReplayEviction() {
	if globalManager.enabled {
		globalManager.replayEvictions.Inc()
	}
}

// UpdateReplaySize sets the replay cache size gauge.
func UpdateReplaySize(size int) {
	if globalManager.enabled {
		globalManager.replaySize.Set(float64(size))
	}
}

// RecordLookup records the result and latency of one entity lookup.
func RecordLookup(collection, mode, result string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.lookups.WithLabelValues(collection, result).Inc()
		globalManager.lookupLatency.WithLabelValues(collection, mode).Observe(latencyMs)
	}
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(operation string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(operation).Inc()
	}
}

// UpdateDocumentCount sets the number of documents held in a collection.
func UpdateDocumentCount(collection string, count int) {
	if globalManager.enabled {
		globalManager.documents.WithLabelValues(collection).Set(float64(count))
	}
}

// RecordFanout observes how many participant lookups were issued together.
func RecordFanout(n int) {
	if globalManager.enabled {
		globalManager.fanoutSize.Observe(float64(n))
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByEndpoint counts an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordRateLimited counts a throttled webhook delivery.
func RecordRateLimited() {
	if globalManager.enabled {
		globalManager.rateLimited.Inc()
	}
}

// UpdateSystemMemoryUsage sets the heap allocation gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it once at start-up, before metrics are recorded or served.
func Configure(opts ...Option) *Manager {
	customRegistry = prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(customRegistry))...)
	return globalManager
}

// Global returns the manager used by the package-level helpers.
func Global() *Manager {
	return globalManager
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// TurnTotals sums answered turns by outcome from the global registry.
func TurnTotals() (map[string]float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGather, err)
	}
	name := prometheus.BuildFQName(globalManager.namespace, globalManager.subsystem, "turns_total")
	totals := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "outcome" {
					totals[lp.GetValue()] += metric.GetCounter().GetValue()
				}
			}
		}
	}
	return totals, nil
}
