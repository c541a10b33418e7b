// Package metrics provides the centralized Prometheus registry for puckline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "puckline"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsStoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_stored_total",
		Help:      "Total number of value bets persisted by league and bet type",
	}, []string{"league", "bet_type"})
	PredictionsDuplicateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_duplicate_total",
		Help:      "Total number of value bets skipped because the key already existed",
	})
	FixturesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixtures_skipped_total",
		Help:      "Total number of fixtures that produced no prediction, by reason",
	}, []string{"reason"})
	FeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_requests_total",
		Help:      "Total number of upstream results feed requests by league and status",
	}, []string{"league", "status"})
	StatsCacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_lookups_total",
		Help:      "Team statistics cache lookups by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	StatsCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stats_cache_entries",
		Help:      "Current number of cached team statistics",
	})
	LastSyncTimestamp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_sync_timestamp_seconds",
		Help:      "Unix time of the last successful game sync per league",
	}, []string{"league"})
)

// Histogram metrics
var (
	GenerateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generate_duration_seconds",
		Help:      "Duration of value bet generation runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
	FeedRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "feed_request_latency_seconds",
		Help:      "Latency of upstream results feed requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"league"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsStoredTotal)
		registry.MustRegister(PredictionsDuplicateTotal)
		registry.MustRegister(FixturesSkippedTotal)
		registry.MustRegister(FeedRequestsTotal)
		registry.MustRegister(StatsCacheLookupsTotal)

		registry.MustRegister(StatsCacheEntries)
		registry.MustRegister(LastSyncTimestamp)

		registry.MustRegister(GenerateDuration)
		registry.MustRegister(FeedRequestLatency)

		// Register reconciliation metrics
		registry.MustRegister(SweepsTotal)
		registry.MustRegister(SweepOutcomesTotal)
		registry.MustRegister(SweepDuration)
		registry.MustRegister(PendingPredictions)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionStored records a persisted value bet.
func RecordPredictionStored(league, betType string) {
	PredictionsStoredTotal.WithLabelValues(league, betType).Inc()
}

// RecordPredictionDuplicate records a candidate dropped by the uniqueness key.
func RecordPredictionDuplicate() {
	PredictionsDuplicateTotal.Inc()
}

// RecordFixtureSkipped records a fixture that produced no prediction.
// reason should be one of: "insufficient_history", "no_value", "stats_error", "store_error"
func RecordFixtureSkipped(reason string) {
	FixturesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordFeedRequest records one upstream request and its latency.
func RecordFeedRequest(league, status string, durationSeconds float64) {
	FeedRequestsTotal.WithLabelValues(league, status).Inc()
	FeedRequestLatency.WithLabelValues(league).Observe(durationSeconds)
}

// RecordCacheLookup records a stats cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		StatsCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	StatsCacheLookupsTotal.WithLabelValues("miss").Inc()
}

// UpdateCacheEntries updates the cache size gauge.
func UpdateCacheEntries(count int) {
	StatsCacheEntries.Set(float64(count))
}

// RecordSync records a successful sync for a league at the given unix time.
func RecordSync(league string, unix int64) {
	LastSyncTimestamp.WithLabelValues(league).Set(float64(unix))
}

// RecordGenerateDuration records value bet generation duration.
func RecordGenerateDuration(durationSeconds float64) {
	GenerateDuration.Observe(durationSeconds)
}
