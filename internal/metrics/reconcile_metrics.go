package metrics

import "github.com/prometheus/client_golang/prometheus"

// Reconciliation metrics
var (
	SweepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_sweeps_total",
		Help:      "Total number of reconciliation sweeps by status",
	}, []string{"status"})

	SweepOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_outcomes_total",
		Help:      "Per-prediction reconciliation outcomes",
	}, []string{"outcome"})

	SweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "reconcile_sweep_duration_seconds",
		Help:      "Duration of reconciliation sweeps in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})

	PendingPredictions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconcile_eligible_predictions",
		Help:      "Number of pending predictions eligible in the last sweep",
	})
)

// RecordSweep records a completed sweep.
// status should be one of: "success", "failure"
func RecordSweep(status string, durationSeconds float64, eligible int) {
	SweepsTotal.WithLabelValues(status).Inc()
	SweepDuration.Observe(durationSeconds)
	PendingPredictions.Set(float64(eligible))
}

// RecordSweepOutcome records the outcome of reconciling one prediction.
// outcome should be one of: "won", "lost", "unmatched", "no_final_score",
// "ungradable", "already_graded", "failed"
func RecordSweepOutcome(outcome string) {
	SweepOutcomesTotal.WithLabelValues(outcome).Inc()
}
