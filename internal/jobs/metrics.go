package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the adaptive engine
type Metrics struct {
	SweepsTotal              *prometheus.CounterVec // kind, result
	SweepDuration            *prometheus.HistogramVec
	UsersProcessed           *prometheus.CounterVec
	UserErrors               *prometheus.CounterVec
	RulesTriggered           *prometheus.CounterVec
	RecommendationsGenerated prometheus.Counter
	RetentionDeleted         *prometheus.CounterVec // action: recommendations|analytics
}

// InitMetrics registers the engine metrics with the default registry.
// Call once from the composition root.
func InitMetrics() *Metrics {
	return &Metrics{
		SweepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_adaptive_sweeps_total",
			Help: "Total number of adaptive sweeps by kind and result",
		}, []string{"kind", "result"}),

		SweepDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mentora_adaptive_sweep_duration_seconds",
			Help:    "Adaptive sweep duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900}, // daily sweeps iterate every user
		}, []string{"kind"}),

		UsersProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_adaptive_users_processed_total",
			Help: "Users successfully processed per sweep kind",
		}, []string{"kind"}),

		UserErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_adaptive_user_errors_total",
			Help: "Per-user failures isolated during sweeps",
		}, []string{"kind"}),

		RulesTriggered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_adaptive_rules_triggered_total",
			Help: "Adaptation rule firings by rule name",
		}, []string{"rule"}),

		RecommendationsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mentora_adaptive_recommendations_generated_total",
			Help: "Recommendations generated by the insight step",
		}),

		RetentionDeleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentora_adaptive_retention_deleted_total",
			Help: "Documents removed by retention cleanup by action",
		}, []string{"action"}),
	}
}
