package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus instrumentation for the engine.
type Metrics struct {
	policyEvaluations  *prometheus.CounterVec
	featureEvaluations *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
}

// NewMetrics creates the engine's Prometheus collectors and registers them
// with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		policyEvaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verdict_policy_evaluations_total",
				Help: "Total number of policy evaluations",
			},
			[]string{"policy", "outcome"},
		),

		featureEvaluations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "verdict_feature_evaluations_total",
				Help: "Total number of feature toggle evaluations",
			},
			[]string{"feature", "reason"},
		),

		evaluationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "verdict_evaluation_duration_seconds",
				Help:    "Evaluation latency by kind",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"kind"},
		),
	}
}

func (e *Engine) observePolicy(verdict *Verdict) {
	if e.metrics == nil {
		return
	}
	outcome := "no_match"
	if verdict.Triggered {
		outcome = "triggered"
	}
	e.metrics.policyEvaluations.WithLabelValues(verdict.PolicyID, outcome).Inc()
	e.metrics.evaluationDuration.WithLabelValues("policy").Observe(verdict.EvaluationTimeMs / 1000)
}

func (e *Engine) observeFeature(decision *FeatureDecision) {
	if e.metrics == nil {
		return
	}
	e.metrics.featureEvaluations.WithLabelValues(decision.FeatureKey, decision.Reason).Inc()
	e.metrics.evaluationDuration.WithLabelValues("feature").Observe(decision.EvaluationTimeMs / 1000)
}
