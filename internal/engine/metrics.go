package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "moderation_pipeline_duration_sec",
	Help: "Total duration of one decision pipeline evaluation",
})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_decisions_total",
	Help: "Number of pipeline decisions by resulting status",
}, []string{"status"})

var ruleHitCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "moderation_rule_hits_total",
	Help: "Number of auto-executed policy rule matches",
}, []string{"rule"})

var scorerDegradedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_scorer_degraded_total",
	Help: "Number of evaluations where the scoring provider failed or timed out",
})

var duplicateHitCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_duplicate_hits_total",
	Help: "Number of duplicate-content violations raised",
})

var velocityHitCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "moderation_velocity_hits_total",
	Help: "Number of submission-velocity violations raised",
})
