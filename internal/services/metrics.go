package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketing_generation_total",
			Help: "Tool generation attempts by outcome status",
		},
		[]string{"tool", "status"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketing_generation_duration_seconds",
			Help:    "End-to-end tool generation latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"tool"},
	)

	generationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketing_generation_errors_total",
			Help: "Generation path failures by kind",
		},
		[]string{"kind"},
	)

	rateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketing_ratelimit_rejections_total",
			Help: "Calls rejected by a throughput limiter",
		},
		[]string{"scope"},
	)

	entitlementRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketing_entitlement_rejections_total",
			Help: "Calls rejected by the entitlement gate",
		},
		[]string{"reason"},
	)

	sectionPatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketing_generation_patched_sections_total",
			Help: "Missing model sections filled from the fallback payload",
		},
		[]string{"tool"},
	)

	sideEffectFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketing_side_effect_failures_total",
			Help: "Swallowed usage and notification failures",
		},
		[]string{"component"},
	)
)
