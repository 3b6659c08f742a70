package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntitlementDecisions counts server-side entitlement checks by check
	// kind, result (allowed/denied/unavailable) and denial code.
	EntitlementDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "founder_coach",
		Name:      "entitlement_decisions_total",
		Help:      "Server-side entitlement decisions by check, result and code.",
	}, []string{"check", "result", "code"})

	// PlanCacheLookups counts plan resolver cache hits and misses.
	PlanCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "founder_coach",
		Name:      "plan_cache_lookups_total",
		Help:      "Plan cache lookups by result (hit/miss).",
	}, []string{"result"})

	// UsageCountErrors counts failed usage counts by table.
	UsageCountErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "founder_coach",
		Name:      "usage_count_errors_total",
		Help:      "Usage count queries that failed, by table.",
	}, []string{"table"})

	// WebhookEvents counts Stripe webhook events by type and outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "founder_coach",
		Name:      "webhook_events_total",
		Help:      "Stripe webhook events by event type and outcome.",
	}, []string{"event_type", "outcome"})

	// CompletionDuration tracks AI completion latency by operation.
	CompletionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "founder_coach",
		Name:      "completion_duration_seconds",
		Help:      "AI completion duration in seconds.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
	}, []string{"operation", "outcome"})
)
