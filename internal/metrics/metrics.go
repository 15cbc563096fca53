package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP traffic, labelled by route template rather than raw path
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "practice_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// outcome: llm/fallback
	PracticesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_generated_total",
			Help: "Total number of practices generated",
		},
		[]string{"type", "outcome"},
	)

	// outcome: correct/incorrect/unevaluated
	PracticesSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_submitted_total",
			Help: "Total number of answers submitted",
		},
		[]string{"type", "outcome"},
	)

	ProgressConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_progress_version_conflicts_total",
			Help: "Optimistic concurrency conflicts while writing user progress",
		},
	)

	AdjustmentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_adjustment_transitions_total",
			Help: "Adjustment mode entries and completions",
		},
		[]string{"transition"},
	)

	StalePracticesPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_stale_purged_total",
			Help: "Open practices removed by the janitor",
		},
	)

	FeedbackRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_feedback_rate_limited_total",
			Help: "Feedback submissions rejected by the rate limiter",
		},
	)
)
