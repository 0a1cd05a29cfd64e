package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rating lifecycle metrics
var (
	// RatingRequestsTotal tracks rating request creations by outcome
	// (created, rate_limited, validation_failed, gateway_error)
	RatingRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_requests_total",
			Help: "Rating request triggers by outcome",
		},
		[]string{"outcome"},
	)

	// RatingSubmissionsTotal tracks rating submissions by outcome
	// (completed, not_found, already_completed, self_rating, invalid_score)
	RatingSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_submissions_total",
			Help: "Rating submission triggers by outcome",
		},
		[]string{"outcome"},
	)

	// PendingRequests tracks requests created but not yet completed
	PendingRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rating_pending_requests",
			Help: "Rating requests currently pending",
		},
	)

	// PickerRetractionFailures tracks best-effort picker deletions that failed
	PickerRetractionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_picker_retraction_failures_total",
			Help: "Star picker messages that could not be retracted after completion",
		},
	)
)

// Slack API metrics
var (
	// SlackAPIRequestsTotal tracks Slack Web API calls by method and status
	SlackAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slack_api_requests_total",
			Help: "Slack Web API calls by method and status",
		},
		[]string{"method", "status"},
	)

	// SlackAPIRequestDuration tracks Slack Web API latency in seconds
	SlackAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slack_api_request_duration_seconds",
			Help:    "Slack Web API call duration in seconds",
			Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)
)
