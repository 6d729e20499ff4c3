// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	ScreeningDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_decisions_total",
			Help: "Screening decisions written, by status and reason",
		},
		[]string{"status", "reason"},
	)

	ScreeningSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "screening_skipped_total",
			Help: "Screenings whose application was already decided",
		},
	)

	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "screening_scoring_duration_seconds",
			Help:    "Time spent fetching and scoring a resume",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"outcome"},
	)

	OutboxClaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_outbox_claimed_total",
			Help: "Work items claimed by a dispatch backend",
		},
		[]string{"backend"},
	)

	OutboxReleased = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_outbox_released_total",
			Help: "Work items returned to pending after a failed hand-off",
		},
		[]string{"backend"},
	)

	SweeperActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_sweeper_actions_total",
			Help: "Stale screenings requeued or force-rejected",
		},
		[]string{"action"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Decision notifications by channel and result",
		},
		[]string{"channel", "result"},
	)
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
