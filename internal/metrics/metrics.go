// Package metrics provides Prometheus metrics for the planner service and its worker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Prioritizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_prioritizations_total",
			Help: "Total number of prioritization runs by score source",
		},
		[]string{"source"},
	)
	PrioritizedTasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_prioritized_tasks_total",
			Help: "Total number of tasks scored by score source",
		},
		[]string{"source"},
	)
	PrioritizationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planwise_prioritization_duration_seconds",
			Help:    "Prioritization run duration in seconds",
			Buckets: []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"source"},
	)
	ParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_priority_parse_failures_total",
			Help: "Total number of model priority responses that could not be used",
		},
		[]string{"reason"},
	)
	RecipesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_recipes_extracted_total",
			Help: "Total number of recipes extracted from model output",
		},
		[]string{"degraded"},
	)
	TripPlans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_trip_plans_total",
			Help: "Total number of trip plan requests by outcome",
		},
		[]string{"outcome"},
	)
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_jobs_enqueued_total",
			Help: "Total number of background jobs enqueued",
		},
		[]string{"type"},
	)
	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_jobs_completed_total",
			Help: "Total number of background jobs completed successfully",
		},
		[]string{"type"},
	)
	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_jobs_failed_total",
			Help: "Total number of background jobs that failed permanently",
		},
		[]string{"type"},
	)
	JobsRetried = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_jobs_retried_total",
			Help: "Total number of background job retries",
		},
		[]string{"type"},
	)
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planwise_job_duration_seconds",
			Help:    "Background job execution duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"type", "status"},
	)
	StoredTasks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "planwise_stored_tasks",
			Help: "Current number of stored tasks by status",
		},
		[]string{"status"},
	)
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planwise_job_queue_depth",
			Help: "Current depth of the background job queue",
		},
	)
	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "planwise_workers_active",
			Help: "Number of currently active workers",
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "planwise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "planwise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordPrioritization(source string, tasks int, duration time.Duration) {
	Prioritizations.WithLabelValues(source).Inc()
	PrioritizedTasks.WithLabelValues(source).Add(float64(tasks))
	PrioritizationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func RecordParseFailure(reason string) {
	ParseFailures.WithLabelValues(reason).Inc()
}

func RecordRecipeExtracted(degraded bool) {
	RecipesExtracted.WithLabelValues(strconv.FormatBool(degraded)).Inc()
}

func RecordTripPlan(outcome string) {
	TripPlans.WithLabelValues(outcome).Inc()
}

func RecordJobEnqueued(jobType string) {
	JobsEnqueued.WithLabelValues(jobType).Inc()
}

func RecordJobCompleted(jobType string, duration time.Duration) {
	JobsCompleted.WithLabelValues(jobType).Inc()
	JobDuration.WithLabelValues(jobType, "completed").Observe(duration.Seconds())
}

func RecordJobFailed(jobType string, duration time.Duration) {
	JobsFailed.WithLabelValues(jobType).Inc()
	JobDuration.WithLabelValues(jobType, "failed").Observe(duration.Seconds())
}

func RecordJobRetried(jobType string) {
	JobsRetried.WithLabelValues(jobType).Inc()
}

func UpdateStoredTasks(byStatus map[string]int) {
	StoredTasks.Reset()
	for status, count := range byStatus {
		StoredTasks.WithLabelValues(status).Set(float64(count))
	}
}

func UpdateQueueDepth(depth int) {
	QueueDepth.Set(float64(depth))
}

func UpdateActiveWorkers(count int) {
	WorkersActive.Set(float64(count))
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
