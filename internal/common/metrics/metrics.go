// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploader_submissions_total",
			Help: "Total number of target-list submissions packaged",
		},
		[]string{"status"},
	)

	ValidationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploader_validation_runs_total",
			Help: "Total number of validation runs by outcome",
		},
		[]string{"status", "stage"},
	)

	SimulationJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploader_simulation_jobs_completed_total",
			Help: "Total number of simulation jobs completed",
		},
		[]string{"mode"},
	)

	SimulationJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploader_simulation_jobs_failed_total",
			Help: "Total number of simulation jobs failed",
		},
		[]string{"mode", "error_code"},
	)

	SimulationJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uploader_simulation_job_duration_seconds",
			Help:    "Duration of simulation job processing in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800},
		},
		[]string{"mode"},
	)

	SimulationJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uploader_simulation_jobs_active",
			Help: "Number of simulation jobs currently being processed",
		},
		[]string{"mode"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uploader_simulation_queue_depth",
			Help: "Number of simulation jobs waiting in the queue",
		},
	)

	InvalidJobPayloads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uploader_invalid_job_payloads_total",
			Help: "Total number of dequeued job payloads rejected by schema validation",
		},
	)
)
