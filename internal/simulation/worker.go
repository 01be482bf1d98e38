// internal/simulation/worker.go
package simulation

import (
	"context"
	"time"

	apperrors "pfs-target-uploader/internal/common/errors"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/common/metrics"
	"pfs-target-uploader/internal/common/observability"
)

const workerMode = "async"

// Worker consumes simulation jobs from the queue until its context is
// cancelled. Jobs are not retried; a failed job is logged with its error
// code and dropped.
type Worker struct {
	queue   *Queue
	service *Service
	obs     *observability.Observability
	logger  logger.Logger
}

// NewWorker creates a queue worker.
func NewWorker(queue *Queue, service *Service, obs *observability.Observability, log logger.Logger) *Worker {
	return &Worker{
		queue:   queue,
		service: service,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "simulation-worker"}),
	}
}

// Run blocks, processing jobs until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("simulation worker started", nil)
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("simulation worker stopping", nil)
				return nil
			}
			code := apperrors.CodeOf(err)
			w.logger.WithError(err).Error("dequeue failed", map[string]interface{}{
				"errorCode": string(code),
			})
			if code == apperrors.ErrCodeJobPayloadInvalid {
				continue
			}
			// Transient queue error; back off briefly.
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		if job == nil {
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	log := w.logger.WithFields(map[string]interface{}{
		"jobId":    job.ID,
		"filename": job.OriginalFilename,
	})
	log.Info("processing simulation job", nil)

	metrics.SimulationJobsActive.WithLabelValues(workerMode).Inc()
	defer metrics.SimulationJobsActive.WithLabelValues(workerMode).Dec()

	start := time.Now()
	err := w.service.RunJob(ctx, job)
	duration := time.Since(start)

	metrics.SimulationJobDuration.WithLabelValues(workerMode).Observe(duration.Seconds())

	if err != nil {
		code := apperrors.CodeOf(err)
		metrics.SimulationJobsFailed.WithLabelValues(workerMode, string(code)).Inc()
		if w.obs != nil {
			w.obs.RecordJobProcessed(ctx, "failed")
			w.obs.RecordJobDuration(ctx, duration, "failed")
		}
		log.WithError(err).Error("simulation job failed", map[string]interface{}{
			"errorCode": string(code),
			"retryable": apperrors.IsRetryable(err),
			"duration":  duration.String(),
		})
		return
	}

	metrics.SimulationJobsCompleted.WithLabelValues(workerMode).Inc()
	if w.obs != nil {
		w.obs.RecordJobProcessed(ctx, "completed")
		w.obs.RecordJobDuration(ctx, duration, "completed")
	}
	log.Info("simulation job completed", map[string]interface{}{
		"duration": duration.String(),
	})
}
