// Package worker provides the background job processor that consumes and executes jobs from the queue.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/metrics"
	"github.com/nadmax/planwise/internal/queue"
)

type JobHandler func(context.Context, *queue.Job) error

const (
	defaultPollInterval = time.Second
	defaultRetryDelay   = 10 * time.Second
)

var activeWorkers atomic.Int64

type Worker struct {
	id           string
	queue        *queue.Queue
	handlers     map[string]JobHandler
	logger       *zap.Logger
	pollInterval time.Duration
	retryDelay   time.Duration
}

func NewWorker(id string, q *queue.Queue, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		id:           id,
		queue:        q,
		handlers:     make(map[string]JobHandler),
		logger:       logger.With(zap.String("worker_id", id)),
		pollInterval: defaultPollInterval,
		retryDelay:   defaultRetryDelay,
	}
}

func (w *Worker) RegisterHandler(jobType string, handler JobHandler) {
	w.handlers[jobType] = handler
}

func (w *Worker) SetPollInterval(d time.Duration) {
	w.pollInterval = d
}

// SetRetryDelay sets the base backoff; attempt n waits n times this delay.
func (w *Worker) SetRetryDelay(d time.Duration) {
	w.retryDelay = d
}

// Start polls the queue until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	metrics.UpdateActiveWorkers(int(activeWorkers.Add(1)))
	defer func() {
		metrics.UpdateActiveWorkers(int(activeWorkers.Add(-1)))
	}()

	w.logger.Info("worker started", zap.Duration("poll_interval", w.pollInterval))

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			w.logger.Info("worker stopped")
			return
		}

		job, err := w.queue.Dequeue(ctx)
		if err != nil && ctx.Err() == nil {
			w.logger.Warn("dequeue failed", zap.Error(err))
		}
		if job != nil {
			w.processJob(ctx, job)
			continue
		}

		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) processJob(ctx context.Context, job *queue.Job) {
	logger := w.logger.With(zap.String("job_id", job.ID), zap.String("job_type", job.Type))
	logger.Info("processing job", zap.Int("attempt", job.Attempts+1))

	start := time.Now()
	startedAt := start.UTC()
	job.Status = queue.StatusRunning
	job.StartedAt = &startedAt
	if err := w.queue.UpdateJob(ctx, job); err != nil {
		logger.Warn("failed to mark job running", zap.Error(err))
	}

	handler, exists := w.handlers[job.Type]
	if !exists {
		w.fail(ctx, logger, job, fmt.Errorf("no handler for job type: %s", job.Type), time.Since(start))
		return
	}

	err := w.run(ctx, handler, job)
	duration := time.Since(start)

	if err != nil && ctx.Err() != nil {
		w.requeue(ctx, logger, job, err)
		return
	}
	job.Attempts++

	if err == nil {
		completedAt := time.Now().UTC()
		job.Status = queue.StatusCompleted
		job.CompletedAt = &completedAt
		job.Error = ""
		if err := w.queue.UpdateJob(ctx, job); err != nil {
			logger.Warn("failed to mark job completed", zap.Error(err))
		}
		metrics.RecordJobCompleted(job.Type, duration)
		logger.Info("job completed", zap.Duration("duration", duration))
		return
	}

	job.Error = err.Error()
	if job.CanRetry() {
		delay := time.Duration(job.Attempts) * w.retryDelay
		if rerr := w.queue.Retry(ctx, job, delay); rerr != nil {
			logger.Error("failed to reschedule job", zap.Error(rerr))
		}
		logger.Warn("job failed, will retry",
			zap.Error(err),
			zap.Int("attempts", job.Attempts),
			zap.Int("max_attempts", job.MaxAttempts),
			zap.Duration("delay", delay),
		)
		return
	}

	w.fail(ctx, logger, job, err, duration)
}

// run invokes handler and converts a panic into an error.
func (w *Worker) run(ctx context.Context, handler JobHandler, job *queue.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	return handler(ctx, job)
}

// requeue puts back a job interrupted by shutdown. The attempt is not counted.
func (w *Worker) requeue(ctx context.Context, logger *zap.Logger, job *queue.Job, err error) {
	job.Error = err.Error()
	if rerr := w.queue.Retry(context.WithoutCancel(ctx), job, 0); rerr != nil {
		logger.Error("failed to requeue interrupted job", zap.Error(rerr))
		return
	}
	logger.Warn("job interrupted by shutdown, requeued", zap.Error(err))
}

func (w *Worker) fail(ctx context.Context, logger *zap.Logger, job *queue.Job, err error, duration time.Duration) {
	completedAt := time.Now().UTC()
	job.Status = queue.StatusFailed
	job.Error = err.Error()
	job.CompletedAt = &completedAt

	// the final status must land even when ctx is already cancelled
	if uerr := w.queue.UpdateJob(context.WithoutCancel(ctx), job); uerr != nil {
		logger.Error("failed to mark job failed", zap.Error(uerr))
	}
	metrics.RecordJobFailed(job.Type, duration)
	logger.Error("job failed permanently", zap.Error(err), zap.Int("attempts", job.Attempts))
}
