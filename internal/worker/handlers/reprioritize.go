package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/priority"
	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/task"
)

type PriorityStore interface {
	TaskLister
	ApplyPriorities(ctx context.Context, results []task.PriorityResult, at time.Time) (int, error)
}

// ReprioritizeHandler rescores every pending task and stores the new
// priorities, like the synchronous prioritize endpoint.
func ReprioritizeHandler(store PriorityStore, p *priority.Prioritizer, logger *zap.Logger) func(context.Context, *queue.Job) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, job *queue.Job) error {
		pending, err := store.TasksByStatus(ctx, task.PendingStatus)
		if err != nil {
			return err
		}

		values := make([]task.Task, len(pending))
		for i, t := range pending {
			values[i] = *t
		}

		outcome, err := p.Run(ctx, values)
		if errors.Is(err, task.ErrNoTasks) {
			logger.Info("no pending tasks to prioritize", zap.String("job_id", job.ID))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to prioritize tasks: %w", err)
		}

		updated, err := store.ApplyPriorities(ctx, outcome.Results, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to store priorities: %w", err)
		}

		logger.Info("tasks reprioritized",
			zap.String("job_id", job.ID),
			zap.String("source", string(outcome.Source)),
			zap.Int("updated", updated),
		)
		return nil
	}
}
