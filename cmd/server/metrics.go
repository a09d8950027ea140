package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/metrics"
	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/store"
)

func startMetricsCollector(ctx context.Context, s *store.Store, q *queue.Queue, logger *zap.Logger) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		updateGauges(ctx, s, q, logger)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func updateGauges(ctx context.Context, s *store.Store, q *queue.Queue, logger *zap.Logger) {
	counts, err := s.CountByStatus(ctx)
	if err != nil {
		logger.Warn("failed to count tasks for metrics", zap.Error(err))
	} else {
		byStatus := make(map[string]int, len(counts))
		for status, n := range counts {
			byStatus[string(status)] = n
		}
		metrics.UpdateStoredTasks(byStatus)
	}

	depth, err := q.Depth(ctx)
	if err != nil {
		logger.Warn("failed to read queue depth", zap.Error(err))
		return
	}
	metrics.UpdateQueueDepth(int(depth))
}
