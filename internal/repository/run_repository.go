// Package repository provides PostgreSQL persistence for prioritization run history.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Run struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	TaskCount  int       `json:"task_count"`
	DurationMs int       `json:"duration_ms"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type RunStats struct {
	Source        string  `json:"source"`
	Runs          int     `json:"runs"`
	Tasks         int     `json:"tasks"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	MaxDurationMs int     `json:"max_duration_ms"`
}

type RunRepository interface {
	SaveRun(ctx context.Context, run *Run) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
	RunStats(ctx context.Context, hours int) ([]RunStats, error)
	Close() error
}

func NewRun(source string, taskCount int, duration time.Duration, reason string) *Run {
	return &Run{
		ID:         uuid.New().String(),
		Source:     source,
		TaskCount:  taskCount,
		DurationMs: int(duration.Milliseconds()),
		Reason:     reason,
		CreatedAt:  time.Now().UTC(),
	}
}
