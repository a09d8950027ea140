// Package dashboard serves task statistics and prioritization history for the monitoring view.
package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/repository"
	"github.com/nadmax/planwise/internal/store"
	"github.com/nadmax/planwise/internal/task"
)

type Dashboard struct {
	store *store.Store
	runs  repository.RunRepository
	now   func() time.Time
}

type Stats struct {
	TotalTasks       int            `json:"total_tasks"`
	PendingTasks     int            `json:"pending_tasks"`
	InProgressTasks  int            `json:"in_progress_tasks"`
	CompletedTasks   int            `json:"completed_tasks"`
	PrioritizedTasks int            `json:"prioritized_tasks"`
	OverdueTasks     int            `json:"overdue_tasks"`
	TasksByCategory  map[string]int `json:"tasks_by_category"`
	TasksByPriority  map[string]int `json:"tasks_by_priority"`
	AveragePriority  float64        `json:"average_priority"`
	EstimatedMinutes int            `json:"estimated_minutes"`
	LastPrioritized  *time.Time     `json:"last_prioritized,omitempty"`
	LastUpdated      time.Time      `json:"last_updated"`
}

// NewDashboard returns a Dashboard. runs may be nil when history is disabled.
func NewDashboard(s *store.Store, runs repository.RunRepository) *Dashboard {
	return &Dashboard{store: s, runs: runs, now: time.Now}
}

// Compute aggregates tasks as of now. Completed tasks never count as overdue.
func Compute(tasks []*task.Task, now time.Time) Stats {
	stats := Stats{
		TotalTasks:      len(tasks),
		TasksByCategory: make(map[string]int),
		TasksByPriority: make(map[string]int),
		LastUpdated:     now,
	}

	prioritySum := 0
	for _, t := range tasks {
		switch t.Status {
		case task.InProgressStatus:
			stats.InProgressTasks++
		case task.CompletedStatus:
			stats.CompletedTasks++
		default:
			stats.PendingTasks++
		}

		stats.TasksByCategory[t.Category]++
		stats.TasksByPriority[task.PriorityLabel(t.Priority)]++
		stats.EstimatedMinutes += t.EstimatedTime

		if t.Priority != nil {
			stats.PrioritizedTasks++
			prioritySum += *t.Priority
		}
		if t.PrioritizedAt != nil && (stats.LastPrioritized == nil || t.PrioritizedAt.After(*stats.LastPrioritized)) {
			stats.LastPrioritized = t.PrioritizedAt
		}
		if t.Deadline != nil && t.Status != task.CompletedStatus && t.Deadline.Before(now) {
			stats.OverdueTasks++
		}
	}

	if stats.PrioritizedTasks > 0 {
		stats.AveragePriority = float64(prioritySum) / float64(stats.PrioritizedTasks)
	}

	return stats
}

func (d *Dashboard) GetStats(w http.ResponseWriter, r *http.Request) {
	tasks, err := d.store.ListTasks(r.Context())
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, Compute(tasks, d.now()))
}

func (d *Dashboard) GetRecentRuns(w http.ResponseWriter, r *http.Request) {
	if d.runs == nil {
		httputil.WriteJSONError(w, "Run history is not configured", http.StatusServiceUnavailable)
		return
	}

	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		httputil.WriteJSONError(w, "Invalid limit", http.StatusBadRequest)
		return
	}

	runs, err := d.runs.RecentRuns(r.Context(), limit)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, runs)
}

func (d *Dashboard) GetRunStats(w http.ResponseWriter, r *http.Request) {
	if d.runs == nil {
		httputil.WriteJSONError(w, "Run history is not configured", http.StatusServiceUnavailable)
		return
	}

	hours, err := queryInt(r, "hours", 24)
	if err != nil {
		httputil.WriteJSONError(w, "Invalid hours", http.StatusBadRequest)
		return
	}

	stats, err := d.runs.RunStats(r.Context(), hours)
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, strconv.ErrSyntax
	}

	return n, nil
}
