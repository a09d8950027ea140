package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/task"
	"github.com/nadmax/planwise/internal/worker/handlers"
)

type PrioritizeRequest struct {
	Tasks json.RawMessage `json:"tasks"`
}

type PrioritizeResponse struct {
	Priorities []task.PriorityResult `json:"priorities"`
}

type PrioritizeStoredResponse struct {
	Priorities []task.PriorityResult `json:"priorities"`
	Source     string                `json:"source"`
	Updated    int                   `json:"updated"`
}

func (a *API) prioritizeTasks(w http.ResponseWriter, r *http.Request) {
	var req PrioritizeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tasks, err := decodeTaskArray(req.Tasks)
	if errors.Is(err, errNoTasksProvided) {
		httputil.WriteJSONError(w, "No tasks provided", http.StatusBadRequest)
		return
	}
	if err != nil {
		httputil.WriteJSONError(w, "Invalid task: "+err.Error(), http.StatusBadRequest)
		return
	}

	results, err := a.prioritizer.Prioritize(r.Context(), tasks)
	if err != nil {
		a.logger.Error("task prioritization failed", zap.Error(err))
		httputil.WriteJSONError(w, "Failed to prioritize tasks", http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, PrioritizeResponse{Priorities: results})
}

var errNoTasksProvided = errors.New("no tasks provided")

// decodeTaskArray accepts only a non-empty JSON array of task objects.
func decodeTaskArray(raw json.RawMessage) ([]task.Task, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errNoTasksProvided
	}

	var tasks []task.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, errNoTasksProvided
	}

	return tasks, nil
}

// prioritizeStored scores every pending stored task and persists the result.
// With ?async=true it hands all open tasks to a background job instead.
func (a *API) prioritizeStored(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "true" {
		a.enqueue(w, r, handlers.ReprioritizeJob, nil)
		return
	}

	pending, err := a.store.TasksByStatus(r.Context(), task.PendingStatus)
	if err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	values := make([]task.Task, len(pending))
	for i, t := range pending {
		values[i] = *t
	}

	outcome, err := a.prioritizer.Run(r.Context(), values)
	if errors.Is(err, task.ErrNoTasks) {
		httputil.WriteJSONError(w, "No pending tasks to prioritize", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.logger.Error("task prioritization failed", zap.Error(err))
		httputil.WriteJSONError(w, "Failed to prioritize tasks", http.StatusInternalServerError)
		return
	}

	updated, err := a.store.ApplyPriorities(r.Context(), outcome.Results, time.Now().UTC())
	if err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, PrioritizeStoredResponse{
		Priorities: outcome.Results,
		Source:     string(outcome.Source),
		Updated:    updated,
	})
}
