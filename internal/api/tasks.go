package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/task"
)

type CreateTaskRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Urgency       task.Level `json:"urgency"`
	Importance    task.Level `json:"importance"`
	Category      string     `json:"category"`
	EstimatedTime int        `json:"estimatedTime"`
	Deadline      string     `json:"deadline"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	sortKey, err := task.ParseSortKey(r.URL.Query().Get("sort"))
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var tasks []*task.Task
	if status := task.TaskStatus(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			httputil.WriteJSONError(w, "Unknown status", http.StatusBadRequest)
			return
		}
		tasks, err = a.store.TasksByStatus(r.Context(), status)
	} else {
		tasks, err = a.store.ListTasks(r.Context())
	}
	if err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	if tasks == nil {
		tasks = []*task.Task{}
	}
	task.Sort(tasks, sortKey)
	httputil.WriteJSON(w, http.StatusOK, tasks)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t := task.NewTask(strings.TrimSpace(req.Title), req.Urgency, req.Importance, req.Category, req.EstimatedTime)
	t.Description = req.Description
	if strings.TrimSpace(req.Deadline) != "" {
		deadline, err := task.ParseDeadline(req.Deadline)
		if err != nil {
			httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.Deadline = &deadline
	}

	if err := t.Validate(); err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := a.store.SaveTask(r.Context(), t); err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, t)
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := a.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeStoreError(w, err, "Task not found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, t)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch task.Patch
	if !decodeBody(w, r, &patch) {
		return
	}

	t, err := a.store.UpdateTask(r.Context(), r.PathValue("id"), patch.Apply)
	if errors.Is(err, task.ErrInvalidTask) {
		httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		a.writeStoreError(w, err, "Task not found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, t)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		a.writeStoreError(w, err, "Task not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clearTasks removes all tasks, or only those matching ?status=.
func (a *API) clearTasks(w http.ResponseWriter, r *http.Request) {
	status := task.TaskStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		httputil.WriteJSONError(w, "Unknown status", http.StatusBadRequest)
		return
	}

	n, err := a.store.ClearTasks(r.Context(), status)
	if err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (a *API) importTasks(w http.ResponseWriter, r *http.Request) {
	var records []json.RawMessage
	if !decodeBody(w, r, &records) {
		return
	}

	tasks, skipped := task.Import(records, time.Now().UTC())
	if skipped > 0 {
		a.logger.Warn("skipped invalid tasks on import", zap.Int("skipped", skipped))
	}

	if err := a.store.ReplaceTasks(r.Context(), tasks); err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ImportResponse{Imported: len(tasks), Skipped: skipped})
}

func (a *API) exportTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := a.store.ListTasks(r.Context())
	if err != nil {
		a.writeStoreError(w, err, "")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="tasks.json"`)
	httputil.WriteJSON(w, http.StatusOK, tasks)
}
