// Package api exposes the task prioritizer, recipe generator and trip planner over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/dashboard"
	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/priority"
	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/recipe"
	"github.com/nadmax/planwise/internal/repository"
	"github.com/nadmax/planwise/internal/store"
	"github.com/nadmax/planwise/internal/trip"
)

const maxBodyBytes = 1 << 20

// Deps wires the API to its collaborators. Queue and Runs are optional: job
// endpoints answer 503 without a queue and history endpoints 503 without runs.
type Deps struct {
	Store       *store.Store
	Queue       *queue.Queue
	Runs        repository.RunRepository
	Prioritizer *priority.Prioritizer
	Recipes     *recipe.Generator
	Trips       *trip.Planner
	Logger      *zap.Logger
}

type API struct {
	store       *store.Store
	queue       *queue.Queue
	runs        repository.RunRepository
	prioritizer *priority.Prioritizer
	recipes     *recipe.Generator
	trips       *trip.Planner
	logger      *zap.Logger
	mux         *http.ServeMux
}

func NewAPI(deps Deps) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	api := &API{
		store:       deps.Store,
		queue:       deps.Queue,
		runs:        deps.Runs,
		prioritizer: deps.Prioritizer,
		recipes:     deps.Recipes,
		trips:       deps.Trips,
		logger:      logger,
		mux:         http.NewServeMux(),
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	a.mux.HandleFunc("POST /api/prioritize-tasks", a.prioritizeTasks)

	a.mux.HandleFunc("GET /api/tasks", a.listTasks)
	a.mux.HandleFunc("POST /api/tasks", a.createTask)
	a.mux.HandleFunc("DELETE /api/tasks", a.clearTasks)
	a.mux.HandleFunc("POST /api/tasks/prioritize", a.prioritizeStored)
	a.mux.HandleFunc("POST /api/tasks/import", a.importTasks)
	a.mux.HandleFunc("GET /api/tasks/export", a.exportTasks)
	a.mux.HandleFunc("POST /api/tasks/digest", a.enqueueDigest)
	a.mux.HandleFunc("GET /api/tasks/{id}", a.getTask)
	a.mux.HandleFunc("PATCH /api/tasks/{id}", a.updateTask)
	a.mux.HandleFunc("DELETE /api/tasks/{id}", a.deleteTask)

	a.mux.HandleFunc("GET /api/recipes", a.listRecipes)
	a.mux.HandleFunc("POST /api/recipes", a.generateRecipe)
	a.mux.HandleFunc("GET /api/recipes/{id}", a.getRecipe)
	a.mux.HandleFunc("DELETE /api/recipes/{id}", a.deleteRecipe)
	a.mux.HandleFunc("POST /api/recipes/{id}/share", a.shareRecipe)

	a.mux.HandleFunc("POST /api/trips", a.planTrip)

	a.mux.HandleFunc("POST /api/reports", a.enqueueReport)
	a.mux.HandleFunc("GET /api/jobs/{id}", a.getJob)

	dash := dashboard.NewDashboard(a.store, a.runs)
	a.mux.HandleFunc("GET /api/dashboard/stats", dash.GetStats)
	a.mux.HandleFunc("GET /api/history/runs", dash.GetRecentRuns)
	a.mux.HandleFunc("GET /api/history/stats", dash.GetRunStats)

	a.mux.HandleFunc("GET /health", a.health)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a JSON request body into v, answering 400 itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteJSONError(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}

	return true
}

// writeStoreError maps store failures onto 404, 409 or 500.
func (a *API) writeStoreError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, store.ErrNotFound) {
		httputil.WriteJSONError(w, notFound, http.StatusNotFound)
		return
	}
	if errors.Is(err, store.ErrConflict) {
		httputil.WriteJSONError(w, "Task is being updated, try again", http.StatusConflict)
		return
	}

	a.logger.Error("store operation failed", zap.Error(err))
	httputil.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
}
