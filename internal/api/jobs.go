package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/worker/handlers"
)

type DigestRequest struct {
	To    string `json:"to"`
	Limit int    `json:"limit"`
}

type ReportRequest struct {
	ReportType string `json:"report_type"`
	Format     string `json:"format"`
	Hours      int    `json:"hours"`
	Limit      int    `json:"limit"`
}

type JobResponse struct {
	JobID  string          `json:"job_id"`
	Type   string          `json:"type"`
	Status queue.JobStatus `json:"status"`
}

func (a *API) enqueueDigest(w http.ResponseWriter, r *http.Request) {
	var req DigestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !validAddress(req.To) {
		httputil.WriteJSONError(w, "A recipient address is required", http.StatusBadRequest)
		return
	}

	payload := map[string]any{"to": req.To}
	if req.Limit > 0 {
		payload["limit"] = req.Limit
	}

	a.enqueue(w, r, handlers.PriorityDigestJob, payload)
}

func (a *API) enqueueReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch req.ReportType {
	case "run_summary", "recent_runs":
	default:
		httputil.WriteJSONError(w, "report_type must be run_summary or recent_runs", http.StatusBadRequest)
		return
	}
	switch req.Format {
	case "", "csv", "json":
	default:
		httputil.WriteJSONError(w, "format must be csv or json", http.StatusBadRequest)
		return
	}

	a.enqueue(w, r, handlers.RunReportJob, map[string]any{
		"report_type": req.ReportType,
		"format":      req.Format,
		"hours":       req.Hours,
		"limit":       req.Limit,
	})
}

func (a *API) enqueue(w http.ResponseWriter, r *http.Request, jobType string, payload map[string]any) {
	if a.queue == nil {
		httputil.WriteJSONError(w, "Background jobs are not configured", http.StatusServiceUnavailable)
		return
	}

	job := queue.NewJob(jobType, payload)
	if err := a.queue.Enqueue(r.Context(), job); err != nil {
		a.logger.Error("failed to enqueue job", zap.String("job_type", jobType), zap.Error(err))
		httputil.WriteJSONError(w, "Failed to enqueue job", http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, JobResponse{JobID: job.ID, Type: job.Type, Status: job.Status})
}

func (a *API) getJob(w http.ResponseWriter, r *http.Request) {
	if a.queue == nil {
		httputil.WriteJSONError(w, "Background jobs are not configured", http.StatusServiceUnavailable)
		return
	}

	job, err := a.queue.GetJob(r.Context(), r.PathValue("id"))
	if errors.Is(err, queue.ErrJobNotFound) {
		httputil.WriteJSONError(w, "Job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		a.logger.Error("failed to load job", zap.Error(err))
		httputil.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, job)
}
