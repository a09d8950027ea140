package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/httputil"
	"github.com/nadmax/planwise/internal/trip"
)

type TripResponse struct {
	Plan string `json:"plan"`
}

func (a *API) planTrip(w http.ResponseWriter, r *http.Request) {
	var req trip.Request
	if !decodeBody(w, r, &req) {
		return
	}

	plan, err := a.trips.Plan(r.Context(), req)
	switch {
	case errors.Is(err, trip.ErrInvalidRequest):
		httputil.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, trip.ErrRequestInProgress):
		httputil.WriteJSONError(w, "A trip plan is already being generated", http.StatusConflict)
	case err != nil:
		a.logger.Error("trip planning failed", zap.Error(err))
		httputil.WriteJSONError(w, "Failed to generate trip plan", http.StatusBadGateway)
	default:
		httputil.WriteJSON(w, http.StatusOK, TripResponse{Plan: plan})
	}
}
