// Package trip generates travel itineraries, one request at a time.
package trip

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/ai"
	"github.com/nadmax/planwise/internal/metrics"
)

var (
	ErrRequestInProgress = errors.New("request already in progress")
	ErrInvalidRequest    = errors.New("city, country and a positive number of days are required")
)

type Request = ai.TripRequest

// Planner allows a single outstanding itinerary request. Concurrent callers
// are rejected immediately rather than queued.
type Planner struct {
	completer ai.Completer
	logger    *zap.Logger
	inFlight  atomic.Bool
}

func NewPlanner(c ai.Completer, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Planner{completer: c, logger: logger}
}

func (p *Planner) Plan(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.City) == "" || strings.TrimSpace(req.Country) == "" || req.Days <= 0 {
		return "", ErrInvalidRequest
	}

	if !p.inFlight.CompareAndSwap(false, true) {
		metrics.RecordTripPlan("busy")
		p.logger.Warn("trip plan rejected", zap.String("reason", ErrRequestInProgress.Error()))
		return "", ErrRequestInProgress
	}
	defer p.inFlight.Store(false)

	plan, err := p.completer.Complete(ctx, ai.TripPrompt(req))
	if err != nil {
		metrics.RecordTripPlan("failed")
		p.logger.Error("trip plan failed", zap.String("city", req.City), zap.Error(err))
		return "", fmt.Errorf("failed to generate trip plan: %w", err)
	}

	metrics.RecordTripPlan("generated")
	p.logger.Info("trip plan generated", zap.String("city", req.City), zap.Int("days", req.Days))

	return plan, nil
}

// Busy reports whether a request is currently outstanding.
func (p *Planner) Busy() bool {
	return p.inFlight.Load()
}
