package repository

import (
	"context"
	"slices"
	"sync"
)

// MockRunRepository is an in-memory RunRepository for tests.
type MockRunRepository struct {
	mu            sync.Mutex
	Runs          []Run
	Stats         []RunStats
	SaveRunError  error
	RecentError   error
	StatsError    error
	SaveCallCount int
	Closed        bool
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{}
}

func (m *MockRunRepository) SaveRun(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCallCount++
	if m.SaveRunError != nil {
		return m.SaveRunError
	}
	m.Runs = append(m.Runs, *run)

	return nil
}

func (m *MockRunRepository) RecentRuns(_ context.Context, limit int) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecentError != nil {
		return nil, m.RecentError
	}

	runs := slices.Clone(m.Runs)
	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

func (m *MockRunRepository) RunStats(_ context.Context, _ int) ([]RunStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StatsError != nil {
		return nil, m.StatsError
	}

	return slices.Clone(m.Stats), nil
}

func (m *MockRunRepository) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Closed = true
	return nil
}
