package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

type Job struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Payload     map[string]any `json:"payload"`
	Status      JobStatus      `json:"status"`
	MaxAttempts int            `json:"max_attempts"`
	Attempts    int            `json:"attempts"`
	CreatedAt   time.Time      `json:"created_at"`
	RunAt       time.Time      `json:"run_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	Error       string         `json:"error,omitempty"`
}

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

const DefaultMaxAttempts = 3

func NewJob(jobType string, payload map[string]any) *Job {
	now := time.Now().UTC()
	if payload == nil {
		payload = map[string]any{}
	}

	return &Job{
		ID:          uuid.New().String(),
		Type:        jobType,
		Payload:     payload,
		Status:      StatusPending,
		MaxAttempts: DefaultMaxAttempts,
		CreatedAt:   now,
		RunAt:       now,
	}
}

// CanRetry reports whether another attempt is allowed.
func (j *Job) CanRetry() bool {
	return j.Attempts < j.MaxAttempts
}

// StringPayload returns payload[key] when it is a non-empty string.
func (j *Job) StringPayload(key string) (string, bool) {
	v, ok := j.Payload[key].(string)
	return v, ok && v != ""
}

func (j *Job) ToJSON() (string, error) {
	data, err := json.Marshal(j)
	return string(data), err
}

func JobFromJSON(data string) (*Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
