// Package task defines the task domain model shared by the prioritization engine, the store and the API.
// It contains urgency/importance levels, task status, priority results and serialization helpers.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type (
	Level      string
	TaskStatus string
	Task       struct {
		ID            string     `json:"id"`
		Title         string     `json:"title"`
		Description   string     `json:"description"`
		Urgency       Level      `json:"urgency"`
		Importance    Level      `json:"importance"`
		Category      string     `json:"category"`
		EstimatedTime int        `json:"estimatedTime"`
		Deadline      *time.Time `json:"deadline,omitempty"`
		Status        TaskStatus `json:"status,omitempty"`
		Priority      *int       `json:"priority,omitempty"`
		PrioritizedAt *time.Time `json:"prioritizedAt,omitempty"`
		CreatedAt     time.Time  `json:"createdAt"`
		UpdatedAt     time.Time  `json:"updatedAt"`
	}
	// PriorityResult is the score assigned to one task, matched by ID.
	PriorityResult struct {
		ID       string `json:"id"`
		Priority int    `json:"priority"`
	}
)

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

const (
	PendingStatus    TaskStatus = "pending"
	InProgressStatus TaskStatus = "in-progress"
	CompletedStatus  TaskStatus = "completed"
)

const (
	MinPriority = 1
	MaxPriority = 100
)

// ErrNoTasks is returned when an operation needs at least one task.
var ErrNoTasks = errors.New("no tasks provided")

var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Rank orders levels from 1 (low) to 4 (critical). Unknown levels rank 0.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 1
	case LevelMedium:
		return 2
	case LevelHigh:
		return 3
	case LevelCritical:
		return 4
	default:
		return 0
	}
}

func (l Level) Valid() bool {
	return l.Rank() > 0
}

func (s TaskStatus) Valid() bool {
	switch s {
	case PendingStatus, InProgressStatus, CompletedStatus:
		return true
	}
	return false
}

func NewTask(title string, urgency, importance Level, category string, estimatedTime int) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:            uuid.New().String(),
		Title:         title,
		Urgency:       urgency,
		Importance:    importance,
		Category:      category,
		EstimatedTime: estimatedTime,
		Status:        PendingStatus,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// UnmarshalJSON accepts deadlines as RFC 3339 timestamps, datetime-local values
// or plain dates. An empty deadline string means no deadline.
func (t *Task) UnmarshalJSON(data []byte) error {
	type alias Task
	aux := struct {
		*alias
		Deadline *string `json:"deadline,omitempty"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Deadline = nil
	if aux.Deadline == nil || strings.TrimSpace(*aux.Deadline) == "" {
		return nil
	}

	deadline, err := ParseDeadline(*aux.Deadline)
	if err != nil {
		return err
	}
	t.Deadline = &deadline

	return nil
}

func ParseDeadline(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range deadlineLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid deadline %q", value)
}

func (t *Task) ToJSON() (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func TaskFromJSON(data string) (*Task, error) {
	var task Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// SetPriority stores a score on the task and stamps when it was assigned.
func (t *Task) SetPriority(priority int, at time.Time) {
	p := ClampPriority(priority)
	t.Priority = &p
	t.PrioritizedAt = &at
	t.UpdatedAt = at
}

func ClampPriority(p int) int {
	return max(MinPriority, min(MaxPriority, p))
}

// PriorityLabel buckets a score the way the prioritizer UI shows it.
func PriorityLabel(priority *int) string {
	if priority == nil || *priority == 0 {
		return "No Priority"
	}

	switch p := *priority; {
	case p >= 80:
		return "Critical"
	case p >= 60:
		return "High"
	case p >= 40:
		return "Medium"
	case p >= 20:
		return "Low"
	default:
		return "Very Low"
	}
}
