package task

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidTask = errors.New("invalid task")

// Validate checks the fields a client must supply when creating a task.
func (t *Task) Validate() error {
	switch {
	case strings.TrimSpace(t.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidTask)
	case !t.Urgency.Valid():
		return fmt.Errorf("%w: unknown urgency %q", ErrInvalidTask, t.Urgency)
	case !t.Importance.Valid():
		return fmt.Errorf("%w: unknown importance %q", ErrInvalidTask, t.Importance)
	case t.EstimatedTime < 0:
		return fmt.Errorf("%w: estimatedTime must not be negative", ErrInvalidTask)
	case t.Status != "" && !t.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTask, t.Status)
	}

	return nil
}

// Patch is a partial update. Nil fields are left unchanged and an empty
// deadline removes the deadline.
type Patch struct {
	Title         *string     `json:"title"`
	Description   *string     `json:"description"`
	Urgency       *Level      `json:"urgency"`
	Importance    *Level      `json:"importance"`
	Category      *string     `json:"category"`
	EstimatedTime *int        `json:"estimatedTime"`
	Deadline      *string     `json:"deadline"`
	Status        *TaskStatus `json:"status"`
}

// Apply updates t in place. t is untouched when the patch is invalid.
func (p Patch) Apply(t *Task) error {
	next := *t

	if p.Title != nil {
		next.Title = *p.Title
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Urgency != nil {
		next.Urgency = *p.Urgency
	}
	if p.Importance != nil {
		next.Importance = *p.Importance
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.EstimatedTime != nil {
		next.EstimatedTime = *p.EstimatedTime
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Deadline != nil {
		if strings.TrimSpace(*p.Deadline) == "" {
			next.Deadline = nil
		} else {
			d, err := ParseDeadline(*p.Deadline)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidTask, err)
			}
			next.Deadline = &d
		}
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*t = next

	return nil
}
