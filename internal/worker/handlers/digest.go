package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/task"
)

const defaultDigestLimit = 10

type TaskLister interface {
	TasksByStatus(ctx context.Context, status task.TaskStatus) ([]*task.Task, error)
}

// PriorityDigestHandler mails the highest-priority open tasks.
func PriorityDigestHandler(tasks TaskLister, mailer Mailer) func(context.Context, *queue.Job) error {
	return func(ctx context.Context, job *queue.Job) error {
		to, ok := job.StringPayload("to")
		if !ok {
			return errors.New("missing 'to' field")
		}

		limit := defaultDigestLimit
		if n, ok := job.Payload["limit"].(float64); ok && n > 0 {
			limit = int(n)
		}

		open, err := openTasks(ctx, tasks)
		if err != nil {
			return err
		}
		task.Sort(open, task.SortByPriority)

		subject := fmt.Sprintf("Task priorities: %d open", len(open))
		return mailer.Send(ctx, to, subject, Digest(open, limit))
	}
}

func openTasks(ctx context.Context, tasks TaskLister) ([]*task.Task, error) {
	var open []*task.Task
	for _, status := range []task.TaskStatus{task.PendingStatus, task.InProgressStatus} {
		batch, err := tasks.TasksByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s tasks: %w", status, err)
		}
		open = append(open, batch...)
	}

	return open, nil
}

// Digest renders up to limit tasks, one per line, in the given order.
func Digest(tasks []*task.Task, limit int) string {
	if len(tasks) == 0 {
		return "No open tasks.\n"
	}

	var b strings.Builder
	for i, t := range tasks {
		if i == limit {
			fmt.Fprintf(&b, "...and %d more\n", len(tasks)-limit)
			break
		}

		score := "-"
		if t.Priority != nil {
			score = fmt.Sprintf("%d", *t.Priority)
		}
		fmt.Fprintf(&b, "%d. [%s %s] %s (%s, %d min)", i+1, task.PriorityLabel(t.Priority), score, t.Title, t.Category, t.EstimatedTime)
		if t.Deadline != nil {
			fmt.Fprintf(&b, " due %s", t.Deadline.Format("2006-01-02 15:04"))
		}
		b.WriteString("\n")
	}

	return b.String()
}
