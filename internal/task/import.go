package task

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Import decodes exported task records. Records that do not decode or lack a
// title, urgency, importance, category or estimated time are skipped. Missing
// IDs, statuses and timestamps are filled in.
func Import(records []json.RawMessage, now time.Time) ([]*Task, int) {
	tasks := make([]*Task, 0, len(records))
	skipped := 0

	for _, raw := range records {
		var t Task
		if err := json.Unmarshal(raw, &t); err != nil || !t.importable() {
			skipped++
			continue
		}

		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.Status == "" {
			t.Status = PendingStatus
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = now
		}
		tasks = append(tasks, &t)
	}

	return tasks, skipped
}

func (t *Task) importable() bool {
	return t.Title != "" && t.Urgency != "" && t.Importance != "" && t.Category != "" && t.EstimatedTime != 0
}
