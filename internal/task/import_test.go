package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var records []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(`[
		{"id":"keep","title":"Pay rent","urgency":"high","importance":"high","category":"home","estimatedTime":5,
		 "status":"completed","priority":70,"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"},
		{"title":"Fresh","urgency":"low","importance":"medium","category":"misc","estimatedTime":15,"deadline":"2026-04-03"},
		{"title":"No category","urgency":"low","importance":"low","estimatedTime":15},
		{"title":"Zero time","urgency":"low","importance":"low","category":"x","estimatedTime":0},
		{"title":"Bad deadline","urgency":"low","importance":"low","category":"x","estimatedTime":3,"deadline":"soon"},
		"not an object"
	]`), &records))

	tasks, skipped := Import(records, now)

	assert.Equal(t, 4, skipped)
	require.Len(t, tasks, 2)

	kept := tasks[0]
	assert.Equal(t, "keep", kept.ID)
	assert.Equal(t, CompletedStatus, kept.Status)
	require.NotNil(t, kept.Priority)
	assert.Equal(t, 70, *kept.Priority)
	assert.True(t, created.Equal(kept.CreatedAt))

	fresh := tasks[1]
	assert.NotEmpty(t, fresh.ID)
	assert.Equal(t, PendingStatus, fresh.Status)
	assert.Equal(t, now, fresh.CreatedAt)
	assert.Equal(t, now, fresh.UpdatedAt)
	require.NotNil(t, fresh.Deadline)
	assert.Equal(t, 3, fresh.Deadline.Day())
}

func TestImport_Empty(t *testing.T) {
	tasks, skipped := Import(nil, time.Now())

	assert.Empty(t, tasks)
	assert.Zero(t, skipped)
}
