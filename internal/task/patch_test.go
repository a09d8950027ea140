package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func() *Task { return NewTask("Title", LevelLow, LevelHigh, "work", 10) }

	tests := []struct {
		name   string
		mutate func(*Task)
		errMsg string
	}{
		{"valid", func(*Task) {}, ""},
		{"blank title", func(t *Task) { t.Title = "  " }, "title is required"},
		{"bad urgency", func(t *Task) { t.Urgency = "urgent" }, `unknown urgency "urgent"`},
		{"bad importance", func(t *Task) { t.Importance = "" }, "unknown importance"},
		{"negative time", func(t *Task) { t.EstimatedTime = -1 }, "estimatedTime"},
		{"bad status", func(t *Task) { t.Status = "done" }, `unknown status "done"`},
		{"empty status", func(t *Task) { t.Status = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tsk := valid()
			tt.mutate(tsk)

			err := tsk.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTask)
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestPatchApply(t *testing.T) {
	tsk := NewTask("Draft", LevelLow, LevelLow, "work", 10)
	status := InProgressStatus
	urgency := LevelCritical
	deadline := "2026-07-01T09:30"

	err := Patch{Status: &status, Urgency: &urgency, Deadline: &deadline}.Apply(tsk)
	require.NoError(t, err)

	assert.Equal(t, InProgressStatus, tsk.Status)
	assert.Equal(t, LevelCritical, tsk.Urgency)
	assert.Equal(t, "Draft", tsk.Title)
	require.NotNil(t, tsk.Deadline)
	assert.Equal(t, 9, tsk.Deadline.Hour())

	empty := ""
	require.NoError(t, Patch{Deadline: &empty}.Apply(tsk))
	assert.Nil(t, tsk.Deadline)
}

func TestPatchApply_InvalidLeavesTaskUntouched(t *testing.T) {
	tsk := NewTask("Draft", LevelLow, LevelLow, "work", 10)
	title := "Renamed"
	status := TaskStatus("archived")

	err := Patch{Title: &title, Status: &status}.Apply(tsk)

	assert.ErrorIs(t, err, ErrInvalidTask)
	assert.Equal(t, "Draft", tsk.Title)
	assert.Equal(t, PendingStatus, tsk.Status)

	bad := "next week"
	assert.ErrorIs(t, Patch{Deadline: &bad}.Apply(tsk), ErrInvalidTask)
}
