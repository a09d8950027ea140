package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tasks []*Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestSort(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)

	build := func() []*Task {
		return []*Task{
			{ID: "a", Urgency: LevelLow, Importance: LevelCritical, Priority: ptr(40)},
			{ID: "b", Urgency: LevelCritical, Importance: LevelLow, Deadline: &later},
			{ID: "c", Urgency: LevelMedium, Importance: LevelHigh, Priority: ptr(90), Deadline: &soon},
			{ID: "d", Urgency: LevelHigh, Importance: LevelMedium},
		}
	}

	tests := []struct {
		key      SortKey
		expected []string
	}{
		{SortByPriority, []string{"c", "a", "b", "d"}},
		{SortByUrgency, []string{"b", "d", "c", "a"}},
		{SortByImportance, []string{"a", "c", "d", "b"}},
		{SortByDeadline, []string{"c", "b", "a", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			tasks := build()
			Sort(tasks, tt.key)
			assert.Equal(t, tt.expected, ids(tasks))
		})
	}
}

func TestParseSortKey(t *testing.T) {
	key, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortByPriority, key)

	key, err = ParseSortKey("deadline")
	require.NoError(t, err)
	assert.Equal(t, SortByDeadline, key)

	_, err = ParseSortKey("alphabetical")
	assert.Error(t, err)
}
