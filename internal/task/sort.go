package task

import (
	"fmt"
	"slices"
)

type SortKey string

const (
	SortByPriority   SortKey = "priority"
	SortByUrgency    SortKey = "urgency"
	SortByImportance SortKey = "importance"
	SortByDeadline   SortKey = "deadline"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortByPriority, SortByUrgency, SortByImportance, SortByDeadline:
		return k, nil
	case "":
		return SortByPriority, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

// Sort orders tasks in place. Sorting is stable so ties keep their stored order.
func Sort(tasks []*Task, key SortKey) {
	switch key {
	case SortByUrgency:
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			return b.Urgency.Rank() - a.Urgency.Rank()
		})
	case SortByImportance:
		slices.SortStableFunc(tasks, func(a, b *Task) int {
			return b.Importance.Rank() - a.Importance.Rank()
		})
	case SortByDeadline:
		slices.SortStableFunc(tasks, compareDeadline)
	default:
		slices.SortStableFunc(tasks, comparePriority)
	}
}

// comparePriority puts scored tasks first, highest score first. Unscored
// tasks fall back to urgency then importance.
func comparePriority(a, b *Task) int {
	switch {
	case a.Priority != nil && b.Priority != nil:
		return *b.Priority - *a.Priority
	case a.Priority != nil:
		return -1
	case b.Priority != nil:
		return 1
	}

	if d := b.Urgency.Rank() - a.Urgency.Rank(); d != 0 {
		return d
	}

	return b.Importance.Rank() - a.Importance.Rank()
}

func compareDeadline(a, b *Task) int {
	switch {
	case a.Deadline == nil && b.Deadline == nil:
		return 0
	case a.Deadline == nil:
		return 1
	case b.Deadline == nil:
		return -1
	default:
		return a.Deadline.Compare(*b.Deadline)
	}
}
