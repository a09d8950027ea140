package priority

import (
	"math"
	"time"

	"github.com/nadmax/planwise/internal/task"
)

const baseScore = 50

var (
	urgencyBonus = map[task.Level]int{
		task.LevelCritical: 30,
		task.LevelHigh:     20,
		task.LevelMedium:   10,
		task.LevelLow:      0,
	}
	importanceBonus = map[task.Level]int{
		task.LevelCritical: 20,
		task.LevelHigh:     15,
		task.LevelMedium:   10,
		task.LevelLow:      5,
	}
)

// Score computes the rule-based priority of a task against the wall clock.
func Score(t task.Task) int {
	return ScoreAt(t, time.Now())
}

// ScoreAt computes the rule-based priority of a task as of now. The result is
// always within [1, 100].
func ScoreAt(t task.Task, now time.Time) int {
	score := baseScore + urgencyBonus[t.Urgency] + importanceBonus[t.Importance]

	if t.Deadline != nil {
		score += deadlineBonus(t.Deadline.Sub(now))
	}

	switch {
	case t.EstimatedTime <= 30:
		score += 5
	case t.EstimatedTime <= 60:
		score += 2
	}

	return task.ClampPriority(score)
}

// deadlineBonus buckets the whole days left until a deadline. Overdue tasks
// land in the first bucket.
func deadlineBonus(until time.Duration) int {
	days := math.Ceil(until.Hours() / 24)

	switch {
	case days <= 1:
		return 20
	case days <= 3:
		return 15
	case days <= 7:
		return 10
	case days <= 14:
		return 5
	default:
		return 0
	}
}

// ScoreAll scores every task independently, preserving input order.
func ScoreAll(tasks []task.Task, now time.Time) []task.PriorityResult {
	results := make([]task.PriorityResult, len(tasks))
	for i, t := range tasks {
		results[i] = task.PriorityResult{ID: t.ID, Priority: ScoreAt(t, now)}
	}

	return results
}
