// Package priority scores tasks from model output, with a deterministic
// rule-based scorer standing in whenever that output cannot be trusted.
package priority

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nadmax/planwise/internal/task"
)

var (
	ErrNoArray   = errors.New("no JSON array in response")
	ErrMalformed = errors.New("malformed priority array")
)

type rawResult struct {
	ID       *string  `json:"id"`
	Priority *float64 `json:"priority"`
}

// Decode strictly extracts priorities from model text. It either returns a
// fully validated list or an error; partial results are never returned.
func Decode(text string) ([]task.PriorityResult, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, ErrNoArray
	}

	var raw []*rawResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	results := make([]task.PriorityResult, len(raw))
	for i, r := range raw {
		if r == nil || r.ID == nil || strings.TrimSpace(*r.ID) == "" {
			return nil, fmt.Errorf("%w: element %d has no id", ErrMalformed, i)
		}
		if r.Priority == nil {
			return nil, fmt.Errorf("%w: element %d has no numeric priority", ErrMalformed, i)
		}

		p := math.Max(task.MinPriority, math.Min(task.MaxPriority, math.Round(*r.Priority)))
		results[i] = task.PriorityResult{ID: *r.ID, Priority: int(p)}
	}

	return results, nil
}

// Parse returns the priorities found in text, or the fallback scores for
// tasks when the text cannot be decoded.
func Parse(text string, tasks []task.Task) []task.PriorityResult {
	return parseAt(text, tasks, time.Now())
}

func parseAt(text string, tasks []task.Task, now time.Time) []task.PriorityResult {
	results, err := Decode(text)
	if err != nil {
		return ScoreAll(tasks, now)
	}

	return results
}
