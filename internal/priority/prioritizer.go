package priority

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/ai"
	"github.com/nadmax/planwise/internal/metrics"
	"github.com/nadmax/planwise/internal/repository"
	"github.com/nadmax/planwise/internal/task"
)

type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Outcome describes one prioritization: the scores, where they came from and,
// for fallbacks, why the model output was not used.
type Outcome struct {
	Results  []task.PriorityResult
	Source   Source
	Reason   string
	Duration time.Duration
}

// Prioritizer scores tasks with the model and falls back to the rule-based
// scorer. It always returns exactly one result per input task, in input order.
type Prioritizer struct {
	completer ai.Completer
	logger    *zap.Logger
	history   RunSaver
	now       func() time.Time
}

// RunSaver records completed prioritizations.
type RunSaver interface {
	SaveRun(ctx context.Context, run *repository.Run) error
}

// New returns a Prioritizer. A nil completer means every call uses the
// rule-based scorer.
func New(c ai.Completer, logger *zap.Logger) *Prioritizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Prioritizer{
		completer: c,
		logger:    logger,
		now:       time.Now,
	}
}

// SetHistory makes every successful Run write a record to h. Write failures
// are logged and never fail the prioritization.
func (p *Prioritizer) SetHistory(h RunSaver) {
	p.history = h
}

func (p *Prioritizer) Prioritize(ctx context.Context, tasks []task.Task) ([]task.PriorityResult, error) {
	outcome, err := p.Run(ctx, tasks)
	if err != nil {
		return nil, err
	}

	return outcome.Results, nil
}

func (p *Prioritizer) Run(ctx context.Context, tasks []task.Task) (Outcome, error) {
	if len(tasks) == 0 {
		return Outcome{}, task.ErrNoTasks
	}

	start := time.Now()
	now := p.now()

	outcome, err := p.score(ctx, tasks, now)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Duration = time.Since(start)

	metrics.RecordPrioritization(string(outcome.Source), len(tasks), outcome.Duration)
	if outcome.Source == SourceFallback {
		p.logger.Warn("using fallback priorities",
			zap.Int("tasks", len(tasks)),
			zap.String("reason", outcome.Reason),
		)
	} else {
		p.logger.Info("tasks prioritized",
			zap.Int("tasks", len(tasks)),
			zap.Duration("duration", outcome.Duration),
		)
	}
	p.record(ctx, outcome, len(tasks))

	return outcome, nil
}

func (p *Prioritizer) record(ctx context.Context, outcome Outcome, taskCount int) {
	if p.history == nil {
		return
	}

	run := repository.NewRun(string(outcome.Source), taskCount, outcome.Duration, outcome.Reason)
	if err := p.history.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger.Warn("failed to record prioritization run", zap.Error(err))
	}
}

func (p *Prioritizer) score(ctx context.Context, tasks []task.Task, now time.Time) (Outcome, error) {
	if p.completer == nil {
		return fallback(tasks, now, "no model configured"), nil
	}

	text, err := p.completer.Complete(ctx, ai.PriorityPrompt(tasks, now))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		metrics.RecordParseFailure("transport")
		return fallback(tasks, now, fmt.Sprintf("model request failed: %v", err)), nil
	}

	decoded, err := Decode(text)
	if err != nil {
		metrics.RecordParseFailure("decode")
		return fallback(tasks, now, err.Error()), nil
	}

	results, matched := reconcile(tasks, decoded, now)
	if matched == 0 {
		metrics.RecordParseFailure("unmatched")
		return fallback(tasks, now, "model response matched no task ids"), nil
	}

	outcome := Outcome{Results: results, Source: SourceAI}
	if missing := len(tasks) - matched; missing > 0 {
		outcome.Reason = fmt.Sprintf("%d task(s) missing from model response were scored by rules", missing)
	}

	return outcome, nil
}

func fallback(tasks []task.Task, now time.Time, reason string) Outcome {
	return Outcome{
		Results: ScoreAll(tasks, now),
		Source:  SourceFallback,
		Reason:  reason,
	}
}

// reconcile maps decoded scores onto the input tasks. Unknown ids are
// dropped, the first score for a duplicated id wins, and tasks the model
// skipped get their rule-based score.
func reconcile(tasks []task.Task, decoded []task.PriorityResult, now time.Time) ([]task.PriorityResult, int) {
	byID := make(map[string]int, len(decoded))
	for _, r := range decoded {
		if _, seen := byID[r.ID]; !seen {
			byID[r.ID] = r.Priority
		}
	}

	results := make([]task.PriorityResult, len(tasks))
	matched := 0
	for i, t := range tasks {
		if p, ok := byID[t.ID]; ok {
			results[i] = task.PriorityResult{ID: t.ID, Priority: p}
			matched++
			continue
		}
		results[i] = task.PriorityResult{ID: t.ID, Priority: ScoreAt(t, now)}
	}

	return results, matched
}
