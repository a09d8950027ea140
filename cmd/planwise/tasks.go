package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/nadmax/planwise/internal/priority"
	"github.com/nadmax/planwise/internal/task"
)

var scoreCmd = &cobra.Command{
	Use:   "score <tasks-file>",
	Short: "Score tasks with the rule-based scorer",
	Long: `Score reads a JSON or YAML array of tasks and prints the rule-based
priority of each one. No model is contacted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := loadTasks(args[0], time.Now())
		if err != nil {
			return err
		}

		outcome := priority.Outcome{
			Results: priority.ScoreAll(tasks, time.Now()),
			Source:  priority.SourceFallback,
		}

		return printOutcome(cmd, tasks, outcome)
	},
}

var prioritizeCmd = &cobra.Command{
	Use:   "prioritize <tasks-file>",
	Short: "Prioritize tasks with the model, falling back to rules",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := loadTasks(args[0], time.Now())
		if err != nil {
			return err
		}

		gemini, err := newCompleter(cmd)
		if err != nil {
			return err
		}

		outcome, err := priority.New(gemini, logger).Run(cmd.Context(), tasks)
		if err != nil {
			return err
		}

		return printOutcome(cmd, tasks, outcome)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd, prioritizeCmd)
}

// loadTasks reads tasks the same way the import endpoint does: records
// missing required fields are skipped.
func loadTasks(path string, now time.Time) ([]task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if data, err = json.Marshal(generic); err != nil {
			return nil, err
		}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse %s: expected an array of tasks: %w", path, err)
	}

	imported, skipped := task.Import(records, now)
	if len(imported) == 0 {
		return nil, task.ErrNoTasks
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "skipped %d invalid task(s)\n", skipped)
	}

	tasks := make([]task.Task, len(imported))
	for i, t := range imported {
		tasks[i] = *t
	}

	return tasks, nil
}

type scoredTask struct {
	Title    string `json:"title"`
	Priority int    `json:"priority"`
	Label    string `json:"label"`
}

type scoreReport struct {
	Source string       `json:"source"`
	Reason string       `json:"reason,omitempty"`
	Tasks  []scoredTask `json:"tasks"`
}

func buildReport(tasks []task.Task, outcome priority.Outcome) scoreReport {
	byID := make(map[string]int, len(outcome.Results))
	for _, r := range outcome.Results {
		byID[r.ID] = r.Priority
	}

	report := scoreReport{
		Source: string(outcome.Source),
		Reason: outcome.Reason,
		Tasks:  make([]scoredTask, 0, len(tasks)),
	}
	for _, t := range tasks {
		p := byID[t.ID]
		report.Tasks = append(report.Tasks, scoredTask{
			Title:    t.Title,
			Priority: p,
			Label:    task.PriorityLabel(&p),
		})
	}

	return report
}

func printOutcome(cmd *cobra.Command, tasks []task.Task, outcome priority.Outcome) error {
	report := buildReport(tasks, outcome)

	format, _ := cmd.Flags().GetString("format")
	if format != "text" {
		return write(cmd.OutOrStdout(), format, report)
	}

	return writeText(cmd.OutOrStdout(), report)
}

func writeText(w io.Writer, report scoreReport) error {
	for _, t := range report.Tasks {
		if _, err := fmt.Fprintf(w, "%3d  %-11s  %s\n", t.Priority, t.Label, t.Title); err != nil {
			return err
		}
	}
	if report.Reason != "" {
		_, err := fmt.Fprintf(w, "\n(%s scores: %s)\n", report.Source, report.Reason)
		return err
	}

	return nil
}
