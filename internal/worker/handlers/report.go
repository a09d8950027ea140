package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nadmax/planwise/internal/queue"
	"github.com/nadmax/planwise/internal/repository"
)

type ReportPayload struct {
	ReportType string `json:"report_type"`
	Hours      int    `json:"hours"`
	Limit      int    `json:"limit"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
}

// ReportGenerator exports prioritization run history to CSV or JSON files.
type ReportGenerator struct {
	runs   repository.RunRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewReportGenerator(runs repository.RunRepository, logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ReportGenerator{runs: runs, logger: logger, now: time.Now}
}

func (rg *ReportGenerator) RunReportHandler(ctx context.Context, job *queue.Job) error {
	payload, err := parsePayload(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	var data [][]string
	switch payload.ReportType {
	case "run_summary":
		data, err = rg.runSummary(ctx, payload.Hours)
	case "recent_runs":
		data, err = rg.recentRuns(ctx, payload.Limit)
	default:
		return fmt.Errorf("unsupported report type: %s (available: run_summary, recent_runs)", payload.ReportType)
	}
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputFile, err := rg.saveReport(payload, data)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	rg.logger.Info("report generated",
		zap.String("job_id", job.ID),
		zap.String("file", outputFile),
		zap.Int("rows", len(data)-1),
	)
	return nil
}

func parsePayload(payload map[string]any) (*ReportPayload, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var rp ReportPayload
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}

	if rp.ReportType == "" {
		return nil, errors.New("missing required field: report_type")
	}
	if rp.OutputPath == "" {
		rp.OutputPath = "./reports"
	}
	if rp.Format == "" {
		rp.Format = "csv"
	}

	return &rp, nil
}

func (rg *ReportGenerator) runSummary(ctx context.Context, hours int) ([][]string, error) {
	stats, err := rg.runs.RunStats(ctx, hours)
	if err != nil {
		return nil, err
	}

	data := [][]string{
		{"Source", "Runs", "Tasks", "Avg Duration (ms)", "Max Duration (ms)"},
	}
	for _, s := range stats {
		data = append(data, []string{
			s.Source,
			strconv.Itoa(s.Runs),
			strconv.Itoa(s.Tasks),
			strconv.FormatFloat(s.AvgDurationMs, 'f', 0, 64),
			strconv.Itoa(s.MaxDurationMs),
		})
	}

	return data, nil
}

func (rg *ReportGenerator) recentRuns(ctx context.Context, limit int) ([][]string, error) {
	runs, err := rg.runs.RecentRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	data := [][]string{
		{"Run ID", "Source", "Tasks", "Duration (ms)", "Reason", "Created At"},
	}
	for _, r := range runs {
		data = append(data, []string{
			r.ID,
			r.Source,
			strconv.Itoa(r.TaskCount),
			strconv.Itoa(r.DurationMs),
			r.Reason,
			r.CreatedAt.Format(time.RFC3339),
		})
	}

	return data, nil
}

func (rg *ReportGenerator) saveReport(payload *ReportPayload, data [][]string) (string, error) {
	if err := os.MkdirAll(payload.OutputPath, 0o755); err != nil {
		return "", err
	}

	timestamp := rg.now().Format("20060102_150405")
	filename := fmt.Sprintf("planwise_%s_%s.%s", payload.ReportType, timestamp, payload.Format)
	fullPath := filepath.Join(payload.OutputPath, filename)

	switch payload.Format {
	case "csv":
		return fullPath, saveAsCSV(fullPath, data)
	case "json":
		return fullPath, saveAsJSON(fullPath, data, rg.now())
	default:
		return "", fmt.Errorf("unsupported format: %s", payload.Format)
	}
}

func saveAsCSV(path string, data [][]string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(data); err != nil {
		return err
	}

	return writer.Error()
}

func saveAsJSON(path string, data [][]string, generatedAt time.Time) (err error) {
	headers := data[0]
	records := make([]map[string]string, 0, len(data)-1)
	for _, row := range data[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}
		records = append(records, record)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"generated_at": generatedAt.Format(time.RFC3339),
		"data":         records,
		"total_rows":   len(records),
	})
}
