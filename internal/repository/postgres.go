package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const createRunsTable = `
	CREATE TABLE IF NOT EXISTS prioritization_runs (
		run_id      TEXT PRIMARY KEY,
		source      TEXT NOT NULL,
		task_count  INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		reason      TEXT,
		created_at  TIMESTAMPTZ NOT NULL
	)
`

type PostgresRunRepository struct {
	db *sql.DB
}

func NewPostgresRunRepository(connectionString string) (*PostgresRunRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	repo := &PostgresRunRepository{db: db}
	if err := repo.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *PostgresRunRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRunsTable); err != nil {
		return fmt.Errorf("failed to create prioritization_runs table: %w", err)
	}

	return nil
}

func (r *PostgresRunRepository) SaveRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO prioritization_runs (
			run_id, source, task_count, duration_ms, reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	var reason any
	if run.Reason != "" {
		reason = run.Reason
	}

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.Source,
		run.TaskCount,
		run.DurationMs,
		reason,
		run.CreatedAt,
	)

	return err
}

func (r *PostgresRunRepository) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT run_id, source, task_count, duration_ms, reason, created_at
		FROM prioritization_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var reason sql.NullString
		if err := rows.Scan(&run.ID, &run.Source, &run.TaskCount, &run.DurationMs, &reason, &run.CreatedAt); err != nil {
			return nil, err
		}
		run.Reason = reason.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *PostgresRunRepository) RunStats(ctx context.Context, hours int) ([]RunStats, error) {
	if hours <= 0 {
		hours = 24
	}

	query := `
		SELECT source,
		       COUNT(*) AS runs,
		       COALESCE(SUM(task_count), 0) AS tasks,
		       COALESCE(AVG(duration_ms), 0) AS avg_duration_ms,
		       COALESCE(MAX(duration_ms), 0) AS max_duration_ms
		FROM prioritization_runs
		WHERE created_at > NOW() - ($1 || ' hours')::INTERVAL
		GROUP BY source
		ORDER BY source
	`

	rows, err := r.db.QueryContext(ctx, query, hours)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	stats := []RunStats{}
	for rows.Next() {
		var s RunStats
		if err := rows.Scan(&s.Source, &s.Runs, &s.Tasks, &s.AvgDurationMs, &s.MaxDurationMs); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (r *PostgresRunRepository) Close() error {
	return r.db.Close()
}
