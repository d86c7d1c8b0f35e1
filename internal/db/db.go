// Package db provides optional PostgreSQL persistence for benchmark run
// metadata and text artifacts. The filesystem remains the source of truth;
// the database is a queryable mirror and is never required for a run.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateTaskRun creates a new benchmark run record and returns its ID
func (db *DB) CreateTaskRun(ctx context.Context, taskID int64, dataset string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO benchmark_runs (task_id, dataset, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		taskID, dataset,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create task run: %w", err)
	}
	return id, nil
}

// CompleteTaskRun marks a benchmark run as finished with the given status
func (db *DB) CompleteTaskRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE benchmark_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete task run: %w", err)
	}
	return nil
}

// SaveArtifact stores a JSON artifact for a benchmark run
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, name string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, name, content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, name) DO UPDATE SET content = $3, created_at = NOW()`,
		runID, name, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", name, err)
	}
	return nil
}

// SaveTextArtifact stores a text artifact (logbook, fitness listing) for a run
func (db *DB) SaveTextArtifact(ctx context.Context, runID uuid.UUID, name, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_artifacts (run_id, name, text_content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, name) DO UPDATE SET text_content = $3, created_at = NOW()`,
		runID, name, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save text artifact %s: %w", name, err)
	}
	return nil
}

// GetTaskRun retrieves a benchmark run by ID
func (db *DB) GetTaskRun(ctx context.Context, runID uuid.UUID) (*TaskRun, error) {
	var run TaskRun
	err := db.pool.QueryRow(ctx,
		`SELECT id, task_id, dataset, status, created_at, completed_at
		 FROM benchmark_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.TaskID, &run.Dataset, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task run: %w", err)
	}
	return &run, nil
}

// ListTaskRuns retrieves recent benchmark runs
func (db *DB) ListTaskRuns(ctx context.Context, limit int) ([]TaskRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, task_id, dataset, status, created_at, completed_at
		 FROM benchmark_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list task runs: %w", err)
	}
	defer rows.Close()

	var runs []TaskRun
	for rows.Next() {
		var run TaskRun
		if err := rows.Scan(&run.ID, &run.TaskID, &run.Dataset, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
