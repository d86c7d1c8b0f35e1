package db

import (
	"time"

	"github.com/google/uuid"
)

// TaskRun represents one benchmark task run record
type TaskRun struct {
	ID          uuid.UUID  `json:"id"`
	TaskID      int64      `json:"task_id"`
	Dataset     string     `json:"dataset"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusTimedOut  = "timed_out"
	StatusFailed    = "failed"
)

// Artifact name constants for known artifact types
const (
	ArtifactLogbook    = "logbook"
	ArtifactFitness    = "ind_fitness"
	ArtifactElapsed    = "elapsed_time"
	ArtifactAccuracy   = "accuracy_scores"
	ArtifactRunSummary = "run_summary"
)
