// Package runner processes one benchmark task end to end: load the dataset,
// impute missing values, choose a sample fraction, fit the search engine under
// a deadline, record the results, and re-evaluate the top candidates against
// the catalog.
package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jonathan/evobench/internal/bench"
	"github.com/jonathan/evobench/internal/db"
	"github.com/jonathan/evobench/internal/evolve"
	"github.com/jonathan/evobench/internal/executor"
	"github.com/jonathan/evobench/internal/impute"
	"github.com/jonathan/evobench/internal/observability"
	"github.com/jonathan/evobench/internal/recording"
	"github.com/jonathan/evobench/internal/sampling"
	"github.com/jonathan/evobench/internal/types"
)

// cvFolds is the cross-validation fold count handed to the evaluator.
const cvFolds = 5

// Sentinel errors recovered by the suite orchestrator. Everything else is
// fatal for the task and propagates.
var (
	// ErrFitTimeout means the fit deadline elapsed; the task is skipped
	// with no artifacts written.
	ErrFitTimeout = errors.New("fit timed out")

	// ErrTaskTimeout means the per-task deadline elapsed; all remaining
	// stages are abandoned.
	ErrTaskTimeout = errors.New("task timed out")
)

// IsTimeout reports whether err is one of the recoverable timeout outcomes.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrFitTimeout) || errors.Is(err, ErrTaskTimeout)
}

// Stage names the steps of the per-task state machine.
type Stage int

// Stages, in processing order. SkippedTimeout and Done are terminal.
const (
	Loading Stage = iota
	Imputing
	Sizing
	BoundedFitting
	Recording
	SkippedTimeout
	ReEvaluating
	Done
)

// String implements fmt.Stringer for diagnostics.
func (s Stage) String() string {
	switch s {
	case Loading:
		return "loading"
	case Imputing:
		return "imputing"
	case Sizing:
		return "sizing"
	case BoundedFitting:
		return "fitting"
	case Recording:
		return "recording"
	case SkippedTimeout:
		return "skipped (timeout)"
	case ReEvaluating:
		return "re-evaluating"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// TaskRunner drives the per-task state machine. Store and Printer are
// optional; a nil Store disables database persistence, a nil Printer disables
// verbose output.
type TaskRunner struct {
	Factory  evolve.Factory
	Recorder *recording.Recorder
	Printer  *observability.Printer
	Store    *db.DB
}

// Run processes a single task, writing artifacts into outDir. outDir must
// already exist. The returned error is nil on success, a sentinel timeout
// error on the tolerated paths, and fatal otherwise.
func (tr *TaskRunner) Run(ctx context.Context, task bench.Task, outDir string, cfg types.RunConfig) error {
	cfg = cfg.WithDefaults()

	if cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TaskTimeout)
		defer cancel()
	}

	stage := Loading
	dataset, err := task.Dataset(ctx)
	if err != nil {
		return fmt.Errorf("task %d: %s failed: %w", task.ID(), stage, err)
	}
	if err := dataset.Validate(); err != nil {
		return fmt.Errorf("task %d: %s failed: %w", task.ID(), stage, err)
	}

	runID := tr.createRunRecord(ctx, task.ID(), dataset.Name)

	stage = Imputing
	if err := tr.checkDeadline(ctx, task.ID(), dataset.Name); err != nil {
		return err
	}
	imputer := impute.NewColumnImputer(dataset.Categorical)
	features, err := imputer.FitTransform(dataset.Features)
	if err != nil {
		return tr.fail(runID, fmt.Errorf("task %d on dataset %s: %s failed: %w", task.ID(), dataset.Name, stage, err))
	}

	stage = Sizing
	rows, cols := len(features), imputer.OutputCols()
	sampleFraction := sampling.HeuristicSampleSize(rows, cols)
	if tr.Printer != nil {
		tr.Printer.PrintDataset(dataset, sampleFraction)
	}

	evaluator := evolve.EvaluatorConfig{
		CVFolds:        cvFolds,
		Timeout:        cfg.Timeout,
		PerGen:         false,
		SampleFraction: sampleFraction,
	}

	stage = BoundedFitting
	if err := tr.checkDeadline(ctx, task.ID(), dataset.Name); err != nil {
		return err
	}
	clf, err := tr.Factory(evolve.ClassifierConfig{
		NJobs:     cfg.NJobs,
		Timeout:   cfg.Timeout,
		Evaluator: evaluator,
		MaxHeight: cfg.MaxHeight,
	})
	if err != nil {
		return tr.fail(runID, fmt.Errorf("task %d on dataset %s: building classifier failed: %w", task.ID(), dataset.Name, err))
	}

	labels := dataset.Labels
	future := executor.Go(func() error { return clf.Fit(features, labels) })
	result := future.TryGet(ctx, cfg.Timeout)
	switch result.State {
	case executor.TimedOut:
		// terminal SkippedTimeout: no artifacts, diagnostic only
		stage = SkippedTimeout
		fmt.Printf("Timeout - task %d on dataset %s\n", task.ID(), dataset.Name)
		tr.completeRunRecord(runID, db.StatusTimedOut)
		if ctx.Err() != nil {
			return fmt.Errorf("task %d on dataset %s: %w", task.ID(), dataset.Name, ErrTaskTimeout)
		}
		return fmt.Errorf("task %d on dataset %s: %w", task.ID(), dataset.Name, ErrFitTimeout)
	case executor.Failed:
		return tr.fail(runID, fmt.Errorf("task %d on dataset %s: fit failed: %w", task.ID(), dataset.Name, result.Err))
	}

	stage = Recording
	if err := recording.WriteElapsed(outDir, result.Elapsed); err != nil {
		return tr.fail(runID, fmt.Errorf("task %d on dataset %s: %s failed: %w", task.ID(), dataset.Name, stage, err))
	}
	record := &evolve.EvolutionRecord{
		Logbook: clf.Logbook(),
		Best:    clf.BestIndividuals(recording.TopK),
	}
	if err := tr.Recorder.Record(outDir, record); err != nil {
		return tr.fail(runID, fmt.Errorf("task %d on dataset %s: %s failed: %w", task.ID(), dataset.Name, stage, err))
	}
	if tr.Printer != nil {
		tr.Printer.PrintEvolutionRecord(record)
	}
	tr.saveRecordArtifacts(ctx, runID, record, result.Elapsed.Seconds())

	stage = ReEvaluating
	scores := make(map[string]float64, len(record.Best))
	for i, ind := range record.Best {
		if err := tr.checkDeadline(ctx, task.ID(), dataset.Name); err != nil {
			tr.completeRunRecord(runID, db.StatusTimedOut)
			return err
		}

		subDir := filepath.Join(outDir, fmt.Sprintf("run%d", i))
		state, err := recording.EnsureDir(subDir)
		switch state {
		case recording.DirAlreadyExists:
			// candidate-level resumability: skip just this candidate
			fmt.Printf("Test directory %s already exists.\n", subDir)
			continue
		case recording.DirError:
			return tr.fail(runID, fmt.Errorf("task %d on dataset %s: %s failed: %w", task.ID(), dataset.Name, stage, err))
		}

		pipeline := NewImputedPipeline(imputer, ind.Pipeline)
		run, err := task.Run(ctx, pipeline, bench.RunOptions{AvoidDuplicates: false, UploadFlow: false})
		if err != nil {
			return tr.fail(runID, fmt.Errorf("task %d on dataset %s: re-evaluating candidate %d failed: %w", task.ID(), dataset.Name, i, err))
		}
		if err := run.ToFilesystem(subDir); err != nil {
			return tr.fail(runID, fmt.Errorf("task %d on dataset %s: persisting candidate %d run failed: %w", task.ID(), dataset.Name, i, err))
		}

		score, err := run.Metric(bench.Accuracy)
		if err != nil {
			return tr.fail(runID, fmt.Errorf("task %d on dataset %s: scoring candidate %d failed: %w", task.ID(), dataset.Name, i, err))
		}
		if err := recording.WriteAccuracy(subDir, score); err != nil {
			return tr.fail(runID, fmt.Errorf("task %d on dataset %s: writing candidate %d score failed: %w", task.ID(), dataset.Name, i, err))
		}
		scores[fmt.Sprintf("run%d", i)] = score
	}

	if tr.Store != nil && runID != uuid.Nil {
		_ = tr.Store.SaveArtifact(ctx, runID, db.ArtifactAccuracy, scores)
	}
	tr.completeRunRecord(runID, db.StatusCompleted)
	return nil
}

// checkDeadline converts an expired per-task deadline into the tolerated
// ErrTaskTimeout, emitting the timeout diagnostic.
func (tr *TaskRunner) checkDeadline(ctx context.Context, taskID int64, dataset string) error {
	if ctx.Err() == nil {
		return nil
	}
	fmt.Printf("Timeout - task %d on dataset %s\n", taskID, dataset)
	return fmt.Errorf("task %d on dataset %s: %w", taskID, dataset, ErrTaskTimeout)
}

// createRunRecord opens a database run row. Persistence failures are warnings,
// never run failures.
func (tr *TaskRunner) createRunRecord(ctx context.Context, taskID int64, dataset string) uuid.UUID {
	if tr.Store == nil {
		return uuid.Nil
	}
	runID, err := tr.Store.CreateTaskRun(ctx, taskID, dataset)
	if err != nil {
		fmt.Printf("Warning: failed to record run in database: %v\n", err)
		return uuid.Nil
	}
	return runID
}

func (tr *TaskRunner) completeRunRecord(runID uuid.UUID, status string) {
	if tr.Store == nil || runID == uuid.Nil {
		return
	}
	// complete the row even when the task context expired
	if err := tr.Store.CompleteTaskRun(context.Background(), runID, status); err != nil {
		fmt.Printf("Warning: failed to complete run in database: %v\n", err)
	}
}

func (tr *TaskRunner) saveRecordArtifacts(ctx context.Context, runID uuid.UUID, record *evolve.EvolutionRecord, elapsedSeconds float64) {
	if tr.Store == nil || runID == uuid.Nil {
		return
	}
	_ = tr.Store.SaveTextArtifact(ctx, runID, db.ArtifactLogbook, record.Logbook.String())
	_ = tr.Store.SaveArtifact(ctx, runID, db.ArtifactElapsed, elapsedSeconds)

	fitness := make([]float64, 0, len(record.Best))
	for _, ind := range record.Best {
		fitness = append(fitness, ind.Fitness)
	}
	_ = tr.Store.SaveArtifact(ctx, runID, db.ArtifactFitness, fitness)
}

// fail marks the database run row failed before propagating a fatal error.
func (tr *TaskRunner) fail(runID uuid.UUID, err error) error {
	tr.completeRunRecord(runID, db.StatusFailed)
	return err
}
