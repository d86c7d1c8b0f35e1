// Package suite iterates a benchmark suite and drives the per-task runner,
// skipping tasks whose output directory already exists so an interrupted
// invocation can be resumed by pointing it at the same output root.
package suite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/evobench/internal/bench"
	"github.com/jonathan/evobench/internal/recording"
	"github.com/jonathan/evobench/internal/runner"
	"github.com/jonathan/evobench/internal/types"
)

// Orchestrator processes every task of a named suite sequentially. TaskIDs,
// when non-empty, restricts processing to exactly those identifiers; excluded
// identifiers are skipped before any catalog or filesystem access.
type Orchestrator struct {
	Catalog bench.Catalog
	Runner  *runner.TaskRunner
	Suite   string
	TaskIDs []int64
	OutDir  string
	Config  types.RunConfig
}

// Run iterates the suite. Per-task timeouts and output-directory collisions
// are tolerated and iteration continues; any other task failure aborts the
// whole suite.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output root %s: %w", o.OutDir, err)
	}

	ids, err := o.Catalog.Suite(ctx, o.Suite)
	if err != nil {
		return fmt.Errorf("failed to fetch suite %s: %w", o.Suite, err)
	}

	subset := make(map[int64]bool, len(o.TaskIDs))
	for _, id := range o.TaskIDs {
		subset[id] = true
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(subset) > 0 && !subset[id] {
			continue
		}

		task, err := o.Catalog.Task(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch task %d: %w", id, err)
		}
		dataset, err := task.Dataset(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch dataset for task %d: %w", id, err)
		}

		// directory existence is the resumability marker, one per dataset
		datasetDir := filepath.Join(o.OutDir, dataset.Name)
		state, err := recording.EnsureDir(datasetDir)
		switch state {
		case recording.DirAlreadyExists:
			fmt.Printf("Test directory %s already exists.\n", datasetDir)
			continue
		case recording.DirError:
			return fmt.Errorf("failed to create output directory for task %d: %w", id, err)
		}

		fmt.Printf("Running task %d on dataset %s\n", id, dataset.Name)
		if err := o.Runner.Run(ctx, task, datasetDir, o.Config); err != nil {
			if runner.IsTimeout(err) {
				continue
			}
			return err
		}
	}
	return nil
}
