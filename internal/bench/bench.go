// Package bench declares the benchmark catalog contracts the harness consumes:
// suite lookup, task lookup, and external run-and-score of a pipeline against a
// task. The wire protocol of a hosted catalog is out of scope; the package
// ships an in-memory catalog over locally loaded datasets.
package bench

import (
	"context"

	"github.com/jonathan/evobench/internal/types"
)

// Catalog supplies benchmark suites and tasks.
type Catalog interface {
	// Suite returns the ordered task identifiers of the named suite.
	Suite(ctx context.Context, name string) ([]int64, error)

	// Task returns the task with the given identifier.
	Task(ctx context.Context, id int64) (Task, error)
}

// Task is one benchmark problem. It owns a reference to exactly one dataset
// and can execute a pipeline against itself, producing a scored run artifact.
type Task interface {
	ID() int64

	// Dataset returns the task's dataset. The returned dataset is read-only.
	Dataset(ctx context.Context) (*types.Dataset, error)

	// Run fits the pipeline on the task's training split and scores it on
	// the held-out split.
	Run(ctx context.Context, pipeline types.Pipeline, opts RunOptions) (RunArtifact, error)
}

// RunOptions mirrors the catalog's run flags. The harness disables both for
// offline re-evaluation runs.
type RunOptions struct {
	AvoidDuplicates bool
	UploadFlow      bool
}

// RunArtifact is the persisted evidence of one catalog run.
type RunArtifact interface {
	// ToFilesystem writes the run's artifacts into dir.
	ToFilesystem(dir string) error

	// Metric applies fn to the run's held-out truth and predictions.
	Metric(fn MetricFunc) (float64, error)
}

// MetricFunc scores predictions against ground truth.
type MetricFunc func(yTrue, yPred []float64) float64

// Accuracy is the fraction of predictions matching the true labels.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if i < len(yPred) && yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}
