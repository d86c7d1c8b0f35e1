package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/jonathan/evobench/internal/types"
)

// holdoutFraction is the portion of rows reserved for held-out scoring.
const holdoutFraction = 0.33

// splitSeed fixes the train/test shuffle so repeated runs of the same task
// score against the same split.
const splitSeed = 42

// MemoryCatalog is an in-memory catalog over registered datasets. Task
// identifiers are assigned in registration order starting at 1.
type MemoryCatalog struct {
	tasks  map[int64]*memoryTask
	suites map[string][]int64
	nextID int64
}

// NewMemoryCatalog returns an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		tasks:  make(map[int64]*memoryTask),
		suites: make(map[string][]int64),
		nextID: 1,
	}
}

// AddDataset registers a dataset under the named suite and returns the new
// task's identifier.
func (c *MemoryCatalog) AddDataset(suite string, dataset *types.Dataset) (int64, error) {
	if err := dataset.Validate(); err != nil {
		return 0, err
	}
	id := c.nextID
	c.nextID++
	c.tasks[id] = &memoryTask{id: id, dataset: dataset}
	c.suites[suite] = append(c.suites[suite], id)
	return id, nil
}

// Suite implements Catalog.
func (c *MemoryCatalog) Suite(_ context.Context, name string) ([]int64, error) {
	ids, ok := c.suites[name]
	if !ok {
		known := make([]string, 0, len(c.suites))
		for k := range c.suites {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown benchmark suite %q (known: %v)", name, known)
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return out, nil
}

// Task implements Catalog.
func (c *MemoryCatalog) Task(_ context.Context, id int64) (Task, error) {
	task, ok := c.tasks[id]
	if !ok {
		return nil, fmt.Errorf("unknown task %d", id)
	}
	return task, nil
}

type memoryTask struct {
	id      int64
	dataset *types.Dataset
}

func (t *memoryTask) ID() int64 { return t.id }

func (t *memoryTask) Dataset(_ context.Context) (*types.Dataset, error) {
	return t.dataset, nil
}

// Run fits the pipeline on a shuffled train split and scores the held-out
// remainder. The split is deterministic per task.
func (t *memoryTask) Run(ctx context.Context, pipeline types.Pipeline, opts RunOptions) (RunArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := t.dataset
	n := d.Rows()
	if n < 2 {
		return nil, fmt.Errorf("task %d: dataset %s too small to split", t.id, d.Name)
	}

	perm := rand.New(rand.NewSource(splitSeed)).Perm(n)
	holdout := int(float64(n) * holdoutFraction)
	if holdout == 0 {
		holdout = 1
	}

	trainX := make([][]float64, 0, n-holdout)
	trainY := make([]float64, 0, n-holdout)
	testX := make([][]float64, 0, holdout)
	testY := make([]float64, 0, holdout)
	for i, row := range perm {
		if i < holdout {
			testX = append(testX, d.Features[row])
			testY = append(testY, d.Labels[row])
		} else {
			trainX = append(trainX, d.Features[row])
			trainY = append(trainY, d.Labels[row])
		}
	}

	if err := pipeline.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("task %d: pipeline fit failed: %w", t.id, err)
	}
	predictions, err := pipeline.Predict(testX)
	if err != nil {
		return nil, fmt.Errorf("task %d: pipeline predict failed: %w", t.id, err)
	}

	return &memoryRun{
		taskID:      t.id,
		dataset:     d.Name,
		opts:        opts,
		truth:       testY,
		predictions: predictions,
	}, nil
}

type memoryRun struct {
	taskID      int64
	dataset     string
	opts        RunOptions
	truth       []float64
	predictions []float64
}

// ToFilesystem writes a run description and the held-out predictions.
func (r *memoryRun) ToFilesystem(dir string) error {
	description := fmt.Sprintf(
		"task: %d\ndataset: %s\navoid_duplicates: %t\nupload_flow: %t\nholdout_rows: %d\n",
		r.taskID, r.dataset, r.opts.AvoidDuplicates, r.opts.UploadFlow, len(r.truth),
	)
	if err := os.WriteFile(filepath.Join(dir, "description.txt"), []byte(description), 0o644); err != nil {
		return fmt.Errorf("failed to write run description: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "predictions.csv"))
	if err != nil {
		return fmt.Errorf("failed to create predictions file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"row", "truth", "prediction"}); err != nil {
		return err
	}
	for i := range r.truth {
		record := []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%g", r.truth[i]),
			fmt.Sprintf("%g", r.predictions[i]),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Metric applies fn to the held-out truth and predictions.
func (r *memoryRun) Metric(fn MetricFunc) (float64, error) {
	if len(r.truth) != len(r.predictions) {
		return 0, fmt.Errorf("run has %d predictions for %d rows", len(r.predictions), len(r.truth))
	}
	return fn(r.truth, r.predictions), nil
}
