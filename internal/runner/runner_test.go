package runner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/evobench/internal/bench"
	"github.com/jonathan/evobench/internal/evolve"
	"github.com/jonathan/evobench/internal/impute"
	"github.com/jonathan/evobench/internal/recording"
	"github.com/jonathan/evobench/internal/types"
)

// constantPipeline predicts a fixed label and carries a small spec tree.
type constantPipeline struct {
	label float64
	name  string
}

func (p *constantPipeline) Fit(_ [][]float64, _ []float64) error { return nil }

func (p *constantPipeline) Predict(features [][]float64) ([]float64, error) {
	out := make([]float64, len(features))
	for i := range out {
		out[i] = p.label
	}
	return out, nil
}

func (p *constantPipeline) Spec() *types.PipelineNode {
	return &types.PipelineNode{Name: p.name, Children: []*types.PipelineNode{{Name: "constant"}}}
}

// fakeClassifier is a canned search engine: Fit sleeps or fails on demand and
// the logbook and candidates are fixed.
type fakeClassifier struct {
	fitDelay   time.Duration
	fitErr     error
	candidates int

	gotFeatures [][]float64
	gotLabels   []float64
}

func (c *fakeClassifier) Fit(features [][]float64, labels []float64) error {
	if c.fitDelay > 0 {
		time.Sleep(c.fitDelay)
	}
	c.gotFeatures = features
	c.gotLabels = labels
	return c.fitErr
}

func (c *fakeClassifier) Logbook() *evolve.Logbook {
	lb := evolve.NewLogbook()
	for gen := 0; gen < 2; gen++ {
		lb.Append(gen, map[string]map[string]float64{
			evolve.ChapterScore:     {evolve.StatMax: 0.8, evolve.StatAvg: 0.6},
			evolve.ChapterTestScore: {evolve.StatMax: 0, evolve.StatAvg: 0},
		})
	}
	return lb
}

func (c *fakeClassifier) BestIndividuals(n int) []types.Individual {
	count := c.candidates
	if count > n {
		count = n
	}
	out := make([]types.Individual, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, types.Individual{
			Pipeline: &constantPipeline{label: 1, name: fmt.Sprintf("candidate%d", i)},
			Fitness:  0.9 - float64(i)*0.1,
		})
	}
	return out
}

func testTask(t *testing.T) bench.Task {
	t.Helper()
	d := &types.Dataset{Name: "unit-ds", Categorical: []bool{false, true}}
	for i := 0; i < 30; i++ {
		x := float64(i)
		if i == 3 {
			x = math.NaN()
		}
		d.Features = append(d.Features, []float64{x, float64(i % 2)})
		d.Labels = append(d.Labels, 1)
	}

	catalog := bench.NewMemoryCatalog()
	id, err := catalog.AddDataset("local", d)
	require.NoError(t, err)
	task, err := catalog.Task(context.Background(), id)
	require.NoError(t, err)
	return task
}

func newRunner(clf *fakeClassifier, err error) *TaskRunner {
	return &TaskRunner{
		Factory: func(cfg evolve.ClassifierConfig) (evolve.Classifier, error) {
			if err != nil {
				return nil, err
			}
			return clf, nil
		},
		Recorder: recording.NewRecorder(),
	}
}

func TestTaskRunner_HappyPath(t *testing.T) {
	dir := t.TempDir()
	clf := &fakeClassifier{candidates: 2}
	tr := newRunner(clf, nil)

	err := tr.Run(context.Background(), testTask(t), dir, types.RunConfig{})
	require.NoError(t, err)

	// fit sees the imputed matrix: same rows, NaN filled
	require.Len(t, clf.gotFeatures, 30)
	for _, row := range clf.gotFeatures {
		for _, v := range row {
			assert.False(t, math.IsNaN(v))
		}
	}

	assert.FileExists(t, filepath.Join(dir, "logbook.txt"))
	assert.FileExists(t, filepath.Join(dir, "result.png"))
	assert.FileExists(t, filepath.Join(dir, "ind-fitness.txt"))
	assert.FileExists(t, filepath.Join(dir, "time.txt"))
	for i := 0; i < 2; i++ {
		runDir := filepath.Join(dir, fmt.Sprintf("run%d", i))
		assert.FileExists(t, filepath.Join(runDir, "accuracy-score.txt"))
		assert.FileExists(t, filepath.Join(runDir, "predictions.csv"))
	}

	// every label is 1 and candidates predict 1, so accuracy is perfect
	score, err := os.ReadFile(filepath.Join(dir, "run0", "accuracy-score.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(score))
}

func TestTaskRunner_FitTimeoutWritesNoArtifacts(t *testing.T) {
	dir := t.TempDir()
	clf := &fakeClassifier{candidates: 1, fitDelay: 200 * time.Millisecond}
	tr := newRunner(clf, nil)

	err := tr.Run(context.Background(), testTask(t), dir, types.RunConfig{Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFitTimeout)
	assert.True(t, IsTimeout(err))

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a timed-out task must leave no artifacts")
}

func TestTaskRunner_TaskTimeoutIsDistinct(t *testing.T) {
	dir := t.TempDir()
	clf := &fakeClassifier{candidates: 1, fitDelay: 200 * time.Millisecond}
	tr := newRunner(clf, nil)

	err := tr.Run(context.Background(), testTask(t), dir, types.RunConfig{TaskTimeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskTimeout)
	assert.NotErrorIs(t, err, ErrFitTimeout)
}

func TestTaskRunner_FitFailurePropagates(t *testing.T) {
	fitErr := errors.New("degenerate population")
	clf := &fakeClassifier{candidates: 1, fitErr: fitErr}
	tr := newRunner(clf, nil)

	err := tr.Run(context.Background(), testTask(t), t.TempDir(), types.RunConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, fitErr)
	assert.False(t, IsTimeout(err))
}

func TestTaskRunner_FactoryFailurePropagates(t *testing.T) {
	tr := newRunner(nil, errors.New("engine unavailable"))

	err := tr.Run(context.Background(), testTask(t), t.TempDir(), types.RunConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine unavailable")
}

func TestTaskRunner_CandidateDirCollisionSkipsOnlyThatCandidate(t *testing.T) {
	dir := t.TempDir()
	// run0 already exists from an earlier invocation
	require.NoError(t, os.Mkdir(filepath.Join(dir, "run0"), 0o755))

	clf := &fakeClassifier{candidates: 2}
	tr := newRunner(clf, nil)

	err := tr.Run(context.Background(), testTask(t), dir, types.RunConfig{})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(dir, "run0", "accuracy-score.txt"))
	assert.FileExists(t, filepath.Join(dir, "run1", "accuracy-score.txt"))
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "skipped (timeout)", SkippedTimeout.String())
	assert.Equal(t, "done", Done.String())
}

func TestNewImputedPipeline_TransformsBeforeInner(t *testing.T) {
	d := &types.Dataset{
		Name:        "imp",
		Features:    [][]float64{{1, 0}, {3, 1}, {math.NaN(), 0}},
		Labels:      []float64{0, 1, 0},
		Categorical: []bool{false, true},
	}
	imputer := impute.NewColumnImputer(d.Categorical)
	_, err := imputer.FitTransform(d.Features)
	require.NoError(t, err)

	inner := &recordingPipeline{}
	p := NewImputedPipeline(imputer, inner)
	require.NoError(t, p.Fit(d.Features, d.Labels))

	// the inner pipeline saw the imputed matrix
	assert.Equal(t, 2.0, inner.fitFeatures[2][0])

	spec := p.Spec()
	assert.Equal(t, "Preprocessing", spec.Name)
	require.Len(t, spec.Children, 2)
	assert.Equal(t, "columnImputer", spec.Children[0].Name)
}

// recordingPipeline captures what it was fitted with.
type recordingPipeline struct {
	fitFeatures [][]float64
}

func (p *recordingPipeline) Fit(features [][]float64, _ []float64) error {
	p.fitFeatures = features
	return nil
}

func (p *recordingPipeline) Predict(features [][]float64) ([]float64, error) {
	return make([]float64, len(features)), nil
}

func (p *recordingPipeline) Spec() *types.PipelineNode {
	return &types.PipelineNode{Name: "recorder"}
}
