package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/evobench/internal/evolve"
	"github.com/jonathan/evobench/internal/types"
)

// stubPipeline is a non-runnable pipeline carrying only a structural spec.
type stubPipeline struct {
	spec *types.PipelineNode
}

func (p *stubPipeline) Fit(_ [][]float64, _ []float64) error     { return nil }
func (p *stubPipeline) Predict(x [][]float64) ([]float64, error) { return make([]float64, len(x)), nil }
func (p *stubPipeline) Spec() *types.PipelineNode                { return p.spec }

func sampleRecord(candidates int, testScores bool) *evolve.EvolutionRecord {
	lb := evolve.NewLogbook()
	for gen := 0; gen < 3; gen++ {
		test := 0.0
		if testScores {
			test = 0.6 + float64(gen)*0.1
		}
		lb.Append(gen, map[string]map[string]float64{
			evolve.ChapterScore:     {evolve.StatMax: 0.7 + float64(gen)*0.1, evolve.StatAvg: 0.5},
			evolve.ChapterTestScore: {evolve.StatMax: test, evolve.StatAvg: test / 2},
		})
	}

	rec := &evolve.EvolutionRecord{Logbook: lb}
	for i := 0; i < candidates; i++ {
		rec.Best = append(rec.Best, types.Individual{
			Pipeline: &stubPipeline{spec: &types.PipelineNode{
				Name:   fmt.Sprintf("candidate%d", i),
				Params: map[string]string{"depth": "3"},
				Children: []*types.PipelineNode{
					{Name: "scaler"},
					{Name: "svc", Params: map[string]string{"C": "1.0"}},
				},
			}},
			Fitness: 0.9 - float64(i)*0.05,
		})
	}
	return rec
}

func TestEnsureDir_TriState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	state, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, DirCreated, state)

	state, err = EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, DirAlreadyExists, state)
}

func TestEnsureDir_FileCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	state, err := EnsureDir(path)
	assert.Equal(t, DirError, state)
	assert.Error(t, err)
}

func TestRecorder_WritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	rec := sampleRecord(2, true)

	require.NoError(t, NewRecorder().Record(dir, rec))

	assert.FileExists(t, filepath.Join(dir, "logbook.txt"))
	assert.FileExists(t, filepath.Join(dir, "result.png"))
	assert.FileExists(t, filepath.Join(dir, "ind-fitness.txt"))
	for i := 0; i < 2; i++ {
		assert.FileExists(t, filepath.Join(dir, fmt.Sprintf("graph%d.png", i)))
		assert.FileExists(t, filepath.Join(dir, fmt.Sprintf("pipeline%d.gob", i)))
	}
	assert.NoFileExists(t, filepath.Join(dir, "graph2.png"))

	fitness, err := os.ReadFile(filepath.Join(dir, "ind-fitness.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(fitness), "Individual 0: Score 0.9")

	logbook, err := os.ReadFile(filepath.Join(dir, "logbook.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(logbook), "score.max")
}

func TestRecorder_CapsAtTopK(t *testing.T) {
	dir := t.TempDir()
	rec := sampleRecord(TopK+3, true)

	require.NoError(t, NewRecorder().Record(dir, rec))

	assert.FileExists(t, filepath.Join(dir, fmt.Sprintf("pipeline%d.gob", TopK-1)))
	assert.NoFileExists(t, filepath.Join(dir, fmt.Sprintf("pipeline%d.gob", TopK)))
}

func TestRecorder_EmptyRecordFails(t *testing.T) {
	err := NewRecorder().Record(t.TempDir(), nil)
	assert.Error(t, err)
}

func TestIncludeTestSeries(t *testing.T) {
	withTest := sampleRecord(0, true)
	assert.True(t, IncludeTestSeries(withTest.Logbook))

	// an all-zero test history must be omitted, not drawn as a flat line
	withoutTest := sampleRecord(0, false)
	assert.False(t, IncludeTestSeries(withoutTest.Logbook))
}

func TestExportPlot_OmitsAllZeroTestSeries(t *testing.T) {
	dir := t.TempDir()

	withTest := filepath.Join(dir, "with.png")
	require.NoError(t, ExportPlot(sampleRecord(0, true).Logbook, DefaultPlotConfig(), withTest))

	withoutTest := filepath.Join(dir, "without.png")
	require.NoError(t, ExportPlot(sampleRecord(0, false).Logbook, DefaultPlotConfig(), withoutTest))

	// both render, and the two-series plot carries less legend content
	a, err := os.Stat(withTest)
	require.NoError(t, err)
	b, err := os.Stat(withoutTest)
	require.NoError(t, err)
	assert.Positive(t, a.Size())
	assert.Positive(t, b.Size())
}

func TestSerializePipeline_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.gob")
	spec := &types.PipelineNode{
		Name:   "boost",
		Params: map[string]string{"rounds": "50"},
		Children: []*types.PipelineNode{
			{Name: "stump"},
		},
	}

	require.NoError(t, SerializePipeline(spec, path))

	restored, err := RestorePipeline(path)
	require.NoError(t, err)
	assert.Equal(t, spec, restored)
}

func TestWriteElapsedAndAccuracy(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteElapsed(dir, 1500*time.Millisecond))
	data, err := os.ReadFile(filepath.Join(dir, "time.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Elapsed time: 1.5")

	require.NoError(t, WriteAccuracy(dir, 0.875))
	data, err = os.ReadFile(filepath.Join(dir, "accuracy-score.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0.875\n", string(data))
}
