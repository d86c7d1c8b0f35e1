// Package recording persists the evidence of one task run: the generation
// history, the evolution plot, and the top-ranked candidate artifacts. A
// partially written run directory is distinguishable from a complete one by
// its contents.
package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/evobench/internal/evolve"
)

// TopK is how many ranked candidates are persisted and re-evaluated per task.
const TopK = 5

// Recorder writes the artifacts of completed fits under per-task output
// directories.
type Recorder struct {
	Plot PlotConfig
}

// NewRecorder returns a recorder with the default plot configuration.
func NewRecorder() *Recorder {
	return &Recorder{Plot: DefaultPlotConfig()}
}

// Record writes all artifacts for one completed fit into dir: logbook.txt,
// result.png, ind-fitness.txt, and per-candidate graph/pipeline files for the
// top-ranked candidates. Candidate artifacts are written concurrently.
func (r *Recorder) Record(dir string, record *evolve.EvolutionRecord) error {
	if record == nil || record.Logbook == nil {
		return fmt.Errorf("cannot record an empty evolution record")
	}

	logbookPath := filepath.Join(dir, "logbook.txt")
	if err := os.WriteFile(logbookPath, []byte(record.Logbook.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write logbook: %w", err)
	}

	if err := ExportPlot(record.Logbook, r.Plot, filepath.Join(dir, "result.png")); err != nil {
		return err
	}

	best := record.Best
	if len(best) > TopK {
		best = best[:TopK]
	}

	var fitness strings.Builder
	for i, ind := range best {
		fitness.WriteString(fmt.Sprintf("Individual %d: Score %v\n", i, ind.Fitness))
	}
	if err := os.WriteFile(filepath.Join(dir, "ind-fitness.txt"), []byte(fitness.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write fitness listing: %w", err)
	}

	var g errgroup.Group
	for i, ind := range best {
		g.Go(func() error {
			if err := ExportGraph(ind.Pipeline.Spec(), filepath.Join(dir, fmt.Sprintf("graph%d.png", i))); err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}
			if err := SerializePipeline(ind.Pipeline.Spec(), filepath.Join(dir, fmt.Sprintf("pipeline%d.gob", i))); err != nil {
				return fmt.Errorf("candidate %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// WriteElapsed writes the wall-clock fit time of the task as plain text.
func WriteElapsed(dir string, elapsed time.Duration) error {
	line := fmt.Sprintf("Elapsed time: %v\n", elapsed.Seconds())
	if err := os.WriteFile(filepath.Join(dir, "time.txt"), []byte(line), 0o644); err != nil {
		return fmt.Errorf("failed to write elapsed time: %w", err)
	}
	return nil
}

// WriteAccuracy writes a held-out accuracy score as plain text.
func WriteAccuracy(dir string, score float64) error {
	line := fmt.Sprintf("%v\n", score)
	if err := os.WriteFile(filepath.Join(dir, "accuracy-score.txt"), []byte(line), 0o644); err != nil {
		return fmt.Errorf("failed to write accuracy score: %w", err)
	}
	return nil
}
