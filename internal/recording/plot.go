package recording

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/jonathan/evobench/internal/evolve"
)

// PlotConfig is an explicit, per-call rendering configuration. There is no
// process-wide plotting state.
type PlotConfig struct {
	Width  vg.Length
	Height vg.Length
	Title  string
}

// DefaultPlotConfig returns the rendering configuration used for run outputs.
func DefaultPlotConfig() PlotConfig {
	return PlotConfig{Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// ExportPlot renders the evolution plot to outFile: generation on the x-axis,
// training max/avg score always, held-out test max/avg only when at least one
// test sample is non-zero. An all-zero test history means test scoring was
// never populated and drawing it would be a misleading flat line.
func ExportPlot(logbook *evolve.Logbook, cfg PlotConfig, outFile string) error {
	generations := logbook.Generations()

	scoreMax := logbook.Chapter(evolve.ChapterScore).Select(evolve.StatMax)
	scoreAvg := logbook.Chapter(evolve.ChapterScore).Select(evolve.StatAvg)
	testMax := logbook.Chapter(evolve.ChapterTestScore).Select(evolve.StatMax)
	testAvg := logbook.Chapter(evolve.ChapterTestScore).Select(evolve.StatAvg)

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Score"

	series := []interface{}{
		"Maximum Score", linePoints(generations, scoreMax),
		"Average Score", linePoints(generations, scoreAvg),
	}
	if IncludeTestSeries(logbook) {
		series = append(series,
			"Maximum Test score", linePoints(generations, testMax),
			"Average Test score", linePoints(generations, testAvg),
		)
	}

	if err := plotutil.AddLines(p, series...); err != nil {
		return fmt.Errorf("failed to build evolution plot: %w", err)
	}
	if err := p.Save(cfg.Width, cfg.Height, outFile); err != nil {
		return fmt.Errorf("failed to save evolution plot: %w", err)
	}
	return nil
}

// IncludeTestSeries reports whether the held-out test curves should be drawn:
// only when at least one test sample anywhere in the history is non-zero.
func IncludeTestSeries(logbook *evolve.Logbook) bool {
	testMax := logbook.Chapter(evolve.ChapterTestScore).Select(evolve.StatMax)
	testAvg := logbook.Chapter(evolve.ChapterTestScore).Select(evolve.StatAvg)
	return !allZero(testMax) || !allZero(testAvg)
}

func linePoints(generations []int, values []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(values))
	for i, v := range values {
		x := float64(i)
		if i < len(generations) {
			x = float64(generations[i])
		}
		pts = append(pts, plotter.XY{X: x, Y: v})
	}
	return pts
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}
