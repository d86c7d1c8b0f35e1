// Package sampling decides how much of a dataset the fitness evaluator may use
// per evaluation, as a function of dataset shape. Subsampling keeps evaluation
// cost roughly constant across the benchmark suite.
package sampling

// HeuristicSampleSize returns the fraction of rows the evaluator should sample
// per fitness evaluation, in (0, 1]. Rules are evaluated top to bottom; the
// first match wins. Pure and deterministic.
func HeuristicSampleSize(rows, cols int) float64 {
	// 'small' datasets are used whole
	if rows*cols < 10000 {
		return 1.0
	}

	if rows < 1000 {
		return 0.5
	}

	if rows < 5000 {
		return 0.25
	}

	if rows < 10000 {
		return 0.1
	}

	if rows < 20000 {
		return 0.05
	}

	if cols < 10 {
		return 0.02
	}

	return 0.01
}
