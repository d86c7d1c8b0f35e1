// Package types provides type definitions for structured data used throughout the evobench harness.
package types

import (
	"fmt"
	"math"
)

// Dataset holds the tabular data behind a benchmark task: a feature matrix,
// a label vector aligned by row index, and a per-column categorical mask.
// Missing feature values are represented as NaN.
type Dataset struct {
	Name        string      `json:"name"`
	Features    [][]float64 `json:"-"`
	Labels      []float64   `json:"-"`
	Categorical []bool      `json:"categorical"`
}

// Rows returns the number of rows in the feature matrix.
func (d *Dataset) Rows() int {
	return len(d.Features)
}

// Cols returns the number of feature columns. Zero for an empty matrix.
func (d *Dataset) Cols() int {
	if len(d.Features) == 0 {
		return 0
	}
	return len(d.Features[0])
}

// Validate checks the structural invariants of the dataset: the categorical
// mask covers every column, every row has the same width, and the label
// vector is aligned with the feature rows.
func (d *Dataset) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dataset has no name")
	}

	cols := d.Cols()
	if len(d.Categorical) != cols {
		return fmt.Errorf("dataset %s: categorical mask has %d entries for %d columns", d.Name, len(d.Categorical), cols)
	}

	for i, row := range d.Features {
		if len(row) != cols {
			return fmt.Errorf("dataset %s: row %d has %d columns, expected %d", d.Name, i, len(row), cols)
		}
	}

	if len(d.Labels) != len(d.Features) {
		return fmt.Errorf("dataset %s: %d labels for %d rows", d.Name, len(d.Labels), len(d.Features))
	}

	for i, y := range d.Labels {
		if math.IsNaN(y) {
			return fmt.Errorf("dataset %s: label %d is missing", d.Name, i)
		}
	}

	return nil
}
