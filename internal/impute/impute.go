// Package impute fills missing feature values (NaN cells) before fitting.
// Numerical columns are filled with the column mean, categorical columns with
// the column median, mirroring the usual tabular preprocessing contract.
package impute

import (
	"fmt"
	"math"
	"sort"
)

// Strategy selects how a SimpleImputer computes its fill value.
type Strategy string

const (
	// StrategyMean fills gaps with the mean of the observed values.
	StrategyMean Strategy = "mean"
	// StrategyMedian fills gaps with the median of the observed values.
	StrategyMedian Strategy = "median"
)

// SimpleImputer computes one fill value per assigned column and substitutes it
// for NaN cells. It must be fitted before Transform.
type SimpleImputer struct {
	Strategy Strategy

	fill   []float64
	fitted bool
}

// NewSimpleImputer returns an unfitted imputer with the given strategy.
func NewSimpleImputer(strategy Strategy) *SimpleImputer {
	return &SimpleImputer{Strategy: strategy}
}

// Fit computes the per-column fill values over the given columns of X.
// A column with no observed values cannot be filled and is an error.
func (si *SimpleImputer) Fit(features [][]float64, columns []int) error {
	si.fill = make([]float64, len(columns))

	for i, col := range columns {
		observed := make([]float64, 0, len(features))
		for _, row := range features {
			if !math.IsNaN(row[col]) {
				observed = append(observed, row[col])
			}
		}
		if len(observed) == 0 {
			return fmt.Errorf("imputer (%s): column %d has no observed values", si.Strategy, col)
		}

		switch si.Strategy {
		case StrategyMean:
			si.fill[i] = mean(observed)
		case StrategyMedian:
			si.fill[i] = median(observed)
		default:
			return fmt.Errorf("imputer: unknown strategy %q", si.Strategy)
		}
	}

	si.fitted = true
	return nil
}

// FillValue returns the fitted fill value for the i-th assigned column.
func (si *SimpleImputer) FillValue(i int) float64 {
	return si.fill[i]
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ColumnImputer is the composite transformer built from a categorical mask:
// mean imputation over the numerical columns, median imputation over the
// categorical ones. Its output lays out the numerical block first, then the
// categorical block; callers must rely on that contract rather than on
// positional identity with the input.
type ColumnImputer struct {
	numerical   []int
	categorical []int

	meanImputer   *SimpleImputer
	medianImputer *SimpleImputer
	fitted        bool
}

// NewColumnImputer partitions the columns of the mask into numerical and
// categorical index sets, preserving mask order within each set.
func NewColumnImputer(categoricalMask []bool) *ColumnImputer {
	ci := &ColumnImputer{
		meanImputer:   NewSimpleImputer(StrategyMean),
		medianImputer: NewSimpleImputer(StrategyMedian),
	}
	for i, isCategorical := range categoricalMask {
		if isCategorical {
			ci.categorical = append(ci.categorical, i)
		} else {
			ci.numerical = append(ci.numerical, i)
		}
	}
	return ci
}

// NumericalColumns returns the input indices of the numerical columns.
func (ci *ColumnImputer) NumericalColumns() []int { return ci.numerical }

// CategoricalColumns returns the input indices of the categorical columns.
func (ci *ColumnImputer) CategoricalColumns() []int { return ci.categorical }

// OutputCols returns the column count of transformed output.
func (ci *ColumnImputer) OutputCols() int { return len(ci.numerical) + len(ci.categorical) }

// Fit computes the fill values for both blocks.
func (ci *ColumnImputer) Fit(features [][]float64) error {
	if err := ci.meanImputer.Fit(features, ci.numerical); err != nil {
		return err
	}
	if err := ci.medianImputer.Fit(features, ci.categorical); err != nil {
		return err
	}
	ci.fitted = true
	return nil
}

// Transform produces the filled matrix: numerical block columns first, in mask
// order, then the categorical block.
func (ci *ColumnImputer) Transform(features [][]float64) ([][]float64, error) {
	if !ci.fitted {
		return nil, fmt.Errorf("column imputer is not fitted")
	}

	out := make([][]float64, len(features))
	for r, row := range features {
		outRow := make([]float64, 0, ci.OutputCols())
		for i, col := range ci.numerical {
			v := row[col]
			if math.IsNaN(v) {
				v = ci.meanImputer.FillValue(i)
			}
			outRow = append(outRow, v)
		}
		for i, col := range ci.categorical {
			v := row[col]
			if math.IsNaN(v) {
				v = ci.medianImputer.FillValue(i)
			}
			outRow = append(outRow, v)
		}
		out[r] = outRow
	}
	return out, nil
}

// FitTransform fits the imputer and transforms the same matrix.
func (ci *ColumnImputer) FitTransform(features [][]float64) ([][]float64, error) {
	if err := ci.Fit(features); err != nil {
		return nil, err
	}
	return ci.Transform(features)
}
