package bench

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/evobench/internal/types"
)

// LoadCSVDataset reads a dataset from a CSV file. The first row is a header,
// the last column is the label. Cells that parse as numbers become numerical
// features; columns with any non-numeric cell are treated as categorical and
// label-encoded in lexical order. Empty cells and "?" are missing values.
func LoadCSVDataset(path string) (*types.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset CSV %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := records[0]
	rows := records[1:]
	cols := len(header) - 1
	if cols < 1 {
		return nil, fmt.Errorf("dataset %s needs at least one feature column and a label column", path)
	}

	// decide per column whether it is categorical
	categorical := make([]bool, cols)
	for c := 0; c < cols; c++ {
		for _, row := range rows {
			cell := strings.TrimSpace(row[c])
			if cell == "" || cell == "?" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				categorical[c] = true
				break
			}
		}
	}

	// label-encode categorical columns and the label column
	encoders := make([]map[string]float64, cols+1)
	for c := 0; c < cols; c++ {
		if categorical[c] {
			encoders[c] = buildEncoder(rows, c)
		}
	}
	encoders[cols] = buildEncoder(rows, cols)

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	d := &types.Dataset{
		Name:        name,
		Features:    make([][]float64, 0, len(rows)),
		Labels:      make([]float64, 0, len(rows)),
		Categorical: categorical,
	}

	for i, row := range rows {
		if len(row) != cols+1 {
			return nil, fmt.Errorf("dataset %s: row %d has %d cells, expected %d", path, i+1, len(row), cols+1)
		}
		feature := make([]float64, cols)
		for c := 0; c < cols; c++ {
			cell := strings.TrimSpace(row[c])
			switch {
			case cell == "" || cell == "?":
				feature[c] = math.NaN()
			case categorical[c]:
				feature[c] = encoders[c][cell]
			default:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("dataset %s: row %d column %d: %w", path, i+1, c, err)
				}
				feature[c] = v
			}
		}

		label := strings.TrimSpace(row[cols])
		if label == "" || label == "?" {
			return nil, fmt.Errorf("dataset %s: row %d has no label", path, i+1)
		}
		d.Features = append(d.Features, feature)
		d.Labels = append(d.Labels, encoders[cols][label])
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// buildEncoder maps the distinct non-missing values of a column to class codes
// in lexical order.
func buildEncoder(rows [][]string, col int) map[string]float64 {
	distinct := make(map[string]struct{})
	for _, row := range rows {
		cell := strings.TrimSpace(row[col])
		if cell == "" || cell == "?" {
			continue
		}
		distinct[cell] = struct{}{}
	}

	values := make([]string, 0, len(distinct))
	for v := range distinct {
		values = append(values, v)
	}
	sort.Strings(values)

	encoder := make(map[string]float64, len(values))
	for i, v := range values {
		encoder[v] = float64(i)
	}
	return encoder
}

// LoadDirCatalog builds a catalog from every *.csv file in dir, registered
// under the given suite name in file-name order.
func LoadDirCatalog(dir, suite string) (*MemoryCatalog, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan dataset directory %s: %w", dir, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no *.csv datasets found in %s", dir)
	}
	sort.Strings(matches)

	catalog := NewMemoryCatalog()
	for _, path := range matches {
		dataset, err := LoadCSVDataset(path)
		if err != nil {
			return nil, err
		}
		if _, err := catalog.AddDataset(suite, dataset); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
