package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDataset() *Dataset {
	return &Dataset{
		Name: "iris-mini",
		Features: [][]float64{
			{5.1, 3.5, 0},
			{4.9, 3.0, 1},
			{6.2, 2.9, 1},
		},
		Labels:      []float64{0, 0, 1},
		Categorical: []bool{false, false, true},
	}
}

func TestDataset_Validate_Valid(t *testing.T) {
	d := validDataset()
	require.NoError(t, d.Validate())
	assert.Equal(t, 3, d.Rows())
	assert.Equal(t, 3, d.Cols())
}

func TestDataset_Validate_MaskLengthMismatch(t *testing.T) {
	d := validDataset()
	d.Categorical = []bool{false, true}

	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "categorical mask")
}

func TestDataset_Validate_RaggedRows(t *testing.T) {
	d := validDataset()
	d.Features[1] = []float64{4.9}

	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestDataset_Validate_LabelCountMismatch(t *testing.T) {
	d := validDataset()
	d.Labels = []float64{0, 1}

	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "labels")
}

func TestDataset_Validate_MissingLabel(t *testing.T) {
	d := validDataset()
	d.Labels[2] = math.NaN()

	err := d.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label 2")
}

func TestDataset_Cols_Empty(t *testing.T) {
	d := &Dataset{Name: "empty"}
	assert.Equal(t, 0, d.Cols())
	assert.Equal(t, 0, d.Rows())
}

func TestPipelineNode_Height(t *testing.T) {
	leaf := &PipelineNode{Name: "gaussianNB"}
	assert.Equal(t, 1, leaf.Height())

	tree := &PipelineNode{
		Name: "ensemble",
		Children: []*PipelineNode{
			{Name: "scaler", Children: []*PipelineNode{{Name: "svc"}}},
			{Name: "dtree"},
		},
	}
	assert.Equal(t, 3, tree.Height())

	var nilNode *PipelineNode
	assert.Equal(t, 0, nilNode.Height())
}

func TestRunConfig_WithDefaults(t *testing.T) {
	cfg := RunConfig{}.WithDefaults()
	assert.Equal(t, 1, cfg.NJobs)
	assert.Equal(t, DefaultMaxHeight, cfg.MaxHeight)

	cfg = RunConfig{NJobs: 4, MaxHeight: 3}.WithDefaults()
	assert.Equal(t, 4, cfg.NJobs)
	assert.Equal(t, 3, cfg.MaxHeight)
}
