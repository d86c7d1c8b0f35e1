package runner

import (
	"github.com/jonathan/evobench/internal/impute"
	"github.com/jonathan/evobench/internal/types"
)

// imputedPipeline composes a fitted imputer with a candidate pipeline as a
// two-stage chain, imputer first. The imputer is not refitted: re-evaluation
// runs against the original raw features using the fill values learned during
// the Imputing stage.
type imputedPipeline struct {
	imputer *impute.ColumnImputer
	inner   types.Pipeline
}

// NewImputedPipeline wraps candidate so that every Fit/Predict call first
// passes the features through the fitted imputer.
func NewImputedPipeline(imputer *impute.ColumnImputer, candidate types.Pipeline) types.Pipeline {
	return &imputedPipeline{imputer: imputer, inner: candidate}
}

func (p *imputedPipeline) Fit(features [][]float64, labels []float64) error {
	transformed, err := p.imputer.Transform(features)
	if err != nil {
		return err
	}
	return p.inner.Fit(transformed, labels)
}

func (p *imputedPipeline) Predict(features [][]float64) ([]float64, error) {
	transformed, err := p.imputer.Transform(features)
	if err != nil {
		return nil, err
	}
	return p.inner.Predict(transformed)
}

func (p *imputedPipeline) Spec() *types.PipelineNode {
	return &types.PipelineNode{
		Name: "Preprocessing",
		Children: []*types.PipelineNode{
			{Name: "columnImputer"},
			p.inner.Spec(),
		},
	}
}
