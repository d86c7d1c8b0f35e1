package types

import "fmt"

// Pipeline is an opaque, independently re-fittable transformation-plus-estimator
// chain produced by the search engine. Implementations live outside the harness;
// the harness only fits, predicts, and describes them.
type Pipeline interface {
	Fit(features [][]float64, labels []float64) error
	Predict(features [][]float64) ([]float64, error)

	// Spec returns the structural description of the pipeline, used for
	// diagram rendering and serialization. The returned tree is owned by
	// the pipeline and must not be mutated.
	Spec() *PipelineNode
}

// PipelineNode is one node of a pipeline's structural description. Candidate
// pipelines are trees: inner nodes are ensembles or transformer chains, leaves
// are base estimators.
type PipelineNode struct {
	Name     string            `json:"name"`
	Params   map[string]string `json:"params,omitempty"`
	Children []*PipelineNode   `json:"children,omitempty"`
}

// Height returns the height of the subtree rooted at n. A leaf has height 1.
func (n *PipelineNode) Height() int {
	if n == nil {
		return 0
	}
	max := 0
	for _, c := range n.Children {
		if h := c.Height(); h > max {
			max = h
		}
	}
	return max + 1
}

// Individual wraps a candidate pipeline together with the fitness value the
// search engine assigned to it.
type Individual struct {
	Pipeline Pipeline
	Fitness  float64
}

// String renders the individual for fitness listings.
func (ind Individual) String() string {
	name := "<nil>"
	if ind.Pipeline != nil && ind.Pipeline.Spec() != nil {
		name = ind.Pipeline.Spec().Name
	}
	return fmt.Sprintf("%s (fitness %v)", name, ind.Fitness)
}
