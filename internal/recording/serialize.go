package recording

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/jonathan/evobench/internal/types"
)

// SerializePipeline writes the structural description of a candidate pipeline
// as a gob stream. The blob is opaque to readers other than RestorePipeline.
func SerializePipeline(spec *types.PipelineNode, path string) error {
	if spec == nil {
		return fmt.Errorf("cannot serialize a nil pipeline spec")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pipeline file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(spec); err != nil {
		return fmt.Errorf("failed to encode pipeline: %w", err)
	}
	return nil
}

// RestorePipeline reads back a pipeline description written by
// SerializePipeline.
func RestorePipeline(path string) (*types.PipelineNode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pipeline file: %w", err)
	}
	defer f.Close()

	var spec types.PipelineNode
	if err := gob.NewDecoder(f).Decode(&spec); err != nil {
		return nil, fmt.Errorf("failed to decode pipeline: %w", err)
	}
	return &spec, nil
}
