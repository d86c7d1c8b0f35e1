package recording

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/jonathan/evobench/internal/types"
)

// ExportGraph renders the structural diagram of a candidate pipeline to a PNG.
func ExportGraph(spec *types.PipelineNode, outFile string) error {
	if spec == nil {
		return fmt.Errorf("cannot render a nil pipeline spec")
	}

	ctx := context.Background()
	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create pipeline graph: %w", err)
	}
	graph, err := g.Graph()
	if err != nil {
		return fmt.Errorf("failed to create pipeline graph: %w", err)
	}
	defer func() {
		_ = graph.Close()
		_ = g.Close()
	}()

	nextID := 0
	if _, err := addPipelineNode(graph, spec, &nextID); err != nil {
		return err
	}

	if err := g.RenderFilename(ctx, graph, graphviz.PNG, outFile); err != nil {
		return fmt.Errorf("failed to render pipeline graph: %w", err)
	}
	return nil
}

func addPipelineNode(graph *cgraph.Graph, spec *types.PipelineNode, nextID *int) (*cgraph.Node, error) {
	node, err := graph.CreateNodeByName(fmt.Sprintf("n%d", *nextID))
	if err != nil {
		return nil, fmt.Errorf("failed to create graph node: %w", err)
	}
	*nextID++

	label := spec.Name
	params := make([]string, 0, len(spec.Params))
	for k := range spec.Params {
		params = append(params, k)
	}
	sort.Strings(params)
	for _, k := range params {
		label += fmt.Sprintf("\n%s=%s", k, spec.Params[k])
	}
	node.SetLabel(label)

	for _, child := range spec.Children {
		childNode, err := addPipelineNode(graph, child, nextID)
		if err != nil {
			return nil, err
		}
		if _, err := graph.CreateEdgeByName("", node, childNode); err != nil {
			return nil, fmt.Errorf("failed to create graph edge: %w", err)
		}
	}
	return node, nil
}
