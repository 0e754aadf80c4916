package formats

import (
	"bytes"
	"fmt"

	"codeflow/internal/engine/graph"

	"github.com/dominikbraun/graph/draw"
)

// DOT renders the dependency graph as Graphviz source. Node color and shape
// come from the classification attributes set by graph.Export.
func DOT(g *graph.DependencyGraph) (string, error) {
	exported, err := g.Export()
	if err != nil {
		return "", fmt.Errorf("export graph: %w", err)
	}
	var buf bytes.Buffer
	err = draw.DOT(exported, &buf,
		draw.GraphAttribute("label", "Main File Dependency Path"),
		draw.GraphAttribute("rankdir", "LR"),
	)
	if err != nil {
		return "", fmt.Errorf("render dot: %w", err)
	}
	return buf.String(), nil
}
