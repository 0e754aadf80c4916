package formats

import (
	"fmt"
	"strings"

	"codeflow/internal/engine/graph"
)

// TSV lists edges in discovery order with both endpoints' classifications.
func TSV(g *graph.DependencyGraph) string {
	var buf strings.Builder
	buf.WriteString("From\tTo\tFromClass\tToClass\n")

	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\n",
			e.From, e.To, from.Classification, to.Classification))
	}
	return buf.String()
}
