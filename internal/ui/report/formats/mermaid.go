package formats

import (
	"fmt"
	"strings"

	"codeflow/internal/engine/graph"
)

var mermaidClassStyles = []struct {
	class graph.Classification
	name  string
	style string
}{
	{graph.Main, "mainNode", "fill:#fde047,stroke:#854d0e,stroke-width:2px,color:#000000"},
	{graph.Local, "customNode", "fill:#fca5a5,stroke:#991b1b,stroke-width:1px,color:#000000"},
	{graph.KnownExternal, "prebuiltNode", "fill:#86efac,stroke:#166534,stroke-width:1px,color:#000000"},
	{graph.Unknown, "unknownNode", "fill:#d8b4fe,stroke:#6b21a8,stroke-width:1px,color:#000000"},
}

// Mermaid renders the dependency graph as a flowchart. Nodes keep discovery
// order and edges carry the same abbreviated labels as the DOT output.
func Mermaid(g *graph.DependencyGraph) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	nodes := g.Nodes()
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.ID)
	}
	ids := makeIDs(names)

	for _, n := range nodes {
		if n.Classification == graph.Main {
			b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[n.ID], escapeLabel(nodeLabel(n))))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s([\"%s\"])\n", ids[n.ID], escapeLabel(nodeLabel(n))))
	}

	edges := g.Edges()
	if len(edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range edges {
		b.WriteString(fmt.Sprintf("  %s -->|\"%s\"| %s\n", ids[e.From], escapeLabel(g.EdgeLabel(e)), ids[e.To]))
	}

	b.WriteString("\n")
	for _, cs := range mermaidClassStyles {
		var members []string
		for _, n := range nodes {
			if n.Classification == cs.class {
				members = append(members, ids[n.ID])
			}
		}
		b.WriteString(fmt.Sprintf("  classDef %s %s;\n", cs.name, cs.style))
		if len(members) > 0 {
			b.WriteString(fmt.Sprintf("  class %s %s;\n", strings.Join(members, ","), cs.name))
		}
	}
	return b.String()
}
