package graph

import (
	"sort"

	dgraph "github.com/dominikbraun/graph"
)

// DetectCycles returns every import cycle as a strongly connected component
// of more than one node, plus self-imports. Members are sorted and cycles are
// ordered by their first member.
func (g *DependencyGraph) DetectCycles() ([][]string, error) {
	exported, err := g.Export()
	if err != nil {
		return nil, err
	}
	components, err := dgraph.StronglyConnectedComponents(exported)
	if err != nil {
		return nil, err
	}

	selfLoops := make(map[string]bool)
	for _, e := range g.Edges() {
		if e.From == e.To {
			selfLoops[e.From] = true
		}
	}

	var cycles [][]string
	for _, comp := range components {
		if len(comp) < 2 && !selfLoops[comp[0]] {
			continue
		}
		cycle := append([]string(nil), comp...)
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}
