// Package report renders analysis results for people: the detailed
// dependency listing, the console summary and Markdown diagram injection.
package report

import (
	"bufio"
	"fmt"
	"io"

	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/store"
)

// Source is what the report reads from the dependency store.
type Source interface {
	Summary() store.Summary
	GetFileIOOperations(relPath string) []string
}

const closingRule = "---------------------------"

// WriteDetailedDependencies writes the detailed dependency listing for the
// graph rooted at mainFile. Relationships appear in edge discovery order.
func WriteDetailedDependencies(w io.Writer, g *graph.DependencyGraph, src Source, mainFile string) error {
	bw := bufio.NewWriter(w)

	total := g.NodeCount() - 1
	if total < 0 {
		total = 0
	}
	fmt.Fprintln(bw, "--- Detailed Dependencies ---")
	fmt.Fprintf(bw, "Main File: %s\n", mainFile)
	fmt.Fprintf(bw, "Total Dependencies: %d\n\n", total)

	summary := src.Summary()
	fmt.Fprintln(bw, "--- Analysis Summary ---")
	fmt.Fprintf(bw, "Total files analyzed: %d\n", summary.TotalFiles)
	fmt.Fprintf(bw, "Total imports found: %d\n", summary.TotalImports)
	fmt.Fprintf(bw, "Total I/O operations: %d\n", summary.TotalIOOperations)
	fmt.Fprintf(bw, "Total lines of code: %d\n\n", summary.TotalLines)

	fmt.Fprintln(bw, "--- Dependency Relationships ---")
	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		fmt.Fprintf(bw, "%s depends on %s (%s)\n", from.DisplayName, to.DisplayName, to.Classification.ReportWord())
	}

	if ops := src.GetFileIOOperations(mainFile); len(ops) > 0 {
		fmt.Fprintf(bw, "\n--- I/O Operations in %s ---\n", mainFile)
		for _, op := range ops {
			fmt.Fprintln(bw, op)
		}
	}

	fmt.Fprintln(bw, closingRule)
	return bw.Flush()
}
