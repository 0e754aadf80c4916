package report

import (
	"fmt"
	"io"
	"strings"

	"codeflow/internal/engine/store"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Bold(true).
			MarginTop(1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))
)

// Rankings is the subset of the store the summary tables read.
type Rankings interface {
	Summary() store.Summary
	LargestFiles(n int) []store.Ranked
	MostImportedModules(n int) []store.Ranked
	FilesByIOCount(n int) []store.Ranked
}

// SummaryInput collects everything shown on the console after a run.
type SummaryInput struct {
	Store   Rankings
	Top     int
	Skipped []string // "path: reason"
	Cycles  [][]string
	Outputs []string
}

// PrintSummary writes the styled console summary.
func PrintSummary(w io.Writer, in SummaryInput) error {
	var b strings.Builder
	s := in.Store.Summary()

	b.WriteString(titleStyle.Render("Analysis Summary"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Files analyzed:  %d (%d empty)\n", s.TotalFiles, s.EmptyFiles))
	b.WriteString(fmt.Sprintf("  Imports found:   %d\n", s.TotalImports))
	b.WriteString(fmt.Sprintf("  I/O operations:  %d\n", s.TotalIOOperations))
	b.WriteString(fmt.Sprintf("  Lines of code:   %d\n", s.TotalLines))

	writeRanking(&b, "Largest files (lines)", in.Store.LargestFiles(in.Top))
	writeRanking(&b, "Most imported modules (files)", in.Store.MostImportedModules(in.Top))
	writeRanking(&b, "Files by I/O operations", nonZero(in.Store.FilesByIOCount(in.Top)))

	if len(in.Cycles) > 0 {
		b.WriteString(headingStyle.Render("Import cycles"))
		b.WriteString("\n")
		for _, c := range in.Cycles {
			b.WriteString("  ")
			b.WriteString(cycleStyle.Render(strings.Join(c, " <-> ")))
			b.WriteString("\n")
		}
	}

	if len(in.Skipped) > 0 {
		b.WriteString(headingStyle.Render(fmt.Sprintf("Skipped files (%d)", len(in.Skipped))))
		b.WriteString("\n")
		for _, sk := range in.Skipped {
			b.WriteString("  ")
			b.WriteString(warnStyle.Render("!"))
			b.WriteString(" ")
			b.WriteString(sk)
			b.WriteString("\n")
		}
	}

	for _, out := range in.Outputs {
		b.WriteString(successStyle.Render("wrote"))
		b.WriteString(" ")
		b.WriteString(out)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRanking(b *strings.Builder, title string, rows []store.Ranked) {
	b.WriteString(headingStyle.Render(title))
	b.WriteString("\n")
	if len(rows) == 0 {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("(none)"))
		b.WriteString("\n")
		return
	}
	width := 0
	for _, r := range rows {
		if len(r.Name) > width {
			width = len(r.Name)
		}
	}
	for i, r := range rows {
		b.WriteString(fmt.Sprintf("  %2d. %-*s %d\n", i+1, width, r.Name, r.Value))
	}
}

func nonZero(rows []store.Ranked) []store.Ranked {
	out := rows[:0:0]
	for _, r := range rows {
		if r.Value > 0 {
			out = append(out, r)
		}
	}
	return out
}
