package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codeflow/internal/engine/graph"
	"codeflow/internal/ui/report/formats"
)

// DiagramSection is the generated content kept between a Markdown file's
// codeflow markers: a one-line caption followed by a fenced Mermaid chart.
type DiagramSection struct {
	MainFile string
	Nodes    int
	Edges    int
	Cycles   int
	Mermaid  string
}

func NewDiagramSection(g *graph.DependencyGraph, cycles [][]string) DiagramSection {
	return DiagramSection{
		MainFile: g.Root(),
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
		Cycles:   len(cycles),
		Mermaid:  formats.Mermaid(g),
	}
}

// Render joins the section with newline so it matches the host document.
func (s DiagramSection) Render(newline string) string {
	lines := []string{
		fmt.Sprintf("_Import graph of `%s`: %s, %s, %s._",
			s.MainFile, plural(s.Nodes, "module"), plural(s.Edges, "import"), plural(s.Cycles, "cycle")),
		"",
		"```mermaid",
	}
	if chart := strings.TrimRight(s.Mermaid, "\r\n"); chart != "" {
		for _, line := range strings.Split(chart, "\n") {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	lines = append(lines, "```")
	return strings.Join(lines, newline)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// UpdateMarkdown rewrites the block between the start/end markers named
// marker in the Markdown file at path. Text outside the markers is kept
// byte for byte and the file mode is preserved.
func UpdateMarkdown(path, marker string, section DiagramSection) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat markdown file %q: %w", path, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read markdown file %q: %w", path, err)
	}

	next, err := SpliceSection(string(content), marker, section)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if next == string(content) {
		return nil
	}
	return replaceFile(path, []byte(next), info.Mode().Perm())
}

// SpliceSection returns content with the marked block replaced by section.
// Each marker must appear exactly once, start before end.
func SpliceSection(content, marker string, section DiagramSection) (string, error) {
	bodyStart, bodyEnd, err := markedBody(content, marker)
	if err != nil {
		return "", err
	}
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}
	return content[:bodyStart] + newline + section.Render(newline) + newline + content[bodyEnd:], nil
}

func markerComments(name string) (start, end string) {
	return "<!-- codeflow:" + name + ":start -->", "<!-- codeflow:" + name + ":end -->"
}

// markedBody returns the byte range between the end of the start marker and
// the beginning of the end marker.
func markedBody(content, marker string) (int, int, error) {
	name := strings.TrimSpace(marker)
	if name == "" {
		return 0, 0, fmt.Errorf("markdown marker must not be empty")
	}
	start, end := markerComments(name)
	for _, m := range []string{start, end} {
		if n := strings.Count(content, m); n != 1 {
			return 0, 0, fmt.Errorf("marker %q found %d times, want exactly 1", m, n)
		}
	}
	startIdx := strings.Index(content, start)
	endIdx := strings.Index(content, end)
	if endIdx < startIdx {
		return 0, 0, fmt.Errorf("marker %q ends before it starts", name)
	}
	return startIdx + len(start), endIdx, nil
}

// replaceFile swaps in data through a temp file in the same directory so a
// failed write leaves the original untouched.
func replaceFile(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".codeflow-*")
	if err != nil {
		return fmt.Errorf("create temp file for %q: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %q: %w", tmp.Name(), err)
	}
	if err = tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %q: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %q: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %q: %w", path, err)
	}
	return nil
}
