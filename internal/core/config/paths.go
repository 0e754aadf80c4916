package config

import (
	"path/filepath"
	"strings"
)

// OutputPaths are the concrete files a run writes. Empty entries are skipped.
type OutputPaths struct {
	Snapshot string
	Report   string
	DOT      string
	Mermaid  string
	TSV      string
	DB       string
}

// ResolveOutputs derives output file paths from the analyzed root and main
// file. Configured names are relative to the output directory unless absolute.
func ResolveOutputs(cfg *Config, root, mainFile string) OutputPaths {
	outDir := filepath.Clean(cfg.Paths.OutputDir)
	stem := fileStem(mainFile)

	out := OutputPaths{
		Snapshot: ResolveRelative(outDir, defaultName(cfg.Output.Snapshot, "dependencies_"+projectName(root)+".json")),
		Report:   ResolveRelative(outDir, defaultName(cfg.Output.Report, "detailed_deps_"+stem+".txt")),
		DOT:      ResolveRelative(outDir, defaultName(cfg.Output.DOT, "graph_"+stem+".dot")),
	}
	if name := strings.TrimSpace(cfg.Output.Mermaid); name != "" {
		out.Mermaid = ResolveRelative(outDir, name)
	}
	if name := strings.TrimSpace(cfg.Output.TSV); name != "" {
		out.TSV = ResolveRelative(outDir, name)
	}
	if cfg.DB.Enabled {
		out.DB = ResolveRelative(outDir, cfg.DB.Path)
	}
	return out
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// ProjectKey names the analyzed codebase in snapshot file names and the archive.
func ProjectKey(cfg *Config, root string) string {
	if key := strings.TrimSpace(cfg.DB.ProjectKey); key != "" {
		return key
	}
	return projectName(root)
}

func projectName(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	name := filepath.Base(filepath.Clean(abs))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "project"
	}
	return strings.ReplaceAll(name, " ", "_")
}

func fileStem(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func defaultName(configured, fallback string) string {
	if name := strings.TrimSpace(configured); name != "" {
		return name
	}
	return fallback
}
