// Package app wires discovery, analysis, graph resolution and output
// generation into one analysis run.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeflow/internal/core/config"
	"codeflow/internal/core/errors"
	"codeflow/internal/core/ports"
	"codeflow/internal/data/snapshots"
	"codeflow/internal/engine/analyzer"
	"codeflow/internal/engine/catalog"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/parser"
	"codeflow/internal/engine/store"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
)

type App struct {
	Config   *config.Config
	Parser   *parser.Parser
	Modules  *catalog.ModuleCatalog
	analyzer ports.FileAnalyzer
	root     string

	openArchive func(path string) (ports.RunArchive, error)
}

// SkippedFile is a discovered file left out of the store because it failed
// to analyze.
type SkippedFile struct {
	Path   string
	Code   errors.ErrorCode
	Reason string
}

func (s SkippedFile) String() string {
	return s.Path + ": " + s.Reason
}

// Result is everything one run produced.
type Result struct {
	Root     string
	MainFile string
	Store    *store.Store
	Graph    *graph.DependencyGraph
	Skipped  []SkippedFile
	Cycles   [][]string
	Outputs  []string
	RunID    string
	Duration time.Duration
}

// SkippedLines formats skipped files as "path: reason".
func (r *Result) SkippedLines() []string {
	out := make([]string, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		out = append(out, s.String())
	}
	return out
}

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	root, err := filepath.Abs(cfg.Paths.Root)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDiscovery, "resolve root "+cfg.Paths.Root)
	}

	loader, err := parser.NewGrammarLoader(cfg.Analysis.Extensions)
	if err != nil {
		return nil, err
	}
	p := parser.NewParser(loader)

	ioCatalog := catalog.DefaultIOCatalog().With(cfg.Catalog.ExtraIOOperations...)
	modules := catalog.DefaultModuleCatalog()
	modules.AddThirdParty(cfg.Catalog.KnownModules...)
	if libs := strings.TrimSpace(cfg.Catalog.PrebuiltLibsFile); libs != "" {
		n, err := modules.LoadThirdPartyFile(libs)
		if err != nil {
			return nil, fmt.Errorf("load prebuilt libs %q: %w", libs, err)
		}
		if n > 0 {
			slog.Debug("loaded prebuilt libraries", "path", libs, "count", n)
		}
	}

	return &App{
		Config:   cfg,
		Parser:   p,
		Modules:  modules,
		analyzer: analyzer.NewAnalyzer(p, ioCatalog),
		root:     root,
		openArchive: func(path string) (ports.RunArchive, error) {
			s, err := snapshots.Open(path)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	}, nil
}

// Root is the absolute analysis root.
func (a *App) Root() string {
	return a.root
}

// MainFile returns the configured entry file relative to the root, with
// forward slashes. Relative paths are tried against the root first, then
// the working directory.
func (a *App) MainFile() (string, error) {
	raw := strings.TrimSpace(a.Config.Paths.MainFile)
	if raw == "" {
		return "", errors.New(errors.CodeValidationError, "main file is required")
	}

	candidate := raw
	if !filepath.IsAbs(candidate) {
		underRoot := filepath.Join(a.root, candidate)
		if _, err := os.Stat(underRoot); err == nil {
			candidate = underRoot
		} else if abs, err := filepath.Abs(candidate); err == nil {
			candidate = abs
		}
	}

	rel, err := util.RelSlash(a.root, candidate)
	if err != nil || strings.HasPrefix(rel, "../") {
		return "", errors.New(errors.CodeValidationError, fmt.Sprintf("main file %s is outside root %s", raw, a.root))
	}
	return rel, nil
}

// Run performs one full analysis: discovery, store build, graph resolution
// and output generation.
func (a *App) Run(ctx context.Context) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Run")
	defer span.End()
	start := time.Now()

	files, err := a.Discover(ctx)
	if err != nil {
		return nil, err
	}

	mainFile, err := a.MainFile()
	if err != nil {
		return nil, err
	}

	st, skipped, err := a.BuildStore(ctx, files)
	if err != nil {
		return nil, err
	}
	if !st.HasFile(mainFile) {
		slog.Warn("main file is not in the dependency store", "path", mainFile)
	}

	g, err := a.ResolveGraph(ctx, st, mainFile)
	if err != nil {
		return nil, err
	}

	cycles, err := g.DetectCycles()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "detect cycles")
	}

	res := &Result{
		Root:     a.root,
		MainFile: mainFile,
		Store:    st,
		Graph:    g,
		Skipped:  skipped,
		Cycles:   cycles,
	}
	if err := a.WriteOutputs(ctx, res); err != nil {
		return nil, err
	}
	res.Duration = time.Since(start)

	span.SetAttributes(
		attribute.Int("files", st.Summary().TotalFiles),
		attribute.Int("skipped", len(skipped)),
		attribute.Int("cycles", len(cycles)),
	)
	slog.Info("analysis complete",
		"files", st.Summary().TotalFiles,
		"skipped", len(skipped),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", res.Duration,
	)
	return res, nil
}
