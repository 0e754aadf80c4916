package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"codeflow/internal/core/errors"
	"codeflow/internal/engine/analyzer"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/resolver"
	"codeflow/internal/engine/store"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
)

type analysisResult struct {
	rec *analyzer.Record
	err error
}

// BuildStore analyzes files with the configured number of workers and folds
// the records into a new store in input order. Files that fail with a parse
// error are skipped and reported; any other failure aborts the build.
func (a *App) BuildStore(ctx context.Context, files []string) (*store.Store, []SkippedFile, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.BuildStore")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())
	}()

	results := a.analyzeAll(ctx, files)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	st := store.New()
	var skipped []SkippedFile
	for i, path := range files {
		rel, err := util.RelSlash(a.root, path)
		if err != nil {
			rel = util.ToSlashPath(path)
		}

		r := results[i]
		if r.err != nil {
			if !errors.IsParseError(r.err) {
				return nil, nil, errors.AddContext(r.err, errors.CtxPath, rel)
			}
			code := errors.CodeOf(r.err)
			slog.Warn("skipping file", "path", rel, "error", r.err)
			observability.FilesSkipped.WithLabelValues(strings.ToLower(string(code))).Inc()
			skipped = append(skipped, SkippedFile{Path: rel, Code: code, Reason: r.err.Error()})
			continue
		}
		st.AddFileDependencies(rel, r.rec)
	}

	span.SetAttributes(
		attribute.Int("files", len(files)),
		attribute.Int("skipped", len(skipped)),
	)
	return st, skipped, nil
}

func (a *App) analyzeAll(ctx context.Context, files []string) []analysisResult {
	results := make([]analysisResult, len(files))
	workers := a.Config.Analysis.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := a.analyzer.AnalyzeFile(files[i])
				results[i] = analysisResult{rec: rec, err: err}
			}
		}()
	}

feed:
	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return results
}

// ResolveGraph builds the dependency graph of st rooted at mainFile.
func (a *App) ResolveGraph(ctx context.Context, st *store.Store, mainFile string) (*graph.DependencyGraph, error) {
	r := resolver.NewResolver(st, a.Modules, a.Config.Analysis.Extensions)
	return r.Resolve(ctx, mainFile)
}
