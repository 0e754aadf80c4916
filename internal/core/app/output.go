package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeflow/internal/core/config"
	"codeflow/internal/core/errors"
	"codeflow/internal/data/snapshots"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
	"codeflow/internal/ui/report"
	"codeflow/internal/ui/report/formats"
)

// WriteOutputs writes the snapshot, the detailed report, the DOT graph, the
// optional Mermaid/TSV exports and Markdown injections, and archives the run
// when the database is enabled. Written paths are appended to res.Outputs.
func (a *App) WriteOutputs(ctx context.Context, res *Result) error {
	_, span := observability.Tracer.Start(ctx, "app.WriteOutputs")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("outputs").Observe(time.Since(start).Seconds())
	}()

	targets := config.ResolveOutputs(a.Config, a.root, res.MainFile)

	if err := res.Store.Save(targets.Snapshot); err != nil {
		return fmt.Errorf("write snapshot %q: %w", targets.Snapshot, err)
	}
	res.Outputs = append(res.Outputs, targets.Snapshot)

	var detailed bytes.Buffer
	if err := report.WriteDetailedDependencies(&detailed, res.Graph, res.Store, res.MainFile); err != nil {
		return fmt.Errorf("generate detailed report: %w", err)
	}
	if err := writeArtifact(targets.Report, detailed.String()); err != nil {
		return err
	}
	res.Outputs = append(res.Outputs, targets.Report)

	dot, err := formats.DOT(res.Graph)
	if err != nil {
		return fmt.Errorf("generate DOT output: %w", err)
	}
	if err := writeArtifact(targets.DOT, dot); err != nil {
		return err
	}
	res.Outputs = append(res.Outputs, targets.DOT)

	mermaid := formats.Mermaid(res.Graph)
	if targets.Mermaid != "" {
		if err := writeArtifact(targets.Mermaid, mermaid); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, targets.Mermaid)
	}

	if targets.TSV != "" {
		if err := writeArtifact(targets.TSV, formats.TSV(res.Graph)); err != nil {
			return err
		}
		res.Outputs = append(res.Outputs, targets.TSV)
	}

	section := report.NewDiagramSection(res.Graph, res.Cycles)
	for _, inj := range a.Config.Output.UpdateMarkdown {
		path := config.ResolveRelative(a.root, inj.File)
		if err := report.UpdateMarkdown(path, inj.Marker, section); err != nil {
			return fmt.Errorf("update markdown %q: %w", path, err)
		}
		res.Outputs = append(res.Outputs, path)
	}

	if targets.DB != "" {
		runID, err := a.archiveRun(targets.DB, res)
		if err != nil {
			return err
		}
		res.RunID = runID
		res.Outputs = append(res.Outputs, targets.DB)
	}
	return nil
}

func (a *App) archiveRun(path string, res *Result) (string, error) {
	archive, err := a.openArchive(path)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "open run archive "+path)
	}
	defer func() {
		if cerr := archive.Close(); cerr != nil {
			slog.Warn("failed to close run archive", "path", path, "error", cerr)
		}
	}()

	doc, err := res.Store.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("encode snapshot document: %w", err)
	}
	run, err := archive.SaveRun(snapshots.Run{
		ProjectKey:   config.ProjectKey(a.Config, a.root),
		MainFile:     res.MainFile,
		Summary:      res.Store.Summary(),
		GraphNodes:   res.Graph.NodeCount(),
		GraphEdges:   res.Graph.EdgeCount(),
		SkippedFiles: len(res.Skipped),
		Document:     doc,
	})
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "archive run")
	}
	slog.Debug("archived run", "run_id", run.RunID, "path", path)
	return run.RunID, nil
}

func writeArtifact(path, content string) error {
	if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
