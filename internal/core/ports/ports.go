// Package ports declares the seams between orchestration and the engine,
// data and reporting packages.
package ports

import (
	"codeflow/internal/data/snapshots"
	"codeflow/internal/engine/analyzer"
)

// FileAnalyzer turns one source file into its analysis record.
type FileAnalyzer interface {
	AnalyzeFile(path string) (*analyzer.Record, error)
}

// RunArchive persists analysis runs beyond the JSON snapshot.
type RunArchive interface {
	SaveRun(run snapshots.Run) (snapshots.Run, error)
	Close() error
}

var (
	_ FileAnalyzer = (*analyzer.Analyzer)(nil)
	_ RunArchive   = (*snapshots.Store)(nil)
)
