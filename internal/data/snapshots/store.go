// Package snapshots archives analysis runs in SQLite so earlier dependency
// snapshots stay queryable after the JSON file is overwritten.
package snapshots

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"codeflow/internal/engine/store"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one archived analysis.
type Run struct {
	RunID        string
	ProjectKey   string
	Timestamp    time.Time
	MainFile     string
	Summary      store.Summary
	GraphNodes   int
	GraphEdges   int
	SkippedFiles int
	Document     []byte
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("snapshot db path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("snapshot db path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot db directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL keep watch-mode reruns from tripping over each other.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite snapshots %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite snapshots %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun archives a run and returns it with RunID and Timestamp filled in.
func (s *Store) SaveRun(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.ProjectKey = normalizeProject(run.ProjectKey)
	if run.RunID == "" {
		run.RunID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
	if len(run.Document) == 0 {
		run.Document = []byte("{}")
	}

	query := `
INSERT INTO runs (
  run_id, project_key, ts_utc, main_file, total_files, total_imports, total_io_operations,
  total_lines, empty_files, graph_nodes, graph_edges, skipped_files, document
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	err := s.withRetry("save run", func() error {
		_, err := s.db.Exec(
			query,
			run.RunID,
			run.ProjectKey,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			run.MainFile,
			run.Summary.TotalFiles,
			run.Summary.TotalImports,
			run.Summary.TotalIOOperations,
			run.Summary.TotalLines,
			run.Summary.EmptyFiles,
			run.GraphNodes,
			run.GraphEdges,
			run.SkippedFiles,
			string(run.Document),
		)
		return err
	})
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LatestRun returns the newest run for a project; ok is false when none exist.
func (s *Store) LatestRun(projectKey string) (Run, bool, error) {
	runs, err := s.query(projectKey, " ORDER BY ts_utc DESC, created_at_utc DESC LIMIT 1", true)
	if err != nil {
		return Run{}, false, err
	}
	if len(runs) == 0 {
		return Run{}, false, nil
	}
	return runs[0], true, nil
}

// ListRuns returns run metadata oldest first, without documents.
func (s *Store) ListRuns(projectKey string) ([]Run, error) {
	return s.query(projectKey, " ORDER BY ts_utc ASC, run_id ASC", false)
}

func (s *Store) query(projectKey, tail string, withDocument bool) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := `
SELECT
  run_id, project_key, ts_utc, main_file, total_files, total_imports, total_io_operations,
  total_lines, empty_files, graph_nodes, graph_edges, skipped_files, document
FROM runs
WHERE project_key = ?`
	base += tail

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(base, normalizeProject(projectKey))
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			tsRaw string
			doc   string
			run   Run
		)
		if err := rows.Scan(
			&run.RunID,
			&run.ProjectKey,
			&tsRaw,
			&run.MainFile,
			&run.Summary.TotalFiles,
			&run.Summary.TotalImports,
			&run.Summary.TotalIOOperations,
			&run.Summary.TotalLines,
			&run.Summary.EmptyFiles,
			&run.GraphNodes,
			&run.GraphEdges,
			&run.SkippedFiles,
			&doc,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		if withDocument {
			run.Document = []byte(doc)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func normalizeProject(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "default"
	}
	return key
}
