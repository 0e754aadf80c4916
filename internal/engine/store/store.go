// Package store aggregates per-file analysis records into one queryable
// index: file -> facts, module -> dependent files, and running totals.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"codeflow/internal/engine/analyzer"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
)

const DefaultTopN = 10

// Ranked is one row of a top-N query.
type Ranked struct {
	Name  string
	Value int
}

type Store struct {
	mu    sync.RWMutex
	state *State
}

func New() *Store {
	return &Store{state: newState()}
}

// AddFileDependencies registers the record for relPath. Registering the same
// path twice overwrites its tables but adds to the summary again and leaves
// relPath under modules it no longer imports, so callers must register each
// file exactly once.
func (s *Store) AddFileDependencies(relPath string, rec *analyzer.Record) {
	if rec == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	modules := rec.ImportedModules()
	if prev, ok := st.Files.Get(relPath); ok {
		slog.Warn("file registered twice; summary counts include it again and the reverse index keeps stale dependents",
			"path", relPath, "stale_modules", staleModules(prev.Imports, modules))
	}

	usage := usageLists(rec.FunctionUsage)
	st.Files.Set(relPath, FileEntry{
		Imports:       modules,
		IOCount:       rec.IOCallCount,
		FunctionUsage: usage,
	})
	ops := make([]string, len(rec.IOOperations))
	copy(ops, rec.IOOperations)
	st.IOOperations.Set(relPath, ops)
	st.FunctionUsage.Set(relPath, usage)
	st.FileInfo.Set(relPath, rec.FileInfo)

	for _, module := range modules {
		dependents, ok := st.Modules.Get(module)
		if !ok {
			dependents = util.NewStringSet()
			st.Modules.Set(module, dependents)
		}
		dependents.Add(relPath)
	}

	st.Summary.TotalFiles++
	st.Summary.TotalImports += len(modules)
	st.Summary.TotalIOOperations += rec.IOCallCount
	st.Summary.TotalLines += rec.FileInfo.Lines
	if rec.FileInfo.Empty {
		st.Summary.EmptyFiles++
	}
	observability.FilesAnalyzed.Inc()
}

// staleModules lists modules in prev that next no longer imports.
func staleModules(prev, next []string) []string {
	keep := make(map[string]bool, len(next))
	for _, m := range next {
		keep[m] = true
	}
	var out []string
	for _, m := range prev {
		if !keep[m] {
			out = append(out, m)
		}
	}
	return out
}

// GetFileDependencies returns the modules imported by relPath, or an empty
// list for unknown paths.
func (s *Store) GetFileDependencies(relPath string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.state.Files.Get(relPath)
	if !ok {
		return []string{}
	}
	return cloneStrings(entry.Imports)
}

// HasFile reports whether relPath was registered.
func (s *Store) HasFile(relPath string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Files.Has(relPath)
}

func (s *Store) GetFileIOOperations(relPath string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ops, _ := s.state.IOOperations.Get(relPath)
	return cloneStrings(ops)
}

func (s *Store) GetFileInfo(relPath string) (analyzer.FileInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.FileInfo.Get(relPath)
}

func (s *Store) GetModuleDependents(module string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dependents, ok := s.state.Modules.Get(module)
	if !ok {
		return []string{}
	}
	return dependents.Items()
}

// GetFunctionUsage returns module -> used names for relPath.
func (s *Store) GetFunctionUsage(relPath string) map[string][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]string)
	usage, ok := s.state.FunctionUsage.Get(relPath)
	if !ok {
		return out
	}
	usage.Each(func(module string, names []string) bool {
		out[module] = cloneStrings(names)
		return true
	})
	return out
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Summary
}

// AllFiles lists registered paths in registration order.
func (s *Store) AllFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Files.Keys()
}

// FilesWithIO lists paths that have at least one I/O call site.
func (s *Store) FilesWithIO() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []string{}
	s.state.IOOperations.Each(func(path string, ops []string) bool {
		if len(ops) > 0 {
			out = append(out, path)
		}
		return true
	})
	return out
}

func (s *Store) LargestFiles(n int) []Ranked {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []Ranked
	s.state.FileInfo.Each(func(path string, info analyzer.FileInfo) bool {
		rows = append(rows, Ranked{Name: path, Value: info.Lines})
		return true
	})
	return topN(rows, n)
}

func (s *Store) MostImportedModules(n int) []Ranked {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []Ranked
	s.state.Modules.Each(func(module string, dependents *util.StringSet) bool {
		rows = append(rows, Ranked{Name: module, Value: dependents.Len()})
		return true
	})
	return topN(rows, n)
}

func (s *Store) FilesByIOCount(n int) []Ranked {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []Ranked
	s.state.Files.Each(func(path string, entry FileEntry) bool {
		rows = append(rows, Ranked{Name: path, Value: entry.IOCount})
		return true
	})
	return topN(rows, n)
}

// topN sorts descending by value, keeping insertion order among ties.
func topN(rows []Ranked, n int) []Ranked {
	if n <= 0 {
		n = DefaultTopN
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Value > rows[j].Value })
	if n < len(rows) {
		rows = rows[:n]
	}
	if rows == nil {
		return []Ranked{}
	}
	return rows
}

// State returns a deep copy of the aggregate.
func (s *Store) State() (*State, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	st := &State{}
	if err := json.Unmarshal(data, st); err != nil {
		return nil, err
	}
	st.fillMissing()
	return st, nil
}

func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.MarshalIndent(s.state, "", "  ")
}

// Save writes the snapshot document to path, creating parent directories.
func (s *Store) Save(path string) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := util.WriteFileWithDirs(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// Load replaces the store contents with the snapshot at path. A missing
// snapshot reports false and leaves the store untouched.
func (s *Store) Load(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	st := &State{}
	if err := json.Unmarshal(data, st); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	st.fillMissing()

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return true, nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
