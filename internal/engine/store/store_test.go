package store

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"codeflow/internal/engine/analyzer"
	"codeflow/internal/shared/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(path string, lines, io int, modules ...string) *analyzer.Record {
	rec := &analyzer.Record{
		Imports:       util.NewOrderedMap[*util.StringSet](),
		FunctionUsage: util.NewOrderedMap[*util.StringSet](),
		IOCallCount:   io,
		IOOperations:  []string{},
		FileInfo:      analyzer.FileInfo{Path: path, Size: int64(lines * 10), Lines: lines},
	}
	for _, m := range modules {
		rec.Imports.Set(m, util.NewStringSet("import "+m, "from "+m+" import x"))
		rec.FunctionUsage.Set(m, util.NewStringSet("x"))
	}
	for i := 0; i < io; i++ {
		rec.IOOperations = append(rec.IOOperations, "open() at line 1")
	}
	return rec
}

func TestStore_ReverseIndexHasNoDuplicates(t *testing.T) {
	s := New()
	s.AddFileDependencies("a.py", record("a.py", 10, 0, "os", "json"))
	s.AddFileDependencies("b.py", record("b.py", 5, 0, "os"))
	s.AddFileDependencies("a.py", record("a.py", 10, 0, "os"))

	assert.Equal(t, []string{"a.py", "b.py"}, s.GetModuleDependents("os"))
	assert.Equal(t, []string{"a.py"}, s.GetModuleDependents("json"))
	assert.Empty(t, s.GetModuleDependents("missing"))
}

func TestStore_PointLookups(t *testing.T) {
	s := New()
	s.AddFileDependencies("pkg/a.py", record("pkg/a.py", 12, 2, "os", "helpers"))

	first := s.GetFileDependencies("pkg/a.py")
	second := s.GetFileDependencies("pkg/a.py")
	assert.Equal(t, []string{"os", "helpers"}, first)
	assert.Equal(t, first, second)

	first[0] = "mutated"
	assert.Equal(t, []string{"os", "helpers"}, s.GetFileDependencies("pkg/a.py"))

	assert.Len(t, s.GetFileIOOperations("pkg/a.py"), 2)
	info, ok := s.GetFileInfo("pkg/a.py")
	require.True(t, ok)
	assert.Equal(t, 12, info.Lines)
	assert.Equal(t, map[string][]string{"os": {"x"}, "helpers": {"x"}}, s.GetFunctionUsage("pkg/a.py"))

	assert.Empty(t, s.GetFileDependencies("unknown.py"))
	assert.Empty(t, s.GetFileIOOperations("unknown.py"))
	_, ok = s.GetFileInfo("unknown.py")
	assert.False(t, ok)
	assert.Empty(t, s.GetFunctionUsage("unknown.py"))
	assert.True(t, s.HasFile("pkg/a.py"))
	assert.False(t, s.HasFile("unknown.py"))
}

func TestStore_TopN(t *testing.T) {
	s := New()
	s.AddFileDependencies("fileA", record("fileA", 10, 1, "os"))
	s.AddFileDependencies("fileB", record("fileB", 50, 3, "os", "sys"))
	s.AddFileDependencies("fileC", record("fileC", 5, 1, "sys", "json"))

	assert.Equal(t, []Ranked{{"fileB", 50}, {"fileA", 10}}, s.LargestFiles(2))
	assert.Equal(t, []Ranked{{"fileB", 50}, {"fileA", 10}, {"fileC", 5}}, s.LargestFiles(100))
	assert.Len(t, s.LargestFiles(0), 3)

	// ties keep registration order
	assert.Equal(t, []Ranked{{"os", 2}, {"sys", 2}, {"json", 1}}, s.MostImportedModules(10))
	assert.Equal(t, []Ranked{{"fileB", 3}, {"fileA", 1}, {"fileC", 1}}, s.FilesByIOCount(-1))

	assert.Empty(t, New().LargestFiles(5))
}

func TestStore_SummaryAccumulatesOnReAdd(t *testing.T) {
	s := New()
	s.AddFileDependencies("a.py", record("a.py", 10, 1, "os"))
	empty := record("e.py", 0, 0)
	empty.FileInfo.Empty = true
	s.AddFileDependencies("e.py", empty)

	assert.Equal(t, Summary{TotalFiles: 2, TotalImports: 1, TotalIOOperations: 1, TotalLines: 10, EmptyFiles: 1}, s.Summary())

	s.AddFileDependencies("a.py", record("a.py", 20, 2, "os", "sys"))
	assert.Equal(t, []string{"os", "sys"}, s.GetFileDependencies("a.py"))
	assert.Equal(t, 20, s.LargestFiles(1)[0].Value)
	assert.Equal(t, Summary{TotalFiles: 3, TotalImports: 3, TotalIOOperations: 3, TotalLines: 30, EmptyFiles: 1}, s.Summary())
	assert.Equal(t, []string{"a.py", "e.py"}, s.AllFiles())
	assert.Equal(t, []string{"a.py"}, s.FilesWithIO())
}

func TestStore_ReAddKeepsStaleDependents(t *testing.T) {
	s := New()
	s.AddFileDependencies("a.py", record("a.py", 1, 0, "os", "json"))
	s.AddFileDependencies("a.py", record("a.py", 1, 0, "sys"))

	assert.Equal(t, []string{"sys"}, s.GetFileDependencies("a.py"))
	assert.Equal(t, []string{"a.py"}, s.GetModuleDependents("json"), "previous imports stay in the reverse index")
	assert.Equal(t, []string{"a.py"}, s.GetModuleDependents("sys"))

	assert.Equal(t, []string{"os", "json"}, staleModules([]string{"os", "json"}, []string{"sys"}))
	assert.Empty(t, staleModules([]string{"os"}, []string{"os", "sys"}))
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := New()
	s.AddFileDependencies("z.py", record("z.py", 7, 1, "os"))
	s.AddFileDependencies("a.py", record("a.py", 7, 0, "os", "numpy"))

	path := filepath.Join(t.TempDir(), "out", "dependencies_proj.json")
	require.NoError(t, s.Save(path))

	loaded := New()
	ok, err := loaded.Load(path)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, s.AllFiles(), loaded.AllFiles())
	assert.Equal(t, s.Summary(), loaded.Summary())
	assert.Equal(t, s.GetModuleDependents("os"), loaded.GetModuleDependents("os"))
	assert.Equal(t, s.LargestFiles(10), loaded.LargestFiles(10))
	assert.Equal(t, s.GetFileIOOperations("z.py"), loaded.GetFileIOOperations("z.py"))
	assert.Equal(t, s.GetFunctionUsage("a.py"), loaded.GetFunctionUsage("a.py"))

	original, err := s.MarshalJSON()
	require.NoError(t, err)
	reloaded, err := loaded.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(original), string(reloaded))
}

func TestStore_LoadMissingSnapshot(t *testing.T) {
	s := New()
	s.AddFileDependencies("a.py", record("a.py", 1, 0))

	ok, err := s.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"a.py"}, s.AllFiles())
}

func TestStore_SnapshotKeys(t *testing.T) {
	s := New()
	s.AddFileDependencies("a.py", record("a.py", 3, 0, "os"))
	data, err := s.MarshalJSON()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"files", "modules", "io_operations", "function_usage", "file_info", "summary"} {
		assert.Contains(t, doc, key)
	}
	summary := doc["summary"].(map[string]any)
	for _, key := range []string{"total_files", "total_imports", "total_io_operations", "total_lines", "empty_files"} {
		assert.Contains(t, summary, key)
	}
	file := doc["files"].(map[string]any)["a.py"].(map[string]any)
	assert.ElementsMatch(t, []string{"imports", "io_count", "function_usage"}, keysOf(file))
	info := doc["file_info"].(map[string]any)["a.py"].(map[string]any)
	assert.ElementsMatch(t, []string{"path", "size", "lines", "empty"}, keysOf(info))
}

func keysOf(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
