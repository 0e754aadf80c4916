package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"codeflow/internal/core/errors"
	"codeflow/internal/engine/catalog"
	"codeflow/internal/engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	loader, err := parser.NewGrammarLoader(nil)
	require.NoError(t, err)
	return NewAnalyzer(parser.NewParser(loader), catalog.DefaultIOCatalog())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func usageOf(t *testing.T, rec *Record, module string) []string {
	t.Helper()
	names, ok := rec.FunctionUsage.Get(module)
	require.True(t, ok, "no usage entry for %q", module)
	return names.Items()
}

func TestAnalyzeFile_EmptyFile(t *testing.T) {
	a := newTestAnalyzer(t)
	dir := t.TempDir()

	for _, content := range []string{"", "  \n\t\n"} {
		path := writeFile(t, dir, "empty.py", content)
		rec, err := a.AnalyzeFile(path)
		require.NoError(t, err)

		assert.True(t, rec.FileInfo.Empty)
		assert.Equal(t, 0, rec.IOCallCount)
		assert.Empty(t, rec.IOOperations)
		assert.Equal(t, 0, rec.Imports.Len())
		assert.Equal(t, 0, rec.FunctionUsage.Len())
		assert.Equal(t, int64(len(content)), rec.FileInfo.Size)
		assert.Equal(t, path, rec.FileInfo.Path)
	}
}

func TestAnalyzeSource_IOAndUsage(t *testing.T) {
	a := newTestAnalyzer(t)
	code := `import pandas as pd
import json
from pathlib import Path
from torch.utils.data import DataLoader

df = pd.read_csv("x.csv")
with open("out.txt") as fh:
    json.dump({}, fh)
loader = DataLoader(df)
Path("a").open()
print(pd.DataFrame)
`
	rec, err := a.AnalyzeSource("pipeline.py", []byte(code))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"pandas.read_csv() at line 6",
		"open() at line 7",
		"json.dump() at line 8",
		"DataLoader() at line 9",
		"Path.open() at line 10",
	}, rec.IOOperations)
	assert.Equal(t, len(rec.IOOperations), rec.IOCallCount)

	assert.Equal(t, []string{"read_csv", "DataFrame"}, usageOf(t, rec, "pandas"))
	assert.Equal(t, []string{"dump"}, usageOf(t, rec, "json"))
	assert.Equal(t, []string{"DataLoader"}, usageOf(t, rec, "torch.utils.data"))
	assert.Equal(t, []string{"pandas", "json", "pathlib", "torch.utils.data"}, rec.ImportedModules())

	assert.False(t, rec.FileInfo.Empty)
	assert.Equal(t, 11, rec.FileInfo.Lines)
	assert.Equal(t, int64(len(code)), rec.FileInfo.Size)
}

func TestAnalyzeSource_QualifiedNames(t *testing.T) {
	a := newTestAnalyzer(t)
	code := `import xml.etree.ElementTree as ET
from json import load
import os.path

tree = ET.parse("a.xml")
data = load(fh)
os.path.exists("x")
`
	rec, err := a.AnalyzeSource("q.py", []byte(code))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"xml.etree.ElementTree.parse() at line 5",
		"json.load() at line 6",
	}, rec.IOOperations)
	assert.Equal(t, 2, rec.IOCallCount)
}

func TestAnalyzeSource_UsageOnlyForImportedModules(t *testing.T) {
	a := newTestAnalyzer(t)
	code := `import numpy as np
x = np.array([1])
y = self.value
z = undefined.thing()
`
	rec, err := a.AnalyzeSource("u.py", []byte(code))
	require.NoError(t, err)

	assert.Equal(t, []string{"numpy"}, rec.FunctionUsage.Keys())
	assert.Equal(t, []string{"array"}, usageOf(t, rec, "numpy"))
	assert.Zero(t, rec.IOCallCount)
}

func TestAnalyzeSource_Wildcard(t *testing.T) {
	a := newTestAnalyzer(t)
	rec, err := a.AnalyzeSource("w.py", []byte("from pkg import *\n"))
	require.NoError(t, err)

	stmts, ok := rec.Imports.Get("pkg")
	require.True(t, ok)
	assert.Equal(t, []string{"from pkg import *"}, stmts.Items())
	assert.Equal(t, []string{"ALL"}, usageOf(t, rec, "pkg"))
}

func TestAnalyzeFile_Errors(t *testing.T) {
	a := newTestAnalyzer(t)
	dir := t.TempDir()

	missing := filepath.Join(dir, "nope.py")
	_, err := a.AnalyzeFile(missing)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
	path, _ := errors.ContextValue(err, errors.CtxPath)
	assert.Equal(t, missing, path)

	broken := writeFile(t, dir, "broken.py", "x = 1\ny = (\n")
	_, err = a.AnalyzeFile(broken)
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
	assert.True(t, errors.IsCode(err, errors.CodeSyntax))

	// A directory passed as a file cannot be read; the cause is kept.
	unreadable := filepath.Join(dir, "pkg.py")
	require.NoError(t, os.Mkdir(unreadable, 0o755))
	_, err = a.AnalyzeFile(unreadable)
	require.Error(t, err)
	assert.Equal(t, errors.CodeRead, errors.CodeOf(err))
	assert.False(t, errors.IsParseError(err))
	var pathErr *os.PathError
	assert.ErrorAs(t, err, &pathErr)
	path, _ = errors.ContextValue(err, errors.CtxPath)
	assert.Equal(t, unreadable, path)
}

func TestAnalyzeSource_RejectsLegacyAndMisindentedCode(t *testing.T) {
	a := newTestAnalyzer(t)
	for _, code := range []string{"print \"hello\"\n", "exec \"x = 1\"\n", "x = 1\n  y = 2\n"} {
		rec, err := a.AnalyzeSource("m.py", []byte(code))
		require.Error(t, err, code)
		assert.Nil(t, rec)
		assert.True(t, errors.IsCode(err, errors.CodeSyntax), code)
	}
}

func TestCountLines(t *testing.T) {
	cases := map[string]int{
		"":             0,
		"a":            1,
		"a\n":          1,
		"a\nb":         2,
		"a\r\nb\r\n":   2,
		"\n\n":         2,
		"a\rb\x0cc":    3,
		"one\u2028two": 2,
	}
	for in, want := range cases {
		assert.Equal(t, want, countLines([]byte(in)), "%q", in)
	}
}
