package parser

import (
	"codeflow/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const (
	// ModuleLocal groups from-imports whose module could not be determined.
	ModuleLocal = "<local>"
	// RelativeMarker prefixes relative module keys; the leading dots follow it.
	RelativeMarker = "<relative>"
	// ModuleFuture is the key for compatibility pseudo-imports.
	ModuleFuture = "__future__"
	// WildcardUsage marks a module whose names were star-imported.
	WildcardUsage = "ALL"
)

// ImportTable maps module -> import statements, in first-seen order.
type ImportTable = util.OrderedMap[*util.StringSet]

// UsageTable maps module -> used names, in first-seen order.
type UsageTable = util.OrderedMap[*util.StringSet]

// AliasTable maps a local name to a real module (direct import) or a
// module.name qualified path (from-import). It never outlives one file.
type AliasTable map[string]string

// Resolve returns the real module or qualified name bound to alias, or the
// alias itself when nothing is bound.
func (a AliasTable) Resolve(alias string) string {
	if real, ok := a[alias]; ok {
		return real
	}
	return alias
}

// ParsedFile is the result of pass 1 over one source file. The syntax tree
// stays open for pass 2 and must be released with Close.
type ParsedFile struct {
	Path    string
	Source  []byte
	Imports *ImportTable
	Usage   *UsageTable
	Aliases AliasTable
	Tree    *sitter.Tree
}

func (f *ParsedFile) Root() *sitter.Node {
	if f == nil || f.Tree == nil {
		return nil
	}
	return f.Tree.RootNode()
}

func (f *ParsedFile) Close() {
	if f != nil && f.Tree != nil {
		f.Tree.Close()
		f.Tree = nil
	}
}

// RecordImport stores a statement and guarantees a (possibly empty) usage entry.
func (f *ParsedFile) RecordImport(module, stmt string) {
	stmts, ok := f.Imports.Get(module)
	if !ok {
		stmts = util.NewStringSet()
		f.Imports.Set(module, stmts)
	}
	stmts.Add(stmt)
	if !f.Usage.Has(module) {
		f.Usage.Set(module, util.NewStringSet())
	}
}

// RecordUsage adds name under module. Modules that were never imported are ignored.
func (f *ParsedFile) RecordUsage(module, name string) {
	if names, ok := f.Usage.Get(module); ok {
		names.Add(name)
	}
}
