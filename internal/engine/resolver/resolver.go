// Package resolver walks import lists from an entry file and turns them into
// a classified dependency graph. Modules that map to an analyzed file are
// followed; everything else is a leaf.
package resolver

import (
	"context"
	"path"
	"strings"
	"time"

	"codeflow/internal/engine/catalog"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/parser"
	"codeflow/internal/engine/store"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"

	"go.opentelemetry.io/otel/attribute"
)

// ImportSource is the part of the dependency store the resolver reads.
type ImportSource interface {
	AllFiles() []string
	GetFileDependencies(relPath string) []string
}

var _ ImportSource = (*store.Store)(nil)

type Resolver struct {
	source     ImportSource
	modules    *catalog.ModuleCatalog
	extensions []string
	index      map[string]string // normalized path -> stored path
}

func NewResolver(source ImportSource, modules *catalog.ModuleCatalog, extensions []string) *Resolver {
	if modules == nil {
		modules = catalog.DefaultModuleCatalog()
	}
	if len(extensions) == 0 {
		extensions = parser.DefaultPythonExtensions
	}
	r := &Resolver{
		source:     source,
		modules:    modules,
		extensions: normalizeExtensions(extensions),
		index:      make(map[string]string),
	}
	for _, f := range source.AllFiles() {
		key := util.NormalizeMatchPath(f)
		if _, exists := r.index[key]; !exists {
			r.index[key] = f
		}
	}
	return r
}

// ModuleToFilePath maps an import string to an analyzed file. Absolute
// modules try <module>.<ext> at the root and then beside the importer, for
// each extension, then the same for <module>/__init__.<ext>. Relative keys
// resolve only against the importer's directory, one level up per extra dot.
func (r *Resolver) ModuleToFilePath(module, parentFile string) (string, bool) {
	for _, candidate := range r.candidates(module, parentFile) {
		if stored, ok := r.index[util.NormalizeMatchPath(candidate)]; ok {
			return stored, true
		}
	}
	return "", false
}

func (r *Resolver) candidates(module, parentFile string) []string {
	parentDir := ""
	if parentFile != "" {
		parentDir = path.Dir(util.ToSlashPath(parentFile))
	}

	if strings.HasPrefix(module, parser.RelativeMarker) {
		return r.relativeCandidates(strings.TrimPrefix(module, parser.RelativeMarker), parentDir)
	}
	if module == "" || module == parser.ModuleLocal {
		return nil
	}

	base := strings.ReplaceAll(module, ".", "/")
	var out []string
	for _, stem := range []string{base, base + "/__init__"} {
		for _, ext := range r.extensions {
			out = append(out, stem+ext)
			if parentDir != "" {
				out = append(out, path.Join(parentDir, stem+ext))
			}
		}
	}
	return out
}

func (r *Resolver) relativeCandidates(dotted, parentDir string) []string {
	rest := strings.TrimLeft(dotted, ".")
	dots := len(dotted) - len(rest)
	if dots == 0 {
		return nil
	}
	dir := parentDir
	if dir == "" {
		dir = "."
	}
	for i := 1; i < dots; i++ {
		dir = path.Dir(dir)
	}

	var stems []string
	if rest == "" {
		stems = []string{path.Join(dir, "__init__")}
	} else {
		base := path.Join(dir, strings.ReplaceAll(rest, ".", "/"))
		stems = []string{base, path.Join(base, "__init__")}
	}
	var out []string
	for _, stem := range stems {
		for _, ext := range r.extensions {
			out = append(out, stem+ext)
		}
	}
	return out
}

// Classify reports how an unresolved module is classified.
func (r *Resolver) Classify(module string) graph.Classification {
	if strings.HasPrefix(module, parser.RelativeMarker) || module == parser.ModuleLocal {
		return graph.Unknown
	}
	if r.modules.IsKnown(module) {
		return graph.KnownExternal
	}
	return graph.Unknown
}

type frame struct {
	node    string   // graph identity: main path or import string
	lookup  string   // file whose imports are expanded
	imports []string
	next    int
}

// Resolve builds the dependency graph rooted at mainFile. Traversal is
// depth-first over an explicit stack; a node is marked visited before its
// imports are expanded, so cycles terminate and keep every discovered edge.
func (r *Resolver) Resolve(ctx context.Context, mainFile string) (*graph.DependencyGraph, error) {
	ctx, span := observability.Tracer.Start(ctx, "resolver.Resolve")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("resolve").Observe(time.Since(start).Seconds())
	}()

	root := util.ToSlashPath(mainFile)
	if stored, ok := r.index[util.NormalizeMatchPath(root)]; ok {
		root = stored
	}

	g := graph.New()
	g.AddNode(root)

	visited := make(map[string]bool)
	var stack []frame
	push := func(node, lookup string) {
		if visited[node] {
			return
		}
		visited[node] = true
		stack = append(stack, frame{
			node:    node,
			lookup:  lookup,
			imports: r.source.GetFileDependencies(lookup),
		})
	}

	push(root, root)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := len(stack) - 1
		if stack[top].next >= len(stack[top].imports) {
			stack = stack[:top]
			continue
		}
		f := stack[top]
		module := f.imports[f.next]
		stack[top].next++

		target, ok := r.ModuleToFilePath(module, f.lookup)
		switch {
		case ok && target == root:
			// An import of the entry file points back at the root node.
			g.AddEdge(f.node, root)
		case ok:
			g.AddEdge(f.node, module)
			g.Classify(module, graph.Local)
			push(module, target)
		default:
			g.AddEdge(f.node, module)
			g.Classify(module, r.Classify(module))
		}
	}

	g.MarkMain(root)

	observability.GraphNodes.Set(float64(g.NodeCount()))
	observability.GraphEdges.Set(float64(g.EdgeCount()))
	span.SetAttributes(
		attribute.String("main_file", root),
		attribute.Int("nodes", g.NodeCount()),
		attribute.Int("edges", g.EdgeCount()),
	)
	return g, nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
