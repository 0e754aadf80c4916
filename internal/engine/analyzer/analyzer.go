// Package analyzer builds per-file analysis records: the parser's import
// facts plus a second pass over call and attribute nodes that resolves
// callees through the file's alias table and classifies I/O call sites.
package analyzer

import (
	"fmt"
	"os"
	"strings"

	"codeflow/internal/core/errors"
	"codeflow/internal/engine/catalog"
	"codeflow/internal/engine/parser"
	"codeflow/internal/shared/observability"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const pathClass = "Path"

type Analyzer struct {
	parser *parser.Parser
	io     *catalog.IOCatalog
}

func NewAnalyzer(p *parser.Parser, io *catalog.IOCatalog) *Analyzer {
	if io == nil {
		io = catalog.DefaultIOCatalog()
	}
	return &Analyzer{parser: p, io: io}
}

// AnalyzeFile reads and analyzes one file. Parse errors carrying the path
// (NOT_FOUND, DECODE_ERROR, SYNTAX_ERROR) are per-file; any other read
// failure is a READ_ERROR wrapping the underlying cause.
func (a *Analyzer) AnalyzeFile(path string) (*Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewParseError(errors.CodeNotFound, path, fmt.Sprintf("file not found: %s", path), err)
		}
		de := errors.Wrap(err, errors.CodeRead, fmt.Sprintf("cannot read %s", path))
		return nil, errors.AddContext(de, errors.CtxPath, path)
	}
	return a.AnalyzeSource(path, content)
}

// AnalyzeSource analyzes content as if read from path.
func (a *Analyzer) AnalyzeSource(path string, content []byte) (*Record, error) {
	rec := newRecord(path, content)
	if len(strings.TrimSpace(string(content))) == 0 {
		rec.FileInfo.Empty = true
		return rec, nil
	}

	file, err := a.parser.Parse(path, content)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rec.Imports = file.Imports
	rec.FunctionUsage = file.Usage

	p := &callPass{file: file, io: a.io, rec: rec}
	w := parser.NewWalker(map[string]parser.NodeHandler{
		"call":      p.handleCall,
		"attribute": p.handleAttribute,
	})
	w.Walk(&parser.WalkContext{Source: file.Source, File: file}, file.Root())

	observability.IOOperationsFound.Add(float64(rec.IOCallCount))
	return rec, nil
}

// callPass is the second pass. The alias table is read-only here.
type callPass struct {
	file *parser.ParsedFile
	io   *catalog.IOCatalog
	rec  *Record
}

func (p *callPass) recordIO(name string, node *sitter.Node) {
	p.rec.IOCallCount++
	p.rec.IOOperations = append(p.rec.IOOperations, fmt.Sprintf("%s() at line %d", name, parser.NodeLine(node)))
}

func (p *callPass) handleCall(ctx *parser.WalkContext, node *sitter.Node) bool {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return false
	}

	switch fn.Kind() {
	case "identifier":
		name := ctx.Text(fn)
		if p.io.IsBareIOCall(name) {
			p.recordIO(name, node)
			return false
		}
		if qualified := p.file.Aliases.Resolve(name); qualified != name && p.io.IsIOOperation(qualified) {
			p.recordIO(qualified, node)
		}

	case "attribute":
		attr := ctx.Text(fn.ChildByFieldName("attribute"))
		if p.isPathReceiver(ctx, fn.ChildByFieldName("object")) {
			if name := pathClass + "." + attr; p.io.IsIOOperation(name) {
				p.recordIO(name, node)
				return false
			}
		}
		segments, ok := dottedSegments(ctx, fn)
		if !ok {
			return false
		}
		if qualified := p.qualify(segments); p.io.IsIOOperation(qualified) {
			p.recordIO(qualified, node)
		}
	}
	return false
}

// handleAttribute records `alias.attr` as a use of attr from the real module.
// Callee attributes pass through here too; usage is a set so that is harmless.
func (p *callPass) handleAttribute(ctx *parser.WalkContext, node *sitter.Node) bool {
	obj := node.ChildByFieldName("object")
	if obj == nil || obj.Kind() != "identifier" {
		return false
	}
	attr := ctx.Text(node.ChildByFieldName("attribute"))
	if attr == "" {
		return false
	}
	p.file.RecordUsage(p.file.Aliases.Resolve(ctx.Text(obj)), attr)
	return false
}

// qualify substitutes the longest aliased prefix of a dotted callee.
func (p *callPass) qualify(segments []string) string {
	for n := len(segments) - 1; n >= 1; n-- {
		prefix := strings.Join(segments[:n], ".")
		if real, ok := p.file.Aliases[prefix]; ok {
			return real + "." + strings.Join(segments[n:], ".")
		}
	}
	return strings.Join(segments, ".")
}

// isPathReceiver reports whether a method receiver is a pathlib Path: the
// Path name itself, a Path(...) construction, or an attribute chain rooted
// at Path.
func (p *callPass) isPathReceiver(ctx *parser.WalkContext, obj *sitter.Node) bool {
	for obj != nil {
		switch obj.Kind() {
		case "identifier":
			name := ctx.Text(obj)
			real := p.file.Aliases.Resolve(name)
			return name == pathClass || real == "pathlib.Path"
		case "call":
			obj = obj.ChildByFieldName("function")
		case "attribute":
			obj = obj.ChildByFieldName("object")
		default:
			return false
		}
	}
	return false
}

// dottedSegments flattens an identifier/attribute chain such as a.b.c.
// Chains through calls or subscripts are not qualified names.
func dottedSegments(ctx *parser.WalkContext, node *sitter.Node) ([]string, bool) {
	var rev []string
	for node != nil {
		switch node.Kind() {
		case "identifier":
			rev = append(rev, ctx.Text(node))
			out := make([]string, len(rev))
			for i, s := range rev {
				out[len(rev)-1-i] = s
			}
			return out, true
		case "attribute":
			rev = append(rev, ctx.Text(node.ChildByFieldName("attribute")))
			node = node.ChildByFieldName("object")
		default:
			return nil, false
		}
	}
	return nil, false
}
