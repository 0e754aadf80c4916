package parser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"
	"unicode/utf8"

	"codeflow/internal/core/errors"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser turns source files into ParsedFiles: syntax tree plus import facts.
type Parser struct {
	loader *GrammarLoader
	pools  map[string]*ParserPool
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader: loader,
		pools:  make(map[string]*ParserPool),
	}
	if lang := loader.Language(LanguagePython); lang != nil {
		p.pools[LanguagePython] = NewParserPool(lang)
	}
	return p
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.loader.LanguageForExtension(filepath.Ext(path)) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

// Parse decodes content, builds the syntax tree and runs the import pass.
// The returned file owns the tree; callers must Close it.
func (p *Parser) Parse(path string, content []byte) (*ParsedFile, error) {
	lang := p.loader.LanguageForExtension(filepath.Ext(path))
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported source file: %s", path))
	}
	pool := p.pools[lang]
	if pool == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	if !utf8.Valid(content) {
		return nil, errors.NewParseError(errors.CodeDecode, path, fmt.Sprintf("encoding error in %s: content is not valid UTF-8", path), nil)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	start := time.Now()
	sp := pool.Get()
	tree := sp.Parse(content, nil)
	pool.Put(sp)
	observability.ParsingDuration.WithLabelValues(lang).Observe(time.Since(start).Seconds())
	if tree == nil {
		return nil, errors.NewParseError(errors.CodeInternal, path, "parse failed", nil)
	}

	root := tree.RootNode()
	if root.HasError() {
		line, text := locateSyntaxError(root, content)
		tree.Close()
		return nil, errors.NewSyntaxError(path, line, text)
	}
	if bad := findStrictSyntaxError(root); bad != nil {
		line := NodeLine(bad)
		tree.Close()
		return nil, errors.NewSyntaxError(path, line, sourceLine(content, line))
	}

	file := &ParsedFile{
		Path:    path,
		Source:  content,
		Imports: util.NewOrderedMap[*util.StringSet](),
		Usage:   util.NewOrderedMap[*util.StringSet](),
		Aliases: make(AliasTable),
		Tree:    tree,
	}
	extractImports(file)
	return file, nil
}
