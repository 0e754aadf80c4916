package parser

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

// DefaultPythonExtensions are the source extensions recognized when none are configured.
var DefaultPythonExtensions = []string{".py", ".pyw"}

// GrammarLoader owns the compiled grammars and the extension routing for them.
type GrammarLoader struct {
	languages  map[string]*sitter.Language
	extensions map[string]string // ".py" -> "python"
}

// NewGrammarLoader loads the Python grammar and routes the given extensions to
// it. Extensions are normalized to lowercase with a leading dot.
func NewGrammarLoader(extensions []string) (*GrammarLoader, error) {
	if len(extensions) == 0 {
		extensions = DefaultPythonExtensions
	}

	gl := &GrammarLoader{
		languages: map[string]*sitter.Language{
			LanguagePython: sitter.NewLanguage(tree_sitter_python.Language()),
		},
		extensions: make(map[string]string, len(extensions)),
	}
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		gl.extensions[ext] = LanguagePython
	}
	if len(gl.extensions) == 0 {
		return nil, fmt.Errorf("no usable source extensions in %v", extensions)
	}
	return gl, nil
}

func (gl *GrammarLoader) Language(name string) *sitter.Language {
	return gl.languages[name]
}

func (gl *GrammarLoader) LanguageForExtension(ext string) string {
	return gl.extensions[strings.ToLower(ext)]
}

// SupportedExtensions returns the routed extensions, sorted.
func (gl *GrammarLoader) SupportedExtensions() []string {
	out := make([]string, 0, len(gl.extensions))
	for ext := range gl.extensions {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
