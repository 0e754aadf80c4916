// Package catalog holds the name tables used to classify call sites and
// imported modules. The tables are data: embedded defaults that callers can
// extend from configuration without touching classification logic.
package catalog

import (
	"bufio"
	_ "embed"
	"os"
	"sort"
	"strings"
)

//go:embed data/io_operations.txt
var ioOperationsData string

//go:embed data/python_stdlib.txt
var pythonStdlibData string

//go:embed data/prebuilt_libs.txt
var prebuiltLibsData string

// Callee names counted as I/O even without a module qualifier.
var defaultBareIOCalls = []string{"open", "DataLoader", "load_model", "save_model"}

// ParseList splits a one-name-per-line table, dropping blanks and # comments.
func ParseList(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// IOCatalog answers whether a fully-qualified call name performs external I/O.
type IOCatalog struct {
	names map[string]bool
	bare  map[string]bool
}

func NewIOCatalog(names, bareCalls []string) *IOCatalog {
	c := &IOCatalog{
		names: make(map[string]bool, len(names)),
		bare:  make(map[string]bool, len(bareCalls)),
	}
	for _, n := range names {
		c.names[n] = true
	}
	for _, n := range bareCalls {
		c.bare[n] = true
	}
	return c
}

// DefaultIOCatalog returns the built-in catalog.
func DefaultIOCatalog() *IOCatalog {
	return NewIOCatalog(ParseList(ioOperationsData), defaultBareIOCalls)
}

// With returns a copy of the catalog extended with extra qualified names.
func (c *IOCatalog) With(extra ...string) *IOCatalog {
	out := NewIOCatalog(c.Names(), nil)
	for n := range c.bare {
		out.bare[n] = true
	}
	for _, n := range extra {
		n = strings.TrimSpace(n)
		if n != "" {
			out.names[n] = true
		}
	}
	return out
}

// IsIOOperation is an exact, case-sensitive membership test.
func (c *IOCatalog) IsIOOperation(qualifiedName string) bool {
	return c.names[qualifiedName]
}

// IsBareIOCall reports whether an unqualified callee name counts as I/O.
func (c *IOCatalog) IsBareIOCall(name string) bool {
	return c.bare[name]
}

func (c *IOCatalog) Names() []string {
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ModuleCatalog classifies module names whose files are not in the codebase.
type ModuleCatalog struct {
	stdlib     map[string]bool
	thirdParty map[string]bool
}

func NewModuleCatalog(stdlib, thirdParty []string) *ModuleCatalog {
	c := &ModuleCatalog{
		stdlib:     make(map[string]bool, len(stdlib)),
		thirdParty: make(map[string]bool, len(thirdParty)),
	}
	for _, n := range stdlib {
		c.stdlib[n] = true
	}
	c.AddThirdParty(thirdParty...)
	return c
}

// DefaultModuleCatalog returns the Python standard library plus the built-in
// list of well-known third-party packages.
func DefaultModuleCatalog() *ModuleCatalog {
	return NewModuleCatalog(ParseList(pythonStdlibData), ParseList(prebuiltLibsData))
}

func (c *ModuleCatalog) AddThirdParty(names ...string) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			c.thirdParty[n] = true
		}
	}
}

// LoadThirdPartyFile merges a one-name-per-line file into the third-party set.
// A missing file is not an error and adds nothing.
func (c *ModuleCatalog) LoadThirdPartyFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	defer f.Close()

	added := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !c.thirdParty[line] {
			added++
		}
		c.thirdParty[line] = true
	}
	return added, sc.Err()
}

// IsStdlib matches the module's leading dotted segment.
func (c *ModuleCatalog) IsStdlib(module string) bool {
	return c.stdlib[baseSegment(module)]
}

// IsKnown reports whether the module's leading segment is standard library
// or a known third-party package.
func (c *ModuleCatalog) IsKnown(module string) bool {
	base := baseSegment(module)
	return c.stdlib[base] || c.thirdParty[base]
}

func baseSegment(module string) string {
	if i := strings.IndexByte(module, '.'); i >= 0 {
		return module[:i]
	}
	return module
}
