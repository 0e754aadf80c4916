package helpers

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// HasWildcard reports whether pattern needs glob matching rather than an
// exact name comparison.
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[]{}")
}

// NameMatcher compares a base name exactly, or as a glob when the pattern
// has wildcard characters.
type NameMatcher struct {
	exact string
	glob  glob.Glob
}

func (m NameMatcher) Match(name string) bool {
	if m.glob != nil {
		return m.glob.Match(name)
	}
	return m.exact == name
}

// CompileNameMatchers compiles exclusion patterns, skipping blank entries.
func CompileNameMatchers(patterns []string) ([]NameMatcher, error) {
	out := make([]NameMatcher, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !HasWildcard(p) {
			out = append(out, NameMatcher{exact: p})
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
		}
		out = append(out, NameMatcher{glob: g})
	}
	return out, nil
}

// MatchAny reports whether any matcher accepts name.
func MatchAny(matchers []NameMatcher, name string) bool {
	for _, m := range matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}
