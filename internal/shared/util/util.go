package util

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ToSlashPath converts Windows separators to forward slashes.
func ToSlashPath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// NormalizeMatchPath prepares a relative path for case-insensitive lookup:
// separators become "/", leading "./" and "../" segments are dropped and the
// result is lowercased.
func NormalizeMatchPath(p string) string {
	p = ToSlashPath(p)
	for strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		p = p[strings.Index(p, "/")+1:]
	}
	return strings.ToLower(p)
}

// RelSlash returns target relative to root using forward slashes.
func RelSlash(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	return ToSlashPath(rel), nil
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// WriteFileWithDirs creates parent directories (0755) and writes the file with perm.
func WriteFileWithDirs(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, perm)
}

// WriteStringWithDirs writes string content with parent directories created.
func WriteStringWithDirs(path, content string, perm fs.FileMode) error {
	return WriteFileWithDirs(path, []byte(content), perm)
}
