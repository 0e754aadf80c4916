package app

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"codeflow/internal/core/config/helpers"
	"codeflow/internal/core/errors"
	"codeflow/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Discover walks the root and returns candidate source files in walk order.
// Excluded directories are pruned without visiting their children.
func (a *App) Discover(ctx context.Context) ([]string, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.Discover")
	defer span.End()
	start := time.Now()
	defer func() {
		observability.AnalysisDuration.WithLabelValues("discover").Observe(time.Since(start).Seconds())
	}()

	files, err := ScanDirectory(ctx, a.root, a.Config.Exclude.Dirs, a.Config.Exclude.Files, a.Parser.IsSupportedPath)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("files", len(files)))
	return files, nil
}

// ScanDirectory lists files under root accepted by supported, skipping
// directories and files whose base name matches an exclusion.
func ScanDirectory(ctx context.Context, root string, excludeDirs, excludeFiles []string, supported func(string) bool) ([]string, error) {
	dirMatchers, err := helpers.CompileNameMatchers(excludeDirs)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDiscovery, "invalid exclude dir pattern")
	}
	fileMatchers, err := helpers.CompileNameMatchers(excludeFiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDiscovery, "invalid exclude file pattern")
	}

	info, err := os.Stat(root)
	if err != nil {
		de := errors.Wrap(err, errors.CodeDiscovery, "cannot access root "+root)
		return nil, errors.AddContext(de, errors.CtxPath, root)
	}
	if !info.IsDir() {
		de := errors.New(errors.CodeDiscovery, "root is not a directory: "+root)
		return nil, errors.AddContext(de, errors.CtxPath, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		base := filepath.Base(path)
		if d.IsDir() {
			if path != root && helpers.MatchAny(dirMatchers, base) {
				return filepath.SkipDir
			}
			return nil
		}

		if !supported(path) || helpers.MatchAny(fileMatchers, base) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		de := errors.Wrap(err, errors.CodeDiscovery, "cannot walk "+root)
		return nil, errors.AddContext(de, errors.CtxPath, root)
	}

	observability.FilesDiscovered.Add(float64(len(files)))
	return files, nil
}
