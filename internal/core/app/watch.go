package app

import (
	"context"
	"log/slog"

	"codeflow/internal/core/errors"
	"codeflow/internal/core/watcher"
	"codeflow/internal/shared/util"
)

// Watch re-runs the full analysis after debounced source changes under the
// root until ctx is done. Runs are spaced by watch.min_interval; changes
// that arrive during a run collapse into one follow-up run.
func (a *App) Watch(ctx context.Context, onRun func(*Result, error)) error {
	changes := make(chan []string, 1)
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.Config.Analysis.Extensions,
		func(paths []string) {
			select {
			case changes <- paths:
			default:
			}
		},
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeDiscovery, "start watcher")
	}
	defer w.Close()

	if err := w.Watch([]string{a.root}); err != nil {
		return errors.Wrap(err, errors.CodeDiscovery, "watch "+a.root)
	}
	slog.Info("watching for changes", "path", a.root)

	throttle := util.NewThrottle(a.Config.Watch.MinInterval, 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			slog.Info("change detected", "files", len(paths))
			if err := throttle.Wait(ctx); err != nil {
				return nil
			}
			res, err := a.Run(ctx)
			if ctx.Err() != nil {
				return nil
			}
			onRun(res, err)
		}
	}
}
