package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watch re-runs run with the changed file whenever one of files is written
// or re-created, until ctx is done. Directories are watched rather than the
// files so that editors saving through a rename are seen.
func (a *app) watch(ctx context.Context, files []string, run func([]string) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]string{}
	dirs := map[string]bool{}
	for _, f := range files {
		if f == "-" {
			return fmt.Errorf("--watch cannot be used with stdin")
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("absolute path: %w", err)
		}
		watched[abs] = f
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
		dirs[dir] = true
	}
	a.logger.Info("watching for changes", zap.Strings("files", files))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, tracked := watched[filepath.Clean(event.Name)]
			if !tracked || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			a.logger.Debug("file changed", zap.String("file", name), zap.String("op", event.Op.String()))
			if err := run([]string{name}); err != nil && !isInvalid(err) {
				a.logger.Error("validation run failed", zap.String("file", name), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("watcher error", zap.Error(err))
		}
	}
}
