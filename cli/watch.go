package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robinvdvleuten/hyoubkp/ledger"
	"github.com/robinvdvleuten/hyoubkp/logging"
	"github.com/robinvdvleuten/hyoubkp/tokmap"
)

// Editors often write files in multiple steps.
const debounceDelay = 100 * time.Millisecond

// ruleWatcher recompiles a rule document when it or one of its includes
// changes, and hands every successfully compiled mapper to reload.
type ruleWatcher struct {
	path    string
	reload  func(ledger.TokenMapper)
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	files []string
}

func newRuleWatcher(path string, files []string, reload func(ledger.TokenMapper)) (*ruleWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	for _, file := range files {
		if err := watcher.Add(file); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", file, err)
		}
	}

	return &ruleWatcher{
		path:    path,
		reload:  reload,
		watcher: watcher,
		files:   files,
	}, nil
}

// Run processes file system events until ctx is done, then closes the
// watcher.
func (w *ruleWatcher) Run(ctx context.Context) {
	logger := logging.FromContext(ctx)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = w.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Remove and Rename are common in atomic saves.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("rule document changed", zap.String("path", event.Name), zap.Stringer("op", event.Op))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				w.handleChange(ctx)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

// handleChange recompiles the rules and updates the watch list, since the
// includes may have changed. A document that fails to compile keeps the
// previous mapper in place.
func (w *ruleWatcher) handleChange(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	logger := logging.FromContext(ctx)

	mapper, files, err := tokmap.LoadRule(ctx, w.path)
	if err != nil {
		logger.Warn("failed to reload rules", zap.String("path", w.path), zap.Error(err))
		return
	}

	current := make(map[string]bool, len(files))
	for _, file := range files {
		current[file] = true
	}
	for _, file := range w.files {
		if !current[file] {
			_ = w.watcher.Remove(file)
		}
	}
	// Re-adding catches files that were re-created by the save.
	for _, file := range files {
		if err := w.watcher.Add(file); err != nil {
			logger.Warn("failed to watch rule document", zap.String("path", file), zap.Error(err))
		}
	}
	w.files = files

	w.reload(mapper)
}
