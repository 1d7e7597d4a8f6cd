package assets

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ashkeep/pyre/internal/logger"
)

// watcher arms the cache's deferred reload flag whenever anything under the
// watched roots changes. It never mutates cache state directly; the reload
// itself runs on the render goroutine in EndFrame.
type watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching the given directories for changes. Subsequent calls
// replace the previous watch set.
func (c *Cache) Watch(roots []string) error {
	if c.watcher != nil {
		c.watcher.stop()
		c.watcher = nil
	}
	if len(roots) == 0 {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating asset watcher: %w", err)
	}
	for _, root := range roots {
		if err := fs.Add(root); err != nil {
			fs.Close()
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	w := &watcher{fs: fs, done: make(chan struct{})}
	c.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-fs.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					logger.Debug("asset change detected", zap.String("file", ev.Name))
					c.reload.Store(true)
				}
			case err, ok := <-fs.Errors:
				if !ok {
					return
				}
				logger.Warn("asset watcher error", zap.Error(err))
			case <-w.done:
				return
			}
		}
	}()

	logger.Info("watching asset roots", zap.Strings("roots", roots))
	return nil
}

func (w *watcher) stop() {
	close(w.done)
	w.fs.Close()
}
