package statpad

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/Chrisc1124/statpad/internal/logger"
)

const defaultWatchDebounce = 2 * time.Second

// indexWatcher watches the local database file and schedules a debounced
// entity-index rebuild when it changes, so out-of-process imports become
// resolvable without a restart.
type indexWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	refresh  func()

	mu    sync.Mutex
	timer *time.Timer
}

func newIndexWatcher(path string, debounce time.Duration, refresh func()) (*indexWatcher, error) {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "watch database file %s", path)
	}

	w := &indexWatcher{
		path:     path,
		watcher:  watcher,
		debounce: debounce,
		refresh:  refresh,
	}
	go w.watchLoop()
	logger.Named("statpad").Infow("index watcher started", "path", path, "debounce", debounce)
	return w, nil
}

func (w *indexWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.scheduleRefresh()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Named("statpad").Warnw("index watcher error", "error", err)
		}
	}
}

// scheduleRefresh collapses a burst of file events into one rebuild after
// the debounce window goes quiet.
func (w *indexWatcher) scheduleRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.refresh)
}

func (w *indexWatcher) Close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}
