package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// contentDebounce settles editor write bursts (truncate+write, tmp+rename)
// into one reload.
const contentDebounce = 250 * time.Millisecond

// ContentWatcher watches the board position file and fires a callback once
// per settled change, driving the engine's content-load re-analysis.
type ContentWatcher struct {
	path      string
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	onChange  func()
	done      chan struct{}
}

// NewContentWatcher watches path and calls onChange after each settled
// modification. Watching the parent directory survives editors that
// replace the file by rename.
func NewContentWatcher(path string, onChange func()) (*ContentWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &ContentWatcher{
		path:      path,
		watcher:   fsw,
		debouncer: NewDebouncer(contentDebounce),
		onChange:  onChange,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Close stops watching and cancels any pending callback.
func (w *ContentWatcher) Close() error {
	close(w.done)
	w.debouncer.Cancel()
	return w.watcher.Close()
}

func (w *ContentWatcher) loop() {
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.debouncer.Trigger(w.onChange)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient on most platforms; the next
			// event re-arms the debouncer regardless.
		}
	}
}
