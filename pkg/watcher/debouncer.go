// Package watcher provides event debouncing and content-file watching for
// the layout engine: resize/orientation bursts settle before an analysis
// pass runs, and edits to the position file trigger a content-load pass.
package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration is the default settle window.
const DefaultDebounceDuration = 150 * time.Millisecond

// Debouncer coalesces rapid events into a single trailing callback: when
// Trigger fires multiple times within the window, only the last callback
// runs, after the window elapses.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	seq      uint64
}

// NewDebouncer creates a debouncer. A zero duration selects the default.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	return &Debouncer{duration: duration}
}

// Trigger schedules callback after the settle window, cancelling any
// previously scheduled callback.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		if d.claim(seq) {
			callback()
		}
	})
}

// claim reports whether the callback holding seq is still the live one.
// Stop() can return false after the timer fired, letting a superseded
// callback race the fresh one; losing claims fall out here.
func (d *Debouncer) claim(seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if seq != d.seq {
		return false
	}
	d.timer = nil
	return true
}

// Cancel drops any pending callback, including one already racing the
// timer.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the settle window.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}
