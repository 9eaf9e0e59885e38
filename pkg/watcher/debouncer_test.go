package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_OnlyTrailingEventFires(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired int32

	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&fired, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("fired %d times, want 1 (trailing only)", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var fired int32

	d.Trigger(func() { atomic.AddInt32(&fired, 1) })
	d.Cancel()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 0 {
		t.Errorf("fired %d times after Cancel, want 0", got)
	}
}

func TestDebouncer_ZeroDurationUsesDefault(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("Duration = %v, want %v", d.Duration(), DefaultDebounceDuration)
	}
}

func TestContentWatcher_FiresOnSettledWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "position.fen")
	if err := os.WriteFile(path, []byte("start"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 4)
	w, err := NewContentWatcher(path, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("NewContentWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("updated"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired for a write")
	}
}

func TestContentWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "position.fen")
	if err := os.WriteFile(path, []byte("start"), 0o644); err != nil {
		t.Fatal(err)
	}

	fired := make(chan struct{}, 4)
	w, err := NewContentWatcher(path, func() { fired <- struct{}{} })
	if err != nil {
		t.Fatalf("NewContentWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("watcher fired for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}
