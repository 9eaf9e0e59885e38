package state

import (
	"testing"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

func validState(boardSide float64) LayoutState {
	return LayoutState{
		Viewport: geometry.NewViewportDimensions(1920, 1080, 1),
		Config: layout.Configuration{
			BoardSize:     geometry.Size{Width: boardSide, Height: boardSide},
			BoardPosition: geometry.Position{X: 16, Y: 16, Width: boardSide, Height: boardSide},
			Strategy:      layout.StrategyHorizontal,
		},
		IsValid: true,
	}
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(0, 0)
	if m.maxHistory != DefaultMaxHistory {
		t.Errorf("maxHistory = %d, want %d", m.maxHistory, DefaultMaxHistory)
	}
	if m.cacheTTL != DefaultCacheTTL {
		t.Errorf("cacheTTL = %v, want %v", m.cacheTTL, DefaultCacheTTL)
	}
}

func TestSaveState_Validation(t *testing.T) {
	m := NewManager(0, 0)

	bad := validState(400)
	bad.Viewport = geometry.ViewportDimensions{Width: 10, Height: 10}
	if err := m.SaveState(bad); err == nil {
		t.Error("expected error for invalid viewport")
	}

	noConfig := validState(400)
	noConfig.Config = layout.Configuration{}
	if err := m.SaveState(noConfig); err == nil {
		t.Error("expected error for missing configuration")
	}

	if _, ok := m.GetState(); ok {
		t.Error("rejected states must not become current")
	}
}

func TestSaveState_Demotion(t *testing.T) {
	m := NewManager(3, 0)

	for i := 0; i < 6; i++ {
		s := validState(float64(300 + i))
		if err := m.SaveState(s); err != nil {
			t.Fatalf("SaveState #%d: %v", i, err)
		}
	}

	current, ok := m.GetState()
	if !ok {
		t.Fatal("no current state")
	}
	if current.Config.BoardSize.Width != 305 {
		t.Errorf("current board = %g, want 305", current.Config.BoardSize.Width)
	}

	previous, ok := m.GetPreviousState()
	if !ok {
		t.Fatal("no previous state")
	}
	if previous.Config.BoardSize.Width != 304 {
		t.Errorf("previous board = %g, want 304", previous.Config.BoardSize.Width)
	}

	if m.HistoryLen() != 3 {
		t.Errorf("HistoryLen = %d, want 3 (trimmed)", m.HistoryLen())
	}
}

func TestGetPreviousState_SkipsInvalid(t *testing.T) {
	m := NewManager(5, 0)

	valid := validState(300)
	if err := m.SaveState(valid); err != nil {
		t.Fatal(err)
	}

	invalid := validState(310)
	invalid.IsValid = false
	if err := m.SaveState(invalid); err != nil {
		t.Fatal(err)
	}

	if err := m.SaveState(validState(320)); err != nil {
		t.Fatal(err)
	}

	// previous (310) is invalid; rollback must land on 300 from history.
	prev, ok := m.GetPreviousState()
	if !ok {
		t.Fatal("expected a rollback target")
	}
	if prev.Config.BoardSize.Width != 300 {
		t.Errorf("rollback board = %g, want 300", prev.Config.BoardSize.Width)
	}
}

func TestInvalidateCurrentState(t *testing.T) {
	m := NewManager(0, 0)
	if err := m.SaveState(validState(300)); err != nil {
		t.Fatal(err)
	}
	m.InvalidateCurrentState()

	current, _ := m.GetState()
	if current.IsValid {
		t.Error("current state still valid after InvalidateCurrentState")
	}
}

func TestCache_IdempotentReadsAndHitCounting(t *testing.T) {
	m := NewManager(0, time.Minute)
	queries := 0
	query := func(id string) (geometry.Rect, bool) {
		queries++
		return geometry.Rect{X: 1, Y: 2, Width: 30, Height: 40}, true
	}

	first, ok := m.GetElementDimensions("board", query)
	if !ok {
		t.Fatal("first read failed")
	}
	second, ok := m.GetElementDimensions("board", query)
	if !ok {
		t.Fatal("second read failed")
	}

	if first != second {
		t.Errorf("reads differ: %+v vs %+v", first, second)
	}
	if queries != 1 {
		t.Errorf("query ran %d times, want 1", queries)
	}

	stats := m.GetCacheStats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
}

func TestCache_Expiry(t *testing.T) {
	m := NewManager(0, 20*time.Millisecond)
	m.CacheElementDimensions("e", geometry.Rect{Width: 10, Height: 10})

	if _, ok := m.GetCachedDimensions("e"); !ok {
		t.Fatal("entry missing before TTL")
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := m.GetCachedDimensions("e"); ok {
		t.Error("entry survived past TTL")
	}
}

func TestCache_RollingTimerResetByWrites(t *testing.T) {
	m := NewManager(0, 50*time.Millisecond)
	m.CacheElementDimensions("a", geometry.Rect{Width: 1, Height: 1})

	// Keep writing inside the TTL window; the first entry must survive
	// because every write restarts the rolling timer.
	for i := 0; i < 3; i++ {
		time.Sleep(25 * time.Millisecond)
		m.CacheElementDimensions("b", geometry.Rect{Width: 2, Height: 2})
	}

	if _, ok := m.GetCachedDimensions("a"); !ok {
		t.Error("entry expired despite rolling writes")
	}
}

func TestInvalidateCache_SelectiveAndFull(t *testing.T) {
	m := NewManager(0, time.Minute)
	m.CacheElementDimensions("a", geometry.Rect{Width: 1, Height: 1})
	m.CacheElementDimensions("b", geometry.Rect{Width: 2, Height: 2})

	m.InvalidateCache("a")
	if _, ok := m.GetCachedDimensions("a"); ok {
		t.Error("a survived selective invalidation")
	}
	if _, ok := m.GetCachedDimensions("b"); !ok {
		t.Error("b lost to selective invalidation")
	}

	m.InvalidateCache()
	if stats := m.GetCacheStats(); stats.Entries != 0 {
		t.Errorf("Entries after full invalidation = %d, want 0", stats.Entries)
	}
}

func TestResetCacheStats(t *testing.T) {
	m := NewManager(0, time.Minute)
	m.GetCachedDimensions("missing")
	m.ResetCacheStats()

	if stats := m.GetCacheStats(); stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("stats after reset = %+v, want zeroed", stats)
	}
}
