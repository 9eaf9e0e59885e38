// Package state owns layout history and the per-element geometry cache.
// Nothing outside this package mutates its maps; all access goes through
// accessor methods.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

// Defaults for history depth and cache expiry.
const (
	DefaultMaxHistory = 10
	DefaultCacheTTL   = 1000 * time.Millisecond
)

// LayoutState is one snapshot for history and rollback.
type LayoutState struct {
	Timestamp time.Time
	Viewport  geometry.ViewportDimensions
	Config    layout.Configuration
	Geometry  map[string]geometry.Rect
	IsValid   bool
}

// CacheStats reports cumulative cache behavior for the process lifetime.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
}

// Manager stores current/previous/historical layout states and caches
// element geometry to avoid redundant host queries.
type Manager struct {
	maxHistory int
	cacheTTL   time.Duration

	mu       sync.Mutex
	current  *LayoutState
	previous *LayoutState
	history  []*LayoutState

	cache      map[string]geometry.Rect
	cacheTimer *time.Timer
	hits       int
	misses     int
}

// NewManager creates a state manager. Non-positive arguments select the
// package defaults.
func NewManager(maxHistory int, cacheTTL time.Duration) *Manager {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Manager{
		maxHistory: maxHistory,
		cacheTTL:   cacheTTL,
		cache:      make(map[string]geometry.Rect),
	}
}

// SaveState accepts a snapshot after validating it, then demotes
// current to previous and previous into history, trimming history to the
// configured maximum.
func (m *Manager) SaveState(s LayoutState) error {
	if !s.Viewport.Valid() {
		return fmt.Errorf("state has invalid viewport: %gx%g", s.Viewport.Width, s.Viewport.Height)
	}
	if s.Config.BoardSize.Width <= 0 || s.Config.BoardSize.Height <= 0 {
		return fmt.Errorf("state has no configuration")
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.previous != nil {
		m.history = append([]*LayoutState{m.previous}, m.history...)
		if len(m.history) > m.maxHistory {
			m.history = m.history[:m.maxHistory]
		}
	}
	m.previous = m.current
	snapshot := s
	m.current = &snapshot
	return nil
}

// GetState returns the current state, or false when none was saved yet.
func (m *Manager) GetState() (LayoutState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return LayoutState{}, false
	}
	return *m.current, true
}

// GetPreviousState walks backward from the previous state through history
// and returns the first snapshot still flagged valid. Used as the rollback
// target after a failed pass.
func (m *Manager) GetPreviousState() (LayoutState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.previous != nil && m.previous.IsValid {
		return *m.previous, true
	}
	for _, s := range m.history {
		if s.IsValid {
			return *s, true
		}
	}
	return LayoutState{}, false
}

// InvalidateCurrentState flags the current snapshot so rollback skips it.
func (m *Manager) InvalidateCurrentState() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.IsValid = false
	}
}

// HistoryLen returns the number of demoted snapshots beyond previous.
func (m *Manager) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// CacheElementDimensions stores one element's geometry and restarts the
// rolling expiry timer.
func (m *Manager) CacheElementDimensions(elementID string, rect geometry.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[elementID] = rect
	m.armCacheTimerLocked()
}

// GetCachedDimensions returns cached geometry, counting a hit or miss.
func (m *Manager) GetCachedDimensions(elementID string) (geometry.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rect, ok := m.cache[elementID]
	if ok {
		m.hits++
	} else {
		m.misses++
	}
	return rect, ok
}

// GetElementDimensions is the cache-or-query read: a cached entry is
// returned as-is; otherwise query runs and its result is cached.
func (m *Manager) GetElementDimensions(elementID string, query func(string) (geometry.Rect, bool)) (geometry.Rect, bool) {
	if rect, ok := m.GetCachedDimensions(elementID); ok {
		return rect, true
	}
	if query == nil {
		return geometry.Rect{}, false
	}
	rect, ok := query(elementID)
	if !ok {
		return geometry.Rect{}, false
	}
	m.CacheElementDimensions(elementID, rect)
	return rect, true
}

// InvalidateCache drops the given entries, or every entry when none are
// named. Any pending expiry timer is cancelled.
func (m *Manager) InvalidateCache(elementIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cacheTimer != nil {
		m.cacheTimer.Stop()
		m.cacheTimer = nil
	}
	if len(elementIDs) == 0 {
		m.cache = make(map[string]geometry.Rect)
		return
	}
	for _, id := range elementIDs {
		delete(m.cache, id)
	}
	if len(m.cache) > 0 {
		m.armCacheTimerLocked()
	}
}

// GetCacheStats returns cumulative hit/miss counters and the live entry
// count.
func (m *Manager) GetCacheStats() CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CacheStats{Hits: m.hits, Misses: m.misses, Entries: len(m.cache)}
}

// ResetCacheStats zeroes the counters. Counters otherwise accumulate for
// the process lifetime.
func (m *Manager) ResetCacheStats() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits = 0
	m.misses = 0
}

// armCacheTimerLocked restarts the rolling expiry: every write pushes the
// whole cache's expiry out by one TTL.
func (m *Manager) armCacheTimerLocked() {
	if m.cacheTimer != nil {
		m.cacheTimer.Stop()
	}
	m.cacheTimer = time.AfterFunc(m.cacheTTL, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cache = make(map[string]geometry.Rect)
		m.cacheTimer = nil
	})
}
