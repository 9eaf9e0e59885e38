// Package breakpoint derives content-aware layout thresholds from measured
// element sizes and enforces the minimum-spacing invariant between placed
// elements. Thresholds come from what the elements actually occupy, not
// from a fixed pixel table.
package breakpoint

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

// DefaultMinSpacing is the smallest allowed gap between placed elements.
const DefaultMinSpacing = 16

// DefaultRowTolerance is the vertical band within which two elements count
// as sharing a row for reading-order purposes.
const DefaultRowTolerance = 10

// Breakpoint is one derived threshold at which the layout strategy must
// change.
type Breakpoint struct {
	Threshold        float64
	Reason           string
	Strategy         layout.Strategy
	AffectedElements []string
	CalculatedAt     time.Time
}

// SpacingViolation reports one pair of elements placed closer than the
// minimum spacing.
type SpacingViolation struct {
	First   string
	Second  string
	Gap     float64
	Deficit float64
}

// Manager calculates and caches breakpoints. Visibility transitions
// invalidate the cache lazily: the next CalculateBreakpoints call sees the
// change, rapid-fire transitions cost one recomputation, not many.
type Manager struct {
	minSpacing   float64
	rowTolerance float64

	mu         sync.Mutex
	cached     []Breakpoint
	cacheKey   string
	cacheValid bool
	visibility map[string]bool
	listeners  []func()
}

// NewManager creates a breakpoint manager. Non-positive arguments select
// the package defaults.
func NewManager(minSpacing, rowTolerance float64) *Manager {
	if minSpacing <= 0 {
		minSpacing = DefaultMinSpacing
	}
	if rowTolerance <= 0 {
		rowTolerance = DefaultRowTolerance
	}
	return &Manager{
		minSpacing:   minSpacing,
		rowTolerance: rowTolerance,
		visibility:   make(map[string]bool),
	}
}

// OnInvalidate registers a listener called whenever cached breakpoints are
// invalidated by a genuine visibility transition.
func (m *Manager) OnInvalidate(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// CalculateBreakpoints simulates packing the elements left to right in
// reading order, recording a threshold each time the next element would
// push the accumulated row width past the viewport. Results are cached
// per input set until the next invalidation and always sorted by
// ascending threshold; a call with a different viewport or element
// snapshot recomputes instead of serving the stale derivation.
func (m *Manager) CalculateBreakpoints(elements []layout.ElementMetadata, dims geometry.ViewportDimensions) []Breakpoint {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fingerprint(elements, dims)
	if m.cacheValid && key == m.cacheKey {
		return m.cached
	}

	ordered := readingOrder(elements, m.rowTolerance)
	now := time.Now()

	var points []Breakpoint
	accumulated := 0.0
	var packed []string

	for _, e := range ordered {
		w := e.Current.Width
		if w <= 0 {
			w = e.MinWidth
		}
		next := accumulated + w
		if len(packed) > 0 {
			next += m.minSpacing
		}

		if next > dims.Width && len(packed) > 0 {
			points = append(points, Breakpoint{
				Threshold:        accumulated,
				Reason:           "row capacity exceeded by " + e.ID,
				Strategy:         strategyForWidth(accumulated, dims),
				AffectedElements: append([]string(nil), packed...),
				CalculatedAt:     now,
			})
			accumulated = w
			packed = packed[:0]
			packed = append(packed, e.ID)
			continue
		}

		accumulated = next
		packed = append(packed, e.ID)
	}

	if len(packed) > 0 {
		points = append(points, Breakpoint{
			Threshold:        accumulated,
			Reason:           "content width",
			Strategy:         strategyForWidth(accumulated, dims),
			AffectedElements: append([]string(nil), packed...),
			CalculatedAt:     now,
		})
	}

	sort.SliceStable(points, func(i, j int) bool { return points[i].Threshold < points[j].Threshold })

	m.cached = points
	m.cacheKey = key
	m.cacheValid = true
	return points
}

// fingerprint identifies one calculation's inputs: the viewport plus each
// element's identity, measured geometry, and width floor.
func fingerprint(elements []layout.ElementMetadata, dims geometry.ViewportDimensions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%gx%g", dims.Width, dims.Height)
	for _, e := range elements {
		fmt.Fprintf(&b, "|%s:%g,%g,%g,%g,%g",
			e.ID, e.Current.X, e.Current.Y, e.Current.Width, e.Current.Height, e.MinWidth)
	}
	return b.String()
}

// OnVisibilityChange records an element's visibility and, on a genuine
// transition from the cached prior state, invalidates the breakpoints and
// notifies listeners. Recomputation itself is deferred to the next
// CalculateBreakpoints call.
func (m *Manager) OnVisibilityChange(elementID string, visible bool) {
	m.mu.Lock()
	prior, seen := m.visibility[elementID]
	m.visibility[elementID] = visible
	genuine := !seen || prior != visible
	var listeners []func()
	if genuine {
		m.cacheValid = false
		m.cached = nil
		listeners = append(listeners, m.listeners...)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Invalidate drops cached breakpoints unconditionally.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	m.cacheValid = false
	m.cached = nil
	m.mu.Unlock()
}

// EnforceMinimumSpacing scans every pair of placed elements and reports
// those whose gap along the shared-alignment axis is below the minimum.
// Overlapping or touching pairs report a zero gap.
func (m *Manager) EnforceMinimumSpacing(positions map[string]geometry.Position) []SpacingViolation {
	ids := sortedIDs(positions)

	var violations []SpacingViolation
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := positions[ids[i]], positions[ids[j]]
			gap, aligned := alignedGap(a, b, m.rowTolerance)
			if !aligned || gap >= m.minSpacing {
				continue
			}
			violations = append(violations, SpacingViolation{
				First:   ids[i],
				Second:  ids[j],
				Gap:     gap,
				Deficit: m.minSpacing - gap,
			})
		}
	}
	return violations
}

// AdjustPositionsForSpacing walks elements in reading order and pushes each
// one forward by exactly its spacing deficit against its predecessor:
// horizontally when the pair shares a row, vertically otherwise.
func (m *Manager) AdjustPositionsForSpacing(positions map[string]geometry.Position) map[string]geometry.Position {
	type placed struct {
		id  string
		pos geometry.Position
	}
	items := make([]placed, 0, len(positions))
	for _, id := range sortedIDs(positions) {
		items = append(items, placed{id: id, pos: positions[id]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return beforeInReadingOrder(items[i].pos, items[j].pos, m.rowTolerance)
	})

	adjusted := make(map[string]geometry.Position, len(items))
	for i, it := range items {
		pos := it.pos
		if i > 0 {
			prev := adjusted[items[i-1].id]
			if sameRow(prev, pos, m.rowTolerance) {
				gap := pos.X - (prev.X + prev.Width)
				if gap < m.minSpacing {
					pos.X += m.minSpacing - gap
				}
			} else {
				gap := pos.Y - (prev.Y + prev.Height)
				if gap < m.minSpacing {
					pos.Y += m.minSpacing - gap
				}
			}
		}
		adjusted[it.id] = pos
	}
	return adjusted
}

// MinSpacing returns the configured minimum gap.
func (m *Manager) MinSpacing() float64 { return m.minSpacing }

// readingOrder sorts elements top-to-bottom then left-to-right, treating
// vertical offsets within the tolerance band as the same row.
func readingOrder(elements []layout.ElementMetadata, tolerance float64) []layout.ElementMetadata {
	ordered := append([]layout.ElementMetadata(nil), elements...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return beforeInReadingOrder(ordered[i].Current, ordered[j].Current, tolerance)
	})
	return ordered
}

func beforeInReadingOrder(a, b geometry.Position, tolerance float64) bool {
	if math.Abs(a.Y-b.Y) <= tolerance {
		return a.X < b.X
	}
	return a.Y < b.Y
}

func sameRow(a, b geometry.Position, tolerance float64) bool {
	return math.Abs(a.Y-b.Y) <= tolerance
}

// alignedGap computes the clear gap between two positions along the axis
// they align on. Pairs aligned on neither axis are not spacing-constrained.
func alignedGap(a, b geometry.Position, tolerance float64) (float64, bool) {
	switch {
	case sameRow(a, b, tolerance):
		if b.X < a.X {
			a, b = b, a
		}
		return math.Max(b.X-(a.X+a.Width), 0), true
	case math.Abs(a.X-b.X) <= tolerance:
		if b.Y < a.Y {
			a, b = b, a
		}
		return math.Max(b.Y-(a.Y+a.Height), 0), true
	default:
		return 0, false
	}
}

func strategyForWidth(width float64, dims geometry.ViewportDimensions) layout.Strategy {
	if width > dims.Width*0.75 {
		return layout.StrategyVertical
	}
	return layout.StrategyHorizontal
}

func sortedIDs(positions map[string]geometry.Position) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
