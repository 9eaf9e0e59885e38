package breakpoint

import (
	"testing"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

func placedElement(id string, x, y, w, h float64) layout.ElementMetadata {
	return layout.ElementMetadata{
		ID:      id,
		Current: geometry.Position{X: x, Y: y, Width: w, Height: h},
	}
}

func TestCalculateBreakpoints_MonotonicThresholds(t *testing.T) {
	m := NewManager(0, 0)
	dims := geometry.NewViewportDimensions(800, 1080, 1)
	elements := []layout.ElementMetadata{
		placedElement("a", 0, 0, 300, 100),
		placedElement("b", 320, 0, 300, 100),
		placedElement("c", 640, 0, 300, 100),
		placedElement("d", 0, 120, 500, 100),
	}

	points := m.CalculateBreakpoints(elements, dims)
	if len(points) == 0 {
		t.Fatal("expected at least one breakpoint")
	}
	for i := 1; i < len(points); i++ {
		if points[i].Threshold < points[i-1].Threshold {
			t.Errorf("thresholds not monotonic: [%d]=%g < [%d]=%g",
				i, points[i].Threshold, i-1, points[i-1].Threshold)
		}
	}
	for _, p := range points {
		if len(p.AffectedElements) == 0 {
			t.Errorf("breakpoint at %g has no affected elements", p.Threshold)
		}
		if p.CalculatedAt.IsZero() {
			t.Errorf("breakpoint at %g has zero CalculatedAt", p.Threshold)
		}
	}
}

func TestCalculateBreakpoints_DerivedFromContent(t *testing.T) {
	m := NewManager(0, 0)
	dims := geometry.NewViewportDimensions(1000, 1080, 1)

	narrow := []layout.ElementMetadata{
		placedElement("a", 0, 0, 100, 50),
		placedElement("b", 120, 0, 100, 50),
	}
	wide := []layout.ElementMetadata{
		placedElement("a", 0, 0, 400, 50),
		placedElement("b", 420, 0, 400, 50),
	}

	narrowPoints := m.CalculateBreakpoints(narrow, dims)
	m.Invalidate()
	widePoints := m.CalculateBreakpoints(wide, dims)

	if narrowPoints[len(narrowPoints)-1].Threshold == widePoints[len(widePoints)-1].Threshold {
		t.Error("breakpoints did not change with element widths: thresholds must be content-derived")
	}
}

func TestCalculateBreakpoints_CachedForRepeatedInputs(t *testing.T) {
	m := NewManager(0, 0)
	dims := geometry.NewViewportDimensions(800, 1080, 1)
	elements := []layout.ElementMetadata{placedElement("a", 0, 0, 300, 100)}

	first := m.CalculateBreakpoints(elements, dims)
	second := m.CalculateBreakpoints(elements, dims)
	if &first[0] != &second[0] {
		t.Error("identical inputs were recomputed instead of served from cache")
	}

	// A changed element snapshot is a different derivation, cached or not.
	moved := m.CalculateBreakpoints([]layout.ElementMetadata{placedElement("a", 0, 0, 600, 100)}, dims)
	if moved[0].Threshold != 600 {
		t.Errorf("threshold after element change = %g, want 600", moved[0].Threshold)
	}

	m.Invalidate()
	third := m.CalculateBreakpoints(elements, dims)
	if len(third) != 1 || third[0].Threshold != 300 {
		t.Errorf("recomputation after Invalidate = %+v, want single 300 threshold", third)
	}
}

func TestCalculateBreakpoints_ViewportChangeRecomputes(t *testing.T) {
	m := NewManager(0, 0)
	elements := []layout.ElementMetadata{
		placedElement("a", 0, 0, 400, 100),
		placedElement("b", 420, 0, 400, 100),
		placedElement("c", 840, 0, 400, 100),
	}

	wide := m.CalculateBreakpoints(elements, geometry.NewViewportDimensions(1920, 1080, 1))
	if len(wide) != 1 {
		t.Fatalf("breakpoints at 1920 = %d, want 1", len(wide))
	}

	// A resize with no visibility transition must still see fresh
	// thresholds, not the wide-viewport derivation.
	narrow := m.CalculateBreakpoints(elements, geometry.NewViewportDimensions(500, 1080, 1))
	if len(narrow) != 3 {
		t.Errorf("breakpoints at 500 = %d, want 3", len(narrow))
	}
}

func TestOnVisibilityChange_GenuineTransitionsOnly(t *testing.T) {
	m := NewManager(0, 0)
	invalidations := 0
	m.OnInvalidate(func() { invalidations++ })

	// Seed the prior state.
	m.OnVisibilityChange("panel", true)
	seed := invalidations

	// Repeat of the same state: not a transition.
	m.OnVisibilityChange("panel", true)
	if invalidations != seed {
		t.Errorf("repeat state invalidated %d times, want 0", invalidations-seed)
	}

	// Genuine transition out.
	m.OnVisibilityChange("panel", false)
	if invalidations != seed+1 {
		t.Errorf("transition out invalidated %d times, want 1", invalidations-seed)
	}

	// Transition back to the original state is still genuine: exactly one
	// more invalidation, not zero and not two.
	m.OnVisibilityChange("panel", true)
	if invalidations != seed+2 {
		t.Errorf("transition back invalidated %d times total, want 2", invalidations-seed)
	}
}

func TestOnVisibilityChange_LazyRecomputation(t *testing.T) {
	m := NewManager(0, 0)
	dims := geometry.NewViewportDimensions(800, 1080, 1)

	m.CalculateBreakpoints([]layout.ElementMetadata{placedElement("a", 0, 0, 300, 100)}, dims)
	m.OnVisibilityChange("a", false)

	// The change is only observable at the next read.
	points := m.CalculateBreakpoints([]layout.ElementMetadata{placedElement("a", 0, 0, 600, 100)}, dims)
	if points[0].Threshold != 600 {
		t.Errorf("threshold after invalidation = %g, want 600", points[0].Threshold)
	}
}

func TestEnforceMinimumSpacing(t *testing.T) {
	m := NewManager(16, 0)

	positions := map[string]geometry.Position{
		"a": {X: 0, Y: 0, Width: 100, Height: 50},
		"b": {X: 104, Y: 0, Width: 100, Height: 50}, // 4px gap, same row
		"c": {X: 0, Y: 100, Width: 100, Height: 50}, // 50px below a, same column
	}

	violations := m.EnforceMinimumSpacing(positions)
	if len(violations) != 1 {
		t.Fatalf("violations = %d, want 1: %+v", len(violations), violations)
	}
	v := violations[0]
	if v.First != "a" || v.Second != "b" {
		t.Errorf("violation pair = %s/%s, want a/b", v.First, v.Second)
	}
	if v.Gap != 4 {
		t.Errorf("Gap = %g, want 4", v.Gap)
	}
	if v.Deficit != 12 {
		t.Errorf("Deficit = %g, want 12", v.Deficit)
	}
}

func TestAdjustPositionsForSpacing_RowAligned(t *testing.T) {
	m := NewManager(16, 0)
	positions := map[string]geometry.Position{
		"a": {X: 0, Y: 0, Width: 100, Height: 50},
		"b": {X: 104, Y: 0, Width: 100, Height: 50},
	}

	adjusted := m.AdjustPositionsForSpacing(positions)
	if got := adjusted["b"].X; got != 116 {
		t.Errorf("b.X = %g, want 116 (pushed by exact deficit)", got)
	}
	if adjusted["a"] != positions["a"] {
		t.Error("first element in reading order must not move")
	}

	if violations := m.EnforceMinimumSpacing(adjusted); len(violations) != 0 {
		t.Errorf("violations after adjustment = %+v, want none", violations)
	}
}

func TestAdjustPositionsForSpacing_ColumnAligned(t *testing.T) {
	m := NewManager(16, 0)
	positions := map[string]geometry.Position{
		"a": {X: 0, Y: 0, Width: 100, Height: 50},
		"b": {X: 0, Y: 55, Width: 100, Height: 50}, // 5px below a
	}

	adjusted := m.AdjustPositionsForSpacing(positions)
	if got := adjusted["b"].Y; got != 66 {
		t.Errorf("b.Y = %g, want 66 (50 + 16 spacing)", got)
	}
}

func TestAdjustPositionsForSpacing_ChainedDeficits(t *testing.T) {
	m := NewManager(16, 0)
	positions := map[string]geometry.Position{
		"a": {X: 0, Y: 0, Width: 100, Height: 50},
		"b": {X: 100, Y: 0, Width: 100, Height: 50},
		"c": {X: 200, Y: 0, Width: 100, Height: 50},
	}

	adjusted := m.AdjustPositionsForSpacing(positions)
	if got := adjusted["b"].X; got != 116 {
		t.Errorf("b.X = %g, want 116", got)
	}
	// c is measured against the already-pushed b.
	if got := adjusted["c"].X; got != 232 {
		t.Errorf("c.X = %g, want 232", got)
	}
	if violations := m.EnforceMinimumSpacing(adjusted); len(violations) != 0 {
		t.Errorf("violations after adjustment = %+v, want none", violations)
	}
}
