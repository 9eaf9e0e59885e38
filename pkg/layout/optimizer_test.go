package layout

import (
	"testing"

	"github.com/gambitui/gambit/pkg/geometry"
)

func testElements() []ElementMetadata {
	return []ElementMetadata{
		{ID: "board", Kind: KindBoard, Priority: BoardPriority},
		{ID: "left-controls", Kind: KindControl, Priority: 10, MinWidth: 180, MinHeight: 140, CanStack: true, CanScroll: true},
		{ID: "right-controls", Kind: KindControl, Priority: 10, MinWidth: 180, MinHeight: 140, CanStack: true, CanScroll: true},
		{ID: "move-history", Kind: KindInfo, Priority: 5, MinWidth: 200, MinHeight: 160, CanStack: true, CanScroll: true},
		{ID: "analysis-panel", Kind: KindInfo, Priority: 5, MinWidth: 200, MinHeight: 160, CanStack: true, CanScroll: true},
	}
}

func TestCalculateBoardSize_FloorAcrossViewportRange(t *testing.T) {
	o := NewOptimizer(Config{})
	elements := testElements()

	// Sweep the supported envelope including the extreme corners.
	for _, w := range []float64{320, 480, 800, 1280, 1920, 2560, 3840} {
		for _, h := range []float64{480, 600, 852, 1080, 1440, 2160} {
			size := o.CalculateBoardSize(geometry.Size{Width: w, Height: h}, elements)
			if size.Width != size.Height {
				t.Errorf("board at %gx%g is not square: %gx%g", w, h, size.Width, size.Height)
			}
			if size.Width < MinBoardSize {
				t.Errorf("board at %gx%g = %g, want >= %d", w, h, size.Width, MinBoardSize)
			}
		}
	}
}

func TestCalculateBoardSize_NeverExceedsSquareFit(t *testing.T) {
	o := NewOptimizer(Config{})
	size := o.CalculateBoardSize(geometry.Size{Width: 1920, Height: 1080}, testElements())
	if size.Width > 1080 {
		t.Errorf("board side = %g, want <= 1080 (full square fit)", size.Width)
	}
}

func TestDetermineStrategy_ExtremeAspectRatios(t *testing.T) {
	o := NewOptimizer(Config{})

	// Ultra-wide always goes horizontal, regardless of element count.
	wide := geometry.NewViewportDimensions(3840, 1080, 1)
	if got := o.DetermineStrategy(wide, testElements()); got != StrategyHorizontal {
		t.Errorf("strategy at 3840x1080 = %v, want horizontal", got)
	}
	if got := o.DetermineStrategy(wide, nil); got != StrategyHorizontal {
		t.Errorf("strategy at 3840x1080 with no elements = %v, want horizontal", got)
	}

	// Ultra-tall always goes vertical. 480x2160 has aspect 0.22.
	tall := geometry.NewViewportDimensions(480, 2160, 1)
	if got := o.DetermineStrategy(tall, testElements()); got != StrategyVertical {
		t.Errorf("strategy at 480x2160 = %v, want vertical", got)
	}
}

func TestCalculateOptimalLayout_Desktop(t *testing.T) {
	o := NewOptimizer(Config{})
	analysis := Analysis{
		Viewport: geometry.NewViewportDimensions(1920, 1080, 1),
		Elements: testElements(),
	}

	cfg, err := o.CalculateOptimalLayout(analysis)
	if err != nil {
		t.Fatalf("CalculateOptimalLayout: %v", err)
	}

	if cfg.Strategy != StrategyHorizontal {
		t.Errorf("Strategy = %v, want horizontal", cfg.Strategy)
	}
	if cfg.BoardSize.Width < MinBoardSize {
		t.Errorf("BoardSize = %g, want >= %d", cfg.BoardSize.Width, MinBoardSize)
	}
	if cfg.BoardSize.Width > 1080 {
		t.Errorf("BoardSize = %g, want <= square fit 1080", cfg.BoardSize.Width)
	}

	result := o.ValidateLayout(cfg)
	if !result.Valid {
		t.Errorf("ValidateLayout failed: %v", result.Errors)
	}
}

func TestCalculateOptimalLayout_NarrowPhone(t *testing.T) {
	o := NewOptimizer(Config{})
	analysis := Analysis{
		Viewport: geometry.NewViewportDimensions(320, 852, 1),
		Elements: testElements(),
	}

	cfg, err := o.CalculateOptimalLayout(analysis)
	if err != nil {
		t.Fatalf("CalculateOptimalLayout: %v", err)
	}

	// 320/852 is narrow but not below the 1:3 extreme, so the
	// remaining-space test decides; a 320-wide viewport cannot hold a
	// floored board plus a side column.
	if cfg.Strategy == StrategyHorizontal {
		t.Errorf("Strategy = horizontal, want vertical or hybrid on 320x852")
	}
	if cfg.BoardSize.Width < MinBoardSize {
		t.Errorf("BoardSize = %g, want >= %d", cfg.BoardSize.Width, MinBoardSize)
	}
}

func TestCalculateOptimalLayout_PositionValidity(t *testing.T) {
	o := NewOptimizer(Config{})
	viewports := []struct{ w, h float64 }{
		{320, 480}, {320, 852}, {768, 1024}, {1280, 720}, {1920, 1080}, {3840, 2160}, {3840, 480},
	}

	for _, vp := range viewports {
		analysis := Analysis{
			Viewport: geometry.NewViewportDimensions(vp.w, vp.h, 1),
			Elements: testElements(),
		}
		cfg, err := o.CalculateOptimalLayout(analysis)
		if err != nil {
			t.Fatalf("CalculateOptimalLayout(%gx%g): %v", vp.w, vp.h, err)
		}
		if err := cfg.BoardPosition.Validate(); err != nil {
			t.Errorf("board position at %gx%g: %v", vp.w, vp.h, err)
		}
		for id, pos := range cfg.ElementPositions {
			if err := pos.Validate(); err != nil {
				t.Errorf("element %s at %gx%g: %v", id, vp.w, vp.h, err)
			}
		}
	}
}

func TestCalculateOptimalLayout_ScrollingWhenElementsSpill(t *testing.T) {
	o := NewOptimizer(Config{})
	analysis := Analysis{
		Viewport: geometry.NewViewportDimensions(320, 480, 1),
		Elements: testElements(),
	}

	cfg, err := o.CalculateOptimalLayout(analysis)
	if err != nil {
		t.Fatalf("CalculateOptimalLayout: %v", err)
	}

	// Five panels cannot fit beside or below a 280px board in 320x480.
	if !cfg.RequiresScrolling {
		t.Fatal("RequiresScrolling = false, want true on 320x480")
	}
	if len(cfg.ScrollContainers) == 0 {
		t.Fatal("no scroll containers declared despite RequiresScrolling")
	}
	for _, sc := range cfg.ScrollContainers {
		if sc.MaxHeight <= 0 {
			t.Errorf("container %s MaxHeight = %g, want > 0", sc.ID, sc.MaxHeight)
		}
		if len(sc.ElementIDs) == 0 {
			t.Errorf("container %s has no elements", sc.ID)
		}
	}
}

func TestCalculateElementPositions_HybridWraps(t *testing.T) {
	o := NewOptimizer(Config{})
	elements := []ElementMetadata{
		{ID: "a", Kind: KindControl, MinWidth: 100, MinHeight: 100},
		{ID: "b", Kind: KindControl, MinWidth: 100, MinHeight: 100},
		{ID: "c", Kind: KindControl, MinWidth: 100, MinHeight: 100},
	}
	avail := geometry.Rect{X: 0, Y: 0, Width: 400, Height: 250}

	positions := o.CalculateElementPositions(elements, StrategyHybrid, avail)

	// Two fit per column (100 + 16 + 100 = 216); the third wraps.
	a, b, c := positions["a"], positions["b"], positions["c"]
	if a.X != b.X {
		t.Errorf("a.X = %g, b.X = %g, want same column", a.X, b.X)
	}
	if c.X <= a.X {
		t.Errorf("c.X = %g, want > %g (new column)", c.X, a.X)
	}
	if c.Y != avail.Y {
		t.Errorf("c.Y = %g, want %g (top of new column)", c.Y, avail.Y)
	}
}

func TestCalculateElementPositions_VerticalIsFullWidth(t *testing.T) {
	o := NewOptimizer(Config{})
	elements := []ElementMetadata{
		{ID: "a", Kind: KindControl, MinWidth: 100, MinHeight: 80},
		{ID: "b", Kind: KindInfo, MinWidth: 120, MinHeight: 80},
	}
	avail := geometry.Rect{X: 16, Y: 300, Width: 288, Height: 400}

	positions := o.CalculateElementPositions(elements, StrategyVertical, avail)

	for id, pos := range positions {
		if pos.Width != avail.Width {
			t.Errorf("element %s Width = %g, want full width %g", id, pos.Width, avail.Width)
		}
	}
	if positions["a"].Y >= positions["b"].Y && positions["b"].Y >= positions["a"].Y {
		t.Error("stacked elements share a Y coordinate")
	}
}

func TestCalculateElementPositions_HigherPriorityFirst(t *testing.T) {
	o := NewOptimizer(Config{})
	elements := []ElementMetadata{
		{ID: "low", Kind: KindInfo, Priority: 1, MinWidth: 100, MinHeight: 100},
		{ID: "high", Kind: KindControl, Priority: 9, MinWidth: 100, MinHeight: 100},
	}
	avail := geometry.Rect{X: 0, Y: 0, Width: 400, Height: 600}

	positions := o.CalculateElementPositions(elements, StrategyHorizontal, avail)
	if positions["high"].Y >= positions["low"].Y {
		t.Errorf("high.Y = %g, low.Y = %g, want high placed first", positions["high"].Y, positions["low"].Y)
	}
}

func TestValidateLayout_RejectsBadConfigurations(t *testing.T) {
	o := NewOptimizer(Config{})
	good := Configuration{
		BoardSize:     geometry.Size{Width: 400, Height: 400},
		BoardPosition: geometry.Position{X: 16, Y: 16, Width: 400, Height: 400},
		ElementPositions: map[string]geometry.Position{
			"a": {X: 432, Y: 16, Width: 100, Height: 100},
		},
		Strategy: StrategyHorizontal,
	}
	if result := o.ValidateLayout(good); !result.Valid {
		t.Fatalf("valid configuration rejected: %v", result.Errors)
	}

	tests := []struct {
		name   string
		mutate func(*Configuration)
	}{
		{"board below floor", func(c *Configuration) { c.BoardSize = geometry.Size{Width: 100, Height: 100} }},
		{"board not square", func(c *Configuration) { c.BoardSize = geometry.Size{Width: 400, Height: 300} }},
		{"negative element position", func(c *Configuration) {
			c.ElementPositions["a"] = geometry.Position{X: -5, Y: 0, Width: 100, Height: 100}
		}},
		{"unknown strategy", func(c *Configuration) { c.Strategy = Strategy(42) }},
		{"container without height", func(c *Configuration) {
			c.ScrollContainers = []ScrollContainerSpec{{ID: "s", ElementIDs: []string{"a"}}}
		}},
		{"container without elements", func(c *Configuration) {
			c.ScrollContainers = []ScrollContainerSpec{{ID: "s", MaxHeight: 200}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := good
			cfg.ElementPositions = map[string]geometry.Position{"a": good.ElementPositions["a"]}
			tt.mutate(&cfg)
			if result := o.ValidateLayout(cfg); result.Valid {
				t.Error("invalid configuration accepted")
			}
		})
	}
}

func TestCalculateOptimalLayout_RejectsInvalidViewport(t *testing.T) {
	o := NewOptimizer(Config{})
	analysis := Analysis{
		Viewport: geometry.ViewportDimensions{Width: 0, Height: 0},
		Elements: testElements(),
	}
	if _, err := o.CalculateOptimalLayout(analysis); err == nil {
		t.Error("expected error for zero viewport, got nil")
	}
}
