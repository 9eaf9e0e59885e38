package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/gambitui/gambit/pkg/geometry"
)

// Fallback element footprint used when metadata carries no minimum size.
const (
	defaultElementWidth  = 160
	defaultElementHeight = 120
)

// Aspect-ratio extremes that force a strategy regardless of element fit.
const (
	wideAspectLimit   = 3.0
	narrowAspectLimit = 1.0 / 3.0
)

// Config carries the optimizer's tunables. The zero value selects the
// package defaults.
type Config struct {
	MinBoardSize float64
	Spacing      float64
}

// Optimizer computes layout configurations. It holds no mutable state;
// all methods are pure functions over their arguments.
type Optimizer struct {
	cfg Config
}

// NewOptimizer creates an optimizer, filling unset config fields with the
// package defaults.
func NewOptimizer(cfg Config) *Optimizer {
	if cfg.MinBoardSize <= 0 {
		cfg.MinBoardSize = MinBoardSize
	}
	if cfg.Spacing <= 0 {
		cfg.Spacing = MinSpacing
	}
	return &Optimizer{cfg: cfg}
}

// CalculateBoardSize allocates board space before any UI space. The board
// side is the larger of the "UI beside" and "UI below" candidates, capped
// at the full square fit, and never below the configured floor: when the
// floor wins, the UI absorbs the deficit through stacking or scrolling.
func (o *Optimizer) CalculateBoardSize(avail geometry.Size, elements []ElementMetadata) geometry.Size {
	ui := uiElements(elements)
	spacing := o.cfg.Spacing

	fullSquare := math.Min(avail.Width, avail.Height)
	beside := avail.Width - o.sideColumnWidth(ui) - 2*spacing
	below := avail.Height - o.stackedHeight(ui) - 2*spacing

	// Ties fall to the beside candidate, matching the horizontal
	// preference in strategy selection.
	side := math.Max(beside, below)
	side = math.Min(side, fullSquare)
	side = math.Floor(side)
	if side < o.cfg.MinBoardSize {
		side = o.cfg.MinBoardSize
	}

	return geometry.Size{Width: side, Height: side}
}

// DetermineStrategy picks the arrangement of UI elements around the board.
// Extreme aspect ratios short-circuit; otherwise the remaining space after
// board allocation decides.
func (o *Optimizer) DetermineStrategy(dims geometry.ViewportDimensions, elements []ElementMetadata) Strategy {
	if dims.AspectRatio > wideAspectLimit {
		return StrategyHorizontal
	}
	if dims.AspectRatio < narrowAspectLimit {
		return StrategyVertical
	}

	ui := uiElements(elements)
	board := o.CalculateBoardSize(geometry.Size{Width: dims.Width, Height: dims.Height}, elements)
	spacing := o.cfg.Spacing

	remainingWidth := dims.Width - board.Width - 2*spacing
	if remainingWidth >= o.sideColumnWidth(ui) {
		return StrategyHorizontal
	}
	remainingHeight := dims.Height - board.Height - 2*spacing
	if remainingHeight >= o.stackedHeight(ui) {
		return StrategyVertical
	}
	return StrategyHybrid
}

// CalculateElementPositions places UI elements inside avail, advancing a
// cursor along the axis the strategy implies. Hybrid wraps to a new column
// when the vertical cursor would pass the bottom of avail.
func (o *Optimizer) CalculateElementPositions(elements []ElementMetadata, strategy Strategy, avail geometry.Rect) map[string]geometry.Position {
	ui := uiElements(elements)
	positions := make(map[string]geometry.Position, len(ui))
	spacing := o.cfg.Spacing

	x := math.Max(avail.X, 0)
	y := math.Max(avail.Y, 0)
	colWidth := 0.0

	for _, e := range ui {
		w := elementWidth(e)
		h := elementHeight(e)

		switch strategy {
		case StrategyVertical:
			// Stacked elements become block-level: full available width.
			if avail.Width > 0 {
				w = avail.Width
			}
		case StrategyHybrid:
			if y+h > avail.Bottom() && y > avail.Y {
				x += colWidth + spacing
				y = math.Max(avail.Y, 0)
				colWidth = 0
			}
		}

		positions[e.ID] = geometry.Position{X: x, Y: y, Width: w, Height: h, ZIndex: zIndexFor(e.Kind)}
		y += h + spacing
		colWidth = math.Max(colWidth, w)
	}

	return positions
}

// CalculateOptimalLayout runs the full pipeline for one analysis snapshot:
// board size, board position, strategy, element placement, and scroll
// container planning.
func (o *Optimizer) CalculateOptimalLayout(analysis Analysis) (Configuration, error) {
	dims := analysis.Viewport
	if !dims.Valid() {
		return Configuration{}, fmt.Errorf("viewport dimensions out of range: %gx%g", dims.Width, dims.Height)
	}

	board := o.CalculateBoardSize(geometry.Size{Width: dims.Width, Height: dims.Height}, analysis.Elements)
	strategy := o.DetermineStrategy(dims, analysis.Elements)

	boardPos := o.boardPosition(dims, board, strategy)
	avail := o.uiRegion(dims, boardPos, strategy)
	positions := o.CalculateElementPositions(analysis.Elements, strategy, avail)

	cfg := Configuration{
		BoardSize:        board,
		BoardPosition:    boardPos,
		ElementPositions: positions,
		Strategy:         strategy,
	}

	o.planScrolling(&cfg, analysis.Elements, avail)
	return cfg, nil
}

// ValidateLayout checks a configuration against the applicability
// invariants and collects every violation.
func (o *Optimizer) ValidateLayout(cfg Configuration) ValidationResult {
	var errs []string

	if cfg.BoardSize.Width != cfg.BoardSize.Height {
		errs = append(errs, fmt.Sprintf("board is not square: %gx%g", cfg.BoardSize.Width, cfg.BoardSize.Height))
	}
	if cfg.BoardSize.Width < o.cfg.MinBoardSize {
		errs = append(errs, fmt.Sprintf("board size %g below minimum %g", cfg.BoardSize.Width, o.cfg.MinBoardSize))
	}
	if err := cfg.BoardPosition.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("board position: %v", err))
	}
	for id, pos := range cfg.ElementPositions {
		if err := pos.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("element %s: %v", id, err))
		}
	}
	if !cfg.Strategy.valid() {
		errs = append(errs, fmt.Sprintf("unknown strategy %d", cfg.Strategy))
	}
	for _, sc := range cfg.ScrollContainers {
		if sc.MaxHeight <= 0 {
			errs = append(errs, fmt.Sprintf("scroll container %s has non-positive max height %g", sc.ID, sc.MaxHeight))
		}
		if len(sc.ElementIDs) == 0 {
			errs = append(errs, fmt.Sprintf("scroll container %s has no elements", sc.ID))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// boardPosition centers the board along the axis not consumed by UI.
func (o *Optimizer) boardPosition(dims geometry.ViewportDimensions, board geometry.Size, strategy Strategy) geometry.Position {
	spacing := o.cfg.Spacing
	pos := geometry.Position{Width: board.Width, Height: board.Height, ZIndex: zIndexFor(KindBoard)}

	if strategy == StrategyVertical {
		pos.X = math.Max((dims.Width-board.Width)/2, 0)
		pos.Y = spacing
		if pos.Y+board.Height > dims.Height {
			pos.Y = math.Max(dims.Height-board.Height, 0)
		}
	} else {
		pos.X = spacing
		if pos.X+board.Width > dims.Width {
			pos.X = math.Max(dims.Width-board.Width, 0)
		}
		pos.Y = math.Max((dims.Height-board.Height)/2, 0)
	}

	return pos
}

// uiRegion is the rectangle left over for UI elements after the board
// claims its space.
func (o *Optimizer) uiRegion(dims geometry.ViewportDimensions, boardPos geometry.Position, strategy Strategy) geometry.Rect {
	spacing := o.cfg.Spacing

	if strategy == StrategyVertical {
		top := boardPos.Y + boardPos.Height + spacing
		return geometry.Rect{
			X:      spacing,
			Y:      top,
			Width:  math.Max(dims.Width-2*spacing, 0),
			Height: math.Max(dims.Height-top-spacing, 0),
		}
	}

	left := boardPos.X + boardPos.Width + spacing
	return geometry.Rect{
		X:      left,
		Y:      spacing,
		Width:  math.Max(dims.Width-left-spacing, 0),
		Height: math.Max(dims.Height-2*spacing, 0),
	}
}

// planScrolling marks the configuration for scrolling when placed elements
// spill past the available region, and declares one container per spill
// group of scroll-capable elements.
func (o *Optimizer) planScrolling(cfg *Configuration, elements []ElementMetadata, avail geometry.Rect) {
	var spilled []string
	for _, e := range uiElements(elements) {
		pos, ok := cfg.ElementPositions[e.ID]
		if !ok {
			continue
		}
		r := pos.Rect()
		if r.Bottom() > avail.Bottom()+0.5 || r.Right() > avail.Right()+0.5 {
			if e.CanScroll {
				spilled = append(spilled, e.ID)
			}
		}
	}
	if len(spilled) == 0 {
		return
	}

	sort.Strings(spilled)
	cfg.RequiresScrolling = true
	cfg.ScrollContainers = []ScrollContainerSpec{{
		ID:         "ui-scroll",
		ElementIDs: spilled,
		MaxHeight:  math.Max(avail.Height, defaultElementHeight),
	}}
}

// sideColumnWidth estimates the width of a UI column beside the board:
// the widest element, since beside-layout stacks them in one column.
func (o *Optimizer) sideColumnWidth(ui []ElementMetadata) float64 {
	w := 0.0
	for _, e := range ui {
		w = math.Max(w, elementWidth(e))
	}
	return w
}

// stackedHeight estimates the height of the UI stacked below the board:
// every element's height plus the spacing between successive elements.
func (o *Optimizer) stackedHeight(ui []ElementMetadata) float64 {
	h := 0.0
	for i, e := range ui {
		if i > 0 {
			h += o.cfg.Spacing
		}
		h += elementHeight(e)
	}
	return h
}

// uiElements filters out the board and orders the rest by descending
// priority so higher-priority elements claim placement first.
func uiElements(elements []ElementMetadata) []ElementMetadata {
	ui := make([]ElementMetadata, 0, len(elements))
	for _, e := range elements {
		if e.Kind == KindBoard {
			continue
		}
		ui = append(ui, e)
	}
	sort.SliceStable(ui, func(i, j int) bool { return ui[i].Priority > ui[j].Priority })
	return ui
}

func elementWidth(e ElementMetadata) float64 {
	if e.MinWidth > 0 {
		return e.MinWidth
	}
	return defaultElementWidth
}

func elementHeight(e ElementMetadata) float64 {
	if e.MinHeight > 0 {
		return e.MinHeight
	}
	return defaultElementHeight
}

func zIndexFor(k ElementKind) int {
	if k == KindMenu {
		return 10
	}
	return 1
}
