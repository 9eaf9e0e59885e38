// Package layout computes complete layout configurations from viewport
// dimensions and element metadata. It is a pure core: no host-tree access,
// no side effects, plain data in and out.
package layout

import (
	"github.com/gambitui/gambit/pkg/geometry"
)

// Default sizing constants. MinBoardSize is a hard floor: the board is
// never shrunk below it to make room for secondary UI.
const (
	MinBoardSize     = 280
	DefaultBoardSize = 400
	MinSpacing       = 16
)

// ElementKind classifies a managed element for prioritization.
type ElementKind int

const (
	KindControl ElementKind = iota
	KindInfo
	KindBoard
	KindMenu
)

// String returns the kind's display name.
func (k ElementKind) String() string {
	switch k {
	case KindControl:
		return "control"
	case KindInfo:
		return "info"
	case KindBoard:
		return "board"
	case KindMenu:
		return "menu"
	default:
		return "unknown"
	}
}

// BoardPriority is the priority assigned to board-kind elements. It is
// strictly greater than any priority a control, info, or menu element
// may carry.
const BoardPriority = 1000

// ElementMetadata holds the static and derived facts about one managed
// element that the optimizer needs.
type ElementMetadata struct {
	ID        string
	Kind      ElementKind
	Priority  int
	MinWidth  float64
	MinHeight float64
	CanStack  bool
	CanScroll bool
	Original  geometry.Position
	Current   geometry.Position
}

// Strategy selects how UI elements are arranged relative to the board.
type Strategy int

const (
	// StrategyHorizontal places UI elements in a column beside the board.
	StrategyHorizontal Strategy = iota
	// StrategyVertical stacks UI elements below the board.
	StrategyVertical
	// StrategyHybrid wraps UI elements column-wise within available height.
	StrategyHybrid
)

// String returns the strategy's display name.
func (s Strategy) String() string {
	switch s {
	case StrategyHorizontal:
		return "horizontal"
	case StrategyVertical:
		return "vertical"
	case StrategyHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// valid reports whether s is one of the three enumerated strategies.
func (s Strategy) valid() bool {
	return s == StrategyHorizontal || s == StrategyVertical || s == StrategyHybrid
}

// ScrollContainerSpec declares one scroll region the renderer must build.
type ScrollContainerSpec struct {
	ID         string
	ElementIDs []string
	MaxHeight  float64
}

// Configuration is one complete layout decision.
type Configuration struct {
	BoardSize         geometry.Size
	BoardPosition     geometry.Position
	ElementPositions  map[string]geometry.Position
	Strategy          Strategy
	RequiresScrolling bool
	ScrollContainers  []ScrollContainerSpec
}

// Analysis is the optimizer's input: one snapshot of the viewport and the
// elements under management. InvisibleIDs lists elements currently outside
// the viewport; they still receive positions (the new layout is what brings
// them back).
type Analysis struct {
	Viewport     geometry.ViewportDimensions
	Elements     []ElementMetadata
	InvisibleIDs []string
}

// ValidationResult reports whether a configuration is applicable and, if
// not, every reason it is not.
type ValidationResult struct {
	Valid  bool
	Errors []string
}
