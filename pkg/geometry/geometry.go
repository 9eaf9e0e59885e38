// Package geometry provides the plain-data spatial types the layout engine
// computes over: viewport dimensions, element positions, and rectangles.
// Everything here is pure and host-agnostic; values are abstract pixels.
package geometry

import (
	"fmt"
	"math"
)

// Supported viewport bounds. Dimensions outside these ranges are clamped,
// never rejected, so a misreported host size can still produce a layout.
const (
	MinViewportWidth  = 320
	MaxViewportWidth  = 3840
	MinViewportHeight = 480
	MaxViewportHeight = 2160
)

// Orientation describes which axis of the viewport is longer.
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

// String returns the human-readable orientation name.
func (o Orientation) String() string {
	if o == Portrait {
		return "portrait"
	}
	return "landscape"
}

// Size is a width/height pair.
type Size struct {
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle in viewport coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersect returns the overlapping region of two rectangles.
// The zero Rect is returned when they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x1 := math.Max(r.X, other.X)
	y1 := math.Max(r.Y, other.Y)
	x2 := math.Min(r.Right(), other.Right())
	y2 := math.Min(r.Bottom(), other.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Area returns the rectangle's area, zero for empty rectangles.
func (r Rect) Area() float64 {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// ViewportDimensions captures the visible area for one analysis pass.
type ViewportDimensions struct {
	Width        float64
	Height       float64
	AspectRatio  float64
	Orientation  Orientation
	PixelDensity float64
}

// NewViewportDimensions builds clamped, finite viewport dimensions.
// Non-finite inputs collapse to the nearest supported bound.
func NewViewportDimensions(width, height, density float64) ViewportDimensions {
	w := clampFinite(width, MinViewportWidth, MaxViewportWidth)
	h := clampFinite(height, MinViewportHeight, MaxViewportHeight)
	if density <= 0 || !isFinite(density) {
		density = 1
	}

	orientation := Landscape
	if h > w {
		orientation = Portrait
	}

	return ViewportDimensions{
		Width:        w,
		Height:       h,
		AspectRatio:  w / h,
		Orientation:  orientation,
		PixelDensity: density,
	}
}

// Valid reports whether the dimensions are inside the supported envelope.
// Instances built through NewViewportDimensions are always valid; the check
// guards states reconstructed from the outside (history, persisted data).
func (v ViewportDimensions) Valid() bool {
	return isFinite(v.Width) && isFinite(v.Height) &&
		v.Width >= MinViewportWidth && v.Width <= MaxViewportWidth &&
		v.Height >= MinViewportHeight && v.Height <= MaxViewportHeight
}

// Bounds returns the viewport as a rectangle anchored at the origin.
func (v ViewportDimensions) Bounds() Rect {
	return Rect{Width: v.Width, Height: v.Height}
}

// Position is the placement decision for one element.
type Position struct {
	X         float64
	Y         float64
	Width     float64
	Height    float64
	Transform string
	ZIndex    int
}

// Rect returns the position's bounding rectangle.
func (p Position) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, Width: p.Width, Height: p.Height}
}

// Validate checks the position invariants: non-negative origin, positive
// extent, and all four coordinates finite.
func (p Position) Validate() error {
	for _, f := range [...]struct {
		name  string
		value float64
	}{
		{"x", p.X}, {"y", p.Y}, {"width", p.Width}, {"height", p.Height},
	} {
		if !isFinite(f.value) {
			return fmt.Errorf("position %s is not finite: %v", f.name, f.value)
		}
	}
	if p.X < 0 || p.Y < 0 {
		return fmt.Errorf("position origin is negative: (%g, %g)", p.X, p.Y)
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("position extent is not positive: %gx%g", p.Width, p.Height)
	}
	return nil
}

// Valid reports whether Validate would succeed.
func (p Position) Valid() bool { return p.Validate() == nil }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampFinite(f, min, max float64) float64 {
	if math.IsNaN(f) {
		return min
	}
	if math.IsInf(f, 1) || f > max {
		return max
	}
	if math.IsInf(f, -1) || f < min {
		return min
	}
	return f
}
