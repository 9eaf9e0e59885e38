package render

import (
	"fmt"
	"math"
	"sync"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

// ContainerTree extends Tree with the scroll-region operations the
// overflow handler needs.
type ContainerTree interface {
	Tree
	CreateContainer(containerID string, maxHeight float64) error
	MoveIntoContainer(containerID, elementID string) error
	ReleaseFromContainer(containerID, elementID string) error
	RemoveContainer(containerID string) error
}

// Indicators is the visible scroll-position signal: one region above the
// content, one below, each shown only when content hides in that
// direction, with width tracking scroll progress.
type Indicators struct {
	TopVisible     bool
	BottomVisible  bool
	TopFraction    float64
	BottomFraction float64
}

// Container is one live scroll region.
type Container struct {
	ID         string
	ElementIDs []string
	MaxHeight  float64
	Width      float64

	offset        float64
	contentHeight float64
	scrolling     bool
	smooth        bool
	dragging      bool
	dragStartY    float64
	dragStartOff  float64
	indicators    Indicators
}

// Offset returns the current scroll offset.
func (c *Container) Offset() float64 { return c.offset }

// Indicators returns the current indicator state.
func (c *Container) Indicators() Indicators { return c.indicators }

// ContentHeight returns the stacked content extent.
func (c *Container) ContentHeight() float64 { return c.contentHeight }

// OverflowHandler builds scroll regions for elements that do not fit,
// stacks them vertically, and maintains scroll state and indicators.
type OverflowHandler struct {
	tree    ContainerTree
	spacing float64
	smooth  bool

	mu         sync.Mutex
	containers map[string]*Container
}

// NewOverflowHandler creates an overflow handler. spacing <= 0 selects the
// layout package minimum; smooth enables snap-back scrolling on release.
func NewOverflowHandler(tree ContainerTree, spacing float64, smooth bool) *OverflowHandler {
	if spacing <= 0 {
		spacing = layout.MinSpacing
	}
	return &OverflowHandler{
		tree:       tree,
		spacing:    spacing,
		smooth:     smooth,
		containers: make(map[string]*Container),
	}
}

// CreateScrollContainer realizes one declared scroll region: creates the
// container in the tree, re-parents the elements into it, and stacks them.
func (h *OverflowHandler) CreateScrollContainer(spec layout.ScrollContainerSpec, containerWidth float64) (*Container, error) {
	if spec.MaxHeight <= 0 {
		return nil, fmt.Errorf("container %s: non-positive max height %g", spec.ID, spec.MaxHeight)
	}
	if len(spec.ElementIDs) == 0 {
		return nil, fmt.Errorf("container %s: no elements", spec.ID)
	}

	if err := h.tree.CreateContainer(spec.ID, spec.MaxHeight); err != nil {
		return nil, fmt.Errorf("create container %s: %w", spec.ID, err)
	}
	for _, id := range spec.ElementIDs {
		if err := h.tree.MoveIntoContainer(spec.ID, id); err != nil {
			return nil, fmt.Errorf("move %s into %s: %w", id, spec.ID, err)
		}
	}

	c := &Container{
		ID:         spec.ID,
		ElementIDs: append([]string(nil), spec.ElementIDs...),
		MaxHeight:  spec.MaxHeight,
		Width:      containerWidth,
	}
	if err := h.ApplyVerticalStacking(c, containerWidth); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.containers[c.ID] = c
	h.mu.Unlock()

	h.UpdateScrollIndicators(c)
	return c, nil
}

// ApplyVerticalStacking forces every contained element to block-level,
// full-container-width layout with spacing between successive elements.
// No element floats beside another.
func (h *OverflowHandler) ApplyVerticalStacking(c *Container, containerWidth float64) error {
	y := 0.0
	for i, id := range c.ElementIDs {
		if i > 0 {
			y += h.spacing
		}
		height := 0.0
		if pos, ok := h.tree.CurrentPosition(id); ok {
			height = pos.Height
		}
		if height <= 0 {
			height = h.spacing * 4
		}
		pos := geometry.Position{X: 0, Y: y, Width: containerWidth, Height: height}
		if err := h.tree.ApplyPosition(id, pos); err != nil {
			return fmt.Errorf("stack %s: %w", id, err)
		}
		y += height
	}
	c.Width = containerWidth
	c.contentHeight = y
	return nil
}

// EnableScrolling activates scroll handling on the container.
func (h *OverflowHandler) EnableScrolling(c *Container) {
	c.scrolling = true
	c.smooth = h.smooth
	h.UpdateScrollIndicators(c)
}

// NeedsScrolling reports whether the stacked content exceeds the region.
func (h *OverflowHandler) NeedsScrolling(c *Container) bool {
	return c.contentHeight > c.MaxHeight
}

// SetScrollOffset clamps and applies a new offset, then refreshes the
// indicators.
func (h *OverflowHandler) SetScrollOffset(c *Container, offset float64) {
	max := math.Max(c.contentHeight-c.MaxHeight, 0)
	c.offset = math.Min(math.Max(offset, 0), max)
	h.UpdateScrollIndicators(c)
}

// UpdateScrollIndicators recomputes the top/bottom indicator regions:
// visible only when content hides above/below the current offset, width
// proportional to scroll progress.
func (h *OverflowHandler) UpdateScrollIndicators(c *Container) {
	maxOffset := math.Max(c.contentHeight-c.MaxHeight, 0)
	if maxOffset == 0 {
		c.indicators = Indicators{}
		return
	}

	progress := c.offset / maxOffset
	c.indicators = Indicators{
		TopVisible:     c.offset > 0,
		BottomVisible:  c.offset < maxOffset,
		TopFraction:    progress,
		BottomFraction: 1 - progress,
	}
}

// BeginTouchScroll starts drag tracking from the initial touch point.
func (h *OverflowHandler) BeginTouchScroll(c *Container, startY float64) {
	c.dragging = true
	c.dragStartY = startY
	c.dragStartOff = c.offset
	// Snap behavior fights the finger; suspend it for the drag.
	c.smooth = false
}

// HandleTouchScroll applies the drag delta from the initial touch point
// directly to the scroll offset.
func (h *OverflowHandler) HandleTouchScroll(c *Container, currentY float64) {
	if !c.dragging {
		return
	}
	h.SetScrollOffset(c, c.dragStartOff+(c.dragStartY-currentY))
}

// EndTouchScroll releases the drag and restores any configured smooth/snap
// behavior.
func (h *OverflowHandler) EndTouchScroll(c *Container) {
	c.dragging = false
	c.smooth = h.smooth
}

// RemoveScrolling is the exact inverse of CreateScrollContainer: it clears
// scroll state, releases the elements, and removes the container. Aside
// from element positions, which the next optimizer pass corrects, the tree
// ends indistinguishable from one that never scrolled.
func (h *OverflowHandler) RemoveScrolling(c *Container) error {
	c.scrolling = false
	c.dragging = false
	c.offset = 0
	c.indicators = Indicators{}

	for _, id := range c.ElementIDs {
		if err := h.tree.ReleaseFromContainer(c.ID, id); err != nil {
			return fmt.Errorf("release %s from %s: %w", id, c.ID, err)
		}
	}
	if err := h.tree.RemoveContainer(c.ID); err != nil {
		return fmt.Errorf("remove container %s: %w", c.ID, err)
	}

	h.mu.Lock()
	delete(h.containers, c.ID)
	h.mu.Unlock()
	return nil
}

// Container returns a live container by ID.
func (h *OverflowHandler) Container(id string) (*Container, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.containers[id]
	return c, ok
}

// Containers returns the IDs of all live containers.
func (h *OverflowHandler) Containers() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.containers))
	for id := range h.containers {
		ids = append(ids, id)
	}
	return ids
}

// RemoveAll tears down every live container.
func (h *OverflowHandler) RemoveAll() error {
	h.mu.Lock()
	containers := make([]*Container, 0, len(h.containers))
	for _, c := range h.containers {
		containers = append(containers, c)
	}
	h.mu.Unlock()

	for _, c := range containers {
		if err := h.RemoveScrolling(c); err != nil {
			return err
		}
	}
	return nil
}
