package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/render"
	"github.com/gambitui/gambit/pkg/visibility"
)

// Cell scale: the engine reasons in abstract pixels, the terminal in
// character cells. A terminal cell is roughly twice as tall as wide, so
// mapping one cell to 8x16 pixels keeps the engine's aspect math honest.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// CellsToPixels converts a terminal size to engine dimensions.
func CellsToPixels(cols, rows int) (width, height float64) {
	return float64(cols) * CellWidth, float64(rows) * CellHeight
}

// PixelsToCells converts an engine position to cell coordinates, rounding
// down so panels never overdraw their allotment.
func PixelsToCells(pos geometry.Position) (x, y, w, h int) {
	return int(pos.X / CellWidth), int(pos.Y / CellHeight),
		int(pos.Width / CellWidth), int(pos.Height / CellHeight)
}

// Host is the terminal-side element tree the engine drives. It satisfies
// the engine's tree, prober, and frame-scheduler contracts: positions
// land here, the view reads them back, and frame callbacks run on the
// caller's goroutine since a terminal has no vsync to wait for.
type Host struct {
	mu         sync.Mutex
	positions  map[string]geometry.Position
	hidden     map[string]bool
	containers map[string][]string
	parents    map[string]string
	frames     int
}

// NewHost creates an empty host tree.
func NewHost() *Host {
	return &Host{
		positions:  make(map[string]geometry.Position),
		hidden:     make(map[string]bool),
		containers: make(map[string][]string),
		parents:    make(map[string]string),
	}
}

// Mount registers an element at its initial position.
func (h *Host) Mount(id string, pos geometry.Position) {
	h.mu.Lock()
	h.positions[id] = pos
	h.mu.Unlock()
}

// SetHidden marks an element display-hidden; the engine will not fight
// the host over it.
func (h *Host) SetHidden(id string, hidden bool) {
	h.mu.Lock()
	h.hidden[id] = hidden
	h.mu.Unlock()
}

// ApplyPosition implements render.Tree.
func (h *Host) ApplyPosition(id string, pos geometry.Position) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.positions[id]; !ok {
		return fmt.Errorf("apply %s: %w", id, render.ErrElementMissing)
	}
	h.positions[id] = pos
	return nil
}

// CurrentPosition implements render.Tree.
func (h *Host) CurrentPosition(id string) (geometry.Position, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	pos, ok := h.positions[id]
	return pos, ok
}

// SetTransition implements render.Tree. Terminals have no CSS
// transitions; the engine's two-frame arming is still honored, the
// animation itself is a no-op.
func (h *Host) SetTransition(id string, _ time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.positions[id]; !ok {
		return fmt.Errorf("transition %s: %w", id, render.ErrElementMissing)
	}
	return nil
}

// CreateContainer implements render.ContainerTree.
func (h *Host) CreateContainer(id string, _ float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.containers[id]; exists {
		return fmt.Errorf("container %s already exists", id)
	}
	h.containers[id] = nil
	return nil
}

// MoveIntoContainer implements render.ContainerTree.
func (h *Host) MoveIntoContainer(containerID, elementID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.containers[containerID]; !ok {
		return fmt.Errorf("container %s: %w", containerID, render.ErrElementMissing)
	}
	if _, ok := h.positions[elementID]; !ok {
		return fmt.Errorf("element %s: %w", elementID, render.ErrElementMissing)
	}
	h.containers[containerID] = append(h.containers[containerID], elementID)
	h.parents[elementID] = containerID
	return nil
}

// ReleaseFromContainer implements render.ContainerTree.
func (h *Host) ReleaseFromContainer(containerID, elementID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.containers[containerID]
	if !ok {
		return fmt.Errorf("container %s: %w", containerID, render.ErrElementMissing)
	}
	for i, id := range members {
		if id == elementID {
			h.containers[containerID] = append(members[:i:i], members[i+1:]...)
			delete(h.parents, elementID)
			return nil
		}
	}
	return fmt.Errorf("element %s not in container %s", elementID, containerID)
}

// RemoveContainer implements render.ContainerTree.
func (h *Host) RemoveContainer(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.containers[id]; ok && len(members) > 0 {
		return fmt.Errorf("container %s still holds %d elements", id, len(members))
	}
	delete(h.containers, id)
	return nil
}

// ContainerMembers returns the member IDs of a container, in stacking
// order.
func (h *Host) ContainerMembers(id string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.containers[id]...)
}

// ParentContainer reports which container an element lives in, if any.
func (h *Host) ParentContainer(elementID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.parents[elementID]
	return c, ok
}

// Probe implements visibility.Prober.
func (h *Host) Probe(id string) (visibility.Observation, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	pos, ok := h.positions[id]
	if !ok {
		return visibility.Observation{}, false
	}
	return visibility.Observation{
		ElementID: id,
		Bounds:    pos.Rect(),
		Hidden:    h.hidden[id],
	}, true
}

// Schedule implements render.FrameScheduler: callbacks run immediately.
// Terminal repaints happen on the next View call regardless.
func (h *Host) Schedule(fn func()) {
	h.mu.Lock()
	h.frames++
	h.mu.Unlock()
	fn()
}

// FrameCount reports scheduled frames, for the debug overlay.
func (h *Host) FrameCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}
