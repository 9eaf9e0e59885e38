// Package adaptive is the engine's orchestration layer: it runs full
// analysis passes, debounces triggering events, routes every failure
// through a bounded error handler, and exposes the system lifecycle.
package adaptive

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
	"github.com/gambitui/gambit/pkg/render"
)

// Kind is the closed set of failure categories. Kinds are produced at the
// error's origin, never recovered by matching message text.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAPIUnavailable: a host observation/animation primitive is missing.
	KindAPIUnavailable
	// KindCalculation: a layout computation produced an invalid result.
	KindCalculation
	// KindDOM: a target element is missing or unreachable in the tree.
	KindDOM
	// KindPerformance: an operation exceeded its timing budget.
	KindPerformance
)

// String returns the category's log label.
func (k Kind) String() string {
	switch k {
	case KindAPIUnavailable:
		return "api-unavailable"
	case KindCalculation:
		return "calculation-error"
	case KindDOM:
		return "dom-error"
	case KindPerformance:
		return "performance-error"
	default:
		return "unknown"
	}
}

// LayoutError tags an underlying error with its category and the context
// (component/operation label) it arose in.
type LayoutError struct {
	Kind    Kind
	Context string
	Err     error
}

// Error implements error.
func (e *LayoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Context, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Context, e.Kind, e.Err)
}

// Unwrap exposes the underlying error to errors.Is/As.
func (e *LayoutError) Unwrap() error { return e.Err }

// NewError tags err with a kind and context.
func NewError(kind Kind, context string, err error) *LayoutError {
	return &LayoutError{Kind: kind, Context: context, Err: err}
}

// Categorize maps an arbitrary error to its kind: tagged errors carry
// their own, and the render sentinels identify tree failures. Everything
// else is unknown.
func Categorize(err error) Kind {
	var le *LayoutError
	if errors.As(err, &le) {
		return le.Kind
	}
	if errors.Is(err, render.ErrElementMissing) {
		return KindDOM
	}
	return KindUnknown
}

// Action is the fallback each category maps to.
type Action int

const (
	// ActionSafeLayout applies the fixed default layout.
	ActionSafeLayout Action = iota
	// ActionUsePolyfill substitutes the timer/polling primitive.
	ActionUsePolyfill
	// ActionSkipElement drops the offending element and continues.
	ActionSkipElement
	// ActionUseCachedLayout reapplies the last valid layout.
	ActionUseCachedLayout
)

// String returns the action's log label.
func (a Action) String() string {
	switch a {
	case ActionUsePolyfill:
		return "use-polyfill"
	case ActionSkipElement:
		return "skip-element"
	case ActionUseCachedLayout:
		return "use-cached-layout"
	default:
		return "safe-layout"
	}
}

// Fallback is the handler's verdict for one captured failure.
type Fallback struct {
	Kind   Kind
	Action Action
}

// LogEntry is one captured failure in the bounded log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Context   string    `json:"context"`
	Message   string    `json:"message"`
	Category  string    `json:"category"`
}

// Stats groups captured failures for observability.
type Stats struct {
	Total     int            `json:"total"`
	ByKind    map[string]int `json:"by_kind"`
	ByContext map[string]int `json:"by_context"`
}

// DefaultErrorLogSize bounds the ring buffer.
const DefaultErrorLogSize = 100

// ErrorHandler categorizes failures, chooses fallbacks, and keeps the
// bounded log. Constructed explicitly and passed by reference; there is no
// package-level instance.
type ErrorHandler struct {
	maxEntries int

	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
	byKind  map[string]int
	byCtx   map[string]int
	total   int
}

// NewErrorHandler creates a handler with the given log bound; non-positive
// selects the default.
func NewErrorHandler(maxEntries int) *ErrorHandler {
	if maxEntries <= 0 {
		maxEntries = DefaultErrorLogSize
	}
	return &ErrorHandler{
		maxEntries: maxEntries,
		entries:    make([]LogEntry, 0, maxEntries),
		byKind:     make(map[string]int),
		byCtx:      make(map[string]int),
	}
}

// Handle captures one failure: categorize, log (evicting the oldest entry
// past the bound), and return the category's fallback.
func (h *ErrorHandler) Handle(err error, context string) Fallback {
	kind := Categorize(err)

	entry := LogEntry{
		Timestamp: time.Now(),
		Context:   context,
		Message:   err.Error(),
		Category:  kind.String(),
	}

	h.mu.Lock()
	if len(h.entries) < h.maxEntries {
		h.entries = append(h.entries, entry)
	} else {
		h.entries[h.next] = entry
		h.full = true
	}
	h.next = (h.next + 1) % h.maxEntries
	h.byKind[entry.Category]++
	h.byCtx[context]++
	h.total++
	h.mu.Unlock()

	return Fallback{Kind: kind, Action: actionFor(kind)}
}

// Log returns the captured entries, oldest first.
func (h *ErrorHandler) Log() []LogEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		return append([]LogEntry(nil), h.entries...)
	}
	out := make([]LogEntry, 0, h.maxEntries)
	out = append(out, h.entries[h.next:]...)
	out = append(out, h.entries[:h.next]...)
	return out
}

// GetErrorStats returns counts grouped by category and by context.
func (h *ErrorHandler) GetErrorStats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := Stats{
		Total:     h.total,
		ByKind:    make(map[string]int, len(h.byKind)),
		ByContext: make(map[string]int, len(h.byCtx)),
	}
	for k, v := range h.byKind {
		s.ByKind[k] = v
	}
	for k, v := range h.byCtx {
		s.ByContext[k] = v
	}
	return s
}

func actionFor(kind Kind) Action {
	switch kind {
	case KindAPIUnavailable:
		return ActionUsePolyfill
	case KindDOM:
		return ActionSkipElement
	case KindPerformance:
		return ActionUseCachedLayout
	default:
		return ActionSafeLayout
	}
}

// SafeConfiguration is the degraded layout every failure path can fall
// back to: a centered board of default size with a simple horizontal
// arrangement and no scroll containers.
func SafeConfiguration(dims geometry.ViewportDimensions) layout.Configuration {
	side := float64(layout.DefaultBoardSize)
	if side > dims.Width {
		side = math.Max(dims.Width, layout.MinBoardSize)
	}
	if side > dims.Height {
		side = math.Max(dims.Height, layout.MinBoardSize)
	}

	x := math.Max((dims.Width-side)/2, 0)
	y := math.Max((dims.Height-side)/2, 0)

	return layout.Configuration{
		BoardSize:        geometry.Size{Width: side, Height: side},
		BoardPosition:    geometry.Position{X: x, Y: y, Width: side, Height: side},
		ElementPositions: map[string]geometry.Position{},
		Strategy:         layout.StrategyHorizontal,
	}
}
