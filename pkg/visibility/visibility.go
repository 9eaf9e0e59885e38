// Package visibility tracks which managed elements intersect the viewport
// and why the rest do not. Observation rides on an injected host primitive
// when one exists; otherwise a manual polling path re-evaluates on
// scroll/resize with identical reason semantics.
package visibility

import (
	"sort"
	"sync"

	"github.com/gambitui/gambit/pkg/geometry"
)

// Reason explains a visibility verdict.
type Reason int

const (
	ReasonInViewport Reason = iota
	ReasonHorizontalOverflow
	ReasonVerticalOverflow
	ReasonHidden
)

// String returns the reason's display name.
func (r Reason) String() string {
	switch r {
	case ReasonInViewport:
		return "in-viewport"
	case ReasonHorizontalOverflow:
		return "horizontal-overflow"
	case ReasonVerticalOverflow:
		return "vertical-overflow"
	case ReasonHidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Status is the last known observation result for one element.
type Status struct {
	Visible           bool
	IntersectionRatio float64
	Bounds            geometry.Rect
	Reason            Reason
}

// Event reports one visibility state transition.
type Event struct {
	ElementID string
	Status    Status
}

// Observation is what a host observation primitive delivers for one
// registered element.
type Observation struct {
	ElementID string
	Bounds    geometry.Rect
	Hidden    bool
}

// Observer is the host's intersection-observation capability. A nil
// Observer selects the polling fallback.
type Observer interface {
	Observe(elementID string) error
	Unobserve(elementID string) error
	// Events delivers observations until Close.
	Events() <-chan Observation
	Close() error
}

// Prober answers geometry queries for the polling fallback and for
// Refresh. Probe returns false for unknown elements.
type Prober interface {
	Probe(elementID string) (Observation, bool)
}

// eventBuffer caps the transition channel; older transitions are dropped
// when the consumer lags, the latest state always wins.
const eventBuffer = 64

// Option tunes a Detector.
type Option func(*Detector)

// WithThreshold sets the minimum intersection ratio an element needs to
// count as visible. Zero (the default) means any overlap counts.
func WithThreshold(t float64) Option {
	return func(d *Detector) {
		if t > 0 && t <= 1 {
			d.threshold = t
		}
	}
}

// WithMargin grows the viewport by the given amount on every side before
// intersection is computed, so elements just off-screen still count.
func WithMargin(m float64) Option {
	return func(d *Detector) {
		if m > 0 {
			d.margin = m
		}
	}
}

// Detector tracks visibility per element.
type Detector struct {
	observer  Observer
	prober    Prober
	threshold float64
	margin    float64

	mu       sync.Mutex
	viewport geometry.ViewportDimensions
	tracked  map[string]bool
	statuses map[string]Status
	onChange []func(Event)
	events   chan Event
	done     chan struct{}
	closed   bool
}

// NewDetector creates a detector. observer may be nil, in which case all
// evaluation happens through prober on Poll/Refresh. prober must not be
// nil: even the primitive-backed path uses it for Refresh.
func NewDetector(observer Observer, prober Prober, viewport geometry.ViewportDimensions, opts ...Option) *Detector {
	d := &Detector{
		observer: observer,
		prober:   prober,
		viewport: viewport,
		tracked:  make(map[string]bool),
		statuses: make(map[string]Status),
		events:   make(chan Event, eventBuffer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if observer != nil {
		go d.pump()
	}
	return d
}

// UsesFallback reports whether the detector runs on the polling path.
func (d *Detector) UsesFallback() bool { return d.observer == nil }

// Observe registers an element for tracking and evaluates it once so a
// status exists before the first asynchronous report.
func (d *Detector) Observe(elementID string) error {
	d.mu.Lock()
	d.tracked[elementID] = true
	d.mu.Unlock()

	if d.observer != nil {
		if err := d.observer.Observe(elementID); err != nil {
			return err
		}
	}
	d.evaluate(elementID)
	return nil
}

// Unobserve stops tracking an element and forgets its status.
func (d *Detector) Unobserve(elementID string) error {
	d.mu.Lock()
	delete(d.tracked, elementID)
	delete(d.statuses, elementID)
	d.mu.Unlock()

	if d.observer != nil {
		return d.observer.Unobserve(elementID)
	}
	return nil
}

// GetStatus returns the last known status for an element.
func (d *Detector) GetStatus(elementID string) (Status, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.statuses[elementID]
	return s, ok
}

// IsVisible reports the last known visibility; untracked elements are not
// visible.
func (d *Detector) IsVisible(elementID string) bool {
	s, ok := d.GetStatus(elementID)
	return ok && s.Visible
}

// VisibleElements returns the sorted IDs of elements last seen visible.
func (d *Detector) VisibleElements() []string { return d.withVisibility(true) }

// InvisibleElements returns the sorted IDs of tracked elements last seen
// outside the viewport or hidden.
func (d *Detector) InvisibleElements() []string { return d.withVisibility(false) }

// OnChange registers a callback invoked on every genuine state transition.
func (d *Detector) OnChange(fn func(Event)) {
	d.mu.Lock()
	d.onChange = append(d.onChange, fn)
	d.mu.Unlock()
}

// Events exposes the bounded transition channel for consumers that prefer
// message passing over callbacks.
func (d *Detector) Events() <-chan Event { return d.events }

// SetViewport updates the viewport used for reason computation.
func (d *Detector) SetViewport(viewport geometry.ViewportDimensions) {
	d.mu.Lock()
	d.viewport = viewport
	d.mu.Unlock()
}

// Refresh forces re-evaluation of every tracked element through the
// prober. Used after manual layout mutation, when cached observations may
// be stale.
func (d *Detector) Refresh() {
	for _, id := range d.trackedIDs() {
		d.evaluate(id)
	}
}

// Poll is the fallback trigger: the host calls it on scroll and resize
// when no observation primitive exists. Identical semantics to Refresh;
// the two names document intent.
func (d *Detector) Poll() { d.Refresh() }

// Close stops the pump and releases the event channel.
func (d *Detector) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	if d.observer != nil {
		return d.observer.Close()
	}
	return nil
}

// Evaluate computes a status from one observation. Exposed for hosts that
// push observations directly (tests, synthetic events).
func (d *Detector) Evaluate(obs Observation) Status {
	d.mu.Lock()
	viewport := d.viewport
	d.mu.Unlock()

	status := evaluateAgainst(obs, viewport, d.threshold, d.margin)
	d.record(obs.ElementID, status)
	return status
}

func (d *Detector) pump() {
	for {
		select {
		case <-d.done:
			return
		case obs, ok := <-d.observer.Events():
			if !ok {
				return
			}
			d.mu.Lock()
			tracked := d.tracked[obs.ElementID]
			d.mu.Unlock()
			if tracked {
				d.Evaluate(obs)
			}
		}
	}
}

func (d *Detector) evaluate(elementID string) {
	if d.prober == nil {
		return
	}
	obs, ok := d.prober.Probe(elementID)
	if !ok {
		return
	}
	obs.ElementID = elementID
	d.Evaluate(obs)
}

// record stores the status and fans out only on a genuine transition.
func (d *Detector) record(elementID string, status Status) {
	d.mu.Lock()
	prev, seen := d.statuses[elementID]
	d.statuses[elementID] = status
	transition := !seen || prev.Visible != status.Visible || prev.Reason != status.Reason
	callbacks := make([]func(Event), len(d.onChange))
	copy(callbacks, d.onChange)
	closed := d.closed
	d.mu.Unlock()

	if !transition || closed {
		return
	}

	ev := Event{ElementID: elementID, Status: status}
	select {
	case d.events <- ev:
	default:
		// Channel full: drop the oldest so the latest state is never lost.
		select {
		case <-d.events:
		default:
		}
		select {
		case d.events <- ev:
		default:
		}
	}
	for _, fn := range callbacks {
		fn(ev)
	}
}

func (d *Detector) trackedIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	ids := make([]string, 0, len(d.tracked))
	for id := range d.tracked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (d *Detector) withVisibility(visible bool) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []string
	for id := range d.tracked {
		if s, ok := d.statuses[id]; ok && s.Visible == visible {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// evaluateAgainst implements the reason ladder: explicit hiding wins, then
// horizontal extent entirely outside the (margin-grown) viewport width,
// then vertical extent likewise, else in-viewport when the intersection
// ratio clears the threshold.
func evaluateAgainst(obs Observation, viewport geometry.ViewportDimensions, threshold, margin float64) Status {
	bounds := obs.Bounds

	if obs.Hidden {
		return Status{Bounds: bounds, Reason: ReasonHidden}
	}

	viewRect := viewport.Bounds()
	viewRect.X -= margin
	viewRect.Y -= margin
	viewRect.Width += 2 * margin
	viewRect.Height += 2 * margin

	ratio := 0.0
	if area := bounds.Area(); area > 0 {
		ratio = bounds.Intersect(viewRect).Area() / area
	}

	switch {
	case bounds.Right() <= -margin || bounds.X >= viewport.Width+margin:
		return Status{IntersectionRatio: ratio, Bounds: bounds, Reason: ReasonHorizontalOverflow}
	case bounds.Bottom() <= -margin || bounds.Y >= viewport.Height+margin:
		return Status{IntersectionRatio: ratio, Bounds: bounds, Reason: ReasonVerticalOverflow}
	case ratio < threshold:
		// Partially on-screen but below the visibility threshold; blame
		// whichever axis hides more of the element.
		reason := ReasonVerticalOverflow
		if bounds.X < viewRect.X || bounds.Right() > viewRect.Right() {
			reason = ReasonHorizontalOverflow
		}
		return Status{IntersectionRatio: ratio, Bounds: bounds, Reason: reason}
	default:
		return Status{Visible: true, IntersectionRatio: ratio, Bounds: bounds, Reason: ReasonInViewport}
	}
}
