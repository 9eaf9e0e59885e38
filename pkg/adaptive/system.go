package adaptive

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gambitui/gambit/pkg/breakpoint"
	"github.com/gambitui/gambit/pkg/config"
	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
	"github.com/gambitui/gambit/pkg/render"
	"github.com/gambitui/gambit/pkg/state"
	"github.com/gambitui/gambit/pkg/visibility"
	"github.com/gambitui/gambit/pkg/watcher"
)

// Semantic IDs of the managed regions. The host must register these (or
// its own set) before Initialize.
const (
	ElementBoard         = "board"
	ElementLeftControls  = "left-controls"
	ElementRightControls = "right-controls"
	ElementMoveHistory   = "move-history"
	ElementAnalysisPanel = "analysis-panel"
	ElementSettingsMenu  = "settings-menu"
)

// Options wires a System to its host. Tree and Prober are required;
// Scheduler and Observer are capabilities whose absence selects the
// documented fallback and is recorded once as api-unavailable.
type Options struct {
	Config          config.Engine
	Tree            render.ContainerTree
	Prober          visibility.Prober
	Scheduler       render.FrameScheduler
	Observer        visibility.Observer
	Clock           Clock
	InitialViewport geometry.ViewportDimensions
}

// SystemState is the introspection snapshot GetState returns.
type SystemState struct {
	Initialized   bool                    `json:"initialized"`
	ContentLoaded bool                    `json:"content_loaded"`
	LayoutState   *state.LayoutState      `json:"layout_state,omitempty"`
	Breakpoints   []breakpoint.Breakpoint `json:"breakpoints"`
	ErrorLog      []LogEntry              `json:"error_log"`
	ErrorStats    Stats                   `json:"error_stats"`
	CacheStats    state.CacheStats        `json:"cache_stats"`
	PerfStats     PerfStats               `json:"perf_stats"`
}

// System is the top-level lifecycle coordinator: it owns every engine
// component, wires the triggering events to analysis passes, and
// guarantees that no failure escapes to the host unhandled.
type System struct {
	cfg config.Engine

	optimizer   *layout.Optimizer
	breakpoints *breakpoint.Manager
	states      *state.Manager
	errors      *ErrorHandler
	perf        *PerfRecorder
	analyzer    *Analyzer
	detector    *visibility.Detector
	updater     *render.Updater
	overflow    *render.OverflowHandler
	prober      visibility.Prober

	resizeDeb *watcher.Debouncer
	orientDeb *watcher.Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	elements      map[string]layout.ElementMetadata
	order         []string
	dims          geometry.ViewportDimensions
	initialized   bool
	contentLoaded bool
	destroyed     bool
}

// NewSystem builds a system from explicitly constructed components; no
// package-level state is involved.
func NewSystem(opts Options) *System {
	cfg := opts.Config
	if cfg.MinBoardSize == 0 {
		cfg = config.Default()
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	optimizer := layout.NewOptimizer(layout.Config{
		MinBoardSize: cfg.MinBoardSize,
		Spacing:      cfg.MinSpacing,
	})
	breakpoints := breakpoint.NewManager(cfg.MinSpacing, cfg.RowTolerance)
	states := state.NewManager(cfg.HistoryDepth, cfg.CacheTTL.Std())
	errors := NewErrorHandler(cfg.ErrorLogSize)
	perf := NewPerfRecorder(cfg.PerfBudget.Std())

	ctx, cancel := context.WithCancel(context.Background())

	s := &System{
		cfg:         cfg,
		optimizer:   optimizer,
		breakpoints: breakpoints,
		states:      states,
		errors:      errors,
		perf:        perf,
		analyzer:    NewAnalyzer(optimizer, breakpoints, states, errors, perf, clock),
		detector:    visibility.NewDetector(opts.Observer, opts.Prober, opts.InitialViewport),
		prober:      opts.Prober,
		resizeDeb:   watcher.NewDebouncer(cfg.Debounce.Std()),
		orientDeb:   watcher.NewDebouncer(cfg.Debounce.Std()),
		ctx:         ctx,
		cancel:      cancel,
		elements:    make(map[string]layout.ElementMetadata),
		dims:        opts.InitialViewport,
	}

	s.updater = render.NewUpdater(opts.Tree, opts.Scheduler,
		render.WithTransition(cfg.Transition.Std()),
		render.WithBoardElement(ElementBoard),
		render.WithValidator(optimizer),
	)
	s.overflow = render.NewOverflowHandler(opts.Tree, cfg.MinSpacing, cfg.SmoothScrolling)

	if opts.Observer == nil {
		errors.Handle(NewError(KindAPIUnavailable, "visibility-observer",
			fmt.Errorf("no observation primitive; using polling fallback")), "visibility-observer")
	}
	if s.updater.UsesFallbackScheduler() {
		errors.Handle(NewError(KindAPIUnavailable, "frame-scheduler",
			fmt.Errorf("no frame primitive; using timer fallback")), "frame-scheduler")
	}

	return s
}

// RegisterElement adds one managed element. Call before Initialize for
// the initial pass to include it; later registrations join the next pass.
func (s *System) RegisterElement(meta layout.ElementMetadata) {
	s.mu.Lock()
	if _, exists := s.elements[meta.ID]; !exists {
		s.order = append(s.order, meta.ID)
	}
	s.elements[meta.ID] = meta
	s.mu.Unlock()
}

// Initialize observes every registered element, starts the visibility
// pump, and runs the first analysis pass. Failures are captured and the
// system comes up degraded rather than not at all.
func (s *System) Initialize() error {
	defer s.recoverTo("initialize")

	s.mu.Lock()
	if s.initialized || s.destroyed {
		s.mu.Unlock()
		return fmt.Errorf("initialize: system not in a startable state")
	}
	ids := append([]string(nil), s.order...)
	s.mu.Unlock()

	if len(ids) == 0 {
		return fmt.Errorf("initialize: no registered elements")
	}

	for _, id := range ids {
		if err := s.detector.Observe(id); err != nil {
			s.errors.Handle(NewError(KindDOM, "observe", fmt.Errorf("observe %s: %w", id, err)), "observe")
		}
	}

	go s.pumpVisibility()

	s.runPass("initialize")

	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

// AnalyzeViewport runs one immediate pass for the current dimensions.
func (s *System) AnalyzeViewport() {
	defer s.recoverTo("analyze-viewport")
	s.runPass("analyze-viewport")
}

// HandleResize debounces resize bursts; only the trailing event triggers
// a pass.
func (s *System) HandleResize(width, height, density float64) {
	dims := geometry.NewViewportDimensions(width, height, density)
	s.mu.Lock()
	s.dims = dims
	s.mu.Unlock()
	s.detector.SetViewport(dims)

	s.resizeDeb.Trigger(func() {
		defer s.recoverTo("resize")
		s.runPass("resize")
	})
}

// HandleOrientationChange debounces orientation flips on its own timer so
// a rotation mid-resize still settles correctly.
func (s *System) HandleOrientationChange(width, height, density float64) {
	dims := geometry.NewViewportDimensions(width, height, density)
	s.mu.Lock()
	s.dims = dims
	s.mu.Unlock()
	s.detector.SetViewport(dims)

	s.orientDeb.Trigger(func() {
		defer s.recoverTo("orientation")
		s.runPass("orientation")
	})
}

// HandleContentLoad re-analyzes after content arrives: cached geometry is
// stale by definition, and breakpoints must reflect the new content.
func (s *System) HandleContentLoad() {
	defer s.recoverTo("content-load")

	s.mu.Lock()
	s.contentLoaded = true
	s.mu.Unlock()

	s.states.InvalidateCache()
	s.breakpoints.Invalidate()
	s.detector.Refresh()
	s.runPass("content-load")
}

// Destroy reverts managed elements best-effort, tears down scroll
// containers, and stops every background path. Safe to call once.
func (s *System) Destroy() {
	defer s.recoverTo("destroy")

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	s.initialized = false
	s.mu.Unlock()

	s.resizeDeb.Cancel()
	s.orientDeb.Cancel()

	revertCtx, cancel := context.WithTimeout(context.Background(), 2*s.cfg.Transition.Std())
	_ = s.updater.RevertToDefault(revertCtx)
	cancel()

	if err := s.overflow.RemoveAll(); err != nil {
		s.errors.Handle(err, "destroy")
	}

	s.cancel()
	_ = s.detector.Close()
	s.updater.Close()
}

// GetState returns the introspection snapshot.
func (s *System) GetState() SystemState {
	s.mu.Lock()
	initialized := s.initialized
	contentLoaded := s.contentLoaded
	dims := s.dims
	s.mu.Unlock()

	st := SystemState{
		Initialized:   initialized,
		ContentLoaded: contentLoaded,
		Breakpoints:   s.breakpoints.CalculateBreakpoints(s.snapshotElements(), dims),
		ErrorLog:      s.errors.Log(),
		ErrorStats:    s.errors.GetErrorStats(),
		CacheStats:    s.states.GetCacheStats(),
		PerfStats:     s.perf.Stats(),
	}
	if current, ok := s.states.GetState(); ok {
		st.LayoutState = &current
	}
	return st
}

// Updater exposes the serialization primitive for hosts that must check
// IsAnimating before their own mutations.
func (s *System) Updater() *render.Updater { return s.updater }

// Overflow exposes the live scroll containers for host rendering.
func (s *System) Overflow() *render.OverflowHandler { return s.overflow }

// Detector exposes visibility reads.
func (s *System) Detector() *visibility.Detector { return s.detector }

// runPass is the single analysis pipeline behind every trigger: snapshot,
// analyze, apply, reconcile scrolling, persist.
func (s *System) runPass(trigger string) {
	s.mu.Lock()
	dims := s.dims
	destroyed := s.destroyed
	s.mu.Unlock()
	if destroyed {
		return
	}

	elements := s.snapshotElements()
	invisible := s.detector.InvisibleElements()

	cfg, ok := s.analyzer.Analyze(dims, elements, invisible)

	applyErr := s.updater.ApplyLayout(s.ctx, cfg)
	if applyErr != nil {
		fb := s.errors.Handle(applyErr, trigger)
		fallbackCfg := s.materializeFallback(fb, dims)
		if err := s.updater.ApplyLayout(s.ctx, fallbackCfg); err != nil {
			// Even the fallback failed; leave the tree as-is and record.
			s.errors.Handle(err, trigger)
		} else {
			cfg = fallbackCfg
		}
		ok = false
	}

	s.reconcileScrolling(cfg, trigger)

	// Layout mutation invalidates cached geometry and stale observations.
	s.states.InvalidateCache()
	s.detector.Refresh()

	snapshot := state.LayoutState{
		Timestamp: time.Now(),
		Viewport:  dims,
		Config:    cfg,
		Geometry:  s.captureGeometry(elements),
		IsValid:   ok,
	}
	if err := s.states.SaveState(snapshot); err != nil {
		s.errors.Handle(NewError(KindCalculation, trigger, err), trigger)
	}
}

// reconcileScrolling tears down existing containers and builds the ones
// the configuration declares.
func (s *System) reconcileScrolling(cfg layout.Configuration, trigger string) {
	if err := s.overflow.RemoveAll(); err != nil {
		s.errors.Handle(err, trigger)
	}
	if !cfg.RequiresScrolling {
		return
	}

	for _, spec := range cfg.ScrollContainers {
		width := s.containerWidth(cfg, spec)
		c, err := s.overflow.CreateScrollContainer(spec, width)
		if err != nil {
			s.errors.Handle(err, trigger)
			continue
		}
		s.overflow.EnableScrolling(c)
	}
}

// containerWidth picks the widest member position, so stacking never
// narrows an element below its placed width.
func (s *System) containerWidth(cfg layout.Configuration, spec layout.ScrollContainerSpec) float64 {
	width := 0.0
	for _, id := range spec.ElementIDs {
		if pos, ok := cfg.ElementPositions[id]; ok {
			width = math.Max(width, pos.Width)
		}
	}
	if width <= 0 {
		width = s.cfg.MinSpacing * 10
	}
	return width
}

// snapshotElements returns registry metadata with Current refreshed from
// the geometry cache (cache-or-query through the prober).
func (s *System) snapshotElements() []layout.ElementMetadata {
	s.mu.Lock()
	ids := append([]string(nil), s.order...)
	metas := make(map[string]layout.ElementMetadata, len(s.elements))
	for id, m := range s.elements {
		metas[id] = m
	}
	s.mu.Unlock()

	out := make([]layout.ElementMetadata, 0, len(ids))
	for _, id := range ids {
		meta := metas[id]
		rect, ok := s.states.GetElementDimensions(id, s.probeRect)
		if ok {
			meta.Current = geometry.Position{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}
		}
		out = append(out, meta)
	}
	return out
}

func (s *System) probeRect(id string) (geometry.Rect, bool) {
	if s.prober == nil {
		return geometry.Rect{}, false
	}
	obs, ok := s.prober.Probe(id)
	if !ok {
		return geometry.Rect{}, false
	}
	return obs.Bounds, ok
}

func (s *System) captureGeometry(elements []layout.ElementMetadata) map[string]geometry.Rect {
	geo := make(map[string]geometry.Rect, len(elements))
	for _, e := range elements {
		geo[e.ID] = e.Current.Rect()
	}
	return geo
}

// pumpVisibility feeds detector transitions into breakpoint invalidation
// and schedules a pass when an element drops out of view.
func (s *System) pumpVisibility() {
	events := s.detector.Events()
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.breakpoints.OnVisibilityChange(ev.ElementID, ev.Status.Visible)
			if !ev.Status.Visible && ev.Status.Reason != visibility.ReasonHidden {
				// Overflowed elements are a layout problem; hidden ones
				// are a styling decision we must not fight.
				s.resizeDeb.Trigger(func() {
					defer s.recoverTo("visibility-change")
					s.runPass("visibility-change")
				})
			}
		}
	}
}

// recoverTo converts a panic anywhere in a public entry point into a
// handled error; the UI must never freeze on an engine bug.
func (s *System) recoverTo(context string) {
	if r := recover(); r != nil {
		s.errors.Handle(NewError(KindUnknown, context, fmt.Errorf("panic: %v", r)), context)
	}
}

// materializeFallback mirrors the analyzer's fallback materialization for
// apply-stage failures.
func (s *System) materializeFallback(fb Fallback, dims geometry.ViewportDimensions) layout.Configuration {
	if fb.Action == ActionUseCachedLayout {
		if prev, ok := s.states.GetPreviousState(); ok {
			return prev.Config
		}
	}
	return SafeConfiguration(dims)
}

// RegisteredElements returns the registry IDs in registration order.
func (s *System) RegisteredElements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
