package adaptive

import (
	"fmt"
	"time"

	"github.com/gambitui/gambit/pkg/breakpoint"
	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
	"github.com/gambitui/gambit/pkg/state"
)

// Analyzer runs one full analysis pass: optimize, validate, enforce
// spacing, refresh breakpoints, and time the whole thing against the
// performance budget. Failures never escape; they come back as a degraded
// configuration that is still applicable.
type Analyzer struct {
	optimizer   *layout.Optimizer
	breakpoints *breakpoint.Manager
	states      *state.Manager
	errors      *ErrorHandler
	perf        *PerfRecorder
	clock       Clock
}

// NewAnalyzer wires an analyzer from explicitly constructed collaborators.
// clock may be nil, which disables performance instrumentation.
func NewAnalyzer(
	optimizer *layout.Optimizer,
	breakpoints *breakpoint.Manager,
	states *state.Manager,
	errors *ErrorHandler,
	perf *PerfRecorder,
	clock Clock,
) *Analyzer {
	return &Analyzer{
		optimizer:   optimizer,
		breakpoints: breakpoints,
		states:      states,
		errors:      errors,
		perf:        perf,
		clock:       clock,
	}
}

// Analyze produces a configuration for the given snapshot. The second
// return is false when the pass failed and a fallback configuration is
// being returned instead of a computed one.
func (a *Analyzer) Analyze(dims geometry.ViewportDimensions, elements []layout.ElementMetadata, invisible []string) (layout.Configuration, bool) {
	began := a.now()

	cfg, err := a.optimizer.CalculateOptimalLayout(layout.Analysis{
		Viewport:     dims,
		Elements:     elements,
		InvisibleIDs: invisible,
	})
	if err != nil {
		fb := a.errors.Handle(NewError(KindCalculation, "calculate-layout", err), "calculate-layout")
		return a.materialize(fb, dims), false
	}

	if result := a.optimizer.ValidateLayout(cfg); !result.Valid {
		err := NewError(KindCalculation, "validate-layout", fmt.Errorf("invalid configuration: %v", result.Errors))
		fb := a.errors.Handle(err, "validate-layout")
		return a.materialize(fb, dims), false
	}

	cfg.ElementPositions = a.breakpoints.AdjustPositionsForSpacing(cfg.ElementPositions)
	a.breakpoints.CalculateBreakpoints(elements, dims)

	a.checkBudget(began)
	return cfg, true
}

// materialize turns a fallback verdict into an applicable configuration:
// the last valid cached layout when the action asks for one and a cache
// exists, the safe default otherwise.
func (a *Analyzer) materialize(fb Fallback, dims geometry.ViewportDimensions) layout.Configuration {
	if fb.Action == ActionUseCachedLayout {
		if prev, ok := a.states.GetPreviousState(); ok {
			return prev.Config
		}
	}
	return SafeConfiguration(dims)
}

func (a *Analyzer) now() time.Time {
	if a.clock == nil {
		return time.Time{}
	}
	return a.clock.Now()
}

// checkBudget records the pass duration; an overrun is logged as a
// performance error but never aborts the pass.
func (a *Analyzer) checkBudget(began time.Time) {
	if a.clock == nil || a.perf == nil || began.IsZero() {
		return
	}
	d := a.clock.Now().Sub(began)
	if d < 0 {
		return
	}
	if !a.perf.Record(d) {
		err := NewError(KindPerformance, "analyze-viewport",
			fmt.Errorf("analysis took %v, budget %v", d, a.perf.Budget()))
		a.errors.Handle(err, "analyze-viewport")
	}
}
