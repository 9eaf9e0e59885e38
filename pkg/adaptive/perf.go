package adaptive

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Clock abstracts the coarse monotonic timing facility used for the
// performance budget. A nil clock disables instrumentation.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// perfWindow bounds how many pass durations the recorder retains.
const perfWindow = 256

// PerfStats summarizes recent analysis passes.
type PerfStats struct {
	Passes         int     `json:"passes"`
	MeanMillis     float64 `json:"mean_ms"`
	P50Millis      float64 `json:"p50_ms"`
	P95Millis      float64 `json:"p95_ms"`
	MaxMillis      float64 `json:"max_ms"`
	BudgetExceeded int     `json:"budget_exceeded"`
}

// PerfRecorder tracks pass durations against the timing budget. It keeps
// a sliding window of samples; counters are cumulative.
type PerfRecorder struct {
	budget time.Duration

	mu       sync.Mutex
	samples  []float64
	passes   int
	exceeded int
}

// NewPerfRecorder creates a recorder with the given budget.
func NewPerfRecorder(budget time.Duration) *PerfRecorder {
	return &PerfRecorder{budget: budget}
}

// Record adds one pass duration and reports whether it stayed within
// budget.
func (r *PerfRecorder) Record(d time.Duration) bool {
	within := d <= r.budget

	r.mu.Lock()
	r.samples = append(r.samples, float64(d.Milliseconds()))
	if len(r.samples) > perfWindow {
		r.samples = r.samples[len(r.samples)-perfWindow:]
	}
	r.passes++
	if !within {
		r.exceeded++
	}
	r.mu.Unlock()

	return within
}

// Budget returns the configured budget.
func (r *PerfRecorder) Budget() time.Duration { return r.budget }

// Stats summarizes the retained window.
func (r *PerfRecorder) Stats() PerfStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := PerfStats{Passes: r.passes, BudgetExceeded: r.exceeded}
	if len(r.samples) == 0 {
		return s
	}

	sorted := append([]float64(nil), r.samples...)
	sort.Float64s(sorted)

	s.MeanMillis = stat.Mean(sorted, nil)
	s.P50Millis = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P95Millis = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	s.MaxMillis = sorted[len(sorted)-1]
	return s
}
