// Package render is the imperative shell around the pure layout core: the
// only code allowed to mutate the host element tree. The updater batches
// position changes into frames and serializes concurrent layout requests;
// the overflow handler builds and tears down scroll containers.
package render

import (
	"errors"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
)

// Sentinel errors callers categorize with errors.Is.
var (
	// ErrElementMissing reports a target element the tree cannot reach.
	ErrElementMissing = errors.New("element not found in tree")
	// ErrQueueFull reports that the layout request queue is saturated.
	ErrQueueFull = errors.New("layout request queue full")
	// ErrUpdaterClosed reports a request against a destroyed updater.
	ErrUpdaterClosed = errors.New("updater closed")
)

// Tree is the host-tree surface the shell mutates. Implementations decide
// what "position" means for their medium; the engine only promises the
// values satisfy the layout invariants.
type Tree interface {
	// ApplyPosition moves an element. Returns ErrElementMissing (wrapped
	// or bare) for unknown elements.
	ApplyPosition(elementID string, pos geometry.Position) error
	// CurrentPosition reports an element's live position.
	CurrentPosition(elementID string) (geometry.Position, bool)
	// SetTransition arms the element's animation for the next position
	// change. Hosts without animation treat this as a no-op.
	SetTransition(elementID string, d time.Duration) error
}

// FrameScheduler is the host's frame-synchronized scheduling capability:
// fn runs at the next render-frame boundary.
type FrameScheduler interface {
	Schedule(fn func())
}

// timerFrameInterval approximates one frame for hosts without a real
// frame clock.
const timerFrameInterval = 16 * time.Millisecond

// TimerScheduler is the substitute used when the host has no
// frame-synchronized primitive.
type TimerScheduler struct{}

// Schedule runs fn after one nominal frame interval.
func (TimerScheduler) Schedule(fn func()) {
	time.AfterFunc(timerFrameInterval, fn)
}
