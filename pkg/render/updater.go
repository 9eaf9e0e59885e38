package render

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gambitui/gambit/pkg/geometry"
	"github.com/gambitui/gambit/pkg/layout"
)

// DefaultTransition is how long one position change animates.
const DefaultTransition = 300 * time.Millisecond

// requestQueueDepth bounds how many layout passes may wait behind an
// in-flight batch before callers are refused.
const requestQueueDepth = 32

// DefaultBoardElementID names the board element in the host tree.
const DefaultBoardElementID = "board"

// Update is one element's pending position change.
type Update struct {
	ElementID string
	Position  geometry.Position
}

// Validator checks a configuration before it touches the tree. The layout
// optimizer satisfies this.
type Validator interface {
	ValidateLayout(layout.Configuration) layout.ValidationResult
}

// UpdaterOption configures an Updater.
type UpdaterOption func(*Updater)

// WithTransition overrides the transition duration.
func WithTransition(d time.Duration) UpdaterOption {
	return func(u *Updater) {
		if d > 0 {
			u.transition = d
		}
	}
}

// WithBoardElement overrides the board element's tree ID.
func WithBoardElement(id string) UpdaterOption {
	return func(u *Updater) {
		if id != "" {
			u.boardID = id
		}
	}
}

// WithValidator installs configuration validation on ApplyLayout.
func WithValidator(v Validator) UpdaterOption {
	return func(u *Updater) { u.validator = v }
}

// Updater applies computed layouts to the live tree. It is a two-state
// machine, idle or animating, with a FIFO queue absorbing requests that
// arrive mid-batch: queued requests drain strictly in arrival order.
type Updater struct {
	tree       Tree
	scheduler  FrameScheduler
	validator  Validator
	transition time.Duration
	boardID    string
	fallback   bool

	requests  chan request
	mu        sync.Mutex
	animating map[string]bool
	inFlight  bool
	originals map[string]geometry.Position
	closed    bool
	closeOnce sync.Once
}

type request struct {
	updates []Update
	forget  []string
	done    chan error
}

// NewUpdater creates an updater over the given tree. A nil scheduler
// selects the timer substitute; UsesFallbackScheduler reports that so the
// caller can record the missing capability.
func NewUpdater(tree Tree, scheduler FrameScheduler, opts ...UpdaterOption) *Updater {
	u := &Updater{
		tree:       tree,
		scheduler:  scheduler,
		transition: DefaultTransition,
		boardID:    DefaultBoardElementID,
		requests:   make(chan request, requestQueueDepth),
		animating:  make(map[string]bool),
		originals:  make(map[string]geometry.Position),
	}
	if u.scheduler == nil {
		u.scheduler = TimerScheduler{}
		u.fallback = true
	}
	for _, opt := range opts {
		opt(u)
	}
	go u.pump()
	return u
}

// UsesFallbackScheduler reports whether frame scheduling runs on timers.
func (u *Updater) UsesFallbackScheduler() bool { return u.fallback }

// IsAnimating is true while any element is mid-transition or a batch is in
// flight. It is the serialization marker: no other component may move an
// element while this is true.
func (u *Updater) IsAnimating() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.inFlight || len(u.animating) > 0
}

// AnimatingElements returns the IDs currently mid-transition.
func (u *Updater) AnimatingElements() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	ids := make([]string, 0, len(u.animating))
	for id := range u.animating {
		ids = append(ids, id)
	}
	return ids
}

// ApplyLayout validates the configuration, records each target's original
// position on first contact, and applies every position change as one
// batch. A call that lands while a batch is animating queues behind it and
// returns only after its own batch settles.
func (u *Updater) ApplyLayout(ctx context.Context, cfg layout.Configuration) error {
	if u.validator != nil {
		if result := u.validator.ValidateLayout(cfg); !result.Valid {
			return fmt.Errorf("configuration rejected: %v", result.Errors)
		}
	}

	updates := make([]Update, 0, len(cfg.ElementPositions)+1)
	updates = append(updates, Update{ElementID: u.boardID, Position: cfg.BoardPosition})
	for id, pos := range cfg.ElementPositions {
		updates = append(updates, Update{ElementID: id, Position: pos})
	}

	return u.enqueue(ctx, request{updates: updates})
}

// BatchUpdate is the primitive under ApplyLayout, exposed for callers that
// move elements outside a full configuration. Same queueing rules.
func (u *Updater) BatchUpdate(ctx context.Context, updates []Update) error {
	if len(updates) == 0 {
		return nil
	}
	return u.enqueue(ctx, request{updates: updates})
}

// RevertToDefault restores originally recorded positions and forgets them
// from the revert table. With no arguments every recorded element reverts.
func (u *Updater) RevertToDefault(ctx context.Context, elementIDs ...string) error {
	u.mu.Lock()
	if len(elementIDs) == 0 {
		for id := range u.originals {
			elementIDs = append(elementIDs, id)
		}
	}
	updates := make([]Update, 0, len(elementIDs))
	for _, id := range elementIDs {
		if pos, ok := u.originals[id]; ok {
			updates = append(updates, Update{ElementID: id, Position: pos})
		}
	}
	u.mu.Unlock()

	if len(updates) == 0 {
		return nil
	}
	return u.enqueue(ctx, request{updates: updates, forget: elementIDs})
}

// Close drains nothing: pending requests fail with ErrUpdaterClosed.
func (u *Updater) Close() {
	u.closeOnce.Do(func() {
		u.mu.Lock()
		u.closed = true
		close(u.requests)
		u.mu.Unlock()
	})
}

func (u *Updater) enqueue(ctx context.Context, req request) error {
	req.done = make(chan error, 1)

	// The closed check and the send share one critical section with
	// Close, which closes the channel under the same lock.
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrUpdaterClosed
	}
	select {
	case u.requests <- req:
		u.mu.Unlock()
	default:
		u.mu.Unlock()
		return ErrQueueFull
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		// The batch still runs to completion; only the wait is abandoned.
		return ctx.Err()
	}
}

// pump drains requests strictly in arrival order, one batch at a time.
func (u *Updater) pump() {
	for req := range u.requests {
		err := u.runBatch(req.updates)
		if err == nil && len(req.forget) > 0 {
			u.mu.Lock()
			for _, id := range req.forget {
				delete(u.originals, id)
			}
			u.mu.Unlock()
		}
		req.done <- err
	}
}

// runBatch performs one animated batch: mark targets animating, spend one
// frame arming transitions and a second applying final values (so the
// transition is never skipped), then hold until the transition duration
// elapses for all of them.
func (u *Updater) runBatch(updates []Update) error {
	u.mu.Lock()
	u.inFlight = true
	for _, up := range updates {
		u.animating[up.ElementID] = true
		if _, seen := u.originals[up.ElementID]; !seen {
			if pos, ok := u.tree.CurrentPosition(up.ElementID); ok {
				u.originals[up.ElementID] = pos
			}
		}
	}
	u.mu.Unlock()

	var applyErr error
	applied := make(chan struct{})

	u.scheduler.Schedule(func() {
		for _, up := range updates {
			// Hosts without per-element animation ignore this.
			_ = u.tree.SetTransition(up.ElementID, u.transition)
		}
		u.scheduler.Schedule(func() {
			for _, up := range updates {
				if err := u.tree.ApplyPosition(up.ElementID, up.Position); err != nil && applyErr == nil {
					applyErr = fmt.Errorf("apply %s: %w", up.ElementID, err)
				}
			}
			close(applied)
		})
	})

	<-applied
	<-time.After(u.transition)

	u.mu.Lock()
	for _, up := range updates {
		delete(u.animating, up.ElementID)
	}
	u.inFlight = false
	u.mu.Unlock()

	return applyErr
}
