package engagement

import (
	"context"
	"sync"

	"github.com/craftfolio/backend/errs"
)

// EngagementState is the client-visible value an optimistic toggle mutates:
// a boolean (liked, following) and its companion count.
type EngagementState struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

// OptimisticValue applies a toggle locally before the server call and
// reverts to the exact prior state when the call fails. A busy flag scoped
// to this value rejects re-entrant toggles while a call is in flight; the
// server response is not reconciled mid-session on success.
type OptimisticValue struct {
	mu    sync.Mutex
	state EngagementState
	busy  bool
}

// NewOptimisticValue seeds the controller with the last known server state.
func NewOptimisticValue(state EngagementState) *OptimisticValue {
	return &OptimisticValue{state: state}
}

// State returns the current locally-visible state.
func (v *OptimisticValue) State() EngagementState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Pending reports whether a toggle is still waiting on the server.
func (v *OptimisticValue) Pending() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.busy
}

// Toggle flips the value locally, runs op, and rolls back on failure. While
// a call is in flight further toggles return errs.Busy and leave the state
// untouched. op runs without the lock held.
func (v *OptimisticValue) Toggle(ctx context.Context, op func(ctx context.Context) error) error {
	v.mu.Lock()
	if v.busy {
		v.mu.Unlock()
		return errs.Busy
	}
	prev := v.state
	v.state.Active = !prev.Active
	if v.state.Active {
		v.state.Count = prev.Count + 1
	} else {
		v.state.Count = prev.Count - 1
	}
	v.busy = true
	v.mu.Unlock()

	err := op(ctx)

	v.mu.Lock()
	v.busy = false
	if err != nil {
		v.state = prev
	}
	v.mu.Unlock()
	return err
}
