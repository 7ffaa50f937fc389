package engagement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/backend/errs"
)

func TestOptimisticToggleSuccess(t *testing.T) {
	v := NewOptimisticValue(EngagementState{Active: false, Count: 7})

	var observed EngagementState
	err := v.Toggle(context.Background(), func(ctx context.Context) error {
		// The UI already sees the new value while the call is in flight.
		observed = v.State()
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, EngagementState{Active: true, Count: 8}, observed)
	assert.Equal(t, EngagementState{Active: true, Count: 8}, v.State())
	assert.False(t, v.Pending())
}

func TestOptimisticRollbackExact(t *testing.T) {
	prior := EngagementState{Active: false, Count: 41}
	v := NewOptimisticValue(prior)

	err := v.Toggle(context.Background(), func(ctx context.Context) error {
		return errors.New("commit failed")
	})
	require.Error(t, err)

	// Exact pre-action state, not a recomputed one.
	assert.Equal(t, prior, v.State())
	assert.False(t, v.Pending())
}

func TestOptimisticToggleBackDown(t *testing.T) {
	v := NewOptimisticValue(EngagementState{Active: true, Count: 3})

	require.NoError(t, v.Toggle(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, EngagementState{Active: false, Count: 2}, v.State())
}

func TestOptimisticBusyGuard(t *testing.T) {
	v := NewOptimisticValue(EngagementState{})

	inFlight := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = v.Toggle(context.Background(), func(ctx context.Context) error {
			close(inFlight)
			<-release
			return nil
		})
	}()

	<-inFlight
	assert.True(t, v.Pending())

	// A second click while pending is rejected and changes nothing.
	err := v.Toggle(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, errs.Busy)
	assert.Equal(t, EngagementState{Active: true, Count: 1}, v.State())

	close(release)
	wg.Wait()

	assert.False(t, v.Pending())
	assert.Equal(t, EngagementState{Active: true, Count: 1}, v.State())

	// After resolution the value toggles again normally.
	require.NoError(t, v.Toggle(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, EngagementState{Active: false, Count: 0}, v.State())
}
