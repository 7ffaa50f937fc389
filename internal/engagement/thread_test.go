package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time {
	return time.Date(2024, 5, 1, 0, 0, sec, 0, time.UTC)
}

func TestAssembleThreadOrdering(t *testing.T) {
	flat := []Comment{
		{ID: "r1", CreatedAt: at(10)},
		{ID: "r2", CreatedAt: at(20)},
		{ID: "x", ParentID: "r1", CreatedAt: at(5)},
		{ID: "y", ParentID: "r1", CreatedAt: at(15)},
	}

	thread := AssembleThread(flat)

	roots := thread.Roots()
	require.Len(t, roots, 2)
	// Roots newest first; replies oldest first.
	assert.Equal(t, "r2", roots[0].ID)
	assert.Equal(t, "r1", roots[1].ID)

	replies := thread.RepliesOf("r1")
	require.Len(t, replies, 2)
	assert.Equal(t, "x", replies[0].ID)
	assert.Equal(t, "y", replies[1].ID)

	assert.Empty(t, thread.RepliesOf("r2"))
}

func TestAssembleThreadBestAnswerPinned(t *testing.T) {
	flat := []Comment{
		{ID: "old", CreatedAt: at(1), IsBestAnswer: true},
		{ID: "mid", CreatedAt: at(10)},
		{ID: "new", CreatedAt: at(20)},
	}

	roots := AssembleThread(flat).Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, "old", roots[0].ID)
	assert.Equal(t, "new", roots[1].ID)
	assert.Equal(t, "mid", roots[2].ID)
}

func TestAssembleThreadStableForEqualTimes(t *testing.T) {
	// Equal timestamps keep input order.
	flat := []Comment{
		{ID: "a", CreatedAt: at(10)},
		{ID: "b", CreatedAt: at(10)},
		{ID: "c", CreatedAt: at(10)},
	}
	roots := AssembleThread(flat).Roots()
	require.Len(t, roots, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{roots[0].ID, roots[1].ID, roots[2].ID})
}

func TestAssembleThreadOrphanReply(t *testing.T) {
	flat := []Comment{
		{ID: "r1", CreatedAt: at(10)},
		{ID: "stray", ParentID: "deleted-root", CreatedAt: at(12)},
	}

	thread := AssembleThread(flat)
	roots := thread.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "r1", roots[0].ID)

	// The orphan stays reachable under its dangling parent id.
	orphans := thread.RepliesOf("deleted-root")
	require.Len(t, orphans, 1)
	assert.Equal(t, "stray", orphans[0].ID)
}

func TestAssembleThreadEmpty(t *testing.T) {
	thread := AssembleThread(nil)
	assert.Empty(t, thread.Roots())
	assert.Empty(t, thread.RepliesOf("anything"))
}
