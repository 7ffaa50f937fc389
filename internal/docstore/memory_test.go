package docstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/backend/errs"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "articles/a1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "articles/a1", map[string]any{"title": "hello"}))
	doc, err := s.Get(ctx, "articles/a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc["title"])

	// Mutating the returned map must not leak into the store.
	doc["title"] = "mutated"
	doc2, err := s.Get(ctx, "articles/a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", doc2["title"])

	require.NoError(t, s.Delete(ctx, "articles/a1"))
	exists, err := s.Exists(ctx, "articles/a1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryStorePathValidation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, path := range []string{"", "articles", "articles/a1/likes", "articles//x"} {
		_, err := s.Get(ctx, path)
		assert.ErrorIs(t, err, errs.PathInvalid, path)
	}
	_, err := s.List(ctx, "articles/a1")
	assert.Error(t, err)
}

func TestMemoryStoreListDirectChildrenOnly(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "articles/a1", map[string]any{"n": int64(1)}))
	require.NoError(t, s.Set(ctx, "articles/a2", map[string]any{"n": int64(2)}))
	require.NoError(t, s.Set(ctx, "articles/a1/likes/u1", map[string]any{}))

	docs, err := s.List(ctx, "articles")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	likes, err := s.List(ctx, "articles/a1/likes")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "u1", likes[0].ID())
}

func TestMemoryBatchAtomicAndIncrement(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	b := s.Batch()
	b.Set("articles/a1/likes/u1", map[string]any{"createdAt": int64(1)})
	b.Increment("articles/a1", "likes", 1)
	b.Increment("articles/a1", "stats.likeCount", 1)
	require.NoError(t, b.Commit(ctx))

	doc, err := s.Get(ctx, "articles/a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), doc["likes"])
	assert.Equal(t, int64(1), doc["stats"].(map[string]any)["likeCount"])
}

func TestMemoryBatchFailureAppliesNothing(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "articles/a1", map[string]any{"likes": int64(5)}))

	s.FailNext(errors.New("down"))
	b := s.Batch()
	b.Set("articles/a1/likes/u1", map[string]any{})
	b.Increment("articles/a1", "likes", 1)
	require.Error(t, b.Commit(ctx))

	doc, err := s.Get(ctx, "articles/a1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), doc["likes"])
	exists, err := s.Exists(ctx, "articles/a1/likes/u1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryBatchInvalidPathRejected(t *testing.T) {
	s := NewMemoryStore()
	b := s.Batch()
	b.Set("articles", map[string]any{}) // collection path, not a document
	assert.ErrorIs(t, b.Commit(context.Background()), errs.PathInvalid)
}

func TestMemoryIncrementNegativeAndMissingDoc(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	b := s.Batch()
	b.Increment("users/u1", "stats.followers", -1)
	require.NoError(t, b.Commit(ctx))

	doc, err := s.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), doc["stats"].(map[string]any)["followers"])
}

func TestMemoryWatch(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := s.Watch(ctx, "users/u1/notifications")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "users/u1/notifications/n1", map[string]any{"type": "like"}))
	ev := <-events
	assert.Equal(t, EventAdded, ev.Type)
	assert.Equal(t, "n1", ev.Doc.ID())
	assert.Equal(t, "like", ev.Doc.Data["type"])

	require.NoError(t, s.Set(context.Background(), "users/u1/notifications/n1", map[string]any{"type": "like", "read": true}))
	ev = <-events
	assert.Equal(t, EventModified, ev.Type)

	require.NoError(t, s.Delete(context.Background(), "users/u1/notifications/n1"))
	ev = <-events
	assert.Equal(t, EventRemoved, ev.Type)

	// Changes in other collections are not delivered.
	require.NoError(t, s.Set(context.Background(), "users/u2/notifications/n9", map[string]any{}))
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestTimestampNormalization(t *testing.T) {
	ts := Timestamp(int64(1714564800000))
	assert.Equal(t, int64(1714564800000), ts.UnixMilli())
	assert.True(t, Timestamp("not a time").IsZero())
}
