package engagement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/backend/internal/docstore"
)

func seedNotifications(t *testing.T, e *Engine) {
	t.Helper()
	ctx := context.Background()
	// Three actors like userA's article at increasing times.
	require.NoError(t, e.store.Set(ctx, "articles/art1", map[string]any{"ownerId": "userA"}))
	for _, uid := range []string{"u1", "u2", "u3"} {
		_, err := e.ToggleLike(ctx, "article", "art1", Actor{ID: uid, Name: uid})
		require.NoError(t, err)
	}
}

func TestNotificationsNewestFirst(t *testing.T) {
	e, _ := newTestEngine(t)
	seedNotifications(t, e)

	notifs, err := e.Notifications(context.Background(), "userA")
	require.NoError(t, err)
	require.Len(t, notifs, 3)
	assert.Equal(t, "u3", notifs[0].ActorName)
	assert.Equal(t, "u2", notifs[1].ActorName)
	assert.Equal(t, "u1", notifs[2].ActorName)
	for _, n := range notifs {
		assert.False(t, n.Read)
		assert.Equal(t, "like", n.Type)
	}
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	e, _ := newTestEngine(t)
	seedNotifications(t, e)
	ctx := context.Background()

	count, err := e.UnreadCount(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	notifs, err := e.Notifications(ctx, "userA")
	require.NoError(t, err)
	require.NoError(t, e.MarkRead(ctx, "userA", notifs[0].ID))

	count, err = e.UnreadCount(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, e.MarkAllRead(ctx, "userA"))
	count, err = e.UnreadCount(ctx, "userA")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllReadNoUnread(t *testing.T) {
	e, _ := newTestEngine(t)
	// No notifications at all: nothing to commit, no error.
	require.NoError(t, e.MarkAllRead(context.Background(), "userA"))
}

func TestWatchNotifications(t *testing.T) {
	e, store := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := e.WatchNotifications(ctx, "userA")
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "articles/art1", map[string]any{"ownerId": "userA"}))
	_, err = e.ToggleLike(context.Background(), "article", "art1", Actor{ID: "u1", Name: "Ada"})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, docstore.EventAdded, ev.Type)
	assert.Equal(t, "like_article_art1_u1", ev.Doc.ID())

	// Unlike deletes the deterministic notification.
	_, err = e.ToggleLike(context.Background(), "article", "art1", Actor{ID: "u1", Name: "Ada"})
	require.NoError(t, err)

	ev = <-events
	assert.Equal(t, docstore.EventRemoved, ev.Type)
	assert.Equal(t, "like_article_art1_u1", ev.Doc.ID())
}
