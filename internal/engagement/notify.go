package engagement

import (
	"context"
	"sort"
	"time"

	"github.com/craftfolio/backend/internal/docstore"
)

// Notification is a single entry on a user's notification feed.
type Notification struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // like, follow, comment, system
	ActorName   string    `json:"actorName"`
	ActorAvatar string    `json:"actorAvatar,omitempty"`
	Content     string    `json:"content"`
	Link        string    `json:"link,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Read        bool      `json:"read"`
}

func notificationsCollection(userID string) string {
	return "users/" + userID + "/notifications"
}

func notificationPath(userID, notifID string) string {
	return notificationsCollection(userID) + "/" + notifID
}

// likeNotificationID derives the deterministic id from the action's
// participants, so re-liking after unliking recreates the same document and
// unliking deletes exactly the one that was created.
func likeNotificationID(k Kind, contentID, userID string) string {
	return "like_" + k.Name + "_" + contentID + "_" + userID
}

func (e *Engine) writeNotification(ctx context.Context, recipientID, notifID string, n Notification) {
	doc := map[string]any{
		"type":        n.Type,
		"actorName":   n.ActorName,
		"actorAvatar": n.ActorAvatar,
		"content":     n.Content,
		"link":        n.Link,
		"createdAt":   e.now(),
		"read":        false,
	}
	if err := e.store.Set(ctx, notificationPath(recipientID, notifID), doc); err != nil {
		e.metrics.NotificationFailed()
		e.logger.Warn("notification write failed", "recipient", recipientID, "type", n.Type, "err", err)
		return
	}
	e.metrics.NotificationSent(n.Type)
}

// notifyLike creates the deterministic like notification on the content
// owner, or deletes it on unlike. Best-effort: failures are logged only.
func (e *Engine) notifyLike(ownerID string, actor Actor, k Kind, contentID string, liked bool) {
	ctx := context.Background()
	notifID := likeNotificationID(k, contentID, actor.ID)
	if !liked {
		if err := e.store.Delete(ctx, notificationPath(ownerID, notifID)); err != nil {
			e.metrics.NotificationFailed()
			e.logger.Warn("like notification delete failed", "recipient", ownerID, "err", err)
		}
		return
	}
	e.writeNotification(ctx, ownerID, notifID, Notification{
		Type:        "like",
		ActorName:   actor.Name,
		ActorAvatar: actor.Avatar,
		Content:     actor.Name + " liked your " + k.Label,
		Link:        k.LinkPrefix + contentID,
	})
}

// notifyFollow writes a free-id follow notification. Unfollowing does not
// retract it.
func (e *Engine) notifyFollow(followeeID string, follower Actor) {
	e.writeNotification(context.Background(), followeeID, e.newID(), Notification{
		Type:        "follow",
		ActorName:   follower.Name,
		ActorAvatar: follower.Avatar,
		Content:     follower.Name + " started following you",
		Link:        "/users/" + follower.ID,
	})
}

func (e *Engine) notifyComment(recipientID string, actor Actor, k Kind, contentID string, isReply bool) {
	content := actor.Name + " commented on your " + k.Label
	if isReply {
		content = actor.Name + " replied to your comment"
	}
	e.writeNotification(context.Background(), recipientID, e.newID(), Notification{
		Type:        "comment",
		ActorName:   actor.Name,
		ActorAvatar: actor.Avatar,
		Content:     content,
		Link:        k.LinkPrefix + contentID,
	})
}

// NotifyNewContent fans one notification out to every follower of the
// author. One write per follower, O(followers) and unbounded; bounding it
// properly needs a queue, which this core does not carry.
func (e *Engine) NotifyNewContent(ctx context.Context, author Actor, kindName, contentID, title string) error {
	k, err := KindByName(kindName)
	if err != nil {
		return err
	}
	followers, err := e.Followers(ctx, author.ID)
	if err != nil {
		return err
	}
	content := author.Name + " published a new " + k.Label
	if title != "" {
		content += ": " + title
	}
	for _, f := range followers {
		e.writeNotification(ctx, f.ID, e.newID(), Notification{
			Type:        "system",
			ActorName:   author.Name,
			ActorAvatar: author.Avatar,
			Content:     content,
			Link:        k.LinkPrefix + contentID,
		})
	}
	return nil
}

func notificationFromDoc(doc docstore.Document) Notification {
	typ, _ := doc.Data["type"].(string)
	actorName, _ := doc.Data["actorName"].(string)
	actorAvatar, _ := doc.Data["actorAvatar"].(string)
	content, _ := doc.Data["content"].(string)
	link, _ := doc.Data["link"].(string)
	read, _ := doc.Data["read"].(bool)
	return Notification{
		ID:          doc.ID(),
		Type:        typ,
		ActorName:   actorName,
		ActorAvatar: actorAvatar,
		Content:     content,
		Link:        link,
		CreatedAt:   docstore.Timestamp(doc.Data["createdAt"]),
		Read:        read,
	}
}

// Notifications returns the user's notifications, newest first.
func (e *Engine) Notifications(ctx context.Context, userID string) ([]Notification, error) {
	docs, err := e.store.List(ctx, notificationsCollection(userID))
	if err != nil {
		return nil, storeErr(err)
	}
	out := make([]Notification, 0, len(docs))
	for _, doc := range docs {
		out = append(out, notificationFromDoc(doc))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (e *Engine) UnreadCount(ctx context.Context, userID string) (int, error) {
	notifs, err := e.Notifications(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range notifs {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one notification as read.
func (e *Engine) MarkRead(ctx context.Context, userID, notifID string) error {
	path := notificationPath(userID, notifID)
	doc, err := e.store.Get(ctx, path)
	if err != nil {
		return storeErr(err)
	}
	doc["read"] = true
	if err := e.store.Set(ctx, path, doc); err != nil {
		return storeErr(err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (e *Engine) MarkAllRead(ctx context.Context, userID string) error {
	docs, err := e.store.List(ctx, notificationsCollection(userID))
	if err != nil {
		return storeErr(err)
	}
	batch := e.store.Batch()
	dirty := false
	for _, doc := range docs {
		if read, _ := doc.Data["read"].(bool); read {
			continue
		}
		doc.Data["read"] = true
		batch.Set(doc.Path, doc.Data)
		dirty = true
	}
	if !dirty {
		return nil
	}
	if err := batch.Commit(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// WatchNotifications streams the user's notification changes until ctx ends.
func (e *Engine) WatchNotifications(ctx context.Context, userID string) (<-chan docstore.Event, error) {
	return e.store.Watch(ctx, notificationsCollection(userID))
}
