package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/craftfolio/backend/errs"
	"github.com/craftfolio/backend/internal/docstore"
)

// Actor is the denormalized snapshot of the acting user carried into edge
// records and notifications, captured at action time.
type Actor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// Metrics receives engagement counters. The prometheus implementation lives
// in pkg/metrics; a nil Engine metrics field is replaced with a no-op.
type Metrics interface {
	LikeToggled(kind string, liked bool)
	FollowToggled(following bool)
	CommentAdded(kind string)
	NotificationSent(notifType string)
	NotificationFailed()
}

type noopMetrics struct{}

func (noopMetrics) LikeToggled(string, bool) {}
func (noopMetrics) FollowToggled(bool)       {}
func (noopMetrics) CommentAdded(string)      {}
func (noopMetrics) NotificationSent(string)  {}
func (noopMetrics) NotificationFailed()      {}

// Engine performs engagement mutations against the document store. Each
// operation is one unit of work: a few sequential reads, one atomic batch,
// and a best-effort trailing notification write that never blocks or fails
// the primary result.
type Engine struct {
	store   docstore.Store
	logger  *slog.Logger
	metrics Metrics

	// dispatch runs trailing best-effort work; tests run it inline.
	dispatch func(fn func())
	now      func() time.Time
	newID    func() string
}

// New creates an Engine. logger and m may be nil.
func New(store docstore.Store, logger *slog.Logger, m Metrics) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = noopMetrics{}
	}
	return &Engine{
		store:    store,
		logger:   logger,
		metrics:  m,
		dispatch: func(fn func()) { go fn() },
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", errs.StoreUnavailable, err)
}

// ToggleLike flips the like edge for (kind/contentID, userID) and adjusts
// the denormalized like counters in the same batch. Returns the new liked
// state. The existence check is a hint, not a compare-and-swap: two
// concurrent toggles from the same user can briefly drift the counter by
// one, which the next recount reconciles.
func (e *Engine) ToggleLike(ctx context.Context, kindName, contentID string, actor Actor) (bool, error) {
	k, err := KindByName(kindName)
	if err != nil {
		return false, err
	}

	likePath := k.likePath(contentID, actor.ID)
	liked, err := e.store.Exists(ctx, likePath)
	if err != nil {
		return false, storeErr(err)
	}

	content, err := e.store.Get(ctx, k.docPath(contentID))
	if errors.Is(err, docstore.ErrNotFound) {
		return false, errs.ContentNotFound
	}
	if err != nil {
		return false, storeErr(err)
	}

	batch := e.store.Batch()
	if liked {
		batch.Delete(likePath)
		batch.Increment(k.docPath(contentID), k.LikeField, -1)
		batch.Increment(k.docPath(contentID), k.StatsLikeField, -1)
	} else {
		batch.Set(likePath, map[string]any{"createdAt": e.now()})
		batch.Increment(k.docPath(contentID), k.LikeField, 1)
		batch.Increment(k.docPath(contentID), k.StatsLikeField, 1)
	}
	if err := batch.Commit(ctx); err != nil {
		return false, storeErr(err)
	}

	nowLiked := !liked
	e.metrics.LikeToggled(k.Name, nowLiked)

	ownerID, _ := content["ownerId"].(string)
	if ownerID != "" && ownerID != actor.ID {
		e.dispatch(func() {
			e.notifyLike(ownerID, actor, k, contentID, nowLiked)
		})
	}
	return nowLiked, nil
}

// LikeStatus reports whether the user has liked the content item.
func (e *Engine) LikeStatus(ctx context.Context, kindName, contentID, userID string) (bool, error) {
	k, err := KindByName(kindName)
	if err != nil {
		return false, err
	}
	liked, err := e.store.Exists(ctx, k.likePath(contentID, userID))
	if err != nil {
		return false, storeErr(err)
	}
	return liked, nil
}

func followersPath(followeeID, followerID string) string {
	return "users/" + followeeID + "/followers/" + followerID
}

func followingPath(followerID, followeeID string) string {
	return "users/" + followerID + "/following/" + followeeID
}

func userPath(userID string) string {
	return "users/" + userID
}

// ToggleFollow creates or removes both sides of the follow edge and adjusts
// both users' follow counters in one batch. Returns the new following state.
// A follow notification fires only when the edge is created; unfollowing
// never retracts it.
func (e *Engine) ToggleFollow(ctx context.Context, follower Actor, followeeID string) (bool, error) {
	if follower.ID == followeeID {
		return false, errs.SelfFollow
	}

	following, err := e.store.Exists(ctx, followingPath(follower.ID, followeeID))
	if err != nil {
		return false, storeErr(err)
	}

	batch := e.store.Batch()
	if following {
		batch.Delete(followersPath(followeeID, follower.ID))
		batch.Delete(followingPath(follower.ID, followeeID))
		batch.Increment(userPath(followeeID), "stats.followers", -1)
		batch.Increment(userPath(follower.ID), "stats.following", -1)
	} else {
		// Follower side carries display data so feeds render without a join.
		batch.Set(followersPath(followeeID, follower.ID), map[string]any{
			"uid":       follower.ID,
			"name":      follower.Name,
			"username":  follower.Username,
			"avatar":    follower.Avatar,
			"createdAt": e.now(),
		})
		batch.Set(followingPath(follower.ID, followeeID), map[string]any{
			"uid":       followeeID,
			"createdAt": e.now(),
		})
		batch.Increment(userPath(followeeID), "stats.followers", 1)
		batch.Increment(userPath(follower.ID), "stats.following", 1)
	}
	if err := batch.Commit(ctx); err != nil {
		return false, storeErr(err)
	}

	nowFollowing := !following
	e.metrics.FollowToggled(nowFollowing)

	if nowFollowing {
		e.dispatch(func() {
			e.notifyFollow(followeeID, follower)
		})
	}
	return nowFollowing, nil
}

// FollowStatus reports whether actingUserID follows targetUserID.
func (e *Engine) FollowStatus(ctx context.Context, targetUserID, actingUserID string) (bool, error) {
	following, err := e.store.Exists(ctx, followingPath(actingUserID, targetUserID))
	if err != nil {
		return false, storeErr(err)
	}
	return following, nil
}

// NewComment is the input for AddComment. Author fields are the snapshot
// stored on the comment; live profile data is merged over them at read time
// by the account directory.
type NewComment struct {
	Author   Actor
	Text     string
	ParentID string
}

// AddComment stores the comment and increments the content's comment
// counters in one batch, then notifies the content owner (or, for a reply,
// the parent comment's author) best-effort.
func (e *Engine) AddComment(ctx context.Context, kindName, contentID string, c NewComment) (string, error) {
	k, err := KindByName(kindName)
	if err != nil {
		return "", err
	}

	content, err := e.store.Get(ctx, k.docPath(contentID))
	if errors.Is(err, docstore.ErrNotFound) {
		return "", errs.ContentNotFound
	}
	if err != nil {
		return "", storeErr(err)
	}

	recipientID, _ := content["ownerId"].(string)
	isReply := c.ParentID != ""
	if isReply {
		parent, err := e.store.Get(ctx, k.commentPath(contentID, c.ParentID))
		if errors.Is(err, docstore.ErrNotFound) {
			return "", errs.CommentNotFound
		}
		if err != nil {
			return "", storeErr(err)
		}
		// Threads are two levels deep at most.
		if pid, _ := parent["parentId"].(string); pid != "" {
			return "", errs.ReplyDepthExceeded
		}
		if author, _ := parent["authorId"].(string); author != "" {
			recipientID = author
		}
	}

	commentID := e.newID()
	doc := map[string]any{
		"authorId":     c.Author.ID,
		"authorName":   c.Author.Name,
		"authorAvatar": c.Author.Avatar,
		"text":         c.Text,
		"createdAt":    e.now(),
		"likes":        int64(0),
	}
	if c.Author.Username != "" {
		doc["authorUsername"] = c.Author.Username
	}
	if isReply {
		doc["parentId"] = c.ParentID
	}

	batch := e.store.Batch()
	batch.Set(k.commentPath(contentID, commentID), doc)
	batch.Increment(k.docPath(contentID), k.CommentField, 1)
	batch.Increment(k.docPath(contentID), k.StatsCommentField, 1)
	if err := batch.Commit(ctx); err != nil {
		return "", storeErr(err)
	}

	e.metrics.CommentAdded(k.Name)

	if recipientID != "" && recipientID != c.Author.ID {
		actor := c.Author
		e.dispatch(func() {
			e.notifyComment(recipientID, actor, k, contentID, isReply)
		})
	}
	return commentID, nil
}

// DeleteComment removes the comment and decrements the comment counters by
// exactly one. Child replies are not cascade-deleted; they keep a dangling
// parentId until a maintenance job sweeps them.
func (e *Engine) DeleteComment(ctx context.Context, kindName, contentID, commentID string) error {
	k, err := KindByName(kindName)
	if err != nil {
		return err
	}

	path := k.commentPath(contentID, commentID)
	exists, err := e.store.Exists(ctx, path)
	if err != nil {
		return storeErr(err)
	}
	if !exists {
		return errs.CommentNotFound
	}

	batch := e.store.Batch()
	batch.Delete(path)
	batch.Increment(k.docPath(contentID), k.CommentField, -1)
	batch.Increment(k.docPath(contentID), k.StatsCommentField, -1)
	if err := batch.Commit(ctx); err != nil {
		return storeErr(err)
	}
	return nil
}

// ListComments returns the flat comment collection for the content item, in
// storage order. Callers assemble the tree with AssembleThread.
func (e *Engine) ListComments(ctx context.Context, kindName, contentID string) ([]Comment, error) {
	k, err := KindByName(kindName)
	if err != nil {
		return nil, err
	}
	docs, err := e.store.List(ctx, k.commentsCollection(contentID))
	if err != nil {
		return nil, storeErr(err)
	}
	comments := make([]Comment, 0, len(docs))
	for _, doc := range docs {
		comments = append(comments, commentFromDoc(doc))
	}
	return comments, nil
}

// DeleteContent removes the content document, then sweeps its like edges,
// comments, and deterministic like notifications best-effort. The sweep is
// deliberately outside the primary delete: a crash mid-sweep leaves orphans
// for the maintenance job, never a half-deleted document.
func (e *Engine) DeleteContent(ctx context.Context, kindName, contentID string) error {
	k, err := KindByName(kindName)
	if err != nil {
		return err
	}

	content, err := e.store.Get(ctx, k.docPath(contentID))
	if errors.Is(err, docstore.ErrNotFound) {
		return errs.ContentNotFound
	}
	if err != nil {
		return storeErr(err)
	}
	ownerID, _ := content["ownerId"].(string)

	if err := e.store.Delete(ctx, k.docPath(contentID)); err != nil {
		return storeErr(err)
	}

	e.dispatch(func() {
		e.sweepContent(k, contentID, ownerID)
	})
	return nil
}

func (e *Engine) sweepContent(k Kind, contentID, ownerID string) {
	ctx := context.Background()

	likes, err := e.store.List(ctx, k.likesCollection(contentID))
	if err != nil {
		e.logger.Warn("cascade: listing likes failed", "kind", k.Name, "content", contentID, "err", err)
	}
	for _, like := range likes {
		if err := e.store.Delete(ctx, like.Path); err != nil {
			e.logger.Warn("cascade: deleting like edge failed", "path", like.Path, "err", err)
		}
		if ownerID != "" {
			notifPath := notificationPath(ownerID, likeNotificationID(k, contentID, like.ID()))
			if err := e.store.Delete(ctx, notifPath); err != nil {
				e.logger.Warn("cascade: deleting like notification failed", "path", notifPath, "err", err)
			}
		}
	}

	comments, err := e.store.List(ctx, k.commentsCollection(contentID))
	if err != nil {
		e.logger.Warn("cascade: listing comments failed", "kind", k.Name, "content", contentID, "err", err)
	}
	for _, comment := range comments {
		if err := e.store.Delete(ctx, comment.Path); err != nil {
			e.logger.Warn("cascade: deleting comment failed", "path", comment.Path, "err", err)
		}
	}
}

// Followers returns the follower snapshots of a user, for feed rendering.
func (e *Engine) Followers(ctx context.Context, userID string) ([]Actor, error) {
	docs, err := e.store.List(ctx, userPath(userID)+"/followers")
	if err != nil {
		return nil, storeErr(err)
	}
	followers := make([]Actor, 0, len(docs))
	for _, doc := range docs {
		name, _ := doc.Data["name"].(string)
		username, _ := doc.Data["username"].(string)
		avatar, _ := doc.Data["avatar"].(string)
		followers = append(followers, Actor{
			ID:       doc.ID(),
			Name:     name,
			Username: username,
			Avatar:   avatar,
		})
	}
	return followers, nil
}
