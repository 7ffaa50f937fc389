// Package engagement implements the engine behind likes, follows, comments
// and their notifications: deterministic-key edge records, denormalized
// counters kept in the same atomic batch as the edge mutation, best-effort
// notification fan-out, and a pure thread assembler for comment trees.
package engagement

import "github.com/craftfolio/backend/errs"

// Kind describes one likeable/commentable content type. The engine is
// parameterized by these descriptors instead of carrying one like/comment
// module per content type.
type Kind struct {
	Name string
	// Collection is the top-level collection holding documents of this kind.
	Collection string
	// LikeField and CommentField are the legacy flat counter fields still
	// read by older clients; the Stats* fields are the structured
	// counterparts. Writers update both in one batch.
	LikeField         string
	CommentField      string
	StatsLikeField    string
	StatsCommentField string
	// Label appears in notification messages ("liked your article").
	Label string
	// LinkPrefix builds the notification deep link.
	LinkPrefix string
}

var kinds = map[string]Kind{
	"article": {
		Name:              "article",
		Collection:        "articles",
		LikeField:         "likes",
		CommentField:      "comments",
		StatsLikeField:    "stats.likeCount",
		StatsCommentField: "stats.commentCount",
		Label:             "article",
		LinkPrefix:        "/articles/",
	},
	"project": {
		Name:              "project",
		Collection:        "projects",
		LikeField:         "likes",
		CommentField:      "comments",
		StatsLikeField:    "stats.likeCount",
		StatsCommentField: "stats.commentCount",
		Label:             "project",
		LinkPrefix:        "/projects/",
	},
	"thread": {
		Name:              "thread",
		Collection:        "threads",
		LikeField:         "likes",
		CommentField:      "replies",
		StatsLikeField:    "stats.likeCount",
		StatsCommentField: "stats.replyCount",
		Label:             "thread",
		LinkPrefix:        "/forum/",
	},
	"reply": {
		Name:              "reply",
		Collection:        "replies",
		LikeField:         "likes",
		CommentField:      "comments",
		StatsLikeField:    "stats.likeCount",
		StatsCommentField: "stats.commentCount",
		Label:             "reply",
		LinkPrefix:        "/forum/replies/",
	},
}

// KindByName resolves a content kind tag.
func KindByName(name string) (Kind, error) {
	k, ok := kinds[name]
	if !ok {
		return Kind{}, errs.UnknownKind
	}
	return k, nil
}

// KindNames lists the registered kind tags, for route validation.
func KindNames() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	return names
}

func (k Kind) docPath(contentID string) string {
	return k.Collection + "/" + contentID
}

func (k Kind) likePath(contentID, userID string) string {
	return k.Collection + "/" + contentID + "/likes/" + userID
}

func (k Kind) likesCollection(contentID string) string {
	return k.Collection + "/" + contentID + "/likes"
}

func (k Kind) commentPath(contentID, commentID string) string {
	return k.Collection + "/" + contentID + "/comments/" + commentID
}

func (k Kind) commentsCollection(contentID string) string {
	return k.Collection + "/" + contentID + "/comments"
}
