package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/engagement"
	"github.com/craftfolio/backend/internal/models"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	engine    *engagement.Engine
	directory directory.Directory
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(engine *engagement.Engine, dir directory.Directory) *CommentHandler {
	return &CommentHandler{engine: engine, directory: dir}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/content/:kind/:id/comments", h.CreateComment)
	g.GET("/content/:kind/:id/comments", h.GetThread)
	g.DELETE("/content/:kind/:id/comments/:comment_id", h.DeleteComment)
}

// CreateComment posts a comment (or a reply when parentId is set) on a
// content item.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	commentID, err := h.engine.AddComment(c.Request().Context(), c.Param("kind"), c.Param("id"), engagement.NewComment{
		Author:   actor,
		Text:     req.Text,
		ParentID: req.ParentID,
	})
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": commentID})
}

// CommentView is a comment with replies attached and the author snapshot
// refreshed from the directory.
type CommentView struct {
	engagement.Comment
	Replies []CommentView `json:"replies,omitempty"`
}

// GetThread returns the assembled two-level comment tree for a content
// item. Author display data merges the live profile over the stored
// snapshot, so renamed users show their current name while deleted users
// fall back to the snapshot.
func (h *CommentHandler) GetThread(c echo.Context) error {
	flat, err := h.engine.ListComments(c.Request().Context(), c.Param("kind"), c.Param("id"))
	if err != nil {
		return engineError(err)
	}

	thread := engagement.AssembleThread(flat)
	cache := directory.NewProfileCache(h.directory, 256)

	roots := thread.Roots()
	out := make([]CommentView, 0, len(roots))
	for _, root := range roots {
		view := CommentView{Comment: h.refreshAuthor(cache, root)}
		for _, reply := range thread.RepliesOf(root.ID) {
			view.Replies = append(view.Replies, CommentView{Comment: h.refreshAuthor(cache, reply)})
		}
		out = append(out, view)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CommentHandler) refreshAuthor(cache *directory.ProfileCache, comment engagement.Comment) engagement.Comment {
	profile, ok := cache.Resolve(comment.AuthorID)
	if !ok {
		return comment
	}
	if profile.DisplayName != "" {
		comment.AuthorName = profile.DisplayName
	}
	if profile.Username != "" {
		comment.AuthorUsername = profile.Username
	}
	if profile.AvatarURL != "" {
		comment.AuthorAvatar = profile.AvatarURL
	}
	return comment
}

// DeleteComment removes a comment. Replies of a deleted root are left in
// place with their parent id dangling.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if _, err := currentActor(c, h.directory); err != nil {
		return err
	}

	err := h.engine.DeleteComment(c.Request().Context(), c.Param("kind"), c.Param("id"), c.Param("comment_id"))
	if err != nil {
		return engineError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
