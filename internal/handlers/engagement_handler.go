package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/engagement"
	"github.com/craftfolio/backend/internal/models"
)

// EngagementHandler exposes like and follow toggles plus the new-content
// fan-out over HTTP.
type EngagementHandler struct {
	engine    *engagement.Engine
	directory directory.Directory
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engine *engagement.Engine, dir directory.Directory) *EngagementHandler {
	return &EngagementHandler{engine: engine, directory: dir}
}

// RegisterEngagementRoutes registers like/follow routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/content/:kind/:id/like", h.ToggleLike)
	g.GET("/content/:kind/:id/like", h.GetLikeStatus)
	g.POST("/content/:kind/:id/published", h.AnnouncePublished)
	g.DELETE("/content/:kind/:id", h.DeleteContent)
	g.POST("/users/:id/follow", h.ToggleFollow)
	g.GET("/users/:id/follow", h.GetFollowStatus)
	g.GET("/users/:id/followers", h.GetFollowers)
}

// ToggleLike flips the caller's like on a content item.
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	liked, err := h.engine.ToggleLike(c.Request().Context(), c.Param("kind"), c.Param("id"), actor)
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"liked": liked}})
}

// GetLikeStatus reports whether the caller has liked a content item.
func (h *EngagementHandler) GetLikeStatus(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	liked, err := h.engine.LikeStatus(c.Request().Context(), c.Param("kind"), c.Param("id"), actor.ID)
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}

// ToggleFollow flips the caller's follow on the target user.
func (h *EngagementHandler) ToggleFollow(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	following, err := h.engine.ToggleFollow(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"following": following}})
}

// GetFollowStatus reports whether the caller follows the target user.
func (h *EngagementHandler) GetFollowStatus(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	following, err := h.engine.FollowStatus(c.Request().Context(), c.Param("id"), actor.ID)
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// GetFollowers returns the follower snapshots of a user.
func (h *EngagementHandler) GetFollowers(c echo.Context) error {
	followers, err := h.engine.Followers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, followers)
}

// AnnouncePublished fans a new-content notification out to the caller's
// followers. Content authoring itself happens elsewhere; this is the hook
// the publish flow calls afterwards.
func (h *EngagementHandler) AnnouncePublished(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	var req models.PublishedContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.engine.NotifyNewContent(c.Request().Context(), actor, c.Param("kind"), c.Param("id"), req.Title); err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteContent removes a content item and sweeps its engagement records.
func (h *EngagementHandler) DeleteContent(c echo.Context) error {
	if _, err := currentActor(c, h.directory); err != nil {
		return err
	}

	if err := h.engine.DeleteContent(c.Request().Context(), c.Param("kind"), c.Param("id")); err != nil {
		return engineError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
