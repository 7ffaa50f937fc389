package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/engagement"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	engine    *engagement.Engine
	directory directory.Directory
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(engine *engagement.Engine, dir directory.Directory) *NotificationHandler {
	return &NotificationHandler{engine: engine, directory: dir}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
}

// GetNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	notifications, err := h.engine.Notifications(c.Request().Context(), actor.ID)
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

// GetUnreadCount returns how many notifications the caller has not read.
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	count, err := h.engine.UnreadCount(c.Request().Context(), actor.ID)
	if err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"unread_count": count})
}

// MarkAsRead marks a single notification as read.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	if err := h.engine.MarkRead(c.Request().Context(), actor.ID, c.Param("id")); err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	if err := h.engine.MarkAllRead(c.Request().Context(), actor.ID); err != nil {
		return engineError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
