package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/docstore"
	"github.com/craftfolio/backend/internal/engagement"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler pushes live notification changes over a websocket.
type StreamHandler struct {
	engine    *engagement.Engine
	directory directory.Directory
	logger    *slog.Logger
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(engine *engagement.Engine, dir directory.Directory, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{engine: engine, directory: dir, logger: logger}
}

// RegisterStreamRoutes registers the notification stream route
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/notifications/stream", h.StreamNotifications)
}

type streamEvent struct {
	Event        string                  `json:"event"` // added, modified, removed
	Notification engagement.Notification `json:"notification"`
}

// StreamNotifications upgrades the connection and forwards every change in
// the caller's notification collection until the client disconnects.
func (h *StreamHandler) StreamNotifications(c echo.Context) error {
	actor, err := currentActor(c, h.directory)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx := c.Request().Context()
	events, err := h.engine.WatchNotifications(ctx, actor.ID)
	if err != nil {
		h.logger.Warn("notification watch failed", "user", actor.ID, "err", err)
		return nil
	}

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			msg := streamEvent{Event: eventName(ev.Type)}
			msg.Notification = notificationView(ev.Doc)
			if err := conn.WriteJSON(msg); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func eventName(t docstore.EventType) string {
	switch t {
	case docstore.EventAdded:
		return "added"
	case docstore.EventRemoved:
		return "removed"
	default:
		return "modified"
	}
}

func notificationView(doc docstore.Document) engagement.Notification {
	typ, _ := doc.Data["type"].(string)
	actorName, _ := doc.Data["actorName"].(string)
	actorAvatar, _ := doc.Data["actorAvatar"].(string)
	content, _ := doc.Data["content"].(string)
	link, _ := doc.Data["link"].(string)
	read, _ := doc.Data["read"].(bool)
	return engagement.Notification{
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
