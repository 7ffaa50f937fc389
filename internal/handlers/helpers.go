package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/errs"
	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/engagement"
)

// currentActor resolves the authenticated user's profile into the actor
// snapshot carried on edges and notifications.
func currentActor(c echo.Context, dir directory.Directory) (engagement.Actor, error) {
	firebaseUID, _ := c.Get("firebaseUID").(string)
	if firebaseUID == "" {
		return engagement.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	user, err := dir.GetByFirebaseUID(firebaseUID)
	if err != nil {
		return engagement.Actor{}, echo.NewHTTPError(http.StatusInternalServerError, "Authenticated user not found in database")
	}
	return engagement.Actor{
		ID:       user.UID,
		Name:     user.DisplayName,
		Username: user.Username,
		Avatar:   user.AvatarURL,
	}, nil
}

// engineError maps engine error values onto HTTP responses.
func engineError(err error) error {
	switch {
	case errors.Is(err, errs.UnknownKind),
		errors.Is(err, errs.SelfFollow),
		errors.Is(err, errs.ReplyDepthExceeded):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ContentNotFound),
		errors.Is(err, errs.CommentNotFound),
		errors.Is(err, errs.UserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.StoreUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, errs.StoreUnavailable.Public())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
