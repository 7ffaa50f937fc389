package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/models"
)

// UserHandler exposes the account directory over HTTP.
type UserHandler struct {
	directory directory.Directory
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(dir directory.Directory) *UserHandler {
	return &UserHandler{directory: dir}
}

// RegisterProfileRoutes registers user profile routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
	g.POST("/users", h.CreateUser)
	g.PUT("/users/me", h.UpdateMe)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
}

func (h *UserHandler) me(c echo.Context) (*models.User, error) {
	firebaseUID, _ := c.Get("firebaseUID").(string)
	if firebaseUID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	user, err := h.directory.GetByFirebaseUID(firebaseUID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "User profile not found")
	}
	return user, nil
}

// GetMe returns the caller's profile.
func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.me(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser creates the caller's directory profile after Firebase sign-up.
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user := &models.User{
		UID:         req.FirebaseUID,
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
		FirebaseUID: req.FirebaseUID,
	}
	if err := h.directory.Create(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateMe updates the caller's profile fields.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := h.me(c)
	if err != nil {
		return err
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if err := h.directory.Update(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

// GetUser returns a public profile by document-store uid.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.directory.GetByUID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	return c.JSON(http.StatusOK, user.ToProfile())
}

// SearchUsers searches profiles by display name or username.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing search query")
	}
	users, err := h.directory.Search(query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	profiles := make([]models.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.ToProfile())
	}
	return c.JSON(http.StatusOK, profiles)
}
