package router

import (
	"log"
	"log/slog"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/craftfolio/backend/internal/directory"
	"github.com/craftfolio/backend/internal/docstore"
	"github.com/craftfolio/backend/internal/engagement"
	"github.com/craftfolio/backend/internal/handlers"
	"github.com/craftfolio/backend/internal/middleware"
	"github.com/craftfolio/backend/internal/models"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, store docstore.Store, firebaseAuthClient *auth.Client, engineMetrics engagement.Metrics, logger *slog.Logger) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	dir := directory.NewPostgresDirectory(pgdb)
	engine := engagement.New(store, logger, engineMetrics)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	if firebaseAuthClient != nil {
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
		log.Println("Firebase authentication middleware applied to /api/v1 group.")
	} else {
		// Local mode without Firebase credentials: JWT bearer tokens.
		api.Use(middleware.JWTAuthMiddleware())
		log.Println("JWT authentication middleware applied to /api/v1 group.")
	}

	// User profile routes
	userHandler := handlers.NewUserHandler(dir)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Like / follow routes
	engagementHandler := handlers.NewEngagementHandler(engine, dir)
	engagementHandler.RegisterEngagementRoutes(api)
	log.Println("Engagement routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(engine, dir)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(engine, dir)
	notificationHandler.RegisterNotificationRoutes(api)
	streamHandler := handlers.NewStreamHandler(engine, dir, logger)
	streamHandler.RegisterStreamRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
