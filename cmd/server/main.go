package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/craftfolio/backend/internal/docstore"
	"github.com/craftfolio/backend/internal/router"
	"github.com/craftfolio/backend/pkg/config"
	"github.com/craftfolio/backend/pkg/firebase"
	"github.com/craftfolio/backend/pkg/metrics"
	"github.com/craftfolio/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase. Running without credentials is a local-mode
	// setup: JWT auth instead of Firebase tokens, Mongo as the store.
	ctx := context.Background()
	var firebaseApp *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	} else if cfg.DocstoreBackend != "mongo" {
		log.Fatal("FIREBASE_CREDENTIALS_PATH is required unless DOCSTORE_BACKEND=mongo")
	}

	// Pick the document store backend
	var store docstore.Store
	switch cfg.DocstoreBackend {
	case "mongo":
		store = docstore.NewMongoStore(db.Mongo, cfg.MongoDatabase)
	default:
		store = docstore.NewFirestoreStore(firebaseApp.Firestore)
	}
	log.Printf("Document store backend: %s", cfg.DocstoreBackend)

	// Engagement metrics, served on their own port
	engagementMetrics := metrics.NewEngagement()
	go func() {
		addr := ":" + cfg.MetricsPort
		log.Printf("Metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, engagementMetrics.Handler()); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	var authClient *auth.Client
	if firebaseApp != nil {
		authClient = firebaseApp.AuthClient
	}
	router.SetupRoutes(e, db.Postgres, store, authClient, engagementMetrics, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
