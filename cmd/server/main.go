package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	"github.com/mehedi90s/socialite/backend/internal/router"
	"github.com/mehedi90s/socialite/backend/pkg/config"
	"github.com/mehedi90s/socialite/backend/pkg/firebase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase Cloud Messaging (optional)
	var messagingClient *messaging.Client
	if cfg.FirebaseCredentialsPath != "" {
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		messagingClient = firebaseApp.MessagingClient
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, push notifications disabled.")
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.Mongo, messagingClient, cfg)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
