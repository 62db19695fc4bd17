package router

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/mehedi90s/socialite/backend/internal/handlers"
	"github.com/mehedi90s/socialite/backend/internal/middleware"
	"github.com/mehedi90s/socialite/backend/internal/models"
	"github.com/mehedi90s/socialite/backend/internal/notify"
	"github.com/mehedi90s/socialite/backend/internal/push"
	"github.com/mehedi90s/socialite/backend/internal/realtime"
	"github.com/mehedi90s/socialite/backend/internal/repositories"
	"github.com/mehedi90s/socialite/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// messagingClient may be nil; the FCM push leg is skipped in that case.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, messagingClient *messaging.Client, cfg *config.Config) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FollowRequest{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewMongoNotificationRepository(
		mgClient.Database(cfg.MongoDB),
		time.Duration(cfg.RetentionDays)*24*time.Hour,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := notificationRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure notification indexes: %v", err)
	}
	log.Println("MongoDB notification indexes ensured.")

	// --- Realtime hub and notification core ---
	hub := realtime.NewHub()

	var pushSender notify.PushSender
	if messagingClient != nil {
		pushSender = push.NewFCMSender(messagingClient)
		log.Println("FCM push leg enabled.")
	}

	emitter := notify.NewEmitter(hub, notificationRepo, userRepo, pushSender)
	notificationService := notify.NewService(notificationRepo, emitter)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationService)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationService, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Internal service-to-service routes
	internal := e.Group("/api/v1/internal")
	internal.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	notificationHandler.RegisterInternalRoutes(internal)
	log.Println("Internal notification routes configured.")

	// Websocket route
	wsHandler := handlers.NewWSHandler(hub, cfg.WSSendBuffer)
	wsHandler.RegisterWSRoutes(api)
	log.Println("Websocket route configured.")

	log.Println("All routes configured.")
}
