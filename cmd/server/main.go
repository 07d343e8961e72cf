package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ironhouse/gym-api/internal/api"
	"ironhouse/gym-api/internal/config"
	"ironhouse/gym-api/internal/events"
	"ironhouse/gym-api/internal/jobs"
	"ironhouse/gym-api/internal/logging"
	"ironhouse/gym-api/internal/repository/mongo"
	"ironhouse/gym-api/internal/service"
	"ironhouse/gym-api/internal/storage"
	"ironhouse/gym-api/internal/tracing"

	"github.com/gin-gonic/gin"
)

// @title Gym Booking API
// @version 1.0
// @description API for the class catalog, bookings, waitlists and recurring bookings of a gym.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Could not load config", "error", err)
		os.Exit(1)
	}

	logger := logging.SetupGlobalHandler(cfg.Tracing.ServiceName, cfg.Log.Level)
	logger.Info("Starting gym booking server", "address", cfg.Server.Address, "mode", cfg.Server.Mode)

	if cfg.JWT.Secret == "" {
		logger.Error("jwt.secret must be set")
		os.Exit(1)
	}
	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Error("Invalid booking timezone", "timezone", cfg.Booking.Timezone, "error", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Tracing ---
	shutdownTracing, err := tracing.InitTracerProvider(rootCtx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		logger.Error("Could not initialise tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Error("Could not connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer func() {
		logger.Info("Disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
			logger.Warn("Index creation finished with errors", "error", err)
			return
		}
		logger.Info("Index creation completed")
	}()

	// --- Storage (optional) ---
	var fileStorage storage.FileStorage
	if cfg.S3.BucketName != "" {
		fileStorage, err = storage.NewS3Storage(rootCtx, cfg.S3)
		if err != nil {
			logger.Error("Failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("S3 bucket not configured, class images disabled")
	}

	// --- Events (optional) ---
	var publisher events.EventPublisher = events.NoopPublisher{}
	if cfg.NATS.URL != "" {
		publisher, err = events.NewNatsPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "url", cfg.NATS.URL, "error", err)
			os.Exit(1)
		}
		logger.Info("Publishing booking events to NATS", "url", cfg.NATS.URL)
	}
	defer publisher.Close()

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	memberRepo := mongo.NewMongoMemberRepository(appDB)
	classRepo := mongo.NewMongoClassRepository(appDB)
	bookingRepo := mongo.NewMongoBookingRepository(appDB)
	waitlistRepo := mongo.NewMongoWaitlistRepository(appDB)
	recurringRepo := mongo.NewMongoRecurringBookingRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, memberRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	classService := service.NewClassService(classRepo, userRepo, fileStorage)
	bookingService := service.NewBookingService(userRepo, memberRepo, classRepo, bookingRepo, waitlistRepo, recurringRepo, publisher, loc)

	// --- Background jobs ---
	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.AddWaitlistExpiry(cfg.Jobs.WaitlistExpirySchedule, bookingService); err != nil {
		logger.Error("Invalid job schedule", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// --- Initialize Gin Engine ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		api.TracingMiddleware(cfg.Tracing.ServiceName),
		api.RequestLogger(),
		api.PrometheusMiddleware(),
	)
	api.SetupRoutes(router, cfg.JWT.Secret, authService, classService, bookingService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-rootCtx.Done()
	logger.Info("Shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	scheduler.Stop(ctxShutdown)

	logger.Info("Server exiting")
}
