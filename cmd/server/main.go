package main

// @title           Must-Eat List API
// @version         1.0
// @description     A RESTful API for the must-eat voting board
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"musteat-service/internal/adapters/kafka"
	"musteat-service/internal/api/routes"
	"musteat-service/internal/config"
	"musteat-service/internal/database"
	"musteat-service/internal/repositories/postgres"
	"musteat-service/internal/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting must-eat server")

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	pushProducer, err := kafka.InitPushProducer(cfg.Kafka.Brokers, cfg.Kafka.PushTopic)
	if err != nil {
		// Push delivery is best-effort everywhere; a missing broker only
		// drops pushes, never the API.
		slog.Warn("Kafka push producer unavailable, pushes disabled", "error", err)
		pushProducer = nil
	}

	eventWriter := kafka.NewVoteEventWriter(cfg.Kafka.Brokers, cfg.Kafka.EventTopic)
	defer eventWriter.Close()

	storage, err := database.NewMinIOClient(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket)
	if err != nil {
		slog.Error("Failed to connect to MinIO", "error", err)
		os.Exit(1)
	}

	redisService := services.NewRedisService(redisClient)
	notifier := services.NewNotifier(
		postgres.NewUserRepository(db),
		postgres.NewEntryRepository(db),
		postgres.NewMessageRepository(db),
		pushProducer,
		cfg.Kafka.PushTopic,
		cfg.Push.TemplateID,
	)

	router := routes.NewRouter(db, redisService, storage, notifier, eventWriter, cfg)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Let in-flight notifications and vote events land before closing the
	// producer.
	router.Drain()
	notifier.Wait()
	if pushProducer != nil {
		if err := pushProducer.Close(); err != nil {
			slog.Error("Failed to close Kafka producer", "error", err)
		}
	}

	slog.Info("Server stopped")
}
