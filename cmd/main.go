package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetvault/internal/api"
	"assetvault/internal/config"
	"assetvault/internal/db"
	"assetvault/internal/models"
	"assetvault/internal/services"
	"assetvault/internal/tasks"
	"assetvault/internal/utils/logger"

	"github.com/joho/godotenv"
)

func main() {
	logger := logger.New("assetvault")

	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	dbInstance := db.GetDB()

	storage, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Task server processes the offline version-repair pass.
	taskHandler := tasks.NewTaskHandler(dbInstance)
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		taskHandler,
		logger,
	)

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			logger.Error("Task server error", err)
		}
	}()

	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Repair.CronSpec,
		logger,
	)

	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}()

	apiServer := api.NewServer(cfg, dbInstance, storage)
	go func() {
		logger.Success("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	taskScheduler.Stop()
	taskServer.Shutdown()
	serverCancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}

// newStorage picks the configured backend. Signed URLs are only wired up
// for S3; local development falls back to the proxied download endpoint.
func newStorage(cfg *config.Config) (services.Storage, error) {
	if cfg.Storage.Provider == "s3" {
		s3Service, err := services.NewS3Service(cfg.Storage.S3)
		if err != nil {
			return nil, err
		}
		models.RegisterFileURLGenerator(s3Service)
		return s3Service, nil
	}
	return services.NewLocalStorage(cfg.Storage.BasePath)
}
