package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/EzraBr1dger/space-map-admin/internal/config"
	"github.com/EzraBr1dger/space-map-admin/internal/database"
	"github.com/EzraBr1dger/space-map-admin/internal/handlers"
	"github.com/EzraBr1dger/space-map-admin/internal/middleware"
	"github.com/EzraBr1dger/space-map-admin/internal/services"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
	"github.com/EzraBr1dger/space-map-admin/telegram"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store, data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return store.NewGormStore(db), nil
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	defer logger.Sync()

	logger.Info("Starting space map admin server...", "version", version)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	st, err := openStore(cfg)
	if err != nil {
		logger.Fatal("Failed to open store", err)
	}

	ctx := context.Background()
	if err := database.SeedDefaults(ctx, st); err != nil {
		logger.Warn("Failed to seed default documents", "error", err)
	}

	distances := services.DefaultDistanceTable()
	if cfg.DistanceTablePath != "" {
		distances, err = services.LoadDistanceTable(cfg.DistanceTablePath)
		if err != nil {
			logger.Fatal("Failed to load distance table", err)
		}
		logger.Info("Distance table loaded", "path", cfg.DistanceTablePath, "routes", len(distances))
	}

	opts := services.Options{
		Distances:         distances,
		DefaultTravelDays: cfg.DefaultTravelDays,
		DeductCredits:     cfg.DeductConstructionCredits,
		JWTSecret:         cfg.JWTSecret,
		TokenTTL:          cfg.GetTokenTTL(),
	}
	if cfg.TelegramEnabled() {
		announcer, err := telegram.InitAnnouncer(cfg)
		if err != nil {
			logger.Warn("Telegram announcements disabled", "error", err)
		} else {
			opts.Notifier = announcer
		}
	}

	svc := services.New(st, opts)
	if err := svc.Auth.SeedAdmin(ctx, cfg.AdminUsername, cfg.AdminPasswordHash); err != nil {
		logger.Fatal("Failed to seed admin account", err)
	}
	if _, err := svc.Factions.Recompute(ctx); err != nil {
		logger.Warn("Initial faction stats recalculation failed", "error", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerIP, cfg.GetRateLimitWindow())
	defer limiter.Stop()

	h := handlers.NewHandlerManager(cfg, svc, version)
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handlers.NewRouter(h, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("Server listening", "port", cfg.AppPort, "env", cfg.AppEnv, "frontend", cfg.FrontendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
