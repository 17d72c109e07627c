package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jjckrbbt/wrapped/internal/api"
	"github.com/jjckrbbt/wrapped/internal/config"
	"github.com/jjckrbbt/wrapped/internal/connections"
	"github.com/jjckrbbt/wrapped/internal/logger"
	"github.com/jjckrbbt/wrapped/internal/migrations"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/jjckrbbt/wrapped/internal/stats"
)

func main() {
	// 1. Load application configuration FIRST.
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize Sentry.
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		TracesSampleRate: 1.0,
	}); err != nil {
		fmt.Printf("Sentry initialization failed: %v\n", err)
	}
	defer sentry.Flush(2 * time.Second)

	// 3. Initialize the Logger.
	logger.InitLogger(cfg.AppEnv)
	appLogger := logger.L()
	appLogger.Info("Application starting up...", "environment", cfg.AppEnv)

	// 4. Connect to the Database and bring the schema up to date.
	dbClient, err := connections.ConnectDB(cfg.DatabaseURL, appLogger.With("component", "database_connector"))
	if err != nil {
		appLogger.Error("Failed to connect to database at startup", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbClient.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	err = migrations.Up(migrateCtx, dbClient.Pool, appLogger.With("component", "migrations"))
	cancel()
	if err != nil {
		appLogger.Error("Failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Load year profiles and build the services.
	profiles, err := config.LoadProfiles(cfg.ProfilesDir)
	if err != nil {
		appLogger.Error("Failed to load year profiles", slog.Any("error", err), "dir", cfg.ProfilesDir)
		os.Exit(1)
	}
	appLogger.Info("Year profiles loaded.", "years", profiles.Years())

	statsService := stats.NewService(repository.New(dbClient.Pool), profiles, appLogger)

	// 6. Build the HTTP server.
	e := api.NewServer(api.ServerOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		Development:    cfg.IsDevelopment(),
		DevUserID:      cfg.DevUserID,
		LikeRateLimit:  cfg.LikeRateLimit,
	}, statsService, dbClient, appLogger)

	// 7. Start the HTTP server.
	address := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	appLogger.Info("HTTP Server starting on port", "port", cfg.Port)

	if err := e.Start(address); err != nil && err != http.ErrServerClosed {
		appLogger.Error("HTTP Server failed to start", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("HTTP Server stopped gracefully.")
}
