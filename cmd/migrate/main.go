package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/novocode/novocode-api/config"
	"github.com/novocode/novocode-api/pkg/db"
	"github.com/novocode/novocode-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Server.AppEnv,
		ServiceName: "novocode-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Database.URL == "" {
		logger.Error("DATABASE_URL is required to run migrations")
		os.Exit(1)
	}

	logger.Info("Starting database migrations",
		zap.String("database", maskDatabaseURL(cfg.Database.URL)),
		zap.String("source", cfg.Database.MigrationsPath))

	if err := db.RunMigrations(cfg.Database.URL, cfg.Database.CACertPath, cfg.Database.MigrationsPath); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database migrations completed successfully")
}

// maskDatabaseURL hides the password of a database URL for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
