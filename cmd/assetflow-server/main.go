// Package main provides the assetflow server entry point: the HTTP surface
// over the asset lifecycle engine and the transfer and salvage workflows.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ZetallicA/assetflow/pkg/api"
	"github.com/ZetallicA/assetflow/pkg/assets"
	"github.com/ZetallicA/assetflow/pkg/config"
	"github.com/ZetallicA/assetflow/pkg/lifecycle"
	"github.com/ZetallicA/assetflow/pkg/salvage"
	"github.com/ZetallicA/assetflow/pkg/transfer"
)

func main() {
	var (
		configPath string
		listenAddr string
		dbType     string
		dbDSN      string
	)

	flag.StringVar(&configPath, "config", "/etc/assetflow/config.yaml", "Path to server config")
	flag.StringVar(&listenAddr, "listen", "", "Address to listen on (overrides config)")
	flag.StringVar(&dbType, "db-type", "", "Database type: sqlite, postgres, or mysql (overrides config)")
	flag.StringVar(&dbDSN, "db-dsn", "", "Database connection string (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		cfg.Listen = listenAddr
	}
	if dbType != "" {
		cfg.Database.Type = dbType
	}
	if dbDSN == "" {
		dbDSN = os.Getenv("ASSETFLOW_DB_DSN")
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	}

	logger.Info("starting assetflow server",
		"listen", cfg.Listen,
		"dbType", cfg.Database.Type)

	db, err := setupDatabase(cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := assets.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	engine := lifecycle.NewEngine(db, logger)
	transfers := transfer.NewWorkflow(db, engine, logger)
	batches := salvage.NewWorkflow(db, engine, logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Mount("/api/assetflow/v1", api.NewRouter(engine, transfers, batches))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	logger.Info("assetflow server ready", "listen", cfg.Listen)

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("assetflow server stopped")
}

func setupDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch cfg.Type {
	case "sqlite", "":
		return gorm.Open(sqlite.Open(cfg.DSN), gormCfg)
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	case "mysql":
		return gorm.Open(mysql.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unknown database type %q (expected sqlite, postgres, or mysql)", cfg.Type)
	}
}
