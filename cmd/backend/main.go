// Package main provides the entry point for the Shortly URL shortener
// service: short-code resolution with A/B traffic splitting and
// asynchronous click analytics.
package main

import (
	"Shortly-Backend/internal/analytics"
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/database"
	"Shortly-Backend/internal/enrichment"
	httpHandler "Shortly-Backend/internal/handler/http"
	"Shortly-Backend/internal/repository/postgres"
	"Shortly-Backend/internal/service"
	"Shortly-Backend/pkg/logger"
	"Shortly-Backend/pkg/useragent"
	"context"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting Shortly backend", zap.String("env", cfg.Env))

	// Database
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, log); err != nil {
			log.Error("failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	// Enrichment pipeline: UA parsing always on, geo lookup only when a
	// database is configured.
	uaParser, err := useragent.NewParser(cfg.Enrichment.UARegexesPath, log)
	if err != nil {
		log.Fatal("failed to initialize User-Agent parser", zap.Error(err))
	}
	locator, err := enrichment.NewLocator(cfg.Enrichment.GeoIPDBPath, log)
	if err != nil {
		log.Fatal("failed to initialize GeoIP locator", zap.Error(err))
	}
	defer func() {
		if err := locator.Close(); err != nil {
			log.Error("failed to close GeoIP locator", zap.Error(err))
		}
	}()
	enricher := enrichment.NewEnricher(uaParser, locator, log)

	// Storage, recorder, services
	storage := postgres.New(db, log)

	recorderCfg := analytics.DefaultRecorderConfig()
	recorderCfg.WorkerCount = cfg.Recorder.Workers
	recorderCfg.BufferSize = cfg.Recorder.BufferSize
	recorderCfg.RetryAttempts = cfg.Recorder.RetryAttempts
	if d, err := time.ParseDuration(cfg.Recorder.RetryDelay); err == nil {
		recorderCfg.RetryDelay = d
	}
	if d, err := time.ParseDuration(cfg.Recorder.ShutdownTimeout); err == nil {
		recorderCfg.ShutdownTimeout = d
	}
	recorder := analytics.NewRecorder(storage, enricher, log, recorderCfg)
	if err := recorder.Start(); err != nil {
		log.Fatal("failed to start click recorder", zap.Error(err))
	}

	shortener := service.NewShortener(storage, &cfg.Shortener)
	resolver := service.NewResolver(storage, recorder, log)
	aggregator := analytics.NewAggregator(storage, log)

	// HTTP server
	apiServer := httpHandler.NewServer(
		storage,
		shortener,
		resolver,
		aggregator,
		recorder,
		&cfg.RateLimit,
		log,
		cfg.Shortener.BaseURL,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  parseDurationOr(cfg.HTTPServer.ReadTimeout, 30*time.Second),
		WriteTimeout: parseDurationOr(cfg.HTTPServer.WriteTimeout, 30*time.Second),
		IdleTimeout:  parseDurationOr(cfg.HTTPServer.IdleTimeout, 60*time.Second),
	}

	go func() {
		log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down Shortly backend...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// HTTP first so no new clicks arrive, then drain the recorder.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	if err := recorder.Stop(); err != nil {
		log.Error("failed to stop click recorder", zap.Error(err))
	}
}

func parseDurationOr(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
