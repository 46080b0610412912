package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/poll/analytics/internal/adapters/cache"
	handler "github.com/poll/analytics/internal/adapters/handler/http"
	repo "github.com/poll/analytics/internal/adapters/repository/postgres"
	"github.com/poll/analytics/internal/config"
	"github.com/poll/analytics/internal/core/ports"
	"github.com/poll/analytics/internal/core/services"
	"github.com/poll/analytics/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", cfg.Database.ConnString())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("failed to reach database", zap.Error(err))
	}

	store := repo.NewAnalyticsRepository(db)

	var analyticsService ports.AnalyticsService = services.NewAnalyticsService(store, logger)
	if cfg.Analytics.CacheTTL > 0 {
		logger.Info("result cache enabled",
			zap.Duration("ttl", cfg.Analytics.CacheTTL),
			zap.Int("size", cfg.Analytics.CacheSize))
		resultCache := cache.NewTTLCache(cfg.Analytics.CacheSize, cfg.Analytics.CacheTTL)
		analyticsService = services.NewCachedAnalyticsService(analyticsService, resultCache)
	}

	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, store, logger)
	router := handler.NewHandler(analyticsHandler, []byte(cfg.Auth.JWTSecret))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &stdhttp.Server{Addr: addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("analytics server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown failed", zap.Error(err))
	}
}
