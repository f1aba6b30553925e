package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/inventory-service/internal/api"
	"github.com/user/inventory-service/internal/config"
	"github.com/user/inventory-service/internal/crawler"
	"github.com/user/inventory-service/internal/inventory"
	"github.com/user/inventory-service/internal/monitoring"
	"github.com/user/inventory-service/internal/proxy"
	"github.com/user/inventory-service/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		boot, _ := zap.NewProduction()
		boot.Fatal("could not load config", zap.Error(err))
	}

	// Initialize structured logger
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()

	// Initialize optional run log stores
	var (
		history storage.RunHistory
		streaks storage.StreakCounter
	)
	if cfg.PostgresURL != "" {
		pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare run log schema", zap.Error(err))
		}
		history = pgStore
	}
	if cfg.RedisAddr != "" {
		redisStore := storage.NewRedisStore(cfg.RedisAddr)
		defer redisStore.Close()
		streaks = redisStore
	}
	runLog := storage.NewRunLog(history, streaks, logger)

	// Initialize Monitoring, Proxies
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	proxyManager := proxy.NewManager(cfg.UserAgent, cfg.AcceptLanguage, cfg.ProxyURLs)
	fetchTimeout := time.Duration(cfg.FetchTimeout) * time.Second

	var fetcher inventory.Fetcher
	switch cfg.FetchMode {
	case config.FetchModeBrowser:
		bf := crawler.NewBrowserFetcher(proxyManager, fetchTimeout, logger)
		defer bf.Close()
		fetcher = bf
	default:
		fetcher = crawler.NewHTTPFetcher(proxyManager, fetchTimeout, logger)
	}

	// Initialize the pipeline
	service := inventory.NewService(
		fetcher,
		crawler.NewExtractor(cfg.EmbedScriptID),
		inventory.NewLocator(cfg.LocatorMaxDepth, cfg.LocatorMaxNodes),
		runLog,
		metrics,
		logger,
		inventory.ServiceConfig{
			SourceURL:    cfg.SourceURL,
			SourceLabel:  cfg.SourceLabel,
			FetchTimeout: fetchTimeout,
		},
	)

	// Initialize API Server
	server := api.NewServer(cfg.ServerPort, service, runLog, metrics, promhttp.Handler(), logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started",
		zap.String("port", cfg.ServerPort),
		zap.String("source", cfg.SourceLabel),
		zap.String("fetch_mode", cfg.FetchMode),
		zap.Bool("run_history", history != nil),
		zap.Bool("failure_streak", streaks != nil),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exiting")
}

// newLogger builds a production JSON logger at the configured level.
func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}
