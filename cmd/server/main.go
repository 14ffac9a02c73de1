package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/iconidentify/vidcard/internal/api"
	"github.com/iconidentify/vidcard/internal/api/handler"
	"github.com/iconidentify/vidcard/internal/config"
	"github.com/iconidentify/vidcard/internal/metrics"
	"github.com/iconidentify/vidcard/internal/repository"
	"github.com/iconidentify/vidcard/internal/service"
	"github.com/iconidentify/vidcard/internal/worker"
	"github.com/iconidentify/vidcard/pkg/crypto"
	"github.com/iconidentify/vidcard/pkg/youtube"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("vidcard %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting vidcard",
		"version", Version,
		"build_time", BuildTime,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var sealer *crypto.Sealer
	if cfg.Storage.Secret != "" {
		sealer, err = crypto.NewSealer(cfg.Storage.Secret)
		if err != nil {
			logger.Error("failed to init key encryption", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("storage.secret not set; the YouTube API key is stored unencrypted")
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	settingsRepo, err := repository.NewSQLiteSettingsRepository(initCtx, cfg.Storage.DatabasePath, sealer)
	cancelInit()
	if err != nil {
		logger.Error("failed to open settings store", "error", err, "path", cfg.Storage.DatabasePath)
		os.Exit(1)
	}
	defer settingsRepo.Close()

	m := metrics.NewMetrics()
	jobRepo := repository.NewInMemoryJobRepository()

	settingsSvc := service.NewSettingsService(settingsRepo, logger)
	icons := service.NewChannelIconResolver(youtube.NewDataClient(cfg.YouTube), m, logger)
	resolver := service.NewMetadataResolver(youtube.NewOEmbedClient(cfg.YouTube), icons, m, logger)
	enrichSvc := service.NewEnrichService(resolver, settingsSvc, jobRepo, m, logger)

	router := api.NewRouter(api.Handlers{
		Enrich:   handler.NewEnrichHandler(enrichSvc, settingsSvc, logger),
		Settings: handler.NewSettingsHandler(settingsSvc, logger),
		Jobs:     handler.NewJobHandler(enrichSvc, logger),
		Health:   handler.NewHealthHandler(settingsSvc, jobRepo, filepath.Dir(cfg.Storage.DatabasePath), logger),
		UI:       handler.NewUIHandler(),
		Metrics:  m.Handler(),
	}, api.RouterConfig{
		APIKey:      cfg.Server.APIKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.WriteTimeout,
	}, logger)

	pool := worker.NewPool(
		worker.Config{
			Workers:      cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		},
		jobRepo,
		enrichSvc,
		m,
		logger,
	)
	pool.Start()

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
