// vidcard-tui edits the enrichment settings stored by the vidcard server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/iconidentify/vidcard/cmd/vidcard-tui/internal/ui"
	"github.com/iconidentify/vidcard/internal/config"
	"github.com/iconidentify/vidcard/internal/repository"
	"github.com/iconidentify/vidcard/internal/service"
	"github.com/iconidentify/vidcard/pkg/crypto"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	dbPath := flag.String("db", "", "Settings database path (overrides config)")
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.Storage.DatabasePath = *dbPath
	}

	var sealer *crypto.Sealer
	if cfg.Storage.Secret != "" {
		if sealer, err = crypto.NewSealer(cfg.Storage.Secret); err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing key encryption: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	repo, err := repository.NewSQLiteSettingsRepository(ctx, cfg.Storage.DatabasePath, sealer)
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error opening settings store: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close()

	// The terminal belongs to the form; service logs are dropped.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	settings := service.NewSettingsService(repo, logger)

	app, err := ui.NewApp(ctx, settings)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing TUI: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
