package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonMunkholm/csvsearch/internal/census"
	"github.com/JonMunkholm/csvsearch/internal/config"
	"github.com/JonMunkholm/csvsearch/internal/core"
	"github.com/JonMunkholm/csvsearch/internal/logging"
	"github.com/JonMunkholm/csvsearch/internal/resource"
	"github.com/JonMunkholm/csvsearch/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration", "config", cfg.String())

	dir, err := resource.NewDir(cfg.Data.Dir)
	if err != nil {
		slog.Error("failed to open data directory", "dir", cfg.Data.Dir, "error", err)
		os.Exit(1)
	}

	client := census.NewClient(census.Options{
		BaseURL:           cfg.Census.BaseURL,
		APIKey:            cfg.Census.APIKey,
		Timeout:           cfg.Census.Timeout,
		RequestsPerMinute: cfg.Census.RequestsPerMinute,
		Burst:             cfg.Census.Burst,
	})
	broadband, err := census.NewCachingSource(client, cfg.Cache.BroadbandMaxEntries)
	if err != nil {
		slog.Error("failed to create broadband cache", "error", err)
		os.Exit(1)
	}

	service, err := core.NewService(dir, broadband, core.ServiceConfig{
		MaxLoadedFiles:      cfg.Data.MaxLoadedFiles,
		MaxConcurrentParses: cfg.Parse.MaxConcurrent,
		ParseWait:           cfg.Parse.MaxWaitTime,
		IndexCacheSize:      cfg.Cache.IndexMaxEntries,
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	slog.Info("service ready",
		"data_dir", dir.Root(),
		"max_loaded_files", cfg.Data.MaxLoadedFiles,
		"parse_max_concurrent", cfg.Parse.MaxConcurrent,
		"record_kinds", len(core.Kinds()),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	if cfg.Data.PreloadManifest != "" {
		preload(service, cfg.Data.PreloadManifest)
	}

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdown(server, service.Limiter(), cfg.Server.ShutdownTimeout)
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

type httpStopper interface {
	Shutdown(ctx context.Context) error
}

type parseDrainer interface {
	Status() core.ParseLimiterStatus
	WaitForDrain(ctx context.Context) error
}

// shutdown stops the HTTP server, then waits for in-flight parses. Both
// steps share one timeout.
func shutdown(server httpStopper, parses parseDrainer, timeout time.Duration) {
	slog.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if status := parses.Status(); status.Active > 0 {
		slog.Info("waiting for parses to complete", "active", status.Active)
		if err := parses.WaitForDrain(ctx); err != nil {
			slog.Warn("parses did not complete in time", "error", err)
		}
	}
}

func preload(service *core.Service, manifest string) {
	m, err := core.ReadPreloadManifest(manifest)
	if err != nil {
		slog.Warn("skipping preload", "error", err)
		return
	}

	loaded, err := service.Preload(context.Background(), m)
	for _, f := range loaded {
		slog.Debug("preloaded file", "file", f.Name, "path", f.Path)
	}
	if err != nil {
		slog.Warn("some preload files failed", "error", err)
	}
	slog.Info("preload complete", "loaded", len(loaded), "listed", len(m.Files))
}
