package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docforge/internal/api"
	"github.com/dgallion1/docforge/internal/assets"
	"github.com/dgallion1/docforge/internal/compiler"
	"github.com/dgallion1/docforge/internal/config"
	"github.com/dgallion1/docforge/internal/pathstore"
	"github.com/dgallion1/docforge/internal/pipeline"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Error ignored: an invalid GOMAXPROCS env leaves the runtime default.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		log.Info(fmt.Sprintf(format, args...))
	}))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	ps := pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
	records := pathstore.NewRecords(ps, cfg.PathstorePrefix)

	resolver := assets.NewResolver(assets.Options{
		Timeout:  cfg.FetchTimeout,
		MaxBytes: cfg.MaxAssetBytes,
		BaseDir:  cfg.AssetDir,
	}, log)

	comp := compiler.New(resolver, compiler.Options{
		MaxDepth:           cfg.MaxContentDepth,
		Concurrency:        cfg.MaxConcurrentFetch,
		HostOrganization:   cfg.HostOrganization,
		DefaultCategory:    cfg.DefaultCategory,
		RequiredCategories: cfg.RequiredCategories,
		LogoDir:            cfg.AssetDir,
	}, log)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, comp, records, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, comp, records, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", "error", err)
		}

		ps.Close()
	}()

	log.Info("starting docforge", "port", cfg.Port, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
