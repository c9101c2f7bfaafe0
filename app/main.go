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

	"github.com/lysyi3m/curator/app/api"
	"github.com/lysyi3m/curator/app/bootstrap"
	"github.com/lysyi3m/curator/app/cfg"
	"github.com/lysyi3m/curator/app/tasks"
)

const schedulerWorkers = 2

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	bootstrap.SetupLogger(appCfg.Debug)

	slog.Info("Starting Curator server", "version", appCfg.Version, "port", appCfg.Port)

	ctx := context.Background()

	app, err := bootstrap.New(ctx, appCfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	scheduler, err := tasks.NewScheduler(app.Orchestrator, app.FeedRepo, app.Loader, appCfg.RefreshCron, schedulerWorkers)
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(app.FeedRepo, app.ArticleRepo, app.Orchestrator, scheduler, app.Seen)
	server := api.NewServer(handler, appCfg.APIAccessKey, appCfg.CronSecret)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Curator server shutdown complete")
}
