// Command refresh runs one ingestion pass and prints the result as JSON.
// It takes the server's configuration flags plus --user.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/curator/app/bootstrap"
	"github.com/lysyi3m/curator/app/cfg"
	"github.com/lysyi3m/curator/app/ingest"
)

type refreshOptions struct {
	User string `long:"user" env:"REFRESH_USER" description:"Only refresh this user's feeds (default: all users)"`
}

func main() {
	var opts refreshOptions

	appCfg, err := cfg.LoadArgsWithGroup(os.Args[1:], "Refresh Options", &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	bootstrap.SetupLogger(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, appCfg, opts); err != nil {
		slog.Error("Refresh failed", "error", err)
		if writeErr := writeResult(os.Stdout, map[string]any{"success": false, "error": err.Error()}); writeErr != nil {
			slog.Error("Refresh result not written", "error", writeErr)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, appCfg *cfg.Cfg, opts refreshOptions) error {
	app, err := bootstrap.New(ctx, appCfg)
	if err != nil {
		return err
	}
	defer app.Close()

	var result *ingest.Result
	if opts.User != "" {
		result, err = app.Orchestrator.RunForUser(ctx, opts.User)
	} else {
		result, err = app.Orchestrator.RunAll(ctx)
	}
	if err != nil {
		return err
	}

	return writeResult(os.Stdout, result)
}

func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
