// Package main provides the admin console entry point.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lllypuk/imghost/internal/admin/apiclient"
	"github.com/lllypuk/imghost/internal/admin/console"
	"github.com/lllypuk/imghost/internal/admin/userlist"
	"github.com/lllypuk/imghost/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		//nolint:sloglint // No context available before logger setup
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// stdout belongs to the console, logs go to stderr
	logger := setupLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runErr := run(ctx, cfg, os.Stdin, os.Stdout, logger); runErr != nil {
		logger.Error("admin console failed", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger) error {
	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.Admin.APIURL,
		Timeout: cfg.Admin.RequestTimeout,
	})

	view := console.NewView(in, out, console.WithLogger(logger))
	controller := userlist.NewController(client, client, view, view,
		userlist.WithLogger(logger),
		userlist.WithDebounceWindow(cfg.Admin.DebounceWindow),
		userlist.WithStartingPageSize(cfg.Admin.PageSize),
	)

	logger.InfoContext(ctx, "admin console connecting", slog.String("api_url", cfg.Admin.APIURL))

	controller.Activate(ctx)
	defer controller.Deactivate()

	if err := view.Run(ctx, controller); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// setupLogger creates a text or JSON logger writing to w.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}

	var handler slog.Handler
	switch cfg.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
