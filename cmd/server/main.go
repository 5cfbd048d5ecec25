package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/mindtab/mindtab/internal/app"
	"github.com/mindtab/mindtab/internal/config"
	"github.com/mindtab/mindtab/internal/logger"
	"github.com/mindtab/mindtab/internal/routes"
)

const cleanupInterval = time.Hour

func main() {
	cfg := config.Load()

	flush := logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)
	defer flush()

	err := run(cfg)
	if err != nil {
		slog.Error("server failed", "error", err)
		flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	app, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go cleanupLoop(ctx, app)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// cleanupLoop removes used or expired magic link tokens and expired
// extension sessions, once at startup and then hourly.
func cleanupLoop(ctx context.Context, app *app.App) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		tokens, err := app.TokenCleaner.CleanupExpired(24 * time.Hour)
		if err != nil {
			slog.Warn("token cleanup failed", "error", err)
		}
		sessions, err := app.SessionService.CleanupExpired()
		if err != nil {
			slog.Warn("session cleanup failed", "error", err)
		}
		if tokens > 0 || sessions > 0 {
			slog.Info("cleanup done", "tokens", tokens, "sessions", sessions)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
