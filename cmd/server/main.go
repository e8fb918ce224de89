package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/bookimport/internal/application"
	"github.com/JonMunkholm/bookimport/internal/config"
	"github.com/JonMunkholm/bookimport/internal/logging"
	"github.com/JonMunkholm/bookimport/internal/web"
)

func main() {
	if n, err := config.LoadEnvFiles(".env", ".env.local"); err != nil {
		slog.Warn("failed to load .env files", "error", err)
	} else if n > 0 {
		slog.Info("loaded .env files", "count", n)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"catalog_url", cfg.Catalog.UploadURL,
		"max_concurrent_decodes", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	if !cfg.Import.RequireISBN {
		logger.Warn("bulk imports accept rows without a valid ISBN; set IMPORT_REQUIRE_ISBN=true to enforce it")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialise import components", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	sessions := web.NewSessions(cfg.Import.SessionTTL, app.NewPipeline)
	go sessions.Run(ctx, cfg.Import.SessionTTL/2)

	server := web.NewServer(cfg, web.Deps{
		Sessions: sessions,
		History:  app.History,
		Limiter:  app.Limiter,
		Metrics:  app.Metrics.Handler(),
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := app.Limiter.Status(); st.Active > 0 {
			logger.Info("waiting for decodes to complete", "active", st.Active)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	logger.Info("server stopped")
}
