package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/text-analyzer/internal/application/analysis"
	"github.com/bryanwahyu/text-analyzer/internal/infra/httpserver"
	"github.com/bryanwahyu/text-analyzer/internal/infra/persistence"
	"github.com/bryanwahyu/text-analyzer/internal/middleware"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), opts)
		},
	}
}

func runServer(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, os.Stdout)

	if err := cfg.Persistence.Validate(); err != nil {
		logger.Error().Err(err).Msg("persistence configuration is incomplete")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	provider := persistence.NewProvider(cfg.Persistence)
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Warn().Err(err).Msg("close store")
		}
	}()
	if err := provider.Warm(ctx); err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Persistence.DriverName(), err)
	}
	logger.Info().
		Str("driver", cfg.Persistence.DriverName()).
		Str("collection", cfg.Persistence.Collection).
		Msg("store ready")

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit.Capacity > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSecond)
		defer limiter.Stop()
	}

	handler := httpserver.NewRouter(appanalysis.NewService(provider), httpserver.Options{
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		APIKeys:     cfg.Server.APIKeys,
		RateLimiter: limiter,
		Health:      map[string]middleware.HealthChecker{"store": provider},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// graceful shutdown
	logger.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
