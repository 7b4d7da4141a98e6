package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BilyiPJATK/librarystore/catalog/postgresengine"
	"github.com/BilyiPJATK/librarystore/config"
	"github.com/BilyiPJATK/librarystore/httpapi"
	"github.com/BilyiPJATK/librarystore/service"
)

const shutdownGracePeriod = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := cfg.DB.NewPGXPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	store, err := postgresengine.NewStoreFromPGXPool(pool, postgresengine.WithLogger(logger))
	if err != nil {
		return err
	}

	svc := service.NewService(store, service.WithLogger(logger))

	serverOptions := []httpapi.ServerOption{
		httpapi.WithRequestTimeout(cfg.HTTP.RequestTimeout),
	}
	if cfg.HTTP.RateLimitEnabled {
		serverOptions = append(serverOptions, httpapi.WithRateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst))
	}

	api := httpapi.NewServer(logger, svc, serverOptions...)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("starting HTTP server", "addr", cfg.HTTP.Addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil

	case <-ctx.Done():
		logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()

		if err = httpServer.Shutdown(shutdownCtx); err != nil {
			_ = httpServer.Close()

			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		return nil
	}
}
