// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MindSentry Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindsentry/identity/internal/auth"
	authpg "github.com/mindsentry/identity/internal/auth/postgres"
	"github.com/mindsentry/identity/internal/config"
	"github.com/mindsentry/identity/internal/httpapi"
	"github.com/mindsentry/identity/internal/logging"
	"github.com/mindsentry/identity/internal/observability"
	"github.com/mindsentry/identity/internal/store"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the identity API server",
		Long: `Start the identity API server: auth endpoints on the main listener,
metrics and health probes on the observability listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	// Flag names match the koanf config keys so posflag can overlay them.
	cmd.Flags().String("http_addr", config.DefaultHTTPAddr, "API listen address")
	cmd.Flags().String("metrics_addr", config.DefaultMetricsAddr, "metrics/health listen address")
	cmd.Flags().String("log_format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().Int("token_ttl_minutes", config.DefaultTokenTTLMinutes, "bearer token lifetime in minutes")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("identity", version, cfg.LogFormat)

	slog.Info("starting identity service",
		"http_addr", cfg.HTTPAddr,
		"metrics_addr", cfg.MetricsAddr,
		"token_ttl", cfg.TokenTTL().String(),
	)

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("connected to database")

	issuer, err := auth.NewJWTIssuer([]byte(cfg.SigningSecret), cfg.TokenTTL())
	if err != nil {
		return err
	}

	accounts := authpg.NewAccountRepository(pool)
	svc, err := auth.NewService(accounts, auth.NewArgon2idHasher(), issuer)
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.MetricsAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(svc, slog.Default(), obsServer.Metrics())
	apiServer := httpapi.NewServer(cfg.HTTPAddr, handler.Routes())
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obsServer.Stop(stopCtx)
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case err = <-apiErrCh:
		slog.Error("api server failed", "error", err)
	case err = <-obsErrCh:
		slog.Error("observability server failed", "error", err)
	case <-ctx.Done():
		slog.Info("shutting down", "reason", "context canceled")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if stopErr := apiServer.Stop(stopCtx); stopErr != nil && err == nil {
		err = stopErr
	}
	if stopErr := obsServer.Stop(stopCtx); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}
