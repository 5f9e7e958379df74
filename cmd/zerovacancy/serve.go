package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zerovacancy/zerovacancy/internal/api"
	"github.com/zerovacancy/zerovacancy/internal/metrics"
	"github.com/zerovacancy/zerovacancy/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the marketplace API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	log := rt.log
	defer log.Sync()

	ctx := context.Background()
	cfg := rt.cfg

	store, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	deps := api.Dependencies{Store: store}

	var metricsPath string
	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.NewRegistry()
		metricsPath = cfg.Metrics.Path
	}

	// Without a secret the write routes stay open, as in local development.
	if cfg.Session.Secret != "" {
		tokens, err := session.NewTokenIssuer(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)
		if err != nil {
			return err
		}
		deps.Auth = session.NewProvider(session.NewMemoryRepository(), tokens, log)
	} else {
		log.Warn("session secret not set, bookings and applications are unauthenticated")
	}

	log.Info("starting ZeroVacancy server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	server, err := api.NewServer(api.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		MetricsPath:  metricsPath,
	}, deps, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down ZeroVacancy server")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
