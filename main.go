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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/yourfin-enon/coinspaid-connector/internal/api"
	"github.com/yourfin-enon/coinspaid-connector/internal/auth"
	"github.com/yourfin-enon/coinspaid-connector/internal/callbacks"
	"github.com/yourfin-enon/coinspaid-connector/internal/config"
	"github.com/yourfin-enon/coinspaid-connector/internal/control"
	"github.com/yourfin-enon/coinspaid-connector/internal/database"
	"github.com/yourfin-enon/coinspaid-connector/internal/limits"
	"github.com/yourfin-enon/coinspaid-connector/pkg/coinspaid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("connector stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := database.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}

	ctrl := control.New(db.DB, logger)
	if err := ctrl.LoadState(context.Background()); err != nil {
		return err
	}
	if !ctrl.IsWithdrawalsEnabled() {
		logger.Warn("withdrawals are suspended", "reason", ctrl.Status().SuspendedReason)
	}

	withdrawalLimits, err := limits.New(cfg.Limits.Withdrawals)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := coinspaid.NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return err
	}

	client, err := coinspaid.NewClient(cfg.Gateway.ClientConfig(),
		coinspaid.WithLogger(logger.With("component", "coinspaid")),
		coinspaid.WithMetrics(metrics))
	if err != nil {
		return err
	}

	signer, err := coinspaid.NewSigner(cfg.Gateway.PrivateKey)
	if err != nil {
		return err
	}

	handler := api.New(api.Deps{
		Gateway:  client,
		Signer:   signer,
		Store:    callbacks.New(db.DB),
		Auth:     auth.New(&cfg.Auth),
		Control:  ctrl,
		Limits:   withdrawalLimits,
		Hub:      api.NewHub(logger),
		Gatherer: registry,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler.SetupRouter(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting connector",
			"port", cfg.Server.Port,
			"environment", cfg.Gateway.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
