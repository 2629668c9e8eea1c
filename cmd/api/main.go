package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/app"
	"github.com/example/ksd-storefront/internal/config"
	"github.com/example/ksd-storefront/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		println("[API] config:", err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		println("[API] logger:", err.Error())
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("KSD storefront starting",
		zap.String("env", cfg.AppEnv),
		zap.String("cart_backend", cfg.CartBackend),
		zap.Int64("free_shipping_threshold_cents", cfg.FreeShippingThresholdCents),
		zap.Strings("shipping_countries", cfg.AllowedShippingCountries))

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("error while closing connections", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server started", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
