package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/config"
	"github.com/example/ksd-storefront/internal/email"
	"github.com/example/ksd-storefront/internal/infrastructure/kafka"
	"github.com/example/ksd-storefront/internal/logging"
	"github.com/example/ksd-storefront/internal/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		println("[Notifier] config:", err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		println("[Notifier] logger:", err.Error())
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS is required for the notifier")
	}
	if cfg.ShopNotifyEmail == "" {
		logger.Warn("SHOP_NOTIFY_EMAIL is not set, notifications will be skipped")
	}

	logger.Info("KSD checkout notifier starting",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort),
		zap.String("from", cfg.SMTPFrom))

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, cat, cfg.ShopNotifyEmail, cfg.ShippingPriceID, logger)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, logger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("listening for checkout events")
	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
