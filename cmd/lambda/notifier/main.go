package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/config"
	"github.com/example/ksd-storefront/internal/email"
	"github.com/example/ksd-storefront/internal/logging"
	"github.com/example/ksd-storefront/internal/notification"
)

var (
	notificationHandler *notification.Handler
	logger              *zap.Logger
)

func init() {
	cfg, err := config.FromEnv()
	if err != nil {
		println("[Lambda Notifier] config:", err.Error())
		os.Exit(1)
	}

	logger, err = logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		println("[Lambda Notifier] logger:", err.Error())
		os.Exit(1)
	}
	logger = logger.Named("lambda-notifier")

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	notificationHandler = notification.NewHandler(emailSvc, cat, cfg.ShopNotifyEmail, cfg.ShippingPriceID, logger)

	logger.Info("initialized", zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort))
}

// handler consumes an MSK batch. A failed record fails the batch so the
// event source retries it.
func handler(ctx context.Context, event events.KafkaEvent) error {
	total, failed := 0, 0
	for partition, records := range event.Records {
		for _, record := range records {
			total++

			key, err := base64.StdEncoding.DecodeString(record.Key)
			if err != nil {
				key = nil
			}
			value, err := base64.StdEncoding.DecodeString(record.Value)
			if err != nil {
				logger.Error("skipping undecodable record", zap.String("partition", partition), zap.Int64("offset", record.Offset), zap.Error(err))
				continue
			}

			if err := notificationHandler.HandleEvent(ctx, key, value); err != nil {
				logger.Error("failed to process record", zap.String("partition", partition), zap.Int64("offset", record.Offset), zap.Error(err))
				failed++
			}
		}
	}

	logger.Info("batch processed", zap.Int("records", total), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, total)
	}
	return nil
}

func main() {
	lambda.Start(handler)
}
