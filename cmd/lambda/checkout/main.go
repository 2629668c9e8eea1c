package main

import (
	"context"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/app"
	"github.com/example/ksd-storefront/internal/config"
	"github.com/example/ksd-storefront/internal/infrastructure/lambda"
	"github.com/example/ksd-storefront/internal/logging"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		println("[Lambda Checkout] config:", err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		println("[Lambda Checkout] logger:", err.Error())
		os.Exit(1)
	}
	logger = logger.Named("lambda")

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	logger.Info("initialized", zap.String("cart_backend", cfg.CartBackend))
	awslambda.Start(lambda.Handler(a.Handler))
}
