// Package app wires configuration into a ready-to-serve storefront handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/api"
	"github.com/example/ksd-storefront/internal/auth"
	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/config"
	"github.com/example/ksd-storefront/internal/domain/cart"
	"github.com/example/ksd-storefront/internal/domain/checkout"
	"github.com/example/ksd-storefront/internal/domain/contact"
	"github.com/example/ksd-storefront/internal/domain/events"
	"github.com/example/ksd-storefront/internal/email"
	"github.com/example/ksd-storefront/internal/infrastructure/kafka"
	"github.com/example/ksd-storefront/internal/infrastructure/store"
	"github.com/example/ksd-storefront/internal/payment/stripe"
)

// App owns the storefront handler and the connections behind it.
type App struct {
	Handler http.Handler
	Catalog *catalog.Catalog

	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	a := &App{}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat

	backend, err := a.openBackend(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher := a.openPublisher(cfg, logger)

	var provider checkout.PaymentProvider
	if cfg.StripeSecretKey != "" {
		provider = stripe.New(cfg.StripeSecretKey, logger)
	} else {
		logger.Warn("STRIPE_SECRET_KEY is not set, checkout will fail")
	}

	builder := checkout.NewBuilder(provider, checkout.Config{
		SecretConfigured:           cfg.StripeSecretKey != "",
		FreeShippingThresholdCents: cfg.FreeShippingThresholdCents,
		ShippingPriceID:            cfg.ShippingPriceID,
		PublicSiteURL:              cfg.PublicSiteURL,
		AllowedCountries:           cfg.AllowedShippingCountries,
	}, publisher, logger)

	secret := cfg.BagTokenSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("BAG_TOKEN_SECRET is not set, bags will not survive a restart")
	}
	tokens := auth.NewTokenService(secret, cfg.BagTokenTTL)

	bags := cart.NewService(backend, publisher, logger)
	var sender contact.Sender
	if cfg.ContactEmail != "" {
		sender = email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	} else {
		logger.Warn("CONTACT_EMAIL is not set, the contact form is disabled")
	}
	inquiries := contact.NewService(sender, cfg.ContactEmail, publisher, logger)

	handlers := api.NewHandlers(builder, bags, cat, inquiries, logger)
	a.Handler = api.NewRouter(handlers, tokens, logger)

	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Backend, error) {
	switch cfg.CartBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("bag storage: redis", zap.String("addr", cfg.RedisAddr))
		return store.NewRedisBackend(client, cfg.BagTokenTTL), nil

	case "postgres":
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := store.RunMigrations(db); err != nil {
			return nil, err
		}
		logger.Info("bag storage: postgres")
		return store.NewPostgresBackend(db), nil

	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
			}
		})
		logger.Info("bag storage: dynamodb", zap.String("table", cfg.DynamoTable))
		return store.NewDynamoBackend(client, cfg.DynamoTable, cfg.BagTokenTTL), nil

	default:
		b, err := store.NewFileBackend(cfg.CartFileDir)
		if err != nil {
			return nil, err
		}
		logger.Info("bag storage: files", zap.String("dir", cfg.CartFileDir))
		return b, nil
	}
}

func (a *App) openPublisher(cfg config.Config, logger *zap.Logger) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS is not set, storefront events are dropped")
		return events.NopPublisher{}
	}
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	a.closers = append(a.closers, producer.Close)
	logger.Info("publishing events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	return producer
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
