// Package stripe implements checkout.PaymentProvider on the Stripe API.
package stripe

import (
	"context"
	"errors"

	stripeapi "github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/domain/checkout"
)

// Provider talks to Stripe through a client.API so tests can point it
// at a fake backend.
type Provider struct {
	api    *client.API
	logger *zap.Logger
}

// New returns a Provider using the default Stripe backends.
func New(secretKey string, logger *zap.Logger) *Provider {
	return NewProvider(client.New(secretKey, nil), logger)
}

func NewProvider(api *client.API, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{api: api, logger: logger.Named("stripe")}
}

func (p *Provider) GetPrice(ctx context.Context, reference string) (*checkout.Price, error) {
	params := &stripeapi.PriceParams{}
	params.Context = ctx

	price, err := p.api.Prices.Get(reference, params)
	if err != nil {
		var se *stripeapi.Error
		if errors.As(err, &se) && se.Code == stripeapi.ErrorCodeResourceMissing {
			return nil, checkout.ErrPriceNotFound
		}
		p.logger.Warn("price lookup failed", zap.String("price_reference", reference), zap.Error(err))
		return nil, providerError("get price", err)
	}

	return &checkout.Price{
		Reference:  price.ID,
		UnitAmount: price.UnitAmount,
		Currency:   string(price.Currency),
		Fixed:      isFixed(price),
	}, nil
}

func (p *Provider) CreateSession(ctx context.Context, sp checkout.SessionParams) (*checkout.Session, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(sp.Mode),
		SuccessURL: stripeapi.String(sp.SuccessURL),
		CancelURL:  stripeapi.String(sp.CancelURL),
	}
	for _, li := range sp.LineItems {
		params.LineItems = append(params.LineItems, &stripeapi.CheckoutSessionLineItemParams{
			Price:    stripeapi.String(li.PriceReference),
			Quantity: stripeapi.Int64(li.Quantity),
		})
	}
	if len(sp.AllowedCountries) > 0 {
		params.ShippingAddressCollection = &stripeapi.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripeapi.StringSlice(sp.AllowedCountries),
		}
	}
	if sp.IdempotencyKey != "" {
		params.SetIdempotencyKey(sp.IdempotencyKey)
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		p.logger.Warn("checkout session creation failed", zap.Error(err))
		return nil, providerError("create session", err)
	}
	return &checkout.Session{ID: s.ID, URL: s.URL}, nil
}

// isFixed reports whether a price has a single one-time unit amount.
func isFixed(p *stripeapi.Price) bool {
	return p.Type == stripeapi.PriceTypeOneTime &&
		p.BillingScheme == stripeapi.PriceBillingSchemePerUnit &&
		p.CustomUnitAmount == nil
}

func providerError(op string, err error) error {
	var se *stripeapi.Error
	if errors.As(err, &se) {
		return &checkout.ProviderError{Op: op, Message: se.Msg, Err: err}
	}
	return &checkout.ProviderError{Op: op, Err: err}
}
