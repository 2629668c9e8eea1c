package checkout

import (
	"context"

	"github.com/example/ksd-storefront/internal/domain/cart"
)

const ModePayment = "payment"

// RequestItem is one (price reference, quantity) pair sent by the client.
type RequestItem struct {
	PriceReference string
	Quantity       cart.Quantity
}

// Request is a checkout attempt after the body has been decoded.
type Request struct {
	Items          []RequestItem
	Origin         string // Origin header
	Host           string // Host header
	IdempotencyKey string
}

type LineItem struct {
	PriceReference string `json:"price_reference"`
	Quantity       int64  `json:"quantity"`
}

// Price is the provider's authoritative view of a price reference.
type Price struct {
	Reference  string
	UnitAmount int64 // minor units
	Currency   string
	// Fixed is false for recurring, tiered or customer-chosen prices.
	Fixed bool
}

type SessionParams struct {
	Mode             string
	LineItems        []LineItem
	SuccessURL       string
	CancelURL        string
	AllowedCountries []string
	IdempotencyKey   string
}

type Session struct {
	ID  string
	URL string
}

// PaymentProvider is the hosted payment service.
type PaymentProvider interface {
	// GetPrice returns ErrPriceNotFound for unknown references.
	GetPrice(ctx context.Context, reference string) (*Price, error)
	CreateSession(ctx context.Context, params SessionParams) (*Session, error)
}

type Config struct {
	SecretConfigured           bool
	FreeShippingThresholdCents int64
	ShippingPriceID            string
	PublicSiteURL              string
	AllowedCountries           []string
	// MaxParallelLookups bounds concurrent price lookups; zero means 8.
	MaxParallelLookups int
}

type Result struct {
	URL             string
	SessionID       string
	SubtotalCents   int64
	ShippingApplied bool
	LineItems       []LineItem
	SuccessURL      string
	CancelURL       string
}
