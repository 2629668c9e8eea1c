package mocks

import (
	"context"
	"sync"

	"github.com/example/ksd-storefront/internal/domain/checkout"
)

// MockProvider is an in-memory checkout.PaymentProvider.
type MockProvider struct {
	mu     sync.Mutex
	prices map[string]*checkout.Price

	GetPriceCalls      []string
	CreateSessionCalls []checkout.SessionParams

	GetPriceErr      error
	CreateSessionErr error
	// GetPriceCallback, when set, replaces the default lookup.
	GetPriceCallback func(ctx context.Context, ref string) (*checkout.Price, error)
	SessionURL       string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		prices:     make(map[string]*checkout.Price),
		SessionURL: "https://checkout.stripe.com/c/pay/cs_test_123",
	}
}

// AddFixedPrice registers a one-time price in minor units.
func (m *MockProvider) AddFixedPrice(ref string, unitAmount int64) {
	m.AddPrice(&checkout.Price{Reference: ref, UnitAmount: unitAmount, Currency: "usd", Fixed: true})
}

func (m *MockProvider) AddPrice(p *checkout.Price) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[p.Reference] = p
}

func (m *MockProvider) GetPrice(ctx context.Context, ref string) (*checkout.Price, error) {
	m.mu.Lock()
	m.GetPriceCalls = append(m.GetPriceCalls, ref)
	cb := m.GetPriceCallback
	p, ok := m.prices[ref]
	getErr := m.GetPriceErr
	m.mu.Unlock()

	if cb != nil {
		return cb(ctx, ref)
	}
	if getErr != nil {
		return nil, getErr
	}
	if !ok {
		return nil, checkout.ErrPriceNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProvider) CreateSession(ctx context.Context, params checkout.SessionParams) (*checkout.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateSessionCalls = append(m.CreateSessionCalls, params)
	if m.CreateSessionErr != nil {
		return nil, m.CreateSessionErr
	}
	return &checkout.Session{ID: "cs_test_123", URL: m.SessionURL}, nil
}

// PriceLookups returns how many GetPrice calls were made.
func (m *MockProvider) PriceLookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GetPriceCalls)
}

// Sessions returns a snapshot of recorded CreateSession params.
func (m *MockProvider) Sessions() []checkout.SessionParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]checkout.SessionParams, len(m.CreateSessionCalls))
	copy(out, m.CreateSessionCalls)
	return out
}

// Reset clears recorded calls and injected errors but keeps prices.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPriceCalls = nil
	m.CreateSessionCalls = nil
	m.GetPriceErr = nil
	m.CreateSessionErr = nil
	m.GetPriceCallback = nil
}
