package checkout_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/ksd-storefront/internal/domain/cart"
	"github.com/example/ksd-storefront/internal/domain/checkout"
	"github.com/example/ksd-storefront/internal/domain/checkout/mocks"
	"github.com/example/ksd-storefront/internal/domain/events"
	kafkamocks "github.com/example/ksd-storefront/internal/infrastructure/kafka/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	threshold   = int64(12500)
	shippingRef = "price_shipping"
)

func testConfig() checkout.Config {
	return checkout.Config{
		SecretConfigured:           true,
		FreeShippingThresholdCents: threshold,
		ShippingPriceID:            shippingRef,
		AllowedCountries:           []string{"US"},
	}
}

func newTestBuilder() (*checkout.Builder, *mocks.MockProvider, *kafkamocks.MockProducer) {
	provider := mocks.NewMockProvider()
	producer := kafkamocks.NewMockProducer()
	return checkout.NewBuilder(provider, testConfig(), producer, nil), provider, producer
}

func item(ref string, qty int) checkout.RequestItem {
	return checkout.RequestItem{PriceReference: ref, Quantity: cart.Quantity(qty)}
}

func request(items ...checkout.RequestItem) checkout.Request {
	return checkout.Request{Items: items, Origin: "https://ksd.example.com"}
}

// ============================================
// Validation order
// ============================================

func TestBuilder_MissingCredential(t *testing.T) {
	provider := mocks.NewMockProvider()
	cfg := testConfig()
	cfg.SecretConfigured = false
	b := checkout.NewBuilder(provider, cfg, nil, nil)

	_, err := b.Create(context.Background(), checkout.Request{})

	assert.ErrorIs(t, err, checkout.ErrMissingCredential)
	assert.True(t, checkout.IsConfigError(err))
	assert.Zero(t, provider.PriceLookups())
}

func TestBuilder_CreateFromJSON_CredentialCheckedBeforeBody(t *testing.T) {
	cfg := testConfig()
	cfg.SecretConfigured = false
	b := checkout.NewBuilder(mocks.NewMockProvider(), cfg, nil, nil)

	_, err := b.CreateFromJSON(context.Background(), []byte(`garbage`), checkout.Request{})

	assert.ErrorIs(t, err, checkout.ErrMissingCredential)
}

func TestBuilder_NoItems(t *testing.T) {
	b, provider, _ := newTestBuilder()

	_, err := b.Create(context.Background(), request())

	assert.ErrorIs(t, err, checkout.ErrNoItems)
	assert.True(t, checkout.IsInputError(err))
	assert.Zero(t, provider.PriceLookups())
}

func TestBuilder_ItemWithoutReference(t *testing.T) {
	b, provider, _ := newTestBuilder()

	_, err := b.Create(context.Background(), request(item("price_a", 1), item("", 1)))

	require.Error(t, err)
	assert.True(t, checkout.IsInputError(err))
	assert.Contains(t, err.Error(), "Item 2")
	assert.Zero(t, provider.PriceLookups())
}

func TestBuilder_UnknownPrice(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 5000)

	_, err := b.Create(context.Background(), request(item("price_a", 1), item("price_missing", 1)))

	var priceErr *checkout.PriceError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, "price_missing", priceErr.Reference)
	assert.Equal(t, "Invalid price id: price_missing", err.Error())
	assert.True(t, checkout.IsInputError(err))
	assert.Empty(t, provider.Sessions(), "no session may be created")
}

func TestBuilder_FirstUnknownInRequestOrder(t *testing.T) {
	b, _, _ := newTestBuilder()

	_, err := b.Create(context.Background(), request(item("price_x", 1), item("price_y", 1)))

	var priceErr *checkout.PriceError
	require.ErrorAs(t, err, &priceErr)
	assert.Equal(t, "price_x", priceErr.Reference)
}

func TestBuilder_NonFixedPrice(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddPrice(&checkout.Price{Reference: "price_sub", UnitAmount: 900, Fixed: false})

	_, err := b.Create(context.Background(), request(item("price_sub", 1)))

	assert.EqualError(t, err, "Price has no unit_amount: price_sub")
	assert.True(t, checkout.IsInputError(err))
	assert.Empty(t, provider.Sessions())
}

func TestBuilder_UnknownReportedBeforeNonFixed(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddPrice(&checkout.Price{Reference: "price_sub", Fixed: false})

	_, err := b.Create(context.Background(), request(item("price_sub", 1), item("price_missing", 1)))

	assert.EqualError(t, err, "Price has no unit_amount: price_sub")
}

// ============================================
// Price lookups
// ============================================

func TestBuilder_DeduplicatesLookups(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 3000)
	provider.AddFixedPrice("price_b", 4000)

	res, err := b.Create(context.Background(), request(item("price_a", 1), item("price_a", 2), item("price_b", 1)))

	require.NoError(t, err)
	assert.Equal(t, 2, provider.PriceLookups())
	assert.Equal(t, int64(3000*3+4000), res.SubtotalCents)
	assert.ElementsMatch(t, []string{"price_a", "price_b"}, provider.GetPriceCalls)
}

func TestBuilder_LookupsRunInParallel(t *testing.T) {
	b, provider, _ := newTestBuilder()
	var inFlight, peak int32
	release := make(chan struct{})
	provider.GetPriceCallback = func(ctx context.Context, ref string) (*checkout.Price, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		if n == 3 {
			close(release)
		}
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		atomic.AddInt32(&inFlight, -1)
		return &checkout.Price{Reference: ref, UnitAmount: 5000, Fixed: true}, nil
	}

	_, err := b.Create(context.Background(), request(item("price_a", 1), item("price_b", 1), item("price_c", 1)))

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&peak))
}

func TestBuilder_LookupFailureFailsRequest(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.GetPriceErr = &checkout.ProviderError{Op: "get price", Message: "Invalid API Key provided: sk_test_***"}

	_, err := b.Create(context.Background(), request(item("price_a", 1)))

	require.Error(t, err)
	assert.False(t, checkout.IsInputError(err))
	assert.False(t, checkout.IsConfigError(err))
	assert.Equal(t, "Invalid API Key provided: sk_test_***", err.Error())
	assert.Empty(t, provider.Sessions())
}

func TestBuilder_ClientCancellationDoesNotAbortProvider(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 20000)
	ctx, cancel := context.WithCancel(context.Background())
	provider.GetPriceCallback = func(pctx context.Context, ref string) (*checkout.Price, error) {
		cancel()
		if pctx.Err() != nil {
			return nil, pctx.Err()
		}
		return &checkout.Price{Reference: ref, UnitAmount: 20000, Fixed: true}, nil
	}

	res, err := b.Create(ctx, request(item("price_a", 1)))

	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)
}

// ============================================
// Quantities and shipping
// ============================================

func TestBuilder_NormalizesQuantities(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 100)
	provider.AddFixedPrice("price_b", 100)
	provider.AddFixedPrice("price_c", 100)

	res, err := b.Create(context.Background(), request(item("price_a", 0), item("price_b", 500), item("price_c", -2)))

	require.NoError(t, err)
	assert.Equal(t, []checkout.LineItem{
		{PriceReference: "price_a", Quantity: 1},
		{PriceReference: "price_b", Quantity: 99},
		{PriceReference: "price_c", Quantity: 1},
		{PriceReference: shippingRef, Quantity: 1},
	}, res.LineItems)
	assert.Equal(t, int64(100*101), res.SubtotalCents)
}

func TestBuilder_ShippingRule(t *testing.T) {
	tests := []struct {
		name         string
		unitAmount   int64
		qty          int
		wantShipping bool
	}{
		{"one cent below threshold", threshold - 1, 1, true},
		{"exactly at threshold", threshold, 1, false},
		{"above threshold", threshold + 1, 1, false},
		{"reached by quantity", 6250, 2, false},
		{"small order", 4500, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, provider, _ := newTestBuilder()
			provider.AddFixedPrice("price_a", tt.unitAmount)

			res, err := b.Create(context.Background(), request(item("price_a", tt.qty)))

			require.NoError(t, err)
			assert.Equal(t, tt.wantShipping, res.ShippingApplied)

			params := provider.Sessions()[0]
			shippingLines := 0
			for _, li := range params.LineItems {
				if li.PriceReference == shippingRef {
					shippingLines++
					assert.Equal(t, int64(1), li.Quantity)
				}
			}
			if tt.wantShipping {
				assert.Equal(t, 1, shippingLines)
				assert.Len(t, params.LineItems, 2)
			} else {
				assert.Zero(t, shippingLines)
				assert.Len(t, params.LineItems, 1)
			}
		})
	}
}

func TestBuilder_ShippingAddedOnceForLargeCart(t *testing.T) {
	b, provider, _ := newTestBuilder()
	var items []checkout.RequestItem
	for _, ref := range []string{"p1", "p2", "p3", "p4", "p5"} {
		provider.AddFixedPrice(ref, 100)
		items = append(items, item(ref, 1))
	}

	res, err := b.Create(context.Background(), request(items...))

	require.NoError(t, err)
	assert.Len(t, res.LineItems, 6)
	assert.Equal(t, shippingRef, res.LineItems[5].PriceReference)
}

// ============================================
// Session creation
// ============================================

func TestBuilder_SessionParams(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 12800)

	req := request(item("price_a", 1))
	req.IdempotencyKey = "idem-1"
	res, err := b.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", res.URL)

	sessions := provider.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, checkout.SessionParams{
		Mode:             checkout.ModePayment,
		LineItems:        []checkout.LineItem{{PriceReference: "price_a", Quantity: 1}},
		SuccessURL:       "https://ksd.example.com/bag?success=1",
		CancelURL:        "https://ksd.example.com/bag?canceled=1",
		AllowedCountries: []string{"US"},
		IdempotencyKey:   "idem-1",
	}, sessions[0])
}

func TestBuilder_OriginFromHost(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 12800)

	res, err := b.Create(context.Background(), checkout.Request{
		Items: []checkout.RequestItem{item("price_a", 1)},
		Host:  "shop.example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/bag?success=1", res.SuccessURL)
	assert.Equal(t, "https://shop.example.com/bag?canceled=1", provider.Sessions()[0].CancelURL)
}

func TestBuilder_OriginUnresolved(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 12800)

	_, err := b.Create(context.Background(), checkout.Request{Items: []checkout.RequestItem{item("price_a", 1)}})

	assert.ErrorIs(t, err, checkout.ErrOriginUnresolved)
	assert.True(t, checkout.IsConfigError(err))
	assert.Empty(t, provider.Sessions())
}

func TestBuilder_SessionFailure(t *testing.T) {
	b, provider, producer := newTestBuilder()
	provider.AddFixedPrice("price_a", 12800)
	provider.CreateSessionErr = errors.New("No such price: 'price_shipping'")

	_, err := b.Create(context.Background(), request(item("price_a", 1)))

	assert.EqualError(t, err, "No such price: 'price_shipping'")
	assert.Empty(t, producer.Calls())
}

func TestBuilder_SessionWithoutURL(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 12800)
	provider.SessionURL = ""

	_, err := b.Create(context.Background(), request(item("price_a", 1)))

	var provErr *checkout.ProviderError
	assert.ErrorAs(t, err, &provErr)
}

func TestBuilder_RetriesCreateDistinctSessions(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 12800)

	_, err := b.Create(context.Background(), request(item("price_a", 1)))
	require.NoError(t, err)
	_, err = b.Create(context.Background(), request(item("price_a", 1)))
	require.NoError(t, err)

	assert.Len(t, provider.Sessions(), 2)
}

// ============================================
// Events
// ============================================

func TestBuilder_PublishesSessionCreated(t *testing.T) {
	b, provider, producer := newTestBuilder()
	provider.AddFixedPrice("price_a", 4500)

	_, err := b.Create(context.Background(), request(item("price_a", 2)))
	require.NoError(t, err)

	calls := producer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "cs_test_123", calls[0].Key)

	evt := calls[0].Event.(events.Event)
	assert.Equal(t, checkout.EventSessionCreated, evt.EventType)

	var payload checkout.CheckoutSessionCreated
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	assert.Equal(t, int64(9000), payload.SubtotalCents)
	assert.True(t, payload.ShippingApplied)
	assert.Equal(t, "https://ksd.example.com", payload.Origin)
	assert.Len(t, payload.LineItems, 2)
}

func TestBuilder_PublishFailureIgnored(t *testing.T) {
	b, provider, producer := newTestBuilder()
	provider.AddFixedPrice("price_a", 4500)
	producer.PublishErr = errors.New("broker down")

	res, err := b.Create(context.Background(), request(item("price_a", 1)))

	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)
}

func TestBuilder_CreateFromJSON(t *testing.T) {
	b, provider, _ := newTestBuilder()
	provider.AddFixedPrice("price_a", 12500)

	body := []byte(`{"items":[{"stripePriceId":"price_a","quantity":"1"}]}`)
	res, err := b.CreateFromJSON(context.Background(), body, checkout.Request{Origin: "https://ksd.example.com"})

	require.NoError(t, err)
	assert.False(t, res.ShippingApplied)
}
