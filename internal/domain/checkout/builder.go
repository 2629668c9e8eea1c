package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/ksd-storefront/internal/domain/events"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultParallelLookups = 8

// Builder turns client (price reference, quantity) pairs into a hosted
// checkout session. Prices always come from the provider.
type Builder struct {
	provider  PaymentProvider
	cfg       Config
	publisher events.Publisher
	logger    *zap.Logger
}

func NewBuilder(provider PaymentProvider, cfg Config, publisher events.Publisher, logger *zap.Logger) *Builder {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxParallelLookups <= 0 {
		cfg.MaxParallelLookups = defaultParallelLookups
	}
	return &Builder{
		provider:  provider,
		cfg:       cfg,
		publisher: publisher,
		logger:    logger.Named("checkout"),
	}
}

// Configured returns ErrMissingCredential when no provider secret is set.
func (b *Builder) Configured() error {
	if !b.cfg.SecretConfigured || b.provider == nil {
		return ErrMissingCredential
	}
	return nil
}

// CreateFromJSON decodes a raw request body and creates a session.
func (b *Builder) CreateFromJSON(ctx context.Context, body []byte, req Request) (*Result, error) {
	if err := b.Configured(); err != nil {
		return nil, err
	}
	items, err := DecodeItems(body)
	if err != nil {
		return nil, err
	}
	req.Items = items
	return b.Create(ctx, req)
}

// Create validates req, prices it through the provider and creates exactly
// one payment session. Nothing is created when any step fails.
func (b *Builder) Create(ctx context.Context, req Request) (*Result, error) {
	if err := b.Configured(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrNoItems
	}

	lineItems := make([]LineItem, len(req.Items))
	for i, it := range req.Items {
		if it.PriceReference == "" {
			return nil, &InputError{Message: fmt.Sprintf("Item %d has no price id.", i+1)}
		}
		lineItems[i] = LineItem{
			PriceReference: it.PriceReference,
			Quantity:       int64(it.Quantity.Int()),
		}
	}

	// Provider calls are not abandoned when the client goes away.
	providerCtx := context.WithoutCancel(ctx)

	prices, err := b.lookupPrices(providerCtx, uniqueReferences(lineItems))
	if err != nil {
		return nil, err
	}

	var subtotal int64
	for _, li := range lineItems {
		p, ok := prices[li.PriceReference]
		if !ok {
			return nil, &PriceError{Reference: li.PriceReference, Reason: ReasonInvalidPrice}
		}
		if !p.Fixed {
			return nil, &PriceError{Reference: li.PriceReference, Reason: ReasonNotFixed}
		}
		subtotal += p.UnitAmount * li.Quantity
	}

	shipping := b.ShippingApplies(subtotal)
	if shipping {
		lineItems = append(lineItems, LineItem{PriceReference: b.cfg.ShippingPriceID, Quantity: 1})
	}

	origin, err := ResolveOrigin(req.Origin, req.Host, b.cfg.PublicSiteURL)
	if err != nil {
		return nil, err
	}
	successURL, cancelURL := RedirectURLs(origin)

	session, err := b.provider.CreateSession(providerCtx, SessionParams{
		Mode:             ModePayment,
		LineItems:        lineItems,
		SuccessURL:       successURL,
		CancelURL:        cancelURL,
		AllowedCountries: b.cfg.AllowedCountries,
		IdempotencyKey:   req.IdempotencyKey,
	})
	if err != nil {
		b.logger.Error("create session failed", zap.Error(err))
		return nil, err
	}
	if session == nil || session.URL == "" {
		return nil, &ProviderError{Op: "create session", Message: "Checkout session has no URL."}
	}

	result := &Result{
		URL:             session.URL,
		SessionID:       session.ID,
		SubtotalCents:   subtotal,
		ShippingApplied: shipping,
		LineItems:       lineItems,
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
	}

	b.logger.Info("checkout session created",
		zap.String("session_id", session.ID),
		zap.Int64("subtotal_cents", subtotal),
		zap.Bool("shipping", shipping),
		zap.Int("line_items", len(lineItems)))

	b.publishCreated(providerCtx, result, origin)
	return result, nil
}

// ShippingApplies reports whether a shipping line is added for subtotal.
// Orders at or above the threshold ship free.
func (b *Builder) ShippingApplies(subtotalCents int64) bool {
	return subtotalCents < b.cfg.FreeShippingThresholdCents
}

// lookupPrices fetches every reference in parallel. Unknown references are
// left out of the map so the caller can report them in request order; any
// other failure aborts the whole lookup.
func (b *Builder) lookupPrices(ctx context.Context, refs []string) (map[string]*Price, error) {
	var mu sync.Mutex
	prices := make(map[string]*Price, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.MaxParallelLookups)

	for _, ref := range refs {
		g.Go(func() error {
			p, err := b.provider.GetPrice(gctx, ref)
			if errors.Is(err, ErrPriceNotFound) {
				b.logger.Warn("unknown price reference", zap.String("price_reference", ref))
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			prices[ref] = p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		b.logger.Error("price lookup failed", zap.Error(err))
		return nil, err
	}
	return prices, nil
}

func (b *Builder) publishCreated(ctx context.Context, r *Result, origin string) {
	evt, err := events.New(r.SessionID, AggregateType, EventSessionCreated, CheckoutSessionCreated{
		SessionID:       r.SessionID,
		LineItems:       r.LineItems,
		SubtotalCents:   r.SubtotalCents,
		ShippingApplied: r.ShippingApplied,
		Origin:          origin,
		CreatedAt:       time.Now().UTC(),
	})
	if err == nil {
		err = b.publisher.Publish(ctx, r.SessionID, evt)
	}
	if err != nil {
		b.logger.Warn("failed to publish checkout event",
			zap.String("session_id", r.SessionID),
			zap.Error(err))
	}
}

func uniqueReferences(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	refs := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.PriceReference]; ok {
			continue
		}
		seen[it.PriceReference] = struct{}{}
		refs = append(refs, it.PriceReference)
	}
	return refs
}
