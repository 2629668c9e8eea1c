package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/domain/checkout"
	"github.com/example/ksd-storefront/internal/domain/events"
	"github.com/example/ksd-storefront/internal/email"
)

// Mailer sends checkout notifications. *email.Service implements it.
type Mailer interface {
	SendCheckoutNotification(to string, summary email.CheckoutSummary) error
}

// Handler processes storefront events for sending notifications
type Handler struct {
	mailer          Mailer
	catalog         *catalog.Catalog
	to              string
	shippingPriceID string
	logger          *zap.Logger
}

// NewHandler creates a new notification handler. An empty recipient turns
// every notification into a no-op.
func NewHandler(mailer Mailer, cat *catalog.Catalog, to, shippingPriceID string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		mailer:          mailer,
		catalog:         cat,
		to:              to,
		shippingPriceID: shippingPriceID,
		logger:          logger.Named("notifier"),
	}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	event, err := events.Decode(value)
	if err != nil {
		h.logger.Error("failed to decode event", zap.ByteString("key", key), zap.Error(err))
		return err
	}

	// Only checkout sessions are announced
	if event.EventType != checkout.EventSessionCreated {
		return nil
	}
	return h.handleSessionCreated(event)
}

func (h *Handler) handleSessionCreated(event events.Event) error {
	var e checkout.CheckoutSessionCreated
	if err := json.Unmarshal(event.Data, &e); err != nil {
		return fmt.Errorf("unmarshal %s: %w", event.EventType, err)
	}
	if e.SessionID == "" {
		return errors.New("checkout event has no session id")
	}

	log := h.logger.With(zap.String("session_id", e.SessionID))
	if h.to == "" {
		log.Debug("no notification recipient configured, skipping")
		return nil
	}

	summary := h.summarize(e)
	if err := h.mailer.SendCheckoutNotification(h.to, summary); err != nil {
		log.Error("failed to send checkout notification", zap.String("to", h.to), zap.Error(err))
		return err
	}

	log.Info("checkout notification sent", zap.String("to", h.to), zap.Int("items", len(summary.Items)))
	return nil
}

func (h *Handler) summarize(e checkout.CheckoutSessionCreated) email.CheckoutSummary {
	s := email.CheckoutSummary{
		SessionID:       e.SessionID,
		Origin:          e.Origin,
		SubtotalCents:   e.SubtotalCents,
		ShippingApplied: e.ShippingApplied,
		Items:           make([]email.LineItem, 0, len(e.LineItems)),
	}

	for _, li := range e.LineItems {
		item := email.LineItem{
			PriceReference: li.PriceReference,
			Quantity:       li.Quantity,
		}
		switch {
		case e.ShippingApplied && li.PriceReference == h.shippingPriceID:
			item.Name = "Standard shipping"
			item.Shipping = true
		case h.catalog != nil:
			if p, ok := h.catalog.ProductByPriceReference(li.PriceReference); ok {
				item.Name = p.Title
				item.UnitPrice = p.Price
			}
		}
		s.Items = append(s.Items, item)
	}
	return s
}
