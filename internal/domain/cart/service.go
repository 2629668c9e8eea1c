package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/domain/events"
	"github.com/example/ksd-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages server-side bags, one Store per bag id.
type Service struct {
	backend   store.Backend
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(backend store.Backend, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		backend:   backend,
		publisher: publisher,
		logger:    logger.Named("bag"),
	}
}

// NewBagID returns a fresh random bag id.
func (s *Service) NewBagID() string {
	return uuid.New().String()
}

// Open hydrates the bag stored under bagID.
func (s *Service) Open(ctx context.Context, bagID string) *Store {
	return NewStore(ctx, KeyedPersistence(s.backend, BagKey(bagID)), s.logger.With(zap.String("bag_id", bagID)))
}

func (s *Service) AddItem(ctx context.Context, bagID string, item CartItem, qty int) (*Store, error) {
	st := s.Open(ctx, bagID)
	if err := st.AddToCart(ctx, item, qty); err != nil {
		return st, err
	}
	s.publish(ctx, bagID, EventItemAdded, ItemAddedToBag{
		BagID:          bagID,
		Slug:           item.Slug,
		PriceReference: item.PriceReference,
		Quantity:       ClampQuantity(qty),
		AddedAt:        time.Now(),
	})
	return st, nil
}

// RemoveItem publishes only when slug was in the bag.
func (s *Service) RemoveItem(ctx context.Context, bagID, slug string) (*Store, error) {
	st := s.Open(ctx, bagID)
	removed, err := st.RemoveFromCart(ctx, slug)
	if err != nil || !removed {
		return st, err
	}
	s.publish(ctx, bagID, EventItemRemoved, ItemRemovedFromBag{
		BagID:     bagID,
		Slug:      slug,
		RemovedAt: time.Now(),
	})
	return st, nil
}

// SetQuantity publishes only when the stored quantity changed.
func (s *Service) SetQuantity(ctx context.Context, bagID, slug string, qty int) (*Store, error) {
	st := s.Open(ctx, bagID)
	changed, err := st.SetQty(ctx, slug, qty)
	if err != nil || !changed {
		return st, err
	}
	s.publish(ctx, bagID, EventQuantitySet, BagQuantitySet{
		BagID:    bagID,
		Slug:     slug,
		Quantity: ClampQuantity(qty),
		SetAt:    time.Now(),
	})
	return st, nil
}

// Clear drops the stored bag entirely. Clearing an empty bag publishes
// nothing.
func (s *Service) Clear(ctx context.Context, bagID string) (*Store, error) {
	st := s.Open(ctx, bagID)
	if st.Len() == 0 {
		return st, nil
	}
	if err := s.backend.Delete(ctx, BagKey(bagID)); err != nil {
		s.logger.Error("bag delete failed", zap.String("bag_id", bagID), zap.Error(err))
		return st, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	st.reset()
	s.publish(ctx, bagID, EventBagCleared, BagCleared{
		BagID:     bagID,
		ClearedAt: time.Now(),
	})
	return st, nil
}

func (s *Service) publish(ctx context.Context, bagID, eventType string, payload any) {
	evt, err := events.New(bagID, AggregateType, eventType, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, bagID, evt)
	}
	if err != nil {
		s.logger.Warn("failed to publish bag event",
			zap.String("bag_id", bagID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

// ItemFromProduct builds a bag line from the catalog so titles and display
// prices are never taken from the client.
func ItemFromProduct(categoryKey string, p catalog.Product) CartItem {
	return CartItem{
		Category:       categoryKey,
		Slug:           p.Slug,
		Title:          p.Title,
		Price:          p.Price,
		PriceReference: p.PriceReference,
	}
}
