package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/example/ksd-storefront/internal/infrastructure/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrPersist = errors.New("failed to persist bag")

// Store owns the state of one bag. Every mutation re-serializes the whole
// bag through its Persistence. A failed save is reported to the caller but
// the in-memory change is kept.
type Store struct {
	mu          sync.RWMutex
	items       []CartItem
	persistence Persistence
	logger      *zap.Logger
}

// NewStore hydrates a store once from p. Missing or unreadable data yields
// an empty bag.
func NewStore(ctx context.Context, p Persistence, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{persistence: p, logger: logger}
	s.items = s.hydrate(ctx)
	return s
}

func (s *Store) hydrate(ctx context.Context) []CartItem {
	raw, err := s.persistence.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("bag load failed, starting empty", zap.Error(err))
		}
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil {
		s.logger.Warn("ignoring malformed bag data", zap.Error(err))
		return nil
	}

	decoded := make([]CartItem, 0, len(raws))
	for i, r := range raws {
		var it CartItem
		if err := json.Unmarshal(r, &it); err != nil {
			s.logger.Warn("skipping malformed bag item", zap.Int("index", i), zap.Error(err))
			continue
		}
		decoded = append(decoded, it)
	}

	items := make([]CartItem, 0, len(decoded))
	index := make(map[string]int, len(decoded))
	for _, it := range decoded {
		if it.Slug == "" {
			continue
		}
		if i, ok := index[it.Slug]; ok {
			items[i].Quantity = ClampQuantity(items[i].Quantity + it.Quantity)
			continue
		}
		index[it.Slug] = len(items)
		items = append(items, it)
	}
	return items
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) error {
	items := s.items
	if items == nil {
		items = []CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	if err := s.persistence.Save(ctx, data); err != nil {
		s.logger.Error("bag save failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Store) indexOf(slug string) int {
	for i := range s.items {
		if s.items[i].Slug == slug {
			return i
		}
	}
	return -1
}

// AddToCart adds qty of item. An existing slug has its quantity increased;
// the sum is clamped to MaxQuantity. New slugs are appended.
func (s *Store) AddToCart(ctx context.Context, item CartItem, qty int) error {
	if err := item.validate(); err != nil {
		return err
	}
	safeQty := ClampQuantity(qty)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(item.Slug); i >= 0 {
		s.items[i].Quantity = ClampQuantity(s.items[i].Quantity + safeQty)
	} else {
		item.Quantity = safeQty
		s.items = append(s.items, item)
	}
	return s.persist(ctx)
}

// RemoveFromCart deletes slug and reports whether it was present. Unknown
// slugs are a no-op and nothing is saved.
func (s *Store) RemoveFromCart(ctx context.Context, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(slug)
	if i < 0 {
		return false, nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true, s.persist(ctx)
}

// SetQty overwrites the quantity of slug and reports whether it changed.
// Unknown slugs and unchanged quantities are a no-op and nothing is saved.
func (s *Store) SetQty(ctx context.Context, slug string, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(slug)
	if i < 0 {
		return false, nil
	}
	safeQty := ClampQuantity(qty)
	if s.items[i].Quantity == safeQty {
		return false, nil
	}
	s.items[i].Quantity = safeQty
	return true, s.persist(ctx)
}

func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.persist(ctx)
}

// reset empties the in-memory bag without saving.
func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the bag in insertion order.
func (s *Store) Items() []CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// TotalItems is the sum of quantities.
func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, it := range s.items {
		total += it.Quantity
	}
	return total
}

// Subtotal is the display subtotal from client-side prices.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.LineTotal())
	}
	return total
}
