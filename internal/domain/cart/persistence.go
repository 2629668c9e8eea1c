package cart

import (
	"context"

	"github.com/example/ksd-storefront/internal/infrastructure/store"
)

// StorageKey is the key bags have always been persisted under.
const StorageKey = "ksd_cart_v1"

// Persistence loads and saves one serialized cart.
type Persistence interface {
	// Load returns store.ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// BagKey is the backend key for a server-side bag.
func BagKey(bagID string) string {
	return StorageKey + ":" + bagID
}

type keyedPersistence struct {
	backend store.Backend
	key     string
}

// KeyedPersistence binds a Persistence to one key of a backend.
func KeyedPersistence(backend store.Backend, key string) Persistence {
	return &keyedPersistence{backend: backend, key: key}
}

func (p *keyedPersistence) Load(ctx context.Context) ([]byte, error) {
	return p.backend.Get(ctx, p.key)
}

func (p *keyedPersistence) Save(ctx context.Context, data []byte) error {
	return p.backend.Set(ctx, p.key, data)
}
