package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/domain/events"
	kafkamocks "github.com/example/ksd-storefront/internal/infrastructure/kafka/mocks"
	"github.com/example/ksd-storefront/internal/infrastructure/store/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCartService() (*Service, *mocks.MockBackend, *kafkamocks.MockProducer) {
	backend := mocks.NewMockBackend()
	producer := kafkamocks.NewMockProducer()
	return NewService(backend, producer, nil), backend, producer
}

func TestBagKey(t *testing.T) {
	assert.Equal(t, "ksd_cart_v1:abc", BagKey("abc"))
}

func TestService_NewBagID_Unique(t *testing.T) {
	svc, _, _ := newTestCartService()
	assert.NotEqual(t, svc.NewBagID(), svc.NewBagID())
}

func TestService_AddItem_PersistsAndPublishes(t *testing.T) {
	svc, backend, producer := newTestCartService()
	ctx := context.Background()

	st, err := svc.AddItem(ctx, "bag-1", necklace(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalItems())

	_, ok := backend.Raw(BagKey("bag-1"))
	assert.True(t, ok)

	calls := producer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "bag-1", calls[0].Key)
	evt, ok := calls[0].Event.(events.Event)
	require.True(t, ok)
	assert.Equal(t, EventItemAdded, evt.EventType)
	assert.Equal(t, AggregateType, evt.AggregateType)

	var payload ItemAddedToBag
	require.NoError(t, json.Unmarshal(evt.Data, &payload))
	assert.Equal(t, "large-pearl-cross-necklace", payload.Slug)
	assert.Equal(t, 2, payload.Quantity)
}

func TestService_BagsAreIsolated(t *testing.T) {
	svc, _, _ := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "bag-1", necklace(), 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "bag-2", bracelet(), 1)
	require.NoError(t, err)

	one := svc.Open(ctx, "bag-1").Items()
	require.Len(t, one, 1)
	assert.Equal(t, "large-pearl-cross-necklace", one[0].Slug)
}

func TestService_Mutations(t *testing.T) {
	svc, _, producer := newTestCartService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "bag-1", necklace(), 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "bag-1", bracelet(), 1)
	require.NoError(t, err)

	st, err := svc.SetQuantity(ctx, "bag-1", "pearl-bracelet", 4)
	require.NoError(t, err)
	assert.Equal(t, 5, st.TotalItems())

	st, err = svc.RemoveItem(ctx, "bag-1", "large-pearl-cross-necklace")
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalItems())

	st, err = svc.Clear(ctx, "bag-1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())

	var types []string
	for _, c := range producer.Calls() {
		types = append(types, c.Event.(events.Event).EventType)
	}
	assert.Equal(t, []string{EventItemAdded, EventItemAdded, EventQuantitySet, EventItemRemoved, EventBagCleared}, types)
}

func TestService_NoOpMutationsNotPublished(t *testing.T) {
	svc, backend, producer := newTestCartService()
	ctx := context.Background()

	_, err := svc.RemoveItem(ctx, "bag-empty", "no-such-slug")
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, "bag-empty", "no-such-slug", 5)
	require.NoError(t, err)
	_, err = svc.Clear(ctx, "bag-empty")
	require.NoError(t, err)

	assert.Empty(t, producer.Calls())
	assert.Empty(t, backend.SetCalls)
	assert.Empty(t, backend.DeleteCalls)
}

func TestService_SetQuantity_SameValueNotPublished(t *testing.T) {
	svc, _, producer := newTestCartService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "bag-1", necklace(), 2)
	require.NoError(t, err)

	st, err := svc.SetQuantity(ctx, "bag-1", "large-pearl-cross-necklace", 2)

	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalItems())
	assert.Len(t, producer.Calls(), 1)
}

func TestService_Clear_DeletesStoredBag(t *testing.T) {
	svc, backend, _ := newTestCartService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "bag-1", necklace(), 1)
	require.NoError(t, err)

	st, err := svc.Clear(ctx, "bag-1")

	require.NoError(t, err)
	assert.Equal(t, 0, st.Len())
	assert.Equal(t, []string{BagKey("bag-1")}, backend.DeleteCalls)
	_, ok := backend.Raw(BagKey("bag-1"))
	assert.False(t, ok)
	assert.Equal(t, 0, svc.Open(ctx, "bag-1").Len())
}

func TestService_Clear_DeleteFailure(t *testing.T) {
	svc, backend, producer := newTestCartService()
	ctx := context.Background()
	_, err := svc.AddItem(ctx, "bag-1", necklace(), 1)
	require.NoError(t, err)
	backend.DeleteErr = errors.New("connection reset")

	st, err := svc.Clear(ctx, "bag-1")

	assert.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, 1, st.Len())
	assert.Len(t, producer.Calls(), 1)
}

func TestService_AddItem_InvalidItemNotPublished(t *testing.T) {
	svc, _, producer := newTestCartService()

	_, err := svc.AddItem(context.Background(), "bag-1", CartItem{Slug: "x"}, 1)

	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.Empty(t, producer.Calls())
}

func TestService_PublishFailureDoesNotFailMutation(t *testing.T) {
	svc, _, producer := newTestCartService()
	producer.PublishErr = errors.New("broker down")

	st, err := svc.AddItem(context.Background(), "bag-1", necklace(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
}

func TestItemFromProduct(t *testing.T) {
	p := catalog.Product{
		Slug:           "lucky-star-necklace",
		Title:          "Lucky Star Necklace",
		Price:          decimal.NewFromInt(72),
		PriceReference: "price_star",
	}

	item := ItemFromProduct("necklaces", p)

	assert.Equal(t, "necklaces", item.Category)
	assert.Equal(t, "lucky-star-necklace", item.Slug)
	assert.Equal(t, "price_star", item.PriceReference)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(72)))
	assert.Equal(t, 0, item.Quantity)
}
