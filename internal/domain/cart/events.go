package cart

import "time"

const AggregateType = "Bag"

const (
	EventItemAdded   = "ItemAddedToBag"
	EventItemRemoved = "ItemRemovedFromBag"
	EventQuantitySet = "BagQuantitySet"
	EventBagCleared  = "BagCleared"
)

type ItemAddedToBag struct {
	BagID          string    `json:"bag_id"`
	Slug           string    `json:"slug"`
	PriceReference string    `json:"price_reference"`
	Quantity       int       `json:"quantity"`
	AddedAt        time.Time `json:"added_at"`
}

type ItemRemovedFromBag struct {
	BagID     string    `json:"bag_id"`
	Slug      string    `json:"slug"`
	RemovedAt time.Time `json:"removed_at"`
}

type BagQuantitySet struct {
	BagID    string    `json:"bag_id"`
	Slug     string    `json:"slug"`
	Quantity int       `json:"quantity"`
	SetAt    time.Time `json:"set_at"`
}

type BagCleared struct {
	BagID     string    `json:"bag_id"`
	ClearedAt time.Time `json:"cleared_at"`
}
