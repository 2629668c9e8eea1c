package cart

import (
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem = errors.New("item requires a slug and a price reference")
)

// CartItem is one line in a bag. Price is display-only; checkout always
// re-prices through the payment provider.
type CartItem struct {
	Category       string
	Slug           string
	Title          string
	Price          decimal.Decimal
	PriceReference string
	Quantity       int
}

// LineTotal is Price × Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i CartItem) validate() error {
	if i.Slug == "" || i.PriceReference == "" {
		return ErrInvalidItem
	}
	return nil
}

// wireItem keeps the persisted layout compatible with bags written by the
// browser client, where the price is a bare number.
type wireItem struct {
	Category       string      `json:"category"`
	Slug           string      `json:"slug"`
	Title          string      `json:"title"`
	Price          json.Number `json:"price"`
	PriceReference string      `json:"stripePriceId"`
	Quantity       int         `json:"quantity"`
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireItem{
		Category:       i.Category,
		Slug:           i.Slug,
		Title:          i.Title,
		Price:          json.Number(i.Price.String()),
		PriceReference: i.PriceReference,
		Quantity:       i.Quantity,
	})
}

func (i *CartItem) UnmarshalJSON(b []byte) error {
	var w struct {
		Category       string          `json:"category"`
		Slug           string          `json:"slug"`
		Title          string          `json:"title"`
		Price          decimal.Decimal `json:"price"`
		StripePriceID  string          `json:"stripePriceId"`
		PriceReference string          `json:"priceReference"`
		Quantity       Quantity        `json:"quantity"`
	}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	ref := w.PriceReference
	if ref == "" {
		ref = w.StripePriceID
	}
	*i = CartItem{
		Category:       w.Category,
		Slug:           w.Slug,
		Title:          w.Title,
		Price:          w.Price,
		PriceReference: ref,
		Quantity:       w.Quantity.Int(),
	}
	return nil
}
