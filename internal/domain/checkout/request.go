package checkout

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/example/ksd-storefront/internal/domain/cart"
)

type wireRequestItem struct {
	PriceReference string        `json:"priceReference"`
	StripePriceID  string        `json:"stripePriceId"`
	Quantity       cart.Quantity `json:"quantity"`
}

// DecodeItems parses {"items":[...]} from body. The body may also be a JSON
// string that itself contains that document. Items may name their price as
// priceReference or stripePriceId.
func DecodeItems(body []byte) ([]RequestItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrNoItems
	}

	if body[0] == '"' {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, ErrMalformedBody
		}
		body = bytes.TrimSpace([]byte(inner))
	}

	var doc struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, ErrMalformedBody
		}
		// Valid JSON that is not an object carries no items.
		return nil, ErrNoItems
	}

	var raw []json.RawMessage
	if len(doc.Items) == 0 || json.Unmarshal(doc.Items, &raw) != nil || len(raw) == 0 {
		return nil, ErrNoItems
	}

	items := make([]RequestItem, 0, len(raw))
	for _, r := range raw {
		var w wireRequestItem
		if err := json.Unmarshal(r, &w); err != nil {
			return nil, ErrMalformedBody
		}
		ref := w.PriceReference
		if ref == "" {
			ref = w.StripePriceID
		}
		items = append(items, RequestItem{PriceReference: ref, Quantity: w.Quantity})
	}
	return items, nil
}
