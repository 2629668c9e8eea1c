package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/api/middleware"
	"github.com/example/ksd-storefront/internal/domain/cart"
	"github.com/example/ksd-storefront/internal/domain/checkout"
	"github.com/example/ksd-storefront/internal/money"
)

// BagResponse is the JSON view of a bag.
type BagResponse struct {
	Items             []cart.CartItem `json:"items"`
	TotalItems        int             `json:"totalItems"`
	Subtotal          json.Number     `json:"subtotal"`
	SubtotalFormatted string          `json:"subtotalFormatted"`
	SubtotalCents     int64           `json:"subtotalCents"`
	// ShipsFree is an estimate from display prices; checkout re-prices.
	ShipsFree bool `json:"shipsFree"`
}

func (h *Handlers) newBagResponse(s *cart.Store) BagResponse {
	subtotal := s.Subtotal()
	cents := money.ToCents(subtotal)
	return BagResponse{
		Items:             s.Items(),
		TotalItems:        s.TotalItems(),
		Subtotal:          json.Number(subtotal.StringFixed(2)),
		SubtotalFormatted: money.FormatUSD(subtotal),
		SubtotalCents:     cents,
		ShipsFree:         cents > 0 && !h.builder.ShippingApplies(cents),
	}
}

type addItemRequest struct {
	Category string        `json:"category"`
	Slug     string        `json:"slug"`
	Quantity cart.Quantity `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity cart.Quantity `json:"quantity"`
}

func (h *Handlers) GetBag(w http.ResponseWriter, r *http.Request) {
	st := h.bags.Open(r.Context(), middleware.GetBagID(r.Context()))
	respondJSON(w, http.StatusOK, h.newBagResponse(st))
}

// AddBagItem adds a catalog product. Title and price come from the catalog.
func (h *Handlers) AddBagItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.catalog.Product(req.Category, req.Slug)
	if err != nil {
		respondJSONError(w, "Product not found", http.StatusNotFound)
		return
	}
	if !p.Purchasable() {
		respondJSONError(w, "Product is not available for purchase", http.StatusBadRequest)
		return
	}

	st, err := h.bags.AddItem(r.Context(), middleware.GetBagID(r.Context()), cart.ItemFromProduct(req.Category, p), req.Quantity.Int())
	h.respondBag(w, st, err)
}

func (h *Handlers) SetBagItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := decodeJSON(r, w, &req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	st, err := h.bags.SetQuantity(r.Context(), middleware.GetBagID(r.Context()), chi.URLParam(r, "slug"), req.Quantity.Int())
	h.respondBag(w, st, err)
}

func (h *Handlers) RemoveBagItem(w http.ResponseWriter, r *http.Request) {
	st, err := h.bags.RemoveItem(r.Context(), middleware.GetBagID(r.Context()), chi.URLParam(r, "slug"))
	h.respondBag(w, st, err)
}

func (h *Handlers) ClearBag(w http.ResponseWriter, r *http.Request) {
	st, err := h.bags.Clear(r.Context(), middleware.GetBagID(r.Context()))
	h.respondBag(w, st, err)
}

// CheckoutBag creates a checkout session from the server-side bag. The bag
// is left untouched; the client clears it on the success redirect.
func (h *Handlers) CheckoutBag(w http.ResponseWriter, r *http.Request) {
	st := h.bags.Open(r.Context(), middleware.GetBagID(r.Context()))

	req := checkoutRequest(r)
	for _, it := range st.Items() {
		req.Items = append(req.Items, checkout.RequestItem{
			PriceReference: it.PriceReference,
			Quantity:       cart.Quantity(it.Quantity),
		})
	}

	result, err := h.builder.Create(r.Context(), req)
	if err != nil {
		status, msg := h.checkoutFailure(err)
		respondJSONError(w, msg, status)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": result.URL})
}

func (h *Handlers) respondBag(w http.ResponseWriter, st *cart.Store, err error) {
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, h.newBagResponse(st))
	case errors.Is(err, cart.ErrInvalidItem):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, cart.ErrPersist):
		h.logger.Error("bag not saved", zap.Error(err))
		respondJSONError(w, "Failed to save bag", http.StatusServiceUnavailable)
	default:
		h.logger.Error("bag update failed", zap.Error(err))
		respondJSONError(w, "Server error", http.StatusInternalServerError)
	}
}

