package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/catalog"
	"github.com/example/ksd-storefront/internal/domain/cart"
	"github.com/example/ksd-storefront/internal/domain/checkout"
	"github.com/example/ksd-storefront/internal/domain/contact"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	builder *checkout.Builder
	bags    *cart.Service
	catalog *catalog.Catalog
	contact *contact.Service
	logger  *zap.Logger
}

func NewHandlers(builder *checkout.Builder, bags *cart.Service, cat *catalog.Catalog, inquiries *contact.Service, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		builder: builder,
		bags:    bags,
		catalog: cat,
		contact: inquiries,
		logger:  logger.Named("api"),
	}
}

// Checkout Handlers

// CreateCheckoutSession answers POST /api/create-checkout-session with
// {"url": ...} or a plain-text reason.
func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respondText(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	if err := h.builder.Configured(); err != nil {
		h.logger.Error("checkout is not configured", zap.Error(err))
		respondText(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondText(w, http.StatusBadRequest, checkout.ErrMalformedBody.Error())
		return
	}

	result, err := h.builder.CreateFromJSON(r.Context(), body, checkoutRequest(r))
	if err != nil {
		status, msg := h.checkoutFailure(err)
		respondText(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": result.URL})
}

// checkoutFailure maps a builder error to a status and message.
func (h *Handlers) checkoutFailure(err error) (int, string) {
	if checkout.IsInputError(err) {
		h.logger.Info("checkout rejected", zap.Error(err))
		return http.StatusBadRequest, err.Error()
	}

	h.logger.Error("checkout failed", zap.Error(err))
	msg := err.Error()
	if msg == "" {
		msg = "Server error"
	}
	return http.StatusInternalServerError, msg
}

func checkoutRequest(r *http.Request) checkout.Request {
	return checkout.Request{
		Origin:         r.Header.Get("Origin"),
		Host:           r.Host,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "checkout": "ready", "contact": "ready"}
	if err := h.builder.Configured(); err != nil {
		status["checkout"] = "unconfigured"
	}
	if !h.contact.Available() {
		status["contact"] = "unconfigured"
	}
	respondJSON(w, http.StatusOK, status)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}

func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
