package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/domain/contact"
)

const contactSentMessage = "Message sent. We’ll respond within 24–48 hours."

// SubmitContact answers POST /api/contact. Validation failures return the
// message to show next to the form.
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var msg contact.Message
	if err := decodeJSON(r, w, &msg); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := h.contact.Submit(r.Context(), msg)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{"message": contactSentMessage})
	case contact.IsValidationError(err):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, contact.ErrUnavailable):
		h.logger.Warn("contact form used but no inbox is configured")
		respondJSONError(w, "Contact form is unavailable. Please email us directly.", http.StatusServiceUnavailable)
	default:
		h.logger.Error("contact message failed", zap.Error(err))
		respondJSONError(w, "Unable to send message. Please try again.", http.StatusBadGateway)
	}
}
