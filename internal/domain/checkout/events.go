package checkout

import "time"

const AggregateType = "CheckoutSession"

const EventSessionCreated = "CheckoutSessionCreated"

type CheckoutSessionCreated struct {
	SessionID       string     `json:"session_id"`
	LineItems       []LineItem `json:"line_items"`
	SubtotalCents   int64      `json:"subtotal_cents"`
	ShippingApplied bool       `json:"shipping_applied"`
	Origin          string     `json:"origin"`
	CreatedAt       time.Time  `json:"created_at"`
}
