package contact

import "time"

const AggregateType = "Inquiry"

const EventMessageReceived = "ContactMessageReceived"

type MessageReceived struct {
	InquiryID  string    `json:"inquiry_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	ReceivedAt time.Time `json:"received_at"`
}
