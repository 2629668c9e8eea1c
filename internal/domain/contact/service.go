package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/ksd-storefront/internal/domain/events"
)

var (
	ErrUnavailable = errors.New("contact form is not configured")
	ErrSendFailed  = errors.New("failed to send contact message")
)

// Sender delivers an inquiry to the shop inbox.
type Sender interface {
	SendContactMessage(to, name, replyTo, subject, message string) error
}

// Service validates inquiries and forwards them to the shop.
type Service struct {
	sender    Sender
	to        string
	publisher events.Publisher
	logger    *zap.Logger
}

func NewService(sender Sender, to string, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sender:    sender,
		to:        to,
		publisher: publisher,
		logger:    logger.Named("contact"),
	}
}

// Available reports whether inquiries can be delivered.
func (s *Service) Available() bool {
	return s != nil && s.sender != nil && s.to != ""
}

// Submit validates m, emails it to the shop and publishes
// ContactMessageReceived. Nothing is sent when validation fails.
func (s *Service) Submit(ctx context.Context, m Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !s.Available() {
		return ErrUnavailable
	}

	name := strings.TrimSpace(m.Name)
	email := strings.TrimSpace(m.Email)
	if err := s.sender.SendContactMessage(s.to, name, email, Subject, m.Message); err != nil {
		s.logger.Error("contact message not sent", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	id := uuid.NewString()
	s.logger.Info("contact message sent", zap.String("inquiry_id", id))

	evt, err := events.New(id, AggregateType, EventMessageReceived, MessageReceived{
		InquiryID:  id,
		Name:       name,
		Email:      email,
		Message:    m.Message,
		ReceivedAt: time.Now().UTC(),
	})
	if err == nil {
		err = s.publisher.Publish(ctx, id, evt)
	}
	if err != nil {
		s.logger.Warn("failed to publish contact event", zap.String("inquiry_id", id), zap.Error(err))
	}
	return nil
}
