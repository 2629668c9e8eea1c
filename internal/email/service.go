package email

import (
	"fmt"
	"net/smtp"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	sendMail sendFunc
}

// NewService creates a new email service
func NewService(host, port, from string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

// SendCheckoutNotification tells the shop a customer was sent to payment.
func (s *Service) SendCheckoutNotification(to string, summary CheckoutSummary) error {
	subject := fmt.Sprintf("New checkout started: %s (%s)", shortID(summary.SessionID), summary.Total())
	body := BuildCheckoutNotificationBody(summary)
	return s.send(to, subject, body)
}

// SendContactMessage forwards a contact form inquiry. Replies go to the
// visitor.
func (s *Service) SendContactMessage(to, name, replyTo, subject, message string) error {
	body := BuildContactMessageBody(name, replyTo, message)
	return s.send(to, subject, body, "Reply-To: "+replyTo)
}

func (s *Service) send(to, subject, body string, extraHeaders ...string) error {
	var headers string
	for _, h := range extraHeaders {
		headers += h + "\r\n"
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\n%sSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, headers, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return s.sendMail(addr, nil, s.from, []string{to}, []byte(msg))
}

func shortID(id string) string {
	const keep = 14
	if len(id) > keep {
		return id[:keep]
	}
	return id
}
