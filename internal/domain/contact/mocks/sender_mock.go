package mocks

import "sync"

// MockSender records contact messages instead of sending mail.
type MockSender struct {
	mu sync.Mutex

	SendCalls []SendCall
	SendErr   error
}

// SendCall records parameters passed to SendContactMessage
type SendCall struct {
	To      string
	Name    string
	ReplyTo string
	Subject string
	Message string
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) SendContactMessage(to, name, replyTo, subject, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SendCalls = append(m.SendCalls, SendCall{To: to, Name: name, ReplyTo: replyTo, Subject: subject, Message: message})
	return m.SendErr
}

// Calls returns a snapshot of recorded calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.SendCalls))
	copy(out, m.SendCalls)
	return out
}
