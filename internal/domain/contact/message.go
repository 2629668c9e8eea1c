package contact

import (
	"errors"
	"regexp"
	"strings"
)

// Subject is used for every inquiry email.
const Subject = "Katherine Sterling Designs Inquiry"

var (
	ErrNameRequired    = errors.New("Please enter your name.")
	ErrInvalidEmail    = errors.New("Please enter a valid email.")
	ErrMessageRequired = errors.New("Please enter a message.")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Message is a visitor inquiry from the contact form.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate checks name, then email, then message, and returns the first
// problem found.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrNameRequired
	}
	email := strings.TrimSpace(m.Email)
	if email == "" || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if strings.TrimSpace(m.Message) == "" {
		return ErrMessageRequired
	}
	return nil
}

// IsValidationError reports whether err is one of the form validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrMessageRequired)
}
