package checkout

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	ErrMissingCredential = errors.New("Missing STRIPE_SECRET_KEY env var.")
	ErrOriginUnresolved  = errors.New("Could not determine site origin.")
)

// ErrPriceNotFound is returned by a PaymentProvider for an unknown price.
var ErrPriceNotFound = errors.New("price not found")

// InputError is a problem with what the client sent.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

var (
	ErrNoItems       = &InputError{Message: "No items provided."}
	ErrMalformedBody = &InputError{Message: "Invalid request body."}
)

const (
	ReasonInvalidPrice = "Invalid price id"
	ReasonNotFixed     = "Price has no unit_amount"
)

// PriceError names the price reference that failed validation.
type PriceError struct {
	Reference string
	Reason    string
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Reference)
}

// ProviderError carries the message reported by the payment provider.
type ProviderError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Op + " failed"
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsInputError reports whether err should be answered with 400.
func IsInputError(err error) bool {
	var inErr *InputError
	var priceErr *PriceError
	return errors.As(err, &inErr) || errors.As(err, &priceErr)
}

// IsConfigError reports whether err is a server misconfiguration.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingCredential) || errors.Is(err, ErrOriginUnresolved)
}
