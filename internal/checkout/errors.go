package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrSubmissionInFlight = errors.New("order submission already in progress")
)

// ValidationError is a checkout form problem that the shopper can fix. Field
// is empty when the problem is not tied to a form field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message is the text shown next to the offending field.
func (e *ValidationError) Message() string {
	switch {
	case errors.Is(e.Err, ErrMissingField):
		return fmt.Sprintf("Please enter your %s.", e.Field)
	case errors.Is(e.Err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(e.Err, ErrEmptyCart):
		return "Your cart is empty!"
	}
	return e.Err.Error()
}

// SubmissionError means the order was valid but the order store did not
// accept it. The cart is left untouched so the shopper can retry.
type SubmissionError struct {
	OrderNumber string
	Err         error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submit order %s: %s", e.OrderNumber, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
