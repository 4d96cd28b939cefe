package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a bond or order id is unknown
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed requests and type-mismatched upstream records
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable matches any transport failure or non-2xx upstream response
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidTransition is returned when an order cannot move to the requested status
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// UpstreamError carries the status code and (truncated) body of a failed upstream call.
// StatusCode is 0 when the request never produced a response.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		switch {
		case e.Err != nil:
			return fmt.Sprintf("Moment API error: %v", e.Err)
		case e.Body != "":
			return fmt.Sprintf("Moment API error: %s", e.Body)
		}
		return "Moment API error: no response"
	}
	if e.Body == "" {
		if e.Err != nil {
			return fmt.Sprintf("Moment API Error (%d): %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("Moment API Error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("Moment API Error (%d): %s", e.StatusCode, e.Body)
}

// Is makes every UpstreamError match ErrUpstreamUnavailable
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewValidationError wraps ErrValidation with a message
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
