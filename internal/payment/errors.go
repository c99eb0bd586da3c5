package payment

import (
	"errors"
	"fmt"
)

var (
	// Validation errors, returned before any network call
	ErrUnsupportedGateway = errors.New("unsupported payment gateway")
	ErrMissingCredential  = errors.New("missing gateway credential")
	ErrInvalidRequest     = errors.New("invalid payment request")

	// ErrGatewayRequest matches every *GatewayRequestError
	ErrGatewayRequest = errors.New("gateway request failed")
)

// GatewayRequestError reports a failed call to a payment gateway. StatusCode is
// zero when no HTTP response was received.
type GatewayRequestError struct {
	Gateway    string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayRequestError) Error() string {
	msg := fmt.Sprintf("%s: gateway request failed", e.Gateway)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" with status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrGatewayRequest and the underlying cause, so callers
// can match context.DeadlineExceeded as well.
func (e *GatewayRequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGatewayRequest}
	}
	return []error{ErrGatewayRequest, e.Err}
}
