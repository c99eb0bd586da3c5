package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/payment"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/zatca"
)

// ErrorKind classifies err for API clients
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, payment.ErrUnsupportedGateway):
		return "unsupported_gateway"

	case errors.Is(err, payment.ErrMissingCredential):
		return "missing_credential"

	case errors.Is(err, payment.ErrInvalidRequest),
		errors.Is(err, vat.ErrNegativeAmount),
		errors.Is(err, vat.ErrAmountTooLarge),
		errors.Is(err, zatca.ErrValueTooLong):
		return "invalid_request"

	case errors.Is(err, zatca.ErrMalformedTLV),
		errors.Is(err, zatca.ErrMissingField):
		return "invalid_qr"

	// Checked before ErrGatewayRequest, which a timed out call also matches.
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, payment.ErrGatewayRequest):
		return "gateway_error"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

// HTTPStatus maps err to a response status
func HTTPStatus(err error) int {
	switch ErrorKind(err) {
	case "":
		return http.StatusOK
	case "unsupported_gateway", "invalid_request", "invalid_qr", "canceled":
		return http.StatusBadRequest
	case "missing_credential":
		return http.StatusServiceUnavailable
	case "timeout":
		return http.StatusGatewayTimeout
	case "gateway_error":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
