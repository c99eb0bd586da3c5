package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Charge is the gateway-independent input to a payload builder
type Charge struct {
	Quote       *Quote
	Description string
	SourceToken string
	Metadata    map[string]string
	Customer    *Customer
}

// Outcome is the normalized part of a gateway response
type Outcome struct {
	ChargeID string
	Status   string
	Declined bool
}

// Gateway is one payment provider. Implementations differ only in the
// payload shape, the auth scheme and how the response is read.
type Gateway interface {
	Name() string
	ChargeURL() string
	HasCredential() bool
	Authorize(r *resty.Request)
	Payload(c Charge) any
	ParseResponse(body []byte) (Outcome, error)
}

// GatewayConfig holds the endpoint and secret of one gateway
type GatewayConfig struct {
	BaseURL   string
	SecretKey string
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// parseChargeResponse reads the id and status fields that both gateways
// return, flagging statuses listed in declined.
func parseChargeResponse(body []byte, declined ...string) (Outcome, error) {
	var resp chargeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Outcome{}, fmt.Errorf("decode charge response: %w", err)
	}

	out := Outcome{ChargeID: resp.ID, Status: resp.Status}
	for _, s := range declined {
		if strings.EqualFold(resp.Status, s) {
			out.Declined = true
			break
		}
	}
	return out, nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

// gatewayMessage pulls a human readable reason out of an error body.
func gatewayMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Description string `json:"description"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if len(payload.Errors) > 0 {
			return payload.Errors[0].Description
		}
	}

	const maxLen = 200
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
