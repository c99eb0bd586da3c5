package payment

import (
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
	"github.com/go-resty/resty/v2"
)

// DefaultMoyasarURL is the production Moyasar API
const DefaultMoyasarURL = "https://api.moyasar.com"

// moyasarGateway charges in halalas using a tokenized source and basic auth
type moyasarGateway struct {
	cfg GatewayConfig
}

type moyasarSource struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type moyasarPayment struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Source      moyasarSource     `json:"source"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func newMoyasarGateway(cfg GatewayConfig) *moyasarGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMoyasarURL
	}
	return &moyasarGateway{cfg: cfg}
}

func (g *moyasarGateway) Name() string { return GatewayMoyasar }

func (g *moyasarGateway) ChargeURL() string { return joinURL(g.cfg.BaseURL, "/v1/payments") }

func (g *moyasarGateway) HasCredential() bool { return g.cfg.SecretKey != "" }

// Authorize uses the secret key as the basic auth user with an empty password.
func (g *moyasarGateway) Authorize(r *resty.Request) {
	r.SetBasicAuth(g.cfg.SecretKey, "")
}

func (g *moyasarGateway) Payload(c Charge) any {
	return moyasarPayment{
		Amount:      c.Quote.AmountHalalas,
		Currency:    vat.Currency,
		Description: c.Description,
		Source: moyasarSource{
			Type:  "token",
			Token: c.SourceToken,
		},
		Metadata: c.Metadata,
	}
}

func (g *moyasarGateway) ParseResponse(body []byte) (Outcome, error) {
	return parseChargeResponse(body, "failed", "voided")
}
