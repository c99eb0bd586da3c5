package payment

import (
	"encoding/json"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
	"github.com/go-resty/resty/v2"
)

// DefaultTapURL is the production Tap Payments API
const DefaultTapURL = "https://api.tap.company"

// tapGateway charges in major units with a source id, a customer object and
// bearer auth
type tapGateway struct {
	cfg GatewayConfig
}

type tapSource struct {
	ID string `json:"id"`
}

type tapCustomer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type tapCharge struct {
	Amount      json.Number       `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	Source      tapSource         `json:"source"`
	Customer    tapCustomer       `json:"customer"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func newTapGateway(cfg GatewayConfig) *tapGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTapURL
	}
	return &tapGateway{cfg: cfg}
}

func (g *tapGateway) Name() string { return GatewayTap }

func (g *tapGateway) ChargeURL() string { return joinURL(g.cfg.BaseURL, "/v2/charges") }

func (g *tapGateway) HasCredential() bool { return g.cfg.SecretKey != "" }

func (g *tapGateway) Authorize(r *resty.Request) {
	r.SetAuthToken(g.cfg.SecretKey)
}

func (g *tapGateway) Payload(c Charge) any {
	customer := tapCustomer{FirstName: "Guest"}
	if c.Customer != nil {
		customer = tapCustomer{
			FirstName: c.Customer.FirstName,
			LastName:  c.Customer.LastName,
			Email:     c.Customer.Email,
			Phone:     c.Customer.Phone,
		}
	}

	return tapCharge{
		Amount:      json.Number(vat.FormatAmount(c.Quote.Total)),
		Currency:    vat.Currency,
		Description: c.Description,
		Source:      tapSource{ID: c.SourceToken},
		Customer:    customer,
		Metadata:    c.Metadata,
	}
}

func (g *tapGateway) ParseResponse(body []byte) (Outcome, error) {
	return parseChargeResponse(body, "DECLINED", "FAILED", "CANCELLED", "ABANDONED", "RESTRICTED")
}
