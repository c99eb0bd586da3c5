package payment

import (
	"encoding/json"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
	"github.com/shopspring/decimal"
)

// Supported gateway identifiers
const (
	GatewayMoyasar = "moyasar"
	GatewayTap     = "tap"
)

// Seller identifies the VAT-registered merchant on the invoice
type Seller struct {
	Name      string `json:"name" validate:"required"`
	VATNumber string `json:"vat_number" validate:"required,saudi_vat"`
}

// Customer is passed through to gateways that want payer details
type Customer struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// Request is a single charge. SourceToken is a gateway-issued token for the
// payment source; raw card data is never accepted.
type Request struct {
	Gateway     string            `json:"gateway"`
	Subtotal    decimal.Decimal   `json:"amount"`
	Description string            `json:"description"`
	SourceToken string            `json:"source_token"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Customer    *Customer         `json:"customer,omitempty"`
	Seller      Seller            `json:"seller"`
}

// Quote is everything computed before the gateway is called
type Quote struct {
	Seller        Seller          `json:"seller"`
	Currency      string          `json:"currency"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	VAT           decimal.Decimal `json:"vat_amount"`
	Total         decimal.Decimal `json:"total"`
	AmountHalalas int64           `json:"amount_halalas"`
	Timestamp     string          `json:"timestamp"`
	QRCode        string          `json:"qr_code"`
}

// MarshalJSON renders amounts with two decimals.
func (q Quote) MarshalJSON() ([]byte, error) {
	type alias Quote
	return json.Marshal(struct {
		alias
		Subtotal string `json:"subtotal"`
		VAT      string `json:"vat_amount"`
		Total    string `json:"total"`
	}{
		alias:    alias(q),
		Subtotal: vat.FormatAmount(q.Subtotal),
		VAT:      vat.FormatAmount(q.VAT),
		Total:    vat.FormatAmount(q.Total),
	})
}

// Result is produced only when the gateway accepted the request
type Result struct {
	Success         bool            `json:"success"`
	Gateway         string          `json:"gateway"`
	ChargeID        string          `json:"charge_id,omitempty"`
	GatewayStatus   string          `json:"gateway_status,omitempty"`
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	VAT             decimal.Decimal `json:"vat_amount"`
	Total           decimal.Decimal `json:"total"`
	AmountHalalas   int64           `json:"amount_halalas"`
	Timestamp       string          `json:"timestamp"`
	QRCode          string          `json:"qr_code"`
	GatewayResponse json.RawMessage `json:"gateway_response,omitempty"`
}

// MarshalJSON renders amounts with two decimals.
func (r Result) MarshalJSON() ([]byte, error) {
	type alias Result
	return json.Marshal(struct {
		alias
		Subtotal string `json:"subtotal"`
		VAT      string `json:"vat_amount"`
		Total    string `json:"total"`
	}{
		alias:    alias(r),
		Subtotal: vat.FormatAmount(r.Subtotal),
		VAT:      vat.FormatAmount(r.VAT),
		Total:    vat.FormatAmount(r.Total),
	})
}
