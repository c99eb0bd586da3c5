package zatca

import (
	"encoding/base64"
	"fmt"
	"time"
	_ "time/tzdata"

	qrcode "github.com/skip2/go-qrcode"
)

// Tags defined for phase-one simplified invoices
const (
	TagSellerName byte = 1
	TagVATNumber  byte = 2
	TagTimestamp  byte = 3
	TagTotal      byte = 4
	TagVAT        byte = 5
)

// TimestampLayout is ISO-8601 with the numeric offset, e.g. 2024-01-02T15:04:05+03:00.
const TimestampLayout = time.RFC3339

var riyadh = loadRiyadh()

func loadRiyadh() *time.Location {
	loc, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		// Riyadh has no DST, so a fixed zone is equivalent.
		return time.FixedZone("AST", 3*60*60)
	}
	return loc
}

// RiyadhTime converts t to Riyadh local time with second precision.
func RiyadhTime(t time.Time) time.Time {
	return t.In(riyadh).Truncate(time.Second)
}

// FormatTimestamp renders t in Riyadh time as it appears on the invoice.
func FormatTimestamp(t time.Time) string {
	return RiyadhTime(t).Format(TimestampLayout)
}

// Invoice carries the five values encoded in the QR code. Amounts are already
// formatted with two decimals.
type Invoice struct {
	SellerName string `json:"seller_name"`
	VATNumber  string `json:"vat_number"`
	Timestamp  string `json:"timestamp"`
	Total      string `json:"total"`
	VAT        string `json:"vat_amount"`
}

func (inv Invoice) fields() []Field {
	return []Field{
		{Tag: TagSellerName, Value: inv.SellerName},
		{Tag: TagVATNumber, Value: inv.VATNumber},
		{Tag: TagTimestamp, Value: inv.Timestamp},
		{Tag: TagTotal, Value: inv.Total},
		{Tag: TagVAT, Value: inv.VAT},
	}
}

// QRCode returns the base64 TLV payload for the invoice.
func (inv Invoice) QRCode() (string, error) {
	raw, err := EncodeTLV(inv.fields()...)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// ParseQRCode decodes a base64 TLV payload produced by QRCode.
func ParseQRCode(payload string) (Invoice, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Invoice{}, fmt.Errorf("%w: base64: %v", ErrMalformedTLV, err)
	}

	fields, err := DecodeTLV(raw)
	if err != nil {
		return Invoice{}, err
	}

	var inv Invoice
	seen := make(map[byte]bool, len(fields))
	for _, f := range fields {
		seen[f.Tag] = true
		switch f.Tag {
		case TagSellerName:
			inv.SellerName = f.Value
		case TagVATNumber:
			inv.VATNumber = f.Value
		case TagTimestamp:
			inv.Timestamp = f.Value
		case TagTotal:
			inv.Total = f.Value
		case TagVAT:
			inv.VAT = f.Value
		}
	}
	for tag := TagSellerName; tag <= TagVAT; tag++ {
		if !seen[tag] {
			return Invoice{}, fmt.Errorf("tag %d: %w", tag, ErrMissingField)
		}
	}
	return inv, nil
}

// RenderPNG draws payload as a QR code image of size x size pixels.
func RenderPNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}
