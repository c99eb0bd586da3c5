// Package vat computes Saudi value-added tax on SAR amounts.
//
// All arithmetic is done on decimal values. Rounding uses decimal.Round, which
// rounds half away from zero, so 0.005 becomes 0.01 and -0.005 becomes -0.01.
package vat

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the computer handles.
const Currency = "SAR"

// Rate is the standard Saudi VAT rate.
var Rate = decimal.RequireFromString("0.15")

var (
	// ErrNegativeAmount is returned for subtotals below zero.
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrAmountTooLarge is returned when the total in halalas overflows int64.
	ErrAmountTooLarge = errors.New("amount too large")
)

var hundred = decimal.NewFromInt(100)

// Breakdown holds the tax figures derived from a subtotal
type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	VAT      decimal.Decimal `json:"vat_amount"`
	Total    decimal.Decimal `json:"total"`
	Halalas  int64           `json:"amount_halalas"`
}

// Compute derives VAT, total and the minor-unit total for subtotal.
func Compute(subtotal decimal.Decimal) (Breakdown, error) {
	if subtotal.IsNegative() {
		return Breakdown{}, fmt.Errorf("subtotal %s: %w", subtotal.String(), ErrNegativeAmount)
	}

	vatAmount := subtotal.Mul(Rate).Round(2)
	total := subtotal.Add(vatAmount).Round(2)

	halalas, err := ToHalalas(total)
	if err != nil {
		return Breakdown{}, err
	}

	return Breakdown{
		Subtotal: subtotal.Round(2),
		VAT:      vatAmount,
		Total:    total,
		Halalas:  halalas,
	}, nil
}

// ToHalalas converts a major-unit SAR amount to whole halalas.
func ToHalalas(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(hundred).Round(0).BigInt()
	if !minor.IsInt64() {
		return 0, fmt.Errorf("total %s: %w", amount.String(), ErrAmountTooLarge)
	}
	return minor.Int64(), nil
}

// FormatAmount renders an amount with exactly two decimals, as used on invoices
// and in the QR payload.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
