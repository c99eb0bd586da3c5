package utils

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	vatNumberRegex = regexp.MustCompile(`^3\d{13}3$`)
	controlRegex   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateVATNumber validates a Saudi VAT registration number: 15 digits that
// begin and end with 3.
func ValidateVATNumber(vatNumber string) error {
	if !vatNumberRegex.MatchString(vatNumber) {
		return fmt.Errorf("VAT number must be 15 digits starting and ending with 3: %q", vatNumber)
	}
	return nil
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlRegex.ReplaceAllString(s, "")
}

// NewValidator returns a validator with the project's custom tags registered:
//
//	saudi_vat   Saudi VAT registration number
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("saudi_vat", func(fl validator.FieldLevel) bool {
		return ValidateVATNumber(fl.Field().String()) == nil
	})
	return v
}
