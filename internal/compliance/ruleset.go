package compliance

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RuleSet holds the tables the default rules match against. Loading a file
// extends these lists; it never replaces the built-in entries.
type RuleSet struct {
	ForeignDomains   []string `yaml:"foreign_domains"`
	PayloadFields    []string `yaml:"payload_fields"`
	CredentialFields []string `yaml:"credential_fields"`
	SecretSources    []string `yaml:"secret_sources"`
	InvoiceKeywords  []string `yaml:"invoice_keywords"`
	ZATCAIndicators  []string `yaml:"zatca_indicators"`
	RequiredVATRate  string   `yaml:"required_vat_rate"`
}

// DefaultRuleSet returns the built-in tables.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		ForeignDomains: []string{
			"amazonaws.com",
			"aws.amazon.com",
			"azure.com",
			"azurewebsites.net",
			"windows.net",
			"googleapis.com",
			"cloud.google.com",
			"appspot.com",
		},
		PayloadFields: []string{
			"card", "card_number", "cardnumber", "card_no", "pan",
			"cvv", "cvv2", "cvc", "password", "pin",
		},
		CredentialFields: []string{
			"password", "passwd", "api_key", "apikey", "secret", "secret_key",
			"access_token", "token", "cvv", "card_number",
		},
		SecretSources: []string{
			"os.environ", "getenv", "process.env", "secrets", "vault", "keyring",
		},
		InvoiceKeywords: []string{"invoice", "فاتورة"},
		ZATCAIndicators: []string{"zatca", "fatoora"},
		RequiredVATRate: "0.15",
	}
}

// LoadRuleSet reads a YAML file and merges it over the defaults.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rule set: %w", err)
	}

	var extra RuleSet
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse rule set %s: %w", path, err)
	}

	rs := DefaultRuleSet().Merge(extra)
	if _, err := rs.requiredRate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// Merge returns rs extended with the entries of other. A non-empty
// RequiredVATRate in other wins.
func (rs RuleSet) Merge(other RuleSet) RuleSet {
	out := RuleSet{
		ForeignDomains:   mergeLists(rs.ForeignDomains, other.ForeignDomains),
		PayloadFields:    mergeLists(rs.PayloadFields, other.PayloadFields),
		CredentialFields: mergeLists(rs.CredentialFields, other.CredentialFields),
		SecretSources:    mergeLists(rs.SecretSources, other.SecretSources),
		InvoiceKeywords:  mergeLists(rs.InvoiceKeywords, other.InvoiceKeywords),
		ZATCAIndicators:  mergeLists(rs.ZATCAIndicators, other.ZATCAIndicators),
		RequiredVATRate:  rs.RequiredVATRate,
	}
	if other.RequiredVATRate != "" {
		out.RequiredVATRate = other.RequiredVATRate
	}
	return out
}

func (rs RuleSet) requiredRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(rs.RequiredVATRate)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid required_vat_rate %q: %w", rs.RequiredVATRate, err)
	}
	return rate, nil
}

func mergeLists(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, s := range list {
			key := strings.ToLower(strings.TrimSpace(s))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
