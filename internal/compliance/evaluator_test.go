package compliance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyPaymentSnippet = `# Saudi Payment Integration
import requests

def process_payment(amount, card_number, cvv):
    # Process payment through gateway
    api_url = "https://us-payment-processor.com/api/v1/charge"

    payload = {
        'amount': amount,
        'card': card_number,
        'cvv': cvv,
        'currency': 'SAR'
    }

    response = requests.post(api_url, json=payload)

def calculate_vat(amount):
    tax_rate = 0.10  # Tax rate
    return amount * tax_rate
`

const compliantSnippet = `# حساب ضريبة القيمة المضافة
VAT_RATE = 0.15
api_key = os.environ["MOYASAR_SECRET_KEY"]
url = "https://api.moyasar.com/v1/payments"
`

func violationsFor(r *Report, ruleID string) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out
}

func TestEvaluateForeignDomain(t *testing.T) {
	report := Evaluate(`api_url = "https://foo.amazonaws.com"`)

	hits := violationsFor(report, RuleDataSovereignty)
	require.Len(t, hits, 1)
	assert.Equal(t, KindCritical, hits[0].Kind)
	assert.Equal(t, "amazonaws.com", hits[0].Match)
	assert.Equal(t, 1, hits[0].Line)
	assert.Contains(t, hits[0].Message, "amazonaws.com")
	assert.Equal(t, 1, report.Summary().Critical)
	assert.Equal(t, VerdictFail, report.Verdict)
}

func TestEvaluateDataSovereigntyPatterns(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantMatch string
		wantHit   bool
	}{
		{name: "azure", source: `db = "mydb.database.windows.net"`, wantMatch: "windows.net", wantHit: true},
		{name: "google", source: `u = "https://storage.googleapis.com/b"`, wantMatch: "googleapis.com", wantHit: true},
		{name: "us tld", source: `u = "https://payments.example.us/charge"`, wantMatch: ".us", wantHit: true},
		{name: "quoted eu host", source: `host = 'api.example.eu'`, wantMatch: ".eu", wantHit: true},
		{name: "eu mailbox at end of line", source: "contact: billing@corp.example.eu\n", wantMatch: ".eu", wantHit: true},
		{name: "region prefixed host", source: `u = "https://us-payment-processor.com/api"`, wantMatch: "us-payment-processor.com", wantHit: true},
		{name: "earliest wins", source: "a = 'x.googleapis.com'\nb = 'y.amazonaws.com'", wantMatch: "googleapis.com", wantHit: true},
		{name: "domestic", source: `u = "https://api.moyasar.com/v1/payments"`},
		{name: "user attribute is not a tld", source: `name = self.username`},
		{name: "attribute named us", source: "x = cfg.us\n"},
		{name: "attribute chain ending in eu", source: "region = settings.zone.eu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := violationsFor(Evaluate(tt.source), RuleDataSovereignty)
			if !tt.wantHit {
				assert.Empty(t, hits)
				return
			}
			require.Len(t, hits, 1)
			assert.Equal(t, tt.wantMatch, hits[0].Match)
		})
	}
}

func TestEvaluateVATRate(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantHit   bool
		wantMatch string
	}{
		{name: "wrong rate", source: "tax_rate = 0.10", wantHit: true, wantMatch: "0.10"},
		{name: "correct rate", source: "vat_rate = 0.15"},
		{name: "trailing zero is still exact", source: "vat_rate = 0.150"},
		{name: "near miss is not tolerated", source: "vat_rate = 0.1500001", wantHit: true, wantMatch: "0.1500001"},
		{name: "go short declaration", source: "vatRate := 0.05", wantHit: true, wantMatch: "0.05"},
		{name: "dict key", source: `cfg = {"vat_rate": 0.2}`, wantHit: true, wantMatch: "0.2"},
		{name: "decimal constructor", source: `VAT_RATE = Decimal("0.05")`, wantHit: true, wantMatch: "0.05"},
		{name: "percentage form", source: "VAT_PERCENT = 15"},
		{name: "wrong percentage", source: "vat_percent = 5", wantHit: true, wantMatch: "5"},
		{name: "bare vat identifier", source: "vat = 0.12", wantHit: true, wantMatch: "0.12"},
		{name: "amount is not a rate", source: "vat_amount = 15.00"},
		{name: "comparison is ignored", source: "if tax_rate == 0.10:"},
		{name: "python annotated assignment", source: "vat_rate: float = 0.10", wantHit: true, wantMatch: "0.10"},
		{name: "annotated decimal constructor", source: "VAT_RATE: Decimal = Decimal('0.10')", wantHit: true, wantMatch: "0.10"},
		{name: "annotated correct rate", source: "vat_rate: float = 0.15"},
		{name: "typescript annotation", source: "const taxRate: number = 0.05;", wantHit: true, wantMatch: "0.05"},
		{name: "leading dot literal", source: "var vatRate = .10", wantHit: true, wantMatch: ".10"},
		{name: "leading dot correct rate", source: "vat_rate = .15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := violationsFor(Evaluate(tt.source), RuleVATRate)
			if !tt.wantHit {
				assert.Empty(t, hits)
				return
			}
			require.Len(t, hits, 1)
			assert.Equal(t, KindCritical, hits[0].Kind)
			assert.Equal(t, tt.wantMatch, hits[0].Match)
			assert.Contains(t, hits[0].Message, "0.15")
		})
	}
}

func TestEvaluateBilingualDocs(t *testing.T) {
	report := Evaluate("x = 1")
	require.Len(t, report.Violations, 1)
	assert.Equal(t, KindWarning, report.Violations[0].Kind)
	assert.Equal(t, RuleBilingualDocs, report.Violations[0].RuleID)
	assert.Zero(t, report.Violations[0].Line)
	assert.Equal(t, VerdictPassWithWarnings, report.Verdict)

	report = Evaluate("# ضريبة\nx = 1")
	assert.Empty(t, violationsFor(report, RuleBilingualDocs))
	assert.Contains(t, report.PassedChecks, RuleBilingualDocs)
}

func TestEvaluateDataSecurity(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantHit   bool
		wantMatch string
	}{
		{name: "cvv payload field", source: "payload = {'cvv': cvv}", wantHit: true, wantMatch: "cvv"},
		{name: "cvv literal assignment", source: `cvv = "123"`, wantHit: true, wantMatch: "cvv"},
		{name: "card number json key", source: `{"card_number": number}`, wantHit: true, wantMatch: "card_number"},
		{name: "go json tag", source: "CVV string `json:\"cvv\"`", wantHit: true, wantMatch: "cvv"},
		{name: "hardcoded api key", source: `STRIPE_API_KEY = "sk_live_abc123"`, wantHit: true, wantMatch: "API_KEY"},
		{name: "hardcoded password", source: `password: "hunter2"`, wantHit: true, wantMatch: "password"},
		{name: "env sourced key", source: `api_key = os.environ["TAP_SECRET_KEY"]`},
		{name: "literal on a secret store line", source: `token = "fallback" if vault else None`},
		{name: "empty placeholder", source: `password = ""`},
		{name: "token type is not a token", source: `token_type = "bearer"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := violationsFor(Evaluate(tt.source), RuleDataSecurity)
			if !tt.wantHit {
				assert.Empty(t, hits)
				return
			}
			require.Len(t, hits, 1)
			assert.Equal(t, KindCritical, hits[0].Kind)
			assert.Equal(t, tt.wantMatch, hits[0].Match)
		})
	}
}

func TestEvaluateEInvoicing(t *testing.T) {
	report := Evaluate("def create_invoice(order):\n    pass")
	hits := violationsFor(report, RuleEInvoicing)
	require.Len(t, hits, 1)
	assert.Equal(t, KindWarning, hits[0].Kind)
	assert.Equal(t, 1, hits[0].Line)

	report = Evaluate("# إنشاء فاتورة\nsave()")
	assert.Len(t, violationsFor(report, RuleEInvoicing), 1)

	report = Evaluate("def create_invoice(order):\n    zatca_client.report(order)")
	assert.Empty(t, violationsFor(report, RuleEInvoicing))
}

func TestEvaluateLegacySnippet(t *testing.T) {
	report := Evaluate(legacyPaymentSnippet)

	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, []string{RuleDataSovereignty, RuleVATRate, RuleBilingualDocs, RuleDataSecurity}, report.FailedChecks)
	assert.Equal(t, []string{RuleEInvoicing}, report.PassedChecks)

	vatHits := violationsFor(report, RuleVATRate)
	require.Len(t, vatHits, 1)
	assert.Equal(t, 18, vatHits[0].Line)

	secHits := violationsFor(report, RuleDataSecurity)
	require.Len(t, secHits, 1)
	assert.Equal(t, "card", secHits[0].Match)
	assert.Equal(t, 10, secHits[0].Line)
}

func TestEvaluateCompliantSnippet(t *testing.T) {
	report := Evaluate(compliantSnippet)

	assert.Equal(t, VerdictPass, report.Verdict)
	assert.Empty(t, report.Violations)
	assert.Empty(t, report.FailedChecks)
	assert.Len(t, report.PassedChecks, 5)
	assert.True(t, report.Passed())
}

func TestEvaluateEmptyInput(t *testing.T) {
	report := Evaluate("")

	assert.Equal(t, VerdictPassWithWarnings, report.Verdict)
	assert.Equal(t, []string{RuleBilingualDocs}, report.FailedChecks)
	assert.Len(t, report.PassedChecks, 4)
}

func TestEvaluateWithCustomRule(t *testing.T) {
	printRule := Rule{
		ID:   "no_print",
		Kind: KindWarning,
		Check: func(source string) (Finding, bool) {
			idx := strings.Index(source, "print(")
			if idx < 0 {
				return Finding{}, false
			}
			return Finding{Match: "print", Line: lineAt(source, idx)}, true
		},
		Message: "Use the logger instead of {match} on line {line}",
	}

	e := NewEvaluator(append(DefaultRules(), printRule)...)
	assert.Equal(t, []string{RuleDataSovereignty, RuleVATRate, RuleBilingualDocs, RuleDataSecurity, RuleEInvoicing, "no_print"}, e.RuleIDs())

	report := e.Evaluate("# تجربة\nprint(x)")
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "Use the logger instead of print on line 2", report.Violations[0].Message)
	assert.Equal(t, VerdictPassWithWarnings, report.Verdict)
}

func TestLoadRuleSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `foreign_domains:
  - herokuapp.com
required_vat_rate: "0.05"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.Contains(t, rs.ForeignDomains, "herokuapp.com")
	assert.Contains(t, rs.ForeignDomains, "amazonaws.com")

	e, err := NewEvaluatorFromRuleSet(rs)
	require.NoError(t, err)

	report := e.Evaluate("# مثال\nurl = 'https://app.herokuapp.com'\nvat_rate = 0.05")
	assert.Equal(t, []string{RuleDataSovereignty}, report.FailedChecks)
}

func TestLoadRuleSetErrors(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`required_vat_rate: "fifteen"`), 0644))
	_, err = LoadRuleSet(path)
	assert.Error(t, err)
}

func TestLoadEvaluator(t *testing.T) {
	e, err := LoadEvaluator("")
	require.NoError(t, err)
	assert.Equal(t, NewEvaluator(DefaultRules()...).RuleIDs(), e.RuleIDs())

	_, err = LoadEvaluator(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMergeDeduplicates(t *testing.T) {
	rs := DefaultRuleSet().Merge(RuleSet{ForeignDomains: []string{"AmazonAWS.com", " extra.example "}})

	count := 0
	for _, d := range rs.ForeignDomains {
		if strings.EqualFold(d, "amazonaws.com") {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Contains(t, rs.ForeignDomains, "extra.example")
	assert.Equal(t, "0.15", rs.RequiredVATRate)
}

func TestReportMarkdown(t *testing.T) {
	md := Evaluate(legacyPaymentSnippet).Markdown()

	assert.Contains(t, md, "تقرير الامتثال")
	assert.Contains(t, md, "FAIL")
	assert.Contains(t, md, "[CRITICAL] vat_rate")
	assert.Contains(t, md, "(line 18 / السطر 18)")
	assert.Contains(t, md, "✅ e_invoicing")

	md = Evaluate(compliantSnippet).Markdown()
	assert.Contains(t, md, "PASS")
	assert.NotContains(t, md, "Violations")
}
