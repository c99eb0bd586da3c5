package compliance

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Rule identifiers
const (
	RuleDataSovereignty = "data_sovereignty"
	RuleVATRate         = "vat_rate"
	RuleBilingualDocs   = "bilingual_docs"
	RuleDataSecurity    = "data_security"
	RuleEInvoicing      = "e_invoicing"
)

// Finding is what a check reports when it fires. Line is 1-based; zero means
// the rule is about the text as a whole.
type Finding struct {
	Match    string
	Line     int
	Expected string
}

// Rule is one row of the rule table. Message and fix templates may reference
// {match}, {line} and {expected} from the Finding.
type Rule struct {
	ID        string
	Kind      Kind
	Check     func(source string) (Finding, bool)
	Message   string
	MessageAR string
	Fix       string
	FixAR     string
}

var (
	foreignTLDRegex    = regexp.MustCompile(`(?im)(?://|@|["'])[a-z0-9-]+(?:\.[a-z0-9-]+)*(\.(?:us|eu))(?:[/:'"\s?#)]|$)`)
	regionHostRegex    = regexp.MustCompile(`(?i)https?://((?:us|eu)-[a-z0-9-]+(?:\.[a-z0-9-]+)+)`)
	rateAssignRegex    = regexp.MustCompile(`(?i)\b([a-z_][a-z0-9_]*)["']?(?:\s*:\s*[a-z_][a-z0-9_.\[\]]*|\s+(?:float64|float32|float|double|decimal\.Decimal))?\s*(?::=|=|:)\s*(?:[a-z_][a-z0-9_.]*\(\s*)?["']?(\d*\.?\d+)`)
	rateIdentifierHint = regexp.MustCompile(`rate|percent|pct|ratio`)
	one                = decimal.NewFromInt(1)
	hundred            = decimal.NewFromInt(100)
)

// DefaultRules returns the rule table built from DefaultRuleSet.
func DefaultRules() []Rule {
	rules, err := DefaultRuleSet().Rules()
	if err != nil {
		// the built-in rate is a constant literal
		panic(err)
	}
	return rules
}

// Rules builds the rule table, in report order, from the rule set.
func (rs RuleSet) Rules() ([]Rule, error) {
	rate, err := rs.requiredRate()
	if err != nil {
		return nil, err
	}

	return []Rule{
		{
			ID:        RuleDataSovereignty,
			Kind:      KindCritical,
			Check:     sovereigntyCheck(rs.ForeignDomains),
			Message:   "Data sovereignty violation: foreign infrastructure '{match}' referenced on line {line}",
			MessageAR: "مخالفة سيادة البيانات: استخدام بنية تحتية أجنبية '{match}' في السطر {line}",
			Fix:       "Host data and services inside Saudi Arabia (STC Cloud, Oracle Cloud Jeddah or Alibaba Cloud Riyadh)",
			FixAR:     "استضف البيانات والخدمات داخل المملكة العربية السعودية (STC Cloud أو Oracle Cloud جدة أو Alibaba Cloud الرياض)",
		},
		{
			ID:        RuleVATRate,
			Kind:      KindCritical,
			Check:     vatRateCheck(rate),
			Message:   "Incorrect VAT rate {match} on line {line}; the Saudi rate is {expected}",
			MessageAR: "نسبة ضريبة القيمة المضافة غير صحيحة {match} في السطر {line}؛ النسبة المعتمدة في المملكة هي {expected}",
			Fix:       "Set the VAT rate to {expected}",
			FixAR:     "اضبط نسبة ضريبة القيمة المضافة على {expected}",
		},
		{
			ID:        RuleBilingualDocs,
			Kind:      KindWarning,
			Check:     arabicCheck,
			Message:   "No Arabic documentation found; comments and user-facing text should be bilingual",
			MessageAR: "لا يوجد توثيق باللغة العربية؛ يجب أن تكون التعليقات والنصوص ثنائية اللغة",
			Fix:       "Add Arabic comments alongside the English ones",
			FixAR:     "أضف تعليقات باللغة العربية إلى جانب التعليقات الإنجليزية",
		},
		{
			ID:        RuleDataSecurity,
			Kind:      KindCritical,
			Check:     securityCheck(rs.PayloadFields, rs.CredentialFields, rs.SecretSources),
			Message:   "Sensitive field '{match}' handled in plain text on line {line}",
			MessageAR: "الحقل الحساس '{match}' مكشوف كنص صريح في السطر {line}",
			Fix:       "Use a tokenized payment source and read credentials from environment variables or a secret store",
			FixAR:     "استخدم رمزاً مميزاً لمصدر الدفع واقرأ بيانات الاعتماد من متغيرات البيئة أو مخزن الأسرار",
		},
		{
			ID:        RuleEInvoicing,
			Kind:      KindWarning,
			Check:     eInvoicingCheck(rs.InvoiceKeywords, rs.ZATCAIndicators),
			Message:   "Invoice handling on line {line} has no ZATCA e-invoicing integration",
			MessageAR: "معالجة الفواتير في السطر {line} لا تتضمن تكاملاً مع الفوترة الإلكترونية لهيئة الزكاة والضريبة والجمارك",
			Fix:       "Issue ZATCA-compliant invoices with a TLV QR code and report them through the Fatoora platform",
			FixAR:     "أصدر فواتير متوافقة مع متطلبات الهيئة مع رمز QR بصيغة TLV وأرسلها عبر منصة فاتورة",
		},
	}, nil
}

func sovereigntyCheck(domains []string) func(string) (Finding, bool) {
	patterns := make([]*regexp.Regexp, 0, len(domains)+2)
	for _, d := range domains {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(d)))
	}
	patterns = append(patterns, foreignTLDRegex, regionHostRegex)

	return func(source string) (Finding, bool) {
		best, match := -1, ""
		for _, p := range patterns {
			loc := p.FindStringSubmatchIndex(source)
			if loc == nil {
				continue
			}
			start, end := loc[0], loc[1]
			if len(loc) >= 4 && loc[2] >= 0 {
				start, end = loc[2], loc[3]
			}
			if best < 0 || start < best {
				best, match = start, source[start:end]
			}
		}
		if best < 0 {
			return Finding{}, false
		}
		return Finding{Match: match, Line: lineAt(source, best)}, true
	}
}

func vatRateCheck(required decimal.Decimal) func(string) (Finding, bool) {
	return func(source string) (Finding, bool) {
		for _, loc := range rateAssignRegex.FindAllStringSubmatchIndex(source, -1) {
			ident := strings.ToLower(source[loc[2]:loc[3]])
			if !isRateIdentifier(ident) {
				continue
			}
			literal := source[loc[4]:loc[5]]
			value, err := decimal.NewFromString(literal)
			if err != nil {
				continue
			}
			expected := required
			if value.GreaterThan(one) {
				// written as a percentage, e.g. VAT_PERCENT = 15
				expected = required.Mul(hundred)
			}
			if !value.Equal(expected) {
				return Finding{Match: literal, Line: lineAt(source, loc[4]), Expected: required.String()}, true
			}
		}
		return Finding{}, false
	}
}

func isRateIdentifier(ident string) bool {
	if ident == "vat" || ident == "tax" {
		return true
	}
	if !strings.Contains(ident, "vat") && !strings.Contains(ident, "tax") {
		return false
	}
	return rateIdentifierHint.MatchString(ident)
}

func arabicCheck(source string) (Finding, bool) {
	for _, r := range source {
		if r >= 0x0600 && r <= 0x06FF {
			return Finding{}, false
		}
	}
	return Finding{}, true
}

func securityCheck(payloadFields, credentialFields, secretSources []string) func(string) (Finding, bool) {
	fields := alternation(payloadFields)
	payloadKey := regexp.MustCompile(`(?i)["'](` + fields + `)["']\s*:`)
	jsonTag := regexp.MustCompile(`(?i)json:"(` + fields + `)[",]`)
	credential := regexp.MustCompile(`(?i)\b[a-z0-9_]*?(` + alternation(credentialFields) + `)\s*(?::=|=|:)\s*["']([^"'\s]{3,})["']`)

	sources := make([]string, len(secretSources))
	for i, s := range secretSources {
		sources[i] = strings.ToLower(s)
	}

	return func(source string) (Finding, bool) {
		best, match := -1, ""
		for _, p := range []*regexp.Regexp{payloadKey, jsonTag} {
			if loc := p.FindStringSubmatchIndex(source); loc != nil {
				if best < 0 || loc[2] < best {
					best, match = loc[2], source[loc[2]:loc[3]]
				}
			}
		}
		for _, loc := range credential.FindAllStringSubmatchIndex(source, -1) {
			if best >= 0 && loc[2] > best {
				break
			}
			if readsSecretStore(lineOf(source, loc[0]), sources) {
				continue
			}
			best, match = loc[2], source[loc[2]:loc[3]]
			break
		}
		if best < 0 {
			return Finding{}, false
		}
		return Finding{Match: match, Line: lineAt(source, best)}, true
	}
}

func readsSecretStore(line string, sources []string) bool {
	line = strings.ToLower(line)
	for _, s := range sources {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func eInvoicingCheck(keywords, indicators []string) func(string) (Finding, bool) {
	keywordRegex := regexp.MustCompile(`(?i)` + alternation(keywords))
	indicatorRegex := regexp.MustCompile(`(?i)` + alternation(indicators))

	return func(source string) (Finding, bool) {
		loc := keywordRegex.FindStringIndex(source)
		if loc == nil || indicatorRegex.MatchString(source) {
			return Finding{}, false
		}
		return Finding{Match: source[loc[0]:loc[1]], Line: lineAt(source, loc[0])}, true
	}
}

// alternation quotes the words and joins them longest first so that
// "secret_key" wins over "secret".
func alternation(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	if len(quoted) == 0 {
		// matches nothing
		return `[^\s\S]`
	}
	return strings.Join(quoted, "|")
}

func lineAt(source string, offset int) int {
	return strings.Count(source[:offset], "\n") + 1
}

func lineOf(source string, offset int) string {
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end < 0 {
		return source[start:]
	}
	return source[start : offset+end]
}
