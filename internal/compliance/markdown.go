package compliance

import (
	"fmt"
	"strings"
)

var verdictLabels = map[Verdict]string{
	VerdictPass:             "✅ PASS / ناجح",
	VerdictPassWithWarnings: "⚠️ PASS WITH WARNINGS / ناجح مع تحذيرات",
	VerdictFail:             "❌ FAIL / راسب",
}

// Markdown renders the report in English and Arabic, in the layout posted
// to chat replies and pull request reviews.
func (r *Report) Markdown() string {
	var b strings.Builder

	b.WriteString("## Saudi Compliance Report / تقرير الامتثال السعودي\n\n")
	fmt.Fprintf(&b, "**Status / الحالة:** %s\n\n", verdictLabels[r.Verdict])

	if len(r.Violations) > 0 {
		s := r.Summary()
		fmt.Fprintf(&b, "**Critical / حرجة:** %d · **Warnings / تحذيرات:** %d\n\n", s.Critical, s.Warnings)
		b.WriteString("### Violations / المخالفات\n\n")
		for i, v := range r.Violations {
			fmt.Fprintf(&b, "%d. **[%s] %s**", i+1, v.Kind, v.RuleID)
			if v.Line > 0 {
				fmt.Fprintf(&b, " (line %d / السطر %d)", v.Line, v.Line)
			}
			b.WriteString("\n")
			fmt.Fprintf(&b, "   - 🇬🇧 %s\n", v.Message)
			fmt.Fprintf(&b, "   - 🇸🇦 %s\n", v.MessageAR)
			fmt.Fprintf(&b, "   - **Fix / الحل:** %s / %s\n", v.Fix, v.FixAR)
		}
		b.WriteString("\n")
	}

	if len(r.PassedChecks) > 0 {
		b.WriteString("### Passed checks / الفحوصات الناجحة\n\n")
		for _, id := range r.PassedChecks {
			fmt.Fprintf(&b, "- ✅ %s\n", id)
		}
	}

	return b.String()
}
