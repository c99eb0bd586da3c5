package compliance

// Kind is the severity of a violation
type Kind string

const (
	KindCritical Kind = "CRITICAL"
	KindWarning  Kind = "WARNING"
)

// Verdict is the overall outcome of an evaluation
type Verdict string

const (
	VerdictPass             Verdict = "PASS"
	VerdictPassWithWarnings Verdict = "PASS_WITH_WARNINGS"
	VerdictFail             Verdict = "FAIL"
)

// Violation is a single rule hit. Messages and fixes are carried in English
// and Arabic so callers can render either.
type Violation struct {
	Kind      Kind   `json:"type"`
	RuleID    string `json:"rule"`
	Message   string `json:"message"`
	MessageAR string `json:"message_ar"`
	Line      int    `json:"line,omitempty"` // 1-based, 0 when not locatable
	Match     string `json:"match,omitempty"`
	Fix       string `json:"fix"`
	FixAR     string `json:"fix_ar"`
}

// Report is the result of evaluating one source text
type Report struct {
	Violations   []Violation `json:"violations"`
	Verdict      Verdict     `json:"status"`
	PassedChecks []string    `json:"passed_checks"`
	FailedChecks []string    `json:"failed_checks"`
}

// Summary counts violations by kind
type Summary struct {
	Critical int `json:"critical"`
	Warnings int `json:"warnings"`
}

// Summary returns violation counts for the report.
func (r *Report) Summary() Summary {
	var s Summary
	for _, v := range r.Violations {
		switch v.Kind {
		case KindCritical:
			s.Critical++
		case KindWarning:
			s.Warnings++
		}
	}
	return s
}

// Passed reports whether the verdict allows the code to ship.
func (r *Report) Passed() bool {
	return r.Verdict != VerdictFail
}

func verdictFor(violations []Violation) Verdict {
	verdict := VerdictPass
	for _, v := range violations {
		if v.Kind == KindCritical {
			return VerdictFail
		}
		verdict = VerdictPassWithWarnings
	}
	return verdict
}
