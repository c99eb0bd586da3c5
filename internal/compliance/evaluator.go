// Package compliance checks source code against Saudi regulatory rules:
// data residency, the VAT rate, Arabic documentation, exposure of payment
// secrets and ZATCA e-invoicing.
//
// Evaluation is a pure function of the input text. It never fails; a rule
// that finds nothing simply contributes to the passed checks.
package compliance

import (
	"strconv"
	"strings"
)

// Evaluator runs a fixed rule table over source text
type Evaluator struct {
	rules []Rule
}

// NewEvaluator creates an evaluator over rules, kept in the given order.
func NewEvaluator(rules ...Rule) *Evaluator {
	return &Evaluator{rules: append([]Rule(nil), rules...)}
}

// NewEvaluatorFromRuleSet builds the default rule table from rs.
func NewEvaluatorFromRuleSet(rs RuleSet) (*Evaluator, error) {
	rules, err := rs.Rules()
	if err != nil {
		return nil, err
	}
	return NewEvaluator(rules...), nil
}

// LoadEvaluator builds an evaluator from the rule set file at path, or the
// defaults when path is empty.
func LoadEvaluator(path string) (*Evaluator, error) {
	if path == "" {
		return NewEvaluator(DefaultRules()...), nil
	}
	rs, err := LoadRuleSet(path)
	if err != nil {
		return nil, err
	}
	return NewEvaluatorFromRuleSet(rs)
}

var defaultEvaluator = NewEvaluator(DefaultRules()...)

// Evaluate checks source with the default rule table.
func Evaluate(source string) *Report {
	return defaultEvaluator.Evaluate(source)
}

// RuleIDs returns the rule identifiers in report order.
func (e *Evaluator) RuleIDs() []string {
	ids := make([]string, len(e.rules))
	for i, r := range e.rules {
		ids[i] = r.ID
	}
	return ids
}

// Evaluate applies every rule to source and aggregates the result.
func (e *Evaluator) Evaluate(source string) *Report {
	report := &Report{
		Violations:   []Violation{},
		PassedChecks: []string{},
		FailedChecks: []string{},
	}

	for _, rule := range e.rules {
		finding, fired := rule.Check(source)
		if !fired {
			report.PassedChecks = append(report.PassedChecks, rule.ID)
			continue
		}
		report.FailedChecks = append(report.FailedChecks, rule.ID)
		report.Violations = append(report.Violations, rule.violation(finding))
	}

	report.Verdict = verdictFor(report.Violations)
	return report
}

func (r Rule) violation(f Finding) Violation {
	fill := strings.NewReplacer(
		"{match}", f.Match,
		"{line}", strconv.Itoa(f.Line),
		"{expected}", f.Expected,
	)
	return Violation{
		Kind:      r.Kind,
		RuleID:    r.ID,
		Message:   fill.Replace(r.Message),
		MessageAR: fill.Replace(r.MessageAR),
		Line:      f.Line,
		Match:     f.Match,
		Fix:       fill.Replace(r.Fix),
		FixAR:     fill.Replace(r.FixAR),
	}
}
