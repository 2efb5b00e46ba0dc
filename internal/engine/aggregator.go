package engine

import (
	"fmt"
	"strings"

	"github.com/fleetworks/fleetworks/internal/domain"
)

// FindingResult is the aggregated verdict for one finding. Explanations
// holds one rendered human-readable line per triggered rule, in trigger
// order.
type FindingResult struct {
	Outcome          domain.Outcome
	MatchedRuleIDs   []string
	TriggeredRuleIDs []string
	Explanations     []string
}

// Score evaluates every matched rule against the observed data and
// aggregates the triggered outcomes into one finding verdict:
//
//   - any triggered triage-only rule forces TRIAGE, pending human review
//   - otherwise the most severe triggered OOS outcome wins
//     (OOS_DRIVER > OOS_VEHICLE > OOS_CARGO)
//   - otherwise NOT_OOS, whether or not milder rules triggered
//
// All triggered rule ids are recorded regardless of which outcome wins.
func Score(matched []*domain.Rule, observed domain.ObservedData) FindingResult {
	result := FindingResult{Outcome: domain.OutcomeNotOOS}

	triageForced := false
	best := domain.OutcomeNotOOS

	for _, rule := range matched {
		result.MatchedRuleIDs = append(result.MatchedRuleIDs, rule.ID)

		if !Evaluate(rule.Condition, observed) {
			continue
		}
		result.TriggeredRuleIDs = append(result.TriggeredRuleIDs, rule.ID)
		result.Explanations = append(result.Explanations, Explain(rule, observed))

		if rule.IsTriageOnly || rule.Outcome == domain.OutcomeTriage {
			triageForced = true
			continue
		}
		if rule.Outcome.Severity() > best.Severity() {
			best = rule.Outcome
		}
	}

	if triageForced {
		result.Outcome = domain.OutcomeTriage
		return result
	}
	result.Outcome = best
	return result
}

// Explain renders a triggered rule's explanation template against the
// observed data: {field} placeholders are replaced with observed values,
// unknown placeholders are kept verbatim. Rules without a template fall
// back to their title.
func Explain(rule *domain.Rule, observed domain.ObservedData) string {
	template := rule.Explanation
	if template == "" {
		return rule.Title
	}

	var b strings.Builder
	for {
		open := strings.IndexByte(template, '{')
		if open < 0 {
			b.WriteString(template)
			break
		}
		end := strings.IndexByte(template[open:], '}')
		if end < 0 {
			b.WriteString(template)
			break
		}
		b.WriteString(template[:open])
		field := template[open+1 : open+end]
		if value, ok := observed[field]; ok {
			fmt.Fprintf(&b, "%v", value)
		} else {
			b.WriteString(template[open : open+end+1])
		}
		template = template[open+end+1:]
	}
	return b.String()
}
