package engine

import (
	"github.com/fleetworks/fleetworks/internal/domain"
)

// MatchRules selects the rules eligible to evaluate a finding: same
// category, and either generic (no component code on the rule) or an
// exact component-code match. The returned order is rule insertion
// order within the version; it matters for display only, aggregation is
// order-independent.
func MatchRules(rules []*domain.Rule, category domain.RuleCategory, componentCode string) []*domain.Rule {
	var matched []*domain.Rule
	for _, rule := range rules {
		if rule.Category != category {
			continue
		}
		if rule.ComponentCode != "" && rule.ComponentCode != componentCode {
			continue
		}
		matched = append(matched, rule)
	}
	return matched
}
