package engine

import (
	"testing"

	"github.com/fleetworks/fleetworks/internal/domain"
)

func makeRule(id string, category domain.RuleCategory, componentCode string) *domain.Rule {
	return &domain.Rule{
		ID:            id,
		Category:      category,
		ComponentCode: componentCode,
		Condition:     &domain.Condition{Kind: domain.ConditionPresent, Field: "x"},
		Outcome:       domain.OutcomeNotOOS,
	}
}

func TestMatchRules(t *testing.T) {
	rules := []*domain.Rule{
		makeRule("r1", domain.RuleCategoryVehicle, "BRAKE_LINING"),
		makeRule("r2", domain.RuleCategoryVehicle, ""),
		makeRule("r3", domain.RuleCategoryDriver, ""),
		makeRule("r4", domain.RuleCategoryVehicle, "TIRE_STEER"),
	}

	matched := MatchRules(rules, domain.RuleCategoryVehicle, "BRAKE_LINING")
	if len(matched) != 2 {
		t.Fatalf("Expected 2 matched rules, got %d", len(matched))
	}
	if matched[0].ID != "r1" || matched[1].ID != "r2" {
		t.Errorf("Expected r1 and r2 in insertion order, got %s and %s", matched[0].ID, matched[1].ID)
	}
}

func TestMatchRules_GenericRulesMatchAnyComponent(t *testing.T) {
	rules := []*domain.Rule{
		makeRule("generic", domain.RuleCategoryDriver, ""),
	}

	matched := MatchRules(rules, domain.RuleCategoryDriver, "DRIVER_LICENSE")
	if len(matched) != 1 {
		t.Fatalf("Expected generic rule to match any component code, got %d matches", len(matched))
	}
}

func TestMatchRules_CategoryMismatch(t *testing.T) {
	rules := []*domain.Rule{
		makeRule("r1", domain.RuleCategoryCargoSecurement, ""),
	}

	if matched := MatchRules(rules, domain.RuleCategoryVehicle, ""); len(matched) != 0 {
		t.Errorf("Expected no matches across categories, got %d", len(matched))
	}
}

func TestMatchRules_EmptyRuleSet(t *testing.T) {
	if matched := MatchRules(nil, domain.RuleCategoryVehicle, "BRAKE_LINING"); len(matched) != 0 {
		t.Errorf("Expected no matches for empty rule set, got %d", len(matched))
	}
}
