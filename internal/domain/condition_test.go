package domain

import (
	"errors"
	"testing"
)

func TestCondition_Validate_ValidTrees(t *testing.T) {
	trees := map[string]*Condition{
		"numeric leaf": {Kind: ConditionNumericCompare, Field: "lining_mm", Op: CompareLT, Threshold: 3.0},
		"equals leaf":  {Kind: ConditionEquals, Field: "cord_exposed", Value: true},
		"present leaf": {Kind: ConditionPresent, Field: "leak_location"},
		"absent leaf":  {Kind: ConditionAbsent, Field: "medical_cert_id"},
		"nested composite": {
			Kind: ConditionAnd,
			Children: []*Condition{
				{Kind: ConditionEquals, Field: "frame_cracked", Value: true},
				{
					Kind: ConditionOr,
					Children: []*Condition{
						{Kind: ConditionNumericCompare, Field: "crack_length_mm", Op: CompareGT, Threshold: 25},
						{Kind: ConditionEquals, Field: "near_suspension_hanger", Value: true},
					},
				},
			},
		},
		"not with one child": {
			Kind:     ConditionNot,
			Children: []*Condition{{Kind: ConditionPresent, Field: "permit_id"}},
		},
	}

	for name, tree := range trees {
		if err := tree.Validate(); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
	}
}

func TestCondition_Validate_MalformedTrees(t *testing.T) {
	trees := map[string]*Condition{
		"unknown kind":         {Kind: "XOR"},
		"and without children": {Kind: ConditionAnd},
		"or without children":  {Kind: ConditionOr},
		"not without children": {Kind: ConditionNot},
		"not with two children": {
			Kind: ConditionNot,
			Children: []*Condition{
				{Kind: ConditionPresent, Field: "a"},
				{Kind: ConditionPresent, Field: "b"},
			},
		},
		"equals without field":  {Kind: ConditionEquals, Value: true},
		"present without field": {Kind: ConditionPresent},
		"numeric without field": {Kind: ConditionNumericCompare, Op: CompareLT, Threshold: 1},
		"numeric with bad op":   {Kind: ConditionNumericCompare, Field: "x", Op: "between", Threshold: 1},
		"leaf with children": {
			Kind:     ConditionEquals,
			Field:    "x",
			Value:    1,
			Children: []*Condition{{Kind: ConditionPresent, Field: "y"}},
		},
		"malformed nested child": {
			Kind: ConditionAnd,
			Children: []*Condition{
				{Kind: ConditionPresent, Field: "ok"},
				{Kind: ConditionNumericCompare, Field: "x", Op: "almost", Threshold: 1},
			},
		},
	}

	for name, tree := range trees {
		err := tree.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", name)
			continue
		}
		var defErr *RuleDefinitionError
		if !errors.As(err, &defErr) {
			t.Errorf("%s: expected RuleDefinitionError, got %T", name, err)
		}
	}
}

func TestCondition_ValidateFor_AttachesRuleID(t *testing.T) {
	tree := &Condition{Kind: "BOGUS"}

	err := tree.ValidateFor("rule_123")
	if err == nil {
		t.Fatal("Expected validation error")
	}
	var defErr *RuleDefinitionError
	if !errors.As(err, &defErr) {
		t.Fatalf("Expected RuleDefinitionError, got %T", err)
	}
	if defErr.RuleID != "rule_123" {
		t.Errorf("Expected rule ID rule_123 on error, got %q", defErr.RuleID)
	}
}

func TestParseCondition(t *testing.T) {
	raw := []byte(`{
		"kind": "OR",
		"children": [
			{"kind": "NUMERIC_COMPARE", "field": "tread_depth_mm", "op": "lt", "threshold": 3.2},
			{"kind": "EQUALS", "field": "cord_exposed", "value": true}
		]
	}`)

	cond, err := ParseCondition(raw)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cond.Kind != ConditionOr {
		t.Errorf("Expected kind OR, got %s", cond.Kind)
	}
	if len(cond.Children) != 2 {
		t.Fatalf("Expected 2 children, got %d", len(cond.Children))
	}
	if cond.Children[0].Op != CompareLT || cond.Children[0].Threshold != 3.2 {
		t.Errorf("Expected lt 3.2 leaf, got %s %v", cond.Children[0].Op, cond.Children[0].Threshold)
	}
	if err := cond.Validate(); err != nil {
		t.Errorf("Expected parsed tree to validate: %v", err)
	}
}

func TestParseCondition_InvalidJSON(t *testing.T) {
	if _, err := ParseCondition([]byte(`{"kind":`)); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}
