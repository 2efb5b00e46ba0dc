package domain

import (
	"encoding/json"
	"fmt"
)

// ConditionKind discriminates the nodes of a condition tree
type ConditionKind string

const (
	ConditionAnd            ConditionKind = "AND"
	ConditionOr             ConditionKind = "OR"
	ConditionNot            ConditionKind = "NOT"
	ConditionEquals         ConditionKind = "EQUALS"
	ConditionPresent        ConditionKind = "PRESENT"
	ConditionAbsent         ConditionKind = "ABSENT"
	ConditionNumericCompare ConditionKind = "NUMERIC_COMPARE"
)

// CompareOp represents the operator of a NUMERIC_COMPARE leaf
type CompareOp string

const (
	CompareLT  CompareOp = "lt"
	CompareLTE CompareOp = "lte"
	CompareGT  CompareOp = "gt"
	CompareGTE CompareOp = "gte"
	CompareEQ  CompareOp = "eq"
)

// Condition is one node of a rule's condition tree. Leaf nodes carry a
// field reference; composite nodes carry children. The shape doubles as
// the wire format exchanged with the host application.
type Condition struct {
	Kind      ConditionKind `json:"kind"`
	Field     string        `json:"field,omitempty"`
	Value     interface{}   `json:"value,omitempty"`
	Op        CompareOp     `json:"op,omitempty"`
	Threshold float64       `json:"threshold,omitempty"`
	Children  []*Condition  `json:"children,omitempty"`
}

// RuleDefinitionError reports a malformed condition tree. It is raised
// during version activation, never at evaluation time, so that activated
// rule sets are guaranteed evaluable.
type RuleDefinitionError struct {
	RuleID string
	Detail string
}

func (e *RuleDefinitionError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("invalid rule definition: %s", e.Detail)
	}
	return fmt.Sprintf("invalid rule definition (rule %s): %s", e.RuleID, e.Detail)
}

func NewRuleDefinitionError(ruleID, format string, args ...interface{}) *RuleDefinitionError {
	return &RuleDefinitionError{RuleID: ruleID, Detail: fmt.Sprintf(format, args...)}
}

// Validate checks the static well-formedness of the tree: known kinds,
// correct arity, field references on leaves, a valid operator on numeric
// comparisons. A tree that passes Validate can always be evaluated.
func (c *Condition) Validate() error {
	return c.validate("")
}

func (c *Condition) validate(ruleID string) error {
	if c == nil {
		return NewRuleDefinitionError(ruleID, "condition node is nil")
	}

	switch c.Kind {
	case ConditionAnd, ConditionOr:
		if len(c.Children) == 0 {
			return NewRuleDefinitionError(ruleID, "%s node requires at least one child", c.Kind)
		}
		for _, child := range c.Children {
			if err := child.validate(ruleID); err != nil {
				return err
			}
		}
	case ConditionNot:
		if len(c.Children) != 1 {
			return NewRuleDefinitionError(ruleID, "NOT node requires exactly one child, got %d", len(c.Children))
		}
		return c.Children[0].validate(ruleID)
	case ConditionEquals:
		if c.Field == "" {
			return NewRuleDefinitionError(ruleID, "EQUALS node requires a field")
		}
		if len(c.Children) != 0 {
			return NewRuleDefinitionError(ruleID, "EQUALS node must not have children")
		}
	case ConditionPresent, ConditionAbsent:
		if c.Field == "" {
			return NewRuleDefinitionError(ruleID, "%s node requires a field", c.Kind)
		}
		if len(c.Children) != 0 {
			return NewRuleDefinitionError(ruleID, "%s node must not have children", c.Kind)
		}
	case ConditionNumericCompare:
		if c.Field == "" {
			return NewRuleDefinitionError(ruleID, "NUMERIC_COMPARE node requires a field")
		}
		switch c.Op {
		case CompareLT, CompareLTE, CompareGT, CompareGTE, CompareEQ:
		default:
			return NewRuleDefinitionError(ruleID, "unknown comparison operator: %q", c.Op)
		}
		if len(c.Children) != 0 {
			return NewRuleDefinitionError(ruleID, "NUMERIC_COMPARE node must not have children")
		}
	default:
		return NewRuleDefinitionError(ruleID, "unknown condition kind: %q", c.Kind)
	}

	return nil
}

// ValidateFor is Validate with the owning rule's ID attached to any error.
func (c *Condition) ValidateFor(ruleID string) error {
	return c.validate(ruleID)
}

// ParseCondition decodes a condition tree from its JSON wire form.
// Decoding does not validate; Validate runs at version activation.
func ParseCondition(raw []byte) (*Condition, error) {
	var cond Condition
	if err := json.Unmarshal(raw, &cond); err != nil {
		return nil, fmt.Errorf("failed to decode condition tree: %w", err)
	}
	return &cond, nil
}
