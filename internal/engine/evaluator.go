// Package engine implements the out-of-service evaluation pipeline:
// condition evaluation, rule matching, and outcome aggregation. All of
// it is pure and side-effect free; it operates only on already-loaded
// rule and finding data.
package engine

import (
	"encoding/json"

	"github.com/fleetworks/fleetworks/internal/domain"
)

// Evaluate walks a condition tree against one finding's observed data.
// It is total for validated trees and deterministic: identical inputs
// always produce identical results. AND and OR short-circuit left to
// right. A field referenced by an equality or numeric predicate that is
// absent from the data evaluates that predicate to false; absence is
// tested explicitly with an ABSENT node.
func Evaluate(cond *domain.Condition, observed domain.ObservedData) bool {
	if cond == nil {
		return false
	}

	switch cond.Kind {
	case domain.ConditionAnd:
		for _, child := range cond.Children {
			if !Evaluate(child, observed) {
				return false
			}
		}
		return true
	case domain.ConditionOr:
		for _, child := range cond.Children {
			if Evaluate(child, observed) {
				return true
			}
		}
		return false
	case domain.ConditionNot:
		if len(cond.Children) != 1 {
			return false
		}
		return !Evaluate(cond.Children[0], observed)
	case domain.ConditionPresent:
		_, ok := observed[cond.Field]
		return ok
	case domain.ConditionAbsent:
		_, ok := observed[cond.Field]
		return !ok
	case domain.ConditionEquals:
		value, ok := observed[cond.Field]
		if !ok {
			return false
		}
		return looseEqual(value, cond.Value)
	case domain.ConditionNumericCompare:
		value, ok := observed[cond.Field]
		if !ok {
			return false
		}
		number, ok := asNumber(value)
		if !ok {
			return false
		}
		return compare(number, cond.Op, cond.Threshold)
	default:
		// Unknown kinds are rejected at activation; treat defensively
		// evaluated drafts as not triggered.
		return false
	}
}

func compare(value float64, op domain.CompareOp, threshold float64) bool {
	switch op {
	case domain.CompareLT:
		return value < threshold
	case domain.CompareLTE:
		return value <= threshold
	case domain.CompareGT:
		return value > threshold
	case domain.CompareGTE:
		return value >= threshold
	case domain.CompareEQ:
		return value == threshold
	default:
		return false
	}
}

// asNumber coerces the numeric shapes JSON decoding and Go callers
// produce into float64. Non-numeric values fail the predicate.
func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// looseEqual compares an observed value with a rule constant. Numbers
// compare numerically regardless of their decoded Go type; everything
// else compares by interface equality.
func looseEqual(observed, expected interface{}) bool {
	if on, ok := asNumber(observed); ok {
		if en, ok := asNumber(expected); ok {
			return on == en
		}
		return false
	}
	return observed == expected
}
