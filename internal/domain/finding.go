package domain

import (
	"time"

	"github.com/google/uuid"
)

// ObservedData is the structured key/value payload recorded for a
// finding, matching the field references rule condition trees use.
type ObservedData map[string]interface{}

// Finding is one observed condition within an inspection. It is
// immutable after creation except for triage resolution.
type Finding struct {
	ID               string       `json:"id"`
	InspectionID     string       `json:"inspection_id"`
	FindingType      string       `json:"finding_type"`
	Category         RuleCategory `json:"category"`
	ComponentCode    string       `json:"component_code,omitempty"`
	ObservedData     ObservedData `json:"observed_data"`
	MatchedRuleIDs   []string     `json:"matched_rule_ids"`
	TriggeredRuleIDs []string     `json:"triggered_rule_ids"`
	Explanations     []string     `json:"explanations,omitempty"`
	Outcome          Outcome      `json:"outcome"`
	Notes            string       `json:"notes,omitempty"`
	ResolvedBy       string       `json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
	ResolutionReason string       `json:"resolution_reason,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
}

// NewFinding creates a finding before evaluation; outcome defaults to
// NOT_OOS until the aggregator scores it.
func NewFinding(inspectionID, findingType string, category RuleCategory, componentCode string, observed ObservedData, notes string) *Finding {
	return &Finding{
		ID:            "find_" + uuid.NewString(),
		InspectionID:  inspectionID,
		FindingType:   findingType,
		Category:      category,
		ComponentCode: componentCode,
		ObservedData:  observed,
		Outcome:       OutcomeNotOOS,
		Notes:         notes,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsValid checks the finding fields
func (f *Finding) IsValid() error {
	if f.FindingType == "" {
		return ErrEmptyFindingType
	}
	switch f.Category {
	case RuleCategoryDriver, RuleCategoryVehicle, RuleCategoryCargoSecurement, RuleCategoryHMDG, RuleCategoryAdmin:
	default:
		return ErrInvalidRuleCategory
	}
	return nil
}

// FailsInspection reports whether a NOT_OOS finding still fails the
// inspection: at least one rule triggered, so a violation was noted even
// though nothing went out of service. A resolved finding never fails;
// the triage downgrade is authoritative and the triggered rule ids stay
// only for the record.
func (f *Finding) FailsInspection() bool {
	return f.Outcome == OutcomeNotOOS && len(f.TriggeredRuleIDs) > 0 && f.ResolvedAt == nil
}

// ResolveTriage confirms or downgrades a TRIAGE finding. It is the only
// permitted mutation of a finding's outcome after creation, and the
// resolved outcome must be one a human review can authorize: an OOS_*
// confirmation or a NOT_OOS downgrade with a reason.
func (f *Finding) ResolveTriage(resolved Outcome, actorID, reason string) error {
	if f.Outcome != OutcomeTriage {
		return ErrFindingNotInTriage
	}
	if !resolved.IsOOS() && resolved != OutcomeNotOOS {
		return ErrInvalidTriageOutcome
	}
	if actorID == "" {
		return ErrEmptyActor
	}
	if reason == "" {
		return ErrEmptyTriageReason
	}

	now := time.Now().UTC()
	f.Outcome = resolved
	f.ResolvedBy = actorID
	f.ResolvedAt = &now
	f.ResolutionReason = reason
	return nil
}

// Finding errors
var (
	ErrEmptyFindingType     = NewDomainError("finding type cannot be empty")
	ErrFindingNotInTriage   = NewDomainError("finding is not awaiting triage")
	ErrInvalidTriageOutcome = NewDomainError("triage must resolve to an OOS outcome or NOT_OOS")
	ErrEmptyTriageReason    = NewDomainError("triage resolution requires a reason")
	ErrEmptyActor           = NewDomainError("actor is required")
)
