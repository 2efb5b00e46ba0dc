package domain

import (
	"time"

	"github.com/google/uuid"
)

// RuleCategory represents the inspection domain a rule belongs to
type RuleCategory string

const (
	RuleCategoryDriver          RuleCategory = "DRIVER"
	RuleCategoryVehicle         RuleCategory = "VEHICLE"
	RuleCategoryCargoSecurement RuleCategory = "CARGO_SECUREMENT"
	RuleCategoryHMDG            RuleCategory = "HM_DG"
	RuleCategoryAdmin           RuleCategory = "ADMIN"
)

// Outcome represents the out-of-service determination a rule produces
type Outcome string

const (
	OutcomeOOSDriver  Outcome = "OOS_DRIVER"
	OutcomeOOSVehicle Outcome = "OOS_VEHICLE"
	OutcomeOOSCargo   Outcome = "OOS_CARGO"
	OutcomeNotOOS     Outcome = "NOT_OOS"
	OutcomeTriage     Outcome = "TRIAGE"
)

// IsOOS reports whether the outcome takes something out of service
func (o Outcome) IsOOS() bool {
	return o == OutcomeOOSDriver || o == OutcomeOOSVehicle || o == OutcomeOOSCargo
}

// Severity orders OOS outcomes for aggregation. Higher is more severe;
// non-OOS outcomes rank zero.
func (o Outcome) Severity() int {
	switch o {
	case OutcomeOOSDriver:
		return 3
	case OutcomeOOSVehicle:
		return 2
	case OutcomeOOSCargo:
		return 1
	default:
		return 0
	}
}

// Rule is one compliance rule inside a rule version. Rules are owned by
// their version and become immutable once the version is ACTIVE.
type Rule struct {
	ID            string       `json:"id"`
	VersionID     string       `json:"version_id"`
	Category      RuleCategory `json:"category"`
	ComponentCode string       `json:"component_code,omitempty"`
	Title         string       `json:"title"`
	Condition     *Condition   `json:"condition"`
	Outcome       Outcome      `json:"outcome"`
	IsTriageOnly  bool         `json:"is_triage_only"`
	Citation      string       `json:"citation,omitempty"`
	CitationURL   string       `json:"citation_url,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
	Position      int          `json:"position"`
	CreatedAt     time.Time    `json:"created_at"`
}

// NewRule creates a rule attached to a version. Position records
// insertion order within the version, used only for display.
func NewRule(versionID string, category RuleCategory, componentCode, title string, condition *Condition, outcome Outcome, isTriageOnly bool, citation, citationURL, explanation string, position int) *Rule {
	return &Rule{
		ID:            "rule_" + uuid.NewString(),
		VersionID:     versionID,
		Category:      category,
		ComponentCode: componentCode,
		Title:         title,
		Condition:     condition,
		Outcome:       outcome,
		IsTriageOnly:  isTriageOnly,
		Citation:      citation,
		CitationURL:   citationURL,
		Explanation:   explanation,
		Position:      position,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsValid checks the rule fields. Condition well-formedness is checked
// separately at activation time via ValidateFor.
func (r *Rule) IsValid() error {
	if r.Title == "" {
		return ErrEmptyRuleTitle
	}
	if r.Condition == nil {
		return ErrMissingRuleCondition
	}
	switch r.Category {
	case RuleCategoryDriver, RuleCategoryVehicle, RuleCategoryCargoSecurement, RuleCategoryHMDG, RuleCategoryAdmin:
	default:
		return ErrInvalidRuleCategory
	}
	switch r.Outcome {
	case OutcomeOOSDriver, OutcomeOOSVehicle, OutcomeOOSCargo, OutcomeNotOOS, OutcomeTriage:
	default:
		return ErrInvalidRuleOutcome
	}
	return nil
}

// Rule errors
var (
	ErrEmptyRuleTitle       = NewDomainError("rule title cannot be empty")
	ErrMissingRuleCondition = NewDomainError("rule condition tree is required")
	ErrInvalidRuleCategory  = NewDomainError("invalid rule category")
	ErrInvalidRuleOutcome   = NewDomainError("invalid rule outcome")
)
