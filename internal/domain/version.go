package domain

import (
	"time"

	"github.com/google/uuid"
)

// VersionStatus represents the lifecycle status of a rule version
type VersionStatus string

const (
	VersionStatusDraft   VersionStatus = "DRAFT"
	VersionStatusActive  VersionStatus = "ACTIVE"
	VersionStatusRetired VersionStatus = "RETIRED"
)

// RuleVersion is a named, dated snapshot of the compliance rule set.
// Lifecycle is forward-only: DRAFT -> ACTIVE -> RETIRED. A RETIRED
// version is kept for historical inspection replay but excluded from new
// evaluations; corrections require a new DRAFT.
//
// Enabled is independent of lifecycle status: it temporarily excludes or
// includes an ACTIVE or RETIRED version from new evaluations without a
// state transition.
//
// Revision implements the optimistic single-writer check on lifecycle
// mutations; stores reject writers holding a stale revision.
type RuleVersion struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Status         VersionStatus `json:"status"`
	Enabled        bool          `json:"enabled"`
	EffectiveStart time.Time     `json:"effective_start"`
	EffectiveEnd   *time.Time    `json:"effective_end,omitempty"`
	SourceIDs      []string      `json:"source_ids"`
	Revision       int           `json:"revision"`
	ActivatedAt    *time.Time    `json:"activated_at,omitempty"`
	RetiredAt      *time.Time    `json:"retired_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewRuleVersion creates a version in DRAFT with evaluation disabled
func NewRuleVersion(name string, sourceIDs []string, effectiveStart time.Time) *RuleVersion {
	now := time.Now().UTC()
	return &RuleVersion{
		ID:             "ver_" + uuid.NewString(),
		Name:           name,
		Status:         VersionStatusDraft,
		Enabled:        false,
		EffectiveStart: effectiveStart,
		SourceIDs:      sourceIDs,
		Revision:       1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Activate promotes a DRAFT version to ACTIVE. Activation requires a
// non-empty rule set whose condition trees all pass static validation,
// so every activated rule set is guaranteed evaluable.
func (v *RuleVersion) Activate(rules []*Rule) error {
	if v.Status != VersionStatusDraft {
		return &InvalidTransitionError{VersionID: v.ID, From: v.Status, To: VersionStatusActive}
	}
	if len(rules) == 0 {
		return ErrEmptyRuleSet
	}
	for _, rule := range rules {
		if err := rule.IsValid(); err != nil {
			return NewRuleDefinitionError(rule.ID, "%s", err.Error())
		}
		if err := rule.Condition.ValidateFor(rule.ID); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	v.Status = VersionStatusActive
	v.Enabled = true
	v.ActivatedAt = &now
	v.UpdatedAt = now
	return nil
}

// Retire moves an ACTIVE version to RETIRED. RETIRED is terminal.
func (v *RuleVersion) Retire() error {
	if v.Status != VersionStatusActive {
		return &InvalidTransitionError{VersionID: v.ID, From: v.Status, To: VersionStatusRetired}
	}
	now := time.Now().UTC()
	v.Status = VersionStatusRetired
	v.Enabled = false
	v.RetiredAt = &now
	v.UpdatedAt = now
	return nil
}

// SetEnabled toggles evaluation eligibility without a lifecycle
// transition. DRAFT versions cannot be enabled; they have no validated
// rule set yet.
func (v *RuleVersion) SetEnabled(enabled bool) error {
	if v.Status == VersionStatusDraft {
		return ErrDraftNotEnableable
	}
	v.Enabled = enabled
	v.UpdatedAt = time.Now().UTC()
	return nil
}

// IsEffectiveAt reports whether the version's effective window covers t.
// An open EffectiveEnd means currently effective.
func (v *RuleVersion) IsEffectiveAt(t time.Time) bool {
	if t.Before(v.EffectiveStart) {
		return false
	}
	if v.EffectiveEnd != nil && t.After(*v.EffectiveEnd) {
		return false
	}
	return true
}

// IsEvaluable reports whether new inspections may use this version at t
func (v *RuleVersion) IsEvaluable(t time.Time) bool {
	return v.Status == VersionStatusActive && v.Enabled && v.IsEffectiveAt(t)
}

// Version errors
var (
	ErrEmptyRuleSet        = NewDomainError("cannot activate a version with no rules")
	ErrVersionNotDraft     = NewDomainError("rules can only be added to a DRAFT version")
	ErrDraftNotEnableable  = NewDomainError("a DRAFT version cannot be enabled for evaluation")
	ErrVersionNotEvaluable = NewDomainError("version is disabled or outside its effective window")
)
